package app

import "encoding/json"

// Server-to-client event names. Client-to-server names live in the signal
// adapter, which owns the wire envelope.
const (
	EvtMessage         = "message"
	EvtWaitForCall     = "waitForCall"
	EvtInitiateCall    = "initiateCall"
	EvtVideoCallSignal = "videoCallSignal"
	EvtCallEnded       = "callEnded"
	EvtPong            = "pong"
	EvtError           = "error"
)

type messageEvent struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message"`
}

type callControlEvent struct {
	Type string `json:"type"`
}

type signalEvent struct {
	Type        string          `json:"type"`
	Signal      json.RawMessage `json:"signal"`
	IsInitiator bool            `json:"isInitiator"`
}

// RelayResult reports fan-out delivery, mirroring what the transport saw.
// Dropped recipients were connected but refused the frame (backpressure).
type RelayResult struct {
	SentTo  int
	Dropped int
}
