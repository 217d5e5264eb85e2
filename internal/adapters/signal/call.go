package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/GuideNet/GuideNet/internal/core"
	"github.com/GuideNet/GuideNet/internal/domain"
)

func (ctl *Controller) handleJoinVideoCall(sid core.SessionID, c *wsConn, data []byte) {
	var p struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		log.Error().Str("module", "signal").Msg("bad joinVideoCall payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if err := ctl.Board.JoinVideoCall(sid, domain.RoomID(p.Room)); err != nil {
		if errors.Is(err, domain.ErrCallFull) {
			log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("call full, join rejected")
			ctl.sendError(c, "call_full")
			return
		}
		ctl.sendError(c, "join_failed")
	}
}

func (ctl *Controller) handleVideoCallSignal(sid core.SessionID, c *wsConn, data []byte) {
	var p struct {
		Type        string          `json:"type"`
		Room        string          `json:"room"`
		Signal      json.RawMessage `json:"signal"`
		IsInitiator bool            `json:"isInitiator"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" || len(p.Signal) == 0 {
		log.Error().Str("module", "signal").Msg("bad videoCallSignal payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if err := ctl.Board.VideoCallSignal(sid, domain.RoomID(p.Room), p.Signal, p.IsInitiator); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotInRoom):
			ctl.sendError(c, "not_in_room")
		case errors.Is(err, domain.ErrNoCall):
			ctl.sendError(c, "no_call")
		default:
			ctl.sendError(c, "signal_failed")
		}
	}
}

func (ctl *Controller) handleEndCall(sid core.SessionID, c *wsConn, data []byte) {
	var p struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		log.Error().Str("module", "signal").Msg("bad endCall payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	// An end for an already-torn-down call is not worth an error frame.
	if err := ctl.Board.EndCall(sid, domain.RoomID(p.Room)); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("endCall on dead call")
	}
}
