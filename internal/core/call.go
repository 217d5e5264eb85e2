package core

import "time"

// CallState tracks the two-party call handshake attached to a room.
type CallState int

const (
	CallIdle CallState = iota
	CallWaitingForPeer
	CallSignaling
	CallActive
	CallEnded
)

func (s CallState) String() string {
	switch s {
	case CallIdle:
		return "idle"
	case CallWaitingForPeer:
		return "waiting_for_peer"
	case CallSignaling:
		return "signaling"
	case CallActive:
		return "active"
	case CallEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// CallRole is assigned by join order: the first joiner waits for an incoming
// offer, the second generates it. RoleNone means the join added an ordinary
// room member without touching any call handshake.
type CallRole int

const (
	RoleNone CallRole = iota
	RoleWait
	RoleInitiate
)

// callSession lives inside a room entry and dies with it. Payloads pass
// through untouched; the only bookkeeping is which directions have been
// relayed, so the session can be promoted to active once both have.
type callSession struct {
	state         CallState
	initiator     SessionID
	fromInitiator bool
	fromResponder bool
	startedAt     time.Time
	lastActivity  time.Time
}

func (c *callSession) touch(now time.Time) {
	c.lastActivity = now
}

func (c *callSession) markRelayed(isInitiator bool) {
	if isInitiator {
		c.fromInitiator = true
	} else {
		c.fromResponder = true
	}
	if c.state == CallSignaling && c.fromInitiator && c.fromResponder {
		c.state = CallActive
	}
}
