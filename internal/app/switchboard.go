package app

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GuideNet/GuideNet/internal/core"
	"github.com/GuideNet/GuideNet/internal/domain"
)

// Switchboard routes chat messages and call signaling between live sessions.
// One dispatch method per wire event, callable directly in tests; the socket
// adapter is a thin translation layer on top.
type Switchboard struct {
	mu    sync.RWMutex
	conns map[core.SessionID]core.SignalConnection

	Presence *core.Presence
	Rooms    *core.RoomTracker
}

func NewSwitchboard() *Switchboard {
	return &Switchboard{
		conns:    make(map[core.SessionID]core.SignalConnection),
		Presence: core.NewPresence(),
		Rooms:    core.NewRoomTracker(),
	}
}

// Attach binds a freshly opened transport session.
func (s *Switchboard) Attach(sid core.SessionID, conn core.SignalConnection) {
	s.mu.Lock()
	s.conns[sid] = conn
	s.mu.Unlock()
	log.Info().Str("module", "app.switchboard").Str("sid", string(sid)).Msg("session attached")
}

// Detach is the single disconnect path: it purges the session from presence
// and every room, notifying call peers left behind. Calling it again for the
// same session is a no-op.
func (s *Switchboard) Detach(sid core.SessionID) {
	s.mu.Lock()
	_, attached := s.conns[sid]
	delete(s.conns, sid)
	s.mu.Unlock()
	if !attached {
		return
	}

	s.Presence.Unregister(sid)
	for _, d := range s.Rooms.RemoveEverywhere(sid) {
		if d.CallLive && len(d.Remaining) > 0 {
			s.emitTo(d.Remaining, callControlEvent{Type: EvtCallEnded})
			log.Info().Str("module", "app.switchboard").Str("room", string(d.Room)).Str("sid", string(sid)).Msg("peer notified of dropped call")
		}
	}
	log.Info().Str("module", "app.switchboard").Str("sid", string(sid)).Msg("session detached")
}

// RegisterUser announces the session's identity. Last registration wins.
func (s *Switchboard) RegisterUser(sid core.SessionID, uid domain.UserID) {
	s.Presence.Register(uid, sid)
}

// Online reports whether the user currently holds a live session.
func (s *Switchboard) Online(uid domain.UserID) bool {
	_, ok := s.Presence.Lookup(uid)
	return ok
}

// JoinChat subscribes the session to a conversation room. No role logic.
func (s *Switchboard) JoinChat(sid core.SessionID, room domain.RoomID) int {
	return s.Rooms.Join(room, sid)
}

// SendMessage relays an already-persisted message to every room member except
// the sender. Best-effort, fire-and-forget: offline members catch up from the
// conversation store on reconnect.
func (s *Switchboard) SendMessage(sid core.SessionID, room domain.RoomID, message json.RawMessage) RelayResult {
	recipients := s.Rooms.MembersExcept(room, sid)
	res := s.emitTo(recipients, messageEvent{Type: EvtMessage, Message: message})
	log.Debug().Str("module", "app.switchboard").Str("room", string(room)).Int("sent_to", res.SentTo).Int("dropped", res.Dropped).Msg("message relayed")
	return res
}

// JoinVideoCall enters the call handshake for a room. The first joiner is
// told to wait, the second to initiate; a third is rejected.
func (s *Switchboard) JoinVideoCall(sid core.SessionID, room domain.RoomID) error {
	role, err := s.Rooms.JoinCall(room, sid)
	if err != nil {
		return err
	}
	switch role {
	case core.RoleWait:
		s.emitTo([]core.SessionID{sid}, callControlEvent{Type: EvtWaitForCall})
	case core.RoleInitiate:
		s.emitTo([]core.SessionID{sid}, callControlEvent{Type: EvtInitiateCall})
	}
	return nil
}

// VideoCallSignal relays an opaque signaling payload to the other call
// participant(s), tagged with the sender's role.
func (s *Switchboard) VideoCallSignal(sid core.SessionID, room domain.RoomID, signal json.RawMessage, isInitiator bool) error {
	recipients, err := s.Rooms.Signal(room, sid, isInitiator)
	if err != nil {
		return err
	}
	s.emitTo(recipients, signalEvent{Type: EvtVideoCallSignal, Signal: signal, IsInitiator: isInitiator})
	return nil
}

// EndCall broadcasts termination to the other participant(s) and leaves the
// room. Once ended, a new call needs a fresh join sequence.
func (s *Switchboard) EndCall(sid core.SessionID, room domain.RoomID) error {
	others, err := s.Rooms.EndCall(room, sid)
	if err != nil {
		return err
	}
	s.emitTo(others, callControlEvent{Type: EvtCallEnded})
	return nil
}

// ReapIdleCalls force-ends calls idle for longer than maxIdle, notifying all
// participants. Driven by a ticker owned by main.
func (s *Switchboard) ReapIdleCalls(maxIdle time.Duration) int {
	reaped := s.Rooms.ReapIdleCalls(maxIdle)
	for _, r := range reaped {
		s.emitTo(r.Members, callControlEvent{Type: EvtCallEnded})
	}
	return len(reaped)
}

func (s *Switchboard) emitTo(recipients []core.SessionID, v any) RelayResult {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.switchboard").Msg("emit marshal")
		return RelayResult{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := RelayResult{}
	for _, sid := range recipients {
		conn, ok := s.conns[sid]
		if !ok {
			continue
		}
		if err := conn.TrySend(core.Frame(b)); err != nil {
			res.Dropped++
			log.Warn().Str("module", "app.switchboard").Str("sid", string(sid)).Msg("recipient dropped frame")
			continue
		}
		res.SentTo++
	}
	return res
}
