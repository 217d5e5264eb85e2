package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GuideNet/GuideNet/internal/domain"
)

// roomEntry is the unit of bookkeeping: a member set plus, when the room is
// used for calling, the attached call session. Rooms spring into existence on
// first join and are deleted the moment the member set empties.
type roomEntry struct {
	members map[SessionID]struct{}
	call    *callSession
}

func (e *roomEntry) callLive() bool {
	if e.call == nil {
		return false
	}
	switch e.call.state {
	case CallWaitingForPeer, CallSignaling, CallActive:
		return true
	}
	return false
}

func (e *roomEntry) membersExcept(sid SessionID) []SessionID {
	out := make([]SessionID, 0, len(e.members))
	for m := range e.members {
		if m != sid {
			out = append(out, m)
		}
	}
	return out
}

// Departure describes one room a session was removed from.
type Departure struct {
	Room      domain.RoomID
	Remaining []SessionID
	// CallLive reports that a call was in progress when the member left, so
	// the remaining side must be told the call is over.
	CallLive bool
}

// ReapedCall is a call force-ended by the idle janitor.
type ReapedCall struct {
	Room    domain.RoomID
	Members []SessionID
}

// RoomTracker is a threadsafe in-memory registry of rooms and their members.
// It never touches transport resources.
type RoomTracker struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*roomEntry
	now   func() time.Time
}

func NewRoomTracker() *RoomTracker {
	return &RoomTracker{
		rooms: make(map[domain.RoomID]*roomEntry),
		now:   time.Now,
	}
}

// Join adds the session to the room and returns the resulting member count.
// Joining twice is a no-op with the same count.
func (t *RoomTracker) Join(room domain.RoomID, sid SessionID) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.getOrCreateLocked(room)
	e.members[sid] = struct{}{}
	log.Info().Str("module", "core.rooms").Str("room", string(room)).Str("sid", string(sid)).Int("members", len(e.members)).Msg("joined")
	return len(e.members)
}

// Leave removes the session from the room, deleting the room if it empties.
func (t *RoomTracker) Leave(room domain.RoomID, sid SessionID) (Departure, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.rooms[room]
	if !ok {
		return Departure{}, false
	}
	if _, ok := e.members[sid]; !ok {
		return Departure{}, false
	}
	return t.leaveLocked(room, e, sid), true
}

// MembersExcept returns every member of the room but the given session. Used
// by the relay for all-but-sender fan-out.
func (t *RoomTracker) MembersExcept(room domain.RoomID, sid SessionID) []SessionID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.rooms[room]
	if !ok {
		return nil
	}
	return e.membersExcept(sid)
}

func (t *RoomTracker) Members(room domain.RoomID) []SessionID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.rooms[room]
	if !ok {
		return nil
	}
	out := make([]SessionID, 0, len(e.members))
	for m := range e.members {
		out = append(out, m)
	}
	return out
}

func (t *RoomTracker) Contains(room domain.RoomID, sid SessionID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.rooms[room]
	if !ok {
		return false
	}
	_, ok = e.members[sid]
	return ok
}

// RemoveEverywhere purges the session from every room it was part of. The
// returned departures let the caller notify call peers left behind.
func (t *RoomTracker) RemoveEverywhere(sid SessionID) []Departure {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Departure
	for room, e := range t.rooms {
		if _, ok := e.members[sid]; !ok {
			continue
		}
		out = append(out, t.leaveLocked(room, e, sid))
	}
	return out
}

// JoinCall joins the room as a call participant and advances the call
// handshake. The first joiner waits for an offer, the second initiates.
// A third connection is rejected without joining; a repeat join from a
// participant restates their role and leaves the handshake untouched.
func (t *RoomTracker) JoinCall(room domain.RoomID, sid SessionID) (CallRole, error) {
	if room == "" {
		return RoleNone, domain.ErrEmptyRoomID
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.getOrCreateLocked(room)

	if _, member := e.members[sid]; member && e.call != nil {
		// Repeat join from a current participant. The handshake stays
		// exactly where it is; only the original role is restated.
		if e.call.initiator == sid {
			return RoleInitiate, nil
		}
		return RoleWait, nil
	}

	if _, member := e.members[sid]; !member && e.call != nil && len(e.members) >= 2 {
		return RoleNone, domain.ErrCallFull
	}

	e.members[sid] = struct{}{}
	now := t.now()
	switch len(e.members) {
	case 1:
		e.call = &callSession{state: CallWaitingForPeer, startedAt: now, lastActivity: now}
		log.Info().Str("module", "core.rooms").Str("room", string(room)).Str("sid", string(sid)).Msg("call waiting for peer")
		return RoleWait, nil
	case 2:
		if e.call == nil {
			// Chat members were already present; start the session fresh.
			e.call = &callSession{state: CallWaitingForPeer, startedAt: now}
		}
		e.call.state = CallSignaling
		e.call.initiator = sid
		e.call.fromInitiator = false
		e.call.fromResponder = false
		e.call.touch(now)
		log.Info().Str("module", "core.rooms").Str("room", string(room)).Str("sid", string(sid)).Msg("call signaling")
		return RoleInitiate, nil
	default:
		// Room already carries three or more plain chat members; the
		// joiner becomes an ordinary member and no handshake starts.
		return RoleNone, nil
	}
}

// Signal records one relayed signaling payload and returns the recipients.
// The payload itself never enters the tracker; only the direction matters,
// so the session can go active once both sides have been heard.
func (t *RoomTracker) Signal(room domain.RoomID, sid SessionID, isInitiator bool) ([]SessionID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.rooms[room]
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	if _, member := e.members[sid]; !member {
		return nil, domain.ErrNotInRoom
	}
	if e.call == nil {
		return nil, domain.ErrNoCall
	}
	e.call.touch(t.now())
	e.call.markRelayed(isInitiator)
	return e.membersExcept(sid), nil
}

// EndCall tears the call down: the session leaves the room and the remaining
// members are returned so the caller can broadcast the termination.
func (t *RoomTracker) EndCall(room domain.RoomID, sid SessionID) ([]SessionID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.rooms[room]
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	if _, member := e.members[sid]; !member {
		return nil, domain.ErrNotInRoom
	}
	if e.call == nil {
		return nil, domain.ErrNoCall
	}
	e.call.state = CallEnded
	e.call = nil
	others := e.membersExcept(sid)
	t.leaveLocked(room, e, sid)
	log.Info().Str("module", "core.rooms").Str("room", string(room)).Str("sid", string(sid)).Msg("call ended")
	return others, nil
}

// CallState reports the current handshake state, CallIdle when the room has
// no call attached.
func (t *RoomTracker) CallState(room domain.RoomID) CallState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.rooms[room]
	if !ok || e.call == nil {
		return CallIdle
	}
	return e.call.state
}

// ReapIdleCalls force-ends calls with no signaling activity for maxIdle and
// dissolves their rooms. Returns the affected members per room.
func (t *RoomTracker) ReapIdleCalls(maxIdle time.Duration) []ReapedCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := t.now().Add(-maxIdle)
	var out []ReapedCall
	for room, e := range t.rooms {
		if e.call == nil || !e.call.lastActivity.Before(cutoff) {
			continue
		}
		members := make([]SessionID, 0, len(e.members))
		for m := range e.members {
			members = append(members, m)
		}
		delete(t.rooms, room)
		log.Warn().Str("module", "core.rooms").Str("room", string(room)).Int("members", len(members)).Msg("idle call reaped")
		out = append(out, ReapedCall{Room: room, Members: members})
	}
	return out
}

func (t *RoomTracker) getOrCreateLocked(room domain.RoomID) *roomEntry {
	e, ok := t.rooms[room]
	if !ok {
		e = &roomEntry{members: make(map[SessionID]struct{})}
		t.rooms[room] = e
	}
	return e
}

// leaveLocked removes the member, clears a live call left one-sided, and
// deletes the room when the last member departs.
func (t *RoomTracker) leaveLocked(room domain.RoomID, e *roomEntry, sid SessionID) Departure {
	delete(e.members, sid)
	d := Departure{Room: room, Remaining: e.membersExcept(""), CallLive: e.callLive()}
	if d.CallLive {
		e.call.state = CallEnded
		e.call = nil
	}
	if len(e.members) == 0 {
		delete(t.rooms, room)
	}
	return d
}
