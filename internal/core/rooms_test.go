package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GuideNet/GuideNet/internal/domain"
)

func TestRoomTracker_JoinIdempotent(t *testing.T) {
	rt := NewRoomTracker()

	assert.Equal(t, 1, rt.Join("chat42", "a"))
	assert.Equal(t, 1, rt.Join("chat42", "a"))
	assert.Equal(t, 2, rt.Join("chat42", "b"))
}

func TestRoomTracker_MembersExcept(t *testing.T) {
	rt := NewRoomTracker()
	rt.Join("chat42", "a")
	rt.Join("chat42", "b")
	rt.Join("chat42", "c")
	rt.Join("other", "d")

	got := rt.MembersExcept("chat42", "a")
	assert.ElementsMatch(t, []SessionID{"b", "c"}, got)

	assert.Empty(t, rt.MembersExcept("missing", "a"))
}

func TestRoomTracker_LeaveDeletesEmptyRoom(t *testing.T) {
	rt := NewRoomTracker()
	rt.Join("chat42", "a")

	_, ok := rt.Leave("chat42", "a")
	require.True(t, ok)
	assert.Empty(t, rt.Members("chat42"))

	// Leaving again is a no-op.
	_, ok = rt.Leave("chat42", "a")
	assert.False(t, ok)
}

func TestRoomTracker_RemoveEverywhere(t *testing.T) {
	rt := NewRoomTracker()
	rt.Join("r1", "a")
	rt.Join("r1", "b")
	rt.Join("r2", "a")

	departures := rt.RemoveEverywhere("a")
	assert.Len(t, departures, 2)

	assert.False(t, rt.Contains("r1", "a"))
	assert.True(t, rt.Contains("r1", "b"))
	// r2 is now empty and must be gone entirely.
	assert.Empty(t, rt.Members("r2"))
}

func TestRoomTracker_CallJoinOrderAssignsRoles(t *testing.T) {
	rt := NewRoomTracker()

	role, err := rt.JoinCall("call7", "a")
	require.NoError(t, err)
	assert.Equal(t, RoleWait, role)
	assert.Equal(t, CallWaitingForPeer, rt.CallState("call7"))

	role, err = rt.JoinCall("call7", "b")
	require.NoError(t, err)
	assert.Equal(t, RoleInitiate, role)
	assert.Equal(t, CallSignaling, rt.CallState("call7"))
}

func TestRoomTracker_RepeatCallJoinKeepsHandshake(t *testing.T) {
	rt := NewRoomTracker()
	_, err := rt.JoinCall("call7", "a")
	require.NoError(t, err)

	// Retry from the lone waiter restates the role.
	role, err := rt.JoinCall("call7", "a")
	require.NoError(t, err)
	assert.Equal(t, RoleWait, role)
	assert.Equal(t, CallWaitingForPeer, rt.CallState("call7"))

	_, err = rt.JoinCall("call7", "b")
	require.NoError(t, err)

	// Retry mid-handshake keeps the state and the original roles.
	role, err = rt.JoinCall("call7", "a")
	require.NoError(t, err)
	assert.Equal(t, RoleWait, role)
	assert.Equal(t, CallSignaling, rt.CallState("call7"))

	_, err = rt.Signal("call7", "b", true)
	require.NoError(t, err)
	_, err = rt.Signal("call7", "a", false)
	require.NoError(t, err)
	require.Equal(t, CallActive, rt.CallState("call7"))

	// Retry on an established call must not regress it.
	role, err = rt.JoinCall("call7", "a")
	require.NoError(t, err)
	assert.Equal(t, RoleWait, role)
	assert.Equal(t, CallActive, rt.CallState("call7"))

	role, err = rt.JoinCall("call7", "b")
	require.NoError(t, err)
	assert.Equal(t, RoleInitiate, role)
	assert.Equal(t, CallActive, rt.CallState("call7"))
}

func TestRoomTracker_JoinCallCrowdedChatRoom(t *testing.T) {
	rt := NewRoomTracker()
	rt.Join("chat42", "a")
	rt.Join("chat42", "b")
	rt.Join("chat42", "c")

	// Three chat members already present: the joiner is accepted as an
	// ordinary member and no handshake starts.
	role, err := rt.JoinCall("chat42", "d")
	require.NoError(t, err)
	assert.Equal(t, RoleNone, role)
	assert.True(t, rt.Contains("chat42", "d"))
	assert.Equal(t, CallIdle, rt.CallState("chat42"))

	_, err = rt.Signal("chat42", "d", true)
	assert.ErrorIs(t, err, domain.ErrNoCall)
}

func TestRoomTracker_JoinCallEmptyRoomID(t *testing.T) {
	rt := NewRoomTracker()

	role, err := rt.JoinCall("", "a")
	assert.ErrorIs(t, err, domain.ErrEmptyRoomID)
	assert.Equal(t, RoleNone, role)
	assert.Empty(t, rt.Members(""))
}

func TestRoomTracker_ThirdJoinerRejected(t *testing.T) {
	rt := NewRoomTracker()
	_, err := rt.JoinCall("call7", "a")
	require.NoError(t, err)
	_, err = rt.JoinCall("call7", "b")
	require.NoError(t, err)

	_, err = rt.JoinCall("call7", "c")
	assert.ErrorIs(t, err, domain.ErrCallFull)
	assert.False(t, rt.Contains("call7", "c"))
	assert.Len(t, rt.Members("call7"), 2)
}

func TestRoomTracker_SignalPromotesToActive(t *testing.T) {
	rt := NewRoomTracker()
	_, err := rt.JoinCall("call7", "a")
	require.NoError(t, err)
	_, err = rt.JoinCall("call7", "b")
	require.NoError(t, err)

	recipients, err := rt.Signal("call7", "b", true)
	require.NoError(t, err)
	assert.Equal(t, []SessionID{"a"}, recipients)
	assert.Equal(t, CallSignaling, rt.CallState("call7"))

	recipients, err = rt.Signal("call7", "a", false)
	require.NoError(t, err)
	assert.Equal(t, []SessionID{"b"}, recipients)
	assert.Equal(t, CallActive, rt.CallState("call7"))
}

func TestRoomTracker_SignalErrors(t *testing.T) {
	rt := NewRoomTracker()

	_, err := rt.Signal("nowhere", "a", true)
	assert.ErrorIs(t, err, domain.ErrNotInRoom)

	rt.Join("chat42", "a")
	_, err = rt.Signal("chat42", "b", true)
	assert.ErrorIs(t, err, domain.ErrNotInRoom)

	// Chat room without a call attached.
	_, err = rt.Signal("chat42", "a", true)
	assert.ErrorIs(t, err, domain.ErrNoCall)
}

func TestRoomTracker_EndCall(t *testing.T) {
	rt := NewRoomTracker()
	_, err := rt.JoinCall("call7", "a")
	require.NoError(t, err)
	_, err = rt.JoinCall("call7", "b")
	require.NoError(t, err)

	others, err := rt.EndCall("call7", "a")
	require.NoError(t, err)
	assert.Equal(t, []SessionID{"b"}, others)
	assert.Equal(t, CallIdle, rt.CallState("call7"))
	assert.False(t, rt.Contains("call7", "a"))

	// Ended means ended: signaling needs a fresh join sequence.
	_, err = rt.Signal("call7", "b", false)
	assert.ErrorIs(t, err, domain.ErrNoCall)
}

func TestRoomTracker_DisconnectEndsLiveCall(t *testing.T) {
	rt := NewRoomTracker()
	_, err := rt.JoinCall("call7", "a")
	require.NoError(t, err)
	_, err = rt.JoinCall("call7", "b")
	require.NoError(t, err)

	departures := rt.RemoveEverywhere("a")
	require.Len(t, departures, 1)
	assert.True(t, departures[0].CallLive)
	assert.Equal(t, []SessionID{"b"}, departures[0].Remaining)
	assert.Equal(t, CallIdle, rt.CallState("call7"))
}

func TestRoomTracker_ReapIdleCalls(t *testing.T) {
	rt := NewRoomTracker()
	now := time.Now()
	rt.now = func() time.Time { return now }

	_, err := rt.JoinCall("stale", "a")
	require.NoError(t, err)
	_, err = rt.JoinCall("stale", "b")
	require.NoError(t, err)
	_, err = rt.JoinCall("fresh", "c")
	require.NoError(t, err)

	// Ten minutes pass; only the fresh call sees new signaling activity.
	now = now.Add(10 * time.Minute)
	_, err = rt.Signal("fresh", "c", true)
	require.NoError(t, err)

	reaped := rt.ReapIdleCalls(5 * time.Minute)
	require.Len(t, reaped, 1)
	assert.Equal(t, domain.RoomID("stale"), reaped[0].Room)
	assert.ElementsMatch(t, []SessionID{"a", "b"}, reaped[0].Members)
	assert.Empty(t, rt.Members("stale"))
	assert.Equal(t, CallWaitingForPeer, rt.CallState("fresh"))
}
