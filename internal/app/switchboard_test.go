package app

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GuideNet/GuideNet/internal/core"
	"github.com/GuideNet/GuideNet/internal/domain"
)

type mockConn struct {
	mu       sync.Mutex
	received []core.Frame
	sendErr  error
	closed   bool
}

func (m *mockConn) TrySend(f core.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.received = append(m.received, f)
	return nil
}

func (m *mockConn) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *mockConn) frames(t *testing.T) []map[string]any {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]any, 0, len(m.received))
	for _, f := range m.received {
		var v map[string]any
		require.NoError(t, json.Unmarshal(f, &v))
		out = append(out, v)
	}
	return out
}

func (m *mockConn) eventsOfType(t *testing.T, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, f := range m.frames(t) {
		if f["type"] == typ {
			out = append(out, f)
		}
	}
	return out
}

func attach(s *Switchboard, sid core.SessionID) *mockConn {
	c := &mockConn{}
	s.Attach(sid, c)
	return c
}

func TestSwitchboard_ChatRelay(t *testing.T) {
	s := NewSwitchboard()
	a := attach(s, "A")
	b := attach(s, "B")
	outsider := attach(s, "C")

	s.JoinChat("A", "chat42")
	s.JoinChat("B", "chat42")
	s.JoinChat("C", "other")

	payload := json.RawMessage(`{"content":"hello","sender":"alice"}`)
	res := s.SendMessage("A", "chat42", payload)

	assert.Equal(t, 1, res.SentTo)
	assert.Equal(t, 0, res.Dropped)

	msgs := b.eventsOfType(t, EvtMessage)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0]["message"].(map[string]any)["content"])

	// Sender does not receive its own message back, outsiders receive nothing.
	assert.Empty(t, a.eventsOfType(t, EvtMessage))
	assert.Empty(t, outsider.eventsOfType(t, EvtMessage))
}

func TestSwitchboard_RelayBackpressure(t *testing.T) {
	s := NewSwitchboard()
	attach(s, "A")
	slow := &mockConn{sendErr: assert.AnError}
	s.Attach("B", slow)

	s.JoinChat("A", "chat42")
	s.JoinChat("B", "chat42")

	res := s.SendMessage("A", "chat42", json.RawMessage(`{}`))
	assert.Equal(t, 0, res.SentTo)
	assert.Equal(t, 1, res.Dropped)
}

func TestSwitchboard_CallHandshake(t *testing.T) {
	s := NewSwitchboard()
	a := attach(s, "A")
	b := attach(s, "B")

	require.NoError(t, s.JoinVideoCall("A", "call7"))
	require.Len(t, a.eventsOfType(t, EvtWaitForCall), 1)
	assert.Empty(t, b.frames(t))

	require.NoError(t, s.JoinVideoCall("B", "call7"))
	require.Len(t, b.eventsOfType(t, EvtInitiateCall), 1)
	assert.Empty(t, a.eventsOfType(t, EvtInitiateCall))

	// B offers, A answers; each payload reaches only the other side, verbatim.
	offer := json.RawMessage(`{"sdp":"offer-blob"}`)
	require.NoError(t, s.VideoCallSignal("B", "call7", offer, true))
	got := a.eventsOfType(t, EvtVideoCallSignal)
	require.Len(t, got, 1)
	assert.Equal(t, "offer-blob", got[0]["signal"].(map[string]any)["sdp"])
	assert.Equal(t, true, got[0]["isInitiator"])

	answer := json.RawMessage(`{"sdp":"answer-blob"}`)
	require.NoError(t, s.VideoCallSignal("A", "call7", answer, false))
	got = b.eventsOfType(t, EvtVideoCallSignal)
	require.Len(t, got, 1)
	assert.Equal(t, "answer-blob", got[0]["signal"].(map[string]any)["sdp"])
	assert.Equal(t, false, got[0]["isInitiator"])

	assert.Equal(t, core.CallActive, s.Rooms.CallState("call7"))
}

func TestSwitchboard_RepeatCallJoinDoesNotResetCall(t *testing.T) {
	s := NewSwitchboard()
	a := attach(s, "A")
	b := attach(s, "B")

	require.NoError(t, s.JoinVideoCall("A", "call7"))
	require.NoError(t, s.JoinVideoCall("B", "call7"))
	require.NoError(t, s.VideoCallSignal("B", "call7", json.RawMessage(`{"sdp":"offer"}`), true))
	require.NoError(t, s.VideoCallSignal("A", "call7", json.RawMessage(`{"sdp":"answer"}`), false))
	require.Equal(t, core.CallActive, s.Rooms.CallState("call7"))

	// A retries the join while the call is up. The handshake stays active,
	// A is told to wait again, and B hears nothing new.
	require.NoError(t, s.JoinVideoCall("A", "call7"))
	assert.Equal(t, core.CallActive, s.Rooms.CallState("call7"))
	assert.Len(t, a.eventsOfType(t, EvtWaitForCall), 2)
	assert.Empty(t, a.eventsOfType(t, EvtInitiateCall))
	assert.Len(t, b.eventsOfType(t, EvtInitiateCall), 1)

	// Same for the initiator's retry.
	require.NoError(t, s.JoinVideoCall("B", "call7"))
	assert.Equal(t, core.CallActive, s.Rooms.CallState("call7"))
	assert.Len(t, b.eventsOfType(t, EvtInitiateCall), 2)
}

func TestSwitchboard_CallJoinInCrowdedChatRoomStaysSilent(t *testing.T) {
	s := NewSwitchboard()
	attach(s, "A")
	attach(s, "B")
	attach(s, "C")
	d := attach(s, "D")

	s.JoinChat("A", "chat42")
	s.JoinChat("B", "chat42")
	s.JoinChat("C", "chat42")

	// No call session can start, so no control event is owed.
	require.NoError(t, s.JoinVideoCall("D", "chat42"))
	assert.Empty(t, d.frames(t))
	assert.True(t, s.Rooms.Contains("chat42", "D"))
	assert.Equal(t, core.CallIdle, s.Rooms.CallState("chat42"))
}

func TestSwitchboard_ThirdJoinerRejected(t *testing.T) {
	s := NewSwitchboard()
	attach(s, "A")
	attach(s, "B")
	c := attach(s, "C")

	require.NoError(t, s.JoinVideoCall("A", "call7"))
	require.NoError(t, s.JoinVideoCall("B", "call7"))

	err := s.JoinVideoCall("C", "call7")
	assert.ErrorIs(t, err, domain.ErrCallFull)
	assert.Empty(t, c.frames(t))
}

func TestSwitchboard_EndCallNotifiesPeer(t *testing.T) {
	s := NewSwitchboard()
	a := attach(s, "A")
	b := attach(s, "B")

	require.NoError(t, s.JoinVideoCall("A", "call7"))
	require.NoError(t, s.JoinVideoCall("B", "call7"))

	require.NoError(t, s.EndCall("A", "call7"))
	assert.Len(t, b.eventsOfType(t, EvtCallEnded), 1)
	assert.Empty(t, a.eventsOfType(t, EvtCallEnded))
}

func TestSwitchboard_DisconnectMidCallNotifiesPeer(t *testing.T) {
	s := NewSwitchboard()
	attach(s, "A")
	b := attach(s, "B")

	require.NoError(t, s.JoinVideoCall("A", "call7"))
	require.NoError(t, s.JoinVideoCall("B", "call7"))

	s.Detach("A")
	assert.Len(t, b.eventsOfType(t, EvtCallEnded), 1)

	// Detach is exactly-once; a repeat must not re-notify.
	s.Detach("A")
	assert.Len(t, b.eventsOfType(t, EvtCallEnded), 1)
}

func TestSwitchboard_DetachClearsPresence(t *testing.T) {
	s := NewSwitchboard()
	attach(s, "A")

	s.RegisterUser("A", "alice")
	assert.True(t, s.Online("alice"))

	s.Detach("A")
	assert.False(t, s.Online("alice"))
}

func TestSwitchboard_RegisterLastWriteWins(t *testing.T) {
	s := NewSwitchboard()
	attach(s, "A1")
	attach(s, "A2")

	s.RegisterUser("A1", "alice")
	s.RegisterUser("A2", "alice")
	assert.True(t, s.Online("alice"))

	// The stale session disconnecting must not knock alice offline.
	s.Detach("A1")
	assert.True(t, s.Online("alice"))

	s.Detach("A2")
	assert.False(t, s.Online("alice"))
}

func TestSwitchboard_ReapIdleCallsNotifiesMembers(t *testing.T) {
	s := NewSwitchboard()
	a := attach(s, "A")
	b := attach(s, "B")

	require.NoError(t, s.JoinVideoCall("A", "call7"))
	require.NoError(t, s.JoinVideoCall("B", "call7"))

	// Zero tolerance: everything currently idle is reaped.
	n := s.ReapIdleCalls(0)
	assert.Equal(t, 1, n)
	assert.Len(t, a.eventsOfType(t, EvtCallEnded), 1)
	assert.Len(t, b.eventsOfType(t, EvtCallEnded), 1)
}
