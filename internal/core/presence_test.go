package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GuideNet/GuideNet/internal/domain"
)

func TestPresence_LastWriteWins(t *testing.T) {
	p := NewPresence()

	p.Register("alice", "conn-1")
	p.Register("alice", "conn-2")

	sid, ok := p.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, SessionID("conn-2"), sid)

	// The replaced session no longer owns the identity; removing it must not
	// disturb the new registration.
	p.Unregister("conn-1")
	sid, ok = p.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, SessionID("conn-2"), sid)
}

func TestPresence_UnregisterRemovesAllIdentities(t *testing.T) {
	p := NewPresence()

	p.Register("alice", "conn-1")
	p.Register("bob", "conn-1")
	p.Register("carol", "conn-2")

	p.Unregister("conn-1")

	_, ok := p.Lookup("alice")
	assert.False(t, ok)
	_, ok = p.Lookup("bob")
	assert.False(t, ok)
	_, ok = p.Lookup("carol")
	assert.True(t, ok)
}

func TestPresence_UnregisterIdempotent(t *testing.T) {
	p := NewPresence()

	p.Register("alice", "conn-1")
	p.Unregister("conn-1")
	assert.NotPanics(t, func() {
		p.Unregister("conn-1")
		p.Unregister("never-registered")
	})
}

func TestPresence_LookupOffline(t *testing.T) {
	p := NewPresence()
	_, ok := p.Lookup(domain.UserID("ghost"))
	assert.False(t, ok)
}
