package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/GuideNet/GuideNet/internal/domain"
)

// Presence maps a stable user identity to its current session. A user has at
// most one live session at a time; registering again overwrites the previous
// entry (last writer wins).
type Presence struct {
	mu     sync.RWMutex
	byUser map[domain.UserID]SessionID
	bySID  map[SessionID]map[domain.UserID]struct{}
}

func NewPresence() *Presence {
	return &Presence{
		byUser: make(map[domain.UserID]SessionID),
		bySID:  make(map[SessionID]map[domain.UserID]struct{}),
	}
}

func (p *Presence) Register(uid domain.UserID, sid SessionID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.byUser[uid]; ok && prev != sid {
		p.dropLocked(prev, uid)
	}
	p.byUser[uid] = sid
	users, ok := p.bySID[sid]
	if !ok {
		users = make(map[domain.UserID]struct{})
		p.bySID[sid] = users
	}
	users[uid] = struct{}{}
	log.Info().Str("module", "core.presence").Str("user", string(uid)).Str("sid", string(sid)).Msg("registered")
}

// Lookup returns the live session for an identity, if any.
func (p *Presence) Lookup(uid domain.UserID) (SessionID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	sid, ok := p.byUser[uid]
	return sid, ok
}

// Unregister removes every identity entry pointing at the session. Safe to
// call for a session that was never registered.
func (p *Presence) Unregister(sid SessionID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for uid := range p.bySID[sid] {
		if p.byUser[uid] == sid {
			delete(p.byUser, uid)
		}
	}
	delete(p.bySID, sid)
}

func (p *Presence) dropLocked(sid SessionID, uid domain.UserID) {
	if users, ok := p.bySID[sid]; ok {
		delete(users, uid)
		if len(users) == 0 {
			delete(p.bySID, sid)
		}
	}
}
