package server

import (
	"sync"
	"time"

	"seo_enricher/flow"
)

// DefaultSessionTTL is how long an idle browser session is kept.
const DefaultSessionTTL = 30 * time.Minute

type sessionEntry struct {
	ctrl     *flow.Controller
	lastUsed time.Time
}

// sessionStore keeps one controller per browser. Entries idle for longer
// than ttl are dropped on the next set.
type sessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*sessionEntry
}

func newStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

func (s *sessionStore) set(id string, c *flow.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	s.sessions[id] = &sessionEntry{ctrl: c, lastUsed: now}
}

func (s *sessionStore) get(id string) (*flow.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(e, now) {
		delete(s.sessions, id)
		return nil, false
	}
	e.lastUsed = now
	return e.ctrl, true
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sweep must be called with mu held.
func (s *sessionStore) sweep(now time.Time) {
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
		}
	}
}

// expired reports whether e has been idle past ttl. Sessions still
// generating are never expired.
func (s *sessionStore) expired(e *sessionEntry, now time.Time) bool {
	return now.Sub(e.lastUsed) > s.ttl && !e.ctrl.State().Processing
}
