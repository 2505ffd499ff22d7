package storage

import (
	"log/slog"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/idealab/internal/session"
)

// SessionStore keeps every logged-in studio view in memory. Nothing survives a restart.
type SessionStore struct {
	sessions map[string]*session.View
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session.View),
	}
}

func (s *SessionStore) Get(sessionID string) (*session.View, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	view, exists := s.sessions[sessionID]
	return view, exists
}

func (s *SessionStore) Set(sessionID string, view *session.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = view
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdle removes views untouched since cutoff and returns how many went.
// Views with a request in flight are kept.
func (s *SessionStore) EvictIdle(cutoff time.Time) int {
	s.mu.RLock()
	var stale []string
	for id, view := range s.sessions {
		if view.LastActive().Before(cutoff) && !view.InFlight() {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range stale {
		s.Delete(id)
	}
	if len(stale) > 0 {
		slog.Info("Evicted idle sessions", "count", len(stale), "remaining", s.Len())
	}
	return len(stale)
}
