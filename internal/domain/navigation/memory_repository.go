package navigation

import (
	"context"
	"sync"
)

// MemoryRepository is the in-process session store. Navigation state lives
// only in memory for the process lifetime.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewMemoryRepository creates a new in-memory session repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string]*Session),
	}
}

// WithSession runs fn on the user's live session under the lock
func (r *MemoryRepository) WithSession(_ context.Context, userID string, fn func(s *Session)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[userID]
	if !exists {
		s = NewSession(userID)
		r.sessions[userID] = s
	}
	fn(s)
	return nil
}

// Get returns a snapshot copy of the user's session
func (r *MemoryRepository) Get(_ context.Context, userID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[userID]
	if !exists {
		return nil, nil
	}

	snapshot := *s
	if s.Route != nil {
		route := *s.Route
		route.Steps = make([]RouteStep, len(s.Route.Steps))
		copy(route.Steps, s.Route.Steps)
		snapshot.Route = &route
	}
	if s.LastPosition != nil {
		p := *s.LastPosition
		snapshot.LastPosition = &p
	}
	return &snapshot, nil
}
