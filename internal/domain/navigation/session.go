package navigation

import (
	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
)

// Session is one user's active navigation. It owns the route steps and the
// cursor; nothing else mutates them. Generation increments on every stop or
// route replacement so deferred speech scheduled for an older generation can
// recognize it is stale and stay silent.
type Session struct {
	UserID       string           `json:"user_id"`
	Route        *Route           `json:"route"`
	Cursor       int              `json:"cursor"`
	Active       bool             `json:"active"`
	VoiceEnabled bool             `json:"voice_enabled"`
	Generation   uint64           `json:"generation"`
	LastPosition *shared.GeoPoint `json:"last_position,omitempty"`
	StartedAt    shared.Timestamp `json:"started_at"`
}

// NewSession creates an idle session for a user
func NewSession(userID string) *Session {
	return &Session{
		UserID:       userID,
		VoiceEnabled: true,
	}
}

// Begin installs a freshly computed route and starts guiding
func (s *Session) Begin(route *Route) error {
	if route.IsEmpty() {
		return shared.ErrInvalidInput("route has no steps")
	}
	s.Route = route
	s.Cursor = 0
	s.Active = true
	s.Generation++
	s.LastPosition = nil
	s.StartedAt = shared.NewTimestamp()
	return nil
}

// Stop ends guidance: the route is cleared, the cursor reset, and any
// pending deferred announcement invalidated. Idempotent.
func (s *Session) Stop() {
	if !s.Active && s.Route == nil {
		return
	}
	s.Route = nil
	s.Cursor = 0
	s.Active = false
	s.Generation++
}

// Complete marks arrival: guidance ends but the route stays readable for the
// final banner. Idempotent.
func (s *Session) Complete() {
	if !s.Active {
		return
	}
	s.Active = false
	s.Generation++
}

// SetVoice toggles spoken guidance. Turning voice off also invalidates
// pending deferred announcements. Idempotent.
func (s *Session) SetVoice(enabled bool) {
	if s.VoiceEnabled == enabled {
		return
	}
	s.VoiceEnabled = enabled
	if !enabled {
		s.Generation++
	}
}

// RecordPosition stores the most recent live fix
func (s *Session) RecordPosition(p shared.GeoPoint) {
	s.LastPosition = &p
}

// CurrentStep returns the step under the cursor, or nil when out of range
func (s *Session) CurrentStep() *RouteStep {
	if s.Route.IsEmpty() || s.Cursor < 0 || s.Cursor >= len(s.Route.Steps) {
		return nil
	}
	return &s.Route.Steps[s.Cursor]
}
