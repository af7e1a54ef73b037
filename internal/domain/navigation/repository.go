package navigation

import (
	"context"
)

// Repository provides access to per-user navigation sessions.
//
// Position intake and HTTP handlers can touch the same session, so the
// repository serializes access; all mutation happens inside WithSession
// callbacks, following the IoC repository pattern used in this codebase.
type Repository interface {
	// WithSession runs fn on the user's live session under the lock,
	// creating an idle session on first use. fn must not retain the session.
	WithSession(ctx context.Context, userID string, fn func(s *Session)) error

	// Get returns a snapshot copy of the user's session, or nil when the
	// user has never navigated.
	Get(ctx context.Context, userID string) (*Session, error)
}
