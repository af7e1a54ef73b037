package schedule

import (
	"context"
)

// Repository defines the interface for schedule collection access.
//
// The reminder clock goroutine and the HTTP handlers share one collection
// per user, so unlike the aggregate itself the repository must be safe for
// concurrent use. Mutations go through callbacks so the one-way notice flag
// transitions stay atomic, following the IoC repository pattern used
// throughout this codebase.
type Repository interface {
	// Insert stores a new item
	Insert(ctx context.Context, item *Item) error

	// GetByID retrieves a copy of an item by ID
	GetByID(ctx context.Context, id ItemID) (*Item, error)

	// ListByUser retrieves copies of all items owned by a user
	ListByUser(ctx context.Context, userID string) ([]*Item, error)

	// Delete removes an item owned by the given user
	Delete(ctx context.Context, userID string, id ItemID) error

	// WithItems runs fn over the user's live items under the collection
	// lock. fn may mutate the items in place; it must not retain them.
	WithItems(ctx context.Context, userID string, fn func(items []*Item)) error

	// Users returns the IDs of all users that currently own items
	Users(ctx context.Context) ([]string, error)
}
