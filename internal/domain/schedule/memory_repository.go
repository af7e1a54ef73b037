package schedule

import (
	"context"
	"sort"
	"sync"

	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
)

// MemoryRepository is the in-process schedule store. Schedules live only in
// memory for the process lifetime; there is no persisted layout.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[ItemID]*Item
}

// NewMemoryRepository creates a new in-memory schedule repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[ItemID]*Item),
	}
}

// Insert stores a new item
func (r *MemoryRepository) Insert(_ context.Context, item *Item) error {
	if item == nil {
		return shared.ErrInvalidInput("item cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return shared.ErrAlreadyExists("schedule item")
	}
	r.items[item.ID] = item.Clone()
	return nil
}

// GetByID retrieves a copy of an item by ID
func (r *MemoryRepository) GetByID(_ context.Context, id ItemID) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		return nil, shared.ErrNotFound("schedule item")
	}
	return item.Clone(), nil
}

// ListByUser retrieves copies of all items owned by a user, ordered by time
// of day then creation order.
func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*Item, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			items = append(items, item.Clone())
		}
	}
	sortItems(items)
	return items, nil
}

// Delete removes an item owned by the given user
func (r *MemoryRepository) Delete(_ context.Context, userID string, id ItemID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[id]
	if !exists || item.UserID != userID {
		return shared.ErrNotFound("schedule item")
	}
	delete(r.items, id)
	return nil
}

// WithItems runs fn over the user's live items under the collection lock
func (r *MemoryRepository) WithItems(_ context.Context, userID string, fn func(items []*Item)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]*Item, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	sortItems(items)
	fn(items)
	return nil
}

// Users returns the IDs of all users that currently own items
func (r *MemoryRepository) Users(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	users := make([]string, 0)
	for _, item := range r.items {
		if !seen[item.UserID] {
			seen[item.UserID] = true
			users = append(users, item.UserID)
		}
	}
	sort.Strings(users)
	return users, nil
}

func sortItems(items []*Item) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Time.Hour != b.Time.Hour {
			return a.Time.Hour < b.Time.Hour
		}
		if a.Time.Minute != b.Time.Minute {
			return a.Time.Minute < b.Time.Minute
		}
		return a.CreatedAt.Value().Before(b.CreatedAt.Value())
	})
}
