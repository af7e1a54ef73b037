package account

import (
	"context"
	"sync"

	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
)

// MemoryRepository is the in-process account store. Accounts live only in
// memory for the process lifetime; there is no persisted layout.
type MemoryRepository struct {
	mu       sync.RWMutex
	byDevice map[string]*Account
	byUser   map[UserID]*Account
}

// NewMemoryRepository creates a new in-memory account repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byDevice: make(map[string]*Account),
		byUser:   make(map[UserID]*Account),
	}
}

// Insert stores a new account
func (r *MemoryRepository) Insert(_ context.Context, account *Account) error {
	if account == nil {
		return shared.ErrInvalidInput("account cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byDevice[account.DeviceID]; exists {
		return shared.ErrAlreadyExists("account for device")
	}

	clone := *account
	r.byDevice[account.DeviceID] = &clone
	r.byUser[account.UserID] = &clone
	return nil
}

// GetByDeviceID retrieves the account bound to a device
func (r *MemoryRepository) GetByDeviceID(_ context.Context, deviceID string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.byDevice[deviceID]
	if !exists {
		return nil, shared.ErrNotFound("account")
	}
	clone := *account
	return &clone, nil
}

// GetByUserID retrieves an account by its user ID
func (r *MemoryRepository) GetByUserID(_ context.Context, userID UserID) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.byUser[userID]
	if !exists {
		return nil, shared.ErrNotFound("account")
	}
	clone := *account
	return &clone, nil
}
