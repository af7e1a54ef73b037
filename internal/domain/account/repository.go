package account

import (
	"context"
)

// Repository defines the interface for account access
type Repository interface {
	// Insert stores a new account
	Insert(ctx context.Context, account *Account) error

	// GetByDeviceID retrieves the account bound to a device, or a not-found
	// error when the device has never logged in
	GetByDeviceID(ctx context.Context, deviceID string) (*Account, error)

	// GetByUserID retrieves an account by its user ID
	GetByUserID(ctx context.Context, userID UserID) (*Account, error)
}
