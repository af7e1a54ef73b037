package account

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
)

// AccountID represents a unique account identifier
type AccountID shared.ID

// NewAccountID creates a new account ID
func NewAccountID() AccountID {
	return AccountID(shared.NewID())
}

// String returns string representation
func (id AccountID) String() string {
	return string(id)
}

// UserID represents the identifier the assist domain keys everything on
type UserID shared.ID

// NewUserID creates a new user ID
func NewUserID() UserID {
	return UserID(shared.NewID())
}

// String returns string representation
func (id UserID) String() string {
	return string(id)
}

// Account is a guest account bound to one device. There is no registration
// flow: the first login from a device creates the account, later logins from
// the same device resume it. A PIN is optional; once set it gates every
// re-login from that device.
type Account struct {
	ID        AccountID        `json:"id"`
	UserID    UserID           `json:"user_id"`
	DeviceID  string           `json:"device_id"`
	Name      string           `json:"name"`
	PinHash   []byte           `json:"-"`
	CreatedAt shared.Timestamp `json:"created_at"`
	UpdatedAt shared.Timestamp `json:"updated_at"`
}

// NewGuestAccount creates a guest account for a device. pin may be empty.
func NewGuestAccount(deviceID, name, pin string) (*Account, error) {
	if deviceID == "" {
		return nil, shared.ErrInvalidInput("device ID cannot be empty")
	}
	if name == "" {
		name = "Guest User"
	}

	timestamp := shared.NewTimestamp()
	account := &Account{
		ID:        NewAccountID(),
		UserID:    NewUserID(),
		DeviceID:  deviceID,
		Name:      name,
		CreatedAt: timestamp,
		UpdatedAt: timestamp,
	}

	if pin != "" {
		if err := account.SetPin(pin); err != nil {
			return nil, err
		}
	}

	return account, nil
}

// HasPin reports whether re-logins from this device require a PIN
func (a *Account) HasPin() bool {
	return len(a.PinHash) > 0
}

// SetPin hashes and installs a device PIN
func (a *Account) SetPin(pin string) error {
	if len(pin) < 4 {
		return shared.ErrInvalidInput("PIN must be at least 4 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return shared.WrapDomainError(err, shared.ErrCodeInvalidInput, "failed to hash PIN")
	}

	a.PinHash = hash
	a.UpdatedAt = shared.NewTimestamp()
	return nil
}

// CheckPin verifies a PIN against the stored hash. Accounts without a PIN
// accept any input.
func (a *Account) CheckPin(pin string) bool {
	if !a.HasPin() {
		return true
	}
	return bcrypt.CompareHashAndPassword(a.PinHash, []byte(pin)) == nil
}
