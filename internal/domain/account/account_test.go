package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGuestAccount(t *testing.T) {
	account, err := NewGuestAccount("device-1", "", "")
	require.NoError(t, err)

	assert.NotEmpty(t, account.ID.String())
	assert.NotEmpty(t, account.UserID.String())
	assert.Equal(t, "device-1", account.DeviceID)
	assert.Equal(t, "Guest User", account.Name)
	assert.False(t, account.HasPin())
}

func TestNewGuestAccountRequiresDevice(t *testing.T) {
	_, err := NewGuestAccount("", "", "")
	assert.Error(t, err)
}

func TestDevicePin(t *testing.T) {
	account, err := NewGuestAccount("device-1", "Alice", "4921")
	require.NoError(t, err)

	assert.True(t, account.HasPin())
	assert.True(t, account.CheckPin("4921"))
	assert.False(t, account.CheckPin("0000"))
	assert.False(t, account.CheckPin(""))
}

func TestPinTooShort(t *testing.T) {
	_, err := NewGuestAccount("device-1", "Alice", "12")
	assert.Error(t, err)
}

func TestAccountWithoutPinAcceptsAnything(t *testing.T) {
	account, err := NewGuestAccount("device-1", "", "")
	require.NoError(t, err)

	assert.True(t, account.CheckPin(""))
	assert.True(t, account.CheckPin("whatever"))
}

func TestMemoryRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	account, err := NewGuestAccount("device-1", "Alice", "")
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, account))

	byDevice, err := repo.GetByDeviceID(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, account.UserID, byDevice.UserID)

	byUser, err := repo.GetByUserID(ctx, account.UserID)
	require.NoError(t, err)
	assert.Equal(t, "device-1", byUser.DeviceID)

	// Duplicate device
	dup, err := NewGuestAccount("device-1", "Mallory", "")
	require.NoError(t, err)
	assert.Error(t, repo.Insert(ctx, dup))

	_, err = repo.GetByDeviceID(ctx, "device-2")
	assert.Error(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret-key", "seeing-helper", time.Hour)

	account, err := NewGuestAccount("device-1", "Alice", "")
	require.NoError(t, err)

	token, err := svc.GenerateToken(account)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, account.UserID.String(), claims.UserID)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "seeing-helper", claims.Issuer)
}

func TestJWTRejectsWrongKey(t *testing.T) {
	svc := NewJWTService("test-secret-key", "seeing-helper", time.Hour)
	other := NewJWTService("another-secret", "seeing-helper", time.Hour)

	account, err := NewGuestAccount("device-1", "Alice", "")
	require.NoError(t, err)

	token, err := svc.GenerateToken(account)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTRejectsExpired(t *testing.T) {
	svc := NewJWTService("test-secret-key", "seeing-helper", -time.Minute)

	account, err := NewGuestAccount("device-1", "Alice", "")
	require.NoError(t, err)

	token, err := svc.GenerateToken(account)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
