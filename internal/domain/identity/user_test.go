package identity

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func TestNewUser(t *testing.T) {
	t.Run("creates active user with normalized email", func(t *testing.T) {
		user, err := NewUser("  Jane Doe ", " Jane@Example.COM ", "Password123")

		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", user.Name)
		assert.Equal(t, "jane@example.com", user.Email)
		assert.Equal(t, UserStatusActive, user.Status)
		assert.NotEqual(t, "Password123", user.PasswordHash)
		assert.True(t, user.VerifyPassword("Password123"))

		events := user.GetDomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*UserRegisteredEvent)
		assert.True(t, ok)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewUser("Jane", "not-an-email", "Password123")

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, shared.CodeValidation, domainErr.Code)
	})

	t.Run("rejects weak password", func(t *testing.T) {
		_, err := NewUser("Jane", "jane@example.com", "password")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "letter and one number")

		_, err = NewUser("Jane", "jane@example.com", "short1")
		assert.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewUser("   ", "jane@example.com", "Password123")
		assert.Error(t, err)
	})
}

func TestUser_LoginLockout(t *testing.T) {
	user, err := NewUser("Jane", "jane@example.com", "Password123")
	require.NoError(t, err)

	for i := 0; i < MaxLoginAttempts-1; i++ {
		assert.False(t, user.RecordLoginFailure())
	}
	assert.NoError(t, user.CheckCanLogin())

	assert.True(t, user.RecordLoginFailure())
	assert.True(t, user.IsLocked())

	err = user.CheckCanLogin()
	assert.True(t, errors.Is(err, shared.NewDomainError(shared.CodeAccountLocked, "")))

	t.Run("lock expires", func(t *testing.T) {
		past := time.Now().Add(-time.Minute)
		user.LockedUntil = &past
		assert.False(t, user.IsLocked())
		assert.NoError(t, user.CheckCanLogin())

		user.RecordLoginSuccess("127.0.0.1")
		assert.Equal(t, UserStatusActive, user.Status)
		assert.Zero(t, user.FailedAttempts)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("failures after an expired lock lock again", func(t *testing.T) {
		locked, err := NewUser("Jim", "jim@example.com", "Password123")
		require.NoError(t, err)
		for i := 0; i < MaxLoginAttempts; i++ {
			locked.RecordLoginFailure()
		}
		require.True(t, locked.IsLocked())

		past := time.Now().Add(-time.Minute)
		locked.LockedUntil = &past

		assert.False(t, locked.RecordLoginFailure())
		assert.Equal(t, UserStatusActive, locked.Status)
		assert.Equal(t, 1, locked.FailedAttempts)

		for i := 0; i < MaxLoginAttempts-2; i++ {
			assert.False(t, locked.RecordLoginFailure())
		}
		assert.True(t, locked.RecordLoginFailure())
		assert.True(t, locked.IsLocked())
		assert.Error(t, locked.CheckCanLogin())
	})
}

func TestUser_SetStatus(t *testing.T) {
	user, err := NewUser("Jane", "jane@example.com", "Password123")
	require.NoError(t, err)
	user.ClearDomainEvents()

	require.NoError(t, user.SetStatus(UserStatusInactive))
	assert.Equal(t, UserStatusInactive, user.Status)
	assert.Len(t, user.GetDomainEvents(), 1)

	err = user.CheckCanLogin()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, shared.CodeAccountInactive, domainErr.Code)

	assert.Error(t, user.SetStatus("banned"))
}

func TestUser_ChangePassword(t *testing.T) {
	user, err := NewUser("Jane", "jane@example.com", "Password123")
	require.NoError(t, err)
	version := user.Version

	err = user.ChangePassword("wrong", "NewPassword456")
	assert.Error(t, err)

	require.NoError(t, user.ChangePassword("Password123", "NewPassword456"))
	assert.True(t, user.VerifyPassword("NewPassword456"))
	assert.Greater(t, user.Version, version)
}

func TestUser_UpdateProfile(t *testing.T) {
	user, err := NewUser("Jane", "jane@example.com", "Password123")
	require.NoError(t, err)

	name := "Jane Smith"
	phone := "+1 555 0100"
	addr := &Address{Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "us"}
	require.NoError(t, user.UpdateProfile(&name, &phone, addr))

	assert.Equal(t, "Jane Smith", user.Name)
	assert.Equal(t, "+1 555 0100", user.Phone)
	assert.Equal(t, "US", user.Address.Country)
}

func TestNewAdmin(t *testing.T) {
	admin, err := NewAdmin("Root", "Root@Shop.io", "Password123", AdminRoleSuperAdmin)
	require.NoError(t, err)
	assert.Equal(t, "root@shop.io", admin.Email)
	assert.True(t, admin.IsActive())
	assert.Equal(t, []string{"*"}, admin.Permissions())

	_, err = NewAdmin("Root", "root@shop.io", "Password123", "owner")
	assert.Error(t, err)
}
