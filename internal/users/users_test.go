package users_test

import (
	"testing"
	"time"

	"github.com/karloscodes/cartridge/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funneltrack/internal/testsupport"
	"funneltrack/internal/users"
)

func TestCreateAdminUser(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	require.NoError(t, users.CreateAdminUser(db, "admin@example.com", "s3cret-pass", users.RoleAdmin))

	user, err := users.FindByEmail(db, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, users.RoleAdmin, user.Role)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsSuperAdmin())
	assert.NotEqual(t, "s3cret-pass", user.EncryptedPassword)
	assert.NoError(t, crypto.VerifyPassword(user.EncryptedPassword, "s3cret-pass"))

	// Creating the same user again fails.
	err = users.CreateAdminUser(db, "admin@example.com", "other", users.RoleAdmin)
	assert.ErrorIs(t, err, users.ErrUserExists)
}

func TestCreateAdminUserValidation(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	assert.Error(t, users.CreateAdminUser(db, "", "pass", users.RoleAdmin))
	assert.Error(t, users.CreateAdminUser(db, "x@example.com", "", users.RoleAdmin))
	assert.Error(t, users.CreateAdminUser(db, "x@example.com", "pass", "root"))
}

func TestChangePassword(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	require.NoError(t, users.CreateAdminUser(db, "change@example.com", "old-pass", users.RoleAdmin))

	require.NoError(t, users.ChangePassword(db, "change@example.com", "new-pass"))

	user, err := users.FindByEmail(db, "change@example.com")
	require.NoError(t, err)
	assert.NoError(t, crypto.VerifyPassword(user.EncryptedPassword, "new-pass"))
	assert.Error(t, crypto.VerifyPassword(user.EncryptedPassword, "old-pass"))

	assert.Error(t, users.ChangePassword(db, "change@example.com", ""))
	assert.Error(t, users.ChangePassword(db, "nobody@example.com", "pass"))
}

func TestRecordFailedLoginLocksAccount(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	require.NoError(t, users.CreateAdminUser(db, "lock@example.com", "pass", users.RoleAdmin))
	user, err := users.FindByEmail(db, "lock@example.com")
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.NoError(t, users.RecordFailedLogin(db, user, 5, time.Hour))
		assert.False(t, user.IsLocked(time.Now().UTC()), "attempt %d must not lock", i+1)
	}

	require.NoError(t, users.RecordFailedLogin(db, user, 5, time.Hour))

	user, err = users.FindByEmail(db, "lock@example.com")
	require.NoError(t, err)
	assert.Equal(t, 5, user.FailedLoginAttempts)
	assert.True(t, user.IsLocked(time.Now().UTC()))
	assert.False(t, user.IsLocked(time.Now().UTC().Add(2*time.Hour)))
}

func TestRecordSuccessfulLoginResetsCounter(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	require.NoError(t, users.CreateAdminUser(db, "reset@example.com", "pass", users.RoleAdmin))
	user, err := users.FindByEmail(db, "reset@example.com")
	require.NoError(t, err)

	require.NoError(t, users.RecordFailedLogin(db, user, 5, time.Hour))
	require.NoError(t, users.RecordFailedLogin(db, user, 5, time.Hour))

	require.NoError(t, users.RecordSuccessfulLogin(db, user))

	user, err = users.FindByEmail(db, "reset@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, user.FailedLoginAttempts)
	assert.False(t, user.LockedUntil.Valid)
	assert.True(t, user.LastLoginAt.Valid)
	assert.Equal(t, 1, user.LoginCount)
}

func TestSetupAdminUserIfNotExists(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	users.SetupAdminUserIfNotExists(db, "seed@example.com")
	user, err := users.FindByEmail(db, "seed@example.com")
	require.NoError(t, err)
	assert.Equal(t, users.RoleSuperAdmin, user.Role)
	assert.True(t, user.IsSuperAdmin())

	// Idempotent: calling again neither errors nor duplicates.
	users.SetupAdminUserIfNotExists(db, "seed@example.com")
	var count int64
	require.NoError(t, db.Model(&users.User{}).Where("email = ?", "seed@example.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
