package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funneltrack/internal/auth"
	"funneltrack/internal/testsupport"
	"funneltrack/internal/users"
)

func TestIssueAndVerifySession(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	user := testsupport.CreateTestUserForAuth(t, db, "session@example.com", "test-password", users.RoleAdmin)

	token, err := auth.IssueSession(db, logger, user, "203.0.113.10", "Mozilla/5.0 Test Browser")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	verified, err := auth.VerifySession(db, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.UserID)
	assert.Equal(t, "session@example.com", verified.Email)
	assert.Equal(t, users.RoleAdmin, verified.Role)
	assert.NotEmpty(t, verified.SessionID)

	var session auth.AdminSession
	require.NoError(t, db.Where("session_token = ?", token).First(&session).Error)
	assert.True(t, session.IsActive)
	assert.Equal(t, "203.0.113.10", session.IPAddress)
	assert.True(t, session.ExpiresAt.After(time.Now().UTC()))
}

func TestVerifySessionRejectsGarbage(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	_, err := auth.VerifySession(db, "")
	assert.ErrorIs(t, err, auth.ErrInvalidSession)

	_, err = auth.VerifySession(db, "not-a-jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidSession)

	// Structurally valid JWT signed with a different key.
	forged := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9." +
		"eyJ1c2VyX2lkIjoxLCJzZXNzaW9uX2lkIjoieCJ9." +
		"dGhpcy1pcy1ub3QtYS12YWxpZC1zaWduYXR1cmU"
	_, err = auth.VerifySession(db, forged)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)
}

func TestRevokeSessionInvalidatesToken(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	user := testsupport.CreateTestUserForAuth(t, db, "revoke@example.com", "test-password", users.RoleAdmin)

	token, err := auth.IssueSession(db, logger, user, "203.0.113.10", "ua")
	require.NoError(t, err)

	_, err = auth.VerifySession(db, token)
	require.NoError(t, err)

	require.NoError(t, auth.RevokeSession(db, logger, token))
	_, err = auth.VerifySession(db, token)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)

	// Idempotent, including for unknown tokens.
	assert.NoError(t, auth.RevokeSession(db, logger, token))
	assert.NoError(t, auth.RevokeSession(db, logger, "unknown-token"))
	assert.NoError(t, auth.RevokeSession(db, logger, ""))
}

func TestRevokeUserSessions(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	user := testsupport.CreateTestUserForAuth(t, db, "revokeall@example.com", "test-password", users.RoleAdmin)

	t1, err := auth.IssueSession(db, logger, user, "203.0.113.10", "ua1")
	require.NoError(t, err)
	t2, err := auth.IssueSession(db, logger, user, "203.0.113.11", "ua2")
	require.NoError(t, err)

	require.NoError(t, auth.RevokeUserSessions(db, logger, user.ID))

	_, err = auth.VerifySession(db, t1)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)
	_, err = auth.VerifySession(db, t2)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)
}

func TestVerifySessionRejectsDeactivatedUser(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	user := testsupport.CreateTestUserForAuth(t, db, "disabled@example.com", "test-password", users.RoleAdmin)

	token, err := auth.IssueSession(db, logger, user, "203.0.113.10", "ua")
	require.NoError(t, err)

	require.NoError(t, db.Model(&users.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)

	_, err = auth.VerifySession(db, token)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)
}

func TestSweepExpiredSessions(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	user := testsupport.CreateTestUserForAuth(t, db, "sweep@example.com", "test-password", users.RoleAdmin)

	token, err := auth.IssueSession(db, logger, user, "203.0.113.10", "ua")
	require.NoError(t, err)

	// Force the session past its expiry.
	require.NoError(t, db.Model(&auth.AdminSession{}).
		Where("session_token = ?", token).
		Update("expires_at", time.Now().UTC().Add(-time.Hour)).Error)

	deleted, err := auth.SweepExpiredSessions(db, logger)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = auth.VerifySession(db, token)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)

	deleted, err = auth.SweepExpiredSessions(db, logger)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}
