package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDefaults(t *testing.T) {
	Reset()
	t.Setenv("FUNNELTRACK_ENV", Test)

	cfg := GetConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "funneltrack", cfg.AppName)
	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, 28800, cfg.LoginSessionTimeoutSeconds)
	assert.Equal(t, 5, cfg.MaxFailedLogins)
	assert.Equal(t, 3600, cfg.LoginLockoutSeconds)
	assert.Equal(t, 90, cfg.TrackedEventsRetentionDays)
	assert.Equal(t, 7, cfg.AnalyticsDefaultDays)
	assert.Equal(t, 100, cfg.AnalyticsDefaultLimit)
	assert.Equal(t, "funneltrack_session", cfg.SessionCookieName())
}

func TestGetConfigEnvOverrides(t *testing.T) {
	Reset()
	t.Setenv("FUNNELTRACK_ENV", Test)
	t.Setenv("FUNNELTRACK_APP_PORT", "8080")
	t.Setenv("FUNNELTRACK_ANALYTICS_DEFAULT_DAYS", "30")

	cfg := GetConfig()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 30, cfg.AnalyticsDefaultDays)
}

func TestIsConfigured(t *testing.T) {
	cfg := &Config{Environment: Production, SigningKey: defaultSigningKey}
	assert.False(t, cfg.IsConfigured())

	cfg.SigningKey = "a-real-operator-chosen-key"
	assert.True(t, cfg.IsConfigured())

	// Outside production the placeholder is acceptable.
	cfg = &Config{Environment: Development, SigningKey: defaultSigningKey}
	assert.True(t, cfg.IsConfigured())

	cfg = &Config{Environment: Development, SigningKey: ""}
	assert.False(t, cfg.IsConfigured())
}

func TestDatabasePathDerivation(t *testing.T) {
	cfg := &Config{AppName: "funneltrack", Environment: Test, DatabasePath: "storage"}
	assert.Equal(t, "storage/funneltrack-test.db", cfg.GetDatabasePath())

	// Derived once, then stable.
	cfg.Environment = Production
	assert.Equal(t, "storage/funneltrack-test.db", cfg.GetDatabasePath())
}

func TestConnectionPoolDefaultsPerEnvironment(t *testing.T) {
	test := &Config{Environment: Test}
	assert.Equal(t, 1, test.GetMaxOpenConns())
	assert.Equal(t, 1, test.GetMaxIdleConns())

	prod := &Config{Environment: Production}
	assert.Equal(t, 10, prod.GetMaxOpenConns())
	assert.Equal(t, 5, prod.GetMaxIdleConns())

	explicit := &Config{Environment: Test, DatabaseMaxOpenConns: 4, DatabaseMaxIdleConns: 2}
	assert.Equal(t, 4, explicit.GetMaxOpenConns())
	assert.Equal(t, 2, explicit.GetMaxIdleConns())
}
