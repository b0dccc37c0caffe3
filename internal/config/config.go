// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Database types
const (
	SQLiteDatabase = "sqlite"
)

// defaultSigningKey is the out-of-the-box placeholder. Analytics endpoints treat the
// system as unconfigured while it is still in place outside development/test.
const defaultSigningKey = "88888888888888888888888888888888"

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName                    string   `mapstructure:"appname"`
	AppPort                    string   `mapstructure:"appport"`
	Environment                string   `mapstructure:"environment"`
	LogLevel                   LogLevel `mapstructure:"loglevel"`
	SigningKey                 string   `mapstructure:"signingkey"`
	AdminEmail                 string   `mapstructure:"adminemail"`
	Domain                     string   `mapstructure:"domain"`
	LoginSessionTimeoutSeconds int      `mapstructure:"loginsessiontimeoutseconds"`
	MaxFailedLogins            int      `mapstructure:"maxfailedlogins"`
	LoginLockoutSeconds        int      `mapstructure:"loginlockoutseconds"`

	// File paths
	DatabasePath string `mapstructure:"storagepath"`
	DatabaseName string `mapstructure:"-"` // Derived from other settings
	GeoDBPath    string `mapstructure:"geodbpath"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseType         string `mapstructure:"dbtype"`
	DatabaseMaxOpenConns int    `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int    `mapstructure:"dbmaxidleconns"`

	// Job scheduling settings
	JobIntervalSeconds int `mapstructure:"jobintervalseconds"`

	// Data retention settings
	TrackedEventsRetentionDays int `mapstructure:"trackedeventsretentiondays"`

	// Analytics query defaults
	AnalyticsDefaultDays  int `mapstructure:"analyticsdefaultdays"`
	AnalyticsDefaultLimit int `mapstructure:"analyticsdefaultlimit"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		// Set defaults
		v.SetDefault("appname", "funneltrack")
		v.SetDefault("appport", "3000")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("signingkey", defaultSigningKey)
		v.SetDefault("loginsessiontimeoutseconds", 28800) // 8 hours
		v.SetDefault("maxfailedlogins", 5)
		v.SetDefault("loginlockoutseconds", 3600)
		v.SetDefault("storagepath", "storage")
		v.SetDefault("geodbpath", "storage/GeoLite2-City.mmdb")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbtype", SQLiteDatabase)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)
		v.SetDefault("jobintervalseconds", 3600)
		v.SetDefault("trackedeventsretentiondays", 90)
		v.SetDefault("analyticsdefaultdays", 7)
		v.SetDefault("analyticsdefaultlimit", 100)

		// Bind environment variables
		v.BindEnv("appname", "FUNNELTRACK_APP_NAME")
		v.BindEnv("appport", "FUNNELTRACK_APP_PORT")
		v.BindEnv("environment", "FUNNELTRACK_ENV")
		v.BindEnv("loglevel", "FUNNELTRACK_LOG_LEVEL")
		v.BindEnv("signingkey", "FUNNELTRACK_SIGNING_KEY")
		v.BindEnv("adminemail", "FUNNELTRACK_ADMIN_EMAIL")
		v.BindEnv("domain", "FUNNELTRACK_DOMAIN")
		v.BindEnv("loginsessiontimeoutseconds", "FUNNELTRACK_LOGIN_SESSION_TIMEOUT_SECONDS")
		v.BindEnv("maxfailedlogins", "FUNNELTRACK_MAX_FAILED_LOGINS")
		v.BindEnv("loginlockoutseconds", "FUNNELTRACK_LOGIN_LOCKOUT_SECONDS")
		v.BindEnv("storagepath", "FUNNELTRACK_STORAGE_PATH")
		v.BindEnv("geodbpath", "FUNNELTRACK_GEO_DB_PATH")
		v.BindEnv("logsdir", "FUNNELTRACK_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "FUNNELTRACK_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "FUNNELTRACK_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "FUNNELTRACK_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbtype", "FUNNELTRACK_DB_TYPE")
		v.BindEnv("dbmaxopenconns", "FUNNELTRACK_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "FUNNELTRACK_DB_MAX_IDLE_CONNS")
		v.BindEnv("jobintervalseconds", "FUNNELTRACK_JOB_INTERVAL_SECONDS")
		v.BindEnv("trackedeventsretentiondays", "FUNNELTRACK_TRACKED_EVENTS_RETENTION_DAYS")
		v.BindEnv("analyticsdefaultdays", "FUNNELTRACK_ANALYTICS_DEFAULT_DAYS")
		v.BindEnv("analyticsdefaultlimit", "FUNNELTRACK_ANALYTICS_DEFAULT_LIMIT")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		// Validate
		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}

		// Set derived values
		cfg.DatabaseName = cfg.GetDatabasePath()

		if cfg.SigningKey == "" {
			log.Fatal("Signing key is required")
		}
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validDBTypes := map[string]bool{
		SQLiteDatabase: true,
	}
	if !validDBTypes[c.DatabaseType] {
		return fmt.Errorf("invalid database type: %s", c.DatabaseType)
	}

	return nil
}

// IsConfigured reports whether the analytics system has been set up. In production the
// placeholder signing key means the operator never configured the instance; analytics
// and admin operations short-circuit with a "not configured" response instead of
// touching the database.
func (c *Config) IsConfigured() bool {
	if c.Environment == Production {
		return c.SigningKey != defaultSigningKey && c.SigningKey != ""
	}
	return c.SigningKey != ""
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.DatabasePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetPort returns the HTTP server port (implements cartridge.Config interface).
func (c *Config) GetPort() string {
	return c.AppPort
}

// GetPublicDirectory returns the path to public/static assets (implements cartridge.Config interface).
// The application serves no static assets, so this is empty and cartridge skips static mounting.
func (c *Config) GetPublicDirectory() string {
	return ""
}

// GetAssetsPrefix returns the URL prefix for static assets (implements cartridge.Config interface).
func (c *Config) GetAssetsPrefix() string {
	return ""
}

// GetAppName returns the application name (implements cartridge.FactoryConfig interface).
func (c *Config) GetAppName() string {
	return c.AppName
}

// DatabaseDSN returns the database connection string (implements cartridge.FactoryConfig interface).
func (c *Config) DatabaseDSN() string {
	return c.GetDatabasePath()
}

// GetSessionSecret returns the session token signing key (implements cartridge.FactoryConfig interface).
func (c *Config) GetSessionSecret() string {
	return c.SigningKey
}

// GetLoginSessionTimeout returns the admin login session timeout in seconds.
func (c *Config) GetLoginSessionTimeout() int {
	return c.LoginSessionTimeoutSeconds
}

// SessionCookieName returns the cookie holding the admin session token.
func (c *Config) SessionCookieName() string {
	return c.AppName + "_session"
}

// GetMaxOpenConns returns the appropriate MaxOpenConns value based on environment.
// If explicitly set via env var, uses that value. Otherwise:
// - Test: 1 (required for E2E test stability)
// - Development/Production: 10 (allows concurrent reads for parallel analytics queries)
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}

	if c.Environment == Test {
		return 1
	}

	return 10
}

// GetMaxIdleConns returns the appropriate MaxIdleConns value based on environment.
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}

	if c.Environment == Test {
		return 1
	}

	return 5
}

// GetLogLevel returns the log level as a string (implements cartridge.LogConfigProvider).
func (c *Config) GetLogLevel() string {
	return string(c.LogLevel)
}

// GetLogDirectory returns the logs directory (implements cartridge.LogConfigProvider).
func (c *Config) GetLogDirectory() string {
	return c.LogsDirectory
}

// GetLogMaxSizeMB returns the max log file size in MB (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxSizeMB() int {
	return c.LogsMaxSizeInMb
}

// GetLogMaxBackups returns the max number of log backups (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxBackups() int {
	return c.LogsMaxBackups
}

// GetLogMaxAgeDays returns the max age in days for log files (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxAgeDays() int {
	return c.LogsMaxAgeInDays
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
