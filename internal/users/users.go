package users

import (
	"database/sql"
	"errors"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/crypto"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
)

// Admin roles. Super admins can additionally modify runtime configuration.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

type User struct {
	ID                  uint   `gorm:"primaryKey"`
	Email               string `gorm:"uniqueIndex"`
	EncryptedPassword   string
	Role                string `gorm:"not null;default:admin"`
	IsActive            bool   `gorm:"not null;default:true"`
	FailedLoginAttempts int    `gorm:"not null;default:0"`
	LockedUntil         sql.NullTime
	LastLoginAt         sql.NullTime
	LoginCount          int       `gorm:"not null;default:0"`
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
}

// ErrUserExists is returned when attempting to create a user that already exists.
var ErrUserExists = errors.New("user already exists")

// ErrUserNotFound is returned when a user lookup fails.
var ErrUserNotFound = gorm.ErrRecordNotFound

// IsSuperAdmin reports whether the user may modify runtime configuration.
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// IsLocked reports whether the account is inside a login lockout window.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil.Valid && now.Before(u.LockedUntil.Time)
}

// FindByEmail retrieves a user by email.
func FindByEmail(db *gorm.DB, email string) (*User, error) {
	var user User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID retrieves a user by ID.
func FindByID(db *gorm.DB, id uint) (*User, error) {
	var user User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateAdminUser creates a new admin user with the supplied credentials.
// It returns ErrUserExists if the user already exists.
func CreateAdminUser(dbConn *gorm.DB, email, password, role string) error {
	if _, err := FindByEmail(dbConn, email); err == nil {
		return ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if email == "" {
		return errors.New("email cannot be empty")
	}
	if password == "" {
		return errors.New("password cannot be empty")
	}
	if role != RoleAdmin && role != RoleSuperAdmin {
		return errors.New("role must be admin or super_admin")
	}

	hashedPassword, err := crypto.GeneratePasswordHash(password)
	if err != nil {
		return err
	}

	newUser := User{
		Email:             email,
		EncryptedPassword: string(hashedPassword),
		Role:              role,
		IsActive:          true,
	}

	logger := slog.Default()
	return sqlite.PerformWrite(logger, dbConn, func(tx *gorm.DB) error {
		return tx.Create(&newUser).Error
	})
}

// ChangePassword updates a user's password given their email.
func ChangePassword(dbConn *gorm.DB, email, password string) error {
	if password == "" {
		return errors.New("password cannot be empty")
	}

	user, err := FindByEmail(dbConn, email)
	if err != nil {
		return err
	}

	hashedPassword, err := crypto.GeneratePasswordHash(password)
	if err != nil {
		return err
	}

	logger := slog.Default()
	return sqlite.PerformWrite(logger, dbConn, func(tx *gorm.DB) error {
		return tx.Model(user).Update("encrypted_password", string(hashedPassword)).Error
	})
}

// RecordFailedLogin increments the failure counter and locks the account once
// maxAttempts is reached.
func RecordFailedLogin(dbConn *gorm.DB, user *User, maxAttempts int, lockout time.Duration) error {
	attempts := user.FailedLoginAttempts + 1
	updates := map[string]any{"failed_login_attempts": attempts}
	if attempts >= maxAttempts {
		updates["locked_until"] = time.Now().UTC().Add(lockout)
	}

	logger := slog.Default()
	err := sqlite.PerformWrite(logger, dbConn, func(tx *gorm.DB) error {
		return tx.Model(user).Updates(updates).Error
	})
	if err != nil {
		return err
	}

	user.FailedLoginAttempts = attempts
	if attempts >= maxAttempts {
		logger.Warn("Account locked after repeated failed logins",
			slog.String("email", user.Email),
			slog.Int("attempts", attempts))
	}
	return nil
}

// RecordSuccessfulLogin clears the failure counter and updates login stats.
func RecordSuccessfulLogin(dbConn *gorm.DB, user *User) error {
	logger := slog.Default()
	return sqlite.PerformWrite(logger, dbConn, func(tx *gorm.DB) error {
		return tx.Model(user).Updates(map[string]any{
			"failed_login_attempts": 0,
			"locked_until":          nil,
			"last_login_at":         time.Now().UTC(),
			"login_count":           gorm.Expr("login_count + 1"),
		}).Error
	})
}

// SetupAdminUserIfNotExists creates a default super admin in the database if it
// doesn't already exist.
func SetupAdminUserIfNotExists(dbConn *gorm.DB, email string) {
	logger := slog.Default()
	hashedPassword, err := crypto.GeneratePasswordHash("password")
	if err != nil {
		logger.Error("Failed to generate password hash", slog.Any("error", err))
		return
	}
	err = sqlite.PerformWrite(logger, dbConn, func(tx *gorm.DB) error {
		return tx.Exec(`
            INSERT INTO users (email, encrypted_password, role, is_active, created_at, updated_at)
            VALUES (?, ?, ?, 1, ?, ?)
            ON CONFLICT(email) DO NOTHING
        `, email, hashedPassword, RoleSuperAdmin, time.Now().UTC(), time.Now().UTC()).Error
	})
	if err != nil {
		logger.Error("Failed to upsert admin user", slog.String("email", email), slog.Any("error", err))
		return
	}
	logger.Info("Ensured admin user exists", slog.String("email", email))
}
