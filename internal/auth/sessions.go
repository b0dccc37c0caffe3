package auth

import (
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"funneltrack/internal/config"
	"funneltrack/internal/users"
)

// AdminSession is the server-side record backing a login token. The JWT alone
// is not enough: revoking a session (logout, admin deactivation) flips IsActive
// here, which invalidates the token before it expires.
type AdminSession struct {
	ID           uint      `gorm:"primaryKey"`
	SessionID    string    `gorm:"uniqueIndex;not null"`
	UserID       uint      `gorm:"index;not null"`
	SessionToken string    `gorm:"uniqueIndex;not null"`
	IPAddress    string
	UserAgent    string
	IsActive     bool      `gorm:"not null;default:true;index"`
	ExpiresAt    time.Time `gorm:"index;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// ErrInvalidSession is returned when a token fails verification for any reason:
// bad signature, expired, revoked, or unknown.
var ErrInvalidSession = errors.New("invalid or expired session")

// SessionClaims are the JWT claims embedded in a session token.
type SessionClaims struct {
	UserID    uint   `json:"user_id"`
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// IssueSession creates a signed session token for an authenticated user and
// persists the backing session row.
func IssueSession(dbConn *gorm.DB, logger *slog.Logger, user *users.User, ipAddress, userAgent string) (string, error) {
	cfg := config.GetConfig()
	now := time.Now().UTC()
	expiresAt := now.Add(time.Duration(cfg.LoginSessionTimeoutSeconds) * time.Second)
	sessionID := uuid.NewString()

	claims := SessionClaims{
		UserID:    user.ID,
		SessionID: sessionID,
		Email:     user.Email,
		Role:      user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.AppName,
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SigningKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	session := &AdminSession{
		SessionID:    sessionID,
		UserID:       user.ID,
		SessionToken: token,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		IsActive:     true,
		ExpiresAt:    expiresAt,
	}
	err = sqlite.PerformWrite(logger, dbConn, func(tx *gorm.DB) error {
		return tx.Create(session).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// AuthenticatedUser is the verified identity attached to an admin request.
type AuthenticatedUser struct {
	UserID    uint
	SessionID string
	Email     string
	Role      string
}

// VerifySession checks a token's signature and claims, then confirms the
// backing session row is still active and unexpired and the user account is
// still enabled.
func VerifySession(dbConn *gorm.DB, token string) (*AuthenticatedUser, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	cfg := config.GetConfig()
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.SigningKey), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	var session AdminSession
	err = dbConn.Where("session_token = ? AND is_active = ?", token, true).First(&session).Error
	if err != nil {
		return nil, ErrInvalidSession
	}
	if time.Now().UTC().After(session.ExpiresAt) {
		return nil, ErrInvalidSession
	}

	user, err := users.FindByID(dbConn, session.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidSession
	}

	return &AuthenticatedUser{
		UserID:    user.ID,
		SessionID: session.SessionID,
		Email:     user.Email,
		Role:      user.Role,
	}, nil
}

// RevokeSession deactivates the session behind a token. Revoking an unknown
// token is not an error; logout must be idempotent.
func RevokeSession(dbConn *gorm.DB, logger *slog.Logger, token string) error {
	if token == "" {
		return nil
	}
	return sqlite.PerformWrite(logger, dbConn, func(tx *gorm.DB) error {
		return tx.Model(&AdminSession{}).
			Where("session_token = ?", token).
			Update("is_active", false).Error
	})
}

// RevokeUserSessions deactivates every active session for a user.
func RevokeUserSessions(dbConn *gorm.DB, logger *slog.Logger, userID uint) error {
	return sqlite.PerformWrite(logger, dbConn, func(tx *gorm.DB) error {
		return tx.Model(&AdminSession{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Update("is_active", false).Error
	})
}

// SweepExpiredSessions deletes sessions past their expiry and returns how many
// rows were removed.
func SweepExpiredSessions(dbConn *gorm.DB, logger *slog.Logger) (int64, error) {
	var deleted int64
	err := sqlite.PerformWrite(logger, dbConn, func(tx *gorm.DB) error {
		result := tx.Where("expires_at < ?", time.Now().UTC()).Delete(&AdminSession{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}
