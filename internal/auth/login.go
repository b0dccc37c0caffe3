package auth

import (
	"errors"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge/crypto"
	"gorm.io/gorm"

	"funneltrack/internal/audit"
	"funneltrack/internal/config"
	"funneltrack/internal/users"
)

// Login failure modes. Handlers map all of them except ErrAccountLocked to the
// same generic response so the API never reveals whether an email exists.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrAccountDisabled    = errors.New("account disabled")
)

// LoginInput carries the credentials plus request metadata for the audit trail.
type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// Login authenticates an admin and issues a session token. Failed attempts
// count toward a lockout; the counter resets on success. Every outcome is
// audited.
func Login(dbConn *gorm.DB, logger *slog.Logger, input LoginInput) (string, *users.User, error) {
	cfg := config.GetConfig()

	user, err := users.FindByEmail(dbConn, input.Email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			recordLoginAudit(dbConn, logger, 0, input, audit.ResultFailure, "unknown email")
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	now := time.Now().UTC()
	if user.IsLocked(now) {
		recordLoginAudit(dbConn, logger, user.ID, input, audit.ResultBlocked, "account locked")
		return "", nil, ErrAccountLocked
	}
	if !user.IsActive {
		recordLoginAudit(dbConn, logger, user.ID, input, audit.ResultBlocked, "account disabled")
		return "", nil, ErrAccountDisabled
	}

	if ok := crypto.VerifyPassword(user.EncryptedPassword, input.Password); !ok {
		lockout := time.Duration(cfg.LoginLockoutSeconds) * time.Second
		if err := users.RecordFailedLogin(dbConn, user, cfg.MaxFailedLogins, lockout); err != nil {
			logger.Error("Failed to record failed login", slog.Any("error", err))
		}
		recordLoginAudit(dbConn, logger, user.ID, input, audit.ResultFailure, "wrong password")
		return "", nil, ErrInvalidCredentials
	}

	if err := users.RecordSuccessfulLogin(dbConn, user); err != nil {
		logger.Error("Failed to record successful login", slog.Any("error", err))
	}

	token, err := IssueSession(dbConn, logger, user, input.IPAddress, input.UserAgent)
	if err != nil {
		return "", nil, err
	}

	recordLoginAudit(dbConn, logger, user.ID, input, audit.ResultSuccess, "")
	logger.Info("Admin login",
		slog.String("email", user.Email),
		slog.String("role", user.Role))

	return token, user, nil
}

func recordLoginAudit(dbConn *gorm.DB, logger *slog.Logger, userID uint, input LoginInput, result, reason string) {
	audit.Record(dbConn, logger, &audit.Entry{
		UserID:         userID,
		ActionType:     "login",
		ActionCategory: audit.CategoryAuth,
		ActionResult:   result,
		FailureReason:  reason,
		IPAddress:      input.IPAddress,
		UserAgent:      input.UserAgent,
	})
}
