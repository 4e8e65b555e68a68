package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/db"
	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/logging"
	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/model"
	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/observability"
)

const (
	minPasswordLength = 6
	maxPasswordBytes  = 72 // bcrypt input limit

	dummyPassword = "taskboard-dummy-password"
)

const (
	opRegister     = "register"
	opLogin        = "login"
	opRequestReset = "request_reset"
	opConsumeReset = "consume_reset"
)

const (
	msgRegisterRequired = "Name, email, and password are required"
	msgPasswordTooShort = "Password must be at least 6 characters"
	msgPasswordTooLong  = "Password must be at most 72 bytes"
	msgEmailTaken       = "Email already registered"
	msgRegisterFailed   = "Failed to register user"
	msgLoginRequired    = "Email and password are required"
	msgInvalidCreds     = "Invalid credentials"
	msgLoginFailed      = "Failed to login"
	msgEmailRequired    = "Email is required"
	msgEmailUnknown     = "Email does not exist"
	msgResetCreated     = "Reset token generated successfully."
	msgResetRequestFail = "Failed to process forgot password request"
	msgResetRequired    = "Token and new password are required"
	msgNewPasswordShort = "New password must be at least 6 characters"
	msgNewPasswordLong  = "New password must be at most 72 bytes"
	msgResetInvalid     = "Invalid or expired reset token"
	msgResetDone        = "Password reset successful. You can login with your new password."
	msgResetConsumeFail = "Failed to reset password"
)

// UserStore is the user persistence used by AuthService.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

type AuthConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
	ResetTTL   time.Duration
	BcryptCost int
	// ExposeResetToken returns reset secrets in RequestReset results.
	// Local demos only.
	ExposeResetToken bool
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      model.PublicUser
}

type ResetRequestResult struct {
	Message          string
	ResetToken       string
	ExpiresInMinutes int
}

// AuthService runs the register, login and password reset workflows.
type AuthService struct {
	users     UserStore
	hasher    PasswordHasher
	sessions  *SessionIssuer
	resets    *ResetTokenManager
	exposeTok bool
	dummyHash string
	logger    *slog.Logger
	metrics   *observability.Metrics
}

func NewAuthService(users UserStore, resets ResetTokenStore, cfg AuthConfig, logger *slog.Logger, metrics *observability.Metrics) (*AuthService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	hasher, err := NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	sessions, err := NewSessionIssuer(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	if cfg.ResetTTL <= 0 {
		return nil, fmt.Errorf("%w: reset token ttl must be positive", ErrMisconfigured)
	}

	// Compared against on unknown-email logins so they cost one bcrypt run.
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMisconfigured, err)
	}

	return &AuthService{
		users:     users,
		hasher:    hasher,
		sessions:  sessions,
		resets:    NewResetTokenManager(resets, cfg.ResetTTL),
		exposeTok: cfg.ExposeResetToken,
		dummyHash: dummyHash,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" || email == "" || password == "" {
		return nil, s.reject(opRegister, fail(ErrValidation, msgRegisterRequired))
	}
	if f := checkPassword(password, msgPasswordTooShort, msgPasswordTooLong); f != nil {
		return nil, s.reject(opRegister, f)
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, s.reject(opRegister, fail(ErrConflict, msgEmailTaken))
	}
	if !db.IsNoRows(err) {
		return nil, s.transient(ctx, opRegister, msgRegisterFailed, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, s.transient(ctx, opRegister, msgRegisterFailed, err)
	}

	user, err := s.users.CreateUser(ctx, name, email, hash)
	if err != nil {
		// Lost a race with a concurrent registration.
		if db.IsUniqueViolation(err) {
			return nil, s.reject(opRegister, fail(ErrConflict, msgEmailTaken))
		}
		return nil, s.transient(ctx, opRegister, msgRegisterFailed, err)
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, s.transient(ctx, opRegister, msgRegisterFailed, err)
	}

	s.metrics.RecordAuth(opRegister, observability.OutcomeSuccess)
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return result, nil
}

// Login returns the same failure for unknown emails and wrong passwords.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, s.reject(opLogin, fail(ErrValidation, msgLoginRequired))
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, s.reject(opLogin, fail(ErrUnauthorized, msgInvalidCreds))
		}
		return nil, s.transient(ctx, opLogin, msgLoginFailed, err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, s.reject(opLogin, fail(ErrUnauthorized, msgInvalidCreds))
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, s.transient(ctx, opLogin, msgLoginFailed, err)
	}

	s.metrics.RecordAuth(opLogin, observability.OutcomeSuccess)
	return result, nil
}

// RequestReset issues a reset secret for a registered email. Unknown emails
// are reported as NotFound.
func (s *AuthService) RequestReset(ctx context.Context, email string) (*ResetRequestResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, s.reject(opRequestReset, fail(ErrValidation, msgEmailRequired))
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, s.reject(opRequestReset, fail(ErrNotFound, msgEmailUnknown))
		}
		return nil, s.transient(ctx, opRequestReset, msgResetRequestFail, err)
	}

	secret, _, err := s.resets.CreateFor(ctx, user.ID)
	if err != nil {
		return nil, s.transient(ctx, opRequestReset, msgResetRequestFail, err)
	}

	result := &ResetRequestResult{Message: msgResetCreated}
	if s.exposeTok {
		result.ResetToken = secret
		result.ExpiresInMinutes = int(s.resets.TTL() / time.Minute)
	}

	s.metrics.RecordAuth(opRequestReset, observability.OutcomeSuccess)
	s.logger.InfoContext(ctx, "password reset requested", "user_id", user.ID)
	return result, nil
}

// ConsumeReset sets a new password using a reset secret. No session is issued.
func (s *AuthService) ConsumeReset(ctx context.Context, secret, newPassword string) (string, error) {
	if secret == "" || newPassword == "" {
		return "", s.reject(opConsumeReset, fail(ErrValidation, msgResetRequired))
	}
	if f := checkPassword(newPassword, msgNewPasswordShort, msgNewPasswordLong); f != nil {
		return "", s.reject(opConsumeReset, f)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return "", s.transient(ctx, opConsumeReset, msgResetConsumeFail, err)
	}

	userID, err := s.resets.Consume(ctx, secret, hash)
	if err != nil {
		if errors.Is(err, ErrInvalidOrExpired) {
			return "", s.reject(opConsumeReset, fail(ErrInvalidOrExpired, msgResetInvalid))
		}
		return "", s.transient(ctx, opConsumeReset, msgResetConsumeFail, err)
	}

	s.metrics.RecordAuth(opConsumeReset, observability.OutcomeSuccess)
	s.logger.InfoContext(ctx, "password reset completed", "user_id", userID)
	return msgResetDone, nil
}

// VerifySession checks a bearer token without touching the store.
func (s *AuthService) VerifySession(token string) (*model.AuthUser, error) {
	return s.sessions.Verify(token)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, expiresAt, err := s.sessions.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Public(),
	}, nil
}

func (s *AuthService) reject(op string, f *Failure) *Failure {
	s.metrics.RecordAuth(op, outcomeFor(f.Kind))
	return f
}

func (s *AuthService) transient(ctx context.Context, op, message string, err error) *Failure {
	logging.LogError(ctx, s.logger, op+" failed", err)
	s.metrics.RecordAuth(op, observability.OutcomeError)
	return fail(ErrTransient, message)
}

func outcomeFor(kind error) string {
	switch {
	case errors.Is(kind, ErrValidation):
		return observability.OutcomeInvalidInput
	case errors.Is(kind, ErrConflict):
		return observability.OutcomeConflict
	case errors.Is(kind, ErrUnauthorized):
		return observability.OutcomeUnauthorized
	case errors.Is(kind, ErrNotFound):
		return observability.OutcomeNotFound
	case errors.Is(kind, ErrInvalidOrExpired):
		return observability.OutcomeInvalidToken
	default:
		return observability.OutcomeError
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkPassword(password, tooShort, tooLong string) *Failure {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fail(ErrValidation, tooShort)
	}
	if len(password) > maxPasswordBytes {
		return fail(ErrValidation, tooLong)
	}
	return nil
}

