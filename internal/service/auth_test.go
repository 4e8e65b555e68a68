package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/observability"
)

type authFixture struct {
	svc     *AuthService
	store   *memStore
	metrics *observability.Metrics
	logs    *bytes.Buffer
}

func newAuthFixture(t *testing.T, expose bool) *authFixture {
	t.Helper()

	store := newMemStore()
	logs := &bytes.Buffer{}
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	svc, err := NewAuthService(store, store, AuthConfig{
		JWTSecret:        "test-secret",
		SessionTTL:       time.Hour,
		ResetTTL:         15 * time.Minute,
		BcryptCost:       bcrypt.MinCost,
		ExposeResetToken: expose,
	}, slog.New(slog.NewJSONHandler(logs, nil)), metrics)
	require.NoError(t, err)

	svc.resets.now = store.clock
	return &authFixture{svc: svc, store: store, metrics: metrics, logs: logs}
}

func (f *authFixture) register(t *testing.T, email, password string) *AuthResult {
	t.Helper()
	res, err := f.svc.Register(context.Background(), "Ada Lovelace", email, password)
	require.NoError(t, err)
	return res
}

func (f *authFixture) outcome(op, outcome string) float64 {
	return testutil.ToFloat64(f.metrics.AuthOperations.WithLabelValues(op, outcome))
}

func requireFailure(t *testing.T, err error, kind error, message string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)

	var f *Failure
	require.True(t, errors.As(err, &f), "expected *Failure, got %T", err)
	assert.Equal(t, message, f.Message)
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture(t, false)

	res, err := f.svc.Register(context.Background(), "  Ada Lovelace ", "  Ada@Example.COM ", "secret1")
	require.NoError(t, err)

	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "Ada Lovelace", res.User.Name)
	assert.Equal(t, "ada@example.com", res.User.Email)

	identity, err := f.svc.VerifySession(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, identity.ID)
	assert.Equal(t, "ada@example.com", identity.Email)

	stored := f.store.passwordHashOf("ada@example.com")
	assert.NotEqual(t, "secret1", stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("secret1")))
	assert.InDelta(t, 1, f.outcome(opRegister, observability.OutcomeSuccess), 0)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		message  string
	}{
		{name: "missing name", userName: " ", email: "a@b.c", password: "secret1", message: "Name, email, and password are required"},
		{name: "missing email", userName: "Ada", email: "", password: "secret1", message: "Name, email, and password are required"},
		{name: "missing password", userName: "Ada", email: "a@b.c", password: "", message: "Name, email, and password are required"},
		{name: "short password", userName: "Ada", email: "a@b.c", password: "12345", message: "Password must be at least 6 characters"},
		{name: "short multibyte password", userName: "Ada", email: "a@b.c", password: "ééééé", message: "Password must be at least 6 characters"},
		{name: "password over 72 bytes", userName: "Ada", email: "a@b.c", password: strings.Repeat("p", 73), message: "Password must be at most 72 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t, false)
			_, err := f.svc.Register(context.Background(), tt.userName, tt.email, tt.password)
			requireFailure(t, err, ErrValidation, tt.message)
			assert.Zero(t, f.store.lookups, "validation must run before the store is touched")
		})
	}
}

func TestAuthService_RegisterAcceptsBoundaryPasswords(t *testing.T) {
	f := newAuthFixture(t, false)

	_, err := f.svc.Register(context.Background(), "Ada", "six@example.com", "123456")
	require.NoError(t, err)
	_, err = f.svc.Register(context.Background(), "Ada", "max@example.com", strings.Repeat("p", 72))
	require.NoError(t, err)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t, false)
	f.register(t, "ada@example.com", "secret1")

	_, err := f.svc.Register(context.Background(), "Other", "ADA@example.com", "secret2")
	requireFailure(t, err, ErrConflict, "Email already registered")
	assert.InDelta(t, 1, f.outcome(opRegister, observability.OutcomeConflict), 0)
}

func TestAuthService_RegisterUniqueViolationBackstop(t *testing.T) {
	f := newAuthFixture(t, false)
	f.store.createErr = &pgconn.PgError{Code: pgerrcode.UniqueViolation}

	_, err := f.svc.Register(context.Background(), "Ada", "ada@example.com", "secret1")
	requireFailure(t, err, ErrConflict, "Email already registered")
}

func TestAuthService_RegisterStoreFailure(t *testing.T) {
	f := newAuthFixture(t, false)
	f.store.createErr = errors.New("connection reset by peer")

	_, err := f.svc.Register(context.Background(), "Ada", "ada@example.com", "secret1")
	requireFailure(t, err, ErrTransient, "Failed to register user")
	assert.NotContains(t, err.Error(), "connection reset")

	assert.Contains(t, f.logs.String(), "connection reset by peer")
	assert.NotContains(t, f.logs.String(), "secret1")
	assert.InDelta(t, 1, f.outcome(opRegister, observability.OutcomeError), 0)
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t, false)
	registered := f.register(t, "ada@example.com", "secret1")

	res, err := f.svc.Login(context.Background(), " ADA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.User, res.User)

	identity, err := f.svc.VerifySession(res.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, identity.ID)
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t, false)
	f.register(t, "ada@example.com", "secret1")

	_, wrongPassword := f.svc.Login(context.Background(), "ada@example.com", "wrong-password")
	_, unknownEmail := f.svc.Login(context.Background(), "nobody@example.com", "secret1")

	requireFailure(t, wrongPassword, ErrUnauthorized, "Invalid credentials")
	requireFailure(t, unknownEmail, ErrUnauthorized, "Invalid credentials")
	assert.Equal(t, wrongPassword, unknownEmail)
	assert.InDelta(t, 2, f.outcome(opLogin, observability.OutcomeUnauthorized), 0)
}

func TestAuthService_LoginValidation(t *testing.T) {
	f := newAuthFixture(t, false)

	_, err := f.svc.Login(context.Background(), "", "secret1")
	requireFailure(t, err, ErrValidation, "Email and password are required")

	_, err = f.svc.Login(context.Background(), "ada@example.com", "")
	requireFailure(t, err, ErrValidation, "Email and password are required")
}

func TestAuthService_LoginStoreFailure(t *testing.T) {
	f := newAuthFixture(t, false)
	f.store.lookupErr = errors.New("pool closed")

	_, err := f.svc.Login(context.Background(), "ada@example.com", "secret1")
	requireFailure(t, err, ErrTransient, "Failed to login")
}

func TestAuthService_RequestReset(t *testing.T) {
	f := newAuthFixture(t, false)
	f.register(t, "ada@example.com", "secret1")

	res, err := f.svc.RequestReset(context.Background(), " Ada@Example.com ")
	require.NoError(t, err)

	assert.Equal(t, "Reset token generated successfully.", res.Message)
	assert.Empty(t, res.ResetToken, "secret must not be echoed unless enabled")
	assert.Zero(t, res.ExpiresInMinutes)
	require.NotNil(t, f.store.resetFor("ada@example.com"))
}

func TestAuthService_RequestResetEchoesWhenEnabled(t *testing.T) {
	f := newAuthFixture(t, true)
	f.register(t, "ada@example.com", "secret1")

	res, err := f.svc.RequestReset(context.Background(), "ada@example.com")
	require.NoError(t, err)

	assert.Len(t, res.ResetToken, 64)
	assert.Equal(t, 15, res.ExpiresInMinutes)

	stored := f.store.resetFor("ada@example.com")
	require.NotNil(t, stored)
	assert.Equal(t, HashResetSecret(res.ResetToken), stored.TokenHash)
	assert.NotContains(t, f.logs.String(), res.ResetToken, "secrets are never logged")
}

func TestAuthService_RequestResetUnknownEmail(t *testing.T) {
	f := newAuthFixture(t, true)

	_, err := f.svc.RequestReset(context.Background(), "nobody@example.com")
	requireFailure(t, err, ErrNotFound, "Email does not exist")

	_, err = f.svc.RequestReset(context.Background(), "   ")
	requireFailure(t, err, ErrValidation, "Email is required")
}

func TestAuthService_RequestResetStoreFailure(t *testing.T) {
	f := newAuthFixture(t, true)
	f.register(t, "ada@example.com", "secret1")
	f.store.replaceErr = errors.New("deadlock detected")

	_, err := f.svc.RequestReset(context.Background(), "ada@example.com")
	requireFailure(t, err, ErrTransient, "Failed to process forgot password request")
}

func TestAuthService_ResetFlow(t *testing.T) {
	f := newAuthFixture(t, true)
	f.register(t, "ada@example.com", "secret1")
	ctx := context.Background()

	req, err := f.svc.RequestReset(ctx, "ada@example.com")
	require.NoError(t, err)

	msg, err := f.svc.ConsumeReset(ctx, req.ResetToken, "brand-new")
	require.NoError(t, err)
	assert.Equal(t, "Password reset successful. You can login with your new password.", msg)

	_, err = f.svc.Login(ctx, "ada@example.com", "secret1")
	requireFailure(t, err, ErrUnauthorized, "Invalid credentials")

	_, err = f.svc.Login(ctx, "ada@example.com", "brand-new")
	require.NoError(t, err)

	_, err = f.svc.ConsumeReset(ctx, req.ResetToken, "another-one")
	requireFailure(t, err, ErrInvalidOrExpired, "Invalid or expired reset token")
}

func TestAuthService_ResetSupersededToken(t *testing.T) {
	f := newAuthFixture(t, true)
	f.register(t, "ada@example.com", "secret1")
	ctx := context.Background()

	first, err := f.svc.RequestReset(ctx, "ada@example.com")
	require.NoError(t, err)
	second, err := f.svc.RequestReset(ctx, "ada@example.com")
	require.NoError(t, err)

	_, err = f.svc.ConsumeReset(ctx, first.ResetToken, "brand-new")
	requireFailure(t, err, ErrInvalidOrExpired, "Invalid or expired reset token")

	_, err = f.svc.ConsumeReset(ctx, second.ResetToken, "brand-new")
	require.NoError(t, err)
}

func TestAuthService_ResetExpired(t *testing.T) {
	f := newAuthFixture(t, true)
	f.register(t, "ada@example.com", "secret1")
	ctx := context.Background()

	req, err := f.svc.RequestReset(ctx, "ada@example.com")
	require.NoError(t, err)

	f.store.advance(16 * time.Minute)

	_, err = f.svc.ConsumeReset(ctx, req.ResetToken, "brand-new")
	requireFailure(t, err, ErrInvalidOrExpired, "Invalid or expired reset token")

	_, err = f.svc.Login(ctx, "ada@example.com", "secret1")
	assert.NoError(t, err, "old password still works after a failed reset")
}

func TestAuthService_ConsumeResetValidation(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.ConsumeReset(ctx, "", "brand-new")
	requireFailure(t, err, ErrValidation, "Token and new password are required")

	_, err = f.svc.ConsumeReset(ctx, "abc", "")
	requireFailure(t, err, ErrValidation, "Token and new password are required")

	_, err = f.svc.ConsumeReset(ctx, "abc", "12345")
	requireFailure(t, err, ErrValidation, "New password must be at least 6 characters")

	_, err = f.svc.ConsumeReset(ctx, "not-a-real-token", "brand-new")
	requireFailure(t, err, ErrInvalidOrExpired, "Invalid or expired reset token")
}

func TestAuthService_ConsumeResetStoreFailure(t *testing.T) {
	f := newAuthFixture(t, true)
	f.store.consumeErr = errors.New("connection refused")

	_, err := f.svc.ConsumeReset(context.Background(), "abc", "brand-new")
	requireFailure(t, err, ErrTransient, "Failed to reset password")
	assert.Contains(t, f.logs.String(), "connection refused")
}

func TestNewAuthService_Misconfigured(t *testing.T) {
	base := AuthConfig{
		JWTSecret:  "test-secret",
		SessionTTL: time.Hour,
		ResetTTL:   15 * time.Minute,
		BcryptCost: bcrypt.MinCost,
	}

	tests := map[string]func(*AuthConfig){
		"empty secret":     func(c *AuthConfig) { c.JWTSecret = "" },
		"zero session ttl": func(c *AuthConfig) { c.SessionTTL = 0 },
		"zero reset ttl":   func(c *AuthConfig) { c.ResetTTL = 0 },
		"bad bcrypt cost":  func(c *AuthConfig) { c.BcryptCost = 99 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			store := newMemStore()
			_, err := NewAuthService(store, store, cfg, nil, nil)
			assert.ErrorIs(t, err, ErrMisconfigured)
		})
	}
}
