package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/db"
	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/model"
)

const resetSecretBytes = 32

// ResetTokenStore persists hashed reset tokens. ConsumeResetToken must mark
// the token used and store the new password hash atomically, and report
// pgx.ErrNoRows when no live token matches.
type ResetTokenStore interface {
	ReplaceResetToken(ctx context.Context, token *model.ResetToken) error
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string) (uuid.UUID, error)
	DeleteDeadResetTokens(ctx context.Context) (int64, error)
}

// ResetTokenManager creates and redeems single-use password reset secrets.
// Only the SHA-256 of a secret is ever stored.
type ResetTokenManager struct {
	store ResetTokenStore
	ttl   time.Duration
	now   func() time.Time
}

func NewResetTokenManager(store ResetTokenStore, ttl time.Duration) *ResetTokenManager {
	return &ResetTokenManager{store: store, ttl: ttl, now: time.Now}
}

func (m *ResetTokenManager) TTL() time.Duration {
	return m.ttl
}

// CreateFor replaces any outstanding token for userID and returns the new
// plaintext secret. The secret is not recoverable afterwards.
func (m *ResetTokenManager) CreateFor(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	secret, hash, err := GenerateResetSecret()
	if err != nil {
		return "", time.Time{}, err
	}

	now := m.now()
	token := &model.ResetToken{
		ID:        ulid.Make(),
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.store.ReplaceResetToken(ctx, token); err != nil {
		return "", time.Time{}, err
	}
	return secret, token.ExpiresAt, nil
}

// Consume redeems secret and sets the owner's password hash. Wrong, used and
// expired secrets all return ErrInvalidOrExpired.
func (m *ResetTokenManager) Consume(ctx context.Context, secret, newPasswordHash string) (uuid.UUID, error) {
	if secret == "" {
		return uuid.Nil, ErrInvalidOrExpired
	}

	userID, err := m.store.ConsumeResetToken(ctx, HashResetSecret(secret), newPasswordHash)
	if err != nil {
		if db.IsNoRows(err) {
			return uuid.Nil, ErrInvalidOrExpired
		}
		return uuid.Nil, err
	}
	return userID, nil
}

// PruneExpired deletes used and expired tokens and returns how many went.
func (m *ResetTokenManager) PruneExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteDeadResetTokens(ctx)
}

// GenerateResetSecret returns a hex secret of 32 random bytes and its hash.
func GenerateResetSecret() (string, string, error) {
	raw := make([]byte, resetSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	secret := hex.EncodeToString(raw)
	return secret, HashResetSecret(secret), nil
}

func HashResetSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
