package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/model"
)

// memStore is an in-memory UserStore and ResetTokenStore. Every method holds
// the mutex for its whole body, which gives it the atomicity of the
// PostgreSQL transactions it stands in for.
type memStore struct {
	mu      sync.Mutex
	users   map[string]*model.User
	resets  map[uuid.UUID]*model.ResetToken
	now     time.Time
	lookups int

	lookupErr  error
	createErr  error
	replaceErr error
	consumeErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[string]*model.User{},
		resets: map[uuid.UUID]*model.ResetToken{},
		now:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

func (s *memStore) CreateUser(_ context.Context, name, email, passwordHash string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return nil, s.createErr
	}
	if _, ok := s.users[email]; ok {
		return nil, &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
	}
	user := &model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now,
	}
	s.users[email] = user
	copied := *user
	return &copied, nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lookups++
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	user, ok := s.users[email]
	if !ok {
		return nil, fmt.Errorf("get user %q: %w", email, pgx.ErrNoRows)
	}
	copied := *user
	return &copied, nil
}

func (s *memStore) ReplaceResetToken(_ context.Context, token *model.ResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.replaceErr != nil {
		return s.replaceErr
	}
	copied := *token
	s.resets[token.UserID] = &copied
	return nil
}

func (s *memStore) ConsumeResetToken(_ context.Context, tokenHash, passwordHash string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.consumeErr != nil {
		return uuid.Nil, s.consumeErr
	}
	for _, token := range s.resets {
		if token.TokenHash != tokenHash || token.UsedAt != nil || !s.now.Before(token.ExpiresAt) {
			continue
		}
		for _, user := range s.users {
			if user.ID == token.UserID {
				usedAt := s.now
				token.UsedAt = &usedAt
				user.PasswordHash = passwordHash
				return user.ID, nil
			}
		}
	}
	return uuid.Nil, fmt.Errorf("consume: %w", pgx.ErrNoRows)
}

func (s *memStore) DeleteDeadResetTokens(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for userID, token := range s.resets {
		if token.UsedAt != nil || !s.now.Before(token.ExpiresAt) {
			delete(s.resets, userID)
			n++
		}
	}
	return n, nil
}

func (s *memStore) resetFor(email string) *model.ResetToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil
	}
	token, ok := s.resets[user.ID]
	if !ok {
		return nil
	}
	copied := *token
	return &copied
}

func (s *memStore) passwordHashOf(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[email].PasswordHash
}

func (s *memStore) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}
