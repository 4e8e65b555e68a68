package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/model"
)

// ReplaceResetToken stores token as the user's only outstanding reset token.
// The user row is locked so concurrent requests for the same user serialize
// and exactly one record survives.
func (db *Postgres) ReplaceResetToken(ctx context.Context, token *model.ResetToken) error {
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var locked uuid.UUID
		if err := tx.QueryRow(ctx,
			`SELECT id FROM users WHERE id = $1 FOR UPDATE`, token.UserID,
		).Scan(&locked); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM password_reset_tokens WHERE user_id = $1`, token.UserID,
		); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at, created_at)
			VALUES ($1, $2, $3, $4, NOW())
		`, token.ID.String(), token.UserID, token.TokenHash, token.ExpiresAt)
		return err
	})
	if err != nil {
		return oops.Code("RESET_TOKEN_STORE_FAILED").With("user_id", token.UserID).Wrap(err)
	}
	return nil
}

// ConsumeResetToken marks the live token with tokenHash as used and sets the
// owner's password hash in the same transaction. Expiry is judged by the
// database clock. Returns pgx.ErrNoRows (wrapped) when no live token matches,
// so of two racing consumers only one sees success.
func (db *Postgres) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			UPDATE password_reset_tokens
			SET used_at = NOW()
			WHERE token_hash = $1 AND used_at IS NULL AND expires_at > NOW()
			RETURNING user_id
		`, tokenHash).Scan(&userID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, userID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, oops.Code("RESET_TOKEN_CONSUME_FAILED").Wrap(err)
	}
	return userID, nil
}

// DeleteDeadResetTokens removes used and expired tokens.
func (db *Postgres) DeleteDeadResetTokens(ctx context.Context) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM password_reset_tokens
		WHERE expires_at <= NOW() OR used_at IS NOT NULL
	`)
	if err != nil {
		return 0, oops.Code("RESET_TOKEN_PRUNE_FAILED").Wrap(err)
	}
	return tag.RowsAffected(), nil
}
