package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/model"
)

const userColumns = `id, name, email, password_hash, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a user. A duplicate email surfaces as a unique
// violation; check it with IsUniqueViolation.
func (db *Postgres) CreateUser(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	query := `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING ` + userColumns
	user, err := scanUser(db.Pool.QueryRow(ctx, query, uuid.New(), name, email, passwordHash))
	if err != nil {
		return nil, oops.Code("USER_CREATE_FAILED").With("email", email).Wrap(err)
	}
	return user, nil
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(db.Pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, oops.Code("USER_LOOKUP_FAILED").With("email", email).Wrap(err)
	}
	return user, nil
}
