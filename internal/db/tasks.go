package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/model"
)

const taskColumns = `id, user_id, title, description, status, created_at, updated_at`

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

// ListTasks returns the user's tasks, newest first. An empty status lists all.
func (db *Postgres) ListTasks(ctx context.Context, userID uuid.UUID, status string) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{userID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, oops.Code("TASK_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	defer rows.Close()

	list := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, oops.Code("TASK_LIST_FAILED").With("user_id", userID).Wrap(err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("TASK_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	return list, nil
}

func (db *Postgres) CreateTask(ctx context.Context, userID uuid.UUID, title, description string) (*model.Task, error) {
	query := `
		INSERT INTO tasks (id, user_id, title, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + taskColumns
	t, err := scanTask(db.Pool.QueryRow(ctx, query, uuid.New(), userID, title, description, model.TaskStatusPending))
	if err != nil {
		return nil, oops.Code("TASK_CREATE_FAILED").With("user_id", userID).Wrap(err)
	}
	return &t, nil
}

// CompleteTask marks the user's task completed. A task owned by someone else
// is reported as missing (pgx.ErrNoRows).
func (db *Postgres) CompleteTask(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	query := `
		UPDATE tasks
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING ` + taskColumns
	t, err := scanTask(db.Pool.QueryRow(ctx, query, model.TaskStatusCompleted, taskID, userID))
	if err != nil {
		return nil, oops.Code("TASK_UPDATE_FAILED").With("task_id", taskID).Wrap(err)
	}
	return &t, nil
}

func (db *Postgres) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return oops.Code("TASK_DELETE_FAILED").With("task_id", taskID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("TASK_DELETE_FAILED").With("task_id", taskID).Wrap(pgx.ErrNoRows)
	}
	return nil
}
