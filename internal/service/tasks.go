package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/db"
	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/logging"
	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/model"
)

type TaskStore interface {
	ListTasks(ctx context.Context, userID uuid.UUID, status string) ([]model.Task, error)
	CreateTask(ctx context.Context, userID uuid.UUID, title, description string) (*model.Task, error)
	CompleteTask(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error)
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error
}

// TaskService manages a user's own tasks.
type TaskService struct {
	repo   TaskStore
	logger *slog.Logger
}

func NewTaskService(repo TaskStore, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{repo: repo, logger: logger}
}

// List filters by status when it is pending or completed; anything else lists all.
func (s *TaskService) List(ctx context.Context, userID uuid.UUID, status string) ([]model.Task, error) {
	if status != model.TaskStatusPending && status != model.TaskStatusCompleted {
		status = ""
	}
	tasks, err := s.repo.ListTasks(ctx, userID, status)
	if err != nil {
		logging.LogError(ctx, s.logger, "list tasks failed", err)
		return nil, fail(ErrTransient, "Failed to fetch tasks")
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, title, description string) (*model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fail(ErrValidation, "Task title is required")
	}
	task, err := s.repo.CreateTask(ctx, userID, title, strings.TrimSpace(description))
	if err != nil {
		logging.LogError(ctx, s.logger, "create task failed", err)
		return nil, fail(ErrTransient, "Failed to create task")
	}
	return task, nil
}

func (s *TaskService) Complete(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.repo.CompleteTask(ctx, userID, taskID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, fail(ErrNotFound, "Task not found")
		}
		logging.LogError(ctx, s.logger, "complete task failed", err)
		return nil, fail(ErrTransient, "Failed to update task")
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := s.repo.DeleteTask(ctx, userID, taskID); err != nil {
		if db.IsNoRows(err) {
			return fail(ErrNotFound, "Task not found")
		}
		logging.LogError(ctx, s.logger, "delete task failed", err)
		return fail(ErrTransient, "Failed to delete task")
	}
	return nil
}
