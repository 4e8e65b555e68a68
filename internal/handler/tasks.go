package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/model"
)

type taskService interface {
	List(ctx context.Context, userID uuid.UUID, status string) ([]model.Task, error)
	Create(ctx context.Context, userID uuid.UUID, title, description string) (*model.Task, error)
	Complete(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
}

type TaskHandler struct {
	svc taskService
}

func NewTaskHandler(svc taskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// ListTasks godoc
// @Summary List the current user's tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending or completed"
// @Success 200 {array} model.Task
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user := GetAuthUser(c)
	tasks, err := h.svc.List(c.Request.Context(), user.ID, c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// CreateTask godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreateTaskRequest true "Task"
// @Success 201 {object} model.Task
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req model.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: msgInvalidBody})
		return
	}

	user := GetAuthUser(c)
	task, err := h.svc.Create(c.Request.Context(), user.ID, req.Title, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// CompleteTask godoc
// @Summary Mark a task completed
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} model.Task
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/tasks/{id} [put]
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	user := GetAuthUser(c)
	task, err := h.svc.Complete(c.Request.Context(), user.ID, taskID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 204
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	user := GetAuthUser(c)
	if err := h.svc.Delete(c.Request.Context(), user.ID, taskID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseTaskID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Message: "Invalid task id"})
		return uuid.Nil, false
	}
	return id, true
}
