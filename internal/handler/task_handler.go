package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskpocket/taskpocket/internal/domain"
	"github.com/taskpocket/taskpocket/internal/engine"
	"github.com/taskpocket/taskpocket/internal/logger"
	"github.com/taskpocket/taskpocket/internal/service/serviceutils"
)

// TaskHandler is the device-local HTTP facade over the reconciliation engine.
// The UI consumes the task routes; the notification scheduler consumes /tasks/due.
type TaskHandler struct {
	engine engine.Engine
}

func NewTaskHandler(eng engine.Engine) *TaskHandler {
	return &TaskHandler{engine: eng}
}

type createTaskRequest struct {
	Title   string `json:"title"`
	DueDate string `json:"due_date"`
}

type updateTaskRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
	DueDate   *string `json:"due_date"`
}

// ListHandler handles GET /tasks.
func (h *TaskHandler) ListHandler(c echo.Context) error {
	ctx := c.Request().Context()
	tasks, err := h.engine.FetchTasks(ctx)
	if err != nil {
		logger.ErrorLog(ctx, "failed to fetch tasks: %v", err)
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "failed to fetch tasks", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "", tasks)
}

// CreateHandler handles POST /tasks.
func (h *TaskHandler) CreateHandler(c echo.Context) error {
	ctx := c.Request().Context()
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "invalid request body", err)
	}
	if strings.TrimSpace(req.Title) == "" {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "title must not be empty", nil)
	}

	draft := domain.TaskDraft{Title: req.Title}
	if req.DueDate != "" {
		due, err := domain.ParseDueDate(req.DueDate)
		if err != nil {
			return serviceutils.ResponseError(c, http.StatusBadRequest, "invalid due_date", err)
		}
		draft.DueDate = &due
	}

	task, err := h.engine.CreateTask(ctx, draft)
	if err != nil {
		return h.taskError(c, "failed to create task", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "task created", task)
}

// UpdateHandler handles PUT /tasks/:id.
func (h *TaskHandler) UpdateHandler(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "invalid task id", err)
	}

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "invalid request body", err)
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "title must not be empty", nil)
	}

	patch := domain.TaskPatch{Title: req.Title, Completed: req.Completed}
	if req.DueDate != nil && *req.DueDate != "" {
		due, perr := domain.ParseDueDate(*req.DueDate)
		if perr != nil {
			return serviceutils.ResponseError(c, http.StatusBadRequest, "invalid due_date", perr)
		}
		patch.DueDate = &due
	}

	task, err := h.engine.UpdateTask(ctx, id, patch)
	if err != nil {
		return h.taskError(c, "failed to update task", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "task updated", task)
}

// DeleteHandler handles DELETE /tasks/:id.
func (h *TaskHandler) DeleteHandler(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "invalid task id", err)
	}

	if err := h.engine.DeleteTask(ctx, id); err != nil {
		return h.taskError(c, "failed to delete task", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "task deleted", nil)
}

// SyncHandler handles POST /sync: drains the offline queue and reports which
// actions were applied and which were dropped.
func (h *TaskHandler) SyncHandler(c echo.Context) error {
	ctx := c.Request().Context()
	result, err := h.engine.SyncOfflineChanges(ctx)
	if err != nil {
		logger.ErrorLog(ctx, "sync failed: %v", err)
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "sync failed", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "sync complete", result)
}

// DueHandler handles GET /tasks/due, the query the notification scheduler polls.
func (h *TaskHandler) DueHandler(c echo.Context) error {
	ctx := c.Request().Context()
	tasks, err := h.engine.GetDueTasks(ctx)
	if err != nil {
		logger.ErrorLog(ctx, "failed to query due tasks: %v", err)
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "failed to query due tasks", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "", tasks)
}

// QueueHandler handles GET /sync/queue for diagnostics.
func (h *TaskHandler) QueueHandler(c echo.Context) error {
	ctx := c.Request().Context()
	actions, err := h.engine.PendingActions(ctx)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "failed to read queue", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "", actions)
}

func (h *TaskHandler) taskError(c echo.Context, msg string, err error) error {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		return serviceutils.ResponseError(c, http.StatusNotFound, msg, err)
	case errors.Is(err, domain.ErrAuthenticationRequired):
		return serviceutils.ResponseError(c, http.StatusUnauthorized, msg, err)
	default:
		logger.ErrorLog(c.Request().Context(), "%s: %v", msg, err)
		return serviceutils.ResponseError(c, http.StatusInternalServerError, msg, err)
	}
}
