package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agri-api/internal/domain/farm"
	"agri-api/internal/interfaces/httpserver/requests"
	"agri-api/internal/interfaces/httpserver/responses"
)

// TaskHandler exposes farm tasks.
type TaskHandler struct {
	service *farm.Service
	log     zerolog.Logger
}

// NewTaskHandler constructs the handler.
func NewTaskHandler(service *farm.Service, log zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		service: service,
		log:     log.With().Str("handler", "task").Logger(),
	}
}

// ListTasks handles GET /api/v1/farms/:farm_id/tasks
// @Summary List farm tasks
// @Description Ordered by due date with undated tasks last, then newest first
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param farm_id path string true "Farm ID"
// @Param status query string false "pending, in-progress, completed or cancelled"
// @Param priority query string false "high, medium or low"
// @Success 200 {object} responses.TaskList
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Router /api/v1/farms/{farm_id}/tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	tasks, err := h.service.ListTasks(c.Request.Context(), principal, c.Param("farm_id"),
		farm.TaskStatus(c.Query("status")), farm.TaskPriority(c.Query("priority")))
	if err != nil {
		responses.HandleError(c, err, "failed to list tasks")
		return
	}
	c.JSON(http.StatusOK, responses.NewList(tasks))
}

// CreateTask handles POST /api/v1/farms/:farm_id/tasks
// @Summary Create task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farm_id path string true "Farm ID"
// @Param request body requests.CreateTaskRequest true "Task"
// @Success 201 {object} farm.Task
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Router /api/v1/farms/{farm_id}/tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req requests.CreateTaskRequest
	if !bindJSON(c, &req, "task-invalid-body") {
		return
	}
	t, err := h.service.CreateTask(c.Request.Context(), principal, c.Param("farm_id"), req.Params())
	if err != nil {
		responses.HandleError(c, err, "failed to create task")
		return
	}
	c.JSON(http.StatusCreated, t)
}

// GetTask handles GET /api/v1/tasks/:task_id
// @Summary Get task
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param task_id path string true "Task ID"
// @Success 200 {object} farm.Task
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/tasks/{task_id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	t, err := h.service.GetTask(c.Request.Context(), principal, c.Param("task_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get task")
		return
	}
	c.JSON(http.StatusOK, t)
}

// UpdateTask handles PATCH /api/v1/tasks/:task_id
// @Summary Update task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param task_id path string true "Task ID"
// @Param request body requests.UpdateTaskRequest true "Fields to change"
// @Success 200 {object} farm.Task
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/tasks/{task_id} [patch]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req requests.UpdateTaskRequest
	if !bindJSON(c, &req, "task-invalid-body") {
		return
	}
	t, err := h.service.UpdateTask(c.Request.Context(), principal, c.Param("task_id"), req.Params())
	if err != nil {
		responses.HandleError(c, err, "failed to update task")
		return
	}
	c.JSON(http.StatusOK, t)
}

// DeleteTask handles DELETE /api/v1/tasks/:task_id
// @Summary Delete task
// @Tags Tasks
// @Security BearerAuth
// @Param task_id path string true "Task ID"
// @Success 204
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/tasks/{task_id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	if err := h.service.DeleteTask(c.Request.Context(), principal, c.Param("task_id")); err != nil {
		responses.HandleError(c, err, "failed to delete task")
		return
	}
	c.Status(http.StatusNoContent)
}
