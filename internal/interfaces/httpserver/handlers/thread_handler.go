package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agri-api/internal/domain/thread"
	"agri-api/internal/interfaces/httpserver/requests"
	"agri-api/internal/interfaces/httpserver/responses"
)

// ThreadHandler exposes conversation thread management.
type ThreadHandler struct {
	service *thread.Service
	log     zerolog.Logger
}

// NewThreadHandler constructs the handler.
func NewThreadHandler(service *thread.Service, log zerolog.Logger) *ThreadHandler {
	return &ThreadHandler{
		service: service,
		log:     log.With().Str("handler", "thread").Logger(),
	}
}

// List handles GET /api/v1/threads
// @Summary List threads
// @Description Caller's threads, most recently active first
// @Tags Threads
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.ThreadList
// @Failure 401 {object} responses.ErrorResponse
// @Router /api/v1/threads [get]
func (h *ThreadHandler) List(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	threads, err := h.service.List(c.Request.Context(), principal)
	if err != nil {
		responses.HandleError(c, err, "failed to list threads")
		return
	}
	c.JSON(http.StatusOK, responses.NewList(threads))
}

// Create handles POST /api/v1/threads
// @Summary Create thread
// @Tags Threads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body requests.CreateThreadRequest false "Thread attributes"
// @Success 201 {object} thread.Thread
// @Failure 400 {object} responses.ErrorResponse
// @Router /api/v1/threads [post]
func (h *ThreadHandler) Create(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req requests.CreateThreadRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "thread-invalid-body") {
		return
	}

	t, err := h.service.Create(c.Request.Context(), principal, req.Params())
	if err != nil {
		responses.HandleError(c, err, "failed to create thread")
		return
	}
	c.JSON(http.StatusCreated, t)
}

// Get handles GET /api/v1/threads/:thread_id
// @Summary Get thread
// @Tags Threads
// @Produce json
// @Security BearerAuth
// @Param thread_id path string true "Thread ID"
// @Success 200 {object} thread.Thread
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/threads/{thread_id} [get]
func (h *ThreadHandler) Get(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	t, err := h.service.Get(c.Request.Context(), principal, c.Param("thread_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get thread")
		return
	}
	c.JSON(http.StatusOK, t)
}

// Update handles PATCH /api/v1/threads/:thread_id
// @Summary Update thread
// @Tags Threads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param thread_id path string true "Thread ID"
// @Param request body requests.UpdateThreadRequest true "Fields to change"
// @Success 200 {object} thread.Thread
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/threads/{thread_id} [patch]
func (h *ThreadHandler) Update(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req requests.UpdateThreadRequest
	if !bindJSON(c, &req, "thread-invalid-body") {
		return
	}

	t, err := h.service.Update(c.Request.Context(), principal, c.Param("thread_id"), req.Params())
	if err != nil {
		responses.HandleError(c, err, "failed to update thread")
		return
	}
	c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /api/v1/threads/:thread_id
// @Summary Delete thread
// @Description Removes the thread with its messages and runs
// @Tags Threads
// @Security BearerAuth
// @Param thread_id path string true "Thread ID"
// @Success 204
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/threads/{thread_id} [delete]
func (h *ThreadHandler) Delete(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), principal, c.Param("thread_id")); err != nil {
		responses.HandleError(c, err, "failed to delete thread")
		return
	}
	c.Status(http.StatusNoContent)
}
