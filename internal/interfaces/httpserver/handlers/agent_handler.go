package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agri-api/internal/domain/agent"
	"agri-api/internal/domain/status"
	"agri-api/internal/domain/thread"
	"agri-api/internal/infrastructure/metrics"
	"agri-api/internal/infrastructure/observability"
	"agri-api/internal/interfaces/httpserver/middlewares"
	"agri-api/internal/interfaces/httpserver/requests"
	"agri-api/internal/interfaces/httpserver/responses"
	"agri-api/internal/utils/platformerrors"
)

// AgentHandler exposes the advisory run stream and its conversation log.
type AgentHandler struct {
	coordinator *agent.Coordinator
	threads     *thread.Service
	sanitizer   *observability.Sanitizer
	log         zerolog.Logger
}

// NewAgentHandler constructs the handler.
func NewAgentHandler(coordinator *agent.Coordinator, threads *thread.Service, sanitizer *observability.Sanitizer, log zerolog.Logger) *AgentHandler {
	return &AgentHandler{
		coordinator: coordinator,
		threads:     threads,
		sanitizer:   sanitizer,
		log:         log.With().Str("handler", "agent").Logger(),
	}
}

// Run handles POST /api/v1/agent/threads/:thread_id/run
// @Summary Run the advisory agent
// @Description Stores the user message and streams the run as Server Sent Events named token, reasoning, tool_start, tool_end, done and error.
// @Tags Agent
// @Accept json
// @Produce text/event-stream
// @Security BearerAuth
// @Param thread_id path string true "Thread ID"
// @Param request body requests.RunRequest true "User message"
// @Success 200 {string} string "event stream"
// @Failure 400 {object} responses.ErrorResponse
// @Failure 401 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /api/v1/agent/threads/{thread_id}/run [post]
func (h *AgentHandler) Run(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req requests.RunRequest
	if !bindJSON(c, &req, "run-invalid-body") {
		return
	}

	ctx := c.Request.Context()
	prepared, err := h.coordinator.Prepare(ctx, principal, c.Param("thread_id"), req.Content)
	if err != nil {
		platformerrors.LogError(h.log, err)
		responses.HandleError(c, err, "failed to start run")
		return
	}

	flusher, ok := middlewares.PrepareSSE(c)
	if !ok {
		h.log.Warn().Str("run_id", prepared.Run.ID).Msg("response writer cannot flush; events will be buffered")
	}
	c.Status(http.StatusOK)
	if flusher != nil {
		flusher.Flush()
	}

	ctx, span := observability.StartRunSpan(ctx, prepared.Thread.ID, prepared.Run.ID)
	defer span.End()
	h.sanitizer.AnnotateRun(span, principal.ID, prepared.UserMessage.Content)

	metrics.RunStarted()
	start := time.Now()
	run := h.coordinator.Execute(ctx, prepared, newSSEEmitter(ctx, c.Writer, flusher))
	metrics.RecordRun(run.Status.String(), time.Since(start).Seconds())

	observability.AddStatusTransition(span, status.StatusRunning.String(), run.Status.String())
	if run.Status != status.StatusCompleted {
		observability.RecordError(span, errors.New(runError(run)))
	}
}

// Messages handles GET /api/v1/agent/threads/:thread_id/messages
// @Summary List thread messages
// @Description Returns messages in position order. limit defaults to 50 and is capped at 200.
// @Tags Agent
// @Produce json
// @Security BearerAuth
// @Param thread_id path string true "Thread ID"
// @Param limit query int false "Maximum number of messages"
// @Success 200 {object} responses.MessageList
// @Failure 401 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/agent/threads/{thread_id}/messages [get]
func (h *AgentHandler) Messages(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	messages, err := h.threads.Messages(c.Request.Context(), principal, c.Param("thread_id"), limit)
	if err != nil {
		responses.HandleError(c, err, "failed to list messages")
		return
	}
	c.JSON(http.StatusOK, responses.NewList(messages))
}

// Tools handles GET /api/v1/agent/tools
// @Summary List agent tools
// @Description Name, description and input JSON schema of every tool the agent may call
// @Tags Agent
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.ToolList
// @Router /api/v1/agent/tools [get]
func (h *AgentHandler) Tools(c *gin.Context) {
	c.JSON(http.StatusOK, responses.NewList(h.coordinator.Tools()))
}

func runError(run *thread.Run) string {
	if msg, ok := run.Metadata["error"].(string); ok && msg != "" {
		return msg
	}
	return fmt.Sprintf("run ended %s", run.Status)
}
