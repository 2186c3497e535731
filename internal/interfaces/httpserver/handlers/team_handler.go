package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agri-api/internal/domain/farm"
	"agri-api/internal/interfaces/httpserver/requests"
	"agri-api/internal/interfaces/httpserver/responses"
)

// TeamHandler exposes farm team members and their assignments.
type TeamHandler struct {
	service *farm.Service
	log     zerolog.Logger
}

// NewTeamHandler constructs the handler.
func NewTeamHandler(service *farm.Service, log zerolog.Logger) *TeamHandler {
	return &TeamHandler{
		service: service,
		log:     log.With().Str("handler", "team").Logger(),
	}
}

// ListTeam handles GET /api/v1/farms/:farm_id/team
// @Summary List team members
// @Description Active members ordered by name
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param farm_id path string true "Farm ID"
// @Param status query string false "active, break, off-duty or vacation"
// @Success 200 {object} responses.TeamList
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Router /api/v1/farms/{farm_id}/team [get]
func (h *TeamHandler) ListTeam(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	members, err := h.service.ListTeam(c.Request.Context(), principal, c.Param("farm_id"), farm.MemberStatus(c.Query("status")))
	if err != nil {
		responses.HandleError(c, err, "failed to list team")
		return
	}
	c.JSON(http.StatusOK, responses.NewList(members))
}

// CreateMember handles POST /api/v1/farms/:farm_id/team
// @Summary Add team member
// @Tags Team
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farm_id path string true "Farm ID"
// @Param request body requests.CreateMemberRequest true "Team member"
// @Success 201 {object} farm.TeamMember
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Router /api/v1/farms/{farm_id}/team [post]
func (h *TeamHandler) CreateMember(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req requests.CreateMemberRequest
	if !bindJSON(c, &req, "member-invalid-body") {
		return
	}
	m, err := h.service.CreateMember(c.Request.Context(), principal, c.Param("farm_id"), req.Params())
	if err != nil {
		responses.HandleError(c, err, "failed to add team member")
		return
	}
	c.JSON(http.StatusCreated, m)
}

// GetMember handles GET /api/v1/team/:member_id
// @Summary Get team member
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param member_id path string true "Member ID"
// @Success 200 {object} farm.TeamMember
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/team/{member_id} [get]
func (h *TeamHandler) GetMember(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	m, err := h.service.GetMember(c.Request.Context(), principal, c.Param("member_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get team member")
		return
	}
	c.JSON(http.StatusOK, m)
}

// UpdateMember handles PATCH /api/v1/team/:member_id
// @Summary Update team member
// @Tags Team
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param member_id path string true "Member ID"
// @Param request body requests.UpdateMemberRequest true "Fields to change"
// @Success 200 {object} farm.TeamMember
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Router /api/v1/team/{member_id} [patch]
func (h *TeamHandler) UpdateMember(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req requests.UpdateMemberRequest
	if !bindJSON(c, &req, "member-invalid-body") {
		return
	}
	m, err := h.service.UpdateMember(c.Request.Context(), principal, c.Param("member_id"), req.Params())
	if err != nil {
		responses.HandleError(c, err, "failed to update team member")
		return
	}
	c.JSON(http.StatusOK, m)
}

// DeleteMember handles DELETE /api/v1/team/:member_id
// @Summary Deactivate team member
// @Tags Team
// @Security BearerAuth
// @Param member_id path string true "Member ID"
// @Success 204
// @Failure 403 {object} responses.ErrorResponse
// @Router /api/v1/team/{member_id} [delete]
func (h *TeamHandler) DeleteMember(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	if err := h.service.DeleteMember(c.Request.Context(), principal, c.Param("member_id")); err != nil {
		responses.HandleError(c, err, "failed to remove team member")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMemberTasks handles GET /api/v1/team/:member_id/tasks
// @Summary Tasks assigned to a member
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param member_id path string true "Member ID"
// @Param status query string false "pending, in-progress, completed or cancelled"
// @Success 200 {object} responses.TaskList
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/team/{member_id}/tasks [get]
func (h *TeamHandler) ListMemberTasks(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	tasks, err := h.service.ListMemberTasks(c.Request.Context(), principal, c.Param("member_id"), farm.TaskStatus(c.Query("status")))
	if err != nil {
		responses.HandleError(c, err, "failed to list member tasks")
		return
	}
	c.JSON(http.StatusOK, responses.NewList(tasks))
}
