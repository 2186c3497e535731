package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agri-api/internal/domain/farm"
	"agri-api/internal/domain/thread"
	"agri-api/internal/interfaces/httpserver/responses"
)

// UserHandler describes the caller. Identity comes from the verified token;
// there is no local user table.
type UserHandler struct {
	threads *thread.Service
	farms   *farm.Service
	log     zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(threads *thread.Service, farms *farm.Service, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		threads: threads,
		farms:   farms,
		log:     log.With().Str("handler", "user").Logger(),
	}
}

// Me handles GET /api/v1/me
// @Summary Current user
// @Description Token claims with the caller's thread and active farm counts
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.Profile
// @Failure 401 {object} responses.ErrorResponse
// @Router /api/v1/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	threads, err := h.threads.List(ctx, principal)
	if err != nil {
		responses.HandleError(c, err, "failed to count threads")
		return
	}
	farms, err := h.farms.ListFarms(ctx, principal)
	if err != nil {
		responses.HandleError(c, err, "failed to count farms")
		return
	}
	c.JSON(http.StatusOK, responses.Profile{
		ID:          principal.ID,
		Subject:     principal.Subject,
		Issuer:      principal.Issuer,
		Email:       principal.Email,
		Role:        principal.Role,
		AuthMethod:  string(principal.AuthMethod),
		ThreadCount: len(threads),
		FarmCount:   len(farms),
	})
}
