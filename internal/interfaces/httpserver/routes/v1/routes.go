package v1

import (
	"github.com/gin-gonic/gin"

	"agri-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes builds the v1 route registrar.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{
		handlers: handlerProvider,
	}
}

// Register attaches all v1 routes under the /api/v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/api/v1")
	registerAgentRoutes(group, r.handlers.Agent)
	registerThreadRoutes(group, r.handlers.Thread)
	registerFarmRoutes(group, r.handlers.Farm)
	registerAlertRoutes(group, r.handlers.Alert)
	registerTaskRoutes(group, r.handlers.Task)
	registerTeamRoutes(group, r.handlers.Team)
	registerUserRoutes(group, r.handlers.User)
}
