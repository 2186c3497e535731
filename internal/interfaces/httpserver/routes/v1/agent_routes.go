package v1

import (
	"github.com/gin-gonic/gin"

	"agri-api/internal/interfaces/httpserver/handlers"
)

func registerAgentRoutes(router gin.IRoutes, handler *handlers.AgentHandler) {
	router.POST("/agent/threads/:thread_id/run", handler.Run)
	router.GET("/agent/threads/:thread_id/messages", handler.Messages)
	router.GET("/agent/tools", handler.Tools)
}
