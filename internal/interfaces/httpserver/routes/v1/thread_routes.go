package v1

import (
	"github.com/gin-gonic/gin"

	"agri-api/internal/interfaces/httpserver/handlers"
)

func registerThreadRoutes(router gin.IRoutes, handler *handlers.ThreadHandler) {
	router.GET("/threads", handler.List)
	router.POST("/threads", handler.Create)
	router.GET("/threads/:thread_id", handler.Get)
	router.PATCH("/threads/:thread_id", handler.Update)
	router.DELETE("/threads/:thread_id", handler.Delete)
}
