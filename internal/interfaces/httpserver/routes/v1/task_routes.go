package v1

import (
	"github.com/gin-gonic/gin"

	"agri-api/internal/interfaces/httpserver/handlers"
)

func registerTaskRoutes(router gin.IRoutes, handler *handlers.TaskHandler) {
	router.GET("/farms/:farm_id/tasks", handler.ListTasks)
	router.POST("/farms/:farm_id/tasks", handler.CreateTask)
	router.GET("/tasks/:task_id", handler.GetTask)
	router.PATCH("/tasks/:task_id", handler.UpdateTask)
	router.DELETE("/tasks/:task_id", handler.DeleteTask)
}
