package v1

import (
	"github.com/gin-gonic/gin"

	"agri-api/internal/interfaces/httpserver/handlers"
)

func registerTeamRoutes(router gin.IRoutes, handler *handlers.TeamHandler) {
	router.GET("/farms/:farm_id/team", handler.ListTeam)
	router.POST("/farms/:farm_id/team", handler.CreateMember)
	router.GET("/team/:member_id", handler.GetMember)
	router.PATCH("/team/:member_id", handler.UpdateMember)
	router.DELETE("/team/:member_id", handler.DeleteMember)
	router.GET("/team/:member_id/tasks", handler.ListMemberTasks)
}
