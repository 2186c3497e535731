package v1

import (
	"github.com/gin-gonic/gin"

	"agri-api/internal/interfaces/httpserver/handlers"
)

func registerAlertRoutes(router gin.IRoutes, handler *handlers.AlertHandler) {
	router.GET("/zones/:zone_id/alerts", handler.ListZoneAlerts)
	router.POST("/zones/:zone_id/alerts", handler.CreateAlert)
	router.GET("/farms/:farm_id/alerts", handler.ListFarmAlerts)
	router.GET("/alerts/:alert_id", handler.GetAlert)
	router.PATCH("/alerts/:alert_id", handler.UpdateAlert)
	router.DELETE("/alerts/:alert_id", handler.DeleteAlert)
}
