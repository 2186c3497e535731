package v1

import (
	"github.com/gin-gonic/gin"

	"agri-api/internal/interfaces/httpserver/handlers"
)

func registerFarmRoutes(router gin.IRoutes, handler *handlers.FarmHandler) {
	router.GET("/farms", handler.ListFarms)
	router.POST("/farms", handler.CreateFarm)
	router.GET("/farms/:farm_id", handler.GetFarm)
	router.PATCH("/farms/:farm_id", handler.UpdateFarm)
	router.DELETE("/farms/:farm_id", handler.DeleteFarm)

	// zones nested under farms
	router.POST("/farms/:farm_id/zones", handler.CreateZone)
	router.GET("/farms/:farm_id/zones", handler.ListZones)

	router.GET("/zones/:zone_id/sensors", handler.ListReadings)
	router.GET("/zones/:zone_id/sensors/latest", handler.LatestReading)
	router.POST("/sensors", handler.RecordReading)
}
