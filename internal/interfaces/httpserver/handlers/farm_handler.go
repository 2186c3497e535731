package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agri-api/internal/domain/farm"
	"agri-api/internal/interfaces/httpserver/requests"
	"agri-api/internal/interfaces/httpserver/responses"
)

// FarmHandler exposes farms, zones and sensor readings.
type FarmHandler struct {
	service *farm.Service
	log     zerolog.Logger
}

// NewFarmHandler constructs the handler.
func NewFarmHandler(service *farm.Service, log zerolog.Logger) *FarmHandler {
	return &FarmHandler{
		service: service,
		log:     log.With().Str("handler", "farm").Logger(),
	}
}

// ListFarms handles GET /api/v1/farms
// @Summary List farms
// @Description Active farms owned by the caller, newest first
// @Tags Farms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.FarmList
// @Router /api/v1/farms [get]
func (h *FarmHandler) ListFarms(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	farms, err := h.service.ListFarms(c.Request.Context(), principal)
	if err != nil {
		responses.HandleError(c, err, "failed to list farms")
		return
	}
	c.JSON(http.StatusOK, responses.NewList(farms))
}

// CreateFarm handles POST /api/v1/farms
// @Summary Create farm
// @Tags Farms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body requests.CreateFarmRequest true "Farm"
// @Success 201 {object} farm.Farm
// @Failure 400 {object} responses.ErrorResponse
// @Router /api/v1/farms [post]
func (h *FarmHandler) CreateFarm(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req requests.CreateFarmRequest
	if !bindJSON(c, &req, "farm-invalid-body") {
		return
	}
	f, err := h.service.CreateFarm(c.Request.Context(), principal, req.Params())
	if err != nil {
		responses.HandleError(c, err, "failed to create farm")
		return
	}
	c.JSON(http.StatusCreated, f)
}

// GetFarm handles GET /api/v1/farms/:farm_id
// @Summary Get farm
// @Tags Farms
// @Produce json
// @Security BearerAuth
// @Param farm_id path string true "Farm ID"
// @Success 200 {object} farm.Farm
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/farms/{farm_id} [get]
func (h *FarmHandler) GetFarm(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	f, err := h.service.GetFarm(c.Request.Context(), principal, c.Param("farm_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get farm")
		return
	}
	c.JSON(http.StatusOK, f)
}

// UpdateFarm handles PATCH /api/v1/farms/:farm_id
// @Summary Update farm
// @Tags Farms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farm_id path string true "Farm ID"
// @Param request body requests.UpdateFarmRequest true "Fields to change"
// @Success 200 {object} farm.Farm
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Router /api/v1/farms/{farm_id} [patch]
func (h *FarmHandler) UpdateFarm(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req requests.UpdateFarmRequest
	if !bindJSON(c, &req, "farm-invalid-body") {
		return
	}
	f, err := h.service.UpdateFarm(c.Request.Context(), principal, c.Param("farm_id"), req.Params())
	if err != nil {
		responses.HandleError(c, err, "failed to update farm")
		return
	}
	c.JSON(http.StatusOK, f)
}

// DeleteFarm handles DELETE /api/v1/farms/:farm_id
// @Summary Deactivate farm
// @Tags Farms
// @Security BearerAuth
// @Param farm_id path string true "Farm ID"
// @Success 204
// @Failure 403 {object} responses.ErrorResponse
// @Router /api/v1/farms/{farm_id} [delete]
func (h *FarmHandler) DeleteFarm(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	if err := h.service.DeleteFarm(c.Request.Context(), principal, c.Param("farm_id")); err != nil {
		responses.HandleError(c, err, "failed to delete farm")
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateZone handles POST /api/v1/farms/:farm_id/zones
// @Summary Create zone
// @Tags Zones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param farm_id path string true "Farm ID"
// @Param request body requests.CreateZoneRequest true "Zone"
// @Success 201 {object} farm.Zone
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Router /api/v1/farms/{farm_id}/zones [post]
func (h *FarmHandler) CreateZone(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req requests.CreateZoneRequest
	if !bindJSON(c, &req, "zone-invalid-body") {
		return
	}
	z, err := h.service.CreateZone(c.Request.Context(), principal, c.Param("farm_id"), req.Params())
	if err != nil {
		responses.HandleError(c, err, "failed to create zone")
		return
	}
	c.JSON(http.StatusCreated, z)
}

// ListZones handles GET /api/v1/farms/:farm_id/zones
// @Summary List zones
// @Tags Zones
// @Produce json
// @Security BearerAuth
// @Param farm_id path string true "Farm ID"
// @Success 200 {object} responses.ZoneList
// @Failure 403 {object} responses.ErrorResponse
// @Router /api/v1/farms/{farm_id}/zones [get]
func (h *FarmHandler) ListZones(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	zones, err := h.service.ListZones(c.Request.Context(), principal, c.Param("farm_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to list zones")
		return
	}
	c.JSON(http.StatusOK, responses.NewList(zones))
}

// ListReadings handles GET /api/v1/zones/:zone_id/sensors
// @Summary List sensor readings
// @Description Newest first. limit defaults to 10 and must be within 1..100.
// @Tags Sensors
// @Produce json
// @Security BearerAuth
// @Param zone_id path string true "Zone ID"
// @Param limit query int false "Maximum number of readings"
// @Success 200 {object} responses.ReadingList
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Router /api/v1/zones/{zone_id}/sensors [get]
func (h *FarmHandler) ListReadings(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	readings, err := h.service.ListReadings(c.Request.Context(), principal, c.Param("zone_id"), limit)
	if err != nil {
		responses.HandleError(c, err, "failed to list readings")
		return
	}
	c.JSON(http.StatusOK, responses.NewList(readings))
}

// LatestReading handles GET /api/v1/zones/:zone_id/sensors/latest
// @Summary Latest sensor reading
// @Tags Sensors
// @Produce json
// @Security BearerAuth
// @Param zone_id path string true "Zone ID"
// @Success 200 {object} farm.SensorReading
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/zones/{zone_id}/sensors/latest [get]
func (h *FarmHandler) LatestReading(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	reading, err := h.service.LatestReading(c.Request.Context(), principal, c.Param("zone_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get latest reading")
		return
	}
	c.JSON(http.StatusOK, reading)
}

// RecordReading handles POST /api/v1/sensors
// @Summary Ingest sensor reading
// @Tags Sensors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body requests.CreateReadingRequest true "Reading"
// @Success 201 {object} farm.SensorReading
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Router /api/v1/sensors [post]
func (h *FarmHandler) RecordReading(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req requests.CreateReadingRequest
	if !bindJSON(c, &req, "reading-invalid-body") {
		return
	}
	reading, err := h.service.RecordReading(c.Request.Context(), principal, req.Params())
	if err != nil {
		responses.HandleError(c, err, "failed to record reading")
		return
	}
	c.JSON(http.StatusCreated, reading)
}
