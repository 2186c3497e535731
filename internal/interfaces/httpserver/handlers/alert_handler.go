package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agri-api/internal/domain/farm"
	"agri-api/internal/interfaces/httpserver/requests"
	"agri-api/internal/interfaces/httpserver/responses"
)

// AlertHandler exposes zone alerts.
type AlertHandler struct {
	service *farm.Service
	log     zerolog.Logger
}

// NewAlertHandler constructs the handler.
func NewAlertHandler(service *farm.Service, log zerolog.Logger) *AlertHandler {
	return &AlertHandler{
		service: service,
		log:     log.With().Str("handler", "alert").Logger(),
	}
}

// ListZoneAlerts handles GET /api/v1/zones/:zone_id/alerts
// @Summary List zone alerts
// @Description Most urgent first (priority 1), then newest first
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param zone_id path string true "Zone ID"
// @Param resolved query bool false "Only resolved or only open alerts"
// @Success 200 {object} responses.AlertList
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/zones/{zone_id}/alerts [get]
func (h *AlertHandler) ListZoneAlerts(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	resolved, ok := queryResolved(c)
	if !ok {
		return
	}
	alerts, err := h.service.ListZoneAlerts(c.Request.Context(), principal, c.Param("zone_id"), resolved)
	if err != nil {
		responses.HandleError(c, err, "failed to list alerts")
		return
	}
	c.JSON(http.StatusOK, responses.NewList(alerts))
}

// ListFarmAlerts handles GET /api/v1/farms/:farm_id/alerts
// @Summary List farm alerts
// @Description Alerts of every active zone on the farm, most urgent first
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param farm_id path string true "Farm ID"
// @Param resolved query bool false "Only resolved or only open alerts"
// @Success 200 {object} responses.AlertList
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/farms/{farm_id}/alerts [get]
func (h *AlertHandler) ListFarmAlerts(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	resolved, ok := queryResolved(c)
	if !ok {
		return
	}
	alerts, err := h.service.ListFarmAlerts(c.Request.Context(), principal, c.Param("farm_id"), resolved)
	if err != nil {
		responses.HandleError(c, err, "failed to list alerts")
		return
	}
	c.JSON(http.StatusOK, responses.NewList(alerts))
}

// CreateAlert handles POST /api/v1/zones/:zone_id/alerts
// @Summary Raise alert
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param zone_id path string true "Zone ID"
// @Param request body requests.CreateAlertRequest true "Alert"
// @Success 201 {object} farm.Alert
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/zones/{zone_id}/alerts [post]
func (h *AlertHandler) CreateAlert(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req requests.CreateAlertRequest
	if !bindJSON(c, &req, "alert-invalid-body") {
		return
	}
	a, err := h.service.CreateAlert(c.Request.Context(), principal, c.Param("zone_id"), req.Params())
	if err != nil {
		responses.HandleError(c, err, "failed to create alert")
		return
	}
	c.JSON(http.StatusCreated, a)
}

// GetAlert handles GET /api/v1/alerts/:alert_id
// @Summary Get alert
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param alert_id path string true "Alert ID"
// @Success 200 {object} farm.Alert
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/alerts/{alert_id} [get]
func (h *AlertHandler) GetAlert(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	a, err := h.service.GetAlert(c.Request.Context(), principal, c.Param("alert_id"))
	if err != nil {
		responses.HandleError(c, err, "failed to get alert")
		return
	}
	c.JSON(http.StatusOK, a)
}

// UpdateAlert handles PATCH /api/v1/alerts/:alert_id
// @Summary Update or resolve alert
// @Description Setting is_resolved records the caller as resolver; clearing it reopens the alert
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param alert_id path string true "Alert ID"
// @Param request body requests.UpdateAlertRequest true "Fields to change"
// @Success 200 {object} farm.Alert
// @Failure 400 {object} responses.ErrorResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/alerts/{alert_id} [patch]
func (h *AlertHandler) UpdateAlert(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req requests.UpdateAlertRequest
	if !bindJSON(c, &req, "alert-invalid-body") {
		return
	}
	a, err := h.service.UpdateAlert(c.Request.Context(), principal, c.Param("alert_id"), req.Params())
	if err != nil {
		responses.HandleError(c, err, "failed to update alert")
		return
	}
	c.JSON(http.StatusOK, a)
}

// DeleteAlert handles DELETE /api/v1/alerts/:alert_id
// @Summary Delete alert
// @Tags Alerts
// @Security BearerAuth
// @Param alert_id path string true "Alert ID"
// @Success 204
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /api/v1/alerts/{alert_id} [delete]
func (h *AlertHandler) DeleteAlert(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	if err := h.service.DeleteAlert(c.Request.Context(), principal, c.Param("alert_id")); err != nil {
		responses.HandleError(c, err, "failed to delete alert")
		return
	}
	c.Status(http.StatusNoContent)
}
