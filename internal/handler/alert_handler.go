package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quocanhngo/agrosynth/internal/middleware"
	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/internal/service"
)

// AlertHandler handles alert HTTP endpoints
type AlertHandler struct {
	alerts *service.AlertService
}

func NewAlertHandler(alerts *service.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// CreateAlert godoc
// @Summary Report a weather alert
// @Description Stores an alert for the calling device. lat and lng must be sent together.
// @Tags Alerts
// @Accept json
// @Produce json
// @Param X-Device-ID header string true "Device identifier"
// @Param body body model.CreateAlertRequest true "Alert"
// @Success 201 {object} model.AlertRecord
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /alerts [post]
func (h *AlertHandler) CreateAlert(c *gin.Context) {
	var req model.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	alert, err := h.alerts.Create(c.Request.Context(), middleware.DeviceID(c), req)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid alert", Message: err.Error()})
			return
		}
		log.Printf("⚠️  Create alert failed: %v", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to save alert", Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, alert)
}

// ListAlerts godoc
// @Summary List all alerts
// @Description Every device's alerts, newest first. No pagination.
// @Tags Alerts
// @Produce json
// @Success 200 {array} model.AlertRecord
// @Failure 500 {object} model.ErrorResponse
// @Router /alerts [get]
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.alerts.List(c.Request.Context())
	if err != nil {
		log.Printf("⚠️  List alerts failed: %v", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to load alerts"})
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// ListDeviceAlerts godoc
// @Summary List the calling device's alerts
// @Tags Alerts
// @Produce json
// @Param X-Device-ID header string true "Device identifier"
// @Success 200 {array} model.AlertRecord
// @Failure 400 {object} model.ErrorResponse
// @Router /device/alerts [get]
func (h *AlertHandler) ListDeviceAlerts(c *gin.Context) {
	alerts, err := h.alerts.ListForDevice(c.Request.Context(), middleware.DeviceID(c))
	if err != nil {
		if errors.Is(err, model.ErrDeviceIDRequired) {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
			return
		}
		log.Printf("⚠️  List device alerts failed: %v", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to load alerts"})
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// GetAlert godoc
// @Summary Get an alert
// @Tags Alerts
// @Produce json
// @Param id path string true "Alert ID"
// @Success 200 {object} model.AlertRecord
// @Failure 404 {object} model.ErrorResponse
// @Router /alerts/{id} [get]
func (h *AlertHandler) GetAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid alert ID"})
		return
	}

	alert, err := h.alerts.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to load alert"})
		return
	}
	c.JSON(http.StatusOK, alert)
}

// DeleteAlert godoc
// @Summary Delete one of the calling device's alerts
// @Description Only removes the alert when the device matches. deleted is 0 for a missing or foreign alert.
// @Tags Alerts
// @Produce json
// @Param X-Device-ID header string true "Device identifier"
// @Param id path string true "Alert ID"
// @Success 200 {object} model.DeleteAlertResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /alerts/{id} [delete]
func (h *AlertHandler) DeleteAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid alert ID"})
		return
	}

	n, err := h.alerts.Delete(c.Request.Context(), id, middleware.DeviceID(c))
	if err != nil {
		if errors.Is(err, model.ErrDeviceIDRequired) {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to delete alert", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.DeleteAlertResponse{ID: id, Deleted: n})
}

func isValidationError(err error) bool {
	return errors.Is(err, model.ErrDeviceIDRequired) ||
		errors.Is(err, model.ErrInvalidCoordinates) ||
		errors.Is(err, model.ErrUnknownWeatherType)
}
