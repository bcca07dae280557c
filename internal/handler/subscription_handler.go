package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/agrosynth/internal/middleware"
	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/internal/service"
)

// SubscriptionHandler handles email alert subscriptions
type SubscriptionHandler struct {
	subscriptions *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptions *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// Subscribe godoc
// @Summary Subscribe to alert emails
// @Description Idempotent per device and email. A confirmation is mailed for new subscriptions.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param X-Device-ID header string true "Device identifier"
// @Param body body model.SubscribeRequest true "Email"
// @Success 201 {object} model.SubscribeResponse
// @Success 200 {object} model.SubscribeResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /subscriptions [post]
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req model.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	created, err := h.subscriptions.Subscribe(c.Request.Context(), middleware.DeviceID(c), req.Email)
	if err != nil {
		if errors.Is(err, model.ErrDeviceIDRequired) {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to subscribe", Message: err.Error()})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, model.SubscribeResponse{Email: req.Email, Created: created})
}
