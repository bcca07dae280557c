package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/agrosynth/internal/model"
)

const (
	// DeviceIDHeader carries the client's self-declared device identifier
	DeviceIDHeader = "X-Device-ID"

	deviceIDKey    = "device_id"
	maxDeviceIDLen = 64
)

// DeviceMiddleware reads the device identifier from the X-Device-ID header.
// The identifier is not authenticated; it only partitions alerts by client.
// With required set, requests without a usable identifier are rejected.
func DeviceMiddleware(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := strings.TrimSpace(c.GetHeader(DeviceIDHeader))

		if len(deviceID) > maxDeviceIDLen {
			c.AbortWithStatusJSON(http.StatusBadRequest, model.ErrorResponse{
				Error:   "Invalid device id",
				Message: "device id must be at most 64 characters",
			})
			return
		}
		if deviceID == "" && required {
			c.AbortWithStatusJSON(http.StatusBadRequest, model.ErrorResponse{
				Error:   "Device id required",
				Message: model.ErrDeviceIDRequired.Error() + ": set the " + DeviceIDHeader + " header",
			})
			return
		}

		c.Set(deviceIDKey, deviceID)
		c.Next()
	}
}

// DeviceID returns the identifier stored by DeviceMiddleware
func DeviceID(c *gin.Context) string {
	return c.GetString(deviceIDKey)
}
