package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func deviceRouter(required bool) *gin.Engine {
	r := gin.New()
	r.Use(DeviceMiddleware(required))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, DeviceID(c))
	})
	return r
}

func serve(r http.Handler, deviceID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if deviceID != "" {
		req.Header.Set(DeviceIDHeader, deviceID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDeviceMiddleware_Required(t *testing.T) {
	r := deviceRouter(true)

	w := serve(r, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Device id required")

	w = serve(r, "  device-a  ")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "device-a", w.Body.String())
}

func TestDeviceMiddleware_Optional(t *testing.T) {
	r := deviceRouter(false)

	w := serve(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestDeviceMiddleware_RejectsOverlongID(t *testing.T) {
	w := serve(deviceRouter(false), strings.Repeat("x", 65))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(deviceRouter(true), strings.Repeat("x", 64))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSMiddleware_AllowsDeviceHeader(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:3000"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	req.Header.Set("Access-Control-Request-Headers", DeviceIDHeader)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "x-device-id")
}
