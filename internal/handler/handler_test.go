package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/quocanhngo/agrosynth/internal/middleware"
	"github.com/quocanhngo/agrosynth/internal/repository"
	"github.com/quocanhngo/agrosynth/internal/service"
	"github.com/quocanhngo/agrosynth/internal/testutil"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

// newAlertRouter wires the alert and map routes the way the server does
func newAlertRouter(t *testing.T) (*gin.Engine, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testNow)
	alerts := service.NewAlertService(repository.NewAlertRepository(testutil.NewSQLiteDB(t)), clock, nil, nil, nil)
	alertHandler := NewAlertHandler(alerts)
	mapHandler := NewMapHandler(alerts, "owm-key")

	r := gin.New()
	api := r.Group("/api/v1")
	public := api.Group("")
	public.Use(middleware.DeviceMiddleware(false))
	{
		public.GET("/alerts", alertHandler.ListAlerts)
		public.GET("/alerts/:id", alertHandler.GetAlert)
		public.GET("/map/markers", mapHandler.Markers)
		public.GET("/map/heatmap", mapHandler.Heatmap)
		public.GET("/map/polygons", mapHandler.Polygons)
		public.GET("/map/tiles", mapHandler.Tiles)
		public.GET("/map/windy", mapHandler.Windy)
		public.GET("/map/icons", mapHandler.Icons)
		public.GET("/map/navigation", mapHandler.Navigation)
	}
	device := api.Group("")
	device.Use(middleware.DeviceMiddleware(true))
	{
		device.POST("/alerts", alertHandler.CreateAlert)
		device.GET("/device/alerts", alertHandler.ListDeviceAlerts)
		device.DELETE("/alerts/:id", alertHandler.DeleteAlert)
	}
	return r, clock
}

func doJSON(t *testing.T, r http.Handler, method, path, deviceID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if deviceID != "" {
		req.Header.Set(middleware.DeviceIDHeader, deviceID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
