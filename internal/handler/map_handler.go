package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/agrosynth/internal/mapview"
	"github.com/quocanhngo/agrosynth/internal/middleware"
	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/internal/service"
)

// MapHandler serves map presentation data
type MapHandler struct {
	alerts    *service.AlertService
	owmAPIKey string
}

func NewMapHandler(alerts *service.AlertService, owmAPIKey string) *MapHandler {
	return &MapHandler{alerts: alerts, owmAPIKey: owmAPIKey}
}

// Markers godoc
// @Summary Alert markers
// @Description One marker per alert with coordinates. scope=device needs X-Device-ID. format=geojson returns a FeatureCollection.
// @Tags Map
// @Produce json
// @Param X-Device-ID header string false "Device identifier"
// @Param scope query string false "Which alerts" Enums(all, device)
// @Param format query string false "Response format" Enums(json, geojson)
// @Success 200 {array} mapview.Marker
// @Failure 400 {object} model.ErrorResponse
// @Router /map/markers [get]
func (h *MapHandler) Markers(c *gin.Context) {
	var (
		alerts []model.AlertRecord
		err    error
	)
	switch c.DefaultQuery("scope", "all") {
	case "all":
		alerts, err = h.alerts.List(c.Request.Context())
	case "device":
		deviceID := middleware.DeviceID(c)
		if deviceID == "" {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: model.ErrDeviceIDRequired.Error()})
			return
		}
		alerts, err = h.alerts.ListForDevice(c.Request.Context(), deviceID)
	default:
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "scope must be all or device"})
		return
	}
	if err != nil {
		log.Printf("⚠️  Load markers failed: %v", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to load alerts"})
		return
	}

	markers := mapview.Markers(alerts)
	if c.Query("format") == "geojson" {
		c.JSON(http.StatusOK, mapview.ToGeoJSON(markers))
		return
	}
	c.JSON(http.StatusOK, markers)
}

// Icons godoc
// @Summary Weather type legend
// @Tags Map
// @Produce json
// @Success 200 {array} mapview.IconDescriptor
// @Router /map/icons [get]
func (h *MapHandler) Icons(c *gin.Context) {
	c.JSON(http.StatusOK, mapview.Legend())
}

// Heatmap godoc
// @Summary Heat overlay
// @Tags Map
// @Produce json
// @Success 200 {object} mapview.HeatLayer
// @Router /map/heatmap [get]
func (h *MapHandler) Heatmap(c *gin.Context) {
	c.JSON(http.StatusOK, mapview.Heatmap())
}

// Polygons godoc
// @Summary Forecast area polygons
// @Tags Map
// @Produce json
// @Success 200 {array} mapview.Polygon
// @Router /map/polygons [get]
func (h *MapHandler) Polygons(c *gin.Context) {
	c.JSON(http.StatusOK, mapview.Polygons())
}

// Tiles godoc
// @Summary Tile layers
// @Description Base map plus weather overlays when an OpenWeatherMap key is configured
// @Tags Map
// @Produce json
// @Success 200 {array} mapview.TileLayer
// @Router /map/tiles [get]
func (h *MapHandler) Tiles(c *gin.Context) {
	c.JSON(http.StatusOK, mapview.TileLayers(h.owmAPIKey))
}

// Windy godoc
// @Summary Windy embed URL
// @Tags Map
// @Produce json
// @Success 200 {object} map[string]string
// @Router /map/windy [get]
func (h *MapHandler) Windy(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"url": mapview.WindyEmbedURL(mapview.NYC, 11)})
}

// Navigation godoc
// @Summary App navigation routes
// @Tags Map
// @Produce json
// @Success 200 {array} mapview.Route
// @Router /map/navigation [get]
func (h *MapHandler) Navigation(c *gin.Context) {
	c.JSON(http.StatusOK, mapview.Navigation())
}
