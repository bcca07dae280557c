package handler

import (
	"net/http"
	"testing"

	"github.com/quocanhngo/agrosynth/internal/mapview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkers_ScopeAndCoordinates(t *testing.T) {
	r, _ := newAlertRouter(t)

	placed := floodWatchBody()
	placed["lat"] = 40.6759
	placed["lng"] = -74.0121
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/v1/alerts", "device-a", placed).Code)
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/v1/alerts", "device-a", floodWatchBody()).Code)
	other := floodWatchBody()
	other["lat"] = 40.7
	other["lng"] = -73.9
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/v1/alerts", "device-b", other).Code)

	all := decode[[]mapview.Marker](t, doJSON(t, r, http.MethodGet, "/api/v1/map/markers", "", nil))
	assert.Len(t, all, 2)

	mine := decode[[]mapview.Marker](t, doJSON(t, r, http.MethodGet, "/api/v1/map/markers?scope=device", "device-a", nil))
	require.Len(t, mine, 1)
	assert.Equal(t, 40.6759, mine[0].Lat)
	assert.Equal(t, "Flood", mine[0].Icon.Label)

	w := doJSON(t, r, http.MethodGet, "/api/v1/map/markers?scope=device", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, r, http.MethodGet, "/api/v1/map/markers?scope=mine", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	fc := decode[mapview.FeatureCollection](t, doJSON(t, r, http.MethodGet, "/api/v1/map/markers?format=geojson", "", nil))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, 2)
}

func TestStaticMapData(t *testing.T) {
	r, _ := newAlertRouter(t)

	heat := decode[mapview.HeatLayer](t, doJSON(t, r, http.MethodGet, "/api/v1/map/heatmap", "", nil))
	assert.Equal(t, 50, heat.Radius)

	polys := decode[[]mapview.Polygon](t, doJSON(t, r, http.MethodGet, "/api/v1/map/polygons", "", nil))
	require.Len(t, polys, 1)

	tiles := decode[[]mapview.TileLayer](t, doJSON(t, r, http.MethodGet, "/api/v1/map/tiles", "", nil))
	require.Len(t, tiles, 3)
	assert.Contains(t, tiles[1].URL, "appid=owm-key")

	windy := decode[map[string]string](t, doJSON(t, r, http.MethodGet, "/api/v1/map/windy", "", nil))
	assert.Contains(t, windy["url"], "embed.windy.com")

	icons := decode[[]mapview.IconDescriptor](t, doJSON(t, r, http.MethodGet, "/api/v1/map/icons", "", nil))
	assert.Len(t, icons, 8)

	routes := decode[[]mapview.Route](t, doJSON(t, r, http.MethodGet, "/api/v1/map/navigation", "", nil))
	assert.NotEmpty(t, routes)
}
