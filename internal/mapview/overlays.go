package mapview

import (
	"net/url"
	"strconv"
)

// LatLng is a map coordinate
type LatLng [2]float64

// NYC is the default map centre and the geolocation fallback
var NYC = LatLng{40.7128, -74.0060}

// HeatPoint is a weighted point of the heat overlay
type HeatPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Intensity float64 `json:"intensity"`
	Label     string  `json:"label"`
}

// HeatLayer is the heat-intensity overlay with its rendering options
type HeatLayer struct {
	Center   LatLng            `json:"center"`
	Zoom     int               `json:"zoom"`
	Radius   int               `json:"radius"`
	Blur     int               `json:"blur"`
	MaxZoom  int               `json:"max_zoom"`
	Gradient map[string]string `json:"gradient"`
	Points   []HeatPoint       `json:"points"`
}

// Heatmap returns the hand-authored NYC heat overlay
func Heatmap() HeatLayer {
	return HeatLayer{
		Center:  NYC,
		Zoom:    12,
		Radius:  50,
		Blur:    25,
		MaxZoom: 17,
		Gradient: map[string]string{
			"0.2": "blue",
			"0.4": "lime",
			"0.6": "orange",
			"0.8": "red",
		},
		Points: []HeatPoint{
			{40.7128, -74.0060, 1.0, "Manhattan"},
			{40.7306, -73.9352, 1.0, "Queens"},
			{40.6500, -73.9499, 1.0, "Brooklyn"},
			{40.8448, -73.8648, 1.0, "Bronx"},
			{40.5795, -74.1502, 1.0, "Staten Island"},
			{40.6782, -73.9442, 0.9, "Crown Heights"},
			{40.7484, -73.9857, 0.8, "Midtown"},
			{40.7580, -73.9855, 0.7, "Times Square"},
			{40.7291, -73.9965, 0.7, "NYU"},
		},
	}
}

// PathStyle mirrors the Leaflet path options
type PathStyle struct {
	Color       string  `json:"color"`
	Weight      int     `json:"weight"`
	FillOpacity float64 `json:"fill_opacity"`
}

// Polygon is a predicted-alert area
type Polygon struct {
	Name      string    `json:"name"`
	Center    LatLng    `json:"center"`
	Zoom      int       `json:"zoom"`
	Style     PathStyle `json:"style"`
	Positions []LatLng  `json:"positions"`
}

// Polygons returns the AI forecast areas shown on the prediction map
func Polygons() []Polygon {
	return []Polygon{{
		Name:   "Manhattan",
		Center: LatLng{40.78, -73.97},
		Zoom:   12,
		Style:  PathStyle{Color: "red", Weight: 2, FillOpacity: 0.3},
		Positions: []LatLng{
			{40.700292, -74.018489},
			{40.706877, -73.996207},
			{40.715337, -73.974815},
			{40.729646, -73.971462},
			{40.739856, -73.958918},
			{40.752259, -73.949661},
			{40.773116, -73.949018},
			{40.789695, -73.942837},
			{40.796388, -73.935356},
			{40.805478, -73.925056},
			{40.810841, -73.929677},
			{40.809742, -73.934384},
			{40.801694, -73.943562},
			{40.790904, -73.949542},
			{40.778356, -73.962788},
			{40.769115, -73.971933},
			{40.751025, -73.976353},
			{40.738080, -73.982932},
			{40.723385, -73.992989},
			{40.708472, -74.010673},
		},
	}}
}

// TileLayer is a raster layer drawn over the map
type TileLayer struct {
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	Attribution string  `json:"attribution"`
	Opacity     float64 `json:"opacity"`
}

const osmTileURL = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"

// TileLayers returns the base map followed by the OpenWeatherMap temperature and
// wind overlays. Overlays are omitted without an API key.
func TileLayers(owmAPIKey string) []TileLayer {
	layers := []TileLayer{{
		Name:        "base",
		URL:         osmTileURL,
		Attribution: "&copy; OpenStreetMap contributors",
		Opacity:     1,
	}}
	if owmAPIKey == "" {
		return layers
	}

	appid := url.QueryEscape(owmAPIKey)
	return append(layers,
		TileLayer{
			Name:        "temperature",
			URL:         "https://tile.openweathermap.org/map/temp_new/{z}/{x}/{y}.png?appid=" + appid,
			Attribution: "&copy; OpenWeatherMap",
			Opacity:     0.5,
		},
		TileLayer{
			Name:        "wind",
			URL:         "https://tile.openweathermap.org/map/wind_new/{z}/{x}/{y}.png?appid=" + appid,
			Attribution: "&copy; OpenWeatherMap",
			Opacity:     1,
		},
	)
}

// WindyEmbedURL returns the Windy wind-overlay embed centred and marked at c
func WindyEmbedURL(c LatLng, zoom int) string {
	lat := strconv.FormatFloat(c[0], 'f', 4, 64)
	lon := strconv.FormatFloat(c[1], 'f', 4, 64)

	params := url.Values{}
	params.Set("lat", lat)
	params.Set("lon", lon)
	params.Set("detailLat", lat)
	params.Set("detailLon", lon)
	params.Set("width", "650")
	params.Set("height", "450")
	params.Set("zoom", strconv.Itoa(zoom))
	params.Set("level", "surface")
	params.Set("overlay", "wind")
	params.Set("message", "true")
	params.Set("marker", lat+","+lon)
	params.Set("calendar", "now")
	params.Set("type", "map")
	params.Set("location", "coordinates")
	params.Set("metricWind", "default")
	params.Set("metricTemp", "default")
	params.Set("radarRange", "-1")
	return "https://embed.windy.com/embed2.html?" + params.Encode()
}

// Route is an entry of the navigation bar
type Route struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

// Navigation returns the app routes in menu order
func Navigation() []Route {
	return []Route{
		{Path: "/", Title: "Home"},
		{Path: "/user-alerts", Title: "User Alerts"},
		{Path: "/windy", Title: "Windy Map"},
		{Path: "/ai-alerts", Title: "AI Alerts"},
		{Path: "/create-alert", Title: "Create Alert"},
	}
}
