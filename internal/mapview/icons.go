// Package mapview builds the map presentation data served to map clients:
// weather icons, alert markers, GeoJSON and the static overlays.
package mapview

import "github.com/quocanhngo/agrosynth/internal/model"

// IconDescriptor describes how a weather type is drawn
type IconDescriptor struct {
	Type    model.WeatherType `json:"type"`
	Label   string            `json:"label"`
	Icon    string            `json:"icon"`
	Color   string            `json:"color"`
	Default bool              `json:"default,omitempty"` // platform default marker
}

// DefaultIcon is used for weather types outside the known set
var DefaultIcon = IconDescriptor{
	Label:   "Unknown",
	Icon:    "marker",
	Color:   "#2A81CB",
	Default: true,
}

var icons = map[model.WeatherType]IconDescriptor{
	model.WeatherSun:       {Type: model.WeatherSun, Label: "Sunny", Icon: "sun", Color: "#FFD700"},
	model.WeatherRain:      {Type: model.WeatherRain, Label: "Rainy", Icon: "cloud-rain", Color: "#4169E1"},
	model.WeatherWind:      {Type: model.WeatherWind, Label: "Windy", Icon: "wind", Color: "#87CEEB"},
	model.WeatherHeatwave:  {Type: model.WeatherHeatwave, Label: "Heatwave", Icon: "temperature-high", Color: "#FF4500"},
	model.WeatherFlood:     {Type: model.WeatherFlood, Label: "Flood", Icon: "water", Color: "#000080"},
	model.WeatherHailstorm: {Type: model.WeatherHailstorm, Label: "Hailstorm", Icon: "snowflake", Color: "#4682B4"},
	model.WeatherAnomaly:   {Type: model.WeatherAnomaly, Label: "Weather Anomaly", Icon: "exclamation-triangle", Color: "#9370DB"},
	model.WeatherPests:     {Type: model.WeatherPests, Label: "Pest Swarm", Icon: "bug", Color: "#556B2F"},
}

// Icon returns the descriptor for t, or DefaultIcon when t is not a known type
func Icon(t model.WeatherType) IconDescriptor {
	if d, ok := icons[t]; ok {
		return d
	}
	d := DefaultIcon
	d.Type = t
	return d
}

// Legend returns the descriptors of every known weather type in display order
func Legend() []IconDescriptor {
	legend := make([]IconDescriptor, 0, len(model.WeatherTypes))
	for _, t := range model.WeatherTypes {
		legend = append(legend, icons[t])
	}
	return legend
}
