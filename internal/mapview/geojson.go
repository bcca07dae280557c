package mapview

// FeatureCollection is a GeoJSON feature collection
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// ToGeoJSON converts markers to point features. GeoJSON orders coordinates lon, lat.
func ToGeoJSON(markers []Marker) FeatureCollection {
	features := make([]Feature, 0, len(markers))

	for _, m := range markers {
		props := map[string]any{
			"id":           m.ID,
			"name":         m.Name,
			"description":  m.Description,
			"location":     m.Location,
			"weather_type": string(m.Icon.Type),
			"label":        m.Icon.Label,
			"icon":         m.Icon.Icon,
			"color":        m.Icon.Color,
			"created_at":   m.CreatedAt,
		}
		if m.ImageURL != nil {
			props["image_url"] = *m.ImageURL
		}
		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{m.Lng, m.Lat},
			},
			Properties: props,
		})
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
