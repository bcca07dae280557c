package mapview

import (
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/agrosynth/internal/model"
)

// Marker is one alert placed on the map
type Marker struct {
	ID          uuid.UUID      `json:"id"`
	Lat         float64        `json:"lat"`
	Lng         float64        `json:"lng"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Location    string         `json:"location"`
	ImageURL    *string        `json:"image_url,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	Icon        IconDescriptor `json:"icon"`
}

// Markers returns one marker per record with coordinates, in input order.
// Records without coordinates are left off the map.
func Markers(records []model.AlertRecord) []Marker {
	markers := make([]Marker, 0, len(records))
	for i := range records {
		r := &records[i]
		if !r.HasCoordinates() {
			continue
		}
		markers = append(markers, Marker{
			ID:          r.ID,
			Lat:         *r.Lat,
			Lng:         *r.Lng,
			Name:        r.Name,
			Description: r.Description,
			Location:    r.Location,
			ImageURL:    r.ImageURL,
			CreatedAt:   r.CreatedAt,
			Icon:        Icon(r.WeatherType),
		})
	}
	return markers
}
