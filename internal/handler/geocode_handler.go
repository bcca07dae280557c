package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/pkg/geocode"
)

// GeocodeHandler proxies reverse geocoding so browsers need no CORS proxy
type GeocodeHandler struct {
	reverser geocode.Reverser
}

func NewGeocodeHandler(reverser geocode.Reverser) *GeocodeHandler {
	return &GeocodeHandler{reverser: reverser}
}

// Reverse godoc
// @Summary Resolve coordinates to a place name
// @Description Single lookup. On any failure display_name is the formatted coordinates and fallback is true.
// @Tags Geocoding
// @Produce json
// @Param lat query number true "Latitude"
// @Param lon query number true "Longitude"
// @Success 200 {object} model.ReverseGeocodeResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /geocode/reverse [get]
func (h *GeocodeHandler) Reverse(c *gin.Context) {
	var req model.ReverseGeocodeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid coordinates", Message: err.Error()})
		return
	}

	lat, lon := *req.Lat, *req.Lon
	name, resolved := geocode.PlaceName(c.Request.Context(), h.reverser, lat, lon)
	c.JSON(http.StatusOK, model.ReverseGeocodeResponse{
		DisplayName: name,
		Lat:         lat,
		Lon:         lon,
		Fallback:    !resolved,
	})
}
