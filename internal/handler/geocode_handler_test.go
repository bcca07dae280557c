package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/pkg/geocode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReverser struct {
	name string
	err  error
}

func (s stubReverser) Reverse(_ context.Context, lat, lon float64) (geocode.Result, error) {
	return geocode.Result{DisplayName: s.name, Lat: lat, Lon: lon}, s.err
}

func geocodeRouter(r geocode.Reverser) *gin.Engine {
	e := gin.New()
	e.GET("/geocode/reverse", NewGeocodeHandler(r).Reverse)
	return e
}

func TestReverse(t *testing.T) {
	w := doJSON(t, geocodeRouter(stubReverser{name: "Red Hook, Brooklyn"}), http.MethodGet, "/geocode/reverse?lat=40.6759&lon=-74.0121", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[model.ReverseGeocodeResponse](t, w)
	assert.Equal(t, "Red Hook, Brooklyn", resp.DisplayName)
	assert.False(t, resp.Fallback)
}

func TestReverse_FallsBackToCoordinates(t *testing.T) {
	w := doJSON(t, geocodeRouter(stubReverser{err: errors.New("timeout")}), http.MethodGet, "/geocode/reverse?lat=40.7128&lon=-74.0060", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[model.ReverseGeocodeResponse](t, w)
	assert.Equal(t, "40.7128, -74.006", resp.DisplayName)
	assert.True(t, resp.Fallback)
}

func TestReverse_Validation(t *testing.T) {
	r := geocodeRouter(stubReverser{name: "x"})

	assert.Equal(t, http.StatusBadRequest, doJSON(t, r, http.MethodGet, "/geocode/reverse?lat=40.7", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, r, http.MethodGet, "/geocode/reverse?lat=100&lon=0", "", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/geocode/reverse?lat=0&lon=0", "", nil).Code)
}
