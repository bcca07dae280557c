package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jarcoal/httpmock"
	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/pkg/geocode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiBase = "http://alerts.test/api/v1"

func newMockedAPI(t *testing.T) (*AlertAPI, *httpmock.MockTransport) {
	t.Helper()
	api := NewAlertAPI("http://alerts.test/", "device-a", 5*time.Second)
	mock := httpmock.NewMockTransport()
	api.client.SetTransport(mock)
	return api, mock
}

func TestAlertAPI_Insert(t *testing.T) {
	api, mock := newMockedAPI(t)
	id := uuid.New()

	mock.RegisterResponder(http.MethodPost, apiBase+"/alerts", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "device-a", req.Header.Get("X-Device-ID"))

		var body model.CreateAlertRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "Flood Watch", body.Name)

		return httpmock.NewJsonResponse(http.StatusCreated, model.AlertRecord{
			ID:       id,
			DeviceID: "device-a",
			Name:     body.Name,
		})
	})

	got, err := api.Insert(t.Context(), model.CreateAlertRequest{
		Name:        "Flood Watch",
		Description: "water over the curb",
		WeatherType: model.WeatherFlood,
		Location:    "Red Hook",
	})
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, 1, mock.GetTotalCallCount())
}

func TestAlertAPI_ErrorBody(t *testing.T) {
	api, mock := newMockedAPI(t)
	mock.RegisterResponder(http.MethodPost, apiBase+"/alerts",
		httpmock.NewJsonResponderOrPanic(http.StatusBadRequest, model.ErrorResponse{
			Error:   "Invalid request",
			Message: "name is required",
		}))

	_, err := api.Insert(t.Context(), model.CreateAlertRequest{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid request: name is required", apiErr.Message)
}

func TestAlertAPI_TransportError(t *testing.T) {
	api, mock := newMockedAPI(t)
	mock.RegisterResponder(http.MethodGet, apiBase+"/alerts", httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := api.List(t.Context(), ScopeAll)
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestAlertAPI_ListScopes(t *testing.T) {
	api, mock := newMockedAPI(t)
	mock.RegisterResponder(http.MethodGet, apiBase+"/alerts",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, []model.AlertRecord{{Name: "a"}, {Name: "b"}}))
	mock.RegisterResponder(http.MethodGet, apiBase+"/device/alerts",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, []model.AlertRecord{}))

	all, err := api.List(t.Context(), ScopeAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := api.List(t.Context(), ScopeDevice)
	require.NoError(t, err)
	assert.NotNil(t, mine)
	assert.Empty(t, mine)
}

func TestAlertAPI_Delete(t *testing.T) {
	api, mock := newMockedAPI(t)
	id := uuid.New()
	mock.RegisterResponder(http.MethodDelete, apiBase+"/alerts/"+id.String(),
		httpmock.NewJsonResponderOrPanic(http.StatusOK, model.DeleteAlertResponse{ID: id, Deleted: 0}))

	n, err := api.Delete(t.Context(), id)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAlertAPI_UploadImage(t *testing.T) {
	api, mock := newMockedAPI(t)
	mock.RegisterResponder(http.MethodPost, apiBase+"/upload", func(req *http.Request) (*http.Response, error) {
		file, header, err := req.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "field.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, pngBytes, data)

		return httpmock.NewJsonResponse(http.StatusCreated, model.UploadResponse{URL: "http://cdn.test/1.png"})
	})

	url, err := api.UploadImage(t.Context(), "field.png", "image/png", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.test/1.png", url)
}

func TestAlertAPI_Reverse(t *testing.T) {
	api, mock := newMockedAPI(t)
	mock.RegisterResponderWithQuery(http.MethodGet, apiBase+"/geocode/reverse", "lat=40.7128&lon=-74.006",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, model.ReverseGeocodeResponse{DisplayName: "Manhattan"}))
	mock.RegisterResponderWithQuery(http.MethodGet, apiBase+"/geocode/reverse", "lat=0&lon=0",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, model.ReverseGeocodeResponse{DisplayName: "0, 0", Fallback: true}))

	got, err := api.Reverse(t.Context(), 40.7128, -74.006)
	require.NoError(t, err)
	assert.Equal(t, "Manhattan", got.DisplayName)

	_, err = api.Reverse(t.Context(), 0, 0)
	assert.ErrorIs(t, err, geocode.ErrNoResult)
}

func TestAlertAPI_Subscribe(t *testing.T) {
	api, mock := newMockedAPI(t)
	mock.RegisterResponder(http.MethodPost, apiBase+"/subscriptions",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, model.SubscribeResponse{Email: "farmer@example.com", Created: false}))

	created, err := api.Subscribe(t.Context(), "farmer@example.com")
	require.NoError(t, err)
	assert.False(t, created)
}
