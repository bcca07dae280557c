package client

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/pkg/geocode"
)

// Scope selects which alerts a list shows
type Scope string

const (
	ScopeDevice Scope = "device"
	ScopeAll    Scope = "all"
)

// APIError is a non-2xx answer from the alert API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("alert API: status %d: %s", e.StatusCode, e.Message)
}

// AlertAPI talks to the alert server on behalf of one device
type AlertAPI struct {
	client   *resty.Client
	deviceID string
}

// NewAlertAPI creates a client for the server at baseURL
func NewAlertAPI(baseURL, deviceID string, timeout time.Duration) *AlertAPI {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/api/v1").
		SetHeader("X-Device-ID", deviceID).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	return &AlertAPI{client: client, deviceID: deviceID}
}

// DeviceID returns the identifier sent with every request
func (a *AlertAPI) DeviceID() string {
	return a.deviceID
}

// Insert stores a new alert and returns it with its assigned ID
func (a *AlertAPI) Insert(ctx context.Context, req model.CreateAlertRequest) (*model.AlertRecord, error) {
	var alert model.AlertRecord
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&alert).
		SetError(&model.ErrorResponse{}).
		Post("/alerts")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &alert, nil
}

// List returns alerts newest first
func (a *AlertAPI) List(ctx context.Context, scope Scope) ([]model.AlertRecord, error) {
	path := "/alerts"
	if scope == ScopeDevice {
		path = "/device/alerts"
	}

	alerts := []model.AlertRecord{}
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(&alerts).
		SetError(&model.ErrorResponse{}).
		Get(path)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return alerts, nil
}

// Delete removes one of this device's alerts and returns the rows affected
func (a *AlertAPI) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	var out model.DeleteAlertResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetPathParam("id", id.String()).
		SetResult(&out).
		SetError(&model.ErrorResponse{}).
		Delete("/alerts/{id}")
	if err := check(resp, err); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

// UploadImage uploads image bytes and returns the public URL
func (a *AlertAPI) UploadImage(ctx context.Context, fileName, contentType string, r io.Reader) (string, error) {
	var out model.UploadResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetMultipartField("file", fileName, contentType, r).
		SetResult(&out).
		SetError(&model.ErrorResponse{}).
		Post("/upload")
	if err := check(resp, err); err != nil {
		return "", err
	}
	return out.URL, nil
}

// Reverse resolves a place name through the server's geocoding endpoint.
// A fallback answer is reported as geocode.ErrNoResult.
func (a *AlertAPI) Reverse(ctx context.Context, lat, lon float64) (geocode.Result, error) {
	var out model.ReverseGeocodeResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat": fmt.Sprint(lat),
			"lon": fmt.Sprint(lon),
		}).
		SetResult(&out).
		SetError(&model.ErrorResponse{}).
		Get("/geocode/reverse")
	if err := check(resp, err); err != nil {
		return geocode.Result{}, err
	}
	if out.Fallback {
		return geocode.Result{}, geocode.ErrNoResult
	}
	return geocode.Result{DisplayName: out.DisplayName, Lat: lat, Lon: lon}, nil
}

// Subscribe registers an email for new alert notifications
func (a *AlertAPI) Subscribe(ctx context.Context, email string) (bool, error) {
	var out model.SubscribeResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(model.SubscribeRequest{Email: email}).
		SetResult(&out).
		SetError(&model.ErrorResponse{}).
		Post("/subscriptions")
	if err := check(resp, err); err != nil {
		return false, err
	}
	return out.Created, nil
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("alert API request: %w", err)
	}
	if !resp.IsError() {
		return nil
	}

	msg := resp.Status()
	if e, ok := resp.Error().(*model.ErrorResponse); ok && e.Error != "" {
		msg = e.Error
		if e.Message != "" {
			msg += ": " + e.Message
		}
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: msg}
}
