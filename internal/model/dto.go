package model

import (
	"time"

	"github.com/google/uuid"
)

// ========== Alert DTOs ==========

type CreateAlertRequest struct {
	Name        string      `json:"name" binding:"required,max=200"`
	Description string      `json:"description" binding:"required"`
	WeatherType WeatherType `json:"weather_type" binding:"required,oneof=sun rain wind heatwave flood hailstorm anomaly pests"`
	Location    string      `json:"location" binding:"required,max=500"`
	Lat         *float64    `json:"lat" binding:"omitempty,min=-90,max=90"`
	Lng         *float64    `json:"lng" binding:"omitempty,min=-180,max=180"`
	ImageURL    *string     `json:"image_url" binding:"omitempty,url,max=1000"`
	CreatedAt   *time.Time  `json:"created_at"` // client-generated; server time when omitted
}

type DeleteAlertResponse struct {
	ID      uuid.UUID `json:"id"`
	Deleted int64     `json:"deleted"` // 0 when the record is gone or owned by another device
}

// ========== Upload DTOs ==========

// UploadResponse is returned after a successful image upload
type UploadResponse struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
}

// ========== Geocoding DTOs ==========

type ReverseGeocodeRequest struct {
	Lat *float64 `form:"lat" binding:"required,min=-90,max=90"`
	Lon *float64 `form:"lon" binding:"required,min=-180,max=180"`
}

type ReverseGeocodeResponse struct {
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Fallback    bool    `json:"fallback"` // true when display_name is the formatted coordinates
}

// ========== Subscription DTOs ==========

type SubscribeRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

type SubscribeResponse struct {
	Email   string `json:"email"`
	Created bool   `json:"created"` // false when the device was already subscribed
}

// ========== WebSocket Event DTOs ==========

type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocket event types
const (
	WSEventAlertCreated = "alert_created"
	WSEventAlertDeleted = "alert_deleted"
)

type AlertDeletedEvent struct {
	ID       uuid.UUID `json:"id"`
	DeviceID string    `json:"device_id"`
}

// ========== Common ==========

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
