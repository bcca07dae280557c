package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WeatherType is the kind of weather observation an alert reports
type WeatherType string

const (
	WeatherSun       WeatherType = "sun"
	WeatherRain      WeatherType = "rain"
	WeatherWind      WeatherType = "wind"
	WeatherHeatwave  WeatherType = "heatwave"
	WeatherFlood     WeatherType = "flood"
	WeatherHailstorm WeatherType = "hailstorm"
	WeatherAnomaly   WeatherType = "anomaly"
	WeatherPests     WeatherType = "pests"
)

// WeatherTypes lists every accepted weather type in display order
var WeatherTypes = []WeatherType{
	WeatherSun,
	WeatherRain,
	WeatherWind,
	WeatherHeatwave,
	WeatherFlood,
	WeatherHailstorm,
	WeatherAnomaly,
	WeatherPests,
}

// IsValid reports whether t is one of the fixed weather types
func (t WeatherType) IsValid() bool {
	for _, known := range WeatherTypes {
		if t == known {
			return true
		}
	}
	return false
}

var (
	// ErrInvalidCoordinates is returned when only one of lat/lng is set
	ErrInvalidCoordinates = errors.New("lat and lng must be set together")

	// ErrDeviceIDRequired is returned when a write or scoped read has no device id
	ErrDeviceIDRequired = errors.New("device id is required")

	ErrUnknownWeatherType = errors.New("unknown weather type")
)

// AlertRecord is a user-submitted weather observation.
// DeviceID is a self-declared client identifier, not a verified identity:
// anyone who knows it can list or delete that device's alerts.
type AlertRecord struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	DeviceID    string      `json:"device_id" gorm:"size:64;not null;index"`
	Name        string      `json:"name" gorm:"size:200;not null"`
	Description string      `json:"description" gorm:"type:text;not null"`
	WeatherType WeatherType `json:"weather_type" gorm:"type:varchar(20);not null"`
	Location    string      `json:"location" gorm:"size:500;not null"`
	Lat         *float64    `json:"lat"`
	Lng         *float64    `json:"lng"`
	ImageURL    *string     `json:"image_url" gorm:"size:1000"`
	CreatedAt   time.Time   `json:"created_at" gorm:"not null;index"`
}

// TableName keeps the table name used by existing clients
func (AlertRecord) TableName() string {
	return "user_alerts"
}

// BeforeCreate assigns the record ID; callers never set it
func (a *AlertRecord) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// HasCoordinates reports whether the record can be placed on a map
func (a *AlertRecord) HasCoordinates() bool {
	return a.Lat != nil && a.Lng != nil
}

// Validate checks the invariants every stored record must satisfy
func (a *AlertRecord) Validate() error {
	if a.DeviceID == "" {
		return ErrDeviceIDRequired
	}
	if (a.Lat == nil) != (a.Lng == nil) {
		return ErrInvalidCoordinates
	}
	return nil
}

// Subscription is an email address that receives new alert notifications
type Subscription struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	DeviceID  string    `json:"device_id" gorm:"size:64;not null;uniqueIndex:idx_subscription_device_email"`
	Email     string    `json:"email" gorm:"size:255;not null;uniqueIndex:idx_subscription_device_email"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the subscriptions table name
func (Subscription) TableName() string {
	return "alert_subscriptions"
}

// BeforeCreate assigns the subscription ID
func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
