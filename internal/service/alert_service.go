package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/internal/observability"
	"github.com/quocanhngo/agrosynth/internal/repository"
	"gorm.io/gorm"
)

// ErrAlertNotFound is returned when an alert id does not exist
var ErrAlertNotFound = errors.New("alert not found")

// AlertPublisher announces alert changes to live-feed clients
type AlertPublisher interface {
	AlertCreated(ctx context.Context, alert *model.AlertRecord)
	AlertDeleted(ctx context.Context, event model.AlertDeletedEvent)
}

// AlertNotifier is told about every stored alert
type AlertNotifier interface {
	NotifyNewAlert(ctx context.Context, alert model.AlertRecord)
}

// AlertService handles alert business logic
type AlertService struct {
	repo      *repository.AlertRepository
	clock     clockwork.Clock
	publisher AlertPublisher
	notifier  AlertNotifier
	metrics   *observability.Metrics
}

func NewAlertService(
	repo *repository.AlertRepository,
	clock clockwork.Clock,
	publisher AlertPublisher,
	notifier AlertNotifier,
	metrics *observability.Metrics,
) *AlertService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AlertService{
		repo:      repo,
		clock:     clock,
		publisher: publisher,
		notifier:  notifier,
		metrics:   metrics,
	}
}

// Create stores a new alert for deviceID. The creation time is the client's
// when given, otherwise the server clock.
func (s *AlertService) Create(ctx context.Context, deviceID string, req model.CreateAlertRequest) (*model.AlertRecord, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, model.ErrDeviceIDRequired
	}
	if !req.WeatherType.IsValid() {
		return nil, model.ErrUnknownWeatherType
	}

	createdAt := s.clock.Now().UTC()
	if req.CreatedAt != nil && !req.CreatedAt.IsZero() {
		createdAt = req.CreatedAt.UTC()
	}

	alert := &model.AlertRecord{
		DeviceID:    deviceID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		WeatherType: req.WeatherType,
		Location:    strings.TrimSpace(req.Location),
		Lat:         req.Lat,
		Lng:         req.Lng,
		ImageURL:    req.ImageURL,
		CreatedAt:   createdAt,
	}
	if alert.ImageURL != nil && *alert.ImageURL == "" {
		alert.ImageURL = nil
	}

	if err := s.repo.Insert(ctx, alert); err != nil {
		return nil, err
	}
	s.metrics.AlertCreated()

	if s.publisher != nil {
		s.publisher.AlertCreated(ctx, alert)
	}
	if s.notifier != nil {
		s.notifier.NotifyNewAlert(ctx, *alert)
	}
	return alert, nil
}

// List returns every alert, newest first
func (s *AlertService) List(ctx context.Context) ([]model.AlertRecord, error) {
	return s.repo.List(ctx, "")
}

// ListForDevice returns the alerts created by deviceID, newest first
func (s *AlertService) ListForDevice(ctx context.Context, deviceID string) ([]model.AlertRecord, error) {
	if deviceID == "" {
		return nil, model.ErrDeviceIDRequired
	}
	return s.repo.List(ctx, deviceID)
}

// Get returns a single alert
func (s *AlertService) Get(ctx context.Context, id uuid.UUID) (*model.AlertRecord, error) {
	alert, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAlertNotFound
	}
	return alert, err
}

// Delete removes an alert owned by deviceID. Deleting a missing alert, or one
// owned by another device, affects zero rows and is not an error.
func (s *AlertService) Delete(ctx context.Context, id uuid.UUID, deviceID string) (int64, error) {
	if deviceID == "" {
		return 0, model.ErrDeviceIDRequired
	}

	n, err := s.repo.Delete(ctx, id, deviceID)
	if err != nil {
		s.metrics.AlertDeleted("error")
		log.Printf("⚠️  Delete alert %s failed: %v", id, err)
		return 0, err
	}
	if n == 0 {
		s.metrics.AlertDeleted("noop")
		return 0, nil
	}

	s.metrics.AlertDeleted("deleted")
	if s.publisher != nil {
		s.publisher.AlertDeleted(ctx, model.AlertDeletedEvent{ID: id, DeviceID: deviceID})
	}
	return n, nil
}
