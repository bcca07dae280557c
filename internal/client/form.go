package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/pkg/geocode"
)

var (
	// ErrMissingField is returned by Submit when a required field is empty
	ErrMissingField = errors.New("required field is empty")

	// ErrSubmitInProgress rejects a second Submit or an image change while a save runs
	ErrSubmitInProgress = errors.New("submission already in progress")

	// ErrUploadInProgress rejects a second image or a Submit while an upload runs
	ErrUploadInProgress = errors.New("image upload in progress")
)

// FormState is the alert form's position in its lifecycle
type FormState int

const (
	StateIdle FormState = iota
	StateLocating
	StateEditing
	StateUploadingImage
	StateSubmitting
)

func (s FormState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLocating:
		return "locating"
	case StateEditing:
		return "editing"
	case StateUploadingImage:
		return "uploading-image"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("FormState(%d)", int(s))
	}
}

// FormFields is the user's input
type FormFields struct {
	Name        string
	Description string
	WeatherType model.WeatherType
	Location    string
	Lat, Lng    *float64
	ImageURL    *string
}

// AlertWriter inserts alerts into the remote store
type AlertWriter interface {
	Insert(ctx context.Context, req model.CreateAlertRequest) (*model.AlertRecord, error)
}

// ImageUploader uploads a local image and returns its public URL
type ImageUploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// Form drives one alert submission. Network calls run outside the lock so
// the user can keep typing while a position or upload resolves.
type Form struct {
	mu     sync.Mutex
	state  FormState
	fields FormFields
	// locGen changes whenever the location is set by hand or the form is reset;
	// a position lookup only applies if it is unchanged.
	locGen uint64

	writer   AlertWriter
	uploader ImageUploader
	resolver *Resolver
	list     *AlertList
	clock    clockwork.Clock
}

// NewForm creates an idle form. list may be nil.
func NewForm(writer AlertWriter, uploader ImageUploader, resolver *Resolver, list *AlertList, clock clockwork.Clock) *Form {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Form{
		writer:   writer,
		uploader: uploader,
		resolver: resolver,
		list:     list,
		clock:    clock,
	}
}

// State returns the current lifecycle state
func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Fields returns a copy of the current input
func (f *Form) Fields() FormFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// Locate fills the location from the device position. Without a position
// only the location text is filled, with the fallback coordinates formatted.
// A location typed or picked while the lookup runs is kept, and a form reset
// meanwhile discards the result.
func (f *Form) Locate(ctx context.Context) {
	f.mu.Lock()
	if f.state != StateIdle || f.resolver == nil {
		f.mu.Unlock()
		return
	}
	f.state = StateLocating
	gen := f.locGen
	f.mu.Unlock()

	c, ok := f.resolver.Locate(ctx)
	name := geocode.FormatCoordinates(c.Lat, c.Lng)
	if ok {
		name = f.resolver.PlaceName(ctx, c)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locGen == gen {
		f.fields.Location = name
		f.fields.Lat, f.fields.Lng = nil, nil
		if ok {
			f.fields.Lat, f.fields.Lng = &c.Lat, &c.Lng
		}
	}
	if f.state == StateLocating {
		f.state = StateEditing
	}
}

func (f *Form) SetName(name string) {
	f.edit(func(fields *FormFields) { fields.Name = name })
}

func (f *Form) SetDescription(description string) {
	f.edit(func(fields *FormFields) { fields.Description = description })
}

func (f *Form) SetWeatherType(t model.WeatherType) {
	f.edit(func(fields *FormFields) { fields.WeatherType = t })
}

// SetLocationText sets a typed location and drops any picked coordinates
func (f *Form) SetLocationText(location string) {
	f.edit(func(fields *FormFields) {
		fields.Location = location
		fields.Lat, fields.Lng = nil, nil
		f.locGen++
	})
}

// PickLocation sets coordinates chosen on the map and their place name
func (f *Form) PickLocation(ctx context.Context, lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return model.ErrInvalidCoordinates
	}
	name := geocode.FormatCoordinates(lat, lng)
	if f.resolver != nil {
		name = f.resolver.PlaceName(ctx, Coordinates{Lat: lat, Lng: lng})
	}
	f.edit(func(fields *FormFields) {
		fields.Location = name
		fields.Lat, fields.Lng = &lat, &lng
		f.locGen++
	})
	return nil
}

// AttachImage uploads the image at path. On failure the previous image is kept.
func (f *Form) AttachImage(ctx context.Context, path string) error {
	f.mu.Lock()
	switch f.state {
	case StateUploadingImage:
		f.mu.Unlock()
		return ErrUploadInProgress
	case StateSubmitting:
		f.mu.Unlock()
		return ErrSubmitInProgress
	}
	f.state = StateUploadingImage
	f.mu.Unlock()

	url, err := f.uploader.Upload(ctx, path)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateEditing
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}
	f.fields.ImageURL = &url
	return nil
}

// ClearImage removes the attached image
func (f *Form) ClearImage() {
	f.edit(func(fields *FormFields) { fields.ImageURL = nil })
}

// Submit saves the alert. The list shows it as pending until the store
// answers. On success the form is reset and the list reloaded; on failure
// the pending entry is removed and the input kept.
func (f *Form) Submit(ctx context.Context) (*model.AlertRecord, error) {
	f.mu.Lock()
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	case StateUploadingImage:
		f.mu.Unlock()
		return nil, ErrUploadInProgress
	}
	req, err := f.request()
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	var pendingID uuid.UUID
	if f.list != nil {
		pendingID = f.list.AddPending(model.AlertRecord{
			Name:        req.Name,
			Description: req.Description,
			WeatherType: req.WeatherType,
			Location:    req.Location,
			Lat:         req.Lat,
			Lng:         req.Lng,
			ImageURL:    req.ImageURL,
			CreatedAt:   *req.CreatedAt,
		})
	}

	stored, err := f.writer.Insert(ctx, req)
	if err != nil {
		if f.list != nil {
			f.list.RemovePending(pendingID)
		}
		f.mu.Lock()
		f.state = StateEditing
		f.mu.Unlock()
		log.Printf("⚠️  Saving alert failed: %v", err)
		return nil, fmt.Errorf("save alert: %w", err)
	}

	f.mu.Lock()
	f.fields = FormFields{}
	f.locGen++
	f.state = StateIdle
	f.mu.Unlock()

	if f.list != nil {
		f.list.ConfirmPending(pendingID, *stored)
		if err := f.list.Refresh(ctx); err != nil {
			log.Printf("⚠️  %v", err)
		}
	}
	return stored, nil
}

// request validates the fields and builds the create request. Caller holds f.mu.
func (f *Form) request() (model.CreateAlertRequest, error) {
	fields := f.fields
	required := []struct {
		name  string
		value string
	}{
		{"name", fields.Name},
		{"location", fields.Location},
		{"description", fields.Description},
		{"weather type", string(fields.WeatherType)},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return model.CreateAlertRequest{}, fmt.Errorf("%w: %s", ErrMissingField, r.name)
		}
	}
	if !fields.WeatherType.IsValid() {
		return model.CreateAlertRequest{}, fmt.Errorf("%w: %q", model.ErrUnknownWeatherType, fields.WeatherType)
	}
	if (fields.Lat == nil) != (fields.Lng == nil) {
		return model.CreateAlertRequest{}, model.ErrInvalidCoordinates
	}

	createdAt := f.clock.Now().UTC()
	return model.CreateAlertRequest{
		Name:        strings.TrimSpace(fields.Name),
		Description: strings.TrimSpace(fields.Description),
		WeatherType: fields.WeatherType,
		Location:    strings.TrimSpace(fields.Location),
		Lat:         fields.Lat,
		Lng:         fields.Lng,
		ImageURL:    fields.ImageURL,
		CreatedAt:   &createdAt,
	}, nil
}

// edit applies a field change; an idle form becomes editing
func (f *Form) edit(apply func(*FormFields)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	apply(&f.fields)
	if f.state == StateIdle {
		f.state = StateEditing
	}
}
