package service

import (
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/internal/repository"
	"github.com/quocanhngo/agrosynth/internal/testutil"
	"github.com/quocanhngo/agrosynth/pkg/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu        sync.Mutex
	confirmed []string
	notified  []string
	summaries []mailer.AlertSummary
	failFor   string
}

func (m *fakeMailer) SendSubscriptionConfirmation(to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmed = append(m.confirmed, to)
	return nil
}

func (m *fakeMailer) SendNewAlert(to string, alert mailer.AlertSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if to == m.failFor {
		return errors.New("mailbox full")
	}
	m.notified = append(m.notified, to)
	m.summaries = append(m.summaries, alert)
	return nil
}

func TestSubscriptionService_ConfirmsOnlyNewSubscriptions(t *testing.T) {
	fm := &fakeMailer{}
	svc := NewSubscriptionService(repository.NewSubscriptionRepository(testutil.NewSQLiteDB(t)), fm)

	created, err := svc.Subscribe(t.Context(), "device-a", " Farmer@Example.com ")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.Subscribe(t.Context(), "device-a", "farmer@example.com")
	require.NoError(t, err)
	assert.False(t, created)

	svc.Wait()
	assert.Equal(t, []string{"farmer@example.com"}, fm.confirmed)

	_, err = svc.Subscribe(t.Context(), "", "x@example.com")
	assert.ErrorIs(t, err, model.ErrDeviceIDRequired)
}

func TestSubscriptionService_NotifyNewAlertMailsEverySubscriber(t *testing.T) {
	fm := &fakeMailer{failFor: "broken@example.com"}
	svc := NewSubscriptionService(repository.NewSubscriptionRepository(testutil.NewSQLiteDB(t)), fm)
	ctx := t.Context()

	for _, email := range []string{"a@example.com", "b@example.com", "broken@example.com"} {
		_, err := svc.Subscribe(ctx, "device-"+email, email)
		require.NoError(t, err)
	}
	svc.Wait()

	img := "https://cdn.example.com/alerts/1.jpg"
	svc.NotifyNewAlert(ctx, model.AlertRecord{
		DeviceID: "device-z", Name: "Pests", WeatherType: model.WeatherPests,
		Location: "Queens", ImageURL: &img, CreatedAt: now,
	})
	svc.Wait()

	notified := append([]string(nil), fm.notified...)
	sort.Strings(notified)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, notified)
	require.NotEmpty(t, fm.summaries)
	assert.Equal(t, "Pest Swarm", fm.summaries[0].WeatherType)
	assert.Equal(t, img, fm.summaries[0].ImageURL)
}

func TestSubscriptionService_WithoutMailer(t *testing.T) {
	svc := NewSubscriptionService(repository.NewSubscriptionRepository(testutil.NewSQLiteDB(t)), nil)

	created, err := svc.Subscribe(t.Context(), "device-a", "a@example.com")
	require.NoError(t, err)
	assert.True(t, created)
	svc.NotifyNewAlert(t.Context(), model.AlertRecord{Name: "x"})
	svc.Wait()
}
