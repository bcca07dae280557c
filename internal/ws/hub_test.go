package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startHub(t *testing.T, ps PubSub) (*Hub, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	hub := NewHub(ps, observability.NewMetricsForTesting())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		hub.Run(ctx)
	}()
	return hub, cancel, stopped
}

func receive(t *testing.T, c *Client) model.WSEvent {
	t.Helper()
	select {
	case data := <-c.send:
		var event model.WSEvent
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
		return model.WSEvent{}
	}
}

func TestHub_BroadcastsToEveryDevice(t *testing.T) {
	hub, cancel, stopped := startHub(t, NewLocalPubSub())
	defer func() { cancel(); <-stopped }()

	a := NewClient(hub, nil, "device-a")
	b := NewClient(hub, nil, "device-b")
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 2 }, time.Second, 5*time.Millisecond)

	alert := &model.AlertRecord{ID: uuid.New(), DeviceID: "device-a", Name: "Flood Watch", WeatherType: model.WeatherFlood}
	hub.AlertCreated(context.Background(), alert)

	for _, c := range []*Client{a, b} {
		event := receive(t, c)
		assert.Equal(t, model.WSEventAlertCreated, event.Type)
		payload := event.Payload.(map[string]any)
		assert.Equal(t, alert.ID.String(), payload["id"])
	}

	hub.AlertDeleted(context.Background(), model.AlertDeletedEvent{ID: alert.ID, DeviceID: "device-a"})
	assert.Equal(t, model.WSEventAlertDeleted, receive(t, b).Type)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub, cancel, stopped := startHub(t, NewLocalPubSub())
	defer func() { cancel(); <-stopped }()

	c := NewClient(hub, nil, "device-a")
	require.True(t, hub.Register(c))
	hub.Unregister(c)

	_, open := <-c.send
	assert.False(t, open)
	assert.Zero(t, hub.ConnectionCount())

	// A second unregister of the same client must not close the channel twice.
	assert.NotPanics(t, func() { hub.Unregister(c) })
}

func TestHub_StopClosesClientsAndRejectsRegistration(t *testing.T) {
	hub, cancel, stopped := startHub(t, NewLocalPubSub())

	c := NewClient(hub, nil, "device-a")
	require.True(t, hub.Register(c))

	cancel()
	<-stopped

	_, open := <-c.send
	assert.False(t, open)
	assert.False(t, hub.Register(NewClient(hub, nil, "device-b")))
	hub.Unregister(c)
}

func TestHub_SharedPubSubReachesOtherInstances(t *testing.T) {
	ps := NewLocalPubSub()
	first, cancelFirst, stoppedFirst := startHub(t, ps)
	second, cancelSecond, stoppedSecond := startHub(t, ps)
	defer func() {
		cancelFirst()
		cancelSecond()
		<-stoppedFirst
		<-stoppedSecond
	}()

	c := NewClient(second, nil, "device-b")
	require.True(t, second.Register(c))
	require.Eventually(t, func() bool { return second.ConnectionCount() == 1 }, time.Second, 5*time.Millisecond)

	first.AlertDeleted(context.Background(), model.AlertDeletedEvent{ID: uuid.New(), DeviceID: "device-a"})
	assert.Equal(t, model.WSEventAlertDeleted, receive(t, c).Type)
}
