package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/quocanhngo/agrosynth/internal/model"
	"github.com/quocanhngo/agrosynth/internal/observability"
)

// Hub manages the live-feed WebSocket connections.
// Events go through PubSub so every API instance delivers them.
type Hub struct {
	// Map of deviceID -> set of client connections (one device can have several tabs)
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	pubsub  PubSub
	metrics *observability.Metrics
}

// NewHub creates a new WebSocket Hub
func NewHub(pubsub PubSub, metrics *observability.Metrics) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		pubsub:     pubsub,
		metrics:    metrics,
	}
}

// Run starts the Hub's event loop and blocks until ctx is done
func (h *Hub) Run(ctx context.Context) {
	events := h.pubsub.Subscribe(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for data := range events {
			h.deliver(data)
		}
	}()
	defer wg.Wait()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Register queues a client for registration with the hub.
// It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client; a no-op once the hub has stopped
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.DeviceID]; !ok {
		h.clients[client.DeviceID] = make(map[*Client]bool)
	}
	h.clients[client.DeviceID][client] = true
	h.metrics.WSConnected(1)
	log.Printf("✅ Live feed connected: %s (connections: %d)", client.DeviceID, len(h.clients[client.DeviceID]))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.DeviceID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
			h.metrics.WSConnected(-1)
		}
		if len(clients) == 0 {
			delete(h.clients, client.DeviceID)
		}
	}
	log.Printf("❌ Live feed disconnected: %s", client.DeviceID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for deviceID, clients := range h.clients {
		for client := range clients {
			close(client.send)
			h.metrics.WSConnected(-1)
		}
		delete(h.clients, deviceID)
	}
}

// Publish sends an event to every connected client on all instances
func (h *Hub) Publish(ctx context.Context, event *model.WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling live feed event: %v", err)
		return
	}
	if err := h.pubsub.Publish(ctx, data); err != nil {
		log.Printf("⚠️  Failed to publish live feed event: %v", err)
	}
}

// AlertCreated announces a stored alert
func (h *Hub) AlertCreated(ctx context.Context, alert *model.AlertRecord) {
	h.Publish(ctx, &model.WSEvent{Type: model.WSEventAlertCreated, Payload: alert})
}

// AlertDeleted announces a removed alert
func (h *Hub) AlertDeleted(ctx context.Context, event model.AlertDeletedEvent) {
	h.Publish(ctx, &model.WSEvent{Type: model.WSEventAlertDeleted, Payload: event})
}

// deliver writes an encoded event to every local client.
// Clients whose send buffer is full are dropped.
func (h *Hub) deliver(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for deviceID, clients := range h.clients {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				close(client.send)
				delete(clients, client)
				h.metrics.WSConnected(-1)
			}
		}
		if len(clients) == 0 {
			delete(h.clients, deviceID)
		}
	}
}

// ConnectionCount returns the number of open connections on this instance
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}
