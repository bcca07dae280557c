package ws

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

const redisChannel = "agrosynth:alerts"

// PubSub carries hub events between API instances
type PubSub interface {
	Publish(ctx context.Context, payload []byte) error
	// Subscribe delivers payloads until ctx is done, then closes the channel
	Subscribe(ctx context.Context) <-chan []byte
}

// RedisPubSub fans events out through a Redis channel
type RedisPubSub struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPubSub creates a Redis-backed PubSub on the alerts channel
func NewRedisPubSub(rdb *redis.Client) *RedisPubSub {
	return &RedisPubSub{rdb: rdb, channel: redisChannel}
}

func (r *RedisPubSub) Publish(ctx context.Context, payload []byte) error {
	return r.rdb.Publish(ctx, r.channel, payload).Err()
}

func (r *RedisPubSub) Subscribe(ctx context.Context) <-chan []byte {
	out := make(chan []byte, 64)
	pubsub := r.rdb.Subscribe(ctx, r.channel)

	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		log.Println("📡 Redis Pub/Sub subscriber started")
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// LocalPubSub delivers events within a single process.
// Used when Redis is unavailable and in tests.
type LocalPubSub struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

func NewLocalPubSub() *LocalPubSub {
	return &LocalPubSub{subs: make(map[chan []byte]struct{})}
}

func (l *LocalPubSub) Publish(_ context.Context, payload []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subs {
		select {
		case ch <- payload:
		default:
			log.Printf("⚠️  Local pub/sub subscriber is full, dropping event")
		}
	}
	return nil
}

func (l *LocalPubSub) Subscribe(ctx context.Context) <-chan []byte {
	ch := make(chan []byte, 64)
	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		delete(l.subs, ch)
		close(ch)
		l.mu.Unlock()
	}()
	return ch
}
