package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	TopicCartUpdated          = "cart.updated"
	TopicWishlistUpdated      = "wishlist.updated"
	TopicOrderCreated         = "order.created"
	TopicAppointmentBooked    = "appointment.booked"
	TopicAppointmentCancelled = "appointment.cancelled"
	TopicAppointmentConfirmed = "appointment.confirmed"
)

// AllTopics lists every topic the service publishes.
var AllTopics = []string{
	TopicCartUpdated,
	TopicWishlistUpdated,
	TopicOrderCreated,
	TopicAppointmentBooked,
	TopicAppointmentCancelled,
	TopicAppointmentConfirmed,
}

// Publisher sends a domain event. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// Event is what in-process subscribers receive.
type Event struct {
	Topic   string
	Key     string
	Payload any
	At      time.Time
}

type Handler func(ctx context.Context, e Event)

// Bus delivers events to in-process subscribers and then forwards them to
// an optional downstream publisher such as Kafka.
type Bus struct {
	mu       sync.RWMutex
	next     int
	handlers map[string]map[int]Handler
	forward  Publisher
}

func NewBus(forward Publisher) *Bus {
	return &Bus{handlers: make(map[string]map[int]Handler), forward: forward}
}

func (b *Bus) Subscribe(topic string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[int]Handler)
	}
	id := b.next
	b.next++
	b.handlers[topic][id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[topic], id)
	}
}

// Publish never fails because of a subscriber; only the downstream
// publisher's error is returned.
func (b *Bus) Publish(ctx context.Context, topic, key string, payload any) error {
	e := Event{Topic: topic, Key: key, Payload: payload, At: time.Now().UTC()}

	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers[topic]))
	for _, h := range b.handlers[topic] {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(ctx, e)
	}

	if b.forward == nil {
		return nil
	}
	if err := b.forward.Publish(ctx, topic, key, payload); err != nil {
		log.Warn().Err(err).Str("topic", topic).Str("key", key).Msg("forward event failed")
		return err
	}
	return nil
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
