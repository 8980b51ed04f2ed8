package events

import (
	"context"

	"github.com/rs/zerolog"
)

// Audit logs every event published on topics. The returned func removes
// the subscriptions.
func Audit(b *Bus, logger zerolog.Logger, topics ...string) (unsubscribe func()) {
	subs := make([]func(), 0, len(topics))
	for _, topic := range topics {
		subs = append(subs, b.Subscribe(topic, func(_ context.Context, e Event) {
			logger.Info().
				Str("topic", e.Topic).
				Str("key", e.Key).
				Time("at", e.At).
				Msg("domain event")
		}))
	}
	return func() {
		for _, unsub := range subs {
			unsub()
		}
	}
}
