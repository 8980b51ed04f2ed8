package events

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	topics []string
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, topic, _ string, _ any) error {
	r.topics = append(r.topics, topic)
	return r.err
}

func TestBus_DeliversAndForwards(t *testing.T) {
	fwd := &recordingPublisher{}
	bus := NewBus(fwd)

	var got []Event
	unsubscribe := bus.Subscribe(TopicCartUpdated, func(_ context.Context, e Event) { got = append(got, e) })

	require.NoError(t, bus.Publish(context.Background(), TopicCartUpdated, "42", map[string]int{"lines": 1}))
	require.NoError(t, bus.Publish(context.Background(), TopicOrderCreated, "1", nil))
	unsubscribe()
	require.NoError(t, bus.Publish(context.Background(), TopicCartUpdated, "42", nil))

	require.Len(t, got, 1)
	assert.Equal(t, "42", got[0].Key)
	assert.Equal(t, []string{TopicCartUpdated, TopicOrderCreated, TopicCartUpdated}, fwd.topics)
}

func TestBus_ForwardError(t *testing.T) {
	bus := NewBus(&recordingPublisher{err: errors.New("broker down")})
	delivered := false
	bus.Subscribe(TopicOrderCreated, func(context.Context, Event) { delivered = true })

	err := bus.Publish(context.Background(), TopicOrderCreated, "1", nil)
	assert.Error(t, err)
	assert.True(t, delivered)
}

func TestBus_NoForward(t *testing.T) {
	bus := NewBus(nil)
	assert.NoError(t, bus.Publish(context.Background(), TopicOrderCreated, "1", nil))
	assert.NoError(t, Nop{}.Publish(context.Background(), "x", "y", nil))
}

func TestAudit_LogsEveryTopic(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(nil)
	stop := Audit(bus, zerolog.New(&buf), AllTopics...)
	ctx := context.Background()

	for _, topic := range AllTopics {
		require.NoError(t, bus.Publish(ctx, topic, "7", nil))
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(AllTopics))
	assert.Contains(t, lines[0], `"topic":"cart.updated"`)
	assert.Contains(t, lines[0], `"key":"7"`)
	assert.Contains(t, lines[len(lines)-1], `"topic":"appointment.confirmed"`)

	stop()
	buf.Reset()
	require.NoError(t, bus.Publish(ctx, TopicOrderCreated, "1", nil))
	assert.Empty(t, buf.String())
}
