package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop())
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := bus.Subscribe(ctx, TopicBookingConfirmed)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, TopicBookingConfirmed, map[string]string{"pnr": "251234567"}))

	select {
	case msg := <-msgs:
		var env Envelope
		require.NoError(t, json.Unmarshal(msg.Payload, &env))
		msg.Ack()

		assert.Equal(t, TopicBookingConfirmed, env.Topic)
		assert.JSONEq(t, `{"pnr":"251234567"}`, string(env.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(zap.NewNop())
	t.Cleanup(func() { _ = bus.Close() })

	assert.NoError(t, bus.Publish(context.Background(), TopicUserRegistered, struct{}{}))
}
