// Package events carries domain events between services and the admin feed.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

const (
	TopicBookingConfirmed = "booking.confirmed"
	TopicBookingWaiting   = "booking.waiting"
	TopicBookingCancelled = "booking.cancelled"
	TopicBookingStatus    = "booking.status_changed"
	TopicBookingDeleted   = "booking.deleted"
	TopicUserRegistered   = "user.registered"
	TopicUserDeleted      = "user.deleted"
)

// BookingTopics are the topics the admin feed follows.
var BookingTopics = []string{
	TopicBookingConfirmed,
	TopicBookingWaiting,
	TopicBookingCancelled,
	TopicBookingStatus,
	TopicBookingDeleted,
	TopicUserRegistered,
	TopicUserDeleted,
}

// Envelope is the JSON body of every published message.
type Envelope struct {
	Topic      string          `json:"topic"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type Bus struct {
	pubsub *gochannel.GoChannel
	logger *zap.Logger
}

func NewBus(logger *zap.Logger) *Bus {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, NewLoggerAdapter(logger.Named("watermill")))

	return &Bus{pubsub: pubsub, logger: logger}
}

// Publish marshals payload into an Envelope and sends it on topic.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	body, err := json.Marshal(Envelope{
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.SetContext(ctx)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		b.logger.Error("publish event", zap.String("topic", topic), zap.Error(err))
		return err
	}

	b.logger.Debug("event published", zap.String("topic", topic), zap.String("message_id", msg.UUID))
	return nil
}

func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
