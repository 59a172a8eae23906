package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// SubscriberConfig holds configuration for consuming practice events
type SubscriberConfig struct {
	KafkaBrokers  []string
	ConsumerGroup string
	Logger        *slog.Logger
}

// PracticeEventHandler handles one decoded event. A returned error nacks the message.
type PracticeEventHandler func(ctx context.Context, event *PracticeEvent) error

// NewKafkaSubscriber creates a Kafka subscriber for the practice topic
func NewKafkaSubscriber(config SubscriberConfig) (message.Subscriber, error) {
	saramaConfig := kafka.DefaultSaramaSubscriberConfig()

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               config.KafkaBrokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: saramaConfig,
		ConsumerGroup:         config.ConsumerGroup,
	}, watermill.NewSlogLogger(config.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka subscriber: %w", err)
	}
	return subscriber, nil
}

// ConsumePracticeEvents feeds events from topic to handler until ctx is done.
// Messages that do not decode are logged and acked so they cannot block the partition.
func ConsumePracticeEvents(ctx context.Context, subscriber message.Subscriber, topic string, logger *slog.Logger, handler PracticeEventHandler) error {
	messages, err := subscriber.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			event, err := decodeMessage(msg)
			if err != nil {
				logger.Warn("Dropping undecodable practice event",
					"message_id", msg.UUID,
					"error", err)
				msg.Ack()
				continue
			}

			if err := handler(ctx, event); err != nil {
				logger.Error("Practice event handler failed",
					"event_id", event.ID,
					"event_type", event.Type,
					"error", err)
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}
}

func decodeMessage(msg *message.Message) (*PracticeEvent, error) {
	var event PracticeEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal practice event: %w", err)
	}
	if event.Type == "" {
		event.Type = EventType(msg.Metadata.Get("event_type"))
	}
	return &event, nil
}
