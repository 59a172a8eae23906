package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/samber/lo"
)

// EventPublisher defines the interface for publishing practice events
type EventPublisher interface {
	PublishPracticeEvent(ctx context.Context, event *PracticeEvent) error
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Watermill with Kafka
type KafkaEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	topicName string
}

// PublisherConfig holds configuration for the event publisher
type PublisherConfig struct {
	KafkaBrokers []string
	TopicName    string
	Logger       *slog.Logger
}

// NewKafkaEventPublisher creates a new Kafka-based event publisher using Watermill
func NewKafkaEventPublisher(config PublisherConfig) (*KafkaEventPublisher, error) {
	logger := watermill.NewSlogLogger(config.Logger)

	publisherConfig := kafka.PublisherConfig{
		Brokers:   config.KafkaBrokers,
		Marshaler: kafka.DefaultMarshaler{},
	}

	publisher, err := kafka.NewPublisher(publisherConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return newWatermillPublisher(publisher, config), nil
}

func newWatermillPublisher(publisher message.Publisher, config PublisherConfig) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		publisher: publisher,
		logger:    config.Logger,
		topicName: config.TopicName,
	}
}

// PublishPracticeEvent publishes a practice event to Kafka, keyed by user
func (p *KafkaEventPublisher) PublishPracticeEvent(ctx context.Context, event *PracticeEvent) error {
	msg, err := toMessage(ctx, event)
	if err != nil {
		return err
	}

	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		p.logger.Error("Failed to publish practice event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
		return fmt.Errorf("failed to publish practice event: %w", err)
	}

	p.logger.Debug("Published practice event",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", p.topicName)

	return nil
}

// Close closes the publisher and releases resources
func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

func toMessage(ctx context.Context, event *PracticeEvent) (*message.Message, error) {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal practice event: %w", err)
	}

	msg := message.NewMessage(event.ID, eventBytes)
	msg.SetContext(ctx)

	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("user_id", event.UserID)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))
	return msg, nil
}

// MockEventPublisher keeps events in memory. It backs disabled publishing and tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PracticeEvent
	Logger *slog.Logger
}

// NewMockEventPublisher creates a new mock event publisher
func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{
		Events: make([]PracticeEvent, 0),
		Logger: logger,
	}
}

// PublishPracticeEvent stores the event in memory
func (m *MockEventPublisher) PublishPracticeEvent(ctx context.Context, event *PracticeEvent) error {
	m.mu.Lock()
	m.Events = append(m.Events, *event)
	m.mu.Unlock()

	m.Logger.Debug("Mock: Published practice event",
		"event_id", event.ID,
		"event_type", event.Type)
	return nil
}

// Close is a no-op for the mock publisher
func (m *MockEventPublisher) Close() error {
	return nil
}

// GetPublishedEvents returns a copy of all published events
func (m *MockEventPublisher) GetPublishedEvents() []PracticeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PracticeEvent, len(m.Events))
	copy(out, m.Events)
	return out
}

// EventsOfType filters the published events by type
func (m *MockEventPublisher) EventsOfType(eventType EventType) []PracticeEvent {
	return lo.Filter(m.GetPublishedEvents(), func(e PracticeEvent, _ int) bool {
		return e.Type == eventType
	})
}

// ClearEvents clears all published events
func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	m.Events = make([]PracticeEvent, 0)
	m.mu.Unlock()
}
