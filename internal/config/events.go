package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/ielts-trainer/internal/events"
)

// EventConfig selects where practice events go
type EventConfig struct {
	Enabled       bool   `env:"EVENTS_ENABLED" envDefault:"false"`
	Publisher     string `env:"EVENTS_PUBLISHER" envDefault:"kafka"` // kafka or mock
	KafkaBrokers  string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	PracticeTopic string `env:"PRACTICE_TOPIC" envDefault:"ielts.practice"`
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	return splitList(c.KafkaBrokers)
}

// CreateEventPublisher returns the mock publisher when events are disabled. A misconfigured kafka
// publisher is an error rather than a silent fallback.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Practice events disabled, logging them only")
		return events.NewMockEventPublisher(logger), nil
	}

	switch publisher := strings.ToLower(strings.TrimSpace(c.Publisher)); publisher {
	case "kafka":
		brokers := c.GetKafkaBrokers()
		if len(brokers) == 0 {
			return nil, fmt.Errorf("EVENTS_PUBLISHER=kafka needs KAFKA_BROKERS")
		}
		if c.PracticeTopic == "" {
			return nil, fmt.Errorf("EVENTS_PUBLISHER=kafka needs PRACTICE_TOPIC")
		}
		logger.Info("Publishing practice events to Kafka", "brokers", brokers, "topic", c.PracticeTopic)
		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: brokers,
			TopicName:    c.PracticeTopic,
			Logger:       logger,
		})
	case "mock":
		return events.NewMockEventPublisher(logger), nil
	default:
		return nil, fmt.Errorf("unknown EVENTS_PUBLISHER %q (want kafka or mock)", c.Publisher)
	}
}
