package config

import (
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/backoffice-service/internal/events"
)

type EventConfig struct {
	Enabled        bool
	Publisher      string // kafka or mock
	KafkaBrokers   string
	KafkaClientID  string
	Topic          string
	TopicPerDomain bool
}

// Brokers splits KAFKA_BROKERS, dropping blanks.
func (c *EventConfig) Brokers() []string {
	var brokers []string
	for _, broker := range strings.Split(c.KafkaBrokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

func (c *EventConfig) Router() events.TopicRouter {
	return events.TopicRouter{Base: c.Topic, PerDomain: c.TopicPerDomain}
}

// CreateEventPublisher returns the Kafka publisher when events are enabled
// and configured for it, and the in-memory mock otherwise.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, using mock publisher")
		return events.NewMockEventPublisher(logger), nil
	}

	switch strings.ToLower(c.Publisher) {
	case "kafka":
		logger.Info("Creating Kafka event publisher",
			"brokers", c.KafkaBrokers,
			"topic", c.Topic,
			"per_domain", c.TopicPerDomain)
		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.Brokers(),
			ClientID:     c.KafkaClientID,
			Router:       c.Router(),
			Logger:       logger,
		})
	case "mock", "":
		return events.NewMockEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher, falling back to mock", "publisher", c.Publisher)
		return events.NewMockEventPublisher(logger), nil
	}
}
