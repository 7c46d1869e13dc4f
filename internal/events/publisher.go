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
)

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	PublishEvent(ctx context.Context, event *Event) error
	Close() error
}

// KafkaEventPublisher publishes through watermill's Kafka transport. Messages
// are keyed by the aggregate they describe.
type KafkaEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	router    TopicRouter
}

type PublisherConfig struct {
	KafkaBrokers []string
	ClientID     string
	Router       TopicRouter
	Logger       *slog.Logger
}

// TopicRouter maps an event to its Kafka topic. With PerDomain set, events
// go to "<base>.<domain>" (backoffice-events.lms, backoffice-events.operations).
type TopicRouter struct {
	Base      string
	PerDomain bool
}

func (r TopicRouter) Topic(eventType EventType) string {
	if !r.PerDomain || eventType.Domain() == "" {
		return r.Base
	}
	return r.Base + "." + eventType.Domain()
}

const partitionKeyMetadata = "partition_key"

func NewKafkaEventPublisher(config PublisherConfig) (*KafkaEventPublisher, error) {
	if len(config.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	if config.Router.Base == "" {
		return nil, fmt.Errorf("no kafka topic configured")
	}

	saramaConfig := kafka.DefaultSaramaSyncPublisherConfig()
	if config.ClientID != "" {
		saramaConfig.ClientID = config.ClientID
	}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:               config.KafkaBrokers,
		Marshaler:             kafka.NewWithPartitioningMarshaler(partitionKey),
		OverwriteSaramaConfig: saramaConfig,
	}, watermill.NewSlogLogger(config.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		logger:    config.Logger,
		router:    config.Router,
	}, nil
}

func partitionKey(_ string, msg *message.Message) (string, error) {
	if key := msg.Metadata.Get(partitionKeyMetadata); key != "" {
		return key, nil
	}
	return msg.UUID, nil
}

func (p *KafkaEventPublisher) PublishEvent(ctx context.Context, event *Event) error {
	msg, err := newMessage(event)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	topic := p.router.Topic(event.Type)
	if err := p.publisher.Publish(topic, msg); err != nil {
		p.logger.Error("Failed to publish event",
			"event_id", event.ID,
			"event_type", event.Type,
			"topic", topic,
			"error", err)
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.logger.Info("Published event",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", topic,
		"key", msg.Metadata.Get(partitionKeyMetadata))
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

type keyed interface {
	PartitionKey() string
}

func newMessage(event *Event) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))
	if k, ok := event.Data.(keyed); ok {
		msg.Metadata.Set(partitionKeyMetadata, k.PartitionKey())
	}
	return msg, nil
}

// MockEventPublisher keeps events in memory. It is used when publishing is
// disabled and in tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []Event
	logger *slog.Logger
}

// NewMockEventPublisher creates a new mock event publisher
func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{
		events: make([]Event, 0),
		logger: logger,
	}
}

func (m *MockEventPublisher) PublishEvent(ctx context.Context, event *Event) error {
	// round-trip through the wire format so payload bugs surface in tests
	if _, err := newMessage(event); err != nil {
		return err
	}

	m.mu.Lock()
	m.events = append(m.events, *event)
	m.mu.Unlock()

	m.logger.Debug("Mock: Published event",
		"event_id", event.ID,
		"event_type", event.Type)
	return nil
}

// Close is a no-op for the mock publisher
func (m *MockEventPublisher) Close() error {
	return nil
}

// GetPublishedEvents returns a copy of all published events
func (m *MockEventPublisher) GetPublishedEvents() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// EventsOfType filters published events by type
func (m *MockEventPublisher) EventsOfType(eventType EventType) []Event {
	var out []Event
	for _, event := range m.GetPublishedEvents() {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

// ClearEvents clears all published events
func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	m.events = make([]Event, 0)
	m.mu.Unlock()
}
