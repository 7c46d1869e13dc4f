package events

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicRouter(t *testing.T) {
	flat := TopicRouter{Base: "backoffice-events"}
	assert.Equal(t, "backoffice-events", flat.Topic(EventQuizSubmitted))

	split := TopicRouter{Base: "backoffice-events", PerDomain: true}
	assert.Equal(t, "backoffice-events.lms", split.Topic(EventQuizSubmitted))
	assert.Equal(t, "backoffice-events.operations", split.Topic(EventActivityPaid))
	assert.Equal(t, "backoffice-events.inventory", split.Topic(EventStockAlert))
}

func TestNewMessage_PartitionKey(t *testing.T) {
	event := NewEvent(EventActivityStatusChanged, ActivityStatusChangedEvent{ActivityID: 42, From: "ARRIVED", To: "IN_PROGRESS"})
	msg, err := newMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.ID, msg.UUID)
	assert.Equal(t, "activity-42", msg.Metadata.Get(partitionKeyMetadata))
	assert.Equal(t, string(EventActivityStatusChanged), msg.Metadata.Get("event_type"))

	key, err := partitionKey("any", msg)
	require.NoError(t, err)
	assert.Equal(t, "activity-42", key)

	unkeyed, err := newMessage(NewEvent("custom.thing", map[string]string{"a": "b"}))
	require.NoError(t, err)
	key, err = partitionKey("any", unkeyed)
	require.NoError(t, err)
	assert.Equal(t, unkeyed.UUID, key)
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(slog.New(slog.DiscardHandler))
	ctx := context.Background()

	require.NoError(t, mock.PublishEvent(ctx, NewEvent(EventStockAlert, StockAlertEvent{ItemID: 1})))
	require.NoError(t, mock.PublishEvent(ctx, NewEvent(EventBadgeAwarded, BadgeAwardedEvent{UserID: 2})))

	assert.Len(t, mock.GetPublishedEvents(), 2)
	assert.Len(t, mock.EventsOfType(EventStockAlert), 1)

	mock.ClearEvents()
	assert.Empty(t, mock.GetPublishedEvents())
}

func TestNewKafkaEventPublisher_RequiresConfig(t *testing.T) {
	_, err := NewKafkaEventPublisher(PublisherConfig{Router: TopicRouter{Base: "t"}, Logger: slog.New(slog.DiscardHandler)})
	assert.Error(t, err)

	_, err = NewKafkaEventPublisher(PublisherConfig{KafkaBrokers: []string{"localhost:9092"}, Logger: slog.New(slog.DiscardHandler)})
	assert.Error(t, err)
}
