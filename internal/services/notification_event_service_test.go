package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/backoffice-service/internal/events"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
)

func TestNotificationEventService_PublishEvents(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	service := env.services.Notifications()

	t.Run("ActivityStatusChanged", func(t *testing.T) {
		env.publisher.ClearEvents()

		err := service.NotifyActivityStatusChanged(ctx, 12, models.ActivityInProgress, models.ActivityDone)
		require.NoError(t, err)

		published := env.publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		event := published[0]
		assert.Equal(t, events.EventActivityStatusChanged, event.Type)
		assert.Equal(t, "backoffice-service", event.Source)
		assert.NotEmpty(t, event.ID)

		payload, ok := event.Data.(events.ActivityStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, uint(12), payload.ActivityID)
		assert.Equal(t, "IN_PROGRESS", payload.From)
		assert.Equal(t, "DONE", payload.To)
	})

	t.Run("ActivityPaid", func(t *testing.T) {
		env.publisher.ClearEvents()

		activity := &models.Activity{ID: 3, FinalAmount: decimal.NewNullDecimal(decimal.RequireFromString("49.9"))}
		link := &models.PaymentLink{ActivityID: 3}
		receipt := &models.LoyverseReceipt{ReceiptID: "r-77"}

		require.NoError(t, service.NotifyActivityPaid(ctx, activity, link, receipt))

		paid := env.publisher.EventsOfType(events.EventActivityPaid)
		require.Len(t, paid, 1)
		payload := paid[0].Data.(events.ActivityPaidEvent)
		assert.Equal(t, "49.90", payload.FinalAmount)
		assert.Equal(t, "r-77", payload.ReceiptID)
	})

	t.Run("StockAlert", func(t *testing.T) {
		env.publisher.ClearEvents()

		item := &models.InventoryItem{ID: 5, Name: "Oxydant 20 vol", MinStock: 4}
		level := &models.StockLevel{ItemID: 5, Quantity: 1, Alert: true}
		require.NoError(t, service.NotifyStockAlert(ctx, item, level))

		alerts := env.publisher.EventsOfType(events.EventStockAlert)
		require.Len(t, alerts, 1)
		payload := alerts[0].Data.(events.StockAlertEvent)
		assert.Equal(t, 1, payload.Quantity)
		assert.Equal(t, 4, payload.MinStock)
	})
}

func TestNotificationEventService_BadgeMail(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	learner := env.createUser(t, "rose", models.RoleStaff)

	award := &models.BadgeAward{ID: 1, BadgeID: 2, UserID: learner.ID}
	badge := &models.Badge{ID: 2, Name: "Pro du balayage"}
	require.NoError(t, env.services.Notifications().NotifyBadgeAwarded(ctx, award, badge))

	sent := env.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "rose@salon.test", sent[0].ToEmail)
	assert.Contains(t, sent[0].PlainText, "Pro du balayage")
}
