package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/backoffice-service/internal/events"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
)

func TestInventory_StockMovesAndAlerts(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	inventory := env.services.Inventory()

	item, err := inventory.CreateItem(ctx, &InventoryItemRequest{
		Name:     "Shampoing kératine",
		SKU:      stringPtr("SH-KER-500"),
		Category: models.ItemCategorySale,
		MinStock: 5,
	})
	require.NoError(t, err)

	move := func(qty int, moveType models.StockMoveType) (*StockMoveResult, error) {
		return inventory.RecordMove(ctx, &StockMoveRequest{ItemID: item.ID, Qty: qty, Type: moveType}, manager)
	}

	in, err := move(10, models.StockMoveIn)
	require.NoError(t, err)
	assert.Equal(t, 10, in.Level.Quantity)
	assert.False(t, in.Level.Alert)

	out, err := move(7, models.StockMoveOut)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Level.Quantity)
	assert.True(t, out.Level.Alert)
	assert.Len(t, env.publisher.EventsOfType(events.EventStockAlert), 1)

	loss, err := move(1, models.StockMoveLoss)
	require.NoError(t, err)
	assert.Equal(t, 2, loss.Level.Quantity)
	assert.Len(t, env.publisher.EventsOfType(events.EventStockAlert), 1, "alert already raised")

	_, err = move(5, models.StockMoveOut)
	assert.ErrorIs(t, err, ErrNegativeStock)

	_, err = inventory.DeleteMove(ctx, in.Move.ID, manager)
	assert.ErrorIs(t, err, ErrNegativeStock, "later outflows depend on the inbound move")

	level, err := inventory.DeleteMove(ctx, loss.Move.ID, manager)
	require.NoError(t, err)
	assert.Equal(t, 3, level.Quantity)

	adjusted, err := move(-3, models.StockMoveAdjust)
	require.NoError(t, err)
	assert.Equal(t, 0, adjusted.Level.Quantity)

	moves, err := inventory.ListMoves(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, moves, 3)
}

func TestInventory_MoveValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	item, err := env.services.Inventory().CreateItem(ctx, &InventoryItemRequest{
		Name:     "Gants nitrile",
		Category: models.ItemCategoryConsumable,
	})
	require.NoError(t, err)

	_, err = env.services.Inventory().RecordMove(ctx, &StockMoveRequest{ItemID: item.ID, Qty: -2, Type: models.StockMoveIn}, manager)
	assert.True(t, IsValidation(err))

	_, err = env.services.Inventory().RecordMove(ctx, &StockMoveRequest{ItemID: item.ID, Qty: 0, Type: models.StockMoveAdjust}, manager)
	assert.True(t, IsValidation(err))

	_, err = env.services.Inventory().RecordMove(ctx, &StockMoveRequest{ItemID: 424242, Qty: 1, Type: models.StockMoveIn}, manager)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestInventory_DuplicateSKU(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	req := &InventoryItemRequest{Name: "Laque", SKU: stringPtr("LQ-1"), Category: models.ItemCategorySale}
	_, err := env.services.Inventory().CreateItem(ctx, req)
	require.NoError(t, err)

	_, err = env.services.Inventory().CreateItem(ctx, req)
	assert.True(t, IsConflict(err))
}
