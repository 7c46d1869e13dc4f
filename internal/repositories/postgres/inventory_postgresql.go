package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

type InventoryPostgreSQL struct {
	db *gorm.DB
}

func NewInventoryPostgreSQL(db *gorm.DB) repositories.InventoryRepository {
	return &InventoryPostgreSQL{db: db}
}

func (i *InventoryPostgreSQL) CreateItem(ctx context.Context, tx *gorm.DB, item *models.InventoryItem) error {
	return getDB(ctx, i.db, tx).Omit("Level").Create(item).Error
}

func (i *InventoryPostgreSQL) GetItem(ctx context.Context, tx *gorm.DB, id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := getDB(ctx, i.db, tx).Preload("Level").First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// LockItem reads the item holding a row lock so concurrent moves on the same
// item serialize.
func (i *InventoryPostgreSQL) LockItem(ctx context.Context, tx *gorm.DB, id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := forUpdate(getDB(ctx, i.db, tx)).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (i *InventoryPostgreSQL) UpdateItem(ctx context.Context, tx *gorm.DB, item *models.InventoryItem) error {
	return getDB(ctx, i.db, tx).Omit("Level").Save(item).Error
}

func (i *InventoryPostgreSQL) ListItems(ctx context.Context, tx *gorm.DB, filters repositories.InventoryFilters) ([]*models.InventoryItem, error) {
	query := getDB(ctx, i.db, tx).Model(&models.InventoryItem{}).Preload("Level")
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.Search != "" {
		pattern := likePattern(filters.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", pattern, pattern)
	}
	if filters.AlertOnly {
		query = query.Where("id IN (?)", getDB(ctx, i.db, tx).Model(&models.StockLevel{}).Select("item_id").Where("alert = ?", true))
	}

	var items []*models.InventoryItem
	return items, query.Order("name ASC").Find(&items).Error
}

func (i *InventoryPostgreSQL) CreateMove(ctx context.Context, tx *gorm.DB, move *models.StockMove) error {
	return getDB(ctx, i.db, tx).Omit("Item").Create(move).Error
}

func (i *InventoryPostgreSQL) GetMove(ctx context.Context, tx *gorm.DB, id uint) (*models.StockMove, error) {
	var move models.StockMove
	if err := getDB(ctx, i.db, tx).First(&move, id).Error; err != nil {
		return nil, err
	}
	return &move, nil
}

func (i *InventoryPostgreSQL) DeleteMove(ctx context.Context, tx *gorm.DB, id uint) error {
	return getDB(ctx, i.db, tx).Delete(&models.StockMove{}, id).Error
}

func (i *InventoryPostgreSQL) ListMoves(ctx context.Context, tx *gorm.DB, itemID uint) ([]*models.StockMove, error) {
	var moves []*models.StockMove
	err := getDB(ctx, i.db, tx).Where("item_id = ?", itemID).Order("created_at DESC, id DESC").Find(&moves).Error
	return moves, err
}

// StockFromMoves sums the signed deltas of every move of the item, optionally
// leaving one move out.
func (i *InventoryPostgreSQL) StockFromMoves(ctx context.Context, tx *gorm.DB, itemID uint, excludeMoveID *uint) (int, error) {
	query := getDB(ctx, i.db, tx).Model(&models.StockMove{}).
		Select(`COALESCE(SUM(CASE
			WHEN type = ? THEN qty
			WHEN type IN (?, ?) THEN -ABS(qty)
			ELSE qty END), 0)`,
			models.StockMoveIn, models.StockMoveOut, models.StockMoveLoss).
		Where("item_id = ?", itemID)
	if excludeMoveID != nil {
		query = query.Where("id <> ?", *excludeMoveID)
	}

	var total int64
	if err := query.Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}

func (i *InventoryPostgreSQL) SaveLevel(ctx context.Context, tx *gorm.DB, level *models.StockLevel) error {
	return getDB(ctx, i.db, tx).Save(level).Error
}

func (i *InventoryPostgreSQL) GetLevel(ctx context.Context, tx *gorm.DB, itemID uint) (*models.StockLevel, error) {
	var level models.StockLevel
	if err := getDB(ctx, i.db, tx).Where("item_id = ?", itemID).First(&level).Error; err != nil {
		return nil, err
	}
	return &level, nil
}
