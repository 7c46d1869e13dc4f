package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

type ContentPostgreSQL struct {
	db *gorm.DB
}

func NewContentPostgreSQL(db *gorm.DB) repositories.ContentRepository {
	return &ContentPostgreSQL{db: db}
}

func (c *ContentPostgreSQL) CreateItem(ctx context.Context, tx *gorm.DB, item *models.ContentItem) error {
	return getDB(ctx, c.db, tx).Omit("Approvals", "Metrics").Create(item).Error
}

func (c *ContentPostgreSQL) GetItem(ctx context.Context, tx *gorm.DB, id uint) (*models.ContentItem, error) {
	var item models.ContentItem
	err := getDB(ctx, c.db, tx).
		Preload("Approvals", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC, id DESC") }).
		Preload("Metrics", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *ContentPostgreSQL) LockItem(ctx context.Context, tx *gorm.DB, id uint) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := forUpdate(getDB(ctx, c.db, tx)).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *ContentPostgreSQL) UpdateItem(ctx context.Context, tx *gorm.DB, item *models.ContentItem) error {
	return getDB(ctx, c.db, tx).Omit("Approvals", "Metrics").Save(item).Error
}

// ListItems orders by schedule, unscheduled ideas last.
func (c *ContentPostgreSQL) ListItems(ctx context.Context, tx *gorm.DB, filters repositories.ContentFilters) ([]*models.ContentItem, int64, error) {
	query := getDB(ctx, c.db, tx).Model(&models.ContentItem{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Platform != nil {
		query = query.Where("platform = ?", *filters.Platform)
	}
	if filters.ScheduledFrom != nil {
		query = query.Where("scheduled_at >= ?", *filters.ScheduledFrom)
	}
	if filters.ScheduledTo != nil {
		query = query.Where("scheduled_at <= ?", *filters.ScheduledTo)
	}
	if filters.Search != "" {
		pattern := likePattern(filters.Search)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []*models.ContentItem
	err := paginate(query.Preload("Metrics").
		Order("CASE WHEN scheduled_at IS NULL THEN 1 ELSE 0 END, scheduled_at ASC, id DESC"), filters.Pagination).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (c *ContentPostgreSQL) CreateApproval(ctx context.Context, tx *gorm.DB, approval *models.ContentApproval) error {
	return getDB(ctx, c.db, tx).Create(approval).Error
}

func (c *ContentPostgreSQL) CreateMetric(ctx context.Context, tx *gorm.DB, metric *models.ContentMetric) error {
	return getDB(ctx, c.db, tx).Create(metric).Error
}
