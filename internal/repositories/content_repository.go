package repositories

import (
	"context"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"gorm.io/gorm"
)

// ContentRepository covers the social media calendar
type ContentRepository interface {
	CreateItem(ctx context.Context, tx *gorm.DB, item *models.ContentItem) error
	GetItem(ctx context.Context, tx *gorm.DB, id uint) (*models.ContentItem, error)
	LockItem(ctx context.Context, tx *gorm.DB, id uint) (*models.ContentItem, error)
	UpdateItem(ctx context.Context, tx *gorm.DB, item *models.ContentItem) error
	ListItems(ctx context.Context, tx *gorm.DB, filters ContentFilters) ([]*models.ContentItem, int64, error)

	CreateApproval(ctx context.Context, tx *gorm.DB, approval *models.ContentApproval) error
	CreateMetric(ctx context.Context, tx *gorm.DB, metric *models.ContentMetric) error
}

// WigRepository covers wigs for sale, client wigs in care and the code
// sequences both are numbered from
type WigRepository interface {
	NextSequence(ctx context.Context, tx *gorm.DB, key string) (int, error)

	CreateProduct(ctx context.Context, tx *gorm.DB, product *models.WigProduct) error
	GetProduct(ctx context.Context, tx *gorm.DB, id uint) (*models.WigProduct, error)
	UpdateProduct(ctx context.Context, tx *gorm.DB, product *models.WigProduct) error
	DeleteProduct(ctx context.Context, tx *gorm.DB, id uint) error
	ListProducts(ctx context.Context, tx *gorm.DB, filters WigFilters) ([]*models.WigProduct, error)

	CreateCare(ctx context.Context, tx *gorm.DB, care *models.CareWig) error
	GetCare(ctx context.Context, tx *gorm.DB, id uint) (*models.CareWig, error)
	UpdateCare(ctx context.Context, tx *gorm.DB, care *models.CareWig) error
	DeleteCare(ctx context.Context, tx *gorm.DB, id uint) error
	ListCare(ctx context.Context, tx *gorm.DB, filters WigFilters) ([]*models.CareWig, error)
}
