package postgres

import (
	"context"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

type WigPostgreSQL struct {
	db *gorm.DB
}

func NewWigPostgreSQL(db *gorm.DB) repositories.WigRepository {
	return &WigPostgreSQL{db: db}
}

// NextSequence increments the named counter and returns the new value. The
// row is created on first use and locked for the rest of tx, so callers
// sharing a key are serialized.
func (w *WigPostgreSQL) NextSequence(ctx context.Context, tx *gorm.DB, key string) (int, error) {
	db := getDB(ctx, w.db, tx)

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&models.Sequence{Key: key}).Error
	if err != nil {
		return 0, err
	}

	var seq models.Sequence
	if err := forUpdate(db).Where(&models.Sequence{Key: key}).First(&seq).Error; err != nil {
		return 0, err
	}
	seq.Value++
	if err := db.Model(&seq).Update("value", seq.Value).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

func (w *WigPostgreSQL) CreateProduct(ctx context.Context, tx *gorm.DB, product *models.WigProduct) error {
	return getDB(ctx, w.db, tx).Create(product).Error
}

func (w *WigPostgreSQL) GetProduct(ctx context.Context, tx *gorm.DB, id uint) (*models.WigProduct, error) {
	var product models.WigProduct
	if err := getDB(ctx, w.db, tx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (w *WigPostgreSQL) UpdateProduct(ctx context.Context, tx *gorm.DB, product *models.WigProduct) error {
	return getDB(ctx, w.db, tx).Save(product).Error
}

func (w *WigPostgreSQL) DeleteProduct(ctx context.Context, tx *gorm.DB, id uint) error {
	return getDB(ctx, w.db, tx).Delete(&models.WigProduct{}, id).Error
}

func (w *WigPostgreSQL) ListProducts(ctx context.Context, tx *gorm.DB, filters repositories.WigFilters) ([]*models.WigProduct, error) {
	query := wigFilter(getDB(ctx, w.db, tx).Model(&models.WigProduct{}), filters, "name")

	var products []*models.WigProduct
	return products, query.Order("created_at DESC, id DESC").Find(&products).Error
}

func (w *WigPostgreSQL) CreateCare(ctx context.Context, tx *gorm.DB, care *models.CareWig) error {
	return getDB(ctx, w.db, tx).Create(care).Error
}

func (w *WigPostgreSQL) GetCare(ctx context.Context, tx *gorm.DB, id uint) (*models.CareWig, error) {
	var care models.CareWig
	if err := getDB(ctx, w.db, tx).First(&care, id).Error; err != nil {
		return nil, err
	}
	return &care, nil
}

func (w *WigPostgreSQL) UpdateCare(ctx context.Context, tx *gorm.DB, care *models.CareWig) error {
	return getDB(ctx, w.db, tx).Save(care).Error
}

func (w *WigPostgreSQL) DeleteCare(ctx context.Context, tx *gorm.DB, id uint) error {
	return getDB(ctx, w.db, tx).Delete(&models.CareWig{}, id).Error
}

func (w *WigPostgreSQL) ListCare(ctx context.Context, tx *gorm.DB, filters repositories.WigFilters) ([]*models.CareWig, error) {
	query := wigFilter(getDB(ctx, w.db, tx).Model(&models.CareWig{}), filters, "client")

	var care []*models.CareWig
	return care, query.Order("created_at DESC, id DESC").Find(&care).Error
}

// wigFilter applies the listing filters. searchColumn is matched together
// with the code by the free text search.
func wigFilter(query *gorm.DB, filters repositories.WigFilters, searchColumn string) *gorm.DB {
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Code != "" {
		query = query.Where("LOWER(code) LIKE ?", likePattern(filters.Code))
	}
	if filters.Search != "" {
		pattern := likePattern(filters.Search)
		query = query.Where("LOWER("+searchColumn+") LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}
	if filters.StartDate != nil {
		query = query.Where("created_at >= ?", now.With(*filters.StartDate).BeginningOfDay())
	}
	if filters.EndDate != nil {
		query = query.Where("created_at < ?", now.With(*filters.EndDate).BeginningOfDay().AddDate(0, 0, 1))
	}
	return query
}
