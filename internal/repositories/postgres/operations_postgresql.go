package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

type ServicePostgreSQL struct {
	db *gorm.DB
}

func NewServicePostgreSQL(db *gorm.DB) repositories.ServiceRepository {
	return &ServicePostgreSQL{db: db}
}

func (s *ServicePostgreSQL) CreateCategory(ctx context.Context, tx *gorm.DB, category *models.ServiceCategory) error {
	return getDB(ctx, s.db, tx).Create(category).Error
}

func (s *ServicePostgreSQL) GetCategory(ctx context.Context, tx *gorm.DB, id uint) (*models.ServiceCategory, error) {
	var category models.ServiceCategory
	if err := getDB(ctx, s.db, tx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *ServicePostgreSQL) ListCategories(ctx context.Context, tx *gorm.DB, activeOnly bool) ([]*models.ServiceCategory, error) {
	query := getDB(ctx, s.db, tx).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var categories []*models.ServiceCategory
	return categories, query.Find(&categories).Error
}

func (s *ServicePostgreSQL) CategoryNameExists(ctx context.Context, tx *gorm.DB, name string) (bool, error) {
	return exists(getDB(ctx, s.db, tx).Model(&models.ServiceCategory{}).Where("LOWER(name) = LOWER(?)", name))
}

func (s *ServicePostgreSQL) Create(ctx context.Context, tx *gorm.DB, service *models.Service) error {
	return getDB(ctx, s.db, tx).Create(service).Error
}

func (s *ServicePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Service, error) {
	var service models.Service
	if err := getDB(ctx, s.db, tx).Preload("Category").First(&service, id).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func (s *ServicePostgreSQL) Update(ctx context.Context, tx *gorm.DB, service *models.Service) error {
	return getDB(ctx, s.db, tx).Omit("Category").Save(service).Error
}

func (s *ServicePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ServiceFilters) ([]*models.Service, error) {
	query := getDB(ctx, s.db, tx).Preload("Category").Order("name ASC")
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filters.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(filters.Search))
	}
	var services []*models.Service
	return services, query.Find(&services).Error
}

type ActivityPostgreSQL struct {
	db *gorm.DB
}

func NewActivityPostgreSQL(db *gorm.DB) repositories.ActivityRepository {
	return &ActivityPostgreSQL{db: db}
}

func (a *ActivityPostgreSQL) Create(ctx context.Context, tx *gorm.DB, activity *models.Activity) error {
	return getDB(ctx, a.db, tx).Omit("Client", "AssignedStaff", "PaymentLink").Create(activity).Error
}

func (a *ActivityPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Activity, error) {
	var activity models.Activity
	if err := getDB(ctx, a.db, tx).First(&activity, id).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

// GetByIDWithDetails loads the activity with client, staff, lines and payment link
func (a *ActivityPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Activity, error) {
	var activity models.Activity
	err := getDB(ctx, a.db, tx).
		Preload("Client").
		Preload("AssignedStaff").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Lines.Service").
		Preload("PaymentLink").
		Preload("PaymentLink.LoyverseReceipt").
		First(&activity, id).Error
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (a *ActivityPostgreSQL) GetForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Activity, error) {
	var activity models.Activity
	if err := forUpdate(getDB(ctx, a.db, tx)).First(&activity, id).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

func (a *ActivityPostgreSQL) Update(ctx context.Context, tx *gorm.DB, activity *models.Activity) error {
	return getDB(ctx, a.db, tx).Omit("Client", "AssignedStaff", "Lines", "PaymentLink").Save(activity).Error
}

func (a *ActivityPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ActivityFilters) ([]*models.Activity, int64, error) {
	query := getDB(ctx, a.db, tx).Model(&models.Activity{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.AssignedStaffID != nil {
		query = query.Where("assigned_staff_id = ?", *filters.AssignedStaffID)
	}
	if filters.ClientID != nil {
		query = query.Where("client_id = ?", *filters.ClientID)
	}
	if filters.DateFrom != nil {
		query = query.Where("start_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("start_at < ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var activities []*models.Activity
	err := paginate(query.Preload("Client").Preload("AssignedStaff").Order("start_at DESC"), filters.Pagination).
		Find(&activities).Error
	if err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

func (a *ActivityPostgreSQL) ListBetween(ctx context.Context, tx *gorm.DB, from, to time.Time) ([]*models.Activity, error) {
	var activities []*models.Activity
	err := getDB(ctx, a.db, tx).
		Preload("Client").
		Preload("AssignedStaff").
		Preload("Lines").
		Where("start_at >= ? AND start_at < ?", from, to).
		Order("start_at ASC").
		Find(&activities).Error
	return activities, err
}

func (a *ActivityPostgreSQL) CreateLine(ctx context.Context, tx *gorm.DB, line *models.ActivityLine) error {
	return getDB(ctx, a.db, tx).Omit("Service").Create(line).Error
}

func (a *ActivityPostgreSQL) GetLine(ctx context.Context, tx *gorm.DB, id uint) (*models.ActivityLine, error) {
	var line models.ActivityLine
	if err := getDB(ctx, a.db, tx).First(&line, id).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (a *ActivityPostgreSQL) DeleteLine(ctx context.Context, tx *gorm.DB, id uint) error {
	return getDB(ctx, a.db, tx).Delete(&models.ActivityLine{}, id).Error
}

func (a *ActivityPostgreSQL) GetPaymentLink(ctx context.Context, tx *gorm.DB, activityID uint) (*models.PaymentLink, error) {
	var link models.PaymentLink
	if err := getDB(ctx, a.db, tx).Where("activity_id = ?", activityID).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (a *ActivityPostgreSQL) SavePaymentLink(ctx context.Context, tx *gorm.DB, link *models.PaymentLink) error {
	return getDB(ctx, a.db, tx).Omit("LoyverseReceipt").Save(link).Error
}

type LoyversePostgreSQL struct {
	db *gorm.DB
}

func NewLoyversePostgreSQL(db *gorm.DB) repositories.LoyverseRepository {
	return &LoyversePostgreSQL{db: db}
}

// UpsertReceipt inserts the receipt or refreshes the stored copy keyed by ReceiptID.
func (l *LoyversePostgreSQL) UpsertReceipt(ctx context.Context, tx *gorm.DB, receipt *models.LoyverseReceipt) (bool, error) {
	db := getDB(ctx, l.db, tx)

	existing, err := firstOrNil[models.LoyverseReceipt](db.Where("receipt_id = ?", receipt.ReceiptID))
	if err != nil {
		return false, err
	}
	if existing == nil {
		return true, db.Create(receipt).Error
	}

	receipt.ID = existing.ID
	receipt.CreatedAt = existing.CreatedAt
	return false, db.Save(receipt).Error
}

func (l *LoyversePostgreSQL) GetReceipt(ctx context.Context, tx *gorm.DB, id uint) (*models.LoyverseReceipt, error) {
	var receipt models.LoyverseReceipt
	if err := getDB(ctx, l.db, tx).First(&receipt, id).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (l *LoyversePostgreSQL) GetByReceiptID(ctx context.Context, tx *gorm.DB, receiptID string) (*models.LoyverseReceipt, error) {
	var receipt models.LoyverseReceipt
	if err := getDB(ctx, l.db, tx).Where("receipt_id = ?", receiptID).First(&receipt).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (l *LoyversePostgreSQL) ListReceipts(ctx context.Context, tx *gorm.DB, filters repositories.ReceiptFilters) ([]*models.LoyverseReceipt, int64, error) {
	query := getDB(ctx, l.db, tx).Model(&models.LoyverseReceipt{})
	if filters.Since != nil {
		query = query.Where("receipt_date >= ?", *filters.Since)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var receipts []*models.LoyverseReceipt
	if err := paginate(query.Order("receipt_date DESC"), filters.Pagination).Find(&receipts).Error; err != nil {
		return nil, 0, err
	}
	return receipts, total, nil
}

func (l *LoyversePostgreSQL) LatestReceiptDate(ctx context.Context, tx *gorm.DB) (*time.Time, error) {
	latest, err := firstOrNil[models.LoyverseReceipt](getDB(ctx, l.db, tx).
		Where("receipt_date IS NOT NULL").
		Order("receipt_date DESC"))
	if err != nil || latest == nil {
		return nil, err
	}
	return latest.ReceiptDate, nil
}

func (l *LoyversePostgreSQL) GetActiveStore(ctx context.Context, tx *gorm.DB) (*models.LoyverseStore, error) {
	var store models.LoyverseStore
	err := getDB(ctx, l.db, tx).Where("is_active = ?", true).Order("id ASC").First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}
