package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"gorm.io/gorm"
)

// ServiceRepository covers the salon service catalog and its categories
type ServiceRepository interface {
	CreateCategory(ctx context.Context, tx *gorm.DB, category *models.ServiceCategory) error
	GetCategory(ctx context.Context, tx *gorm.DB, id uint) (*models.ServiceCategory, error)
	ListCategories(ctx context.Context, tx *gorm.DB, activeOnly bool) ([]*models.ServiceCategory, error)
	CategoryNameExists(ctx context.Context, tx *gorm.DB, name string) (bool, error)

	Create(ctx context.Context, tx *gorm.DB, service *models.Service) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Service, error)
	Update(ctx context.Context, tx *gorm.DB, service *models.Service) error
	List(ctx context.Context, tx *gorm.DB, filters ServiceFilters) ([]*models.Service, error)
}

// ActivityRepository covers activities, their lines and payment links
type ActivityRepository interface {
	Create(ctx context.Context, tx *gorm.DB, activity *models.Activity) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Activity, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Activity, error)
	GetForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Activity, error)
	Update(ctx context.Context, tx *gorm.DB, activity *models.Activity) error
	List(ctx context.Context, tx *gorm.DB, filters ActivityFilters) ([]*models.Activity, int64, error)
	ListBetween(ctx context.Context, tx *gorm.DB, from, to time.Time) ([]*models.Activity, error)

	CreateLine(ctx context.Context, tx *gorm.DB, line *models.ActivityLine) error
	GetLine(ctx context.Context, tx *gorm.DB, id uint) (*models.ActivityLine, error)
	DeleteLine(ctx context.Context, tx *gorm.DB, id uint) error

	GetPaymentLink(ctx context.Context, tx *gorm.DB, activityID uint) (*models.PaymentLink, error)
	SavePaymentLink(ctx context.Context, tx *gorm.DB, link *models.PaymentLink) error
}

// LoyverseRepository stores POS receipts pulled from Loyverse
type LoyverseRepository interface {
	UpsertReceipt(ctx context.Context, tx *gorm.DB, receipt *models.LoyverseReceipt) (created bool, err error)
	GetReceipt(ctx context.Context, tx *gorm.DB, id uint) (*models.LoyverseReceipt, error)
	GetByReceiptID(ctx context.Context, tx *gorm.DB, receiptID string) (*models.LoyverseReceipt, error)
	ListReceipts(ctx context.Context, tx *gorm.DB, filters ReceiptFilters) ([]*models.LoyverseReceipt, int64, error)
	LatestReceiptDate(ctx context.Context, tx *gorm.DB) (*time.Time, error)

	GetActiveStore(ctx context.Context, tx *gorm.DB) (*models.LoyverseStore, error)
}

// InventoryRepository covers items, stock moves and cached stock levels
type InventoryRepository interface {
	CreateItem(ctx context.Context, tx *gorm.DB, item *models.InventoryItem) error
	GetItem(ctx context.Context, tx *gorm.DB, id uint) (*models.InventoryItem, error)
	LockItem(ctx context.Context, tx *gorm.DB, id uint) (*models.InventoryItem, error)
	UpdateItem(ctx context.Context, tx *gorm.DB, item *models.InventoryItem) error
	ListItems(ctx context.Context, tx *gorm.DB, filters InventoryFilters) ([]*models.InventoryItem, error)

	CreateMove(ctx context.Context, tx *gorm.DB, move *models.StockMove) error
	GetMove(ctx context.Context, tx *gorm.DB, id uint) (*models.StockMove, error)
	DeleteMove(ctx context.Context, tx *gorm.DB, id uint) error
	ListMoves(ctx context.Context, tx *gorm.DB, itemID uint) ([]*models.StockMove, error)
	StockFromMoves(ctx context.Context, tx *gorm.DB, itemID uint, excludeMoveID *uint) (int, error)

	SaveLevel(ctx context.Context, tx *gorm.DB, level *models.StockLevel) error
	GetLevel(ctx context.Context, tx *gorm.DB, itemID uint) (*models.StockLevel, error)
}

// TaskRepository covers recurrence rules, templates and tasks
type TaskRepository interface {
	CreateRule(ctx context.Context, tx *gorm.DB, rule *models.RecurrenceRule) error
	GetRule(ctx context.Context, tx *gorm.DB, id uint) (*models.RecurrenceRule, error)
	ListRules(ctx context.Context, tx *gorm.DB) ([]*models.RecurrenceRule, error)

	CreateTemplate(ctx context.Context, tx *gorm.DB, template *models.TaskTemplate) error
	GetTemplate(ctx context.Context, tx *gorm.DB, id uint) (*models.TaskTemplate, error)
	UpdateTemplate(ctx context.Context, tx *gorm.DB, template *models.TaskTemplate) error
	ListTemplates(ctx context.Context, tx *gorm.DB, activeOnly bool) ([]*models.TaskTemplate, error)
	ListRecurringTemplates(ctx context.Context, tx *gorm.DB) ([]*models.TaskTemplate, error)

	CreateTask(ctx context.Context, tx *gorm.DB, task *models.Task) error
	GetTask(ctx context.Context, tx *gorm.DB, id uint) (*models.Task, error)
	UpdateTask(ctx context.Context, tx *gorm.DB, task *models.Task) error
	ListTasks(ctx context.Context, tx *gorm.DB, filters TaskFilters) ([]*models.Task, int64, error)
	ExistsForTemplateOn(ctx context.Context, tx *gorm.DB, templateID uint, day time.Time) (bool, error)

	GetChecklistItem(ctx context.Context, tx *gorm.DB, id uint) (*models.TaskChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, tx *gorm.DB, item *models.TaskChecklistItem) error
}
