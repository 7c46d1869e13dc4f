package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository interface for staff accounts
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error)
}

// ClientRepository interface for CRM clients
type ClientRepository interface {
	Create(ctx context.Context, tx *gorm.DB, client *models.Client) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Client, error)
	Update(ctx context.Context, tx *gorm.DB, client *models.Client) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters ClientFilters) ([]*models.Client, int64, error)
}

// AuditRepository stores the audit trail of sensitive operations
type AuditRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error
	ListByTarget(ctx context.Context, tx *gorm.DB, targetType string, targetID uint) ([]*models.AuditLog, error)
	ListSince(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*models.AuditLog, error)
}
