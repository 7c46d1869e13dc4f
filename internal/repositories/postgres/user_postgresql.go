package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return getDB(ctx, u.db, tx).Create(user).Error
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := getDB(ctx, u.db, tx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := getDB(ctx, u.db, tx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return getDB(ctx, u.db, tx).Save(user).Error
}

// List retrieves users with filters and pagination
func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	query := getDB(ctx, u.db, tx).Model(&models.User{})

	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.Search != "" {
		pattern := likePattern(filters.Search)
		query = query.Where("LOWER(username) LIKE ? OR LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*models.User
	if err := paginate(query.Order("username ASC"), filters.Pagination).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (u *UserPostgreSQL) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	return exists(getDB(ctx, u.db, tx).Model(&models.User{}).Where("username = ?", username))
}

type ClientPostgreSQL struct {
	db *gorm.DB
}

func NewClientPostgreSQL(db *gorm.DB) repositories.ClientRepository {
	return &ClientPostgreSQL{db: db}
}

func (c *ClientPostgreSQL) Create(ctx context.Context, tx *gorm.DB, client *models.Client) error {
	return getDB(ctx, c.db, tx).Create(client).Error
}

func (c *ClientPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Client, error) {
	var client models.Client
	if err := getDB(ctx, c.db, tx).First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (c *ClientPostgreSQL) Update(ctx context.Context, tx *gorm.DB, client *models.Client) error {
	return getDB(ctx, c.db, tx).Save(client).Error
}

func (c *ClientPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := getDB(ctx, c.db, tx).Delete(&models.Client{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (c *ClientPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ClientFilters) ([]*models.Client, int64, error) {
	query := getDB(ctx, c.db, tx).Model(&models.Client{})
	if filters.Search != "" {
		pattern := likePattern(filters.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []*models.Client
	if err := paginate(query.Order("name ASC"), filters.Pagination).Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

type AuditPostgreSQL struct {
	db *gorm.DB
}

func NewAuditPostgreSQL(db *gorm.DB) repositories.AuditRepository {
	return &AuditPostgreSQL{db: db}
}

func (a *AuditPostgreSQL) Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error {
	return getDB(ctx, a.db, tx).Create(entry).Error
}

func (a *AuditPostgreSQL) ListByTarget(ctx context.Context, tx *gorm.DB, targetType string, targetID uint) ([]*models.AuditLog, error) {
	var entries []*models.AuditLog
	err := getDB(ctx, a.db, tx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

func (a *AuditPostgreSQL) ListSince(ctx context.Context, tx *gorm.DB, since time.Time, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []*models.AuditLog
	err := getDB(ctx, a.db, tx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
