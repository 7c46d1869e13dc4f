package postgres

import (
	"context"
	"time"

	"github.com/jinzhu/now"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

type TaskPostgreSQL struct {
	db *gorm.DB
}

func NewTaskPostgreSQL(db *gorm.DB) repositories.TaskRepository {
	return &TaskPostgreSQL{db: db}
}

func (t *TaskPostgreSQL) CreateRule(ctx context.Context, tx *gorm.DB, rule *models.RecurrenceRule) error {
	return getDB(ctx, t.db, tx).Create(rule).Error
}

func (t *TaskPostgreSQL) GetRule(ctx context.Context, tx *gorm.DB, id uint) (*models.RecurrenceRule, error) {
	var rule models.RecurrenceRule
	if err := getDB(ctx, t.db, tx).First(&rule, id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (t *TaskPostgreSQL) ListRules(ctx context.Context, tx *gorm.DB) ([]*models.RecurrenceRule, error) {
	var rules []*models.RecurrenceRule
	return rules, getDB(ctx, t.db, tx).Order("name ASC").Find(&rules).Error
}

// CreateTemplate inserts the template together with its checklist items
func (t *TaskPostgreSQL) CreateTemplate(ctx context.Context, tx *gorm.DB, template *models.TaskTemplate) error {
	return getDB(ctx, t.db, tx).Omit("RecurrenceRule").Create(template).Error
}

func (t *TaskPostgreSQL) GetTemplate(ctx context.Context, tx *gorm.DB, id uint) (*models.TaskTemplate, error) {
	var template models.TaskTemplate
	err := getDB(ctx, t.db, tx).
		Preload("RecurrenceRule").
		Preload("ChecklistItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		First(&template, id).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (t *TaskPostgreSQL) UpdateTemplate(ctx context.Context, tx *gorm.DB, template *models.TaskTemplate) error {
	return getDB(ctx, t.db, tx).Omit("RecurrenceRule", "ChecklistItems").Save(template).Error
}

func (t *TaskPostgreSQL) ListTemplates(ctx context.Context, tx *gorm.DB, activeOnly bool) ([]*models.TaskTemplate, error) {
	query := getDB(ctx, t.db, tx).Preload("RecurrenceRule").Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var templates []*models.TaskTemplate
	return templates, query.Find(&templates).Error
}

// ListRecurringTemplates returns active templates that carry a recurrence rule
func (t *TaskPostgreSQL) ListRecurringTemplates(ctx context.Context, tx *gorm.DB) ([]*models.TaskTemplate, error) {
	var templates []*models.TaskTemplate
	err := getDB(ctx, t.db, tx).
		Preload("RecurrenceRule").
		Preload("ChecklistItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Where("is_active = ? AND recurrence_rule_id IS NOT NULL", true).
		Order("id ASC").
		Find(&templates).Error
	return templates, err
}

func (t *TaskPostgreSQL) CreateTask(ctx context.Context, tx *gorm.DB, task *models.Task) error {
	return getDB(ctx, t.db, tx).Omit("AssignedTo").Create(task).Error
}

func (t *TaskPostgreSQL) GetTask(ctx context.Context, tx *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	err := getDB(ctx, t.db, tx).
		Preload("AssignedTo").
		Preload("ChecklistItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (t *TaskPostgreSQL) UpdateTask(ctx context.Context, tx *gorm.DB, task *models.Task) error {
	return getDB(ctx, t.db, tx).Omit("AssignedTo", "ChecklistItems").Save(task).Error
}

func (t *TaskPostgreSQL) ListTasks(ctx context.Context, tx *gorm.DB, filters repositories.TaskFilters) ([]*models.Task, int64, error) {
	query := getDB(ctx, t.db, tx).Model(&models.Task{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", *filters.AssignedToID)
	}
	if filters.TemplateID != nil {
		query = query.Where("template_id = ?", *filters.TemplateID)
	}
	if filters.DueBefore != nil {
		query = query.Where("due_date < ?", *filters.DueBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []*models.Task
	err := paginate(query.Preload("AssignedTo").Order("created_at DESC, id DESC"), filters.Pagination).Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// ExistsForTemplateOn reports whether the template already produced a task
// scheduled for the calendar day of day.
func (t *TaskPostgreSQL) ExistsForTemplateOn(ctx context.Context, tx *gorm.DB, templateID uint, day time.Time) (bool, error) {
	start := now.With(day).BeginningOfDay()
	end := start.AddDate(0, 0, 1)
	return exists(getDB(ctx, t.db, tx).Model(&models.Task{}).
		Where("template_id = ? AND scheduled_for >= ? AND scheduled_for < ?", templateID, start, end))
}

func (t *TaskPostgreSQL) GetChecklistItem(ctx context.Context, tx *gorm.DB, id uint) (*models.TaskChecklistItem, error) {
	var item models.TaskChecklistItem
	if err := getDB(ctx, t.db, tx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (t *TaskPostgreSQL) UpdateChecklistItem(ctx context.Context, tx *gorm.DB, item *models.TaskChecklistItem) error {
	return getDB(ctx, t.db, tx).Save(item).Error
}
