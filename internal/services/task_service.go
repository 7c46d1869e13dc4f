package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jinzhu/now"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/validator"
)

type taskService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	opLogger  *ServiceLogger
	validator *validator.Validator
}

func NewTaskService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) TaskService {
	return &taskService{
		repo:      repo,
		logger:    logger,
		opLogger:  NewServiceLogger(logger, LogConfig{Service: "tasks", Component: "task"}),
		validator: validator,
	}
}

// ===== RECURRENCE RULES & TEMPLATES =====

func (s *taskService) CreateRule(ctx context.Context, req *RecurrenceRuleRequest) (*models.RecurrenceRule, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	interval := req.Interval
	if interval < 1 {
		interval = 1
	}
	days, _ := models.ParseWeekdays(req.Weekdays)
	weekdays := make([]string, 0, len(days))
	for _, d := range days {
		weekdays = append(weekdays, fmt.Sprint(d))
	}

	rule := &models.RecurrenceRule{
		Name:        strings.TrimSpace(req.Name),
		Frequency:   req.Frequency,
		Interval:    interval,
		Weekdays:    strings.Join(weekdays, ","),
		Description: req.Description,
	}
	if err := s.repo.Task().CreateRule(ctx, nil, rule); err != nil {
		return nil, fmt.Errorf("failed to create recurrence rule: %w", err)
	}
	return rule, nil
}

func (s *taskService) ListRules(ctx context.Context) ([]*models.RecurrenceRule, error) {
	rules, err := s.repo.Task().ListRules(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurrence rules: %w", err)
	}
	return rules, nil
}

func (s *taskService) CreateTemplate(ctx context.Context, req *TaskTemplateRequest) (*models.TaskTemplate, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.RecurrenceRuleID != nil {
		if _, err := s.repo.Task().GetRule(ctx, nil, *req.RecurrenceRuleID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrRecurrenceRuleNotFound
			}
			return nil, fmt.Errorf("failed to get recurrence rule: %w", err)
		}
	}

	template := &models.TaskTemplate{
		Name:             strings.TrimSpace(req.Name),
		Description:      req.Description,
		RecurrenceRuleID: req.RecurrenceRuleID,
		IsActive:         boolOr(req.IsActive, true),
	}
	for i, label := range req.Checklist {
		template.ChecklistItems = append(template.ChecklistItems, models.TaskTemplateChecklistItem{
			Label: strings.TrimSpace(label),
			Order: i + 1,
		})
	}
	if err := s.repo.Task().CreateTemplate(ctx, nil, template); err != nil {
		return nil, fmt.Errorf("failed to create task template: %w", err)
	}

	s.logger.Info("Task template created", "template_id", template.ID, "recurring", template.RecurrenceRuleID != nil)
	return s.getTemplate(ctx, template.ID)
}

func (s *taskService) getTemplate(ctx context.Context, id uint) (*models.TaskTemplate, error) {
	template, err := s.repo.Task().GetTemplate(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTaskTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get task template: %w", err)
	}
	return template, nil
}

func (s *taskService) ListTemplates(ctx context.Context, activeOnly bool) ([]*models.TaskTemplate, error) {
	templates, err := s.repo.Task().ListTemplates(ctx, nil, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list task templates: %w", err)
	}
	return templates, nil
}

// ===== TASKS =====

func (s *taskService) CreateTask(ctx context.Context, req *CreateTaskRequest, actor Actor) (*models.Task, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.AssignedToID != nil {
		if _, err := s.repo.User().GetByID(ctx, nil, *req.AssignedToID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to get assignee: %w", err)
		}
	}

	task := &models.Task{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Status:       models.TaskTodo,
		AssignedToID: req.AssignedToID,
		CreatedByID:  actor.userIDPtr(),
		DueDate:      req.DueDate,
	}
	for i, label := range req.Checklist {
		task.ChecklistItems = append(task.ChecklistItems, models.TaskChecklistItem{
			Label: strings.TrimSpace(label),
			Order: i + 1,
		})
	}
	if err := s.repo.Task().CreateTask(ctx, nil, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return s.GetTask(ctx, task.ID)
}

func (s *taskService) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	task, err := s.repo.Task().GetTask(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context, filters repositories.TaskFilters) (*TaskListResponse, error) {
	tasks, total, err := s.repo.Task().ListTasks(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return &TaskListResponse{Tasks: tasks, Total: total}, nil
}

func (s *taskService) SetStatus(ctx context.Context, id uint, status models.TaskStatus, actor Actor) (*models.Task, error) {
	op := s.opLogger.WithOperation(ctx, "set_task_status", actor.UserID)

	if !status.IsValid() {
		return nil, validationFailure("status", "unknown task status", status)
	}

	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Status == status {
		return task, nil
	}

	task.Status = status
	err = s.repo.Task().UpdateTask(ctx, nil, task)
	op.LogResult(id, "task", err)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (s *taskService) SetChecklistItem(ctx context.Context, taskID, itemID uint, done bool) (*models.TaskChecklistItem, error) {
	item, err := s.repo.Task().GetChecklistItem(ctx, nil, itemID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrChecklistItemNotFound
		}
		return nil, fmt.Errorf("failed to get checklist item: %w", err)
	}
	if item.TaskID != taskID {
		return nil, ErrChecklistItemNotFound
	}

	item.IsDone = done
	if err := s.repo.Task().UpdateChecklistItem(ctx, nil, item); err != nil {
		return nil, fmt.Errorf("failed to update checklist item: %w", err)
	}
	return item, nil
}

// GenerateRecurringTasks creates at most one task per recurring template for
// the calendar day of date. Templates that already produced a task that day
// are skipped, so repeated runs are harmless.
func (s *taskService) GenerateRecurringTasks(ctx context.Context, date time.Time) (*GenerationResult, error) {
	day := now.With(date).BeginningOfDay()
	result := &GenerationResult{Date: day, TaskIDs: []uint{}}

	s.logger.Info("Generating recurring tasks", "date", day.Format("2006-01-02"))

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		templates, err := s.repo.Task().ListRecurringTemplates(ctx, tx)
		if err != nil {
			return fmt.Errorf("failed to list recurring templates: %w", err)
		}

		for _, template := range templates {
			if template.RecurrenceRule == nil || !template.RecurrenceRule.ShouldRunOn(day) {
				continue
			}

			exists, err := s.repo.Task().ExistsForTemplateOn(ctx, tx, template.ID, day)
			if err != nil {
				return fmt.Errorf("failed to check template %d: %w", template.ID, err)
			}
			if exists {
				result.Skipped++
				continue
			}

			task := taskFromTemplate(template, day)
			if err := s.repo.Task().CreateTask(ctx, tx, task); err != nil {
				return fmt.Errorf("failed to create task for template %d: %w", template.ID, err)
			}
			result.Created++
			result.TaskIDs = append(result.TaskIDs, task.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Recurring tasks generated",
		"date", day.Format("2006-01-02"),
		"created", result.Created,
		"skipped", result.Skipped)
	return result, nil
}

func taskFromTemplate(template *models.TaskTemplate, day time.Time) *models.Task {
	templateID := template.ID
	scheduledFor := day
	due := now.With(day).EndOfDay()

	task := &models.Task{
		Title:        template.Name,
		Description:  template.Description,
		Status:       models.TaskTodo,
		TemplateID:   &templateID,
		ScheduledFor: &scheduledFor,
		DueDate:      &due,
	}
	for _, item := range template.ChecklistItems {
		task.ChecklistItems = append(task.ChecklistItems, models.TaskChecklistItem{
			Label: item.Label,
			Order: item.Order,
		})
	}
	return task
}
