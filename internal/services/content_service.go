package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/validator"
)

type contentService struct {
	repo      repositories.Repository
	audit     *auditRecorder
	logger    *slog.Logger
	opLogger  *ServiceLogger
	validator *validator.Validator
}

func NewContentService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ContentService {
	opLogger := NewServiceLogger(logger, LogConfig{Service: "content", Component: "calendar"})
	return &contentService{
		repo:      repo,
		audit:     newAuditRecorder(repo, opLogger),
		logger:    logger,
		opLogger:  opLogger,
		validator: validator,
	}
}

func (s *contentService) Create(ctx context.Context, req *ContentItemRequest, actor Actor) (*models.ContentItem, error) {
	if err := requireSupervisor(actor, 0, "content", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	item := &models.ContentItem{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Platform:    req.Platform,
		Status:      req.Status,
		ScheduledAt: req.ScheduledAt,
		CreatedByID: actor.userIDPtr(),
	}
	if item.Platform == "" {
		item.Platform = models.PlatformInstagram
	}
	if item.Status == "" {
		item.Status = models.ContentIdea
	}

	if err := s.repo.Content().CreateItem(ctx, nil, item); err != nil {
		return nil, fmt.Errorf("failed to create content item: %w", err)
	}
	return s.Get(ctx, item.ID)
}

func (s *contentService) Get(ctx context.Context, id uint) (*models.ContentItem, error) {
	item, err := s.repo.Content().GetItem(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to get content item: %w", err)
	}
	item.RefreshScore()
	return item, nil
}

func (s *contentService) List(ctx context.Context, filters repositories.ContentFilters) (*ContentListResponse, error) {
	items, total, err := s.repo.Content().ListItems(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list content items: %w", err)
	}
	for _, item := range items {
		item.RefreshScore()
	}
	return &ContentListResponse{Items: items, Total: total}, nil
}

func (s *contentService) Update(ctx context.Context, id uint, req *UpdateContentRequest, actor Actor) (*models.ContentItem, error) {
	if err := requireSupervisor(actor, id, "content", "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		item, err := s.lockItem(ctx, tx, id)
		if err != nil {
			return err
		}

		if req.Title != nil {
			item.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			item.Description = *req.Description
		}
		if req.Platform != nil {
			item.Platform = *req.Platform
		}
		if req.Status != nil {
			item.Status = *req.Status
		}
		if req.ScheduledAt != nil {
			item.ScheduledAt = req.ScheduledAt
		} else if req.ClearSchedule {
			item.ScheduledAt = nil
		}

		if err := s.repo.Content().UpdateItem(ctx, tx, item); err != nil {
			return fmt.Errorf("failed to update content item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *contentService) SubmitForApproval(ctx context.Context, id uint, actor Actor) (*models.ContentItem, error) {
	if err := requireSupervisor(actor, id, "content", "submit"); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, actor, "submit_content", func(tx *gorm.DB, item *models.ContentItem) error {
		if !item.Status.CanSubmit() {
			return fmt.Errorf("%w: only a brief or a draft in creation can be submitted (status %s)", ErrInvalidStatusTransition, item.Status)
		}
		item.Status = models.ContentToValidate
		return nil
	})
}

func (s *contentService) Approve(ctx context.Context, id uint, req *ContentReviewRequest, actor Actor) (*models.ContentItem, error) {
	return s.review(ctx, id, req, actor, true)
}

// Reject sends the piece back to creation with the owner's comment.
func (s *contentService) Reject(ctx context.Context, id uint, req *ContentReviewRequest, actor Actor) (*models.ContentItem, error) {
	return s.review(ctx, id, req, actor, false)
}

// review is restricted to the owner. Every decision leaves a ContentApproval
// row carrying the trimmed comment.
func (s *contentService) review(ctx context.Context, id uint, req *ContentReviewRequest, actor Actor, approved bool) (*models.ContentItem, error) {
	action := "reject"
	if approved {
		action = "approve"
	}
	if actor.Role != models.RoleOwner {
		return nil, NewPermissionError(actor.UserID, id, "content", action, "owner role required")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	comment := strings.TrimSpace(req.Comment)
	if comment == "" {
		return nil, ErrReviewCommentEmpty
	}

	return s.transition(ctx, id, actor, action+"_content", func(tx *gorm.DB, item *models.ContentItem) error {
		if item.Status != models.ContentToValidate {
			return fmt.Errorf("%w: content is not awaiting validation (status %s)", ErrInvalidStatusTransition, item.Status)
		}

		previous := item.Status
		item.Status = models.ContentInCreation
		if approved {
			item.Status = models.ContentApproved
		}
		item.ApprovedByID = actor.userIDPtr()

		if err := s.repo.Content().CreateApproval(ctx, tx, &models.ContentApproval{
			ContentItemID: item.ID,
			ApprovedByID:  actor.userIDPtr(),
			Comment:       comment,
			Approved:      approved,
		}); err != nil {
			return fmt.Errorf("failed to record review: %w", err)
		}

		return s.audit.Record(ctx, tx, actor, AuditEvent{
			Type:         models.AuditContentReviewed,
			ResourceID:   item.ID,
			ResourceType: "content",
			Action:       action,
			OldValue:     previous,
			NewValue:     item.Status,
			Metadata:     map[string]interface{}{"comment": comment},
		})
	})
}

func (s *contentService) Publish(ctx context.Context, id uint, actor Actor) (*models.ContentItem, error) {
	if err := requireSupervisor(actor, id, "content", "publish"); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, actor, "publish_content", func(tx *gorm.DB, item *models.ContentItem) error {
		if !item.Status.CanPublish() {
			return fmt.Errorf("%w: only approved or scheduled content can be published (status %s)", ErrInvalidStatusTransition, item.Status)
		}
		previous := item.Status
		item.Status = models.ContentPublished

		return s.audit.Record(ctx, tx, actor, AuditEvent{
			Type:         models.AuditContentPublished,
			ResourceID:   item.ID,
			ResourceType: "content",
			Action:       "publish",
			OldValue:     previous,
			NewValue:     item.Status,
			Metadata:     map[string]interface{}{"platform": item.Platform},
		})
	})
}

// AddMetrics stores the engagement figures of a published piece and moves it
// to METRICS_RECORDED. Only the first set of metrics is accepted.
func (s *contentService) AddMetrics(ctx context.Context, id uint, req *ContentMetricRequest, actor Actor) (*models.ContentMetric, error) {
	if err := requireSupervisor(actor, id, "content", "add_metrics"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	metric := &models.ContentMetric{
		ContentItemID: id,
		Likes:         req.Likes,
		Comments:      req.Comments,
		Shares:        req.Shares,
		Saves:         req.Saves,
		Reach:         req.Reach,
		Clicks:        req.Clicks,
	}
	_, err := s.transition(ctx, id, actor, "record_content_metrics", func(tx *gorm.DB, item *models.ContentItem) error {
		if item.Status != models.ContentPublished {
			return fmt.Errorf("%w: metrics can only be recorded on published content (status %s)", ErrInvalidStatusTransition, item.Status)
		}
		if err := s.repo.Content().CreateMetric(ctx, tx, metric); err != nil {
			return fmt.Errorf("failed to record metrics: %w", err)
		}
		item.Status = models.ContentMetricsRecorded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return metric, nil
}

// transition runs change against the locked item and saves it in the same
// transaction.
func (s *contentService) transition(ctx context.Context, id uint, actor Actor, operation string, change func(tx *gorm.DB, item *models.ContentItem) error) (*models.ContentItem, error) {
	op := s.opLogger.WithOperation(ctx, operation, actor.UserID)

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		item, err := s.lockItem(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := change(tx, item); err != nil {
			return err
		}
		if err := s.repo.Content().UpdateItem(ctx, tx, item); err != nil {
			return fmt.Errorf("failed to update content item: %w", err)
		}
		return nil
	})
	op.LogResult(id, "content", err)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *contentService) lockItem(ctx context.Context, tx *gorm.DB, id uint) (*models.ContentItem, error) {
	item, err := s.repo.Content().LockItem(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to get content item: %w", err)
	}
	return item, nil
}
