package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/validator"
)

type activityService struct {
	repo          repositories.Repository
	notifications NotificationEventService
	audit         *auditRecorder
	logger        *slog.Logger
	opLogger      *ServiceLogger
	validator     *validator.Validator
}

func NewActivityService(
	repo repositories.Repository,
	notifications NotificationEventService,
	logger *slog.Logger,
	validator *validator.Validator,
) ActivityService {
	opLogger := NewServiceLogger(logger, LogConfig{Service: "operations", Component: "activity"})
	return &activityService{
		repo:          repo,
		notifications: notifications,
		audit:         newAuditRecorder(repo, opLogger),
		logger:        logger,
		opLogger:      opLogger,
		validator:     validator,
	}
}

// Create opens a new activity in ARRIVED. When no expected amount is given
// it defaults to the total of the lines.
func (s *activityService) Create(ctx context.Context, req *CreateActivityRequest, actor Actor) (*models.Activity, error) {
	op := s.opLogger.WithOperation(ctx, "create_activity", actor.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	activity := &models.Activity{
		Type:            req.Type,
		Status:          models.ActivityArrived,
		ClientID:        req.ClientID,
		AssignedStaffID: req.AssignedStaffID,
		StartAt:         req.StartAt,
		EstimatedEndAt:  req.EstimatedEndAt,
		ExpectedAmount:  req.ExpectedAmount.Round(2),
		Notes:           req.Notes,
		ContentPossible: req.ContentPossible,
		CreatedByID:     actor.userIDPtr(),
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.checkParties(ctx, tx, req.ClientID, req.AssignedStaffID); err != nil {
			return err
		}

		for i := range req.Lines {
			line, err := s.buildLine(ctx, tx, &req.Lines[i])
			if err != nil {
				return err
			}
			activity.Lines = append(activity.Lines, *line)
		}
		if activity.ExpectedAmount.IsZero() && len(activity.Lines) > 0 {
			activity.ExpectedAmount = activity.LinesTotal()
		}

		if err := s.repo.Activity().Create(ctx, tx, activity); err != nil {
			return fmt.Errorf("failed to create activity: %w", err)
		}
		return nil
	})
	op.LogResult(activity.ID, "activity", err)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, activity.ID)
}

func (s *activityService) checkParties(ctx context.Context, tx *gorm.DB, clientID, staffID *uint) error {
	if clientID != nil {
		if _, err := s.repo.Client().GetByID(ctx, tx, *clientID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrClientNotFound
			}
			return fmt.Errorf("failed to get client: %w", err)
		}
	}
	if staffID != nil {
		if _, err := s.repo.User().GetByID(ctx, tx, *staffID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get staff: %w", err)
		}
	}
	return nil
}

// buildLine resolves the catalog service of a line. The unit price falls back
// to the service base price and the description to the service name.
func (s *activityService) buildLine(ctx context.Context, tx *gorm.DB, req *ActivityLineRequest) (*models.ActivityLine, error) {
	line := &models.ActivityLine{
		ServiceID:   req.ServiceID,
		Description: strings.TrimSpace(req.Description),
		Quantity:    req.Quantity,
	}
	if line.Quantity < 1 {
		line.Quantity = 1
	}

	if req.ServiceID != nil {
		service, err := s.repo.Service().GetByID(ctx, tx, *req.ServiceID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrServiceNotFound
			}
			return nil, fmt.Errorf("failed to get service: %w", err)
		}
		line.UnitPrice = service.BasePrice
		if line.Description == "" {
			line.Description = service.Name
		}
	} else if line.Description == "" {
		return nil, validationFailure("description", "a line needs a service or a description", nil)
	}

	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, validationFailure("unit_price", "must not be negative", req.UnitPrice.String())
		}
		line.UnitPrice = *req.UnitPrice
	}
	line.UnitPrice = line.UnitPrice.Round(2)
	return line, nil
}

func (s *activityService) GetByID(ctx context.Context, id uint) (*models.Activity, error) {
	activity, err := s.repo.Activity().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return activity, nil
}

func (s *activityService) Update(ctx context.Context, id uint, req *UpdateActivityRequest, actor Actor) (*models.Activity, error) {
	op := s.opLogger.WithOperation(ctx, "update_activity", actor.UserID)

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		activity, err := s.lockActivity(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.checkParties(ctx, tx, req.ClientID, nil); err != nil {
			return err
		}

		if req.ClientID != nil {
			activity.ClientID = req.ClientID
		}
		if req.StartAt != nil {
			activity.StartAt = *req.StartAt
		}
		if req.EstimatedEndAt != nil {
			activity.EstimatedEndAt = req.EstimatedEndAt
		}
		if req.EndAt != nil {
			activity.EndAt = req.EndAt
		}
		if req.ExpectedAmount != nil {
			activity.ExpectedAmount = req.ExpectedAmount.Round(2)
		}
		if req.Notes != nil {
			activity.Notes = *req.Notes
		}
		if req.ContentPossible != nil {
			activity.ContentPossible = *req.ContentPossible
		}

		if errs := validateActivityTimes(activity); len(errs) > 0 {
			return errs
		}
		if err := s.repo.Activity().Update(ctx, tx, activity); err != nil {
			return fmt.Errorf("failed to update activity: %w", err)
		}
		return nil
	})
	op.LogResult(id, "activity", err)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func validateActivityTimes(activity *models.Activity) ValidationErrors {
	var errs ValidationErrors
	if activity.EstimatedEndAt != nil && activity.EstimatedEndAt.Before(activity.StartAt) {
		errs = errs.Add("estimated_end_at", "must not be before start_at", activity.EstimatedEndAt)
	}
	if activity.EndAt != nil && activity.EndAt.Before(activity.StartAt) {
		errs = errs.Add("end_at", "must not be before start_at", activity.EndAt)
	}
	if activity.ExpectedAmount.IsNegative() {
		errs = errs.Add("expected_amount", "must not be negative", activity.ExpectedAmount.String())
	}
	return errs
}

func (s *activityService) List(ctx context.Context, filters repositories.ActivityFilters) (*ActivityListResponse, error) {
	activities, total, err := s.repo.Activity().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return &ActivityListResponse{Activities: activities, Total: total}, nil
}

// SetStatus moves the activity along the status flow. Setting the current
// status is a no-op.
func (s *activityService) SetStatus(ctx context.Context, id uint, status models.ActivityStatus, actor Actor) (*models.Activity, error) {
	return s.transition(ctx, "set_status", id, status, actor)
}

// MarkDone transitions to DONE and stamps the end time when it is unset
func (s *activityService) MarkDone(ctx context.Context, id uint, actor Actor) (*models.Activity, error) {
	return s.transition(ctx, "mark_done", id, models.ActivityDone, actor)
}

func (s *activityService) transition(ctx context.Context, operation string, id uint, status models.ActivityStatus, actor Actor) (*models.Activity, error) {
	op := s.opLogger.WithOperation(ctx, operation, actor.UserID)

	if !status.IsValid() {
		return nil, validationFailure("status", "unknown activity status", status)
	}

	var (
		previous models.ActivityStatus
		changed  bool
	)
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		activity, err := s.lockActivity(ctx, tx, id)
		if err != nil {
			return err
		}

		previous = activity.Status
		if previous == status {
			return nil
		}
		if !previous.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, previous, status)
		}

		activity.Status = status
		if status == models.ActivityDone && activity.EndAt == nil {
			endAt := time.Now()
			if endAt.Before(activity.StartAt) {
				endAt = activity.StartAt
			}
			activity.EndAt = &endAt
		}
		if err := s.repo.Activity().Update(ctx, tx, activity); err != nil {
			return fmt.Errorf("failed to update activity: %w", err)
		}
		changed = true

		return s.audit.Record(ctx, tx, actor, AuditEvent{
			Type:         models.AuditActivityStatusChanged,
			ResourceID:   activity.ID,
			ResourceType: "activity",
			Action:       operation,
			OldValue:     previous,
			NewValue:     status,
		})
	})
	op.LogResult(id, "activity", err)
	if err != nil {
		return nil, err
	}

	if changed {
		logNotifyError(s.logger, "activity_status_changed",
			s.notifications.NotifyActivityStatusChanged(ctx, id, previous, status))
	}
	return s.GetByID(ctx, id)
}

func (s *activityService) AssignStaff(ctx context.Context, id uint, staffID uint, actor Actor) (*models.Activity, error) {
	op := s.opLogger.WithOperation(ctx, "assign_staff", actor.UserID)

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		activity, err := s.lockActivity(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.checkParties(ctx, tx, nil, &staffID); err != nil {
			return err
		}

		activity.AssignedStaffID = &staffID
		if err := s.repo.Activity().Update(ctx, tx, activity); err != nil {
			return fmt.Errorf("failed to assign staff: %w", err)
		}
		return nil
	})
	op.LogResult(id, "activity", err)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *activityService) AddLine(ctx context.Context, activityID uint, req *ActivityLineRequest) (*models.ActivityLine, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var line *models.ActivityLine
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		activity, err := s.lockActivity(ctx, tx, activityID)
		if err != nil {
			return err
		}
		if activity.Status.IsTerminal() {
			return NewBusinessRuleError("activity_closed", "lines cannot change once an activity is paid or canceled",
				map[string]interface{}{"activity_id": activity.ID, "status": activity.Status})
		}

		line, err = s.buildLine(ctx, tx, req)
		if err != nil {
			return err
		}
		line.ActivityID = activity.ID
		if err := s.repo.Activity().CreateLine(ctx, tx, line); err != nil {
			return fmt.Errorf("failed to create line: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *activityService) RemoveLine(ctx context.Context, activityID, lineID uint) error {
	return s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		activity, err := s.lockActivity(ctx, tx, activityID)
		if err != nil {
			return err
		}
		if activity.Status.IsTerminal() {
			return NewBusinessRuleError("activity_closed", "lines cannot change once an activity is paid or canceled",
				map[string]interface{}{"activity_id": activity.ID, "status": activity.Status})
		}

		line, err := s.repo.Activity().GetLine(ctx, tx, lineID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrActivityLineNotFound
			}
			return fmt.Errorf("failed to get line: %w", err)
		}
		if line.ActivityID != activity.ID {
			return ErrActivityLineNotFound
		}
		if err := s.repo.Activity().DeleteLine(ctx, tx, line.ID); err != nil {
			return fmt.Errorf("failed to delete line: %w", err)
		}
		return nil
	})
}

// LinkPayment attaches a Loyverse receipt or a manual reference to the
// activity and settles it. DONE walks through TO_COLLECT to PAID, TO_COLLECT
// goes to PAID and PAID stays PAID. The final amount is the provided value,
// else the one already stored, else the expected amount.
func (s *activityService) LinkPayment(ctx context.Context, id uint, req *LinkPaymentRequest, actor Actor) (*models.Activity, error) {
	op := s.opLogger.WithOperation(ctx, "link_payment", actor.UserID)

	if !actor.Role.CanLinkPayments() {
		err := NewPermissionError(actor.UserID, id, "activity", "link_payment", "manager or admin role required")
		op.LogResult(id, "activity", err)
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		activity *models.Activity
		link     *models.PaymentLink
		receipt  *models.LoyverseReceipt
		previous models.ActivityStatus
	)
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		activity, err = s.lockActivity(ctx, tx, id)
		if err != nil {
			return err
		}

		if req.LoyverseReceiptID != nil {
			receipt, err = s.repo.Loyverse().GetReceipt(ctx, tx, *req.LoyverseReceiptID)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					return ErrReceiptNotFound
				}
				return fmt.Errorf("failed to get receipt: %w", err)
			}
		}

		previous = activity.Status
		switch previous {
		case models.ActivityDone, models.ActivityToCollect, models.ActivityPaid:
		default:
			return fmt.Errorf("%w: cannot link a payment while %s", ErrInvalidStatusTransition, previous)
		}

		link, err = s.repo.Activity().GetPaymentLink(ctx, tx, activity.ID)
		if err != nil {
			if !repositories.IsNotFoundError(err) {
				return fmt.Errorf("failed to get payment link: %w", err)
			}
			link = &models.PaymentLink{ActivityID: activity.ID}
		}
		link.LoyverseReceiptID = req.LoyverseReceiptID
		link.ManualReference = strings.TrimSpace(req.ManualReference)
		link.LinkedByID = actor.userIDPtr()
		if err := s.repo.Activity().SavePaymentLink(ctx, tx, link); err != nil {
			return fmt.Errorf("failed to save payment link: %w", err)
		}

		activity.Status = models.ActivityPaid
		switch {
		case req.FinalAmount != nil:
			activity.FinalAmount = decimal.NewNullDecimal(req.FinalAmount.Round(2))
		case activity.FinalAmount.Valid:
		default:
			activity.FinalAmount = decimal.NewNullDecimal(activity.ExpectedAmount)
		}
		if err := s.repo.Activity().Update(ctx, tx, activity); err != nil {
			return fmt.Errorf("failed to update activity: %w", err)
		}

		return s.audit.Record(ctx, tx, actor, AuditEvent{
			Type:         models.AuditPaymentLinked,
			ResourceID:   activity.ID,
			ResourceType: "activity",
			Action:       "link_payment",
			OldValue:     previous,
			NewValue:     activity.Status,
			Metadata: map[string]interface{}{
				"loyverse_receipt_id": req.LoyverseReceiptID,
				"manual_reference":    link.ManualReference,
				"final_amount":        activity.FinalAmount.Decimal.String(),
			},
		})
	})
	op.LogResult(id, "activity", err)
	if err != nil {
		return nil, err
	}

	if previous != models.ActivityPaid {
		logNotifyError(s.logger, "activity_status_changed",
			s.notifications.NotifyActivityStatusChanged(ctx, activity.ID, previous, models.ActivityPaid))
		logNotifyError(s.logger, "activity_paid", s.notifications.NotifyActivityPaid(ctx, activity, link, receipt))
	}
	return s.GetByID(ctx, id)
}

func (s *activityService) lockActivity(ctx context.Context, tx *gorm.DB, id uint) (*models.Activity, error) {
	activity, err := s.repo.Activity().GetForUpdate(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return activity, nil
}
