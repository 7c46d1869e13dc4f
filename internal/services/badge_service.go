package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

type badgeService struct {
	repo          repositories.Repository
	evaluator     *completionEvaluator
	notifications NotificationEventService
	logger        *slog.Logger
}

func NewBadgeService(repo repositories.Repository, notifications NotificationEventService, logger *slog.Logger) BadgeService {
	return &badgeService{
		repo:          repo,
		evaluator:     newCompletionEvaluator(repo),
		notifications: notifications,
		logger:        logger,
	}
}

type newAward struct {
	award *models.BadgeAward
	badge *models.Badge
}

// AwardBadgesForEnrollment evaluates every active badge for the enrollment
// and returns the awards created by this call. A badge is awarded at most
// once per user.
func (s *badgeService) AwardBadgesForEnrollment(ctx context.Context, enrollmentID uint) ([]*models.BadgeAward, error) {
	s.logger.Info("Evaluating badges", "enrollment_id", enrollmentID)

	var created []newAward
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		enrollment, err := s.repo.Enrollment().GetByID(ctx, tx, enrollmentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrEnrollmentNotFound
			}
			return fmt.Errorf("failed to get enrollment: %w", err)
		}

		badges, err := s.repo.Badge().ListActive(ctx, tx)
		if err != nil {
			return fmt.Errorf("failed to list badges: %w", err)
		}

		for _, badge := range badges {
			eligible, err := s.eligible(ctx, tx, badge, enrollment)
			if err != nil {
				return fmt.Errorf("failed to evaluate badge %d: %w", badge.ID, err)
			}
			if !eligible {
				continue
			}

			enrollmentRef := enrollment.ID
			award, isNew, err := s.repo.Badge().GetOrCreateAward(ctx, tx, &models.BadgeAward{
				BadgeID:      badge.ID,
				UserID:       enrollment.UserID,
				EnrollmentID: &enrollmentRef,
			})
			if err != nil {
				return fmt.Errorf("failed to award badge %d: %w", badge.ID, err)
			}
			if isNew {
				created = append(created, newAward{award: award, badge: badge})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	awards := make([]*models.BadgeAward, 0, len(created))
	for _, c := range created {
		logNotifyError(s.logger, "badge_awarded", s.notifications.NotifyBadgeAwarded(ctx, c.award, c.badge))
		awards = append(awards, c.award)
	}

	s.logger.Info("Badges evaluated", "enrollment_id", enrollmentID, "awarded", len(awards))
	return awards, nil
}

func (s *badgeService) eligible(ctx context.Context, tx *gorm.DB, badge *models.Badge, enrollment *models.Enrollment) (bool, error) {
	switch badge.RuleType {
	case models.BadgeCourseCompleted:
		if enrollment.Status != models.EnrollmentCompleted {
			return false, nil
		}
		return badge.CourseID == nil || *badge.CourseID == enrollment.CourseID, nil

	case models.BadgeModuleCompleted:
		if badge.ModuleID == nil {
			return false, nil
		}
		module, err := s.repo.Catalog().GetModule(ctx, tx, *badge.ModuleID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return false, nil
			}
			return false, err
		}
		if module.CourseID != enrollment.CourseID {
			return false, nil
		}
		return s.evaluator.moduleCompleted(ctx, tx, enrollment.ID, module.ID)

	case models.BadgeQuizScore:
		var (
			quizIDs []uint
			err     error
		)
		switch {
		case badge.ModuleID != nil:
			quizIDs, err = s.repo.Quiz().QuizIDsForModule(ctx, tx, *badge.ModuleID)
		case badge.CourseID != nil:
			quizIDs, err = s.repo.Quiz().QuizIDsForCourse(ctx, tx, *badge.CourseID)
		default:
			quizIDs, err = s.repo.Quiz().QuizIDsForCourse(ctx, tx, enrollment.CourseID)
		}
		if err != nil {
			return false, err
		}
		best, err := s.evaluator.bestQuizPercent(ctx, tx, enrollment.ID, quizIDs)
		if err != nil {
			return false, err
		}
		return best >= badge.MinScore, nil

	case models.BadgeKPITarget:
		if badge.KPILabel == "" || badge.KPIMinValue == nil {
			return false, nil
		}
		total, err := s.repo.Assignment().SumEvidenceByLabel(ctx, tx, enrollment.ID, badge.KPILabel)
		if err != nil {
			return false, err
		}
		return total >= *badge.KPIMinValue, nil

	case models.BadgeAssignmentApproved:
		var (
			assignmentIDs []uint
			err           error
		)
		switch {
		case badge.AssignmentID != nil:
			assignmentIDs = []uint{*badge.AssignmentID}
		case badge.ModuleID != nil:
			assignmentIDs, err = s.repo.Assignment().IDsForModule(ctx, tx, *badge.ModuleID)
		case badge.CourseID != nil:
			assignmentIDs, err = s.repo.Assignment().IDsForCourse(ctx, tx, *badge.CourseID, false)
		default:
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return s.repo.Assignment().HasApprovedSubmission(ctx, tx, enrollment.ID, assignmentIDs)
	}
	return false, nil
}

func (s *badgeService) ListAwards(ctx context.Context, userID uint) ([]*models.BadgeAward, error) {
	awards, err := s.repo.Badge().ListAwardsByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list awards: %w", err)
	}
	return awards, nil
}
