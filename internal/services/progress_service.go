package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

// progressTracker recomputes lesson progress and enrollment status inside
// the caller's transaction.
type progressTracker struct {
	repo      repositories.Repository
	evaluator *completionEvaluator
}

func newProgressTracker(repo repositories.Repository, evaluator *completionEvaluator) *progressTracker {
	return &progressTracker{repo: repo, evaluator: evaluator}
}

// updateLessonProgress gets or creates the progress row and recomputes
// quiz_passed and completed. markViewed stamps viewed_at the first time.
// A completed lesson stays completed.
func (t *progressTracker) updateLessonProgress(ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uint, markViewed bool) (*models.Progress, error) {
	progress, err := t.repo.Enrollment().GetProgress(ctx, tx, enrollmentID, lessonID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to get progress: %w", err)
		}
		progress = &models.Progress{EnrollmentID: enrollmentID, LessonID: lessonID}
	}

	now := time.Now()
	if markViewed && progress.ViewedAt == nil {
		progress.ViewedAt = &now
	}

	quizIDs, err := t.repo.Quiz().RequiredQuizIDsForLesson(ctx, tx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list required quizzes: %w", err)
	}
	quizPassed := true
	for _, quizID := range quizIDs {
		passed, err := t.repo.Submission().HasPassed(ctx, tx, enrollmentID, quizID)
		if err != nil {
			return nil, fmt.Errorf("failed to check quiz result: %w", err)
		}
		if !passed {
			quizPassed = false
			break
		}
	}

	progress.QuizPassed = quizPassed
	progress.Completed = progress.Completed || (progress.ViewedAt != nil && quizPassed)
	if progress.Completed && progress.CompletedAt == nil {
		progress.CompletedAt = &now
	}

	if err := t.repo.Enrollment().SaveProgress(ctx, tx, progress); err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	return progress, nil
}

// refresh recomputes the progress percentage and status. completedNow is
// true only on the transition into COMPLETED.
func (t *progressTracker) refresh(ctx context.Context, tx *gorm.DB, enrollmentID uint) (*models.Enrollment, bool, error) {
	enrollment, err := t.repo.Enrollment().GetByID(ctx, tx, enrollmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, false, ErrEnrollmentNotFound
		}
		return nil, false, fmt.Errorf("failed to get enrollment: %w", err)
	}

	total, err := t.repo.Catalog().CountLessonsByCourse(ctx, tx, enrollment.CourseID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to count lessons: %w", err)
	}
	done, err := t.repo.Enrollment().CountCompletedLessons(ctx, tx, enrollment.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to count completed lessons: %w", err)
	}

	enrollment.ProgressPercent = 0
	if total > 0 {
		enrollment.ProgressPercent = decimal.NewFromInt(done).
			Div(decimal.NewFromInt(total)).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			InexactFloat64()
	}

	if enrollment.Status == models.EnrollmentEnrolled && done > 0 {
		enrollment.Status = models.EnrollmentInProgress
	}

	completedNow := false
	if enrollment.Status != models.EnrollmentCompleted {
		complete, err := t.evaluator.courseCompleted(ctx, tx, enrollment)
		if err != nil {
			return nil, false, err
		}
		if complete {
			enrollment.Status = models.EnrollmentCompleted
			if enrollment.CompletedAt == nil {
				now := time.Now()
				enrollment.CompletedAt = &now
			}
			completedNow = true
		}
	}

	if err := t.repo.Enrollment().Update(ctx, tx, enrollment); err != nil {
		return nil, false, fmt.Errorf("failed to update enrollment: %w", err)
	}
	return enrollment, completedNow, nil
}

type progressService struct {
	repo          repositories.Repository
	tracker       *progressTracker
	notifications NotificationEventService
	logger        *slog.Logger
	opLogger      *ServiceLogger
}

func NewProgressService(repo repositories.Repository, notifications NotificationEventService, logger *slog.Logger) ProgressService {
	return &progressService{
		repo:          repo,
		tracker:       newProgressTracker(repo, newCompletionEvaluator(repo)),
		notifications: notifications,
		logger:        logger,
		opLogger:      NewServiceLogger(logger, LogConfig{Service: "lms", Component: "progress"}),
	}
}

func (s *progressService) Enroll(ctx context.Context, userID, courseID uint) (*models.Enrollment, error) {
	s.logger.Info("Enrolling user", "user_id", userID, "course_id", courseID)

	if _, err := s.repo.User().GetByID(ctx, nil, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	course, err := s.repo.Catalog().GetCourse(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	var enrollment *models.Enrollment
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		existing, err := s.repo.Enrollment().GetByUserAndCourse(ctx, tx, userID, course.ID)
		if err == nil {
			enrollment = existing
			return nil
		}
		if !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to look up enrollment: %w", err)
		}

		enrollment = &models.Enrollment{
			UserID:    userID,
			CourseID:  course.ID,
			Status:    models.EnrollmentEnrolled,
			StartedAt: time.Now(),
		}
		if err := s.repo.Enrollment().Create(ctx, tx, enrollment); err != nil {
			return fmt.Errorf("failed to create enrollment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User enrolled", "enrollment_id", enrollment.ID)
	return enrollment, nil
}

func (s *progressService) GetEnrollment(ctx context.Context, id uint, actor Actor) (*models.Enrollment, error) {
	enrollment, err := s.repo.Enrollment().GetWithDetails(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	if err := requireOwnerOrSupervisor(actor, enrollment.UserID, enrollment.ID, "enrollment", "read"); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *progressService) ListEnrollments(ctx context.Context, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error) {
	enrollments, total, err := s.repo.Enrollment().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return &EnrollmentListResponse{Enrollments: enrollments, Total: total}, nil
}

func (s *progressService) MarkLessonViewed(ctx context.Context, enrollmentID, lessonID uint, actor Actor) (*models.Progress, error) {
	op := s.opLogger.WithOperation(ctx, "mark_lesson_viewed", actor.UserID)

	var (
		progress     *models.Progress
		enrollment   *models.Enrollment
		completedNow bool
	)
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		current, err := s.repo.Enrollment().GetByID(ctx, tx, enrollmentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrEnrollmentNotFound
			}
			return fmt.Errorf("failed to get enrollment: %w", err)
		}
		if err := requireOwnerOrSupervisor(actor, current.UserID, current.ID, "enrollment", "update"); err != nil {
			return err
		}
		if err := ensureLessonInCourse(ctx, s.repo, tx, lessonID, current.CourseID); err != nil {
			return err
		}

		progress, err = s.tracker.updateLessonProgress(ctx, tx, current.ID, lessonID, true)
		if err != nil {
			return err
		}
		enrollment, completedNow, err = s.tracker.refresh(ctx, tx, current.ID)
		return err
	})
	op.LogResult(lessonID, "lesson", err)
	if err != nil {
		return nil, err
	}

	if completedNow {
		logNotifyError(s.logger, "enrollment_completed", s.notifications.NotifyEnrollmentCompleted(ctx, enrollment))
	}
	return progress, nil
}

func (s *progressService) RefreshEnrollmentProgress(ctx context.Context, enrollmentID uint) (*models.Enrollment, error) {
	s.logger.Info("Refreshing enrollment progress", "enrollment_id", enrollmentID)

	var (
		enrollment   *models.Enrollment
		completedNow bool
	)
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		enrollment, completedNow, err = s.tracker.refresh(ctx, tx, enrollmentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if completedNow {
		logNotifyError(s.logger, "enrollment_completed", s.notifications.NotifyEnrollmentCompleted(ctx, enrollment))
	}

	s.logger.Info("Enrollment progress refreshed",
		"enrollment_id", enrollment.ID,
		"status", enrollment.Status,
		"progress_percent", enrollment.ProgressPercent)
	return enrollment, nil
}

// ===== HELPERS =====

func requireOwnerOrSupervisor(actor Actor, ownerID, resourceID uint, resource, action string) error {
	if actor.IsSupervisor() || actor.UserID == ownerID {
		return nil
	}
	return NewPermissionError(actor.UserID, resourceID, resource, action, "not the enrollment owner")
}

func ensureLessonInCourse(ctx context.Context, repo repositories.Repository, tx *gorm.DB, lessonID, courseID uint) error {
	lesson, err := repo.Catalog().GetLesson(ctx, tx, lessonID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrLessonNotFound
		}
		return fmt.Errorf("failed to get lesson: %w", err)
	}
	if lesson.Module == nil || lesson.Module.CourseID != courseID {
		return ErrLessonNotInCourse
	}
	return nil
}
