package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

// completionEvaluator holds the completion rules shared by the progress,
// quiz, assignment and badge services. Every method runs inside the
// caller's transaction.
type completionEvaluator struct {
	repo repositories.Repository
}

func newCompletionEvaluator(repo repositories.Repository) *completionEvaluator {
	return &completionEvaluator{repo: repo}
}

// moduleCompleted requires every lesson of the module completed and at least
// one approved assignment of the module. An optional completion rule adds
// further gates on top.
func (e *completionEvaluator) moduleCompleted(ctx context.Context, tx *gorm.DB, enrollmentID, moduleID uint) (bool, error) {
	lessons, err := e.repo.Catalog().ListLessonsByModule(ctx, tx, moduleID)
	if err != nil {
		return false, fmt.Errorf("failed to list lessons: %w", err)
	}
	if len(lessons) == 0 {
		return false, nil
	}

	completedIDs, err := e.repo.Enrollment().CompletedLessonIDs(ctx, tx, enrollmentID)
	if err != nil {
		return false, fmt.Errorf("failed to list completed lessons: %w", err)
	}
	completed := make(map[uint]struct{}, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = struct{}{}
	}

	done := 0
	for _, lesson := range lessons {
		if _, ok := completed[lesson.ID]; ok {
			done++
		}
	}
	if done != len(lessons) {
		return false, nil
	}

	assignmentIDs, err := e.repo.Assignment().IDsForModule(ctx, tx, moduleID)
	if err != nil {
		return false, fmt.Errorf("failed to list module assignments: %w", err)
	}
	if len(assignmentIDs) == 0 {
		return false, nil
	}
	approved, err := e.repo.Assignment().HasApprovedSubmission(ctx, tx, enrollmentID, assignmentIDs)
	if err != nil {
		return false, fmt.Errorf("failed to check approved submissions: %w", err)
	}
	if !approved {
		return false, nil
	}

	rule, err := e.repo.Catalog().GetCompletionRuleForModule(ctx, tx, moduleID)
	if err != nil {
		return false, fmt.Errorf("failed to get module completion rule: %w", err)
	}
	if rule == nil {
		return true, nil
	}

	quizIDs, err := e.repo.Quiz().QuizIDsForModule(ctx, tx, moduleID)
	if err != nil {
		return false, fmt.Errorf("failed to list module quizzes: %w", err)
	}
	return e.ruleSatisfied(ctx, tx, rule, enrollmentID, done, len(lessons), quizIDs, assignmentIDs)
}

// courseCompleted requires every module completed and an approved final
// assessment, plus the optional course completion rule.
func (e *completionEvaluator) courseCompleted(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) (bool, error) {
	modules, err := e.repo.Catalog().ListModulesByCourse(ctx, tx, enrollment.CourseID)
	if err != nil {
		return false, fmt.Errorf("failed to list modules: %w", err)
	}
	if len(modules) == 0 {
		return false, nil
	}
	for _, module := range modules {
		ok, err := e.moduleCompleted(ctx, tx, enrollment.ID, module.ID)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	finalIDs, err := e.repo.Assignment().IDsForCourse(ctx, tx, enrollment.CourseID, true)
	if err != nil {
		return false, fmt.Errorf("failed to list final assessments: %w", err)
	}
	if len(finalIDs) == 0 {
		return false, nil
	}
	approved, err := e.repo.Assignment().HasApprovedSubmission(ctx, tx, enrollment.ID, finalIDs)
	if err != nil {
		return false, fmt.Errorf("failed to check final assessment: %w", err)
	}
	if !approved {
		return false, nil
	}

	rule, err := e.repo.Catalog().GetCompletionRuleForCourse(ctx, tx, enrollment.CourseID)
	if err != nil {
		return false, fmt.Errorf("failed to get course completion rule: %w", err)
	}
	if rule == nil {
		return true, nil
	}

	total, err := e.repo.Catalog().CountLessonsByCourse(ctx, tx, enrollment.CourseID)
	if err != nil {
		return false, fmt.Errorf("failed to count lessons: %w", err)
	}
	done, err := e.repo.Enrollment().CountCompletedLessons(ctx, tx, enrollment.ID)
	if err != nil {
		return false, fmt.Errorf("failed to count completed lessons: %w", err)
	}
	quizIDs, err := e.repo.Quiz().QuizIDsForCourse(ctx, tx, enrollment.CourseID)
	if err != nil {
		return false, fmt.Errorf("failed to list course quizzes: %w", err)
	}
	assignmentIDs, err := e.repo.Assignment().IDsForCourse(ctx, tx, enrollment.CourseID, false)
	if err != nil {
		return false, fmt.Errorf("failed to list course assignments: %w", err)
	}
	return e.ruleSatisfied(ctx, tx, rule, enrollment.ID, int(done), int(total), quizIDs, assignmentIDs)
}

func (e *completionEvaluator) ruleSatisfied(
	ctx context.Context,
	tx *gorm.DB,
	rule *models.CompletionRule,
	enrollmentID uint,
	done, total int,
	quizIDs, assignmentIDs []uint,
) (bool, error) {
	if rule.RequireAllLessons && done < total {
		return false, nil
	}
	if rule.MinLessonsCompleted > 0 && done < rule.MinLessonsCompleted {
		return false, nil
	}
	if rule.MinProgressPercent > 0 {
		if total == 0 || float64(done)/float64(total)*100 < rule.MinProgressPercent {
			return false, nil
		}
	}
	if rule.MinQuizScore > 0 {
		best, err := e.bestQuizPercent(ctx, tx, enrollmentID, quizIDs)
		if err != nil {
			return false, err
		}
		if best < rule.MinQuizScore {
			return false, nil
		}
	}
	if rule.RequireAssignmentsApproved && len(assignmentIDs) > 0 {
		approved, err := e.repo.Assignment().CountApprovedSubmissions(ctx, tx, enrollmentID, assignmentIDs)
		if err != nil {
			return false, fmt.Errorf("failed to count approved submissions: %w", err)
		}
		if int(approved) < len(assignmentIDs) {
			return false, nil
		}
	}
	return true, nil
}

// bestQuizPercent returns the highest percentage among attempts that carry points
func (e *completionEvaluator) bestQuizPercent(ctx context.Context, tx *gorm.DB, enrollmentID uint, quizIDs []uint) (float64, error) {
	submissions, err := e.repo.Submission().ListForQuizzes(ctx, tx, enrollmentID, quizIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to list quiz submissions: %w", err)
	}
	best := 0.0
	for _, submission := range submissions {
		if submission.MaxScore <= 0 {
			continue
		}
		if p := submission.Percent(); p > best {
			best = p
		}
	}
	return best, nil
}

type completionService struct {
	repo      repositories.Repository
	evaluator *completionEvaluator
	logger    *slog.Logger
}

func NewCompletionService(repo repositories.Repository, logger *slog.Logger) CompletionService {
	return &completionService{
		repo:      repo,
		evaluator: newCompletionEvaluator(repo),
		logger:    logger,
	}
}

func (s *completionService) IsModuleCompleted(ctx context.Context, enrollmentID, moduleID uint) (bool, error) {
	enrollment, err := s.repo.Enrollment().GetByID(ctx, nil, enrollmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrEnrollmentNotFound
		}
		return false, fmt.Errorf("failed to get enrollment: %w", err)
	}
	module, err := s.repo.Catalog().GetModule(ctx, nil, moduleID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrModuleNotFound
		}
		return false, fmt.Errorf("failed to get module: %w", err)
	}
	if module.CourseID != enrollment.CourseID {
		return false, nil
	}
	return s.evaluator.moduleCompleted(ctx, nil, enrollmentID, moduleID)
}

func (s *completionService) IsCourseCompleted(ctx context.Context, enrollmentID uint) (bool, error) {
	enrollment, err := s.repo.Enrollment().GetByID(ctx, nil, enrollmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrEnrollmentNotFound
		}
		return false, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return s.evaluator.courseCompleted(ctx, nil, enrollment)
}
