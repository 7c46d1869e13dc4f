package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/validator"
)

type assignmentService struct {
	repo          repositories.Repository
	tracker       *progressTracker
	badges        BadgeService
	notifications NotificationEventService
	audit         *auditRecorder
	logger        *slog.Logger
	opLogger      *ServiceLogger
	validator     *validator.Validator
}

func NewAssignmentService(
	repo repositories.Repository,
	badges BadgeService,
	notifications NotificationEventService,
	logger *slog.Logger,
	validator *validator.Validator,
) AssignmentService {
	opLogger := NewServiceLogger(logger, LogConfig{Service: "lms", Component: "assignment"})
	return &assignmentService{
		repo:          repo,
		tracker:       newProgressTracker(repo, newCompletionEvaluator(repo)),
		badges:        badges,
		notifications: notifications,
		audit:         newAuditRecorder(repo, opLogger),
		logger:        logger,
		opLogger:      opLogger,
		validator:     validator,
	}
}

// SubmitAssignment upserts the single submission of the enrollment for the
// assignment. Invalid KPI evidence rolls the whole submission back.
func (s *assignmentService) SubmitAssignment(ctx context.Context, enrollmentID, assignmentID uint, req *SubmitAssignmentRequest, actor Actor) (*models.AssignmentSubmission, error) {
	s.logger.Info("Submitting assignment",
		"enrollment_id", enrollmentID,
		"assignment_id", assignmentID,
		"evidence", len(req.Evidence))

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var submission *models.AssignmentSubmission
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		enrollment, err := s.repo.Enrollment().GetByID(ctx, tx, enrollmentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrEnrollmentNotFound
			}
			return fmt.Errorf("failed to get enrollment: %w", err)
		}
		if err := requireOwnerOrSupervisor(actor, enrollment.UserID, enrollment.ID, "enrollment", "submit_assignment"); err != nil {
			return err
		}

		assignment, err := s.repo.Assignment().GetByID(ctx, tx, assignmentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrAssignmentNotFound
			}
			return fmt.Errorf("failed to get assignment: %w", err)
		}
		courseID, err := scopeCourseID(ctx, s.repo, tx, assignment.LessonID, assignment.ModuleID)
		if err != nil {
			return err
		}
		if courseID != enrollment.CourseID {
			return ErrAssignmentNotInCourse
		}

		submission, err = s.repo.Assignment().FindSubmission(ctx, tx, enrollment.ID, assignment.ID)
		if err != nil {
			if !repositories.IsNotFoundError(err) {
				return fmt.Errorf("failed to look up submission: %w", err)
			}
			submission = &models.AssignmentSubmission{EnrollmentID: enrollment.ID, AssignmentID: assignment.ID}
		}

		submission.Status = models.AssignmentSubmitted
		submission.ResponseText = req.ResponseText
		submission.SubmittedAt = time.Now()
		submission.Score = nil
		submission.Feedback = ""
		submission.ReviewedAt = nil
		submission.ReviewedByID = nil
		if err := s.repo.Assignment().SaveSubmission(ctx, tx, submission); err != nil {
			return fmt.Errorf("failed to save submission: %w", err)
		}

		if err := s.replaceCollections(ctx, tx, submission.ID, req); err != nil {
			return err
		}

		evidence, err := s.repo.Assignment().ListEvidence(ctx, tx, submission.ID)
		if err != nil {
			return fmt.Errorf("failed to list evidence: %w", err)
		}
		if errs := ValidateKPIEvidence(assignment, evidence); len(errs) > 0 {
			return errs
		}
		return nil
	})
	if err != nil {
		s.opLogger.WithOperation(ctx, "submit_assignment", actor.UserID).LogResult(assignmentID, "assignment", err)
		return nil, err
	}

	s.logger.Info("Assignment submitted", "submission_id", submission.ID)
	return s.GetSubmission(ctx, submission.ID)
}

func (s *assignmentService) replaceCollections(ctx context.Context, tx *gorm.DB, submissionID uint, req *SubmitAssignmentRequest) error {
	if req.Evidence != nil {
		rows := make([]models.AssignmentKPIEvidence, 0, len(req.Evidence))
		for _, in := range req.Evidence {
			rows = append(rows, models.AssignmentKPIEvidence{
				RequirementID: in.RequirementID,
				Value:         in.Value,
				ProofURL:      in.ProofURL,
				ProofFile:     in.ProofFile,
				Notes:         in.Notes,
				ClientID:      in.ClientID,
				ActivityID:    in.ActivityID,
			})
		}
		if err := s.repo.Assignment().ReplaceEvidence(ctx, tx, submissionID, rows); err != nil {
			return fmt.Errorf("failed to replace evidence: %w", err)
		}
	}
	if req.Attachments != nil {
		rows := make([]models.SubmissionAttachment, 0, len(req.Attachments))
		for _, in := range req.Attachments {
			rows = append(rows, models.SubmissionAttachment{ImagePath: in.ImagePath, Caption: in.Caption})
		}
		if err := s.repo.Assignment().ReplaceAttachments(ctx, tx, submissionID, rows); err != nil {
			return fmt.Errorf("failed to replace attachments: %w", err)
		}
	}
	if req.Links != nil {
		rows := make([]models.SubmissionLink, 0, len(req.Links))
		for _, in := range req.Links {
			rows = append(rows, models.SubmissionLink{URL: in.URL, Label: in.Label})
		}
		if err := s.repo.Assignment().ReplaceLinks(ctx, tx, submissionID, rows); err != nil {
			return fmt.Errorf("failed to replace links: %w", err)
		}
	}
	if req.KPIs != nil {
		rows := make([]models.SubmissionKPI, 0, len(req.KPIs))
		for _, in := range req.KPIs {
			rows = append(rows, models.SubmissionKPI{Label: in.Label, Value: in.Value, Unit: in.Unit})
		}
		if err := s.repo.Assignment().ReplaceKPIs(ctx, tx, submissionID, rows); err != nil {
			return fmt.Errorf("failed to replace kpis: %w", err)
		}
	}
	return nil
}

// ValidateKPIEvidence checks submitted evidence against the assignment's
// requirements. Every value must lie within its requirement's bounds. When
// the assignment requires KPI evidence, every required requirement also
// needs evidence carrying a proof.
func ValidateKPIEvidence(assignment *models.Assignment, evidence []*models.AssignmentKPIEvidence) ValidationErrors {
	var errs ValidationErrors

	if assignment.RequiresKPIEvidence && len(evidence) == 0 {
		errs = errs.Add("kpi_evidence", "at least one KPI evidence is required", nil)
	}

	requirements := make(map[uint]models.AssignmentKPIRequirement, len(assignment.KPIRequirements))
	for _, req := range assignment.KPIRequirements {
		requirements[req.ID] = req
	}

	proven := make(map[uint]bool, len(evidence))
	for _, ev := range evidence {
		req, ok := requirements[ev.RequirementID]
		if !ok {
			errs = errs.Add("kpi_evidence", "evidence references a requirement of another assignment", ev.RequirementID)
			continue
		}
		if req.MinValue != nil && ev.Value < *req.MinValue {
			errs = errs.Add("kpi_evidence", fmt.Sprintf("%s must be at least %g", req.Label, *req.MinValue), ev.Value)
		}
		if req.MaxValue != nil && ev.Value > *req.MaxValue {
			errs = errs.Add("kpi_evidence", fmt.Sprintf("%s must be at most %g", req.Label, *req.MaxValue), ev.Value)
		}
		if ev.HasProof() {
			proven[req.ID] = true
		}
	}

	if !assignment.RequiresKPIEvidence {
		return errs
	}
	for _, req := range assignment.KPIRequirements {
		if req.IsRequired && !proven[req.ID] {
			errs = errs.Add("kpi_evidence", fmt.Sprintf("%s requires evidence with a proof link or file", req.Label), req.ID)
		}
	}
	return errs
}

// ReviewSubmission approves or rejects a submission, refreshes the
// enrollment and then evaluates badges.
func (s *assignmentService) ReviewSubmission(ctx context.Context, submissionID uint, req *ReviewSubmissionRequest, actor Actor) (*models.AssignmentSubmission, error) {
	op := s.opLogger.WithOperation(ctx, "review_submission", actor.UserID)

	if !actor.IsSupervisor() {
		err := NewPermissionError(actor.UserID, submissionID, "assignment_submission", "review", "supervisor role required")
		op.LogResult(submissionID, "assignment_submission", err)
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		submission   *models.AssignmentSubmission
		enrollment   *models.Enrollment
		completedNow bool
	)
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		submission, err = s.repo.Assignment().GetSubmission(ctx, tx, submissionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSubmissionNotFound
			}
			return fmt.Errorf("failed to get submission: %w", err)
		}

		if req.Score != nil {
			assignment, err := s.repo.Assignment().GetByID(ctx, tx, submission.AssignmentID)
			if err != nil {
				return fmt.Errorf("failed to get assignment: %w", err)
			}
			if assignment.MaxScore > 0 && *req.Score > assignment.MaxScore {
				return validationFailure("score", fmt.Sprintf("must not exceed %d", assignment.MaxScore), *req.Score)
			}
		}

		previous := submission.Status
		now := time.Now()
		submission.Status = req.Status
		submission.Feedback = req.Feedback
		submission.Score = req.Score
		submission.ReviewedAt = &now
		submission.ReviewedByID = actor.userIDPtr()
		if err := s.repo.Assignment().SaveSubmission(ctx, tx, submission); err != nil {
			return fmt.Errorf("failed to save submission: %w", err)
		}

		err = s.audit.Record(ctx, tx, actor, AuditEvent{
			Type:         models.AuditSubmissionReviewed,
			ResourceID:   submission.ID,
			ResourceType: "assignment_submission",
			Action:       "review",
			OldValue:     previous,
			NewValue:     submission.Status,
		})
		if err != nil {
			return err
		}

		enrollment, completedNow, err = s.tracker.refresh(ctx, tx, submission.EnrollmentID)
		return err
	})
	op.LogResult(submissionID, "assignment_submission", err)
	if err != nil {
		return nil, err
	}

	logNotifyError(s.logger, "submission_reviewed", s.notifications.NotifySubmissionReviewed(ctx, submission))
	if completedNow {
		logNotifyError(s.logger, "enrollment_completed", s.notifications.NotifyEnrollmentCompleted(ctx, enrollment))
	}
	if s.badges != nil {
		if _, err := s.badges.AwardBadgesForEnrollment(ctx, submission.EnrollmentID); err != nil {
			s.logger.Warn("Badge evaluation failed after review",
				"enrollment_id", submission.EnrollmentID,
				"error", err)
		}
	}

	return s.GetSubmission(ctx, submission.ID)
}

func (s *assignmentService) GetSubmission(ctx context.Context, id uint) (*models.AssignmentSubmission, error) {
	submission, err := s.repo.Assignment().GetSubmissionWithDetails(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return submission, nil
}

func (s *assignmentService) ListSubmissions(ctx context.Context, filters repositories.AssignmentSubmissionFilters) (*AssignmentSubmissionListResponse, error) {
	submissions, total, err := s.repo.Assignment().ListSubmissions(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return &AssignmentSubmissionListResponse{Submissions: submissions, Total: total}, nil
}
