package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/backoffice-service/internal/events"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/notify"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

// NotificationEventService publishes domain events and sends the matching
// transactional mail. Callers invoke it after their transaction commits.
type NotificationEventService interface {
	// LMS notifications
	NotifyQuizSubmitted(ctx context.Context, submission *models.Submission) error
	NotifyEnrollmentCompleted(ctx context.Context, enrollment *models.Enrollment) error
	NotifySubmissionReviewed(ctx context.Context, submission *models.AssignmentSubmission) error
	NotifyBadgeAwarded(ctx context.Context, award *models.BadgeAward, badge *models.Badge) error
	NotifyCertificateIssued(ctx context.Context, certificate *models.Certificate, verifyURL string) error

	// Operations notifications
	NotifyActivityStatusChanged(ctx context.Context, activityID uint, from, to models.ActivityStatus) error
	NotifyActivityPaid(ctx context.Context, activity *models.Activity, link *models.PaymentLink, receipt *models.LoyverseReceipt) error
	NotifyStockAlert(ctx context.Context, item *models.InventoryItem, level *models.StockLevel) error
}

type notificationEventService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	mailer         notify.Mailer
	logger         *slog.Logger
}

func NewNotificationEventService(
	repo repositories.Repository,
	eventPublisher events.EventPublisher,
	mailer notify.Mailer,
	logger *slog.Logger,
) NotificationEventService {
	return &notificationEventService{
		repo:           repo,
		eventPublisher: eventPublisher,
		mailer:         mailer,
		logger:         logger,
	}
}

// ===== LMS NOTIFICATIONS =====

func (s *notificationEventService) NotifyQuizSubmitted(ctx context.Context, submission *models.Submission) error {
	s.logger.Info("Publishing quiz submitted event", "submission_id", submission.ID)

	return s.publish(ctx, events.NewEvent(events.EventQuizSubmitted, events.QuizSubmittedEvent{
		SubmissionID:  submission.ID,
		EnrollmentID:  submission.EnrollmentID,
		QuizID:        submission.QuizID,
		AttemptNumber: submission.AttemptNumber,
		Score:         submission.Score,
		MaxScore:      submission.MaxScore,
		Passed:        submission.Passed,
	}))
}

func (s *notificationEventService) NotifyEnrollmentCompleted(ctx context.Context, enrollment *models.Enrollment) error {
	s.logger.Info("Publishing enrollment completed event", "enrollment_id", enrollment.ID)

	payload := events.EnrollmentCompletedEvent{
		EnrollmentID: enrollment.ID,
		UserID:       enrollment.UserID,
		CourseID:     enrollment.CourseID,
	}
	if enrollment.CompletedAt != nil {
		payload.CompletedAt = *enrollment.CompletedAt
	}
	if err := s.publish(ctx, events.NewEvent(events.EventEnrollmentCompleted, payload)); err != nil {
		return err
	}

	detailed, err := s.repo.Enrollment().GetWithDetails(ctx, nil, enrollment.ID)
	if err != nil {
		return fmt.Errorf("failed to get enrollment: %w", err)
	}
	if detailed.User == nil || detailed.Course == nil {
		return nil
	}
	return s.mail(ctx, detailed.User, "Formation terminée",
		fmt.Sprintf("Bravo %s, vous avez terminé la formation %q.", detailed.User.DisplayName(), detailed.Course.Title))
}

func (s *notificationEventService) NotifySubmissionReviewed(ctx context.Context, submission *models.AssignmentSubmission) error {
	s.logger.Info("Publishing submission reviewed event",
		"submission_id", submission.ID,
		"status", submission.Status)

	payload := events.SubmissionReviewedEvent{
		SubmissionID: submission.ID,
		EnrollmentID: submission.EnrollmentID,
		AssignmentID: submission.AssignmentID,
		Status:       string(submission.Status),
	}
	if submission.ReviewedByID != nil {
		payload.ReviewerID = *submission.ReviewedByID
	}
	return s.publish(ctx, events.NewEvent(events.EventSubmissionReviewed, payload))
}

func (s *notificationEventService) NotifyBadgeAwarded(ctx context.Context, award *models.BadgeAward, badge *models.Badge) error {
	s.logger.Info("Publishing badge awarded event", "award_id", award.ID, "badge_id", badge.ID, "user_id", award.UserID)

	err := s.publish(ctx, events.NewEvent(events.EventBadgeAwarded, events.BadgeAwardedEvent{
		AwardID:   award.ID,
		BadgeID:   badge.ID,
		BadgeName: badge.Name,
		UserID:    award.UserID,
	}))
	if err != nil {
		return err
	}

	user, err := s.repo.User().GetByID(ctx, nil, award.UserID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	return s.mail(ctx, user, "Nouveau badge",
		fmt.Sprintf("Félicitations %s, vous avez obtenu le badge %q.", user.DisplayName(), badge.Name))
}

func (s *notificationEventService) NotifyCertificateIssued(ctx context.Context, certificate *models.Certificate, verifyURL string) error {
	s.logger.Info("Publishing certificate issued event",
		"certificate_id", certificate.ID,
		"certificate_number", certificate.CertificateNumber)

	err := s.publish(ctx, events.NewEvent(events.EventCertificateIssued, events.CertificateIssuedEvent{
		CertificateID:     certificate.ID,
		CertificateNumber: certificate.CertificateNumber,
		EnrollmentID:      certificate.EnrollmentID,
		VerifyURL:         verifyURL,
	}))
	if err != nil {
		return err
	}

	enrollment, err := s.repo.Enrollment().GetWithDetails(ctx, nil, certificate.EnrollmentID)
	if err != nil {
		return fmt.Errorf("failed to get enrollment: %w", err)
	}
	if enrollment.User == nil || enrollment.Course == nil {
		return nil
	}
	return s.mail(ctx, enrollment.User, "Votre certificat",
		fmt.Sprintf("Votre certificat %s pour %q est disponible. Vérification : %s",
			certificate.CertificateNumber, enrollment.Course.Title, verifyURL))
}

// ===== OPERATIONS NOTIFICATIONS =====

func (s *notificationEventService) NotifyActivityStatusChanged(ctx context.Context, activityID uint, from, to models.ActivityStatus) error {
	s.logger.Info("Publishing activity status event", "activity_id", activityID, "from", from, "to", to)

	return s.publish(ctx, events.NewEvent(events.EventActivityStatusChanged, events.ActivityStatusChangedEvent{
		ActivityID: activityID,
		From:       string(from),
		To:         string(to),
	}))
}

func (s *notificationEventService) NotifyActivityPaid(ctx context.Context, activity *models.Activity, link *models.PaymentLink, receipt *models.LoyverseReceipt) error {
	s.logger.Info("Publishing activity paid event", "activity_id", activity.ID)

	payload := events.ActivityPaidEvent{
		ActivityID:      activity.ID,
		FinalAmount:     activity.FinalAmount.Decimal.StringFixed(2),
		ManualReference: link.ManualReference,
	}
	if receipt != nil {
		payload.ReceiptID = receipt.ReceiptID
	}
	return s.publish(ctx, events.NewEvent(events.EventActivityPaid, payload))
}

func (s *notificationEventService) NotifyStockAlert(ctx context.Context, item *models.InventoryItem, level *models.StockLevel) error {
	s.logger.Warn("Publishing stock alert event",
		"item_id", item.ID,
		"quantity", level.Quantity,
		"min_stock", item.MinStock)

	return s.publish(ctx, events.NewEvent(events.EventStockAlert, events.StockAlertEvent{
		ItemID:   item.ID,
		ItemName: item.Name,
		Quantity: level.Quantity,
		MinStock: item.MinStock,
	}))
}

// ===== HELPER METHODS =====

func (s *notificationEventService) publish(ctx context.Context, event *events.Event) error {
	if s.eventPublisher == nil {
		return nil
	}
	if err := s.eventPublisher.PublishEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

func (s *notificationEventService) mail(ctx context.Context, user *models.User, subject, body string) error {
	if s.mailer == nil || user.Email == "" {
		return nil
	}
	return s.mailer.Send(ctx, notify.Message{
		ToName:    user.DisplayName(),
		ToEmail:   user.Email,
		Subject:   subject,
		PlainText: body,
	})
}

// logNotifyError reports a failed post-commit notification without failing the operation
func logNotifyError(logger *slog.Logger, operation string, err error) {
	if err != nil {
		logger.Warn("Notification failed", "operation", operation, "error", err)
	}
}
