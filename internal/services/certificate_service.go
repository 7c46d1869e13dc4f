package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/config"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

type certificateService struct {
	repo          repositories.Repository
	notifications NotificationEventService
	audit         *auditRecorder
	logger        *slog.Logger
	opLogger      *ServiceLogger
	config        config.CertificateConfig
}

func NewCertificateService(repo repositories.Repository, notifications NotificationEventService, logger *slog.Logger, cfg config.CertificateConfig) CertificateService {
	opLogger := NewServiceLogger(logger, LogConfig{Service: "lms", Component: "certificate"})
	return &certificateService{
		repo:          repo,
		notifications: notifications,
		audit:         newAuditRecorder(repo, opLogger),
		logger:        logger,
		opLogger:      opLogger,
		config:        cfg,
	}
}

// CertificateNumber formats {PREFIX}-{course}-{enrollment}-{YYYYMMDD}
func CertificateNumber(prefix string, courseID, enrollmentID uint, issuedAt time.Time) string {
	return fmt.Sprintf("%s-%d-%d-%s", prefix, courseID, enrollmentID, issuedAt.Format("20060102"))
}

func (s *certificateService) verifyURL(code string) string {
	return fmt.Sprintf("%s/api/v1/lms/certificates/verify/%s", s.config.VerifyBaseURL, code)
}

// IssueCertificate returns the enrollment's certificate, creating it on the
// first call. Only completed enrollments qualify.
func (s *certificateService) IssueCertificate(ctx context.Context, enrollmentID uint, actor Actor) (*models.Certificate, error) {
	op := s.opLogger.WithOperation(ctx, "issue_certificate", actor.UserID)

	var (
		certificate *models.Certificate
		created     bool
	)
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		enrollment, err := s.repo.Enrollment().GetByID(ctx, tx, enrollmentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrEnrollmentNotFound
			}
			return fmt.Errorf("failed to get enrollment: %w", err)
		}
		if err := requireOwnerOrSupervisor(actor, enrollment.UserID, enrollment.ID, "certificate", "issue"); err != nil {
			return err
		}
		if enrollment.Status != models.EnrollmentCompleted {
			return ErrEnrollmentNotCompleted
		}

		certificate, err = s.repo.Certificate().GetByEnrollment(ctx, tx, enrollment.ID)
		if err == nil {
			return nil
		}
		if !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to look up certificate: %w", err)
		}

		now := time.Now()
		certificate = &models.Certificate{
			EnrollmentID:      enrollment.ID,
			CertificateNumber: CertificateNumber(s.config.NumberPrefix, enrollment.CourseID, enrollment.ID, now),
			VerificationCode:  uuid.NewString(),
			IssuedAt:          now,
			Status:            models.CertificateIssued,
			CreatedByID:       actor.userIDPtr(),
		}
		if err := s.repo.Certificate().Create(ctx, tx, certificate); err != nil {
			return fmt.Errorf("failed to create certificate: %w", err)
		}
		created = true

		return s.audit.Record(ctx, tx, actor, AuditEvent{
			Type:         models.AuditCertificateIssued,
			ResourceID:   certificate.ID,
			ResourceType: "certificate",
			Action:       "issue",
			NewValue:     certificate.CertificateNumber,
		})
	})
	op.LogResult(enrollmentID, "enrollment", err)
	if err != nil {
		return nil, err
	}

	if created {
		logNotifyError(s.logger, "certificate_issued",
			s.notifications.NotifyCertificateIssued(ctx, certificate, s.verifyURL(certificate.VerificationCode)))
	}
	return certificate, nil
}

// VerifyCertificate is the public lookup by verification code
func (s *certificateService) VerifyCertificate(ctx context.Context, code string) (*CertificateVerification, error) {
	certificate, err := s.repo.Certificate().GetByVerificationCode(ctx, nil, code)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCertificateNotFound
		}
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}

	result := &CertificateVerification{
		CertificateNumber: certificate.CertificateNumber,
		Status:            certificate.Status,
		Valid:             certificate.Status == models.CertificateIssued,
		IssuedAt:          certificate.IssuedAt,
	}
	if enrollment := certificate.Enrollment; enrollment != nil {
		if enrollment.Course != nil {
			result.CourseTitle = enrollment.Course.Title
		}
		if enrollment.User != nil {
			result.HolderName = enrollment.User.DisplayName()
		}
	}
	return result, nil
}

func (s *certificateService) RevokeCertificate(ctx context.Context, id uint, actor Actor) (*models.Certificate, error) {
	op := s.opLogger.WithOperation(ctx, "revoke_certificate", actor.UserID)

	if !actor.IsSupervisor() {
		err := NewPermissionError(actor.UserID, id, "certificate", "revoke", "supervisor role required")
		op.LogResult(id, "certificate", err)
		return nil, err
	}

	var certificate *models.Certificate
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		certificate, err = s.repo.Certificate().GetByID(ctx, tx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrCertificateNotFound
			}
			return fmt.Errorf("failed to get certificate: %w", err)
		}
		if certificate.Status == models.CertificateRevoked {
			return nil
		}

		certificate.Status = models.CertificateRevoked
		if err := s.repo.Certificate().Update(ctx, tx, certificate); err != nil {
			return fmt.Errorf("failed to revoke certificate: %w", err)
		}
		return s.audit.Record(ctx, tx, actor, AuditEvent{
			Type:         models.AuditCertificateRevoked,
			ResourceID:   certificate.ID,
			ResourceType: "certificate",
			Action:       "revoke",
			OldValue:     models.CertificateIssued,
			NewValue:     models.CertificateRevoked,
		})
	})
	op.LogResult(id, "certificate", err)
	if err != nil {
		return nil, err
	}
	return certificate, nil
}
