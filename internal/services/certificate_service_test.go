package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/backoffice-service/internal/events"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
)

func TestCertificateLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	svc := env.services.Certificate()

	fixture := env.buildCourse(t, "Coloration avancée", 1)
	enrollment, learner := env.enroll(t, "lea", fixture.course)

	_, err := svc.IssueCertificate(ctx, enrollment.ID, learner)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEnrollmentNotCompleted))
	assert.True(t, IsValidation(err))

	require.NoError(t, env.db.Model(&models.Enrollment{}).
		Where("id = ?", enrollment.ID).
		Update("status", models.EnrollmentCompleted).Error)

	cert, err := svc.IssueCertificate(ctx, enrollment.ID, learner)
	require.NoError(t, err)
	assert.Equal(t, models.CertificateIssued, cert.Status)
	assert.Equal(t, CertificateNumber("CERT", fixture.course.ID, enrollment.ID, cert.IssuedAt), cert.CertificateNumber)
	assert.True(t, strings.HasPrefix(cert.CertificateNumber, "CERT-"))
	assert.NotEmpty(t, cert.VerificationCode)

	again, err := svc.IssueCertificate(ctx, enrollment.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, cert.ID, again.ID)
	assert.Len(t, env.publisher.EventsOfType(events.EventCertificateIssued), 1)

	verification, err := svc.VerifyCertificate(ctx, cert.VerificationCode)
	require.NoError(t, err)
	assert.True(t, verification.Valid)
	assert.Equal(t, "Coloration avancée", verification.CourseTitle)
	assert.Equal(t, "lea", verification.HolderName)

	_, err = svc.RevokeCertificate(ctx, cert.ID, learner)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	revoked, err := svc.RevokeCertificate(ctx, cert.ID, manager)
	require.NoError(t, err)
	assert.Equal(t, models.CertificateRevoked, revoked.Status)

	// revoking twice is a no-op
	_, err = svc.RevokeCertificate(ctx, cert.ID, owner)
	require.NoError(t, err)

	verification, err = svc.VerifyCertificate(ctx, cert.VerificationCode)
	require.NoError(t, err)
	assert.False(t, verification.Valid)
	assert.Equal(t, models.CertificateRevoked, verification.Status)
}

func TestIssueCertificate_OtherLearnerForbidden(t *testing.T) {
	env := newTestEnv(t, nil)
	fixture := env.buildCourse(t, "Barbier", 1)
	enrollment, _ := env.enroll(t, "lea", fixture.course)
	_, other := env.enroll(t, "tom", fixture.course)

	_, err := env.services.Certificate().IssueCertificate(context.Background(), enrollment.ID, other)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}

func TestVerifyCertificate_UnknownCode(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.services.Certificate().VerifyCertificate(context.Background(), "does-not-exist")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCertificateNotFound))
	assert.True(t, IsNotFound(err))
}
