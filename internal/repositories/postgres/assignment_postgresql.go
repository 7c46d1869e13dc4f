package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

type AssignmentPostgreSQL struct {
	db *gorm.DB
}

func NewAssignmentPostgreSQL(db *gorm.DB) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{db: db}
}

// Create inserts the assignment and its KPI requirements
func (a *AssignmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error {
	return getDB(ctx, a.db, tx).Create(assignment).Error
}

func (a *AssignmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error) {
	var assignment models.Assignment
	err := getDB(ctx, a.db, tx).Preload("KPIRequirements", orderBySort).First(&assignment, id).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (a *AssignmentPostgreSQL) ListRequirements(ctx context.Context, tx *gorm.DB, assignmentID uint) ([]*models.AssignmentKPIRequirement, error) {
	var requirements []*models.AssignmentKPIRequirement
	err := orderBySort(getDB(ctx, a.db, tx).Where("assignment_id = ?", assignmentID)).Find(&requirements).Error
	return requirements, err
}

func (a *AssignmentPostgreSQL) IDsForModule(ctx context.Context, tx *gorm.DB, moduleID uint) ([]uint, error) {
	db := getDB(ctx, a.db, tx)
	lessons := db.Session(&gorm.Session{NewDB: true}).Model(&models.Lesson{}).Select("id").Where("module_id = ?", moduleID)

	var ids []uint
	err := db.Model(&models.Assignment{}).
		Where("module_id = ? OR lesson_id IN (?)", moduleID, lessons).
		Pluck("id", &ids).Error
	return ids, err
}

// IDsForCourse returns assignments scoped to any module or lesson of the course,
// restricted to final assessments when finalOnly is set.
func (a *AssignmentPostgreSQL) IDsForCourse(ctx context.Context, tx *gorm.DB, courseID uint, finalOnly bool) ([]uint, error) {
	db := getDB(ctx, a.db, tx)
	modules := db.Session(&gorm.Session{NewDB: true}).Model(&models.Module{}).Select("id").Where("course_id = ?", courseID)
	lessons := db.Session(&gorm.Session{NewDB: true}).Model(&models.Lesson{}).Select("id").Where("module_id IN (?)", modules)

	query := db.Model(&models.Assignment{}).Where("(module_id IN (?) OR lesson_id IN (?))", modules, lessons)
	if finalOnly {
		query = query.Where("is_final_assessment = ?", true)
	}

	var ids []uint
	return ids, query.Pluck("id", &ids).Error
}

func (a *AssignmentPostgreSQL) GetSubmission(ctx context.Context, tx *gorm.DB, id uint) (*models.AssignmentSubmission, error) {
	var submission models.AssignmentSubmission
	if err := getDB(ctx, a.db, tx).First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (a *AssignmentPostgreSQL) GetSubmissionWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.AssignmentSubmission, error) {
	var submission models.AssignmentSubmission
	err := getDB(ctx, a.db, tx).
		Preload("Assignment").
		Preload("Enrollment").
		Preload("Evidence").
		Preload("Evidence.Requirement").
		Preload("Attachments").
		Preload("Links").
		Preload("KPIs").
		First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (a *AssignmentPostgreSQL) FindSubmission(ctx context.Context, tx *gorm.DB, enrollmentID, assignmentID uint) (*models.AssignmentSubmission, error) {
	var submission models.AssignmentSubmission
	err := getDB(ctx, a.db, tx).
		Where("enrollment_id = ? AND assignment_id = ?", enrollmentID, assignmentID).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (a *AssignmentPostgreSQL) SaveSubmission(ctx context.Context, tx *gorm.DB, submission *models.AssignmentSubmission) error {
	return getDB(ctx, a.db, tx).
		Omit("Assignment", "Enrollment", "Evidence", "Attachments", "Links", "KPIs").
		Save(submission).Error
}

func (a *AssignmentPostgreSQL) ListSubmissions(ctx context.Context, tx *gorm.DB, filters repositories.AssignmentSubmissionFilters) ([]*models.AssignmentSubmission, int64, error) {
	query := getDB(ctx, a.db, tx).Model(&models.AssignmentSubmission{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filters.AssignmentID)
	}
	if filters.EnrollmentID != nil {
		query = query.Where("enrollment_id = ?", *filters.EnrollmentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var submissions []*models.AssignmentSubmission
	err := paginate(query.Preload("Assignment").Order("submitted_at DESC, id DESC"), filters.Pagination).
		Find(&submissions).Error
	if err != nil {
		return nil, 0, err
	}
	return submissions, total, nil
}

func (a *AssignmentPostgreSQL) HasApprovedSubmission(ctx context.Context, tx *gorm.DB, enrollmentID uint, assignmentIDs []uint) (bool, error) {
	if len(assignmentIDs) == 0 {
		return false, nil
	}
	return exists(getDB(ctx, a.db, tx).Model(&models.AssignmentSubmission{}).
		Where("enrollment_id = ? AND assignment_id IN ? AND status = ?", enrollmentID, assignmentIDs, models.AssignmentApproved))
}

func (a *AssignmentPostgreSQL) CountApprovedSubmissions(ctx context.Context, tx *gorm.DB, enrollmentID uint, assignmentIDs []uint) (int64, error) {
	if len(assignmentIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := getDB(ctx, a.db, tx).Model(&models.AssignmentSubmission{}).
		Where("enrollment_id = ? AND assignment_id IN ? AND status = ?", enrollmentID, assignmentIDs, models.AssignmentApproved).
		Count(&count).Error
	return count, err
}

func (a *AssignmentPostgreSQL) ReplaceEvidence(ctx context.Context, tx *gorm.DB, submissionID uint, evidence []models.AssignmentKPIEvidence) error {
	db := getDB(ctx, a.db, tx)
	if err := db.Where("submission_id = ?", submissionID).Delete(&models.AssignmentKPIEvidence{}).Error; err != nil {
		return err
	}
	if len(evidence) == 0 {
		return nil
	}
	for idx := range evidence {
		evidence[idx].ID = 0
		evidence[idx].SubmissionID = submissionID
	}
	return db.Omit("Requirement").Create(&evidence).Error
}

func (a *AssignmentPostgreSQL) ReplaceAttachments(ctx context.Context, tx *gorm.DB, submissionID uint, attachments []models.SubmissionAttachment) error {
	db := getDB(ctx, a.db, tx)
	if err := db.Where("submission_id = ?", submissionID).Delete(&models.SubmissionAttachment{}).Error; err != nil {
		return err
	}
	if len(attachments) == 0 {
		return nil
	}
	for idx := range attachments {
		attachments[idx].ID = 0
		attachments[idx].SubmissionID = submissionID
	}
	return db.Create(&attachments).Error
}

func (a *AssignmentPostgreSQL) ReplaceLinks(ctx context.Context, tx *gorm.DB, submissionID uint, links []models.SubmissionLink) error {
	db := getDB(ctx, a.db, tx)
	if err := db.Where("submission_id = ?", submissionID).Delete(&models.SubmissionLink{}).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	for idx := range links {
		links[idx].ID = 0
		links[idx].SubmissionID = submissionID
	}
	return db.Create(&links).Error
}

func (a *AssignmentPostgreSQL) ReplaceKPIs(ctx context.Context, tx *gorm.DB, submissionID uint, kpis []models.SubmissionKPI) error {
	db := getDB(ctx, a.db, tx)
	if err := db.Where("submission_id = ?", submissionID).Delete(&models.SubmissionKPI{}).Error; err != nil {
		return err
	}
	if len(kpis) == 0 {
		return nil
	}
	for idx := range kpis {
		kpis[idx].ID = 0
		kpis[idx].SubmissionID = submissionID
	}
	return db.Create(&kpis).Error
}

func (a *AssignmentPostgreSQL) ListEvidence(ctx context.Context, tx *gorm.DB, submissionID uint) ([]*models.AssignmentKPIEvidence, error) {
	var evidence []*models.AssignmentKPIEvidence
	err := getDB(ctx, a.db, tx).
		Preload("Requirement").
		Where("submission_id = ?", submissionID).
		Order("id ASC").
		Find(&evidence).Error
	return evidence, err
}

func (a *AssignmentPostgreSQL) SumEvidenceByLabel(ctx context.Context, tx *gorm.DB, enrollmentID uint, label string) (float64, error) {
	var total float64
	err := getDB(ctx, a.db, tx).Model(&models.AssignmentKPIEvidence{}).
		Select("COALESCE(SUM(lms_assignment_kpi_evidence.value), 0)").
		Joins("JOIN lms_assignment_kpi_requirements ON lms_assignment_kpi_requirements.id = lms_assignment_kpi_evidence.requirement_id").
		Joins("JOIN lms_assignment_submissions ON lms_assignment_submissions.id = lms_assignment_kpi_evidence.submission_id").
		Where("lms_assignment_submissions.enrollment_id = ?", enrollmentID).
		Where("LOWER(lms_assignment_kpi_requirements.label) = LOWER(?)", label).
		Scan(&total).Error
	return total, err
}

type BadgePostgreSQL struct {
	db *gorm.DB
}

func NewBadgePostgreSQL(db *gorm.DB) repositories.BadgeRepository {
	return &BadgePostgreSQL{db: db}
}

func (b *BadgePostgreSQL) Create(ctx context.Context, tx *gorm.DB, badge *models.Badge) error {
	return getDB(ctx, b.db, tx).Create(badge).Error
}

func (b *BadgePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Badge, error) {
	var badge models.Badge
	if err := getDB(ctx, b.db, tx).First(&badge, id).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

func (b *BadgePostgreSQL) ListActive(ctx context.Context, tx *gorm.DB) ([]*models.Badge, error) {
	var badges []*models.Badge
	return badges, getDB(ctx, b.db, tx).Where("is_active = ?", true).Order("id ASC").Find(&badges).Error
}

// GetOrCreateAward inserts award unless (badge, user) already holds one and
// returns the stored row. The insert skips conflicts instead of failing, so
// the surrounding transaction stays usable on Postgres.
func (b *BadgePostgreSQL) GetOrCreateAward(ctx context.Context, tx *gorm.DB, award *models.BadgeAward) (*models.BadgeAward, bool, error) {
	db := getDB(ctx, b.db, tx)

	if award.AwardedAt.IsZero() {
		award.AwardedAt = time.Now()
	}
	result := db.Omit("Badge").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "badge_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(award)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected > 0 {
		return award, true, nil
	}

	var existing models.BadgeAward
	if err := db.Where("badge_id = ? AND user_id = ?", award.BadgeID, award.UserID).First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

func (b *BadgePostgreSQL) ListAwardsByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.BadgeAward, error) {
	var awards []*models.BadgeAward
	err := getDB(ctx, b.db, tx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("awarded_at DESC").
		Find(&awards).Error
	return awards, err
}

func (b *BadgePostgreSQL) CountAwards(ctx context.Context, tx *gorm.DB, badgeID, userID uint) (int64, error) {
	var count int64
	err := getDB(ctx, b.db, tx).Model(&models.BadgeAward{}).
		Where("badge_id = ? AND user_id = ?", badgeID, userID).
		Count(&count).Error
	return count, err
}

type CertificatePostgreSQL struct {
	db *gorm.DB
}

func NewCertificatePostgreSQL(db *gorm.DB) repositories.CertificateRepository {
	return &CertificatePostgreSQL{db: db}
}

func (c *CertificatePostgreSQL) Create(ctx context.Context, tx *gorm.DB, certificate *models.Certificate) error {
	return getDB(ctx, c.db, tx).Omit("Enrollment").Create(certificate).Error
}

func (c *CertificatePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Certificate, error) {
	var certificate models.Certificate
	if err := getDB(ctx, c.db, tx).First(&certificate, id).Error; err != nil {
		return nil, err
	}
	return &certificate, nil
}

func (c *CertificatePostgreSQL) GetByEnrollment(ctx context.Context, tx *gorm.DB, enrollmentID uint) (*models.Certificate, error) {
	var certificate models.Certificate
	if err := getDB(ctx, c.db, tx).Where("enrollment_id = ?", enrollmentID).First(&certificate).Error; err != nil {
		return nil, err
	}
	return &certificate, nil
}

// GetByVerificationCode loads the certificate with its enrollment, course and holder
func (c *CertificatePostgreSQL) GetByVerificationCode(ctx context.Context, tx *gorm.DB, code string) (*models.Certificate, error) {
	var certificate models.Certificate
	err := getDB(ctx, c.db, tx).
		Preload("Enrollment").
		Preload("Enrollment.Course").
		Preload("Enrollment.User").
		Where("verification_code = ?", code).
		First(&certificate).Error
	if err != nil {
		return nil, err
	}
	return &certificate, nil
}

func (c *CertificatePostgreSQL) Update(ctx context.Context, tx *gorm.DB, certificate *models.Certificate) error {
	return getDB(ctx, c.db, tx).Omit("Enrollment").Save(certificate).Error
}
