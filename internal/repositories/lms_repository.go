package repositories

import (
	"context"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"gorm.io/gorm"
)

// CatalogRepository covers courses, modules, lessons and their attachments
type CatalogRepository interface {
	CreateCourse(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetCourse(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	GetCourseOutline(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	UpdateCourse(ctx context.Context, tx *gorm.DB, course *models.Course) error
	ListCourses(ctx context.Context, tx *gorm.DB, activeOnly bool) ([]*models.Course, error)
	SlugExists(ctx context.Context, tx *gorm.DB, slug string, excludeID *uint) (bool, error)

	CreateModule(ctx context.Context, tx *gorm.DB, module *models.Module) error
	GetModule(ctx context.Context, tx *gorm.DB, id uint) (*models.Module, error)
	ListModulesByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Module, error)

	CreateLesson(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error
	GetLesson(ctx context.Context, tx *gorm.DB, id uint) (*models.Lesson, error)
	ListLessonsByModule(ctx context.Context, tx *gorm.DB, moduleID uint) ([]*models.Lesson, error)
	CountLessonsByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error)

	CreateResource(ctx context.Context, tx *gorm.DB, resource *models.Resource) error
	CreateObjective(ctx context.Context, tx *gorm.DB, objective *models.LearningObjective) error

	GetCompletionRuleForCourse(ctx context.Context, tx *gorm.DB, courseID uint) (*models.CompletionRule, error)
	GetCompletionRuleForModule(ctx context.Context, tx *gorm.DB, moduleID uint) (*models.CompletionRule, error)
	SaveCompletionRule(ctx context.Context, tx *gorm.DB, rule *models.CompletionRule) error
}

// QuizRepository covers quizzes, questions and choices
type QuizRepository interface {
	Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error

	// RequiredQuizIDsForLesson lists the active quizzes that gate lesson completion.
	RequiredQuizIDsForLesson(ctx context.Context, tx *gorm.DB, lessonID uint) ([]uint, error)
	QuizIDsForModule(ctx context.Context, tx *gorm.DB, moduleID uint) ([]uint, error)
	QuizIDsForCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]uint, error)

	CreateQuestion(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetQuestion(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	ListActiveQuestions(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.Question, error)
	GetChoice(ctx context.Context, tx *gorm.DB, id uint) (*models.Choice, error)
}

// EnrollmentRepository covers enrollments and per-lesson progress
type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error)
	GetWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error)
	GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.Enrollment, error)
	Update(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	List(ctx context.Context, tx *gorm.DB, filters EnrollmentFilters) ([]*models.Enrollment, int64, error)

	GetProgress(ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uint) (*models.Progress, error)
	SaveProgress(ctx context.Context, tx *gorm.DB, progress *models.Progress) error
	ListProgress(ctx context.Context, tx *gorm.DB, enrollmentID uint) ([]*models.Progress, error)
	CountCompletedLessons(ctx context.Context, tx *gorm.DB, enrollmentID uint) (int64, error)
	CompletedLessonIDs(ctx context.Context, tx *gorm.DB, enrollmentID uint) ([]uint, error)
}

// SubmissionRepository covers quiz attempts and their answers
type SubmissionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error)
	GetWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error)
	Update(ctx context.Context, tx *gorm.DB, submission *models.Submission) error
	CountAttempts(ctx context.Context, tx *gorm.DB, enrollmentID, quizID uint) (int64, error)
	MaxAttemptNumber(ctx context.Context, tx *gorm.DB, enrollmentID, quizID uint) (int, error)
	HasPassed(ctx context.Context, tx *gorm.DB, enrollmentID, quizID uint) (bool, error)
	ListForQuizzes(ctx context.Context, tx *gorm.DB, enrollmentID uint, quizIDs []uint) ([]*models.Submission, error)
	ListByEnrollment(ctx context.Context, tx *gorm.DB, enrollmentID uint) ([]*models.Submission, error)

	CreateAnswers(ctx context.Context, tx *gorm.DB, answers []*models.SubmissionAnswer) error
	ListAnswers(ctx context.Context, tx *gorm.DB, submissionID uint) ([]*models.SubmissionAnswer, error)
	GetAnswer(ctx context.Context, tx *gorm.DB, id uint) (*models.SubmissionAnswer, error)
	UpdateAnswer(ctx context.Context, tx *gorm.DB, answer *models.SubmissionAnswer) error
	ListPendingManualAnswers(ctx context.Context, tx *gorm.DB, limit int) ([]*models.SubmissionAnswer, error)
}

// AssignmentRepository covers assignments, KPI requirements and learner submissions
type AssignmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error)
	ListRequirements(ctx context.Context, tx *gorm.DB, assignmentID uint) ([]*models.AssignmentKPIRequirement, error)

	// IDsForModule returns assignments attached to the module directly or through one of its lessons.
	IDsForModule(ctx context.Context, tx *gorm.DB, moduleID uint) ([]uint, error)
	IDsForCourse(ctx context.Context, tx *gorm.DB, courseID uint, finalOnly bool) ([]uint, error)

	GetSubmission(ctx context.Context, tx *gorm.DB, id uint) (*models.AssignmentSubmission, error)
	GetSubmissionWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.AssignmentSubmission, error)
	FindSubmission(ctx context.Context, tx *gorm.DB, enrollmentID, assignmentID uint) (*models.AssignmentSubmission, error)
	SaveSubmission(ctx context.Context, tx *gorm.DB, submission *models.AssignmentSubmission) error
	ListSubmissions(ctx context.Context, tx *gorm.DB, filters AssignmentSubmissionFilters) ([]*models.AssignmentSubmission, int64, error)
	HasApprovedSubmission(ctx context.Context, tx *gorm.DB, enrollmentID uint, assignmentIDs []uint) (bool, error)
	CountApprovedSubmissions(ctx context.Context, tx *gorm.DB, enrollmentID uint, assignmentIDs []uint) (int64, error)

	ReplaceEvidence(ctx context.Context, tx *gorm.DB, submissionID uint, evidence []models.AssignmentKPIEvidence) error
	ReplaceAttachments(ctx context.Context, tx *gorm.DB, submissionID uint, attachments []models.SubmissionAttachment) error
	ReplaceLinks(ctx context.Context, tx *gorm.DB, submissionID uint, links []models.SubmissionLink) error
	ReplaceKPIs(ctx context.Context, tx *gorm.DB, submissionID uint, kpis []models.SubmissionKPI) error
	ListEvidence(ctx context.Context, tx *gorm.DB, submissionID uint) ([]*models.AssignmentKPIEvidence, error)
	// SumEvidenceByLabel totals every evidence value of the enrollment whose
	// requirement label matches case-insensitively.
	SumEvidenceByLabel(ctx context.Context, tx *gorm.DB, enrollmentID uint, label string) (float64, error)
}

// BadgeRepository covers badge definitions and awards
type BadgeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, badge *models.Badge) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Badge, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*models.Badge, error)

	// GetOrCreateAward returns the existing award for (badge, user) or inserts award.
	GetOrCreateAward(ctx context.Context, tx *gorm.DB, award *models.BadgeAward) (*models.BadgeAward, bool, error)
	ListAwardsByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*models.BadgeAward, error)
	CountAwards(ctx context.Context, tx *gorm.DB, badgeID, userID uint) (int64, error)
}

// CertificateRepository covers issued certificates
type CertificateRepository interface {
	Create(ctx context.Context, tx *gorm.DB, certificate *models.Certificate) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Certificate, error)
	GetByEnrollment(ctx context.Context, tx *gorm.DB, enrollmentID uint) (*models.Certificate, error)
	GetByVerificationCode(ctx context.Context, tx *gorm.DB, code string) (*models.Certificate, error)
	Update(ctx context.Context, tx *gorm.DB, certificate *models.Certificate) error
}
