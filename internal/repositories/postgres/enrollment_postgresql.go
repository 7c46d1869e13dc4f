package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

type EnrollmentPostgreSQL struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{db: db}
}

func (e *EnrollmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	return getDB(ctx, e.db, tx).Omit("User", "Course").Create(enrollment).Error
}

func (e *EnrollmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := getDB(ctx, e.db, tx).First(&enrollment, id).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) GetWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := getDB(ctx, e.db, tx).Preload("User").Preload("Course").First(&enrollment, id).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := getDB(ctx, e.db, tx).Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (e *EnrollmentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	return getDB(ctx, e.db, tx).Omit("User", "Course").Save(enrollment).Error
}

func (e *EnrollmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	query := getDB(ctx, e.db, tx).Model(&models.Enrollment{})
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var enrollments []*models.Enrollment
	err := paginate(query.Preload("User").Preload("Course").Order("started_at DESC, id DESC"), filters.Pagination).
		Find(&enrollments).Error
	if err != nil {
		return nil, 0, err
	}
	return enrollments, total, nil
}

func (e *EnrollmentPostgreSQL) GetProgress(ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uint) (*models.Progress, error) {
	var progress models.Progress
	err := getDB(ctx, e.db, tx).Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lessonID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (e *EnrollmentPostgreSQL) SaveProgress(ctx context.Context, tx *gorm.DB, progress *models.Progress) error {
	return getDB(ctx, e.db, tx).Save(progress).Error
}

func (e *EnrollmentPostgreSQL) ListProgress(ctx context.Context, tx *gorm.DB, enrollmentID uint) ([]*models.Progress, error) {
	var rows []*models.Progress
	err := getDB(ctx, e.db, tx).Where("enrollment_id = ?", enrollmentID).Order("lesson_id ASC").Find(&rows).Error
	return rows, err
}

func (e *EnrollmentPostgreSQL) CountCompletedLessons(ctx context.Context, tx *gorm.DB, enrollmentID uint) (int64, error) {
	var count int64
	err := getDB(ctx, e.db, tx).Model(&models.Progress{}).
		Where("enrollment_id = ? AND completed = ?", enrollmentID, true).
		Count(&count).Error
	return count, err
}

func (e *EnrollmentPostgreSQL) CompletedLessonIDs(ctx context.Context, tx *gorm.DB, enrollmentID uint) ([]uint, error) {
	var ids []uint
	err := getDB(ctx, e.db, tx).Model(&models.Progress{}).
		Where("enrollment_id = ? AND completed = ?", enrollmentID, true).
		Pluck("lesson_id", &ids).Error
	return ids, err
}

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

func (s *SubmissionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	return getDB(ctx, s.db, tx).Omit("Quiz", "Answers").Create(submission).Error
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	var submission models.Submission
	if err := getDB(ctx, s.db, tx).First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) GetWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	var submission models.Submission
	err := getDB(ctx, s.db, tx).
		Preload("Quiz").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Answers.Question").
		First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	return getDB(ctx, s.db, tx).Omit("Quiz", "Answers").Save(submission).Error
}

func (s *SubmissionPostgreSQL) CountAttempts(ctx context.Context, tx *gorm.DB, enrollmentID, quizID uint) (int64, error) {
	var count int64
	err := getDB(ctx, s.db, tx).Model(&models.Submission{}).
		Where("enrollment_id = ? AND quiz_id = ?", enrollmentID, quizID).
		Count(&count).Error
	return count, err
}

func (s *SubmissionPostgreSQL) MaxAttemptNumber(ctx context.Context, tx *gorm.DB, enrollmentID, quizID uint) (int, error) {
	var max int64
	err := getDB(ctx, s.db, tx).Model(&models.Submission{}).
		Select("COALESCE(MAX(attempt_number), 0)").
		Where("enrollment_id = ? AND quiz_id = ?", enrollmentID, quizID).
		Scan(&max).Error
	return int(max), err
}

func (s *SubmissionPostgreSQL) HasPassed(ctx context.Context, tx *gorm.DB, enrollmentID, quizID uint) (bool, error) {
	return exists(getDB(ctx, s.db, tx).Model(&models.Submission{}).
		Where("enrollment_id = ? AND quiz_id = ? AND passed = ?", enrollmentID, quizID, true))
}

func (s *SubmissionPostgreSQL) ListForQuizzes(ctx context.Context, tx *gorm.DB, enrollmentID uint, quizIDs []uint) ([]*models.Submission, error) {
	if len(quizIDs) == 0 {
		return nil, nil
	}
	var submissions []*models.Submission
	err := getDB(ctx, s.db, tx).
		Where("enrollment_id = ? AND quiz_id IN ?", enrollmentID, quizIDs).
		Order("submitted_at ASC, id ASC").
		Find(&submissions).Error
	return submissions, err
}

func (s *SubmissionPostgreSQL) ListByEnrollment(ctx context.Context, tx *gorm.DB, enrollmentID uint) ([]*models.Submission, error) {
	var submissions []*models.Submission
	err := getDB(ctx, s.db, tx).
		Preload("Quiz").
		Where("enrollment_id = ?", enrollmentID).
		Order("submitted_at DESC, id DESC").
		Find(&submissions).Error
	return submissions, err
}

func (s *SubmissionPostgreSQL) CreateAnswers(ctx context.Context, tx *gorm.DB, answers []*models.SubmissionAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return getDB(ctx, s.db, tx).Omit("Question", "Submission").Create(&answers).Error
}

func (s *SubmissionPostgreSQL) ListAnswers(ctx context.Context, tx *gorm.DB, submissionID uint) ([]*models.SubmissionAnswer, error) {
	var answers []*models.SubmissionAnswer
	err := getDB(ctx, s.db, tx).
		Preload("Question").
		Preload("Question.Choices").
		Where("submission_id = ?", submissionID).
		Order("id ASC").
		Find(&answers).Error
	return answers, err
}

func (s *SubmissionPostgreSQL) GetAnswer(ctx context.Context, tx *gorm.DB, id uint) (*models.SubmissionAnswer, error) {
	var answer models.SubmissionAnswer
	if err := getDB(ctx, s.db, tx).Preload("Question").Preload("Submission").First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (s *SubmissionPostgreSQL) UpdateAnswer(ctx context.Context, tx *gorm.DB, answer *models.SubmissionAnswer) error {
	return getDB(ctx, s.db, tx).Omit("Question", "Submission").Save(answer).Error
}

// ListPendingManualAnswers returns manual-review answers nobody has scored yet, oldest first
func (s *SubmissionPostgreSQL) ListPendingManualAnswers(ctx context.Context, tx *gorm.DB, limit int) ([]*models.SubmissionAnswer, error) {
	if limit <= 0 {
		limit = 50
	}
	var answers []*models.SubmissionAnswer
	err := getDB(ctx, s.db, tx).
		Joins("JOIN lms_questions ON lms_questions.id = lms_submission_answers.question_id").
		Where("lms_questions.manual_review_required = ? AND lms_submission_answers.manual_scored = ?", true, false).
		Preload("Question").
		Order("lms_submission_answers.id ASC").
		Limit(limit).
		Find(&answers).Error
	return answers, err
}
