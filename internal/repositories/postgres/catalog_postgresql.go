package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

type CatalogPostgreSQL struct {
	db *gorm.DB
}

func NewCatalogPostgreSQL(db *gorm.DB) repositories.CatalogRepository {
	return &CatalogPostgreSQL{db: db}
}

func orderBySort(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, id ASC")
}

func (c *CatalogPostgreSQL) CreateCourse(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	return getDB(ctx, c.db, tx).Omit("Modules").Create(course).Error
}

func (c *CatalogPostgreSQL) GetCourse(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	var course models.Course
	if err := getDB(ctx, c.db, tx).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// GetCourseOutline loads the course with its modules, lessons, resources and quizzes in display order
func (c *CatalogPostgreSQL) GetCourseOutline(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	var course models.Course
	err := getDB(ctx, c.db, tx).
		Preload("Modules", orderBySort).
		Preload("Modules.Lessons", orderBySort).
		Preload("Modules.Lessons.Resources", orderBySort).
		Preload("Modules.Lessons.Quizzes", func(db *gorm.DB) *gorm.DB {
			return orderBySort(db.Where("is_active = ?", true))
		}).
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *CatalogPostgreSQL) UpdateCourse(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	return getDB(ctx, c.db, tx).Omit("Modules").Save(course).Error
}

func (c *CatalogPostgreSQL) ListCourses(ctx context.Context, tx *gorm.DB, activeOnly bool) ([]*models.Course, error) {
	query := getDB(ctx, c.db, tx).Order("title ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var courses []*models.Course
	return courses, query.Find(&courses).Error
}

func (c *CatalogPostgreSQL) SlugExists(ctx context.Context, tx *gorm.DB, slug string, excludeID *uint) (bool, error) {
	query := getDB(ctx, c.db, tx).Model(&models.Course{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	return exists(query)
}

func (c *CatalogPostgreSQL) CreateModule(ctx context.Context, tx *gorm.DB, module *models.Module) error {
	return getDB(ctx, c.db, tx).Omit("Course", "Lessons").Create(module).Error
}

func (c *CatalogPostgreSQL) GetModule(ctx context.Context, tx *gorm.DB, id uint) (*models.Module, error) {
	var module models.Module
	if err := getDB(ctx, c.db, tx).First(&module, id).Error; err != nil {
		return nil, err
	}
	return &module, nil
}

func (c *CatalogPostgreSQL) ListModulesByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Module, error) {
	var modules []*models.Module
	err := orderBySort(getDB(ctx, c.db, tx).Where("course_id = ?", courseID)).Find(&modules).Error
	return modules, err
}

func (c *CatalogPostgreSQL) CreateLesson(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	return getDB(ctx, c.db, tx).Omit("Module", "Resources", "Quizzes").Create(lesson).Error
}

func (c *CatalogPostgreSQL) GetLesson(ctx context.Context, tx *gorm.DB, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := getDB(ctx, c.db, tx).Preload("Module").First(&lesson, id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (c *CatalogPostgreSQL) ListLessonsByModule(ctx context.Context, tx *gorm.DB, moduleID uint) ([]*models.Lesson, error) {
	var lessons []*models.Lesson
	err := orderBySort(getDB(ctx, c.db, tx).Where("module_id = ?", moduleID)).Find(&lessons).Error
	return lessons, err
}

func (c *CatalogPostgreSQL) CountLessonsByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error) {
	var count int64
	err := getDB(ctx, c.db, tx).Model(&models.Lesson{}).
		Joins("JOIN lms_modules ON lms_modules.id = lms_lessons.module_id").
		Where("lms_modules.course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (c *CatalogPostgreSQL) CreateResource(ctx context.Context, tx *gorm.DB, resource *models.Resource) error {
	return getDB(ctx, c.db, tx).Create(resource).Error
}

func (c *CatalogPostgreSQL) CreateObjective(ctx context.Context, tx *gorm.DB, objective *models.LearningObjective) error {
	return getDB(ctx, c.db, tx).Create(objective).Error
}

// GetCompletionRuleForCourse returns nil without error when the course has no extra rule
func (c *CatalogPostgreSQL) GetCompletionRuleForCourse(ctx context.Context, tx *gorm.DB, courseID uint) (*models.CompletionRule, error) {
	return firstOrNil[models.CompletionRule](getDB(ctx, c.db, tx).Where("course_id = ?", courseID))
}

// GetCompletionRuleForModule returns nil without error when the module has no extra rule
func (c *CatalogPostgreSQL) GetCompletionRuleForModule(ctx context.Context, tx *gorm.DB, moduleID uint) (*models.CompletionRule, error) {
	return firstOrNil[models.CompletionRule](getDB(ctx, c.db, tx).Where("module_id = ?", moduleID))
}

func (c *CatalogPostgreSQL) SaveCompletionRule(ctx context.Context, tx *gorm.DB, rule *models.CompletionRule) error {
	return getDB(ctx, c.db, tx).Save(rule).Error
}

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

// Create inserts the quiz with any nested questions and choices
func (q *QuizPostgreSQL) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	return getDB(ctx, q.db, tx).Omit("Lesson").Create(quiz).Error
}

func (q *QuizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := getDB(ctx, q.db, tx).First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := getDB(ctx, q.db, tx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return orderBySort(db.Where("is_active = ?", true))
		}).
		Preload("Questions.Choices", orderBySort).
		First(&quiz, id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	return getDB(ctx, q.db, tx).Omit("Lesson", "Questions").Save(quiz).Error
}

func (q *QuizPostgreSQL) RequiredQuizIDsForLesson(ctx context.Context, tx *gorm.DB, lessonID uint) ([]uint, error) {
	var ids []uint
	err := getDB(ctx, q.db, tx).Model(&models.Quiz{}).
		Where("lesson_id = ? AND is_required_for_completion = ? AND is_active = ?", lessonID, true, true).
		Pluck("id", &ids).Error
	return ids, err
}

// QuizIDsForModule includes active quizzes scoped to the module and to its lessons
func (q *QuizPostgreSQL) QuizIDsForModule(ctx context.Context, tx *gorm.DB, moduleID uint) ([]uint, error) {
	db := getDB(ctx, q.db, tx)
	lessons := db.Session(&gorm.Session{NewDB: true}).Model(&models.Lesson{}).Select("id").Where("module_id = ?", moduleID)

	var ids []uint
	err := db.Model(&models.Quiz{}).
		Where("is_active = ?", true).
		Where("(module_id = ? OR lesson_id IN (?))", moduleID, lessons).
		Pluck("id", &ids).Error
	return ids, err
}

// QuizIDsForCourse includes active quizzes scoped to any module or lesson of the course
func (q *QuizPostgreSQL) QuizIDsForCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]uint, error) {
	db := getDB(ctx, q.db, tx)
	modules := db.Session(&gorm.Session{NewDB: true}).Model(&models.Module{}).Select("id").Where("course_id = ?", courseID)
	lessons := db.Session(&gorm.Session{NewDB: true}).Model(&models.Lesson{}).Select("id").Where("module_id IN (?)", modules)

	var ids []uint
	err := db.Model(&models.Quiz{}).
		Where("is_active = ?", true).
		Where("(module_id IN (?) OR lesson_id IN (?))", modules, lessons).
		Pluck("id", &ids).Error
	return ids, err
}

func (q *QuizPostgreSQL) CreateQuestion(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	return getDB(ctx, q.db, tx).Create(question).Error
}

func (q *QuizPostgreSQL) GetQuestion(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	if err := getDB(ctx, q.db, tx).Preload("Choices", orderBySort).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuizPostgreSQL) ListActiveQuestions(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.Question, error) {
	var questions []*models.Question
	err := orderBySort(getDB(ctx, q.db, tx).Where("quiz_id = ? AND is_active = ?", quizID, true)).
		Preload("Choices", orderBySort).
		Find(&questions).Error
	return questions, err
}

func (q *QuizPostgreSQL) GetChoice(ctx context.Context, tx *gorm.DB, id uint) (*models.Choice, error) {
	var choice models.Choice
	if err := getDB(ctx, q.db, tx).First(&choice, id).Error; err != nil {
		return nil, err
	}
	return &choice, nil
}
