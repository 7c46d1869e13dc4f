package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/cache"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/validator"
)

const (
	defaultPassingScore = 70
	defaultMaxAttempts  = 3
	outlineCacheTTL     = 10 * time.Minute
)

type courseService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	logger    *slog.Logger
	validator *validator.Validator
}

// NewCourseService builds the catalog service. cache may be nil, in which
// case outlines are always read from the database.
func NewCourseService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, validator *validator.Validator) CourseService {
	return &courseService{
		repo:      repo,
		cache:     cacheService,
		logger:    logger,
		validator: validator,
	}
}

func outlineKey(courseID uint) string {
	return fmt.Sprintf("lms:outline:%d", courseID)
}

// ===== COURSES =====

func (s *courseService) CreateCourse(ctx context.Context, req *CourseRequest, actor Actor) (*models.Course, error) {
	s.logger.Info("Creating course", "title", req.Title, "user_id", actor.UserID)

	if err := requireSupervisor(actor, 0, "course", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Title)
	}
	taken, err := s.repo.Catalog().SlugExists(ctx, nil, slug, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if taken {
		return nil, ErrCourseSlugTaken
	}

	course := &models.Course{
		Title:         req.Title,
		Slug:          slug,
		Description:   req.Description,
		Objectives:    req.Objectives,
		DurationWeeks: req.DurationWeeks,
		IsActive:      boolOr(req.IsActive, true),
	}
	if err := s.repo.Catalog().CreateCourse(ctx, nil, course); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCourseSlugTaken
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("Course created", "course_id", course.ID, "slug", course.Slug)
	return course, nil
}

func (s *courseService) UpdateCourse(ctx context.Context, id uint, req *CourseRequest, actor Actor) (*models.Course, error) {
	if err := requireSupervisor(actor, id, "course", "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	slug := req.Slug
	if slug == "" {
		slug = course.Slug
	}
	if slug != course.Slug {
		taken, err := s.repo.Catalog().SlugExists(ctx, nil, slug, &course.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check slug: %w", err)
		}
		if taken {
			return nil, ErrCourseSlugTaken
		}
	}

	course.Title = req.Title
	course.Slug = slug
	course.Description = req.Description
	course.Objectives = req.Objectives
	course.DurationWeeks = req.DurationWeeks
	course.IsActive = boolOr(req.IsActive, course.IsActive)
	if err := s.repo.Catalog().UpdateCourse(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.invalidateOutline(ctx, course.ID)
	return course, nil
}

func (s *courseService) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Catalog().GetCourse(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

// GetOutline returns the course tree, served from cache when available
func (s *courseService) GetOutline(ctx context.Context, id uint) (*models.Course, error) {
	if s.cache != nil {
		var cached models.Course
		err := s.cache.Get(ctx, outlineKey(id), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Outline cache read failed", "course_id", id, "error", err)
		}
	}

	course, err := s.repo.Catalog().GetCourseOutline(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course outline: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, outlineKey(id), course, outlineCacheTTL); err != nil {
			s.logger.Warn("Outline cache write failed", "course_id", id, "error", err)
		}
	}
	return course, nil
}

func (s *courseService) ListCourses(ctx context.Context, activeOnly bool) ([]*models.Course, error) {
	courses, err := s.repo.Catalog().ListCourses(ctx, nil, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// ===== STRUCTURE =====

func (s *courseService) CreateModule(ctx context.Context, req *ModuleRequest, actor Actor) (*models.Module, error) {
	if err := requireSupervisor(actor, req.CourseID, "course", "add_module"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.GetCourse(ctx, req.CourseID); err != nil {
		return nil, err
	}

	module := &models.Module{
		CourseID:   req.CourseID,
		WeekNumber: req.WeekNumber,
		Title:      req.Title,
		Objective:  req.Objective,
		Overview:   req.Overview,
		Order:      req.Order,
	}
	if err := s.repo.Catalog().CreateModule(ctx, nil, module); err != nil {
		return nil, fmt.Errorf("failed to create module: %w", err)
	}

	s.invalidateOutline(ctx, module.CourseID)
	return module, nil
}

func (s *courseService) CreateLesson(ctx context.Context, req *LessonRequest, actor Actor) (*models.Lesson, error) {
	if err := requireSupervisor(actor, req.ModuleID, "module", "add_lesson"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	module, err := s.getModule(ctx, req.ModuleID)
	if err != nil {
		return nil, err
	}

	lessonType := req.LessonType
	if lessonType == "" {
		lessonType = models.LessonTypeCourse
	}
	lesson := &models.Lesson{
		ModuleID:        module.ID,
		Title:           req.Title,
		Description:     req.Description,
		Content:         req.Content,
		LessonType:      lessonType,
		DurationMinutes: req.DurationMinutes,
		Order:           req.Order,
		IsRequired:      boolOr(req.IsRequired, true),
	}
	if err := s.repo.Catalog().CreateLesson(ctx, nil, lesson); err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	s.invalidateOutline(ctx, module.CourseID)
	return lesson, nil
}

func (s *courseService) CreateResource(ctx context.Context, req *ResourceRequest, actor Actor) (*models.Resource, error) {
	if err := requireSupervisor(actor, req.LessonID, "lesson", "add_resource"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	lesson, err := s.getLesson(ctx, req.LessonID)
	if err != nil {
		return nil, err
	}

	resource := &models.Resource{
		LessonID:     lesson.ID,
		Title:        req.Title,
		ResourceType: req.ResourceType,
		URL:          req.URL,
		Order:        req.Order,
	}
	if err := s.repo.Catalog().CreateResource(ctx, nil, resource); err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if lesson.Module != nil {
		s.invalidateOutline(ctx, lesson.Module.CourseID)
	}
	return resource, nil
}

// ===== ASSESSMENT =====

func (s *courseService) CreateQuiz(ctx context.Context, req *QuizRequest, actor Actor) (*models.Quiz, error) {
	if err := requireSupervisor(actor, 0, "quiz", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	courseID, err := s.resolveScope(ctx, req.LessonID, req.ModuleID)
	if err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		LessonID:                req.LessonID,
		ModuleID:                req.ModuleID,
		Title:                   req.Title,
		PassingScore:            defaultPassingScore,
		MaxAttempts:             defaultMaxAttempts,
		Order:                   req.Order,
		IsActive:                boolOr(req.IsActive, true),
		IsRequiredForCompletion: boolOr(req.IsRequiredForCompletion, true),
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.MaxAttempts != nil {
		quiz.MaxAttempts = *req.MaxAttempts
	}
	if err := s.repo.Quiz().Create(ctx, nil, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.invalidateOutline(ctx, courseID)
	s.logger.Info("Quiz created", "quiz_id", quiz.ID, "course_id", courseID)
	return quiz, nil
}

func (s *courseService) CreateQuestion(ctx context.Context, req *QuestionRequest, actor Actor) (*models.Question, error) {
	if err := requireSupervisor(actor, req.QuizID, "quiz", "add_question"); err != nil {
		return nil, err
	}
	if req.Points == 0 {
		req.Points = 1
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	choices := make([]validator.ChoiceInput, 0, len(req.Choices))
	for _, c := range req.Choices {
		choices = append(choices, validator.ChoiceInput{Text: c.Text, IsCorrect: c.IsCorrect})
	}
	if errs := s.validator.Question().ValidateQuestion(req.Type, req.Points, req.CorrectText, req.ManualReviewRequired, choices); len(errs) > 0 {
		return nil, errs
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, req.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	question := &models.Question{
		QuizID:               quiz.ID,
		Type:                 req.Type,
		Prompt:               req.Prompt,
		Points:               req.Points,
		Order:                req.Order,
		CorrectText:          req.CorrectText,
		CaseSensitive:        req.CaseSensitive,
		ManualReviewRequired: req.ManualReviewRequired,
		IsActive:             true,
	}
	for i, c := range req.Choices {
		order := c.Order
		if order == 0 {
			order = i + 1
		}
		question.Choices = append(question.Choices, models.Choice{Text: c.Text, IsCorrect: c.IsCorrect, Order: order})
	}
	if err := s.repo.Quiz().CreateQuestion(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	if courseID, err := scopeCourseID(ctx, s.repo, nil, quiz.LessonID, quiz.ModuleID); err == nil {
		s.invalidateOutline(ctx, courseID)
	}
	return question, nil
}

func (s *courseService) CreateAssignment(ctx context.Context, req *AssignmentRequest, actor Actor) (*models.Assignment, error) {
	if err := requireSupervisor(actor, 0, "assignment", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.resolveScope(ctx, req.LessonID, req.ModuleID); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		LessonID:            req.LessonID,
		ModuleID:            req.ModuleID,
		Title:               req.Title,
		Description:         req.Description,
		Instructions:        req.Instructions,
		DueDate:             req.DueDate,
		RequiresKPIEvidence: req.RequiresKPIEvidence,
		MaxScore:            req.MaxScore,
		RequiresReview:      boolOr(req.RequiresReview, true),
		IsFinalAssessment:   req.IsFinalAssessment,
	}
	for i, r := range req.KPIRequirements {
		order := r.Order
		if order == 0 {
			order = i + 1
		}
		assignment.KPIRequirements = append(assignment.KPIRequirements, models.AssignmentKPIRequirement{
			Label:      r.Label,
			Unit:       r.Unit,
			MinValue:   r.MinValue,
			MaxValue:   r.MaxValue,
			IsRequired: r.IsRequired,
			Order:      order,
		})
	}
	if err := s.repo.Assignment().Create(ctx, nil, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	s.logger.Info("Assignment created", "assignment_id", assignment.ID, "requirements", len(assignment.KPIRequirements))
	return assignment, nil
}

func (s *courseService) CreateBadge(ctx context.Context, req *BadgeRequest, actor Actor) (*models.Badge, error) {
	if err := requireSupervisor(actor, 0, "badge", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	badge := &models.Badge{
		Name:         req.Name,
		Description:  req.Description,
		Icon:         req.Icon,
		RuleType:     req.RuleType,
		CourseID:     req.CourseID,
		ModuleID:     req.ModuleID,
		AssignmentID: req.AssignmentID,
		MinScore:     req.MinScore,
		KPILabel:     req.KPILabel,
		KPIMinValue:  req.KPIMinValue,
		IsActive:     boolOr(req.IsActive, true),
	}
	if err := s.repo.Badge().Create(ctx, nil, badge); err != nil {
		return nil, fmt.Errorf("failed to create badge: %w", err)
	}
	return badge, nil
}

// SaveCompletionRule creates or replaces the rule of a course or module
func (s *courseService) SaveCompletionRule(ctx context.Context, req *CompletionRuleRequest, actor Actor) (*models.CompletionRule, error) {
	if err := requireSupervisor(actor, 0, "completion_rule", "save"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		existing *models.CompletionRule
		err      error
	)
	if req.CourseID != nil {
		if _, err := s.GetCourse(ctx, *req.CourseID); err != nil {
			return nil, err
		}
		existing, err = s.repo.Catalog().GetCompletionRuleForCourse(ctx, nil, *req.CourseID)
	} else {
		if _, err := s.getModule(ctx, *req.ModuleID); err != nil {
			return nil, err
		}
		existing, err = s.repo.Catalog().GetCompletionRuleForModule(ctx, nil, *req.ModuleID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get completion rule: %w", err)
	}

	rule := &models.CompletionRule{}
	if existing != nil {
		rule = existing
	}
	rule.CourseID = req.CourseID
	rule.ModuleID = req.ModuleID
	rule.RequireAllLessons = req.RequireAllLessons
	rule.MinLessonsCompleted = req.MinLessonsCompleted
	rule.MinQuizScore = req.MinQuizScore
	rule.MinProgressPercent = req.MinProgressPercent
	rule.RequireAssignmentsApproved = req.RequireAssignmentsApproved
	if err := s.repo.Catalog().SaveCompletionRule(ctx, nil, rule); err != nil {
		return nil, fmt.Errorf("failed to save completion rule: %w", err)
	}
	return rule, nil
}

// ===== HELPERS =====

func (s *courseService) getModule(ctx context.Context, id uint) (*models.Module, error) {
	module, err := s.repo.Catalog().GetModule(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	return module, nil
}

func (s *courseService) getLesson(ctx context.Context, id uint) (*models.Lesson, error) {
	lesson, err := s.repo.Catalog().GetLesson(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return lesson, nil
}

// resolveScope checks a lesson/module reference and returns its course.
// When both are set the lesson must belong to the module.
func (s *courseService) resolveScope(ctx context.Context, lessonID, moduleID *uint) (uint, error) {
	if lessonID != nil && moduleID != nil {
		lesson, err := s.getLesson(ctx, *lessonID)
		if err != nil {
			return 0, err
		}
		if lesson.ModuleID != *moduleID {
			return 0, validationFailure("lesson_id", "lesson does not belong to the module", *lessonID)
		}
	}
	return scopeCourseID(ctx, s.repo, nil, lessonID, moduleID)
}

func (s *courseService) invalidateOutline(ctx context.Context, courseID uint) {
	if s.cache == nil || courseID == 0 {
		return
	}
	if err := s.cache.Delete(ctx, outlineKey(courseID)); err != nil {
		s.logger.Warn("Outline cache invalidation failed", "course_id", courseID, "error", err)
	}
}

func requireSupervisor(actor Actor, resourceID uint, resource, action string) error {
	if actor.IsSupervisor() {
		return nil
	}
	return NewPermissionError(actor.UserID, resourceID, resource, action, "supervisor role required")
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

// Slugify lowercases the title, drops accents and joins words with dashes
func Slugify(title string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
