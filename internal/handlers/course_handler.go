package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/backoffice-service/internal/services"
	"github.com/SAP-F-2025/backoffice-service/internal/utils"
)

// CourseHandler serves the training catalog authoring endpoints
type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
	}
}

// @Summary Create course
// @Tags lms
// @Accept json
// @Produce json
// @Param request body services.CourseRequest true "Course data"
// @Success 201 {object} models.Course
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /lms/courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CourseRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating course", "title", req.Title)

	course, err := h.courseService.CreateCourse(c.Request.Context(), &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// @Summary Update course
// @Tags lms
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param request body services.CourseRequest true "Course data"
// @Success 200 {object} models.Course
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.CourseRequest
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.courseService.UpdateCourse(c.Request.Context(), id, &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// @Summary Get course
// @Tags lms
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} models.Course
// @Failure 404 {object} ErrorResponse
// @Router /lms/courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	course, err := h.courseService.GetCourse(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// GetOutline returns the course with its modules, lessons, quizzes and assignments
// @Summary Get course outline
// @Tags lms
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} models.Course
// @Failure 404 {object} ErrorResponse
// @Router /lms/courses/{id}/outline [get]
func (h *CourseHandler) GetOutline(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	course, err := h.courseService.GetOutline(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// @Summary List courses
// @Tags lms
// @Produce json
// @Param active_only query bool false "Only active courses"
// @Success 200 {array} models.Course
// @Failure 400 {object} ErrorResponse
// @Router /lms/courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.ListCourses(c.Request.Context(), parseBoolQuery(c, "active_only"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// @Summary Create module
// @Tags lms
// @Accept json
// @Produce json
// @Param request body services.ModuleRequest true "Module data"
// @Success 201 {object} models.Module
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/modules [post]
func (h *CourseHandler) CreateModule(c *gin.Context) {
	var req services.ModuleRequest
	if !bindJSON(c, &req) {
		return
	}

	module, err := h.courseService.CreateModule(c.Request.Context(), &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, module)
}

// @Summary Create lesson
// @Tags lms
// @Accept json
// @Produce json
// @Param request body services.LessonRequest true "Lesson data"
// @Success 201 {object} models.Lesson
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/lessons [post]
func (h *CourseHandler) CreateLesson(c *gin.Context) {
	var req services.LessonRequest
	if !bindJSON(c, &req) {
		return
	}

	lesson, err := h.courseService.CreateLesson(c.Request.Context(), &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lesson)
}

// @Summary Create lesson resource
// @Tags lms
// @Accept json
// @Produce json
// @Param request body services.ResourceRequest true "Resource data"
// @Success 201 {object} models.Resource
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/resources [post]
func (h *CourseHandler) CreateResource(c *gin.Context) {
	var req services.ResourceRequest
	if !bindJSON(c, &req) {
		return
	}

	resource, err := h.courseService.CreateResource(c.Request.Context(), &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resource)
}

// CreateQuiz attaches a quiz to a lesson or a module
// @Summary Create quiz
// @Description A quiz belongs to exactly one lesson or one module
// @Tags lms
// @Accept json
// @Produce json
// @Param request body services.QuizRequest true "Quiz data"
// @Success 201 {object} models.Quiz
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/quizzes [post]
func (h *CourseHandler) CreateQuiz(c *gin.Context) {
	var req services.QuizRequest
	if !bindJSON(c, &req) {
		return
	}

	quiz, err := h.courseService.CreateQuiz(c.Request.Context(), &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

// @Summary Create question
// @Tags lms
// @Accept json
// @Produce json
// @Param request body services.QuestionRequest true "Question with choices"
// @Success 201 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/questions [post]
func (h *CourseHandler) CreateQuestion(c *gin.Context) {
	var req services.QuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	question, err := h.courseService.CreateQuestion(c.Request.Context(), &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// @Summary Create assignment
// @Tags lms
// @Accept json
// @Produce json
// @Param request body services.AssignmentRequest true "Assignment data"
// @Success 201 {object} models.Assignment
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/assignments [post]
func (h *CourseHandler) CreateAssignment(c *gin.Context) {
	var req services.AssignmentRequest
	if !bindJSON(c, &req) {
		return
	}

	assignment, err := h.courseService.CreateAssignment(c.Request.Context(), &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// @Summary Create badge
// @Tags lms
// @Accept json
// @Produce json
// @Param request body services.BadgeRequest true "Badge data"
// @Success 201 {object} models.Badge
// @Failure 400 {object} ErrorResponse
// @Router /lms/badges [post]
func (h *CourseHandler) CreateBadge(c *gin.Context) {
	var req services.BadgeRequest
	if !bindJSON(c, &req) {
		return
	}

	badge, err := h.courseService.CreateBadge(c.Request.Context(), &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, badge)
}

// SaveCompletionRule creates or replaces the completion rule of a course or module
// @Summary Save completion rule
// @Tags lms
// @Accept json
// @Produce json
// @Param request body services.CompletionRuleRequest true "Rule data"
// @Success 200 {object} models.CompletionRule
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/completion-rules [post]
func (h *CourseHandler) SaveCompletionRule(c *gin.Context) {
	var req services.CompletionRuleRequest
	if !bindJSON(c, &req) {
		return
	}

	rule, err := h.courseService.SaveCompletionRule(c.Request.Context(), &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}
