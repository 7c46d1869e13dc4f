package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/services"
	"github.com/SAP-F-2025/backoffice-service/internal/utils"
)

type EnrollRequest struct {
	CourseID uint  `json:"course_id" binding:"required"`
	UserID   *uint `json:"user_id"`
}

type SubmissionDecisionRequest struct {
	Feedback string `json:"feedback"`
	Score    *int   `json:"score"`
}

type CompletionResponse struct {
	EnrollmentID uint  `json:"enrollment_id"`
	ModuleID     *uint `json:"module_id,omitempty"`
	Completed    bool  `json:"completed"`
}

// LearningHandler serves the learner side of the LMS: enrollments, quiz
// attempts, assignment submissions, reviews, badges and certificates.
type LearningHandler struct {
	BaseHandler
	progressService    services.ProgressService
	completionService  services.CompletionService
	quizService        services.QuizService
	assignmentService  services.AssignmentService
	badgeService       services.BadgeService
	certificateService services.CertificateService
}

func NewLearningHandler(sm services.ServiceManager, logger utils.Logger) *LearningHandler {
	return &LearningHandler{
		BaseHandler:        NewBaseHandler(logger),
		progressService:    sm.Progress(),
		completionService:  sm.Completion(),
		quizService:        sm.Quiz(),
		assignmentService:  sm.Assignment(),
		badgeService:       sm.Badge(),
		certificateService: sm.Certificate(),
	}
}

// ===== ENROLLMENTS =====

// Enroll registers the caller in a course. Supervisors may enroll someone else.
// @Summary Enroll in course
// @Tags lms
// @Accept json
// @Produce json
// @Param request body EnrollRequest true "Enrollment data"
// @Success 201 {object} models.Enrollment
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /lms/enrollments [post]
func (h *LearningHandler) Enroll(c *gin.Context) {
	var req EnrollRequest
	if !bindJSON(c, &req) {
		return
	}

	actor := currentActor(c)
	userID := actor.UserID
	if req.UserID != nil && *req.UserID != actor.UserID {
		if !actor.IsSupervisor() {
			h.RespondWithError(c, http.StatusForbidden, "Only supervisors can enroll other users", nil)
			return
		}
		userID = *req.UserID
	}

	h.LogRequest(c, "Enrolling user", "course_id", req.CourseID, "learner_id", userID)

	enrollment, err := h.progressService.Enroll(c.Request.Context(), userID, req.CourseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// @Summary List enrollments
// @Tags lms
// @Produce json
// @Param user_id query uint false "Learner filter (supervisors only)"
// @Param course_id query uint false "Course filter"
// @Param status query string false "Status filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.EnrollmentListResponse
// @Failure 400 {object} ErrorResponse
// @Router /lms/enrollments [get]
func (h *LearningHandler) ListEnrollments(c *gin.Context) {
	actor := currentActor(c)
	filters := repositories.EnrollmentFilters{
		UserID:     parseUintQuery(c, "user_id"),
		CourseID:   parseUintQuery(c, "course_id"),
		Pagination: parsePagination(c),
	}
	if !actor.IsSupervisor() {
		filters.UserID = &actor.UserID
	}
	if status := c.Query("status"); status != "" {
		s := models.EnrollmentStatus(status)
		filters.Status = &s
	}

	enrollments, err := h.progressService.ListEnrollments(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollments)
}

// @Summary Get enrollment
// @Tags lms
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Success 200 {object} models.Enrollment
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/enrollments/{id} [get]
func (h *LearningHandler) GetEnrollment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	enrollment, err := h.progressService.GetEnrollment(c.Request.Context(), id, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// authorizeEnrollment loads the enrollment to check the caller may act on it
func (h *LearningHandler) authorizeEnrollment(c *gin.Context) (uint, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return 0, false
	}
	if _, err := h.progressService.GetEnrollment(c.Request.Context(), id, currentActor(c)); err != nil {
		h.handleServiceError(c, err)
		return 0, false
	}
	return id, true
}

// MarkLessonViewed records that the learner opened a lesson
// @Summary Mark lesson viewed
// @Tags lms
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Param lesson_id path uint true "Lesson ID"
// @Success 200 {object} models.Progress
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/enrollments/{id}/lessons/{lesson_id}/viewed [post]
func (h *LearningHandler) MarkLessonViewed(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "lesson_id")
	if !ok {
		return
	}

	progress, err := h.progressService.MarkLessonViewed(c.Request.Context(), id, lessonID, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// RefreshProgress recomputes the progress percent and completion of an enrollment
// @Summary Refresh enrollment progress
// @Tags lms
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Success 200 {object} models.Enrollment
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/enrollments/{id}/refresh [post]
func (h *LearningHandler) RefreshProgress(c *gin.Context) {
	id, ok := h.authorizeEnrollment(c)
	if !ok {
		return
	}

	enrollment, err := h.progressService.RefreshEnrollmentProgress(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// @Summary Course completion
// @Tags lms
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Success 200 {object} CompletionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/enrollments/{id}/completion [get]
func (h *LearningHandler) CourseCompletion(c *gin.Context) {
	id, ok := h.authorizeEnrollment(c)
	if !ok {
		return
	}

	completed, err := h.completionService.IsCourseCompleted(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, CompletionResponse{EnrollmentID: id, Completed: completed})
}

// @Summary Module completion
// @Tags lms
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Param module_id path uint true "Module ID"
// @Success 200 {object} CompletionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/enrollments/{id}/modules/{module_id}/completion [get]
func (h *LearningHandler) ModuleCompletion(c *gin.Context) {
	id, ok := h.authorizeEnrollment(c)
	if !ok {
		return
	}
	moduleID, ok := parseIDParam(c, "module_id")
	if !ok {
		return
	}

	completed, err := h.completionService.IsModuleCompleted(c.Request.Context(), id, moduleID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, CompletionResponse{EnrollmentID: id, ModuleID: &moduleID, Completed: completed})
}

// ===== QUIZZES =====

// SubmitQuiz grades a quiz attempt for the enrollment
// @Summary Submit quiz attempt
// @Tags lms
// @Accept json
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Param quiz_id path uint true "Quiz ID"
// @Param attempt body services.QuizAttemptRequest true "Answers"
// @Success 201 {object} models.Submission
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /lms/enrollments/{id}/quizzes/{quiz_id}/attempts [post]
func (h *LearningHandler) SubmitQuiz(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "quiz_id")
	if !ok {
		return
	}
	var req services.QuizAttemptRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting quiz attempt", "enrollment_id", id, "quiz_id", quizID, "answers", len(req.Answers))

	submission, err := h.quizService.ScoreQuizAttempt(c.Request.Context(), id, quizID, &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// @Summary Get quiz submission
// @Tags lms
// @Produce json
// @Param id path uint true "Quiz submission ID"
// @Success 200 {object} models.Submission
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/quiz-submissions/{id} [get]
func (h *LearningHandler) GetQuizSubmission(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	submission, err := h.quizService.GetSubmission(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if _, err := h.progressService.GetEnrollment(c.Request.Context(), submission.EnrollmentID, currentActor(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// ListPendingReviews returns the answers waiting for a manual score
// @Summary List pending reviews
// @Tags lms
// @Produce json
// @Param limit query int false "Maximum number of answers"
// @Success 200 {array} models.SubmissionAnswer
// @Failure 403 {object} ErrorResponse
// @Router /lms/reviews/pending [get]
func (h *LearningHandler) ListPendingReviews(c *gin.Context) {
	answers, err := h.quizService.ListPendingReviews(c.Request.Context(), parseIntQuery(c, "limit", 50))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answers)
}

// @Summary Review answer
// @Tags lms
// @Accept json
// @Produce json
// @Param id path uint true "Answer ID"
// @Param request body services.ReviewAnswerRequest true "Manual score"
// @Success 200 {object} models.Submission
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/answers/{id}/review [post]
func (h *LearningHandler) ReviewAnswer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ReviewAnswerRequest
	if !bindJSON(c, &req) {
		return
	}

	submission, err := h.quizService.ReviewQuizAnswer(c.Request.Context(), id, &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// ===== ASSIGNMENTS =====

// @Summary Submit assignment
// @Tags lms
// @Accept json
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Param assignment_id path uint true "Assignment ID"
// @Param request body services.SubmitAssignmentRequest true "Submission with KPI evidence"
// @Success 201 {object} models.AssignmentSubmission
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/enrollments/{id}/assignments/{assignment_id}/submissions [post]
func (h *LearningHandler) SubmitAssignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(c, "assignment_id")
	if !ok {
		return
	}
	var req services.SubmitAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting assignment", "enrollment_id", id, "assignment_id", assignmentID)

	submission, err := h.assignmentService.SubmitAssignment(c.Request.Context(), id, assignmentID, &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// @Summary List assignment submissions
// @Tags lms
// @Produce json
// @Param assignment_id query uint false "Assignment filter"
// @Param enrollment_id query uint false "Enrollment filter"
// @Param status query string false "Status filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.AssignmentSubmissionListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /lms/assignment-submissions [get]
func (h *LearningHandler) ListAssignmentSubmissions(c *gin.Context) {
	filters := repositories.AssignmentSubmissionFilters{
		AssignmentID: parseUintQuery(c, "assignment_id"),
		EnrollmentID: parseUintQuery(c, "enrollment_id"),
		Pagination:   parsePagination(c),
	}
	if status := c.Query("status"); status != "" {
		s := models.AssignmentSubmissionStatus(status)
		filters.Status = &s
	}

	submissions, err := h.assignmentService.ListSubmissions(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// @Summary Get assignment submission
// @Tags lms
// @Produce json
// @Param id path uint true "Assignment submission ID"
// @Success 200 {object} models.AssignmentSubmission
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/assignment-submissions/{id} [get]
func (h *LearningHandler) GetAssignmentSubmission(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	submission, err := h.assignmentService.GetSubmission(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// ApproveSubmission approves an assignment submission
// @Summary Approve submission
// @Description Approval re-evaluates completion and badges
// @Tags lms
// @Accept json
// @Produce json
// @Param id path uint true "Assignment submission ID"
// @Param request body SubmissionDecisionRequest false "Feedback and score"
// @Success 200 {object} models.AssignmentSubmission
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/assignment-submissions/{id}/approve [post]
func (h *LearningHandler) ApproveSubmission(c *gin.Context) {
	h.reviewSubmission(c, models.AssignmentApproved)
}

// RejectSubmission sends an assignment submission back to the learner
// @Summary Reject submission
// @Tags lms
// @Accept json
// @Produce json
// @Param id path uint true "Assignment submission ID"
// @Param request body SubmissionDecisionRequest false "Feedback"
// @Success 200 {object} models.AssignmentSubmission
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/assignment-submissions/{id}/reject [post]
func (h *LearningHandler) RejectSubmission(c *gin.Context) {
	h.reviewSubmission(c, models.AssignmentRejected)
}

func (h *LearningHandler) reviewSubmission(c *gin.Context, status models.AssignmentSubmissionStatus) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SubmissionDecisionRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Reviewing assignment submission", "submission_id", id, "status", status)

	submission, err := h.assignmentService.ReviewSubmission(c.Request.Context(), id, &services.ReviewSubmissionRequest{
		Status:   status,
		Feedback: req.Feedback,
		Score:    req.Score,
	}, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// ===== BADGES & CERTIFICATES =====

// @Summary Award badges
// @Tags lms
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Success 200 {array} models.BadgeAward
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/enrollments/{id}/award-badges [post]
func (h *LearningHandler) AwardBadges(c *gin.Context) {
	id, ok := h.authorizeEnrollment(c)
	if !ok {
		return
	}

	awards, err := h.badgeService.AwardBadgesForEnrollment(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, awards)
}

// ListAwards returns the caller's badges, or those of ?user_id= for supervisors
// @Summary List badge awards
// @Tags lms
// @Produce json
// @Param user_id query uint false "Learner (supervisors only)"
// @Success 200 {array} models.BadgeAward
// @Failure 403 {object} ErrorResponse
// @Router /lms/badges/awards [get]
func (h *LearningHandler) ListAwards(c *gin.Context) {
	actor := currentActor(c)
	userID := actor.UserID
	if requested := parseUintQuery(c, "user_id"); requested != nil && actor.IsSupervisor() {
		userID = *requested
	}

	awards, err := h.badgeService.ListAwards(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, awards)
}

// @Summary Issue certificate
// @Tags lms
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Success 201 {object} models.Certificate
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/enrollments/{id}/issue-certificate [post]
func (h *LearningHandler) IssueCertificate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Issuing certificate", "enrollment_id", id)

	certificate, err := h.certificateService.IssueCertificate(c.Request.Context(), id, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, certificate)
}

// @Summary Revoke certificate
// @Tags lms
// @Produce json
// @Param id path uint true "Certificate ID"
// @Success 200 {object} models.Certificate
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lms/certificates/{id}/revoke [post]
func (h *LearningHandler) RevokeCertificate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	certificate, err := h.certificateService.RevokeCertificate(c.Request.Context(), id, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, certificate)
}

// VerifyCertificate is public: anyone holding the QR code can check it
// @Summary Verify certificate
// @Tags lms
// @Produce json
// @Param code path string true "Verification code"
// @Success 200 {object} services.CertificateVerification
// @Failure 404 {object} ErrorResponse
// @Router /lms/certificates/verify/{code} [get]
func (h *LearningHandler) VerifyCertificate(c *gin.Context) {
	code := ParseStringIDParam(c, "code")
	if code == "" {
		return
	}

	verification, err := h.certificateService.VerifyCertificate(c.Request.Context(), code)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, verification)
}
