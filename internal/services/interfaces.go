package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID uint
	Role   models.UserRole
}

func (a Actor) IsSupervisor() bool {
	return a.Role.IsSupervisor()
}

func (a Actor) userIDPtr() *uint {
	if a.UserID == 0 {
		return nil
	}
	id := a.UserID
	return &id
}

// ===== ACCOUNTS & CRM =====

type UserService interface {
	Create(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	Authenticate(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)
	UpdateRole(ctx context.Context, id uint, role models.UserRole, actor Actor) (*models.User, error)
	SetActive(ctx context.Context, id uint, active bool, actor Actor) (*models.User, error)
}

type ClientService interface {
	Create(ctx context.Context, req *ClientRequest) (*models.Client, error)
	GetByID(ctx context.Context, id uint) (*models.Client, error)
	Update(ctx context.Context, id uint, req *ClientRequest) (*models.Client, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.ClientFilters) (*ClientListResponse, error)
}

// ===== OPERATIONS =====

type CatalogService interface {
	CreateCategory(ctx context.Context, req *ServiceCategoryRequest) (*models.ServiceCategory, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]*models.ServiceCategory, error)
	CreateService(ctx context.Context, req *ServiceRequest) (*models.Service, error)
	UpdateService(ctx context.Context, id uint, req *ServiceRequest) (*models.Service, error)
	GetService(ctx context.Context, id uint) (*models.Service, error)
	ListServices(ctx context.Context, filters repositories.ServiceFilters) ([]*models.Service, error)
}

type ActivityService interface {
	Create(ctx context.Context, req *CreateActivityRequest, actor Actor) (*models.Activity, error)
	GetByID(ctx context.Context, id uint) (*models.Activity, error)
	Update(ctx context.Context, id uint, req *UpdateActivityRequest, actor Actor) (*models.Activity, error)
	List(ctx context.Context, filters repositories.ActivityFilters) (*ActivityListResponse, error)

	SetStatus(ctx context.Context, id uint, status models.ActivityStatus, actor Actor) (*models.Activity, error)
	MarkDone(ctx context.Context, id uint, actor Actor) (*models.Activity, error)
	AssignStaff(ctx context.Context, id uint, staffID uint, actor Actor) (*models.Activity, error)

	AddLine(ctx context.Context, activityID uint, req *ActivityLineRequest) (*models.ActivityLine, error)
	RemoveLine(ctx context.Context, activityID, lineID uint) error

	LinkPayment(ctx context.Context, id uint, req *LinkPaymentRequest, actor Actor) (*models.Activity, error)
}

type LoyverseService interface {
	SyncReceipts(ctx context.Context, since *time.Time) (*SyncResult, error)
	ListReceipts(ctx context.Context, filters repositories.ReceiptFilters) (*ReceiptListResponse, error)
}

type InventoryService interface {
	CreateItem(ctx context.Context, req *InventoryItemRequest) (*models.InventoryItem, error)
	GetItem(ctx context.Context, id uint) (*models.InventoryItem, error)
	ListItems(ctx context.Context, filters repositories.InventoryFilters) ([]*models.InventoryItem, error)
	RecordMove(ctx context.Context, req *StockMoveRequest, actor Actor) (*StockMoveResult, error)
	DeleteMove(ctx context.Context, moveID uint, actor Actor) (*models.StockLevel, error)
	ListMoves(ctx context.Context, itemID uint) ([]*models.StockMove, error)
}

type TaskService interface {
	CreateRule(ctx context.Context, req *RecurrenceRuleRequest) (*models.RecurrenceRule, error)
	ListRules(ctx context.Context) ([]*models.RecurrenceRule, error)
	CreateTemplate(ctx context.Context, req *TaskTemplateRequest) (*models.TaskTemplate, error)
	ListTemplates(ctx context.Context, activeOnly bool) ([]*models.TaskTemplate, error)

	CreateTask(ctx context.Context, req *CreateTaskRequest, actor Actor) (*models.Task, error)
	GetTask(ctx context.Context, id uint) (*models.Task, error)
	ListTasks(ctx context.Context, filters repositories.TaskFilters) (*TaskListResponse, error)
	SetStatus(ctx context.Context, id uint, status models.TaskStatus, actor Actor) (*models.Task, error)
	SetChecklistItem(ctx context.Context, taskID, itemID uint, done bool) (*models.TaskChecklistItem, error)

	GenerateRecurringTasks(ctx context.Context, date time.Time) (*GenerationResult, error)
}

// ===== CONTENT & WIGS =====

type ContentService interface {
	Create(ctx context.Context, req *ContentItemRequest, actor Actor) (*models.ContentItem, error)
	Get(ctx context.Context, id uint) (*models.ContentItem, error)
	List(ctx context.Context, filters repositories.ContentFilters) (*ContentListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateContentRequest, actor Actor) (*models.ContentItem, error)

	SubmitForApproval(ctx context.Context, id uint, actor Actor) (*models.ContentItem, error)
	Approve(ctx context.Context, id uint, req *ContentReviewRequest, actor Actor) (*models.ContentItem, error)
	Reject(ctx context.Context, id uint, req *ContentReviewRequest, actor Actor) (*models.ContentItem, error)
	Publish(ctx context.Context, id uint, actor Actor) (*models.ContentItem, error)
	AddMetrics(ctx context.Context, id uint, req *ContentMetricRequest, actor Actor) (*models.ContentMetric, error)
}

type WigService interface {
	CreateProduct(ctx context.Context, req *WigProductRequest, actor Actor) (*models.WigProduct, error)
	GetProduct(ctx context.Context, id uint) (*models.WigProduct, error)
	UpdateProduct(ctx context.Context, id uint, req *WigProductRequest, actor Actor) (*models.WigProduct, error)
	DeleteProduct(ctx context.Context, id uint) error
	ListProducts(ctx context.Context, query WigListQuery) ([]*models.WigProduct, error)

	CreateCare(ctx context.Context, req *CareWigRequest, actor Actor) (*models.CareWig, error)
	GetCare(ctx context.Context, id uint) (*models.CareWig, error)
	UpdateCare(ctx context.Context, id uint, req *CareWigRequest, actor Actor) (*models.CareWig, error)
	DeleteCare(ctx context.Context, id uint) error
	ListCare(ctx context.Context, query WigListQuery) ([]*models.CareWig, error)
}

// ===== LMS =====

type CourseService interface {
	CreateCourse(ctx context.Context, req *CourseRequest, actor Actor) (*models.Course, error)
	UpdateCourse(ctx context.Context, id uint, req *CourseRequest, actor Actor) (*models.Course, error)
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	GetOutline(ctx context.Context, id uint) (*models.Course, error)
	ListCourses(ctx context.Context, activeOnly bool) ([]*models.Course, error)

	CreateModule(ctx context.Context, req *ModuleRequest, actor Actor) (*models.Module, error)
	CreateLesson(ctx context.Context, req *LessonRequest, actor Actor) (*models.Lesson, error)
	CreateResource(ctx context.Context, req *ResourceRequest, actor Actor) (*models.Resource, error)
	CreateQuiz(ctx context.Context, req *QuizRequest, actor Actor) (*models.Quiz, error)
	CreateQuestion(ctx context.Context, req *QuestionRequest, actor Actor) (*models.Question, error)
	CreateAssignment(ctx context.Context, req *AssignmentRequest, actor Actor) (*models.Assignment, error)
	CreateBadge(ctx context.Context, req *BadgeRequest, actor Actor) (*models.Badge, error)
	SaveCompletionRule(ctx context.Context, req *CompletionRuleRequest, actor Actor) (*models.CompletionRule, error)
}

// CompletionService evaluates module and course completion for an enrollment
type CompletionService interface {
	IsModuleCompleted(ctx context.Context, enrollmentID, moduleID uint) (bool, error)
	IsCourseCompleted(ctx context.Context, enrollmentID uint) (bool, error)
}

type ProgressService interface {
	Enroll(ctx context.Context, userID, courseID uint) (*models.Enrollment, error)
	GetEnrollment(ctx context.Context, id uint, actor Actor) (*models.Enrollment, error)
	ListEnrollments(ctx context.Context, filters repositories.EnrollmentFilters) (*EnrollmentListResponse, error)
	MarkLessonViewed(ctx context.Context, enrollmentID, lessonID uint, actor Actor) (*models.Progress, error)
	RefreshEnrollmentProgress(ctx context.Context, enrollmentID uint) (*models.Enrollment, error)
}

type QuizService interface {
	ScoreQuizAttempt(ctx context.Context, enrollmentID, quizID uint, req *QuizAttemptRequest, actor Actor) (*models.Submission, error)
	ComputeScore(ctx context.Context, submissionID uint) (*models.Submission, error)
	ReviewQuizAnswer(ctx context.Context, answerID uint, req *ReviewAnswerRequest, actor Actor) (*models.Submission, error)
	ListPendingReviews(ctx context.Context, limit int) ([]*models.SubmissionAnswer, error)
	GetSubmission(ctx context.Context, id uint) (*models.Submission, error)
}

type AssignmentService interface {
	SubmitAssignment(ctx context.Context, enrollmentID, assignmentID uint, req *SubmitAssignmentRequest, actor Actor) (*models.AssignmentSubmission, error)
	ReviewSubmission(ctx context.Context, submissionID uint, req *ReviewSubmissionRequest, actor Actor) (*models.AssignmentSubmission, error)
	GetSubmission(ctx context.Context, id uint) (*models.AssignmentSubmission, error)
	ListSubmissions(ctx context.Context, filters repositories.AssignmentSubmissionFilters) (*AssignmentSubmissionListResponse, error)
}

type BadgeService interface {
	AwardBadgesForEnrollment(ctx context.Context, enrollmentID uint) ([]*models.BadgeAward, error)
	ListAwards(ctx context.Context, userID uint) ([]*models.BadgeAward, error)
}

type CertificateService interface {
	IssueCertificate(ctx context.Context, enrollmentID uint, actor Actor) (*models.Certificate, error)
	VerifyCertificate(ctx context.Context, code string) (*CertificateVerification, error)
	RevokeCertificate(ctx context.Context, id uint, actor Actor) (*models.Certificate, error)
}

type ExportService interface {
	ExportEnrollments(ctx context.Context, courseID uint, actor Actor) ([]byte, error)
	ExportActivities(ctx context.Context, from, to time.Time, actor Actor) ([]byte, error)
}
