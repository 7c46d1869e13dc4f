package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/backoffice-service/internal/auth"
	"github.com/SAP-F-2025/backoffice-service/internal/services"
	"github.com/SAP-F-2025/backoffice-service/internal/utils"
)

type HandlerManager struct {
	accountHandler    *AccountHandler
	operationsHandler *OperationsHandler
	inventoryHandler  *InventoryHandler
	taskHandler       *TaskHandler
	contentHandler    *ContentHandler
	wigHandler        *WigHandler
	courseHandler     *CourseHandler
	learningHandler   *LearningHandler
	exportHandler     *ExportHandler

	verifier auth.Verifier
	checker  *auth.Checker
	logger   utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	verifier auth.Verifier,
	checker *auth.Checker,
	logger utils.Logger,
) *HandlerManager {
	if checker == nil {
		checker = auth.NewChecker(nil)
	}
	return &HandlerManager{
		accountHandler:    NewAccountHandler(serviceManager.User(), serviceManager.Client(), logger),
		operationsHandler: NewOperationsHandler(serviceManager.Catalog(), serviceManager.Activity(), serviceManager.Loyverse(), logger),
		inventoryHandler:  NewInventoryHandler(serviceManager.Inventory(), logger),
		taskHandler:       NewTaskHandler(serviceManager.Task(), logger),
		contentHandler:    NewContentHandler(serviceManager.Content(), logger),
		wigHandler:        NewWigHandler(serviceManager.Wig(), logger),
		courseHandler:     NewCourseHandler(serviceManager.Course(), logger),
		learningHandler:   NewLearningHandler(serviceManager, logger),
		exportHandler:     NewExportHandler(serviceManager.Export(), logger),
		verifier:          verifier,
		checker:           checker,
		logger:            logger,
	}
}

func (hm *HandlerManager) can(perms ...string) gin.HandlerFunc {
	return auth.RequirePermission(hm.checker, perms...)
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")

	// Public routes
	v1.POST("/auth/login", hm.accountHandler.Login)
	v1.GET("/lms/certificates/verify/:code", hm.learningHandler.VerifyCertificate)

	api := v1.Group("", auth.Authenticate(hm.verifier, hm.logger))
	{
		api.GET("/auth/me", hm.accountHandler.Me)

		users := api.Group("/users", hm.can(auth.PermUsersManage))
		{
			users.POST("", hm.accountHandler.CreateUser)
			users.GET("", hm.accountHandler.ListUsers)
			users.GET("/:id", hm.accountHandler.GetUser)
			users.PUT("/:id/role", hm.accountHandler.UpdateRole)
			users.PUT("/:id/active", hm.accountHandler.SetActive)
		}

		clients := api.Group("/clients")
		{
			clients.POST("", hm.can(auth.PermClientsWrite), hm.accountHandler.CreateClient)
			clients.GET("", hm.can(auth.PermClientsRead), hm.accountHandler.ListClients)
			clients.GET("/:id", hm.can(auth.PermClientsRead), hm.accountHandler.GetClient)
			clients.PUT("/:id", hm.can(auth.PermClientsWrite), hm.accountHandler.UpdateClient)
			clients.DELETE("/:id", hm.can(auth.PermClientsWrite), hm.accountHandler.DeleteClient)
		}

		// Services catalog
		api.GET("/service-categories", hm.can(auth.PermActivitiesRead), hm.operationsHandler.ListCategories)
		api.POST("/service-categories", hm.can(auth.PermServicesWrite), hm.operationsHandler.CreateCategory)
		catalog := api.Group("/services")
		{
			catalog.GET("", hm.can(auth.PermActivitiesRead), hm.operationsHandler.ListServices)
			catalog.GET("/:id", hm.can(auth.PermActivitiesRead), hm.operationsHandler.GetService)
			catalog.POST("", hm.can(auth.PermServicesWrite), hm.operationsHandler.CreateService)
			catalog.PUT("/:id", hm.can(auth.PermServicesWrite), hm.operationsHandler.UpdateService)
		}

		activities := api.Group("/activities")
		{
			activities.GET("", hm.can(auth.PermActivitiesRead), hm.operationsHandler.ListActivities)
			activities.GET("/:id", hm.can(auth.PermActivitiesRead), hm.operationsHandler.GetActivity)
			activities.POST("", hm.can(auth.PermActivitiesWrite), hm.operationsHandler.CreateActivity)
			activities.PUT("/:id", hm.can(auth.PermActivitiesWrite), hm.operationsHandler.UpdateActivity)
			activities.POST("/:id/set-status", hm.can(auth.PermActivitiesWrite), hm.operationsHandler.SetActivityStatus)
			activities.POST("/:id/mark-done", hm.can(auth.PermActivitiesWrite), hm.operationsHandler.MarkActivityDone)
			activities.POST("/:id/assign-staff", hm.can(auth.PermActivitiesWrite), hm.operationsHandler.AssignStaff)
			activities.POST("/:id/lines", hm.can(auth.PermActivitiesWrite), hm.operationsHandler.AddActivityLine)
			activities.DELETE("/:id/lines/:line_id", hm.can(auth.PermActivitiesWrite), hm.operationsHandler.RemoveActivityLine)
			activities.POST("/:id/link-payment", hm.can(auth.PermLinkPayment), hm.operationsHandler.LinkPayment)
		}

		loyverse := api.Group("/loyverse", hm.can(auth.PermLoyverseSync))
		{
			loyverse.POST("/sync", hm.operationsHandler.SyncReceipts)
			loyverse.GET("/receipts", hm.operationsHandler.ListReceipts)
		}

		inventory := api.Group("/inventory")
		{
			inventory.GET("/items", hm.can(auth.PermInventoryRead), hm.inventoryHandler.ListItems)
			inventory.GET("/items/:id", hm.can(auth.PermInventoryRead), hm.inventoryHandler.GetItem)
			inventory.GET("/items/:id/moves", hm.can(auth.PermInventoryRead), hm.inventoryHandler.ListMoves)
			inventory.POST("/items", hm.can(auth.PermInventoryWrite), hm.inventoryHandler.CreateItem)
			inventory.POST("/moves", hm.can(auth.PermInventoryWrite), hm.inventoryHandler.RecordMove)
			inventory.DELETE("/moves/:id", hm.can(auth.PermInventoryWrite), hm.inventoryHandler.DeleteMove)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("", hm.can(auth.PermTasksRead), hm.taskHandler.ListTasks)
			tasks.POST("", hm.can(auth.PermTasksWrite), hm.taskHandler.CreateTask)
			tasks.GET("/:id", hm.can(auth.PermTasksRead), hm.taskHandler.GetTask)
			tasks.PUT("/:id/status", hm.can(auth.PermTasksWrite), hm.taskHandler.SetStatus)
			tasks.PUT("/:id/checklist/:item_id", hm.can(auth.PermTasksWrite), hm.taskHandler.SetChecklistItem)

			tasks.POST("/generate", hm.can(auth.PermTasksManage), hm.taskHandler.GenerateRecurring)
			tasks.GET("/rules", hm.can(auth.PermTasksRead), hm.taskHandler.ListRules)
			tasks.POST("/rules", hm.can(auth.PermTasksManage), hm.taskHandler.CreateRule)
			tasks.GET("/templates", hm.can(auth.PermTasksRead), hm.taskHandler.ListTemplates)
			tasks.POST("/templates", hm.can(auth.PermTasksManage), hm.taskHandler.CreateTemplate)
		}

		// Approve and reject are further limited to the owner by the service.
		content := api.Group("/content")
		{
			content.GET("", hm.can(auth.PermContentRead), hm.contentHandler.ListContent)
			content.GET("/:id", hm.can(auth.PermContentRead), hm.contentHandler.GetContent)
			content.POST("", hm.can(auth.PermContentWrite), hm.contentHandler.CreateContent)
			content.PUT("/:id", hm.can(auth.PermContentWrite), hm.contentHandler.UpdateContent)
			content.POST("/:id/submit", hm.can(auth.PermContentWrite), hm.contentHandler.SubmitContent)
			content.POST("/:id/approve", hm.can(auth.PermContentWrite), hm.contentHandler.ApproveContent)
			content.POST("/:id/reject", hm.can(auth.PermContentWrite), hm.contentHandler.RejectContent)
			content.POST("/:id/publish", hm.can(auth.PermContentWrite), hm.contentHandler.PublishContent)
			content.POST("/:id/metrics", hm.can(auth.PermContentWrite), hm.contentHandler.AddMetrics)
		}

		wigs := api.Group("/wigs")
		{
			wigs.GET("/products", hm.can(auth.PermWigsRead), hm.wigHandler.ListProducts)
			wigs.GET("/products/:id", hm.can(auth.PermWigsRead), hm.wigHandler.GetProduct)
			wigs.POST("/products", hm.can(auth.PermWigsWrite), hm.wigHandler.CreateProduct)
			wigs.PUT("/products/:id", hm.can(auth.PermWigsWrite), hm.wigHandler.UpdateProduct)
			wigs.DELETE("/products/:id", hm.can(auth.PermWigsWrite), hm.wigHandler.DeleteProduct)

			wigs.GET("/care", hm.can(auth.PermWigsRead), hm.wigHandler.ListCare)
			wigs.GET("/care/:id", hm.can(auth.PermWigsRead), hm.wigHandler.GetCare)
			wigs.POST("/care", hm.can(auth.PermWigsWrite), hm.wigHandler.CreateCare)
			wigs.PUT("/care/:id", hm.can(auth.PermWigsWrite), hm.wigHandler.UpdateCare)
			wigs.DELETE("/care/:id", hm.can(auth.PermWigsWrite), hm.wigHandler.DeleteCare)
		}

		lms := api.Group("/lms")
		{
			// Catalog authoring
			lms.GET("/courses", hm.can(auth.PermLMSLearn), hm.courseHandler.ListCourses)
			lms.GET("/courses/:id", hm.can(auth.PermLMSLearn), hm.courseHandler.GetCourse)
			lms.GET("/courses/:id/outline", hm.can(auth.PermLMSLearn), hm.courseHandler.GetOutline)
			lms.POST("/courses", hm.can(auth.PermLMSManage), hm.courseHandler.CreateCourse)
			lms.PUT("/courses/:id", hm.can(auth.PermLMSManage), hm.courseHandler.UpdateCourse)
			lms.POST("/modules", hm.can(auth.PermLMSManage), hm.courseHandler.CreateModule)
			lms.POST("/lessons", hm.can(auth.PermLMSManage), hm.courseHandler.CreateLesson)
			lms.POST("/resources", hm.can(auth.PermLMSManage), hm.courseHandler.CreateResource)
			lms.POST("/quizzes", hm.can(auth.PermLMSManage), hm.courseHandler.CreateQuiz)
			lms.POST("/questions", hm.can(auth.PermLMSManage), hm.courseHandler.CreateQuestion)
			lms.POST("/assignments", hm.can(auth.PermLMSManage), hm.courseHandler.CreateAssignment)
			lms.POST("/badges", hm.can(auth.PermLMSManage), hm.courseHandler.CreateBadge)
			lms.POST("/completion-rules", hm.can(auth.PermLMSManage), hm.courseHandler.SaveCompletionRule)

			// Learning
			enrollments := lms.Group("/enrollments", hm.can(auth.PermLMSLearn))
			{
				enrollments.POST("", hm.learningHandler.Enroll)
				enrollments.GET("", hm.learningHandler.ListEnrollments)
				enrollments.GET("/:id", hm.learningHandler.GetEnrollment)
				enrollments.POST("/:id/lessons/:lesson_id/viewed", hm.learningHandler.MarkLessonViewed)
				enrollments.POST("/:id/refresh", hm.learningHandler.RefreshProgress)
				enrollments.GET("/:id/completion", hm.learningHandler.CourseCompletion)
				enrollments.GET("/:id/modules/:module_id/completion", hm.learningHandler.ModuleCompletion)
				enrollments.POST("/:id/quizzes/:quiz_id/attempts", hm.learningHandler.SubmitQuiz)
				enrollments.POST("/:id/assignments/:assignment_id/submissions", hm.learningHandler.SubmitAssignment)
				enrollments.POST("/:id/award-badges", hm.learningHandler.AwardBadges)
			}
			lms.POST("/enrollments/:id/issue-certificate", hm.can(auth.PermCertificatesManage), hm.learningHandler.IssueCertificate)

			lms.GET("/quiz-submissions/:id", hm.can(auth.PermLMSLearn), hm.learningHandler.GetQuizSubmission)
			lms.GET("/badges/awards", hm.can(auth.PermLMSLearn), hm.learningHandler.ListAwards)

			// Review
			review := lms.Group("", hm.can(auth.PermLMSReview))
			{
				review.GET("/reviews/pending", hm.learningHandler.ListPendingReviews)
				review.POST("/answers/:id/review", hm.learningHandler.ReviewAnswer)
				review.GET("/assignment-submissions", hm.learningHandler.ListAssignmentSubmissions)
				review.GET("/assignment-submissions/:id", hm.learningHandler.GetAssignmentSubmission)
				review.POST("/assignment-submissions/:id/approve", hm.learningHandler.ApproveSubmission)
				review.POST("/assignment-submissions/:id/reject", hm.learningHandler.RejectSubmission)
			}

			lms.POST("/certificates/:id/revoke", hm.can(auth.PermCertificatesManage), hm.learningHandler.RevokeCertificate)
		}

		exports := api.Group("/exports", hm.can(auth.PermExport))
		{
			exports.GET("/activities", hm.exportHandler.ExportActivities)
			exports.GET("/courses/:id/enrollments", hm.exportHandler.ExportEnrollments)
		}
	}
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "backoffice-service",
	})
}
