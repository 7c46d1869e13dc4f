package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/services"
	"github.com/SAP-F-2025/backoffice-service/internal/utils"
)

type SetTaskStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

type ChecklistItemRequest struct {
	IsDone bool `json:"is_done"`
}

type TaskHandler struct {
	BaseHandler
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService, logger utils.Logger) *TaskHandler {
	return &TaskHandler{
		BaseHandler: NewBaseHandler(logger),
		taskService: taskService,
	}
}

// @Summary Create recurrence rule
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body services.RecurrenceRuleRequest true "Rule data"
// @Success 201 {object} models.RecurrenceRule
// @Failure 400 {object} ErrorResponse
// @Router /tasks/rules [post]
func (h *TaskHandler) CreateRule(c *gin.Context) {
	var req services.RecurrenceRuleRequest
	if !bindJSON(c, &req) {
		return
	}

	rule, err := h.taskService.CreateRule(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rule)
}

// @Summary List recurrence rules
// @Tags tasks
// @Produce json
// @Success 200 {array} models.RecurrenceRule
// @Router /tasks/rules [get]
func (h *TaskHandler) ListRules(c *gin.Context) {
	rules, err := h.taskService.ListRules(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rules)
}

// @Summary Create task template
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body services.TaskTemplateRequest true "Template data"
// @Success 201 {object} models.TaskTemplate
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tasks/templates [post]
func (h *TaskHandler) CreateTemplate(c *gin.Context) {
	var req services.TaskTemplateRequest
	if !bindJSON(c, &req) {
		return
	}

	template, err := h.taskService.CreateTemplate(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, template)
}

// @Summary List task templates
// @Tags tasks
// @Produce json
// @Param active_only query bool false "Only active templates"
// @Success 200 {array} models.TaskTemplate
// @Failure 400 {object} ErrorResponse
// @Router /tasks/templates [get]
func (h *TaskHandler) ListTemplates(c *gin.Context) {
	templates, err := h.taskService.ListTemplates(c.Request.Context(), parseBoolQuery(c, "active_only"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, templates)
}

// @Summary Create task
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body services.CreateTaskRequest true "Task data"
// @Success 201 {object} models.Task
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req services.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// @Summary Get task
// @Tags tasks
// @Produce json
// @Param id path uint true "Task ID"
// @Success 200 {object} models.Task
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// @Summary List tasks
// @Tags tasks
// @Produce json
// @Param due_before query string false "Due date upper bound"
// @Param assigned_to_id query uint false "Assignee filter"
// @Param template_id query uint false "Template filter"
// @Param status query string false "Status filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.TaskListResponse
// @Failure 400 {object} ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	dueBefore, err := parseTimeQuery(c, "due_before")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid due_before", err)
		return
	}

	filters := repositories.TaskFilters{
		AssignedToID: parseUintQuery(c, "assigned_to_id"),
		TemplateID:   parseUintQuery(c, "template_id"),
		DueBefore:    dueBefore,
		Pagination:   parsePagination(c),
	}
	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		filters.Status = &s
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// @Summary Set task status
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path uint true "Task ID"
// @Param request body SetTaskStatusRequest true "Target status"
// @Success 200 {object} models.Task
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id}/status [put]
func (h *TaskHandler) SetStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SetTaskStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.SetStatus(c.Request.Context(), id, req.Status, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// @Summary Set checklist item
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path uint true "Task ID"
// @Param item_id path uint true "Item ID"
// @Param request body ChecklistItemRequest true "Done flag"
// @Success 200 {object} models.TaskChecklistItem
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{id}/checklist/{item_id} [put]
func (h *TaskHandler) SetChecklistItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "item_id")
	if !ok {
		return
	}
	var req ChecklistItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.taskService.SetChecklistItem(c.Request.Context(), id, itemID, req.IsDone)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// GenerateRecurring materializes the recurring templates due on ?date= (today by default)
// @Summary Generate recurring tasks
// @Tags tasks
// @Produce json
// @Param date query string false "Day to generate (YYYY-MM-DD)"
// @Success 200 {object} SuccessResponse{data=services.GenerationResult}
// @Failure 400 {object} ErrorResponse
// @Router /tasks/generate [post]
func (h *TaskHandler) GenerateRecurring(c *gin.Context) {
	date, err := parseTimeQuery(c, "date")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid date", err)
		return
	}
	day := time.Now()
	if date != nil {
		day = *date
	}

	h.LogRequest(c, "Generating recurring tasks", "date", day.Format(time.DateOnly))

	result, err := h.taskService.GenerateRecurringTasks(c.Request.Context(), day)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Recurring tasks generated", result, "created", result.Created)
}
