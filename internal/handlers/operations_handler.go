package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/services"
	"github.com/SAP-F-2025/backoffice-service/internal/utils"
)

type SetActivityStatusRequest struct {
	Status models.ActivityStatus `json:"status" binding:"required"`
}

type AssignStaffRequest struct {
	StaffID uint `json:"staff_id" binding:"required"`
}

// OperationsHandler serves the services catalog, activities and Loyverse receipts
type OperationsHandler struct {
	BaseHandler
	catalogService  services.CatalogService
	activityService services.ActivityService
	loyverseService services.LoyverseService
}

func NewOperationsHandler(
	catalogService services.CatalogService,
	activityService services.ActivityService,
	loyverseService services.LoyverseService,
	logger utils.Logger,
) *OperationsHandler {
	return &OperationsHandler{
		BaseHandler:     NewBaseHandler(logger),
		catalogService:  catalogService,
		activityService: activityService,
		loyverseService: loyverseService,
	}
}

// ===== SERVICES CATALOG =====

// @Summary Create service category
// @Tags services
// @Accept json
// @Produce json
// @Param request body services.ServiceCategoryRequest true "Category data"
// @Success 201 {object} models.ServiceCategory
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /service-categories [post]
func (h *OperationsHandler) CreateCategory(c *gin.Context) {
	var req services.ServiceCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// @Summary List service categories
// @Tags services
// @Produce json
// @Param active_only query bool false "Only active categories"
// @Success 200 {array} models.ServiceCategory
// @Failure 400 {object} ErrorResponse
// @Router /service-categories [get]
func (h *OperationsHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context(), parseBoolQuery(c, "active_only"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// @Summary Create service
// @Tags services
// @Accept json
// @Produce json
// @Param request body services.ServiceRequest true "Service data"
// @Success 201 {object} models.Service
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /services [post]
func (h *OperationsHandler) CreateService(c *gin.Context) {
	var req services.ServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	service, err := h.catalogService.CreateService(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, service)
}

// @Summary Update service
// @Tags services
// @Accept json
// @Produce json
// @Param id path uint true "Service ID"
// @Param request body services.ServiceRequest true "Service data"
// @Success 200 {object} models.Service
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /services/{id} [put]
func (h *OperationsHandler) UpdateService(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	service, err := h.catalogService.UpdateService(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, service)
}

// @Summary Get service
// @Tags services
// @Produce json
// @Param id path uint true "Service ID"
// @Success 200 {object} models.Service
// @Failure 404 {object} ErrorResponse
// @Router /services/{id} [get]
func (h *OperationsHandler) GetService(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	service, err := h.catalogService.GetService(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, service)
}

// @Summary List services
// @Tags services
// @Produce json
// @Param category_id query uint false "Category filter"
// @Param active_only query bool false "Only active services"
// @Param search query string false "Name fragment"
// @Success 200 {array} models.Service
// @Failure 400 {object} ErrorResponse
// @Router /services [get]
func (h *OperationsHandler) ListServices(c *gin.Context) {
	list, err := h.catalogService.ListServices(c.Request.Context(), repositories.ServiceFilters{
		CategoryID: parseUintQuery(c, "category_id"),
		ActiveOnly: parseBoolQuery(c, "active_only"),
		Search:     c.Query("search"),
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ===== ACTIVITIES =====

// CreateActivity records a client visit or a product sale
// @Summary Create activity
// @Tags activities
// @Accept json
// @Produce json
// @Param activity body services.CreateActivityRequest true "Activity data"
// @Success 201 {object} models.Activity
// @Failure 400 {object} ErrorResponse
// @Router /activities [post]
func (h *OperationsHandler) CreateActivity(c *gin.Context) {
	var req services.CreateActivityRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating activity", "type", req.Type, "lines", len(req.Lines))

	activity, err := h.activityService.Create(c.Request.Context(), &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, activity)
}

// @Summary Get activity
// @Tags activities
// @Produce json
// @Param id path uint true "Activity ID"
// @Success 200 {object} models.Activity
// @Failure 404 {object} ErrorResponse
// @Router /activities/{id} [get]
func (h *OperationsHandler) GetActivity(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	activity, err := h.activityService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// @Summary Update activity
// @Tags activities
// @Accept json
// @Produce json
// @Param id path uint true "Activity ID"
// @Param request body services.UpdateActivityRequest true "Activity data"
// @Success 200 {object} models.Activity
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /activities/{id} [put]
func (h *OperationsHandler) UpdateActivity(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateActivityRequest
	if !bindJSON(c, &req) {
		return
	}

	activity, err := h.activityService.Update(c.Request.Context(), id, &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// @Summary List activities
// @Tags activities
// @Produce json
// @Param date_from query string false "Start date"
// @Param date_to query string false "End date"
// @Param assigned_staff_id query uint false "Staff filter"
// @Param client_id query uint false "Client filter"
// @Param status query string false "Status filter"
// @Param type query string false "Activity type"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.ActivityListResponse
// @Failure 400 {object} ErrorResponse
// @Router /activities [get]
func (h *OperationsHandler) ListActivities(c *gin.Context) {
	from, err := parseTimeQuery(c, "date_from")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid date_from", err)
		return
	}
	to, err := parseTimeQuery(c, "date_to")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid date_to", err)
		return
	}

	filters := repositories.ActivityFilters{
		AssignedStaffID: parseUintQuery(c, "assigned_staff_id"),
		ClientID:        parseUintQuery(c, "client_id"),
		DateFrom:        from,
		DateTo:          to,
		Pagination:      parsePagination(c),
	}
	if status := c.Query("status"); status != "" {
		s := models.ActivityStatus(status)
		filters.Status = &s
	}
	if activityType := c.Query("type"); activityType != "" {
		t := models.ActivityType(activityType)
		filters.Type = &t
	}

	activities, err := h.activityService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activities)
}

// @Summary Set activity status
// @Tags activities
// @Accept json
// @Produce json
// @Param id path uint true "Activity ID"
// @Param request body SetActivityStatusRequest true "Target status"
// @Success 200 {object} models.Activity
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /activities/{id}/set-status [post]
func (h *OperationsHandler) SetActivityStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SetActivityStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Changing activity status", "activity_id", id, "status", req.Status)

	activity, err := h.activityService.SetStatus(c.Request.Context(), id, req.Status, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// @Summary Mark activity done
// @Tags activities
// @Produce json
// @Param id path uint true "Activity ID"
// @Success 200 {object} models.Activity
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /activities/{id}/mark-done [post]
func (h *OperationsHandler) MarkActivityDone(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	activity, err := h.activityService.MarkDone(c.Request.Context(), id, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// @Summary Assign staff
// @Tags activities
// @Accept json
// @Produce json
// @Param id path uint true "Activity ID"
// @Param request body AssignStaffRequest true "Staff member"
// @Success 200 {object} models.Activity
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /activities/{id}/assign-staff [post]
func (h *OperationsHandler) AssignStaff(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req AssignStaffRequest
	if !bindJSON(c, &req) {
		return
	}

	activity, err := h.activityService.AssignStaff(c.Request.Context(), id, req.StaffID, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// @Summary Add activity line
// @Tags activities
// @Accept json
// @Produce json
// @Param id path uint true "Activity ID"
// @Param request body services.ActivityLineRequest true "Line data"
// @Success 201 {object} models.ActivityLine
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /activities/{id}/lines [post]
func (h *OperationsHandler) AddActivityLine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ActivityLineRequest
	if !bindJSON(c, &req) {
		return
	}

	line, err := h.activityService.AddLine(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, line)
}

// @Summary Remove activity line
// @Tags activities
// @Produce json
// @Param id path uint true "Activity ID"
// @Param line_id path uint true "Line ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /activities/{id}/lines/{line_id} [delete]
func (h *OperationsHandler) RemoveActivityLine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := parseIDParam(c, "line_id")
	if !ok {
		return
	}

	if err := h.activityService.RemoveLine(c.Request.Context(), id, lineID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// LinkPayment attaches a Loyverse receipt or a manual reference and marks the activity paid
// @Summary Link payment
// @Tags activities
// @Accept json
// @Produce json
// @Param id path uint true "Activity ID"
// @Param payment body services.LinkPaymentRequest true "Payment reference"
// @Success 200 {object} models.Activity
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /activities/{id}/link-payment [post]
func (h *OperationsHandler) LinkPayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.LinkPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Linking payment", "activity_id", id, "receipt_id", req.LoyverseReceiptID)

	activity, err := h.activityService.LinkPayment(c.Request.Context(), id, &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// ===== LOYVERSE =====

// SyncReceipts pulls the Loyverse receipts created since ?since=
// @Summary Sync Loyverse receipts
// @Tags loyverse
// @Produce json
// @Param since query string false "Lower bound (defaults to the last sync)"
// @Success 200 {object} SuccessResponse{data=services.SyncResult}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /loyverse/sync [post]
func (h *OperationsHandler) SyncReceipts(c *gin.Context) {
	since, err := parseTimeQuery(c, "since")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid since", err)
		return
	}

	h.LogRequest(c, "Manual loyverse sync", "since", since)

	result, err := h.loyverseService.SyncReceipts(c.Request.Context(), since)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Receipts synchronized", result, "created", result.Created)
}

// @Summary List Loyverse receipts
// @Tags loyverse
// @Produce json
// @Param since query string false "Lower bound"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.ReceiptListResponse
// @Failure 400 {object} ErrorResponse
// @Router /loyverse/receipts [get]
func (h *OperationsHandler) ListReceipts(c *gin.Context) {
	since, err := parseTimeQuery(c, "since")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid since", err)
		return
	}

	receipts, err := h.loyverseService.ListReceipts(c.Request.Context(), repositories.ReceiptFilters{
		Since:      since,
		Pagination: parsePagination(c),
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, receipts)
}
