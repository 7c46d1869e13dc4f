package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/services"
	"github.com/SAP-F-2025/backoffice-service/internal/utils"
)

type ContentHandler struct {
	BaseHandler
	contentService services.ContentService
}

func NewContentHandler(contentService services.ContentService, logger utils.Logger) *ContentHandler {
	return &ContentHandler{
		BaseHandler:    NewBaseHandler(logger),
		contentService: contentService,
	}
}

// @Summary Create content item
// @Tags content
// @Accept json
// @Produce json
// @Param request body services.ContentItemRequest true "Content data"
// @Success 201 {object} models.ContentItem
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /content [post]
func (h *ContentHandler) CreateContent(c *gin.Context) {
	var req services.ContentItemRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating content item", "platform", req.Platform)

	item, err := h.contentService.Create(c.Request.Context(), &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// @Summary Get content item
// @Tags content
// @Produce json
// @Param id path uint true "Content ID"
// @Success 200 {object} models.ContentItem
// @Failure 404 {object} ErrorResponse
// @Router /content/{id} [get]
func (h *ContentHandler) GetContent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.contentService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// ListContent returns the calendar, scheduled pieces first
// @Summary List content items
// @Tags content
// @Produce json
// @Param status query string false "Status filter"
// @Param platform query string false "Platform filter"
// @Param from query string false "Scheduled on or after (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Scheduled on or before (RFC3339 or YYYY-MM-DD)"
// @Param search query string false "Title or description fragment"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.ContentListResponse
// @Failure 400 {object} ErrorResponse
// @Router /content [get]
func (h *ContentHandler) ListContent(c *gin.Context) {
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid from", err)
		return
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid to", err)
		return
	}

	filters := repositories.ContentFilters{
		ScheduledFrom: from,
		ScheduledTo:   to,
		Search:        c.Query("search"),
		Pagination:    parsePagination(c),
	}
	if status := c.Query("status"); status != "" {
		s := models.ContentStatus(status)
		filters.Status = &s
	}
	if platform := c.Query("platform"); platform != "" {
		p := models.ContentPlatform(platform)
		filters.Platform = &p
	}

	items, err := h.contentService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// @Summary Update content item
// @Description Only the fields present in the body change
// @Tags content
// @Accept json
// @Produce json
// @Param id path uint true "Content ID"
// @Param request body services.UpdateContentRequest true "Changed fields"
// @Success 200 {object} models.ContentItem
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /content/{id} [put]
func (h *ContentHandler) UpdateContent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateContentRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating content item", "content_id", id)

	item, err := h.contentService.Update(c.Request.Context(), id, &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// @Summary Submit content for approval
// @Tags content
// @Produce json
// @Param id path uint true "Content ID"
// @Success 200 {object} models.ContentItem
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /content/{id}/submit [post]
func (h *ContentHandler) SubmitContent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting content for approval", "content_id", id)

	item, err := h.contentService.SubmitForApproval(c.Request.Context(), id, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// ApproveContent is reserved to the owner
// @Summary Approve content
// @Tags content
// @Accept json
// @Produce json
// @Param id path uint true "Content ID"
// @Param request body services.ContentReviewRequest true "Review comment"
// @Success 200 {object} models.ContentItem
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /content/{id}/approve [post]
func (h *ContentHandler) ApproveContent(c *gin.Context) {
	h.reviewContent(c, true)
}

// @Summary Reject content
// @Description Sends the piece back to IN_CREATION
// @Tags content
// @Accept json
// @Produce json
// @Param id path uint true "Content ID"
// @Param request body services.ContentReviewRequest true "Review comment"
// @Success 200 {object} models.ContentItem
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /content/{id}/reject [post]
func (h *ContentHandler) RejectContent(c *gin.Context) {
	h.reviewContent(c, false)
}

func (h *ContentHandler) reviewContent(c *gin.Context, approve bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ContentReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Reviewing content", "content_id", id, "approve", approve)

	review := h.contentService.Reject
	if approve {
		review = h.contentService.Approve
	}
	item, err := review(c.Request.Context(), id, &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// @Summary Publish content
// @Tags content
// @Produce json
// @Param id path uint true "Content ID"
// @Success 200 {object} models.ContentItem
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /content/{id}/publish [post]
func (h *ContentHandler) PublishContent(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Publishing content", "content_id", id)

	item, err := h.contentService.Publish(c.Request.Context(), id, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// @Summary Record content metrics
// @Tags content
// @Accept json
// @Produce json
// @Param id path uint true "Content ID"
// @Param request body services.ContentMetricRequest true "Engagement figures"
// @Success 201 {object} models.ContentMetric
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /content/{id}/metrics [post]
func (h *ContentHandler) AddMetrics(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.ContentMetricRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Recording content metrics", "content_id", id, "reach", req.Reach)

	metric, err := h.contentService.AddMetrics(c.Request.Context(), id, &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, metric)
}
