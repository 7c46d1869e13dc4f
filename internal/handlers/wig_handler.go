package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/backoffice-service/internal/services"
	"github.com/SAP-F-2025/backoffice-service/internal/utils"
)

type WigHandler struct {
	BaseHandler
	wigService services.WigService
}

func NewWigHandler(wigService services.WigService, logger utils.Logger) *WigHandler {
	return &WigHandler{
		BaseHandler: NewBaseHandler(logger),
		wigService:  wigService,
	}
}

// ===== PRODUCTS =====

// CreateProduct registers a wig for sale under the next WIG-YYMM-NNNN code
// @Summary Create wig product
// @Tags wigs
// @Accept json
// @Produce json
// @Param request body services.WigProductRequest true "Product data"
// @Success 201 {object} models.WigProduct
// @Failure 400 {object} ErrorResponse
// @Router /wigs/products [post]
func (h *WigHandler) CreateProduct(c *gin.Context) {
	var req services.WigProductRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating wig product", "name", req.Name)

	product, err := h.wigService.CreateProduct(c.Request.Context(), &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// @Summary Get wig product
// @Tags wigs
// @Produce json
// @Param id path uint true "Product ID"
// @Success 200 {object} models.WigProduct
// @Failure 404 {object} ErrorResponse
// @Router /wigs/products/{id} [get]
func (h *WigHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.wigService.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// @Summary List wig products
// @Tags wigs
// @Produce json
// @Param status query string false "Status filter"
// @Param code query string false "Code fragment"
// @Param q query string false "Name or code fragment"
// @Param start_date query string false "Created on or after (YYYY-MM-DD)"
// @Param end_date query string false "Created on or before (YYYY-MM-DD)"
// @Success 200 {array} models.WigProduct
// @Failure 400 {object} ErrorResponse
// @Router /wigs/products [get]
func (h *WigHandler) ListProducts(c *gin.Context) {
	var query services.WigListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query", err)
		return
	}

	products, err := h.wigService.ListProducts(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// @Summary Update wig product
// @Tags wigs
// @Accept json
// @Produce json
// @Param id path uint true "Product ID"
// @Param request body services.WigProductRequest true "Product data"
// @Success 200 {object} models.WigProduct
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /wigs/products/{id} [put]
func (h *WigHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.WigProductRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating wig product", "product_id", id, "status", req.Status)

	product, err := h.wigService.UpdateProduct(c.Request.Context(), id, &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// @Summary Delete wig product
// @Tags wigs
// @Param id path uint true "Product ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /wigs/products/{id} [delete]
func (h *WigHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting wig product", "product_id", id)

	if err := h.wigService.DeleteProduct(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== CARE =====

// CreateCare checks in a client's wig under the next CARE-YYMM-NNNN code
// @Summary Create care wig
// @Tags wigs
// @Accept json
// @Produce json
// @Param request body services.CareWigRequest true "Care data"
// @Success 201 {object} models.CareWig
// @Failure 400 {object} ErrorResponse
// @Router /wigs/care [post]
func (h *WigHandler) CreateCare(c *gin.Context) {
	var req services.CareWigRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating care wig", "client", req.Client)

	care, err := h.wigService.CreateCare(c.Request.Context(), &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, care)
}

// @Summary Get care wig
// @Tags wigs
// @Produce json
// @Param id path uint true "Care ID"
// @Success 200 {object} models.CareWig
// @Failure 404 {object} ErrorResponse
// @Router /wigs/care/{id} [get]
func (h *WigHandler) GetCare(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	care, err := h.wigService.GetCare(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, care)
}

// @Summary List care wigs
// @Tags wigs
// @Produce json
// @Param status query string false "Status filter"
// @Param code query string false "Code fragment"
// @Param q query string false "Client or code fragment"
// @Param start_date query string false "Created on or after (YYYY-MM-DD)"
// @Param end_date query string false "Created on or before (YYYY-MM-DD)"
// @Success 200 {array} models.CareWig
// @Failure 400 {object} ErrorResponse
// @Router /wigs/care [get]
func (h *WigHandler) ListCare(c *gin.Context) {
	var query services.WigListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query", err)
		return
	}

	care, err := h.wigService.ListCare(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, care)
}

// @Summary Update care wig
// @Tags wigs
// @Accept json
// @Produce json
// @Param id path uint true "Care ID"
// @Param request body services.CareWigRequest true "Care data"
// @Success 200 {object} models.CareWig
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /wigs/care/{id} [put]
func (h *WigHandler) UpdateCare(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.CareWigRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating care wig", "care_id", id, "status", req.Status)

	care, err := h.wigService.UpdateCare(c.Request.Context(), id, &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, care)
}

// @Summary Delete care wig
// @Tags wigs
// @Param id path uint true "Care ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /wigs/care/{id} [delete]
func (h *WigHandler) DeleteCare(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting care wig", "care_id", id)

	if err := h.wigService.DeleteCare(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
