package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/services"
	"github.com/SAP-F-2025/backoffice-service/internal/utils"
)

type InventoryHandler struct {
	BaseHandler
	inventoryService services.InventoryService
}

func NewInventoryHandler(inventoryService services.InventoryService, logger utils.Logger) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler:      NewBaseHandler(logger),
		inventoryService: inventoryService,
	}
}

// @Summary Create inventory item
// @Tags inventory
// @Accept json
// @Produce json
// @Param request body services.InventoryItemRequest true "Item data"
// @Success 201 {object} models.InventoryItem
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /inventory/items [post]
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req services.InventoryItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.inventoryService.CreateItem(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// @Summary Get inventory item
// @Tags inventory
// @Produce json
// @Param id path uint true "Item ID"
// @Success 200 {object} models.InventoryItem
// @Failure 404 {object} ErrorResponse
// @Router /inventory/items/{id} [get]
func (h *InventoryHandler) GetItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.inventoryService.GetItem(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// @Summary List inventory items
// @Tags inventory
// @Produce json
// @Param alert_only query bool false "Only items at or below their alert threshold"
// @Param search query string false "Name or SKU fragment"
// @Param category query string false "Category filter"
// @Success 200 {array} models.InventoryItem
// @Failure 400 {object} ErrorResponse
// @Router /inventory/items [get]
func (h *InventoryHandler) ListItems(c *gin.Context) {
	filters := repositories.InventoryFilters{
		AlertOnly: parseBoolQuery(c, "alert_only"),
		Search:    c.Query("search"),
	}
	if category := c.Query("category"); category != "" {
		cat := models.ItemCategory(category)
		filters.Category = &cat
	}

	items, err := h.inventoryService.ListItems(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// RecordMove applies a signed stock movement
// @Summary Record stock move
// @Tags inventory
// @Accept json
// @Produce json
// @Param move body services.StockMoveRequest true "Stock move"
// @Success 201 {object} services.StockMoveResult
// @Failure 400 {object} ErrorResponse
// @Router /inventory/moves [post]
func (h *InventoryHandler) RecordMove(c *gin.Context) {
	var req services.StockMoveRequest
	if !bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Recording stock move", "item_id", req.ItemID, "qty", req.Qty, "type", req.Type)

	result, err := h.inventoryService.RecordMove(c.Request.Context(), &req, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// DeleteMove cancels a stock move and reverts its effect on the level
// @Summary Delete stock move
// @Tags inventory
// @Produce json
// @Param id path uint true "Move ID"
// @Success 200 {object} models.StockLevel
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /inventory/moves/{id} [delete]
func (h *InventoryHandler) DeleteMove(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	level, err := h.inventoryService.DeleteMove(c.Request.Context(), id, currentActor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, level)
}

// @Summary List stock moves
// @Tags inventory
// @Produce json
// @Param id path uint true "Item ID"
// @Success 200 {array} models.StockMove
// @Failure 404 {object} ErrorResponse
// @Router /inventory/items/{id}/moves [get]
func (h *InventoryHandler) ListMoves(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	moves, err := h.inventoryService.ListMoves(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, moves)
}
