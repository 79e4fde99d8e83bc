package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/wms/backend/internal/application/inventory"
	"github.com/wms/backend/internal/interfaces/http/dto"
)

// InventoryHandler handles inventory endpoints
type InventoryHandler struct {
	BaseHandler
	inventoryService *inventoryapp.Service
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *inventoryapp.Service) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// Create handles POST /inventory
func (h *InventoryHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.inventoryService.CreateItem(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List handles GET /inventory. Pass below_min=true to list only items
// at or under their minimum stock level.
func (h *InventoryHandler) List(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BindingError(c, err)
		return
	}
	listReq.Normalize()

	filter := inventoryapp.ItemListFilter{
		Page:         listReq.Page,
		PageSize:     listReq.PageSize,
		OrderBy:      listReq.OrderBy,
		OrderDir:     listReq.OrderDir,
		Search:       listReq.Search,
		BelowMinOnly: c.Query("below_min") == "true",
	}

	items, total, err := h.inventoryService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// GetByID handles GET /inventory/:id
func (h *InventoryHandler) GetByID(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	resp, err := h.inventoryService.GetByID(c.Request.Context(), itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetBySKU handles GET /inventory/sku/:sku
func (h *InventoryHandler) GetBySKU(c *gin.Context) {
	resp, err := h.inventoryService.GetBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Restock handles POST /inventory/:id/restock
func (h *InventoryHandler) Restock(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	var req inventoryapp.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.inventoryService.Restock(c.Request.Context(), itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListMovements handles GET /inventory/:id/movements
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BindingError(c, err)
		return
	}
	listReq.Normalize()

	movements, err := h.inventoryService.ListMovements(c.Request.Context(), itemID, listReq.Page, listReq.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movements)
}

// RegisterRoutes registers inventory endpoints on the given router group
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/inventory")
	{
		items.POST("", h.Create)
		items.GET("", h.List)
		items.GET("/sku/:sku", h.GetBySKU)
		items.GET("/:id", h.GetByID)
		items.POST("/:id/restock", h.Restock)
		items.GET("/:id/movements", h.ListMovements)
	}
}
