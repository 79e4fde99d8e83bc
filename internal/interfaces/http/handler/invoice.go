package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/wms/backend/internal/application/billing"
	"github.com/wms/backend/internal/domain/billing"
	"github.com/wms/backend/internal/interfaces/http/dto"
)

// InvoiceHandler handles billing endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.Service
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.Service) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BindingError(c, err)
		return
	}
	listReq.Normalize()

	filter := billingapp.InvoiceListFilter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
	}

	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID format")
			return
		}
		filter.CustomerID = &customerID
	}
	if raw := c.Query("status"); raw != "" {
		status := billing.InvoiceStatus(raw)
		if !status.IsValid() {
			h.BadRequest(c, "Unknown invoice status")
			return
		}
		filter.Status = &status
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// GetByID handles GET /invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	resp, err := h.invoiceService.GetByID(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByOrder handles GET /orders/:id/invoice
func (h *InvoiceHandler) GetByOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := h.invoiceService.GetByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GenerateForOrder handles POST /orders/:id/invoice. Generation is
// idempotent: if the order already has an invoice it is returned as-is.
func (h *InvoiceHandler) GenerateForOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := h.invoiceService.GenerateForOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// MarkPaid handles POST /invoices/:id/pay
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	resp, err := h.invoiceService.MarkPaid(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RegisterRoutes registers invoice endpoints on the given router group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.GET("", h.List)
		invoices.GET("/:id", h.GetByID)
		invoices.POST("/:id/pay", h.MarkPaid)
	}

	orders := rg.Group("/orders")
	{
		orders.GET("/:id/invoice", h.GetByOrder)
		orders.POST("/:id/invoice", h.GenerateForOrder)
	}
}
