package handlers

import (
	"net/http"

	"showpro/internal/models"

	"github.com/gin-gonic/gin"
)

// Invoices handlers

// ListInvoices - GET /api/invoices
func (h *Handlers) ListInvoices(c *gin.Context) {
	invoices, err := h.finance.ListInvoices(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to list invoices")
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// GetInvoice - GET /api/invoices/:id
func (h *Handlers) GetInvoice(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	invoice, err := h.finance.GetInvoice(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Failed to get invoice")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// CreateInvoice - POST /api/invoices
// Счет на одно бронирование
func (h *Handlers) CreateInvoice(c *gin.Context) {
	var req models.CreateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := h.finance.CreateInvoice(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "Failed to create invoice")
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

type markPaidRequest struct {
	Paid models.FlexibleBool `json:"paid"`
}

// MarkInvoicePaid - PUT /api/invoices/:id/paid
func (h *Handlers) MarkInvoicePaid(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req markPaidRequest
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := h.finance.MarkPaid(c.Request.Context(), id, req.Paid.Bool())
	if err != nil {
		handleServiceError(c, err, "Failed to update invoice")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// InvoiceDocument - GET /api/invoices/:id/document?format=html|pdf
// Печатная форма счета
func (h *Handlers) InvoiceDocument(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.finance.RenderInvoice(c.Request.Context(), id, c.Query("format"))
	if err != nil {
		handleServiceError(c, err, "Failed to render invoice")
		return
	}
	attachment(c, doc, c.Query("download") == "")
}

// ListBatches - GET /api/invoice-batches
func (h *Handlers) ListBatches(c *gin.Context) {
	batches, err := h.finance.ListBatches(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to list invoice batches")
		return
	}
	c.JSON(http.StatusOK, batches)
}

// GetBatch - GET /api/invoice-batches/:id
func (h *Handlers) GetBatch(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	batch, err := h.finance.GetBatch(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Failed to get invoice batch")
		return
	}
	c.JSON(http.StatusOK, batch)
}

// CreateBatch - POST /api/invoice-batches
// VAR счет клиенту на несколько бронирований
func (h *Handlers) CreateBatch(c *gin.Context) {
	var req models.CreateBatchRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.finance.CreateBatch(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "Failed to create invoice batch")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Payments handlers

// ListPayments - GET /api/payments
func (h *Handlers) ListPayments(c *gin.Context) {
	payments, err := h.finance.ListPayments(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, payments)
}

// GetPayment - GET /api/payments/:id
func (h *Handlers) GetPayment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	payment, err := h.finance.GetPayment(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Failed to get payment")
		return
	}
	c.JSON(http.StatusOK, payment)
}

// RecordPayment - POST /api/payments
// Платеж in отмечает client_paid, out - artist_paid
func (h *Handlers) RecordPayment(c *gin.Context) {
	var req models.Payment
	if !bindJSON(c, &req) {
		return
	}
	payment, err := h.finance.RecordPayment(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "Failed to record payment")
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// DeletePayment - DELETE /api/payments/:id
func (h *Handlers) DeletePayment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.finance.DeletePayment(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "Failed to delete payment")
		return
	}
	c.Status(http.StatusNoContent)
}
