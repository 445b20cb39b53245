package handlers

import (
	"net/http"

	"showpro/internal/models"

	"github.com/gin-gonic/gin"
)

// Email queue handlers

// ListEmails - GET /api/emails?approved=&sent=
func (h *Handlers) ListEmails(c *gin.Context) {
	var f models.EmailFilter
	var ok bool
	if f.Approved, ok = boolQuery(c, "approved"); !ok {
		return
	}
	if f.Sent, ok = boolQuery(c, "sent"); !ok {
		return
	}

	items, err := h.emails.List(c.Request.Context(), f)
	if err != nil {
		handleServiceError(c, err, "Failed to list emails")
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetEmail - GET /api/emails/:id
func (h *Handlers) GetEmail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	item, err := h.emails.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Failed to get email")
		return
	}
	c.JSON(http.StatusOK, item)
}

// QueueEmail - POST /api/emails
// Поставить письмо в очередь
func (h *Handlers) QueueEmail(c *gin.Context) {
	var req models.EmailQueueItem
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.emails.Queue(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err, "Failed to queue email")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateEmail - PUT /api/emails/:id
func (h *Handlers) UpdateEmail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.EmailQueueItem
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.emails.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err, "Failed to update email")
		return
	}
	c.JSON(http.StatusOK, item)
}

// ApproveEmail - PUT /api/emails/:id/approve
func (h *Handlers) ApproveEmail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.ApproveEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.emails.Approve(c.Request.Context(), id, req.Approved.Bool())
	if err != nil {
		handleServiceError(c, err, "Failed to approve email")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteEmail - DELETE /api/emails/:id
func (h *Handlers) DeleteEmail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.emails.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "Failed to delete email")
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkEmailsSent - POST /api/emails/mark-sent
// Отметить письма отправленными: все или ни одного
func (h *Handlers) MarkEmailsSent(c *gin.Context) {
	var req models.MarkSentRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.emails.MarkSent(c.Request.Context(), req.IDs)
	if err != nil {
		handleServiceError(c, err, "Failed to mark emails sent")
		return
	}
	c.JSON(http.StatusOK, resp)
}
