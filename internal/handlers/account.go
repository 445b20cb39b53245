package handlers

import (
	"net/http"
	"strings"

	"showpro/internal/access"
	"showpro/internal/models"

	"github.com/gin-gonic/gin"
)

// Me - GET /api/me
// Текущий пользователь, его роль и права
func (h *Handlers) Me(c *gin.Context) {
	me, err := h.roles.Me(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to resolve user")
		return
	}
	c.JSON(http.StatusOK, me)
}

// Permissions - GET /api/permissions
// Матрица прав: ресурс x роль -> действия
func (h *Handlers) Permissions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"roles":   access.Roles(),
		"actions": access.Actions(),
		"matrix":  access.Matrix(),
	})
}

// ListRoles - GET /api/roles
func (h *Handlers) ListRoles(c *gin.Context) {
	roles, err := h.roles.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to list roles")
		return
	}
	c.JSON(http.StatusOK, roles)
}

// AssignRole - PUT /api/roles/:userID
// Назначить роль пользователю
func (h *Handlers) AssignRole(c *gin.Context) {
	var req models.AssignRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	role, err := h.roles.Assign(c.Request.Context(), c.Param("userID"), &req)
	if err != nil {
		handleServiceError(c, err, "Failed to assign role")
		return
	}
	c.JSON(http.StatusOK, role)
}

// Search - GET /api/search?q=&kinds=artist,client
// Поиск по справочникам
func (h *Handlers) Search(c *gin.Context) {
	var kinds []string
	if raw := c.Query("kinds"); raw != "" {
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				kinds = append(kinds, k)
			}
		}
	}

	docs, err := h.search.Search(c.Request.Context(), strings.TrimSpace(c.Query("q")), kinds)
	if err != nil {
		handleServiceError(c, err, "Failed to search")
		return
	}
	c.JSON(http.StatusOK, docs)
}

// GetDashboard - GET /api/dashboard
// Сводка: бронирования по неделям и статусам, прибыль по месяцам, депозиты
func (h *Handlers) GetDashboard(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, summary)
}
