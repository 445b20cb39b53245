package handlers

import (
	"context"
	"net/http"

	"showpro/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Catalog - CRUD сервис одного справочника
type Catalog[T any] interface {
	Name() string
	List(ctx context.Context, q string) ([]T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, id int64, item *T) (*T, error)
	Delete(ctx context.Context, id int64) error
}

type catalogHandlers[T any] struct {
	svc Catalog[T]
}

// RegisterCatalog вешает на group CRUD роуты справочника под path.
// Права проверяются по resource.
func RegisterCatalog[T any](group *gin.RouterGroup, path, resource string, svc Catalog[T]) *gin.RouterGroup {
	h := catalogHandlers[T]{svc: svc}
	g := group.Group(path, middleware.RequirePermission(resource))
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	return g
}

// list - GET /api/{catalog}?q=
// Список записей справочника с фильтром по имени
func (h catalogHandlers[T]) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		handleServiceError(c, err, "Failed to list "+h.svc.Name())
		return
	}
	c.JSON(http.StatusOK, items)
}

// get - GET /api/{catalog}/:id
func (h catalogHandlers[T]) get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Failed to get "+h.svc.Name())
		return
	}
	c.JSON(http.StatusOK, item)
}

// create - POST /api/{catalog}
func (h catalogHandlers[T]) create(c *gin.Context) {
	var item T
	if !bindJSON(c, &item) {
		return
	}
	created, err := h.svc.Create(c.Request.Context(), &item)
	if err != nil {
		handleServiceError(c, err, "Failed to create "+h.svc.Name())
		return
	}
	c.JSON(http.StatusCreated, created)
}

// update - PUT /api/{catalog}/:id
func (h catalogHandlers[T]) update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var item T
	if !bindJSON(c, &item) {
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), id, &item)
	if err != nil {
		handleServiceError(c, err, "Failed to update "+h.svc.Name())
		return
	}
	c.JSON(http.StatusOK, updated)
}

// delete - DELETE /api/{catalog}/:id
func (h catalogHandlers[T]) delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "Failed to delete "+h.svc.Name())
		return
	}
	c.Status(http.StatusNoContent)
}
