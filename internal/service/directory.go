package service

import (
	"context"
	"fmt"

	apperrors "showpro/internal/errors"
	"showpro/internal/logger"
	"showpro/internal/models"
	"showpro/internal/repository"
)

// Store - CRUD над одной таблицей справочника
type Store[T any] interface {
	List(ctx context.Context, q string) ([]T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Insert(ctx context.Context, item *T) error
	Update(ctx context.Context, id int64, item *T) error
	Delete(ctx context.Context, id int64) error
}

// Catalog is the CRUD service for one master-data table. When kind is set,
// writes are mirrored into the search index.
type Catalog[T any] struct {
	store Store[T]
	index SearchIndex
	name  string
	kind  string
}

func NewCatalog[T any](store Store[T], index SearchIndex, name, kind string) *Catalog[T] {
	return &Catalog[T]{store: store, index: index, name: name, kind: kind}
}

func (c *Catalog[T]) Name() string {
	return c.name
}

func (c *Catalog[T]) List(ctx context.Context, q string) ([]T, error) {
	items, err := c.store.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.name, err)
	}
	return items, nil
}

func (c *Catalog[T]) Get(ctx context.Context, id int64) (*T, error) {
	item, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", c.name, err)
	}
	if item == nil {
		return nil, apperrors.ErrNotFound
	}
	return item, nil
}

func (c *Catalog[T]) Create(ctx context.Context, item *T) (*T, error) {
	if err := c.store.Insert(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", c.name, err)
	}
	c.reindex(ctx, item)
	return item, nil
}

func (c *Catalog[T]) Update(ctx context.Context, id int64, item *T) (*T, error) {
	if err := c.store.Update(ctx, id, item); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", c.name, err)
	}
	c.reindex(ctx, item)
	return item, nil
}

func (c *Catalog[T]) Delete(ctx context.Context, id int64) error {
	if err := c.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", c.name, err)
	}
	if c.index != nil && c.kind != "" {
		if err := c.index.Delete(ctx, c.kind, id); err != nil {
			logger.WithContext(ctx).Error("Failed to remove document from search index",
				"error", err, "kind", c.kind, "id", id)
		}
	}
	return nil
}

func (c *Catalog[T]) reindex(ctx context.Context, item *T) {
	if c.index == nil || c.kind == "" {
		return
	}
	doc, ok := any(*item).(models.Indexable)
	if !ok {
		return
	}
	if err := c.index.Index(ctx, doc.SearchDoc()); err != nil {
		logger.WithContext(ctx).Error("Failed to index document",
			"error", err, "kind", c.kind, "id", doc.SearchDoc().ID)
	}
}

// Reindex пишет в индекс все записи справочника
func (c *Catalog[T]) Reindex(ctx context.Context) (int, error) {
	if c.index == nil || c.kind == "" {
		return 0, nil
	}
	items, err := c.store.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", c.name, err)
	}
	n := 0
	for i := range items {
		doc, ok := any(items[i]).(models.Indexable)
		if !ok {
			continue
		}
		if err := c.index.Index(ctx, doc.SearchDoc()); err != nil {
			return n, fmt.Errorf("failed to index %s: %w", c.name, err)
		}
		n++
	}
	return n, nil
}

type DirectoryService struct {
	Artists     *Catalog[models.Artist]
	Clients     *Catalog[models.Client]
	Venues      *Catalog[models.Venue]
	Locations   *Catalog[models.Location]
	Contacts    *Catalog[models.Contact]
	Suppliers   *Catalog[models.Supplier]
	Departments *Catalog[models.Department]
	Teams       *Catalog[models.Team]
	Series      *Catalog[models.Series]
	Terms       *Catalog[models.TermsTemplate]

	index SearchIndex
}

func NewDirectoryService(repos *repository.Repositories, index SearchIndex) *DirectoryService {
	return &DirectoryService{
		Artists:     NewCatalog[models.Artist](repos.Artists, index, "artist", "artist"),
		Clients:     NewCatalog[models.Client](repos.Clients, index, "client", "client"),
		Venues:      NewCatalog[models.Venue](repos.Venues, index, "venue", "venue"),
		Locations:   NewCatalog[models.Location](repos.Locations, index, "location", ""),
		Contacts:    NewCatalog[models.Contact](repos.Contacts, index, "contact", "contact"),
		Suppliers:   NewCatalog[models.Supplier](repos.Suppliers, index, "supplier", "supplier"),
		Departments: NewCatalog[models.Department](repos.Departments, index, "department", ""),
		Teams:       NewCatalog[models.Team](repos.Teams, index, "team", ""),
		Series:      NewCatalog[models.Series](repos.Series, index, "series", ""),
		Terms:       NewCatalog[models.TermsTemplate](repos.Terms, index, "terms template", ""),
		index:       index,
	}
}

// Search ищет по индексу справочников; без Elasticsearch возвращает пустой список
func (s *DirectoryService) Search(ctx context.Context, q string, kinds []string) ([]models.SearchDoc, error) {
	if s.index == nil || q == "" {
		return []models.SearchDoc{}, nil
	}
	docs, err := s.index.Search(ctx, q, kinds, 20)
	if err != nil {
		return nil, fmt.Errorf("failed to search directory: %w", err)
	}
	return docs, nil
}

// Reindex переиндексирует все справочники, попадающие в поиск
func (s *DirectoryService) Reindex(ctx context.Context) (int, error) {
	total := 0
	for _, reindex := range []func(context.Context) (int, error){
		s.Artists.Reindex, s.Clients.Reindex, s.Venues.Reindex, s.Contacts.Reindex, s.Suppliers.Reindex,
	} {
		n, err := reindex(ctx)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
