package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gestar-hq/gestar-service/internal/cache"
	"github.com/gestar-hq/gestar-service/internal/domain"
	"github.com/gestar-hq/gestar-service/internal/repository"
	apperrors "github.com/gestar-hq/gestar-service/pkg/util"
)

// CatalogService owns the controlled vocabularies: catalogs of items with one
// level of nesting (category/subcategory).
type CatalogService struct {
	store repository.Store
	cache cache.ViewCache
	now   func() time.Time
}

// CatalogDependencies bundles collaborators for the catalog store.
type CatalogDependencies struct {
	Store repository.Store
	Cache cache.ViewCache
	Now   func() time.Time
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	viewCache := deps.Cache
	if viewCache == nil {
		viewCache = cache.NoopViewCache{}
	}
	return &CatalogService{store: deps.Store, cache: viewCache, now: now}
}

// ListItems returns the ordered root item labels of a catalog.
func (s *CatalogService) ListItems(ctx context.Context, catalogCode string, includeInactive bool) ([]string, error) {
	key := fmt.Sprintf("%s%s:roots:%t", cache.PrefixCatalog, catalogCode, includeInactive)
	var cached []string
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	catalog, err := s.catalogByCode(ctx, catalogCode)
	if err != nil {
		return nil, err
	}
	items, err := s.store.Catalogs().ListRootItems(ctx, catalog.ID, includeInactive)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	labels := itemLabels(items)
	s.cache.Set(ctx, key, labels)
	return labels, nil
}

// ListChildren returns the ordered child labels under a root item, addressed
// by label.
func (s *CatalogService) ListChildren(ctx context.Context, catalogCode, parentLabel string, includeInactive bool) ([]string, error) {
	catalog, err := s.catalogByCode(ctx, catalogCode)
	if err != nil {
		return nil, err
	}
	parent, err := s.store.Catalogs().FindRootItemByLabel(ctx, catalog.ID, parentLabel)
	if err != nil {
		return nil, notFoundOrStorage(err, "catalog item")
	}
	return s.ListChildrenByID(ctx, parent.ID, includeInactive)
}

// ListChildrenByID returns the ordered child labels under a parent item id.
func (s *CatalogService) ListChildrenByID(ctx context.Context, parentItemID int64, includeInactive bool) ([]string, error) {
	items, err := s.store.Catalogs().ListChildren(ctx, parentItemID, includeInactive)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return itemLabels(items), nil
}

// ResolveRootItem looks up a root-level item by label within a catalog.
func (s *CatalogService) ResolveRootItem(ctx context.Context, catalogCode, label string) (*domain.CatalogItem, error) {
	catalog, err := s.catalogByCode(ctx, catalogCode)
	if err != nil {
		return nil, err
	}
	item, err := s.store.Catalogs().FindRootItemByLabel(ctx, catalog.ID, label)
	if err != nil {
		return nil, notFoundOrStorage(err, "catalog item")
	}
	return item, nil
}

// ListCategoryTree maps every category label to its ordered subcategory
// labels, built from a single join rather than one lookup per category.
func (s *CatalogService) ListCategoryTree(ctx context.Context, includeInactive bool) (map[string][]string, error) {
	key := fmt.Sprintf("%s%s:tree:%t", cache.PrefixCatalog, domain.CatalogCategorias, includeInactive)
	var cached map[string][]string
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	catalog, err := s.catalogByCode(ctx, domain.CatalogCategorias)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.Catalogs().CategoryTree(ctx, catalog.ID, includeInactive)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	tree := make(map[string][]string, len(rows))
	for _, row := range rows {
		if _, ok := tree[row.Category]; !ok {
			tree[row.Category] = []string{}
		}
		if row.Subcategory != nil {
			tree[row.Category] = append(tree[row.Category], *row.Subcategory)
		}
	}
	s.cache.Set(ctx, key, tree)
	return tree, nil
}

// CreateItem upserts a catalog item on its natural key (catalog, label,
// parent): an existing row gets its sort order refreshed and is reactivated,
// so re-seeding never duplicates.
func (s *CatalogService) CreateItem(ctx context.Context, catalogCode, label string, sortOrder int, parentItemID *int64) (*domain.CatalogItem, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, apperrors.NewValidationError("label required", nil)
	}
	catalog, err := s.catalogByCode(ctx, catalogCode)
	if err != nil {
		return nil, err
	}

	if parentItemID != nil {
		parent, err := s.store.Catalogs().GetItemByID(ctx, *parentItemID)
		if err != nil {
			return nil, notFoundOrStorage(err, "parent catalog item")
		}
		if parent.CatalogID != catalog.ID {
			return nil, apperrors.NewValidationError("parent item belongs to another catalog", nil)
		}
		// depth is capped at two levels: a child may not become a parent
		if parent.ParentItemID != nil {
			return nil, apperrors.NewValidationError("parent item is itself a child; nesting is one level deep", nil)
		}
	}

	var item *domain.CatalogItem
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		existing, err := tx.Catalogs().FindItem(ctx, catalog.ID, label, parentItemID)
		if err == nil {
			active := true
			update := domain.CatalogItemUpdate{SortOrder: &sortOrder, Active: &active}
			if err := tx.Catalogs().UpdateItem(ctx, existing.ID, update, s.now()); err != nil {
				return apperrors.NewStorageError(err)
			}
			existing.SortOrder = sortOrder
			existing.Active = true
			item = existing
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewStorageError(err)
		}

		created := &domain.CatalogItem{
			CatalogID:    catalog.ID,
			Label:        label,
			SortOrder:    sortOrder,
			Active:       true,
			ParentItemID: parentItemID,
		}
		if err := tx.Catalogs().InsertItem(ctx, created); err != nil {
			return apperrors.NewStorageError(err)
		}
		item = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.PrefixCatalog)
	return item, nil
}

// UpdateItem applies a partial update restricted to the allow-listed mutable
// fields. An empty update set is a silent no-op.
func (s *CatalogService) UpdateItem(ctx context.Context, itemID int64, update domain.CatalogItemUpdate) error {
	if update.Empty() {
		return nil
	}
	if update.Label != nil && strings.TrimSpace(*update.Label) == "" {
		return apperrors.NewValidationError("label required", nil)
	}
	if err := s.store.Catalogs().UpdateItem(ctx, itemID, update, s.now()); err != nil {
		return notFoundOrStorage(err, "catalog item")
	}
	s.cache.Invalidate(ctx, cache.PrefixCatalog)
	return nil
}

// EnsureCatalog upserts a catalog header row.
func (s *CatalogService) EnsureCatalog(ctx context.Context, code, label string) (*domain.Catalog, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperrors.NewValidationError("catalog code required", nil)
	}
	catalog := &domain.Catalog{Code: code, Label: label, Active: true}
	if err := s.store.Catalogs().CreateCatalog(ctx, catalog); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	s.cache.Invalidate(ctx, cache.PrefixCatalog)
	return catalog, nil
}

func (s *CatalogService) catalogByCode(ctx context.Context, code string) (*domain.Catalog, error) {
	catalog, err := s.store.Catalogs().GetCatalogByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("unknown catalog code", map[string]any{"code": code})
		}
		return nil, apperrors.NewStorageError(err)
	}
	return catalog, nil
}

func itemLabels(items []domain.CatalogItem) []string {
	labels := make([]string, 0, len(items))
	for _, item := range items {
		labels = append(labels, item.Label)
	}
	return labels
}
