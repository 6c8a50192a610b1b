package domain

import "time"

// Catalog codes for the controlled vocabularies seeded at first startup.
const (
	CatalogAreas       = "areas"
	CatalogPrioridades = "prioridades"
	CatalogCategorias  = "categorias"
	CatalogDivisiones  = "divisiones"
	CatalogPlantas     = "plantas"
	CatalogRoles       = "roles"
)

// Catalog is a named controlled vocabulary.
type Catalog struct {
	ID        int64
	Code      string
	Label     string
	Active    bool
	CreatedAt time.Time
}

// CatalogItem is one entry in a catalog. Items may reference a parent item in
// the same catalog for one level of nesting (category/subcategory).
type CatalogItem struct {
	ID           int64
	CatalogID    int64
	Label        string
	SortOrder    int
	Active       bool
	ParentItemID *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CatalogItemUpdate carries the mutable fields of a catalog item. Updates are
// restricted to this allow-list.
type CatalogItemUpdate struct {
	Label     *string
	SortOrder *int
	Active    *bool
}

// Empty reports whether no field change was requested.
func (u CatalogItemUpdate) Empty() bool {
	return u.Label == nil && u.SortOrder == nil && u.Active == nil
}
