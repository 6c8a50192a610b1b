package dto

import "time"

// CreateCatalogItemRequest payload.
type CreateCatalogItemRequest struct {
	CatalogCode string  `json:"catalog_code"`
	Label       string  `json:"label"`
	SortOrder   int     `json:"sort_order"`
	ParentLabel *string `json:"parent_label"`
}

// UpdateCatalogItemRequest payload. Absent fields stay untouched.
type UpdateCatalogItemRequest struct {
	Label     *string `json:"label"`
	SortOrder *int    `json:"sort_order"`
	Active    *bool   `json:"active"`
}

// CatalogItemResponse represents one catalog entry.
type CatalogItemResponse struct {
	ID           int64     `json:"id"`
	Label        string    `json:"label"`
	SortOrder    int       `json:"sort_order"`
	Active       bool      `json:"active"`
	ParentItemID *int64    `json:"parent_item_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
