package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gestar-hq/gestar-service/internal/domain"
)

// CatalogRepository manages the hierarchical reference-data tables. Items form
// an arena-style flat table with integer ids and a nullable parent pointer.
type CatalogRepository interface {
	GetCatalogByCode(ctx context.Context, code string) (*domain.Catalog, error)
	CreateCatalog(ctx context.Context, catalog *domain.Catalog) error

	GetItemByID(ctx context.Context, id int64) (*domain.CatalogItem, error)
	// FindItem locates an item by its natural key (catalog, label, parent).
	FindItem(ctx context.Context, catalogID int64, label string, parentItemID *int64) (*domain.CatalogItem, error)
	FindRootItemByLabel(ctx context.Context, catalogID int64, label string) (*domain.CatalogItem, error)
	InsertItem(ctx context.Context, item *domain.CatalogItem) error
	UpdateItem(ctx context.Context, id int64, update domain.CatalogItemUpdate, updatedAt time.Time) error

	ListRootItems(ctx context.Context, catalogID int64, includeInactive bool) ([]domain.CatalogItem, error)
	ListChildren(ctx context.Context, parentItemID int64, includeInactive bool) ([]domain.CatalogItem, error)
	// CategoryTree returns every (category, subcategory) pairing of a catalog
	// with a single join, childless categories included.
	CategoryTree(ctx context.Context, catalogID int64, includeInactive bool) ([]CategoryTreeRow, error)
}

// CategoryTreeRow is one row of the category tree join. Subcategory is nil for
// a category without children.
type CategoryTreeRow struct {
	Category    string
	Subcategory *string
}

type catalogRepository struct {
	db DBTX
}

// NewCatalogRepository builds the repository.
func NewCatalogRepository(db DBTX) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetCatalogByCode(ctx context.Context, code string) (*domain.Catalog, error) {
	const query = `SELECT id, code, label, activo, created_at FROM master_catalogs WHERE code=$1`
	var catalog domain.Catalog
	if err := r.db.QueryRow(ctx, query, code).Scan(
		&catalog.ID,
		&catalog.Code,
		&catalog.Label,
		&catalog.Active,
		&catalog.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (r *catalogRepository) CreateCatalog(ctx context.Context, catalog *domain.Catalog) error {
	const query = `
        INSERT INTO master_catalogs (code, label, activo)
        VALUES ($1,$2,$3)
        ON CONFLICT (code) DO UPDATE SET label=EXCLUDED.label
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		catalog.Code,
		catalog.Label,
		catalog.Active,
	).Scan(&catalog.ID, &catalog.CreatedAt)
}

const catalogItemColumns = `id, catalog_id, label, sort_order, activo, parent_item_id, created_at, updated_at`

func (r *catalogRepository) GetItemByID(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM master_catalog_items WHERE id=$1`, catalogItemColumns)
	var item domain.CatalogItem
	if err := scanCatalogItem(r.db.QueryRow(ctx, query, id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *catalogRepository) FindItem(ctx context.Context, catalogID int64, label string, parentItemID *int64) (*domain.CatalogItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM master_catalog_items WHERE catalog_id=$1 AND label=$2 AND parent_item_id IS NOT DISTINCT FROM $3`, catalogItemColumns)
	var item domain.CatalogItem
	if err := scanCatalogItem(r.db.QueryRow(ctx, query, catalogID, label, parentItemID), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *catalogRepository) FindRootItemByLabel(ctx context.Context, catalogID int64, label string) (*domain.CatalogItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM master_catalog_items WHERE catalog_id=$1 AND label=$2 AND parent_item_id IS NULL`, catalogItemColumns)
	var item domain.CatalogItem
	if err := scanCatalogItem(r.db.QueryRow(ctx, query, catalogID, label), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *catalogRepository) InsertItem(ctx context.Context, item *domain.CatalogItem) error {
	const query = `
        INSERT INTO master_catalog_items (catalog_id, label, sort_order, activo, parent_item_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		item.CatalogID,
		item.Label,
		item.SortOrder,
		item.Active,
		item.ParentItemID,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *catalogRepository) UpdateItem(ctx context.Context, id int64, update domain.CatalogItemUpdate, updatedAt time.Time) error {
	sets := []string{}
	args := []any{}

	if update.Label != nil {
		args = append(args, *update.Label)
		sets = append(sets, fmt.Sprintf("label=$%d", len(args)))
	}
	if update.SortOrder != nil {
		args = append(args, *update.SortOrder)
		sets = append(sets, fmt.Sprintf("sort_order=$%d", len(args)))
	}
	if update.Active != nil {
		args = append(args, *update.Active)
		sets = append(sets, fmt.Sprintf("activo=$%d", len(args)))
	}
	args = append(args, updatedAt)
	sets = append(sets, fmt.Sprintf("updated_at=$%d", len(args)))

	args = append(args, id)
	query := fmt.Sprintf("UPDATE master_catalog_items SET %s WHERE id=$%d", strings.Join(sets, ", "), len(args))

	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *catalogRepository) ListRootItems(ctx context.Context, catalogID int64, includeInactive bool) ([]domain.CatalogItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM master_catalog_items WHERE catalog_id=$1 AND parent_item_id IS NULL`, catalogItemColumns)
	if !includeInactive {
		query += ` AND activo = TRUE`
	}
	query += ` ORDER BY sort_order ASC, label ASC`
	return r.listItems(ctx, query, catalogID)
}

func (r *catalogRepository) ListChildren(ctx context.Context, parentItemID int64, includeInactive bool) ([]domain.CatalogItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM master_catalog_items WHERE parent_item_id=$1`, catalogItemColumns)
	if !includeInactive {
		query += ` AND activo = TRUE`
	}
	query += ` ORDER BY sort_order ASC, label ASC`
	return r.listItems(ctx, query, parentItemID)
}

func (r *catalogRepository) CategoryTree(ctx context.Context, catalogID int64, includeInactive bool) ([]CategoryTreeRow, error) {
	query := `
        SELECT parent.label, child.label
        FROM master_catalog_items parent
        LEFT JOIN master_catalog_items child
            ON child.parent_item_id = parent.id`
	if !includeInactive {
		query += ` AND child.activo = TRUE`
	}
	query += `
        WHERE parent.catalog_id=$1 AND parent.parent_item_id IS NULL`
	if !includeInactive {
		query += ` AND parent.activo = TRUE`
	}
	query += ` ORDER BY parent.sort_order, parent.label, child.sort_order, child.label`

	rows, err := r.db.Query(ctx, query, catalogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategoryTreeRow
	for rows.Next() {
		var row CategoryTreeRow
		if err := rows.Scan(&row.Category, &row.Subcategory); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *catalogRepository) listItems(ctx context.Context, query string, arg any) ([]domain.CatalogItem, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CatalogItem
	for rows.Next() {
		var item domain.CatalogItem
		if err := scanCatalogItem(rows, &item); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func scanCatalogItem(row pgx.Row, item *domain.CatalogItem) error {
	return row.Scan(
		&item.ID,
		&item.CatalogID,
		&item.Label,
		&item.SortOrder,
		&item.Active,
		&item.ParentItemID,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
}
