package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestar-hq/gestar-service/internal/domain"
	apperrors "github.com/gestar-hq/gestar-service/pkg/util"
)

type catalogFixture struct {
	store *fakeStore
	svc   *CatalogService
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	store := newFakeStore()
	svc := NewCatalogService(CatalogDependencies{Store: store})
	_, err := svc.EnsureCatalog(context.Background(), domain.CatalogCategorias, "Categorías")
	require.NoError(t, err)
	_, err = svc.EnsureCatalog(context.Background(), domain.CatalogAreas, "Áreas")
	require.NoError(t, err)
	return &catalogFixture{store: store, svc: svc}
}

func (f *catalogFixture) addItem(t *testing.T, code, label string, order int, parent *int64) *domain.CatalogItem {
	t.Helper()
	item, err := f.svc.CreateItem(context.Background(), code, label, order, parent)
	require.NoError(t, err)
	return item
}

func TestCreateItemUpsertOnNaturalKey(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	first := f.addItem(t, domain.CatalogAreas, "IT", 0, nil)
	second := f.addItem(t, domain.CatalogAreas, "IT", 7, nil)

	assert.Equal(t, first.ID, second.ID, "same natural key must not duplicate")
	assert.Equal(t, 7, second.SortOrder)

	labels, err := f.svc.ListItems(ctx, domain.CatalogAreas, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"IT"}, labels)
}

func TestCreateItemReactivatesDeactivated(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	item := f.addItem(t, domain.CatalogAreas, "Calidad", 0, nil)
	inactive := false
	require.NoError(t, f.svc.UpdateItem(ctx, item.ID, domain.CatalogItemUpdate{Active: &inactive}))

	labels, err := f.svc.ListItems(ctx, domain.CatalogAreas, false)
	require.NoError(t, err)
	assert.Empty(t, labels)

	revived := f.addItem(t, domain.CatalogAreas, "Calidad", 0, nil)
	assert.Equal(t, item.ID, revived.ID)
	assert.True(t, revived.Active)

	labels, err = f.svc.ListItems(ctx, domain.CatalogAreas, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Calidad"}, labels)
}

func TestCreateItemParentChecks(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	hardware := f.addItem(t, domain.CatalogCategorias, "Hardware", 0, nil)
	printers := f.addItem(t, domain.CatalogCategorias, "Impresoras", 0, &hardware.ID)

	// a child may not become a parent
	_, err := f.svc.CreateItem(ctx, domain.CatalogCategorias, "Láser", 0, &printers.ID)
	assert.True(t, apperrors.IsValidation(err))

	// cross-catalog parents are rejected
	area := f.addItem(t, domain.CatalogAreas, "IT", 0, nil)
	_, err = f.svc.CreateItem(ctx, domain.CatalogCategorias, "Redes", 0, &area.ID)
	assert.True(t, apperrors.IsValidation(err))

	// missing parent
	missing := int64(999)
	_, err = f.svc.CreateItem(ctx, domain.CatalogCategorias, "Otros", 0, &missing)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateItemValidation(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateItem(ctx, domain.CatalogAreas, "   ", 0, nil)
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.CreateItem(ctx, "desconocido", "X", 0, nil)
	assert.True(t, apperrors.IsValidation(err))
}

func TestListItemsOrderedBySortOrder(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	f.addItem(t, domain.CatalogAreas, "Producción", 2, nil)
	f.addItem(t, domain.CatalogAreas, "IT", 0, nil)
	f.addItem(t, domain.CatalogAreas, "Mantenimiento", 1, nil)

	labels, err := f.svc.ListItems(ctx, domain.CatalogAreas, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"IT", "Mantenimiento", "Producción"}, labels)
}

func TestListCategoryTree(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	hardware := f.addItem(t, domain.CatalogCategorias, "Hardware", 0, nil)
	f.addItem(t, domain.CatalogCategorias, "Impresoras", 0, &hardware.ID)
	f.addItem(t, domain.CatalogCategorias, "Notebooks", 1, &hardware.ID)
	calidad := f.addItem(t, domain.CatalogCategorias, "Calidad", 1, nil)
	f.addItem(t, domain.CatalogCategorias, "No Conformidad", 0, &calidad.ID)
	f.addItem(t, domain.CatalogCategorias, "Infraestructura", 2, nil)

	tree, err := f.svc.ListCategoryTree(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"Impresoras", "Notebooks"}, tree["Hardware"])
	assert.Equal(t, []string{"No Conformidad"}, tree["Calidad"])
	childless, ok := tree["Infraestructura"]
	require.True(t, ok, "childless categories stay in the tree")
	assert.Empty(t, childless)
}

func TestListCategoryTreeFiltersInactive(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	hardware := f.addItem(t, domain.CatalogCategorias, "Hardware", 0, nil)
	printers := f.addItem(t, domain.CatalogCategorias, "Impresoras", 0, &hardware.ID)
	f.addItem(t, domain.CatalogCategorias, "Notebooks", 1, &hardware.ID)

	inactive := false
	require.NoError(t, f.svc.UpdateItem(ctx, printers.ID, domain.CatalogItemUpdate{Active: &inactive}))

	tree, err := f.svc.ListCategoryTree(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Notebooks"}, tree["Hardware"])

	all, err := f.svc.ListCategoryTree(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Impresoras", "Notebooks"}, all["Hardware"])
}

func TestListChildrenByLabel(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	software := f.addItem(t, domain.CatalogCategorias, "Software", 0, nil)
	f.addItem(t, domain.CatalogCategorias, "ERP", 0, &software.ID)
	f.addItem(t, domain.CatalogCategorias, "Accesos", 1, &software.ID)

	children, err := f.svc.ListChildren(ctx, domain.CatalogCategorias, "Software", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"ERP", "Accesos"}, children)

	_, err = f.svc.ListChildren(ctx, domain.CatalogCategorias, "Inexistente", false)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateItem(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	item := f.addItem(t, domain.CatalogAreas, "RRHH", 0, nil)

	// an empty update set is a silent no-op
	require.NoError(t, f.svc.UpdateItem(ctx, item.ID, domain.CatalogItemUpdate{}))

	blank := "  "
	err := f.svc.UpdateItem(ctx, item.ID, domain.CatalogItemUpdate{Label: &blank})
	assert.True(t, apperrors.IsValidation(err))

	renamed := "Recursos Humanos"
	require.NoError(t, f.svc.UpdateItem(ctx, item.ID, domain.CatalogItemUpdate{Label: &renamed}))
	labels, err := f.svc.ListItems(ctx, domain.CatalogAreas, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Recursos Humanos"}, labels)

	active := true
	err = f.svc.UpdateItem(ctx, 999, domain.CatalogItemUpdate{Active: &active})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestResolveRootItem(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	created := f.addItem(t, domain.CatalogCategorias, "Hardware", 0, nil)
	resolved, err := f.svc.ResolveRootItem(ctx, domain.CatalogCategorias, "Hardware")
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)

	_, err = f.svc.ResolveRootItem(ctx, domain.CatalogCategorias, "Nada")
	assert.True(t, apperrors.IsNotFound(err))
}
