package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/gestar-hq/gestar-service/internal/api/dto"
	"github.com/gestar-hq/gestar-service/internal/domain"
	"github.com/gestar-hq/gestar-service/internal/service"
	apperrors "github.com/gestar-hq/gestar-service/pkg/util"
)

// CatalogsHandler exposes the configurable vocabularies.
type CatalogsHandler struct {
	catalogs *service.CatalogService
}

// NewCatalogsHandler constructs handler.
func NewCatalogsHandler(catalogs *service.CatalogService) *CatalogsHandler {
	return &CatalogsHandler{catalogs: catalogs}
}

// ListItems GET /catalogs/:code/items.
func (h *CatalogsHandler) ListItems(c *fiber.Ctx) error {
	includeInactive := c.QueryBool("include_inactive")
	labels, err := h.catalogs.ListItems(c.Context(), c.Params("code"), includeInactive)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": labels})
}

// ListChildren GET /catalogs/:code/items/:label/children.
func (h *CatalogsHandler) ListChildren(c *fiber.Ctx) error {
	label, err := decodeParam(c, "label")
	if err != nil {
		return err
	}
	includeInactive := c.QueryBool("include_inactive")
	labels, err := h.catalogs.ListChildren(c.Context(), c.Params("code"), label, includeInactive)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": labels})
}

// CategoryTree GET /catalogs/categories/tree.
func (h *CatalogsHandler) CategoryTree(c *fiber.Ctx) error {
	includeInactive := c.QueryBool("include_inactive")
	tree, err := h.catalogs.ListCategoryTree(c.Context(), includeInactive)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": tree})
}

// CreateItem POST /catalogs/:code/items. Administrator only.
func (h *CatalogsHandler) CreateItem(c *fiber.Ctx) error {
	var req dto.CreateCatalogItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	code := c.Params("code")
	if req.CatalogCode != "" {
		code = req.CatalogCode
	}

	var parentItemID *int64
	if req.ParentLabel != nil && *req.ParentLabel != "" {
		parent, err := h.catalogs.ResolveRootItem(c.Context(), code, *req.ParentLabel)
		if err != nil {
			return err
		}
		parentItemID = &parent.ID
	}

	item, err := h.catalogs.CreateItem(c.Context(), code, req.Label, req.SortOrder, parentItemID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": catalogItemResponse(item)})
}

// UpdateItem PATCH /catalog-items/:id. Administrator only.
func (h *CatalogsHandler) UpdateItem(c *fiber.Ctx) error {
	itemID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCatalogItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	update := domain.CatalogItemUpdate{
		Label:     req.Label,
		SortOrder: req.SortOrder,
		Active:    req.Active,
	}
	if err := h.catalogs.UpdateItem(c.Context(), itemID, update); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func decodeParam(c *fiber.Ctx, name string) (string, error) {
	val, err := url.PathUnescape(c.Params(name))
	if err != nil || val == "" {
		return "", apperrors.NewValidationError("invalid "+name, nil)
	}
	return val, nil
}

func catalogItemResponse(item *domain.CatalogItem) dto.CatalogItemResponse {
	return dto.CatalogItemResponse{
		ID:           item.ID,
		Label:        item.Label,
		SortOrder:    item.SortOrder,
		Active:       item.Active,
		ParentItemID: item.ParentItemID,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}
