package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopfront/internal/domain"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /api/categories
func (h *CategoryHandler) Home(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories()
	if err != nil {
		return fail(c, "categories.list", err)
	}
	return c.JSON(cats)
}

// GET /api/categories/:id lists the active products in one category.
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cat, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "category")
	}
	products, err := h.Catalog.Browse(domain.ProductFilter{Category: cat})
	if err != nil {
		return fail(c, "categories.products", err)
	}
	return c.JSON(fiber.Map{"category": cat, "products": products})
}
