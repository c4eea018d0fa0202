package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"shopfront/internal/domain"
	"shopfront/internal/log"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// GET /api/search?q=&category=
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	rawQ := c.Query("q")
	if strings.TrimSpace(rawQ) == "" {
		return c.JSON(fiber.Map{"q": "", "products": []domain.Product{}, "count": 0})
	}
	q, ok := validate.Q(rawQ)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
		return jsonError(c, fiber.StatusBadRequest, "Enter a valid keyword (letters/numbers only)")
	}
	f := domain.ProductFilter{Query: strings.ToLower(q)}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		if f.Category, ok = validate.ID(category); !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "category"})
			return jsonError(c, fiber.StatusBadRequest, "Invalid category")
		}
	}

	products, err := h.Catalog.Browse(f)
	if err != nil {
		log.Error(c, "search.error", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "Could not load results. Please retry.")
	}
	return c.JSON(fiber.Map{"q": f.Query, "category": f.Category, "products": products, "count": len(products)})
}
