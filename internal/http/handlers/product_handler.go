package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopfront/internal/domain"
	"shopfront/internal/log"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// filterFrom reads the list query. bad names the first malformed parameter.
func filterFrom(c *fiber.Ctx) (f domain.ProductFilter, bad string) {
	for _, raw := range c.Context().QueryArgs().PeekMulti("id") {
		id, ok := validate.ID(string(raw))
		if !ok {
			return f, "id"
		}
		f.IDs = append(f.IDs, id)
	}
	var ok bool
	if v := c.Query("category"); v != "" {
		if f.Category, ok = validate.ID(v); !ok {
			return f, "category"
		}
	}
	if v := c.Query("type"); v != "" {
		if f.Type, ok = validate.ID(v); !ok {
			return f, "type"
		}
	}
	if v := c.Query("q"); v != "" {
		if f.Query, ok = validate.Q(v); !ok {
			return f, "q"
		}
	}
	f.NewArrival = c.QueryBool("newArrival")
	f.TopSelling = c.QueryBool("topSelling")
	return f, ""
}

// GET /products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	f, bad := filterFrom(c)
	if bad != "" {
		return badInput(c, bad)
	}
	var (
		out []domain.Product
		err error
	)
	if userOf(c).IsAdmin() {
		out, err = h.Catalog.List(f)
	} else {
		out, err = h.Catalog.Browse(f)
	}
	if err != nil {
		return fail(c, "products.list", err)
	}
	return c.JSON(out)
}

// GET /products/:id; inactive products are hidden from shoppers.
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return jsonError(c, fiber.StatusNotFound, "This item is no longer available")
	}
	p, err := h.Catalog.Get(id)
	if err != nil || (!p.Active && !userOf(c).IsAdmin()) {
		return jsonError(c, fiber.StatusNotFound, "This item is no longer available")
	}
	return c.JSON(p)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "body")
	}
	p, err := h.Catalog.Create(in)
	if err != nil {
		return fail(c, "products.create", err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *ProductHandler) Replace(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "id")
	}
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "body")
	}
	p, err := h.Catalog.Replace(id, in)
	if err != nil {
		return fail(c, "products.replace", err)
	}
	return c.JSON(p)
}

func (h *ProductHandler) Patch(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "id")
	}
	var patch domain.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return badInput(c, "body")
	}
	p, err := h.Catalog.Patch(id, patch)
	if err != nil {
		return fail(c, "products.patch", err)
	}
	log.Audit(c, "admin.product.patch", map[string]any{"product": id})
	return c.JSON(p)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "id")
	}
	if err := h.Catalog.Delete(id); err != nil {
		return fail(c, "products.delete", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
