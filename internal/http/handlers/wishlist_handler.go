package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "shopfront/internal/log"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

type WishlistHandler struct {
	Catalog *services.CatalogService
}

func (h *WishlistHandler) List(c *fiber.Ctx) error {
	return c.JSON(sessionOf(c).Wishlist.Items())
}

// POST /api/wishlist toggles unless "mode" is "add".
func (h *WishlistHandler) Save(c *fiber.Ctx) error {
	var in struct {
		ProductID string `json:"productId" form:"productId"`
		Mode      string `json:"mode" form:"mode"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "body")
	}
	pid, ok := validate.ID(in.ProductID)
	if !ok {
		return badInput(c, "productId")
	}
	p, err := h.Catalog.Get(pid)
	if err != nil {
		return fail(c, "wishlist.save", err)
	}
	w := sessionOf(c).Wishlist
	added := true
	if in.Mode == "add" {
		err = w.Add(p)
	} else {
		added, err = w.Toggle(p)
	}
	if err != nil {
		applog.Error(c, "wishlist.save.fail", err, map[string]any{"product": pid})
		return jsonError(c, fiber.StatusBadGateway, "Failed to update wishlist")
	}
	applog.Audit(c, "wishlist.save", map[string]any{"product": pid, "added": added})
	return c.JSON(fiber.Map{"added": added, "items": w.Items()})
}

// DELETE /api/wishlist/:productId
func (h *WishlistHandler) Unsave(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("productId"))
	if !ok {
		return badInput(c, "productId")
	}
	w := sessionOf(c).Wishlist
	if err := w.Remove(pid); err != nil {
		applog.Error(c, "wishlist.unsave.fail", err, map[string]any{"product": pid})
		return jsonError(c, fiber.StatusBadGateway, "Failed to update wishlist")
	}
	applog.Audit(c, "wishlist.unsave", map[string]any{"product": pid})
	return c.JSON(w.Items())
}
