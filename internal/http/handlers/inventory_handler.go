package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopfront/internal/services"
	"shopfront/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// GET /api/availability?productId=
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Query("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing productId",
		})
	}
	avail, err := h.Inv.CheckAvailability(productID)
	if err != nil {
		return fail(c, "availability", err)
	}
	return c.JSON(avail)
}
