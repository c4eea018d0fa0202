package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "shopfront/internal/log"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

// History lists the current user's orders, newest first.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Orders.History(sessionOf(c).UserID())
	if err != nil {
		return fail(c, "orders.history", err)
	}
	return c.JSON(orders)
}

// View shows one of the caller's own orders. Orders of other users are
// reported as missing.
func (h *OrderHandler) View(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "Order not found")
	}
	orders, err := h.Orders.History(sessionOf(c).UserID())
	if err != nil {
		return fail(c, "orders.view", err)
	}
	for _, o := range orders {
		if o.ID == oid {
			return c.JSON(o)
		}
	}
	applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
	return jsonError(c, fiber.StatusNotFound, "Order not found")
}

// Notices drains the session's pending toasts.
func (h *OrderHandler) Notices(c *fiber.Ctx) error {
	return c.JSON(sessionOf(c).Notices.Drain())
}
