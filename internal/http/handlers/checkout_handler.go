package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopfront/internal/domain"
	applog "shopfront/internal/log"
	"shopfront/internal/services"
)

type CheckoutHandler struct {
	Orders *services.OrderService
}

func checkoutView(s *services.Session) fiber.Map {
	lines := domain.LinesFor(s.Cart.Items())
	return fiber.Map{
		"step":   s.Checkout.Step(),
		"form":   s.Checkout.Form(),
		"errors": s.Checkout.Errors(),
		"lines":  lines,
		"total":  domain.OrderTotal(lines),
	}
}

// GET /api/checkout
func (h *CheckoutHandler) View(c *fiber.Ctx) error {
	return c.JSON(checkoutView(sessionOf(c)))
}

// POST /api/checkout/shipping validates the form and moves to review.
func (h *CheckoutHandler) Shipping(c *fiber.Ctx) error {
	var form services.ShippingForm
	if err := c.BodyParser(&form); err != nil {
		return badInput(c, "body")
	}
	s := sessionOf(c)
	if err := s.Checkout.Next(form); err != nil {
		return fail(c, "checkout.shipping", err)
	}
	return c.JSON(checkoutView(s))
}

// POST /api/checkout/back
func (h *CheckoutHandler) Back(c *fiber.Ctx) error {
	s := sessionOf(c)
	if err := s.Checkout.Back(); err != nil {
		return fail(c, "checkout.back", err)
	}
	return c.JSON(checkoutView(s))
}

// POST /api/checkout/submit places a COD order or starts a gateway payment.
func (h *CheckoutHandler) Submit(c *fiber.Ctx) error {
	res, err := h.Orders.Submit(sessionOf(c))
	if err != nil {
		return fail(c, "checkout.submit", err)
	}
	if res.Intent != nil {
		applog.Info(c, "checkout.payment.begin", map[string]any{"order_ref": res.Intent.OrderRef})
		return c.JSON(res)
	}
	applog.Audit(c, "checkout.order.placed", map[string]any{"order_id": res.Order.ID, "stock_ok": res.StockErr == nil})
	return c.Status(fiber.StatusCreated).JSON(orderPlaced(res))
}

func orderPlaced(res *services.SubmitResult) fiber.Map {
	out := fiber.Map{"order": res.Order, "redirect": res.Redirect}
	if res.StockErr != nil {
		out["warning"] = "stock could not be updated for some items"
	}
	return out
}
