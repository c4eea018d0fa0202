package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "shopfront/internal/log"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

type PaymentHandler struct {
	Orders *services.OrderService
}

// GET /pay/:ref renders the hosted checkout widget for a pending payment.
func (h *PaymentHandler) Page(c *fiber.Ctx) error {
	ref, ok := validate.ID(c.Params("ref"))
	if !ok {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Payment not found"})
	}
	intent, err := h.Orders.Intent(sessionOf(c), ref)
	if err != nil {
		applog.Security(c, "payment.page.unknown", map[string]any{"order_ref": ref})
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Payment not found"})
	}
	return render(c, "payment", fiber.Map{"Intent": intent})
}

type callbackInput struct {
	PaymentID string `json:"razorpay_payment_id" form:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id" form:"razorpay_order_id"`
	Signature string `json:"razorpay_signature" form:"razorpay_signature"`
}

// POST /api/payments/callback is the widget's success handler.
func (h *PaymentHandler) Callback(c *fiber.Ctx) error {
	var in callbackInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "body")
	}
	if _, ok := validate.ID(in.OrderID); !ok {
		return badInput(c, "razorpay_order_id")
	}
	if _, ok := validate.ID(in.PaymentID); !ok {
		return badInput(c, "razorpay_payment_id")
	}
	res, err := h.Orders.CompleteGatewayPayment(sessionOf(c), in.PaymentID, in.OrderID, in.Signature)
	if err != nil {
		return fail(c, "payment.callback", err)
	}
	applog.Audit(c, "payment.complete", map[string]any{"order_id": res.Order.ID})
	return c.Status(fiber.StatusCreated).JSON(orderPlaced(res))
}
