package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "shopfront/internal/log"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

type CartHandler struct {
	Catalog *services.CatalogService
}

type cartInput struct {
	ProductID string `json:"productId" form:"productId"`
	Quantity  int    `json:"quantity" form:"quantity"`
}

func isForm(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationForm)
}

// addInput reads productId and quantity. Form posts carry the quantity as
// text and fall back to 1 when it is not a number.
func addInput(c *fiber.Ctx) (cartInput, bool) {
	if isForm(c) {
		return cartInput{ProductID: c.FormValue("productId"), Quantity: validate.Qty(c.FormValue("quantity"))}, true
	}
	var in cartInput
	if err := c.BodyParser(&in); err != nil {
		return in, false
	}
	in.Quantity = validate.ClampQty(in.Quantity)
	return in, true
}

// setQuantity reads the new line quantity; values below 1 are kept so the
// line can be removed.
func setQuantity(c *fiber.Ctx) (int, bool) {
	if isForm(c) {
		return validate.SetQty(c.FormValue("quantity"))
	}
	var in cartInput
	if err := c.BodyParser(&in); err != nil {
		return 0, false
	}
	return min(in.Quantity, validate.MaxQty), true
}

func cartView(s *services.Session) fiber.Map {
	return fiber.Map{"items": s.Cart.Items(), "count": s.Cart.Count(), "subtotal": s.Cart.Subtotal()}
}

// GET /api/cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	return c.JSON(cartView(sessionOf(c)))
}

// POST /api/cart adds to the line for productId, creating it if needed.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	in, ok := addInput(c)
	if !ok {
		return badInput(c, "body")
	}
	pid, ok := validate.ID(in.ProductID)
	if !ok {
		return badInput(c, "productId")
	}
	p, err := h.Catalog.Get(pid)
	if err != nil || !p.Active {
		return jsonError(c, fiber.StatusNotFound, "This item is no longer available")
	}
	s := sessionOf(c)
	line := s.Cart.Add(p, in.Quantity)
	s.Notices.Notify(services.NoticeSuccess, "Added to cart")
	applog.Info(c, "cart.add", map[string]any{"product": pid, "qty": line.Quantity})
	view := cartView(s)
	view["line"] = line
	return c.JSON(view)
}

// PATCH /api/cart/:productId sets the quantity; below 1 removes the line.
func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("productId"))
	if !ok {
		return badInput(c, "productId")
	}
	qty, ok := setQuantity(c)
	if !ok {
		return badInput(c, "quantity")
	}
	s := sessionOf(c)
	if !s.Cart.SetQuantity(pid, qty) {
		return jsonError(c, fiber.StatusNotFound, "item not in cart")
	}
	return c.JSON(cartView(s))
}

// DELETE /api/cart/:productId
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("productId"))
	if !ok {
		return badInput(c, "productId")
	}
	s := sessionOf(c)
	if !s.Cart.Remove(pid) {
		return jsonError(c, fiber.StatusNotFound, "item not in cart")
	}
	return c.JSON(cartView(s))
}

// DELETE /api/cart
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	s := sessionOf(c)
	s.Cart.Clear()
	return c.JSON(cartView(s))
}
