package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"shopfront/internal/domain"
	applog "shopfront/internal/log"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

type AdminHandler struct {
	Orders *services.AdminOrderService
	Users  *services.AdminUserService
	Inv    *services.InventoryService
}

// GET /admin/stats
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	st, err := h.Orders.Stats()
	if err != nil {
		return fail(c, "admin.stats", err)
	}
	return c.JSON(st)
}

// orderFilter reads status, q, from and to. bad names the first malformed one.
func orderFilter(c *fiber.Ctx) (f services.OrderFilter, bad string) {
	if s := c.Query("status"); s != "" {
		f.Status = domain.OrderStatus(s)
		if !f.Status.Valid() {
			return f, "status"
		}
	}
	if q := c.Query("q"); q != "" {
		var ok bool
		if f.Query, ok = validate.Filter(q); !ok {
			return f, "q"
		}
	}
	var ok bool
	if f.From, ok = validate.Date(c.Query("from")); !ok {
		return f, "from"
	}
	if f.To, ok = validate.Date(c.Query("to")); !ok {
		return f, "to"
	}
	return f, ""
}

func (h *AdminHandler) filteredOrders(c *fiber.Ctx) ([]services.OrderRecord, string, error) {
	f, bad := orderFilter(c)
	if bad != "" {
		return nil, bad, nil
	}
	all, err := h.Orders.AllOrders()
	if err != nil {
		return nil, "", err
	}
	return services.FilterOrders(all, f), "", nil
}

// GET /admin/orders
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	orders, bad, err := h.filteredOrders(c)
	if bad != "" {
		return badInput(c, bad)
	}
	if err != nil {
		return fail(c, "admin.orders.list", err)
	}
	return c.JSON(orders)
}

// GET /admin/orders.csv exports the same filtered list.
func (h *AdminHandler) ExportCSV(c *fiber.Ctx) error {
	orders, bad, err := h.filteredOrders(c)
	if bad != "" {
		return badInput(c, bad)
	}
	if err != nil {
		return fail(c, "admin.orders.export", err)
	}
	var buf bytes.Buffer
	if err := services.ExportCSV(&buf, orders); err != nil {
		return fail(c, "admin.orders.export", err)
	}
	applog.Audit(c, "admin.orders.export", map[string]any{"rows": len(orders)})
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment("orders.csv")
	return c.Send(buf.Bytes())
}

// PATCH /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "id")
	}
	var in struct {
		Status domain.OrderStatus `json:"status" form:"status"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "body")
	}
	rec, err := h.Orders.UpdateStatus(id, in.Status)
	if err != nil {
		return fail(c, "admin.orders.update", err)
	}
	return c.JSON(rec)
}

// GET /admin/users
func (h *AdminHandler) UsersPage(c *fiber.Ctx) error {
	users, err := h.Users.List()
	if err != nil {
		return fail(c, "admin.users.list", err)
	}
	return c.JSON(users)
}

// PATCH /admin/users/:id/status blocks or unblocks an account.
func (h *AdminHandler) SetUserStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "id")
	}
	if u := userOf(c); u != nil && u.ID == id {
		return jsonError(c, fiber.StatusConflict, "cannot change your own status")
	}
	var in struct {
		Status domain.UserStatus `json:"status" form:"status"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "body")
	}
	u, err := h.Users.SetStatus(id, in.Status)
	if err != nil {
		return fail(c, "admin.users.status", err)
	}
	return c.JSON(u)
}

// PUT /admin/products/:id/stock sets an absolute stock count.
func (h *AdminHandler) UpdateInventory(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "id")
	}
	var in struct {
		Stock *int `json:"stock" form:"stock"`
	}
	if err := c.BodyParser(&in); err != nil || in.Stock == nil {
		return badInput(c, "stock")
	}
	p, err := h.Inv.SetStock(pid, *in.Stock)
	if err != nil {
		return fail(c, "admin.inventory.save", err)
	}
	applog.Audit(c, "admin.inventory.save", map[string]any{"product": pid, "qty": *in.Stock})
	return c.JSON(p)
}

// GET /admin/inventory lists products running low.
func (h *AdminHandler) Inventory(c *fiber.Ctx) error {
	low, err := h.Inv.LowStock()
	if err != nil {
		return fail(c, "admin.inventory.list", err)
	}
	if low == nil {
		low = []domain.Product{}
	}
	return c.JSON(low)
}
