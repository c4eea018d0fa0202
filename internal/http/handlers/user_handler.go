package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"shopfront/internal/domain"
	applog "shopfront/internal/log"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

// UserHandler exposes the user record resource. Admins see everyone; a
// shopper sees only their own record. Status changes go through Admin so a
// block also ends the user's live sessions.
type UserHandler struct {
	Users services.UserStore
	Admin *services.AdminUserService
}

func (h *UserHandler) allowed(c *fiber.Ctx, id string) bool {
	u := userOf(c)
	if u.IsAdmin() || u.ID == id {
		return true
	}
	applog.Security(c, "access.denied.user_record", map[string]any{"target": id})
	return false
}

// GET /users?email=
func (h *UserHandler) List(c *fiber.Ctx) error {
	if raw := c.Query("email"); raw != "" {
		email, ok := validate.Email(raw)
		if !ok {
			return badInput(c, "email")
		}
		u, err := h.Users.ByEmail(email)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.JSON([]domain.User{})
			}
			return fail(c, "users.lookup", err)
		}
		if !h.allowed(c, u.ID) {
			return c.JSON([]domain.User{})
		}
		return c.JSON([]domain.User{*u})
	}
	if !userOf(c).IsAdmin() {
		applog.Security(c, "access.denied.user_list", nil)
		return jsonError(c, fiber.StatusForbidden, "access denied")
	}
	all, err := h.Users.List()
	if err != nil {
		return fail(c, "users.list", err)
	}
	return c.JSON(all)
}

// GET /users/:id
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "id")
	}
	if !h.allowed(c, id) {
		return jsonError(c, fiber.StatusNotFound, domain.ErrNotFound.Error())
	}
	u, err := h.Users.ByID(id)
	if err != nil {
		return fail(c, "users.get", err)
	}
	return c.JSON(u)
}

// PATCH /users/:id merges the body into the record. Shoppers may only change
// their profile fields.
func (h *UserHandler) Patch(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badInput(c, "id")
	}
	if !h.allowed(c, id) {
		return jsonError(c, fiber.StatusNotFound, domain.ErrNotFound.Error())
	}
	var p domain.UserPatch
	if err := c.BodyParser(&p); err != nil {
		return badInput(c, "body")
	}
	if !userOf(c).IsAdmin() {
		p = domain.UserPatch{Name: p.Name, Phone: p.Phone}
	}
	if status := p.Status; status != nil {
		if userOf(c).ID == id {
			return jsonError(c, fiber.StatusConflict, "cannot change your own status")
		}
		if _, err := h.Admin.SetStatus(id, *status); err != nil {
			return fail(c, "users.patch", err)
		}
		p.Status = nil
	}
	u, err := h.Users.Patch(id, p)
	if err != nil {
		return fail(c, "users.patch", err)
	}
	applog.Audit(c, "users.patch", map[string]any{"target": id})
	return c.JSON(u)
}
