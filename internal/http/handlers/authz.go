package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"shopfront/internal/domain"
	applog "shopfront/internal/log"
	"shopfront/internal/services"
)

// AttachSession puts the caller's session and user into Locals when the sid
// cookie maps to a live session.
func AttachSession(reg *services.SessionRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(sidCookie)
		if sid == "" {
			return c.Next()
		}
		s, err := reg.Get(sid)
		switch {
		case err == nil:
			u := s.User()
			c.Locals("session", s)
			c.Locals("user", &u)
			c.Locals("user_id", u.ID)
		case errors.Is(err, services.ErrUserBlocked):
			applog.Security(c, "session.blocked", nil)
		case !errors.Is(err, services.ErrNoSession):
			applog.Error(c, "session.load.fail", err, nil)
		}
		return c.Next()
	}
}

func sessionOf(c *fiber.Ctx) *services.Session {
	s, _ := c.Locals("session").(*services.Session)
	return s
}

func userOf(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// RequireUser rejects requests without a live session.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sessionOf(c) == nil {
			applog.Security(c, "access.denied.user", nil)
			return jsonError(c, fiber.StatusUnauthorized, "login required")
		}
		return c.Next()
	}
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := userOf(c)
		if u == nil {
			applog.Security(c, "access.denied.admin", map[string]any{"reason": "anonymous"})
			return jsonError(c, fiber.StatusUnauthorized, "login required")
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", nil)
			return jsonError(c, fiber.StatusForbidden, "access denied")
		}
		return c.Next()
	}
}
