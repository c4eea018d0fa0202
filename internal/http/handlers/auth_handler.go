package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"shopfront/internal/log"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

const sidCookie = "sid"

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies(sidCookie)
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     sidCookie,
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "body")
	}
	u, err := h.Auth.Register(in)
	if err != nil {
		return fail(c, "auth.register", err)
	}
	log.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	return c.Status(fiber.StatusCreated).JSON(u)
}

type loginInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Login always starts a fresh session id so a pre-login sid is never promoted.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c, "body")
	}
	email, ok := validate.Email(in.Email)
	if !ok || in.Password == "" {
		log.Security(c, "auth.login.fail", map[string]any{"reason": "bad_format"})
		return jsonError(c, fiber.StatusUnauthorized, services.ErrBadCreds.Error())
	}

	if old := c.Cookies(sidCookie); old != "" {
		_ = h.Auth.Logout(old)
	}
	sid := uuid.NewString()
	s, err := h.Auth.Login(sid, email, in.Password)
	if err != nil {
		return fail(c, "auth.login", err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     sidCookie,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals("user_id", s.UserID())
	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(s.User())
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Auth.Logout(sid); err != nil {
		log.Error(c, "auth.logout.fail", err, nil)
	}
	c.Cookie(&fiber.Cookie{
		Name:     sidCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", nil)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u := userOf(c)
	if u == nil {
		return jsonError(c, fiber.StatusUnauthorized, "login required")
	}
	return c.JSON(u)
}
