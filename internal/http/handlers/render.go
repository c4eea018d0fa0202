package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"shopfront/internal/domain"
	applog "shopfront/internal/log"
	"shopfront/internal/services"
)

const genericFailure = "Something went wrong. Please try again."

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := userOf(c); u != nil {
		data["User"] = u
	}
	return c.Render(tmpl, data)
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// ErrorHandler is the app-wide fallback: log everything, show nothing internal.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < 500 {
		code = fe.Code
	}
	if code >= 500 {
		applog.Error(c, "server.error", err, nil)
		return jsonError(c, code, genericFailure)
	}
	return jsonError(c, code, fe.Message)
}

// fail maps service errors onto HTTP answers. Anything unrecognised is a 500
// with the generic message.
func fail(c *fiber.Ctx, action string, err error) error {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		applog.Security(c, "validation.fail", map[string]any{"action": action, "fields": ve.Fields})
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation failed", "errors": ve.Fields})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, services.ErrOrderNotFound), errors.Is(err, services.ErrUnknownPayment):
		return jsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrUserBlocked):
		applog.Security(c, action+".blocked", nil)
		return jsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrBadCreds), errors.Is(err, services.ErrNoSession):
		applog.Security(c, action+".fail", nil)
		return jsonError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrBadSignature):
		applog.Security(c, action+".signature", nil)
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrEmailTaken), errors.Is(err, services.ErrInvalidStep):
		return jsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrEmptyCart), errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrInvalidStock):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrGatewayUnavailable):
		return jsonError(c, fiber.StatusServiceUnavailable, err.Error())
	}
	applog.Error(c, action+".fail", err, nil)
	return jsonError(c, fiber.StatusInternalServerError, genericFailure)
}

// badInput logs and answers 400 for malformed request values.
func badInput(c *fiber.Ctx, field string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return jsonError(c, fiber.StatusBadRequest, "invalid "+field)
}
