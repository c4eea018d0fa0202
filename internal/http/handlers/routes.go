package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "shopfront/internal/log"
)

// Mount registers session attach, every route and the JSON 404 fallback.
// App-wide middleware (request ids, access log, headers) is the caller's.
func Mount(app *fiber.App, d *Deps) {
	app.Use(AttachSession(d.Sessions))

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	// Auth (login throttled)
	auth := app.Group("/api/auth")
	auth.Post("/register", d.AuthHandler.Register)
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return jsonError(c, fiber.StatusTooManyRequests, "Too many attempts. Please try again later.")
		},
	}), d.AuthHandler.Login)
	auth.Post("/logout", d.AuthHandler.Logout)
	auth.Get("/me", d.AuthHandler.Me)

	// Catalog
	app.Get("/api/categories", d.CategoryHandler.Home)
	app.Get("/api/categories/:id", d.CategoryHandler.List)
	app.Get("/api/search", limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}), d.SearchHandler.Search)
	app.Get("/api/availability", limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return jsonError(c, fiber.StatusTooManyRequests, "rate limit exceeded, retry soon")
		},
	}), d.InventoryHandler.Check)

	user := RequireUser()
	admin := RequireAdmin()

	// REST resources
	app.Get("/products", d.ProductHandler.List)
	app.Get("/products/:id", d.ProductHandler.Get)
	app.Post("/products", admin, d.ProductHandler.Create)
	app.Put("/products/:id", admin, d.ProductHandler.Replace)
	app.Patch("/products/:id", admin, d.ProductHandler.Patch)
	app.Delete("/products/:id", admin, d.ProductHandler.Delete)
	app.Get("/users", user, d.UserHandler.List)
	app.Get("/users/:id", user, d.UserHandler.Get)
	app.Patch("/users/:id", user, d.UserHandler.Patch)

	// Cart & wishlist
	app.Get("/api/cart", user, d.CartHandler.View)
	app.Post("/api/cart", user, d.CartHandler.Add)
	app.Delete("/api/cart", user, d.CartHandler.Clear)
	app.Patch("/api/cart/:productId", user, d.CartHandler.SetQuantity)
	app.Delete("/api/cart/:productId", user, d.CartHandler.Remove)
	app.Get("/api/wishlist", user, d.WishlistHandler.List)
	app.Post("/api/wishlist", user, d.WishlistHandler.Save)
	app.Delete("/api/wishlist/:productId", user, d.WishlistHandler.Unsave)

	// Checkout, payment & orders
	app.Get("/api/checkout", user, d.CheckoutHandler.View)
	app.Post("/api/checkout/shipping", user, d.CheckoutHandler.Shipping)
	app.Post("/api/checkout/back", user, d.CheckoutHandler.Back)
	app.Post("/api/checkout/submit", user, d.CheckoutHandler.Submit)
	app.Get("/pay/:ref", user, d.PaymentHandler.Page)
	app.Post("/api/payments/callback", user, d.PaymentHandler.Callback)
	app.Get("/api/orders", user, d.OrderHandler.History)
	app.Get("/api/orders/:id", user, d.OrderHandler.View)
	app.Get("/api/notices", user, d.OrderHandler.Notices)

	// Admin
	ag := app.Group("/admin", admin)
	ag.Get("/stats", d.AdminHandler.Dashboard)
	ag.Get("/orders", d.AdminHandler.OrdersPage)
	ag.Get("/orders.csv", d.AdminHandler.ExportCSV)
	ag.Patch("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)
	ag.Get("/users", d.AdminHandler.UsersPage)
	ag.Patch("/users/:id/status", d.AdminHandler.SetUserStatus)
	ag.Get("/inventory", d.AdminHandler.Inventory)
	ag.Put("/products/:id/stock", d.AdminHandler.UpdateInventory)

	app.Use(func(c *fiber.Ctx) error {
		return jsonError(c, fiber.StatusNotFound, "Page not found")
	})
}
