package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"shopfront/internal/config"
	"shopfront/internal/http/handlers"
	applog "shopfront/internal/log"
	"shopfront/internal/payment"
	"shopfront/internal/repos"
	"shopfront/internal/restclient"
	"shopfront/internal/services"
)

func main() {
	cfg := config.Load()
	applog.SetLevel(cfg.LogLevel)

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			applog.Error(nil, "log.file.open.fail", err, map[string]any{"path": cfg.LogFile})
		} else {
			defer f.Close()
			applog.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	var (
		users    services.UserStore
		products services.ProductStore
		sessions services.SessionStore
	)
	if cfg.StoreURL != "" {
		client := restclient.New(cfg.StoreURL)
		users, products = restclient.NewUsers(client), restclient.NewProducts(client)
		applog.Info(nil, "store.rest", map[string]any{"url": cfg.StoreURL})
	} else {
		db, err := repos.OpenDB(cfg.DBDSN)
		if err != nil {
			applog.Error(nil, "store.open.fail", err, map[string]any{"dsn": cfg.DBDSN})
			os.Exit(1)
		}
		defer db.Close()
		userRepo := repos.NewUserRepo(db)
		users, products, sessions = userRepo, repos.NewProductRepo(db), userRepo
	}

	var gw payment.Gateway
	if rz, err := payment.NewRazorpay(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret); err == nil {
		gw = rz
	} else {
		applog.Info(nil, "payment.gateway.disabled", map[string]any{"reason": err.Error()})
	}

	deps := handlers.NewDeps(users, products, sessions, gw, cfg)

	// Templates & app
	engine := html.New(cfg.TemplatesDir, ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    1 << 20,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(helmet.New(helmet.Config{
		// the payment page loads the gateway's checkout script
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline' https://checkout.razorpay.com; frame-src https://api.razorpay.com https://checkout.razorpay.com",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	handlers.Mount(app, deps)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		_ = app.Shutdown()
	}()

	applog.Info(nil, "server.start", map[string]any{"port": cfg.Port})
	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.Error(nil, "server.stop", err, nil)
	}
	if err := deps.Sessions.FlushAll(); err != nil {
		applog.Error(nil, "shutdown.cart.flush.fail", err, nil)
	}
}
