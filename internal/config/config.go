package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	applog "shopfront/internal/log"
)

type Config struct {
	Port         string
	DBDSN        string
	StoreURL     string // json-server style REST backend; empty means local SQLite
	TemplatesDir string
	LogFile      string
	LogLevel     string
	CartSyncWait time.Duration
	Currency     string
	Razorpay     RazorpayConfig
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
}

func Load() Config {
	// .env is optional
	_ = godotenv.Load()

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		DBDSN:        getEnv("DB_DSN", "shopfront.db"),
		StoreURL:     getEnv("STORE_URL", ""),
		TemplatesDir: getEnv("TEMPLATES_DIR", "./web/templates"),
		LogFile:      getEnv("LOG_FILE", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CartSyncWait: time.Duration(getEnvAsInt("CART_SYNC_DELAY_MS", 300)) * time.Millisecond,
		Currency:     getEnv("CURRENCY", "INR"),
		Razorpay: RazorpayConfig{
			KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		},
	}
	applog.Info(nil, "config.loaded", map[string]any{
		"port": cfg.Port, "db_dsn": cfg.DBDSN, "store_url": cfg.StoreURL,
		"templates": cfg.TemplatesDir, "cart_sync_ms": cfg.CartSyncWait.Milliseconds(),
		"gateway": cfg.Razorpay.KeyID != "",
	})
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
