package repos

import (
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"shopfront/internal/domain"
	applog "shopfront/internal/log"
)

// ErrNotFound is shared with the REST client store so callers can match either.
var ErrNotFound = domain.ErrNotFound

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// :memory: databases are per-connection
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if err := seedProducts(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  previous_price NUMERIC NOT NULL DEFAULT 0,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  category TEXT NOT NULL DEFAULT '',
  type TEXT NOT NULL DEFAULT '',
  images_json TEXT NOT NULL DEFAULT '[]',
  sizes_json TEXT NOT NULL DEFAULT '[]',
  features_json TEXT NOT NULL DEFAULT '[]',
  rating NUMERIC NOT NULL DEFAULT 0,
  review_count INTEGER NOT NULL DEFAULT 0,
  new_arrival INTEGER NOT NULL DEFAULT 0,
  top_selling INTEGER NOT NULL DEFAULT 0,
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_name     ON products(LOWER(name));

-- cart, wishlist and orders are embedded in the user record
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('Admin','User')),
  status TEXT NOT NULL DEFAULT 'Active' CHECK (status IN ('Active','Blocked')),
  cart_json TEXT NOT NULL DEFAULT '[]',
  wishlist_json TEXT NOT NULL DEFAULT '[]',
  orders_json TEXT NOT NULL DEFAULT '[]',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

// seedProducts inserts the demo catalog when the products table is empty.
func seedProducts(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	applog.Info(nil, "seed.products", nil)

	repo := NewProductRepo(db)
	for _, p := range []domain.Product{
		{ID: "p1", Name: "Classic Denim Jacket", Description: "Stonewashed denim, regular fit", Price: 500, PreviousPrice: 650,
			Stock: 20, Category: "men", Type: "jacket", Images: []string{"products/p1/main.jpg"}, Sizes: []string{"M", "L", "XL"},
			Rating: 4.3, ReviewCount: 41, Features: []string{"100% cotton", "Button front"}, NewArrival: true, Active: true},
		{ID: "p2", Name: "Linen Summer Dress", Description: "Breathable linen midi dress", Price: 1299, PreviousPrice: 1499,
			Stock: 8, Category: "women", Type: "dress", Images: []string{"products/p2/main.jpg"}, Sizes: []string{"S", "M"},
			Rating: 4.6, ReviewCount: 77, TopSelling: true, Active: true},
		{ID: "p3", Name: "Canvas Sneakers", Description: "Low-top everyday sneakers", Price: 899,
			Stock: 2, Category: "footwear", Type: "shoes", Images: []string{"products/p3/main.jpg"}, Sizes: []string{"7", "8", "9"},
			Rating: 4.1, ReviewCount: 12, Active: true},
		{ID: "p4", Name: "Wool Beanie", Description: "Ribbed knit beanie", Price: 249,
			Stock: 0, Category: "accessories", Type: "hat", Images: []string{"products/p4/main.jpg"},
			Rating: 3.9, ReviewCount: 5, Active: true},
	} {
		if err := repo.Create(&p); err != nil {
			return err
		}
	}
	return nil
}

// seedUsers ensures one admin and one shopper exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Raw string
	}
	users := []u{
		{"u-admin", "admin@shopfront.test", "Admin", string(domain.RoleAdmin), "Passw0rd!"},
		{"u-alice", "alice@shopfront.test", "Alice", string(domain.RoleUser), "Passw0rd!"},
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		var exists int
		if err := tx.Get(&exists, `SELECT COUNT(*) FROM users WHERE LOWER(email)=LOWER(?)`, x.Email); err != nil {
			return err
		}
		if exists > 0 {
			continue
		}
		h, err := bcrypt.GenerateFromPassword([]byte(x.Raw), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
		`, x.ID, x.Email, x.Name, string(h), x.Role); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func fromJSON[T any](s string) T {
	var out T
	if s != "" {
		_ = json.Unmarshal([]byte(s), &out)
	}
	return out
}
