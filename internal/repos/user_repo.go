package repos

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shopfront/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

type userRow struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	Phone        string `db:"phone"`
	Hash         string `db:"password_hash"`
	Role         string `db:"role"`
	Status       string `db:"status"`
	CartJSON     string `db:"cart_json"`
	WishlistJSON string `db:"wishlist_json"`
	OrdersJSON   string `db:"orders_json"`
}

const userCols = `id, name, email, phone, password_hash, role, status, cart_json, wishlist_json, orders_json`

func (r userRow) toDomain() *domain.User {
	u := &domain.User{
		ID: r.ID, Name: r.Name, Email: r.Email, Phone: r.Phone, Hash: r.Hash,
		Role: domain.Role(r.Role), Status: domain.UserStatus(r.Status),
		Cart:     fromJSON[[]domain.CartItem](r.CartJSON),
		Wishlist: fromJSON[[]domain.WishlistItem](r.WishlistJSON),
		Orders:   fromJSON[[]domain.Order](r.OrdersJSON),
	}
	if u.Cart == nil {
		u.Cart = []domain.CartItem{}
	}
	if u.Wishlist == nil {
		u.Wishlist = []domain.WishlistItem{}
	}
	if u.Orders == nil {
		u.Orders = []domain.Order{}
	}
	return u
}

func (r *UserRepo) one(q sqlx.Queryer, query string, args ...any) (*domain.User, error) {
	var row userRow
	err := sqlx.Get(q, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	return r.one(r.DB, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, strings.TrimSpace(email))
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	return r.one(r.DB, `SELECT `+userCols+` FROM users WHERE id=?`, id)
}

func (r *UserRepo) List() ([]domain.User, error) {
	var rows []userRow
	if err := r.DB.Select(&rows, `SELECT `+userCols+` FROM users ORDER BY created_at, email`); err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toDomain())
	}
	return out, nil
}

// Create inserts u; Hash must already be set.
func (r *UserRepo) Create(u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if u.Status == "" {
		u.Status = domain.UserActive
	}
	_, err := r.DB.Exec(`
		INSERT INTO users(id,name,email,phone,password_hash,role,status,cart_json,wishlist_json,orders_json)
		VALUES(?,?,?,?,?,?,?,?,?,?)
	`, u.ID, u.Name, u.Email, u.Phone, u.Hash, string(u.Role), string(u.Status),
		mustJSON(u.Cart), mustJSON(u.Wishlist), mustJSON(u.Orders))
	return err
}

// Patch applies a merge-patch inside one transaction and returns the stored record.
// There is no version check: concurrent writers are last-write-wins.
func (r *UserRepo) Patch(id string, p domain.UserPatch) (*domain.User, error) {
	tx, err := r.DB.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	u, err := r.one(tx, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	p.Apply(u)
	if _, err := tx.Exec(`
		UPDATE users SET name=?, phone=?, status=?, cart_json=?, wishlist_json=?, orders_json=?,
		  updated_at=CURRENT_TIMESTAMP
		WHERE id=?
	`, u.Name, u.Phone, string(u.Status), mustJSON(u.Cart), mustJSON(u.Wishlist), mustJSON(u.Orders), id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) BindSession(sid, userID string) error {
	_, err := r.DB.Exec(`INSERT INTO sessions(id,user_id,last_seen)
                          VALUES(?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=CURRENT_TIMESTAMP`, sid, userID)
	return err
}

func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	return r.one(r.DB, `
      SELECT u.id, u.name, u.email, u.phone, u.password_hash, u.role, u.status,
             u.cart_json, u.wishlist_json, u.orders_json
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`, sid)
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`UPDATE sessions SET user_id=NULL,last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}
