package services

import "shopfront/internal/domain"

// UserStore is the user-record side of the data layer. Cart, wishlist and
// orders live inside the user record and are written through Patch.
type UserStore interface {
	ByID(id string) (*domain.User, error)
	ByEmail(email string) (*domain.User, error)
	List() ([]domain.User, error)
	Create(u *domain.User) error
	Patch(id string, p domain.UserPatch) (*domain.User, error)
}

type ProductStore interface {
	List(f domain.ProductFilter) ([]domain.Product, error)
	Get(id string) (domain.Product, error)
	Create(p *domain.Product) error
	Replace(p domain.Product) error
	Patch(id string, p domain.ProductPatch) (domain.Product, error)
	Delete(id string) error
}

// SessionStore persists the sid -> user binding so sessions survive restarts.
type SessionStore interface {
	BindSession(sid, userID string) error
	SessionUser(sid string) (*domain.User, error)
	UnbindSession(sid string) error
}
