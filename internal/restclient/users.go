package restclient

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"shopfront/internal/domain"
)

// userDoc is the stored shape of a user; unlike domain.User it carries the
// password hash.
type userDoc struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Email        string                `json:"email"`
	Phone        string                `json:"phone,omitempty"`
	PasswordHash string                `json:"passwordHash"`
	Role         domain.Role           `json:"role"`
	Status       domain.UserStatus     `json:"status"`
	Cart         []domain.CartItem     `json:"cart"`
	Wishlist     []domain.WishlistItem `json:"wishlist"`
	Orders       []orderDoc            `json:"orders"`
}

func (d userDoc) toDomain() *domain.User {
	u := &domain.User{
		ID: d.ID, Name: d.Name, Email: d.Email, Phone: d.Phone, Hash: d.PasswordHash,
		Role: d.Role, Status: d.Status, Cart: d.Cart, Wishlist: d.Wishlist, Orders: ordersToDomain(d.Orders),
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if u.Status == "" {
		u.Status = domain.UserActive
	}
	if u.Cart == nil {
		u.Cart = []domain.CartItem{}
	}
	if u.Wishlist == nil {
		u.Wishlist = []domain.WishlistItem{}
	}
	return u
}

// newUserDoc is the create body; orders are written in the current shape.
type newUserDoc struct {
	userDoc
	Orders []domain.Order `json:"orders"`
}

func docFrom(u *domain.User) newUserDoc {
	orders := u.Orders
	if orders == nil {
		orders = []domain.Order{}
	}
	return newUserDoc{
		userDoc: userDoc{
			ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, PasswordHash: u.Hash,
			Role: u.Role, Status: u.Status, Cart: u.Cart, Wishlist: u.Wishlist,
		},
		Orders: orders,
	}
}

// Users implements the user store over /users.
type Users struct{ c *Client }

func NewUsers(c *Client) *Users { return &Users{c: c} }

func (s *Users) ByID(id string) (*domain.User, error) {
	var d userDoc
	if err := s.c.get("/users/"+escape(id), nil, &d); err != nil {
		return nil, err
	}
	return d.toDomain(), nil
}

// ByEmail uses the collection's equality filter; the match is case-insensitive
// on our side as well, in case the backend compares exactly.
func (s *Users) ByEmail(email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	var docs []userDoc
	if err := s.c.get("/users", url.Values{"email": {email}}, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		if strings.EqualFold(d.Email, email) {
			return d.toDomain(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Users) List() ([]domain.User, error) {
	var docs []userDoc
	if err := s.c.get("/users", nil, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.toDomain())
	}
	return out, nil
}

func (s *Users) Create(u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	var created userDoc
	if err := s.c.send(fiber.MethodPost, "/users", docFrom(u), &created); err != nil {
		return err
	}
	if created.ID != "" {
		u.ID = created.ID
	}
	return nil
}

// Patch sends only the fields set on p.
func (s *Users) Patch(id string, p domain.UserPatch) (*domain.User, error) {
	body := map[string]any{}
	if p.Name != nil {
		body["name"] = *p.Name
	}
	if p.Phone != nil {
		body["phone"] = *p.Phone
	}
	if p.Status != nil {
		body["status"] = *p.Status
	}
	if p.Cart != nil {
		body["cart"] = *p.Cart
	}
	if p.Wishlist != nil {
		body["wishlist"] = *p.Wishlist
	}
	if p.Orders != nil {
		body["orders"] = *p.Orders
	}
	var d userDoc
	if err := s.c.send(fiber.MethodPatch, "/users/"+escape(id), body, &d); err != nil {
		return nil, err
	}
	return d.toDomain(), nil
}
