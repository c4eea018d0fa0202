package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"shopfront/internal/domain"
	"shopfront/internal/validate"
)

type AuthService struct {
	Users    UserStore
	Sessions *SessionRegistry
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=60"`
	Email    string `json:"email" validate:"required,emailpattern"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Password string `json:"password" validate:"required"`
}

func (s *AuthService) Register(in RegisterInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := check(in); err != nil {
		return nil, err
	}
	if !validate.Password(in.Password) {
		return nil, &ValidationError{Fields: map[string]string{
			"password": "must be 8-20 characters with upper, lower, digit and symbol",
		}}
	}
	if _, err := s.Users.ByEmail(in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Name: strings.TrimSpace(in.Name), Email: in.Email, Phone: in.Phone, Hash: string(h),
		Role: domain.RoleUser, Status: domain.UserActive,
		Cart: []domain.CartItem{}, Wishlist: []domain.WishlistItem{}, Orders: []domain.Order{},
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks the blocked flag before the password, so a blocked account
// is refused even with correct credentials.
func (s *AuthService) Login(sid, email, password string) (*Session, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if u.Status == domain.UserBlocked {
		return nil, ErrUserBlocked
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	return s.Sessions.Start(sid, u)
}

func (s *AuthService) Logout(sid string) error {
	return s.Sessions.End(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	sess, err := s.Sessions.Get(sid)
	if err != nil {
		return nil, err
	}
	u := sess.User()
	return &u, nil
}
