package domain

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

type UserStatus string

const (
	UserActive  UserStatus = "Active"
	UserBlocked UserStatus = "Blocked"
)

func (s UserStatus) Valid() bool { return s == UserActive || s == UserBlocked }

type User struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Phone    string         `json:"phone,omitempty"`
	Hash     string         `json:"-"`
	Role     Role           `json:"role"`
	Status   UserStatus     `json:"status"`
	Cart     []CartItem     `json:"cart"`
	Wishlist []WishlistItem `json:"wishlist"`
	Orders   []Order        `json:"orders"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// UserPatch is a merge-patch over a user record. Nil fields are left untouched;
// the collections are replaced wholesale when present.
type UserPatch struct {
	Name     *string         `json:"name,omitempty"`
	Phone    *string         `json:"phone,omitempty"`
	Status   *UserStatus     `json:"status,omitempty"`
	Cart     *[]CartItem     `json:"cart,omitempty"`
	Wishlist *[]WishlistItem `json:"wishlist,omitempty"`
	Orders   *[]Order        `json:"orders,omitempty"`
}

// Apply merges p into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.Cart != nil {
		u.Cart = *p.Cart
	}
	if p.Wishlist != nil {
		u.Wishlist = *p.Wishlist
	}
	if p.Orders != nil {
		u.Orders = *p.Orders
	}
}
