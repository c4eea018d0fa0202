package domain

import "time"

type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	PreviousPrice float64  `json:"previousPrice,omitempty"`
	Stock         int      `json:"stock"`
	Category      string   `json:"category"`
	Type          string   `json:"type"`
	Images        []string `json:"images"`
	Sizes         []string `json:"sizes,omitempty"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"reviewCount"`
	Features      []string `json:"features,omitempty"`
	NewArrival    bool     `json:"newArrival"`
	TopSelling    bool     `json:"topSelling"`
	Active        bool     `json:"active"`
}

// Image returns the first image reference, or "".
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// CartItem is a product snapshot plus quantity. Quantity is always >= 1.
type CartItem struct {
	Product
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"addedAt"`
}

type WishlistItem struct {
	Product
	AddedAt time.Time `json:"addedAt"`
}

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

var OrderStatuses = []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCOD     PaymentMethod = "cod"
	PaymentGateway PaymentMethod = "gateway"
)

func (m PaymentMethod) Valid() bool { return m == PaymentCOD || m == PaymentGateway }

type OrderLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	GST       float64 `json:"gst"`
	Total     float64 `json:"total"`
	Image     string  `json:"image,omitempty"`
}

type Shipping struct {
	Name       string `json:"name" validate:"required,max=80"`
	Email      string `json:"email" validate:"required,emailpattern"`
	Phone      string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address    string `json:"address" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=80"`
	State      string `json:"state" validate:"required,max=80"`
	PostalCode string `json:"postalCode" validate:"required,max=12"`
	Country    string `json:"country" validate:"required,max=80"`
}

// Order is immutable after creation except for Status.
type Order struct {
	ID            string        `json:"id"`
	Items         []OrderLine   `json:"items"`
	TotalAmount   float64       `json:"totalAmount"`
	CreatedAt     time.Time     `json:"createdAt"`
	Status        OrderStatus   `json:"status"`
	PaymentID     string        `json:"paymentId,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Shipping      Shipping      `json:"shipping"`
}
