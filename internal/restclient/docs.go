package restclient

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"shopfront/internal/domain"
)

// productDoc reads stock from "stock" or, for records written by the older
// storefront, "count". Writes carry both keys so either reader sees the
// same number.
type productDoc struct {
	domain.Product
	Stock *int `json:"stock,omitempty"`
	Count *int `json:"count,omitempty"`
}

func (d productDoc) toDomain() domain.Product {
	p := d.Product
	switch {
	case d.Stock != nil:
		p.Stock = *d.Stock
	case d.Count != nil:
		p.Stock = *d.Count
	}
	return p
}

func productDocFrom(p domain.Product) productDoc {
	n := p.Stock
	return productDoc{Product: p, Stock: &n, Count: &n}
}

// productPatchDoc mirrors a stock change onto "count".
type productPatchDoc struct {
	domain.ProductPatch
	Count *int `json:"count,omitempty"`
}

// flexFloat accepts a JSON number or a numeric string ("118.00").
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type orderLineDoc struct {
	ProductID string    `json:"productId,omitempty"`
	LegacyID  string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Quantity  int       `json:"quantity"`
	Price     flexFloat `json:"price"`
	GST       flexFloat `json:"gst"`
	Total     flexFloat `json:"total"`
	Image     string    `json:"image,omitempty"`
}

// orderDoc reads both the current order shape and the older one, which
// used "orderId" and "date" and wrote money as strings.
type orderDoc struct {
	ID            string               `json:"id,omitempty"`
	OrderID       string               `json:"orderId,omitempty"`
	Items         []orderLineDoc       `json:"items"`
	TotalAmount   flexFloat            `json:"totalAmount"`
	CreatedAt     *time.Time           `json:"createdAt,omitempty"`
	Date          *time.Time           `json:"date,omitempty"`
	Status        domain.OrderStatus   `json:"status"`
	PaymentID     string               `json:"paymentId,omitempty"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod,omitempty"`
	Shipping      domain.Shipping      `json:"shipping"`
}

func (d orderDoc) toDomain() domain.Order {
	o := domain.Order{
		ID: d.ID, TotalAmount: float64(d.TotalAmount), Status: d.Status,
		PaymentID: d.PaymentID, PaymentMethod: d.PaymentMethod, Shipping: d.Shipping,
		Items: make([]domain.OrderLine, 0, len(d.Items)),
	}
	if o.ID == "" {
		o.ID = d.OrderID
	}
	switch {
	case d.CreatedAt != nil:
		o.CreatedAt = *d.CreatedAt
	case d.Date != nil:
		o.CreatedAt = *d.Date
	}
	if o.Status == "" {
		o.Status = domain.StatusPending
	}
	if o.PaymentMethod == "" {
		o.PaymentMethod = domain.PaymentGateway
		if strings.HasPrefix(o.ID, "COD-") {
			o.PaymentMethod = domain.PaymentCOD
		}
	}
	for _, l := range d.Items {
		pid := l.ProductID
		if pid == "" {
			pid = l.LegacyID
		}
		o.Items = append(o.Items, domain.OrderLine{
			ProductID: pid, Name: l.Name, Type: l.Type, Quantity: l.Quantity,
			Price: float64(l.Price), GST: float64(l.GST), Total: float64(l.Total), Image: l.Image,
		})
	}
	return o
}

func ordersToDomain(docs []orderDoc) []domain.Order {
	out := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out
}
