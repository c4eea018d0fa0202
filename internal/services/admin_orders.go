package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"shopfront/internal/domain"
	applog "shopfront/internal/log"
)

// OrderRecord is an order denormalized with its owner.
type OrderRecord struct {
	domain.Order
	UserID   string `json:"userId"`
	Customer string `json:"customer"`
	Email    string `json:"email"`
}

type OrderFilter struct {
	Status domain.OrderStatus
	Query  string
	From   time.Time
	To     time.Time
}

// AdminOrderService keeps the admin's denormalized view of every user's
// orders. Status changes are applied to the view first, then written to the
// owning user record; a failed write restores the previous status.
type AdminOrderService struct {
	Users    UserStore
	Products ProductStore
	Inv      *InventoryService

	mu   sync.Mutex
	view []OrderRecord
}

func NewAdminOrderService(users UserStore, products ProductStore, inv *InventoryService) *AdminOrderService {
	return &AdminOrderService{Users: users, Products: products, Inv: inv}
}

// AllOrders reloads the view from every user record, newest first.
func (s *AdminOrderService) AllOrders() ([]OrderRecord, error) {
	users, err := s.Users.List()
	if err != nil {
		return nil, err
	}
	var out []OrderRecord
	for _, u := range users {
		for _, o := range u.Orders {
			out = append(out, OrderRecord{Order: o, UserID: u.ID, Customer: u.Name, Email: u.Email})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	s.mu.Lock()
	s.view = out
	s.mu.Unlock()
	return append([]OrderRecord{}, out...), nil
}

// View returns the current in-memory view without reloading.
func (s *AdminOrderService) View() []OrderRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]OrderRecord{}, s.view...)
}

// UpdateStatus sets any status from any other.
func (s *AdminOrderService) UpdateStatus(orderID string, status domain.OrderStatus) (OrderRecord, error) {
	if !status.Valid() {
		return OrderRecord{}, ErrInvalidStatus
	}
	if s.indexOf(orderID) < 0 {
		if _, err := s.AllOrders(); err != nil {
			return OrderRecord{}, err
		}
	}

	s.mu.Lock()
	i := s.indexOfLocked(orderID)
	if i < 0 {
		s.mu.Unlock()
		return OrderRecord{}, ErrOrderNotFound
	}
	prev := s.view[i].Status
	s.view[i].Status = status
	rec := s.view[i]
	s.mu.Unlock()

	if err := s.writeStatus(rec.UserID, orderID, status); err != nil {
		s.mu.Lock()
		if j := s.indexOfLocked(orderID); j >= 0 {
			s.view[j].Status = prev
		}
		s.mu.Unlock()
		applog.Error(nil, "admin.orders.status.fail", err, map[string]any{"order_id": orderID, "status": string(status)})
		return OrderRecord{}, err
	}
	applog.Audit(nil, "admin.orders.status", map[string]any{"order_id": orderID, "from": string(prev), "to": string(status)})
	return rec, nil
}

// writeStatus rewrites the owner's full orders array with one order's status changed.
func (s *AdminOrderService) writeStatus(userID, orderID string, status domain.OrderStatus) error {
	u, err := s.Users.ByID(userID)
	if err != nil {
		return err
	}
	orders := append([]domain.Order{}, u.Orders...)
	found := false
	for i := range orders {
		if orders[i].ID == orderID {
			orders[i].Status = status
			found = true
		}
	}
	if !found {
		return ErrOrderNotFound
	}
	_, err = s.Users.Patch(userID, domain.UserPatch{Orders: &orders})
	return err
}

func (s *AdminOrderService) indexOf(orderID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOfLocked(orderID)
}

func (s *AdminOrderService) indexOfLocked(orderID string) int {
	for i, r := range s.view {
		if r.ID == orderID {
			return i
		}
	}
	return -1
}

// FilterOrders keeps records matching every set criterion. Query matches the
// order id, customer name or email, case-insensitively. To is inclusive of the
// whole day when it has no time part.
func FilterOrders(in []OrderRecord, f OrderFilter) []OrderRecord {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	to := f.To
	if !to.IsZero() && to.Equal(to.Truncate(24*time.Hour)) {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	out := make([]OrderRecord, 0, len(in))
	for _, r := range in {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(r.ID), q) &&
			!strings.Contains(strings.ToLower(r.Customer), q) &&
			!strings.Contains(strings.ToLower(r.Email), q) {
			continue
		}
		if !f.From.IsZero() && r.CreatedAt.Before(f.From) {
			continue
		}
		if !to.IsZero() && r.CreatedAt.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

var csvHeader = []string{"Order ID", "Customer", "Email", "Total Amount", "Status", "Date"}

// ExportCSV writes one row per order under the fixed header.
func ExportCSV(w io.Writer, orders []OrderRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, o := range orders {
		if err := cw.Write([]string{
			o.ID, o.Customer, o.Email,
			fmt.Sprintf("%.2f", o.TotalAmount),
			string(o.Status),
			o.CreatedAt.Format("2006-01-02 15:04"),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type Stats struct {
	Revenue        float64                    `json:"revenue"`
	Orders         int                        `json:"orders"`
	OrdersByStatus map[domain.OrderStatus]int `json:"ordersByStatus"`
	Users          int                        `json:"users"`
	Products       int                        `json:"products"`
	LowStock       []domain.Product           `json:"lowStock"`
}

// Stats backs the admin dashboard. Cancelled orders do not count as revenue.
func (s *AdminOrderService) Stats() (Stats, error) {
	orders, err := s.AllOrders()
	if err != nil {
		return Stats{}, err
	}
	users, err := s.Users.List()
	if err != nil {
		return Stats{}, err
	}
	products, err := s.Products.List(domain.ProductFilter{})
	if err != nil {
		return Stats{}, err
	}
	low, err := s.Inv.LowStock()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		Orders:         len(orders),
		OrdersByStatus: map[domain.OrderStatus]int{},
		Users:          len(users),
		Products:       len(products),
		LowStock:       low,
	}
	for _, status := range domain.OrderStatuses {
		st.OrdersByStatus[status] = 0
	}
	for _, o := range orders {
		st.OrdersByStatus[o.Status]++
		if o.Status != domain.StatusCancelled {
			st.Revenue += o.TotalAmount
		}
	}
	st.Revenue = float64(domain.MinorUnits(st.Revenue)) / 100
	if st.LowStock == nil {
		st.LowStock = []domain.Product{}
	}
	return st, nil
}
