package services

import (
	"errors"
	"fmt"

	"shopfront/internal/domain"
	applog "shopfront/internal/log"
)

type InventoryService struct {
	Products ProductStore
}

func NewInventoryService(products ProductStore) *InventoryService {
	return &InventoryService{Products: products}
}

// Decrement lowers stock for every line, floored at zero. Each product is
// read and written independently: there is no batching and no rollback, so a
// failure part-way leaves earlier products decremented. All failures are
// returned joined.
func (s *InventoryService) Decrement(lines []domain.OrderLine) error {
	var errs []error
	for _, l := range lines {
		p, err := s.Products.Get(l.ProductID)
		if err != nil {
			errs = append(errs, fmt.Errorf("decrement %s: %w", l.ProductID, err))
			continue
		}
		next := max(0, p.Stock-l.Quantity)
		if _, err := s.Products.Patch(l.ProductID, domain.ProductPatch{Stock: &next}); err != nil {
			errs = append(errs, fmt.Errorf("decrement %s: %w", l.ProductID, err))
			continue
		}
		applog.Info(nil, "stock.decrement", map[string]any{"product": l.ProductID, "from": p.Stock, "to": next})
	}
	return errors.Join(errs...)
}

// SetStock is the admin absolute set.
func (s *InventoryService) SetStock(productID string, qty int) (domain.Product, error) {
	if qty < 0 {
		return domain.Product{}, ErrInvalidStock
	}
	return s.Products.Patch(productID, domain.ProductPatch{Stock: &qty})
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}

const lowStockAt = 5

// CheckAvailability buckets a product's stock count.
func (s *InventoryService) CheckAvailability(productID string) (Availability, error) {
	p, err := s.Products.Get(productID)
	if err != nil {
		return Availability{}, err
	}
	status := "OUT_OF_STOCK"
	switch {
	case p.Stock >= lowStockAt:
		status = "IN_STOCK"
	case p.Stock > 0:
		status = "LOW_STOCK"
	}
	return Availability{Status: status, Qty: p.Stock}, nil
}

// LowStock lists products below the low-stock threshold.
func (s *InventoryService) LowStock() ([]domain.Product, error) {
	all, err := s.Products.List(domain.ProductFilter{})
	if err != nil {
		return nil, err
	}
	var out []domain.Product
	for _, p := range all {
		if p.Stock < lowStockAt {
			out = append(out, p)
		}
	}
	return out, nil
}
