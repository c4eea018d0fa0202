package services

import (
	"sort"
	"strings"

	"shopfront/internal/domain"
	applog "shopfront/internal/log"
)

type CatalogService struct {
	Products ProductStore
}

func NewCatalogService(products ProductStore) *CatalogService {
	return &CatalogService{Products: products}
}

// ProductInput is the admin create/replace payload.
type ProductInput struct {
	Name          string   `json:"name" validate:"required,max=120"`
	Description   string   `json:"description" validate:"max=2000"`
	Price         float64  `json:"price" validate:"gte=0"`
	PreviousPrice float64  `json:"previousPrice" validate:"gte=0"`
	Stock         int      `json:"stock" validate:"gte=0"`
	Category      string   `json:"category" validate:"required,max=60"`
	Type          string   `json:"type" validate:"max=60"`
	Images        []string `json:"images"`
	Sizes         []string `json:"sizes"`
	Rating        float64  `json:"rating" validate:"gte=0"`
	ReviewCount   int      `json:"reviewCount" validate:"gte=0"`
	Features      []string `json:"features"`
	NewArrival    bool     `json:"newArrival"`
	TopSelling    bool     `json:"topSelling"`
	Active        *bool    `json:"active"`
}

func (in ProductInput) product(id string) domain.Product {
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}
	return domain.Product{
		ID: id, Name: strings.TrimSpace(in.Name), Description: in.Description, Price: in.Price,
		PreviousPrice: in.PreviousPrice, Stock: in.Stock, Category: in.Category, Type: in.Type,
		Images: images, Sizes: in.Sizes, Rating: in.Rating, ReviewCount: in.ReviewCount,
		Features: in.Features, NewArrival: in.NewArrival, TopSelling: in.TopSelling, Active: active,
	}
}

// Browse lists active products for shoppers.
func (s *CatalogService) Browse(f domain.ProductFilter) ([]domain.Product, error) {
	f.ActiveOnly = true
	return s.Products.List(f)
}

// List includes inactive products; admin use.
func (s *CatalogService) List(f domain.ProductFilter) ([]domain.Product, error) {
	return s.Products.List(f)
}

func (s *CatalogService) Get(id string) (domain.Product, error) {
	return s.Products.Get(id)
}

func (s *CatalogService) Create(in ProductInput) (domain.Product, error) {
	if err := check(in); err != nil {
		return domain.Product{}, err
	}
	p := in.product("")
	if err := s.Products.Create(&p); err != nil {
		return domain.Product{}, err
	}
	applog.Audit(nil, "admin.product.create", map[string]any{"product": p.ID})
	return p, nil
}

func (s *CatalogService) Replace(id string, in ProductInput) (domain.Product, error) {
	if err := check(in); err != nil {
		return domain.Product{}, err
	}
	p := in.product(id)
	if err := s.Products.Replace(p); err != nil {
		return domain.Product{}, err
	}
	applog.Audit(nil, "admin.product.replace", map[string]any{"product": id})
	return p, nil
}

func (s *CatalogService) Patch(id string, patch domain.ProductPatch) (domain.Product, error) {
	if patch.Stock != nil && *patch.Stock < 0 {
		return domain.Product{}, ErrInvalidStock
	}
	if patch.Price != nil && *patch.Price < 0 {
		return domain.Product{}, &ValidationError{Fields: map[string]string{"price": "must be at least 0"}}
	}
	return s.Products.Patch(id, patch)
}

func (s *CatalogService) Delete(id string) error {
	if err := s.Products.Delete(id); err != nil {
		return err
	}
	applog.Audit(nil, "admin.product.delete", map[string]any{"product": id})
	return nil
}

type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Categories counts active products per category, sorted by name.
func (s *CatalogService) Categories() ([]Category, error) {
	all, err := s.Browse(domain.ProductFilter{})
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, p := range all {
		counts[p.Category]++
	}
	out := make([]Category, 0, len(counts))
	for name, n := range counts {
		out = append(out, Category{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
