package restclient

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"shopfront/internal/domain"
)

// Products implements the product store over /products.
type Products struct{ c *Client }

func NewProducts(c *Client) *Products { return &Products{c: c} }

// List maps the filter onto json-server query parameters: repeated id for
// id sets, q for free text, plain equality for the rest.
func (s *Products) List(f domain.ProductFilter) ([]domain.Product, error) {
	q := url.Values{}
	for _, id := range f.IDs {
		q.Add("id", id)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.ActiveOnly {
		q.Set("active", "true")
	}
	if f.NewArrival {
		q.Set("newArrival", "true")
	}
	if f.TopSelling {
		q.Set("topSelling", "true")
	}
	var docs []productDoc
	if err := s.c.get("/products", q, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *Products) Get(id string) (domain.Product, error) {
	var d productDoc
	if err := s.c.get("/products/"+escape(id), nil, &d); err != nil {
		return domain.Product{}, err
	}
	return d.toDomain(), nil
}

func (s *Products) Create(p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	var created productDoc
	if err := s.c.send(fiber.MethodPost, "/products", productDocFrom(*p), &created); err != nil {
		return err
	}
	if created.ID != "" {
		p.ID = created.ID
	}
	return nil
}

func (s *Products) Replace(p domain.Product) error {
	return s.c.send(fiber.MethodPut, "/products/"+escape(p.ID), productDocFrom(p), nil)
}

func (s *Products) Patch(id string, p domain.ProductPatch) (domain.Product, error) {
	var out productDoc
	err := s.c.send(fiber.MethodPatch, "/products/"+escape(id), productPatchDoc{ProductPatch: p, Count: p.Stock}, &out)
	return out.toDomain(), err
}

func (s *Products) Delete(id string) error {
	return s.c.send(fiber.MethodDelete, "/products/"+escape(id), nil, nil)
}
