package domain

type ProductFilter struct {
	IDs        []string
	Category   string
	Type       string
	Query      string
	ActiveOnly bool
	NewArrival bool
	TopSelling bool
}

// ProductPatch is a merge-patch over a product; nil fields are untouched.
type ProductPatch struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	PreviousPrice *float64 `json:"previousPrice,omitempty"`
	Stock         *int     `json:"stock,omitempty"`
	Active        *bool    `json:"active,omitempty"`
	NewArrival    *bool    `json:"newArrival,omitempty"`
	TopSelling    *bool    `json:"topSelling,omitempty"`
}

func (p ProductPatch) Apply(d *Product) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Price != nil {
		d.Price = *p.Price
	}
	if p.PreviousPrice != nil {
		d.PreviousPrice = *p.PreviousPrice
	}
	if p.Stock != nil {
		d.Stock = *p.Stock
	}
	if p.Active != nil {
		d.Active = *p.Active
	}
	if p.NewArrival != nil {
		d.NewArrival = *p.NewArrival
	}
	if p.TopSelling != nil {
		d.TopSelling = *p.TopSelling
	}
}
