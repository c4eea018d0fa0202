package repos

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shopfront/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

type productRow struct {
	ID            string  `db:"id"`
	Name          string  `db:"name"`
	Description   string  `db:"description"`
	Price         float64 `db:"price"`
	PreviousPrice float64 `db:"previous_price"`
	Stock         int     `db:"stock"`
	Category      string  `db:"category"`
	Type          string  `db:"type"`
	ImagesJSON    string  `db:"images_json"`
	SizesJSON     string  `db:"sizes_json"`
	FeaturesJSON  string  `db:"features_json"`
	Rating        float64 `db:"rating"`
	ReviewCount   int     `db:"review_count"`
	NewArrival    bool    `db:"new_arrival"`
	TopSelling    bool    `db:"top_selling"`
	Active        bool    `db:"active"`
}

const productCols = `id, name, description, price, previous_price, stock, category, type,
  images_json, sizes_json, features_json, rating, review_count, new_arrival, top_selling, active`

func (r productRow) toDomain() domain.Product {
	p := domain.Product{
		ID: r.ID, Name: r.Name, Description: r.Description, Price: r.Price, PreviousPrice: r.PreviousPrice,
		Stock: r.Stock, Category: r.Category, Type: r.Type, Rating: r.Rating, ReviewCount: r.ReviewCount,
		NewArrival: r.NewArrival, TopSelling: r.TopSelling, Active: r.Active,
		Images:   fromJSON[[]string](r.ImagesJSON),
		Sizes:    fromJSON[[]string](r.SizesJSON),
		Features: fromJSON[[]string](r.FeaturesJSON),
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return p
}

func rowFrom(p *domain.Product) productRow {
	return productRow{
		ID: p.ID, Name: p.Name, Description: p.Description, Price: p.Price, PreviousPrice: p.PreviousPrice,
		Stock: p.Stock, Category: p.Category, Type: p.Type, Rating: p.Rating, ReviewCount: p.ReviewCount,
		NewArrival: p.NewArrival, TopSelling: p.TopSelling, Active: p.Active,
		ImagesJSON: mustJSON(p.Images), SizesJSON: mustJSON(p.Sizes), FeaturesJSON: mustJSON(p.Features),
	}
}

func (r *ProductRepo) List(f domain.ProductFilter) ([]domain.Product, error) {
	where := `1 = 1`
	args := []any{}
	if f.ActiveOnly {
		where += ` AND active = 1`
	}
	if f.Category != "" {
		where += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Type != "" {
		where += ` AND type = ?`
		args = append(args, f.Type)
	}
	if f.NewArrival {
		where += ` AND new_arrival = 1`
	}
	if f.TopSelling {
		where += ` AND top_selling = 1`
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		where += ` AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	query := `SELECT ` + productCols + ` FROM products WHERE ` + where
	if len(f.IDs) > 0 {
		q, inArgs, err := sqlx.In(` AND id IN (?)`, f.IDs)
		if err != nil {
			return nil, err
		}
		query += q
		args = append(args, inArgs...)
	}
	query += ` ORDER BY created_at, id`

	var rows []productRow
	if err := r.db.Select(&rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var row productRow
	err := r.db.Get(&row, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return row.toDomain(), nil
}

// Create inserts p, assigning an id when empty.
func (r *ProductRepo) Create(p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.db.NamedExec(`
		INSERT INTO products(`+productCols+`)
		VALUES(:id, :name, :description, :price, :previous_price, :stock, :category, :type,
		       :images_json, :sizes_json, :features_json, :rating, :review_count, :new_arrival, :top_selling, :active)
	`, rowFrom(p))
	return err
}

// Replace overwrites every field of an existing product (PUT semantics).
func (r *ProductRepo) Replace(p domain.Product) error {
	res, err := r.db.NamedExec(`
		UPDATE products SET
		  name=:name, description=:description, price=:price, previous_price=:previous_price, stock=:stock,
		  category=:category, type=:type, images_json=:images_json, sizes_json=:sizes_json,
		  features_json=:features_json, rating=:rating, review_count=:review_count,
		  new_arrival=:new_arrival, top_selling=:top_selling, active=:active, updated_at=CURRENT_TIMESTAMP
		WHERE id=:id
	`, rowFrom(&p))
	if err != nil {
		return err
	}
	return affected(res)
}

// Patch merges non-nil fields of patch into the product and returns the result.
func (r *ProductRepo) Patch(id string, patch domain.ProductPatch) (domain.Product, error) {
	p, err := r.Get(id)
	if err != nil {
		return domain.Product{}, err
	}
	patch.Apply(&p)
	if err := r.Replace(p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (r *ProductRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(res)
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
