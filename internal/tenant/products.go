package tenant

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vendamais/orderhub/internal/apperr"
)

type ProductInput struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    *int            `json:"stock,omitempty"`
}

func (in ProductInput) validate() error {
	if in.Name == "" || in.Category == "" {
		return apperr.New(apperr.Validation, "name and category are required")
	}
	if in.Price.IsNegative() || in.Price.IsZero() {
		return apperr.New(apperr.Validation, "price must be a positive number")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return apperr.New(apperr.Validation, "stock cannot be negative")
	}
	return nil
}

func (r *Repo) CreateProduct(ctx context.Context, companyID int64, in ProductInput) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := CompanyByID(ctx, r.DB, companyID); err != nil {
		return nil, err
	}

	stock := 0
	if in.Stock != nil {
		stock = *in.Stock
	}
	var p Product
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products (company_id, name, category, price, stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, company_id, name, category, price, stock, created_at, updated_at`,
		companyID, in.Name, in.Category, in.Price, stock).
		Scan(&p.ID, &p.CompanyID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "insert product")
	}
	return &p, nil
}

type ProductFilter struct {
	Term     string
	Category string
}

func (r *Repo) ListProducts(ctx context.Context, companyID int64, f ProductFilter) ([]Product, error) {
	sql := `SELECT id, company_id, name, category, price, stock, created_at, updated_at
	        FROM products WHERE company_id=$1`
	args := []any{companyID}
	if f.Term != "" {
		args = append(args, "%"+f.Term+"%")
		sql += ` AND name ILIKE $2`
	}
	if f.Category != "" {
		args = append(args, f.Category)
		if f.Term != "" {
			sql += ` AND category = $3`
		} else {
			sql += ` AND category = $2`
		}
	}
	sql += ` ORDER BY name ASC`

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "list products")
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateProduct(ctx context.Context, companyID, id int64, in ProductInput) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := ProductByID(ctx, r.DB, companyID, id); err != nil {
		return nil, err
	}

	var p Product
	err := r.DB.QueryRow(ctx, `
		UPDATE products
		SET name=$3, category=$4, price=$5, stock=COALESCE($6, stock), updated_at=now()
		WHERE id=$1 AND company_id=$2
		RETURNING id, company_id, name, category, price, stock, created_at, updated_at`,
		id, companyID, in.Name, in.Category, in.Price, in.Stock).
		Scan(&p.ID, &p.CompanyID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "update product")
	}
	return &p, nil
}

func (r *Repo) DeleteProduct(ctx context.Context, companyID, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1 AND company_id=$2`, id, companyID)
	if err != nil {
		return apperr.Wrap(err, apperr.Internal, "delete product")
	}
	if ct.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "product not found")
	}
	return nil
}
