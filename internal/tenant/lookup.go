package tenant

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/vendamais/orderhub/internal/apperr"
	"github.com/vendamais/orderhub/internal/postgres"
)

// Lookups take a postgres.Querier so the order core can run them inside its
// own transaction.

func CompanyByID(ctx context.Context, q postgres.Querier, id int64) (*Company, error) {
	var c Company
	err := q.QueryRow(ctx, `SELECT id, name, created_at FROM companies WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "company not found")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func ClientByID(ctx context.Context, q postgres.Querier, companyID, id int64) (*Client, error) {
	var c Client
	err := q.QueryRow(ctx, `
		SELECT id, company_id, name, phone_number, document, address, created_at, updated_at
		FROM clients WHERE id=$1 AND company_id=$2`, id, companyID).
		Scan(&c.ID, &c.CompanyID, &c.Name, &c.PhoneNumber, &c.Document, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "client not found for this company")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func ProductByID(ctx context.Context, q postgres.Querier, companyID, id int64) (*Product, error) {
	var p Product
	err := q.QueryRow(ctx, `
		SELECT id, company_id, name, category, price, stock, created_at, updated_at
		FROM products WHERE id=$1 AND company_id=$2`, id, companyID).
		Scan(&p.ID, &p.CompanyID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Newf(apperr.NotFound, "product %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func AdditionalByID(ctx context.Context, q postgres.Querier, companyID, id int64) (*Additional, error) {
	var a Additional
	err := q.QueryRow(ctx, `
		SELECT id, company_id, name, price FROM additionals WHERE id=$1 AND company_id=$2`, id, companyID).
		Scan(&a.ID, &a.CompanyID, &a.Name, &a.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.Newf(apperr.NotFound, "additional %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func WebhooksByAction(ctx context.Context, q postgres.Querier, companyID int64, action string) ([]Webhook, error) {
	rows, err := q.Query(ctx, `
		SELECT id, company_id, url, action FROM webhooks
		WHERE company_id=$1 AND action=$2 ORDER BY id`, companyID, action)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Webhook
	for rows.Next() {
		var w Webhook
		if err := rows.Scan(&w.ID, &w.CompanyID, &w.URL, &w.Action); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
