package tenant

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vendamais/orderhub/internal/apperr"
)

// Additionals, payment methods and webhook subscriptions share the same thin
// create/list/delete shape.

type AdditionalInput struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

func (r *Repo) CreateAdditional(ctx context.Context, companyID int64, in AdditionalInput) (*Additional, error) {
	if in.Name == "" {
		return nil, apperr.New(apperr.Validation, "name is required")
	}
	if in.Price.IsNegative() {
		return nil, apperr.New(apperr.Validation, "price cannot be negative")
	}
	if _, err := CompanyByID(ctx, r.DB, companyID); err != nil {
		return nil, err
	}

	var a Additional
	err := r.DB.QueryRow(ctx, `
		INSERT INTO additionals (company_id, name, price) VALUES ($1, $2, $3)
		RETURNING id, company_id, name, price`,
		companyID, in.Name, in.Price).
		Scan(&a.ID, &a.CompanyID, &a.Name, &a.Price)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "insert additional")
	}
	return &a, nil
}

func (r *Repo) ListAdditionals(ctx context.Context, companyID int64) ([]Additional, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, company_id, name, price FROM additionals
		WHERE company_id=$1 ORDER BY name ASC`, companyID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "list additionals")
	}
	defer rows.Close()

	var out []Additional
	for rows.Next() {
		var a Additional
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Name, &a.Price); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteAdditional(ctx context.Context, companyID, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM additionals WHERE id=$1 AND company_id=$2`, id, companyID)
	if err != nil {
		return apperr.Wrap(err, apperr.Internal, "delete additional")
	}
	if ct.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "additional not found")
	}
	return nil
}

func (r *Repo) CreatePaymentMethod(ctx context.Context, companyID int64, name string) (*PaymentMethod, error) {
	if name == "" {
		return nil, apperr.New(apperr.Validation, "name is required")
	}
	if _, err := CompanyByID(ctx, r.DB, companyID); err != nil {
		return nil, err
	}

	var pm PaymentMethod
	err := r.DB.QueryRow(ctx, `
		INSERT INTO payment_methods (company_id, name) VALUES ($1, $2)
		RETURNING id, company_id, name`, companyID, name).
		Scan(&pm.ID, &pm.CompanyID, &pm.Name)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "insert payment method")
	}
	return &pm, nil
}

func (r *Repo) ListPaymentMethods(ctx context.Context, companyID int64) ([]PaymentMethod, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, company_id, name FROM payment_methods
		WHERE company_id=$1 ORDER BY name ASC`, companyID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "list payment methods")
	}
	defer rows.Close()

	var out []PaymentMethod
	for rows.Next() {
		var pm PaymentMethod
		if err := rows.Scan(&pm.ID, &pm.CompanyID, &pm.Name); err != nil {
			return nil, err
		}
		out = append(out, pm)
	}
	return out, rows.Err()
}

func (r *Repo) DeletePaymentMethod(ctx context.Context, companyID, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM payment_methods WHERE id=$1 AND company_id=$2`, id, companyID)
	if err != nil {
		return apperr.Wrap(err, apperr.Internal, "delete payment method")
	}
	if ct.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "payment method not found")
	}
	return nil
}

type WebhookInput struct {
	URL    string `json:"url"`
	Action string `json:"action"`
}

func (r *Repo) CreateWebhook(ctx context.Context, companyID int64, in WebhookInput) (*Webhook, error) {
	if in.URL == "" || in.Action == "" {
		return nil, apperr.New(apperr.Validation, "url and action are required")
	}
	if _, err := CompanyByID(ctx, r.DB, companyID); err != nil {
		return nil, err
	}

	var w Webhook
	err := r.DB.QueryRow(ctx, `
		INSERT INTO webhooks (company_id, url, action) VALUES ($1, $2, $3)
		RETURNING id, company_id, url, action`, companyID, in.URL, in.Action).
		Scan(&w.ID, &w.CompanyID, &w.URL, &w.Action)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "insert webhook")
	}
	return &w, nil
}

func (r *Repo) ListWebhooks(ctx context.Context, companyID int64) ([]Webhook, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, company_id, url, action FROM webhooks
		WHERE company_id=$1 ORDER BY id`, companyID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "list webhooks")
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

func (r *Repo) DeleteWebhook(ctx context.Context, companyID, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM webhooks WHERE id=$1 AND company_id=$2`, id, companyID)
	if err != nil {
		return apperr.Wrap(err, apperr.Internal, "delete webhook")
	}
	if ct.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "webhook not found")
	}
	return nil
}
