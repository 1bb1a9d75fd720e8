package tenant

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Client(ctx context.Context, companyID, id int64) (*Client, error) {
	return ClientByID(ctx, r.DB, companyID, id)
}

func (r *Repo) Product(ctx context.Context, companyID, id int64) (*Product, error) {
	return ProductByID(ctx, r.DB, companyID, id)
}

// StockWebhooks feeds the notifier's fan-out.
func (r *Repo) StockWebhooks(ctx context.Context, companyID int64) ([]Webhook, error) {
	return WebhooksByAction(ctx, r.DB, companyID, ActionStock)
}
