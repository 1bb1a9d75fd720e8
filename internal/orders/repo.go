package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vendamais/orderhub/internal/apperr"
	"github.com/vendamais/orderhub/internal/postgres"
	"github.com/vendamais/orderhub/internal/stock"
	"github.com/vendamais/orderhub/internal/tenant"
)

type Repo struct{ DB *pgxpool.Pool }

// resolveItem validates one requested line against the tenant store and
// fixes its unit price: the caller's explicit price when given, the
// product's current price otherwise.
func resolveItem(ctx context.Context, q postgres.Querier, companyID int64, in ItemInput) (Item, error) {
	if in.ProductID == 0 {
		return Item{}, apperr.New(apperr.Validation, "each item must have a product_id")
	}
	if in.Quantity <= 0 {
		return Item{}, apperr.Newf(apperr.Validation, "quantity for product %d must be greater than zero", in.ProductID)
	}

	product, err := tenant.ProductByID(ctx, q, companyID, in.ProductID)
	if err != nil {
		return Item{}, err
	}
	if in.AdditionalID != nil {
		if _, err := tenant.AdditionalByID(ctx, q, companyID, *in.AdditionalID); err != nil {
			return Item{}, err
		}
	}

	price := in.Price
	if price.IsZero() {
		price = product.Price
	}
	if !price.IsPositive() {
		return Item{}, apperr.Newf(apperr.Validation, "price for product %d must be greater than zero", in.ProductID)
	}

	return Item{
		CompanyID:    companyID,
		ProductID:    in.ProductID,
		AdditionalID: in.AdditionalID,
		Quantity:     in.Quantity,
		Price:        price,
	}, nil
}

// resolveBatch validates every requested line before the caller persists
// any of them. The first invalid line rejects the whole batch.
func resolveBatch(ctx context.Context, q postgres.Querier, companyID int64, inputs []ItemInput) ([]Item, decimal.Decimal, error) {
	items := make([]Item, 0, len(inputs))
	total := decimal.Zero
	for _, in := range inputs {
		item, err := resolveItem(ctx, q, companyID, in)
		if err != nil {
			return nil, decimal.Zero, err
		}
		items = append(items, item)
		total = total.Add(item.Subtotal())
	}
	return items, total, nil
}

// Create inserts the order and its items in one transaction, decrementing
// product stock through the ledger. On an insufficient-stock rejection the
// transaction rolls back whole and the returned alerts carry the lost-sale
// notification for the caller to emit alongside the error.
func (r *Repo) Create(ctx context.Context, companyID int64, in CreateInput) (*Order, []stock.Alert, error) {
	if in.ClientID == 0 || len(in.Items) == 0 {
		return nil, nil, apperr.New(apperr.Validation, "client_id and items are required")
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, apperr.Wrap(err, apperr.Internal, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tenant.CompanyByID(ctx, tx, companyID); err != nil {
		return nil, nil, err
	}
	client, err := tenant.ClientByID(ctx, tx, companyID, in.ClientID)
	if err != nil {
		return nil, nil, err
	}

	items, total, err := resolveBatch(ctx, tx, companyID, in.Items)
	if err != nil {
		return nil, nil, err
	}
	demands := make([]stock.Demand, 0, len(items))
	for _, item := range items {
		demands = append(demands, stock.Demand{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	address := in.Address
	if address == "" {
		address = client.Address
	}

	o := Order{
		CompanyID:     companyID,
		ClientID:      in.ClientID,
		Status:        StatusPending,
		TotalValue:    total,
		Address:       address,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (company_id, client_id, status, total_value, address, payment_method, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		o.CompanyID, o.ClientID, o.Status, o.TotalValue, o.Address, o.PaymentMethod, o.Notes).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, nil, apperr.Wrap(err, apperr.Internal, "insert order")
	}

	for i := range items {
		items[i].OrderID = o.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (company_id, order_id, product_id, additional_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at`,
			companyID, o.ID, items[i].ProductID, items[i].AdditionalID, items[i].Quantity, items[i].Price).
			Scan(&items[i].ID, &items[i].CreatedAt, &items[i].UpdatedAt)
		if err != nil {
			return nil, nil, apperr.Wrap(err, apperr.Internal, "insert order item")
		}
	}

	alerts, err := stock.Apply(ctx, tx, companyID, demands)
	if err != nil {
		// alerts may carry a lost-sale notification to emit despite rollback
		return nil, alerts, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, apperr.Wrap(err, apperr.Internal, "commit order")
	}

	o.Items = items
	o.ClientName = client.Name
	o.ClientPhone = client.PhoneNumber
	return &o, alerts, nil
}

func (r *Repo) Get(ctx context.Context, companyID, orderID int64) (*Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		SELECT o.id, o.company_id, COALESCE(o.client_id, 0), o.status, o.total_value,
		       o.address, o.payment_method, o.notes, o.created_at, o.updated_at,
		       COALESCE(c.name, ''), COALESCE(c.phone_number, '')
		FROM orders o
		LEFT JOIN clients c ON c.id = o.client_id
		WHERE o.id=$1 AND o.company_id=$2`, orderID, companyID).
		Scan(&o.ID, &o.CompanyID, &o.ClientID, &o.Status, &o.TotalValue,
			&o.Address, &o.PaymentMethod, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
			&o.ClientName, &o.ClientPhone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "get order")
	}

	items, err := r.loadItems(ctx, companyID, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *Repo) List(ctx context.Context, companyID int64, f ListFilter) ([]Order, error) {
	sql := `
		SELECT o.id, o.company_id, COALESCE(o.client_id, 0), o.status, o.total_value,
		       o.address, o.payment_method, o.notes, o.created_at, o.updated_at,
		       COALESCE(c.name, ''), COALESCE(c.phone_number, '')
		FROM orders o
		LEFT JOIN clients c ON c.id = o.client_id
		WHERE o.company_id=$1`
	args := []any{companyID}
	if f.Status != "" {
		args = append(args, f.Status)
		sql += fmt.Sprintf(" AND o.status=$%d", len(args))
	}
	if f.ClientID != 0 {
		args = append(args, f.ClientID)
		sql += fmt.Sprintf(" AND o.client_id=$%d", len(args))
	}
	if f.PaymentMethod != "" {
		args = append(args, f.PaymentMethod)
		sql += fmt.Sprintf(" AND o.payment_method=$%d", len(args))
	}
	sql += " ORDER BY o.created_at DESC"

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "list orders")
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CompanyID, &o.ClientID, &o.Status, &o.TotalValue,
			&o.Address, &o.PaymentMethod, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
			&o.ClientName, &o.ClientPhone); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := r.loadItems(ctx, companyID, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *Repo) UpdateStatus(ctx context.Context, companyID, orderID int64, status Status) (*Order, error) {
	if !status.Valid() {
		return nil, apperr.Newf(apperr.Validation, "invalid status %q", status)
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$3, updated_at=now()
		WHERE id=$1 AND company_id=$2`, orderID, companyID, status)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "update order status")
	}
	if ct.RowsAffected() == 0 {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}
	return r.Get(ctx, companyID, orderID)
}

// Update applies a partial update to the order's fields. When Items is
// non-nil the item set is replaced wholesale and total_value recomputed
// from the new set; product stock is not adjusted by replacement.
func (r *Repo) Update(ctx context.Context, companyID, orderID int64, in UpdateInput) (*Order, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, apperr.Newf(apperr.Validation, "invalid status %q", *in.Status)
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := orderExists(ctx, tx, companyID, orderID); err != nil {
		return nil, err
	}

	var total *decimal.Decimal
	if in.Items != nil {
		if len(in.Items) == 0 {
			return nil, apperr.New(apperr.Validation, "items replacement cannot be empty")
		}
		items, sum, err := resolveBatch(ctx, tx, companyID, in.Items)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1 AND company_id=$2`, orderID, companyID); err != nil {
			return nil, apperr.Wrap(err, apperr.Internal, "replace order items")
		}
		for i := range items {
			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (company_id, order_id, product_id, additional_id, quantity, price)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				companyID, orderID, items[i].ProductID, items[i].AdditionalID, items[i].Quantity, items[i].Price)
			if err != nil {
				return nil, apperr.Wrap(err, apperr.Internal, "insert order item")
			}
		}
		total = &sum
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders SET
			status         = COALESCE($3, status),
			address        = COALESCE($4, address),
			payment_method = COALESCE($5, payment_method),
			notes          = COALESCE($6, notes),
			total_value    = COALESCE($7, total_value),
			updated_at     = now()
		WHERE id=$1 AND company_id=$2`,
		orderID, companyID, in.Status, in.Address, in.PaymentMethod, in.Notes, total)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "update order")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "commit order update")
	}
	return r.Get(ctx, companyID, orderID)
}

// Delete removes the order; items cascade with it. Stock consumed by the
// order is not restored.
func (r *Repo) Delete(ctx context.Context, companyID, orderID int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1 AND company_id=$2`, orderID, companyID)
	if err != nil {
		return apperr.Wrap(err, apperr.Internal, "delete order")
	}
	if ct.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "order not found")
	}
	return nil
}

func (r *Repo) loadItems(ctx context.Context, companyID, orderID int64) ([]Item, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT i.id, i.company_id, i.order_id, i.product_id, i.additional_id,
		       i.quantity, i.price, i.created_at, i.updated_at,
		       COALESCE(p.name, ''), COALESCE(p.category, ''), COALESCE(a.name, '')
		FROM order_items i
		LEFT JOIN products p ON p.id = i.product_id
		LEFT JOIN additionals a ON a.id = i.additional_id
		WHERE i.order_id=$1 AND i.company_id=$2
		ORDER BY i.created_at ASC, i.id ASC`, orderID, companyID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "load order items")
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.CompanyID, &it.OrderID, &it.ProductID, &it.AdditionalID,
			&it.Quantity, &it.Price, &it.CreatedAt, &it.UpdatedAt,
			&it.ProductName, &it.ProductCategory, &it.AdditionalName); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
