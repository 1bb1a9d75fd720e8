package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/vendamais/orderhub/internal/apperr"
	"github.com/vendamais/orderhub/internal/postgres"
)

// Item mutations adjust the parent order's total with atomic SQL increments
// in the same transaction, so the running-total invariant holds after every
// commit even under concurrent mutations.

func (r *Repo) AddItems(ctx context.Context, companyID, orderID int64, inputs []ItemInput) ([]Item, error) {
	if len(inputs) == 0 {
		return nil, apperr.New(apperr.Validation, "at least one item is required")
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := orderExists(ctx, tx, companyID, orderID); err != nil {
		return nil, err
	}

	// validate the whole batch before the first insert
	items, added, err := resolveBatch(ctx, tx, companyID, inputs)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].OrderID = orderID
	}

	for i := range items {
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (company_id, order_id, product_id, additional_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at`,
			companyID, orderID, items[i].ProductID, items[i].AdditionalID, items[i].Quantity, items[i].Price).
			Scan(&items[i].ID, &items[i].CreatedAt, &items[i].UpdatedAt)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.Internal, "insert order item")
		}
	}

	if err := adjustTotal(ctx, tx, companyID, orderID, added); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "commit add items")
	}
	return items, nil
}

func (r *Repo) RemoveItem(ctx context.Context, companyID, orderID, itemID int64) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return apperr.Wrap(err, apperr.Internal, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	item, err := itemForUpdate(ctx, tx, companyID, orderID, itemID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE id=$1`, itemID); err != nil {
		return apperr.Wrap(err, apperr.Internal, "delete order item")
	}
	if err := adjustTotal(ctx, tx, companyID, orderID, item.Subtotal().Neg()); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Wrap(err, apperr.Internal, "commit remove item")
	}
	return nil
}

func (r *Repo) UpdateItemQuantity(ctx context.Context, companyID, orderID, itemID int64, quantity int) (*Item, error) {
	if quantity <= 0 {
		return nil, apperr.New(apperr.Validation, "quantity must be greater than zero")
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	item, err := itemForUpdate(ctx, tx, companyID, orderID, itemID)
	if err != nil {
		return nil, err
	}

	delta := quantityDelta(item.Price, item.Quantity, quantity)
	err = tx.QueryRow(ctx, `
		UPDATE order_items SET quantity=$2, updated_at=now()
		WHERE id=$1 RETURNING updated_at`, itemID, quantity).Scan(&item.UpdatedAt)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "update item quantity")
	}
	item.Quantity = quantity

	if err := adjustTotal(ctx, tx, companyID, orderID, delta); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "commit quantity update")
	}
	return item, nil
}

func (r *Repo) UpdateItemPrice(ctx context.Context, companyID, orderID, itemID int64, price decimal.Decimal) (*Item, error) {
	if !price.IsPositive() {
		return nil, apperr.New(apperr.Validation, "price must be greater than zero")
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	item, err := itemForUpdate(ctx, tx, companyID, orderID, itemID)
	if err != nil {
		return nil, err
	}

	delta := priceDelta(item.Price, price, item.Quantity)
	err = tx.QueryRow(ctx, `
		UPDATE order_items SET price=$2, updated_at=now()
		WHERE id=$1 RETURNING updated_at`, itemID, price).Scan(&item.UpdatedAt)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "update item price")
	}
	item.Price = price

	if err := adjustTotal(ctx, tx, companyID, orderID, delta); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "commit price update")
	}
	return item, nil
}

func (r *Repo) ListItems(ctx context.Context, companyID, orderID int64) ([]Item, error) {
	if err := orderExists(ctx, r.DB, companyID, orderID); err != nil {
		return nil, err
	}
	return r.loadItems(ctx, companyID, orderID)
}

// quantityDelta is the total_value adjustment for changing an item's
// quantity at a fixed unit price.
func quantityDelta(price decimal.Decimal, oldQty, newQty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(newQty - oldQty)))
}

// priceDelta is the total_value adjustment for repricing an item at a
// fixed quantity.
func priceDelta(oldPrice, newPrice decimal.Decimal, qty int) decimal.Decimal {
	return newPrice.Sub(oldPrice).Mul(decimal.NewFromInt(int64(qty)))
}

func orderExists(ctx context.Context, q postgres.Querier, companyID, orderID int64) error {
	var id int64
	err := q.QueryRow(ctx, `SELECT id FROM orders WHERE id=$1 AND company_id=$2`, orderID, companyID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.New(apperr.NotFound, "order not found")
	}
	return apperr.Wrap(err, apperr.Internal, "check order")
}

func itemForUpdate(ctx context.Context, q postgres.Querier, companyID, orderID, itemID int64) (*Item, error) {
	var it Item
	err := q.QueryRow(ctx, `
		SELECT id, company_id, order_id, product_id, additional_id, quantity, price, created_at, updated_at
		FROM order_items
		WHERE id=$1 AND order_id=$2 AND company_id=$3
		FOR UPDATE`, itemID, orderID, companyID).
		Scan(&it.ID, &it.CompanyID, &it.OrderID, &it.ProductID, &it.AdditionalID,
			&it.Quantity, &it.Price, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "item not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.Internal, "load order item")
	}
	return &it, nil
}

func adjustTotal(ctx context.Context, q postgres.Querier, companyID, orderID int64, delta decimal.Decimal) error {
	ct, err := q.Exec(ctx, `
		UPDATE orders SET total_value = total_value + $3, updated_at = now()
		WHERE id=$1 AND company_id=$2`, orderID, companyID, delta)
	if err != nil {
		return apperr.Wrap(err, apperr.Internal, "adjust order total")
	}
	if ct.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "order not found")
	}
	return nil
}
