// Package stock decrements product inventory inside the order transaction
// and raises threshold alerts for the notification pipeline.
package stock

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/vendamais/orderhub/internal/apperr"
	"github.com/vendamais/orderhub/internal/postgres"
)

// LowStockThreshold is the remaining-units level (inclusive) at which a
// low/zero stock alert is raised.
const LowStockThreshold = 5

type Demand struct {
	ProductID int64
	Quantity  int
}

// Consolidate merges repeated product references, summing quantities, and
// returns demands ordered by product id. The ordering doubles as a stable
// lock-acquisition order across concurrent transactions.
func Consolidate(demands []Demand) []Demand {
	byProduct := make(map[int64]int, len(demands))
	for _, d := range demands {
		byProduct[d.ProductID] += d.Quantity
	}
	out := make([]Demand, 0, len(byProduct))
	for id, qty := range byProduct {
		out = append(out, Demand{ProductID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// Apply locks every demanded product row, verifies that no decrement would
// drive stock negative, then applies all decrements. It must run inside the
// caller's transaction: a shortfall on any product aborts with a Conflict
// error and no decrement survives the rollback.
//
// The returned alerts (low/zero stock, or the lost-sale alert accompanying
// a Conflict error) are for the caller to emit after the transaction
// settles; nothing is published from here.
func Apply(ctx context.Context, q postgres.Querier, companyID int64, demands []Demand) ([]Alert, error) {
	demands = Consolidate(demands)

	type planned struct {
		Demand
		name     string
		newStock int
	}
	plan := make([]planned, 0, len(demands))

	for _, d := range demands {
		var name string
		var current int
		err := q.QueryRow(ctx, `
			SELECT name, stock FROM products
			WHERE id=$1 AND company_id=$2 FOR UPDATE`, d.ProductID, companyID).
			Scan(&name, &current)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Newf(apperr.NotFound, "product %d not found", d.ProductID)
		}
		if err != nil {
			return nil, err
		}

		newStock := current - d.Quantity
		if newStock < 0 {
			alert := lostSaleAlert(companyID, d.ProductID, name, current)
			return []Alert{alert}, apperr.Newf(apperr.Conflict,
				"requested quantity for product %q exceeds available stock", name)
		}
		plan = append(plan, planned{Demand: d, name: name, newStock: newStock})
	}

	var alerts []Alert
	for _, p := range plan {
		ct, err := q.Exec(ctx, `
			UPDATE products SET stock = stock - $3, updated_at = now()
			WHERE id=$1 AND company_id=$2`, p.ProductID, companyID, p.Quantity)
		if err != nil {
			return nil, err
		}
		if ct.RowsAffected() != 1 {
			return nil, apperr.Newf(apperr.Internal, "stock update touched %d rows", ct.RowsAffected())
		}
		if a := thresholdAlert(companyID, p.ProductID, p.name, p.newStock); a != nil {
			alerts = append(alerts, *a)
		}
	}
	return alerts, nil
}
