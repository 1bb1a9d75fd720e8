package orders

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendamais/orderhub/internal/apperr"
)

type productRow struct {
	name  string
	price decimal.Decimal
	stock int
}

// fakeQuerier serves the tenant lookups the item resolver runs inside a
// transaction, keyed on the target table.
type fakeQuerier struct {
	companyID   int64
	products    map[int64]productRow
	additionals map[int64]string
}

type scanFunc func(dest ...any) error

func (f scanFunc) Scan(dest ...any) error { return f(dest...) }

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "FROM products"):
		id := args[0].(int64)
		p, ok := f.products[id]
		if !ok {
			return scanFunc(func(...any) error { return pgx.ErrNoRows })
		}
		now := time.Now()
		return scanFunc(func(dest ...any) error {
			return scanInto(dest, id, f.companyID, p.name, "", p.price, p.stock, now, now)
		})
	case strings.Contains(sql, "FROM additionals"):
		id := args[0].(int64)
		name, ok := f.additionals[id]
		if !ok {
			return scanFunc(func(...any) error { return pgx.ErrNoRows })
		}
		return scanFunc(func(dest ...any) error {
			return scanInto(dest, id, f.companyID, name, decimal.Zero)
		})
	default:
		return scanFunc(func(...any) error { return pgx.ErrNoRows })
	}
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func scanInto(dest []any, vals ...any) error {
	for i, v := range vals {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case *int:
			*d = v.(int)
		case *string:
			*d = v.(string)
		case *decimal.Decimal:
			*d = v.(decimal.Decimal)
		case *time.Time:
			*d = v.(time.Time)
		}
	}
	return nil
}

func catalogOf(products map[int64]productRow) *fakeQuerier {
	return &fakeQuerier{companyID: 1, products: products}
}

func TestResolveItemUsesProductPriceWhenUnset(t *testing.T) {
	q := catalogOf(map[int64]productRow{10: {"espresso beans", decimal.RequireFromString("3.50"), 9}})

	it, err := resolveItem(context.Background(), q, 1, ItemInput{ProductID: 10, Quantity: 2})
	require.NoError(t, err)
	assert.True(t, it.Price.Equal(decimal.RequireFromString("3.50")))
	assert.True(t, it.Subtotal().Equal(decimal.RequireFromString("7.00")))
}

func TestResolveItemExplicitPriceWins(t *testing.T) {
	q := catalogOf(map[int64]productRow{10: {"espresso beans", decimal.RequireFromString("3.50"), 9}})

	it, err := resolveItem(context.Background(), q, 1, ItemInput{
		ProductID: 10, Quantity: 1, Price: decimal.RequireFromString("2.99"),
	})
	require.NoError(t, err)
	assert.True(t, it.Price.Equal(decimal.RequireFromString("2.99")))
}

func TestResolveItemRejections(t *testing.T) {
	q := &fakeQuerier{
		companyID:   1,
		products:    map[int64]productRow{10: {"espresso beans", decimal.RequireFromString("3.50"), 9}},
		additionals: map[int64]string{7: "extra shot"},
	}
	missingAdditional := int64(99)

	cases := []struct {
		name string
		in   ItemInput
		kind apperr.Kind
	}{
		{"missing product_id", ItemInput{Quantity: 1}, apperr.Validation},
		{"zero quantity", ItemInput{ProductID: 10}, apperr.Validation},
		{"negative quantity", ItemInput{ProductID: 10, Quantity: -2}, apperr.Validation},
		{"unknown product", ItemInput{ProductID: 404, Quantity: 1}, apperr.NotFound},
		{"unknown additional", ItemInput{ProductID: 10, Quantity: 1, AdditionalID: &missingAdditional}, apperr.NotFound},
		{"negative explicit price", ItemInput{ProductID: 10, Quantity: 1, Price: decimal.RequireFromString("-1")}, apperr.Validation},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := resolveItem(context.Background(), q, 1, c.in)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, c.kind), "got kind %v", apperr.KindOf(err))
		})
	}
}

func TestResolveBatchSumsSubtotals(t *testing.T) {
	q := catalogOf(map[int64]productRow{
		10: {"espresso beans", decimal.RequireFromString("3.50"), 9},
		20: {"oat milk", decimal.RequireFromString("2.00"), 6},
	})

	items, total, err := resolveBatch(context.Background(), q, 1, []ItemInput{
		{ProductID: 10, Quantity: 2},
		{ProductID: 20, Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// 2x3.50 + 3x2.00
	assert.True(t, total.Equal(decimal.RequireFromString("13.00")), "got %s", total)

	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	assert.True(t, total.Equal(sum))
}

func TestResolveBatchRejectsWholeBatchOnOneBadLine(t *testing.T) {
	q := catalogOf(map[int64]productRow{10: {"espresso beans", decimal.RequireFromString("3.50"), 9}})

	items, total, err := resolveBatch(context.Background(), q, 1, []ItemInput{
		{ProductID: 10, Quantity: 1},
		{ProductID: 404, Quantity: 1},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
	assert.Nil(t, items)
	assert.True(t, total.IsZero())
}

func TestQuantityDelta(t *testing.T) {
	price := decimal.RequireFromString("3.50")

	assert.True(t, quantityDelta(price, 2, 5).Equal(decimal.RequireFromString("10.50")))
	assert.True(t, quantityDelta(price, 5, 2).Equal(decimal.RequireFromString("-10.50")))
	assert.True(t, quantityDelta(price, 3, 3).IsZero())
}

func TestPriceDelta(t *testing.T) {
	old := decimal.RequireFromString("3.50")

	assert.True(t, priceDelta(old, decimal.RequireFromString("4.00"), 2).Equal(decimal.RequireFromString("1.00")))
	assert.True(t, priceDelta(old, decimal.RequireFromString("3.00"), 2).Equal(decimal.RequireFromString("-1.00")))
	assert.True(t, priceDelta(old, old, 7).IsZero())
}
