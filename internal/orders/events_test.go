package orders

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkax "github.com/vendamais/orderhub/internal/kafka"
	"github.com/vendamais/orderhub/internal/stock"
)

func TestStockAlertEnvelope(t *testing.T) {
	ev := NewStockAlertEnvelope("orderhub-api", "trace-1", stock.Alert{
		Kind:      stock.AlertStockLow,
		CompanyID: 1,
		ProductID: 20,
		Product:   "espresso beans",
		Stock:     4,
		Message:   "Low stock!",
	})

	assert.Equal(t, EventStockAlert, ev.EventType)
	assert.Equal(t, 1, ev.EventVersion)
	assert.NotEmpty(t, ev.EventID)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(kafkax.MustMarshal(ev), &decoded))

	p, err := kafkax.UnwrapPayload[StockAlertPayload](decoded.Payload)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.CompanyID)
	assert.Equal(t, "espresso beans", p.Product)
	assert.Equal(t, 4, p.Stock)
	assert.Equal(t, string(stock.AlertStockLow), p.Kind)
}

func TestOrderCreatedEnvelope(t *testing.T) {
	o := &Order{
		ID:         9,
		CompanyID:  1,
		ClientID:   5,
		TotalValue: decimal.RequireFromString("7.00"),
		Items:      []Item{{ProductID: 10, Quantity: 2}},
	}
	ev := NewOrderCreatedEnvelope("orderhub-api", "", o)

	p, err := kafkax.UnwrapPayload[OrderCreatedPayload](ev.Payload)
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.OrderID)
	assert.Equal(t, 1, p.ItemCount)
	assert.True(t, p.TotalValue.Equal(decimal.RequireFromString("7.00")))
}
