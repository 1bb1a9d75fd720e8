package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendamais/orderhub/internal/stock"
)

const (
	EventOrderCreated = "OrderCreated"
	EventStockAlert   = "StockAlert"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID    int64           `json:"order_id"`
	CompanyID  int64           `json:"company_id"`
	ClientID   int64           `json:"client_id"`
	TotalValue decimal.Decimal `json:"total_value"`
	ItemCount  int             `json:"item_count"`
}

// StockAlertPayload mirrors stock.Alert on the wire.
type StockAlertPayload struct {
	Kind      string `json:"kind"`
	CompanyID int64  `json:"company_id"`
	ProductID int64  `json:"product_id"`
	Product   string `json:"product"`
	Stock     int    `json:"stock"`
	Message   string `json:"message"`
}

func newEnvelope(eventType, producer, traceID, correlationID string, payload any) Envelope {
	b, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: correlationID,
		Payload:       b,
	}
}

func NewOrderCreatedEnvelope(producer, traceID string, o *Order) Envelope {
	return newEnvelope(EventOrderCreated, producer, traceID, "", OrderCreatedPayload{
		OrderID:    o.ID,
		CompanyID:  o.CompanyID,
		ClientID:   o.ClientID,
		TotalValue: o.TotalValue,
		ItemCount:  len(o.Items),
	})
}

func NewStockAlertEnvelope(producer, traceID string, a stock.Alert) Envelope {
	return newEnvelope(EventStockAlert, producer, traceID, "", StockAlertPayload{
		Kind:      string(a.Kind),
		CompanyID: a.CompanyID,
		ProductID: a.ProductID,
		Product:   a.Product,
		Stock:     a.Stock,
		Message:   a.Message,
	})
}
