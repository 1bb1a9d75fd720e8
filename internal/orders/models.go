package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order and its items form one consistency unit: TotalValue always equals
// the sum of item subtotals after every committed mutation.
type Order struct {
	ID            int64           `json:"id"`
	CompanyID     int64           `json:"company_id"`
	ClientID      int64           `json:"client_id"`
	Status        Status          `json:"status"`
	TotalValue    decimal.Decimal `json:"total_value"`
	Address       string          `json:"address"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// joined for reads
	ClientName  string `json:"client_name,omitempty"`
	ClientPhone string `json:"client_phone,omitempty"`

	Items []Item `json:"items"`
}

// Item captures the unit price at insertion time; later product price
// changes never touch historical orders.
type Item struct {
	ID           int64           `json:"id"`
	CompanyID    int64           `json:"company_id"`
	OrderID      int64           `json:"order_id"`
	ProductID    int64           `json:"product_id"`
	AdditionalID *int64          `json:"additional_id,omitempty"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// joined for reads
	ProductName     string `json:"product_name,omitempty"`
	ProductCategory string `json:"product_category,omitempty"`
	AdditionalName  string `json:"additional_name,omitempty"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemInput is one requested line. A zero Price means "use the product's
// current price".
type ItemInput struct {
	ProductID    int64           `json:"product_id"`
	AdditionalID *int64          `json:"additional_id,omitempty"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
}

type CreateInput struct {
	ClientID      int64       `json:"client_id"`
	Address       string      `json:"address"`
	PaymentMethod string      `json:"payment_method"`
	Notes         string      `json:"notes"`
	Items         []ItemInput `json:"items"`
}

// UpdateInput carries a partial order update. Nil fields are left
// untouched; a non-nil Items slice replaces the item set wholesale.
type UpdateInput struct {
	Status        *Status     `json:"status"`
	Address       *string     `json:"address"`
	PaymentMethod *string     `json:"payment_method"`
	Notes         *string     `json:"notes"`
	Items         []ItemInput `json:"items"`
}

type ListFilter struct {
	Status        Status
	ClientID      int64
	PaymentMethod string
}
