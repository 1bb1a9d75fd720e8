// Package tenant holds the per-company reference data the order core
// validates against: companies, clients, products, additionals, payment
// methods and webhook subscriptions. Every query is scoped by company_id.
package tenant

import (
	"time"

	"github.com/shopspring/decimal"
)

type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Client struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	Document    string    `json:"document"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Product struct {
	ID        int64           `json:"id"`
	CompanyID int64           `json:"company_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Additional struct {
	ID        int64           `json:"id"`
	CompanyID int64           `json:"company_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
}

type PaymentMethod struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"company_id"`
	Name      string `json:"name"`
}

// Webhook is a tenant-configured callback; subscriptions with action
// "stock" receive stock alert POSTs.
type Webhook struct {
	ID        int64  `json:"id"`
	CompanyID int64  `json:"company_id"`
	URL       string `json:"url"`
	Action    string `json:"action"`
}

const ActionStock = "stock"
