package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is what the client sends: a product reference and a quantity.
type LineItem struct {
	ProductID string `json:"id"`
	Qty       int    `json:"quantity"`
}

// OrderItem additionally captures the unit price at order time, so later
// price changes do not rewrite history.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Qty       int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Items     []OrderItem     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderWithUser is the admin listing row: the order joined with the
// owner's identity.
type OrderWithUser struct {
	Order
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}
