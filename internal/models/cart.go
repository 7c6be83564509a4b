package models

import (
	"time"

	"github.com/chofys/petshop/internal/pricing"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the units of one product in a cart.
const MaxLineQuantity = 999

type Cart struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Items     []LineItem `json:"items"`
}

// LineItem carries the product's current price; it is not frozen until the
// cart becomes an order.
type LineItem struct {
	ID          int64           `json:"id"`
	CartID      int64           `json:"cart_id"`
	Product     ItemRef         `json:"product"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Available   bool            `json:"available"`
	AddedAt     time.Time       `json:"added_at"`
}

func (li LineItem) Subtotal() decimal.Decimal {
	return pricing.LineSubtotal(li.UnitPrice, li.Quantity)
}

// Total is recomputed from the items on every call.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount is the number of units in the cart.
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
