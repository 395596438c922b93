package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is a user's pre-purchase selection. Prices on its items are read live
// from the catalog and are never stored on the cart.
type Cart struct {
	ID        string     `json:"id,omitempty"`
	UserID    string     `json:"userId"`
	CreatedAt time.Time  `json:"createdAt,omitempty"`
	Items     []CartItem `json:"items"`
}

type CartItem struct {
	ID        string    `json:"id"`
	CartID    string    `json:"cartId"`
	Item      ItemRef   `json:"item"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`

	// Live catalog view of the referenced entry.
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Stock     *int            `json:"stock,omitempty"`
	Active    bool            `json:"active"`
}

// Exists reports whether the cart has been persisted.
func (c Cart) Exists() bool {
	return c.ID != ""
}

func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.TotalPrice())
	}
	return total
}

func (c Cart) TotalItems() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (i CartItem) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
