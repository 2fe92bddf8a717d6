package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is an operator's in-progress, uncommitted order. It lives for one
// checkout session: a successful checkout or an explicit clear resets it.
type Cart struct {
	ID         string     `json:"id"`
	OperatorID string     `json:"operator_id"`
	Items      []LineItem `json:"items"`
	Currency   string     `json:"currency"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// LineItem is one product entry in the cart. Name and UnitPrice are
// denormalized copies captured when the item is first added; the line keeps
// the add-time price even if the inventory price changes afterwards.
type LineItem struct {
	PID       string          `json:"pid"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Recalculate refreshes the derived line subtotal from quantity and unit price.
func (li *LineItem) Recalculate() {
	li.Subtotal = li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount returns the total number of units across all line items.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the line item for the given product ID,
// or -1 if the product is not in the cart.
func (c *Cart) FindItemIndex(pid string) int {
	for i := range c.Items {
		if c.Items[i].PID == pid {
			return i
		}
	}
	return -1
}

// CopyItems returns a deep copy of the cart's line items. The checkout
// orchestrator submits the copy so the cart it rolls back to on failure is
// exactly the cart that was priced.
func (c *Cart) CopyItems() []LineItem {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return items
}
