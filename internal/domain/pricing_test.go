package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func item(pid string, price float64, qty int) LineItem {
	li := LineItem{
		PID:       pid,
		Name:      pid,
		UnitPrice: decimal.NewFromFloat(price),
		Quantity:  qty,
	}
	li.Recalculate()
	return li
}

func TestPrice(t *testing.T) {
	t.Run("single line", func(t *testing.T) {
		breakdown := Price([]LineItem{item("P100", 50, 2)})

		assert.True(t, breakdown.Subtotal.Equal(decimal.NewFromInt(100)), "subtotal %s", breakdown.Subtotal)
		assert.True(t, breakdown.GST.Equal(decimal.NewFromInt(18)), "gst %s", breakdown.GST)
		assert.True(t, breakdown.AdditionalTax.Equal(decimal.NewFromInt(2)), "additional tax %s", breakdown.AdditionalTax)
		assert.True(t, breakdown.Discount.IsZero())
		assert.True(t, breakdown.Total.Equal(decimal.NewFromInt(120)), "total %s", breakdown.Total)
	})

	t.Run("multiple lines sum before tax", func(t *testing.T) {
		breakdown := Price([]LineItem{
			item("P100", 50, 2),
			item("P200", 12.5, 4),
		})

		assert.True(t, breakdown.Subtotal.Equal(decimal.NewFromInt(150)))
		assert.True(t, breakdown.Total.Equal(decimal.NewFromInt(180)))
	})

	t.Run("empty cart prices to zero", func(t *testing.T) {
		breakdown := Price(nil)

		assert.True(t, breakdown.Subtotal.IsZero())
		assert.True(t, breakdown.GST.IsZero())
		assert.True(t, breakdown.AdditionalTax.IsZero())
		assert.True(t, breakdown.Total.IsZero())
	})

	t.Run("no float drift on fractional prices", func(t *testing.T) {
		// 0.1 * 3 is the classic binary-float trap; decimals must stay exact.
		breakdown := Price([]LineItem{item("P300", 0.1, 3)})

		assert.True(t, breakdown.Subtotal.Equal(decimal.NewFromFloat(0.3)), "subtotal %s", breakdown.Subtotal)
	})

	t.Run("deterministic for same input", func(t *testing.T) {
		items := []LineItem{item("P100", 33.33, 3), item("P200", 9.99, 7)}

		first := Price(items)
		second := Price(items)

		assert.True(t, first.Total.Equal(second.Total))
		assert.True(t, first.GST.Equal(second.GST))
	})
}

func TestCartHelpers(t *testing.T) {
	cart := &Cart{Items: []LineItem{item("P100", 50, 2), item("P200", 10, 1)}}

	assert.False(t, cart.IsEmpty())
	assert.Equal(t, 3, cart.ItemCount())
	assert.Equal(t, 1, cart.FindItemIndex("P200"))
	assert.Equal(t, -1, cart.FindItemIndex("P999"))

	copied := cart.CopyItems()
	copied[0].Quantity = 99
	assert.Equal(t, 2, cart.Items[0].Quantity, "copy must not alias the cart")
}
