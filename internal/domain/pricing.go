package domain

import "github.com/shopspring/decimal"

// Tax rates applied at checkout. GST and the additional levy are both
// computed on the pre-tax subtotal, not compounded on each other.
var (
	GSTRate           = decimal.NewFromFloat(0.18)
	AdditionalTaxRate = decimal.NewFromFloat(0.02)
)

// PriceBreakdown is the full pricing summary for a cart. All components are
// exact decimals; rounding happens only when a value leaves the process.
type PriceBreakdown struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	GST           decimal.Decimal `json:"gst"`
	AdditionalTax decimal.Decimal `json:"additional_tax"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
}

// Price computes the deterministic price breakdown for a set of line items.
// An empty set yields a breakdown of all zeros. Discounts are accepted at
// the till only, so the discount component is always zero here.
func Price(items []LineItem) PriceBreakdown {
	subtotal := decimal.Zero
	for _, item := range items {
		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}

	gst := subtotal.Mul(GSTRate)
	additional := subtotal.Mul(AdditionalTaxRate)
	discount := decimal.Zero

	return PriceBreakdown{
		Subtotal:      subtotal,
		GST:           gst,
		AdditionalTax: additional,
		Discount:      discount,
		Total:         subtotal.Add(gst).Add(additional).Sub(discount),
	}
}
