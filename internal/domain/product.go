package domain

import "github.com/shopspring/decimal"

// Product is one inventory record as reported by the billing backend.
// The terminal never mutates products directly; it only reads them to
// validate cart operations and forwards create/update requests upstream.
type Product struct {
	PID         string          `json:"pid"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Quantity > 0
}
