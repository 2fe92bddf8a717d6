package domain

import "encoding/json"

// Invoice is the rendered receipt returned by the billing backend after a
// successful checkout. The backend renders it server-side; the terminal
// treats the bytes as opaque and streams them to the operator.
type Invoice struct {
	ContentType string
	Data        []byte
}

// FileName returns the suggested download name for the invoice image.
func (i Invoice) FileName(id string) string {
	return "invoice_" + id + ".png"
}

// BillRecord is one historical sale as reported by the billing backend.
// The record shape is owned upstream, so it is passed through untyped.
type BillRecord = json.RawMessage

// SalesAnalysis is the aggregated sales series for a date range, shaped
// for direct consumption by charting frontends.
type SalesAnalysis struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}
