package client

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/PosGo/internal/domain"
	apperrors "github.com/utafrali/PosGo/pkg/errors"
	"github.com/utafrali/PosGo/pkg/httpclient"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake-image-bytes")

func newTestClient(t *testing.T, handler http.Handler) *BillingClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBillingClient(httpclient.New(httpclient.DefaultConfig()), srv.URL, logger)
}

func lineItem(pid, name string, price float64, qty int) domain.LineItem {
	li := domain.LineItem{PID: pid, Name: name, UnitPrice: decimal.NewFromFloat(price), Quantity: qty}
	li.Recalculate()
	return li
}

func TestBillingClient_FetchInventory(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/inventory", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"pid":"P100","name":"Rice","description":"1kg bag","price":50,"quantity":3},
			{"pid":"P200","name":"Sugar","description":"","price":42.5,"quantity":0}
		]`)
	}))

	products, err := client.FetchInventory(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Rice", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 3, products[0].Quantity)
	assert.True(t, products[1].Price.Equal(decimal.NewFromFloat(42.5)))
	assert.False(t, products[1].InStock())
}

func TestBillingClient_FetchInventory_Unreachable(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// Port 1 is never listening.
	client := NewBillingClient(httpclient.New(httpclient.Config{MaxRetries: 0, Timeout: 0}), "http://127.0.0.1:1", logger)

	_, err := client.FetchInventory(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestBillingClient_Checkout_Success(t *testing.T) {
	var gotBody CheckoutRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	}))

	items := NewCheckoutItems([]domain.LineItem{lineItem("P100", "Rice", 50, 2)})
	invoice, err := client.Checkout(context.Background(), CheckoutRequest{
		PaymentMethod: "cash",
		CartItems:     items,
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", invoice.ContentType)
	assert.Equal(t, pngBytes, invoice.Data)

	assert.Equal(t, "cash", gotBody.PaymentMethod)
	require.Len(t, gotBody.CartItems, 1)
	assert.Equal(t, "P100", gotBody.CartItems[0].PID)
	assert.Equal(t, 50.0, gotBody.CartItems[0].Price)
	assert.Equal(t, 100.0, gotBody.CartItems[0].Subtotal)
}

func TestBillingClient_Checkout_BackendRejects(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error": "Insufficient stock for Rice"}`)
	}))

	invoice, err := client.Checkout(context.Background(), CheckoutRequest{PaymentMethod: "cash"})
	assert.Nil(t, invoice)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Insufficient stock for Rice")
}

func TestBillingClient_Checkout_IsNeverRetried(t *testing.T) {
	var attempts int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error": "database locked"}`)
	}))

	_, err := client.Checkout(context.Background(), CheckoutRequest{PaymentMethod: "cash"})
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "a failed checkout POST must reach the backend exactly once")
}

func TestBillingClient_History(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/billing/history", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"invoice_id":7,"total":120.0,"date":"2026-08-28"}]`)
	}))

	records, err := client.History(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, string(records[0]), `"invoice_id":7`)
}

func TestBillingClient_InvoiceImage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/billing/7", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	}))

	invoice, err := client.InvoiceImage(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, pngBytes, invoice.Data)
}

func TestBillingClient_InvoiceImage_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error": "Invoice not found"}`)
	}))

	invoice, err := client.InvoiceImage(context.Background(), "999")
	assert.Nil(t, invoice)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBillingClient_Analysis(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analysis", r.URL.Path)
		assert.Equal(t, "2026-08-01", r.URL.Query().Get("start"))
		assert.Equal(t, "2026-08-28", r.URL.Query().Get("end"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"labels":["2026-08-01","2026-08-02"],"data":[120.0,0]}`)
	}))

	analysis, err := client.Analysis(context.Background(), "2026-08-01", "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-01", "2026-08-02"}, analysis.Labels)
	assert.Equal(t, []float64{120.0, 0}, analysis.Data)
}

func TestBillingClient_AddProduct(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/inventory/add", r.URL.Path)

		// The backend reads the description under "desc".
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Rice", payload["name"])
		assert.Equal(t, "1kg bag", payload["desc"])
		assert.Equal(t, 50.0, payload["price"])
		assert.NotContains(t, payload, "description")

		w.WriteHeader(http.StatusCreated)
	}))

	err := client.AddProduct(context.Background(), ProductInput{Name: "Rice", Description: "1kg bag", Price: 50, Quantity: 3})
	assert.NoError(t, err)
}

func TestBillingClient_UpdateProduct(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/inventory/update/P100", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Basmati", payload["desc"])

		w.WriteHeader(http.StatusOK)
	}))

	err := client.UpdateProduct(context.Background(), "P100", ProductInput{Name: "Rice", Description: "Basmati", Price: 55, Quantity: 4})
	assert.NoError(t, err)
}

func TestNewCheckoutItems_RoundsToTwoDecimals(t *testing.T) {
	items := NewCheckoutItems([]domain.LineItem{lineItem("P1", "Loose tea", 33.333, 3)})

	require.Len(t, items, 1)
	assert.Equal(t, 33.33, items[0].Price)
	assert.Equal(t, 100.0, items[0].Subtotal)
}
