package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/PosGo/internal/client"
	"github.com/utafrali/PosGo/internal/repository/memory"
	"github.com/utafrali/PosGo/internal/service"
	"github.com/utafrali/PosGo/internal/snapshot"
	"github.com/utafrali/PosGo/pkg/health"
	"github.com/utafrali/PosGo/pkg/httpclient"
	"github.com/utafrali/PosGo/pkg/middleware"
)

var testInvoicePNG = []byte("\x89PNG\r\n\x1a\ninvoice-image")

// fixture wires a full router against a scripted billing backend.
type fixture struct {
	router         http.Handler
	backendStatus  int
	backendErrBody string
	inventoryJSON  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		backendStatus: http.StatusOK,
		inventoryJSON: `[
			{"pid":"P100","name":"Rice","description":"1kg bag","price":50,"quantity":3},
			{"pid":"P200","name":"Sugar","description":"","price":40,"quantity":5}
		]`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/inventory", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, f.inventoryJSON)
	})
	mux.HandleFunc("/checkout", func(w http.ResponseWriter, r *http.Request) {
		if f.backendStatus != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.backendStatus)
			io.WriteString(w, f.backendErrBody)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(testInvoicePNG)
	})
	mux.HandleFunc("/billing/history", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"invoice_id":7,"total":120.0}]`)
	})
	mux.HandleFunc("/billing/7", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(testInvoicePNG)
	})
	mux.HandleFunc("/analysis", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"labels":["2026-08-01"],"data":[120.0]}`)
	})

	backend := httptest.NewServer(mux)
	t.Cleanup(backend.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	billing := client.NewBillingClient(httpclient.New(httpclient.DefaultConfig()), backend.URL, logger)

	snap := snapshot.NewStore()
	repo := memory.NewCartRepository()
	guard := service.NewCheckoutGuard()
	inventorySvc := service.NewInventoryService(snap, billing, logger)
	cartSvc := service.NewCartService(repo, snap, service.NopPublisher{}, guard, logger)
	checkoutSvc := service.NewCheckoutService(repo, billing, inventorySvc, service.NopPublisher{}, guard, logger)

	// Seed the snapshot the way app startup does.
	_, err := inventorySvc.Refresh(t.Context())
	require.NoError(t, err)

	f.router = NewRouter(RouterDeps{
		CartService:      cartSvc,
		InventoryService: inventorySvc,
		CheckoutService:  checkoutSvc,
		BillingClient:    billing,
		HealthHandler:    health.NewHandler(),
		Logger:           logger,
		CORS:             middleware.DefaultCORSConfig(),
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, operatorID string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if operatorID != "" {
		req.Header.Set("X-Operator-ID", operatorID)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestRouter_CartRequiresOperatorHeader(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/cart", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	envelope := decodeEnvelope(t, rec)
	errObj := envelope["error"].(map[string]any)
	assert.Equal(t, "UNAUTHORIZED", errObj["code"])
}

func TestRouter_ListProducts(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/products", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	products := data["products"].([]any)
	assert.Len(t, products, 2)
	assert.NotEmpty(t, data["fetched_at"])
}

func TestRouter_AddItemAndGetCart(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/cart/items", "op-1", `{"pid":"P100","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "Added Rice to cart", envelope["message"])

	rec = f.do(t, http.MethodGet, "/api/v1/cart", "op-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	envelope = decodeEnvelope(t, rec)
	view := envelope["data"].(map[string]any)
	breakdown := view["breakdown"].(map[string]any)
	assert.Equal(t, "100", breakdown["subtotal"])
	assert.Equal(t, "18", breakdown["gst"])
	assert.Equal(t, "2", breakdown["additional_tax"])
	assert.Equal(t, "120", breakdown["total"])
}

func TestRouter_AddItem_OutOfStock(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/cart/items", "op-1", `{"pid":"P100","quantity":4}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	envelope := decodeEnvelope(t, rec)
	errObj := envelope["error"].(map[string]any)
	assert.Equal(t, "OUT_OF_STOCK", errObj["code"])
	assert.Contains(t, errObj["message"], "only 3 available")
}

func TestRouter_AddItem_ValidationError(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/cart/items", "op-1", `{"quantity":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	errObj := envelope["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
}

func TestRouter_CartsAreIsolatedPerOperator(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/cart/items", "op-1", `{"pid":"P100"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/cart", "op-2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	view := envelope["data"].(map[string]any)
	cart := view["cart"].(map[string]any)
	assert.Empty(t, cart["items"])
}

func TestRouter_UpdateAndRemoveItem(t *testing.T) {
	f := newFixture(t)

	f.do(t, http.MethodPost, "/api/v1/cart/items", "op-1", `{"pid":"P100"}`)
	f.do(t, http.MethodPost, "/api/v1/cart/items", "op-1", `{"pid":"P200"}`)

	rec := f.do(t, http.MethodPut, "/api/v1/cart/items/P200", "op-1", `{"quantity":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodDelete, "/api/v1/cart/items/P100", "op-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	view := envelope["data"].(map[string]any)
	items := view["cart"].(map[string]any)["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "P200", item["pid"])
	assert.Equal(t, float64(3), item["quantity"])
}

func TestRouter_Checkout_StreamsInvoice(t *testing.T) {
	f := newFixture(t)

	f.do(t, http.MethodPost, "/api/v1/cart/items", "op-1", `{"pid":"P100","quantity":2}`)

	rec := f.do(t, http.MethodPost, "/api/v1/checkout", "op-1", `{"payment_method":"cash"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	disposition := rec.Header().Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(disposition, `attachment; filename="invoice_`), disposition)
	assert.Equal(t, testInvoicePNG, rec.Body.Bytes())

	// Cart is cleared by the successful checkout.
	rec = f.do(t, http.MethodGet, "/api/v1/cart", "op-1", "")
	envelope := decodeEnvelope(t, rec)
	cart := envelope["data"].(map[string]any)["cart"].(map[string]any)
	assert.Empty(t, cart["items"])
}

func TestRouter_Checkout_EmptyCart(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/checkout", "op-1", `{"payment_method":"cash"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	errObj := envelope["error"].(map[string]any)
	assert.Equal(t, "EMPTY_CART", errObj["code"])
}

func TestRouter_Checkout_BackendRejection(t *testing.T) {
	f := newFixture(t)

	f.do(t, http.MethodPost, "/api/v1/cart/items", "op-1", `{"pid":"P100"}`)

	f.backendStatus = http.StatusBadRequest
	f.backendErrBody = `{"error": "Insufficient stock for Rice"}`

	rec := f.do(t, http.MethodPost, "/api/v1/checkout", "op-1", `{"payment_method":"cash"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	envelope := decodeEnvelope(t, rec)
	errObj := envelope["error"].(map[string]any)
	assert.Equal(t, "CHECKOUT_FAILED", errObj["code"])
	assert.Contains(t, errObj["message"], "Insufficient stock for Rice")

	// Cart survives for correction and resubmission.
	rec = f.do(t, http.MethodGet, "/api/v1/cart", "op-1", "")
	envelope = decodeEnvelope(t, rec)
	cart := envelope["data"].(map[string]any)["cart"].(map[string]any)
	assert.Len(t, cart["items"], 1)
}

func TestRouter_BillingHistoryProxy(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/billing/history", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	records := envelope["data"].([]any)
	require.Len(t, records, 1)
}

func TestRouter_BillingInvoiceDownload(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/billing/7", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="invoice_7.png"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, testInvoicePNG, rec.Body.Bytes())
}

func TestRouter_Analysis(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/analysis?start=2026-08-01&end=2026-08-28", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, []any{"2026-08-01"}, data["labels"])
}

func TestRouter_Analysis_MissingRange(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/analysis", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_HealthEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}
