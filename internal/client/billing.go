// Package client talks to the billing backend that owns inventory,
// persistence and invoice rendering. Every mutation the terminal exposes is
// ultimately a call through this package.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/utafrali/PosGo/internal/domain"
	apperrors "github.com/utafrali/PosGo/pkg/errors"
	"github.com/utafrali/PosGo/pkg/httpclient"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// BillingClient is the typed client for the billing backend's HTTP API.
type BillingClient struct {
	httpClient HTTPDoer
	baseURL    string
	logger     *slog.Logger
}

// NewBillingClient creates a new billing backend client.
func NewBillingClient(httpClient HTTPDoer, baseURL string, logger *slog.Logger) *BillingClient {
	return &BillingClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// CheckoutItem is one cart line in the wire format the backend expects.
// Prices cross the wire as plain JSON numbers rounded to two decimals.
type CheckoutItem struct {
	PID      string  `json:"pid"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}

// CheckoutRequest is the checkout submission payload.
type CheckoutRequest struct {
	PaymentMethod string         `json:"payment_method"`
	CartItems     []CheckoutItem `json:"cart_items"`
}

// ProductInput is the payload for creating or updating an inventory record.
// The backend reads the description under the short "desc" key.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"desc"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// NewCheckoutItems converts cart line items into the backend wire format.
func NewCheckoutItems(items []domain.LineItem) []CheckoutItem {
	out := make([]CheckoutItem, len(items))
	for i, item := range items {
		out[i] = CheckoutItem{
			PID:      item.PID,
			Name:     item.Name,
			Price:    item.UnitPrice.Round(2).InexactFloat64(),
			Quantity: item.Quantity,
			Subtotal: item.Subtotal.Round(2).InexactFloat64(),
		}
	}
	return out
}

// FetchInventory retrieves the full product list from the backend.
func (c *BillingClient) FetchInventory(ctx context.Context) ([]domain.Product, error) {
	resp, err := c.get(ctx, "/inventory")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "billing backend")
	}

	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode inventory response: %w", err)
	}

	return products, nil
}

// Checkout submits a finalized cart for payment. On success the backend
// commits the sale and responds with the rendered invoice image. The request
// is never retried: an ambiguous failure must not risk a double sale.
func (c *BillingClient) Checkout(ctx context.Context, req CheckoutRequest) (*domain.Invoice, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(ctx, httpReq)
	if err != nil {
		return nil, c.wrapTransportError(err, "checkout")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "billing backend")
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read invoice body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	return &domain.Invoice{ContentType: contentType, Data: data}, nil
}

// History retrieves all historical bills from the backend.
func (c *BillingClient) History(ctx context.Context) ([]domain.BillRecord, error) {
	resp, err := c.get(ctx, "/billing/history")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "billing backend")
	}

	var records []domain.BillRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode billing history: %w", err)
	}

	return records, nil
}

// InvoiceImage retrieves the rendered invoice image for a past bill.
func (c *BillingClient) InvoiceImage(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	resp, err := c.get(ctx, "/billing/"+url.PathEscape(invoiceID))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "billing backend")
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read invoice body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	return &domain.Invoice{ContentType: contentType, Data: data}, nil
}

// Analysis retrieves the aggregated sales series for a date range. Dates are
// passed through in the backend's expected YYYY-MM-DD form.
func (c *BillingClient) Analysis(ctx context.Context, start, end string) (*domain.SalesAnalysis, error) {
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)

	resp, err := c.get(ctx, "/analysis?"+q.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "billing backend")
	}

	var analysis domain.SalesAnalysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return nil, fmt.Errorf("decode sales analysis: %w", err)
	}

	return &analysis, nil
}

// AddProduct forwards a new inventory record to the backend.
func (c *BillingClient) AddProduct(ctx context.Context, input ProductInput) error {
	return c.sendProduct(ctx, http.MethodPost, "/inventory/add", input)
}

// UpdateProduct forwards an inventory update to the backend.
func (c *BillingClient) UpdateProduct(ctx context.Context, pid string, input ProductInput) error {
	return c.sendProduct(ctx, http.MethodPut, "/inventory/update/"+url.PathEscape(pid), input)
}

func (c *BillingClient) sendProduct(ctx context.Context, method, path string, input ProductInput) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create product request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return c.wrapTransportError(err, "product")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return httpclient.ParseResponseError(resp, "billing backend")
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *BillingClient) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create GET request: %w", err)
	}

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, c.wrapTransportError(err, path)
	}
	return resp, nil
}

// wrapTransportError maps transport-level failures (connection refused,
// timeout, open circuit) onto the unavailable error so handlers answer 503.
func (c *BillingClient) wrapTransportError(err error, op string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	c.logger.Warn("billing backend unreachable",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return &apperrors.AppError{
		Code:    "BACKEND_UNAVAILABLE",
		Message: "billing backend unreachable",
		Status:  http.StatusServiceUnavailable,
		Err:     fmt.Errorf("%w: %w", apperrors.ErrServiceUnavail, err),
	}
}
