package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/PosGo/internal/client"
	"github.com/utafrali/PosGo/pkg/httputil"
)

// BillingHandler proxies billing history and sales analysis reads to the
// backend. These are pass-through views; the terminal adds no semantics.
type BillingHandler struct {
	billing *client.BillingClient
	logger  *slog.Logger
}

// NewBillingHandler creates a new billing HTTP handler.
func NewBillingHandler(billing *client.BillingClient, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		billing: billing,
		logger:  logger,
	}
}

// History handles GET /api/v1/billing/history
func (h *BillingHandler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.billing.History(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: records})
}

// Invoice handles GET /api/v1/billing/{invoiceID} and streams the stored
// invoice image as a download.
func (h *BillingHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	invoiceID := chi.URLParam(r, "invoiceID")
	if invoiceID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invoiceID is required"},
		})
		return
	}

	invoice, err := h.billing.InvoiceImage(r.Context(), invoiceID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", invoice.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invoice.FileName(invoiceID)))
	w.Header().Set("Content-Length", strconv.Itoa(len(invoice.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(invoice.Data); err != nil {
		h.logger.WarnContext(r.Context(), "failed to stream invoice",
			slog.String("invoice_id", invoiceID),
			slog.String("error", err.Error()),
		)
	}
}

// Analysis handles GET /api/v1/analysis?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *BillingHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" || end == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "start and end query parameters are required"},
		})
		return
	}

	analysis, err := h.billing.Analysis(r.Context(), start, end)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: analysis})
}
