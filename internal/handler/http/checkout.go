package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/utafrali/PosGo/internal/service"
	"github.com/utafrali/PosGo/pkg/httputil"
	"github.com/utafrali/PosGo/pkg/validator"
)

// CheckoutHandler handles HTTP requests for checkout.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// CheckoutRequest is the JSON request body for submitting a checkout.
type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
}

// Checkout handles POST /api/v1/checkout. On success it streams the rendered
// invoice image back to the operator as a download.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	operatorID, _ := operatorIDFromContext(r.Context())

	var req CheckoutRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.Checkout(r.Context(), operatorID, service.CheckoutInput{
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	invoice := result.Invoice
	filename := invoice.FileName(strconv.FormatInt(time.Now().UnixMilli(), 10))

	w.Header().Set("Content-Type", invoice.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(invoice.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(invoice.Data); err != nil {
		h.logger.WarnContext(r.Context(), "failed to stream invoice",
			slog.String("operator_id", operatorID),
			slog.String("error", err.Error()),
		)
	}
}
