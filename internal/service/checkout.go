package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/PosGo/internal/client"
	"github.com/utafrali/PosGo/internal/domain"
	"github.com/utafrali/PosGo/internal/repository"
	apperrors "github.com/utafrali/PosGo/pkg/errors"
)

var (
	checkoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_checkouts_total",
			Help: "Total number of checkout attempts by outcome.",
		},
		[]string{"outcome"},
	)
	checkoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pos_checkout_duration_seconds",
			Help:    "End-to-end checkout submission duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// CheckoutInput holds the parameters for submitting a checkout.
type CheckoutInput struct {
	PaymentMethod string `json:"payment_method"`
}

// CheckoutResult is a committed sale: the rendered invoice plus the price
// breakdown that was submitted.
type CheckoutResult struct {
	Invoice   *domain.Invoice
	Breakdown domain.PriceBreakdown
}

// CheckoutService orchestrates checkout submission against the billing
// backend. The sale is all-or-nothing: on any failure the cart is preserved
// exactly as priced, and on success the cart is cleared and the inventory
// snapshot refreshed once.
type CheckoutService struct {
	repo      repository.CartRepository
	billing   *client.BillingClient
	inventory *InventoryService
	producer  EventPublisher
	guard     *CheckoutGuard
	logger    *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	repo repository.CartRepository,
	billing *client.BillingClient,
	inventory *InventoryService,
	producer EventPublisher,
	guard *CheckoutGuard,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		repo:      repo,
		billing:   billing,
		inventory: inventory,
		producer:  producer,
		guard:     guard,
		logger:    logger,
	}
}

// Checkout submits the operator's cart for payment. The submission reaches
// the backend at most once per call; an ambiguous failure is surfaced to the
// operator rather than retried.
func (s *CheckoutService) Checkout(ctx context.Context, operatorID string, input CheckoutInput) (*CheckoutResult, error) {
	if operatorID == "" {
		return nil, apperrors.InvalidInput("operator id is required")
	}
	if input.PaymentMethod == "" {
		return nil, apperrors.InvalidInput("payment method is required")
	}

	// Begin waits for any in-flight cart mutation to finish, then freezes
	// the cart until End; a racing mutation cannot save over the cleared
	// cart after the sale commits.
	if !s.guard.Begin(operatorID) {
		return nil, apperrors.CheckoutInProgress()
	}
	defer s.guard.End(operatorID)

	cart, err := s.repo.Get(ctx, operatorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.EmptyCart()
		}
		return nil, fmt.Errorf("get cart for checkout: %w", err)
	}
	if cart.IsEmpty() {
		return nil, apperrors.EmptyCart()
	}

	// Submit a copy so the preserved cart is exactly what was priced.
	items := cart.CopyItems()
	breakdown := domain.Price(items)

	start := time.Now()
	invoice, err := s.billing.Checkout(ctx, client.CheckoutRequest{
		PaymentMethod: input.PaymentMethod,
		CartItems:     client.NewCheckoutItems(items),
	})
	checkoutDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		checkoutsTotal.WithLabelValues("failed").Inc()
		s.logger.ErrorContext(ctx, "checkout rejected",
			slog.String("operator_id", operatorID),
			slog.String("error", err.Error()),
		)
		return nil, s.mapCheckoutError(err)
	}

	// The backend has committed the sale; from here every step must leave
	// the terminal consistent even if it fails.
	if err := s.repo.Delete(ctx, operatorID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("operator_id", operatorID),
			slog.String("error", err.Error()),
		)
	}

	if _, err := s.inventory.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "snapshot refresh after checkout failed",
			slog.String("operator_id", operatorID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishSaleCompleted(ctx, operatorID, input.PaymentMethod, cart.Currency, items, breakdown); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish sale.completed event",
			slog.String("operator_id", operatorID),
			slog.String("error", err.Error()),
		)
	}

	checkoutsTotal.WithLabelValues("success").Inc()
	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("operator_id", operatorID),
		slog.String("payment_method", input.PaymentMethod),
		slog.String("total", breakdown.Total.String()),
		slog.Int("items", len(items)),
	)

	return &CheckoutResult{Invoice: invoice, Breakdown: breakdown}, nil
}

// mapCheckoutError translates a failed submission into the checkout failure
// surface. Cancellation passes through; everything else, transport failures
// included, becomes a checkout failure carrying the underlying message so
// the operator can retry against the preserved cart.
func (s *CheckoutService) mapCheckoutError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return apperrors.CheckoutFailed(appErr.Message)
	}
	return apperrors.CheckoutFailed(err.Error())
}
