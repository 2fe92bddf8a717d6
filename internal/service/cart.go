package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/PosGo/internal/domain"
	"github.com/utafrali/PosGo/internal/repository"
	"github.com/utafrali/PosGo/internal/snapshot"
	apperrors "github.com/utafrali/PosGo/pkg/errors"
)

// cartCurrency is the only currency the billing backend accepts.
const cartCurrency = "INR"

// AddItemInput holds the parameters for adding an item to the cart.
// Quantity defaults to 1 when omitted.
type AddItemInput struct {
	PID      string `json:"pid"`
	Quantity int    `json:"quantity"`
}

// UpdateQuantityInput holds the parameters for setting an item quantity.
// Zero and negative quantities remove the item.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity"`
}

// CartView is a cart together with its current price breakdown. Totals are
// recomputed on every read, never stored.
type CartView struct {
	Cart      *domain.Cart          `json:"cart"`
	Breakdown domain.PriceBreakdown `json:"breakdown"`
}

// CartService implements the business logic for cart operations. Every
// mutation is validated against the inventory snapshot before it is applied;
// a rejected mutation leaves the cart exactly as it was. Mutations for the
// same operator are serialized through the guard, which holds a per-operator
// lock across the whole read-modify-write.
type CartService struct {
	repo     repository.CartRepository
	snapshot *snapshot.Store
	producer EventPublisher
	guard    *CheckoutGuard
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, snap *snapshot.Store, producer EventPublisher, guard *CheckoutGuard, logger *slog.Logger) *CartService {
	return &CartService{
		repo:     repo,
		snapshot: snap,
		producer: producer,
		guard:    guard,
		logger:   logger,
	}
}

// GetCart retrieves the operator's cart with freshly computed totals.
// If no cart exists, an empty cart is returned.
func (s *CartService) GetCart(ctx context.Context, operatorID string) (*CartView, error) {
	if operatorID == "" {
		return nil, apperrors.InvalidInput("operator id is required")
	}

	cart, err := s.getOrCreateCart(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	return s.view(cart), nil
}

// AddItem adds a product to the operator's cart, merging with an existing
// line for the same product. The merged line keeps its original unit price.
// The mutation is rejected when the requested total would exceed the
// snapshot's known stock.
func (s *CartService) AddItem(ctx context.Context, operatorID string, input AddItemInput) (*CartView, error) {
	if operatorID == "" {
		return nil, apperrors.InvalidInput("operator id is required")
	}
	if input.PID == "" {
		return nil, apperrors.InvalidInput("pid is required")
	}
	if input.Quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if !s.guard.Acquire(operatorID) {
		return nil, apperrors.CheckoutInProgress()
	}
	defer s.guard.Release(operatorID)

	product, ok := s.snapshot.Get(input.PID)
	if !ok {
		return nil, apperrors.NotFound("product", input.PID)
	}

	cart, err := s.getOrCreateCart(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	// Stock check covers what is already in the cart plus the new units.
	requested := input.Quantity
	idx := cart.FindItemIndex(input.PID)
	if idx >= 0 {
		requested += cart.Items[idx].Quantity
	}
	if requested > product.Quantity {
		return nil, apperrors.OutOfStock(product.Name, product.Quantity)
	}

	if idx >= 0 {
		// Merge keeps the unit price captured when the line was created.
		cart.Items[idx].Quantity = requested
		cart.Items[idx].Recalculate()
	} else {
		item := domain.LineItem{
			PID:       product.PID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  input.Quantity,
		}
		item.Recalculate()
		cart.Items = append(cart.Items, item)
	}

	cart.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("operator_id", operatorID),
		slog.String("pid", input.PID),
		slog.Int("quantity", input.Quantity),
	)

	return s.view(cart), nil
}

// SetQuantity sets the quantity of a cart line. A quantity of zero or less
// removes the line. Increases are validated against the snapshot stock;
// decreases always succeed.
func (s *CartService) SetQuantity(ctx context.Context, operatorID, pid string, quantity int) (*CartView, error) {
	if operatorID == "" {
		return nil, apperrors.InvalidInput("operator id is required")
	}
	if pid == "" {
		return nil, apperrors.InvalidInput("pid is required")
	}
	if !s.guard.Acquire(operatorID) {
		return nil, apperrors.CheckoutInProgress()
	}
	defer s.guard.Release(operatorID)

	cart, err := s.getOrCreateCart(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItemIndex(pid)
	if idx < 0 {
		return nil, apperrors.NotFound("cart item", pid)
	}

	if quantity <= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		if quantity > cart.Items[idx].Quantity {
			product, ok := s.snapshot.Get(pid)
			if !ok {
				return nil, apperrors.NotFound("product", pid)
			}
			if quantity > product.Quantity {
				return nil, apperrors.OutOfStock(product.Name, product.Quantity)
			}
		}
		cart.Items[idx].Quantity = quantity
		cart.Items[idx].Recalculate()
	}

	cart.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "cart item quantity updated",
		slog.String("operator_id", operatorID),
		slog.String("pid", pid),
		slog.Int("quantity", quantity),
	)

	return s.view(cart), nil
}

// RemoveItem removes a product line from the cart. Removing a product that
// is not in the cart succeeds without changing anything.
func (s *CartService) RemoveItem(ctx context.Context, operatorID, pid string) (*CartView, error) {
	if operatorID == "" {
		return nil, apperrors.InvalidInput("operator id is required")
	}
	if pid == "" {
		return nil, apperrors.InvalidInput("pid is required")
	}
	if !s.guard.Acquire(operatorID) {
		return nil, apperrors.CheckoutInProgress()
	}
	defer s.guard.Release(operatorID)

	cart, err := s.getOrCreateCart(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItemIndex(pid)
	if idx < 0 {
		return s.view(cart), nil
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	cart.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("operator_id", operatorID),
		slog.String("pid", pid),
	)

	return s.view(cart), nil
}

// ClearCart removes all items from the operator's cart.
func (s *CartService) ClearCart(ctx context.Context, operatorID string) error {
	if operatorID == "" {
		return apperrors.InvalidInput("operator id is required")
	}
	if !s.guard.Acquire(operatorID) {
		return apperrors.CheckoutInProgress()
	}
	defer s.guard.Release(operatorID)

	if err := s.repo.Delete(ctx, operatorID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	if err := s.producer.PublishCartCleared(ctx, operatorID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("operator_id", operatorID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("operator_id", operatorID),
	)

	return nil
}

func (s *CartService) view(cart *domain.Cart) *CartView {
	return &CartView{
		Cart:      cart,
		Breakdown: domain.Price(cart.Items),
	}
}

func (s *CartService) publishUpdated(ctx context.Context, cart *domain.Cart) {
	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("operator_id", cart.OperatorID),
			slog.String("error", err.Error()),
		)
	}
}

// getOrCreateCart retrieves the operator's cart, creating an empty one if it
// does not exist.
func (s *CartService) getOrCreateCart(ctx context.Context, operatorID string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, operatorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return newEmptyCart(operatorID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

func newEmptyCart(operatorID string) *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		ID:         uuid.New().String(),
		OperatorID: operatorID,
		Items:      []domain.LineItem{},
		Currency:   cartCurrency,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
