package repository

import (
	"context"

	"github.com/utafrali/PosGo/internal/domain"
)

// CartRepository defines the interface for cart persistence operations.
// Each operator owns exactly one cart, keyed by operator ID.
type CartRepository interface {
	// Get retrieves the operator's cart.
	Get(ctx context.Context, operatorID string) (*domain.Cart, error)

	// Save persists a cart, overwriting any existing cart for the operator.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the operator's cart from the store.
	Delete(ctx context.Context, operatorID string) error
}
