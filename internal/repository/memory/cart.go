// Package memory provides the default in-process cart store. It keeps carts
// for the lifetime of the terminal only; deployments that need carts to
// survive restarts configure the Redis store instead.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/utafrali/PosGo/internal/domain"
	apperrors "github.com/utafrali/PosGo/pkg/errors"
)

// CartRepository implements repository.CartRepository with an in-memory map.
type CartRepository struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

// NewCartRepository creates a new in-memory cart repository.
func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[string][]byte)}
}

// Get retrieves the operator's cart.
func (r *CartRepository) Get(ctx context.Context, operatorID string) (*domain.Cart, error) {
	r.mu.RLock()
	data, ok := r.carts[operatorID]
	r.mu.RUnlock()

	if !ok {
		return nil, apperrors.NotFound("cart", operatorID)
	}

	// Carts are stored serialized so callers never share mutable state
	// with the repository.
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Save persists a cart, overwriting any existing cart for the operator.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.carts[cart.OperatorID] = data
	r.mu.Unlock()
	return nil
}

// Delete removes the operator's cart. Deleting an absent cart is not an error.
func (r *CartRepository) Delete(ctx context.Context, operatorID string) error {
	r.mu.Lock()
	delete(r.carts, operatorID)
	r.mu.Unlock()
	return nil
}
