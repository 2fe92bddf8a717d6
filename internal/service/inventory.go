package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/PosGo/internal/client"
	"github.com/utafrali/PosGo/internal/domain"
	"github.com/utafrali/PosGo/internal/snapshot"
	apperrors "github.com/utafrali/PosGo/pkg/errors"
)

// ProductInput holds the parameters for creating or updating a product.
type ProductInput struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
}

// InventoryService serves product reads from the local snapshot and forwards
// product mutations to the billing backend. Every successful mutation
// triggers a snapshot refresh so the terminal sees its own writes.
type InventoryService struct {
	snapshot *snapshot.Store
	billing  *client.BillingClient
	logger   *slog.Logger
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(snap *snapshot.Store, billing *client.BillingClient, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		snapshot: snap,
		billing:  billing,
		logger:   logger,
	}
}

// ListProducts returns all products from the current snapshot.
func (s *InventoryService) ListProducts(ctx context.Context) ([]domain.Product, time.Time, error) {
	return s.snapshot.List(), s.snapshot.FetchedAt(), nil
}

// GetProduct returns a single product from the current snapshot.
func (s *InventoryService) GetProduct(ctx context.Context, pid string) (domain.Product, error) {
	if pid == "" {
		return domain.Product{}, apperrors.InvalidInput("pid is required")
	}

	product, ok := s.snapshot.Get(pid)
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", pid)
	}
	return product, nil
}

// Refresh fetches the full inventory from the billing backend and replaces
// the snapshot. On failure the previous snapshot stays in place.
func (s *InventoryService) Refresh(ctx context.Context) ([]domain.Product, error) {
	products, err := s.billing.FetchInventory(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "inventory refresh failed",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("fetch inventory: %w", err)
	}

	s.snapshot.Replace(products)

	s.logger.InfoContext(ctx, "inventory snapshot refreshed",
		slog.Int("products", len(products)),
	)

	return s.snapshot.List(), nil
}

// AddProduct forwards a new product to the billing backend and refreshes the
// snapshot on success.
func (s *InventoryService) AddProduct(ctx context.Context, input ProductInput) error {
	if err := s.billing.AddProduct(ctx, client.ProductInput{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
	}); err != nil {
		return fmt.Errorf("add product: %w", err)
	}

	s.refreshAfterMutation(ctx)

	s.logger.InfoContext(ctx, "product added",
		slog.String("name", input.Name),
	)
	return nil
}

// UpdateProduct forwards a product update to the billing backend and
// refreshes the snapshot on success.
func (s *InventoryService) UpdateProduct(ctx context.Context, pid string, input ProductInput) error {
	if pid == "" {
		return apperrors.InvalidInput("pid is required")
	}

	if err := s.billing.UpdateProduct(ctx, pid, client.ProductInput{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
	}); err != nil {
		return fmt.Errorf("update product %s: %w", pid, err)
	}

	s.refreshAfterMutation(ctx)

	s.logger.InfoContext(ctx, "product updated",
		slog.String("pid", pid),
	)
	return nil
}

// refreshAfterMutation keeps the snapshot in step with a mutation the
// backend has already committed. A failed refresh only logs: the mutation
// itself succeeded and the stale snapshot heals on the next refresh.
func (s *InventoryService) refreshAfterMutation(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "snapshot refresh after mutation failed",
			slog.String("error", err.Error()),
		)
	}
}
