package service

import (
	"context"

	"github.com/utafrali/PosGo/internal/domain"
)

// EventPublisher is the event stream surface the services depend on.
// *event.Producer satisfies it; deployments without Kafka use NopPublisher.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, cart *domain.Cart) error
	PublishCartCleared(ctx context.Context, operatorID string) error
	PublishSaleCompleted(ctx context.Context, operatorID, paymentMethod, currency string, items []domain.LineItem, breakdown domain.PriceBreakdown) error
}

// NopPublisher discards all events.
type NopPublisher struct{}

func (NopPublisher) PublishCartUpdated(context.Context, *domain.Cart) error { return nil }
func (NopPublisher) PublishCartCleared(context.Context, string) error       { return nil }
func (NopPublisher) PublishSaleCompleted(context.Context, string, string, string, []domain.LineItem, domain.PriceBreakdown) error {
	return nil
}
