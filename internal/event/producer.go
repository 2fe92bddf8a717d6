package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/PosGo/internal/domain"
	pkgkafka "github.com/utafrali/PosGo/pkg/kafka"
)

// Kafka topic constants for terminal domain events.
const (
	TopicCartUpdated   = "pos.cart.updated"
	TopicCartCleared   = "pos.cart.cleared"
	TopicSaleCompleted = "pos.sale.completed"
)

// Aggregate type constants.
const (
	AggregateTypeCart = "cart"
	AggregateTypeSale = "sale"
)

// Source identifier for events originating from the terminal.
const SourceTerminal = "pos-terminal"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	OperatorID string         `json:"operator_id"`
	Items      []LineItemData `json:"items"`
	ItemCount  int            `json:"item_count"`
	Total      string         `json:"total"`
	Currency   string         `json:"currency"`
}

// LineItemData is the item payload within cart and sale events.
type LineItemData struct {
	PID       string `json:"pid"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	OperatorID string `json:"operator_id"`
}

// SaleCompletedData is the payload for a sale.completed event, published
// after the billing backend has committed the sale.
type SaleCompletedData struct {
	OperatorID    string         `json:"operator_id"`
	PaymentMethod string         `json:"payment_method"`
	Items         []LineItemData `json:"items"`
	Subtotal      string         `json:"subtotal"`
	GST           string         `json:"gst"`
	AdditionalTax string         `json:"additional_tax"`
	Total         string         `json:"total"`
	Currency      string         `json:"currency"`
}

// Producer publishes terminal domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the terminal.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func newLineItemData(items []domain.LineItem) []LineItemData {
	out := make([]LineItemData, len(items))
	for i, item := range items {
		out[i] = LineItemData{
			PID:       item.PID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice.String(),
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal.String(),
		}
	}
	return out
}

// PublishCartUpdated publishes a cart.updated event after any cart mutation.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	breakdown := domain.Price(cart.Items)
	data := CartUpdatedData{
		OperatorID: cart.OperatorID,
		Items:      newLineItemData(cart.Items),
		ItemCount:  cart.ItemCount(),
		Total:      breakdown.Total.String(),
		Currency:   cart.Currency,
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, cart.OperatorID, AggregateTypeCart, SourceTerminal, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("operator_id", cart.OperatorID),
		slog.Int("item_count", cart.ItemCount()),
	)

	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, operatorID string) error {
	data := CartClearedData{OperatorID: operatorID}

	event, err := pkgkafka.NewEvent(TopicCartCleared, operatorID, AggregateTypeCart, SourceTerminal, data)
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartCleared, event); err != nil {
		return fmt.Errorf("publish cart.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("operator_id", operatorID),
	)

	return nil
}

// PublishSaleCompleted publishes a sale.completed event.
func (p *Producer) PublishSaleCompleted(ctx context.Context, operatorID, paymentMethod, currency string, items []domain.LineItem, breakdown domain.PriceBreakdown) error {
	data := SaleCompletedData{
		OperatorID:    operatorID,
		PaymentMethod: paymentMethod,
		Items:         newLineItemData(items),
		Subtotal:      breakdown.Subtotal.String(),
		GST:           breakdown.GST.String(),
		AdditionalTax: breakdown.AdditionalTax.String(),
		Total:         breakdown.Total.String(),
		Currency:      currency,
	}

	event, err := pkgkafka.NewEvent(TopicSaleCompleted, operatorID, AggregateTypeSale, SourceTerminal, data)
	if err != nil {
		return fmt.Errorf("create sale.completed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSaleCompleted, event); err != nil {
		return fmt.Errorf("publish sale.completed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published sale.completed event",
		slog.String("operator_id", operatorID),
		slog.String("total", data.Total),
	)

	return nil
}
