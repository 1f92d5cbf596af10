package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MuzammilBaloch-22/Cakelora/internal/domain"
	pkgkafka "github.com/MuzammilBaloch-22/Cakelora/pkg/kafka"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/logger"
)

// Kafka topics for storefront domain events.
var (
	TopicCartUpdated          = pkgkafka.Topic("cart", "updated")
	TopicCartCleared          = pkgkafka.Topic("cart", "cleared")
	TopicCustomOrderSubmitted = pkgkafka.Topic("custom_order", "submitted")
)

// Aggregate types.
const (
	AggregateTypeCart        = "cart"
	AggregateTypeCustomOrder = "custom_order"
)

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "cakelora-storefront"

// CartUpdatedData is the payload for a cart.updated event. Amounts are
// two-decimal strings. Sequence increases strictly per session across both
// cart topics; consumers drop anything older than what they have applied.
type CartUpdatedData struct {
	SessionID  string         `json:"session_id"`
	Sequence   uint64         `json:"sequence"`
	Items      []CartItemData `json:"items"`
	ItemCount  int            `json:"item_count"`
	TotalPrice string         `json:"total_price"`
}

// CartItemData is one line within cart events.
type CartItemData struct {
	Key        string `json:"key"`
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Size       string `json:"size"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	TotalPrice string `json:"total_price"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
	Sequence  uint64 `json:"sequence"`
}

// CustomOrderSubmittedData is the payload for a custom_order.submitted event.
// Contact details are left out.
type CustomOrderSubmittedData struct {
	Reference        string `json:"reference"`
	EventDate        string `json:"event_date"`
	Category         string `json:"category"`
	Size             string `json:"size"`
	DesignPreference string `json:"design_preference,omitempty"`
	HasImage         bool   `json:"has_image"`
	SubmittedAt      string `json:"submitted_at"`
}

// Publisher publishes storefront domain events.
type Publisher interface {
	PublishCartUpdated(ctx context.Context, sessionID string, cart *domain.Cart) error
	PublishCartCleared(ctx context.Context, sessionID string, sequence uint64) error
	PublishCustomOrderSubmitted(ctx context.Context, order *domain.CustomOrder) error
}

// EventWriter is the subset of *pkgkafka.Producer used here.
type EventWriter interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront events to Kafka.
type Producer struct {
	kafka  EventWriter
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka EventWriter, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, cart *domain.Cart) error {
	items := make([]CartItemData, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = CartItemData{
			Key:        item.Key,
			ProductID:  item.Product.ID,
			Name:       item.Product.Name,
			Size:       item.Size.String(),
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice().StringFixed(2),
			TotalPrice: item.TotalPrice().StringFixed(2),
		}
	}

	data := CartUpdatedData{
		SessionID:  sessionID,
		Sequence:   cart.Sequence,
		Items:      items,
		ItemCount:  cart.ItemCount(),
		TotalPrice: cart.TotalPrice().StringFixed(2),
	}

	if err := p.publish(ctx, TopicCartUpdated, sessionID, AggregateTypeCart, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", sessionID),
		slog.Uint64("sequence", data.Sequence),
		slog.Int("item_count", data.ItemCount),
	)
	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string, sequence uint64) error {
	data := CartClearedData{SessionID: sessionID, Sequence: sequence}
	if err := p.publish(ctx, TopicCartCleared, sessionID, AggregateTypeCart, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("session_id", sessionID),
		slog.Uint64("sequence", sequence),
	)
	return nil
}

// PublishCustomOrderSubmitted publishes a custom_order.submitted event.
func (p *Producer) PublishCustomOrderSubmitted(ctx context.Context, order *domain.CustomOrder) error {
	data := CustomOrderSubmittedData{
		Reference:        order.Reference,
		EventDate:        order.EventDate.Format(domain.EventDateLayout),
		Category:         order.Category.String(),
		Size:             order.Size.String(),
		DesignPreference: string(order.DesignPreference),
		HasImage:         order.ReferenceImage != nil,
		SubmittedAt:      order.SubmittedAt.UTC().Format(time.RFC3339),
	}

	if err := p.publish(ctx, TopicCustomOrderSubmitted, order.Reference, AggregateTypeCustomOrder, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published custom_order.submitted event",
		slog.String("reference", order.Reference),
	)
	return nil
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

// NoopPublisher drops every event. It is used when Kafka is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishCartUpdated(context.Context, string, *domain.Cart) error { return nil }

func (NoopPublisher) PublishCartCleared(context.Context, string, uint64) error { return nil }

func (NoopPublisher) PublishCustomOrderSubmitted(context.Context, *domain.CustomOrder) error {
	return nil
}

var (
	_ Publisher = (*Producer)(nil)
	_ Publisher = NoopPublisher{}
)
