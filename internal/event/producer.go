package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/storefront-admin/internal/domain"
	pkgkafka "github.com/utafrali/storefront-admin/pkg/kafka"
	"github.com/utafrali/storefront-admin/pkg/logger"
)

// Kafka topic constants for catalog and order events.
const (
	TopicBrandCreated       = "storefront.brand.created"
	TopicBrandUpdated       = "storefront.brand.updated"
	TopicBrandDeleted       = "storefront.brand.deleted"
	TopicProductCreated     = "storefront.product.created"
	TopicProductUpdated     = "storefront.product.updated"
	TopicProductDeleted     = "storefront.product.deleted"
	TopicOrderCreated       = "storefront.order.created"
	TopicOrderStatusChanged = "storefront.order.status_changed"
)

// Aggregate type constants.
const (
	AggregateTypeBrand   = "brand"
	AggregateTypeProduct = "product"
	AggregateTypeOrder   = "order"
)

// SourceAdmin identifies events originating from this service.
const SourceAdmin = "storefront-admin"

// Publisher publishes domain events. Callers log failures rather than fail
// the operation that produced the event.
type Publisher interface {
	PublishBrandCreated(ctx context.Context, brand *domain.Brand) error
	PublishBrandUpdated(ctx context.Context, brand *domain.Brand) error
	PublishBrandDeleted(ctx context.Context, id string) error
	PublishProductCreated(ctx context.Context, product *domain.Product) error
	PublishProductUpdated(ctx context.Context, product *domain.Product) error
	PublishProductDeleted(ctx context.Context, id string) error
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishOrderStatusChanged(ctx context.Context, change domain.StatusChange) error
}

// BrandData is the payload for brand.created and brand.updated events.
type BrandData struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	URL        string `json:"url"`
	IsVisible  bool   `json:"is_visible"`
	PrimaryHex string `json:"primary_hex"`
}

// ProductData is the payload for product.created and product.updated events.
// Price is a decimal string with two fractional digits.
type ProductData struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	SKU        string    `json:"sku"`
	Price      string    `json:"price"`
	Quantity   int       `json:"quantity"`
	Type       string    `json:"type"`
	IsVisible  bool      `json:"is_visible"`
	IsFeatured bool      `json:"is_featured"`
	BrandID    string    `json:"brand_id"`
	Published  time.Time `json:"published_at"`
}

// DeletedData is the payload for *.deleted events.
type DeletedData struct {
	ID string `json:"id"`
}

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	ID         string   `json:"id"`
	Status     string   `json:"status"`
	ProductIDs []string `json:"product_ids"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID   string    `json:"order_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

// sink is the part of pkgkafka.Producer the event producer needs.
type sink interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes admin domain events to Kafka.
type Producer struct {
	kafka  sink
	logger *slog.Logger
}

// NewProducer creates a new event producer. kafka is usually a
// *pkgkafka.Producer.
func NewProducer(kafka sink, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishBrandCreated publishes a brand.created event.
func (p *Producer) PublishBrandCreated(ctx context.Context, b *domain.Brand) error {
	return p.publish(ctx, TopicBrandCreated, b.ID, AggregateTypeBrand, brandData(b))
}

// PublishBrandUpdated publishes a brand.updated event.
func (p *Producer) PublishBrandUpdated(ctx context.Context, b *domain.Brand) error {
	return p.publish(ctx, TopicBrandUpdated, b.ID, AggregateTypeBrand, brandData(b))
}

// PublishBrandDeleted publishes a brand.deleted event.
func (p *Producer) PublishBrandDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicBrandDeleted, id, AggregateTypeBrand, DeletedData{ID: id})
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicProductDeleted, id, AggregateTypeProduct, DeletedData{ID: id})
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, TopicOrderCreated, o.ID, AggregateTypeOrder, OrderCreatedData{
		ID:         o.ID,
		Status:     string(o.Status),
		ProductIDs: o.ProductIDs,
	})
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, c domain.StatusChange) error {
	return p.publish(ctx, TopicOrderStatusChanged, c.OrderID, AggregateTypeOrder, OrderStatusChangedData{
		OrderID:   c.OrderID,
		From:      string(c.From),
		To:        string(c.To),
		ChangedAt: c.ChangedAt,
	})
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceAdmin, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx)).
		WithMetadata("actor", logger.ActorFromContext(ctx))

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

func brandData(b *domain.Brand) BrandData {
	return BrandData{
		ID:         b.ID,
		Name:       b.Name,
		Slug:       b.Slug,
		URL:        b.URL,
		IsVisible:  b.IsVisible,
		PrimaryHex: b.PrimaryHex,
	}
}

func productData(p *domain.Product) ProductData {
	return ProductData{
		ID:         p.ID,
		Name:       p.Name,
		Slug:       p.Slug,
		SKU:        p.SKU,
		Price:      p.Price.StringFixed(2),
		Quantity:   p.Quantity,
		Type:       string(p.Type),
		IsVisible:  p.IsVisible,
		IsFeatured: p.IsFeatured,
		BrandID:    p.BrandID,
		Published:  p.PublishedAt,
	}
}
