package event

import (
	"context"

	"github.com/utafrali/storefront-admin/internal/domain"
)

// Noop discards every event. It is used when Kafka is disabled.
type Noop struct{}

func (Noop) PublishBrandCreated(context.Context, *domain.Brand) error { return nil }
func (Noop) PublishBrandUpdated(context.Context, *domain.Brand) error { return nil }
func (Noop) PublishBrandDeleted(context.Context, string) error { return nil }
func (Noop) PublishProductCreated(context.Context, *domain.Product) error { return nil }
func (Noop) PublishProductUpdated(context.Context, *domain.Product) error { return nil }
func (Noop) PublishProductDeleted(context.Context, string) error { return nil }
func (Noop) PublishOrderCreated(context.Context, *domain.Order) error { return nil }
func (Noop) PublishOrderStatusChanged(context.Context, domain.StatusChange) error { return nil }
