package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/craftora/marketplace/internal/domain"
)

// OrderStore persists order aggregates. Save is optimistic-concurrency
// capable: it must reject a write whose Version does not match the stored
// row with domain.ErrConcurrentModification.
type OrderStore interface {
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	Save(ctx context.Context, order domain.Order) (domain.Order, error)

	Search(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

// ProductLookup resolves catalog products. Unknown ids map to
// domain.ErrNotFound.
type ProductLookup interface {
	Get(ctx context.Context, productID uuid.UUID) (domain.Product, error)
}

// PromotionPool serves promotional records. ActiveRecords returns only
// currently-live records; PaidRecords returns records paid inside
// [from, to) for one vendor, or platform-wide when vendorID is uuid.Nil.
type PromotionPool interface {
	ActiveRecords(ctx context.Context, featureType domain.FeatureType) ([]domain.PromotionalFeature, error)
	PaidRecords(ctx context.Context, vendorID uuid.UUID, from, to time.Time) ([]domain.PromotionalFeature, error)
}

// NotificationSink receives order lifecycle events, fire-and-forget:
// a failed delivery is logged by the caller, never propagated.
type NotificationSink interface {
	OrderStatusChanged(ctx context.Context, order domain.Order, previous, next domain.OrderStatus) error
}
