package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/craftora/marketplace/internal/domain"
)

// in-memory collaborators, enough port surface for the engine tests

type memProducts struct {
	products map[uuid.UUID]domain.Product
}

func newMemProducts(products ...domain.Product) *memProducts {
	m := &memProducts{products: make(map[uuid.UUID]domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *memProducts) add(product domain.Product) {
	m.products[product.ID] = product
}

func (m *memProducts) Get(_ context.Context, productID uuid.UUID) (domain.Product, error) {
	product, ok := m.products[productID]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}
	return product, nil
}

type memStore struct {
	orders map[uuid.UUID]domain.Order
	seq    int
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[uuid.UUID]domain.Order)}
}

func (m *memStore) Create(_ context.Context, order domain.Order) (domain.Order, error) {
	if err := order.Validate(); err != nil {
		return domain.Order{}, err
	}

	m.seq++
	order.ID = uuid.New()
	order.Version = 1
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = order.CreatedAt

	m.orders[order.ID] = order
	return order, nil
}

func (m *memStore) Get(_ context.Context, orderID uuid.UUID) (domain.Order, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return domain.Order{}, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	return order, nil
}

func (m *memStore) Save(_ context.Context, order domain.Order) (domain.Order, error) {
	stored, ok := m.orders[order.ID]
	if !ok {
		return domain.Order{}, fmt.Errorf("order %s: %w", order.ID, domain.ErrNotFound)
	}

	if stored.Version != order.Version {
		return domain.Order{}, fmt.Errorf("order %s version %d: %w", order.ID, order.Version, domain.ErrConcurrentModification)
	}

	order.Version++
	m.orders[order.ID] = order
	return order, nil
}

func (m *memStore) Search(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var result []domain.Order
	for _, order := range m.orders {
		if len(filter.VendorIDs) > 0 && !slices.Contains(filter.VendorIDs, order.VendorID) {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, order.Status) {
			continue
		}
		if len(filter.PaymentStatuses) > 0 && !slices.Contains(filter.PaymentStatuses, order.PaymentStatus) {
			continue
		}
		if filter.CreatedAt != nil && filter.CreatedAt.After != nil && order.CreatedAt.Before(*filter.CreatedAt.After) {
			continue
		}
		result = append(result, order)
	}

	return result, nil
}

type memPool struct {
	active map[domain.FeatureType][]domain.PromotionalFeature
	paid   []domain.PromotionalFeature
}

func newMemPool() *memPool {
	return &memPool{active: make(map[domain.FeatureType][]domain.PromotionalFeature)}
}

func (m *memPool) ActiveRecords(_ context.Context, featureType domain.FeatureType) ([]domain.PromotionalFeature, error) {
	return m.active[featureType], nil
}

func (m *memPool) PaidRecords(_ context.Context, vendorID uuid.UUID, from, to time.Time) ([]domain.PromotionalFeature, error) {
	var result []domain.PromotionalFeature
	for _, f := range m.paid {
		if vendorID != uuid.Nil && f.VendorID != vendorID {
			continue
		}
		if f.PaidAt == nil || f.PaidAt.Before(from) || !f.PaidAt.Before(to) {
			continue
		}
		result = append(result, f)
	}
	return result, nil
}

type statusChange struct {
	orderID        uuid.UUID
	previous, next domain.OrderStatus
}

type recordingSink struct {
	changes []statusChange
	err     error
}

func (r *recordingSink) OrderStatusChanged(_ context.Context, order domain.Order, previous, next domain.OrderStatus) error {
	r.changes = append(r.changes, statusChange{orderID: order.ID, previous: previous, next: next})
	return r.err
}

func eur(amount float64) domain.Money {
	return domain.Money{Amount: decimal.NewFromFloat(amount), Currency: currency.EUR}
}

func testProduct(vendorID uuid.UUID, price float64) domain.Product {
	return domain.Product{
		ID:       uuid.New(),
		VendorID: vendorID,
		Name:     "carved bowl",
		Category: "woodwork",
		Price:    eur(price),
		Type:     domain.ProductTypeReadyToShip,
		IsActive: true,
		Stock:    5,
	}
}
