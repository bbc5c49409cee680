package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftora/marketplace/internal/domain"
	"github.com/craftora/marketplace/internal/port"
)

// CheckoutRequest carries everything needed to turn a cart into orders.
// Exactly one of PatronID / Guest must be set.
type CheckoutRequest struct {
	Items         []CartItem
	PatronID      *uuid.UUID
	Guest         *domain.GuestInfo
	PaymentMethod string
	PatronNote    string
}

// Orders drives the order lifecycle: checkout, status transitions and
// payment updates. All I/O goes through the injected ports; the service
// itself holds no state beyond its configuration.
type Orders struct {
	store    port.OrderStore
	products port.ProductLookup
	notifier port.NotificationSink

	commissionRate decimal.Decimal

	now func() time.Time
}

func NewOrders(store port.OrderStore, products port.ProductLookup, notifier port.NotificationSink, commissionRate decimal.Decimal) *Orders {
	return &Orders{
		store:          store,
		products:       products,
		notifier:       notifier,
		commissionRate: commissionRate,
		now:            time.Now,
	}
}

// Checkout splits the cart per vendor, computes each draft's revenue
// breakdown and persists the resulting orders. Validation happens before
// any write: a bad request leaves the store untouched.
func (s *Orders) Checkout(ctx context.Context, req CheckoutRequest) ([]domain.Order, error) {
	if (req.PatronID == nil) == (req.Guest == nil) {
		return nil, fmt.Errorf("checkout needs exactly one of patron or guest")
	}

	now := s.now()

	drafts, err := SplitCart(ctx, req.Items, s.products, now)
	if err != nil {
		return nil, fmt.Errorf("SplitCart: %w", err)
	}

	for i := range drafts {
		drafts[i].PatronID = req.PatronID
		drafts[i].Guest = req.Guest
		drafts[i].PaymentMethod = req.PaymentMethod
		drafts[i].PatronNote = req.PatronNote

		revenue, err := ComputeOrderRevenue(drafts[i], s.commissionRate)
		if err != nil {
			return nil, fmt.Errorf("ComputeOrderRevenue: %w", err)
		}
		drafts[i].Revenue = &revenue
		drafts[i].DeriveShadowStatus()

		if err := drafts[i].Validate(); err != nil {
			return nil, fmt.Errorf("draft.Validate: %w", err)
		}
	}

	created := make([]domain.Order, 0, len(drafts))
	for _, draft := range drafts {
		order, err := s.store.Create(ctx, draft)
		if err != nil {
			return nil, fmt.Errorf("store.Create: %w", err)
		}
		created = append(created, order)
	}

	return created, nil
}

// Get returns one order by id.
func (s *Orders) Get(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("store.Get: %w", err)
	}
	return order, nil
}

// ApplyTransition moves an order to the requested status if the lifecycle
// table allows it and the acting vendor owns the order. On success the
// updated order is saved with an optimistic version check and the
// notification sink is informed, fire-and-forget.
func (s *Orders) ApplyTransition(ctx context.Context, orderID uuid.UUID, requested domain.OrderStatus, actingVendorID uuid.UUID) (domain.Order, error) {
	var o domain.Order

	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return o, fmt.Errorf("store.Get: %w", err)
	}

	if order.VendorID != actingVendorID {
		return o, fmt.Errorf("vendor %s does not own order %s: %w", actingVendorID, orderID, domain.ErrForbidden)
	}

	if !order.Status.CanTransition(requested) {
		return o, fmt.Errorf("cannot transition order from %q to %q: %w", order.Status, requested, domain.ErrInvalidTransition)
	}

	now := s.now()
	previous := order.Status

	order.Status = requested
	order.UpdatedAt = now

	switch requested {
	case domain.OrderStatusReady:
		order.ReadyAt = &now
	case domain.OrderStatusDelivered:
		order.ActualDeliveryTime = &now
	}

	order.DeriveShadowStatus()

	saved, err := s.store.Save(ctx, order)
	if err != nil {
		return o, fmt.Errorf("store.Save: %w", err)
	}

	if err := s.notifier.OrderStatusChanged(ctx, saved, previous, requested); err != nil {
		// notification delivery is a collaborator concern, never fatal
		log.Printf("WARN order %s status notification failed: %v", saved.ID, err)
	}

	return saved, nil
}

// SetPaymentStatus updates the payment state of an order. Unlike status
// transitions it has no ordering rules: any valid payment status may
// follow any other. Permitted for the order's patron or its vendor.
func (s *Orders) SetPaymentStatus(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus, actingUserID uuid.UUID) (domain.Order, error) {
	var o domain.Order

	if _, err := domain.ToPaymentStatus(string(status)); err != nil {
		return o, fmt.Errorf("ToPaymentStatus: %w", err)
	}

	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return o, fmt.Errorf("store.Get: %w", err)
	}

	if order.VendorID != actingUserID && !order.IsPatron(actingUserID) {
		return o, fmt.Errorf("user %s is neither patron nor vendor of order %s: %w", actingUserID, orderID, domain.ErrForbidden)
	}

	order.PaymentStatus = status
	order.UpdatedAt = s.now()

	saved, err := s.store.Save(ctx, order)
	if err != nil {
		return o, fmt.Errorf("store.Save: %w", err)
	}

	return saved, nil
}

// RecomputeRevenue overwrites the order's revenue breakdown after an
// amount correction. Overwrites, never accumulates.
func (s *Orders) RecomputeRevenue(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	var o domain.Order

	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return o, fmt.Errorf("store.Get: %w", err)
	}

	revenue, err := ComputeOrderRevenue(order, s.commissionRate)
	if err != nil {
		return o, fmt.Errorf("ComputeOrderRevenue: %w", err)
	}

	order.Revenue = &revenue
	order.UpdatedAt = s.now()

	saved, err := s.store.Save(ctx, order)
	if err != nil {
		return o, fmt.Errorf("store.Save: %w", err)
	}

	return saved, nil
}
