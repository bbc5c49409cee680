package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GuestInfo identifies an unregistered patron on a guest checkout.
type GuestInfo struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// OrderItem is an immutable snapshot of a product at order time:
// unit price and product type are copied, never read live.
type OrderItem struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   Money
	LineTotal   Money
	ProductType ProductType

	// made_to_order
	EstimatedCompletionDate *time.Time
	// scheduled_order
	ScheduledPickupTime *time.Time

	CreatedAt time.Time
}

// RevenueBreakdown is populated once at order creation and overwritten,
// never accumulated, on corrective recompute.
type RevenueBreakdown struct {
	GrossAmount        decimal.Decimal
	PlatformCommission decimal.Decimal
	ArtisanEarnings    decimal.Decimal
	CommissionRate     decimal.Decimal
	CommissionPercent  string
	EarningsPercent    string
}

type Order struct {
	ID       uuid.UUID
	VendorID uuid.UUID

	// exactly one of PatronID / Guest is set
	PatronID *uuid.UUID
	Guest    *GuestInfo

	Items       []OrderItem
	TotalAmount Money

	Status OrderStatus

	// shadow statuses: mirrored from Status only when every line item
	// shares the corresponding product type
	ReadyToShipStatus    OrderStatus
	MadeToOrderStatus    OrderStatus
	ScheduledOrderStatus OrderStatus

	PaymentStatus PaymentStatus
	PaymentMethod string

	Revenue *RevenueBreakdown

	ReadyAt            *time.Time
	ActualDeliveryTime *time.Time

	PatronNote string
	VendorNote string

	// optimistic-concurrency token, bumped by the store on every save
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the structural invariants that must hold before any write.
func (o Order) Validate() error {
	if o.VendorID == uuid.Nil {
		return errors.New("order has no vendor")
	}

	if (o.PatronID == nil) == (o.Guest == nil) {
		return errors.New("order needs exactly one of patron or guest")
	}

	if len(o.Items) == 0 {
		return errors.New("no items in order")
	}

	total := decimal.Zero
	for i, item := range o.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("item %d: quantity must be at least 1", i)
		}

		lineTotal := item.UnitPrice.MulInt(item.Quantity)
		if !item.LineTotal.Amount.Equal(lineTotal.Amount) {
			return fmt.Errorf("item %d: line total %s does not match %s x %d",
				i, item.LineTotal.Amount, item.UnitPrice.Amount, item.Quantity)
		}

		total = total.Add(item.LineTotal.Amount)
	}

	if !o.TotalAmount.Amount.Equal(total) {
		return fmt.Errorf("total amount %s does not match sum of line totals %s",
			o.TotalAmount.Amount, total)
	}

	if o.Revenue != nil {
		if !o.Revenue.GrossAmount.Equal(o.TotalAmount.Amount) {
			return errors.New("revenue gross amount does not match order total")
		}
		sum := o.Revenue.PlatformCommission.Add(o.Revenue.ArtisanEarnings)
		if !sum.Equal(o.Revenue.GrossAmount) {
			return errors.New("commission and earnings do not sum to gross amount")
		}
	}

	return nil
}

// SharedProductType returns the single product type of the order, if any.
// Mixed-type orders return false; their shadow statuses stay untouched,
// which matches the upstream product behavior (undefined for mixed carts).
func (o Order) SharedProductType() (ProductType, bool) {
	if len(o.Items) == 0 {
		return "", false
	}

	shared := o.Items[0].ProductType
	for _, item := range o.Items[1:] {
		if item.ProductType != shared {
			return "", false
		}
	}

	return shared, true
}

// DeriveShadowStatus syncs the per-product-type status field after a
// successful transition. No-op for mixed-type orders.
func (o *Order) DeriveShadowStatus() {
	shared, ok := o.SharedProductType()
	if !ok {
		return
	}

	switch shared {
	case ProductTypeReadyToShip:
		o.ReadyToShipStatus = o.Status
	case ProductTypeMadeToOrder:
		o.MadeToOrderStatus = o.Status
	case ProductTypeScheduledOrder:
		o.ScheduledOrderStatus = o.Status
	}
}

// IsPatron reports whether userID is the order's registered buyer.
func (o Order) IsPatron(userID uuid.UUID) bool {
	return o.PatronID != nil && *o.PatronID == userID
}
