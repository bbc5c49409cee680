package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftora/marketplace/internal/domain"
	"github.com/craftora/marketplace/internal/port"
)

// CartItem is the checkout input: a product reference and a quantity.
type CartItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// SplitCart groups cart items by owning vendor and builds one draft order
// per vendor, in order of each vendor's first appearance in the cart.
// Unit prices and product types are snapshotted from the catalog at split
// time. The function is pure over its inputs: persisting the drafts is the
// caller's responsibility.
func SplitCart(ctx context.Context, items []CartItem, lookup port.ProductLookup, now time.Time) ([]domain.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("cart is empty")
	}

	var (
		vendorOrder []uuid.UUID
		drafts      = make(map[uuid.UUID]*domain.Order)
	)

	for i, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("cart item %d: quantity must be at least 1", i)
		}

		product, err := lookup.Get(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("lookup.Get %s: %w", item.ProductID, err)
		}

		if product.VendorID == uuid.Nil {
			return nil, fmt.Errorf("product %s: %w", product.ID, domain.ErrNoVendor)
		}

		draft, ok := drafts[product.VendorID]
		if !ok {
			draft = &domain.Order{
				VendorID: product.VendorID,
				Status:   domain.OrderStatusPending,
				TotalAmount: domain.Money{
					Amount:   decimal.Zero,
					Currency: product.Price.Currency,
				},
				PaymentStatus: domain.PaymentStatusPending,
			}
			drafts[product.VendorID] = draft
			vendorOrder = append(vendorOrder, product.VendorID)
		}

		if product.Price.Currency != draft.TotalAmount.Currency {
			return nil, fmt.Errorf("product %s currency %s does not match order currency %s: %w",
				product.ID, product.Price.Currency, draft.TotalAmount.Currency, domain.ErrInvalidAmount)
		}

		orderItem := snapshotItem(product, item.Quantity, now)
		draft.Items = append(draft.Items, orderItem)
		draft.TotalAmount = draft.TotalAmount.Add(orderItem.LineTotal)
	}

	result := make([]domain.Order, 0, len(vendorOrder))
	for _, vendorID := range vendorOrder {
		result = append(result, *drafts[vendorID])
	}

	return result, nil
}

// snapshotItem copies the product's price and type into an immutable line
// item and derives the type-specific scheduling fields.
func snapshotItem(product domain.Product, quantity int, now time.Time) domain.OrderItem {
	item := domain.OrderItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.Price,
		LineTotal:   product.Price.MulInt(quantity),
		ProductType: product.Type,
	}

	switch product.Type {
	case domain.ProductTypeMadeToOrder:
		if product.LeadTime > 0 {
			estimate := now.AddDate(0, 0, product.LeadTime*leadTimeDays(product.LeadTimeUnit))
			item.EstimatedCompletionDate = &estimate
		}
	case domain.ProductTypeScheduledOrder:
		if product.NextAvailableDate != nil {
			pickup := *product.NextAvailableDate
			item.ScheduledPickupTime = &pickup
		}
	}

	return item
}

func leadTimeDays(unit string) int {
	switch unit {
	case "weeks":
		return 7
	default: // days
		return 1
	}
}
