package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"

	"github.com/craftora/marketplace/internal/domain"
)

func TestSplitCart(t *testing.T) {
	ctx := t.Context()
	now := time.Now()

	vendorA := uuid.New()
	vendorB := uuid.New()

	productA := testProduct(vendorA, 10)
	productB := testProduct(vendorB, 5)

	lookup := newMemProducts(productA, productB)

	t.Run("two vendors: one draft each, totals per vendor", func(t *testing.T) {
		drafts, err := SplitCart(ctx, []CartItem{
			{ProductID: productA.ID, Quantity: 2},
			{ProductID: productB.ID, Quantity: 1},
		}, lookup, now)
		require.NoError(t, err)
		require.Len(t, drafts, 2)

		// vendor A appeared first in the cart, so it comes first
		assert.Equal(t, vendorA, drafts[0].VendorID)
		assert.True(t, drafts[0].TotalAmount.Amount.Equal(decimal.NewFromInt(20)),
			"got %s", drafts[0].TotalAmount.Amount)

		assert.Equal(t, vendorB, drafts[1].VendorID)
		assert.True(t, drafts[1].TotalAmount.Amount.Equal(decimal.NewFromInt(5)),
			"got %s", drafts[1].TotalAmount.Amount)
	})

	t.Run("no items dropped, duplicated or re-ordered across groups", func(t *testing.T) {
		cart := []CartItem{
			{ProductID: productA.ID, Quantity: 1},
			{ProductID: productB.ID, Quantity: 2},
			{ProductID: productA.ID, Quantity: 3},
		}

		drafts, err := SplitCart(ctx, cart, lookup, now)
		require.NoError(t, err)
		require.Len(t, drafts, 2)

		// vendor A keeps both its items in cart order
		require.Len(t, drafts[0].Items, 2)
		assert.Equal(t, 1, drafts[0].Items[0].Quantity)
		assert.Equal(t, 3, drafts[0].Items[1].Quantity)
		require.Len(t, drafts[1].Items, 1)

		total := 0
		for _, draft := range drafts {
			for _, item := range draft.Items {
				assert.Equal(t, draft.VendorID, lookupVendor(t, lookup, item.ProductID))
				total += item.Quantity
			}
		}
		assert.Equal(t, 6, total)
	})

	t.Run("price is a snapshot, not a live reference", func(t *testing.T) {
		drafts, err := SplitCart(ctx, []CartItem{{ProductID: productA.ID, Quantity: 1}}, lookup, now)
		require.NoError(t, err)

		// catalog price changes after the split
		changed := productA
		changed.Price = eur(99)
		lookup.products[productA.ID] = changed
		defer func() { lookup.products[productA.ID] = productA }()

		assert.True(t, drafts[0].Items[0].UnitPrice.Amount.Equal(decimal.NewFromInt(10)))
	})

	t.Run("unknown product: ErrNotFound", func(t *testing.T) {
		_, err := SplitCart(ctx, []CartItem{{ProductID: uuid.New(), Quantity: 1}}, lookup, now)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("product without vendor: ErrNoVendor", func(t *testing.T) {
		orphan := testProduct(uuid.Nil, 7)
		orphanLookup := newMemProducts(orphan)

		_, err := SplitCart(ctx, []CartItem{{ProductID: orphan.ID, Quantity: 1}}, orphanLookup, now)
		require.ErrorIs(t, err, domain.ErrNoVendor)
	})

	t.Run("mixed currencies under one vendor: ErrInvalidAmount", func(t *testing.T) {
		dollarProduct := testProduct(vendorA, 30)
		dollarProduct.Price.Currency = currency.USD

		mixedLookup := newMemProducts(productA, dollarProduct)

		_, err := SplitCart(ctx, []CartItem{
			{ProductID: productA.ID, Quantity: 1},
			{ProductID: dollarProduct.ID, Quantity: 1},
		}, mixedLookup, now)
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("zero quantity: fail", func(t *testing.T) {
		_, err := SplitCart(ctx, []CartItem{{ProductID: productA.ID, Quantity: 0}}, lookup, now)
		require.ErrorContains(t, err, "quantity must be at least 1")
	})

	t.Run("empty cart: fail", func(t *testing.T) {
		_, err := SplitCart(ctx, nil, lookup, now)
		require.ErrorContains(t, err, "cart is empty")
	})
}

func TestSplitCartSchedulingFields(t *testing.T) {
	ctx := t.Context()
	now := time.Date(2026, time.August, 20, 10, 0, 0, 0, time.UTC)

	vendor := uuid.New()

	madeToOrder := testProduct(vendor, 40)
	madeToOrder.Type = domain.ProductTypeMadeToOrder
	madeToOrder.LeadTime = 2
	madeToOrder.LeadTimeUnit = "weeks"

	pickup := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)
	scheduled := testProduct(vendor, 15)
	scheduled.Type = domain.ProductTypeScheduledOrder
	scheduled.NextAvailableDate = &pickup

	lookup := newMemProducts(madeToOrder, scheduled)

	drafts, err := SplitCart(ctx, []CartItem{
		{ProductID: madeToOrder.ID, Quantity: 1},
		{ProductID: scheduled.ID, Quantity: 1},
	}, lookup, now)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	require.Len(t, drafts[0].Items, 2)

	madeItem := drafts[0].Items[0]
	require.NotNil(t, madeItem.EstimatedCompletionDate)
	assert.Equal(t, now.AddDate(0, 0, 14), *madeItem.EstimatedCompletionDate)

	scheduledItem := drafts[0].Items[1]
	require.NotNil(t, scheduledItem.ScheduledPickupTime)
	assert.Equal(t, pickup, *scheduledItem.ScheduledPickupTime)
}

func lookupVendor(t *testing.T, lookup *memProducts, productID uuid.UUID) uuid.UUID {
	t.Helper()

	product, err := lookup.Get(t.Context(), productID)
	require.NoError(t, err)
	return product.VendorID
}
