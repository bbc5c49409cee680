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

// DefaultCommissionRate is the platform cut applied when no explicit rate
// is configured.
var DefaultCommissionRate = decimal.NewFromFloat(0.10)

var one = decimal.NewFromInt(1)

// ComputeOrderRevenue splits an order's gross amount into platform
// commission and artisan earnings. The commission is rounded to cents;
// the earnings are the exact remainder, so the two always sum to the
// gross amount with no rounding drift. Idempotent for a fixed rate.
func ComputeOrderRevenue(order domain.Order, rate decimal.Decimal) (domain.RevenueBreakdown, error) {
	var b domain.RevenueBreakdown

	gross := order.TotalAmount.Amount
	if !gross.IsPositive() {
		return b, fmt.Errorf("order %s: gross amount %s: %w", order.ID, gross, domain.ErrInvalidAmount)
	}

	if rate.IsNegative() || rate.GreaterThan(one) {
		return b, fmt.Errorf("commission rate %s out of [0,1]: %w", rate, domain.ErrInvalidAmount)
	}

	commission := domain.Round2(gross.Mul(rate))
	earnings := gross.Sub(commission)

	return domain.RevenueBreakdown{
		GrossAmount:        gross,
		PlatformCommission: commission,
		ArtisanEarnings:    earnings,
		CommissionRate:     rate,
		CommissionPercent:  domain.PercentString(rate),
		EarningsPercent:    domain.PercentString(one.Sub(rate)),
	}, nil
}

// Summarize aggregates completed orders and paid promotions into one
// period bucket. Records without a usable revenue breakdown are skipped
// and counted, never fatal.
func Summarize(period domain.Period, now time.Time, orders []domain.Order, promotions []domain.PromotionalFeature) domain.RevenueSummary {
	start, end := period.Window(now)

	summary := domain.RevenueSummary{
		Period:           period,
		PeriodStart:      start,
		PeriodEnd:        end,
		TotalGross:       decimal.Zero,
		TotalCommission:  decimal.Zero,
		TotalEarnings:    decimal.Zero,
		PromotionalSpend: decimal.Zero,
	}

	for _, order := range orders {
		if order.CreatedAt.Before(start) || !order.CreatedAt.Before(end) {
			continue
		}
		if order.PaymentStatus != domain.PaymentStatusPaid {
			continue
		}

		if order.Revenue == nil || !order.Revenue.GrossAmount.IsPositive() {
			summary.SkippedOrders++
			continue
		}

		summary.TotalGross = summary.TotalGross.Add(order.Revenue.GrossAmount)
		summary.TotalCommission = summary.TotalCommission.Add(order.Revenue.PlatformCommission)
		summary.TotalEarnings = summary.TotalEarnings.Add(order.Revenue.ArtisanEarnings)
		summary.OrderCount++
	}

	for _, promo := range promotions {
		if promo.PaidAt == nil {
			continue
		}
		if promo.PaidAt.Before(start) || !promo.PaidAt.Before(end) {
			continue
		}

		if !promo.Price.Amount.IsPositive() {
			summary.SkippedPromotions++
			continue
		}
		summary.PromotionalSpend = summary.PromotionalSpend.Add(promo.Price.Amount)
	}

	if summary.OrderCount > 0 {
		summary.AverageOrderValue = summary.TotalGross.DivRound(decimal.NewFromInt(int64(summary.OrderCount)), 2)
	} else {
		summary.AverageOrderValue = decimal.Zero
	}

	// may be negative: a vendor can spend more on placements than they earn
	summary.NetEarnings = summary.TotalEarnings.Sub(summary.PromotionalSpend)

	return summary
}

// Revenue serves period summaries over the order store and promotion pool.
type Revenue struct {
	orders     port.OrderStore
	promotions port.PromotionPool

	now func() time.Time
}

func NewRevenue(orders port.OrderStore, promotions port.PromotionPool) *Revenue {
	return &Revenue{
		orders:     orders,
		promotions: promotions,
		now:        time.Now,
	}
}

// VendorSummary aggregates one vendor's completed orders and promotional
// spend for the period.
func (r *Revenue) VendorSummary(ctx context.Context, vendorID uuid.UUID, period domain.Period) (domain.RevenueSummary, error) {
	if vendorID == uuid.Nil {
		return domain.RevenueSummary{}, fmt.Errorf("vendor id is empty")
	}

	return r.summary(ctx, vendorID, period)
}

// PlatformSummary aggregates platform-wide, for administrative reporting.
func (r *Revenue) PlatformSummary(ctx context.Context, period domain.Period) (domain.RevenueSummary, error) {
	return r.summary(ctx, uuid.Nil, period)
}

func (r *Revenue) summary(ctx context.Context, vendorID uuid.UUID, period domain.Period) (domain.RevenueSummary, error) {
	var s domain.RevenueSummary

	now := r.now()
	start, _ := period.Window(now)

	filter := domain.OrderFilter{
		PaymentStatuses: []domain.PaymentStatus{domain.PaymentStatusPaid},
		CreatedAt:       &domain.TimeRange{After: &start},
	}
	if vendorID != uuid.Nil {
		filter.VendorIDs = []uuid.UUID{vendorID}
	}

	orders, err := r.orders.Search(ctx, filter)
	if err != nil {
		return s, fmt.Errorf("orders.Search: %w", err)
	}

	promotions, err := r.promotions.PaidRecords(ctx, vendorID, start, now)
	if err != nil {
		return s, fmt.Errorf("promotions.PaidRecords: %w", err)
	}

	summary := Summarize(period, now, orders, promotions)
	if summary.SkippedOrders > 0 || summary.SkippedPromotions > 0 {
		log.Printf("WARN revenue summary skipped %d orders and %d promotions without a usable amount (vendor=%s period=%s)",
			summary.SkippedOrders, summary.SkippedPromotions, vendorID, period)
	}

	return summary, nil
}
