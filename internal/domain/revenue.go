package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

func ToPeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return p, nil
	}

	return "", fmt.Errorf("invalid period %q", s)
}

// Window resolves the period to a concrete [start, now) range.
// week is a rolling 7 days; month, quarter and year snap to calendar
// boundaries in now's location.
func (p Period) Window(now time.Time) (time.Time, time.Time) {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7), now
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, now
	case PeriodQuarter:
		quarterMonth := time.Month(((int(now.Month())-1)/3)*3 + 1)
		start := time.Date(now.Year(), quarterMonth, 1, 0, 0, 0, 0, now.Location())
		return start, now
	case PeriodYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return start, now
	}

	return now, now
}

// RevenueSummary is derived on demand, never persisted.
type RevenueSummary struct {
	Period      Period
	PeriodStart time.Time
	PeriodEnd   time.Time

	TotalGross      decimal.Decimal
	TotalCommission decimal.Decimal
	TotalEarnings   decimal.Decimal

	OrderCount        int
	AverageOrderValue decimal.Decimal

	// paid promotional placements inside the same window
	PromotionalSpend decimal.Decimal

	// TotalEarnings - PromotionalSpend; negative is a valid outcome
	NetEarnings decimal.Decimal

	// records lacking a usable amount, skipped rather than fatal
	SkippedOrders     int
	SkippedPromotions int
}
