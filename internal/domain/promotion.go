package domain

import (
	"time"

	"github.com/google/uuid"
)

type FeatureType string

const (
	FeatureTypeFeaturedProduct  FeatureType = "featured_product"
	FeatureTypeSponsoredProduct FeatureType = "sponsored_product"
)

type FeatureStatus string

const (
	FeatureStatusPendingApproval FeatureStatus = "pending_approval"
	FeatureStatusApproved        FeatureStatus = "approved"
	FeatureStatusRejected        FeatureStatus = "rejected"
	FeatureStatusActive          FeatureStatus = "active"
	FeatureStatusPaused          FeatureStatus = "paused"
	FeatureStatusCompleted       FeatureStatus = "completed"
	FeatureStatusCancelled       FeatureStatus = "cancelled"
	FeatureStatusExpired         FeatureStatus = "expired"
)

// FeatureSpecs is the vendor-chosen placement configuration.
type FeatureSpecs struct {
	Placement      string
	Priority       int // 1..10, higher ranks first
	Keywords       []string
	CategoryBoost  string
	ProximityBoost bool
}

// FeaturePerformance counters are read here and incremented by the
// analytics collaborator, never by this engine.
type FeaturePerformance struct {
	Impressions int64
	Clicks      int64
	Conversions int64
	Revenue     Money
}

// PromotionalFeature is a purchased placement for one product.
// Status transitions (approval, expiry sweep) belong to collaborators;
// the ranking engine only ever reads live records.
type PromotionalFeature struct {
	ID        uuid.UUID
	VendorID  uuid.UUID
	ProductID uuid.UUID

	Type   FeatureType
	Status FeatureStatus

	StartDate time.Time
	EndDate   time.Time
	IsActive  bool

	Price  Money
	PaidAt *time.Time

	Specs       FeatureSpecs
	Performance FeaturePerformance

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLive reports whether the record may surface at the given instant:
// active status, active flag, and now within [StartDate, EndDate).
func (f PromotionalFeature) IsLive(now time.Time) bool {
	if f.Status != FeatureStatusActive || !f.IsActive {
		return false
	}
	return !now.Before(f.StartDate) && now.Before(f.EndDate)
}

// RemainingDays is the whole days until EndDate, rounded up and clamped
// at zero. Expired records should already be filtered out; the clamp is
// an invariant, not a code path the filter is expected to reach.
func (f PromotionalFeature) RemainingDays(now time.Time) int {
	if !now.Before(f.EndDate) {
		return 0
	}

	days := f.EndDate.Sub(now).Hours() / 24
	remaining := int(days)
	if days > float64(remaining) {
		remaining++
	}
	return remaining
}
