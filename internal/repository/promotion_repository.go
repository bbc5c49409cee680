package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftora/marketplace/internal/domain"
	"github.com/craftora/marketplace/internal/port"
)

const featureColumns = `id, vendor_id, product_id, feature_type, status,
	start_date, end_date, is_active, price::text, currency, paid_at,
	placement, priority, keywords, category_boost, proximity_boost,
	impressions, clicks, conversions, revenue::text,
	created_at, updated_at`

type promotionRepository struct {
	pool *pgxpool.Pool
}

func NewPromotion(pool *pgxpool.Pool) port.PromotionPool {
	return &promotionRepository{pool: pool}
}

// ActiveRecords returns currently-live records of the given type. The
// WHERE clause mirrors domain.PromotionalFeature.IsLive.
func (r *promotionRepository) ActiveRecords(ctx context.Context, featureType domain.FeatureType) ([]domain.PromotionalFeature, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+featureColumns+` FROM promotional_features
		WHERE feature_type = $1
		  AND status = 'active' AND is_active
		  AND start_date <= now() AND now() < end_date
		ORDER BY created_at`, featureType)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	return collectFeatures(rows)
}

// PaidRecords returns records paid within [from, to), for one vendor or
// platform-wide when vendorID is uuid.Nil.
func (r *promotionRepository) PaidRecords(ctx context.Context, vendorID uuid.UUID, from, to time.Time) ([]domain.PromotionalFeature, error) {
	var vendorFilter *uuid.UUID
	if vendorID != uuid.Nil {
		vendorFilter = &vendorID
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+featureColumns+` FROM promotional_features
		WHERE ($1::uuid IS NULL OR vendor_id = $1)
		  AND paid_at IS NOT NULL AND paid_at >= $2 AND paid_at < $3
		ORDER BY paid_at`, vendorFilter, from, to)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	return collectFeatures(rows)
}

func collectFeatures(rows pgx.Rows) ([]domain.PromotionalFeature, error) {
	var features []domain.PromotionalFeature

	for rows.Next() {
		var (
			f              domain.PromotionalFeature
			price, revenue string
			currencyCode   string
		)

		if err := rows.Scan(&f.ID, &f.VendorID, &f.ProductID, &f.Type, &f.Status,
			&f.StartDate, &f.EndDate, &f.IsActive, &price, &currencyCode, &f.PaidAt,
			&f.Specs.Placement, &f.Specs.Priority, &f.Specs.Keywords, &f.Specs.CategoryBoost, &f.Specs.ProximityBoost,
			&f.Performance.Impressions, &f.Performance.Clicks, &f.Performance.Conversions, &revenue,
			&f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		priceMoney, err := parseMoney(price, currencyCode)
		if err != nil {
			return nil, fmt.Errorf("parseMoney price: %w", err)
		}
		f.Price = priceMoney

		revenueMoney, err := parseMoney(revenue, currencyCode)
		if err != nil {
			return nil, fmt.Errorf("parseMoney revenue: %w", err)
		}
		f.Performance.Revenue = revenueMoney

		features = append(features, f)
	}

	return features, rows.Err()
}
