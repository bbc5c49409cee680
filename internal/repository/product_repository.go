package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftora/marketplace/internal/domain"
	"github.com/craftora/marketplace/internal/port"
)

type productRepository struct {
	pool *pgxpool.Pool
}

func NewProduct(pool *pgxpool.Pool) port.ProductLookup {
	return &productRepository{pool: pool}
}

func (r *productRepository) Get(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	var p domain.Product

	var (
		price, currencyCode string
		lat, lng            *float64
	)

	row := r.pool.QueryRow(ctx, `
		SELECT id, vendor_id, name, category, price::text, currency, product_type,
			is_active, stock, lead_time, lead_time_unit, next_available_date,
			vendor_lat, vendor_lng, created_at
		FROM products WHERE id = $1`, productID)

	if err := row.Scan(&p.ID, &p.VendorID, &p.Name, &p.Category, &price, &currencyCode, &p.Type,
		&p.IsActive, &p.Stock, &p.LeadTime, &p.LeadTimeUnit, &p.NextAvailableDate,
		&lat, &lng, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
		}
		return p, fmt.Errorf("row.Scan: %w", err)
	}

	money, err := parseMoney(price, currencyCode)
	if err != nil {
		return p, fmt.Errorf("parseMoney: %w", err)
	}
	p.Price = money

	if lat != nil && lng != nil {
		p.VendorLocation = &domain.GeoPoint{Lat: *lat, Lng: *lng}
	}

	return p, nil
}
