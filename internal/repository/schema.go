package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id                     UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    vendor_id              UUID        NOT NULL,
    patron_id              UUID,
    guest_first_name       TEXT,
    guest_last_name        TEXT,
    guest_email            TEXT,
    guest_phone            TEXT,
    total_amount           NUMERIC     NOT NULL,
    currency               TEXT        NOT NULL,
    status                 TEXT        NOT NULL DEFAULT 'pending',
    ready_to_ship_status   TEXT        NOT NULL DEFAULT '',
    made_to_order_status   TEXT        NOT NULL DEFAULT '',
    scheduled_order_status TEXT        NOT NULL DEFAULT '',
    payment_status         TEXT        NOT NULL DEFAULT 'pending',
    payment_method         TEXT        NOT NULL DEFAULT '',
    gross_amount           NUMERIC,
    platform_commission    NUMERIC,
    artisan_earnings       NUMERIC,
    commission_rate        NUMERIC,
    ready_at               TIMESTAMPTZ,
    actual_delivery_time   TIMESTAMPTZ,
    patron_note            TEXT        NOT NULL DEFAULT '',
    vendor_note            TEXT        NOT NULL DEFAULT '',
    version                BIGINT      NOT NULL DEFAULT 1,
    created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_orders_vendor ON orders (vendor_id, created_at);

CREATE TABLE IF NOT EXISTS order_items (
    order_id                  UUID        NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
    pos                       INT         NOT NULL,
    product_id                UUID        NOT NULL,
    product_name              TEXT        NOT NULL DEFAULT '',
    quantity                  INT         NOT NULL CHECK (quantity >= 1),
    unit_price                NUMERIC     NOT NULL,
    line_total                NUMERIC     NOT NULL,
    currency                  TEXT        NOT NULL,
    product_type              TEXT        NOT NULL,
    estimated_completion_date TIMESTAMPTZ,
    scheduled_pickup_time     TIMESTAMPTZ,
    created_at                TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (order_id, pos)
);

CREATE TABLE IF NOT EXISTS products (
    id                  UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    vendor_id           UUID        NOT NULL,
    name                TEXT        NOT NULL,
    category            TEXT        NOT NULL DEFAULT '',
    price               NUMERIC     NOT NULL,
    currency            TEXT        NOT NULL,
    product_type        TEXT        NOT NULL,
    is_active           BOOLEAN     NOT NULL DEFAULT TRUE,
    stock               INT         NOT NULL DEFAULT 0,
    lead_time           INT         NOT NULL DEFAULT 0,
    lead_time_unit      TEXT        NOT NULL DEFAULT 'days',
    next_available_date TIMESTAMPTZ,
    vendor_lat          DOUBLE PRECISION,
    vendor_lng          DOUBLE PRECISION,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS promotional_features (
    id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    vendor_id       UUID        NOT NULL,
    product_id      UUID        NOT NULL,
    feature_type    TEXT        NOT NULL,
    status          TEXT        NOT NULL DEFAULT 'pending_approval',
    start_date      TIMESTAMPTZ NOT NULL,
    end_date        TIMESTAMPTZ NOT NULL,
    is_active       BOOLEAN     NOT NULL DEFAULT FALSE,
    price           NUMERIC     NOT NULL,
    currency        TEXT        NOT NULL,
    paid_at         TIMESTAMPTZ,
    placement       TEXT        NOT NULL DEFAULT '',
    priority        INT         NOT NULL DEFAULT 1,
    keywords        TEXT[]      NOT NULL DEFAULT '{}',
    category_boost  TEXT        NOT NULL DEFAULT '',
    proximity_boost BOOLEAN     NOT NULL DEFAULT FALSE,
    impressions     BIGINT      NOT NULL DEFAULT 0,
    clicks          BIGINT      NOT NULL DEFAULT 0,
    conversions     BIGINT      NOT NULL DEFAULT 0,
    revenue         NUMERIC     NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_features_live ON promotional_features (feature_type, status, is_active, start_date, end_date);
`

// Migrate applies the DDL. Idempotent, safe to run at every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("pool.Exec schema: %w", err)
	}
	return nil
}
