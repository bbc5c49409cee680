package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/craftora/marketplace/internal/domain"
	"github.com/craftora/marketplace/internal/port"
)

const orderColumns = `id, vendor_id, patron_id,
	guest_first_name, guest_last_name, guest_email, guest_phone,
	total_amount::text, currency, status,
	ready_to_ship_status, made_to_order_status, scheduled_order_status,
	payment_status, payment_method,
	gross_amount::text, platform_commission::text, artisan_earnings::text, commission_rate::text,
	ready_at, actual_delivery_time, patron_note, vendor_note,
	version, created_at, updated_at`

type orderRepository struct {
	pool *pgxpool.Pool
}

func NewOrder(pool *pgxpool.Pool) port.OrderStore {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	var o domain.Order

	if err := order.Validate(); err != nil {
		return o, fmt.Errorf("order.Validate: %w", err)
	}

	created, err := withTx(ctx, r.pool, func(tx pgx.Tx) (domain.Order, error) {
		var guest domain.GuestInfo
		if order.Guest != nil {
			guest = *order.Guest
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO orders (vendor_id, patron_id,
				guest_first_name, guest_last_name, guest_email, guest_phone,
				total_amount, currency, status,
				ready_to_ship_status, made_to_order_status, scheduled_order_status,
				payment_status, payment_method,
				gross_amount, platform_commission, artisan_earnings, commission_rate,
				patron_note, vendor_note)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
			RETURNING id, version, created_at, updated_at`,
			order.VendorID, order.PatronID,
			nilIfEmpty(guest.FirstName), nilIfEmpty(guest.LastName), nilIfEmpty(guest.Email), nilIfEmpty(guest.Phone),
			order.TotalAmount.Amount.String(), order.TotalAmount.Currency.String(), order.Status,
			order.ReadyToShipStatus, order.MadeToOrderStatus, order.ScheduledOrderStatus,
			order.PaymentStatus, order.PaymentMethod,
			revenueField(order.Revenue, func(r domain.RevenueBreakdown) decimal.Decimal { return r.GrossAmount }),
			revenueField(order.Revenue, func(r domain.RevenueBreakdown) decimal.Decimal { return r.PlatformCommission }),
			revenueField(order.Revenue, func(r domain.RevenueBreakdown) decimal.Decimal { return r.ArtisanEarnings }),
			revenueField(order.Revenue, func(r domain.RevenueBreakdown) decimal.Decimal { return r.CommissionRate }),
			order.PatronNote, order.VendorNote,
		)

		inserted := order
		if err := row.Scan(&inserted.ID, &inserted.Version, &inserted.CreatedAt, &inserted.UpdatedAt); err != nil {
			return o, fmt.Errorf("row.Scan: %w", err)
		}

		for pos, item := range order.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (order_id, pos, product_id, product_name,
					quantity, unit_price, line_total, currency, product_type,
					estimated_completion_date, scheduled_pickup_time)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				inserted.ID, pos, item.ProductID, item.ProductName,
				item.Quantity, item.UnitPrice.Amount.String(), item.LineTotal.Amount.String(),
				item.UnitPrice.Currency.String(), item.ProductType,
				item.EstimatedCompletionDate, item.ScheduledPickupTime,
			)
			if err != nil {
				return o, fmt.Errorf("tx.Exec order_items: %w", err)
			}
		}

		return inserted, nil
	})
	if err != nil {
		return o, fmt.Errorf("withTx: %w", err)
	}

	return r.Get(ctx, created.ID)
}

func (r *orderRepository) Get(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	var o domain.Order

	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return o, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
		}
		return o, fmt.Errorf("scanOrder: %w", err)
	}

	items, err := r.orderItems(ctx, orderID)
	if err != nil {
		return o, fmt.Errorf("r.orderItems: %w", err)
	}
	order.Items = items

	return order, nil
}

// Save updates the mutable fields of an order with an optimistic version
// check. Line items are immutable snapshots and are never rewritten.
func (r *orderRepository) Save(ctx context.Context, order domain.Order) (domain.Order, error) {
	var o domain.Order

	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET
			status = $1,
			ready_to_ship_status = $2, made_to_order_status = $3, scheduled_order_status = $4,
			payment_status = $5, payment_method = $6,
			gross_amount = $7, platform_commission = $8, artisan_earnings = $9, commission_rate = $10,
			ready_at = $11, actual_delivery_time = $12,
			patron_note = $13, vendor_note = $14,
			version = version + 1, updated_at = now()
		WHERE id = $15 AND version = $16`,
		order.Status,
		order.ReadyToShipStatus, order.MadeToOrderStatus, order.ScheduledOrderStatus,
		order.PaymentStatus, order.PaymentMethod,
		revenueField(order.Revenue, func(r domain.RevenueBreakdown) decimal.Decimal { return r.GrossAmount }),
		revenueField(order.Revenue, func(r domain.RevenueBreakdown) decimal.Decimal { return r.PlatformCommission }),
		revenueField(order.Revenue, func(r domain.RevenueBreakdown) decimal.Decimal { return r.ArtisanEarnings }),
		revenueField(order.Revenue, func(r domain.RevenueBreakdown) decimal.Decimal { return r.CommissionRate }),
		order.ReadyAt, order.ActualDeliveryTime,
		order.PatronNote, order.VendorNote,
		order.ID, order.Version,
	)
	if err != nil {
		return o, fmt.Errorf("pool.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// distinguish a missing row from a lost version race
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, order.ID).Scan(&exists); err != nil {
			return o, fmt.Errorf("pool.QueryRow exists: %w", err)
		}
		if !exists {
			return o, fmt.Errorf("order %s: %w", order.ID, domain.ErrNotFound)
		}
		return o, fmt.Errorf("order %s version %d: %w", order.ID, order.Version, domain.ErrConcurrentModification)
	}

	return r.Get(ctx, order.ID)
}

func (r *orderRepository) Search(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	var createdAfter, createdBefore *time.Time
	if filter.CreatedAt != nil {
		createdAfter = filter.CreatedAt.After
		createdBefore = filter.CreatedAt.Before
	}

	statuses := lo.Map(filter.Statuses, func(s domain.OrderStatus, _ int) string { return string(s) })
	paymentStatuses := lo.Map(filter.PaymentStatuses, func(s domain.PaymentStatus, _ int) string { return string(s) })

	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE ($1::uuid[] IS NULL OR id = ANY($1))
		  AND ($2::uuid[] IS NULL OR vendor_id = ANY($2))
		  AND ($3::uuid[] IS NULL OR patron_id = ANY($3))
		  AND ($4::text[] IS NULL OR status = ANY($4))
		  AND ($5::text[] IS NULL OR payment_status = ANY($5))
		  AND ($6::timestamptz IS NULL OR created_at >= $6)
		  AND ($7::timestamptz IS NULL OR created_at < $7)
		ORDER BY created_at DESC`,
		nilSliceIfEmpty(filter.IDs), nilSliceIfEmpty(filter.VendorIDs), nilSliceIfEmpty(filter.PatronIDs),
		nilSliceIfEmpty(statuses), nilSliceIfEmpty(paymentStatuses),
		createdAfter, createdBefore,
	)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanOrder: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	for i := range orders {
		items, err := r.orderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("r.orderItems: %w", err)
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *orderRepository) orderItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT product_id, product_name, quantity,
			unit_price::text, line_total::text, currency, product_type,
			estimated_completion_date, scheduled_pickup_time, created_at
		FROM order_items WHERE order_id = $1 ORDER BY pos`, orderID)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			item                 domain.OrderItem
			unitPrice, lineTotal string
			currencyCode         string
		)

		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity,
			&unitPrice, &lineTotal, &currencyCode, &item.ProductType,
			&item.EstimatedCompletionDate, &item.ScheduledPickupTime, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		unit, err := parseMoney(unitPrice, currencyCode)
		if err != nil {
			return nil, fmt.Errorf("parseMoney unit_price: %w", err)
		}
		total, err := parseMoney(lineTotal, currencyCode)
		if err != nil {
			return nil, fmt.Errorf("parseMoney line_total: %w", err)
		}

		item.UnitPrice = unit
		item.LineTotal = total
		items = append(items, item)
	}

	return items, rows.Err()
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o domain.Order

		guestFirst, guestLast, guestEmail, guestPhone *string
		totalAmount, currencyCode                     string
		gross, platformCommission, earnings, rate     *string
	)

	if err := row.Scan(&o.ID, &o.VendorID, &o.PatronID,
		&guestFirst, &guestLast, &guestEmail, &guestPhone,
		&totalAmount, &currencyCode, &o.Status,
		&o.ReadyToShipStatus, &o.MadeToOrderStatus, &o.ScheduledOrderStatus,
		&o.PaymentStatus, &o.PaymentMethod,
		&gross, &platformCommission, &earnings, &rate,
		&o.ReadyAt, &o.ActualDeliveryTime, &o.PatronNote, &o.VendorNote,
		&o.Version, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return o, err
	}

	total, err := parseMoney(totalAmount, currencyCode)
	if err != nil {
		return o, fmt.Errorf("parseMoney total_amount: %w", err)
	}
	o.TotalAmount = total

	if o.PatronID == nil {
		o.Guest = &domain.GuestInfo{
			FirstName: lo.FromPtr(guestFirst),
			LastName:  lo.FromPtr(guestLast),
			Email:     lo.FromPtr(guestEmail),
			Phone:     lo.FromPtr(guestPhone),
		}
	}

	if gross != nil && platformCommission != nil && earnings != nil && rate != nil {
		breakdown, err := parseRevenue(*gross, *platformCommission, *earnings, *rate)
		if err != nil {
			return o, fmt.Errorf("parseRevenue: %w", err)
		}
		o.Revenue = &breakdown
	}

	return o, nil
}

func parseRevenue(gross, commission, earnings, rate string) (domain.RevenueBreakdown, error) {
	var b domain.RevenueBreakdown

	fields := []struct {
		raw  string
		dest *decimal.Decimal
	}{
		{gross, &b.GrossAmount},
		{commission, &b.PlatformCommission},
		{earnings, &b.ArtisanEarnings},
		{rate, &b.CommissionRate},
	}

	for _, f := range fields {
		parsed, err := decimal.NewFromString(f.raw)
		if err != nil {
			return b, fmt.Errorf("decimal.NewFromString(%q): %w", f.raw, err)
		}
		*f.dest = parsed
	}

	b.CommissionPercent = domain.PercentString(b.CommissionRate)
	b.EarningsPercent = domain.PercentString(decimal.NewFromInt(1).Sub(b.CommissionRate))

	return b, nil
}

func parseMoney(amount, currencyCode string) (domain.Money, error) {
	parsedAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Money{}, fmt.Errorf("decimal.NewFromString(%q): %w", amount, err)
	}

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	return domain.Money{Amount: parsedAmount, Currency: parsedCurrency}, nil
}

func revenueField(r *domain.RevenueBreakdown, pick func(domain.RevenueBreakdown) decimal.Decimal) *string {
	if r == nil {
		return nil
	}
	return lo.ToPtr(pick(*r).String())
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nilSliceIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
