package domain

import (
	"time"

	"github.com/google/uuid"
)

type ProductType string

const (
	ProductTypeReadyToShip    ProductType = "ready_to_ship"
	ProductTypeMadeToOrder    ProductType = "made_to_order"
	ProductTypeScheduledOrder ProductType = "scheduled_order"
)

// GeoPoint is a plain lat/lng pair, degrees.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// Product is read-only input to the engine: catalog ownership and pricing
// belong to the product service, the engine only snapshots from it.
type Product struct {
	ID       uuid.UUID
	VendorID uuid.UUID
	Name     string
	Category string
	Price    Money
	Type     ProductType
	IsActive bool

	// ready_to_ship
	Stock int

	// made_to_order
	LeadTime     int
	LeadTimeUnit string

	// scheduled_order
	NextAvailableDate *time.Time

	// artisan shop location, denormalized for proximity ranking
	VendorLocation *GeoPoint

	CreatedAt time.Time
}
