package models

import (
	"time"

	"github.com/google/uuid"
)

// StockRecord holds the on-hand quantity for one item at one location.
// A record is unique per (owner_id, location_id, sku); the quantity is
// only ever changed through the ledger service so it never goes negative.
type StockRecord struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OwnerID      uuid.UUID `json:"owner_id" db:"owner_id"`
	LocationID   uuid.UUID `json:"location_id" db:"location_id"`
	SKU          string    `json:"sku" db:"sku"`
	Name         string    `json:"name" db:"name"`
	Category     string    `json:"category" db:"category"`
	Supplier     string    `json:"supplier" db:"supplier"`
	Slot         string    `json:"slot" db:"slot"`
	Quantity     int       `json:"quantity" db:"quantity"`
	MinThreshold int       `json:"min_threshold" db:"min_threshold"`
	SalePrice    float64   `json:"sale_price" db:"sale_price"`
	CostPrice    float64   `json:"cost_price" db:"cost_price"`
	LastUpdated  time.Time `json:"last_updated" db:"last_updated"`
}

// LocationQuantity is one location's share of a consolidated stock row.
type LocationQuantity struct {
	LocationID uuid.UUID `json:"location_id"`
	Quantity   int       `json:"quantity"`
}

// ConsolidatedStock groups one item's quantities across all of an
// owner's locations into a single row with per-location sub-entries.
type ConsolidatedStock struct {
	SKU       string             `json:"sku"`
	Name      string             `json:"name"`
	Category  string             `json:"category"`
	Total     int                `json:"total"`
	Locations []LocationQuantity `json:"locations"`
}

// MutationMeta carries the caller-supplied context of a stock mutation:
// catalog metadata for record creation plus audit fields for the movement.
// The core does not own the catalog; name, category and prices are
// whatever the caller hands over at mutation time.
type MutationMeta struct {
	Name          string     `json:"name"`
	Category      string     `json:"category"`
	Supplier      string     `json:"supplier"`
	Slot          string     `json:"slot"`
	SalePrice     float64    `json:"sale_price"`
	CostPrice     float64    `json:"cost_price"`
	MinThreshold  int        `json:"min_threshold"`
	Subtype       string     `json:"subtype"`
	Reason        string     `json:"reason"`
	DocumentRef   *string    `json:"document_ref,omitempty"`
	CorrelationID *uuid.UUID `json:"correlation_id,omitempty"`
	Actor         string     `json:"actor"`
}

// StockMutation is the outcome of a single committed stock change.
// Before is nil when the mutation created the record.
type StockMutation struct {
	Before   *StockRecord   `json:"before,omitempty"`
	After    *StockRecord   `json:"after"`
	Movement *MovementEntry `json:"movement"`
}
