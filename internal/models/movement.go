package models

import (
	"time"

	"github.com/google/uuid"
)

// MovementDirection classifies a stock movement.
type MovementDirection string

const (
	DirectionIn         MovementDirection = "in"
	DirectionOut        MovementDirection = "out"
	DirectionAdjustment MovementDirection = "adjustment"
)

// Movement subtypes written by the core. Subtype is free-form for
// caller-originated movements (purchase, sale, ...); these constants
// cover the movements the core itself produces.
const (
	SubtypeTransferOut     = "transfer_out"
	SubtypeTransferIn      = "transfer_in"
	SubtypeExternalReserve = "external_reserve"
	SubtypeExternalReceive = "external_receive"
	SubtypeExternalReturn  = "external_return"
	SubtypeStocktake       = "stocktake"
)

// MovementEntry is one immutable audit record of a quantity change.
// QuantityAfter always equals QuantityBefore plus or minus Quantity
// depending on Direction; for adjustments the sign is carried by the
// before/after pair itself. Entries are append-only: no update, no delete.
type MovementEntry struct {
	ID             uuid.UUID         `json:"id" db:"id"`
	OwnerID        uuid.UUID         `json:"owner_id" db:"owner_id"`
	LocationID     uuid.UUID         `json:"location_id" db:"location_id"`
	SKU            string            `json:"sku" db:"sku"`
	ItemName       string            `json:"item_name" db:"item_name"`
	Direction      MovementDirection `json:"direction" db:"direction"`
	Subtype        string            `json:"subtype" db:"subtype"`
	Quantity       int               `json:"quantity" db:"quantity"`
	QuantityBefore int               `json:"quantity_before" db:"quantity_before"`
	QuantityAfter  int               `json:"quantity_after" db:"quantity_after"`
	Reason         string            `json:"reason" db:"reason"`
	DocumentRef    *string           `json:"document_ref,omitempty" db:"document_ref"`
	CorrelationID  *uuid.UUID        `json:"correlation_id,omitempty" db:"correlation_id"`
	Actor          string            `json:"actor" db:"actor"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
}

// MovementFilter narrows movement history queries. A nil LocationID
// means all of the owner's locations.
type MovementFilter struct {
	LocationID *uuid.UUID         `json:"location_id,omitempty"`
	Direction  *MovementDirection `json:"direction,omitempty"`
	SKU        *string            `json:"sku,omitempty"`
	From       *time.Time         `json:"from,omitempty"`
	To         *time.Time         `json:"to,omitempty"`
	Limit      int                `json:"limit,omitempty"`
	Offset     int                `json:"offset,omitempty"`
}
