package models

import (
	"time"

	"github.com/google/uuid"
)

// TransferStatus is the lifecycle state of an external transfer request.
// pending is the only non-terminal state; approved and rejected are final.
type TransferStatus string

const (
	TransferPending  TransferStatus = "pending"
	TransferApproved TransferStatus = "approved"
	TransferRejected TransferStatus = "rejected"
)

// TransferRequest is the rendezvous document of the two-phase external
// transfer protocol. The quantity is debited from the source at creation
// time and credited to exactly one side at resolution: the destination on
// approval, the source on rejection. Item metadata is cached on the
// request so the destination record can be created without a catalog
// lookup across the trust boundary.
type TransferRequest struct {
	ID               uuid.UUID      `json:"id" db:"id"`
	SourceOwnerID    uuid.UUID      `json:"source_owner_id" db:"source_owner_id"`
	SourceLocationID uuid.UUID      `json:"source_location_id" db:"source_location_id"`
	DestOwnerID      uuid.UUID      `json:"dest_owner_id" db:"dest_owner_id"`
	DestLocationID   uuid.UUID      `json:"dest_location_id" db:"dest_location_id"`
	SKU              string         `json:"sku" db:"sku"`
	ItemName         string         `json:"item_name" db:"item_name"`
	Category         string         `json:"category" db:"category"`
	SalePrice        float64        `json:"sale_price" db:"sale_price"`
	CostPrice        float64        `json:"cost_price" db:"cost_price"`
	Quantity         int            `json:"quantity" db:"quantity"`
	Reason           string         `json:"reason" db:"reason"`
	Status           TransferStatus `json:"status" db:"status"`
	OriginMovementID uuid.UUID      `json:"origin_movement_id" db:"origin_movement_id"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	ResolvedAt       *time.Time     `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolvedBy       *string        `json:"resolved_by,omitempty" db:"resolved_by"`
}

// InternalTransferResult reports both halves of a same-owner transfer.
// Debit and Credit share a correlation id on their movements.
type InternalTransferResult struct {
	CorrelationID uuid.UUID      `json:"correlation_id"`
	Debit         *StockMutation `json:"debit"`
	Credit        *StockMutation `json:"credit"`
}
