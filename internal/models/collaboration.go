package models

import (
	"time"

	"github.com/google/uuid"
)

// CollaborationStatus is the state of a link between two owners.
type CollaborationStatus string

const (
	CollaborationPending  CollaborationStatus = "pending"
	CollaborationAccepted CollaborationStatus = "accepted"
	CollaborationRejected CollaborationStatus = "rejected"
)

// CollaborationLink connects two owners. Only an accepted link permits
// external transfer requests between them, in either direction.
type CollaborationLink struct {
	ID          uuid.UUID           `json:"id" db:"id"`
	RequesterID uuid.UUID           `json:"requester_id" db:"requester_id"`
	RecipientID uuid.UUID           `json:"recipient_id" db:"recipient_id"`
	Status      CollaborationStatus `json:"status" db:"status"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
	RespondedAt *time.Time          `json:"responded_at,omitempty" db:"responded_at"`
}
