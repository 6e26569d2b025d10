package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationEvent names a ledger event an owner can be told about.
type NotificationEvent string

const (
	EventTransferRequested NotificationEvent = "transfer_requested"
	EventTransferApproved  NotificationEvent = "transfer_approved"
	EventTransferRejected  NotificationEvent = "transfer_rejected"
	EventCollaboration     NotificationEvent = "collaboration_request"
)

// Notification is one entry in an owner's inbox. Delivery is
// fire-and-forget; the ledger never blocks on it.
type Notification struct {
	ID        uuid.UUID         `json:"id"`
	OwnerID   uuid.UUID         `json:"owner_id"`
	Event     NotificationEvent `json:"event"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	RefID     *uuid.UUID        `json:"ref_id,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
