package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stocklink/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Notifier is the outbound port for ledger events. Implementations must
// be safe to call synchronously from a request path: delivery is
// fire-and-forget and a failed delivery never fails the operation.
type Notifier interface {
	TransferRequested(ctx context.Context, req *models.TransferRequest) error
	TransferResolved(ctx context.Context, req *models.TransferRequest) error
	CollaborationRequested(ctx context.Context, link *models.CollaborationLink) error
}

// NotificationService is the Notifier plus the read side of the
// per-owner inbox the UI polls.
type NotificationService interface {
	Notifier
	List(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.Notification, error)
}

const inboxCap = 200

type redisNotificationService struct {
	client *redis.Client
}

// NewNotificationService stores notifications in a capped per-owner
// redis list. Push mechanics beyond the inbox (email, mobile) are
// external consumers of the same events.
func NewNotificationService(addr, password string, db int) NotificationService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &redisNotificationService{client: client}
}

func inboxKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("inbox:%s", ownerID)
}

func (s *redisNotificationService) push(ctx context.Context, notification *models.Notification) error {
	notification.ID = uuid.New()
	notification.CreatedAt = time.Now()

	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %v", err)
	}

	key := inboxKey(notification.OwnerID)
	if err := s.client.LPush(ctx, key, data).Err(); err != nil {
		return err
	}
	return s.client.LTrim(ctx, key, 0, inboxCap-1).Err()
}

func (s *redisNotificationService) TransferRequested(ctx context.Context, req *models.TransferRequest) error {
	return s.push(ctx, &models.Notification{
		OwnerID: req.DestOwnerID,
		Event:   models.EventTransferRequested,
		Subject: fmt.Sprintf("Incoming transfer: %d x %s", req.Quantity, req.ItemName),
		Body:    fmt.Sprintf("Owner %s wants to send you %d units of %s (%s).", req.SourceOwnerID, req.Quantity, req.ItemName, req.SKU),
		RefID:   &req.ID,
	})
}

func (s *redisNotificationService) TransferResolved(ctx context.Context, req *models.TransferRequest) error {
	event := models.EventTransferApproved
	verb := "approved"
	if req.Status == models.TransferRejected {
		event = models.EventTransferRejected
		verb = "rejected"
	}
	return s.push(ctx, &models.Notification{
		OwnerID: req.SourceOwnerID,
		Event:   event,
		Subject: fmt.Sprintf("Transfer %s: %d x %s", verb, req.Quantity, req.ItemName),
		Body:    fmt.Sprintf("Your transfer of %d units of %s (%s) was %s.", req.Quantity, req.ItemName, req.SKU, verb),
		RefID:   &req.ID,
	})
}

func (s *redisNotificationService) CollaborationRequested(ctx context.Context, link *models.CollaborationLink) error {
	return s.push(ctx, &models.Notification{
		OwnerID: link.RecipientID,
		Event:   models.EventCollaboration,
		Subject: "New collaboration request",
		Body:    fmt.Sprintf("Owner %s wants to collaborate with you.", link.RequesterID),
		RefID:   &link.ID,
	})
}

func (s *redisNotificationService) List(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.Notification, error) {
	if limit <= 0 || limit > inboxCap {
		limit = 50
	}

	values, err := s.client.LRange(ctx, inboxKey(ownerID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	notifications := make([]*models.Notification, 0, len(values))
	for _, value := range values {
		var notification models.Notification
		if err := json.Unmarshal([]byte(value), &notification); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification: %v", err)
		}
		notifications = append(notifications, &notification)
	}
	return notifications, nil
}
