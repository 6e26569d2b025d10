package jobs

import (
	"context"
	"log"
	"time"

	"stocklink/internal/models"
	"stocklink/internal/repositories"
	"stocklink/internal/services"
)

// PendingTransferReminderService nudges destination owners about
// transfer requests that have sat unresolved. Pending requests never
// expire on their own; the reserved quantity stays off both ledgers
// until someone decides, so the reminder is the only pressure applied.
type PendingTransferReminderService struct {
	transferRepo repositories.TransferRepository
	notifier     services.Notifier
	staleAfter   time.Duration
}

func NewPendingTransferReminderService(transferRepo repositories.TransferRepository, notifier services.Notifier, staleAfter time.Duration) *PendingTransferReminderService {
	if staleAfter <= 0 {
		staleAfter = 48 * time.Hour
	}
	return &PendingTransferReminderService{
		transferRepo: transferRepo,
		notifier:     notifier,
		staleAfter:   staleAfter,
	}
}

// FindStale returns pending requests older than the configured age.
func (s *PendingTransferReminderService) FindStale(ctx context.Context, limit int) ([]*models.TransferRequest, error) {
	cutoff := time.Now().Add(-s.staleAfter)
	requests, err := s.transferRepo.ListStalePending(ctx, cutoff, limit)
	if err != nil {
		log.Printf("Failed to list stale pending transfers: %v", err)
		return nil, err
	}
	return requests, nil
}

// ScheduledReminderSweep is the periodic entry point: it re-notifies the
// destination owner of every stale pending request.
func (s *PendingTransferReminderService) ScheduledReminderSweep(ctx context.Context) error {
	log.Println("Starting pending transfer reminder sweep")

	requests, err := s.FindStale(ctx, 500)
	if err != nil {
		return err
	}

	reminded := 0
	for _, req := range requests {
		if err := s.notifier.TransferRequested(ctx, req); err != nil {
			log.Printf("Failed to remind owner %s about transfer %s: %v", req.DestOwnerID.String(), req.ID.String(), err)
			continue
		}
		reminded++
	}

	log.Printf("Pending transfer reminder sweep completed: %d of %d stale requests re-notified", reminded, len(requests))
	return nil
}
