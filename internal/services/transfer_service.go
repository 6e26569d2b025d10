package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"stocklink/internal/caching"
	"stocklink/internal/common"
	"stocklink/internal/models"
	"stocklink/internal/repositories"
	"stocklink/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReserveRequest carries the parameters of an external transfer
// reservation initiated by the source owner.
type ReserveRequest struct {
	SourceOwnerID    uuid.UUID
	SourceLocationID uuid.UUID
	DestOwnerID      uuid.UUID
	DestLocationID   uuid.UUID
	SKU              string
	Quantity         int
	Reason           string
	Actor            string
}

// TransferService moves stock between locations. Internal transfers are
// one atomic debit+credit. External transfers follow the two-phase
// protocol: Reserve debits the source and parks the quantity on a
// pending TransferRequest; Approve credits the destination, Reject
// credits the source back. Each phase is one short transaction; nothing
// is locked while a request waits for a human decision.
type TransferService interface {
	TransferInternal(ctx context.Context, ownerID, sourceLocationID, destLocationID uuid.UUID, sku string, quantity int, reason, actor string) (*models.InternalTransferResult, error)

	Reserve(ctx context.Context, req *ReserveRequest) (*models.TransferRequest, error)
	Approve(ctx context.Context, destOwnerID, requestID uuid.UUID, actor string) (*models.TransferRequest, error)
	Reject(ctx context.Context, destOwnerID, requestID uuid.UUID, actor string) (*models.TransferRequest, error)

	GetRequest(ctx context.Context, ownerID, requestID uuid.UUID) (*models.TransferRequest, error)
	ListPending(ctx context.Context, ownerID uuid.UUID) ([]*models.TransferRequest, error)
	ListSent(ctx context.Context, ownerID uuid.UUID) ([]*models.TransferRequest, error)
	ListResolved(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.TransferRequest, error)
}

type transferService struct {
	runner       database.TxRunner
	ledger       LedgerService
	stockRepo    repositories.StockRepository
	transferRepo repositories.TransferRepository
	collabRepo   repositories.CollaborationRepository
	cacheService caching.CacheService
	notifier     Notifier
}

func NewTransferService(runner database.TxRunner, ledger LedgerService, stockRepo repositories.StockRepository, transferRepo repositories.TransferRepository, collabRepo repositories.CollaborationRepository, cacheService caching.CacheService, notifier Notifier) TransferService {
	return &transferService{
		runner:       runner,
		ledger:       ledger,
		stockRepo:    stockRepo,
		transferRepo: transferRepo,
		collabRepo:   collabRepo,
		cacheService: cacheService,
		notifier:     notifier,
	}
}

func (s *transferService) TransferInternal(ctx context.Context, ownerID, sourceLocationID, destLocationID uuid.UUID, sku string, quantity int, reason, actor string) (*models.InternalTransferResult, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("transfer of %d: %w", quantity, common.ErrInvalidQuantity)
	}
	if sourceLocationID == destLocationID {
		return nil, fmt.Errorf("source and destination location are the same: %w", common.ErrInvalidQuantity)
	}

	correlationID := uuid.New()
	result := &models.InternalTransferResult{CorrelationID: correlationID}

	err := s.runner.WithTx(ctx, func(tx pgx.Tx) error {
		stocks := s.stockRepo.WithTx(tx)

		// Lock both rows in deterministic key order before mutating, so
		// two opposing transfers cannot deadlock on each other.
		first, second := sourceLocationID, destLocationID
		if second.String() < first.String() {
			first, second = second, first
		}
		if _, err := stocks.GetForUpdate(ctx, ownerID, first, sku); err != nil {
			return fmt.Errorf("failed to lock stock row: %w", err)
		}
		if _, err := stocks.GetForUpdate(ctx, ownerID, second, sku); err != nil {
			return fmt.Errorf("failed to lock stock row: %w", err)
		}

		debit, err := s.ledger.ApplyDeltaTx(ctx, tx, ownerID, sourceLocationID, sku, models.DirectionOut, quantity, models.MutationMeta{
			Subtype:       models.SubtypeTransferOut,
			Reason:        reason,
			CorrelationID: &correlationID,
			Actor:         actor,
		})
		if err != nil {
			return err
		}

		// Catalog metadata for a newly created destination record is a
		// snapshot of the source record at transfer time; it is not
		// re-synced later.
		source := debit.Before
		credit, err := s.ledger.ApplyDeltaTx(ctx, tx, ownerID, destLocationID, sku, models.DirectionIn, quantity, models.MutationMeta{
			Name:          source.Name,
			Category:      source.Category,
			Supplier:      source.Supplier,
			SalePrice:     source.SalePrice,
			CostPrice:     source.CostPrice,
			MinThreshold:  source.MinThreshold,
			Subtype:       models.SubtypeTransferIn,
			Reason:        reason,
			CorrelationID: &correlationID,
			Actor:         actor,
		})
		if err != nil {
			return err
		}

		result.Debit = debit
		result.Credit = credit
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID, sourceLocationID, sku)
	s.invalidate(ctx, ownerID, destLocationID, sku)
	return result, nil
}

func (s *transferService) Reserve(ctx context.Context, req *ReserveRequest) (*models.TransferRequest, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("reservation of %d: %w", req.Quantity, common.ErrInvalidQuantity)
	}
	if req.SourceOwnerID == req.DestOwnerID {
		return nil, fmt.Errorf("source and destination owner are the same: use an internal transfer")
	}

	// The collaboration gate is checked before any debit. The link can
	// only be revoked by deleting it, which does not affect requests
	// already pending.
	accepted, err := s.collabRepo.IsAccepted(ctx, req.SourceOwnerID, req.DestOwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check collaboration: %w", err)
	}
	if !accepted {
		return nil, fmt.Errorf("owners %s and %s: %w", req.SourceOwnerID, req.DestOwnerID, common.ErrNoCollaboration)
	}

	var request *models.TransferRequest
	err = s.runner.WithTx(ctx, func(tx pgx.Tx) error {
		transfers := s.transferRepo.WithTx(tx)

		requestID := uuid.New()
		debit, err := s.ledger.ApplyDeltaTx(ctx, tx, req.SourceOwnerID, req.SourceLocationID, req.SKU, models.DirectionOut, req.Quantity, models.MutationMeta{
			Subtype:       models.SubtypeExternalReserve,
			Reason:        req.Reason,
			CorrelationID: &requestID,
			Actor:         req.Actor,
		})
		if err != nil {
			return err
		}

		// Item metadata is cached on the request so approval can create
		// the destination record without reaching into the source
		// owner's catalog.
		source := debit.Before
		request = &models.TransferRequest{
			ID:               requestID,
			SourceOwnerID:    req.SourceOwnerID,
			SourceLocationID: req.SourceLocationID,
			DestOwnerID:      req.DestOwnerID,
			DestLocationID:   req.DestLocationID,
			SKU:              req.SKU,
			ItemName:         source.Name,
			Category:         source.Category,
			SalePrice:        source.SalePrice,
			CostPrice:        source.CostPrice,
			Quantity:         req.Quantity,
			Reason:           req.Reason,
			OriginMovementID: debit.Movement.ID,
		}
		return transfers.Create(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, req.SourceOwnerID, req.SourceLocationID, req.SKU)
	s.notify(ctx, func() error { return s.notifier.TransferRequested(ctx, request) })
	return request, nil
}

func (s *transferService) Approve(ctx context.Context, destOwnerID, requestID uuid.UUID, actor string) (*models.TransferRequest, error) {
	var request *models.TransferRequest
	err := s.runner.WithTx(ctx, func(tx pgx.Tx) error {
		transfers := s.transferRepo.WithTx(tx)

		req, err := transfers.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.DestOwnerID != destOwnerID {
			return fmt.Errorf("transfer request %s: %w", requestID, common.ErrNotFound)
		}
		if req.Status != models.TransferPending {
			return fmt.Errorf("transfer request %s is %s: %w", requestID, req.Status, common.ErrAlreadyResolved)
		}

		// Only now does the reserved quantity become on-hand stock for
		// the destination owner.
		if _, err := s.ledger.ApplyDeltaTx(ctx, tx, req.DestOwnerID, req.DestLocationID, req.SKU, models.DirectionIn, req.Quantity, models.MutationMeta{
			Name:          req.ItemName,
			Category:      req.Category,
			SalePrice:     req.SalePrice,
			CostPrice:     req.CostPrice,
			Subtype:       models.SubtypeExternalReceive,
			Reason:        req.Reason,
			CorrelationID: &req.ID,
			Actor:         actor,
		}); err != nil {
			return err
		}

		if err := transfers.Resolve(ctx, req.ID, models.TransferApproved, actor); err != nil {
			return err
		}
		markResolved(req, models.TransferApproved, actor)
		request = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, request.DestOwnerID, request.DestLocationID, request.SKU)
	s.notify(ctx, func() error { return s.notifier.TransferResolved(ctx, request) })
	return request, nil
}

func (s *transferService) Reject(ctx context.Context, destOwnerID, requestID uuid.UUID, actor string) (*models.TransferRequest, error) {
	var request *models.TransferRequest
	err := s.runner.WithTx(ctx, func(tx pgx.Tx) error {
		transfers := s.transferRepo.WithTx(tx)

		req, err := transfers.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req.DestOwnerID != destOwnerID {
			return fmt.Errorf("transfer request %s: %w", requestID, common.ErrNotFound)
		}
		if req.Status != models.TransferPending {
			return fmt.Errorf("transfer request %s is %s: %w", requestID, req.Status, common.ErrAlreadyResolved)
		}

		// Reversal: the quantity goes back to exactly where it came
		// from. The destination is never touched.
		if _, err := s.ledger.ApplyDeltaTx(ctx, tx, req.SourceOwnerID, req.SourceLocationID, req.SKU, models.DirectionIn, req.Quantity, models.MutationMeta{
			Name:          req.ItemName,
			Category:      req.Category,
			SalePrice:     req.SalePrice,
			CostPrice:     req.CostPrice,
			Subtype:       models.SubtypeExternalReturn,
			Reason:        req.Reason,
			CorrelationID: &req.ID,
			Actor:         actor,
		}); err != nil {
			return err
		}

		if err := transfers.Resolve(ctx, req.ID, models.TransferRejected, actor); err != nil {
			return err
		}
		markResolved(req, models.TransferRejected, actor)
		request = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, request.SourceOwnerID, request.SourceLocationID, request.SKU)
	s.notify(ctx, func() error { return s.notifier.TransferResolved(ctx, request) })
	return request, nil
}

// markResolved mirrors onto the in-memory request what Resolve just
// wrote, so the caller gets the full resolution back without a re-read.
func markResolved(req *models.TransferRequest, status models.TransferStatus, actor string) {
	now := time.Now()
	req.Status = status
	req.ResolvedAt = &now
	req.ResolvedBy = &actor
}

func (s *transferService) GetRequest(ctx context.Context, ownerID, requestID uuid.UUID) (*models.TransferRequest, error) {
	req, err := s.transferRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.SourceOwnerID != ownerID && req.DestOwnerID != ownerID {
		return nil, fmt.Errorf("transfer request %s: %w", requestID, common.ErrNotFound)
	}
	return req, nil
}

func (s *transferService) ListPending(ctx context.Context, ownerID uuid.UUID) ([]*models.TransferRequest, error) {
	return s.transferRepo.ListPending(ctx, ownerID)
}

func (s *transferService) ListSent(ctx context.Context, ownerID uuid.UUID) ([]*models.TransferRequest, error) {
	return s.transferRepo.ListSent(ctx, ownerID)
}

func (s *transferService) ListResolved(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.TransferRequest, error) {
	return s.transferRepo.ListResolved(ctx, ownerID, limit)
}

func (s *transferService) invalidate(ctx context.Context, ownerID, locationID uuid.UUID, sku string) {
	if cacheErr := s.cacheService.DeleteStock(ctx, ownerID, locationID, sku); cacheErr != nil {
		log.Printf("Failed to invalidate cache for stock %s/%s: %v", locationID, sku, cacheErr)
	}
}

// notify delivers a notification without ever failing the operation
// that triggered it.
func (s *transferService) notify(ctx context.Context, fn func() error) {
	if err := fn(); err != nil {
		log.Printf("Failed to deliver notification: %v", err)
	}
}
