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

const stockCacheTTL = 5 * time.Minute

// LedgerService is the only writer of stock quantities. Every mutation
// locks the row, enforces the non-negative invariant and appends the
// documenting movement entry inside the same transaction.
//
// The Tx variants run inside a caller-owned transaction so transfer and
// stocktake operations can bundle several mutations into one atomic unit.
type LedgerService interface {
	ApplyDelta(ctx context.Context, ownerID, locationID uuid.UUID, sku string, direction models.MovementDirection, quantity int, meta models.MutationMeta) (*models.StockMutation, error)
	ApplyDeltaTx(ctx context.Context, tx pgx.Tx, ownerID, locationID uuid.UUID, sku string, direction models.MovementDirection, quantity int, meta models.MutationMeta) (*models.StockMutation, error)
	SetQuantity(ctx context.Context, ownerID, locationID uuid.UUID, sku string, physicalCount int, meta models.MutationMeta) (*models.StockMutation, error)
	SetQuantityTx(ctx context.Context, tx pgx.Tx, ownerID, locationID uuid.UUID, sku string, physicalCount int, meta models.MutationMeta) (*models.StockMutation, error)

	GetStock(ctx context.Context, ownerID, locationID uuid.UUID, sku string) (*models.StockRecord, error)
	ListStock(ctx context.Context, ownerID, locationID uuid.UUID, limit, offset int) ([]*models.StockRecord, error)
	ListLowStock(ctx context.Context, ownerID uuid.UUID) ([]*models.StockRecord, error)
	Consolidated(ctx context.Context, ownerID uuid.UUID) ([]*models.ConsolidatedStock, error)
	ListMovements(ctx context.Context, ownerID uuid.UUID, filter *models.MovementFilter) ([]*models.MovementEntry, error)
	ListMovementsByCorrelation(ctx context.Context, ownerID, correlationID uuid.UUID) ([]*models.MovementEntry, error)
}

type ledgerService struct {
	runner       database.TxRunner
	stockRepo    repositories.StockRepository
	movementRepo repositories.MovementRepository
	cacheService caching.CacheService
}

func NewLedgerService(runner database.TxRunner, stockRepo repositories.StockRepository, movementRepo repositories.MovementRepository, cacheService caching.CacheService) LedgerService {
	return &ledgerService{
		runner:       runner,
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		cacheService: cacheService,
	}
}

func (s *ledgerService) ApplyDelta(ctx context.Context, ownerID, locationID uuid.UUID, sku string, direction models.MovementDirection, quantity int, meta models.MutationMeta) (*models.StockMutation, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("delta of %d: %w", quantity, common.ErrInvalidQuantity)
	}

	var mutation *models.StockMutation
	err := s.runner.WithTx(ctx, func(tx pgx.Tx) error {
		var txErr error
		mutation, txErr = s.ApplyDeltaTx(ctx, tx, ownerID, locationID, sku, direction, quantity, meta)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID, locationID, sku)
	return mutation, nil
}

func (s *ledgerService) ApplyDeltaTx(ctx context.Context, tx pgx.Tx, ownerID, locationID uuid.UUID, sku string, direction models.MovementDirection, quantity int, meta models.MutationMeta) (*models.StockMutation, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("delta of %d: %w", quantity, common.ErrInvalidQuantity)
	}
	if direction != models.DirectionIn && direction != models.DirectionOut {
		return nil, fmt.Errorf("direction %q is not a delta direction: %w", direction, common.ErrInvalidQuantity)
	}

	stocks := s.stockRepo.WithTx(tx)
	movements := s.movementRepo.WithTx(tx)

	record, err := stocks.GetForUpdate(ctx, ownerID, locationID, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to read stock record: %w", err)
	}

	switch direction {
	case models.DirectionOut:
		if record == nil || record.Quantity < quantity {
			onHand := 0
			if record != nil {
				onHand = record.Quantity
			}
			return nil, fmt.Errorf("have %d, want %d: %w", onHand, quantity, common.ErrInsufficientStock)
		}

		before := *record
		record.Quantity -= quantity
		if err := stocks.UpdateQuantity(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to persist debit: %w", err)
		}

		movement := newMovement(record, direction, quantity, before.Quantity, record.Quantity, meta)
		if err := movements.Append(ctx, movement); err != nil {
			return nil, fmt.Errorf("failed to append movement: %w", err)
		}
		return &models.StockMutation{Before: &before, After: record, Movement: movement}, nil

	default: // DirectionIn
		if record == nil {
			record = &models.StockRecord{
				OwnerID:      ownerID,
				LocationID:   locationID,
				SKU:          sku,
				Name:         meta.Name,
				Category:     meta.Category,
				Supplier:     meta.Supplier,
				Slot:         meta.Slot,
				Quantity:     quantity,
				MinThreshold: meta.MinThreshold,
				SalePrice:    meta.SalePrice,
				CostPrice:    meta.CostPrice,
			}
			if err := stocks.Create(ctx, record); err != nil {
				return nil, fmt.Errorf("failed to create stock record: %w", err)
			}

			movement := newMovement(record, direction, quantity, 0, quantity, meta)
			if err := movements.Append(ctx, movement); err != nil {
				return nil, fmt.Errorf("failed to append movement: %w", err)
			}
			return &models.StockMutation{Before: nil, After: record, Movement: movement}, nil
		}

		before := *record
		record.Quantity += quantity
		if err := stocks.UpdateQuantity(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to persist credit: %w", err)
		}

		movement := newMovement(record, direction, quantity, before.Quantity, record.Quantity, meta)
		if err := movements.Append(ctx, movement); err != nil {
			return nil, fmt.Errorf("failed to append movement: %w", err)
		}
		return &models.StockMutation{Before: &before, After: record, Movement: movement}, nil
	}
}

func (s *ledgerService) SetQuantity(ctx context.Context, ownerID, locationID uuid.UUID, sku string, physicalCount int, meta models.MutationMeta) (*models.StockMutation, error) {
	var mutation *models.StockMutation
	err := s.runner.WithTx(ctx, func(tx pgx.Tx) error {
		var txErr error
		mutation, txErr = s.SetQuantityTx(ctx, tx, ownerID, locationID, sku, physicalCount, meta)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID, locationID, sku)
	return mutation, nil
}

// SetQuantityTx overwrites on-hand with physicalCount. This is the
// stocktake path: no InsufficientStock check applies because the count
// is authoritative, but the adjustment movement still records the
// before/after pair. A count equal to the ledger is a no-op.
func (s *ledgerService) SetQuantityTx(ctx context.Context, tx pgx.Tx, ownerID, locationID uuid.UUID, sku string, physicalCount int, meta models.MutationMeta) (*models.StockMutation, error) {
	if physicalCount < 0 {
		return nil, fmt.Errorf("physical count of %d: %w", physicalCount, common.ErrInvalidQuantity)
	}

	stocks := s.stockRepo.WithTx(tx)
	movements := s.movementRepo.WithTx(tx)

	record, err := stocks.GetForUpdate(ctx, ownerID, locationID, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to read stock record: %w", err)
	}

	if record == nil {
		if physicalCount == 0 {
			// Nothing on the shelf and nothing in the ledger: no
			// discrepancy, no record to create.
			return &models.StockMutation{}, nil
		}
		record = &models.StockRecord{
			OwnerID:      ownerID,
			LocationID:   locationID,
			SKU:          sku,
			Name:         meta.Name,
			Category:     meta.Category,
			Supplier:     meta.Supplier,
			Slot:         meta.Slot,
			Quantity:     physicalCount,
			MinThreshold: meta.MinThreshold,
			SalePrice:    meta.SalePrice,
			CostPrice:    meta.CostPrice,
		}
		if err := stocks.Create(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to create stock record: %w", err)
		}

		movement := newMovement(record, models.DirectionAdjustment, physicalCount, 0, physicalCount, meta)
		if err := movements.Append(ctx, movement); err != nil {
			return nil, fmt.Errorf("failed to append movement: %w", err)
		}
		return &models.StockMutation{Before: nil, After: record, Movement: movement}, nil
	}

	before := *record
	if record.Quantity == physicalCount {
		return &models.StockMutation{Before: &before, After: record}, nil
	}

	delta := physicalCount - record.Quantity
	record.Quantity = physicalCount
	if err := stocks.UpdateQuantity(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist adjustment: %w", err)
	}

	magnitude := delta
	if magnitude < 0 {
		magnitude = -magnitude
	}
	movement := newMovement(record, models.DirectionAdjustment, magnitude, before.Quantity, record.Quantity, meta)
	if err := movements.Append(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to append movement: %w", err)
	}
	return &models.StockMutation{Before: &before, After: record, Movement: movement}, nil
}

// newMovement is the movement recorder: a pure construction of the audit
// entry from the transition it documents. QuantityAfter always matches
// the persisted record.
func newMovement(record *models.StockRecord, direction models.MovementDirection, quantity, before, after int, meta models.MutationMeta) *models.MovementEntry {
	return &models.MovementEntry{
		ID:             uuid.New(),
		OwnerID:        record.OwnerID,
		LocationID:     record.LocationID,
		SKU:            record.SKU,
		ItemName:       record.Name,
		Direction:      direction,
		Subtype:        meta.Subtype,
		Quantity:       quantity,
		QuantityBefore: before,
		QuantityAfter:  after,
		Reason:         meta.Reason,
		DocumentRef:    meta.DocumentRef,
		CorrelationID:  meta.CorrelationID,
		Actor:          meta.Actor,
		CreatedAt:      time.Now(),
	}
}

func (s *ledgerService) GetStock(ctx context.Context, ownerID, locationID uuid.UUID, sku string) (*models.StockRecord, error) {
	if cached, err := s.cacheService.GetStock(ctx, ownerID, locationID, sku); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("Cache error for stock %s/%s: %v", locationID, sku, err)
	}

	record, err := s.stockRepo.Get(ctx, ownerID, locationID, sku)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("stock record %s/%s/%s: %w", ownerID, locationID, sku, common.ErrNotFound)
	}

	if cacheErr := s.cacheService.SetStock(ctx, record, stockCacheTTL); cacheErr != nil {
		log.Printf("Failed to cache stock %s/%s: %v", locationID, sku, cacheErr)
	}

	return record, nil
}

func (s *ledgerService) ListStock(ctx context.Context, ownerID, locationID uuid.UUID, limit, offset int) ([]*models.StockRecord, error) {
	return s.stockRepo.ListByLocation(ctx, ownerID, locationID, limit, offset)
}

func (s *ledgerService) ListLowStock(ctx context.Context, ownerID uuid.UUID) ([]*models.StockRecord, error) {
	return s.stockRepo.ListLowStock(ctx, ownerID)
}

func (s *ledgerService) Consolidated(ctx context.Context, ownerID uuid.UUID) ([]*models.ConsolidatedStock, error) {
	return s.stockRepo.Consolidated(ctx, ownerID)
}

func (s *ledgerService) ListMovements(ctx context.Context, ownerID uuid.UUID, filter *models.MovementFilter) ([]*models.MovementEntry, error) {
	return s.movementRepo.List(ctx, ownerID, filter)
}

func (s *ledgerService) ListMovementsByCorrelation(ctx context.Context, ownerID, correlationID uuid.UUID) ([]*models.MovementEntry, error) {
	return s.movementRepo.ListByCorrelation(ctx, ownerID, correlationID)
}

func (s *ledgerService) invalidate(ctx context.Context, ownerID, locationID uuid.UUID, sku string) {
	if cacheErr := s.cacheService.DeleteStock(ctx, ownerID, locationID, sku); cacheErr != nil {
		log.Printf("Failed to invalidate cache for stock %s/%s: %v", locationID, sku, cacheErr)
	}
}
