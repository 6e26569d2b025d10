package services

import (
	"context"
	"fmt"
	"log"
	"sort"

	"stocklink/internal/caching"
	"stocklink/internal/common"
	"stocklink/internal/models"
	"stocklink/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StocktakeService reconciles physical counts against the ledger. One
// submission is one atomic unit: either every discrepancy in it becomes
// an adjustment movement or none does. Lines not marked counted are left
// untouched, so partial counts are permitted; the result flags them.
type StocktakeService interface {
	Reconcile(ctx context.Context, ownerID uuid.UUID, submission *models.StocktakeSubmission, actor string) (*models.StocktakeResult, error)
}

type stocktakeService struct {
	runner       database.TxRunner
	ledger       LedgerService
	cacheService caching.CacheService
}

func NewStocktakeService(runner database.TxRunner, ledger LedgerService, cacheService caching.CacheService) StocktakeService {
	return &stocktakeService{
		runner:       runner,
		ledger:       ledger,
		cacheService: cacheService,
	}
}

func (s *stocktakeService) Reconcile(ctx context.Context, ownerID uuid.UUID, submission *models.StocktakeSubmission, actor string) (*models.StocktakeResult, error) {
	if submission == nil || len(submission.Lines) == 0 {
		return nil, fmt.Errorf("stocktake submission has no lines: %w", common.ErrInvalidQuantity)
	}
	for _, line := range submission.Lines {
		if line.PhysicalCount < 0 {
			return nil, fmt.Errorf("physical count of %d for %s: %w", line.PhysicalCount, line.SKU, common.ErrInvalidQuantity)
		}
	}

	correlationID := uuid.New()
	result := &models.StocktakeResult{
		TotalLines:    len(submission.Lines),
		CorrelationID: correlationID,
	}

	// Deterministic processing order keeps row locks ordered across
	// concurrent submissions touching the same records.
	lines := make([]models.StocktakeLine, len(submission.Lines))
	copy(lines, submission.Lines)
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].LocationID != lines[j].LocationID {
			return lines[i].LocationID.String() < lines[j].LocationID.String()
		}
		return lines[i].SKU < lines[j].SKU
	})

	err := s.runner.WithTx(ctx, func(tx pgx.Tx) error {
		result.Adjustments = result.Adjustments[:0]
		result.CountedLines = 0
		result.Adjusted = 0
		result.Unchanged = 0

		for _, line := range lines {
			if !line.Counted {
				continue
			}
			result.CountedLines++

			mutation, err := s.ledger.SetQuantityTx(ctx, tx, ownerID, line.LocationID, line.SKU, line.PhysicalCount, models.MutationMeta{
				Subtype:       models.SubtypeStocktake,
				Reason:        submission.Reason,
				DocumentRef:   submission.DocumentRef,
				CorrelationID: &correlationID,
				Actor:         actor,
			})
			if err != nil {
				return fmt.Errorf("line %s/%s: %w", line.LocationID, line.SKU, err)
			}

			if mutation.Movement == nil {
				result.Unchanged++
				continue
			}
			result.Adjusted++
			result.Adjustments = append(result.Adjustments, mutation)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Completion = float64(result.CountedLines) / float64(result.TotalLines) * 100
	result.Partial = result.CountedLines < result.TotalLines

	for _, mutation := range result.Adjustments {
		record := mutation.After
		if cacheErr := s.cacheService.DeleteStock(ctx, record.OwnerID, record.LocationID, record.SKU); cacheErr != nil {
			log.Printf("Failed to invalidate cache for stock %s/%s: %v", record.LocationID, record.SKU, cacheErr)
		}
	}

	return result, nil
}
