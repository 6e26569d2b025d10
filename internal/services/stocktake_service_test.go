package services

import (
	"context"
	"testing"

	"stocklink/internal/common"
	"stocklink/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type StocktakeServiceTestSuite struct {
	suite.Suite
	stocks     *memStockRepo
	movements  *memMovementRepo
	ledger     LedgerService
	service    StocktakeService
	ownerID    uuid.UUID
	locationID uuid.UUID
	ctx        context.Context
}

func (s *StocktakeServiceTestSuite) SetupTest() {
	s.stocks = newMemStockRepo()
	s.movements = newMemMovementRepo()
	s.ledger = NewLedgerService(fakeRunner{}, s.stocks, s.movements, noopCache{})
	s.service = NewStocktakeService(fakeRunner{}, s.ledger, noopCache{})
	s.ownerID = uuid.New()
	s.locationID = uuid.New()
	s.ctx = context.Background()
}

func TestStocktakeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StocktakeServiceTestSuite))
}

func (s *StocktakeServiceTestSuite) seedStock(sku string, quantity int) {
	err := s.stocks.Create(s.ctx, &models.StockRecord{
		OwnerID:    s.ownerID,
		LocationID: s.locationID,
		SKU:        sku,
		Name:       "Test Item",
		Quantity:   quantity,
	})
	assert.NoError(s.T(), err)
}

func (s *StocktakeServiceTestSuite) quantityOf(sku string) int {
	record, err := s.stocks.Get(s.ctx, s.ownerID, s.locationID, sku)
	assert.NoError(s.T(), err)
	if record == nil {
		return 0
	}
	return record.Quantity
}

func (s *StocktakeServiceTestSuite) TestReconcile_EmptySubmission() {
	_, err := s.service.Reconcile(s.ctx, s.ownerID, &models.StocktakeSubmission{}, "alice")
	assert.ErrorIs(s.T(), err, common.ErrInvalidQuantity)
}

func (s *StocktakeServiceTestSuite) TestReconcile_NegativeCount() {
	_, err := s.service.Reconcile(s.ctx, s.ownerID, &models.StocktakeSubmission{
		Lines: []models.StocktakeLine{
			{LocationID: s.locationID, SKU: "WIDGET-1", PhysicalCount: -2, Counted: true},
		},
	}, "alice")
	assert.ErrorIs(s.T(), err, common.ErrInvalidQuantity)
}

func (s *StocktakeServiceTestSuite) TestReconcile_AdjustsOnlyDiscrepancies() {
	s.seedStock("WIDGET-1", 10)
	s.seedStock("WIDGET-2", 5)

	result, err := s.service.Reconcile(s.ctx, s.ownerID, &models.StocktakeSubmission{
		Lines: []models.StocktakeLine{
			{LocationID: s.locationID, SKU: "WIDGET-1", PhysicalCount: 7, Counted: true},
			{LocationID: s.locationID, SKU: "WIDGET-2", PhysicalCount: 5, Counted: true},
		},
		Reason: "annual count",
	}, "alice")
	assert.NoError(s.T(), err)

	assert.Equal(s.T(), 2, result.TotalLines)
	assert.Equal(s.T(), 2, result.CountedLines)
	assert.Equal(s.T(), 1, result.Adjusted)
	assert.Equal(s.T(), 1, result.Unchanged)
	assert.False(s.T(), result.Partial)
	assert.Equal(s.T(), float64(100), result.Completion)

	assert.Equal(s.T(), 7, s.quantityOf("WIDGET-1"))
	assert.Equal(s.T(), 5, s.quantityOf("WIDGET-2"))

	// One adjustment movement, carrying the submission's correlation id.
	assert.Len(s.T(), s.movements.entries, 1)
	movement := s.movements.entries[0]
	assert.Equal(s.T(), models.DirectionAdjustment, movement.Direction)
	assert.Equal(s.T(), 3, movement.Quantity)
	assert.Equal(s.T(), 10, movement.QuantityBefore)
	assert.Equal(s.T(), 7, movement.QuantityAfter)
	assert.Equal(s.T(), result.CorrelationID, *movement.CorrelationID)
	assert.Equal(s.T(), "annual count", movement.Reason)
}

func (s *StocktakeServiceTestSuite) TestReconcile_PartialCount() {
	s.seedStock("WIDGET-1", 10)
	s.seedStock("WIDGET-2", 5)

	result, err := s.service.Reconcile(s.ctx, s.ownerID, &models.StocktakeSubmission{
		Lines: []models.StocktakeLine{
			{LocationID: s.locationID, SKU: "WIDGET-1", PhysicalCount: 8, Counted: true},
			{LocationID: s.locationID, SKU: "WIDGET-2", Counted: false},
		},
	}, "alice")
	assert.NoError(s.T(), err)

	assert.True(s.T(), result.Partial)
	assert.Equal(s.T(), float64(50), result.Completion)
	assert.Equal(s.T(), 1, result.CountedLines)

	// The uncounted line is left alone.
	assert.Equal(s.T(), 8, s.quantityOf("WIDGET-1"))
	assert.Equal(s.T(), 5, s.quantityOf("WIDGET-2"))
	assert.Len(s.T(), s.movements.entries, 1)
}

func (s *StocktakeServiceTestSuite) TestReconcile_CreatesRecordForSurplusFind() {
	result, err := s.service.Reconcile(s.ctx, s.ownerID, &models.StocktakeSubmission{
		Lines: []models.StocktakeLine{
			{LocationID: s.locationID, SKU: "FOUND-1", PhysicalCount: 3, Counted: true},
		},
	}, "alice")
	assert.NoError(s.T(), err)

	assert.Equal(s.T(), 1, result.Adjusted)
	assert.Equal(s.T(), 3, s.quantityOf("FOUND-1"))
	assert.Len(s.T(), s.movements.entries, 1)
	assert.Equal(s.T(), 0, s.movements.entries[0].QuantityBefore)
	assert.Equal(s.T(), 3, s.movements.entries[0].QuantityAfter)
}

func (s *StocktakeServiceTestSuite) TestReconcile_ZeroCountOnMissingRecord() {
	result, err := s.service.Reconcile(s.ctx, s.ownerID, &models.StocktakeSubmission{
		Lines: []models.StocktakeLine{
			{LocationID: s.locationID, SKU: "GHOST-1", PhysicalCount: 0, Counted: true},
		},
	}, "alice")
	assert.NoError(s.T(), err)

	// No discrepancy: counts as unchanged, no record materializes.
	assert.Equal(s.T(), 1, result.Unchanged)
	assert.Equal(s.T(), 0, result.Adjusted)
	record, err := s.stocks.Get(s.ctx, s.ownerID, s.locationID, "GHOST-1")
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), record)
}
