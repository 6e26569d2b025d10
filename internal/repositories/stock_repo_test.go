package repositories

import (
	"context"
	"testing"
	"time"

	"stocklink/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type StockRepoTestSuite struct {
	suite.Suite
	mock       pgxmock.PgxPoolIface
	repo       StockRepository
	ownerID    uuid.UUID
	locationID uuid.UUID
	context    context.Context
}

func (suite *StockRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewStockRepo(mock)
	suite.ownerID = uuid.New()
	suite.locationID = uuid.New()
	suite.context = context.Background()
}

func (suite *StockRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestStockRepoTestSuite(t *testing.T) {
	suite.Run(t, new(StockRepoTestSuite))
}

func stockRows(record *models.StockRecord) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "owner_id", "location_id", "sku", "name", "category",
		"supplier", "slot", "quantity", "min_threshold", "sale_price", "cost_price", "last_updated"}).
		AddRow(record.ID, record.OwnerID, record.LocationID, record.SKU, record.Name, record.Category,
			record.Supplier, record.Slot, record.Quantity, record.MinThreshold, record.SalePrice,
			record.CostPrice, record.LastUpdated)
}

func (suite *StockRepoTestSuite) TestGet_ReturnsRecord() {
	record := &models.StockRecord{
		ID:          uuid.New(),
		OwnerID:     suite.ownerID,
		LocationID:  suite.locationID,
		SKU:         "WIDGET-1",
		Name:        "Widget",
		Quantity:    12,
		LastUpdated: time.Now(),
	}

	suite.mock.ExpectQuery(`SELECT (.+) FROM stock_records WHERE owner_id = \$1 AND location_id = \$2 AND sku = \$3`).
		WithArgs(suite.ownerID, suite.locationID, "WIDGET-1").
		WillReturnRows(stockRows(record))

	got, err := suite.repo.Get(suite.context, suite.ownerID, suite.locationID, "WIDGET-1")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), record.ID, got.ID)
	assert.Equal(suite.T(), 12, got.Quantity)
}

func (suite *StockRepoTestSuite) TestGet_NoRowsMeansNilRecord() {
	suite.mock.ExpectQuery(`SELECT (.+) FROM stock_records`).
		WithArgs(suite.ownerID, suite.locationID, "MISSING-1").
		WillReturnError(pgx.ErrNoRows)

	got, err := suite.repo.Get(suite.context, suite.ownerID, suite.locationID, "MISSING-1")
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), got)
}

func (suite *StockRepoTestSuite) TestGetForUpdate_LocksRow() {
	record := &models.StockRecord{
		ID:          uuid.New(),
		OwnerID:     suite.ownerID,
		LocationID:  suite.locationID,
		SKU:         "WIDGET-1",
		Quantity:    3,
		LastUpdated: time.Now(),
	}

	suite.mock.ExpectQuery(`SELECT (.+) FROM stock_records WHERE owner_id = \$1 AND location_id = \$2 AND sku = \$3 FOR UPDATE`).
		WithArgs(suite.ownerID, suite.locationID, "WIDGET-1").
		WillReturnRows(stockRows(record))

	got, err := suite.repo.GetForUpdate(suite.context, suite.ownerID, suite.locationID, "WIDGET-1")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, got.Quantity)
}

func (suite *StockRepoTestSuite) TestCreate_AssignsID() {
	record := &models.StockRecord{
		OwnerID:    suite.ownerID,
		LocationID: suite.locationID,
		SKU:        "WIDGET-1",
		Name:       "Widget",
		Quantity:   5,
	}

	suite.mock.ExpectExec(`INSERT INTO stock_records`).
		WithArgs(pgxmock.AnyArg(), record.OwnerID, record.LocationID, record.SKU,
			record.Name, record.Category, record.Supplier, record.Slot,
			record.Quantity, record.MinThreshold, record.SalePrice, record.CostPrice,
			pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, record)
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, record.ID)
}

func (suite *StockRepoTestSuite) TestUpdateQuantity_Success() {
	record := &models.StockRecord{
		OwnerID:    suite.ownerID,
		LocationID: suite.locationID,
		SKU:        "WIDGET-1",
		Quantity:   8,
	}

	suite.mock.ExpectExec(`UPDATE stock_records`).
		WithArgs(record.Quantity, pgxmock.AnyArg(), record.OwnerID, record.LocationID, record.SKU).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateQuantity(suite.context, record)
	assert.NoError(suite.T(), err)
}

func (suite *StockRepoTestSuite) TestUpdateQuantity_MissingRowFails() {
	record := &models.StockRecord{
		OwnerID:    suite.ownerID,
		LocationID: suite.locationID,
		SKU:        "WIDGET-1",
		Quantity:   8,
	}

	suite.mock.ExpectExec(`UPDATE stock_records`).
		WithArgs(record.Quantity, pgxmock.AnyArg(), record.OwnerID, record.LocationID, record.SKU).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.UpdateQuantity(suite.context, record)
	assert.Error(suite.T(), err)
}

func (suite *StockRepoTestSuite) TestConsolidated_GroupsBySKU() {
	locationB := uuid.New()
	rows := pgxmock.NewRows([]string{"sku", "name", "category", "location_id", "quantity"}).
		AddRow("WIDGET-1", "Widget", "widgets", suite.locationID, 5).
		AddRow("WIDGET-1", "Widget", "widgets", locationB, 3).
		AddRow("WIDGET-2", "Other", "widgets", suite.locationID, 2)

	suite.mock.ExpectQuery(`SELECT sku, name, category, location_id, quantity`).
		WithArgs(suite.ownerID).
		WillReturnRows(rows)

	result, err := suite.repo.Consolidated(suite.context, suite.ownerID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 2)
	assert.Equal(suite.T(), 8, result[0].Total)
	assert.Len(suite.T(), result[0].Locations, 2)
	assert.Equal(suite.T(), 2, result[1].Total)
}
