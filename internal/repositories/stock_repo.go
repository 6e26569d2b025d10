package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stocklink/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type StockRepository interface {
	// WithTx returns a copy of the repository bound to tx.
	WithTx(tx pgx.Tx) StockRepository

	// Get returns nil, nil when no record exists for the key.
	Get(ctx context.Context, ownerID, locationID uuid.UUID, sku string) (*models.StockRecord, error)
	// GetForUpdate locks the row for the duration of the transaction.
	// Returns nil, nil when no record exists.
	GetForUpdate(ctx context.Context, ownerID, locationID uuid.UUID, sku string) (*models.StockRecord, error)
	Create(ctx context.Context, record *models.StockRecord) error
	UpdateQuantity(ctx context.Context, record *models.StockRecord) error
	ListByLocation(ctx context.Context, ownerID, locationID uuid.UUID, limit, offset int) ([]*models.StockRecord, error)
	ListLowStock(ctx context.Context, ownerID uuid.UUID) ([]*models.StockRecord, error)
	ListLowStockAll(ctx context.Context, limit int) ([]*models.StockRecord, error)
	Consolidated(ctx context.Context, ownerID uuid.UUID) ([]*models.ConsolidatedStock, error)
}

type stockRepo struct {
	db DBTX
}

func NewStockRepo(db DBTX) StockRepository {
	return &stockRepo{db: db}
}

func (r *stockRepo) WithTx(tx pgx.Tx) StockRepository {
	return &stockRepo{db: tx}
}

const stockColumns = `id, owner_id, location_id, sku, name, category, supplier, slot, quantity, min_threshold, sale_price, cost_price, last_updated`

func scanStock(row pgx.Row) (*models.StockRecord, error) {
	record := &models.StockRecord{}
	err := row.Scan(&record.ID, &record.OwnerID, &record.LocationID, &record.SKU,
		&record.Name, &record.Category, &record.Supplier, &record.Slot,
		&record.Quantity, &record.MinThreshold, &record.SalePrice, &record.CostPrice,
		&record.LastUpdated)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *stockRepo) Get(ctx context.Context, ownerID, locationID uuid.UUID, sku string) (*models.StockRecord, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_records
		WHERE owner_id = $1 AND location_id = $2 AND sku = $3
	`
	record, err := scanStock(r.db.QueryRow(ctx, query, ownerID, locationID, sku))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return record, err
}

func (r *stockRepo) GetForUpdate(ctx context.Context, ownerID, locationID uuid.UUID, sku string) (*models.StockRecord, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_records
		WHERE owner_id = $1 AND location_id = $2 AND sku = $3
		FOR UPDATE
	`
	record, err := scanStock(r.db.QueryRow(ctx, query, ownerID, locationID, sku))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return record, err
}

func (r *stockRepo) Create(ctx context.Context, record *models.StockRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.LastUpdated = time.Now()

	// The unique index on (owner_id, location_id, sku) is the uniqueness
	// invariant; a concurrent creation surfaces as a constraint violation
	// and the surrounding transaction retries.
	query := `
		INSERT INTO stock_records (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query, record.ID, record.OwnerID, record.LocationID,
		record.SKU, record.Name, record.Category, record.Supplier, record.Slot,
		record.Quantity, record.MinThreshold, record.SalePrice, record.CostPrice,
		record.LastUpdated)
	return err
}

func (r *stockRepo) UpdateQuantity(ctx context.Context, record *models.StockRecord) error {
	record.LastUpdated = time.Now()
	query := `
		UPDATE stock_records
		SET quantity = $1, last_updated = $2
		WHERE owner_id = $3 AND location_id = $4 AND sku = $5
	`
	tag, err := r.db.Exec(ctx, query, record.Quantity, record.LastUpdated,
		record.OwnerID, record.LocationID, record.SKU)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stock record %s/%s/%s disappeared during update",
			record.OwnerID, record.LocationID, record.SKU)
	}
	return nil
}

func (r *stockRepo) ListByLocation(ctx context.Context, ownerID, locationID uuid.UUID, limit, offset int) ([]*models.StockRecord, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_records
		WHERE owner_id = $1 AND location_id = $2
		ORDER BY name, sku
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, ownerID, locationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStock(rows)
}

func (r *stockRepo) ListLowStock(ctx context.Context, ownerID uuid.UUID) ([]*models.StockRecord, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_records
		WHERE owner_id = $1 AND min_threshold > 0 AND quantity <= min_threshold
		ORDER BY quantity ASC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStock(rows)
}

func (r *stockRepo) ListLowStockAll(ctx context.Context, limit int) ([]*models.StockRecord, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock_records
		WHERE min_threshold > 0 AND quantity <= min_threshold
		ORDER BY owner_id, quantity ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStock(rows)
}

// Consolidated groups quantities per item across all of an owner's
// locations. Name and category come from the most recently touched
// record of each SKU.
func (r *stockRepo) Consolidated(ctx context.Context, ownerID uuid.UUID) ([]*models.ConsolidatedStock, error) {
	query := `
		SELECT sku, name, category, location_id, quantity
		FROM stock_records
		WHERE owner_id = $1
		ORDER BY sku, last_updated DESC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.ConsolidatedStock
	var current *models.ConsolidatedStock
	for rows.Next() {
		var sku, name, category string
		var locationID uuid.UUID
		var quantity int
		if err := rows.Scan(&sku, &name, &category, &locationID, &quantity); err != nil {
			return nil, err
		}
		if current == nil || current.SKU != sku {
			current = &models.ConsolidatedStock{SKU: sku, Name: name, Category: category}
			result = append(result, current)
		}
		current.Total += quantity
		current.Locations = append(current.Locations, models.LocationQuantity{
			LocationID: locationID,
			Quantity:   quantity,
		})
	}
	return result, rows.Err()
}

func collectStock(rows pgx.Rows) ([]*models.StockRecord, error) {
	var records []*models.StockRecord
	for rows.Next() {
		record, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
