package repositories

import (
	"context"
	"fmt"
	"time"

	"stocklink/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type MovementRepository interface {
	// WithTx returns a copy of the repository bound to tx.
	WithTx(tx pgx.Tx) MovementRepository

	// Append writes one immutable movement entry. There is no update or
	// delete; corrections are new entries.
	Append(ctx context.Context, entry *models.MovementEntry) error
	List(ctx context.Context, ownerID uuid.UUID, filter *models.MovementFilter) ([]*models.MovementEntry, error)
	ListByCorrelation(ctx context.Context, ownerID, correlationID uuid.UUID) ([]*models.MovementEntry, error)
}

type movementRepo struct {
	db DBTX
}

func NewMovementRepo(db DBTX) MovementRepository {
	return &movementRepo{db: db}
}

func (r *movementRepo) WithTx(tx pgx.Tx) MovementRepository {
	return &movementRepo{db: tx}
}

const movementColumns = `id, owner_id, location_id, sku, item_name, direction, subtype, quantity, quantity_before, quantity_after, reason, document_ref, correlation_id, actor, created_at`

func (r *movementRepo) Append(ctx context.Context, entry *models.MovementEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.OwnerID, entry.LocationID,
		entry.SKU, entry.ItemName, entry.Direction, entry.Subtype,
		entry.Quantity, entry.QuantityBefore, entry.QuantityAfter,
		entry.Reason, entry.DocumentRef, entry.CorrelationID, entry.Actor,
		entry.CreatedAt)
	return err
}

// List filters server-side on the (owner_id, location_id, created_at)
// index rather than scanning the whole collection.
func (r *movementRepo) List(ctx context.Context, ownerID uuid.UUID, filter *models.MovementFilter) ([]*models.MovementEntry, error) {
	if filter == nil {
		filter = &models.MovementFilter{}
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}

	queryBase := `
		SELECT ` + movementColumns + `
		FROM movements
		WHERE owner_id = $1
	`
	args := []any{ownerID}
	argCount := 1

	if filter.LocationID != nil {
		argCount++
		queryBase += fmt.Sprintf(` AND location_id = $%d`, argCount)
		args = append(args, *filter.LocationID)
	}
	if filter.Direction != nil {
		argCount++
		queryBase += fmt.Sprintf(` AND direction = $%d`, argCount)
		args = append(args, *filter.Direction)
	}
	if filter.SKU != nil {
		argCount++
		queryBase += fmt.Sprintf(` AND sku = $%d`, argCount)
		args = append(args, *filter.SKU)
	}
	if filter.From != nil {
		argCount++
		queryBase += fmt.Sprintf(` AND created_at >= $%d`, argCount)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		argCount++
		queryBase += fmt.Sprintf(` AND created_at <= $%d`, argCount)
		args = append(args, *filter.To)
	}

	argCount++
	queryBase += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argCount)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		argCount++
		queryBase += fmt.Sprintf(` OFFSET $%d`, argCount)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMovements(rows)
}

func (r *movementRepo) ListByCorrelation(ctx context.Context, ownerID, correlationID uuid.UUID) ([]*models.MovementEntry, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements
		WHERE owner_id = $1 AND correlation_id = $2
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, ownerID, correlationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]*models.MovementEntry, error) {
	var entries []*models.MovementEntry
	for rows.Next() {
		entry := &models.MovementEntry{}
		if err := rows.Scan(&entry.ID, &entry.OwnerID, &entry.LocationID,
			&entry.SKU, &entry.ItemName, &entry.Direction, &entry.Subtype,
			&entry.Quantity, &entry.QuantityBefore, &entry.QuantityAfter,
			&entry.Reason, &entry.DocumentRef, &entry.CorrelationID,
			&entry.Actor, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
