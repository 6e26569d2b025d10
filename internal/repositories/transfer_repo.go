package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stocklink/internal/common"
	"stocklink/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TransferRepository interface {
	// WithTx returns a copy of the repository bound to tx.
	WithTx(tx pgx.Tx) TransferRepository

	Create(ctx context.Context, req *models.TransferRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error)
	// GetForUpdate locks the request row so concurrent resolutions
	// serialize on it.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error)
	// Resolve transitions a pending request to a terminal status. The
	// WHERE status = 'pending' guard makes double resolution impossible
	// even without the row lock.
	Resolve(ctx context.Context, id uuid.UUID, status models.TransferStatus, resolvedBy string) error
	ListPending(ctx context.Context, destOwnerID uuid.UUID) ([]*models.TransferRequest, error)
	ListSent(ctx context.Context, sourceOwnerID uuid.UUID) ([]*models.TransferRequest, error)
	ListResolved(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.TransferRequest, error)
	ListStalePending(ctx context.Context, before time.Time, limit int) ([]*models.TransferRequest, error)
}

type transferRepo struct {
	db DBTX
}

func NewTransferRepo(db DBTX) TransferRepository {
	return &transferRepo{db: db}
}

func (r *transferRepo) WithTx(tx pgx.Tx) TransferRepository {
	return &transferRepo{db: tx}
}

const transferColumns = `id, source_owner_id, source_location_id, dest_owner_id, dest_location_id, sku, item_name, category, sale_price, cost_price, quantity, reason, status, origin_movement_id, created_at, resolved_at, resolved_by`

func scanTransfer(row pgx.Row) (*models.TransferRequest, error) {
	req := &models.TransferRequest{}
	err := row.Scan(&req.ID, &req.SourceOwnerID, &req.SourceLocationID,
		&req.DestOwnerID, &req.DestLocationID, &req.SKU, &req.ItemName,
		&req.Category, &req.SalePrice, &req.CostPrice, &req.Quantity,
		&req.Reason, &req.Status, &req.OriginMovementID, &req.CreatedAt,
		&req.ResolvedAt, &req.ResolvedBy)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *transferRepo) Create(ctx context.Context, req *models.TransferRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.Status = models.TransferPending
	req.CreatedAt = time.Now()

	query := `
		INSERT INTO transfer_requests (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.db.Exec(ctx, query, req.ID, req.SourceOwnerID, req.SourceLocationID,
		req.DestOwnerID, req.DestLocationID, req.SKU, req.ItemName, req.Category,
		req.SalePrice, req.CostPrice, req.Quantity, req.Reason, req.Status,
		req.OriginMovementID, req.CreatedAt, req.ResolvedAt, req.ResolvedBy)
	return err
}

func (r *transferRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error) {
	query := `SELECT ` + transferColumns + ` FROM transfer_requests WHERE id = $1`
	req, err := scanTransfer(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transfer request %s: %w", id, common.ErrNotFound)
	}
	return req, err
}

func (r *transferRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error) {
	query := `SELECT ` + transferColumns + ` FROM transfer_requests WHERE id = $1 FOR UPDATE`
	req, err := scanTransfer(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transfer request %s: %w", id, common.ErrNotFound)
	}
	return req, err
}

func (r *transferRepo) Resolve(ctx context.Context, id uuid.UUID, status models.TransferStatus, resolvedBy string) error {
	query := `
		UPDATE transfer_requests
		SET status = $1, resolved_at = $2, resolved_by = $3
		WHERE id = $4 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, status, time.Now(), resolvedBy, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transfer request %s: %w", id, common.ErrAlreadyResolved)
	}
	return nil
}

func (r *transferRepo) ListPending(ctx context.Context, destOwnerID uuid.UUID) ([]*models.TransferRequest, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfer_requests
		WHERE dest_owner_id = $1 AND status = 'pending'
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, destOwnerID)
}

func (r *transferRepo) ListSent(ctx context.Context, sourceOwnerID uuid.UUID) ([]*models.TransferRequest, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfer_requests
		WHERE source_owner_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, sourceOwnerID)
}

func (r *transferRepo) ListResolved(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.TransferRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + transferColumns + `
		FROM transfer_requests
		WHERE (source_owner_id = $1 OR dest_owner_id = $1) AND status <> 'pending'
		ORDER BY resolved_at DESC
		LIMIT $2
	`
	return r.list(ctx, query, ownerID, limit)
}

func (r *transferRepo) ListStalePending(ctx context.Context, before time.Time, limit int) ([]*models.TransferRequest, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + transferColumns + `
		FROM transfer_requests
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	return r.list(ctx, query, before, limit)
}

func (r *transferRepo) list(ctx context.Context, query string, args ...any) ([]*models.TransferRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*models.TransferRequest
	for rows.Next() {
		req, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
