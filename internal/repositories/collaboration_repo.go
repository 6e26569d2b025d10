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

type CollaborationRepository interface {
	Create(ctx context.Context, link *models.CollaborationLink) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CollaborationLink, error)
	// GetBetween finds the link for an owner pair regardless of which
	// side requested it. Returns nil, nil when no link exists.
	GetBetween(ctx context.Context, ownerA, ownerB uuid.UUID) (*models.CollaborationLink, error)
	// IsAccepted is the invariant gate for external transfers.
	IsAccepted(ctx context.Context, ownerA, ownerB uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.CollaborationStatus) error
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.CollaborationLink, error)
}

type collaborationRepo struct {
	db DBTX
}

func NewCollaborationRepo(db DBTX) CollaborationRepository {
	return &collaborationRepo{db: db}
}

const collaborationColumns = `id, requester_id, recipient_id, status, created_at, responded_at`

func scanLink(row pgx.Row) (*models.CollaborationLink, error) {
	link := &models.CollaborationLink{}
	err := row.Scan(&link.ID, &link.RequesterID, &link.RecipientID,
		&link.Status, &link.CreatedAt, &link.RespondedAt)
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (r *collaborationRepo) Create(ctx context.Context, link *models.CollaborationLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	link.Status = models.CollaborationPending
	link.CreatedAt = time.Now()

	query := `
		INSERT INTO collaboration_links (` + collaborationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, link.ID, link.RequesterID, link.RecipientID,
		link.Status, link.CreatedAt, link.RespondedAt)
	return err
}

func (r *collaborationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CollaborationLink, error) {
	query := `SELECT ` + collaborationColumns + ` FROM collaboration_links WHERE id = $1`
	link, err := scanLink(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("collaboration link %s: %w", id, common.ErrNotFound)
	}
	return link, err
}

func (r *collaborationRepo) GetBetween(ctx context.Context, ownerA, ownerB uuid.UUID) (*models.CollaborationLink, error) {
	query := `
		SELECT ` + collaborationColumns + `
		FROM collaboration_links
		WHERE (requester_id = $1 AND recipient_id = $2)
		   OR (requester_id = $2 AND recipient_id = $1)
		ORDER BY created_at DESC
		LIMIT 1
	`
	link, err := scanLink(r.db.QueryRow(ctx, query, ownerA, ownerB))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return link, err
}

func (r *collaborationRepo) IsAccepted(ctx context.Context, ownerA, ownerB uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM collaboration_links
			WHERE status = 'accepted'
			  AND ((requester_id = $1 AND recipient_id = $2)
			    OR (requester_id = $2 AND recipient_id = $1))
		)
	`
	var accepted bool
	if err := r.db.QueryRow(ctx, query, ownerA, ownerB).Scan(&accepted); err != nil {
		return false, err
	}
	return accepted, nil
}

func (r *collaborationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CollaborationStatus) error {
	query := `
		UPDATE collaboration_links
		SET status = $1, responded_at = $2
		WHERE id = $3 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("collaboration link %s: %w", id, common.ErrAlreadyResolved)
	}
	return nil
}

func (r *collaborationRepo) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.CollaborationLink, error) {
	query := `
		SELECT ` + collaborationColumns + `
		FROM collaboration_links
		WHERE requester_id = $1 OR recipient_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*models.CollaborationLink
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}
