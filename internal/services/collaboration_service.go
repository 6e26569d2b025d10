package services

import (
	"context"
	"fmt"
	"log"

	"stocklink/internal/common"
	"stocklink/internal/models"
	"stocklink/internal/repositories"

	"github.com/google/uuid"
)

// CollaborationService manages the social workflow around collaboration
// links. The ledger core only consumes IsAccepted; the request/respond
// flow exists so two owners can establish that link in the first place.
type CollaborationService interface {
	Request(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.CollaborationLink, error)
	Respond(ctx context.Context, ownerID, linkID uuid.UUID, accept bool) (*models.CollaborationLink, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]*models.CollaborationLink, error)
	IsAccepted(ctx context.Context, ownerA, ownerB uuid.UUID) (bool, error)
}

type collaborationService struct {
	collabRepo repositories.CollaborationRepository
	notifier   Notifier
}

func NewCollaborationService(collabRepo repositories.CollaborationRepository, notifier Notifier) CollaborationService {
	return &collaborationService{
		collabRepo: collabRepo,
		notifier:   notifier,
	}
}

func (s *collaborationService) Request(ctx context.Context, requesterID, recipientID uuid.UUID) (*models.CollaborationLink, error) {
	if requesterID == recipientID {
		return nil, fmt.Errorf("owner cannot collaborate with itself")
	}

	existing, err := s.collabRepo.GetBetween(ctx, requesterID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing link: %w", err)
	}
	if existing != nil && existing.Status != models.CollaborationRejected {
		return nil, fmt.Errorf("link between %s and %s already %s", requesterID, recipientID, existing.Status)
	}

	link := &models.CollaborationLink{
		RequesterID: requesterID,
		RecipientID: recipientID,
	}
	if err := s.collabRepo.Create(ctx, link); err != nil {
		return nil, err
	}

	if err := s.notifier.CollaborationRequested(ctx, link); err != nil {
		log.Printf("Failed to deliver collaboration notification: %v", err)
	}
	return link, nil
}

func (s *collaborationService) Respond(ctx context.Context, ownerID, linkID uuid.UUID, accept bool) (*models.CollaborationLink, error) {
	link, err := s.collabRepo.GetByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link.RecipientID != ownerID {
		return nil, fmt.Errorf("collaboration link %s: %w", linkID, common.ErrNotFound)
	}

	status := models.CollaborationRejected
	if accept {
		status = models.CollaborationAccepted
	}
	if err := s.collabRepo.UpdateStatus(ctx, linkID, status); err != nil {
		return nil, err
	}

	link.Status = status
	return link, nil
}

func (s *collaborationService) List(ctx context.Context, ownerID uuid.UUID) ([]*models.CollaborationLink, error) {
	return s.collabRepo.ListForOwner(ctx, ownerID)
}

func (s *collaborationService) IsAccepted(ctx context.Context, ownerA, ownerB uuid.UUID) (bool, error) {
	return s.collabRepo.IsAccepted(ctx, ownerA, ownerB)
}
