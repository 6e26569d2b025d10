package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"stocklink/internal/models"
	"stocklink/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

type fakeTransferRepo struct {
	stale     []*models.TransferRequest
	listErr   error
	gotCutoff time.Time
}

func (f *fakeTransferRepo) WithTx(tx pgx.Tx) repositories.TransferRepository { return f }
func (f *fakeTransferRepo) Create(ctx context.Context, req *models.TransferRequest) error {
	return nil
}
func (f *fakeTransferRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error) {
	return nil, nil
}
func (f *fakeTransferRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.TransferRequest, error) {
	return nil, nil
}
func (f *fakeTransferRepo) Resolve(ctx context.Context, id uuid.UUID, status models.TransferStatus, resolvedBy string) error {
	return nil
}
func (f *fakeTransferRepo) ListPending(ctx context.Context, destOwnerID uuid.UUID) ([]*models.TransferRequest, error) {
	return nil, nil
}
func (f *fakeTransferRepo) ListSent(ctx context.Context, sourceOwnerID uuid.UUID) ([]*models.TransferRequest, error) {
	return nil, nil
}
func (f *fakeTransferRepo) ListResolved(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.TransferRequest, error) {
	return nil, nil
}
func (f *fakeTransferRepo) ListStalePending(ctx context.Context, before time.Time, limit int) ([]*models.TransferRequest, error) {
	f.gotCutoff = before
	return f.stale, f.listErr
}

type countingNotifier struct {
	requested int
	failFor   uuid.UUID
}

func (n *countingNotifier) TransferRequested(ctx context.Context, req *models.TransferRequest) error {
	if req.ID == n.failFor {
		return errors.New("inbox unavailable")
	}
	n.requested++
	return nil
}
func (n *countingNotifier) TransferResolved(ctx context.Context, req *models.TransferRequest) error {
	return nil
}
func (n *countingNotifier) CollaborationRequested(ctx context.Context, link *models.CollaborationLink) error {
	return nil
}

func staleRequest() *models.TransferRequest {
	return &models.TransferRequest{
		ID:          uuid.New(),
		DestOwnerID: uuid.New(),
		SKU:         "WIDGET-1",
		Quantity:    4,
		Status:      models.TransferPending,
		CreatedAt:   time.Now().Add(-72 * time.Hour),
	}
}

func TestReminderSweep_NotifiesEveryStaleRequest(t *testing.T) {
	repo := &fakeTransferRepo{stale: []*models.TransferRequest{staleRequest(), staleRequest()}}
	notifier := &countingNotifier{}
	svc := NewPendingTransferReminderService(repo, notifier, 48*time.Hour)

	err := svc.ScheduledReminderSweep(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, notifier.requested)

	// The cutoff reflects the configured stale age.
	assert.WithinDuration(t, time.Now().Add(-48*time.Hour), repo.gotCutoff, time.Minute)
}

func TestReminderSweep_ContinuesPastDeliveryFailures(t *testing.T) {
	failing := staleRequest()
	repo := &fakeTransferRepo{stale: []*models.TransferRequest{failing, staleRequest()}}
	notifier := &countingNotifier{failFor: failing.ID}
	svc := NewPendingTransferReminderService(repo, notifier, 48*time.Hour)

	err := svc.ScheduledReminderSweep(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, notifier.requested)
}

func TestReminderSweep_PropagatesListErrors(t *testing.T) {
	repo := &fakeTransferRepo{listErr: errors.New("connection refused")}
	svc := NewPendingTransferReminderService(repo, &countingNotifier{}, 0)

	err := svc.ScheduledReminderSweep(context.Background())
	assert.Error(t, err)
}
