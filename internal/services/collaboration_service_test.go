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

type CollaborationServiceTestSuite struct {
	suite.Suite
	collabs  *memCollabRepo
	notifier *recordingNotifier
	service  CollaborationService
	ownerA   uuid.UUID
	ownerB   uuid.UUID
	ctx      context.Context
}

func (s *CollaborationServiceTestSuite) SetupTest() {
	s.collabs = newMemCollabRepo()
	s.notifier = &recordingNotifier{}
	s.service = NewCollaborationService(s.collabs, s.notifier)
	s.ownerA = uuid.New()
	s.ownerB = uuid.New()
	s.ctx = context.Background()
}

func TestCollaborationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CollaborationServiceTestSuite))
}

func (s *CollaborationServiceTestSuite) TestRequest_CreatesPendingLink() {
	link, err := s.service.Request(s.ctx, s.ownerA, s.ownerB)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.CollaborationPending, link.Status)
	assert.Len(s.T(), s.notifier.collabs, 1)

	accepted, err := s.service.IsAccepted(s.ctx, s.ownerA, s.ownerB)
	assert.NoError(s.T(), err)
	assert.False(s.T(), accepted)
}

func (s *CollaborationServiceTestSuite) TestRequest_RejectsSelf() {
	_, err := s.service.Request(s.ctx, s.ownerA, s.ownerA)
	assert.Error(s.T(), err)
}

func (s *CollaborationServiceTestSuite) TestRequest_RejectsDuplicate() {
	_, err := s.service.Request(s.ctx, s.ownerA, s.ownerB)
	assert.NoError(s.T(), err)

	// A second request in either direction is refused while the first is
	// pending or accepted.
	_, err = s.service.Request(s.ctx, s.ownerB, s.ownerA)
	assert.Error(s.T(), err)
}

func (s *CollaborationServiceTestSuite) TestRespond_AcceptOpensTheGate() {
	link, err := s.service.Request(s.ctx, s.ownerA, s.ownerB)
	assert.NoError(s.T(), err)

	responded, err := s.service.Respond(s.ctx, s.ownerB, link.ID, true)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.CollaborationAccepted, responded.Status)

	accepted, err := s.service.IsAccepted(s.ctx, s.ownerA, s.ownerB)
	assert.NoError(s.T(), err)
	assert.True(s.T(), accepted)
}

func (s *CollaborationServiceTestSuite) TestRespond_OnlyRecipientMayRespond() {
	link, err := s.service.Request(s.ctx, s.ownerA, s.ownerB)
	assert.NoError(s.T(), err)

	_, err = s.service.Respond(s.ctx, s.ownerA, link.ID, true)
	assert.ErrorIs(s.T(), err, common.ErrNotFound)
}

func (s *CollaborationServiceTestSuite) TestRespond_SecondResponseFails() {
	link, err := s.service.Request(s.ctx, s.ownerA, s.ownerB)
	assert.NoError(s.T(), err)

	_, err = s.service.Respond(s.ctx, s.ownerB, link.ID, false)
	assert.NoError(s.T(), err)

	_, err = s.service.Respond(s.ctx, s.ownerB, link.ID, true)
	assert.ErrorIs(s.T(), err, common.ErrAlreadyResolved)
}
