package services_test

import (
	"context"

	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockFileStorage is a mock implementation of services.FileStorage
type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

// MockRequestLedger is a mock implementation of services.RequestLedgerInterface
type MockRequestLedger struct {
	mock.Mock
}

func (m *MockRequestLedger) CreateRequest(ctx context.Context, requesterID, mentorID string, motivation *string, goals []string) (*models.MentorshipRequest, error) {
	args := m.Called(ctx, requesterID, mentorID, motivation, goals)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorshipRequest), args.Error(1)
}

func (m *MockRequestLedger) GetRequest(ctx context.Context, actorID, requestID string) (*models.MentorshipRequest, error) {
	args := m.Called(ctx, actorID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorshipRequest), args.Error(1)
}

func (m *MockRequestLedger) ListForMentee(ctx context.Context, menteeID string) ([]*models.MentorshipDetails, error) {
	args := m.Called(ctx, menteeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MentorshipDetails), args.Error(1)
}

func (m *MockRequestLedger) ListForMentor(ctx context.Context, mentorID string) ([]*models.MentorshipRequest, error) {
	args := m.Called(ctx, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MentorshipRequest), args.Error(1)
}

func (m *MockRequestLedger) Respond(ctx context.Context, actorID, requestID string, accept bool) (*models.RespondResult, error) {
	args := m.Called(ctx, actorID, requestID, accept)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RespondResult), args.Error(1)
}
