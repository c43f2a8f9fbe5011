package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/services"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEngagementService_AcceptAndLocateReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.directory.CreateProfile(ctx, "mentor-1", nil, 1)
	require.NoError(t, err)
	req, err := env.ledger.CreateRequest(ctx, "mentee-1", "mentor-1", strPtr("Looking for guidance"), nil)
	require.NoError(t, err)

	result, err := env.engagement.AcceptAndLocateReview(ctx, req.ID, "mentor-1")
	require.NoError(t, err)
	assert.True(t, result.Redirect)
	require.NotNil(t, result.Review)
	assert.Equal(t, "/reviews/"+result.Review.ID, result.RedirectTarget)
	assert.Equal(t, models.RequestAccepted, result.Request.Status)

	view, err := env.reviews.GetReview(ctx, "mentee-1", result.Review.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, view.Review.RequestID)
}

func TestEngagementService_PropagatesRespondErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.directory.CreateProfile(ctx, "mentor-1", nil, 1)
	require.NoError(t, err)
	env.acceptedReview(t, "mentee-1", "mentor-1")
	req, err := env.ledger.CreateRequest(ctx, "mentee-2", "mentor-1", nil, nil)
	require.NoError(t, err)

	_, err = env.engagement.AcceptAndLocateReview(ctx, req.ID, "mentor-1")
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

	_, err = env.engagement.AcceptAndLocateReview(ctx, req.ID, "mentee-2")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func acceptedResult() *models.RespondResult {
	now := time.Now()
	return &models.RespondResult{
		Request: &models.MentorshipRequest{
			ID:          "req-1",
			RequesterID: "mentee-1",
			MentorID:    "mentor-1",
			Status:      models.RequestAccepted,
			RespondedAt: &now,
		},
		Review: &models.ResumeReview{ID: "rev-1", RequestID: "req-1", Status: models.ReviewActive},
	}
}

func TestEngagementService_LookupMissStillAccepts(t *testing.T) {
	ledger := new(MockRequestLedger)
	svc := services.NewEngagementService(ledger, testConfig())
	ctx := context.Background()

	ledger.On("Respond", mock.Anything, "mentor-1", "req-1", true).Return(acceptedResult(), nil).Once()
	ledger.On("ListForMentee", mock.Anything, "mentee-1").Return([]*models.MentorshipDetails{
		{RequestID: "req-1", MentorID: "mentor-1", Status: models.RequestAccepted},
	}, nil)

	result, err := svc.AcceptAndLocateReview(ctx, "req-1", "mentor-1")
	require.NoError(t, err)
	assert.False(t, result.Redirect)
	assert.Empty(t, result.RedirectTarget)
	require.NotNil(t, result.Review)
	assert.Equal(t, "rev-1", result.Review.ID)

	// one attempt plus the configured retries
	ledger.AssertNumberOfCalls(t, "ListForMentee", 3)
}

func TestEngagementService_LookupConvergesAfterRetry(t *testing.T) {
	ledger := new(MockRequestLedger)
	svc := services.NewEngagementService(ledger, testConfig())
	ctx := context.Background()

	reviewID := "rev-1"
	active := models.ReviewActive

	ledger.On("Respond", mock.Anything, "mentor-1", "req-1", true).Return(acceptedResult(), nil).Once()
	ledger.On("ListForMentee", mock.Anything, "mentee-1").
		Return(nil, apperrors.UnavailableError("database", context.DeadlineExceeded)).Once()
	ledger.On("ListForMentee", mock.Anything, "mentee-1").Return([]*models.MentorshipDetails{
		{RequestID: "req-other", MentorID: "mentor-2", ResumeReviewID: strPtr("rev-other")},
		{RequestID: "req-1", MentorID: "mentor-1", ResumeReviewID: &reviewID, ReviewStatus: &active},
	}, nil).Once()

	result, err := svc.AcceptAndLocateReview(ctx, "req-1", "mentor-1")
	require.NoError(t, err)
	assert.True(t, result.Redirect)
	assert.Equal(t, "/reviews/rev-1", result.RedirectTarget)

	ledger.AssertExpectations(t)
}

func TestEngagementService_RespondFailureSkipsLookup(t *testing.T) {
	ledger := new(MockRequestLedger)
	svc := services.NewEngagementService(ledger, testConfig())

	ledger.On("Respond", mock.Anything, "mentor-1", "req-1", true).
		Return(nil, apperrors.InvalidStateError("mentorship request", "rejected")).Once()

	_, err := svc.AcceptAndLocateReview(context.Background(), "req-1", "mentor-1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	ledger.AssertNotCalled(t, "ListForMentee", mock.Anything, mock.Anything)
}
