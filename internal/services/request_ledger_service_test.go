package services_test

import (
	"context"
	"testing"

	"github.com/getmentor/mentorship-api/internal/models"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLedger_AcceptCreatesActiveReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.directory.CreateProfile(ctx, "mentor-x", []string{"resume"}, 2)
	require.NoError(t, err)

	req, err := env.ledger.CreateRequest(ctx, "mentee-1", "mentor-x", strPtr("Looking for guidance"), []string{"polish my resume"})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.Equal(t, "Looking for guidance", *req.Motivation)
	assert.Nil(t, req.RespondedAt)

	res, err := env.ledger.Respond(ctx, "mentor-x", req.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, res.Request.Status)
	assert.NotNil(t, res.Request.RespondedAt)
	require.NotNil(t, res.Review)
	assert.Equal(t, models.ReviewActive, res.Review.Status)
	assert.Nil(t, res.Review.FileURL)
	assert.Equal(t, req.ID, res.Review.RequestID)

	details, err := env.ledger.ListForMentee(ctx, "mentee-1")
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "mentor-x", details[0].MentorID)
	require.True(t, details[0].HasReview())
	assert.Equal(t, res.Review.ID, *details[0].ResumeReviewID)
	assert.Equal(t, models.ReviewActive, *details[0].ReviewStatus)
}

func TestRequestLedger_AcceptOverCapacity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.directory.CreateProfile(ctx, "mentor-1", nil, 1)
	require.NoError(t, err)
	first := env.acceptedReview(t, "mentee-1", "mentor-1")

	second, err := env.ledger.CreateRequest(ctx, "mentee-2", "mentor-1", nil, nil)
	require.NoError(t, err)

	_, err = env.ledger.Respond(ctx, "mentor-1", second.ID, true)
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

	stillPending, err := env.ledger.GetRequest(ctx, "mentor-1", second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, stillPending.Status)

	view, err := env.reviews.GetReview(ctx, "mentee-1", first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewActive, view.Review.Status)

	// rejecting is never capacity bound
	res, err := env.ledger.Respond(ctx, "mentor-1", second.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, res.Request.Status)
}

func TestRequestLedger_RejectCreatesNoReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.directory.CreateProfile(ctx, "mentor-1", nil, 1)
	require.NoError(t, err)
	req, err := env.ledger.CreateRequest(ctx, "mentee-1", "mentor-1", nil, nil)
	require.NoError(t, err)

	res, err := env.ledger.Respond(ctx, "mentor-1", req.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, res.Request.Status)
	assert.Nil(t, res.Review)

	details, err := env.ledger.ListForMentee(ctx, "mentee-1")
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.False(t, details[0].HasReview())

	_, err = env.ledger.Respond(ctx, "mentor-1", req.ID, true)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	_, err = env.ledger.Respond(ctx, "mentor-1", req.ID, false)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	// a rejected pair may ask again
	_, err = env.ledger.CreateRequest(ctx, "mentee-1", "mentor-1", nil, nil)
	assert.NoError(t, err)
}

func TestRequestLedger_CreateRequest_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.directory.CreateProfile(ctx, "mentor-1", nil, 1)
	require.NoError(t, err)
	_, err = env.directory.CreateProfile(ctx, "mentor-gone", nil, 1)
	require.NoError(t, err)
	require.NoError(t, env.directory.DeleteProfile(ctx, "mentor-gone"))

	_, err = env.ledger.CreateRequest(ctx, "mentee-1", "mentor-1", nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name      string
		requester string
		mentor    string
		want      error
	}{
		{name: "duplicate pending pair", requester: "mentee-1", mentor: "mentor-1", want: apperrors.ErrAlreadyExists},
		{name: "mentor without profile", requester: "mentee-1", mentor: "stranger", want: apperrors.ErrNotFound},
		{name: "deleted mentor profile", requester: "mentee-1", mentor: "mentor-gone", want: apperrors.ErrNotFound},
		{name: "self request", requester: "mentor-1", mentor: "mentor-1", want: apperrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ledger.CreateRequest(ctx, tt.requester, tt.mentor, nil, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRequestLedger_DuplicateWhileAccepted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.acceptedReview(t, "mentee-1", "mentor-1")

	_, err := env.ledger.CreateRequest(ctx, "mentee-1", "mentor-1", nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestRequestLedger_CreateRequest_CleansInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.directory.CreateProfile(ctx, "mentor-1", nil, 1)
	require.NoError(t, err)

	req, err := env.ledger.CreateRequest(ctx, "mentee-1", "mentor-1", strPtr("   "), []string{" first ", "", "second"})
	require.NoError(t, err)
	assert.Nil(t, req.Motivation)
	assert.Equal(t, []string{"first", "second"}, req.Goals)
}

func TestRequestLedger_AccessControl(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.directory.CreateProfile(ctx, "mentor-1", nil, 1)
	require.NoError(t, err)
	req, err := env.ledger.CreateRequest(ctx, "mentee-1", "mentor-1", nil, nil)
	require.NoError(t, err)

	_, err = env.ledger.GetRequest(ctx, "mentee-1", req.ID)
	assert.NoError(t, err)
	_, err = env.ledger.GetRequest(ctx, "mentor-1", req.ID)
	assert.NoError(t, err)
	_, err = env.ledger.GetRequest(ctx, "someone", req.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = env.ledger.GetRequest(ctx, "mentee-1", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = env.ledger.Respond(ctx, "mentee-1", req.ID, true)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = env.ledger.Respond(ctx, "someone", req.ID, false)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = env.ledger.Respond(ctx, "mentor-1", "missing", true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	stillPending, err := env.ledger.GetRequest(ctx, "mentor-1", req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, stillPending.Status)
}

func TestRequestLedger_ListForMentor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.directory.CreateProfile(ctx, "mentor-1", nil, 5)
	require.NoError(t, err)

	first, err := env.ledger.CreateRequest(ctx, "mentee-1", "mentor-1", nil, nil)
	require.NoError(t, err)
	second, err := env.ledger.CreateRequest(ctx, "mentee-2", "mentor-1", nil, nil)
	require.NoError(t, err)

	requests, err := env.ledger.ListForMentor(ctx, "mentor-1")
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, second.ID, requests[0].ID)
	assert.Equal(t, first.ID, requests[1].ID)

	empty, err := env.ledger.ListForMentor(ctx, "mentor-2")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
