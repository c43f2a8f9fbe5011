package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/repository/memory"
	"github.com/getmentor/mentorship-api/internal/services"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pdfUpload(name string) models.FileUpload {
	return models.FileUpload{
		FileName:    name,
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4 " + name),
	}
}

func keyFor(reviewID string) interface{} {
	return mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "reviews/"+reviewID+"/")
	})
}

func TestReviewService_UploadReplaceThenClose(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	review := env.acceptedReview(t, "mentee-1", "mentor-1")

	// absent file reads are stable
	for i := 0; i < 2; i++ {
		url, found, err := env.reviews.GetFileURL(ctx, "mentee-1", review.ID)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, url)
	}

	env.storage.On("Upload", mock.Anything, keyFor(review.ID), pdfUpload("resume.pdf").Data, "application/pdf").
		Return("https://storage.example/resumes/v1.pdf", nil).Once()
	env.storage.On("Upload", mock.Anything, keyFor(review.ID), pdfUpload("resume_v2.pdf").Data, "application/pdf").
		Return("https://storage.example/resumes/v2.pdf", nil).Once()

	updated, err := env.reviews.SetFile(ctx, "mentee-1", review.ID, pdfUpload("resume.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example/resumes/v1.pdf", *updated.FileURL)

	url, found, err := env.reviews.GetFileURL(ctx, "mentor-1", review.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "https://storage.example/resumes/v1.pdf", url)

	_, err = env.reviews.SetFile(ctx, "mentee-1", review.ID, pdfUpload("resume_v2.pdf"))
	require.NoError(t, err)

	url, _, err = env.reviews.GetFileURL(ctx, "mentee-1", review.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example/resumes/v2.pdf", url)

	closed, err := env.reviews.Close(ctx, "mentor-1", review.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewClosed, closed.Status)

	_, err = env.reviews.SetFile(ctx, "mentee-1", review.ID, pdfUpload("resume_v3.pdf"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	// the file stays readable after the review ends
	url, found, err = env.reviews.GetFileURL(ctx, "mentee-1", review.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "https://storage.example/resumes/v2.pdf", url)

	env.storage.AssertExpectations(t)
	env.storage.AssertNumberOfCalls(t, "Upload", 2)
}

func TestReviewService_UnrelatedActorIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	review := env.acceptedReview(t, "mentee-1", "mentor-1")

	operations := map[string]func() error{
		"GetReview": func() error {
			_, err := env.reviews.GetReview(ctx, "stranger", review.ID)
			return err
		},
		"GetFileURL": func() error {
			_, _, err := env.reviews.GetFileURL(ctx, "stranger", review.ID)
			return err
		},
		"SetFile": func() error {
			_, err := env.reviews.SetFile(ctx, "stranger", review.ID, pdfUpload("cv.pdf"))
			return err
		},
		"SetFeedback": func() error {
			_, err := env.reviews.SetFeedback(ctx, "stranger", review.ID, "nice")
			return err
		},
		"SetFeedback with blank text": func() error {
			_, err := env.reviews.SetFeedback(ctx, "stranger", review.ID, "   ")
			return err
		},
		"SetFile with undecodable payload": func() error {
			_, err := env.reviews.SetFile(ctx, "stranger", review.ID, models.FileUpload{
				FileName: "cv.pdf", ContentType: "application/pdf", Encoded: "not base64!",
			})
			return err
		},
		"Complete": func() error {
			_, err := env.reviews.Complete(ctx, "stranger", review.ID)
			return err
		},
		"Close": func() error {
			_, err := env.reviews.Close(ctx, "stranger", review.ID)
			return err
		},
	}

	for name, op := range operations {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), apperrors.ErrForbidden)
		})
	}

	env.storage.AssertNotCalled(t, "Upload")
}

func TestReviewService_RolePermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	review := env.acceptedReview(t, "mentee-1", "mentor-1")

	_, err := env.reviews.SetFile(ctx, "mentor-1", review.ID, pdfUpload("cv.pdf"))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = env.reviews.SetFeedback(ctx, "mentee-1", review.ID, "self review")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = env.reviews.Complete(ctx, "mentee-1", review.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = env.reviews.Close(ctx, "mentee-1", review.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestReviewService_GetReview_AllowedActions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	review := env.acceptedReview(t, "mentee-1", "mentor-1")

	menteeView, err := env.reviews.GetReview(ctx, "mentee-1", review.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMentee, menteeView.Role)
	assert.ElementsMatch(t, []models.Action{models.ActionView, models.ActionViewFile, models.ActionUploadFile}, menteeView.AllowedActions)

	mentorView, err := env.reviews.GetReview(ctx, "mentor-1", review.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMentor, mentorView.Role)
	assert.Contains(t, mentorView.AllowedActions, models.ActionComplete)

	_, err = env.reviews.Complete(ctx, "mentor-1", review.ID)
	require.NoError(t, err)

	finished, err := env.reviews.GetReview(ctx, "mentor-1", review.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewCompleted, finished.Review.Status)
	assert.ElementsMatch(t, []models.Action{models.ActionView}, finished.AllowedActions)

	_, err = env.reviews.GetReview(ctx, "mentor-1", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReviewService_FeedbackDoesNotChangeStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	review := env.acceptedReview(t, "mentee-1", "mentor-1")

	updated, err := env.reviews.SetFeedback(ctx, "mentor-1", review.ID, "  Tighten the summary.  ")
	require.NoError(t, err)
	assert.Equal(t, "Tighten the summary.", *updated.Feedback)
	assert.Equal(t, models.ReviewActive, updated.Status)

	_, err = env.reviews.SetFeedback(ctx, "mentor-1", review.ID, "   ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = env.reviews.Complete(ctx, "mentor-1", review.ID)
	require.NoError(t, err)

	_, err = env.reviews.SetFeedback(ctx, "mentor-1", review.ID, "too late")
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestReviewService_TerminalTransitionsAreFinal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	review := env.acceptedReview(t, "mentee-1", "mentor-1")

	completed, err := env.reviews.Complete(ctx, "mentor-1", review.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewCompleted, completed.Status)

	_, err = env.reviews.Complete(ctx, "mentor-1", review.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	_, err = env.reviews.Close(ctx, "mentor-1", review.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	// the file link goes away with the rest of the active surface
	for _, actor := range []string{"mentee-1", "mentor-1"} {
		_, _, err = env.reviews.GetFileURL(ctx, actor, review.ID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidState, actor)
	}
	_, _, err = env.reviews.GetFileURL(ctx, "stranger", review.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestReviewService_SetFile_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	review := env.acceptedReview(t, "mentee-1", "mentor-1")

	tests := []struct {
		name string
		file models.FileUpload
	}{
		{
			name: "image content type",
			file: models.FileUpload{FileName: "cv.png", ContentType: "image/png", Data: []byte("png")},
		},
		{
			name: "empty file",
			file: models.FileUpload{FileName: "cv.pdf", ContentType: "application/pdf"},
		},
		{
			name: "undecodable payload",
			file: models.FileUpload{FileName: "cv.pdf", ContentType: "application/pdf", Encoded: "not base64!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.reviews.SetFile(ctx, "mentee-1", review.ID, tt.file)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}

	env.storage.AssertNotCalled(t, "Upload")
}

func TestReviewService_SetFile_StorageFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	review := env.acceptedReview(t, "mentee-1", "mentor-1")

	env.storage.On("Upload", mock.Anything, keyFor(review.ID), mock.Anything, "application/pdf").
		Return("", apperrors.UnavailableError("object storage", errors.New("connection reset"))).Once()

	_, err := env.reviews.SetFile(ctx, "mentee-1", review.ID, pdfUpload("cv.pdf"))
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)

	_, found, err := env.reviews.GetFileURL(ctx, "mentee-1", review.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReviewService_SetFile_NoStorageConfigured(t *testing.T) {
	store := memory.NewStore()
	cfg := testConfig()
	ledger := services.NewRequestLedgerService(store, store, nil, cfg)
	reviews := services.NewReviewService(store, services.NewRoleResolver(store), nil, nil, cfg)
	ctx := context.Background()

	_, err := store.CreateProfile(ctx, &models.MentorProfile{MentorID: "mentor-1", MaxMentees: 1})
	require.NoError(t, err)
	req, err := ledger.CreateRequest(ctx, "mentee-1", "mentor-1", nil, nil)
	require.NoError(t, err)
	res, err := ledger.Respond(ctx, "mentor-1", req.ID, true)
	require.NoError(t, err)

	_, err = reviews.SetFile(ctx, "mentee-1", res.Review.ID, pdfUpload("cv.pdf"))
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}
