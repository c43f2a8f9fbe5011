package repository

import (
	"context"
	"time"

	"github.com/getmentor/mentorship-api/internal/models"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reviewColumns = `id, request_id, file_url, status, feedback, created_at, updated_at`

// ReviewRepository handles resume review data access
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// createForAcceptedRequest inserts the review for a request accepted in tx.
// A second review for the same request violates the unique request_id.
func (r *ReviewRepository) createForAcceptedRequest(ctx context.Context, tx pgx.Tx, requestID string) (*models.ResumeReview, error) {
	review, err := models.ScanResumeReview(tx.QueryRow(ctx, `
		INSERT INTO resume_reviews (request_id, status)
		VALUES ($1, 'active')
		RETURNING `+reviewColumns, requestID))
	if err != nil {
		return nil, translateError(err, "resume review")
	}
	return review, nil
}

// GetReview fetches a review by ID
func (r *ReviewRepository) GetReview(ctx context.Context, reviewID string) (*models.ResumeReview, error) {
	start := time.Now()
	review, err := models.ScanResumeReview(r.pool.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM resume_reviews WHERE id = $1`, reviewID))
	metrics.ObserveDB("getReview", start, err)
	if err != nil {
		return nil, translateError(err, "resume review")
	}
	return review, nil
}

// GetReviewWithRequest fetches a review and its backing request in one round trip
func (r *ReviewRepository) GetReviewWithRequest(ctx context.Context, reviewID string) (*models.ResumeReview, *models.MentorshipRequest, error) {
	start := time.Now()
	query := `
		SELECT rr.id, rr.request_id, rr.file_url, rr.status, rr.feedback, rr.created_at, rr.updated_at,
		       mr.id, mr.requester_id, mr.mentor_id, mr.status, mr.motivation, mr.goals, mr.created_at, mr.responded_at
		FROM resume_reviews rr
		JOIN mentorship_requests mr ON mr.id = rr.request_id
		WHERE rr.id = $1
	`

	var review models.ResumeReview
	var request models.MentorshipRequest
	err := r.pool.QueryRow(ctx, query, reviewID).Scan(
		&review.ID, &review.RequestID, &review.FileURL, &review.Status, &review.Feedback, &review.CreatedAt, &review.UpdatedAt,
		&request.ID, &request.RequesterID, &request.MentorID, &request.Status, &request.Motivation, &request.Goals,
		&request.CreatedAt, &request.RespondedAt,
	)
	metrics.ObserveDB("getReviewWithRequest", start, err)
	if err != nil {
		return nil, nil, translateError(err, "resume review")
	}
	if request.Goals == nil {
		request.Goals = []string{}
	}
	return &review, &request, nil
}

// SetFileURL replaces the file of an active review (last write wins)
func (r *ReviewRepository) SetFileURL(ctx context.Context, reviewID, fileURL string) (*models.ResumeReview, error) {
	return r.updateActive(ctx, "setReviewFile", reviewID,
		`UPDATE resume_reviews SET file_url = $2, updated_at = NOW()
		 WHERE id = $1 AND status = 'active' RETURNING `+reviewColumns, fileURL)
}

// SetFeedback stores feedback on an active review; the status is left unchanged
func (r *ReviewRepository) SetFeedback(ctx context.Context, reviewID, feedback string) (*models.ResumeReview, error) {
	return r.updateActive(ctx, "setReviewFeedback", reviewID,
		`UPDATE resume_reviews SET feedback = $2, updated_at = NOW()
		 WHERE id = $1 AND status = 'active' RETURNING `+reviewColumns, feedback)
}

// Transition moves an active review to completed or closed
func (r *ReviewRepository) Transition(ctx context.Context, reviewID string, to models.ReviewStatus) (*models.ResumeReview, error) {
	if !models.ReviewActive.CanTransitionTo(to) {
		return nil, apperrors.InvalidInputError("status", string(to)+" is not a terminal review status")
	}
	return r.updateActive(ctx, "transitionReview", reviewID,
		`UPDATE resume_reviews SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status = 'active' RETURNING `+reviewColumns, string(to))
}

// updateActive runs a guarded UPDATE. When no row matches, it tells a missing
// review (ErrNotFound) apart from one that is no longer active (ErrInvalidState).
func (r *ReviewRepository) updateActive(ctx context.Context, operation, reviewID, query string, value any) (*models.ResumeReview, error) {
	start := time.Now()
	review, err := models.ScanResumeReview(r.pool.QueryRow(ctx, query, reviewID, value))
	metrics.ObserveDB(operation, start, err)
	if err == nil {
		return review, nil
	}
	if !apperrors.Is(err, pgx.ErrNoRows) {
		return nil, translateError(err, "resume review")
	}

	current, getErr := r.GetReview(ctx, reviewID)
	if getErr != nil {
		return nil, getErr
	}
	return nil, apperrors.InvalidStateError("resume review", string(current.Status))
}
