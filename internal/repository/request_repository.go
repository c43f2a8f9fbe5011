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

const requestColumns = `id, requester_id, mentor_id, status, motivation, goals, created_at, responded_at`

// RequestRepository is the PostgreSQL mentorship request ledger
type RequestRepository struct {
	pool    *pgxpool.Pool
	reviews *ReviewRepository
}

// NewRequestRepository creates a new request repository. Accepted requests get
// their review through reviews inside the accepting transaction.
func NewRequestRepository(pool *pgxpool.Pool, reviews *ReviewRepository) *RequestRepository {
	return &RequestRepository{pool: pool, reviews: reviews}
}

// CreateRequest inserts a pending request. The live pair index rejects duplicates.
func (r *RequestRepository) CreateRequest(ctx context.Context, request *models.MentorshipRequest) (*models.MentorshipRequest, error) {
	start := time.Now()
	goals := request.Goals
	if goals == nil {
		goals = []string{}
	}
	query := `
		INSERT INTO mentorship_requests (requester_id, mentor_id, status, motivation, goals)
		VALUES ($1, $2, 'pending', $3, $4)
		RETURNING ` + requestColumns

	created, err := models.ScanMentorshipRequest(r.pool.QueryRow(ctx, query,
		request.RequesterID, request.MentorID, request.Motivation, goals))
	metrics.ObserveDB("createRequest", start, err)
	if err != nil {
		return nil, translateError(err, "mentorship request")
	}
	return created, nil
}

// GetRequest fetches a single request by ID
func (r *RequestRepository) GetRequest(ctx context.Context, requestID string) (*models.MentorshipRequest, error) {
	start := time.Now()
	query := `SELECT ` + requestColumns + ` FROM mentorship_requests WHERE id = $1`

	request, err := models.ScanMentorshipRequest(r.pool.QueryRow(ctx, query, requestID))
	metrics.ObserveDB("getRequest", start, err)
	if err != nil {
		return nil, translateError(err, "mentorship request")
	}
	return request, nil
}

// ListForMentee returns the mentee's engagements
func (r *RequestRepository) ListForMentee(ctx context.Context, menteeID string) ([]*models.MentorshipDetails, error) {
	start := time.Now()
	query := `
		SELECT mr.id, mr.mentor_id, mr.status, mr.motivation, mr.goals, mr.created_at, mr.responded_at,
		       rr.id, rr.status
		FROM mentorship_requests mr
		LEFT JOIN resume_reviews rr ON rr.request_id = mr.id
		WHERE mr.requester_id = $1
		ORDER BY mr.created_at DESC, mr.id
	`

	rows, err := r.pool.Query(ctx, query, menteeID)
	if err != nil {
		metrics.ObserveDB("listForMentee", start, err)
		return nil, translateError(err, "mentorship request")
	}

	details, err := models.ScanMentorshipDetails(rows)
	metrics.ObserveDB("listForMentee", start, err)
	if err != nil {
		return nil, translateError(err, "mentorship request")
	}
	return details, nil
}

// ListForMentor returns requests addressed to the mentor
func (r *RequestRepository) ListForMentor(ctx context.Context, mentorID string) ([]*models.MentorshipRequest, error) {
	start := time.Now()
	query := `SELECT ` + requestColumns + ` FROM mentorship_requests WHERE mentor_id = $1 ORDER BY created_at DESC, id`

	rows, err := r.pool.Query(ctx, query, mentorID)
	if err != nil {
		metrics.ObserveDB("listForMentor", start, err)
		return nil, translateError(err, "mentorship request")
	}

	requests, err := models.ScanMentorshipRequests(rows)
	metrics.ObserveDB("listForMentor", start, err)
	if err != nil {
		return nil, translateError(err, "mentorship request")
	}
	return requests, nil
}

// Respond decides a pending request. The request row lock serializes concurrent
// responds; the profile row lock serializes capacity checks for one mentor.
func (r *RequestRepository) Respond(ctx context.Context, requestID string, accept bool) (*models.RespondResult, error) {
	start := time.Now()
	var result *models.RespondResult

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		request, err := models.ScanMentorshipRequest(tx.QueryRow(ctx,
			`SELECT `+requestColumns+` FROM mentorship_requests WHERE id = $1 FOR UPDATE`, requestID))
		if err != nil {
			return translateError(err, "mentorship request")
		}

		target := models.Decision(accept)
		if !request.Status.CanTransitionTo(target) {
			return apperrors.InvalidStateError("mentorship request", string(request.Status))
		}

		if accept {
			if err := lockAndCheckCapacity(ctx, tx, request.MentorID); err != nil {
				return err
			}
		}

		updated, err := models.ScanMentorshipRequest(tx.QueryRow(ctx, `
			UPDATE mentorship_requests
			SET status = $2, responded_at = NOW()
			WHERE id = $1
			RETURNING `+requestColumns, requestID, string(target)))
		if err != nil {
			return translateError(err, "mentorship request")
		}
		result = &models.RespondResult{Request: updated}

		if accept {
			review, err := r.reviews.createForAcceptedRequest(ctx, tx, updated.ID)
			if err != nil {
				return err
			}
			result.Review = review
		}
		return nil
	})

	metrics.ObserveDB("respondToRequest", start, err)
	if err != nil {
		return nil, translateError(err, "mentorship request")
	}
	return result, nil
}

// lockAndCheckCapacity locks the mentor's profile row and fails when the mentor is full
func lockAndCheckCapacity(ctx context.Context, tx pgx.Tx, mentorID string) error {
	var maxMentees int
	err := tx.QueryRow(ctx,
		`SELECT max_mentees FROM mentor_profiles WHERE mentor_id = $1 AND deleted_at IS NULL FOR UPDATE`,
		mentorID).Scan(&maxMentees)
	if err != nil {
		return translateError(err, "mentor profile")
	}

	current, err := countActiveEngagements(ctx, tx, mentorID)
	if err != nil {
		return translateError(err, "mentor profile")
	}
	if current >= maxMentees {
		return apperrors.CapacityExceededError(mentorID, current, maxMentees)
	}
	return nil
}
