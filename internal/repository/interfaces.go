package repository

import (
	"context"

	"github.com/getmentor/mentorship-api/internal/models"
)

// ProfileStore persists mentor profiles and derives their engagement count
type ProfileStore interface {
	// GetProfile returns a live (not deleted) profile or ErrNotFound
	GetProfile(ctx context.Context, mentorID string) (*models.MentorProfile, error)

	// CreateProfile inserts a profile, reviving a previously deleted one.
	// Returns ErrAlreadyExists when a live profile exists.
	CreateProfile(ctx context.Context, profile *models.MentorProfile) (*models.MentorProfile, error)

	// UpdateProfile applies a partial update to a live profile
	UpdateProfile(ctx context.Context, mentorID string, patch models.ProfilePatch) (*models.MentorProfile, error)

	// DeleteProfile hides the profile without touching requests or reviews
	DeleteProfile(ctx context.Context, mentorID string) error

	// CountActiveEngagements counts accepted requests whose review is still active
	CountActiveEngagements(ctx context.Context, mentorID string) (int, error)
}

// RequestStore is the mentorship request ledger
type RequestStore interface {
	// CreateRequest stores a pending request. Returns ErrAlreadyExists when the
	// pair already has a pending or accepted request.
	CreateRequest(ctx context.Context, request *models.MentorshipRequest) (*models.MentorshipRequest, error)

	GetRequest(ctx context.Context, requestID string) (*models.MentorshipRequest, error)

	// ListForMentee returns the mentee's requests joined with their reviews, newest first
	ListForMentee(ctx context.Context, menteeID string) ([]*models.MentorshipDetails, error)

	// ListForMentor returns requests addressed to the mentor, newest first
	ListForMentor(ctx context.Context, mentorID string) ([]*models.MentorshipRequest, error)

	// Respond moves a pending request to accepted or rejected. Acceptance checks
	// capacity and creates the review in the same unit of work.
	Respond(ctx context.Context, requestID string, accept bool) (*models.RespondResult, error)
}

// ReviewStore owns resume review state. Reviews are only created by RequestStore.Respond.
type ReviewStore interface {
	GetReview(ctx context.Context, reviewID string) (*models.ResumeReview, error)

	// GetReviewWithRequest returns the review and the request backing it
	GetReviewWithRequest(ctx context.Context, reviewID string) (*models.ResumeReview, *models.MentorshipRequest, error)

	// SetFileURL replaces the file reference of an active review
	SetFileURL(ctx context.Context, reviewID, fileURL string) (*models.ResumeReview, error)

	// SetFeedback stores feedback on an active review without changing its status
	SetFeedback(ctx context.Context, reviewID, feedback string) (*models.ResumeReview, error)

	// Transition moves an active review to a terminal status
	Transition(ctx context.Context, reviewID string, to models.ReviewStatus) (*models.ResumeReview, error)
}

// HealthChecker reports backend reachability
type HealthChecker interface {
	Ping(ctx context.Context) error
}
