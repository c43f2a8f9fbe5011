package services

import (
	"context"

	"github.com/getmentor/mentorship-api/internal/models"
)

// MentorDirectoryInterface defines mentor profile operations
type MentorDirectoryInterface interface {
	GetProfile(ctx context.Context, mentorID string) (*models.MentorProfile, bool)
	CreateProfile(ctx context.Context, requesterID string, expertiseTags []string, maxMentees int) (*models.MentorProfile, error)
	UpdateProfile(ctx context.Context, mentorID string, patch models.ProfilePatch) (*models.MentorProfile, error)
	DeleteProfile(ctx context.Context, mentorID string) error
	ComputeAvailability(ctx context.Context, mentorID string) (*models.Availability, error)
}

// RequestLedgerInterface defines the mentorship request workflow
type RequestLedgerInterface interface {
	CreateRequest(ctx context.Context, requesterID, mentorID string, motivation *string, goals []string) (*models.MentorshipRequest, error)
	GetRequest(ctx context.Context, actorID, requestID string) (*models.MentorshipRequest, error)
	ListForMentee(ctx context.Context, menteeID string) ([]*models.MentorshipDetails, error)
	ListForMentor(ctx context.Context, mentorID string) ([]*models.MentorshipRequest, error)
	Respond(ctx context.Context, actorID, requestID string, accept bool) (*models.RespondResult, error)
}

// ReviewServiceInterface defines resume review operations, each gated by the caller's role
type ReviewServiceInterface interface {
	GetReview(ctx context.Context, actorID, reviewID string) (*models.ReviewView, error)
	GetFileURL(ctx context.Context, actorID, reviewID string) (string, bool, error)
	SetFile(ctx context.Context, actorID, reviewID string, file models.FileUpload) (*models.ResumeReview, error)
	SetFeedback(ctx context.Context, actorID, reviewID, feedback string) (*models.ResumeReview, error)
	Complete(ctx context.Context, actorID, reviewID string) (*models.ResumeReview, error)
	Close(ctx context.Context, actorID, reviewID string) (*models.ResumeReview, error)
}

// EngagementServiceInterface defines the accept-then-navigate flow
type EngagementServiceInterface interface {
	AcceptAndLocateReview(ctx context.Context, requestID, mentorID string) (*models.AcceptResult, error)
}

// FileStorage stores uploaded resumes and returns their URL
type FileStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Ensure services implement their interfaces
var _ MentorDirectoryInterface = (*MentorDirectoryService)(nil)
var _ RequestLedgerInterface = (*RequestLedgerService)(nil)
var _ ReviewServiceInterface = (*ReviewService)(nil)
var _ EngagementServiceInterface = (*EngagementService)(nil)
