package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// ReviewStatus represents the lifecycle state of a resume review
type ReviewStatus string

const (
	ReviewActive    ReviewStatus = "active"
	ReviewCompleted ReviewStatus = "completed"
	ReviewClosed    ReviewStatus = "closed"
)

// IsTerminalStatus returns true once the review is completed or closed
func (s ReviewStatus) IsTerminalStatus() bool {
	return s == ReviewCompleted || s == ReviewClosed
}

// CanTransitionTo checks if a status transition is valid
func (s ReviewStatus) CanTransitionTo(newStatus ReviewStatus) bool {
	return s == ReviewActive && newStatus.IsTerminalStatus()
}

// ResumeReview is the artifact spawned by an accepted request
type ResumeReview struct {
	ID        string       `json:"id"`
	RequestID string       `json:"requestId"`
	FileURL   *string      `json:"fileUrl"`
	Status    ReviewStatus `json:"status"`
	Feedback  *string      `json:"feedback"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ReviewView is a review together with the caller's role and allowed actions
type ReviewView struct {
	Review         *ResumeReview `json:"review"`
	Role           Role          `json:"role"`
	AllowedActions []Action      `json:"allowedActions"`
}

// SetReviewFileRequest carries a resume as base64 (or a data URI)
type SetReviewFileRequest struct {
	File        string `json:"file" binding:"required"`
	FileName    string `json:"fileName" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"required,max=255"`
}

// SetFeedbackRequest is the mentor's written feedback
type SetFeedbackRequest struct {
	Feedback string `json:"feedback" binding:"required,max=10000"`
}

// FileURLResponse is returned for file lookups; FileURL is null when nothing was uploaded
type FileURLResponse struct {
	FileURL *string `json:"fileUrl"`
}

// FileUpload is a resume file on its way to storage. Encoded carries the
// client's base64 or data URI payload and is only decoded once the uploader
// is authorized; Data, when non-nil, is taken as already decoded.
type FileUpload struct {
	FileName    string
	ContentType string
	Encoded     string
	Data        []byte
}

// ScanResumeReview scans a PostgreSQL row into a ResumeReview
// Expected columns: id, request_id, file_url, status, feedback, created_at, updated_at
func ScanResumeReview(row pgx.Row) (*ResumeReview, error) {
	var r ResumeReview
	err := row.Scan(
		&r.ID,
		&r.RequestID,
		&r.FileURL,
		&r.Status,
		&r.Feedback,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
