package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// RequestStatus represents the status of a mentorship request
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// LiveRequestStatuses block a second request for the same mentee/mentor pair
var LiveRequestStatuses = []RequestStatus{RequestPending, RequestAccepted}

// IsTerminalStatus returns true if the status is terminal (no further transitions allowed)
func (s RequestStatus) IsTerminalStatus() bool {
	return s == RequestAccepted || s == RequestRejected
}

// IsLive reports whether a request in this status occupies the mentee/mentor pair
func (s RequestStatus) IsLive() bool {
	return s == RequestPending || s == RequestAccepted
}

// CanTransitionTo checks if a status transition is valid
func (s RequestStatus) CanTransitionTo(newStatus RequestStatus) bool {
	if s != RequestPending {
		return false
	}
	return newStatus == RequestAccepted || newStatus == RequestRejected
}

// Decision returns the status a respond call moves a pending request to
func Decision(accept bool) RequestStatus {
	if accept {
		return RequestAccepted
	}
	return RequestRejected
}

// MentorshipRequest is a mentee's ask for mentorship. Requests are never deleted.
type MentorshipRequest struct {
	ID          string        `json:"id"`
	RequesterID string        `json:"requesterId"`
	MentorID    string        `json:"mentorId"`
	Status      RequestStatus `json:"status"`
	Motivation  *string       `json:"motivation"`
	Goals       []string      `json:"goals"`
	CreatedAt   time.Time     `json:"createdAt"`
	RespondedAt *time.Time    `json:"respondedAt"`
}

// CreateMentorshipRequest is the payload for asking a mentor for mentorship
type CreateMentorshipRequest struct {
	MentorID   string   `json:"mentorId" binding:"required,max=128"`
	Motivation string   `json:"motivation" binding:"max=2000"`
	Goals      []string `json:"goals" binding:"max=20,dive,min=1,max=500"`
}

// RespondPayload is the mentor's decision on a pending request
type RespondPayload struct {
	Accept *bool `json:"accept" binding:"required"`
}

// MentorshipRequestsResponse is the response for listing requests
type MentorshipRequestsResponse struct {
	Requests []*MentorshipRequest `json:"requests"`
	Total    int                  `json:"total"`
}

// RespondResult is the outcome of a respond call. Review is set only when the
// request was accepted; it was created in the same unit of work.
type RespondResult struct {
	Request *MentorshipRequest `json:"request"`
	Review  *ResumeReview      `json:"review,omitempty"`
}

// ScanMentorshipRequest scans a single PostgreSQL row into a MentorshipRequest
// Expected columns: id, requester_id, mentor_id, status, motivation, goals, created_at, responded_at
func ScanMentorshipRequest(row pgx.Row) (*MentorshipRequest, error) {
	var r MentorshipRequest
	err := row.Scan(
		&r.ID,
		&r.RequesterID,
		&r.MentorID,
		&r.Status,
		&r.Motivation,
		&r.Goals,
		&r.CreatedAt,
		&r.RespondedAt,
	)
	if err != nil {
		return nil, err
	}
	if r.Goals == nil {
		r.Goals = []string{}
	}
	return &r, nil
}

// ScanMentorshipRequests scans multiple rows into a slice of MentorshipRequest
func ScanMentorshipRequests(rows pgx.Rows) ([]*MentorshipRequest, error) {
	defer rows.Close()

	requests := []*MentorshipRequest{}
	for rows.Next() {
		request, err := ScanMentorshipRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}
