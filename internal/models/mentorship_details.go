package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// MentorshipDetails is the mentee-facing projection of a request joined with its review
type MentorshipDetails struct {
	RequestID      string        `json:"requestId"`
	MentorID       string        `json:"mentorId"`
	Status         RequestStatus `json:"status"`
	Motivation     *string       `json:"motivation"`
	Goals          []string      `json:"goals"`
	CreatedAt      time.Time     `json:"createdAt"`
	RespondedAt    *time.Time    `json:"respondedAt"`
	ResumeReviewID *string       `json:"resumeReviewId"`
	ReviewStatus   *ReviewStatus `json:"reviewStatus"`
}

// HasReview reports whether the engagement has a resume review attached
func (d *MentorshipDetails) HasReview() bool {
	return d.ResumeReviewID != nil && *d.ResumeReviewID != ""
}

// NewMentorshipDetails builds the projection in memory
func NewMentorshipDetails(r *MentorshipRequest, review *ResumeReview) *MentorshipDetails {
	d := &MentorshipDetails{
		RequestID:   r.ID,
		MentorID:    r.MentorID,
		Status:      r.Status,
		Motivation:  r.Motivation,
		Goals:       r.Goals,
		CreatedAt:   r.CreatedAt,
		RespondedAt: r.RespondedAt,
	}
	if review != nil {
		id := review.ID
		status := review.Status
		d.ResumeReviewID = &id
		d.ReviewStatus = &status
	}
	return d
}

// MentorshipDetailsResponse is the response for a mentee's engagement list
type MentorshipDetailsResponse struct {
	Engagements []*MentorshipDetails `json:"engagements"`
	Total       int                  `json:"total"`
}

// ScanMentorshipDetails scans rows of requests LEFT JOIN resume_reviews
// Expected columns: id, mentor_id, status, motivation, goals, created_at, responded_at,
// review id, review status
func ScanMentorshipDetails(rows pgx.Rows) ([]*MentorshipDetails, error) {
	defer rows.Close()

	details := []*MentorshipDetails{}
	for rows.Next() {
		var d MentorshipDetails
		err := rows.Scan(
			&d.RequestID,
			&d.MentorID,
			&d.Status,
			&d.Motivation,
			&d.Goals,
			&d.CreatedAt,
			&d.RespondedAt,
			&d.ResumeReviewID,
			&d.ReviewStatus,
		)
		if err != nil {
			return nil, err
		}
		if d.Goals == nil {
			d.Goals = []string{}
		}
		details = append(details, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return details, nil
}
