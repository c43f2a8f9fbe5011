package models

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/jackc/pgx/v5"
)

// MentorProfile is a user's opt-in to mentoring. The current mentee count is
// never stored; see Availability.
type MentorProfile struct {
	MentorID      string    `json:"mentorId"`
	ExpertiseTags []string  `json:"expertiseTags"`
	MaxMentees    int       `json:"maxMentees"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreateProfileRequest is the payload for opting in as a mentor
type CreateProfileRequest struct {
	ExpertiseTags []string `json:"expertiseTags" binding:"max=50,dive,min=1,max=64"`
	MaxMentees    int      `json:"maxMentees" binding:"required,min=1,max=100"`
}

// ProfilePatch is a partial profile update; nil fields are left untouched
type ProfilePatch struct {
	ExpertiseTags *[]string `json:"expertiseTags" binding:"omitempty,max=50"`
	MaxMentees    *int      `json:"maxMentees" binding:"omitempty,min=1,max=100"`
}

// IsEmpty reports whether the patch changes nothing
func (p ProfilePatch) IsEmpty() bool {
	return p.ExpertiseTags == nil && p.MaxMentees == nil
}

// Availability is derived from the ledger on every read
type Availability struct {
	MentorID           string `json:"mentorId"`
	Available          bool   `json:"available"`
	CurrentMenteeCount int    `json:"currentMenteeCount"`
	MaxMentees         int    `json:"maxMentees"`
}

// NewAvailability computes availability from the active engagement count
func NewAvailability(profile *MentorProfile, current int) *Availability {
	return &Availability{
		MentorID:           profile.MentorID,
		Available:          current < profile.MaxMentees,
		CurrentMenteeCount: current,
		MaxMentees:         profile.MaxMentees,
	}
}

// CapacityFloorError rejects a maxMentees below the mentor's active engagements
func CapacityFloorError(current int) error {
	return apperrors.InvalidInputError("maxMentees", fmt.Sprintf("must be at least the current mentee count (%d)", current))
}

// NormalizeTags trims tags and drops blanks and case-insensitive duplicates,
// keeping the first spelling and order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// ScanMentorProfile scans a PostgreSQL row into a MentorProfile
// Expected columns: mentor_id, expertise_tags, max_mentees, created_at, updated_at
func ScanMentorProfile(row pgx.Row) (*MentorProfile, error) {
	var p MentorProfile
	if err := row.Scan(&p.MentorID, &p.ExpertiseTags, &p.MaxMentees, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if p.ExpertiseTags == nil {
		p.ExpertiseTags = []string{}
	}
	return &p, nil
}
