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

const profileColumns = `mentor_id, expertise_tags, max_mentees, created_at, updated_at`

// activeEngagementsQuery counts accepted requests whose review has not finished.
// Completed and closed reviews release the mentee slot.
const activeEngagementsQuery = `
	SELECT COUNT(*)
	FROM mentorship_requests mr
	JOIN resume_reviews rr ON rr.request_id = mr.id
	WHERE mr.mentor_id = $1
	  AND mr.status = 'accepted'
	  AND rr.status = 'active'
`

// ProfileRepository handles mentor profile data access
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// GetProfile returns a live profile
func (r *ProfileRepository) GetProfile(ctx context.Context, mentorID string) (*models.MentorProfile, error) {
	start := time.Now()
	query := `SELECT ` + profileColumns + ` FROM mentor_profiles WHERE mentor_id = $1 AND deleted_at IS NULL`

	profile, err := models.ScanMentorProfile(r.pool.QueryRow(ctx, query, mentorID))
	metrics.ObserveDB("getProfile", start, err)
	if err != nil {
		return nil, translateError(err, "mentor profile")
	}
	return profile, nil
}

// CreateProfile inserts a profile or revives a soft-deleted one
func (r *ProfileRepository) CreateProfile(ctx context.Context, profile *models.MentorProfile) (*models.MentorProfile, error) {
	start := time.Now()
	// The WHERE on the conflict branch only lets a deleted row be revived;
	// a live row yields no RETURNING row.
	query := `
		INSERT INTO mentor_profiles (mentor_id, expertise_tags, max_mentees)
		VALUES ($1, $2, $3)
		ON CONFLICT (mentor_id) DO UPDATE
		SET expertise_tags = EXCLUDED.expertise_tags,
		    max_mentees = EXCLUDED.max_mentees,
		    created_at = NOW(),
		    updated_at = NOW(),
		    deleted_at = NULL
		WHERE mentor_profiles.deleted_at IS NOT NULL
		RETURNING ` + profileColumns

	created, err := models.ScanMentorProfile(r.pool.QueryRow(ctx, query,
		profile.MentorID, profile.ExpertiseTags, profile.MaxMentees))
	metrics.ObserveDB("createProfile", start, err)
	if err != nil {
		if apperrors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.AlreadyExistsError("mentor profile")
		}
		return nil, translateError(err, "mentor profile")
	}
	return created, nil
}

// UpdateProfile applies a partial update
func (r *ProfileRepository) UpdateProfile(ctx context.Context, mentorID string, patch models.ProfilePatch) (*models.MentorProfile, error) {
	start := time.Now()
	var tags []string
	if patch.ExpertiseTags != nil {
		tags = *patch.ExpertiseTags
		if tags == nil {
			tags = []string{}
		}
	}
	query := `
		UPDATE mentor_profiles
		SET expertise_tags = COALESCE($2, expertise_tags),
		    max_mentees = COALESCE($3, max_mentees),
		    updated_at = NOW()
		WHERE mentor_id = $1 AND deleted_at IS NULL
		RETURNING ` + profileColumns

	var updated *models.MentorProfile
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		// same row lock Respond takes, so a concurrent accept cannot slip past the check
		if patch.MaxMentees != nil {
			if err := checkCapacityFloor(ctx, tx, mentorID, *patch.MaxMentees); err != nil {
				return err
			}
		}

		var err error
		updated, err = models.ScanMentorProfile(tx.QueryRow(ctx, query, mentorID, tags, patch.MaxMentees))
		return err
	})
	metrics.ObserveDB("updateProfile", start, err)
	if err != nil {
		return nil, translateError(err, "mentor profile")
	}
	return updated, nil
}

// checkCapacityFloor locks the live profile and rejects a maxMentees below the active engagement count
func checkCapacityFloor(ctx context.Context, tx pgx.Tx, mentorID string, maxMentees int) error {
	var locked string
	err := tx.QueryRow(ctx,
		`SELECT mentor_id FROM mentor_profiles WHERE mentor_id = $1 AND deleted_at IS NULL FOR UPDATE`,
		mentorID).Scan(&locked)
	if err != nil {
		return translateError(err, "mentor profile")
	}

	current, err := countActiveEngagements(ctx, tx, mentorID)
	if err != nil {
		return translateError(err, "mentor profile")
	}
	if maxMentees < current {
		return models.CapacityFloorError(current)
	}
	return nil
}

// DeleteProfile soft-deletes a live profile
func (r *ProfileRepository) DeleteProfile(ctx context.Context, mentorID string) error {
	start := time.Now()
	tag, err := r.pool.Exec(ctx,
		`UPDATE mentor_profiles SET deleted_at = NOW(), updated_at = NOW() WHERE mentor_id = $1 AND deleted_at IS NULL`,
		mentorID)
	metrics.ObserveDB("deleteProfile", start, err)
	if err != nil {
		return translateError(err, "mentor profile")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFoundError("mentor profile")
	}
	return nil
}

// CountActiveEngagements counts the mentor's ongoing engagements
func (r *ProfileRepository) CountActiveEngagements(ctx context.Context, mentorID string) (int, error) {
	start := time.Now()
	count, err := countActiveEngagements(ctx, r.pool, mentorID)
	metrics.ObserveDB("countActiveEngagements", start, err)
	if err != nil {
		return 0, translateError(err, "mentor profile")
	}
	return count, nil
}

func countActiveEngagements(ctx context.Context, q querier, mentorID string) (int, error) {
	var count int
	if err := q.QueryRow(ctx, activeEngagementsQuery, mentorID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
