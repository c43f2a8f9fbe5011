package services

import (
	"context"
	"sync"
	"time"

	"github.com/getmentor/mentorship-api/internal/cache"
	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/repository"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"go.uber.org/zap"
)

// MentorDirectoryService owns mentor profiles and derives availability from the ledger
type MentorDirectoryService struct {
	profiles repository.ProfileStore
	cache    cache.ProfileCache

	// generations counts profile writes per mentor so a read that raced a
	// write never leaves the older profile cached
	genMu       sync.Mutex
	generations map[string]uint64
}

// NewMentorDirectoryService creates a new MentorDirectoryService. A nil cache disables caching.
func NewMentorDirectoryService(profiles repository.ProfileStore, profileCache cache.ProfileCache) *MentorDirectoryService {
	if profileCache == nil {
		profileCache = cache.NopProfileCache{}
	}
	return &MentorDirectoryService{
		profiles:    profiles,
		cache:       profileCache,
		generations: make(map[string]uint64),
	}
}

// GetProfile returns the mentor's live profile. Absence and backend failures
// both read as "no profile"; they differ only in how they are logged.
func (s *MentorDirectoryService) GetProfile(ctx context.Context, mentorID string) (*models.MentorProfile, bool) {
	profile, err := s.loadProfile(ctx, mentorID)
	switch {
	case err == nil:
		metrics.DirectoryLookups.WithLabelValues("found").Inc()
		return profile, true
	case apperrors.Is(err, apperrors.ErrNotFound):
		metrics.DirectoryLookups.WithLabelValues("absent").Inc()
		logger.Debug("Mentor has not opted in", zap.String("mentor_id", mentorID))
		return nil, false
	default:
		metrics.DirectoryLookups.WithLabelValues("unavailable").Inc()
		logger.Warn("Mentor profile lookup failed",
			zap.String("mentor_id", mentorID),
			zap.Error(err))
		return nil, false
	}
}

func (s *MentorDirectoryService) loadProfile(ctx context.Context, mentorID string) (*models.MentorProfile, error) {
	if mentorID == "" {
		return nil, apperrors.NotFoundError("mentor profile")
	}
	if profile, found := s.cache.Get(ctx, mentorID); found {
		return profile, nil
	}

	gen := s.generation(mentorID)
	profile, err := s.profiles.GetProfile(ctx, mentorID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, profile)
	if s.generation(mentorID) != gen {
		// a write landed while we were reading; it may already have invalidated
		s.cache.Invalidate(ctx, mentorID)
	}
	return profile, nil
}

func (s *MentorDirectoryService) generation(mentorID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[mentorID]
}

// invalidate must run after every successful profile write
func (s *MentorDirectoryService) invalidate(ctx context.Context, mentorID string) {
	s.genMu.Lock()
	s.generations[mentorID]++
	s.genMu.Unlock()

	s.cache.Invalidate(ctx, mentorID)
}

// CreateProfile opts the requester in as a mentor
func (s *MentorDirectoryService) CreateProfile(ctx context.Context, requesterID string, expertiseTags []string, maxMentees int) (*models.MentorProfile, error) {
	start := time.Now()

	if requesterID == "" {
		return nil, apperrors.InvalidInputError("mentorId", "must not be empty")
	}
	if maxMentees < 1 {
		return nil, apperrors.InvalidInputError("maxMentees", "must be at least 1")
	}

	profile, err := s.profiles.CreateProfile(ctx, &models.MentorProfile{
		MentorID:      requesterID,
		ExpertiseTags: models.NormalizeTags(expertiseTags),
		MaxMentees:    maxMentees,
	})
	s.recordChange("create", err)
	if err != nil {
		logger.Warn("Failed to create mentor profile",
			zap.String("mentor_id", requesterID),
			zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, requesterID)

	logger.Info("Mentor profile created",
		zap.String("mentor_id", requesterID),
		zap.Int("max_mentees", profile.MaxMentees),
		zap.Duration("duration", time.Since(start)))

	return profile, nil
}

// UpdateProfile applies a partial update. MaxMentees may not drop below the
// current mentee count; the store checks this atomically with the write.
func (s *MentorDirectoryService) UpdateProfile(ctx context.Context, mentorID string, patch models.ProfilePatch) (*models.MentorProfile, error) {
	if patch.MaxMentees != nil && *patch.MaxMentees < 1 {
		return nil, apperrors.InvalidInputError("maxMentees", "must be at least 1")
	}
	if patch.ExpertiseTags != nil {
		tags := models.NormalizeTags(*patch.ExpertiseTags)
		patch.ExpertiseTags = &tags
	}
	if patch.IsEmpty() {
		return s.profiles.GetProfile(ctx, mentorID)
	}

	profile, err := s.profiles.UpdateProfile(ctx, mentorID, patch)
	s.recordChange("update", err)
	if err != nil {
		logger.Warn("Failed to update mentor profile",
			zap.String("mentor_id", mentorID),
			zap.Error(err))
		return nil, err
	}

	s.invalidate(ctx, mentorID)

	logger.Info("Mentor profile updated",
		zap.String("mentor_id", mentorID),
		zap.Int("max_mentees", profile.MaxMentees))

	return profile, nil
}

// DeleteProfile removes the mentor from the directory. Existing requests and
// reviews keep referencing the mentor.
func (s *MentorDirectoryService) DeleteProfile(ctx context.Context, mentorID string) error {
	err := s.profiles.DeleteProfile(ctx, mentorID)
	s.recordChange("delete", err)
	if err != nil {
		logger.Warn("Failed to delete mentor profile",
			zap.String("mentor_id", mentorID),
			zap.Error(err))
		return err
	}

	s.invalidate(ctx, mentorID)
	logger.Info("Mentor profile deleted", zap.String("mentor_id", mentorID))
	return nil
}

// ComputeAvailability recomputes the mentee count from the ledger on every call
func (s *MentorDirectoryService) ComputeAvailability(ctx context.Context, mentorID string) (*models.Availability, error) {
	profile, err := s.loadProfile(ctx, mentorID)
	if err != nil {
		return nil, err
	}

	current, err := s.profiles.CountActiveEngagements(ctx, mentorID)
	if err != nil {
		logger.Error("Failed to count active engagements",
			zap.String("mentor_id", mentorID),
			zap.Error(err))
		return nil, err
	}

	return models.NewAvailability(profile, current), nil
}

func (s *MentorDirectoryService) recordChange(operation string, err error) {
	status := "success"
	if err != nil {
		status = string(apperrors.CodeOf(err))
	}
	metrics.MentorProfileChanges.WithLabelValues(operation, status).Inc()
}
