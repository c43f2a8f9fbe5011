// Package memory is an in-process implementation of the repository interfaces,
// used for offline mode and tests. A single mutex makes every operation,
// including accept-and-create-review, atomic.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/repository"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/google/uuid"
)

var (
	_ repository.ProfileStore  = (*Store)(nil)
	_ repository.RequestStore  = (*Store)(nil)
	_ repository.ReviewStore   = (*Store)(nil)
	_ repository.HealthChecker = (*Store)(nil)
)

type profileRecord struct {
	profile models.MentorProfile
	deleted bool
}

type requestRecord struct {
	request models.MentorshipRequest
	seq     int64
}

// Store keeps profiles, requests and reviews in maps guarded by one mutex
type Store struct {
	mu              sync.Mutex
	profiles        map[string]*profileRecord
	requests        map[string]*requestRecord
	reviews         map[string]*models.ResumeReview
	reviewByRequest map[string]string
	seq             int64
	now             func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		profiles:        make(map[string]*profileRecord),
		requests:        make(map[string]*requestRecord),
		reviews:         make(map[string]*models.ResumeReview),
		reviewByRequest: make(map[string]string),
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// ---- profiles ----

func (s *Store) liveProfile(mentorID string) (*profileRecord, bool) {
	rec, ok := s.profiles[mentorID]
	if !ok || rec.deleted {
		return nil, false
	}
	return rec, true
}

// GetProfile returns a live profile
func (s *Store) GetProfile(ctx context.Context, mentorID string) (*models.MentorProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.UnavailableError("memory store", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.liveProfile(mentorID)
	if !ok {
		return nil, apperrors.NotFoundError("mentor profile")
	}
	return copyProfile(&rec.profile), nil
}

// CreateProfile inserts or revives a profile
func (s *Store) CreateProfile(ctx context.Context, profile *models.MentorProfile) (*models.MentorProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.UnavailableError("memory store", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.liveProfile(profile.MentorID); ok {
		return nil, apperrors.AlreadyExistsError("mentor profile")
	}

	now := s.now()
	rec := &profileRecord{profile: *copyProfile(profile)}
	rec.profile.CreatedAt = now
	rec.profile.UpdatedAt = now
	s.profiles[profile.MentorID] = rec
	return copyProfile(&rec.profile), nil
}

// UpdateProfile applies a partial update
func (s *Store) UpdateProfile(ctx context.Context, mentorID string, patch models.ProfilePatch) (*models.MentorProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.UnavailableError("memory store", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.liveProfile(mentorID)
	if !ok {
		return nil, apperrors.NotFoundError("mentor profile")
	}
	if patch.MaxMentees != nil {
		if current := s.countActive(mentorID); *patch.MaxMentees < current {
			return nil, models.CapacityFloorError(current)
		}
	}
	if patch.ExpertiseTags != nil {
		rec.profile.ExpertiseTags = append([]string{}, (*patch.ExpertiseTags)...)
	}
	if patch.MaxMentees != nil {
		rec.profile.MaxMentees = *patch.MaxMentees
	}
	rec.profile.UpdatedAt = s.now()
	return copyProfile(&rec.profile), nil
}

// DeleteProfile hides a live profile
func (s *Store) DeleteProfile(ctx context.Context, mentorID string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.UnavailableError("memory store", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.liveProfile(mentorID)
	if !ok {
		return apperrors.NotFoundError("mentor profile")
	}
	rec.deleted = true
	rec.profile.UpdatedAt = s.now()
	return nil
}

// CountActiveEngagements counts accepted requests with an active review
func (s *Store) CountActiveEngagements(ctx context.Context, mentorID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, apperrors.UnavailableError("memory store", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.countActive(mentorID), nil
}

func (s *Store) countActive(mentorID string) int {
	count := 0
	for _, rec := range s.requests {
		if rec.request.MentorID != mentorID || rec.request.Status != models.RequestAccepted {
			continue
		}
		reviewID, ok := s.reviewByRequest[rec.request.ID]
		if ok && s.reviews[reviewID].Status == models.ReviewActive {
			count++
		}
	}
	return count
}

// ---- requests ----

// CreateRequest stores a pending request
func (s *Store) CreateRequest(ctx context.Context, request *models.MentorshipRequest) (*models.MentorshipRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.UnavailableError("memory store", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Same guarantee as the foreign key in PostgreSQL; deleted profiles still count
	if _, ok := s.profiles[request.MentorID]; !ok {
		return nil, apperrors.NotFoundError("mentor profile")
	}

	for _, rec := range s.requests {
		if rec.request.RequesterID == request.RequesterID &&
			rec.request.MentorID == request.MentorID &&
			rec.request.Status.IsLive() {
			return nil, apperrors.AlreadyExistsError("mentorship request")
		}
	}

	s.seq++
	created := copyRequest(request)
	created.ID = uuid.NewString()
	created.Status = models.RequestPending
	created.CreatedAt = s.now()
	created.RespondedAt = nil
	if created.Goals == nil {
		created.Goals = []string{}
	}
	s.requests[created.ID] = &requestRecord{request: *created, seq: s.seq}
	return copyRequest(created), nil
}

// GetRequest fetches a request
func (s *Store) GetRequest(ctx context.Context, requestID string) (*models.MentorshipRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.UnavailableError("memory store", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.requests[requestID]
	if !ok {
		return nil, apperrors.NotFoundError("mentorship request")
	}
	return copyRequest(&rec.request), nil
}

// sortedRequests returns matching records newest first
func (s *Store) sortedRequests(match func(*models.MentorshipRequest) bool) []*requestRecord {
	out := []*requestRecord{}
	for _, rec := range s.requests {
		if match(&rec.request) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq > out[j].seq })
	return out
}

// ListForMentee returns the mentee's engagements
func (s *Store) ListForMentee(ctx context.Context, menteeID string) ([]*models.MentorshipDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.UnavailableError("memory store", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.sortedRequests(func(r *models.MentorshipRequest) bool { return r.RequesterID == menteeID })
	details := make([]*models.MentorshipDetails, 0, len(records))
	for _, rec := range records {
		var review *models.ResumeReview
		if reviewID, ok := s.reviewByRequest[rec.request.ID]; ok {
			review = s.reviews[reviewID]
		}
		details = append(details, models.NewMentorshipDetails(copyRequest(&rec.request), review))
	}
	return details, nil
}

// ListForMentor returns requests addressed to the mentor
func (s *Store) ListForMentor(ctx context.Context, mentorID string) ([]*models.MentorshipRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.UnavailableError("memory store", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.sortedRequests(func(r *models.MentorshipRequest) bool { return r.MentorID == mentorID })
	requests := make([]*models.MentorshipRequest, 0, len(records))
	for _, rec := range records {
		requests = append(requests, copyRequest(&rec.request))
	}
	return requests, nil
}

// Respond decides a pending request under the store lock
func (s *Store) Respond(ctx context.Context, requestID string, accept bool) (*models.RespondResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.UnavailableError("memory store", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.requests[requestID]
	if !ok {
		return nil, apperrors.NotFoundError("mentorship request")
	}

	target := models.Decision(accept)
	if !rec.request.Status.CanTransitionTo(target) {
		return nil, apperrors.InvalidStateError("mentorship request", string(rec.request.Status))
	}

	if accept {
		profile, ok := s.liveProfile(rec.request.MentorID)
		if !ok {
			return nil, apperrors.NotFoundError("mentor profile")
		}
		current := s.countActive(rec.request.MentorID)
		if current >= profile.profile.MaxMentees {
			return nil, apperrors.CapacityExceededError(rec.request.MentorID, current, profile.profile.MaxMentees)
		}
	}

	now := s.now()
	rec.request.Status = target
	rec.request.RespondedAt = &now
	result := &models.RespondResult{Request: copyRequest(&rec.request)}

	if accept {
		review := s.createForAcceptedRequest(rec.request.ID, now)
		result.Review = copyReview(review)
	}
	return result, nil
}

// createForAcceptedRequest must be called with s.mu held
func (s *Store) createForAcceptedRequest(requestID string, now time.Time) *models.ResumeReview {
	review := &models.ResumeReview{
		ID:        uuid.NewString(),
		RequestID: requestID,
		Status:    models.ReviewActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.reviews[review.ID] = review
	s.reviewByRequest[requestID] = review.ID
	return review
}

// ---- reviews ----

// GetReview fetches a review
func (s *Store) GetReview(ctx context.Context, reviewID string) (*models.ResumeReview, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.UnavailableError("memory store", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	review, ok := s.reviews[reviewID]
	if !ok {
		return nil, apperrors.NotFoundError("resume review")
	}
	return copyReview(review), nil
}

// GetReviewWithRequest fetches a review and its backing request
func (s *Store) GetReviewWithRequest(ctx context.Context, reviewID string) (*models.ResumeReview, *models.MentorshipRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, apperrors.UnavailableError("memory store", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	review, ok := s.reviews[reviewID]
	if !ok {
		return nil, nil, apperrors.NotFoundError("resume review")
	}
	rec, ok := s.requests[review.RequestID]
	if !ok {
		return nil, nil, apperrors.NotFoundError("mentorship request")
	}
	return copyReview(review), copyRequest(&rec.request), nil
}

// SetFileURL replaces the file of an active review
func (s *Store) SetFileURL(ctx context.Context, reviewID, fileURL string) (*models.ResumeReview, error) {
	return s.updateActive(ctx, reviewID, func(r *models.ResumeReview) {
		url := fileURL
		r.FileURL = &url
	})
}

// SetFeedback stores feedback on an active review
func (s *Store) SetFeedback(ctx context.Context, reviewID, feedback string) (*models.ResumeReview, error) {
	return s.updateActive(ctx, reviewID, func(r *models.ResumeReview) {
		fb := feedback
		r.Feedback = &fb
	})
}

// Transition moves an active review to a terminal status
func (s *Store) Transition(ctx context.Context, reviewID string, to models.ReviewStatus) (*models.ResumeReview, error) {
	if !models.ReviewActive.CanTransitionTo(to) {
		return nil, apperrors.InvalidInputError("status", string(to)+" is not a terminal review status")
	}
	return s.updateActive(ctx, reviewID, func(r *models.ResumeReview) {
		r.Status = to
	})
}

func (s *Store) updateActive(ctx context.Context, reviewID string, apply func(*models.ResumeReview)) (*models.ResumeReview, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.UnavailableError("memory store", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	review, ok := s.reviews[reviewID]
	if !ok {
		return nil, apperrors.NotFoundError("resume review")
	}
	if review.Status != models.ReviewActive {
		return nil, apperrors.InvalidStateError("resume review", string(review.Status))
	}
	apply(review)
	review.UpdatedAt = s.now()
	return copyReview(review), nil
}

// ---- copies ----

func copyProfile(p *models.MentorProfile) *models.MentorProfile {
	c := *p
	c.ExpertiseTags = append([]string{}, p.ExpertiseTags...)
	return &c
}

func copyRequest(r *models.MentorshipRequest) *models.MentorshipRequest {
	c := *r
	if r.Goals != nil {
		c.Goals = append([]string{}, r.Goals...)
	}
	if r.Motivation != nil {
		m := *r.Motivation
		c.Motivation = &m
	}
	if r.RespondedAt != nil {
		t := *r.RespondedAt
		c.RespondedAt = &t
	}
	return &c
}

func copyReview(r *models.ResumeReview) *models.ResumeReview {
	c := *r
	if r.FileURL != nil {
		u := *r.FileURL
		c.FileURL = &u
	}
	if r.Feedback != nil {
		f := *r.Feedback
		c.Feedback = &f
	}
	return &c
}
