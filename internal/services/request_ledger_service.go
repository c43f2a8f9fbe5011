package services

import (
	"context"
	"strings"
	"time"

	"github.com/getmentor/mentorship-api/config"
	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/repository"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"github.com/getmentor/mentorship-api/pkg/trigger"
	"go.uber.org/zap"
)

// RequestLedgerService handles the mentorship request workflow
type RequestLedgerService struct {
	requests repository.RequestStore
	profiles repository.ProfileStore
	notifier *trigger.Notifier
	config   *config.Config
}

// NewRequestLedgerService creates a new RequestLedgerService
func NewRequestLedgerService(requests repository.RequestStore, profiles repository.ProfileStore, notifier *trigger.Notifier, cfg *config.Config) *RequestLedgerService {
	return &RequestLedgerService{
		requests: requests,
		profiles: profiles,
		notifier: notifier,
		config:   cfg,
	}
}

// CreateRequest records a pending request from requesterID to mentorID.
// Capacity is not checked here; it is enforced when the mentor accepts.
func (s *RequestLedgerService) CreateRequest(ctx context.Context, requesterID, mentorID string, motivation *string, goals []string) (*models.MentorshipRequest, error) {
	start := time.Now()

	if requesterID == mentorID {
		metrics.MentorshipRequestsCreated.WithLabelValues("invalid").Inc()
		return nil, apperrors.InvalidInputError("mentorId", "cannot request mentorship from yourself")
	}

	if _, err := s.profiles.GetProfile(ctx, mentorID); err != nil {
		metrics.MentorshipRequestsCreated.WithLabelValues(string(apperrors.CodeOf(err))).Inc()
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to load mentor profile",
				zap.String("mentor_id", mentorID),
				zap.Error(err))
		}
		return nil, err
	}

	if motivation != nil {
		trimmed := strings.TrimSpace(*motivation)
		motivation = &trimmed
		if trimmed == "" {
			motivation = nil
		}
	}

	request, err := s.requests.CreateRequest(ctx, &models.MentorshipRequest{
		RequesterID: requesterID,
		MentorID:    mentorID,
		Status:      models.RequestPending,
		Motivation:  motivation,
		Goals:       cleanGoals(goals),
	})
	if err != nil {
		metrics.MentorshipRequestsCreated.WithLabelValues(string(apperrors.CodeOf(err))).Inc()
		logger.Warn("Failed to create mentorship request",
			zap.String("requester_id", requesterID),
			zap.String("mentor_id", mentorID),
			zap.Error(err))
		return nil, err
	}

	metrics.MentorshipRequestsCreated.WithLabelValues("success").Inc()

	s.notifier.CallAsync(s.config.EventTriggers.RequestCreatedTriggerURL, trigger.Event{
		Type:     "request.created",
		RecordID: request.ID,
		Data: map[string]string{
			"mentor_id":    mentorID,
			"requester_id": requesterID,
		},
	})

	logger.Info("Mentorship request created",
		zap.String("request_id", request.ID),
		zap.String("requester_id", requesterID),
		zap.String("mentor_id", mentorID),
		zap.Duration("duration", time.Since(start)))

	return request, nil
}

// GetRequest returns a request to either of its parties
func (s *RequestLedgerService) GetRequest(ctx context.Context, actorID, requestID string) (*models.MentorshipRequest, error) {
	request, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if actorID != request.RequesterID && actorID != request.MentorID {
		logger.Warn("Access denied to request",
			zap.String("request_id", requestID),
			zap.String("actor_id", actorID))
		return nil, apperrors.ForbiddenError("not a party to this request")
	}

	return request, nil
}

// ListForMentee returns the mentee's engagements, newest first
func (s *RequestLedgerService) ListForMentee(ctx context.Context, menteeID string) ([]*models.MentorshipDetails, error) {
	details, err := s.requests.ListForMentee(ctx, menteeID)
	if err != nil {
		logger.Error("Failed to list mentee engagements",
			zap.String("mentee_id", menteeID),
			zap.Error(err))
		return nil, err
	}
	return details, nil
}

// ListForMentor returns requests addressed to the mentor, newest first
func (s *RequestLedgerService) ListForMentor(ctx context.Context, mentorID string) ([]*models.MentorshipRequest, error) {
	requests, err := s.requests.ListForMentor(ctx, mentorID)
	if err != nil {
		logger.Error("Failed to list mentor requests",
			zap.String("mentor_id", mentorID),
			zap.Error(err))
		return nil, err
	}
	return requests, nil
}

// Respond records the mentor's decision. Accepting re-checks capacity and
// creates the resume review atomically with the status change.
func (s *RequestLedgerService) Respond(ctx context.Context, actorID, requestID string, accept bool) (*models.RespondResult, error) {
	decision := string(models.Decision(accept))

	request, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		metrics.MentorshipResponses.WithLabelValues(decision, string(apperrors.CodeOf(err))).Inc()
		return nil, err
	}
	if request.MentorID != actorID {
		metrics.MentorshipResponses.WithLabelValues(decision, string(apperrors.CodeForbidden)).Inc()
		logger.Warn("Only the requested mentor may respond",
			zap.String("request_id", requestID),
			zap.String("actor_id", actorID))
		return nil, apperrors.ForbiddenError("only the requested mentor may respond")
	}
	if !request.Status.CanTransitionTo(models.Decision(accept)) {
		metrics.MentorshipResponses.WithLabelValues(decision, string(apperrors.CodeInvalidState)).Inc()
		return nil, apperrors.InvalidStateError("mentorship request", string(request.Status))
	}

	result, err := s.requests.Respond(ctx, requestID, accept)
	if err != nil {
		metrics.MentorshipResponses.WithLabelValues(decision, string(apperrors.CodeOf(err))).Inc()
		logger.Warn("Failed to respond to mentorship request",
			zap.String("request_id", requestID),
			zap.String("decision", decision),
			zap.Error(err))
		return nil, err
	}

	metrics.MentorshipResponses.WithLabelValues(decision, "success").Inc()

	data := map[string]string{
		"decision":     decision,
		"mentor_id":    result.Request.MentorID,
		"requester_id": result.Request.RequesterID,
	}
	if result.Review != nil {
		data["review_id"] = result.Review.ID
	}
	s.notifier.CallAsync(s.config.EventTriggers.RequestRespondedTriggerURL, trigger.Event{
		Type:     "request.responded",
		RecordID: requestID,
		Data:     data,
	})

	logger.Info("Mentorship request answered",
		zap.String("request_id", requestID),
		zap.String("decision", decision))

	return result, nil
}

func cleanGoals(goals []string) []string {
	out := make([]string, 0, len(goals))
	for _, g := range goals {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}
