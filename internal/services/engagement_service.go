package services

import (
	"context"
	"fmt"
	"time"

	"github.com/getmentor/mentorship-api/config"
	"github.com/getmentor/mentorship-api/internal/models"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"github.com/getmentor/mentorship-api/pkg/retry"
	"github.com/getmentor/mentorship-api/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	defaultLookupRetries      = 3
	defaultLookupInitialDelay = 100 * time.Millisecond
)

// EngagementService accepts a request and locates the review it spawned so
// the client can navigate straight to it.
type EngagementService struct {
	ledger RequestLedgerInterface
	retry  retry.Config
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(ledger RequestLedgerInterface, cfg *config.Config) *EngagementService {
	retries, delay := defaultLookupRetries, defaultLookupInitialDelay
	if cfg != nil {
		retries = cfg.Engagement.LookupRetries
		if cfg.Engagement.LookupInitialDelay > 0 {
			delay = cfg.Engagement.LookupInitialDelay
		}
	}
	return &EngagementService{
		ledger: ledger,
		retry:  retry.LookupConfig(retries, delay),
	}
}

// AcceptAndLocateReview accepts the request as mentorID, then re-reads the
// mentee's engagements to find the new review. Failing to find it never fails
// the acceptance: the result just carries no redirect.
func (s *EngagementService) AcceptAndLocateReview(ctx context.Context, requestID, mentorID string) (result *models.AcceptResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "EngagementService.AcceptAndLocateReview",
		attribute.String("request.id", requestID))
	defer func() { tracing.EndSpan(span, err) }()

	accepted, err := s.ledger.Respond(ctx, mentorID, requestID, true)
	if err != nil {
		return nil, err
	}

	result = &models.AcceptResult{
		Request: accepted.Request,
		Review:  accepted.Review,
	}

	details, lookupErr := retry.DoWithResult(ctx, s.retry, "engagement.locateReview", func() (*models.MentorshipDetails, error) {
		return s.locate(ctx, accepted.Request)
	})
	if lookupErr != nil {
		metrics.EngagementLookupMisses.Inc()
		logger.Error("Accepted request has no visible review",
			zap.String("request_id", requestID),
			zap.String("mentor_id", mentorID),
			zap.String("requester_id", accepted.Request.RequesterID),
			zap.Error(lookupErr))
		return result, nil
	}

	reviewID := *details.ResumeReviewID
	if result.Review == nil || result.Review.ID != reviewID {
		// Respond's copy is stale or missing; the ledger view is authoritative.
		result.Review = &models.ResumeReview{ID: reviewID, RequestID: requestID}
		if details.ReviewStatus != nil {
			result.Review.Status = *details.ReviewStatus
		}
	}
	result.Redirect = true
	result.RedirectTarget = "/reviews/" + reviewID

	logger.Info("Request accepted and review located",
		zap.String("request_id", requestID),
		zap.String("review_id", reviewID))

	return result, nil
}

// locate finds the engagement for request in the mentee's list. ErrNotReady
// (and transient backend failures) make the caller retry.
func (s *EngagementService) locate(ctx context.Context, request *models.MentorshipRequest) (*models.MentorshipDetails, error) {
	engagements, err := s.ledger.ListForMentee(ctx, request.RequesterID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %v", retry.ErrNotReady, err)
		}
		return nil, err
	}

	for _, d := range engagements {
		if d.RequestID == request.ID && d.MentorID == request.MentorID && d.HasReview() {
			return d, nil
		}
	}
	return nil, retry.ErrNotReady
}
