package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/getmentor/mentorship-api/config"
	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/repository"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/getmentor/mentorship-api/pkg/metrics"
	"github.com/getmentor/mentorship-api/pkg/storage"
	"github.com/getmentor/mentorship-api/pkg/tracing"
	"github.com/getmentor/mentorship-api/pkg/trigger"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var errStorageNotConfigured = errors.New("object storage is not configured")

// ReviewService handles resume review operations
type ReviewService struct {
	reviews  repository.ReviewStore
	resolver *RoleResolver
	storage  FileStorage
	notifier *trigger.Notifier
	config   *config.Config
}

// NewReviewService creates a new ReviewService. fileStorage may be nil, in
// which case uploads fail with ErrUnavailable.
func NewReviewService(reviews repository.ReviewStore, resolver *RoleResolver, fileStorage FileStorage, notifier *trigger.Notifier, cfg *config.Config) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		resolver: resolver,
		storage:  fileStorage,
		notifier: notifier,
		config:   cfg,
	}
}

// authorize resolves the actor's role and checks action against the review's current status
func (s *ReviewService) authorize(ctx context.Context, actorID, reviewID string, action models.Action) (models.Role, *models.ResumeReview, error) {
	role, review, err := s.resolver.ResolveRole(ctx, actorID, reviewID)
	if err != nil {
		return role, nil, err
	}

	if err := models.Authorize(role, review.Status, action); err != nil {
		logger.Warn("Review action denied",
			zap.String("review_id", reviewID),
			zap.String("actor_id", actorID),
			zap.String("role", string(role)),
			zap.String("action", string(action)),
			zap.String("status", string(review.Status)),
			zap.Error(err))
		return role, review, err
	}

	return role, review, nil
}

// GetReview returns the review with the caller's role and what they may do next
func (s *ReviewService) GetReview(ctx context.Context, actorID, reviewID string) (*models.ReviewView, error) {
	role, review, err := s.authorize(ctx, actorID, reviewID, models.ActionView)
	if err != nil {
		return nil, err
	}

	allowed := models.PermittedActions(role, review.Status)
	return &models.ReviewView{
		Review:         review,
		Role:           role,
		AllowedActions: append([]models.Action{}, allowed...),
	}, nil
}

// GetFileURL returns the current file URL. A review without a file yields ("", false, nil).
func (s *ReviewService) GetFileURL(ctx context.Context, actorID, reviewID string) (string, bool, error) {
	_, review, err := s.authorize(ctx, actorID, reviewID, models.ActionViewFile)
	if err != nil {
		return "", false, err
	}
	if review.FileURL == nil || *review.FileURL == "" {
		return "", false, nil
	}
	return *review.FileURL, true, nil
}

// SetFile uploads the mentee's resume and points the review at it. The last
// successful upload wins; earlier objects are not tracked.
func (s *ReviewService) SetFile(ctx context.Context, actorID, reviewID string, file models.FileUpload) (review *models.ResumeReview, err error) {
	ctx, span := tracing.StartSpan(ctx, "ReviewService.SetFile",
		attribute.String("review.id", reviewID))
	defer func() { tracing.EndSpan(span, err) }()

	start := time.Now()

	if _, _, err = s.authorize(ctx, actorID, reviewID, models.ActionUploadFile); err != nil {
		metrics.ResumeReviewFileUploads.WithLabelValues(string(apperrors.CodeOf(err))).Inc()
		return nil, err
	}

	if file.Data == nil {
		if file.Data, err = storage.DecodeFile(file.Encoded); err != nil {
			metrics.ResumeReviewFileUploads.WithLabelValues(string(apperrors.CodeInvalidInput)).Inc()
			return nil, err
		}
	}
	span.SetAttributes(attribute.Int("file.size", len(file.Data)))

	if err = storage.ValidateFileType(file.ContentType); err != nil {
		metrics.ResumeReviewFileUploads.WithLabelValues(string(apperrors.CodeInvalidInput)).Inc()
		return nil, err
	}
	if err = storage.ValidateFileSize(file.Data); err != nil {
		metrics.ResumeReviewFileUploads.WithLabelValues(string(apperrors.CodeInvalidInput)).Inc()
		return nil, err
	}

	if s.storage == nil {
		err = apperrors.UnavailableError("object storage", errStorageNotConfigured)
		metrics.ResumeReviewFileUploads.WithLabelValues(string(apperrors.CodeUnavailable)).Inc()
		return nil, err
	}

	fileURL, err := s.storage.Upload(ctx, storage.ReviewFileKey(reviewID, file.FileName), file.Data, file.ContentType)
	if err != nil {
		metrics.ResumeReviewFileUploads.WithLabelValues(string(apperrors.CodeOf(err))).Inc()
		logger.Error("Failed to upload resume",
			zap.String("review_id", reviewID),
			zap.Error(err))
		return nil, err
	}

	// The review may have been closed while the upload was in flight; the
	// store only writes to active reviews.
	review, err = s.reviews.SetFileURL(ctx, reviewID, fileURL)
	if err != nil {
		metrics.ResumeReviewFileUploads.WithLabelValues(string(apperrors.CodeOf(err))).Inc()
		logger.Warn("Failed to attach resume to review",
			zap.String("review_id", reviewID),
			zap.Error(err))
		return nil, err
	}

	metrics.ResumeReviewFileUploads.WithLabelValues("success").Inc()
	logger.Info("Resume attached to review",
		zap.String("review_id", reviewID),
		zap.Int("size_bytes", len(file.Data)),
		zap.Duration("duration", time.Since(start)))

	return review, nil
}

// SetFeedback stores the mentor's feedback. Status is left unchanged.
func (s *ReviewService) SetFeedback(ctx context.Context, actorID, reviewID, feedback string) (*models.ResumeReview, error) {
	if _, _, err := s.authorize(ctx, actorID, reviewID, models.ActionSetFeedback); err != nil {
		return nil, err
	}

	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return nil, apperrors.InvalidInputError("feedback", "must not be empty")
	}

	review, err := s.reviews.SetFeedback(ctx, reviewID, feedback)
	if err != nil {
		logger.Warn("Failed to store review feedback",
			zap.String("review_id", reviewID),
			zap.Error(err))
		return nil, err
	}

	logger.Info("Review feedback stored", zap.String("review_id", reviewID))
	return review, nil
}

// Complete marks the review as completed
func (s *ReviewService) Complete(ctx context.Context, actorID, reviewID string) (*models.ResumeReview, error) {
	return s.finish(ctx, actorID, reviewID, models.ActionComplete, models.ReviewCompleted)
}

// Close ends the review without completing it
func (s *ReviewService) Close(ctx context.Context, actorID, reviewID string) (*models.ResumeReview, error) {
	return s.finish(ctx, actorID, reviewID, models.ActionClose, models.ReviewClosed)
}

func (s *ReviewService) finish(ctx context.Context, actorID, reviewID string, action models.Action, to models.ReviewStatus) (review *models.ResumeReview, err error) {
	ctx, span := tracing.StartSpan(ctx, "ReviewService."+string(action),
		attribute.String("review.id", reviewID))
	defer func() { tracing.EndSpan(span, err) }()

	if _, _, err = s.authorize(ctx, actorID, reviewID, action); err != nil {
		metrics.ResumeReviewTransitions.WithLabelValues(string(to), string(apperrors.CodeOf(err))).Inc()
		return nil, err
	}

	review, err = s.reviews.Transition(ctx, reviewID, to)
	if err != nil {
		metrics.ResumeReviewTransitions.WithLabelValues(string(to), string(apperrors.CodeOf(err))).Inc()
		logger.Warn("Failed to transition review",
			zap.String("review_id", reviewID),
			zap.String("to_status", string(to)),
			zap.Error(err))
		return nil, err
	}

	metrics.ResumeReviewTransitions.WithLabelValues(string(to), "success").Inc()

	s.notifier.CallAsync(s.config.EventTriggers.ReviewFinishedTriggerURL, trigger.Event{
		Type:     "review." + string(to),
		RecordID: reviewID,
		Data:     map[string]string{"request_id": review.RequestID},
	})

	logger.Info("Review finished",
		zap.String("review_id", reviewID),
		zap.String("status", string(to)))

	return review, nil
}
