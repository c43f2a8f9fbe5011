package apiclient

import (
	"context"
	"sync"
	"time"

	"github.com/getmentor/mentorship-api/internal/models"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"go.uber.org/zap"
)

// RequestBoard is a mentor's local view of incoming requests. Respond applies
// the decision immediately and rolls back to the previous snapshot when the
// server rejects it.
type RequestBoard struct {
	client *Client

	mu       sync.Mutex
	order    []string
	requests map[string]*models.MentorshipRequest
}

// NewRequestBoard creates an empty board; call Refresh to load it
func NewRequestBoard(client *Client) *RequestBoard {
	return &RequestBoard{
		client:   client,
		requests: make(map[string]*models.MentorshipRequest),
	}
}

// Refresh replaces the board with the server's current list
func (b *RequestBoard) Refresh(ctx context.Context) error {
	requests, err := b.client.ListMentorRequests(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.order = b.order[:0]
	b.requests = make(map[string]*models.MentorshipRequest, len(requests))
	for _, r := range requests {
		b.order = append(b.order, r.ID)
		b.requests[r.ID] = r
	}
	return nil
}

// Requests returns copies of the board's requests in server order
func (b *RequestBoard) Requests() []models.MentorshipRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.MentorshipRequest, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.requests[id])
	}
	return out
}

// Get returns a copy of one request
func (b *RequestBoard) Get(requestID string) (models.MentorshipRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.requests[requestID]
	if !ok {
		return models.MentorshipRequest{}, false
	}
	return *r, true
}

// Respond optimistically moves the request to accepted or rejected, then
// confirms with the server. On failure the previous state is restored and the
// server's typed error is returned.
func (b *RequestBoard) Respond(ctx context.Context, requestID string, accept bool) (*models.RespondResult, error) {
	snapshot, err := b.apply(requestID, models.Decision(accept))
	if err != nil {
		return nil, err
	}

	result, err := b.client.Respond(ctx, requestID, accept)
	if err != nil {
		b.restore(snapshot)
		logger.Warn("Rolled back optimistic response",
			zap.String("request_id", requestID),
			zap.Bool("accept", accept),
			zap.String("code", string(apperrors.CodeOf(err))),
			zap.Error(err))
		return nil, err
	}

	if result.Request != nil {
		b.mu.Lock()
		if _, ok := b.requests[requestID]; ok {
			b.requests[requestID] = result.Request
		}
		b.mu.Unlock()
	}
	return result, nil
}

func (b *RequestBoard) apply(requestID string, to models.RequestStatus) (models.MentorshipRequest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, ok := b.requests[requestID]
	if !ok {
		return models.MentorshipRequest{}, apperrors.NotFoundError("mentorship request")
	}
	if !current.Status.CanTransitionTo(to) {
		return models.MentorshipRequest{}, apperrors.InvalidStateError("mentorship request", string(current.Status))
	}

	snapshot := *current
	now := time.Now().UTC()
	updated := *current
	updated.Status = to
	updated.RespondedAt = &now
	b.requests[requestID] = &updated
	return snapshot, nil
}

func (b *RequestBoard) restore(snapshot models.MentorshipRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.requests[snapshot.ID]; ok {
		b.requests[snapshot.ID] = &snapshot
	}
}
