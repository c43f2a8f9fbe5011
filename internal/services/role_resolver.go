package services

import (
	"context"

	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/repository"
)

// RoleResolver derives an actor's role on a review from the request behind it
type RoleResolver struct {
	reviews repository.ReviewStore
}

// NewRoleResolver creates a new RoleResolver
func NewRoleResolver(reviews repository.ReviewStore) *RoleResolver {
	return &RoleResolver{reviews: reviews}
}

// ResolveRole loads the review and reports whether actorID is its mentee, its
// mentor or unrelated. Missing reviews return ErrNotFound.
func (r *RoleResolver) ResolveRole(ctx context.Context, actorID, reviewID string) (models.Role, *models.ResumeReview, error) {
	review, request, err := r.reviews.GetReviewWithRequest(ctx, reviewID)
	if err != nil {
		return models.RoleUnrelated, nil, err
	}
	return models.RoleFor(actorID, request), review, nil
}
