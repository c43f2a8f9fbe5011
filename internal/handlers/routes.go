package handlers

import (
	"github.com/getmentor/mentorship-api/internal/middleware"
	"github.com/getmentor/mentorship-api/pkg/storage"
	"github.com/gin-gonic/gin"
)

const (
	jsonBodyLimit = 100 * 1024
	// base64 inflates the file by a third, plus the JSON envelope
	fileBodyLimit = storage.MaxFileSize*4/3 + 64*1024
)

// Handlers groups the v1 API handlers
type Handlers struct {
	Profiles *ProfileHandler
	Requests *MentorshipRequestHandler
	Reviews  *ReviewHandler
}

// RegisterV1Routes mounts the mentorship API. Every route requires a session;
// limiter runs after session so authenticated callers are limited per user.
func RegisterV1Routes(v1 *gin.RouterGroup, h Handlers, session gin.HandlerFunc, limiter gin.HandlerFunc) {
	v1.Use(session, limiter)

	jsonBody := middleware.BodySizeLimitMiddleware(jsonBodyLimit)

	// Directory
	v1.GET("/mentors/:id/profile", h.Profiles.GetProfile)
	v1.GET("/mentors/:id/availability", h.Profiles.GetAvailability)
	v1.POST("/mentor/profile", jsonBody, h.Profiles.CreateProfile)
	v1.PATCH("/mentor/profile", jsonBody, h.Profiles.UpdateProfile)
	v1.DELETE("/mentor/profile", h.Profiles.DeleteProfile)

	// Request ledger
	v1.POST("/mentorship-requests", jsonBody, h.Requests.CreateRequest)
	v1.GET("/mentorship-requests/:id", h.Requests.GetRequest)
	v1.GET("/mentee/engagements", h.Requests.ListMenteeEngagements)
	v1.GET("/mentor/requests", h.Requests.ListMentorRequests)
	v1.POST("/mentor/requests/:id/respond", jsonBody, h.Requests.Respond)
	v1.POST("/mentor/requests/:id/accept", h.Requests.Accept)

	// Resume reviews
	v1.GET("/reviews/:id", h.Reviews.GetReview)
	v1.GET("/reviews/:id/file", h.Reviews.GetFileURL)
	v1.PUT("/reviews/:id/file", middleware.BodySizeLimitMiddleware(fileBodyLimit), h.Reviews.SetFile)
	v1.PUT("/reviews/:id/feedback", jsonBody, h.Reviews.SetFeedback)
	v1.POST("/reviews/:id/complete", h.Reviews.Complete)
	v1.POST("/reviews/:id/close", h.Reviews.Close)
}
