package handlers

import (
	"net/http"

	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/services"
	"github.com/gin-gonic/gin"
)

// ProfileHandler handles mentor directory endpoints
type ProfileHandler struct {
	service services.MentorDirectoryInterface
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(service services.MentorDirectoryInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetProfile handles GET /api/v1/mentors/:id/profile
// An absent profile is a normal answer, so this never fails with 5xx.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, found := h.service.GetProfile(c.Request.Context(), c.Param("id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"profile": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GetAvailability handles GET /api/v1/mentors/:id/availability
func (h *ProfileHandler) GetAvailability(c *gin.Context) {
	availability, err := h.service.ComputeAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}

// CreateProfile handles POST /api/v1/mentor/profile
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	userID, ok := requireSession(c)
	if !ok {
		return
	}

	var req models.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.service.CreateProfile(c.Request.Context(), userID, req.ExpertiseTags, req.MaxMentees)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

// UpdateProfile handles PATCH /api/v1/mentor/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := requireSession(c)
	if !ok {
		return
	}

	var patch models.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), userID, patch)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// DeleteProfile handles DELETE /api/v1/mentor/profile
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	userID, ok := requireSession(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProfile(c.Request.Context(), userID); err != nil {
		respondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
