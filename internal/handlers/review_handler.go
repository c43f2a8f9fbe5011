package handlers

import (
	"net/http"

	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/services"
	"github.com/gin-gonic/gin"
)

// ReviewHandler handles resume review endpoints
type ReviewHandler struct {
	service services.ReviewServiceInterface
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(service services.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// GetReview handles GET /api/v1/reviews/:id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	userID, ok := requireSession(c)
	if !ok {
		return
	}

	view, err := h.service.GetReview(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetFileURL handles GET /api/v1/reviews/:id/file
// A review without a file answers 200 with a null fileUrl.
func (h *ReviewHandler) GetFileURL(c *gin.Context) {
	userID, ok := requireSession(c)
	if !ok {
		return
	}

	url, found, err := h.service.GetFileURL(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondAppError(c, err)
		return
	}

	resp := models.FileURLResponse{}
	if found {
		resp.FileURL = &url
	}
	c.JSON(http.StatusOK, resp)
}

// SetFile handles PUT /api/v1/reviews/:id/file
func (h *ReviewHandler) SetFile(c *gin.Context) {
	userID, ok := requireSession(c)
	if !ok {
		return
	}

	var req models.SetReviewFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.service.SetFile(c.Request.Context(), userID, c.Param("id"), models.FileUpload{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Encoded:     req.File,
	})
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// SetFeedback handles PUT /api/v1/reviews/:id/feedback
func (h *ReviewHandler) SetFeedback(c *gin.Context) {
	userID, ok := requireSession(c)
	if !ok {
		return
	}

	var req models.SetFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	review, err := h.service.SetFeedback(c.Request.Context(), userID, c.Param("id"), req.Feedback)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// Complete handles POST /api/v1/reviews/:id/complete
func (h *ReviewHandler) Complete(c *gin.Context) {
	userID, ok := requireSession(c)
	if !ok {
		return
	}

	review, err := h.service.Complete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// Close handles POST /api/v1/reviews/:id/close
func (h *ReviewHandler) Close(c *gin.Context) {
	userID, ok := requireSession(c)
	if !ok {
		return
	}

	review, err := h.service.Close(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}
