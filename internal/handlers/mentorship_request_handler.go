package handlers

import (
	"net/http"

	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/services"
	"github.com/gin-gonic/gin"
)

// MentorshipRequestHandler handles request ledger endpoints for both parties
type MentorshipRequestHandler struct {
	ledger     services.RequestLedgerInterface
	engagement services.EngagementServiceInterface
}

// NewMentorshipRequestHandler creates a new MentorshipRequestHandler
func NewMentorshipRequestHandler(ledger services.RequestLedgerInterface, engagement services.EngagementServiceInterface) *MentorshipRequestHandler {
	return &MentorshipRequestHandler{
		ledger:     ledger,
		engagement: engagement,
	}
}

// CreateRequest handles POST /api/v1/mentorship-requests
func (h *MentorshipRequestHandler) CreateRequest(c *gin.Context) {
	userID, ok := requireSession(c)
	if !ok {
		return
	}

	var req models.CreateMentorshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var motivation *string
	if req.Motivation != "" {
		motivation = &req.Motivation
	}

	request, err := h.ledger.CreateRequest(c.Request.Context(), userID, req.MentorID, motivation, req.Goals)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

// GetRequest handles GET /api/v1/mentorship-requests/:id
func (h *MentorshipRequestHandler) GetRequest(c *gin.Context) {
	userID, ok := requireSession(c)
	if !ok {
		return
	}

	request, err := h.ledger.GetRequest(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

// ListMenteeEngagements handles GET /api/v1/mentee/engagements
func (h *MentorshipRequestHandler) ListMenteeEngagements(c *gin.Context) {
	userID, ok := requireSession(c)
	if !ok {
		return
	}

	details, err := h.ledger.ListForMentee(c.Request.Context(), userID)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MentorshipDetailsResponse{
		Engagements: details,
		Total:       len(details),
	})
}

// ListMentorRequests handles GET /api/v1/mentor/requests
func (h *MentorshipRequestHandler) ListMentorRequests(c *gin.Context) {
	userID, ok := requireSession(c)
	if !ok {
		return
	}

	requests, err := h.ledger.ListForMentor(c.Request.Context(), userID)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MentorshipRequestsResponse{
		Requests: requests,
		Total:    len(requests),
	})
}

// Respond handles POST /api/v1/mentor/requests/:id/respond
func (h *MentorshipRequestHandler) Respond(c *gin.Context) {
	userID, ok := requireSession(c)
	if !ok {
		return
	}

	var payload models.RespondPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.ledger.Respond(c.Request.Context(), userID, c.Param("id"), *payload.Accept)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Accept handles POST /api/v1/mentor/requests/:id/accept
// Accepts and returns where the client should navigate next.
func (h *MentorshipRequestHandler) Accept(c *gin.Context) {
	userID, ok := requireSession(c)
	if !ok {
		return
	}

	result, err := h.engagement.AcceptAndLocateReview(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
