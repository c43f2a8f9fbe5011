package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/getmentor/mentorship-api/internal/models"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/getmentor/mentorship-api/pkg/httpclient"
)

// APIError is a non-2xx response decoded from the {"error","code"} body.
// It unwraps to the matching pkg/errors sentinel so callers can use errors.Is.
type APIError struct {
	StatusCode int
	Code       apperrors.Code
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return apperrors.Sentinel(e.Code)
}

// Client is a typed client for the /api/v1 surface, acting as one signed-in user
type Client struct {
	http    httpclient.Client
	baseURL string
	token   string
}

// New creates a client. baseURL is the server root, e.g. https://api.example.com
func New(httpClient httpclient.Client, baseURL, token string) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		token:   token,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.UnavailableError("mentorship api", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Code = apperrors.Code(body.Code)
		apiErr.Message = body.Error
	}
	if apiErr.Code == "" {
		apiErr.Code = codeForStatus(resp.StatusCode)
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// codeForStatus covers responses that did not come from the API itself (proxies, 502s)
func codeForStatus(status int) apperrors.Code {
	switch status {
	case http.StatusNotFound:
		return apperrors.CodeNotFound
	case http.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case http.StatusForbidden:
		return apperrors.CodeForbidden
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return apperrors.CodeInvalidInput
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return apperrors.CodeUnavailable
	default:
		return apperrors.CodeInternal
	}
}

func escape(id string) string {
	return url.PathEscape(id)
}

// GetProfile returns the mentor's profile, or nil when the mentor has none
func (c *Client) GetProfile(ctx context.Context, mentorID string) (*models.MentorProfile, error) {
	var resp struct {
		Profile *models.MentorProfile `json:"profile"`
	}
	err := c.do(ctx, http.MethodGet, "/mentors/"+escape(mentorID)+"/profile", nil, &resp)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return resp.Profile, nil
}

func (c *Client) GetAvailability(ctx context.Context, mentorID string) (*models.Availability, error) {
	var availability models.Availability
	if err := c.do(ctx, http.MethodGet, "/mentors/"+escape(mentorID)+"/availability", nil, &availability); err != nil {
		return nil, err
	}
	return &availability, nil
}

// CreateRequest asks mentorID for mentorship as the signed-in user
func (c *Client) CreateRequest(ctx context.Context, payload models.CreateMentorshipRequest) (*models.MentorshipRequest, error) {
	var request models.MentorshipRequest
	if err := c.do(ctx, http.MethodPost, "/mentorship-requests", payload, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (c *Client) GetRequest(ctx context.Context, requestID string) (*models.MentorshipRequest, error) {
	var request models.MentorshipRequest
	if err := c.do(ctx, http.MethodGet, "/mentorship-requests/"+escape(requestID), nil, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (c *Client) ListMenteeEngagements(ctx context.Context) ([]*models.MentorshipDetails, error) {
	var resp models.MentorshipDetailsResponse
	if err := c.do(ctx, http.MethodGet, "/mentee/engagements", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Engagements, nil
}

func (c *Client) ListMentorRequests(ctx context.Context) ([]*models.MentorshipRequest, error) {
	var resp models.MentorshipRequestsResponse
	if err := c.do(ctx, http.MethodGet, "/mentor/requests", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Requests, nil
}

// Respond accepts or rejects a pending request addressed to the signed-in mentor
func (c *Client) Respond(ctx context.Context, requestID string, accept bool) (*models.RespondResult, error) {
	var result models.RespondResult
	payload := models.RespondPayload{Accept: &accept}
	if err := c.do(ctx, http.MethodPost, "/mentor/requests/"+escape(requestID)+"/respond", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Accept runs the orchestrated accept and returns where to navigate next
func (c *Client) Accept(ctx context.Context, requestID string) (*models.AcceptResult, error) {
	var result models.AcceptResult
	if err := c.do(ctx, http.MethodPost, "/mentor/requests/"+escape(requestID)+"/accept", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetReview(ctx context.Context, reviewID string) (*models.ReviewView, error) {
	var view models.ReviewView
	if err := c.do(ctx, http.MethodGet, "/reviews/"+escape(reviewID), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// GetFileURL returns the review's file URL; ok is false when nothing was uploaded
func (c *Client) GetFileURL(ctx context.Context, reviewID string) (fileURL string, ok bool, err error) {
	var resp models.FileURLResponse
	if err := c.do(ctx, http.MethodGet, "/reviews/"+escape(reviewID)+"/file", nil, &resp); err != nil {
		return "", false, err
	}
	if resp.FileURL == nil {
		return "", false, nil
	}
	return *resp.FileURL, true, nil
}

// SetFile uploads a base64 encoded resume
func (c *Client) SetFile(ctx context.Context, reviewID string, payload models.SetReviewFileRequest) (*models.ResumeReview, error) {
	var review models.ResumeReview
	if err := c.do(ctx, http.MethodPut, "/reviews/"+escape(reviewID)+"/file", payload, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (c *Client) SetFeedback(ctx context.Context, reviewID, feedback string) (*models.ResumeReview, error) {
	var review models.ResumeReview
	payload := models.SetFeedbackRequest{Feedback: feedback}
	if err := c.do(ctx, http.MethodPut, "/reviews/"+escape(reviewID)+"/feedback", payload, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (c *Client) Complete(ctx context.Context, reviewID string) (*models.ResumeReview, error) {
	var review models.ResumeReview
	if err := c.do(ctx, http.MethodPost, "/reviews/"+escape(reviewID)+"/complete", nil, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (c *Client) Close(ctx context.Context, reviewID string) (*models.ResumeReview, error) {
	var review models.ResumeReview
	if err := c.do(ctx, http.MethodPost, "/reviews/"+escape(reviewID)+"/close", nil, &review); err != nil {
		return nil, err
	}
	return &review, nil
}
