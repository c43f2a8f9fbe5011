package handlers

import (
	"net/http"

	"github.com/getmentor/mentorship-api/internal/middleware"
	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/gin-gonic/gin"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin context
func respondError(c *gin.Context, status int, code apperrors.Code, message string, err error) {
	attachError(c, err)
	middleware.SetErrorCode(c, string(code))
	c.JSON(status, gin.H{"error": message, "code": code})
}

// respondErrorWithDetails sends an error response with an additional details field.
func respondErrorWithDetails(c *gin.Context, status int, code apperrors.Code, message string, details any, err error) {
	attachError(c, err)
	middleware.SetErrorCode(c, string(code))
	c.JSON(status, gin.H{"error": message, "code": code, "details": details})
}

// statusForCode maps the error taxonomy to HTTP statuses
func statusForCode(code apperrors.Code) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.CodeAlreadyExists, apperrors.CodeCapacityExceeded, apperrors.CodeInvalidState:
		return http.StatusConflict
	case apperrors.CodeForbidden:
		return http.StatusForbidden
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondAppError classifies a service error. Internal errors never leak
// their message to the client.
func respondAppError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	status := statusForCode(code)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	respondError(c, status, code, message, err)
}

// respondBindError reports a request body that failed to bind or validate
func respondBindError(c *gin.Context, err error) {
	if details := ParseValidationErrors(err); len(details) > 0 {
		respondErrorWithDetails(c, http.StatusBadRequest, apperrors.CodeInvalidInput, "Validation failed", details, err)
		return
	}
	respondError(c, http.StatusBadRequest, apperrors.CodeInvalidInput, "Invalid request body", err)
}

// requireSession is used by handlers mounted behind SessionMiddleware
func requireSession(c *gin.Context) (string, bool) {
	session, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, apperrors.CodeUnauthorized, "Unauthorized", err)
		return "", false
	}
	return session.UserID, true
}
