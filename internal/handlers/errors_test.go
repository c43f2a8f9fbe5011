package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondAppError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "not found",
			err:      apperrors.NotFoundError("resume review"),
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"resume review not found","code":"NOT_FOUND"}`,
		},
		{
			name:     "capacity",
			err:      apperrors.CapacityExceededError("m1", 2, 2),
			wantCode: http.StatusConflict,
		},
		{
			name:     "invalid state",
			err:      apperrors.InvalidStateError("resume review", "closed"),
			wantCode: http.StatusConflict,
		},
		{
			name:     "forbidden",
			err:      apperrors.ForbiddenError("not a party to this review"),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "unavailable",
			err:      apperrors.UnavailableError("database", errors.New("dial tcp")),
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:     "unclassified error is hidden",
			err:      errors.New("pq: secret detail"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Internal server error","code":"INTERNAL"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondAppError(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
			assert.Len(t, c.Errors, 1)
		})
	}
}
