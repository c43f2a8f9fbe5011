package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, ""},
		{"not found", NotFoundError("review"), CodeNotFound},
		{"unavailable", UnavailableError("database", context.DeadlineExceeded), CodeUnavailable},
		{"already exists", AlreadyExistsError("mentor profile"), CodeAlreadyExists},
		{"capacity", CapacityExceededError("m1", 2, 2), CodeCapacityExceeded},
		{"invalid state", InvalidStateError("review", "closed"), CodeInvalidState},
		{"forbidden", ForbiddenError("not a party"), CodeForbidden},
		{"invalid input", InvalidInputError("maxMentees", "must be at least 1"), CodeInvalidInput},
		{"wrapped twice", fmt.Errorf("respond: %w", InvalidStateError("request", "accepted")), CodeInvalidState},
		{"unknown", fmt.Errorf("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestUnavailableErrorKeepsCause(t *testing.T) {
	err := UnavailableError("database", context.DeadlineExceeded)

	assert.True(t, Is(err, ErrUnavailable))
	assert.True(t, Is(err, context.DeadlineExceeded))
	assert.False(t, Is(err, ErrNotFound))
}

func TestForbiddenErrorWithoutReason(t *testing.T) {
	assert.Equal(t, ErrForbidden, ForbiddenError(""))
}

func TestSentinelRoundTripsCode(t *testing.T) {
	assert.Equal(t, ErrCapacityExceeded, Sentinel(CodeCapacityExceeded))
	assert.Equal(t, CodeForbidden, CodeOf(Sentinel(CodeForbidden)))
	assert.Equal(t, ErrInternal, Sentinel("SOMETHING_NEW"))
}
