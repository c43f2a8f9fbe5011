package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_PassesResultThrough(t *testing.T) {
	cb := NewCircuitBreaker(DefaultConfig("test"))

	got, err := Execute(cb, func() (string, error) { return "https://example.com/file.pdf", nil })

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/file.pdf", got)
}

func TestExecute_OpenBreakerIsUnavailable(t *testing.T) {
	cfg := DefaultConfig("storage")
	cfg.Timeout = time.Minute
	cb := NewCircuitBreaker(cfg)
	boom := errors.New("connection refused")

	for i := 0; i < 3; i++ {
		_, err := Execute(cb, func() (int, error) { return 0, boom })
		assert.ErrorIs(t, err, boom)
	}
	require.True(t, IsCircuitOpen(cb))

	_, err := Execute(cb, func() (int, error) { return 1, nil })
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, "open", GetState(cb))
}

func TestExecute_InvalidInputDoesNotTrip(t *testing.T) {
	cb := NewCircuitBreaker(DefaultConfig("storage"))

	for i := 0; i < 5; i++ {
		_, _ = Execute(cb, func() (int, error) {
			return 0, apperrors.InvalidInputError("contentType", "unsupported")
		})
	}

	assert.False(t, IsCircuitOpen(cb))
}
