package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesChain(t *testing.T) {
	base := fmt.Errorf("%w: status 502", ErrTransientNetwork)
	wrapped := Wrap(base, "fetching post")

	assert.True(t, Is(wrapped, ErrTransientNetwork))
	assert.Contains(t, wrapped.Error(), "fetching post")
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "nothing"))
	assert.NoError(t, WrapWithCode(nil, "X", "nothing"))
}

func TestGetCode(t *testing.T) {
	err := WrapWithCode(ErrRateLimited, "HTTP_429", "listing page")
	assert.Equal(t, "HTTP_429", GetCode(err))
	assert.Empty(t, GetCode(ErrRateLimited))
}

func TestMalformedInputNamesToken(t *testing.T) {
	err := MalformedInput("10-x", "bad range")
	assert.True(t, Is(err, ErrMalformedInput))
	assert.Contains(t, err.Error(), `"10-x"`)
	assert.Contains(t, err.Error(), "bad range")
}

func TestIsPostNotFound(t *testing.T) {
	assert.True(t, IsPostNotFound(ErrPostNotFound))
	assert.True(t, IsPostNotFound(fmt.Errorf("%w: /api/v1/x", ErrPostNotFound)))
	assert.False(t, IsPostNotFound(ErrRateLimited))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimited))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", ErrTransientNetwork)))
	assert.False(t, IsRetryable(ErrPostNotFound))
	assert.False(t, IsRetryable(ErrIO))
	assert.False(t, IsRetryable(nil))
}
