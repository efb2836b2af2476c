package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWithHint(t *testing.T) {
	err := WithHint(New("backend refused connection"), "start the search backend first")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "start the search backend first", hints[0])
	assert.Equal(t, "backend refused connection", err.Error())
}

func TestNewInvalidRequestError(t *testing.T) {
	err := NewInvalidRequestError("delay must be >= 1, got %d", 0)

	assert.True(t, IsInvalidRequestError(err))
	assert.False(t, IsServiceUnavailableError(err))
	assert.Contains(t, err.Error(), "delay must be >= 1, got 0")
}

func TestWrapServiceUnavailable(t *testing.T) {
	cause := fmt.Errorf("dial tcp 127.0.0.1:8080: connect: connection refused")
	err := WrapServiceUnavailable(cause, "fetch dataset")

	assert.True(t, IsServiceUnavailableError(err))
	assert.Contains(t, err.Error(), "fetch dataset")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNilHelpers(t *testing.T) {
	assert.False(t, IsInvalidRequestError(nil))
	assert.False(t, IsServiceUnavailableError(nil))
}
