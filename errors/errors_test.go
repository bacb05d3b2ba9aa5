package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassString(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorMisuse, "misuse"},
		{ErrorClass(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.class.String())
	}
}

func TestIsMisuse(t *testing.T) {
	assert.True(t, IsMisuse(ErrAlreadyConnected))
	assert.True(t, IsMisuse(ErrAlreadyShutdown))
	assert.True(t, IsMisuse(ErrShutdownInProgress))
	assert.True(t, IsMisuse(ErrReconnectBeforeConnect))
	assert.True(t, IsMisuse(fmt.Errorf("connect: %w", ErrAlreadyConnected)))
	assert.False(t, IsMisuse(ErrConnectionLost))
	assert.False(t, IsMisuse(nil))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(ErrConnectionLost))
	assert.True(t, IsTransient(ErrConnectionTimeout))
	assert.True(t, IsTransient(ErrUnreachableEndpoint))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(errors.New("dial tcp: connection refused")))
	assert.False(t, IsTransient(ErrWriteFailed))
	assert.False(t, IsTransient(nil))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(ErrWriteFailed))
	assert.True(t, IsFatal(ErrInvalidConfig))
	assert.False(t, IsFatal(ErrConnectionLost))
	assert.False(t, IsFatal(nil))
}

func TestWrapPreservesSentinel(t *testing.T) {
	err := WrapTransient(ErrConnectionLost, "Bot", "readLine", "read next line")

	assert.True(t, errors.Is(err, ErrConnectionLost))
	assert.Contains(t, err.Error(), "Bot.readLine: read next line failed")

	var ce *ClassifiedError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrorTransient, ce.Class)
	assert.Equal(t, "Bot", ce.Component)
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "c", "m", "a"))
	assert.NoError(t, WrapTransient(nil, "c", "m", "a"))
	assert.NoError(t, WrapFatal(nil, "c", "m", "a"))
	assert.NoError(t, WrapInvalid(nil, "c", "m", "a"))
	assert.NoError(t, WrapMisuse(nil, "c", "m", "a"))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ErrorMisuse, Classify(ErrAlreadyShutdown))
	assert.Equal(t, ErrorFatal, Classify(ErrWriteFailed))
	assert.Equal(t, ErrorInvalid, Classify(ErrMalformedLine))
	assert.Equal(t, ErrorTransient, Classify(errors.New("some network blip")))

	wrapped := WrapMisuse(errors.New("boom"), "Bot", "Shutdown", "check state")
	assert.Equal(t, ErrorMisuse, Classify(wrapped))
}
