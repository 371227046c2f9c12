package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryError(t *testing.T) {
	originalErr := errors.New("temporary failure")
	delay := 5 * time.Second
	wrapped := RetryAfter(delay, originalErr)

	var retryErr *RetryError
	assert.True(t, errors.As(wrapped, &retryErr))
	assert.Equal(t, originalErr, retryErr.Unwrap())
	assert.Equal(t, delay, retryErr.Delay)
	assert.Nil(t, retryErr.At)
	assert.Contains(t, retryErr.Error(), "retry after")
	assert.Contains(t, retryErr.Error(), "5s")
}

func TestRetryError_At(t *testing.T) {
	originalErr := errors.New("temporary failure")
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	wrapped := RetryAt(at, originalErr)

	var retryErr *RetryError
	assert.True(t, errors.As(wrapped, &retryErr))
	assert.NotNil(t, retryErr.At)
	assert.Equal(t, at, *retryErr.At)
	assert.Contains(t, retryErr.Error(), "retry at")
}

func TestFailError(t *testing.T) {
	originalErr := errors.New("permanent failure")
	wrapped := Fail(originalErr)

	var failErr *FailError
	assert.True(t, errors.As(wrapped, &failErr))
	assert.Equal(t, originalErr, failErr.Unwrap())
	assert.Contains(t, failErr.Error(), "permanent failure")
}

func TestPayloadError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &PayloadError{ID: 42, Err: cause}

	var payloadErr *PayloadError
	assert.True(t, errors.As(error(err), &payloadErr))
	assert.Equal(t, int64(42), payloadErr.ID)
	assert.Equal(t, cause, payloadErr.Unwrap())
	assert.Contains(t, err.Error(), "42")
}

func TestErrorVariables(t *testing.T) {
	assert.NotNil(t, ErrInvalidQueueName)
	assert.NotNil(t, ErrQueueNameTooLong)
	assert.NotNil(t, ErrInvalidClass)
	assert.NotNil(t, ErrClassTooLong)
	assert.NotNil(t, ErrContentTooLarge)
	assert.NotNil(t, ErrNotFound)
	assert.NotNil(t, ErrStale)

	assert.Contains(t, ErrStale.Error(), "stale")
	assert.Contains(t, ErrNotFound.Error(), "not found")
}
