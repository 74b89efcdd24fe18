package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryOptions {
	return RetryOptions{
		MaxElapsedTime:  time.Second,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		MaxRetries:      3,
	}
}

func TestWithRetryEventuallySucceeds(t *testing.T) {
	calls := 0
	got, err := WithRetry(context.Background(), func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("temporary")
		}
		return "ok", nil
	}, fastRetry())

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestWithRetryPermanentStops(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), func() (int, error) {
		calls++
		return 0, Permanent(errors.New("bad request"))
	}, fastRetry())

	assert.EqualError(t, err, "bad request")
	assert.Equal(t, 1, calls)
}

func TestWithRetryGivesUp(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), func() (int, error) {
		calls++
		return 0, errors.New("down")
	}, fastRetry())

	assert.Error(t, err)
	assert.Equal(t, 4, calls)
}
