package background

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerGo(t *testing.T) {
	r := NewRunner(2)
	var n atomic.Int32
	for i := 0; i < 10; i++ {
		r.Go("count", func(context.Context) error {
			n.Add(1)
			return nil
		})
	}
	require.NoError(t, r.Close(context.Background()))
	assert.Equal(t, int32(10), n.Load())
}

func TestRunnerAfter(t *testing.T) {
	r := NewRunner(1)
	done := make(chan time.Time, 1)
	start := time.Now()
	r.After(20*time.Millisecond, "delayed", func(context.Context) error {
		done <- time.Now()
		return nil
	})

	select {
	case at := <-done:
		assert.GreaterOrEqual(t, at.Sub(start), 20*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("delayed task never ran")
	}
	require.NoError(t, r.Close(context.Background()))
}

func TestRunnerCloseDropsPendingDelays(t *testing.T) {
	r := NewRunner(1)
	var ran atomic.Bool
	r.After(time.Hour, "later", func(context.Context) error {
		ran.Store(true)
		return nil
	})

	require.NoError(t, r.Close(context.Background()))
	assert.False(t, ran.Load())

	r.Go("after-close", func(context.Context) error {
		ran.Store(true)
		return nil
	})
	assert.False(t, ran.Load())
}

func TestRunnerRecoversPanicsAndErrors(t *testing.T) {
	r := NewRunner(1)
	r.Go("boom", func(context.Context) error { panic("boom") })
	r.Go("fail", func(context.Context) error { return errors.New("nope") })

	var ok atomic.Bool
	r.Go("ok", func(context.Context) error {
		ok.Store(true)
		return nil
	})
	require.NoError(t, r.Close(context.Background()))
	assert.True(t, ok.Load())
}

func TestRunnerCloseTimeoutCancelsTasks(t *testing.T) {
	r := NewRunner(1)
	started := make(chan struct{})
	r.Go("slow", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := r.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoError(t, r.Close(context.Background()), "second close is a no-op")
}
