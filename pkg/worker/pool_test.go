package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolProcessesAllWork(t *testing.T) {
	var processed atomic.Int64
	pool := NewPool(4, 100, func(_ context.Context, _ int) error {
		processed.Add(1)
		return nil
	})

	require.NoError(t, pool.Start(context.Background()))
	for i := 0; i < 50; i++ {
		require.NoError(t, pool.Submit(i))
	}
	require.NoError(t, pool.Stop(5*time.Second))

	assert.Equal(t, int64(50), processed.Load())
	stats := pool.Stats()
	assert.Equal(t, int64(50), stats.Submitted)
	assert.Equal(t, int64(50), stats.Processed)
	assert.Equal(t, int64(0), stats.Failed)
}

func TestPoolLifecycleMisuse(t *testing.T) {
	pool := NewPool(1, 1, func(_ context.Context, _ int) error { return nil })

	assert.ErrorIs(t, pool.Submit(1), ErrNotStarted)

	require.NoError(t, pool.Start(context.Background()))
	assert.ErrorIs(t, pool.Start(context.Background()), ErrAlreadyStarted)

	require.NoError(t, pool.Stop(time.Second))
	assert.ErrorIs(t, pool.Submit(1), ErrAlreadyStopped)
	assert.ErrorIs(t, pool.Start(context.Background()), ErrAlreadyStopped)
}

func TestPoolQueueFull(t *testing.T) {
	block := make(chan struct{})
	pool := NewPool(1, 1, func(_ context.Context, _ int) error {
		<-block
		return nil
	})
	require.NoError(t, pool.Start(context.Background()))

	// First fills the worker, second fills the queue
	require.NoError(t, pool.Submit(1))
	// Give the worker time to pick up the first item
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, pool.Submit(2))

	err := pool.Submit(3)
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, int64(1), pool.Stats().Dropped)

	close(block)
	require.NoError(t, pool.Stop(time.Second))
}

func TestPoolSubmitRacingStop(t *testing.T) {
	for i := 0; i < 200; i++ {
		pool := NewPool(2, 4, func(_ context.Context, _ int) error { return nil })
		require.NoError(t, pool.Start(context.Background()))

		var wg sync.WaitGroup
		for s := 0; s < 8; s++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for n := 0; n < 20; n++ {
					switch err := pool.Submit(n); {
					case err == nil, errors.Is(err, ErrQueueFull):
					default:
						assert.ErrorIs(t, err, ErrAlreadyStopped)
						return
					}
				}
			}()
		}
		require.NoError(t, pool.Stop(time.Second))
		wg.Wait()
	}
}

func TestPoolRecoversPanic(t *testing.T) {
	pool := NewPool(1, 10, func(_ context.Context, n int) error {
		if n == 13 {
			panic("unlucky")
		}
		return nil
	})
	require.NoError(t, pool.Start(context.Background()))

	require.NoError(t, pool.Submit(13))
	require.NoError(t, pool.Submit(1))
	require.NoError(t, pool.Stop(time.Second))

	stats := pool.Stats()
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.Processed)
}

func TestPoolCountsProcessorErrors(t *testing.T) {
	pool := NewPool(2, 10, func(_ context.Context, n int) error {
		if n%2 == 0 {
			return errors.New("even numbers rejected")
		}
		return nil
	})
	require.NoError(t, pool.Start(context.Background()))

	for i := 0; i < 10; i++ {
		require.NoError(t, pool.Submit(i))
	}
	require.NoError(t, pool.Stop(time.Second))

	stats := pool.Stats()
	assert.Equal(t, int64(5), stats.Failed)
	assert.Equal(t, int64(5), stats.Processed)
}
