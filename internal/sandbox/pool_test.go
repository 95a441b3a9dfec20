package sandbox

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolAcquireRelease(t *testing.T) {
	pool, err := NewPool(DefaultConfig(), 2)
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	rt, err := pool.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pool.Stats().InUse)

	result, err := rt.Evaluate(ctx, "42", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), result.Value)

	require.NoError(t, pool.Release(rt))
	assert.Equal(t, 2, pool.Stats().Available)
}

func TestPoolEvaluateReuse(t *testing.T) {
	pool, err := NewPool(DefaultConfig(), 2)
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		result, err := pool.Evaluate(ctx, "Math.sqrt(16)", nil)
		require.NoError(t, err, "iteration %d", i)
		assert.EqualValues(t, 4, result.Value)
	}
}

func TestPoolConcurrent(t *testing.T) {
	pool, err := NewPool(DefaultConfig(), 3)
	require.NoError(t, err)
	defer pool.Close()

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := pool.Evaluate(context.Background(), "() => document.title", &Page{Title: "t"})
			assert.NoError(t, err)
			if result != nil {
				assert.Equal(t, "t", result.Value)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, pool.Stats().Available)
}

func TestPoolAcquireTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AcquireTimeout = 20 * time.Millisecond

	pool, err := NewPool(cfg, 1)
	require.NoError(t, err)
	defer pool.Close()

	rt, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer pool.Release(rt)

	_, err = pool.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrAcquireTimeout)
}

func TestPoolClosed(t *testing.T) {
	pool, err := NewPool(DefaultConfig(), 1)
	require.NoError(t, err)

	require.NoError(t, pool.Close())
	require.NoError(t, pool.Close())
	assert.True(t, pool.Stats().Closed)

	_, err = pool.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)

	_, err = pool.Evaluate(context.Background(), "1", nil)
	assert.ErrorIs(t, err, ErrPoolClosed)
}
