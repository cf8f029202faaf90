package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshkol/cancensus-go/errors"
)

func TestNewPool_RequiresProcessor(t *testing.T) {
	_, err := NewPool[int](2, nil)
	assert.ErrorIs(t, err, ErrNilProcessor)
}

func TestRun_ProcessesEveryItem(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]bool{}
	p, err := NewPool(3, func(ctx context.Context, n int) error {
		mu.Lock()
		defer mu.Unlock()
		seen[n] = true
		return nil
	})
	require.NoError(t, err)

	items := []int{1, 2, 3, 4, 5, 6, 7}
	require.NoError(t, p.Run(context.Background(), items))
	assert.Len(t, seen, len(items))
	assert.Equal(t, int64(7), p.Stats().Processed)
}

func TestRun_BoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	p, err := NewPool(2, func(ctx context.Context, n int) error {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, p.Run(context.Background(), []int{1, 2, 3, 4, 5, 6}))
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_FailuresDoNotStopBatch(t *testing.T) {
	var calls atomic.Int32
	p, err := NewPool(2, func(ctx context.Context, n int) error {
		calls.Add(1)
		if n%2 == 0 {
			return errors.New("boom")
		}
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, p.Run(context.Background(), []int{1, 2, 3, 4}))
	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, int64(2), p.Stats().Failed)
}

func TestRun_CancellationStopsFeeding(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	p, err := NewPool(1, func(ctx context.Context, n int) error {
		if calls.Add(1) == 1 {
			cancel()
		}
		return nil
	})
	require.NoError(t, err)

	items := make([]int, 100)
	err = p.Run(ctx, items)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, calls.Load(), int32(100))
}

func TestWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPool(2, func(ctx context.Context, n int) error { return nil },
		WithMetrics[int](reg, "fetch"))
	require.NoError(t, err)
	require.NoError(t, p.Run(context.Background(), []int{1, 2, 3}))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
