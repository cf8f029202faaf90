package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshkol/cancensus-go/errors"
)

// ErrNilProcessor is returned when a pool is built without a processor.
var ErrNilProcessor = errors.New("worker: processor cannot be nil")

// Pool runs items of type T through a bounded set of workers. A Pool is
// built once and may execute many batches; each Run call blocks until its
// batch completes or ctx is cancelled.
type Pool[T any] struct {
	workers   int
	processor func(context.Context, T) error

	processed atomic.Int64
	failed    atomic.Int64

	metrics *poolMetrics
}

// Option configures a Pool.
type Option[T any] func(*Pool[T])

// WithMetrics registers prometheus instrumentation under prefix.
func WithMetrics[T any](reg prometheus.Registerer, prefix string) Option[T] {
	return func(p *Pool[T]) {
		if reg != nil {
			p.metrics = newPoolMetrics(reg, prefix)
		}
	}
}

// NewPool builds a pool of the given width. A non-positive width falls
// back to 4 workers.
func NewPool[T any](workers int, processor func(context.Context, T) error, opts ...Option[T]) (*Pool[T], error) {
	if processor == nil {
		return nil, ErrNilProcessor
	}
	if workers <= 0 {
		workers = 4
	}
	p := &Pool[T]{workers: workers, processor: processor}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run processes every item in the batch, at most `workers` at a time, and
// returns once all have been attempted. Item failures are counted but do
// not stop the batch; they are the processor's responsibility to record.
// Cancellation stops feeding new items and returns ctx.Err().
func (p *Pool[T]) Run(ctx context.Context, items []T) error {
	work := make(chan T)
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range work {
				start := time.Now()
				err := p.processor(ctx, item)
				p.processed.Add(1)
				if err != nil {
					p.failed.Add(1)
				}
				if p.metrics != nil {
					p.metrics.observe(time.Since(start), err)
				}
			}
		}()
	}

	var cancelled error
feed:
	for _, item := range items {
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		case work <- item:
		}
	}
	close(work)
	wg.Wait()
	return cancelled
}

// Stats reports lifetime counts across all Run calls.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Workers:   p.workers,
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
	}
}

// Stats is a snapshot of pool activity.
type Stats struct {
	Workers   int   `json:"workers"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
}

type poolMetrics struct {
	processed prometheus.Counter
	failed    prometheus.Counter
	duration  prometheus.Histogram
}

func newPoolMetrics(reg prometheus.Registerer, prefix string) *poolMetrics {
	m := &poolMetrics{
		processed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "cancensus",
			Subsystem:   "worker",
			Name:        "processed_total",
			Help:        "Items processed by the pool.",
			ConstLabels: prometheus.Labels{"pool": prefix},
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "cancensus",
			Subsystem:   "worker",
			Name:        "failed_total",
			Help:        "Items whose processor returned an error.",
			ConstLabels: prometheus.Labels{"pool": prefix},
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "cancensus",
			Subsystem:   "worker",
			Name:        "duration_seconds",
			Help:        "Per-item processing time.",
			ConstLabels: prometheus.Labels{"pool": prefix},
			Buckets:     []float64{0.01, 0.05, 0.25, 1, 5, 30},
		}),
	}
	reg.MustRegister(m.processed, m.failed, m.duration)
	return m
}

func (m *poolMetrics) observe(d time.Duration, err error) {
	m.processed.Inc()
	if err != nil {
		m.failed.Inc()
	}
	m.duration.Observe(d.Seconds())
}
