package census

import (
	"context"

	"github.com/dshkol/cancensus-go/errors"
	"github.com/dshkol/cancensus-go/pkg/worker"
)

// BatchItem pairs one spec in a batch with its outcome.
type BatchItem struct {
	Spec   RequestSpec
	Result *Result
	Err    error
}

// FetchMany fetches every spec with at most concurrency requests in
// flight. One spec failing does not abort the rest; each outcome lands in
// its BatchItem. The returned error is non-nil only when ctx was cancelled
// before the batch finished, in which case unattempted items carry the
// cancellation error.
func (c *Client) FetchMany(ctx context.Context, specs []RequestSpec, concurrency int) ([]BatchItem, error) {
	items := make([]BatchItem, len(specs))
	for i := range specs {
		items[i].Spec = specs[i]
	}

	pool, err := worker.NewPool(concurrency, func(ctx context.Context, it *BatchItem) error {
		it.Result, it.Err = c.Fetch(ctx, it.Spec)
		return it.Err
	})
	if err != nil {
		return nil, errors.Wrap(err, "census", "FetchMany", "build pool")
	}

	ptrs := make([]*BatchItem, len(items))
	for i := range items {
		ptrs[i] = &items[i]
	}
	runErr := pool.Run(ctx, ptrs)
	if runErr != nil {
		for i := range items {
			if items[i].Result == nil && items[i].Err == nil {
				items[i].Err = runErr
			}
		}
		return items, errors.Wrap(runErr, "census", "FetchMany", "batch interrupted")
	}
	return items, nil
}
