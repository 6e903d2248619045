package batch

import (
	"context"
	"sync"

	"github.com/adamwoolhether/imagedl/download"
)

// workFunc runs one batch entry.
type workFunc func(ctx context.Context) download.Result

// abortFunc builds the result of an entry that never ran.
type abortFunc func(err error) download.Result

// queue runs entries on at most cap(sem) goroutines at once. Every entry
// owns one slot of results, so no two goroutines write the same memory
// and the output order is the input order.
type queue struct {
	wg      sync.WaitGroup
	sem     chan struct{}
	results []download.Result
}

func newQueue(size, maxConcurrent int) *queue {
	return &queue{
		sem:     make(chan struct{}, maxConcurrent),
		results: make([]download.Result, size),
	}
}

// start launches fn for slot. If ctx ends before the entry gets a free
// worker, abort fills the slot instead.
func (q *queue) start(ctx context.Context, slot int, fn workFunc, abort abortFunc) {
	q.wg.Go(func() {
		select {
		case q.sem <- struct{}{}:
			defer func() {
				<-q.sem
			}()
		case <-ctx.Done():
			q.results[slot] = abort(ctx.Err())
			return
		}

		// select picks at random when a worker frees up after ctx ended.
		if err := ctx.Err(); err != nil {
			q.results[slot] = abort(err)
			return
		}

		q.results[slot] = fn(ctx)
	})
}

// wait blocks until every started entry has finished and returns the slots.
func (q *queue) wait() []download.Result {
	q.wg.Wait()
	return q.results
}
