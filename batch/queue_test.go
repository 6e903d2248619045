package batch

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adamwoolhether/imagedl/download"
	"github.com/adamwoolhether/imagedl/errs"
)

func noAbort(t *testing.T) abortFunc {
	return func(err error) download.Result {
		t.Errorf("unexpected abort: %v", err)
		return download.Result{}
	}
}

func TestQueue_ConcurrencyLimit(t *testing.T) {
	const limit = 2
	const total = 5

	q := newQueue(total, limit)

	var running atomic.Int32
	var maxRunning atomic.Int32
	barrier := make(chan struct{})

	for i := range total {
		q.start(t.Context(), i, func(ctx context.Context) download.Result {
			cur := running.Add(1)
			for {
				old := maxRunning.Load()
				if cur <= old || maxRunning.CompareAndSwap(old, cur) {
					break
				}
			}
			<-barrier
			running.Add(-1)
			return download.Result{Success: true}
		}, noAbort(t))
	}

	// Let the workers pile up on the semaphore.
	time.Sleep(50 * time.Millisecond)
	close(barrier)

	results := q.wait()
	if got := fold(results); got.Succeeded != total {
		t.Errorf("exp %d successes, got %d", total, got.Succeeded)
	}

	if peak := maxRunning.Load(); peak > limit {
		t.Errorf("max concurrent was %d, want <= %d", peak, limit)
	}
}

func TestQueue_SlotsKeepInputOrder(t *testing.T) {
	const total = 6

	q := newQueue(total, total)
	for i := range total {
		q.start(t.Context(), i, func(ctx context.Context) download.Result {
			// Later slots finish first.
			time.Sleep(time.Duration(total-i) * 5 * time.Millisecond)
			return download.Result{Destination: strconv.Itoa(i)}
		}, noAbort(t))
	}

	for i, r := range q.wait() {
		if r.Destination != strconv.Itoa(i) {
			t.Errorf("slot %d holds result %q", i, r.Destination)
		}
	}
}

func TestQueue_ContextCancellationOnSemaphore(t *testing.T) {
	q := newQueue(2, 1)

	release := make(chan struct{})
	q.start(t.Context(), 0, func(ctx context.Context) download.Result {
		<-release
		return download.Result{Success: true}
	}, noAbort(t))

	// Give the first entry time to take the only worker.
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	e := entry{url: "https://example.com/late.png", dest: "/out"}
	q.start(ctx, 1, func(ctx context.Context) download.Result {
		t.Error("work function should not have run")
		return download.Result{}
	}, func(err error) download.Result {
		return aborted(e, err)
	})

	close(release)

	results := q.wait()
	if !results[0].Success {
		t.Error("exp first entry to succeed")
	}
	if results[1].Success || results[1].Kind != errs.Transport {
		t.Errorf("exp aborted entry to fail as transport error, got %+v", results[1])
	}
	if results[1].Metadata.URL != e.url {
		t.Errorf("exp aborted result to carry its url, got %q", results[1].Metadata.URL)
	}
	if results[1].Metadata.DownloadTime == "" {
		t.Error("exp aborted result to carry a download time")
	}
}

func TestQueue_CancelledContextNeverRuns(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var ran atomic.Int32
	for range 200 {
		q := newQueue(1, 1)
		q.start(ctx, 0, func(ctx context.Context) download.Result {
			ran.Add(1)
			return download.Result{Success: true}
		}, func(err error) download.Result {
			return aborted(entry{url: "https://example.com/a.png", dest: "/out"}, err)
		})

		if res := q.wait()[0]; res.Kind != errs.Transport {
			t.Fatalf("exp aborted entry, got %+v", res)
		}
	}

	if n := ran.Load(); n != 0 {
		t.Errorf("exp no work on a cancelled context, ran %d times", n)
	}
}

func TestFold(t *testing.T) {
	res := fold([]download.Result{{Success: true}, {}, {Success: true}, {}})

	if res.Total != 4 || res.Succeeded != 2 || res.Failed != 2 {
		t.Errorf("exp 4/2/2, got %d/%d/%d", res.Total, res.Succeeded, res.Failed)
	}
	if res.Total != res.Succeeded+res.Failed || res.Total != len(res.Results) {
		t.Error("totals do not add up")
	}
}
