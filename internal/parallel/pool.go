package parallel

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Result is the outcome of one submitted job.
type Result[T any] struct {
	Key      string
	Index    int // submission order
	Value    T
	Err      error
	Skipped  bool // never ran because the pool was cancelled
	Duration time.Duration
}

// Pool runs jobs with bounded concurrency.
type Pool[T any] struct {
	sem       *semaphore.Weighted // nil when unbounded
	wg        sync.WaitGroup
	mu        sync.Mutex
	submitted int
	results   []Result[T]
	failFast  bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewPool creates a pool. If maxWorkers is 0 every job runs at once. If
// failFast is true the pool is cancelled on the first error and jobs that
// have not started are skipped.
func NewPool[T any](ctx context.Context, maxWorkers int, failFast bool) *Pool[T] {
	ctx, cancel := context.WithCancel(ctx)
	p := &Pool[T]{
		failFast: failFast,
		ctx:      ctx,
		cancel:   cancel,
	}
	if maxWorkers > 0 {
		p.sem = semaphore.NewWeighted(int64(maxWorkers))
	}
	return p
}

// Submit queues fn under key. It blocks only while starting the goroutine;
// the worker waits for a free slot.
func (p *Pool[T]) Submit(key string, fn func(ctx context.Context) (T, error)) {
	p.mu.Lock()
	index := p.submitted
	p.submitted++
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		if p.sem != nil {
			if err := p.sem.Acquire(p.ctx, 1); err != nil {
				p.record(Result[T]{Key: key, Index: index, Err: err, Skipped: true})
				return
			}
			defer p.sem.Release(1)
		}
		if err := p.ctx.Err(); err != nil {
			p.record(Result[T]{Key: key, Index: index, Err: err, Skipped: true})
			return
		}

		start := time.Now()
		value, err := fn(p.ctx)
		p.record(Result[T]{
			Key:      key,
			Index:    index,
			Value:    value,
			Err:      err,
			Duration: time.Since(start),
		})
		if err != nil && p.failFast {
			p.cancel()
		}
	}()
}

func (p *Pool[T]) record(r Result[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, r)
}

// Wait blocks until every submitted job has finished or been skipped. It
// returns the results in submission order and the errors of the jobs that
// ran, each prefixed with its key.
func (p *Pool[T]) Wait() ([]Result[T], []error) {
	p.wg.Wait()
	p.cancel()

	results := p.Results()
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	var errs []error
	for _, r := range results {
		if r.Err != nil && !r.Skipped {
			errs = append(errs, fmt.Errorf("%s: %w", r.Key, r.Err))
		}
	}
	return results, errs
}

// Results returns a snapshot of the results recorded so far, in completion
// order. It is safe to call from multiple goroutines.
func (p *Pool[T]) Results() []Result[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	results := make([]Result[T], len(p.results))
	copy(results, p.results)
	return results
}

// Cancel stops jobs that have not started yet.
func (p *Pool[T]) Cancel() {
	p.cancel()
}
