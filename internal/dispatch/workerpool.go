package dispatch

import (
	"context"
	"runtime"
	"sync"
)

// WorkerPool fans n children out across a bounded pool of goroutines,
// grounded on internal/pipeline/parallel.go's job/result channel
// pattern. Results are collected and returned in childIndex order
// regardless of completion order, preserving spec §5's ordering
// guarantee ("results in order"). Used for program_mode RHSEG when a
// section's children are independent (below the level where seam
// fixing needs to see every sibling at once).
type WorkerPool struct {
	// MaxWorkers bounds concurrency. 0 means runtime.NumCPU().
	MaxWorkers int
}

type job struct {
	index int
}

type jobResult struct {
	index  int
	result any
	err    error
}

// Run implements Dispatcher.
func (p WorkerPool) Run(ctx context.Context, n int, work Work) ([]any, error) {
	if n == 0 {
		return nil, nil
	}
	workers := p.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan job, n)
	results := make(chan jobResult, n)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				r, err := work(ctx, j.index)
				select {
				case results <- jobResult{index: j.index, result: r, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- job{index: i}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]any, n)
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
				cancel()
			}
			continue
		}
		out[r.index] = r.result
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
