package dispatch

import "context"

// Local runs every child section serially, in index order, on the
// calling goroutine. The driver selects it when dispatch.kind is
// "local"; the default kind selects WorkerPool. Under program_mode
// HSEG/HSWO no dispatcher runs, since those modes never recurse (spec
// §4.G "program_mode").
type Local struct{}

// Run implements Dispatcher.
func (Local) Run(ctx context.Context, n int, work Work) ([]any, error) {
	results := make([]any, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := work(ctx, i)
		if err != nil {
			return nil, err
		}
		results[i] = r
	}
	return results, nil
}
