// Package dispatch implements the RecurDispatcher abstraction the Tiler
// recurses through (spec §4.G step 2, §5, §9 "typed enum of requests
// with matching reply types"). The legacy MPI parallel_recur_requests /
// parallel_server pair is a message-passing state machine keyed by an
// integer request id; this rewrite keeps the core Tiler code agnostic
// to how a section's children actually run by handing it a Dispatcher
// interface instead, grounded on internal/pipeline/parallel.go's
// job/result channel worker pool.
package dispatch

import (
	"context"
	"errors"
)

// ErrDispatcherUnavailable is returned by Dispatcher implementations
// that document a transport without providing one (spec §1 designates
// MPI transport out of scope; see MPI below).
var ErrDispatcherUnavailable = errors.New("dispatch: dispatcher unavailable")

// Work is one child section's unit of recursion: given its index among
// siblings, it runs Tiler.Recur (or FirstMerge, at a leaf) and returns
// an opaque result (a *tiler.SectionResult in practice; Dispatcher does
// not need to know the concrete type).
type Work func(ctx context.Context, childIndex int) (any, error)

// Dispatcher runs n independent Work items and returns their results in
// childIndex order, or the first error encountered. Every cross-section
// call is synchronous from the Tiler's viewpoint: Run does not return
// until every child has completed (spec §5 "Suspension points").
type Dispatcher interface {
	Run(ctx context.Context, n int, work Work) ([]any, error)
}
