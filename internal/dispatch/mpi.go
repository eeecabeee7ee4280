package dispatch

import "context"

// MPI documents where a real cross-process message-passing transport
// would plug in, mirroring the legacy parallel_recur_requests /
// parallel_server rank-to-rank protocol. MPI transport is explicitly out
// of scope for this engine (spec §1); Run always fails so a
// misconfigured program_mode=RHSEG-over-MPI request fails loudly rather
// than silently falling back to Local.
type MPI struct{}

// Run implements Dispatcher.
func (MPI) Run(ctx context.Context, n int, work Work) ([]any, error) {
	return nil, ErrDispatcherUnavailable
}
