package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func double(ctx context.Context, i int) (any, error) {
	return i * 2, nil
}

func TestLocalRunPreservesOrder(t *testing.T) {
	out, err := Local{}.Run(context.Background(), 5, double)
	require.NoError(t, err)
	for i, v := range out {
		assert.Equal(t, i*2, v)
	}
}

func TestWorkerPoolRunPreservesOrder(t *testing.T) {
	out, err := WorkerPool{MaxWorkers: 3}.Run(context.Background(), 50, double)
	require.NoError(t, err)
	for i, v := range out {
		assert.Equal(t, i*2, v)
	}
}

func TestWorkerPoolRunPropagatesFirstError(t *testing.T) {
	boom := errors.New("boom")
	work := func(ctx context.Context, i int) (any, error) {
		if i == 3 {
			return nil, boom
		}
		return i, nil
	}
	_, err := WorkerPool{MaxWorkers: 2}.Run(context.Background(), 10, work)
	require.Error(t, err)
}

func TestMPIRunIsUnavailable(t *testing.T) {
	_, err := MPI{}.Run(context.Background(), 1, double)
	assert.ErrorIs(t, err, ErrDispatcherUnavailable)
}
