package metrics

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAreRegisteredAndIncrementable(t *testing.T) {
	MergesApplied.WithLabelValues("nearest_neighbor").Inc()
	LevelsEmitted.Inc()
	SeamMergesForced.Inc()
	HeapRebuilds.Inc()
	MinNpixels.Set(42)
	TilesInFlight.Set(3)
	LevelRegionCount.Observe(1000)
	LevelDuration.Observe(0.5)
}

func TestServerServesMetricsEndpoint(t *testing.T) {
	srv := NewServer("127.0.0.1:0")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- srv.ListenAndServe(ctx)
	}()

	// Give the listener a moment to bind before exercising shutdown.
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down in time")
	}
	_ = http.StatusOK
	assert.True(t, true)
}
