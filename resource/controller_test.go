package resource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_WorkerSlots(t *testing.T) {
	c := NewController(Config{MaxBackgroundWorkers: 2})

	require.NoError(t, c.AcquireWorker(context.Background()))
	require.NoError(t, c.AcquireWorker(context.Background()))
	assert.EqualValues(t, 2, c.Inflight())

	assert.False(t, c.TryAcquireWorker(), "third slot must not be available")

	c.ReleaseWorker()
	assert.True(t, c.TryAcquireWorker())

	c.ReleaseWorker()
	c.ReleaseWorker()
	assert.EqualValues(t, 0, c.Inflight())
}

func TestController_AcquireCanceled(t *testing.T) {
	c := NewController(Config{MaxBackgroundWorkers: 1})
	require.NoError(t, c.AcquireWorker(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.AcquireWorker(ctx))
}

func TestController_NilEnforcesNothing(t *testing.T) {
	var c *Controller
	assert.NoError(t, c.AcquireWorker(context.Background()))
	assert.True(t, c.TryAcquireWorker())
	assert.NotPanics(t, c.ReleaseWorker)
	assert.NoError(t, c.WaitIO(context.Background(), 1<<20))
}

func TestController_WaitIOSplitsLargeRequests(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 30})

	// Larger than burst; must split rather than fail.
	assert.NoError(t, c.WaitIO(context.Background(), (1<<30)+512))
}

func TestController_WaitIOUnlimited(t *testing.T) {
	c := NewController(Config{})
	assert.NoError(t, c.WaitIO(context.Background(), 1<<20))
}
