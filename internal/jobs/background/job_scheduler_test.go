package background

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingReaper struct {
	calls   atomic.Int32
	maxIdle atomic.Int64
}

func (r *countingReaper) ReapIdle(maxIdle time.Duration) int {
	r.calls.Add(1)
	r.maxIdle.Store(int64(maxIdle))
	return 1
}

func TestJobScheduler_RunsPoolJanitor(t *testing.T) {
	reaper := &countingReaper{}
	js, err := NewJobScheduler(reaper, 20*time.Millisecond, 10*time.Minute, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{"tenant-pool-janitor"}, js.JobNames())

	js.Start()
	require.Eventually(t, func() bool { return reaper.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, js.Stop())

	assert.Equal(t, int64(10*time.Minute), reaper.maxIdle.Load())
}

func TestJobScheduler_RejectsInvalidInterval(t *testing.T) {
	_, err := NewJobScheduler(&countingReaper{}, 0, time.Minute, zap.NewNop())
	assert.Error(t, err)
}
