package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRepeatTicksUntilStop(t *testing.T) {
	s := New(nil)
	var runs atomic.Int32
	s.Repeat("tick", 10*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})

	s.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	s.Stop()

	// One immediate run plus several ticks.
	assert.GreaterOrEqual(t, runs.Load(), int32(3))

	settled := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, runs.Load(), "no iterations after Stop")
}

func TestPanicInIterationDoesNotKillTask(t *testing.T) {
	s := New(nil)
	var runs atomic.Int32
	s.Repeat("flaky", 10*time.Millisecond, func(context.Context) {
		if runs.Add(1) == 1 {
			panic("boom")
		}
	})

	s.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, runs.Load(), int32(3), "task must keep ticking after a panic")
}

func TestShutdownHookRunsOnce(t *testing.T) {
	s := New(nil)
	var hookRuns atomic.Int32
	s.Repeat("tick", time.Hour, func(context.Context) {})
	s.OnShutdown(func(context.Context) {
		hookRuns.Add(1)
	})

	s.Start(context.Background())
	s.Stop()
	s.Stop() // second Stop is a no-op

	assert.Equal(t, int32(1), hookRuns.Load())
}

func TestShutdownHookPanicIsBestEffort(t *testing.T) {
	s := New(nil)
	s.OnShutdown(func(context.Context) {
		panic("hook boom")
	})
	var secondRan atomic.Bool
	s.OnShutdown(func(context.Context) {
		secondRan.Store(true)
	})

	s.Start(context.Background())
	s.Stop()

	assert.True(t, secondRan.Load(), "later hooks still run after a panicking hook")
}

func TestStartTwiceIsNoop(t *testing.T) {
	s := New(nil)
	var runs atomic.Int32
	s.Repeat("tick", time.Hour, func(context.Context) {
		runs.Add(1)
	})

	ctx := context.Background()
	s.Start(ctx)
	s.Start(ctx)
	assert.True(t, s.IsRunning())
	s.Stop()

	// Only the single immediate iteration from the first Start.
	assert.Equal(t, int32(1), runs.Load())
}
