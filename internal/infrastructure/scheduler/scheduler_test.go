package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (c *countingSweeper) Sweep(context.Context) int {
	c.calls.Add(1)
	return 0
}

func TestTaskValidation(t *testing.T) {
	s := New(nil)
	assert.ErrorIs(t, s.Register(Task{Interval: time.Second, Run: func(context.Context) error { return nil }}), ErrInvalidTask)
	assert.ErrorIs(t, s.Register(Task{Name: "x", Interval: time.Second}), ErrInvalidTask)
	assert.ErrorIs(t, s.Register(Task{Name: "x", Run: func(context.Context) error { return nil }}), ErrInvalidTask)
}

func TestScheduler_RunsCartSweep(t *testing.T) {
	sweeper := &countingSweeper{}
	s := New(zap.NewNop())
	require.NoError(t, s.Register(CartSweepTask(sweeper, 10*time.Millisecond)))

	s.Start(context.Background())
	s.Start(context.Background())
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())

	after := sweeper.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, sweeper.calls.Load())
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	assert.NoError(t, New(nil).Stop(context.Background()))
}

func TestScheduler_FailuresAndPanicsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := New(zap.New(core))

	var panicked atomic.Bool
	require.NoError(t, s.Register(Task{
		Name:     "failing",
		Interval: 5 * time.Millisecond,
		Run:      func(context.Context) error { return errors.New("boom") },
	}))
	require.NoError(t, s.Register(Task{
		Name:     "panicking",
		Interval: 5 * time.Millisecond,
		Run: func(context.Context) error {
			panicked.Store(true)
			panic("bad task")
		},
	}))

	s.Start(context.Background())
	assert.Eventually(t, func() bool {
		return logs.FilterMessage("Scheduled task failed").Len() > 0 &&
			logs.FilterMessage("Scheduled task panicked").Len() > 0
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, panicked.Load())
}

func TestCartSweepTask_DefaultInterval(t *testing.T) {
	task := CartSweepTask(&countingSweeper{}, 0)
	assert.Equal(t, DefaultSweepInterval, task.Interval)
	assert.Equal(t, "cart-sweep", task.Name)
}
