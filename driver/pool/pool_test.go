// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package pool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"

	"github.com/tochemey/supervise/actor"
	gerrors "github.com/tochemey/supervise/errors"
	"github.com/tochemey/supervise/log"
)

// counter counts Process calls and optionally blocks until released
type counter struct {
	calls *atomic.Int64
	gate  chan struct{}
}

func newCounter() *counter {
	return &counter{calls: atomic.NewInt64(0)}
}

func (c *counter) Process() {
	c.calls.Inc()
	if c.gate != nil {
		<-c.gate
	}
}

// worker is a nested supervisor spawning its children once started
type worker struct {
	actor.Supervisor
	children []actor.Actor
}

func (w *worker) OnStart() {
	for _, child := range w.children {
		if _, err := w.Spawn(child); err != nil {
			w.Logger().Error(err)
		}
	}
}

type idle struct {
	actor.Base
}

func newExecutor(t *testing.T, opts ...Option) *Executor {
	t.Helper()
	executor, err := NewExecutor(append([]Option{WithLogger(log.DiscardLogger)}, opts...)...)
	require.NoError(t, err)
	return executor
}

func TestExecutor(t *testing.T) {
	t.Run("With localities", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		executor := newExecutor(t, WithSize(2))
		system, err := actor.NewSystem("test", actor.WithLogger(log.DiscardLogger))
		require.NoError(t, err)

		root, err := system.NewRoot(executor.NewDriver())
		require.NoError(t, err)

		workers := make([]*worker, 4)
		children := make([]*idle, 0, 8)
		for i := range workers {
			a, b := new(idle), new(idle)
			children = append(children, a, b)
			workers[i] = &worker{children: []actor.Actor{a, b}}
			_, err := root.SpawnAsync(workers[i], actor.WithDriver(executor.NewDriver()))
			require.NoError(t, err)
		}

		require.Eventually(t, func() bool {
			for _, child := range children {
				if child.State() != actor.Operational {
					return false
				}
			}
			return true
		}, time.Second, 5*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, system.Shutdown(ctx))

		for _, w := range workers {
			assert.Equal(t, actor.Shutdown, w.State())
		}
		for _, child := range children {
			assert.Equal(t, actor.Shutdown, child.State())
		}
		assert.Empty(t, system.Errors())

		require.Eventually(t, func() bool { return executor.Running() == 0 }, time.Second, time.Millisecond)
		require.NoError(t, executor.Close())
		require.NoError(t, executor.Close())
	})
	t.Run("With wakeup before bind", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		executor := newExecutor(t)
		driver := executor.NewDriver()
		driver.Wakeup()

		loop := newCounter()
		require.NoError(t, driver.Bind(loop))
		assert.Eventually(t, func() bool { return loop.calls.Load() == 1 && driver.Idle() }, time.Second, time.Millisecond)

		driver.Stop()
		require.NoError(t, executor.Close())
	})
	t.Run("With wakeup while processing", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		executor := newExecutor(t)
		driver := executor.NewDriver()
		loop := newCounter()
		loop.gate = make(chan struct{})
		require.NoError(t, driver.Bind(loop))

		driver.Wakeup()
		require.Eventually(t, func() bool { return loop.calls.Load() == 1 }, time.Second, time.Millisecond)

		driver.Wakeup()
		driver.Wakeup()
		assert.False(t, driver.Idle())
		close(loop.gate)

		assert.Eventually(t, func() bool { return loop.calls.Load() == 2 && driver.Idle() }, time.Second, time.Millisecond)

		driver.Stop()
		driver.Wakeup()
		assert.EqualValues(t, 2, loop.calls.Load())
		require.NoError(t, executor.Close())
	})
	t.Run("With overloaded pool", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		executor := newExecutor(t, WithSize(1), WithSubmitRetries(20, 10*time.Millisecond))
		gate := make(chan struct{})

		first := executor.NewDriver()
		blocked := newCounter()
		blocked.gate = gate
		require.NoError(t, first.Bind(blocked))
		first.Wakeup()
		require.Eventually(t, func() bool { return blocked.calls.Load() == 1 }, time.Second, time.Millisecond)

		second := executor.NewDriver()
		loop := newCounter()
		require.NoError(t, second.Bind(loop))
		second.Wakeup()
		assert.Zero(t, loop.calls.Load())

		close(gate)
		assert.Eventually(t, func() bool { return loop.calls.Load() == 1 }, time.Second, time.Millisecond)

		first.Stop()
		second.Stop()
		require.NoError(t, executor.Close())
	})
	t.Run("With timers", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		executor := newExecutor(t, WithTick(time.Millisecond))
		driver := executor.NewDriver()
		fired := atomic.NewInt64(0)

		driver.StartTimer(5*time.Millisecond, func() { fired.Inc() })
		cancelled := driver.StartTimer(5*time.Millisecond, func() { fired.Add(10) })
		driver.CancelTimer(cancelled)
		assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)

		driver.StartTimer(time.Hour, func() { fired.Add(100) })
		driver.Stop()
		assert.Zero(t, executor.wheel.Len())
		assert.Zero(t, driver.StartTimer(time.Millisecond, func() {}))

		require.NoError(t, executor.Close())
		assert.EqualValues(t, 1, fired.Load())
	})
	t.Run("With invalid bind", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		executor := newExecutor(t)
		driver := executor.NewDriver()
		loop := newCounter()
		require.NoError(t, driver.Bind(loop))
		assert.ErrorIs(t, driver.Bind(loop), gerrors.ErrActorAlreadyBound)

		driver.Stop()
		driver.Stop()

		stopped := executor.NewDriver()
		stopped.Stop()
		assert.ErrorIs(t, stopped.Bind(loop), gerrors.ErrDriverStopped)
		require.NoError(t, executor.Close())
	})
}
