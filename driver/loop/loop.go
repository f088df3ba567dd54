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

// Package loop provides a locality driver running the locality on a
// dedicated goroutine.
package loop

import (
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/tochemey/supervise/actor"
	gerrors "github.com/tochemey/supervise/errors"
	"github.com/tochemey/supervise/internal/wheel"
	"github.com/tochemey/supervise/log"
)

// Driver processes a locality on its own goroutine.
//
// Wakeups are coalesced in a one-slot channel and timers run on a
// hierarchical timing wheel. The driver accepts wakeups and timers before
// it is bound; the goroutine starts on Bind and exits on Stop.
type Driver struct {
	tick      time.Duration
	wheelSize int64
	logger    log.Logger

	mu      sync.Mutex
	loop    actor.Loop
	wheel   *wheel.Wheel
	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	stopped *atomic.Bool
}

var _ actor.Driver = (*Driver)(nil)

// New creates an instance of Driver
func New(opts ...Option) *Driver {
	driver := &Driver{
		tick:      wheel.DefaultTick,
		wheelSize: wheel.DefaultSize,
		logger:    log.DiscardLogger,
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		stopped:   atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(driver)
	}

	driver.wheel = wheel.New(driver.tick, driver.wheelSize)
	driver.wheel.Start()
	return driver
}

// Bind attaches the driver to a locality and starts its goroutine
func (d *Driver) Bind(loop actor.Loop) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped.Load() {
		return gerrors.ErrDriverStopped
	}

	if d.loop != nil {
		return gerrors.ErrActorAlreadyBound
	}

	d.loop = loop
	go d.run(loop)
	return nil
}

// Wakeup schedules a Process call. It never blocks.
func (d *Driver) Wakeup() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// StartTimer calls fire on a wheel goroutine once duration elapsed
func (d *Driver) StartTimer(duration time.Duration, fire func()) actor.TimerID {
	return actor.TimerID(d.wheel.AfterFunc(duration, fire))
}

// CancelTimer cancels a timer. Cancelling a fired timer is a no-op.
func (d *Driver) CancelTimer(id actor.TimerID) {
	d.wheel.Cancel(uint64(id))
}

// Stop cancels the pending timers and ends the goroutine once the current
// Process call returns
func (d *Driver) Stop() {
	if !d.stopped.CompareAndSwap(false, true) {
		return
	}

	d.wheel.Stop()

	d.mu.Lock()
	bound := d.loop != nil
	d.mu.Unlock()

	close(d.stop)
	if !bound {
		close(d.done)
	}
	d.logger.Debug("loop driver stopped")
}

// Done is closed once the driver goroutine exited
func (d *Driver) Done() <-chan struct{} {
	return d.done
}

func (d *Driver) run(loop actor.Loop) {
	defer close(d.done)
	for {
		select {
		case <-d.stop:
			return
		case <-d.wake:
			loop.Process()
		}
	}
}
