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

// Package pool provides locality drivers sharing a bounded goroutine pool.
//
// An Executor owns the pool and a timing wheel. Each locality gets its own
// Driver from the Executor; a locality is processed by at most one pool
// goroutine at a time.
package pool

import (
	"runtime"
	"sync"
	"time"

	goset "github.com/deckarep/golang-set/v2"
	"github.com/flowchartsman/retry"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/tochemey/supervise/actor"
	gerrors "github.com/tochemey/supervise/errors"
	"github.com/tochemey/supervise/internal/wheel"
	"github.com/tochemey/supervise/log"
)

const (
	// DefaultRetries is the number of submissions attempted when the pool is overloaded
	DefaultRetries = 10
	// DefaultRetryDelay is the maximum delay between two submissions
	DefaultRetryDelay = 100 * time.Millisecond
	// DefaultReleaseTimeout is how long Close waits for the pool workers
	DefaultReleaseTimeout = 5 * time.Second
)

// Executor runs localities on a shared ants pool
type Executor struct {
	size           int
	retries        int
	retryDelay     time.Duration
	tick           time.Duration
	releaseTimeout time.Duration
	logger         log.Logger

	pool   *ants.Pool
	wheel  *wheel.Wheel
	closed *atomic.Bool
}

// NewExecutor creates an Executor and starts its timing wheel
func NewExecutor(opts ...Option) (*Executor, error) {
	executor := &Executor{
		size:           runtime.NumCPU(),
		retries:        DefaultRetries,
		retryDelay:     DefaultRetryDelay,
		tick:           wheel.DefaultTick,
		releaseTimeout: DefaultReleaseTimeout,
		logger:         log.DiscardLogger,
		closed:         atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(executor)
	}

	if executor.retries <= 0 {
		executor.retries = 1
	}

	pool, err := ants.NewPool(executor.size,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(r any) {
			executor.logger.Errorf("locality processing panicked: %v", r)
		}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the goroutine pool")
	}

	executor.pool = pool
	executor.wheel = wheel.New(executor.tick, wheel.DefaultSize)
	executor.wheel.Start()
	return executor, nil
}

// NewDriver creates a Driver executed by this Executor
func (x *Executor) NewDriver() *Driver {
	return &Driver{
		executor: x,
		timers:   goset.NewThreadUnsafeSet[uint64](),
		bound:    atomic.NewBool(false),
		busy:     atomic.NewBool(false),
		dirty:    atomic.NewBool(false),
		stopped:  atomic.NewBool(false),
	}
}

// Running returns the number of goroutines currently processing a locality
func (x *Executor) Running() int {
	return x.pool.Running()
}

// Close stops the timers and waits for the pool workers to exit
func (x *Executor) Close() error {
	if !x.closed.CompareAndSwap(false, true) {
		return nil
	}

	x.wheel.Stop()
	if err := x.pool.ReleaseTimeout(x.releaseTimeout); err != nil {
		return errors.Wrap(err, "failed to release the goroutine pool")
	}
	return nil
}

// submit hands a task to the pool. When the pool is overloaded the task is
// resubmitted from a wheel goroutine with an exponential backoff, so the
// caller never blocks. onFail is called when the resubmission gives up.
func (x *Executor) submit(task func(), onFail func(error)) error {
	err := x.pool.Submit(task)
	if !errors.Is(err, ants.ErrPoolOverload) {
		return err
	}

	if x.wheel.AfterFunc(0, func() { x.resubmit(task, onFail) }) == 0 {
		return gerrors.ErrDriverStopped
	}
	return nil
}

func (x *Executor) resubmit(task func(), onFail func(error)) {
	var fatal error
	retrier := retry.NewRetrier(x.retries, time.Millisecond, x.retryDelay)
	err := retrier.Run(func() error {
		err := x.pool.Submit(task)
		if errors.Is(err, ants.ErrPoolOverload) {
			return err
		}
		fatal = err
		return nil
	})

	if err == nil {
		err = fatal
	}

	if err != nil {
		onFail(err)
	}
}

// Driver executes one locality on the Executor pool.
//
// A wakeup schedules the locality unless it is already scheduled; a wakeup
// received while the locality is processing triggers one more round.
type Driver struct {
	executor *Executor

	mu      sync.Mutex
	loop    actor.Loop
	timers  goset.Set[uint64]
	bound   *atomic.Bool
	busy    *atomic.Bool
	dirty   *atomic.Bool
	stopped *atomic.Bool
}

var _ actor.Driver = (*Driver)(nil)

// Bind attaches the driver to a locality. Wakeups received before Bind
// schedule the locality once bound.
func (d *Driver) Bind(loop actor.Loop) error {
	d.mu.Lock()
	if d.stopped.Load() {
		d.mu.Unlock()
		return gerrors.ErrDriverStopped
	}

	if d.loop != nil {
		d.mu.Unlock()
		return gerrors.ErrActorAlreadyBound
	}

	d.loop = loop
	d.mu.Unlock()

	d.bound.Store(true)
	if d.dirty.Load() {
		d.schedule()
	}
	return nil
}

// Wakeup schedules a Process call on a pool goroutine. It never blocks.
func (d *Driver) Wakeup() {
	if d.stopped.Load() {
		return
	}

	d.dirty.Store(true)
	if d.bound.Load() {
		d.schedule()
	}
}

// StartTimer calls fire on a wheel goroutine once duration elapsed
func (d *Driver) StartTimer(duration time.Duration, fire func()) actor.TimerID {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped.Load() {
		return 0
	}

	var id uint64
	id = d.executor.wheel.AfterFunc(duration, func() {
		d.mu.Lock()
		d.timers.Remove(id)
		d.mu.Unlock()
		fire()
	})

	if id != 0 {
		d.timers.Add(id)
	}
	return actor.TimerID(id)
}

// CancelTimer cancels a timer. Cancelling a fired timer is a no-op.
func (d *Driver) CancelTimer(id actor.TimerID) {
	d.mu.Lock()
	d.timers.Remove(uint64(id))
	d.mu.Unlock()
	d.executor.wheel.Cancel(uint64(id))
}

// Stop cancels the driver timers. The locality is not scheduled anymore
// once the current Process call returns.
func (d *Driver) Stop() {
	if !d.stopped.CompareAndSwap(false, true) {
		return
	}

	d.mu.Lock()
	timers := d.timers.ToSlice()
	d.timers.Clear()
	d.mu.Unlock()

	for _, id := range timers {
		d.executor.wheel.Cancel(id)
	}
}

// Idle returns true when the locality is neither scheduled nor processing
func (d *Driver) Idle() bool {
	return !d.busy.Load()
}

func (d *Driver) schedule() {
	if !d.busy.CompareAndSwap(false, true) {
		return
	}

	if err := d.executor.submit(d.run, d.unschedule); err != nil {
		d.unschedule(err)
	}
}

func (d *Driver) unschedule(err error) {
	d.busy.Store(false)
	d.executor.logger.Errorf("failed to schedule a locality: %v", err)
}

func (d *Driver) run() {
	d.mu.Lock()
	loop := d.loop
	d.mu.Unlock()

	for {
		d.dirty.Store(false)
		loop.Process()
		d.busy.Store(false)

		if d.stopped.Load() || !d.dirty.Load() || !d.busy.CompareAndSwap(false, true) {
			return
		}
	}
}
