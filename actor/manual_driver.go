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

package actor

import (
	"slices"
	"sync"
	"time"

	"go.uber.org/atomic"

	gerrors "github.com/tochemey/supervise/errors"
)

// ManualDriver is a deterministic Driver. It never processes by itself:
// tests call Process and fire timers explicitly, which makes every
// interleaving reproducible.
type ManualDriver struct {
	mu      sync.Mutex
	loop    Loop
	timers  []*manualTimer
	seq     TimerID
	wakeups *atomic.Int64
	stopped *atomic.Bool
}

type manualTimer struct {
	id       TimerID
	duration time.Duration
	fire     func()
}

var _ Driver = (*ManualDriver)(nil)

// NewManualDriver creates an instance of ManualDriver
func NewManualDriver() *ManualDriver {
	return &ManualDriver{
		wakeups: atomic.NewInt64(0),
		stopped: atomic.NewBool(false),
	}
}

// Bind attaches the driver to a locality
func (d *ManualDriver) Bind(loop Loop) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loop != nil {
		return gerrors.ErrActorAlreadyBound
	}
	d.loop = loop
	return nil
}

// Wakeup only counts the request
func (d *ManualDriver) Wakeup() {
	d.wakeups.Inc()
}

// StartTimer records the timer. It fires only when Fire is called.
func (d *ManualDriver) StartTimer(duration time.Duration, fire func()) TimerID {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.timers = append(d.timers, &manualTimer{id: d.seq, duration: duration, fire: fire})
	return d.seq
}

// CancelTimer removes the timer
func (d *ManualDriver) CancelTimer(id TimerID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timers = slices.DeleteFunc(d.timers, func(t *manualTimer) bool { return t.id == id })
}

// Stop marks the driver stopped
func (d *ManualDriver) Stop() {
	d.stopped.Store(true)
}

// Fire expires the given timer. It returns false when the timer is not active.
// The fire callback runs on the calling goroutine.
func (d *ManualDriver) Fire(id TimerID) bool {
	d.mu.Lock()
	index := slices.IndexFunc(d.timers, func(t *manualTimer) bool { return t.id == id })
	if index < 0 {
		d.mu.Unlock()
		return false
	}
	timer := d.timers[index]
	d.timers = slices.Delete(d.timers, index, index+1)
	d.mu.Unlock()

	timer.fire()
	return true
}

// ActiveTimers returns the identifiers of the armed timers in start order
func (d *ManualDriver) ActiveTimers() []TimerID {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]TimerID, 0, len(d.timers))
	for _, t := range d.timers {
		ids = append(ids, t.id)
	}
	return ids
}

// Timer returns the identifier of the i-th armed timer in start order
func (d *ManualDriver) Timer(i int) (TimerID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.timers) {
		return 0, false
	}
	return d.timers[i].id, true
}

// TimerDuration returns the duration the given timer was started with
func (d *ManualDriver) TimerDuration(id TimerID) (time.Duration, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.timers {
		if t.id == id {
			return t.duration, true
		}
	}
	return 0, false
}

// Process runs the bound locality loop on the calling goroutine
func (d *ManualDriver) Process() {
	d.mu.Lock()
	loop := d.loop
	d.mu.Unlock()
	if loop != nil {
		loop.Process()
	}
}

// Wakeups returns the number of wakeups requested so far
func (d *ManualDriver) Wakeups() int64 {
	return d.wakeups.Load()
}

// Stopped returns true once the locality leader reached Shutdown
func (d *ManualDriver) Stopped() bool {
	return d.stopped.Load()
}
