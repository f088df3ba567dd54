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

// Package wheel tracks one-shot timers scheduled on a hierarchical timing
// wheel and hands out identifiers to cancel them.
package wheel

import (
	"sync"
	"time"

	"github.com/RussellLuo/timingwheel"
)

const (
	// DefaultTick is the resolution of the wheel
	DefaultTick = time.Millisecond
	// DefaultSize is the number of buckets of the first wheel level
	DefaultSize int64 = 512
)

// Wheel schedules callbacks on a timing wheel
type Wheel struct {
	tw      *timingwheel.TimingWheel
	mu      sync.Mutex
	timers  map[uint64]*timingwheel.Timer
	seq     uint64
	running bool
	stopped bool
}

// New creates a Wheel. A tick below one millisecond is raised to one
// millisecond, which is the finest resolution the timing wheel supports.
func New(tick time.Duration, size int64) *Wheel {
	if tick < time.Millisecond {
		tick = time.Millisecond
	}
	if size <= 0 {
		size = DefaultSize
	}
	return &Wheel{
		tw:     timingwheel.NewTimingWheel(tick, size),
		timers: make(map[uint64]*timingwheel.Timer),
	}
}

// Start runs the wheel. It is a no-op when already running or stopped.
func (w *Wheel) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.stopped {
		return
	}
	w.running = true
	w.tw.Start()
}

// Stop cancels every pending timer and stops the wheel
func (w *Wheel) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.stopped = true
	for id, timer := range w.timers {
		timer.Stop()
		delete(w.timers, id)
	}
	w.mu.Unlock()
	w.tw.Stop()
}

// AfterFunc calls fn on a wheel goroutine once d elapsed and returns the
// identifier of the timer. It returns zero when the wheel is not running.
func (w *Wheel) AfterFunc(d time.Duration, fn func()) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return 0
	}

	w.seq++
	id := w.seq
	w.timers[id] = w.tw.AfterFunc(d, func() {
		w.mu.Lock()
		_, pending := w.timers[id]
		delete(w.timers, id)
		w.mu.Unlock()
		if pending {
			fn()
		}
	})
	return id
}

// Cancel stops the timer. It returns false when the timer already fired or
// was never scheduled.
func (w *Wheel) Cancel(id uint64) bool {
	w.mu.Lock()
	timer, ok := w.timers[id]
	delete(w.timers, id)
	w.mu.Unlock()
	if ok {
		timer.Stop()
	}
	return ok
}

// Len returns the number of pending timers
func (w *Wheel) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.timers)
}
