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

import "time"

// TimerID identifies a timer started by a Driver
type TimerID uint64

// Loop is implemented by a locality. Process drains the locality queues on
// the calling goroutine and returns once both are empty.
type Loop interface {
	Process()
}

// Driver executes a locality: it decides on which goroutine Process runs
// and provides timers.
//
// Wakeup and the fire callbacks of timers may be invoked from any goroutine.
// Fire callbacks must not block: the runtime only posts an event into the
// locality inbound buffer from them.
type Driver interface {
	// Bind attaches the driver to the locality it executes
	Bind(loop Loop) error
	// Wakeup schedules a Process call on the driver's goroutine
	Wakeup()
	// StartTimer arms a one-shot timer that calls fire after d
	StartTimer(d time.Duration, fire func()) TimerID
	// CancelTimer disarms a timer. Cancelling an expired or unknown timer is a no-op.
	CancelTimer(id TimerID)
	// Stop is called once the locality leader reached Shutdown
	Stop()
}
