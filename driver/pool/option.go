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
	"time"

	"github.com/tochemey/supervise/log"
)

// Option is the interface that applies a configuration option to the Executor.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(executor *Executor)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Executor)

// Apply applies the options to the Executor
func (f OptionFunc) Apply(executor *Executor) {
	f(executor)
}

// WithSize sets the maximum number of goroutines processing localities
func WithSize(size int) Option {
	return OptionFunc(func(executor *Executor) {
		executor.size = size
	})
}

// WithSubmitRetries sets how many times a locality is resubmitted when the
// pool is overloaded, and the maximum delay between two attempts
func WithSubmitRetries(retries int, maxDelay time.Duration) Option {
	return OptionFunc(func(executor *Executor) {
		executor.retries = retries
		executor.retryDelay = maxDelay
	})
}

// WithTick sets the resolution of the timers
func WithTick(tick time.Duration) Option {
	return OptionFunc(func(executor *Executor) {
		executor.tick = tick
	})
}

// WithReleaseTimeout sets how long Close waits for the pool workers
func WithReleaseTimeout(timeout time.Duration) Option {
	return OptionFunc(func(executor *Executor) {
		executor.releaseTimeout = timeout
	})
}

// WithLogger sets the executor logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(executor *Executor) {
		executor.logger = logger
	})
}
