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

package config

import (
	"time"

	"github.com/tochemey/supervise/log"
	"github.com/tochemey/supervise/supervisor"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(config *Config)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Config)

// Apply applies the options to Config
func (f OptionFunc) Apply(c *Config) {
	f(c)
}

// WithInitTimeout sets the init handshake deadline
func WithInitTimeout(timeout time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.InitTimeout = timeout
	})
}

// WithShutdownTimeout sets the shutdown handshake deadline
func WithShutdownTimeout(timeout time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.ShutdownTimeout = timeout
	})
}

// WithPolicy sets the supervision policy
func WithPolicy(policy supervisor.Policy) Option {
	return OptionFunc(func(config *Config) {
		config.Supervision.Policy = policy.String()
	})
}

// WithRestart sets the restart budget
func WithRestart(maxRestarts uint32, window time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.Supervision.MaxRestarts = maxRestarts
		config.Supervision.Window = window
	})
}

// WithInboxCapacity bounds the inbound buffer of every locality
func WithInboxCapacity(capacity int) Option {
	return OptionFunc(func(config *Config) {
		config.InboxCapacity = capacity
	})
}

// WithLogLevel sets the log level
func WithLogLevel(level log.Level) Option {
	return OptionFunc(func(config *Config) {
		config.Log.Level = level.String()
	})
}

// WithLogFile adds a rotating file output to the logger
func WithLogFile(file log.FileConfig) Option {
	return OptionFunc(func(config *Config) {
		config.Log.File = &file
	})
}
