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
	"time"

	"github.com/tochemey/supervise/config"
	"github.com/tochemey/supervise/log"
	"github.com/tochemey/supervise/supervisor"
	"github.com/tochemey/supervise/telemetry"
)

const (
	// DefaultInitTimeout is the default deadline of an init handshake
	DefaultInitTimeout = 5 * time.Second
	// DefaultShutdownTimeout is the default deadline of a shutdown handshake
	DefaultShutdownTimeout = 5 * time.Second
)

// Option is the interface that applies a configuration option to the System.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(system *System)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*System)

// Apply applies the options to the System
func (f OptionFunc) Apply(system *System) {
	f(system)
}

// WithLogger sets the system logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(system *System) {
		system.logger = logger
	})
}

// WithErrorSink sets the function receiving the failures no requester can
// observe: forced removals, handler panics and root failures.
// It can be called from any goroutine.
func WithErrorSink(sink func(err error)) Option {
	return OptionFunc(func(system *System) {
		system.sink = sink
	})
}

// WithTelemetry sets the telemetry used to record the runtime counters
func WithTelemetry(telemetry *telemetry.Telemetry) Option {
	return OptionFunc(func(system *System) {
		system.telemetry = telemetry
	})
}

// WithDefaults sets the options applied to every supervisor before its own
func WithDefaults(opts ...SupervisorOption) Option {
	return OptionFunc(func(system *System) {
		system.defaults = append(system.defaults, opts...)
	})
}

// WithConfig applies a configuration loaded with the config package
func WithConfig(cfg *config.Config) Option {
	return OptionFunc(func(system *System) {
		if err := cfg.Validate(); err != nil {
			system.optionErr = err
			return
		}

		policy, err := cfg.SupervisionPolicy()
		if err != nil {
			system.optionErr = err
			return
		}

		logger, err := cfg.Logger()
		if err != nil {
			system.optionErr = err
			return
		}

		if cfg.Name != "" {
			system.name = cfg.Name
		}
		system.logger = logger
		system.defaults = append(system.defaults,
			WithInitTimeout(cfg.InitTimeout),
			WithShutdownTimeout(cfg.ShutdownTimeout),
			WithPolicy(policy),
			WithRestart(cfg.Supervision.MaxRestarts, cfg.Supervision.Window),
			WithInboxCapacity(cfg.InboxCapacity),
		)
	})
}

// supervisorConfig defines the configuration of a supervisor
type supervisorConfig struct {
	initTimeout     time.Duration
	shutdownTimeout time.Duration
	supervision     []supervisor.Option
	inboxCapacity   int
}

// SupervisorOption configures a supervisor
type SupervisorOption interface {
	// Apply sets the Option value of a config.
	Apply(config *supervisorConfig)
}

var _ SupervisorOption = supervisorOption(nil)

// supervisorOption implements the SupervisorOption interface.
type supervisorOption func(config *supervisorConfig)

// Apply sets the Option value of a config.
func (f supervisorOption) Apply(c *supervisorConfig) {
	f(c)
}

// WithInitTimeout sets the init deadline of the children of the supervisor.
// A root also uses it for its own init.
func WithInitTimeout(timeout time.Duration) SupervisorOption {
	return supervisorOption(func(config *supervisorConfig) {
		if timeout > 0 {
			config.initTimeout = timeout
		}
	})
}

// WithShutdownTimeout sets the shutdown deadline of the children of the supervisor
func WithShutdownTimeout(timeout time.Duration) SupervisorOption {
	return supervisorOption(func(config *supervisorConfig) {
		if timeout > 0 {
			config.shutdownTimeout = timeout
		}
	})
}

// WithPolicy sets the policy applied when a child fails to initialize
func WithPolicy(policy supervisor.Policy) SupervisorOption {
	return supervisorOption(func(config *supervisorConfig) {
		config.supervision = append(config.supervision, supervisor.WithPolicy(policy))
	})
}

// WithRestart sets the restart budget of the RestartFailed policy
func WithRestart(maxRestarts uint32, window time.Duration) SupervisorOption {
	return supervisorOption(func(config *supervisorConfig) {
		config.supervision = append(config.supervision, supervisor.WithRestart(maxRestarts, window))
	})
}

// WithInboxCapacity bounds the inbound buffer of the locality the
// supervisor leads. Zero means unbounded.
func WithInboxCapacity(capacity int) SupervisorOption {
	return supervisorOption(func(config *supervisorConfig) {
		if capacity >= 0 {
			config.inboxCapacity = capacity
		}
	})
}

// spawnConfig defines the configuration to apply when spawning an actor
type spawnConfig struct {
	initTimeout       time.Duration
	producer          func() Actor
	driver            Driver
	supervisorOptions []SupervisorOption
	lineage           uint64
}

func newSpawnConfig(initTimeout time.Duration, opts ...SpawnOption) *spawnConfig {
	config := &spawnConfig{initTimeout: initTimeout}
	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// SpawnOption is the interface that applies to a spawned actor
type SpawnOption interface {
	// Apply sets the Option value of a config.
	Apply(config *spawnConfig)
}

var _ SpawnOption = spawnOption(nil)

// spawnOption implements the SpawnOption interface.
type spawnOption func(config *spawnConfig)

// Apply sets the Option value of a config.
func (f spawnOption) Apply(c *spawnConfig) {
	f(c)
}

// WithSpawnTimeout overrides the init deadline of the spawned actor
func WithSpawnTimeout(timeout time.Duration) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.initTimeout = timeout
	})
}

// WithProducer sets the function recreating the actor when the
// RestartFailed policy restarts it
func WithProducer(producer func() Actor) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.producer = producer
	})
}

// WithDriver runs a spawned supervisor in a new locality executed by the
// given driver
func WithDriver(driver Driver) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.driver = driver
	})
}

// WithSupervisorOptions configures a spawned supervisor
func WithSupervisorOptions(opts ...SupervisorOption) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.supervisorOptions = append(config.supervisorOptions, opts...)
	})
}
