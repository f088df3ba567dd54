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

// Package config loads the runtime configuration from YAML.
//
// A configuration file looks like:
//
//	name: orders
//	init_timeout: 5s
//	shutdown_timeout: 5s
//	inbox_capacity: 0
//	supervision:
//	  policy: restart_failed
//	  max_restarts: 3
//	  window: 1m
//	log:
//	  level: info
//	  file:
//	    path: /var/log/orders.log
//	    max_size: 100
package config

import (
	"errors"
	"os"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tochemey/supervise/internal/errorschain"
	"github.com/tochemey/supervise/log"
	"github.com/tochemey/supervise/supervisor"
)

var (
	// ErrNameRequired is returned when the system name is empty
	ErrNameRequired = errors.New("actor system name is required")
	// ErrInvalidTimeout is returned when a handshake timeout is not positive
	ErrInvalidTimeout = errors.New("handshake timeouts must be greater than zero")
	// ErrInvalidInboxCapacity is returned when the inbox capacity is negative
	ErrInvalidInboxCapacity = errors.New("inbox capacity must not be negative")
)

const (
	defaultInitTimeout     = 5 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// Config represents the runtime configuration
type Config struct {
	// Name is the actor system name
	Name string `yaml:"name"`
	// InitTimeout is the deadline of the init handshakes. The default value is 5s
	InitTimeout time.Duration `yaml:"init_timeout"`
	// ShutdownTimeout is the deadline of the shutdown handshakes. The default value is 5s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// Supervision configures how supervisors handle failed children
	Supervision Supervision `yaml:"supervision"`
	// InboxCapacity bounds the inbound buffer of every locality. Zero means unbounded
	InboxCapacity int `yaml:"inbox_capacity"`
	// Log configures the system logger
	Log Log `yaml:"log"`
}

// Supervision configures the supervision policy
type Supervision struct {
	// Policy is one of shutdown_self, shutdown_failed and restart_failed
	Policy string `yaml:"policy"`
	// MaxRestarts is the restart budget of a child within Window
	MaxRestarts uint32 `yaml:"max_restarts"`
	// Window is the period restarts are counted in. Zero means forever
	Window time.Duration `yaml:"window"`
}

// Log configures the logger
type Log struct {
	// Level is the minimum level written
	Level string `yaml:"level"`
	// File adds a size-rotated file output next to stdout
	File *log.FileConfig `yaml:"file"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Name:            "supervise",
		InitTimeout:     defaultInitTimeout,
		ShutdownTimeout: defaultShutdownTimeout,
		Supervision: Supervision{
			Policy:      supervisor.ShutdownSelf.String(),
			MaxRestarts: supervisor.DefaultMaxRestarts,
		},
		Log: Log{Level: log.InfoLevel.String()},
	}
}

// New creates an instance of Config
func New(name string, options ...Option) (*Config, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	config := Default()
	config.Name = name
	for _, opt := range options {
		opt.Apply(config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Load reads and parses a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read config file %s", path)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid config file %s", path)
	}
	return config, nil
}

// Parse parses a YAML configuration. Missing fields keep their default value.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to decode config")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration and returns every violation found
func (c *Config) Validate() error {
	chain := errorschain.New(errorschain.ReturnAll())
	if c.Name == "" {
		chain.AddError(ErrNameRequired)
	}

	if c.InitTimeout <= 0 || c.ShutdownTimeout <= 0 {
		chain.AddError(ErrInvalidTimeout)
	}

	if c.InboxCapacity < 0 {
		chain.AddError(ErrInvalidInboxCapacity)
	}

	chain.AddErrorFn(func() error {
		_, err := c.SupervisionPolicy()
		return err
	})

	chain.AddErrorFn(func() error {
		_, err := log.ParseLevel(c.Log.Level)
		return err
	})

	return chain.Error()
}

// SupervisionPolicy returns the parsed supervision policy
func (c *Config) SupervisionPolicy() (supervisor.Policy, error) {
	return supervisor.ParsePolicy(c.Supervision.Policy)
}

// Logger builds the logger described by the Log section. It writes to
// stdout and, when configured, to a rotating file.
func (c *Config) Logger() (log.Logger, error) {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	if c.Log.File == nil || c.Log.File.Path == "" {
		return log.NewZap(level, os.Stdout), nil
	}
	return log.NewZap(level, os.Stdout, log.NewRotatingFile(*c.Log.File)), nil
}
