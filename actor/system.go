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
	"context"
	"sync"

	"github.com/duke-git/lancet/v2/maputil"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/supervise/address"
	gerrors "github.com/tochemey/supervise/errors"
	"github.com/tochemey/supervise/eventstream"
	"github.com/tochemey/supervise/internal/errorschain"
	"github.com/tochemey/supervise/log"
	"github.com/tochemey/supervise/telemetry"
)

// System is the context shared by every supervisor tree of a process.
// It holds the logger, the error sink, the lifecycle event stream, the
// runtime counters and the directory resolving a supervisor from the owner
// part of an address.
type System struct {
	id        uuid.UUID
	name      string
	logger    log.Logger
	sink      func(err error)
	events    *eventstream.Stream
	telemetry *telemetry.Telemetry
	metrics   *telemetry.Metrics
	defaults  []SupervisorOption
	optionErr error

	directory *maputil.ConcurrentMap[uint64, *Supervisor]

	mu       sync.Mutex
	roots    map[uint64]*Supervisor
	reported []error
}

// NewSystem creates an instance of System
func NewSystem(name string, opts ...Option) (*System, error) {
	system := &System{
		id:        uuid.New(),
		name:      name,
		logger:    log.DefaultLogger,
		events:    eventstream.New(),
		directory: maputil.NewConcurrentMap[uint64, *Supervisor](16),
		roots:     make(map[uint64]*Supervisor),
	}

	for _, opt := range opts {
		opt.Apply(system)
	}

	if system.optionErr != nil {
		return nil, system.optionErr
	}

	if system.telemetry == nil {
		system.telemetry = telemetry.New()
	}

	metrics, err := telemetry.NewMetrics(system.telemetry.Meter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the runtime metrics")
	}
	system.metrics = metrics
	return system, nil
}

// ID returns the unique identifier of the system
func (x *System) ID() string {
	return x.id.String()
}

// Name returns the system name
func (x *System) Name() string {
	return x.name
}

// Logger returns the system logger
func (x *System) Logger() log.Logger {
	return x.logger
}

// Events returns the stream lifecycle transitions are published on,
// under LifecycleTopic
func (x *System) Events() *eventstream.Stream {
	return x.events
}

// NewRoot creates and starts a root Supervisor executed by the given driver
func (x *System) NewRoot(driver Driver, opts ...SupervisorOption) (*Supervisor, error) {
	root := new(Supervisor)
	if err := x.Start(root, driver, opts...); err != nil {
		return nil, err
	}
	return root, nil
}

// Start starts a root supervisor. The supervisor activates its plugins
// synchronously, then sends itself its init request with its init timeout
// before the driver is bound.
func (x *System) Start(root SupervisorActor, driver Driver, opts ...SupervisorOption) error {
	if root == nil {
		return gerrors.ErrUndefinedActor
	}

	if driver == nil {
		return errors.Wrap(gerrors.ErrActorMisconfigured, "a driver is required")
	}

	s := root.supervisor()
	if err := s.bind(root, x, s); err != nil {
		return err
	}

	s.setup(x, nil, driver, opts)
	s.loc.attach(s)
	if err := s.activate(); err != nil {
		s.loc.detach(s)
		return err
	}

	if s.childManager == nil {
		s.deactivate()
		s.loc.detach(s)
		return gerrors.ErrActorMisconfigured
	}

	x.mu.Lock()
	x.roots[s.address.ID()] = s
	x.mu.Unlock()

	Ask[initialize, initialized](s, s.address, initialize{actor: s.address}).Send(s.initTimeout)
	if err := s.launch(); err != nil {
		s.abort()
		return err
	}
	return nil
}

// Tell routes a message to the given address from any goroutine
func (x *System) Tell(to address.Address, payload any) error {
	sup, ok := x.supervisor(to.Owner())
	if !ok {
		return gerrors.ErrMissingActor
	}
	sup.Enqueue(NewEnvelope(to, payload))
	return nil
}

// ReportError hands an error to the error sink. It can be called from any goroutine.
func (x *System) ReportError(err error) {
	if err == nil {
		return
	}

	x.mu.Lock()
	x.reported = append(x.reported, err)
	x.mu.Unlock()

	if x.sink != nil {
		x.sink(err)
		return
	}
	x.logger.Error(err)
}

// Errors returns the errors reported so far, in order
func (x *System) Errors() []error {
	x.mu.Lock()
	defer x.mu.Unlock()
	errs := make([]error, len(x.reported))
	copy(errs, x.reported)
	return errs
}

// Roots returns the running root supervisors
func (x *System) Roots() []*Supervisor {
	x.mu.Lock()
	defer x.mu.Unlock()
	roots := make([]*Supervisor, 0, len(x.roots))
	for _, root := range x.roots {
		roots = append(roots, root)
	}
	return roots
}

// Shutdown shuts every root down and waits until they all reached Shutdown
// or the context is done. The drivers must be running for the roots to
// make progress.
func (x *System) Shutdown(ctx context.Context) error {
	roots := x.Roots()
	errs := make([]error, len(roots))

	eg := new(errgroup.Group)
	for i, root := range roots {
		eg.Go(func() error {
			root.Shutdown()
			select {
			case <-root.Done():
			case <-ctx.Done():
				errs[i] = errors.Wrapf(ctx.Err(), "root %s did not shut down", root.Address())
			}
			return nil
		})
	}

	_ = eg.Wait()
	if err := errorschain.New(errorschain.ReturnAll()).AddErrors(errs...).Error(); err != nil {
		return err
	}

	x.events.Close()
	return nil
}

func (x *System) supervisorConfig(opts ...SupervisorOption) *supervisorConfig {
	config := &supervisorConfig{
		initTimeout:     DefaultInitTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
	}

	for _, opt := range x.defaults {
		opt.Apply(config)
	}

	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

func (x *System) recorder(locality address.Locality) *telemetry.Recorder {
	if x.metrics == nil {
		return nil
	}
	return x.metrics.Recorder(locality.String())
}

func (x *System) publish(event *StateChanged) {
	if x.events.SubscribersCount(LifecycleTopic) == 0 {
		return
	}
	x.events.Publish(LifecycleTopic, event)
}

func (x *System) register(sup *Supervisor) {
	x.directory.Set(sup.address.ID(), sup)
}

func (x *System) unregister(sup *Supervisor) {
	x.directory.Delete(sup.address.ID())
}

func (x *System) supervisor(owner uint64) (*Supervisor, bool) {
	return x.directory.Get(owner)
}

func (x *System) rootFinished(root *Supervisor) {
	x.mu.Lock()
	delete(x.roots, root.address.ID())
	x.mu.Unlock()
}
