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

// Package testkit helps testing actors against a running actor system.
//
// A TestKit runs a root supervisor on a loop driver. Probes are actors
// recording the messages they subscribed to, so that a test can assert on
// what an actor sent.
package testkit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tochemey/supervise/actor"
	"github.com/tochemey/supervise/address"
	"github.com/tochemey/supervise/driver/loop"
	"github.com/tochemey/supervise/log"
)

// DefaultTimeout is how long the TestKit waits by default
const DefaultTimeout = 3 * time.Second

// TestKit defines actor test kit
type TestKit struct {
	kt          *testing.T
	logger      log.Logger
	timeout     time.Duration
	rootOptions []actor.SupervisorOption

	system *actor.System
	root   *actor.Supervisor
	driver *loop.Driver

	mu     sync.Mutex
	errors []error
}

// New creates an instance of TestKit and starts its root supervisor
func New(t *testing.T, opts ...Option) *TestKit {
	testkit := &TestKit{
		kt:      t,
		logger:  log.DiscardLogger,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt.Apply(testkit)
	}

	system, err := actor.NewSystem("testkit",
		actor.WithLogger(testkit.logger),
		actor.WithErrorSink(testkit.report))
	if err != nil {
		t.Fatal(err.Error())
	}

	testkit.driver = loop.New(loop.WithLogger(testkit.logger))
	root, err := system.NewRoot(testkit.driver, testkit.rootOptions...)
	if err != nil {
		testkit.driver.Stop()
		t.Fatal(err.Error())
	}

	testkit.system = system
	testkit.root = root
	testkit.awaitState(root, actor.Operational)
	return testkit
}

// System returns the testkit actor system
func (k *TestKit) System() *actor.System {
	return k.system
}

// Root returns the root supervisor
func (k *TestKit) Root() *actor.Supervisor {
	return k.root
}

// Spawn creates a child of the root supervisor and waits until it is
// Operational
func (k *TestKit) Spawn(a actor.Actor, opts ...actor.SpawnOption) address.Address {
	addr, err := k.root.SpawnAsync(a, opts...)
	if err != nil {
		k.kt.Fatal(err.Error())
	}
	k.awaitState(a, actor.Operational)
	return addr
}

// NewProbe creates a test probe and waits until it is Operational
func (k *TestKit) NewProbe(opts ...ProbeOption) *Probe {
	probe := newProbe(k.kt, k.timeout, opts...)
	k.Spawn(probe)
	return probe
}

// Tell sends a message to the given address
func (k *TestKit) Tell(to address.Address, payload any) {
	require.NoError(k.kt, k.system.Tell(to, payload))
}

// AwaitState waits until the actor reached the given state
func (k *TestKit) AwaitState(a actor.Actor, state actor.State) {
	k.awaitState(a, state)
}

// Errors returns the errors reported to the actor system
func (k *TestKit) Errors() []error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]error(nil), k.errors...)
}

// Shutdown stops the test kit
func (k *TestKit) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), k.timeout)
	defer cancel()

	if err := k.system.Shutdown(ctx); err != nil {
		k.kt.Fatal(err.Error())
	}

	select {
	case <-k.driver.Done():
	case <-ctx.Done():
		k.kt.Fatal("root driver did not stop")
	}
}

func (k *TestKit) report(err error) {
	k.mu.Lock()
	k.errors = append(k.errors, err)
	k.mu.Unlock()
	k.logger.Debugf("reported: %v", err)
}

func (k *TestKit) awaitState(a actor.Actor, state actor.State) {
	require.Eventuallyf(k.kt, func() bool {
		return a.State() == state
	}, k.timeout, 5*time.Millisecond, "%s did not reach %s", a.Address(), state)
}
