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

package loop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"

	"github.com/tochemey/supervise/actor"
	"github.com/tochemey/supervise/address"
	gerrors "github.com/tochemey/supervise/errors"
	"github.com/tochemey/supervise/log"
)

type ping struct{}

type pong struct{}

// ponger answers pings unless it is silent
type ponger struct {
	actor.Base
	silent bool
}

func (p *ponger) Configure(plugin actor.Plugin) {
	if plugin.Identity() == actor.LifetimeIdentity {
		actor.Subscribe(p, p.onPing)
	}
}

func (p *ponger) onPing(req *actor.Request[ping, pong]) {
	if !p.silent {
		actor.Reply(p, req, pong{})
	}
}

// pinger sends a ping once started and publishes the outcome
type pinger struct {
	actor.Base
	target  address.Address
	timeout time.Duration
	results chan error
}

func (p *pinger) Configure(plugin actor.Plugin) {
	if plugin.Identity() == actor.LifetimeIdentity {
		actor.Subscribe(p, p.onPong)
	}
}

func (p *pinger) OnStart() {
	actor.Ask[ping, pong](p, p.target, ping{}).Send(p.timeout)
}

func (p *pinger) onPong(res *actor.Response[ping, pong]) {
	p.results <- res.Err
}

// relay is a supervisor spawning its client once started
type relay struct {
	actor.Supervisor
	client *pinger
}

func (r *relay) OnStart() {
	if _, err := r.Spawn(r.client); err != nil {
		r.client.results <- err
	}
}

// counter counts Process calls
type counter struct {
	calls *atomic.Int64
}

func (c *counter) Process() { c.calls.Inc() }

func newSystem(t *testing.T) *actor.System {
	t.Helper()
	system, err := actor.NewSystem("test", actor.WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	return system
}

func TestDriver(t *testing.T) {
	t.Run("With lifecycle", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		system := newSystem(t)
		driver := New(WithLogger(log.DiscardLogger))
		root, err := system.NewRoot(driver)
		require.NoError(t, err)

		child := new(ponger)
		_, err = root.SpawnAsync(child)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			return child.State() == actor.Operational && root.State() == actor.Operational
		}, time.Second, 5*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, system.Shutdown(ctx))

		assert.Equal(t, actor.Shutdown, child.State())
		assert.Equal(t, actor.Shutdown, root.State())

		select {
		case <-driver.Done():
		case <-time.After(time.Second):
			t.Fatal("driver goroutine did not exit")
		}
		assert.Empty(t, system.Errors())
	})
	t.Run("With request reply across localities", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		system := newSystem(t)
		root, err := system.NewRoot(New())
		require.NoError(t, err)

		server := new(ponger)
		target, err := root.SpawnAsync(server)
		require.NoError(t, err)

		client := &pinger{target: target, timeout: time.Second, results: make(chan error, 1)}
		_, err = root.SpawnAsync(&relay{client: client}, actor.WithDriver(New()))
		require.NoError(t, err)

		select {
		case err := <-client.results:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("no response")
		}

		require.NoError(t, system.Shutdown(context.Background()))
	})
	t.Run("With request timeout", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		system := newSystem(t)
		root, err := system.NewRoot(New())
		require.NoError(t, err)

		server := &ponger{silent: true}
		target, err := root.SpawnAsync(server)
		require.NoError(t, err)

		client := &pinger{target: target, timeout: 20 * time.Millisecond, results: make(chan error, 1)}
		_, err = root.SpawnAsync(client)
		require.NoError(t, err)

		select {
		case err := <-client.results:
			assert.ErrorIs(t, err, gerrors.ErrRequestTimeout)
		case <-time.After(time.Second):
			t.Fatal("no response")
		}

		require.NoError(t, system.Shutdown(context.Background()))
	})
	t.Run("With wakeup before bind", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		driver := New()
		driver.Wakeup()
		driver.Wakeup()

		loop := &counter{calls: atomic.NewInt64(0)}
		require.NoError(t, driver.Bind(loop))
		assert.Eventually(t, func() bool { return loop.calls.Load() == 1 }, time.Second, time.Millisecond)

		driver.Stop()
		<-driver.Done()
	})
	t.Run("With timers", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		driver := New(WithTick(time.Millisecond), WithWheelSize(64))
		fired := atomic.NewInt64(0)

		driver.StartTimer(5*time.Millisecond, func() { fired.Inc() })
		cancelled := driver.StartTimer(5*time.Millisecond, func() { fired.Add(10) })
		driver.CancelTimer(cancelled)

		assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
		driver.CancelTimer(cancelled)

		driver.Stop()
		assert.Zero(t, driver.StartTimer(time.Millisecond, func() {}))
		<-driver.Done()
		assert.EqualValues(t, 1, fired.Load())
	})
	t.Run("With invalid bind", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		driver := New()
		loop := &counter{calls: atomic.NewInt64(0)}
		require.NoError(t, driver.Bind(loop))
		assert.ErrorIs(t, driver.Bind(loop), gerrors.ErrActorAlreadyBound)

		driver.Stop()
		driver.Stop()
		<-driver.Done()
		assert.ErrorIs(t, driver.Bind(loop), gerrors.ErrDriverStopped)
	})
}
