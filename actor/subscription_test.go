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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/supervise/address"
	gerrors "github.com/tochemey/supervise/errors"
)

func TestSubscription(t *testing.T) {
	t.Run("With local handler", func(t *testing.T) {
		system, sink := newTestSystem(t)
		root, _ := newTestRoot(t, system)

		r := new(recorder)
		_, err := root.Spawn(r)
		require.NoError(t, err)
		root.Process()

		require.NotNil(t, r.sub)
		assert.Equal(t, r.Address(), r.sub.Address())
		assert.Contains(t, r.sub.Type(), "note")
		assert.True(t, r.sub.Active())

		require.NoError(t, system.Tell(r.Address(), &note{text: "one"}))
		root.Process()
		assert.Equal(t, []string{"one"}, r.notes)

		Send(r, r.Address(), &note{text: "two"})
		Unsubscribe(r, r.sub)
		assert.True(t, r.sub.Active())

		root.Process()
		assert.False(t, r.sub.Active())
		assert.Equal(t, []string{"one", "two"}, r.notes)

		require.NoError(t, system.Tell(r.Address(), &note{text: "three"}))
		root.Process()
		assert.Equal(t, []string{"one", "two"}, r.notes)

		assert.NotPanics(t, func() { Unsubscribe(r, r.sub) })
		root.Process()
		assert.Empty(t, sink.errors())
	})
	t.Run("With message queued behind the commit", func(t *testing.T) {
		system, _ := newTestSystem(t)
		root, _ := newTestRoot(t, system)

		r := new(recorder)
		_, err := root.Spawn(r)
		require.NoError(t, err)
		root.Process()

		require.NoError(t, system.Tell(r.Address(), &note{text: "late"}))
		Unsubscribe(r, r.sub)
		root.Process()

		assert.False(t, r.sub.Active())
		assert.Empty(t, r.notes)
	})
	t.Run("With foreign handler", func(t *testing.T) {
		system, sink := newTestSystem(t)
		root, _ := newTestRoot(t, system)

		x := new(idleActor)
		_, err := root.Spawn(x)
		require.NoError(t, err)

		nested := new(Supervisor)
		_, err = root.Spawn(nested)
		require.NoError(t, err)

		target := x.Address()
		y := &recorder{target: &target}
		_, err = nested.Spawn(y)
		require.NoError(t, err)

		root.Process()
		require.Equal(t, Operational, y.State())
		assert.Equal(t, 1, root.subscriptions.count(target))

		require.NoError(t, system.Tell(target, &note{text: "hello"}))
		root.Process()
		assert.Equal(t, []string{"hello"}, y.notes)

		root.DoShutdown()
		root.Process()

		assert.Equal(t, Shutdown, y.State())
		assert.Equal(t, Shutdown, root.State())
		assert.False(t, y.sub.Active())
		assert.Zero(t, root.subscriptions.count(target))
		assert.Empty(t, sink.errors())
	})
	t.Run("With foreign handler in another locality", func(t *testing.T) {
		system, sink := newTestSystem(t)
		root, _ := newTestRoot(t, system)

		x := new(idleActor)
		_, err := root.Spawn(x)
		require.NoError(t, err)

		nested := new(Supervisor)
		_, err = root.Spawn(nested, WithDriver(NewManualDriver()))
		require.NoError(t, err)

		target := x.Address()
		y := &recorder{target: &target}
		_, err = nested.Spawn(y)
		require.NoError(t, err)

		settle(root, nested)
		require.Equal(t, Operational, y.State())
		require.Equal(t, Operational, root.State())

		require.NoError(t, system.Tell(target, &note{text: "hello"}))
		settle(root, nested)
		assert.Equal(t, []string{"hello"}, y.notes)

		root.DoShutdown()
		settle(root, nested)

		assert.Equal(t, Shutdown, y.State())
		assert.Equal(t, Shutdown, nested.State())
		assert.Equal(t, Shutdown, root.State())
		assert.Empty(t, sink.errors())
	})
	t.Run("With foreign handler on a supervisor already shut down", func(t *testing.T) {
		system, sink := newTestSystem(t)
		root, driver := newTestRoot(t, system)

		nested := new(Supervisor)
		_, err := root.Spawn(nested)
		require.NoError(t, err)

		x := new(idleActor)
		_, err = nested.Spawn(x)
		require.NoError(t, err)

		target := x.Address()
		y := &recorder{target: &target}
		_, err = root.Spawn(y)
		require.NoError(t, err)

		root.Process()
		require.Equal(t, Operational, y.State())
		require.True(t, y.sub.Active())

		nested.DoShutdown()
		root.Process()
		require.Equal(t, Shutdown, nested.State())
		require.Equal(t, Shutdown, x.State())

		root.DoShutdown()
		root.Process()

		assert.Equal(t, Shutdown, y.State())
		assert.Equal(t, Shutdown, root.State())
		assert.False(t, y.sub.Active())
		assert.Empty(t, driver.ActiveTimers())
		assert.True(t, driver.Stopped())
		assert.Empty(t, sink.errors())
	})
	t.Run("With foreign handler of a forcibly removed actor", func(t *testing.T) {
		system, sink := newTestSystem(t)
		root, _ := newTestRoot(t, system)

		nested := new(Supervisor)
		_, err := root.Spawn(nested)
		require.NoError(t, err)

		x := new(idleActor)
		_, err = nested.Spawn(x)
		require.NoError(t, err)

		boom := errors.New("boom")
		target := x.Address()
		y := &gatedRecorder{recorder: recorder{target: &target}, gate: &gatePlugin{rejectShut: boom}}
		_, err = root.Spawn(y)
		require.NoError(t, err)

		root.Process()
		require.Equal(t, Operational, y.State())
		require.Equal(t, 1, nested.subscriptions.count(target))

		y.DoShutdown()
		root.Process()

		errs := sink.errors()
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], boom)
		assert.False(t, y.sub.Active())
		assert.Zero(t, nested.subscriptions.count(target))
		assert.Zero(t, y.lifetime.Count())

		require.NoError(t, system.Tell(target, &note{text: "late"}))
		root.Process()
		assert.Empty(t, y.notes)
		assert.Equal(t, Operational, nested.State())
	})
	t.Run("With handler panic", func(t *testing.T) {
		system, sink := newTestSystem(t)
		root, _ := newTestRoot(t, system)

		r := &recorder{panics: true}
		_, err := root.Spawn(r)
		require.NoError(t, err)
		root.Process()

		require.NoError(t, system.Tell(r.Address(), &note{text: "one"}))
		require.NoError(t, system.Tell(r.Address(), &note{text: "two"}))
		root.Process()

		errs := sink.errors()
		require.Len(t, errs, 2)

		var panicErr *gerrors.PanicError
		assert.ErrorAs(t, errs[0], &panicErr)

		var childErr *gerrors.ChildError
		require.ErrorAs(t, errs[0], &childErr)
		assert.Equal(t, r.Address(), childErr.Child())
		assert.Equal(t, Operational, r.State())
	})
	t.Run("With unknown address", func(t *testing.T) {
		system, sink := newTestSystem(t)
		root, _ := newTestRoot(t, system)
		root.Process()

		err := system.Tell(address.New(address.NewLocality(), 42), &note{})
		assert.ErrorIs(t, err, gerrors.ErrMissingActor)

		require.NoError(t, system.Tell(root.MakeAddress(), &note{}))
		assert.NotPanics(t, root.Process)
		assert.Empty(t, sink.errors())
	})
}

func TestSubscriptionTable(t *testing.T) {
	table := make(subscriptionTable)
	addr := address.New(address.NewLocality(), 1)
	owner := new(Base)
	other := new(Base)

	h1 := &handler{owner: owner, typ: TypeID(1), active: true}
	h2 := &handler{owner: other, typ: TypeID(1), active: true}
	h3 := &handler{owner: owner, typ: TypeID(2), active: true}

	table.add(addr, h1, true)
	table.add(addr, h2, false)
	table.add(addr, h3, true)
	assert.Equal(t, 3, table.count(addr))

	entries := table.snapshot(&Envelope{To: addr, Type: TypeID(1)})
	require.Len(t, entries, 2)
	assert.True(t, entries[0].local)
	assert.False(t, entries[1].local)

	assert.True(t, table.remove(addr, h2))
	assert.False(t, table.remove(addr, h2))
	assert.Equal(t, 2, table.count(addr))

	assert.Equal(t, 2, table.purge(owner))
	assert.False(t, h1.active)
	assert.False(t, h3.active)
	assert.Zero(t, table.count(addr))
	assert.Empty(t, table)
}
