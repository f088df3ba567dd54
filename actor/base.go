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
	"go.uber.org/atomic"

	"github.com/tochemey/supervise/address"
	gerrors "github.com/tochemey/supervise/errors"
	"github.com/tochemey/supervise/log"
)

// Actor is implemented by every type embedding Base.
//
// The hooks are called on the goroutine processing the actor's locality.
// Types embedding Base override the hooks they need; the defaults let the
// lifecycle handshakes proceed without delay.
type Actor interface {
	// Configure is called right after each plugin activation
	Configure(plugin Plugin)
	// InitStart is called when the init request is received.
	// The default implementation calls InitContinue.
	InitStart()
	// InitFinish is called once every plugin accepted the init.
	// The default implementation calls ConfirmInit.
	InitFinish()
	// OnStart is called once the actor is Operational
	OnStart()
	// ShutdownStart is called when the shutdown handshake begins.
	// The default implementation calls ShutdownContinue.
	ShutdownStart()
	// ShutdownFinish is called once every plugin accepted the shutdown.
	// The default implementation calls ConfirmShutdown.
	ShutdownFinish()
	// Plugins returns the ordered plugin list to activate
	Plugins() []Plugin
	// Address returns the actor address
	Address() address.Address
	// State returns the lifecycle state of the actor
	State() State

	base() *Base
}

// Base is the embeddable core of every actor.
type Base struct {
	self       Actor
	system     *System
	supervisor *Supervisor
	address    address.Address
	state      atomic.Int32
	logger     log.Logger

	plugins    []Plugin
	lifecycle  *InitShutdown
	lifetime   *Lifetime
	prestarter *Prestarter
	starter    *Starter

	initRequest     *initRequest
	shutdownRequest *shutdownRequest
}

var _ Actor = (*Base)(nil)

func (b *Base) base() *Base {
	return b
}

// Configure is a no-op by default
func (b *Base) Configure(Plugin) {}

// InitStart continues the init handshake
func (b *Base) InitStart() {
	b.InitContinue()
}

// InitFinish confirms the init handshake
func (b *Base) InitFinish() {
	b.ConfirmInit()
}

// OnStart is a no-op by default
func (b *Base) OnStart() {}

// ShutdownStart continues the shutdown handshake
func (b *Base) ShutdownStart() {
	b.ShutdownContinue()
}

// ShutdownFinish confirms the shutdown handshake
func (b *Base) ShutdownFinish() {
	b.ConfirmShutdown()
}

// Plugins returns DefaultPlugins
func (b *Base) Plugins() []Plugin {
	return DefaultPlugins()
}

// Address returns the actor address.
// It is NoAddress until the actor is spawned.
func (b *Base) Address() address.Address {
	return b.address
}

// State returns the lifecycle state of the actor.
// It is safe to call from any goroutine.
func (b *Base) State() State {
	return State(b.state.Load())
}

// Self returns the actor embedding this Base
func (b *Base) Self() Actor {
	return b.self
}

// Supervisor returns the managing supervisor.
// A supervisor manages itself.
func (b *Base) Supervisor() *Supervisor {
	return b.supervisor
}

// System returns the actor system
func (b *Base) System() *System {
	return b.system
}

// Logger returns the actor logger
func (b *Base) Logger() log.Logger {
	if b.logger == nil {
		return log.DiscardLogger
	}
	return b.logger
}

// Plugin returns the active plugin with the given identity
func (b *Base) Plugin(identity string) (Plugin, bool) {
	for _, p := range b.plugins {
		if p.Identity() == identity {
			return p, true
		}
	}
	return nil, false
}

// Hold prevents the init handshake from completing until Release is
// called with the same reason. It requires the Prestarter plugin.
func (b *Base) Hold(reason string) {
	if b.prestarter != nil {
		b.prestarter.Hold(reason)
	}
}

// Release drops a hold set by Hold and continues the init handshake once
// no hold is left.
func (b *Base) Release(reason string) {
	if b.prestarter != nil {
		b.prestarter.Release(reason)
	}
}

// InitContinue runs the init reactions of the plugins in activation order.
// A plugin that vetoed calls InitContinue again once it is ready; the chain
// then restarts from the first plugin. InitFinish is called when every
// plugin accepted.
func (b *Base) InitContinue() {
	if b.State() != Initializing || b.initRequest == nil {
		return
	}

	for _, plugin := range b.plugins {
		if reactor, ok := plugin.(InitReactor); ok && !reactor.HandleInit() {
			return
		}
		if b.initRequest == nil {
			return
		}
	}
	b.self.InitFinish()
}

// ConfirmInit answers the pending init request with a success
func (b *Base) ConfirmInit() {
	if b.initRequest == nil {
		return
	}
	req := b.initRequest
	b.initRequest = nil
	Reply(b.self, req, initialized{})
}

// FailInit answers the pending init request with the given error.
// The supervisor then applies its policy.
func (b *Base) FailInit(err error) {
	if b.initRequest == nil {
		return
	}
	req := b.initRequest
	b.initRequest = nil
	ReplyError(b.self, req, err)
}

// ShutdownContinue runs the shutdown reactions of the plugins in reverse
// activation order. A plugin that vetoed calls ShutdownContinue again once
// it is ready. ShutdownFinish is called when every plugin accepted.
func (b *Base) ShutdownContinue() {
	if b.State() != ShuttingDown {
		return
	}

	for i := len(b.plugins) - 1; i >= 0; i-- {
		if reactor, ok := b.plugins[i].(ShutdownReactor); ok && !reactor.HandleShutdown() {
			return
		}
		if b.State() != ShuttingDown {
			return
		}
	}
	b.self.ShutdownFinish()
}

// ConfirmShutdown answers the pending shutdown request, deactivates the
// plugins and moves the actor to Shutdown.
func (b *Base) ConfirmShutdown() {
	if b.State() != ShuttingDown {
		return
	}

	if b.shutdownRequest != nil {
		req := b.shutdownRequest
		b.shutdownRequest = nil
		Reply(b.self, req, shutdownDone{})
	}
	b.finish()
}

// FailShutdown answers the pending shutdown request with the given error.
// The actor stays ShuttingDown and its supervisor removes it forcibly.
// A root has no supervisor to remove it: the error goes to the error sink
// and the root completes its shutdown once its children are gone.
func (b *Base) FailShutdown(err error) {
	if b.shutdownRequest == nil {
		if s, ok := b.self.(SupervisorActor); ok && s.supervisor().parent == nil && b.State() == ShuttingDown {
			s.supervisor().forceShutdown(err)
			return
		}
		if b.system != nil {
			b.system.ReportError(gerrors.NewChildError(b.address, err))
		}
		return
	}
	req := b.shutdownRequest
	b.shutdownRequest = nil
	ReplyError(b.self, req, err)
}

// DoShutdown asks the managing supervisor to shut the actor down.
// It must be called from the goroutine processing the actor's locality.
func (b *Base) DoShutdown() {
	if b.supervisor == nil {
		return
	}
	manager := b.manager()
	b.send(NewEnvelope(manager.address, &shutdownTrigger{actor: b.address}))
}

// Shutdown is the thread-safe variant of DoShutdown
func (b *Base) Shutdown() {
	if b.supervisor == nil {
		return
	}
	manager := b.manager()
	manager.Enqueue(NewEnvelope(manager.address, &shutdownTrigger{actor: b.address}))
}

// manager returns the supervisor deciding over the actor's shutdown:
// the parent of a supervisor, the root itself, or the supervisor of a
// plain actor.
func (b *Base) manager() *Supervisor {
	if s, ok := b.self.(SupervisorActor); ok {
		sup := s.supervisor()
		if sup.parent != nil {
			return sup.parent
		}
		return sup
	}
	return b.supervisor
}

func (b *Base) bind(self Actor, system *System, supervisor *Supervisor) error {
	if b.self != nil {
		return gerrors.ErrActorAlreadyBound
	}
	b.self = self
	b.system = system
	b.supervisor = supervisor
	b.logger = system.logger
	return nil
}

// activate activates the plugins in list order
func (b *Base) activate() error {
	b.plugins = b.self.Plugins()
	for _, plugin := range b.plugins {
		plugin.Activate(b)
		b.self.Configure(plugin)
	}

	if b.address.IsZero() || b.lifecycle == nil || b.lifetime == nil || b.starter == nil {
		b.deactivate()
		return gerrors.ErrActorMisconfigured
	}

	b.logger = b.system.logger.With("actor", b.address.String())
	return nil
}

// deactivate deactivates the plugins in reverse order
func (b *Base) deactivate() {
	for i := len(b.plugins) - 1; i >= 0; i-- {
		b.plugins[i].Deactivate()
	}
}

func (b *Base) send(env *Envelope) {
	b.supervisor.loc.push(env)
}

func (b *Base) setState(next State) {
	prev := State(b.state.Load())
	if next <= prev {
		return
	}
	b.state.Store(int32(next))
	b.Logger().Debugf("%s: %s -> %s", b.address, prev, next)
	if b.system != nil {
		b.system.publish(&StateChanged{Address: b.address, From: prev, To: next})
	}
}

func (b *Base) beginShutdown() {
	if b.initRequest != nil {
		b.FailInit(gerrors.ErrInitAborted)
	}
	b.setState(ShuttingDown)
	b.self.ShutdownStart()
}

func (b *Base) finish() {
	b.deactivate()
	b.setState(Shutdown)
	if s, ok := b.self.(SupervisorActor); ok {
		s.supervisor().finished()
	}
}

// handleSystem handles the lifecycle messages addressed to the actor
func (b *Base) handleSystem(env *Envelope) {
	switch msg := env.Payload.(type) {
	case *initRequest:
		if b.lifecycle == nil {
			ReplyError(b.self, msg, gerrors.ErrActorMisconfigured)
			return
		}
		b.lifecycle.onInit(msg)
	case *shutdownRequest:
		if b.lifecycle == nil {
			ReplyError(b.self, msg, gerrors.ErrActorMisconfigured)
			return
		}
		b.lifecycle.onShutdown(msg)
	case *start:
		if b.starter != nil {
			b.starter.onStart()
		}
	case *subscriptionConfirmed:
		if b.lifetime != nil {
			b.lifetime.confirmed(msg.subscription)
		}
	default:
		b.Logger().Debugf("%s: unhandled system message %s", b.address, env.TypeName())
	}
}
