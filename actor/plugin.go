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

import gerrors "github.com/tochemey/supervise/errors"

// Plugin is a unit of lifecycle behavior attached to an actor.
//
// Plugins are activated in list order when the actor is created and
// deactivated in reverse order when it reaches Shutdown. A plugin takes part
// in the handshakes by implementing InitReactor and/or ShutdownReactor.
type Plugin interface {
	// Identity returns the name of the plugin
	Identity() string
	// Activate attaches the plugin to the actor
	Activate(b *Base)
	// Deactivate detaches the plugin
	Deactivate()
}

// InitReactor is implemented by plugins taking part in the init handshake.
//
// HandleInit returns false to veto the init. The plugin then calls
// Base.InitContinue once it is ready, or Base.FailInit to reject.
// Reactions are run again from the first plugin on every continuation,
// so they must be idempotent.
type InitReactor interface {
	HandleInit() bool
}

// ShutdownReactor is implemented by plugins taking part in the shutdown
// handshake. Reactions run in reverse activation order.
//
// HandleShutdown returns false to veto the shutdown. The plugin then calls
// Base.ShutdownContinue once it is ready, or Base.FailShutdown to reject.
type ShutdownReactor interface {
	HandleShutdown() bool
}

// Identities of the built-in plugins
const (
	AddressMakerIdentity = "address_maker"
	LifetimeIdentity     = "lifetime"
	InitShutdownIdentity = "init_shutdown"
	PrestarterIdentity   = "prestarter"
	StarterIdentity      = "starter"
	ChildManagerIdentity = "child_manager"
)

// DefaultPlugins returns a fresh plugin list for a plain actor
func DefaultPlugins() []Plugin {
	return []Plugin{
		new(AddressMaker),
		new(Lifetime),
		new(InitShutdown),
		new(Prestarter),
		new(Starter),
	}
}

// SupervisorPlugins returns a fresh plugin list for a supervisor
func SupervisorPlugins() []Plugin {
	return []Plugin{
		new(AddressMaker),
		new(Lifetime),
		new(InitShutdown),
		new(ChildManager),
		new(Prestarter),
		new(Starter),
	}
}

// AddressMaker assigns the actor address when it has none yet
type AddressMaker struct{}

var _ Plugin = (*AddressMaker)(nil)

// Identity implements Plugin
func (*AddressMaker) Identity() string { return AddressMakerIdentity }

// Activate implements Plugin
func (*AddressMaker) Activate(b *Base) {
	if b.address.IsZero() && b.supervisor != nil {
		b.address = b.supervisor.MakeAddress()
	}
}

// Deactivate implements Plugin
func (*AddressMaker) Deactivate() {}

// Lifetime tracks the subscriptions of an actor.
//
// It vetoes the init until every external subscription was confirmed by the
// supervisor owning the address, and vetoes the shutdown until every
// subscription was released.
type Lifetime struct {
	base       *Base
	points     []*Subscription
	confirming int
	releasing  bool
}

var (
	_ Plugin          = (*Lifetime)(nil)
	_ InitReactor     = (*Lifetime)(nil)
	_ ShutdownReactor = (*Lifetime)(nil)
)

// Identity implements Plugin
func (*Lifetime) Identity() string { return LifetimeIdentity }

// Activate implements Plugin
func (p *Lifetime) Activate(b *Base) {
	p.base = b
	b.lifetime = p
}

// Deactivate implements Plugin
func (p *Lifetime) Deactivate() {
	p.points = nil
}

// HandleInit implements InitReactor
func (p *Lifetime) HandleInit() bool {
	return p.confirming == 0
}

// HandleShutdown implements ShutdownReactor
func (p *Lifetime) HandleShutdown() bool {
	p.releasing = true
	for i := len(p.points) - 1; i >= 0; i-- {
		Unsubscribe(p.base.self, p.points[i])
	}
	return len(p.points) == 0
}

// Count returns the number of subscriptions not yet released
func (p *Lifetime) Count() int {
	return len(p.points)
}

// revoke deactivates every handler of the actor without waiting for the
// unsubscriptions to be committed. The supervisors holding external
// subscriptions are asked through send to drop their entries.
func (p *Lifetime) revoke(send func(env *Envelope)) {
	for _, point := range p.points {
		point.handler.active = false
		if point.external && !point.releasing {
			point.releasing = true
			send(NewEnvelope(point.address.OwnerAddress(), &externalUnsubscription{subscription: point}))
		}
	}
	p.points = nil
	p.confirming = 0
	p.releasing = false
}

func (p *Lifetime) track(sub *Subscription) {
	p.points = append(p.points, sub)
	if sub.external {
		p.confirming++
	}
}

func (p *Lifetime) confirmed(sub *Subscription) {
	if sub.confirmed {
		return
	}
	sub.confirmed = true
	p.confirming--
	if p.confirming == 0 {
		p.base.InitContinue()
	}
}

func (p *Lifetime) committed(sub *Subscription) {
	for i, point := range p.points {
		if point == sub {
			p.points = append(p.points[:i], p.points[i+1:]...)
			break
		}
	}

	if p.releasing && len(p.points) == 0 {
		p.base.ShutdownContinue()
	}
}

// InitShutdown drives the init and shutdown handshakes
type InitShutdown struct {
	base *Base
}

var _ Plugin = (*InitShutdown)(nil)

// Identity implements Plugin
func (*InitShutdown) Identity() string { return InitShutdownIdentity }

// Activate implements Plugin
func (p *InitShutdown) Activate(b *Base) {
	p.base = b
	b.lifecycle = p
}

// Deactivate implements Plugin
func (*InitShutdown) Deactivate() {}

func (p *InitShutdown) onInit(req *initRequest) {
	b := p.base
	if b.State() != New {
		ReplyError(b.self, req, gerrors.ErrSupervisorWrongState)
		return
	}
	b.initRequest = req
	b.setState(Initializing)
	b.self.InitStart()
}

func (p *InitShutdown) onShutdown(req *shutdownRequest) {
	b := p.base
	if b.shutdownRequest != nil || b.State() >= ShuttingDown {
		b.Logger().Debugf("%s: shutdown already in progress", b.address)
		return
	}
	b.shutdownRequest = req
	b.beginShutdown()
}

// Prestarter holds the init handshake while any hold is set
type Prestarter struct {
	base  *Base
	holds map[string]struct{}
}

var (
	_ Plugin      = (*Prestarter)(nil)
	_ InitReactor = (*Prestarter)(nil)
)

// Identity implements Plugin
func (*Prestarter) Identity() string { return PrestarterIdentity }

// Activate implements Plugin
func (p *Prestarter) Activate(b *Base) {
	p.base = b
	p.holds = make(map[string]struct{})
	b.prestarter = p
}

// Deactivate implements Plugin
func (p *Prestarter) Deactivate() {
	clear(p.holds)
}

// HandleInit implements InitReactor
func (p *Prestarter) HandleInit() bool {
	return len(p.holds) == 0
}

// Hold sets a hold
func (p *Prestarter) Hold(reason string) {
	p.holds[reason] = struct{}{}
}

// Release drops a hold and continues the init once none is left
func (p *Prestarter) Release(reason string) {
	if _, ok := p.holds[reason]; !ok {
		return
	}
	delete(p.holds, reason)
	if len(p.holds) == 0 {
		p.base.InitContinue()
	}
}

// Starter moves the actor to Operational when its supervisor acknowledged
// the init
type Starter struct {
	base *Base
}

var _ Plugin = (*Starter)(nil)

// Identity implements Plugin
func (*Starter) Identity() string { return StarterIdentity }

// Activate implements Plugin
func (p *Starter) Activate(b *Base) {
	p.base = b
	b.starter = p
}

// Deactivate implements Plugin
func (*Starter) Deactivate() {}

func (p *Starter) onStart() {
	b := p.base
	if b.State() != Initializing {
		return
	}
	b.setState(Operational)
	b.self.OnStart()
}

// ChildManager is the supervisor plugin owning the children gates: the
// supervisor init waits for every child to confirm its init, and its
// shutdown waits for every child to be removed.
type ChildManager struct {
	supervisor *Supervisor
}

var (
	_ Plugin          = (*ChildManager)(nil)
	_ InitReactor     = (*ChildManager)(nil)
	_ ShutdownReactor = (*ChildManager)(nil)
)

// Identity implements Plugin
func (*ChildManager) Identity() string { return ChildManagerIdentity }

// Activate implements Plugin
func (p *ChildManager) Activate(b *Base) {
	s, ok := b.self.(SupervisorActor)
	if !ok {
		return
	}
	p.supervisor = s.supervisor()
	p.supervisor.childManager = p
	Subscribe(b.self, p.supervisor.onStateQuery)
}

// Deactivate implements Plugin
func (*ChildManager) Deactivate() {}

// HandleInit implements InitReactor
func (p *ChildManager) HandleInit() bool {
	if p.supervisor == nil {
		return true
	}
	return !p.supervisor.holding()
}

// HandleShutdown implements ShutdownReactor
func (p *ChildManager) HandleShutdown() bool {
	if p.supervisor == nil {
		return true
	}
	p.supervisor.stopChildren()
	return len(p.supervisor.arena) == 0
}
