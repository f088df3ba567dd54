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
	"slices"
	"time"

	"github.com/tochemey/supervise/address"
	gerrors "github.com/tochemey/supervise/errors"
	"github.com/tochemey/supervise/supervisor"
	"github.com/tochemey/supervise/telemetry"
)

// SupervisorActor is implemented by every type embedding Supervisor
type SupervisorActor interface {
	Actor
	supervisor() *Supervisor
}

// Supervisor is an actor owning other actors.
//
// It creates its children, drives their init and shutdown handshakes,
// correlates the requests issued by the actors it manages and processes the
// queue of its locality. A supervisor spawned without its own driver shares
// the locality of its parent.
type Supervisor struct {
	Base

	parent          *Supervisor
	loc             *locality
	spec            *supervisor.Spec
	initTimeout     time.Duration
	shutdownTimeout time.Duration
	arena           map[address.Address]*child
	order           []address.Address
	subscriptions   subscriptionTable
	pending         map[RequestID]*pendingRequest
	requestSeq      RequestID
	lineageSeq      uint64
	childManager    *ChildManager
	metrics         *telemetry.Recorder
	done            chan struct{}
	forced          bool
}

var _ SupervisorActor = (*Supervisor)(nil)

// child is the arena record of an actor owned by a supervisor.
// A child is in the holding area until it confirmed its init.
type child struct {
	actor       Actor
	config      *spawnConfig
	lineage     uint64
	initialized bool
	failed      bool
	stopping    bool
	restart     bool
}

func (s *Supervisor) supervisor() *Supervisor {
	return s
}

// Plugins returns SupervisorPlugins
func (s *Supervisor) Plugins() []Plugin {
	return SupervisorPlugins()
}

// MakeAddress creates a fresh address owned by the supervisor
func (s *Supervisor) MakeAddress() address.Address {
	return address.New(s.loc.token, s.address.ID())
}

// Parent returns the parent supervisor. It is nil for a root.
func (s *Supervisor) Parent() *Supervisor {
	return s.parent
}

// Locality returns the token of the supervisor's locality
func (s *Supervisor) Locality() address.Locality {
	return s.loc.token
}

// Spec returns the supervision spec
func (s *Supervisor) Spec() *supervisor.Spec {
	return s.spec
}

// Done is closed once the supervisor reached Shutdown
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

// Enqueue hands an envelope to the supervisor's locality.
// It can be called from any goroutine.
func (s *Supervisor) Enqueue(env *Envelope) {
	s.loc.enqueue(env)
}

// Process drains the supervisor's locality queues on the calling goroutine.
// Drivers call it; tests using ManualDriver call it directly.
func (s *Supervisor) Process() {
	s.loc.Process()
}

// Children returns the addresses of the children that confirmed their init,
// in creation order
func (s *Supervisor) Children() []address.Address {
	children := make([]address.Address, 0, len(s.order))
	for _, addr := range s.order {
		if c := s.arena[addr]; c.initialized {
			children = append(children, addr)
		}
	}
	return children
}

// ChildrenCount returns the number of actors owned by the supervisor,
// including the ones still initializing
func (s *Supervisor) ChildrenCount() int {
	return len(s.arena)
}

// Spawn creates a child actor and requests its init.
//
// The child is activated synchronously: its address is routable when Spawn
// returns. Spawn must be called from the goroutine processing the
// supervisor's locality, typically from a hook or a handler. Use SpawnAsync
// from any other goroutine.
func (s *Supervisor) Spawn(a Actor, opts ...SpawnOption) (address.Address, error) {
	config, err := s.spawnConfig(a, opts)
	if err != nil {
		return address.NoAddress, err
	}

	if err := s.prepare(a, config); err != nil {
		return address.NoAddress, err
	}

	if err := s.create(a, config); err != nil {
		return address.NoAddress, err
	}
	return a.base().address, nil
}

// SpawnAsync is the thread-safe variant of Spawn. The address is assigned
// immediately; the child is activated when the supervisor processes the
// creation. Activation failures are reported to the system error sink.
func (s *Supervisor) SpawnAsync(a Actor, opts ...SpawnOption) (address.Address, error) {
	config, err := s.spawnConfig(a, opts)
	if err != nil {
		return address.NoAddress, err
	}

	if err := s.prepare(a, config); err != nil {
		return address.NoAddress, err
	}

	addr := a.base().address
	s.Enqueue(NewEnvelope(s.address, &createActor{actor: a, config: config}))
	return addr, nil
}

func (s *Supervisor) spawnConfig(a Actor, opts []SpawnOption) (*spawnConfig, error) {
	if a == nil {
		return nil, gerrors.ErrUndefinedActor
	}

	if s.State() >= ShuttingDown {
		return nil, gerrors.ErrSupervisorWrongState
	}

	config := newSpawnConfig(s.initTimeout, opts...)
	if config.initTimeout <= 0 {
		return nil, gerrors.ErrInvalidTimeout
	}
	return config, nil
}

// setup initializes the supervisor state. A supervisor without parent or
// with its own driver leads a new locality.
func (s *Supervisor) setup(system *System, parent *Supervisor, driver Driver, opts []SupervisorOption) {
	config := system.supervisorConfig(opts...)

	s.parent = parent
	s.spec = supervisor.New(config.supervision...)
	s.initTimeout = config.initTimeout
	s.shutdownTimeout = config.shutdownTimeout
	s.arena = make(map[address.Address]*child)
	s.subscriptions = make(subscriptionTable)
	s.pending = make(map[RequestID]*pendingRequest)
	s.done = make(chan struct{})

	if parent == nil || driver != nil {
		s.loc = newLocality(system, driver, config.inboxCapacity)
		s.loc.leader = s
	} else {
		s.loc = parent.loc
	}

	s.address = address.NewOwner(s.loc.token)
	s.metrics = s.loc.metrics
}

// prepare binds the actor and assigns its address
func (s *Supervisor) prepare(a Actor, config *spawnConfig) error {
	b := a.base()
	if sa, ok := a.(SupervisorActor); ok {
		nested := sa.supervisor()
		if err := b.bind(a, s.system, nested); err != nil {
			return err
		}
		nested.setup(s.system, s, config.driver, config.supervisorOptions)
		return nil
	}

	if err := b.bind(a, s.system, s); err != nil {
		return err
	}
	b.address = s.MakeAddress()
	return nil
}

// create activates a prepared actor, stores it in the holding area and
// requests its init
func (s *Supervisor) create(a Actor, config *spawnConfig) error {
	if s.State() >= ShuttingDown {
		return gerrors.ErrSupervisorWrongState
	}

	b := a.base()
	var nested *Supervisor
	if sa, ok := a.(SupervisorActor); ok {
		nested = sa.supervisor()
		nested.loc.attach(nested)
	}

	if err := b.activate(); err != nil {
		if nested != nil {
			nested.loc.detach(nested)
		}
		return err
	}

	if nested != nil {
		if err := nested.launch(); err != nil {
			nested.abort()
			return err
		}
	}

	if config.lineage == 0 {
		s.lineageSeq++
		config.lineage = s.lineageSeq
	}

	s.arena[b.address] = &child{actor: a, config: config, lineage: config.lineage}
	s.order = append(s.order, b.address)
	s.metrics.Spawned()
	s.Logger().Debugf("%s: created %s", s.address, b.address)

	Ask[initialize, initialized](s, b.address, initialize{actor: b.address}).Send(config.initTimeout)
	return nil
}

// launch completes the activation of a supervisor: the children gate is
// mandatory and a locality leader binds its driver.
func (s *Supervisor) launch() error {
	if s.childManager == nil {
		return gerrors.ErrActorMisconfigured
	}

	if s.loc.leader != s {
		return nil
	}

	if s.loc.driver == nil {
		return gerrors.ErrActorMisconfigured
	}

	if err := s.loc.driver.Bind(s.loc); err != nil {
		return err
	}
	s.loc.wakeup()
	return nil
}

// abort undoes the activation of a supervisor that failed to launch
func (s *Supervisor) abort() {
	for id, pending := range s.pending {
		s.loc.driver.CancelTimer(pending.timer)
		delete(s.pending, id)
	}

	s.deactivate()
	s.loc.detach(s)
	if s.parent == nil {
		s.system.rootFinished(s)
	}
}

// issue registers a pending request, arms its deadline and routes it
func (s *Supervisor) issue(env *Envelope, timeout time.Duration, assign func(RequestID), onTimeout func() *Envelope) RequestID {
	s.requestSeq++
	id := s.requestSeq
	assign(id)

	timer := s.loc.driver.StartTimer(timeout, func() {
		s.Enqueue(NewEnvelope(s.address, &timerFired{id: id}))
	})

	s.pending[id] = &pendingRequest{request: env, timeout: onTimeout, timer: timer}
	s.metrics.RequestSent()
	s.loc.push(env)
	return id
}

// deliver dispatches an envelope addressed to the supervisor or to one of
// its children
func (s *Supervisor) deliver(env *Envelope) {
	if isSystem(env.Payload) {
		if env.To == s.address {
			s.handleSystem(env)
			return
		}

		if c, ok := s.arena[env.To]; ok {
			c.actor.base().handleSystem(env)
			return
		}

		s.Logger().Debugf("dead letter: %s", env)
		s.metrics.DeadLetter()
		return
	}

	entries := s.subscriptions.snapshot(env)
	if len(entries) == 0 {
		s.Logger().Debugf("dead letter: %s", env)
		s.metrics.DeadLetter()
		return
	}

	for _, e := range entries {
		if !e.local {
			s.loc.push(NewEnvelope(e.handler.owner.supervisor.address, &handlerCall{envelope: env, handler: e.handler}))
			continue
		}

		if e.handler.active {
			s.invoke(e.handler, env)
		}
	}
}

// invoke runs a handler. A panic is recovered and reported to the error sink.
func (s *Supervisor) invoke(h *handler, env *Envelope) {
	defer func() {
		if r := recover(); r != nil {
			err := gerrors.NewPanicError(r)
			h.owner.Logger().Errorf("%s: handler panicked on %s: %v", h.owner.address, env.TypeName(), err)
			s.system.ReportError(gerrors.NewChildError(h.owner.address, err))
		}
	}()

	s.metrics.Delivered()
	h.invoke(env)
}

// handleSystem handles the system messages addressed to the supervisor
func (s *Supervisor) handleSystem(env *Envelope) {
	switch msg := env.Payload.(type) {
	case *reply:
		s.onReply(msg)
	case *timerFired:
		s.onTimerFired(msg)
	case *createActor:
		s.onCreate(msg)
	case *shutdownTrigger:
		s.onShutdownTrigger(msg)
	case *initResponse:
		s.onInitResponse(msg)
	case *shutdownResponse:
		s.onShutdownResponse(msg)
	case *handlerCall:
		s.onHandlerCall(msg)
	case *externalSubscription:
		s.onExternalSubscription(msg)
	case *externalUnsubscription:
		s.onExternalUnsubscription(msg)
	case *commitUnsubscription:
		s.onCommitUnsubscription(msg)
	default:
		s.Base.handleSystem(env)
	}
}

func (s *Supervisor) onReply(msg *reply) {
	pending, ok := s.pending[msg.id]
	if !ok {
		s.Logger().Debugf("%s: dropping late reply to request %d", s.address, msg.id)
		return
	}

	delete(s.pending, msg.id)
	s.loc.driver.CancelTimer(pending.timer)
	s.loc.push(msg.inner)
}

func (s *Supervisor) onTimerFired(msg *timerFired) {
	pending, ok := s.pending[msg.id]
	if !ok {
		return
	}

	delete(s.pending, msg.id)
	s.metrics.RequestTimedOut()
	s.Logger().Debugf("%s: request %d to %s timed out", s.address, msg.id, pending.request.To)
	s.loc.push(pending.timeout())
}

func (s *Supervisor) onCreate(msg *createActor) {
	if err := s.create(msg.actor, msg.config); err != nil {
		addr := msg.actor.base().address
		s.Logger().Errorf("%s: failed to create %s: %v", s.address, addr, err)
		s.system.ReportError(gerrors.NewChildError(addr, err))
	}
}

func (s *Supervisor) onShutdownTrigger(msg *shutdownTrigger) {
	if msg.actor == s.address {
		if s.parent != nil {
			s.loc.push(NewEnvelope(s.parent.address, msg))
			return
		}

		if s.State() >= ShuttingDown {
			s.Logger().Debugf("%s: shutdown already in progress", s.address)
			return
		}
		s.beginShutdown()
		return
	}

	c, ok := s.arena[msg.actor]
	if !ok {
		s.Logger().Debugf("%s: shutdown trigger for unknown actor %s", s.address, msg.actor)
		return
	}
	s.stopChild(msg.actor, c)
}

func (s *Supervisor) onInitResponse(res *initResponse) {
	addr := res.Request.Payload.actor
	if addr == s.address {
		s.onSelfInit(res.Err)
		return
	}

	c, ok := s.arena[addr]
	if !ok {
		s.Logger().Debugf("%s: init response for unknown actor %s", s.address, addr)
		return
	}

	if res.Err == nil {
		if c.stopping {
			return
		}
		c.initialized = true
		s.loc.push(NewEnvelope(addr, &start{}))
		s.InitContinue()
		return
	}

	if c.stopping || s.State() >= ShuttingDown {
		if !c.restart {
			c.failed = true
		}
		s.InitContinue()
		return
	}

	s.metrics.ChildFailed()
	s.Logger().Warnf("%s: child %s failed to initialize: %v", s.address, addr, res.Err)

	switch s.spec.Decide(c.lineage, c.config.producer != nil) {
	case supervisor.EscalateDirective:
		c.failed = true
		if s.parent == nil {
			s.system.ReportError(gerrors.NewChildError(addr, res.Err))
		}
		s.DoShutdown()
	case supervisor.RestartDirective:
		c.restart = true
		s.stopChild(addr, c)
	default:
		c.failed = true
		s.stopChild(addr, c)
		s.InitContinue()
	}
}

// onSelfInit handles the response to the init request a root sends itself
func (s *Supervisor) onSelfInit(err error) {
	if err == nil {
		s.loc.push(NewEnvelope(s.address, &start{}))
		return
	}

	if s.State() >= ShuttingDown {
		return
	}

	s.Logger().Errorf("%s: failed to initialize: %v", s.address, err)
	s.system.ReportError(gerrors.NewChildError(s.address, err))
	s.DoShutdown()
}

func (s *Supervisor) onShutdownResponse(res *shutdownResponse) {
	addr := res.Request.Payload.actor
	c, ok := s.arena[addr]
	if !ok {
		return
	}

	if res.Err != nil {
		var err error = gerrors.NewChildError(addr, res.Err)
		if errors.Is(res.Err, gerrors.ErrRequestTimeout) {
			err = gerrors.NewShutdownTimeoutError(addr, res.Err)
		}

		s.Logger().Errorf("%s: forcibly removing %s: %v", s.address, addr, res.Err)
		s.metrics.ForcedRemoval()
		s.subscriptions.purge(c.actor.base())
		if lifetime := c.actor.base().lifetime; lifetime != nil {
			lifetime.revoke(s.loc.push)
		}
		s.system.ReportError(err)
	}
	s.remove(addr, c)
}

// remove drops a child from the arena, recreates it when it was marked for
// restart and lets the pending handshakes of the supervisor progress
func (s *Supervisor) remove(addr address.Address, c *child) {
	delete(s.arena, addr)
	s.order = slices.DeleteFunc(s.order, func(a address.Address) bool { return a == addr })

	if c.restart && s.State() < ShuttingDown {
		s.respawn(c)
	} else {
		s.spec.Forget(c.lineage)
	}

	switch s.State() {
	case Initializing:
		s.InitContinue()
	case ShuttingDown:
		if s.forced {
			s.forceShutdown(nil)
			return
		}
		s.ShutdownContinue()
	}
}

// forceShutdown completes the shutdown of a root whose shutdown was
// rejected. The first call reports err; the root reaches Shutdown once its
// arena is empty.
func (s *Supervisor) forceShutdown(err error) {
	if !s.forced {
		s.forced = true
		s.Logger().Errorf("%s: forcing shutdown: %v", s.address, err)
		s.system.ReportError(gerrors.NewChildError(s.address, err))
		s.stopChildren()
	}

	if len(s.arena) == 0 && s.State() == ShuttingDown {
		s.finish()
	}
}

func (s *Supervisor) respawn(c *child) {
	a := c.config.producer()
	if a == nil {
		s.spec.Forget(c.lineage)
		s.system.ReportError(gerrors.NewChildError(address.NoAddress, gerrors.ErrUndefinedActor))
		return
	}

	if err := s.prepare(a, c.config); err != nil {
		s.system.ReportError(gerrors.NewChildError(address.NoAddress, err))
		return
	}

	if err := s.create(a, c.config); err != nil {
		s.system.ReportError(gerrors.NewChildError(a.base().address, err))
		return
	}
	s.Logger().Infof("%s: restarted child as %s", s.address, a.base().address)
}

// holding returns true while a child has neither confirmed nor failed its init
func (s *Supervisor) holding() bool {
	for _, c := range s.arena {
		if !c.initialized && !c.failed {
			return true
		}
	}
	return false
}

// stopChildren requests the shutdown of every child not asked yet
func (s *Supervisor) stopChildren() {
	for _, addr := range slices.Clone(s.order) {
		if c, ok := s.arena[addr]; ok {
			s.stopChild(addr, c)
		}
	}
}

func (s *Supervisor) stopChild(addr address.Address, c *child) {
	if c.stopping {
		return
	}
	c.stopping = true
	Ask[shutdown, shutdownDone](s, addr, shutdown{actor: addr}).Send(s.shutdownTimeout)
}

func (s *Supervisor) onHandlerCall(msg *handlerCall) {
	if msg.handler.active {
		s.invoke(msg.handler, msg.envelope)
	}
}

func (s *Supervisor) onExternalSubscription(msg *externalSubscription) {
	sub := msg.subscription
	owner := sub.handler.owner
	s.subscriptions.add(sub.address, sub.handler, owner.supervisor == s)
	s.loc.push(NewEnvelope(owner.address, &subscriptionConfirmed{subscription: sub}))
}

func (s *Supervisor) onExternalUnsubscription(msg *externalUnsubscription) {
	sub := msg.subscription
	s.subscriptions.remove(sub.address, sub.handler)
	s.loc.push(NewEnvelope(sub.handler.owner.supervisor.address, &commitUnsubscription{subscription: sub}))
}

func (s *Supervisor) onCommitUnsubscription(msg *commitUnsubscription) {
	sub := msg.subscription
	s.subscriptions.remove(sub.address, sub.handler)
	sub.handler.active = false
	if lifetime := sub.handler.owner.lifetime; lifetime != nil {
		lifetime.committed(sub)
	}
}

func (s *Supervisor) onStateQuery(req *Request[StateQuery, State]) {
	target := req.Payload.Actor
	if target == s.address {
		Reply(s, req, s.State())
		return
	}

	if c, ok := s.arena[target]; ok {
		Reply(s, req, c.actor.base().State())
		return
	}
	ReplyError(s, req, gerrors.ErrMissingActor)
}

// finished releases the supervisor resources once it reached Shutdown
func (s *Supervisor) finished() {
	for id, pending := range s.pending {
		s.loc.driver.CancelTimer(pending.timer)
		delete(s.pending, id)
	}

	s.loc.detach(s)
	if s.parent == nil {
		s.system.rootFinished(s)
	}

	if s.loc.leader == s {
		s.loc.stop()
	}
	close(s.done)
}
