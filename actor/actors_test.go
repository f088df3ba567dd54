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
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tochemey/supervise/address"
	"github.com/tochemey/supervise/log"
)

// errorSink records the errors reported to the system
type errorSink struct {
	mu   sync.Mutex
	errs []error
}

func (s *errorSink) report(err error) {
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

func (s *errorSink) errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errs...)
}

func newTestSystem(t *testing.T, opts ...Option) (*System, *errorSink) {
	t.Helper()
	sink := new(errorSink)
	system, err := NewSystem("test", append([]Option{WithLogger(log.DiscardLogger), WithErrorSink(sink.report)}, opts...)...)
	require.NoError(t, err)
	return system, sink
}

func newTestRoot(t *testing.T, system *System, opts ...SupervisorOption) (*Supervisor, *ManualDriver) {
	t.Helper()
	driver := NewManualDriver()
	root, err := system.NewRoot(driver, opts...)
	require.NoError(t, err)
	return root, driver
}

// settle processes every given supervisor locality until none has work left
func settle(supervisors ...*Supervisor) {
	for range 16 {
		for _, s := range supervisors {
			s.Process()
		}
	}
}

func lastTimer(t *testing.T, driver *ManualDriver) TimerID {
	t.Helper()
	timers := driver.ActiveTimers()
	require.NotEmpty(t, timers)
	return timers[len(timers)-1]
}

// note is a plain user message
type note struct {
	text string
}

// ping and pong are the payloads of a user request
type ping struct{}

type pong struct {
	from address.Address
}

// idleActor uses every default hook
type idleActor struct {
	Base
}

// stallingActor never completes the handshakes it is told to stall
type stallingActor struct {
	Base
	stallInit     bool
	stallShutdown bool
}

func (a *stallingActor) InitFinish() {
	if !a.stallInit {
		a.ConfirmInit()
	}
}

func (a *stallingActor) ShutdownFinish() {
	if !a.stallShutdown {
		a.ConfirmShutdown()
	}
}

// failingActor rejects its init
type failingActor struct {
	Base
	err error
}

func (a *failingActor) InitStart() {
	a.FailInit(a.err)
}

// quittingActor asks for its own shutdown as soon as it is Operational
type quittingActor struct {
	Base
	started int
}

func (a *quittingActor) OnStart() {
	a.started++
	a.DoShutdown()
}

// recorder subscribes to notes sent to its address or to a target address
type recorder struct {
	Base
	target *address.Address
	panics bool
	notes  []string
	sub    *Subscription
}

func (r *recorder) Configure(plugin Plugin) {
	if plugin.Identity() != LifetimeIdentity {
		return
	}

	if r.target != nil {
		r.sub = SubscribeTo(r, *r.target, r.onNote)
		return
	}
	r.sub = Subscribe(r, r.onNote)
}

func (r *recorder) onNote(msg *note) {
	if r.panics {
		panic("boom")
	}
	r.notes = append(r.notes, msg.text)
}

// gatedRecorder is a recorder taking part in the handshakes through a gatePlugin
type gatedRecorder struct {
	recorder
	gate *gatePlugin
}

func (r *gatedRecorder) Plugins() []Plugin {
	return append(DefaultPlugins(), r.gate)
}

// server answers pings, unless silent in which case it keeps the requests
type server struct {
	Base
	silent  bool
	pending []*Request[ping, pong]
}

func (s *server) Configure(plugin Plugin) {
	if plugin.Identity() == LifetimeIdentity {
		Subscribe(s, s.onPing)
	}
}

func (s *server) onPing(req *Request[ping, pong]) {
	if s.silent {
		s.pending = append(s.pending, req)
		return
	}
	Reply(s, req, pong{from: s.Address()})
}

// client records the responses it receives
type client struct {
	Base
	responses []*Response[ping, pong]
	states    []*Response[StateQuery, State]
}

func (c *client) Configure(plugin Plugin) {
	if plugin.Identity() == LifetimeIdentity {
		Subscribe(c, c.onPong)
		Subscribe(c, c.onState)
	}
}

func (c *client) onPong(res *Response[ping, pong]) {
	c.responses = append(c.responses, res)
}

func (c *client) onState(res *Response[StateQuery, State]) {
	c.states = append(c.states, res)
}

// gatePlugin takes part in the handshakes of an actor
type gatePlugin struct {
	base         *Base
	vetoInit     bool
	rejectInit   error
	rejectShut   error
	deactivated  bool
	initCalls    int
	shutdownRuns int
}

var (
	_ InitReactor     = (*gatePlugin)(nil)
	_ ShutdownReactor = (*gatePlugin)(nil)
)

func (p *gatePlugin) Identity() string { return "gate" }

func (p *gatePlugin) Activate(b *Base) { p.base = b }

func (p *gatePlugin) Deactivate() { p.deactivated = true }

func (p *gatePlugin) HandleInit() bool {
	p.initCalls++
	if p.rejectInit != nil {
		p.base.FailInit(p.rejectInit)
		return false
	}
	return !p.vetoInit
}

func (p *gatePlugin) HandleShutdown() bool {
	p.shutdownRuns++
	if p.rejectShut != nil {
		p.base.FailShutdown(p.rejectShut)
		return false
	}
	return true
}

// gatedActor appends a gatePlugin to the default plugins
type gatedActor struct {
	Base
	gate *gatePlugin
}

func (a *gatedActor) Plugins() []Plugin {
	return append(DefaultPlugins(), a.gate)
}

// gatedSupervisor appends a gatePlugin to the supervisor plugins
type gatedSupervisor struct {
	Supervisor
	gate *gatePlugin
}

func (s *gatedSupervisor) Plugins() []Plugin {
	return append(s.Supervisor.Plugins(), s.gate)
}

// incompleteActor lacks the mandatory plugins
type incompleteActor struct {
	Base
}

func (a *incompleteActor) Plugins() []Plugin {
	return []Plugin{new(AddressMaker)}
}

// nestedSupervisor is a user supervisor embedding Supervisor
type nestedSupervisor struct {
	Supervisor
	started int
}

func (s *nestedSupervisor) OnStart() {
	s.started++
}
