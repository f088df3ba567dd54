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

package registry

import (
	"slices"
	"time"

	"github.com/duke-git/lancet/v2/slice"
	"github.com/pkg/errors"

	"github.com/tochemey/supervise/actor"
	"github.com/tochemey/supervise/address"
)

// Identities of the registry plugins
const (
	AnnouncerIdentity  = "registry_announcer"
	DiscovererIdentity = "registry_discoverer"
)

// Announcer registers the actor address under a set of names during init.
//
// The init waits until every registration is confirmed and fails when one
// is rejected. At shutdown the address is deregistered.
type Announcer struct {
	base     *actor.Base
	registry address.Address
	names    []string
	timeout  time.Duration
	sent     bool
	pending  int
	released bool
}

var (
	_ actor.Plugin          = (*Announcer)(nil)
	_ actor.InitReactor     = (*Announcer)(nil)
	_ actor.ShutdownReactor = (*Announcer)(nil)
)

// NewAnnouncer creates an Announcer. Each registration uses the given
// timeout.
func NewAnnouncer(registry address.Address, timeout time.Duration, names ...string) *Announcer {
	return &Announcer{
		registry: registry,
		names:    slice.Unique(names),
		timeout:  timeout,
	}
}

// Identity implements actor.Plugin
func (*Announcer) Identity() string { return AnnouncerIdentity }

// Activate implements actor.Plugin
func (p *Announcer) Activate(b *actor.Base) {
	p.base = b
	actor.Subscribe(b.Self(), p.onRegistered)
}

// Deactivate implements actor.Plugin
func (*Announcer) Deactivate() {}

// HandleInit implements actor.InitReactor
func (p *Announcer) HandleInit() bool {
	if !p.sent {
		p.sent = true
		p.pending = len(p.names)
		for _, name := range p.names {
			Register(p.base.Self(), p.registry, name, p.base.Address()).Send(p.timeout)
		}
	}
	return p.pending == 0
}

// HandleShutdown implements actor.ShutdownReactor
func (p *Announcer) HandleShutdown() bool {
	if p.sent && !p.released {
		p.released = true
		DeregisterAddress(p.base.Self(), p.registry, p.base.Address())
	}
	return true
}

func (p *Announcer) onRegistered(res *actor.Response[Registration, Registered]) {
	req := res.Request.Payload
	if req.Address != p.base.Address() || !slices.Contains(p.names, req.Name) {
		return
	}

	if res.Err != nil {
		p.base.FailInit(errors.Wrapf(res.Err, "failed to register %q", req.Name))
		return
	}

	p.pending--
	if p.pending == 0 {
		p.base.InitContinue()
	}
}

// Discoverer resolves a set of names during init.
//
// The init waits until every name is registered, using discovery promises,
// and fails when a promise times out. The resolved addresses are available
// through Resolved once the actor is initialized.
type Discoverer struct {
	base      *actor.Base
	registry  address.Address
	names     []string
	timeout   time.Duration
	resolved  map[string]address.Address
	sent      bool
	cancelled bool
}

var (
	_ actor.Plugin          = (*Discoverer)(nil)
	_ actor.InitReactor     = (*Discoverer)(nil)
	_ actor.ShutdownReactor = (*Discoverer)(nil)
)

// NewDiscoverer creates a Discoverer. Each promise uses the given timeout.
func NewDiscoverer(registry address.Address, timeout time.Duration, names ...string) *Discoverer {
	return &Discoverer{
		registry: registry,
		names:    slice.Unique(names),
		timeout:  timeout,
		resolved: make(map[string]address.Address),
	}
}

// Identity implements actor.Plugin
func (*Discoverer) Identity() string { return DiscovererIdentity }

// Activate implements actor.Plugin
func (p *Discoverer) Activate(b *actor.Base) {
	p.base = b
	actor.Subscribe(b.Self(), p.onDiscovered)
}

// Deactivate implements actor.Plugin
func (*Discoverer) Deactivate() {}

// Resolved returns the address discovered for the given name
func (p *Discoverer) Resolved(name string) (address.Address, bool) {
	addr, ok := p.resolved[name]
	return addr, ok
}

// HandleInit implements actor.InitReactor
func (p *Discoverer) HandleInit() bool {
	if !p.sent {
		p.sent = true
		for _, name := range p.names {
			Promise(p.base.Self(), p.registry, name).Send(p.timeout)
		}
	}
	return len(p.resolved) == len(p.names)
}

// HandleShutdown implements actor.ShutdownReactor
func (p *Discoverer) HandleShutdown() bool {
	if p.sent && !p.cancelled {
		p.cancelled = true
		for _, name := range p.names {
			if _, ok := p.resolved[name]; !ok {
				CancelDiscovery(p.base.Self(), p.registry, name)
			}
		}
	}
	return true
}

func (p *Discoverer) onDiscovered(res *actor.Response[DiscoveryPromise, Discovered]) {
	name := res.Request.Payload.Name
	if !slices.Contains(p.names, name) {
		return
	}

	if res.Err != nil {
		p.base.FailInit(errors.Wrapf(res.Err, "failed to discover %q", name))
		return
	}

	p.resolved[name] = res.Payload.Address
	if len(p.resolved) == len(p.names) {
		p.base.InitContinue()
	}
}
