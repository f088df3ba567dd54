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

// Package registry provides a name service actor mapping service names to
// addresses, with immediate and promise-style discovery.
//
// The registry is a plain actor: spawn it under any supervisor and hand its
// address to the actors that need it. Requests are sent with the client
// helpers of this package, or declaratively during init with the Announcer
// and Discoverer plugins.
package registry

import (
	goset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/supervise/actor"
	"github.com/tochemey/supervise/address"
	gerrors "github.com/tochemey/supervise/errors"
)

// Registration asks the registry to map Name to Address
type Registration struct {
	Name    string
	Address address.Address
}

// Registered confirms a Registration
type Registered struct{}

// Discovery asks for the address of a name. It fails with
// errors.ErrUnknownService when the name is not registered.
type Discovery struct {
	Name string
}

// DiscoveryPromise asks for the address of a name. The request is answered
// once the name gets registered, unless it times out or is cancelled first.
type DiscoveryPromise struct {
	Name string
}

// Discovered answers a Discovery or a DiscoveryPromise
type Discovered struct {
	Address address.Address
}

// Deregistration removes every name registered for Address
type Deregistration struct {
	Address address.Address
}

// ServiceDeregistration removes a single name
type ServiceDeregistration struct {
	Name string
}

// DiscoveryCancel drops the first promise on Name issued by Requester
type DiscoveryCancel struct {
	Name      string
	Requester address.Address
}

type (
	registrationRequest = actor.Request[Registration, Registered]
	discoveryRequest    = actor.Request[Discovery, Discovered]
	promiseRequest      = actor.Request[DiscoveryPromise, Discovered]
)

// Registry is the name service actor
type Registry struct {
	actor.Base

	registered map[string]address.Address
	reverse    map[address.Address]goset.Set[string]
	promises   map[string][]*promiseRequest
}

var _ actor.Actor = (*Registry)(nil)

// New creates an instance of Registry
func New() *Registry {
	return &Registry{
		registered: make(map[string]address.Address),
		reverse:    make(map[address.Address]goset.Set[string]),
		promises:   make(map[string][]*promiseRequest),
	}
}

// Configure subscribes the registry handlers once the subscriptions can be
// tracked
func (r *Registry) Configure(plugin actor.Plugin) {
	if plugin.Identity() != actor.StarterIdentity {
		return
	}

	actor.Subscribe(r, r.onRegistration)
	actor.Subscribe(r, r.onDeregistration)
	actor.Subscribe(r, r.onServiceDeregistration)
	actor.Subscribe(r, r.onDiscovery)
	actor.Subscribe(r, r.onPromise)
	actor.Subscribe(r, r.onCancel)
}

// ShutdownStart cancels the pending promises before the shutdown proceeds
func (r *Registry) ShutdownStart() {
	for name, promises := range r.promises {
		for _, req := range promises {
			actor.ReplyError(r, req, gerrors.ErrDiscoveryCancelled)
		}
		delete(r.promises, name)
	}
	r.ShutdownContinue()
}

// Names returns the names registered for the given address
func (r *Registry) Names(addr address.Address) []string {
	names, ok := r.reverse[addr]
	if !ok {
		return nil
	}
	return names.ToSlice()
}

// Lookup returns the address registered under the given name
func (r *Registry) Lookup(name string) (address.Address, bool) {
	addr, ok := r.registered[name]
	return addr, ok
}

// PendingPromises returns the number of promises waiting on the given name
func (r *Registry) PendingPromises(name string) int {
	return len(r.promises[name])
}

func (r *Registry) onRegistration(req *registrationRequest) {
	name := req.Payload.Name
	if _, ok := r.registered[name]; ok {
		r.Logger().Debugf("%s: %q is already registered", r.Address(), name)
		actor.ReplyError(r, req, gerrors.ErrAlreadyRegistered)
		return
	}

	addr := req.Payload.Address
	r.registered[name] = addr
	names, ok := r.reverse[addr]
	if !ok {
		names = goset.NewThreadUnsafeSet[string]()
		r.reverse[addr] = names
	}
	names.Add(name)

	actor.Reply(r, req, Registered{})
	r.Logger().Debugf("%s: registered %q as %s", r.Address(), name, addr)

	promises, ok := r.promises[name]
	if !ok {
		return
	}

	delete(r.promises, name)
	for _, promise := range promises {
		actor.Reply(r, promise, Discovered{Address: addr})
	}
}

func (r *Registry) onDeregistration(msg *Deregistration) {
	names, ok := r.reverse[msg.Address]
	if !ok {
		return
	}

	names.Each(func(name string) bool {
		delete(r.registered, name)
		return false
	})
	delete(r.reverse, msg.Address)
	r.Logger().Debugf("%s: deregistered %s", r.Address(), msg.Address)
}

func (r *Registry) onServiceDeregistration(msg *ServiceDeregistration) {
	addr, ok := r.registered[msg.Name]
	if !ok {
		return
	}

	delete(r.registered, msg.Name)
	if names, ok := r.reverse[addr]; ok {
		names.Remove(msg.Name)
		if names.Cardinality() == 0 {
			delete(r.reverse, addr)
		}
	}
}

func (r *Registry) onDiscovery(req *discoveryRequest) {
	addr, ok := r.registered[req.Payload.Name]
	if !ok {
		actor.ReplyError(r, req, gerrors.ErrUnknownService)
		return
	}
	actor.Reply(r, req, Discovered{Address: addr})
}

func (r *Registry) onPromise(req *promiseRequest) {
	name := req.Payload.Name
	if addr, ok := r.registered[name]; ok {
		actor.Reply(r, req, Discovered{Address: addr})
		return
	}
	r.promises[name] = append(r.promises[name], req)
}

func (r *Registry) onCancel(msg *DiscoveryCancel) {
	promises, ok := r.promises[msg.Name]
	if !ok {
		return
	}

	for i, req := range promises {
		if req.Origin() != msg.Requester {
			continue
		}

		promises = append(promises[:i], promises[i+1:]...)
		if len(promises) == 0 {
			delete(r.promises, msg.Name)
		} else {
			r.promises[msg.Name] = promises
		}
		actor.ReplyError(r, req, gerrors.ErrDiscoveryCancelled)
		return
	}
}
