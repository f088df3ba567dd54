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
	"github.com/tochemey/supervise/actor"
	"github.com/tochemey/supervise/address"
)

// Register prepares the registration of name for addr. The requester
// receives *actor.Response[Registration, Registered].
func Register(a actor.Actor, registry address.Address, name string, addr address.Address) *actor.RequestBuilder[Registration, Registered] {
	return actor.Ask[Registration, Registered](a, registry, Registration{Name: name, Address: addr})
}

// Discover prepares a discovery failing immediately when name is unknown.
// The requester receives *actor.Response[Discovery, Discovered].
func Discover(a actor.Actor, registry address.Address, name string) *actor.RequestBuilder[Discovery, Discovered] {
	return actor.Ask[Discovery, Discovered](a, registry, Discovery{Name: name})
}

// Promise prepares a discovery answered once name is registered.
// The requester receives *actor.Response[DiscoveryPromise, Discovered].
func Promise(a actor.Actor, registry address.Address, name string) *actor.RequestBuilder[DiscoveryPromise, Discovered] {
	return actor.Ask[DiscoveryPromise, Discovered](a, registry, DiscoveryPromise{Name: name})
}

// DeregisterName removes a single name
func DeregisterName(a actor.Actor, registry address.Address, name string) {
	actor.Send(a, registry, &ServiceDeregistration{Name: name})
}

// DeregisterAddress removes every name registered for addr
func DeregisterAddress(a actor.Actor, registry address.Address, addr address.Address) {
	actor.Send(a, registry, &Deregistration{Address: addr})
}

// CancelDiscovery drops the first promise of the actor on name. The promise
// is answered with errors.ErrDiscoveryCancelled.
func CancelDiscovery(a actor.Actor, registry address.Address, name string) {
	actor.Send(a, registry, &DiscoveryCancel{Name: name, Requester: a.Address()})
}
