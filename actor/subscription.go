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
	"slices"

	"github.com/tochemey/supervise/address"
	"github.com/tochemey/supervise/internal/types"
)

// handler is a typed message handler bound to the actor that subscribed it.
// It is never invoked once inactive.
type handler struct {
	owner  *Base
	typ    TypeID
	invoke func(env *Envelope)
	active bool
}

// Subscription is the handle returned by Subscribe and SubscribeTo.
// It is used to unsubscribe.
type Subscription struct {
	handler   *handler
	address   address.Address
	external  bool
	confirmed bool
	releasing bool
}

// Address returns the address the subscription listens on
func (s *Subscription) Address() address.Address {
	return s.address
}

// Type returns the qualified name of the subscribed payload type
func (s *Subscription) Type() string {
	return types.Name(s.handler.typ)
}

// Active returns true until the unsubscription was committed
func (s *Subscription) Active() bool {
	return s.handler.active
}

// Subscribe registers fn for the payloads of type T sent to the actor's own
// address. T must be a concrete type.
func Subscribe[T any](a Actor, fn func(T)) *Subscription {
	return SubscribeTo(a, a.base().address, fn)
}

// SubscribeTo registers fn for the payloads of type T sent to the given
// address. The handler always runs on the goroutine of the subscribing
// actor's locality.
//
// Subscribing to an address owned by another supervisor is asynchronous:
// the subscription is active once the owning supervisor confirmed it, and
// the actor init waits for that confirmation.
func SubscribeTo[T any](a Actor, to address.Address, fn func(T)) *Subscription {
	b := a.base()
	h := &handler{
		owner:  b,
		typ:    types.For[T](),
		active: true,
		invoke: func(env *Envelope) {
			if payload, ok := env.Payload.(T); ok {
				fn(payload)
			}
		},
	}

	sup := b.supervisor
	sub := &Subscription{
		handler:  h,
		address:  to,
		external: to.Owner() != sup.address.ID(),
	}

	if b.lifetime != nil {
		b.lifetime.track(sub)
	}

	if sub.external {
		b.send(NewEnvelope(to.OwnerAddress(), &externalSubscription{subscription: sub}))
		return sub
	}

	sup.subscriptions.add(to, h, true)
	return sub
}

// Unsubscribe releases a subscription. The handler stays registered until
// the unsubscription is committed by the supervisor; it is never invoked
// after that. Unsubscribing twice is a no-op.
func Unsubscribe(a Actor, sub *Subscription) {
	b := a.base()
	if sub == nil || sub.handler.owner != b || sub.releasing {
		return
	}
	sub.releasing = true

	if sub.external {
		b.send(NewEnvelope(sub.address.OwnerAddress(), &externalUnsubscription{subscription: sub}))
		return
	}
	b.send(NewEnvelope(b.supervisor.address, &commitUnsubscription{subscription: sub}))
}

// entry is a handler registered on an address. Local entries belong to the
// supervisor holding the table; the others are forwarded to the supervisor
// of the handler.
type entry struct {
	handler *handler
	local   bool
}

// subscriptionTable maps an address to the handlers of every payload type
type subscriptionTable map[address.Address]map[TypeID][]entry

func (t subscriptionTable) add(addr address.Address, h *handler, local bool) {
	byType, ok := t[addr]
	if !ok {
		byType = make(map[TypeID][]entry)
		t[addr] = byType
	}
	byType[h.typ] = append(byType[h.typ], entry{handler: h, local: local})
}

func (t subscriptionTable) remove(addr address.Address, h *handler) bool {
	byType, ok := t[addr]
	if !ok {
		return false
	}

	entries := byType[h.typ]
	index := slices.IndexFunc(entries, func(e entry) bool { return e.handler == h })
	if index < 0 {
		return false
	}

	entries = slices.Delete(entries, index, index+1)
	if len(entries) == 0 {
		delete(byType, h.typ)
	} else {
		byType[h.typ] = entries
	}

	if len(byType) == 0 {
		delete(t, addr)
	}
	return true
}

// snapshot returns a copy of the entries registered for the envelope
func (t subscriptionTable) snapshot(env *Envelope) []entry {
	byType, ok := t[env.To]
	if !ok {
		return nil
	}
	return slices.Clone(byType[env.Type])
}

// purge removes every handler owned by the given actor and returns how many
// were removed
func (t subscriptionTable) purge(owner *Base) int {
	var removed int
	for addr, byType := range t {
		for typ, entries := range byType {
			kept := slices.DeleteFunc(entries, func(e entry) bool {
				if e.handler.owner == owner {
					e.handler.active = false
					removed++
					return true
				}
				return false
			})
			if len(kept) == 0 {
				delete(byType, typ)
			} else {
				byType[typ] = kept
			}
		}
		if len(byType) == 0 {
			delete(t, addr)
		}
	}
	return removed
}

// count returns the number of handlers registered on the address
func (t subscriptionTable) count(addr address.Address) int {
	var total int
	for _, entries := range t[addr] {
		total += len(entries)
	}
	return total
}
