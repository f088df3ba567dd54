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

import "github.com/tochemey/supervise/address"

// systemMessage marks the payloads the runtime dispatches to lifecycle
// machinery instead of user subscriptions.
type systemMessage interface {
	systemMessage()
}

// systemCarrier is implemented by generic request and response payloads.
// They are system messages when their request payload is one.
type systemCarrier interface {
	isSystem() bool
}

func isSystem(payload any) bool {
	switch m := payload.(type) {
	case systemMessage:
		return true
	case systemCarrier:
		return m.isSystem()
	default:
		return false
	}
}

// initialize asks an actor to run its init handshake
type initialize struct {
	actor address.Address
}

// initialized confirms an init handshake
type initialized struct{}

// shutdown asks an actor to run its shutdown handshake
type shutdown struct {
	actor address.Address
}

// shutdownDone confirms a shutdown handshake
type shutdownDone struct{}

type (
	initRequest      = Request[initialize, initialized]
	initResponse     = Response[initialize, initialized]
	shutdownRequest  = Request[shutdown, shutdownDone]
	shutdownResponse = Response[shutdown, shutdownDone]
)

// start is sent to an actor once its supervisor acknowledged its init
type start struct{}

// shutdownTrigger asks the managing supervisor to shut an actor down
type shutdownTrigger struct {
	actor address.Address
}

// createActor asks a supervisor to activate and initialize a child
type createActor struct {
	actor  Actor
	config *spawnConfig
}

// reply wraps a response on its way to the supervisor that issued the request
type reply struct {
	id    RequestID
	inner *Envelope
}

// timerFired is posted by the driver when a request deadline elapsed
type timerFired struct {
	id RequestID
}

// handlerCall forwards a delivery to the supervisor owning a foreign handler
type handlerCall struct {
	envelope *Envelope
	handler  *handler
}

// externalSubscription asks the supervisor owning an address to register a
// foreign handler
type externalSubscription struct {
	subscription *Subscription
}

// subscriptionConfirmed tells an actor an external subscription is active
type subscriptionConfirmed struct {
	subscription *Subscription
}

// externalUnsubscription asks the supervisor owning an address to drop a
// foreign handler
type externalUnsubscription struct {
	subscription *Subscription
}

// commitUnsubscription finalizes an unsubscription on the supervisor of the
// subscribing actor
type commitUnsubscription struct {
	subscription *Subscription
}

func (initialize) systemMessage()              {}
func (initialized) systemMessage()             {}
func (shutdown) systemMessage()                {}
func (shutdownDone) systemMessage()            {}
func (*start) systemMessage()                  {}
func (*shutdownTrigger) systemMessage()        {}
func (*createActor) systemMessage()            {}
func (*reply) systemMessage()                  {}
func (*timerFired) systemMessage()             {}
func (*handlerCall) systemMessage()            {}
func (*externalSubscription) systemMessage()   {}
func (*subscriptionConfirmed) systemMessage()  {}
func (*externalUnsubscription) systemMessage() {}
func (*commitUnsubscription) systemMessage()   {}
