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
	"fmt"

	"github.com/tochemey/supervise/address"
	"github.com/tochemey/supervise/internal/types"
)

// TypeID identifies the concrete Go type of a message payload
type TypeID = types.ID

// Envelope carries a payload to a destination address.
// The Type is computed once when the envelope is created and is used to
// select the handlers subscribed to that payload type.
type Envelope struct {
	To      address.Address
	Type    TypeID
	Payload any
}

// NewEnvelope creates an envelope for the given payload
func NewEnvelope(to address.Address, payload any) *Envelope {
	return &Envelope{
		To:      to,
		Type:    types.Of(payload),
		Payload: payload,
	}
}

// TypeName returns the qualified name of the payload type
func (e *Envelope) TypeName() string {
	return types.Name(e.Type)
}

// String implements fmt.Stringer
func (e *Envelope) String() string {
	return fmt.Sprintf("envelope(to=%s, type=%s)", e.To, e.TypeName())
}

// Send routes a message to the given address. It must be called from the
// goroutine processing the actor's locality, typically from a handler or a
// lifecycle hook. Use System.Tell from any other goroutine.
func Send(a Actor, to address.Address, payload any) {
	a.base().send(NewEnvelope(to, payload))
}
