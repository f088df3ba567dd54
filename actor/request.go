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
	"time"

	"github.com/tochemey/supervise/address"
	gerrors "github.com/tochemey/supervise/errors"
)

// RequestID identifies a request within the supervisor that issued it
type RequestID uint64

// Request is a payload expecting exactly one Response: a reply or a timeout.
type Request[Q, R any] struct {
	Payload Q

	id      RequestID
	origin  address.Address
	replyTo address.Address
}

// ID returns the request identifier
func (r *Request[Q, R]) ID() RequestID {
	return r.id
}

// Origin returns the address of the requester
func (r *Request[Q, R]) Origin() address.Address {
	return r.origin
}

func (r *Request[Q, R]) isSystem() bool {
	var payload Q
	_, ok := any(payload).(systemMessage)
	return ok
}

// Response is delivered to the requester. Err is set when the responder
// failed the request or when no reply arrived in time, in which case it
// matches errors.ErrRequestTimeout.
type Response[Q, R any] struct {
	Request *Request[Q, R]
	Payload R
	Err     error
}

func (r *Response[Q, R]) isSystem() bool {
	return r.Request.isSystem()
}

// RequestBuilder prepares a request. Nothing is sent until Send is called.
type RequestBuilder[Q, R any] struct {
	from    *Base
	to      address.Address
	payload Q
}

// Ask prepares a request from the given actor to the given address.
// The Response is delivered to the handlers of the actor subscribed to
// *Response[Q, R].
func Ask[Q, R any](a Actor, to address.Address, payload Q) *RequestBuilder[Q, R] {
	return &RequestBuilder[Q, R]{
		from:    a.base(),
		to:      to,
		payload: payload,
	}
}

// Send issues the request with the given deadline and returns its identifier.
// The deadline timer is armed before the request is routed.
func (b *RequestBuilder[Q, R]) Send(timeout time.Duration) RequestID {
	sup := b.from.supervisor
	req := &Request[Q, R]{
		Payload: b.payload,
		origin:  b.from.address,
		replyTo: sup.address,
	}

	return sup.issue(NewEnvelope(b.to, req), timeout, func(id RequestID) { req.id = id }, func() *Envelope {
		return NewEnvelope(req.origin, &Response[Q, R]{Request: req, Err: gerrors.ErrRequestTimeout})
	})
}

// Timeout is an alias of Send
func (b *RequestBuilder[Q, R]) Timeout(timeout time.Duration) RequestID {
	return b.Send(timeout)
}

// Reply answers a request with a payload
func Reply[Q, R any](a Actor, req *Request[Q, R], payload R) {
	respond(a, req, &Response[Q, R]{Request: req, Payload: payload})
}

// ReplyError answers a request with an error
func ReplyError[Q, R any](a Actor, req *Request[Q, R], err error) {
	respond(a, req, &Response[Q, R]{Request: req, Err: err})
}

func respond[Q, R any](a Actor, req *Request[Q, R], res *Response[Q, R]) {
	inner := NewEnvelope(req.origin, res)
	a.base().send(NewEnvelope(req.replyTo, &reply{id: req.id, inner: inner}))
}

// pendingRequest is a request waiting for its reply or its deadline
type pendingRequest struct {
	request *Envelope
	timeout func() *Envelope
	timer   TimerID
}

// StateQuery asks the supervisor of an actor for the actor's state
type StateQuery struct {
	Actor address.Address
}

// QueryState prepares a state request for the target actor. The response
// carries the target state, or errors.ErrMissingActor when its supervisor
// does not know it.
func QueryState(a Actor, target address.Address) *RequestBuilder[StateQuery, State] {
	return Ask[StateQuery, State](a, target.OwnerAddress(), StateQuery{Actor: target})
}
