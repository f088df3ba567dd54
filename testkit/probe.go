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

package testkit

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tochemey/supervise/actor"
	"github.com/tochemey/supervise/address"
)

// MessagesQueueMax is the number of messages a probe buffers
const MessagesQueueMax = 1000

// ProbeOption subscribes a probe to a message type
type ProbeOption func(p *Probe)

// Accept records the messages of type T sent to the probe
func Accept[T any]() ProbeOption {
	return func(p *Probe) {
		actor.Subscribe(p, func(msg T) { p.record(msg) })
	}
}

// Observe records the messages of type T sent to the target address. The
// probe is called after the handlers of the target.
func Observe[T any](target address.Address) ProbeOption {
	return func(p *Probe) {
		actor.SubscribeTo(p, target, func(msg T) { p.record(msg) })
	}
}

// Probe is an actor recording the messages it subscribed to
type Probe struct {
	actor.Base

	pt             *testing.T
	options        []ProbeOption
	messageQueue   chan any
	lastMessage    any
	defaultTimeout time.Duration
}

var _ actor.Actor = (*Probe)(nil)

func newProbe(t *testing.T, timeout time.Duration, opts ...ProbeOption) *Probe {
	return &Probe{
		pt:             t,
		options:        opts,
		messageQueue:   make(chan any, MessagesQueueMax),
		defaultTimeout: timeout,
	}
}

// Configure subscribes the probe handlers
func (x *Probe) Configure(plugin actor.Plugin) {
	if plugin.Identity() != actor.LifetimeIdentity {
		return
	}

	for _, opt := range x.options {
		opt(x)
	}
}

// ExpectMessage asserts that the next message is the expected one
func (x *Probe) ExpectMessage(message any) {
	x.expectMessage(x.defaultTimeout, message)
}

// ExpectMessageWithin asserts that the expected message is received within a time duration
func (x *Probe) ExpectMessageWithin(duration time.Duration, message any) {
	x.expectMessage(duration, message)
}

// ExpectNoMessage asserts that no message is received within the default timeout
func (x *Probe) ExpectNoMessage() {
	x.expectNoMessage(x.defaultTimeout)
}

// ExpectNoMessageWithin asserts that no message is received within a time duration
func (x *Probe) ExpectNoMessageWithin(duration time.Duration) {
	x.expectNoMessage(duration)
}

// ExpectAnyMessage asserts that a message is received and returns it
func (x *Probe) ExpectAnyMessage() any {
	return x.expectAnyMessage(x.defaultTimeout)
}

// ExpectAnyMessageWithin asserts that a message is received within a time duration and returns it
func (x *Probe) ExpectAnyMessageWithin(duration time.Duration) any {
	return x.expectAnyMessage(duration)
}

// LastMessage returns the last received message
func (x *Probe) LastMessage() any {
	return x.lastMessage
}

// ExpectMessageOfType asserts that the next message is of type T and returns it
func ExpectMessageOfType[T any](probe *Probe) T {
	return ExpectMessageOfTypeWithin[T](probe, probe.defaultTimeout)
}

// ExpectMessageOfTypeWithin asserts that a message of type T is received within a time duration
func ExpectMessageOfTypeWithin[T any](probe *Probe, duration time.Duration) T {
	received := probe.expectAnyMessage(duration)
	msg, ok := received.(T)
	require.True(probe.pt, ok, fmt.Sprintf("expected %v, found %T", reflect.TypeFor[T](), received))
	return msg
}

func (x *Probe) record(msg any) {
	select {
	case x.messageQueue <- msg:
	default:
		x.pt.Errorf("probe %s dropped %T: queue is full", x.Address(), msg)
	}
}

// receiveOne receives one message within a maximum time duration
func (x *Probe) receiveOne(max time.Duration) any {
	timer := time.NewTimer(max)
	defer timer.Stop()

	select {
	case m := <-x.messageQueue:
		x.lastMessage = m
		return m
	case <-timer.C:
		return nil
	}
}

func (x *Probe) expectMessage(max time.Duration, message any) {
	received := x.receiveOne(max)
	require.NotNil(x.pt, received, fmt.Sprintf("timeout (%v) during expectMessage while waiting for %v", max, message))
	require.Equal(x.pt, message, received, fmt.Sprintf("expected %v, found %v", message, received))
}

func (x *Probe) expectNoMessage(max time.Duration) {
	received := x.receiveOne(max)
	require.Nil(x.pt, received, fmt.Sprintf("received unexpected message %v", received))
}

func (x *Probe) expectAnyMessage(max time.Duration) any {
	received := x.receiveOne(max)
	require.NotNil(x.pt, received, fmt.Sprintf("timeout (%v) during expectAnyMessage while waiting", max))
	return received
}
