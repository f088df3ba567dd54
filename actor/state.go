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

// State is the lifecycle stage of an actor.
//
// States only move forward:
//
//	New -> Initializing -> Operational -> ShuttingDown -> Shutdown
//
// Initializing may jump straight to ShuttingDown when the actor is asked to
// shut down before its initialization completed.
type State int32

const (
	// New is the state of an actor that has not received its init request yet
	New State = iota
	// Initializing is the state of an actor running its init handshake
	Initializing
	// Operational is the state of an actor that confirmed its init and was started
	Operational
	// ShuttingDown is the state of an actor running its shutdown handshake
	ShuttingDown
	// Shutdown is the terminal state
	Shutdown
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case New:
		return "new"
	case Initializing:
		return "initializing"
	case Operational:
		return "operational"
	case ShuttingDown:
		return "shutting_down"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// LifecycleTopic is the event stream topic lifecycle transitions are published on
const LifecycleTopic = "actor.lifecycle"

// StateChanged is published on LifecycleTopic every time an actor moves to
// a new lifecycle state.
type StateChanged struct {
	Address address.Address
	From    State
	To      State
}
