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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/tochemey/supervise/actor"
	"github.com/tochemey/supervise/address"
	"github.com/tochemey/supervise/log"
)

type greeting struct {
	Text    string
	ReplyTo address.Address
}

type ack struct {
	Text string
}

// echo acknowledges greetings
type echo struct {
	actor.Base
}

func (e *echo) Configure(plugin actor.Plugin) {
	if plugin.Identity() == actor.LifetimeIdentity {
		actor.Subscribe(e, e.onGreeting)
	}
}

func (e *echo) onGreeting(msg *greeting) {
	actor.Send(e, msg.ReplyTo, &ack{Text: msg.Text})
}

func TestTestKit(t *testing.T) {
	t.Run("With probe", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		kit := New(t, WithLogging(log.ErrorLevel), WithTimeout(time.Second))
		addr := kit.Spawn(new(echo))
		probe := kit.NewProbe(Accept[*ack]())

		kit.Tell(addr, &greeting{Text: "hello", ReplyTo: probe.Address()})
		probe.ExpectMessage(&ack{Text: "hello"})
		probe.ExpectNoMessageWithin(20 * time.Millisecond)

		kit.Tell(addr, &greeting{Text: "again", ReplyTo: probe.Address()})
		received := ExpectMessageOfType[*ack](probe)
		assert.Equal(t, "again", received.Text)
		assert.Equal(t, received, probe.LastMessage())

		kit.Shutdown()
		assert.Empty(t, kit.Errors())
	})
	t.Run("With observer", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		kit := New(t)
		target := kit.Spawn(new(echo))
		observer := kit.NewProbe(Observe[*greeting](target))
		probe := kit.NewProbe(Accept[*ack]())

		kit.Tell(target, &greeting{Text: "hello", ReplyTo: probe.Address()})
		seen := observer.ExpectAnyMessageWithin(time.Second)
		assert.Equal(t, &greeting{Text: "hello", ReplyTo: probe.Address()}, seen)
		probe.ExpectMessageWithin(time.Second, &ack{Text: "hello"})

		kit.Shutdown()
	})
	t.Run("With actor shutdown", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		kit := New(t)
		e := new(echo)
		kit.Spawn(e)

		e.Shutdown()
		kit.AwaitState(e, actor.Shutdown)

		kit.Shutdown()
		assert.Equal(t, actor.Shutdown, kit.Root().State())
	})
}
