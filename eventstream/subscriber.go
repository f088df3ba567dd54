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

package eventstream

import (
	goset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/tochemey/supervise/internal/queue"
)

// Subscriber receives the events published on its topics. Subscribers are
// created by Stream.AddSubscriber.
type Subscriber struct {
	id     string
	topics goset.Set[string]
	inbox  *queue.Queue[*Message]
	active *atomic.Bool
}

func newSubscriber() *Subscriber {
	return &Subscriber{
		id:     uuid.NewString(),
		topics: goset.NewSet[string](),
		inbox:  queue.New[*Message](),
		active: atomic.NewBool(true),
	}
}

// ID returns the subscriber identifier
func (s *Subscriber) ID() string {
	return s.id
}

// Active reports whether the subscriber still accepts events
func (s *Subscriber) Active() bool {
	return s.active.Load()
}

// Topics returns the topics the subscriber listens to
func (s *Subscriber) Topics() []string {
	return s.topics.ToSlice()
}

// Pending returns the number of events waiting in the inbox
func (s *Subscriber) Pending() int {
	return s.inbox.Len()
}

// Shutdown stops the delivery of new events
func (s *Subscriber) Shutdown() {
	s.active.Store(false)
}

// Iterator drains the events buffered at the time of the call and returns
// them in publication order through a closed channel.
func (s *Subscriber) Iterator() <-chan *Message {
	var drained []*Message
	s.inbox.Drain(func(m *Message) { drained = append(drained, m) })

	out := make(chan *Message, len(drained))
	for _, m := range drained {
		out <- m
	}
	close(out)
	return out
}

func (s *Subscriber) deliver(message *Message) bool {
	if !s.active.Load() {
		return false
	}
	return s.inbox.Push(message)
}
