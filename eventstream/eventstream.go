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

// Package eventstream fans published events out to the subscribers of a
// topic. Publish never blocks: each subscriber keeps an inbox that it
// drains with Iterator.
package eventstream

import (
	"sync"

	goset "github.com/deckarep/golang-set/v2"
	"go.uber.org/atomic"
)

// Stream routes events to the subscribers of their topic
type Stream struct {
	mu       sync.RWMutex
	topics   map[string]goset.Set[*Subscriber]
	members  goset.Set[*Subscriber]
	sequence *atomic.Uint64
	closed   bool
}

// New creates an empty Stream
func New() *Stream {
	return &Stream{
		topics:   make(map[string]goset.Set[*Subscriber]),
		members:  goset.NewThreadUnsafeSet[*Subscriber](),
		sequence: atomic.NewUint64(0),
	}
}

// AddSubscriber creates a subscriber attached to the stream. A closed stream
// hands out inactive subscribers.
func (s *Stream) AddSubscriber() *Subscriber {
	sub := newSubscriber()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		sub.Shutdown()
		return sub
	}
	s.members.Add(sub)
	return sub
}

// RemoveSubscriber detaches the subscriber from all its topics and
// deactivates it. Events already in its inbox stay readable.
func (s *Stream) RemoveSubscriber(sub *Subscriber) {
	s.mu.Lock()
	for _, topic := range sub.Topics() {
		s.detach(sub, topic)
	}
	s.members.Remove(sub)
	s.mu.Unlock()
	sub.Shutdown()
}

// Subscribe adds the topic to the subscriber. Inactive subscribers are ignored.
func (s *Stream) Subscribe(sub *Subscriber, topic string) {
	if !sub.Active() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.members.Contains(sub) {
		return
	}
	subs, ok := s.topics[topic]
	if !ok {
		subs = goset.NewThreadUnsafeSet[*Subscriber]()
		s.topics[topic] = subs
	}
	subs.Add(sub)
	sub.topics.Add(topic)
}

// Unsubscribe removes the topic from the subscriber
func (s *Stream) Unsubscribe(sub *Subscriber, topic string) {
	s.mu.Lock()
	s.detach(sub, topic)
	s.mu.Unlock()
}

// SubscribersCount returns the number of subscribers of the topic
func (s *Stream) SubscribersCount(topic string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if subs, ok := s.topics[topic]; ok {
		return subs.Cardinality()
	}
	return 0
}

// Publish delivers the payload to the active subscribers of the topic and
// returns how many of them received it.
func (s *Stream) Publish(topic string, payload any) int {
	s.mu.RLock()
	subs, ok := s.topics[topic]
	if !ok {
		s.mu.RUnlock()
		return 0
	}
	targets := subs.ToSlice()
	s.mu.RUnlock()

	message := newMessage(s.sequence.Inc(), topic, payload)
	delivered := 0
	for _, sub := range targets {
		if sub.deliver(message) {
			delivered++
		}
	}
	return delivered
}

// Close deactivates every subscriber. Later subscriptions are ignored.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.members.Each(func(sub *Subscriber) bool {
		sub.topics.Clear()
		sub.Shutdown()
		return false
	})
	s.members.Clear()
	s.topics = make(map[string]goset.Set[*Subscriber])
}

func (s *Stream) detach(sub *Subscriber, topic string) {
	sub.topics.Remove(topic)
	subs, ok := s.topics[topic]
	if !ok {
		return
	}
	subs.Remove(sub)
	if subs.Cardinality() == 0 {
		delete(s.topics, topic)
	}
}
