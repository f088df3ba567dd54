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
	"github.com/Workiva/go-datastructures/queue"
	"go.uber.org/atomic"

	"github.com/tochemey/supervise/address"
	gerrors "github.com/tochemey/supervise/errors"
	inqueue "github.com/tochemey/supervise/internal/queue"
	"github.com/tochemey/supervise/log"
	"github.com/tochemey/supervise/telemetry"
)

// inbox is the thread-safe inbound buffer of a locality
type inbox interface {
	push(env *Envelope) bool
	drain(fn func(env *Envelope)) int
	close()
}

// unboundedInbox never rejects an envelope
type unboundedInbox struct {
	queue *inqueue.Queue[*Envelope]
}

func (x *unboundedInbox) push(env *Envelope) bool {
	return x.queue.Push(env)
}

func (x *unboundedInbox) drain(fn func(env *Envelope)) int {
	return x.queue.Drain(fn)
}

func (x *unboundedInbox) close() {
	x.queue.Close()
}

// boundedInbox rejects envelopes once its capacity is reached
type boundedInbox struct {
	buffer *queue.RingBuffer
}

func (x *boundedInbox) push(env *Envelope) bool {
	ok, err := x.buffer.Offer(env)
	return ok && err == nil
}

func (x *boundedInbox) drain(fn func(env *Envelope)) int {
	var count int
	for x.buffer.Len() > 0 {
		item, err := x.buffer.Get()
		if err != nil {
			return count
		}
		fn(item.(*Envelope))
		count++
	}
	return count
}

func (x *boundedInbox) close() {
	x.buffer.Dispose()
}

func newInbox(capacity int) inbox {
	if capacity > 0 {
		return &boundedInbox{buffer: queue.NewRingBuffer(uint64(capacity))}
	}
	return &unboundedInbox{queue: inqueue.New[*Envelope]()}
}

// locality is the single-threaded execution context shared by the
// supervisors of a tree branch. Its leader is the supervisor that created
// it; only the goroutine running Process touches the local queue and the
// supervisors table.
type locality struct {
	token       address.Locality
	leader      *Supervisor
	driver      Driver
	system      *System
	queue       *inqueue.FIFO[*Envelope]
	inbox       inbox
	pending     *atomic.Bool
	stopped     *atomic.Bool
	supervisors map[uint64]*Supervisor
	metrics     *telemetry.Recorder
	logger      log.Logger
}

var _ Loop = (*locality)(nil)

func newLocality(system *System, driver Driver, capacity int) *locality {
	token := address.NewLocality()
	return &locality{
		token:       token,
		driver:      driver,
		system:      system,
		queue:       inqueue.NewFIFO[*Envelope](),
		inbox:       newInbox(capacity),
		pending:     atomic.NewBool(false),
		stopped:     atomic.NewBool(false),
		supervisors: make(map[uint64]*Supervisor),
		metrics:     system.recorder(token),
		logger:      system.logger.With("locality", token.Short()),
	}
}

// push appends to the local queue. It is only called from the locality goroutine.
func (l *locality) push(env *Envelope) {
	l.queue.Push(env)
}

// enqueue appends to the inbound buffer and wakes the driver up when the
// locality is idle. It can be called from any goroutine.
func (l *locality) enqueue(env *Envelope) {
	if !l.stopped.Load() && l.inbox.push(env) {
		l.wakeup()
		return
	}

	if l.stopped.Load() {
		if l.release(env) {
			return
		}
		l.logger.Debugf("dropping %s: locality stopped", env)
		l.metrics.DeadLetter()
		return
	}
	l.system.ReportError(gerrors.NewChildError(env.To, gerrors.ErrInboxFull))
}

// wakeup asks the driver for a Process call unless one is already pending
func (l *locality) wakeup() {
	if l.pending.CompareAndSwap(false, true) {
		l.driver.Wakeup()
	}
}

// Process drains the local queue, pulling the inbound buffer whenever the
// local queue is empty, until both are empty.
func (l *locality) Process() {
	l.pending.Store(false)
	for {
		env, ok := l.queue.Pop()
		if !ok {
			if l.inbox.drain(l.queue.Push) == 0 {
				return
			}
			continue
		}
		l.dispatch(env)
	}
}

// dispatch routes an envelope by the supervisor owning its destination
func (l *locality) dispatch(env *Envelope) {
	owner := env.To.Owner()
	if sup, ok := l.supervisors[owner]; ok {
		sup.deliver(env)
		return
	}

	if env.To.Locality() != l.token {
		if sup, ok := l.system.supervisor(owner); ok {
			sup.Enqueue(env)
			return
		}
	}

	if l.release(env) {
		return
	}

	l.logger.Debugf("dead letter: %s", env)
	l.metrics.DeadLetter()
}

// release commits an unsubscription whose address owner is gone. The
// subscriber's supervisor removes the handler as if the owner had confirmed.
func (l *locality) release(env *Envelope) bool {
	msg, ok := env.Payload.(*externalUnsubscription)
	if !ok {
		return false
	}

	sup := msg.subscription.handler.owner.supervisor
	l.logger.Debugf("releasing %s: owner is gone", env)
	sup.Enqueue(NewEnvelope(sup.address, &commitUnsubscription{subscription: msg.subscription}))
	return true
}

func (l *locality) attach(sup *Supervisor) {
	l.supervisors[sup.address.ID()] = sup
	l.system.register(sup)
}

func (l *locality) detach(sup *Supervisor) {
	l.system.unregister(sup)
	if sup != l.leader {
		delete(l.supervisors, sup.address.ID())
	}
}

func (l *locality) stop() {
	if l.stopped.CompareAndSwap(false, true) {
		l.driver.Stop()
		l.inbox.close()
	}
}
