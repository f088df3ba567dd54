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

// Package queue provides the FIFO buffers used by localities.
//
// Queue is safe for concurrent producers and is the inbound buffer through
// which envelopes cross locality boundaries. FIFO is not synchronized and is
// only touched by the goroutine that owns a locality.
package queue

import "sync"

// minQueueLen is the smallest capacity that queue may have.
// Must be power of 2 for bitwise modulus: x % n == x & (n - 1).
const minQueueLen = 16

// ring is a growable ring buffer. It is not synchronized.
type ring[T any] struct {
	nodes []T
	head  int
	tail  int
	count int
}

func newRing[T any]() ring[T] {
	return ring[T]{nodes: make([]T, minQueueLen)}
}

func (r *ring[T]) push(v T) {
	if r.count == len(r.nodes) {
		r.resize(r.count << 1)
	}
	r.nodes[r.tail] = v
	// bitwise modulus
	r.tail = (r.tail + 1) & (len(r.nodes) - 1)
	r.count++
}

func (r *ring[T]) pop() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	v := r.nodes[r.head]
	r.nodes[r.head] = zero
	r.head = (r.head + 1) & (len(r.nodes) - 1)
	r.count--
	// resize down if buffer 1/4 full.
	if len(r.nodes) > minQueueLen && (r.count<<2) == len(r.nodes) {
		r.resize(len(r.nodes) >> 1)
	}
	return v, true
}

func (r *ring[T]) resize(size int) {
	nodes := make([]T, size)
	if r.tail > r.head {
		copy(nodes, r.nodes[r.head:r.tail])
	} else if r.count > 0 {
		n := copy(nodes, r.nodes[r.head:])
		copy(nodes[n:], r.nodes[:r.tail])
	}
	r.head = 0
	r.tail = r.count & (size - 1)
	r.nodes = nodes
}

// Queue is an unbounded FIFO safe for concurrent use
type Queue[T any] struct {
	mu     sync.Mutex
	ring   ring[T]
	closed bool
}

// New creates an instance of Queue
func New[T any]() *Queue[T] {
	return &Queue[T]{ring: newRing[T]()}
}

// Push adds an item to the back of the queue.
// It returns false when the queue is closed; the item is dropped.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.ring.push(v)
	return true
}

// Pop removes the item at the front of the queue
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ring.pop()
}

// Drain removes every queued item, in order, under a single lock
// acquisition and hands it to fn. It returns the number of drained items.
func (q *Queue[T]) Drain(fn func(T)) int {
	q.mu.Lock()
	items := make([]T, 0, q.ring.count)
	for {
		v, ok := q.ring.pop()
		if !ok {
			break
		}
		items = append(items, v)
	}
	q.mu.Unlock()

	for _, v := range items {
		fn(v)
	}
	return len(items)
}

// Len returns the current length of the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ring.count
}

// Close discards all entries. Subsequent pushes are rejected.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.ring = newRing[T]()
	q.mu.Unlock()
}

// IsClosed returns true once Close was called
func (q *Queue[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// FIFO is an unbounded first-in first-out buffer owned by one goroutine
type FIFO[T any] struct {
	ring ring[T]
}

// NewFIFO creates an instance of FIFO
func NewFIFO[T any]() *FIFO[T] {
	return &FIFO[T]{ring: newRing[T]()}
}

// Push adds an item to the back
func (f *FIFO[T]) Push(v T) {
	f.ring.push(v)
}

// Pop removes the item at the front
func (f *FIFO[T]) Pop() (T, bool) {
	return f.ring.pop()
}

// Len returns the number of buffered items
func (f *FIFO[T]) Len() int {
	return f.ring.count
}

// IsEmpty returns true when nothing is buffered
func (f *FIFO[T]) IsEmpty() bool {
	return f.ring.count == 0
}
