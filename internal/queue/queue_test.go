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

package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	t.Run("With Push/Pop order", func(t *testing.T) {
		q := New[int]()
		for i := range 100 {
			require.True(t, q.Push(i))
		}
		require.Equal(t, 100, q.Len())
		for i := range 100 {
			v, ok := q.Pop()
			require.True(t, ok)
			require.Equal(t, i, v)
		}
		_, ok := q.Pop()
		assert.False(t, ok)
	})

	t.Run("With Drain", func(t *testing.T) {
		q := New[string]()
		q.Push("a")
		q.Push("b")
		q.Push("c")

		var drained []string
		n := q.Drain(func(s string) { drained = append(drained, s) })
		assert.Equal(t, 3, n)
		assert.Equal(t, []string{"a", "b", "c"}, drained)
		assert.Zero(t, q.Len())
		assert.Zero(t, q.Drain(func(string) {}))
	})

	t.Run("With Close", func(t *testing.T) {
		q := New[int]()
		q.Push(1)
		q.Close()
		assert.True(t, q.IsClosed())
		assert.False(t, q.Push(2))
		assert.Zero(t, q.Len())
	})

	t.Run("With concurrent producers", func(t *testing.T) {
		q := New[int]()
		var wg sync.WaitGroup
		for p := range 4 {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := range 250 {
					q.Push(p*1000 + i)
				}
			}(p)
		}
		wg.Wait()

		last := map[int]int{0: -1, 1: -1, 2: -1, 3: -1}
		count := q.Drain(func(v int) {
			producer, seq := v/1000, v%1000
			// per-producer order is preserved
			require.Greater(t, seq, last[producer])
			last[producer] = seq
		})
		assert.Equal(t, 1000, count)
	})
}

func TestFIFO(t *testing.T) {
	f := NewFIFO[int]()
	require.True(t, f.IsEmpty())

	// interleave pushes and pops across several resizes
	next, expected := 0, 0
	for range 50 {
		for range 7 {
			f.Push(next)
			next++
		}
		for range 3 {
			v, ok := f.Pop()
			require.True(t, ok)
			require.Equal(t, expected, v)
			expected++
		}
	}
	assert.Equal(t, next-expected, f.Len())

	for !f.IsEmpty() {
		v, ok := f.Pop()
		require.True(t, ok)
		require.Equal(t, expected, v)
		expected++
	}
	_, ok := f.Pop()
	assert.False(t, ok)
}
