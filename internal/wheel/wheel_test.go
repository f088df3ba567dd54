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

package wheel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWheel(t *testing.T) {
	t.Run("With fired timer", func(t *testing.T) {
		w := New(DefaultTick, DefaultSize)
		w.Start()
		defer w.Stop()

		fired := make(chan struct{})
		id := w.AfterFunc(5*time.Millisecond, func() { close(fired) })
		require.NotZero(t, id)

		select {
		case <-fired:
		case <-time.After(time.Second):
			t.Fatal("timer did not fire")
		}

		require.Eventually(t, func() bool { return w.Len() == 0 }, time.Second, time.Millisecond)
		assert.False(t, w.Cancel(id))
	})

	t.Run("With cancelled timer", func(t *testing.T) {
		w := New(DefaultTick, DefaultSize)
		w.Start()
		defer w.Stop()

		fired := atomic.NewBool(false)
		id := w.AfterFunc(50*time.Millisecond, func() { fired.Store(true) })
		require.Equal(t, 1, w.Len())
		require.True(t, w.Cancel(id))
		assert.Zero(t, w.Len())

		time.Sleep(100 * time.Millisecond)
		assert.False(t, fired.Load())
	})

	t.Run("With stopped wheel", func(t *testing.T) {
		w := New(0, 0)
		assert.Zero(t, w.AfterFunc(time.Millisecond, func() {}))

		w.Start()
		w.Start()
		w.AfterFunc(time.Hour, func() {})
		require.Equal(t, 1, w.Len())
		w.Stop()
		w.Stop()
		assert.Zero(t, w.Len())
		assert.Zero(t, w.AfterFunc(time.Millisecond, func() {}))
	})
}
