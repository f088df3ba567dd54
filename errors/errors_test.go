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

package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/supervise/address"
)

func TestErrors(t *testing.T) {
	t.Run("With PanicError from error", func(t *testing.T) {
		err := errors.New("something went wrong")
		panicErr := NewPanicError(err)
		require.EqualError(t, panicErr, "panic: something went wrong")
		assert.ErrorIs(t, panicErr, err)
	})

	t.Run("With PanicError from value", func(t *testing.T) {
		panicErr := NewPanicError(42)
		require.EqualError(t, panicErr, "panic: 42")
	})

	t.Run("With ChildError", func(t *testing.T) {
		child := address.NewOwner(address.NewLocality())
		childErr := NewChildError(child, ErrMissingActor)
		require.EqualError(t, childErr, "actor "+child.String()+": actor is missing")
		assert.ErrorIs(t, childErr, ErrMissingActor)
		assert.Equal(t, child, childErr.Child())

		var target *ChildError
		require.ErrorAs(t, error(childErr), &target)
	})

	t.Run("With shutdown timeout error", func(t *testing.T) {
		child := address.NewOwner(address.NewLocality())
		err := NewShutdownTimeoutError(child, ErrRequestTimeout)
		assert.ErrorIs(t, err, ErrShutdownTimeout)
		assert.ErrorIs(t, err, ErrRequestTimeout)
		assert.NotErrorIs(t, err, ErrActorMisconfigured)
	})
}
