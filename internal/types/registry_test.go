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

package types

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ping struct{}

type pair[A, B any] struct {
	a A
	b B
}

func TestRegistry(t *testing.T) {
	t.Run("With stable identifiers", func(t *testing.T) {
		assert.Equal(t, Of(ping{}), For[ping]())
		assert.Equal(t, Of(&ping{}), For[*ping]())
		assert.NotEqual(t, For[ping](), For[*ping]())
		assert.NotEqual(t, For[pair[int, string]](), For[pair[string, int]]())
	})

	t.Run("With names", func(t *testing.T) {
		id := For[*ping]()
		assert.Equal(t, "*github.com/tochemey/supervise/internal/types.ping", Name(id))
		assert.Equal(t, "unknown", Name(ID(42)))
		assert.Equal(t, "int", Name(For[int]()))
	})

	t.Run("With nil", func(t *testing.T) {
		assert.Equal(t, Nil, Of(nil))
	})

	t.Run("With dedicated registry", func(t *testing.T) {
		registry := NewRegistry()
		id := registry.Register(reflect.TypeFor[ping]())
		again := registry.Register(reflect.TypeFor[ping]())
		require.Equal(t, id, again)
		assert.Equal(t, 1, registry.Len())

		name, ok := registry.Name(id)
		require.True(t, ok)
		assert.Equal(t, "github.com/tochemey/supervise/internal/types.ping", name)
	})
}
