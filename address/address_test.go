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

package address

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress(t *testing.T) {
	t.Run("With owned address", func(t *testing.T) {
		locality := NewLocality()
		owner := NewOwner(locality)
		addr := New(locality, owner.ID())

		assert.False(t, addr.IsZero())
		assert.False(t, addr.IsOwner())
		assert.True(t, owner.IsOwner())
		assert.True(t, addr.OwnedBy(owner))
		assert.True(t, owner.OwnedBy(owner))
		assert.Equal(t, owner.ID(), addr.Owner())
		assert.Equal(t, locality, addr.Locality())
		assert.True(t, addr.SameLocality(owner))
	})

	t.Run("With unique identifiers", func(t *testing.T) {
		locality := NewLocality()
		owner := NewOwner(locality)
		seen := make(map[Address]struct{})
		for range 100 {
			addr := New(locality, owner.ID())
			_, ok := seen[addr]
			require.False(t, ok)
			seen[addr] = struct{}{}
		}
		assert.Len(t, seen, 100)
	})

	t.Run("With different localities", func(t *testing.T) {
		a := NewOwner(NewLocality())
		b := NewOwner(NewLocality())
		assert.False(t, a.SameLocality(b))
		assert.NotEqual(t, a, b)
	})

	t.Run("With NoAddress", func(t *testing.T) {
		assert.True(t, NoAddress.IsZero())
		assert.False(t, NoAddress.IsOwner())
		assert.False(t, NoAddress.OwnedBy(NoAddress))
		assert.Equal(t, "addr://-", NoAddress.String())
	})

	t.Run("With owner address", func(t *testing.T) {
		locality := NewLocality()
		owner := NewOwner(locality)
		addr := New(locality, owner.ID())
		assert.Equal(t, owner, addr.OwnerAddress())
		assert.Equal(t, owner, owner.OwnerAddress())
		assert.Equal(t, NoAddress, NoAddress.OwnerAddress())
	})

	t.Run("With string representation", func(t *testing.T) {
		locality := NewLocality()
		owner := NewOwner(locality)
		addr := New(locality, owner.ID())
		expected := fmt.Sprintf("addr://%s/%d/%d", locality.Short(), owner.ID(), addr.ID())
		assert.Equal(t, expected, addr.String())
	})
}

func TestLocality(t *testing.T) {
	locality := NewLocality()
	assert.False(t, locality.IsZero())
	assert.True(t, NoLocality.IsZero())
	assert.Len(t, locality.Short(), 8)
	assert.Len(t, locality.String(), 36)
	assert.NotEqual(t, locality, NewLocality())
}
