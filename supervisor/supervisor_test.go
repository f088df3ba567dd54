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

package supervisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpec(t *testing.T) {
	t.Run("With defaults", func(t *testing.T) {
		spec := New()
		assert.Equal(t, ShutdownSelf, spec.Policy())
		assert.EqualValues(t, DefaultMaxRestarts, spec.MaxRestarts())
		assert.Zero(t, spec.Window())
		assert.Equal(t, EscalateDirective, spec.Decide(1, true))
	})

	t.Run("With shutdown failed", func(t *testing.T) {
		spec := New(WithPolicy(ShutdownFailed))
		assert.Equal(t, StopDirective, spec.Decide(1, true))
		assert.Equal(t, StopDirective, spec.Decide(1, false))
	})

	t.Run("With restart failed without producer", func(t *testing.T) {
		spec := New(WithPolicy(RestartFailed))
		assert.Equal(t, StopDirective, spec.Decide(1, false))
	})

	t.Run("With restart budget exhausted", func(t *testing.T) {
		spec := New(WithPolicy(RestartFailed), WithRestart(2, 0))
		assert.Equal(t, RestartDirective, spec.Decide(1, true))
		assert.Equal(t, RestartDirective, spec.Decide(1, true))
		assert.Equal(t, StopDirective, spec.Decide(1, true))
		// other lineages keep their own budget
		assert.Equal(t, RestartDirective, spec.Decide(2, true))

		spec.Forget(1)
		assert.Equal(t, RestartDirective, spec.Decide(1, true))
	})

	t.Run("With restart window", func(t *testing.T) {
		now := time.Now()
		spec := New(WithPolicy(RestartFailed), WithRestart(1, time.Minute))
		spec.now = func() time.Time { return now }

		assert.Equal(t, RestartDirective, spec.Decide(7, true))
		assert.Equal(t, StopDirective, spec.Decide(7, true))

		now = now.Add(2 * time.Minute)
		assert.Equal(t, RestartDirective, spec.Decide(7, true))
	})
}

func TestPolicy(t *testing.T) {
	testCases := []struct {
		policy Policy
		text   string
	}{
		{ShutdownSelf, "shutdown_self"},
		{ShutdownFailed, "shutdown_failed"},
		{RestartFailed, "restart_failed"},
	}
	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.text, tc.policy.String())
			parsed, err := ParsePolicy(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.policy, parsed)
		})
	}

	_, err := ParsePolicy("one_for_all")
	require.Error(t, err)
	assert.Empty(t, Policy(42).String())
}

func TestDirective(t *testing.T) {
	assert.Equal(t, "Stop", StopDirective.String())
	assert.Equal(t, "Restart", RestartDirective.String())
	assert.Equal(t, "Escalate", EscalateDirective.String())
	assert.Empty(t, Directive(-1).String())
}
