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

// Package supervisor defines how a supervisor reacts when one of its children
// fails to initialize.
//
// A Spec combines a Policy with a restart budget. When a child reports an
// init failure (error or timeout), the owning supervisor asks its Spec for a
// Directive:
//
//   - ShutdownSelf yields EscalateDirective: the supervisor shuts itself down.
//   - ShutdownFailed yields StopDirective: only the failed child is discarded.
//   - RestartFailed yields RestartDirective while the restart budget allows it
//     and StopDirective afterwards.
package supervisor

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Policy represents how a supervisor handles a child that failed to initialize.
type Policy int

const (
	// ShutdownSelf terminates the whole supervisor when any child fails to
	// initialize. This is the default policy.
	ShutdownSelf Policy = iota
	// ShutdownFailed discards only the failed child. Siblings and the
	// supervisor keep running.
	ShutdownFailed
	// RestartFailed recreates the failed child from its producer. A child
	// spawned without a producer, or whose restart budget is exhausted, is
	// treated as with ShutdownFailed.
	RestartFailed
)

// String returns the string representation of the policy
func (p Policy) String() string {
	switch p {
	case ShutdownSelf:
		return "shutdown_self"
	case ShutdownFailed:
		return "shutdown_failed"
	case RestartFailed:
		return "restart_failed"
	default:
		return ""
	}
}

// ParsePolicy maps the textual form of a policy back to the Policy
func ParsePolicy(text string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "shutdown_self":
		return ShutdownSelf, nil
	case "shutdown_failed":
		return ShutdownFailed, nil
	case "restart_failed":
		return RestartFailed, nil
	default:
		return ShutdownSelf, fmt.Errorf("invalid supervision policy: %q", text)
	}
}

// Directive defines the action the supervisor takes for a failed child
type Directive int

const (
	// StopDirective discards the failed child.
	StopDirective Directive = iota
	// RestartDirective discards the failed child and spawns a new instance.
	RestartDirective
	// EscalateDirective shuts the supervisor itself down.
	EscalateDirective
)

// String returns the string representation of the directive
func (d Directive) String() string {
	switch d {
	case StopDirective:
		return "Stop"
	case RestartDirective:
		return "Restart"
	case EscalateDirective:
		return "Escalate"
	default:
		return ""
	}
}

const (
	// DefaultMaxRestarts is the number of restarts allowed per child within the
	// restart window.
	DefaultMaxRestarts = 3
)

// Option defines the various options to apply to a given Spec
type Option func(*Spec)

// WithPolicy sets the supervision policy
func WithPolicy(policy Policy) Option {
	return func(s *Spec) {
		s.policy = policy
	}
}

// WithRestart configures the restart budget used by RestartFailed.
//
// Parameters:
//   - maxRestarts: the number of restarts allowed for a child within window.
//     Once exceeded, the child is discarded as with ShutdownFailed.
//   - window: the sliding period restarts are counted in. A zero window counts
//     restarts over the whole lifetime of the supervisor.
func WithRestart(maxRestarts uint32, window time.Duration) Option {
	return func(s *Spec) {
		s.maxRestarts = maxRestarts
		s.window = window
	}
}

// Spec holds a supervisor's policy and the restart history of its children.
//
// Defaults:
//   - Policy: ShutdownSelf.
//   - Restarts: DefaultMaxRestarts, no window.
type Spec struct {
	mu          sync.Mutex
	policy      Policy
	maxRestarts uint32
	window      time.Duration
	restarts    map[uint64][]time.Time
	now         func() time.Time
}

// New creates an instance of Spec
func New(opts ...Option) *Spec {
	spec := &Spec{
		policy:      ShutdownSelf,
		maxRestarts: DefaultMaxRestarts,
		restarts:    make(map[uint64][]time.Time),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(spec)
	}
	return spec
}

// Policy returns the supervision policy
func (s *Spec) Policy() Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// MaxRestarts returns the restart budget
func (s *Spec) MaxRestarts() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxRestarts
}

// Window returns the restart window
func (s *Spec) Window() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

// Decide returns the directive for a failed child. The lineage identifies a
// child across its restarts; restartable tells whether the child can be
// recreated at all. A RestartDirective is recorded against the budget.
func (s *Spec) Decide(lineage uint64, restartable bool) Directive {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.policy {
	case ShutdownFailed:
		return StopDirective
	case RestartFailed:
		if !restartable || !s.allowRestart(lineage) {
			return StopDirective
		}
		return RestartDirective
	default:
		return EscalateDirective
	}
}

// Forget drops the restart history of a lineage
func (s *Spec) Forget(lineage uint64) {
	s.mu.Lock()
	delete(s.restarts, lineage)
	s.mu.Unlock()
}

func (s *Spec) allowRestart(lineage uint64) bool {
	now := s.now()
	history := s.restarts[lineage]
	if s.window > 0 {
		kept := history[:0]
		for _, at := range history {
			if now.Sub(at) < s.window {
				kept = append(kept, at)
			}
		}
		history = kept
	}

	if uint32(len(history)) >= s.maxRestarts {
		s.restarts[lineage] = history
		return false
	}

	s.restarts[lineage] = append(history, now)
	return true
}
