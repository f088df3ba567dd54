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

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	deliveredCounterName      = "supervise.messages.delivered"
	deadLettersCounterName    = "supervise.messages.dead_letters"
	requestsCounterName       = "supervise.requests.sent"
	timeoutsCounterName       = "supervise.requests.timed_out"
	spawnedCounterName        = "supervise.actors.spawned"
	childFailuresCounterName  = "supervise.actors.init_failures"
	forcedRemovalsCounterName = "supervise.actors.forced_removals"

	localityAttribute = "locality"
)

// Metrics holds the runtime counters
type Metrics struct {
	delivered      metric.Int64Counter
	deadLetters    metric.Int64Counter
	requests       metric.Int64Counter
	timeouts       metric.Int64Counter
	spawned        metric.Int64Counter
	childFailures  metric.Int64Counter
	forcedRemovals metric.Int64Counter
}

// NewMetrics creates the runtime counters on the given meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	metrics := new(Metrics)
	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&metrics.delivered, deliveredCounterName, "The total number of messages handed to handlers"},
		{&metrics.deadLetters, deadLettersCounterName, "The total number of messages without a recipient"},
		{&metrics.requests, requestsCounterName, "The total number of requests sent"},
		{&metrics.timeouts, timeoutsCounterName, "The total number of requests that timed out"},
		{&metrics.spawned, spawnedCounterName, "The total number of actors spawned"},
		{&metrics.childFailures, childFailuresCounterName, "The total number of children that failed to initialize"},
		{&metrics.forcedRemovals, forcedRemovalsCounterName, "The total number of children forcibly removed at shutdown"},
	}

	for _, counter := range counters {
		instrument, err := meter.Int64Counter(counter.name, metric.WithDescription(counter.description))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s instrument, %w", counter.name, err)
		}
		*counter.target = instrument
	}
	return metrics, nil
}

// Recorder records the counters of one locality
type Recorder struct {
	metrics    *Metrics
	attributes metric.AddOption
}

// Recorder returns a Recorder tagging every measure with the locality
func (m *Metrics) Recorder(locality string) *Recorder {
	return &Recorder{
		metrics:    m,
		attributes: metric.WithAttributeSet(attribute.NewSet(attribute.String(localityAttribute, locality))),
	}
}

// Delivered records a message handed to a handler
func (r *Recorder) Delivered() {
	r.add(func(m *Metrics) metric.Int64Counter { return m.delivered })
}

// DeadLetter records a message without a recipient
func (r *Recorder) DeadLetter() {
	r.add(func(m *Metrics) metric.Int64Counter { return m.deadLetters })
}

// RequestSent records a request
func (r *Recorder) RequestSent() {
	r.add(func(m *Metrics) metric.Int64Counter { return m.requests })
}

// RequestTimedOut records a request timeout
func (r *Recorder) RequestTimedOut() {
	r.add(func(m *Metrics) metric.Int64Counter { return m.timeouts })
}

// Spawned records a spawned actor
func (r *Recorder) Spawned() {
	r.add(func(m *Metrics) metric.Int64Counter { return m.spawned })
}

// ChildFailed records a child init failure
func (r *Recorder) ChildFailed() {
	r.add(func(m *Metrics) metric.Int64Counter { return m.childFailures })
}

// ForcedRemoval records a child removed without shutdown confirmation
func (r *Recorder) ForcedRemoval() {
	r.add(func(m *Metrics) metric.Int64Counter { return m.forcedRemovals })
}

func (r *Recorder) add(counter func(*Metrics) metric.Int64Counter) {
	if r == nil || r.metrics == nil {
		return
	}
	counter(r.metrics).Add(context.Background(), 1, r.attributes)
}
