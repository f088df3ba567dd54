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

import "github.com/google/uuid"

// Locality identifies the execution context a set of supervisors shares.
// Two addresses are in the same locality when their tokens are equal.
type Locality uuid.UUID

// NoLocality is the zero locality
var NoLocality = Locality(uuid.Nil)

// NewLocality returns a fresh locality token
func NewLocality() Locality {
	return Locality(uuid.New())
}

// IsZero returns true for NoLocality
func (l Locality) IsZero() bool {
	return l == NoLocality
}

// String returns the full textual form of the token
func (l Locality) String() string {
	return uuid.UUID(l).String()
}

// Short returns the first group of the token. It is used in logs and in the
// textual form of addresses.
func (l Locality) Short() string {
	return l.String()[:8]
}
