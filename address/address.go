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

// Package address provides the identity values used to reach actors.
//
// An Address identifies exactly one mailbox and is made of three parts:
//
//   - ID: a process-unique number, never reused
//   - Locality: the token of the execution context (thread of processing)
//     the address belongs to
//   - Owner: the ID of the supervisor that owns the address
//
// Addresses are plain comparable values. They can be used as map keys and
// compared with ==. The owning supervisor is not referenced by pointer: it is
// resolved by looking up Owner in the runtime's supervisor directory.
//
// The canonical textual representation of an Address is:
//
//	addr://<locality>/<owner>/<id>
package address

import (
	"fmt"

	"go.uber.org/atomic"
)

// scheme defines the addressing scheme
const scheme = "addr"

// sequence hands out address IDs. Zero is reserved for NoAddress.
var sequence = atomic.NewUint64(0)

// NoAddress is the zero Address. It is never assigned to an actor.
var NoAddress = Address{}

// Address identifies a mailbox in the runtime.
type Address struct {
	id       uint64
	owner    uint64
	locality Locality
}

// New creates a fresh Address owned by the supervisor with the given owner ID
// and bound to the given locality.
func New(locality Locality, owner uint64) Address {
	return Address{
		id:       sequence.Inc(),
		owner:    owner,
		locality: locality,
	}
}

// NewOwner creates a fresh Address that owns itself. Supervisors use it for
// their own address.
func NewOwner(locality Locality) Address {
	id := sequence.Inc()
	return Address{
		id:       id,
		owner:    id,
		locality: locality,
	}
}

// ID returns the unique identifier of the address
func (a Address) ID() uint64 {
	return a.id
}

// Owner returns the ID of the owning supervisor's address
func (a Address) Owner() uint64 {
	return a.owner
}

// Locality returns the locality token of the address
func (a Address) Locality() Locality {
	return a.locality
}

// IsZero returns true when the address is NoAddress
func (a Address) IsZero() bool {
	return a.id == 0
}

// IsOwner returns true when the address belongs to a supervisor
func (a Address) IsOwner() bool {
	return !a.IsZero() && a.id == a.owner
}

// SameLocality returns true when both addresses live in the same locality
func (a Address) SameLocality(other Address) bool {
	return a.locality == other.locality
}

// OwnedBy returns true when the address is owned by the supervisor whose
// address is given
func (a Address) OwnedBy(supervisor Address) bool {
	return !a.IsZero() && a.owner == supervisor.id
}

// OwnerAddress returns the address of the supervisor owning a
func (a Address) OwnerAddress() Address {
	if a.IsZero() {
		return NoAddress
	}
	return Address{
		id:       a.owner,
		owner:    a.owner,
		locality: a.locality,
	}
}

// String returns the canonical string representation of the address
func (a Address) String() string {
	if a.IsZero() {
		return scheme + "://-"
	}
	return fmt.Sprintf("%s://%s/%d/%d", scheme, a.locality.Short(), a.owner, a.id)
}
