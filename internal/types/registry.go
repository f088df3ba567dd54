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

// Package types assigns stable identifiers to message payload types.
//
// The identifier of a type is the xxh3 hash of its fully qualified name, so
// the same Go type always maps to the same ID. Names are kept in a registry
// to render identifiers in logs.
package types

import (
	"reflect"
	"sync"

	"github.com/zeebo/xxh3"
)

// ID identifies a payload type
type ID uint64

// Nil is the identifier of the nil interface value
const Nil ID = 0

// Registry records the name of every identified type
type Registry interface {
	// Register records the type and returns its identifier
	Register(t reflect.Type) ID
	// Name returns the qualified name of an identifier
	Name(id ID) (string, bool)
	// Len returns the number of recorded types
	Len() int
}

type registry struct {
	mu    sync.RWMutex
	names map[ID]string
	ids   sync.Map
}

var _ Registry = (*registry)(nil)

// NewRegistry creates a new types registry
func NewRegistry() Registry {
	return &registry{names: make(map[ID]string)}
}

// global is the registry used by the package-level helpers
var global = NewRegistry()

// Register records the type and returns its identifier
func (r *registry) Register(t reflect.Type) ID {
	if t == nil {
		return Nil
	}

	if id, ok := r.ids.Load(t); ok {
		return id.(ID)
	}

	name := QualifiedName(t)
	id := ID(xxh3.HashString(name))
	r.mu.Lock()
	r.names[id] = name
	r.mu.Unlock()
	r.ids.Store(t, id)
	return id
}

// Name returns the qualified name of an identifier
func (r *registry) Name(id ID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[id]
	return name, ok
}

// Len returns the number of recorded types
func (r *registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Of returns the identifier of the dynamic type of v
func Of(v any) ID {
	return global.Register(reflect.TypeOf(v))
}

// For returns the identifier of T
func For[T any]() ID {
	return global.Register(reflect.TypeFor[T]())
}

// Name returns the qualified type name behind an identifier, or "unknown"
func Name(id ID) string {
	if name, ok := global.Name(id); ok {
		return name
	}
	return "unknown"
}

// QualifiedName returns the name of a type including its package path
func QualifiedName(t reflect.Type) string {
	switch {
	case t.Kind() == reflect.Pointer:
		return "*" + QualifiedName(t.Elem())
	case t.Name() != "" && t.PkgPath() != "":
		return t.PkgPath() + "." + t.Name()
	default:
		return t.String()
	}
}
