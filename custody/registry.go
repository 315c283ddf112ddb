// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

// Package custody implements the custody-address registry: a one-to-one,
// permanent binding from an FA custody address to the principal that owns
// it. The registry never derives addresses — it only accepts a pre-derived
// address from the reporter and enforces the binding.
package custody

import (
	"errors"
	"sync"

	"github.com/nuru-ai/ckalgo-bridge/principal"
)

// ErrBoundToOther is returned when an address is already bound to a
// different principal than the one requesting the binding.
var ErrBoundToOther = errors.New("custody address already bound to a different principal")

// Registry maps custody addresses to owning principals.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]principal.Principal // address -> owner
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{bindings: make(map[string]principal.Principal)}
}

// Register binds address to owner. Idempotent if the same pair is already
// bound; rejected with ErrBoundToOther if address is bound to someone else.
// Bindings are permanent — there is no unregister operation.
func (r *Registry) Register(address string, owner principal.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.bindings[address]; ok {
		if !principal.Equal(existing, owner) {
			return ErrBoundToOther
		}
		return nil
	}
	r.bindings[address] = owner
	return nil
}

// Lookup returns the owner bound to address, if any.
func (r *Registry) Lookup(address string) (principal.Principal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.bindings[address]
	return p, ok
}

// Snapshot returns a copy of all bindings, for persistence across upgrades.
func (r *Registry) Snapshot() map[string]principal.Principal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]principal.Principal, len(r.bindings))
	for k, v := range r.bindings {
		cp := make(principal.Principal, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// Restore replaces all bindings wholesale. Used only by persistence restore.
func (r *Registry) Restore(bindings map[string]principal.Principal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings = make(map[string]principal.Principal, len(bindings))
	for k, v := range bindings {
		cp := make(principal.Principal, len(v))
		copy(cp, v)
		r.bindings[k] = cp
	}
}

// Len reports how many addresses are currently bound.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}
