// sim/registry.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sauna-sim/sauna-api-sub001/util"
)

// Registry holds the connected aircraft by callsign. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.Mutex
	aircraft map[string]*Aircraft
}

func NewRegistry() *Registry {
	return &Registry{aircraft: make(map[string]*Aircraft)}
}

func normalizeCallsign(cs string) string {
	return strings.ToUpper(strings.TrimSpace(cs))
}

func (r *Registry) Add(ac *Aircraft) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.aircraft[ac.Callsign]; ok {
		return fmt.Errorf("%s: %w", ac.Callsign, ErrDuplicateCallsign)
	}
	r.aircraft[ac.Callsign] = ac
	return nil
}

func (r *Registry) Remove(callsign string) (*Aircraft, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	callsign = normalizeCallsign(callsign)
	ac, ok := r.aircraft[callsign]
	delete(r.aircraft, callsign)
	return ac, ok
}

// removeAircraft removes ac if it is still the aircraft registered under
// its callsign.
func (r *Registry) removeAircraft(ac *Aircraft) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.aircraft[ac.Callsign] == ac {
		delete(r.aircraft, ac.Callsign)
	}
}

func (r *Registry) Get(callsign string) (*Aircraft, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ac, ok := r.aircraft[normalizeCallsign(callsign)]
	return ac, ok
}

// Callsigns returns the registered callsigns in sorted order.
func (r *Registry) Callsigns() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return util.SortedMapKeys(r.aircraft)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.aircraft)
}

// All returns the registered aircraft ordered by callsign.
func (r *Registry) All() []*Aircraft {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*Aircraft
	for _, cs := range util.SortedMapKeys(r.aircraft) {
		all = append(all, r.aircraft[cs])
	}
	return all
}
