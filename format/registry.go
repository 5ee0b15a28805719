/*
NAME
  registry.go

DESCRIPTION
  registry.go implements the process-wide, bounded, ordered format
  registry of spec.md §3: up to eight plug-ins, registration order
  doubling as both sniff priority and default-format preference.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

// Package format holds the process-wide format plug-in registry, which
// is seeded with the built-in plug-ins (WAVE, AIFF, CAF, NeXT/Sun) at
// init time. The raw passthrough is not registered; Open uses it
// directly for headerless reads.
package format

import (
	"fmt"

	"github.com/aaaaalbert/pd-soundfile/sfile"
)

// MaxFormats is the registry's capacity, per spec.md §3.
const MaxFormats = 8

// Registry is an ordered, append-only sequence of format plug-ins.
// The zero Registry is usable; Register is the only mutator, and the
// default registry is only ever mutated from init() functions at
// process startup, so — matching the teacher's treatment of its own
// process-wide tables — reads against it need no lock (§5 "the format
// registry is process-wide, append-only after setup, and therefore
// read-safe without locks").
type Registry struct {
	plugins []sfile.Plugin
}

// Register appends p to the registry. It returns an error if the
// registry is already at MaxFormats capacity or a plug-in of the same
// name is already registered.
func (r *Registry) Register(p sfile.Plugin) error {
	if len(r.plugins) >= MaxFormats {
		return fmt.Errorf("format: registry full (max %d formats)", MaxFormats)
	}
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("format: %q already registered", p.Name())
		}
	}
	r.plugins = append(r.plugins, p)
	return nil
}

// Plugins returns the registered plug-ins in registration order. The
// returned slice is owned by the caller; it shares no backing array
// with r's internal state.
func (r *Registry) Plugins() []sfile.Plugin {
	out := make([]sfile.Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

// Names returns the registered plug-ins' names in registration order,
// for the "list" command surface (§6).
func (r *Registry) Names() []string {
	names := make([]string, len(r.plugins))
	for i, p := range r.plugins {
		names[i] = p.Name()
	}
	return names
}

// ByName returns the plug-in with the given name.
func (r *Registry) ByName(name string) (sfile.Plugin, bool) {
	for _, p := range r.plugins {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// ByExtension returns the first registered plug-in whose HasExtension
// accepts filename.
func (r *Registry) ByExtension(filename string) (sfile.Plugin, bool) {
	for _, p := range r.plugins {
		if p.HasExtension(filename) {
			return p, true
		}
	}
	return nil, false
}

// MaxHeaderProbe returns the largest MinHeaderSize across all
// registered plug-ins: the synchronous and streaming opens read this
// many bytes before sniffing (§4.2).
func (r *Registry) MaxHeaderProbe() int {
	max := 0
	for _, p := range r.plugins {
		if n := p.MinHeaderSize(); n > max {
			max = n
		}
	}
	return max
}

// Sniff probes buf (which holds at least MaxHeaderProbe bytes, or
// fewer at end of a short file) against each registered plug-in in
// registration order and returns the first that accepts it.
func (r *Registry) Sniff(buf []byte) (sfile.Plugin, bool) {
	for _, p := range r.plugins {
		if p.Sniff(buf) {
			return p, true
		}
	}
	return nil, false
}

// Default returns the first registered plug-in, the default-format
// preference of spec.md §3.
func (r *Registry) Default() (sfile.Plugin, bool) {
	if len(r.plugins) == 0 {
		return nil, false
	}
	return r.plugins[0], true
}

// defaultRegistry is the process-wide singleton, seeded by each
// built-in format's init() function in this package.
var defaultRegistry Registry

// Default returns the process-wide registry.
func Default() *Registry { return &defaultRegistry }
