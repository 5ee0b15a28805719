/*
NAME
  host.go

DESCRIPTION
  host.go declares the collaborator interfaces that the containing
  realtime audio-processing environment must supply. This package has
  no implementation of its own: it exists so that the rest of this
  module can depend on an interface rather than a concrete host.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

// Package host declares the interfaces through which this module talks
// to its embedding environment: the table/array store, the per-document
// path resolver, and the main-thread deferred-callback scheduler. All
// three are out of scope per spec; this package is the seam.
package host

import "time"

// Tables owns the host's float arrays ("tables"). Source and
// destination arrays for synchronous transfers are named and resolved
// through this interface.
type Tables interface {
	// Array returns the named array's backing slice and whether it
	// exists. The returned slice aliases the host's storage; mutating
	// it is how this module writes sample data back into a table.
	Array(name string) (data []float32, ok bool)

	// Resize grows or shrinks the named array to exactly frames
	// elements, returning the (possibly reallocated) backing slice.
	// Resize also clears the host's "save with patch" flag for the
	// array, per §4.3 step 4.
	Resize(name string, frames int) ([]float32, error)

	// Redraw notifies the host that the named array's contents changed,
	// so any attached UI can refresh (§4.3 step 8).
	Redraw(name string)
}

// PathResolver resolves a user-supplied path relative to whatever
// document or working directory currently owns this module's caller.
//
// Per the open question in spec.md §9, Resolve must either be called
// only while the caller's own stream.Core mutex (if any) is held, or be
// safe for concurrent use; this module's own callers (syncio, which is
// single-threaded by construction, and stream, whose worker goroutine
// is the sole caller) already satisfy this without extra locking.
type PathResolver interface {
	Resolve(path string) (string, error)
}

// Clock schedules a deferred callback on the host's main thread, used
// for the streaming playback "done" notification (spec.md §9) which
// must not be delivered directly from the audio thread or I/O worker.
type Clock interface {
	// AfterFunc schedules f to run on the main thread after d and
	// returns a function that cancels the pending call if it has not
	// yet run.
	AfterFunc(d time.Duration, f func()) (cancel func())
}
