/*
NAME
  capture.go

DESCRIPTION
  capture.go implements the capture (audio to disk) half of the
  streaming engine: the public Capture object and its PerformCapture
  callback, the audio-side half of spec.md §4.5.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package stream

import (
	"fmt"

	"github.com/aaaaalbert/pd-soundfile/codec/pcm"
	"github.com/aaaaalbert/pd-soundfile/format"
	"github.com/aaaaalbert/pd-soundfile/host"
)

// Capture streams audio-rate vectors to a file on disk. A Capture is
// created once per object instance and reused across repeated opens;
// Close releases its worker goroutine for good.
type Capture struct {
	core *Core
}

// NewCapture constructs a Capture with a FIFO of bufBytes capacity and
// clock used to schedule deferred notifications.
func NewCapture(bufBytes int, clock host.Clock) *Capture {
	return &Capture{core: newCore(captureDirection, bufBytes, clock)}
}

// OnError registers the callback invoked, via the configured
// host.Clock, when a capture job ends in a write error.
func (c *Capture) OnError(f func(error)) { c.core.setOnError(f) }

// Open installs a new file to record into, superseding any job in
// progress.
func (c *Capture) Open(spec format.CreateSpec) { c.core.openWrite(spec) }

// Start transitions a just-opened recording from Startup to Stream so
// PerformCapture begins delivering audio to disk.
func (c *Capture) Start() error { return c.core.start() }

// Stop requests the current recording be finalized: the worker drains
// whatever is still buffered, patches the header with the final frame
// count, and closes the file.
func (c *Capture) Stop() { c.core.stop() }

// Print returns a diagnostic snapshot of the engine's state.
func (c *Capture) Print() string { return c.core.print() }

// Close destroys the worker goroutine. The Capture must not be used
// afterward.
func (c *Capture) Close() { c.core.destroy() }

// ErrMetaNotReady is returned by WriteMetadata when the worker has not
// yet finished the in-flight open (core.sf is still nil) or the
// recording has already moved past Startup into Stream. Callers
// racing the worker's open may retry on this error.
var ErrMetaNotReady = fmt.Errorf("stream: meta requires an open recording that has not yet started")

// WriteMetadata writes one metadata group to the file just opened for
// recording, per §4.5's "meta args…" control command: valid only
// between open and start, while the worker has a file but has not yet
// begun streaming frames to it.
func (c *Capture) WriteMetadata(args []string) error {
	core := c.core
	core.mu.Lock()
	if core.audioState != stateStartup || core.sf == nil {
		core.mu.Unlock()
		return ErrMetaNotReady
	}
	sf := core.sf
	core.mu.Unlock()

	err := sf.Format.WriteMetadata(sf, args)

	core.mu.Lock()
	defer core.mu.Unlock()
	if core.sf != sf {
		// The open was superseded while the metadata write was in
		// flight; the caller's file is already gone, so there is
		// nothing left to report against.
		return nil
	}
	return err
}

// PerformCapture encodes one DSP tick's worth of audio (ins, one slice
// per input channel, each vecSize samples) into the FIFO for the I/O
// worker to write out, signalling it as needed, per §4.5's audio-side
// capture perform. If the FIFO has no room it signals the worker and
// waits; the tick's samples are dropped only if the recording is
// superseded or closed during that wait. A write error recorded by the
// worker is delivered on the next call, even after the worker has
// closed the file.
func (c *Capture) PerformCapture(vecSize int, ins [][]float32) {
	core := c.core
	core.mu.Lock()
	defer core.mu.Unlock()
	core.vecSize = vecSize

	if core.fileErr != nil {
		c.notifyError()
	}

	if core.audioState != stateStream || core.sf == nil {
		return
	}

	sf := core.sf
	want := vecSize * sf.BytesPerFrame
	for core.ring.Free() < want {
		core.reqCond.Signal()
		core.ansCond.Wait()
		if core.sf != sf {
			return
		}
	}

	pcmFmt, err := pcm.FromBytesPerSample(sf.BytesPerSample)
	if err != nil {
		return
	}

	seg := core.ring.Segment(core.ring.Head(), want)
	pcm.EncodeFrames(pcmFmt, sf.BigEndian, sf.Channels, ins, 0, vecSize, seg)
	core.ring.AdvanceHead(want)

	core.sigCountdown--
	if core.sigCountdown <= 0 {
		core.reqCond.Signal()
		core.sigCountdown = core.sigPeriod
	}
}

// notifyError schedules the deferred error callback on the host's main
// thread. Called with core.mu held; releases it for the callback's
// duration, then re-acquires it before returning (see
// Playback.notifyDone for why).
func (c *Capture) notifyError() {
	core := c.core
	onError := core.onError
	err := core.fileErr
	core.fileErr = nil
	if onError == nil || err == nil {
		return
	}
	clock := core.clock
	core.mu.Unlock()
	if clock == nil {
		onError(err)
	} else {
		clock.AfterFunc(0, func() { onError(err) })
	}
	core.mu.Lock()
}
