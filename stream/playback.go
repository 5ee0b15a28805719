/*
NAME
  playback.go

DESCRIPTION
  playback.go implements the playback (disk to audio) half of the
  streaming engine: the public Playback object and its Perform
  callback, the audio-side half of spec.md §4.5.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package stream

import (
	"github.com/aaaaalbert/pd-soundfile/codec/pcm"
	"github.com/aaaaalbert/pd-soundfile/format"
	"github.com/aaaaalbert/pd-soundfile/host"
)

// Playback streams a soundfile from disk into audio-rate vectors. A
// Playback is created once per object instance and reused across
// repeated opens; Close releases its worker goroutine for good.
type Playback struct {
	core *Core
}

// NewPlayback constructs a Playback with a FIFO of bufBytes capacity
// (rounded per ringbuf's allocation rules) and clock used to schedule
// the deferred "done" notification of §9.
func NewPlayback(bufBytes int, clock host.Clock) *Playback {
	return &Playback{core: newCore(playbackDirection, bufBytes, clock)}
}

// OnDone registers the deferred notification callback invoked, via the
// configured host.Clock, when a playback job reaches EOF.
func (p *Playback) OnDone(f func()) { p.core.setOnDone(f) }

// OnError registers the callback invoked when a playback job ends in
// error.
func (p *Playback) OnError(f func(error)) { p.core.setOnError(f) }

// Open installs a new file to play, superseding any job in progress,
// per spec.md §4.5's Open control command.
func (p *Playback) Open(spec format.OpenSpec) { p.core.openRead(spec) }

// Start transitions a just-opened stream from Startup to Stream so
// Perform begins delivering audio.
func (p *Playback) Start() error { return p.core.start() }

// Stop requests the current job be closed; the worker completes any
// read already in progress, then closes the file without reading
// further.
func (p *Playback) Stop() { p.core.stop() }

// Print returns a diagnostic snapshot of the engine's state.
func (p *Playback) Print() string { return p.core.print() }

// Close destroys the worker goroutine. The Playback must not be used
// afterward.
func (p *Playback) Close() { p.core.destroy() }

// Perform delivers one DSP tick's worth of audio: it decodes the next
// vecSize frames from the FIFO into outs (one slice per output
// channel, each already sized vecSize), signalling the I/O worker as
// needed, per §4.5's audio-side playback perform. It reports whether
// this call reached end of file (in which case any partial tail frames
// have already been decoded and the remainder of outs zeroed).
func (p *Playback) Perform(vecSize int, outs [][]float32) (done bool) {
	c := p.core
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vecSize = vecSize

	if c.audioState != stateStream || c.sf == nil {
		zeroFrom(outs, 0, vecSize)
		return false
	}

	sf := c.sf
	want := vecSize * sf.BytesPerFrame
	for !c.eof && c.ring.Used() < want {
		c.reqCond.Signal()
		c.ansCond.Wait()
		if c.sf != sf {
			// The job was superseded or closed out from under us while
			// we waited; report silence for this tick rather than read
			// from a descriptor that is no longer ours.
			zeroFrom(outs, 0, vecSize)
			return false
		}
	}

	pcmFmt, err := pcm.FromBytesPerSample(sf.BytesPerSample)
	if err != nil {
		zeroFrom(outs, 0, vecSize)
		return false
	}
	if len(outs) > sf.Channels {
		zeroFrom(outs[sf.Channels:], 0, vecSize)
	}

	if c.eof && c.ring.Used() < want {
		avail := c.ring.Used() / sf.BytesPerFrame
		if avail > 0 {
			seg := c.ring.Segment(c.ring.Tail(), avail*sf.BytesPerFrame)
			pcm.DecodeFrames(pcmFmt, sf.BigEndian, sf.Channels, seg, avail, outs)
			c.ring.AdvanceTail(avail * sf.BytesPerFrame)
		}
		zeroFrom(outs, avail, vecSize)
		c.audioState = stateIdle
		c.reqCond.Signal()
		p.notifyDone()
		return true
	}

	seg := c.ring.Segment(c.ring.Tail(), want)
	pcm.DecodeFrames(pcmFmt, sf.BigEndian, sf.Channels, seg, vecSize, outs)
	c.ring.AdvanceTail(want)

	c.sigCountdown--
	if c.sigCountdown <= 0 {
		c.reqCond.Signal()
		c.sigCountdown = c.sigPeriod
	}
	return false
}

// notifyDone schedules the deferred "done" (and, if one occurred,
// error) callback on the host's main thread, per §9's design note that
// neither the audio thread nor the I/O worker may call back into the
// host directly. Called with c.mu held; releases it for the duration
// of the callback so a host callback that re-enters this Playback
// cannot deadlock against itself, then re-acquires it before returning.
func (p *Playback) notifyDone() {
	c := p.core
	onDone := c.onDone
	onError := c.onError
	err := c.fileErr
	c.fileErr = nil
	if onDone == nil && (onError == nil || err == nil) {
		return
	}
	clock := c.clock
	c.mu.Unlock()
	deliver := func() {
		if err != nil && onError != nil {
			onError(err)
		}
		if onDone != nil {
			onDone()
		}
	}
	if clock == nil {
		deliver()
	} else {
		clock.AfterFunc(0, deliver)
	}
	c.mu.Lock()
}

// zeroFrom fills outs[ch][from:vecSize] with silence for every output
// channel, per §4.1's "excess output destinations" zero-padding policy.
func zeroFrom(outs [][]float32, from, vecSize int) {
	for ch := range outs {
		for i := from; i < vecSize && i < len(outs[ch]); i++ {
			outs[ch][i] = 0
		}
	}
}
