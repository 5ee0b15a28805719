/*
NAME
  core.go

DESCRIPTION
  core.go implements the shared streaming engine of spec.md §4.5: the
  mutex-and-two-condition-variable protocol coordinating a dedicated
  I/O worker goroutine with the audio-side perform callback around a
  ring buffer. Core is instantiated once per direction (playback,
  capture) by stream.Playback and stream.Capture.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

// Package stream implements the realtime producer/consumer streaming
// engine: a ring buffer bridging a dedicated I/O worker goroutine and
// an audio-rate perform callback, per spec.md §4.5.
package stream

import (
	"fmt"
	"sync"

	"github.com/aaaaalbert/pd-soundfile/format"
	"github.com/aaaaalbert/pd-soundfile/host"
	"github.com/aaaaalbert/pd-soundfile/ringbuf"
	"github.com/aaaaalbert/pd-soundfile/sfile"
)

// direction distinguishes a playback (disk to audio) engine from a
// capture (audio to disk) engine; both share Core's worker loop.
type direction int

const (
	playbackDirection direction = iota
	captureDirection
)

// request is the shared control word of spec.md §3.
type request int

const (
	reqNothing request = iota
	reqOpen
	reqClose
	reqQuit
	reqBusy
)

func (r request) String() string {
	switch r {
	case reqNothing:
		return "nothing"
	case reqOpen:
		return "open"
	case reqClose:
		return "close"
	case reqQuit:
		return "quit"
	case reqBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// audioState is the audio-side-only state of spec.md §3.
type audioState int

const (
	stateIdle audioState = iota
	stateStartup
	stateStream
)

func (s audioState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateStartup:
		return "startup"
	case stateStream:
		return "stream"
	default:
		return "unknown"
	}
}

// openParams is installed by Open and consumed once by the worker when
// it picks up a reqOpen request.
type openParams struct {
	readSpec  format.OpenSpec
	writeSpec format.CreateSpec
}

// Core is the engine shared by stream.Playback and stream.Capture. All
// fields below the mutex are shared state per spec.md §4.5 and must
// only be touched while mu is held.
type Core struct {
	dir direction

	mu      sync.Mutex
	reqCond *sync.Cond // the worker waits on this; the audio side signals it
	ansCond *sync.Cond // the audio side waits on this; the worker signals it

	request    request
	audioState audioState

	ring *ringbuf.Ring
	sf   *sfile.Descriptor

	pending openParams

	eof           bool
	fileErr       error
	framesWritten int64

	sigCountdown int
	sigPeriod    int
	vecSize      int

	clock      host.Clock
	onDone     func()
	onError    func(error)
	quitSignal chan struct{}
}

func newCore(dir direction, bufBytes int, clock host.Clock) *Core {
	c := &Core{
		dir:        dir,
		ring:       ringbuf.New(bufBytes),
		clock:      clock,
		quitSignal: make(chan struct{}),
	}
	c.reqCond = sync.NewCond(&c.mu)
	c.ansCond = sync.NewCond(&c.mu)
	go c.worker()
	return c
}

// setOnDone installs the deferred "done" notification hook.
func (c *Core) setOnDone(f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDone = f
}

// setOnError installs the deferred error notification hook.
func (c *Core) setOnError(f func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = f
}

// openRead installs a read (playback) open request, per the Control
// commands of §4.5: installs filename and options, sets request to
// Open and state to Startup, and signals request. A request already in
// flight (Busy, or an Open not yet picked up) is superseded: the
// worker's current inner loop notices the request is no longer Busy,
// unwinds cleanly (closing whatever file it had without raising an
// error), and then immediately services the freshly installed pending
// open.
func (c *Core) openRead(spec format.OpenSpec) {
	c.mu.Lock()
	c.pending = openParams{readSpec: spec}
	c.request = reqOpen
	c.audioState = stateStartup
	c.reqCond.Signal()
	c.mu.Unlock()
}

// openWrite installs a write (capture) open request; see openRead.
func (c *Core) openWrite(spec format.CreateSpec) {
	c.mu.Lock()
	c.pending = openParams{writeSpec: spec}
	c.request = reqOpen
	c.audioState = stateStartup
	c.reqCond.Signal()
	c.mu.Unlock()
}

// start transitions Startup to Stream, per §4.5's "start" control
// command; it errors if no open is in the Startup state.
func (c *Core) start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.audioState != stateStartup {
		return fmt.Errorf("stream: start requires a preceding open")
	}
	c.audioState = stateStream
	return nil
}

// stop requests a close, per §4.5's "stop" control command.
func (c *Core) stop() {
	c.mu.Lock()
	c.audioState = stateIdle
	if c.request == reqBusy || c.request == reqOpen {
		c.request = reqClose
	}
	c.reqCond.Signal()
	c.mu.Unlock()
}

// print returns a diagnostic snapshot, per §4.5's "print" command.
func (c *Core) print() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("request=%s state=%s eof=%v fileErr=%v head=%d tail=%d framesWritten=%d",
		c.request, c.audioState, c.eof, c.fileErr, c.ring.Head(), c.ring.Tail(), c.framesWritten)
}

// destroy implements the §4.5 Destructor: request Quit, spin-signal
// while waiting for the request to return to Nothing, then join the
// worker.
func (c *Core) destroy() {
	c.mu.Lock()
	c.request = reqQuit
	c.reqCond.Signal()
	for c.request != reqNothing {
		c.reqCond.Signal()
		c.ansCond.Wait()
	}
	c.mu.Unlock()
	<-c.quitSignal
}

// worker is the dedicated I/O thread of spec.md §4.5/§5: it owns every
// blocking disk call and releases mu for their duration.
func (c *Core) worker() {
	c.mu.Lock()
	for {
		switch c.request {
		case reqNothing:
			c.reqCond.Wait()
		case reqOpen:
			c.handleOpen()
		case reqClose:
			c.handleTopLevelClose()
		case reqQuit:
			c.handleQuit()
			c.mu.Unlock()
			close(c.quitSignal)
			return
		default:
			c.reqCond.Wait()
		}
	}
}

// handleOpen implements §4.5's Open handler and its following inner
// loop, called with mu held; it returns with mu held.
func (c *Core) handleOpen() {
	c.request = reqBusy
	c.fileErr = nil
	oldSF := c.sf
	params := c.pending
	c.mu.Unlock()
	if oldSF != nil {
		oldSF.CloseWith(oldSF.Format)
	}

	var newSF *sfile.Descriptor
	var err error
	if c.dir == playbackDirection {
		newSF, err = format.Open(params.readSpec)
	} else {
		newSF, err = format.Create(params.writeSpec)
	}

	c.mu.Lock()
	if err != nil {
		c.eof = true
		c.sf = nil
		if c.request == reqBusy {
			c.fileErr = err
			c.request = reqNothing
		}
		c.ansCond.Broadcast()
		return
	}

	c.sf = newSF
	c.ring.Rebind(newSF.BytesPerFrame)
	c.eof = false
	c.framesWritten = 0
	vecSize := c.vecSize
	if vecSize < 1 {
		vecSize = 1
	}
	c.sigPeriod = c.ring.Cap() / (16 * newSF.BytesPerFrame * vecSize)
	if c.sigPeriod < 1 {
		c.sigPeriod = 1
	}
	c.sigCountdown = c.sigPeriod

	c.runInnerLoop()

	sf := c.sf
	framesWritten := c.framesWritten
	isCapture := c.dir == captureDirection
	c.mu.Unlock()
	var updateErr error
	if sf != nil {
		if isCapture {
			// Best-effort per §9: attempt the header patch even after a
			// short write that already set fileErr.
			updateErr = sf.Format.UpdateHeader(sf, framesWritten)
		}
		sf.CloseWith(sf.Format)
	}
	c.mu.Lock()
	if updateErr != nil && c.fileErr == nil {
		c.fileErr = updateErr
	}
	if isCapture {
		c.sf = nil
	}
	// A finished playback job keeps its (now closed) descriptor so that
	// Perform can still decode what is left in the FIFO and fire done;
	// the next open or close clears it.
	//
	// request may already have moved on to a fresh Open, Close, or Quit
	// installed while this job's file I/O was in flight (Busy is only
	// ever set by the worker itself); only the normal-completion case
	// reverts it to Nothing here.
	if c.request == reqBusy {
		c.request = reqNothing
	}
	c.ansCond.Broadcast()
}

// runInnerLoop runs the playback or capture inner loop of §4.5 until
// the job completes, is aborted by an external request change, hits
// EOF/error, or (capture only) finishes draining a Close. Called and
// returns with mu held; releases mu around each blocking I/O call.
func (c *Core) runInnerLoop() {
	for {
		if c.dir == playbackDirection {
			if !(c.request == reqBusy && !c.eof) {
				return
			}
			c.runPlaybackStep()
		} else {
			closing := c.request == reqClose
			if !(c.request == reqBusy || (closing && !c.ring.Empty())) {
				return
			}
			if !c.runCaptureStep(closing) {
				return
			}
		}
	}
}

func (c *Core) runPlaybackStep() {
	want, mustWait := c.ring.PlaybackWant()
	if mustWait {
		c.ansCond.Broadcast()
		c.reqCond.Wait()
		return
	}
	if int64(want) > c.sf.ByteLimit {
		want = int(c.sf.ByteLimit)
	}
	if want <= 0 {
		c.eof = true
		return
	}

	head := c.ring.Head()
	sf := c.sf
	seg := c.ring.Segment(head, want)
	c.mu.Unlock()
	n, err := sf.Format.ReadSamples(sf, seg)
	c.mu.Lock()

	if c.request != reqBusy {
		return
	}
	switch {
	case err != nil:
		c.fileErr = err
		c.eof = true
	case n == 0:
		c.eof = true
	default:
		c.ring.AdvanceHead(n)
		c.sf.ByteLimit -= int64(n)
		if c.sf.ByteLimit <= 0 {
			c.eof = true
		}
	}
	c.ansCond.Broadcast()
}

// runCaptureStep performs one capture write and reports whether the
// inner loop should continue.
func (c *Core) runCaptureStep(closing bool) bool {
	want, mustWait := c.ring.CaptureWant(closing)
	if mustWait {
		if closing {
			return false
		}
		c.ansCond.Broadcast()
		c.reqCond.Wait()
		return true
	}

	tail := c.ring.Tail()
	sf := c.sf
	seg := c.ring.Segment(tail, want)
	c.mu.Unlock()
	n, err := sf.Format.WriteSamples(sf, seg)
	c.mu.Lock()

	if err == nil && n < want {
		err = fmt.Errorf("stream: short write (%d of %d bytes)", n, want)
	}
	if err != nil {
		c.fileErr = err
		c.ansCond.Broadcast()
		return false
	}
	c.ring.AdvanceTail(n)
	c.framesWritten += int64(n) / int64(c.sf.BytesPerFrame)
	c.ansCond.Broadcast()
	return true
}

// handleTopLevelClose handles a Close request observed while idle (no
// job in progress): "close current file if any; set request to
// Nothing; signal answer".
func (c *Core) handleTopLevelClose() {
	if c.sf != nil {
		sf := c.sf
		c.mu.Unlock()
		sf.CloseWith(sf.Format)
		c.mu.Lock()
		c.sf = nil
	}
	c.request = reqNothing
	c.ansCond.Broadcast()
}

// handleQuit handles a Quit request observed while idle.
func (c *Core) handleQuit() {
	if c.sf != nil {
		sf := c.sf
		c.mu.Unlock()
		sf.CloseWith(sf.Format)
		c.mu.Lock()
		c.sf = nil
	}
	c.request = reqNothing
	c.ansCond.Broadcast()
}
