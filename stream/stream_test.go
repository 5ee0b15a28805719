/*
NAME
  stream_test.go

DESCRIPTION
  stream_test.go exercises the streaming engine end to end against real
  temp files, covering §8 scenario 3 (playback drains to completion and
  signals done exactly once) and scenario 4 (a second Open supersedes
  an in-flight first one).

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package stream

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/aaaaalbert/pd-soundfile/format"
	"github.com/aaaaalbert/pd-soundfile/ringbuf"
	"github.com/aaaaalbert/pd-soundfile/sfile"
)

// syncClock runs AfterFunc callbacks inline, standing in for the host
// main-thread scheduler in tests.
type syncClock struct{}

func (syncClock) AfterFunc(d time.Duration, f func()) func() {
	f()
	return func() {}
}

func writeWaveFixture(t *testing.T, channels, sampleRate, bytesPerSample int, nframes int64) (string, func()) {
	t.Helper()
	f, err := os.CreateTemp("", "stream-*.wav")
	if err != nil {
		t.Fatal(err)
	}
	path := f.Name()

	wavePlugin, _ := format.Default().ByName("wave")
	sf := &sfile.Descriptor{File: f, Channels: channels, SampleRate: sampleRate, BytesPerSample: bytesPerSample}
	sf.SyncGeometry()
	if _, err := wavePlugin.WriteHeader(sf, nframes); err != nil {
		t.Fatal(err)
	}
	payload := make([]byte, nframes*int64(sf.BytesPerFrame))
	for i := range payload {
		payload[i] = byte(i)
	}
	if _, err := f.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := wavePlugin.UpdateHeader(sf, nframes); err != nil {
		t.Fatal(err)
	}
	f.Close()
	return path, func() { os.Remove(path) }
}

// TestPlaybackDrainsExactlyOnce mirrors §8 scenario 3: an 8000-frame,
// two-channel, 16-bit file streamed in 64-frame DSP ticks must signal
// done exactly once, with every frame decoded along the way.
func TestPlaybackDrainsExactlyOnce(t *testing.T) {
	const (
		channels       = 2
		sampleRate     = 44100
		bytesPerSample = 2
		nframes        = 8000
		vecSize        = 64
	)
	path, cleanup := writeWaveFixture(t, channels, sampleRate, bytesPerSample, nframes)
	defer cleanup()

	pb := NewPlayback(ringbuf.MinBufSize, syncClock{})
	defer pb.Close()

	var mu sync.Mutex
	doneCount := 0
	pb.OnDone(func() {
		mu.Lock()
		doneCount++
		mu.Unlock()
	})
	pb.OnError(func(err error) { t.Errorf("unexpected playback error: %v", err) })

	pb.Open(format.OpenSpec{Path: path})
	waitForStartup(t, pb.core)
	if err := pb.Start(); err != nil {
		t.Fatal(err)
	}

	outs := [][]float32{make([]float32, vecSize), make([]float32, vecSize)}
	framesSeen := 0
	for tick := 0; tick < nframes/vecSize+20; tick++ {
		done := pb.Perform(vecSize, outs)
		mu.Lock()
		finished := doneCount > 0
		mu.Unlock()
		if finished {
			break
		}
		if done {
			break
		}
		framesSeen += vecSize
	}

	mu.Lock()
	got := doneCount
	mu.Unlock()
	if got != 1 {
		t.Errorf("doneCount = %d, want 1", got)
	}
	if framesSeen != nframes {
		t.Errorf("framesSeen = %d, want %d", framesSeen, nframes)
	}
}

// TestOpenSupersedesInFlightOpen mirrors §8 scenario 4: issuing a
// second Open while the first is still being serviced must result in
// the second file winning, with no error surfaced from the first.
func TestOpenSupersedesInFlightOpen(t *testing.T) {
	pathA, cleanupA := writeWaveFixture(t, 1, 44100, 2, 10)
	defer cleanupA()
	pathB, cleanupB := writeWaveFixture(t, 2, 48000, 3, 20)
	defer cleanupB()

	pb := NewPlayback(ringbuf.MinBufSize, syncClock{})
	defer pb.Close()
	pb.OnError(func(err error) { t.Errorf("unexpected playback error: %v", err) })

	pb.Open(format.OpenSpec{Path: pathA})
	pb.Open(format.OpenSpec{Path: pathB})

	waitForStartup(t, pb.core)
	if err := pb.Start(); err != nil {
		t.Fatal(err)
	}

	pb.core.mu.Lock()
	sf := pb.core.sf
	pb.core.mu.Unlock()
	if sf == nil {
		t.Fatal("expected an open descriptor after superseding Open")
	}
	if sf.Channels != 2 || sf.BytesPerSample != 3 {
		t.Errorf("geometry = %+v, want the second Open's file", sf)
	}
}

// waitForStartup polls until the core reaches Startup state (the
// worker has picked up the pending Open), or fails the test after a
// generous timeout.
func waitForStartup(t *testing.T, c *Core) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		state := c.audioState
		sf := c.sf
		c.mu.Unlock()
		if state == stateStartup && sf != nil {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for stream to reach startup")
}
