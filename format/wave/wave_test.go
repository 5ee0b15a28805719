/*
NAME
  wave_test.go

DESCRIPTION
  wave_test.go tests the WAVE plug-in's sniffing and header round-trip,
  including the §8 scenario 1 two-channel 16-bit DC file.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package wave

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aaaaalbert/pd-soundfile/codec/pcm"
	"github.com/aaaaalbert/pd-soundfile/sfile"
)

func TestSniff(t *testing.T) {
	p := New()
	if !p.Sniff([]byte("RIFF\x00\x00\x00\x00WAVE")) {
		t.Error("Sniff rejected a valid RIFF/WAVE header")
	}
	if p.Sniff([]byte("FORM\x00\x00\x00\x00AIFF")) {
		t.Error("Sniff accepted a FORM/AIFF header")
	}
	if p.Sniff([]byte("short")) {
		t.Error("Sniff accepted a too-short buffer")
	}
}

func TestHasExtension(t *testing.T) {
	p := New()
	for _, name := range []string{"song.wav", "song.WAV", "song.wave"} {
		if !p.HasExtension(name) {
			t.Errorf("HasExtension(%q) = false, want true", name)
		}
	}
	if p.HasExtension("song.aiff") {
		t.Error("HasExtension(song.aiff) = true, want false")
	}
}

// TestTwoChannelDCRoundTrip mirrors §8 scenario 1: a two-channel,
// 16-bit, little-endian, 1000-frame file holding constant {0.5, -0.5}
// per frame, written then read back unchanged.
func TestTwoChannelDCRoundTrip(t *testing.T) {
	f, err := os.CreateTemp("", "wave-*.wav")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	p := New()
	sf := &sfile.Descriptor{File: f, Channels: 2, SampleRate: 44100, BytesPerSample: 2}
	sf.SyncGeometry()

	const nframes = 1000
	hdrSize, err := p.WriteHeader(sf, nframes)
	if err != nil {
		t.Fatal(err)
	}
	if hdrSize != riffHeaderSize {
		t.Fatalf("WriteHeader returned %d, want %d", hdrSize, riffHeaderSize)
	}

	payload := make([]byte, nframes*sf.BytesPerFrame)
	for i := 0; i < nframes; i++ {
		off := i * sf.BytesPerFrame
		pcm.WriteSample(pcm.S16, false, 0.5, payload[off:off+2])
		pcm.WriteSample(pcm.S16, false, -0.5, payload[off+2:off+4])
	}
	if _, err := f.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := p.UpdateHeader(sf, nframes); err != nil {
		t.Fatal(err)
	}

	if _, err := f.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	read := &sfile.Descriptor{File: f}
	if err := p.ReadHeader(read); err != nil {
		t.Fatal(err)
	}
	if read.Channels != 2 || read.BytesPerSample != 2 || read.SampleRate != 44100 {
		t.Fatalf("read back geometry = %+v, want channels=2 bytesPerSample=2 sampleRate=44100", read)
	}
	if read.BigEndian {
		t.Error("WAVE descriptor must report BigEndian=false")
	}
	if read.HeaderSize != hdrSize {
		t.Errorf("HeaderSize = %d, want %d", read.HeaderSize, hdrSize)
	}
	if read.ByteLimit != int64(len(payload)) {
		t.Errorf("ByteLimit = %d, want %d", read.ByteLimit, len(payload))
	}

	got := make([]byte, len(payload))
	if _, err := p.ReadSamples(read, got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(payload, got); diff != "" {
		t.Errorf("read-back payload mismatch (-want +got):\n%s", diff)
	}
	for i := 0; i < nframes; i++ {
		off := i * read.BytesPerFrame
		left := pcm.ReadSample(pcm.S16, false, got[off:off+2])
		right := pcm.ReadSample(pcm.S16, false, got[off+2:off+4])
		if left != 0.5 || right != -0.5 {
			t.Fatalf("frame %d = (%v, %v), want (0.5, -0.5)", i, left, right)
		}
	}
}

func TestStreamingHeaderUsesMaxSize(t *testing.T) {
	f, err := os.CreateTemp("", "wave-*.wav")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	p := New()
	sf := &sfile.Descriptor{File: f, Channels: 1, SampleRate: 44100, BytesPerSample: 2}
	sf.SyncGeometry()
	if _, err := p.WriteHeader(sf, sfile.StreamingMaxFrames); err != nil {
		t.Fatal(err)
	}
	var field [4]byte
	if _, err := f.ReadAt(field[:], riffHeaderSize-4); err != nil {
		t.Fatal(err)
	}
	got := uint32(field[0]) | uint32(field[1])<<8 | uint32(field[2])<<16 | uint32(field[3])<<24
	if want := uint32(0xFFFFFFFF - riffHeaderSize); got != want {
		t.Errorf("streaming data chunk size = %#x, want %#x", got, want)
	}
}

func TestFormatHelper(t *testing.T) {
	sf := &sfile.Descriptor{BytesPerSample: 3}
	f, err := Format(sf)
	if err != nil {
		t.Fatal(err)
	}
	if f != pcm.S24 {
		t.Errorf("Format() = %v, want S24", f)
	}
}
