/*
NAME
  aiff_test.go

DESCRIPTION
  aiff_test.go tests the AIFF plug-in's extended-float codec and its
  header round-trip.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package aiff

import (
	"math"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aaaaalbert/pd-soundfile/sfile"
)

// geometry is the subset of sfile.Descriptor that a header round trip
// must reproduce exactly; sfile.Descriptor itself isn't comparable
// (it holds an *os.File), so tests diff this projection instead.
type geometry struct {
	Channels       int
	BytesPerSample int
	SampleRate     int
	BigEndian      bool
}

func TestExtendedRoundTrip(t *testing.T) {
	rates := []float64{44100, 48000, 8000, 96000, 1, 0}
	for _, r := range rates {
		var buf [10]byte
		putExtended(r, buf[:])
		got := getExtended(buf[:])
		if math.Abs(got-r) > 0.5 {
			t.Errorf("extended round-trip %v -> %v", r, got)
		}
	}
}

func TestSniff(t *testing.T) {
	p := New()
	if !p.Sniff([]byte("FORM\x00\x00\x00\x00AIFF")) {
		t.Error("Sniff rejected a valid FORM/AIFF header")
	}
	if p.Sniff([]byte("RIFF\x00\x00\x00\x00WAVE")) {
		t.Error("Sniff accepted a RIFF/WAVE header")
	}
	if p.Sniff([]byte("short")) {
		t.Error("Sniff accepted a too-short buffer")
	}
}

func TestWriteThenReadHeader(t *testing.T) {
	f, err := os.CreateTemp("", "aiff-*.aiff")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	p := New()
	sf := &sfile.Descriptor{File: f, Channels: 2, SampleRate: 44100, BytesPerSample: 2}
	sf.SyncGeometry()

	const nframes = 100
	hdrSize, err := p.WriteHeader(sf, nframes)
	if err != nil {
		t.Fatal(err)
	}
	payload := make([]byte, nframes*sf.BytesPerFrame)
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
	want := geometry{Channels: 2, BytesPerSample: 2, SampleRate: 44100, BigEndian: true}
	got := geometry{Channels: read.Channels, BytesPerSample: read.BytesPerSample, SampleRate: read.SampleRate, BigEndian: read.BigEndian}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("read-back geometry mismatch (-want +got):\n%s", diff)
	}
	if read.HeaderSize != hdrSize {
		t.Errorf("HeaderSize = %d, want %d", read.HeaderSize, hdrSize)
	}
	if read.ByteLimit != int64(nframes*sf.BytesPerFrame) {
		t.Errorf("ByteLimit = %d, want %d", read.ByteLimit, nframes*sf.BytesPerFrame)
	}
}

func TestWriteHeaderRejectsFloat(t *testing.T) {
	f, err := os.CreateTemp("", "aiff-*.aiff")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	p := New()
	sf := &sfile.Descriptor{File: f, Channels: 1, SampleRate: 44100, BytesPerSample: 4}
	sf.SyncGeometry()
	if _, err := p.WriteHeader(sf, 10); err == nil {
		t.Error("WriteHeader accepted 32-bit float samples")
	}
}
