/*
NAME
  next_test.go

DESCRIPTION
  next_test.go tests the NeXT/Sun plug-in's sniffing and header
  round-trip.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package next

import (
	"os"
	"testing"

	"github.com/aaaaalbert/pd-soundfile/sfile"
)

func TestSniff(t *testing.T) {
	p := New()
	if !p.Sniff([]byte(".snd\x00\x00\x00\x18")) {
		t.Error("Sniff rejected a valid .snd header")
	}
	if p.Sniff([]byte("caff\x00\x01")) {
		t.Error("Sniff accepted a caff header")
	}
}

func TestWriteThenReadHeader(t *testing.T) {
	f, err := os.CreateTemp("", "next-*.au")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	p := New()
	sf := &sfile.Descriptor{File: f, Channels: 1, SampleRate: 8000, BytesPerSample: 2}
	sf.SyncGeometry()

	const nframes = 200
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
	if read.Channels != 1 || read.BytesPerSample != 2 || read.SampleRate != 8000 {
		t.Errorf("read back geometry = %+v, want channels=1 bytesPerSample=2 sampleRate=8000", read)
	}
	if read.HeaderSize != hdrSize {
		t.Errorf("HeaderSize = %d, want %d", read.HeaderSize, hdrSize)
	}
	if read.ByteLimit != int64(nframes*sf.BytesPerFrame) {
		t.Errorf("ByteLimit = %d, want %d", read.ByteLimit, nframes*sf.BytesPerFrame)
	}
}
