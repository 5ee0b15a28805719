/*
NAME
  raw_test.go

DESCRIPTION
  raw_test.go tests the raw plug-in's trust-the-caller geometry
  handling, including the §8 scenario 2 raw-read layout.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package raw

import (
	"encoding/binary"
	"math"
	"os"
	"testing"

	"github.com/aaaaalbert/pd-soundfile/sfile"
)

func TestNeverSniffsOrMatchesExtension(t *testing.T) {
	if Singleton.Sniff([]byte("anything at all, does not matter")) {
		t.Error("raw.Sniff must always reject")
	}
	if Singleton.HasExtension("song.raw") {
		t.Error("raw.HasExtension must always reject")
	}
}

func TestReadHeaderTrustsCallerGeometry(t *testing.T) {
	f, err := os.CreateTemp("", "raw-*.bin")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	const nframes = 128
	buf := make([]byte, nframes*4)
	for i := 0; i < nframes; i++ {
		v := float32(i) / 128
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	if _, err := f.Write(buf); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatal(err)
	}

	sf := &sfile.Descriptor{
		File:           f,
		Channels:       1,
		BytesPerSample: 4,
		BigEndian:      false,
		HeaderSize:     0,
	}
	if err := Singleton.ReadHeader(sf); err != nil {
		t.Fatal(err)
	}
	if sf.ByteLimit != int64(len(buf)) {
		t.Errorf("ByteLimit = %d, want %d", sf.ByteLimit, len(buf))
	}

	got := make([]byte, len(buf))
	if _, err := Singleton.ReadSamples(sf, got); err != nil {
		t.Fatal(err)
	}
	for i := range buf {
		if got[i] != buf[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, got[i], buf[i])
		}
	}
}

func TestWriteHeaderIsNoop(t *testing.T) {
	f, err := os.CreateTemp("", "raw-*.bin")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	sf := &sfile.Descriptor{File: f, HeaderSize: 0}
	n, err := Singleton.WriteHeader(sf, 10)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("WriteHeader wrote %d header bytes, want 0", n)
	}
	fi, err := f.Stat()
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != 0 {
		t.Errorf("raw WriteHeader must not write any bytes, file size = %d", fi.Size())
	}
}
