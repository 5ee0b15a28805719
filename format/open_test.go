/*
NAME
  open_test.go

DESCRIPTION
  open_test.go tests the shared detection-open routine, including the
  §8 scenario 2 raw-read path.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package format

import (
	"encoding/binary"
	"math"
	"os"
	"testing"

	"github.com/aaaaalbert/pd-soundfile/sfile"
)

func TestOpenDetectsWave(t *testing.T) {
	path, cleanup := writeTempWave(t, 2, 44100, 2, 10)
	defer cleanup()

	sf, err := Open(OpenSpec{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	defer sf.CloseWith(sf.Format)
	if sf.Format.Name() != "wave" {
		t.Errorf("detected format = %q, want wave", sf.Format.Name())
	}
	if sf.Channels != 2 || sf.BytesPerSample != 2 {
		t.Errorf("geometry = %+v", sf)
	}
}

// TestOpenRawScenario2 mirrors §8 scenario 2: a raw read of 128
// little-endian float32 samples equal to 0, 1/128, ..., 127/128.
func TestOpenRawScenario2(t *testing.T) {
	f, err := os.CreateTemp("", "raw-*.bin")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	path := f.Name()

	buf := make([]byte, 128*4)
	for i := 0; i < 128; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(float32(i)/128))
	}
	if _, err := f.Write(buf); err != nil {
		t.Fatal(err)
	}
	f.Close()

	sf, err := Open(OpenSpec{
		Path: path,
		Raw: &RawGeometry{
			HeaderSize:     0,
			Channels:       1,
			BytesPerSample: 4,
			Endian:         sfile.EndianLittle,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sf.CloseWith(sf.Format)

	if sf.ByteLimit != int64(len(buf)) {
		t.Errorf("ByteLimit = %d, want %d", sf.ByteLimit, len(buf))
	}
	got := make([]byte, len(buf))
	if _, err := sf.Format.ReadSamples(sf, got); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 128; i++ {
		v := math.Float32frombits(binary.LittleEndian.Uint32(got[i*4 : i*4+4]))
		want := float32(i) / 128
		if v != want {
			t.Fatalf("sample %d = %v, want %v", i, v, want)
		}
	}
}

func TestOpenRejectsForcedFormatMismatch(t *testing.T) {
	path, cleanup := writeTempWave(t, 1, 44100, 2, 4)
	defer cleanup()

	next, _ := Default().ByName("next")

	if _, err := Open(OpenSpec{Path: path, Forced: next}); err == nil {
		t.Error("Open with a mismatched forced format should fail")
	}
}

func writeTempWave(t *testing.T, channels, sampleRate, bytesPerSample int, nframes int64) (string, func()) {
	t.Helper()
	f, err := os.CreateTemp("", "open-*.wav")
	if err != nil {
		t.Fatal(err)
	}
	path := f.Name()

	wavePlugin, _ := Default().ByName("wave")
	sf := &sfile.Descriptor{File: f, Channels: channels, SampleRate: sampleRate, BytesPerSample: bytesPerSample}
	sf.SyncGeometry()
	if _, err := wavePlugin.WriteHeader(sf, nframes); err != nil {
		t.Fatal(err)
	}
	payload := make([]byte, nframes*int64(sf.BytesPerFrame))
	if _, err := f.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := wavePlugin.UpdateHeader(sf, nframes); err != nil {
		t.Fatal(err)
	}
	f.Close()
	return path, func() { os.Remove(path) }
}
