/*
NAME
  create_test.go

DESCRIPTION
  create_test.go tests Create's extension completion and header
  writing.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package format

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateCompletesExtension(t *testing.T) {
	dir := t.TempDir()
	wavePlugin, _ := Default().ByName("wave")

	sf, err := Create(CreateSpec{
		Path:           filepath.Join(dir, "song"), // no extension
		Plugin:         wavePlugin,
		Channels:       1,
		SampleRate:     44100,
		BytesPerSample: 2,
		NFrames:        0,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sf.CloseWith(sf.Format)

	if _, err := os.Stat(filepath.Join(dir, "song.wav")); err != nil {
		t.Errorf("expected song.wav to exist: %v", err)
	}
}

func TestCreateKeepsExplicitExtension(t *testing.T) {
	dir := t.TempDir()
	wavePlugin, _ := Default().ByName("wave")

	sf, err := Create(CreateSpec{
		Path:           filepath.Join(dir, "song.wav"),
		Plugin:         wavePlugin,
		Channels:       2,
		SampleRate:     48000,
		BytesPerSample: 3,
		NFrames:        100,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer sf.CloseWith(sf.Format)

	if sf.HeaderSize <= 0 {
		t.Errorf("HeaderSize = %d, want > 0", sf.HeaderSize)
	}
}
