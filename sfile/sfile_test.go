/*
NAME
  sfile_test.go

DESCRIPTION
  sfile_test.go tests the Descriptor's geometry bookkeeping and
  validation invariants.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package sfile

import (
	"os"
	"testing"
)

func TestSyncGeometry(t *testing.T) {
	sf := &Descriptor{Channels: 3, BytesPerSample: 2}
	sf.SyncGeometry()
	if sf.BytesPerFrame != 6 {
		t.Errorf("BytesPerFrame = %d, want 6", sf.BytesPerFrame)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		sf      Descriptor
		wantErr bool
	}{
		{"ok", Descriptor{Channels: 2, BytesPerSample: 2, BytesPerFrame: 4}, false},
		{"bad bytes per sample", Descriptor{Channels: 2, BytesPerSample: 1, BytesPerFrame: 2}, true},
		{"zero channels", Descriptor{Channels: 0, BytesPerSample: 2, BytesPerFrame: 0}, true},
		{"too many channels", Descriptor{Channels: MaxChannels + 1, BytesPerSample: 2, BytesPerFrame: (MaxChannels + 1) * 2}, true},
		{"frame size out of sync", Descriptor{Channels: 2, BytesPerSample: 2, BytesPerFrame: 999}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.sf.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpenAndCloseWith(t *testing.T) {
	f, err := os.CreateTemp("", "sfile-*.bin")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())

	sf := &Descriptor{File: f}
	if !sf.Open() {
		t.Fatal("Open() = false for a descriptor holding a file handle")
	}

	closed := fakePlugin{}
	if err := sf.CloseWith(&closed); err != nil {
		t.Fatal(err)
	}
	if sf.Open() {
		t.Error("Open() = true after CloseWith")
	}
	if sf.State != nil {
		t.Error("State not cleared after CloseWith")
	}
	if !closed.called {
		t.Error("plug-in Close was not invoked")
	}

	// Closing an already-closed descriptor is a no-op.
	if err := sf.CloseWith(&closed); err != nil {
		t.Errorf("second CloseWith returned %v, want nil", err)
	}
}

func TestEndiannessLetter(t *testing.T) {
	tests := []struct {
		e    Endianness
		want byte
	}{
		{EndianBig, 'b'},
		{EndianLittle, 'l'},
		{EndianNative, 'n'},
		{EndianUnspecified, 'n'},
	}
	for _, tt := range tests {
		if got := tt.e.Letter(); got != tt.want {
			t.Errorf("Endianness(%d).Letter() = %c, want %c", tt.e, got, tt.want)
		}
	}
}

// fakePlugin is a minimal Plugin used only to observe that Close is
// invoked by CloseWith; its other methods are never exercised here.
type fakePlugin struct {
	called bool
}

func (f *fakePlugin) Name() string                                          { return "fake" }
func (f *fakePlugin) MinHeaderSize() int                                    { return 0 }
func (f *fakePlugin) Sniff(buf []byte) bool                                 { return false }
func (f *fakePlugin) ReadHeader(sf *Descriptor) error                       { return nil }
func (f *fakePlugin) WriteHeader(sf *Descriptor, nframes int64) (int, error) { return 0, nil }
func (f *fakePlugin) UpdateHeader(sf *Descriptor, framesWritten int64) error { return nil }
func (f *fakePlugin) SeekToFrame(sf *Descriptor, frame int64) error         { return nil }
func (f *fakePlugin) ReadSamples(sf *Descriptor, buf []byte) (int, error)   { return 0, nil }
func (f *fakePlugin) WriteSamples(sf *Descriptor, buf []byte) (int, error)  { return 0, nil }
func (f *fakePlugin) HasExtension(name string) bool                        { return false }
func (f *fakePlugin) AddExtension(name string)                             {}
func (f *fakePlugin) EndiannessPolicy(requested Endianness) (Endianness, bool) {
	return requested, false
}
func (f *fakePlugin) ReadMetadata(sf *Descriptor, sink MetadataSink) error { return nil }
func (f *fakePlugin) WriteMetadata(sf *Descriptor, args []string) error   { return nil }
func (f *fakePlugin) Close(sf *Descriptor) error {
	f.called = true
	return sf.File.Close()
}
