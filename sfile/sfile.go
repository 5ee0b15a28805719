/*
NAME
  sfile.go

DESCRIPTION
  sfile.go implements the soundfile descriptor of spec.md §3: the
  per-file context shared by the synchronous and streaming engines, and
  the format plug-in contract of §4.2 that every container format
  implements.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

// Package sfile defines the soundfile descriptor and the format
// plug-in interface it is built around. It has no knowledge of any
// particular container format; format/wave, format/aiff, format/caf,
// format/next, and format/raw each implement Plugin.
package sfile

import (
	"fmt"
	"io"
	"os"
)

// DetectHeaderSize is the Descriptor.HeaderSize sentinel meaning
// "detect from the header", per spec.md §3.
const DetectHeaderSize = -1

// MaxChannels is the upper bound on Descriptor.Channels (§3).
const MaxChannels = 64

// Endianness is a format's or caller's choice of byte order.
type Endianness int

const (
	// EndianUnspecified means the caller expressed no preference.
	EndianUnspecified Endianness = iota
	EndianBig
	EndianLittle
	// EndianNative resolves to the host's native byte order (always
	// little-endian for every platform this module targets).
	EndianNative
)

// Big reports whether e denotes big-endian, resolving EndianNative.
func (e Endianness) Big() bool {
	return e == EndianBig
}

// Letter returns the single-character endianness code used in the
// synchronous engine's info tuple (§4.3 step 9): 'b', 'l', or 'n'.
func (e Endianness) Letter() byte {
	switch e {
	case EndianBig:
		return 'b'
	case EndianLittle:
		return 'l'
	default:
		return 'n'
	}
}

// MetadataSink receives format-specific metadata chunks surfaced by a
// plug-in's ReadMetadata.
type MetadataSink interface {
	Chunk(id string, data []byte) error
}

// StreamingMaxFrames is passed to Plugin.WriteHeader to mean "the
// eventual frame count is not yet known; write a header sized for the
// maximum the container supports", per spec.md §4.2.
const StreamingMaxFrames int64 = -1

// Plugin is the per-format vtable of spec.md §4.2. An implementation
// is immutable once registered; all mutation happens through the
// Descriptor passed to each method.
type Plugin interface {
	// Name returns the format's printable name (e.g. "wave").
	Name() string

	// MinHeaderSize is the minimum number of bytes this format needs in
	// order for Sniff to make a determination.
	MinHeaderSize() int

	// Sniff reports whether buf plausibly begins a file of this format.
	Sniff(buf []byte) bool

	// ReadHeader parses the header of sf.File, which is positioned at
	// byte 0, and populates sf's geometry fields and ByteLimit.
	ReadHeader(sf *Descriptor) error

	// WriteHeader emits a header for a file declared to hold nframes
	// frames (StreamingMaxFrames for "maximum, unknown yet") and
	// returns the header size written.
	WriteHeader(sf *Descriptor, nframes int64) (headerSize int, err error)

	// UpdateHeader patches length fields to reflect framesWritten. It
	// must be idempotent and safe to call even when no patch is
	// necessary, and is called unconditionally when a file opened for
	// writing is closed.
	UpdateHeader(sf *Descriptor, framesWritten int64) error

	// SeekToFrame seeks sf.File to headerSize + frame*bytesPerFrame.
	SeekToFrame(sf *Descriptor, frame int64) error

	// ReadSamples and WriteSamples perform byte-granular I/O against
	// sf.File. Most formats use DefaultReadSamples/DefaultWriteSamples.
	ReadSamples(sf *Descriptor, buf []byte) (int, error)
	WriteSamples(sf *Descriptor, buf []byte) (int, error)

	// HasExtension and AddExtension support filename-based format
	// deduction and completion.
	HasExtension(name string) bool
	AddExtension(name string)

	// EndiannessPolicy maps a user's requested endianness to the one
	// this format will actually use, reporting whether the request was
	// overridden.
	EndiannessPolicy(requested Endianness) (actual Endianness, overridden bool)

	// ReadMetadata and WriteMetadata surface format-specific chunks.
	// Formats without metadata support return ErrMetadataUnsupported.
	ReadMetadata(sf *Descriptor, sink MetadataSink) error
	WriteMetadata(sf *Descriptor, args []string) error

	// Close releases any per-format state installed on sf and closes
	// sf.File. Ownership of sf.State transfers to Close.
	Close(sf *Descriptor) error
}

// Descriptor is the per-file context described by spec.md §3.
type Descriptor struct {
	// File is the open OS file handle, or nil if closed.
	File *os.File

	// Format is the plug-in resolved for this file, or nil before open.
	Format Plugin

	// SampleRate is informational only; never used for timing (§3).
	SampleRate int

	// Channels is in [1, MaxChannels].
	Channels int

	// BytesPerSample is 2, 3, or 4.
	BytesPerSample int

	// BigEndian records the byte order samples are stored in.
	BigEndian bool

	// HeaderSize is the header length in bytes once known, or
	// DetectHeaderSize before detection has run.
	HeaderSize int

	// BytesPerFrame is Channels*BytesPerSample, kept in sync by
	// SyncGeometry.
	BytesPerFrame int

	// ByteLimit is the remaining payload bytes this descriptor will
	// still emit or consume before signalling EOF.
	ByteLimit int64

	// State is the opaque per-format state a plug-in may install while
	// the file is open. Ownership transfers to Plugin.Close.
	State interface{}
}

// SyncGeometry recomputes BytesPerFrame from Channels and
// BytesPerSample. Plug-ins must call this after changing either field.
func (sf *Descriptor) SyncGeometry() {
	sf.BytesPerFrame = sf.Channels * sf.BytesPerSample
}

// Open returns whether the descriptor currently owns an open handle.
func (sf *Descriptor) Open() bool {
	return sf.File != nil
}

// Validate checks the invariants of §3 and §8: bytesPerFrame ==
// channels*bytesPerSample, bytesPerSample in {2,3,4}, channels in
// [1, MaxChannels].
func (sf *Descriptor) Validate() error {
	switch sf.BytesPerSample {
	case 2, 3, 4:
	default:
		return fmt.Errorf("sfile: invalid bytes per sample: %d", sf.BytesPerSample)
	}
	if sf.Channels < 1 || sf.Channels > MaxChannels {
		return fmt.Errorf("sfile: invalid channel count: %d", sf.Channels)
	}
	if sf.BytesPerFrame != sf.Channels*sf.BytesPerSample {
		return fmt.Errorf("sfile: bytes per frame out of sync: have %d, want %d", sf.BytesPerFrame, sf.Channels*sf.BytesPerSample)
	}
	return nil
}

// DefaultReadSamples performs a raw read against sf.File, the default
// ReadSamples implementation shared by every built-in plug-in.
func DefaultReadSamples(sf *Descriptor, buf []byte) (int, error) {
	return sf.File.Read(buf)
}

// DefaultWriteSamples performs a raw write against sf.File, the default
// WriteSamples implementation shared by every built-in plug-in.
func DefaultWriteSamples(sf *Descriptor, buf []byte) (int, error) {
	return sf.File.Write(buf)
}

// DefaultSeekToFrame implements §4.2's SeekToFrame contract: an
// absolute seek to headerSize + frame*bytesPerFrame. Every built-in
// plug-in's SeekToFrame forwards to this; it is format-independent.
func DefaultSeekToFrame(sf *Descriptor, frame int64) error {
	off := int64(sf.HeaderSize) + frame*int64(sf.BytesPerFrame)
	_, err := sf.File.Seek(off, io.SeekStart)
	return err
}

// DefaultClose closes sf.File with no per-format cleanup, for plug-ins
// that keep no additional state.
func DefaultClose(sf *Descriptor) error {
	return sf.File.Close()
}

// ErrMetadataUnsupported is returned by plug-ins whose container format
// has no metadata facility.
var ErrMetadataUnsupported = fmt.Errorf("sfile: metadata not supported by this format")

// CloseWith calls p's Close (which owns sf.State and is
// responsible for closing sf.File), then zeroes the handle, matching
// the teacher's "null the per-format state pointer after calling the
// plug-in's close" aliasing discipline (§9 design note) so a
// subsequent Open cannot double-free or reuse stale state.
func (sf *Descriptor) CloseWith(p Plugin) error {
	if sf.File == nil {
		return nil
	}
	err := p.Close(sf)
	sf.File = nil
	sf.State = nil
	return err
}
