/*
NAME
  raw.go

DESCRIPTION
  raw.go implements the headerless raw passthrough plug-in of spec.md
  §3: "a separate singleton 'raw' plug-in exists outside the registry".
  Unlike the other built-ins, raw never sniffs itself onto a file and
  trusts geometry the caller has already placed on the Descriptor
  (headersize, channels, bytespersample, endianness) before ReadHeader
  or WriteHeader is called.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

// Package raw implements the headerless raw soundfile passthrough.
// It is not registered in format.Default(); callers select it
// explicitly, matching the command surface's "-raw headersize channels
// bytespersample endian" flag.
package raw

import (
	"io"

	"github.com/aaaaalbert/pd-soundfile/sfile"
)

// Plugin implements sfile.Plugin for headerless raw sample data.
type Plugin struct{}

// Singleton is the one raw plug-in instance, constructed once and
// shared by every caller that selects raw explicitly.
var Singleton = &Plugin{}

func (p *Plugin) Name() string      { return "raw" }
func (p *Plugin) MinHeaderSize() int { return 0 }

// Sniff always rejects: raw is never auto-detected.
func (p *Plugin) Sniff(buf []byte) bool { return false }

// HasExtension always rejects: raw is selected explicitly, never by
// filename.
func (p *Plugin) HasExtension(name string) bool { return false }

// AddExtension is a no-op: raw participates in no extension-based
// dispatch.
func (p *Plugin) AddExtension(name string) {}

// EndiannessPolicy never overrides the caller's choice; raw has no
// format-imposed byte order.
func (p *Plugin) EndiannessPolicy(requested sfile.Endianness) (sfile.Endianness, bool) {
	return requested, false
}

// ReadHeader trusts the geometry the caller already placed on sf
// (Channels, BytesPerSample, BigEndian, HeaderSize) and only seeks
// past HeaderSize bytes and derives ByteLimit from the remaining file
// size.
func (p *Plugin) ReadHeader(sf *sfile.Descriptor) error {
	if _, err := sf.File.Seek(int64(sf.HeaderSize), io.SeekStart); err != nil {
		return err
	}
	sf.SyncGeometry()
	if err := sf.Validate(); err != nil {
		return err
	}
	fi, err := sf.File.Stat()
	if err != nil {
		return err
	}
	sf.ByteLimit = fi.Size() - int64(sf.HeaderSize)
	return nil
}

// WriteHeader writes nothing: raw has no header to emit.
func (p *Plugin) WriteHeader(sf *sfile.Descriptor, nframes int64) (int, error) {
	return sf.HeaderSize, nil
}

// UpdateHeader is a no-op: there is no length field to patch.
func (p *Plugin) UpdateHeader(sf *sfile.Descriptor, framesWritten int64) error {
	return nil
}

func (p *Plugin) SeekToFrame(sf *sfile.Descriptor, frame int64) error {
	return sfile.DefaultSeekToFrame(sf, frame)
}

func (p *Plugin) ReadSamples(sf *sfile.Descriptor, buf []byte) (int, error) {
	return sfile.DefaultReadSamples(sf, buf)
}

func (p *Plugin) WriteSamples(sf *sfile.Descriptor, buf []byte) (int, error) {
	return sfile.DefaultWriteSamples(sf, buf)
}

func (p *Plugin) ReadMetadata(sf *sfile.Descriptor, sink sfile.MetadataSink) error {
	return sfile.ErrMetadataUnsupported
}

func (p *Plugin) WriteMetadata(sf *sfile.Descriptor, args []string) error {
	return sfile.ErrMetadataUnsupported
}

func (p *Plugin) Close(sf *sfile.Descriptor) error {
	return sfile.DefaultClose(sf)
}

var _ sfile.Plugin = (*Plugin)(nil)
