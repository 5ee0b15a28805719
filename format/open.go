/*
NAME
  open.go

DESCRIPTION
  open.go implements the shared header-detection-and-open routine of
  spec.md §4.2, used by both the synchronous reader (syncio) and the
  streaming core (stream) so the detection algorithm lives in exactly
  one place.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package format

import (
	"fmt"
	"io"
	"os"

	"github.com/aaaaalbert/pd-soundfile/format/raw"
	"github.com/aaaaalbert/pd-soundfile/sfile"
)

// RawGeometry carries the caller-supplied geometry for a headerless
// raw open (spec.md §4.3 step 2, §6's "-raw H C B {b|l|n}" flag).
type RawGeometry struct {
	HeaderSize     int
	Channels       int
	BytesPerSample int
	Endian         sfile.Endianness
}

// OpenSpec parameterizes Open.
type OpenSpec struct {
	// Path is the already-resolved filesystem path (callers run it
	// through host.PathResolver first).
	Path string
	// Forced, if non-nil, is the caller-asserted format; Open verifies
	// its Sniff accepts the file rather than probing the registry.
	Forced sfile.Plugin
	// Raw, if non-nil, bypasses detection entirely.
	Raw *RawGeometry
	// OnsetFrames is decremented from the byte limit and seeked past
	// once the header is known, per §4.2's detection algorithm.
	OnsetFrames int64
}

// Open implements spec.md §4.2's header detection algorithm: open the
// handle, sniff or trust the caller's forced format, parse the header,
// seek to the onset frame, and clamp the byte limit. On any failure it
// unwinds cleanly: the plug-in's Close runs if a format was installed,
// then the raw handle is closed.
func Open(spec OpenSpec) (sf *sfile.Descriptor, err error) {
	f, err := os.Open(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("format: opening %s: %w", spec.Path, err)
	}

	sf = &sfile.Descriptor{File: f, HeaderSize: sfile.DetectHeaderSize}
	defer func() {
		if err != nil {
			if sf.Format != nil {
				sf.CloseWith(sf.Format)
			} else {
				f.Close()
			}
		}
	}()

	if spec.Raw != nil {
		sf.Format = raw.Singleton
		sf.Channels = spec.Raw.Channels
		sf.BytesPerSample = spec.Raw.BytesPerSample
		sf.BigEndian = spec.Raw.Endian.Big()
		sf.HeaderSize = spec.Raw.HeaderSize
		if err = sf.Format.ReadHeader(sf); err != nil {
			return nil, err
		}
	} else {
		probe := Default().MaxHeaderProbe()
		buf := make([]byte, probe)
		n, readErr := io.ReadFull(f, buf)
		if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
			return nil, fmt.Errorf("format: reading header probe: %w", readErr)
		}
		buf = buf[:n]

		var p sfile.Plugin
		if spec.Forced != nil {
			if !spec.Forced.Sniff(buf) {
				return nil, fmt.Errorf("format: %s does not look like a %s file", spec.Path, spec.Forced.Name())
			}
			p = spec.Forced
		} else {
			var ok bool
			p, ok = Default().Sniff(buf)
			if !ok {
				return nil, fmt.Errorf("format: %s: unrecognized header", spec.Path)
			}
		}

		if _, err = f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		sf.Format = p
		if err = p.ReadHeader(sf); err != nil {
			return nil, err
		}
	}

	if err = sf.Format.SeekToFrame(sf, spec.OnsetFrames); err != nil {
		return nil, err
	}
	sf.ByteLimit -= spec.OnsetFrames * int64(sf.BytesPerFrame)
	if sf.ByteLimit < 0 {
		sf.ByteLimit = 0
	}
	return sf, nil
}
