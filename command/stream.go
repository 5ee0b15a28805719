/*
NAME
  stream.go

DESCRIPTION
  stream.go wraps a stream.Playback or stream.Capture with the
  `open`/`start`/`stop`/`print`/`meta` control verbs of §4.5, plus the
  scalar control where a nonzero value starts and a zero value stops.
  Playback's `open` is positional (§4.6's streaming grammar); capture's
  `open` reuses write's flag grammar minus the options that don't apply
  to a streaming recording.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package command

import (
	"fmt"
	"strconv"

	"github.com/aaaaalbert/pd-soundfile/format"
	"github.com/aaaaalbert/pd-soundfile/host"
	"github.com/aaaaalbert/pd-soundfile/sfile"
	"github.com/aaaaalbert/pd-soundfile/stream"
)

// Stream wraps exactly one of a *stream.Playback or a *stream.Capture,
// translating the open/start/stop/print/meta command verbs into calls
// on whichever is present.
type Stream struct {
	Resolver host.PathResolver
	// Channels is the DSP-side channel count (how many inlets/outlets
	// this object was instantiated with), needed to build a capture's
	// CreateSpec since a recording's channel count is not otherwise
	// discoverable from its open arguments.
	Channels int

	playback *stream.Playback
	capture  *stream.Capture
}

// NewPlaybackStream wraps a playback engine.
func NewPlaybackStream(p *stream.Playback, resolver host.PathResolver) *Stream {
	return &Stream{playback: p, Resolver: resolver}
}

// NewCaptureStream wraps a capture engine.
func NewCaptureStream(c *stream.Capture, resolver host.PathResolver, channels int) *Stream {
	return &Stream{capture: c, Resolver: resolver, Channels: channels}
}

// Open installs a new file to stream. Playback's grammar is positional
// (§4.6: `filename [onset] [headersize] [channels] [bytespersample]
// [endian]`); capture's is write's flag grammar, with normalize, onset,
// and nframes accepted but ignored since none apply to an
// as-yet-unbounded recording.
func (s *Stream) Open(tokens []string) error {
	switch {
	case s.playback != nil:
		return s.openPlayback(tokens)
	case s.capture != nil:
		return s.openCapture(tokens)
	default:
		return fmt.Errorf("command: stream has neither a playback nor a capture engine")
	}
}

// openPlayback parses the positional streaming-open grammar and
// resolves the headersize's dual-convention boundary encoding: 0 means
// detect, a positive value is a raw header of that many bytes, and −1
// is truly headerless raw (stored internally as a zero-byte raw
// header, per §9's two-variant Detect/Raw split).
func (s *Stream) openPlayback(tokens []string) error {
	if len(tokens) == 0 {
		return fmt.Errorf("command: open requires a filename")
	}
	path := tokens[0]
	rest := tokens[1:]

	onset := int64(0)
	if len(rest) > 0 {
		n, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return fmt.Errorf("command: open: onset: %w", err)
		}
		onset = n
	}

	var raw *format.RawGeometry
	if len(rest) > 1 {
		hs, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("command: open: headersize: %w", err)
		}
		switch {
		case hs == 0:
			raw = nil
		case hs > 0:
			raw = &format.RawGeometry{HeaderSize: hs}
		default:
			// hs < 0: the surface's "truly headerless" encoding.
			raw = &format.RawGeometry{HeaderSize: 0}
		}
	}

	if raw != nil {
		if len(rest) > 2 {
			n, err := strconv.Atoi(rest[2])
			if err != nil {
				return fmt.Errorf("command: open: channels: %w", err)
			}
			raw.Channels = n
		}
		if len(rest) > 3 {
			n, err := strconv.Atoi(rest[3])
			if err != nil {
				return fmt.Errorf("command: open: bytespersample: %w", err)
			}
			raw.BytesPerSample = n
		}
		if len(rest) > 4 {
			e, err := endianFromChar(rest[4])
			if err != nil {
				return err
			}
			raw.Endian = e
		}
		if raw.Channels == 0 || raw.BytesPerSample == 0 {
			return fmt.Errorf("command: open: a nonzero headersize requires channels and bytespersample")
		}
	}

	resolved, err := s.resolve(path)
	if err != nil {
		return err
	}

	s.playback.Open(format.OpenSpec{Path: resolved, Raw: raw, OnsetFrames: onset})
	return nil
}

// openCapture parses write's flag grammar: -bytes, -rate (alias -r),
// -big, -little, a format-name flag, and a trailing filename. -skip N,
// -nframes N, and -normalize are accepted and ignored.
func (s *Stream) openCapture(tokens []string) error {
	sc := newScanner(tokens)

	var path string
	bytesPerSample := 2
	sampleRate := 44100
	bigEndian := false
	var forced sfile.Plugin

	for !sc.done() {
		tok := sc.next()
		switch {
		case tok == "-bytes":
			v, err := sc.takeArg(tok)
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(v)
			if err != nil || (n != 2 && n != 3 && n != 4) {
				return fmt.Errorf("command: -bytes: expected 2, 3, or 4, got %q", v)
			}
			bytesPerSample = n

		case tok == "-rate" || tok == "-r":
			v, err := sc.takeArg(tok)
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("command: -rate: %w", err)
			}
			sampleRate = n

		case tok == "-big":
			bigEndian = true

		case tok == "-little":
			bigEndian = false

		case tok == "-skip" || tok == "-nframes":
			if _, err := sc.takeArg(tok); err != nil {
				return err
			}

		case tok == "-normalize":

		case isFlag(tok):
			p, ok := formatNameFlag(tok)
			if !ok {
				return fmt.Errorf("command: unrecognized flag %q", tok)
			}
			forced = p

		default:
			path = tok
		}
	}
	if path == "" {
		return fmt.Errorf("command: open requires a filename")
	}

	resolved, err := s.resolve(path)
	if err != nil {
		return err
	}

	plugin := forced
	if plugin == nil {
		var ok bool
		plugin, ok = format.Default().ByExtension(resolved)
		if !ok {
			plugin, ok = format.Default().Default()
			if !ok {
				return fmt.Errorf("command: no registered formats")
			}
		}
	}
	s.capture.Open(format.CreateSpec{
		Path:           resolved,
		Plugin:         plugin,
		Channels:       s.Channels,
		SampleRate:     sampleRate,
		BytesPerSample: bytesPerSample,
		BigEndian:      bigEndian,
		NFrames:        sfile.StreamingMaxFrames,
	})
	return nil
}

func (s *Stream) resolve(path string) (string, error) {
	if s.Resolver == nil {
		return path, nil
	}
	resolved, err := s.Resolver.Resolve(path)
	if err != nil {
		return "", fmt.Errorf("command: resolving %q: %w", path, err)
	}
	return resolved, nil
}

// Start transitions a just-opened stream to Stream state.
func (s *Stream) Start() error {
	if s.playback != nil {
		return s.playback.Start()
	}
	return s.capture.Start()
}

// Stop requests the current job be closed.
func (s *Stream) Stop() {
	if s.playback != nil {
		s.playback.Stop()
		return
	}
	s.capture.Stop()
}

// Control implements the scalar control of spec.md §4.5: a nonzero
// value starts the stream, a zero value stops it.
func (s *Stream) Control(v float64) error {
	if v != 0 {
		return s.Start()
	}
	s.Stop()
	return nil
}

// Meta writes one metadata group to a capture's file, valid only
// between open and start. Playback has no write-side metadata verb.
func (s *Stream) Meta(args []string) error {
	if s.capture == nil {
		return fmt.Errorf("command: meta is only valid on a capture stream")
	}
	return s.capture.WriteMetadata(args)
}

// Print returns a diagnostic snapshot of the engine's state.
func (s *Stream) Print() string {
	if s.playback != nil {
		return s.playback.Print()
	}
	return s.capture.Print()
}

// Close destroys the wrapped engine's worker goroutine.
func (s *Stream) Close() {
	if s.playback != nil {
		s.playback.Close()
		return
	}
	s.capture.Close()
}
