/*
NAME
  reader.go

DESCRIPTION
  reader.go implements the reader command surface of spec.md §4.6: the
  `-skip`, `-ascii`, `-raw`, `-resize`, `-maxsize`, `-meta`, and
  format-name flag grammar on top of syncio.Read.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package command

import (
	"fmt"
	"strconv"

	"github.com/aaaaalbert/pd-soundfile/format"
	"github.com/aaaaalbert/pd-soundfile/internal/logging"
	"github.com/aaaaalbert/pd-soundfile/sfile"
	"github.com/aaaaalbert/pd-soundfile/syncio"
)

// Reader parses and runs a synchronous read command.
type Reader struct {
	Tables   syncio.Tables
	Resolver syncio.PathResolver
	Log      logging.Logger
}

// Run parses tokens per §4.6's reader grammar and performs the read.
// path is the soundfile to read; tokens is everything after it:
// array names (in any order relative to the flags) followed or
// interleaved with `-skip N`, `-resize`, `-maxsize N`, `-ascii`,
// `-raw H C B endian`, `-meta` (accepted, no effect), a format-name
// flag, and `--`.
func (r *Reader) Run(path string, tokens []string) (int64, syncio.Info, error) {
	opts := syncio.ReadOptions{}
	s := newScanner(tokens)

	for !s.done() {
		tok := s.next()
		switch {
		case tok == "--":
			opts.Arrays = append(opts.Arrays, s.tokens[s.pos:]...)
			s.pos = len(s.tokens)

		case tok == "-skip":
			v, err := s.takeArg(tok)
			if err != nil {
				return 0, syncio.Info{}, err
			}
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, syncio.Info{}, fmt.Errorf("command: -skip: %w", err)
			}
			opts.Skip = n

		case tok == "-resize":
			opts.Resize = true

		case tok == "-maxsize":
			v, err := s.takeArg(tok)
			if err != nil {
				return 0, syncio.Info{}, err
			}
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, syncio.Info{}, fmt.Errorf("command: -maxsize: %w", err)
			}
			opts.MaxSize = n

		case tok == "-ascii":
			opts.ASCII = true

		case tok == "-meta":
			// Read's -meta takes no argument list, unlike write's. It is
			// accepted and has no effect: the read does not retrieve
			// metadata.

		case tok == "-raw":
			geom, err := parseRawGeometry(s)
			if err != nil {
				return 0, syncio.Info{}, err
			}
			opts.Raw = geom

		case isFlag(tok):
			p, ok := formatNameFlag(tok)
			if !ok {
				return 0, syncio.Info{}, fmt.Errorf("command: unrecognized flag %q", tok)
			}
			opts.Forced = p

		default:
			opts.Arrays = append(opts.Arrays, tok)
		}
	}

	return syncio.Read(r.Tables, r.Resolver, r.Log, path, opts)
}

// parseRawGeometry parses the `-raw headersize channels bytes endian`
// argument group, where endian is one of 'b', 'l', 'n'.
func parseRawGeometry(s *scanner) (*format.RawGeometry, error) {
	hs, err := s.takeArg("-raw headersize")
	if err != nil {
		return nil, err
	}
	headerSize, err := strconv.Atoi(hs)
	if err != nil {
		return nil, fmt.Errorf("command: -raw headersize: %w", err)
	}

	ch, err := s.takeArg("-raw channels")
	if err != nil {
		return nil, err
	}
	channels, err := strconv.Atoi(ch)
	if err != nil {
		return nil, fmt.Errorf("command: -raw channels: %w", err)
	}

	bs, err := s.takeArg("-raw bytes")
	if err != nil {
		return nil, err
	}
	bytesPerSample, err := strconv.Atoi(bs)
	if err != nil {
		return nil, fmt.Errorf("command: -raw bytes: %w", err)
	}

	ed, err := s.takeArg("-raw endian")
	if err != nil {
		return nil, err
	}
	var endian sfile.Endianness
	switch ed {
	case "b":
		endian = sfile.EndianBig
	case "l":
		endian = sfile.EndianLittle
	case "n":
		endian = sfile.EndianNative
	default:
		return nil, fmt.Errorf("command: -raw endian: expected b, l, or n, got %q", ed)
	}

	return &format.RawGeometry{
		HeaderSize:     headerSize,
		Channels:       channels,
		BytesPerSample: bytesPerSample,
		Endian:         endian,
	}, nil
}
