/*
NAME
  writer.go

DESCRIPTION
  writer.go implements the writer command surface of spec.md §4.6: the
  `-skip`, `-nframes`, `-bytes`, `-rate` (alias `-r`), `-normalize`,
  `-big`, `-little`, `-meta`, and format-name flag grammar on top of
  syncio.Write.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package command

import (
	"fmt"
	"strconv"

	"github.com/aaaaalbert/pd-soundfile/internal/logging"
	"github.com/aaaaalbert/pd-soundfile/syncio"
)

// maxMetaGroups bounds the repeatable `-meta` flag, per §4.4 step 7.
const maxMetaGroups = 8

// Writer parses and runs a synchronous write command.
type Writer struct {
	Tables   syncio.Tables
	Resolver syncio.PathResolver
	Log      logging.Logger
}

// Run parses tokens per §4.6's writer grammar and performs the write.
func (w *Writer) Run(path string, tokens []string) (int64, syncio.Info, error) {
	opts := syncio.WriteOptions{}
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

		case tok == "-nframes":
			v, err := s.takeArg(tok)
			if err != nil {
				return 0, syncio.Info{}, err
			}
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, syncio.Info{}, fmt.Errorf("command: -nframes: %w", err)
			}
			opts.NFrames = n

		case tok == "-bytes":
			v, err := s.takeArg(tok)
			if err != nil {
				return 0, syncio.Info{}, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || (n != 2 && n != 3 && n != 4) {
				return 0, syncio.Info{}, fmt.Errorf("command: -bytes: expected 2, 3, or 4, got %q", v)
			}
			opts.BytesPerSample = n

		case tok == "-rate" || tok == "-r":
			v, err := s.takeArg(tok)
			if err != nil {
				return 0, syncio.Info{}, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return 0, syncio.Info{}, fmt.Errorf("command: -rate: %w", err)
			}
			opts.SampleRate = n

		case tok == "-normalize":
			opts.Normalize = true

		case tok == "-big":
			big := true
			opts.RequestedBig = &big

		case tok == "-little":
			little := false
			opts.RequestedBig = &little

		case tok == "-meta":
			if len(opts.Meta) >= maxMetaGroups {
				return 0, syncio.Info{}, fmt.Errorf("command: at most %d -meta groups are allowed", maxMetaGroups)
			}
			opts.Meta = append(opts.Meta, s.takeVariadic())

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

	return syncio.Write(w.Tables, w.Resolver, w.Log, path, opts)
}
