/*
NAME
  parse.go

DESCRIPTION
  parse.go implements the shared left-to-right flag scanner of spec.md
  §4.6: a flat token list where unknown "-"-prefixed tokens are looked
  up in the format registry as format-name flags, "--" terminates flag
  parsing, and metadata flags are variadic (collecting tokens until the
  next "-"-prefixed one).

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

// Package command implements the flag-driven surface spec.md §4.6
// describes: Reader and Writer parse a flat token list into
// syncio.ReadOptions/syncio.WriteOptions, List enumerates the format
// registry, and Stream wraps a stream.Playback/stream.Capture with the
// open/start/stop/print/meta verbs and the scalar start/stop control.
package command

import (
	"fmt"

	"github.com/aaaaalbert/pd-soundfile/format"
	"github.com/aaaaalbert/pd-soundfile/sfile"
)

// nextstepAlias is the one named alias §4.6 calls out explicitly: a
// format-name flag that resolves to the NeXT/Sun plug-in's registered
// name, for callers who know the format by its historical name.
const nextstepAlias = "-nextstep"

// scanner walks a flat token list left to right, per §4.6.
type scanner struct {
	tokens []string
	pos    int
}

func newScanner(tokens []string) *scanner { return &scanner{tokens: tokens} }

func (s *scanner) done() bool { return s.pos >= len(s.tokens) }

func (s *scanner) peek() string { return s.tokens[s.pos] }

func (s *scanner) next() string {
	t := s.tokens[s.pos]
	s.pos++
	return t
}

// takeArg returns the next token as a required flag argument, erroring
// if the flag list ran out.
func (s *scanner) takeArg(flag string) (string, error) {
	if s.done() {
		return "", fmt.Errorf("command: %s requires an argument", flag)
	}
	return s.next(), nil
}

// takeVariadic collects tokens until the next "-"-prefixed token or end
// of input, per §4.6's "a metadata flag is variadic" rule.
func (s *scanner) takeVariadic() []string {
	var out []string
	for !s.done() && !isFlag(s.peek()) {
		out = append(out, s.next())
	}
	return out
}

func isFlag(tok string) bool {
	return len(tok) > 1 && tok[0] == '-'
}

// endianFromChar parses the single-character endian token shared by
// `-raw` and the streaming open's positional endian argument: one of
// 'b', 'l', 'n'.
func endianFromChar(tok string) (sfile.Endianness, error) {
	switch tok {
	case "b":
		return sfile.EndianBig, nil
	case "l":
		return sfile.EndianLittle, nil
	case "n":
		return sfile.EndianNative, nil
	default:
		return 0, fmt.Errorf("command: endian: expected b, l, or n, got %q", tok)
	}
}

// formatNameFlag looks tok up as a format-name flag: either the
// -nextstep alias, or a "-"+registered-name token (e.g. "-wave").
func formatNameFlag(tok string) (sfile.Plugin, bool) {
	if tok == nextstepAlias {
		p, ok := format.Default().ByName("next")
		return p, ok
	}
	if !isFlag(tok) {
		return nil, false
	}
	return format.Default().ByName(tok[1:])
}
