/*
NAME
  builtins.go

DESCRIPTION
  builtins.go seeds the process-wide default registry with the four
  sniffable built-in format plug-ins, in the order spec.md §4.2 lists
  them: wave, aiff, caf, next. Registration order is sniff priority and
  default-format preference (§3), so this order matters and is not
  incidental.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package format

import (
	"fmt"

	"github.com/aaaaalbert/pd-soundfile/format/aiff"
	"github.com/aaaaalbert/pd-soundfile/format/caf"
	"github.com/aaaaalbert/pd-soundfile/format/next"
	"github.com/aaaaalbert/pd-soundfile/format/wave"
)

func init() {
	if err := defaultRegistry.Register(wave.New()); err != nil {
		panic(fmt.Sprintf("format: registering wave: %v", err))
	}
	if err := defaultRegistry.Register(aiff.New()); err != nil {
		panic(fmt.Sprintf("format: registering aiff: %v", err))
	}
	if err := defaultRegistry.Register(caf.New()); err != nil {
		panic(fmt.Sprintf("format: registering caf: %v", err))
	}
	if err := defaultRegistry.Register(next.New()); err != nil {
		panic(fmt.Sprintf("format: registering next: %v", err))
	}
}
