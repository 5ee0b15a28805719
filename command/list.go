/*
NAME
  list.go

DESCRIPTION
  list.go implements the "list" command of §6: enumerate the registered
  formats.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package command

import "github.com/aaaaalbert/pd-soundfile/format"

// List returns the registered formats' names, in registration order
// (which doubles as sniff priority and default-format preference).
func List() []string {
	return format.Default().Names()
}
