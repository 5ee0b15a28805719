/*
NAME
  create.go

DESCRIPTION
  create.go implements the file-creation half of spec.md §4.4 step 6:
  complete the filename with the chosen format's extension if missing,
  open with truncate, and emit the format's header.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package format

import (
	"fmt"
	"os"

	"github.com/aaaaalbert/pd-soundfile/sfile"
)

// createFileMode matches spec.md §6: "files opened with
// write+create+truncate; permission 0666".
const createFileMode = 0666

// CreateSpec parameterizes Create.
type CreateSpec struct {
	Path           string
	Plugin         sfile.Plugin
	Channels       int
	SampleRate     int
	BytesPerSample int
	BigEndian      bool
	// NFrames is the frame count to declare in the header, or
	// sfile.StreamingMaxFrames for an as-yet-unknown streaming length.
	NFrames int64
}

// Create completes spec's filename with the plug-in's preferred
// extension if the caller supplied none recognized, truncates or
// creates the file, and writes the format header.
func Create(spec CreateSpec) (sf *sfile.Descriptor, err error) {
	path := spec.Path
	if !spec.Plugin.HasExtension(path) {
		exts := firstExtension(spec.Plugin)
		if exts != "" {
			path += exts
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, createFileMode)
	if err != nil {
		return nil, fmt.Errorf("format: creating %s: %w", path, err)
	}

	sf = &sfile.Descriptor{
		File:           f,
		Format:         spec.Plugin,
		Channels:       spec.Channels,
		SampleRate:     spec.SampleRate,
		BytesPerSample: spec.BytesPerSample,
		BigEndian:      spec.BigEndian,
	}
	sf.SyncGeometry()
	if err = sf.Validate(); err != nil {
		f.Close()
		return nil, err
	}

	headerSize, err := spec.Plugin.WriteHeader(sf, spec.NFrames)
	if err != nil {
		f.Close()
		return nil, err
	}
	sf.HeaderSize = headerSize
	return sf, nil
}

// firstExtension returns the first of the fixed candidates ".wav",
// ".aif", ".caf", ".au" that p's HasExtension accepts, or "" if it
// accepts none of them; other extensions p may register are not
// considered.
func firstExtension(p sfile.Plugin) string {
	candidates := []string{".wav", ".aif", ".caf", ".au"}
	for _, c := range candidates {
		if p.HasExtension("x" + c) {
			return c
		}
	}
	return ""
}
