/*
NAME
  pcm.go

DESCRIPTION
  pcm.go contains the byte-exact codecs that convert between raw PCM
  frame bytes and normalized floats, per spec.md §4.1.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

// Package pcm provides the byte codecs and endianness helpers shared by
// every format plug-in: in-place swap of 2/4-byte words, and 16/24/32-bit
// PCM <-> float32 conversion with saturating clamps.
package pcm

import "fmt"

// Format identifies a sample's on-disk representation. 32-bit always
// means IEEE 754 binary32; there is no 32-bit integer PCM in this
// module, matching spec.md's "bytes per sample" glossary entry.
type Format int

const (
	// Unknown represents an unset or unrecognized sample format.
	Unknown Format = iota - 1
	// S16 is 16-bit signed linear PCM.
	S16
	// S24 is 24-bit signed linear PCM.
	S24
	// F32 is 32-bit IEEE 754 float.
	F32
)

// String returns the human-readable name of a Format.
func (f Format) String() string {
	switch f {
	case S16:
		return "S16"
	case S24:
		return "S24"
	case F32:
		return "F32"
	default:
		return "Unknown"
	}
}

// FromBytesPerSample maps a descriptor's bytes-per-sample (2, 3, or 4)
// to the corresponding Format.
func FromBytesPerSample(n int) (Format, error) {
	switch n {
	case 2:
		return S16, nil
	case 3:
		return S24, nil
	case 4:
		return F32, nil
	default:
		return Unknown, fmt.Errorf("pcm: unsupported bytes per sample: %d", n)
	}
}

// BytesPerSample returns the on-disk byte width of a Format.
func (f Format) BytesPerSample() int {
	switch f {
	case S16:
		return 2
	case S24:
		return 3
	case F32:
		return 4
	default:
		return 0
	}
}

// Clamp16 saturates v to the 16-bit signed range used by the write path
// ([-32767, 32767], per spec.md §4.1 — note the asymmetric range, which
// keeps the representation symmetric around zero rather than using the
// full two's-complement span).
func Clamp16(v int32) int32 {
	switch {
	case v > 32767:
		return 32767
	case v < -32767:
		return -32767
	default:
		return v
	}
}

// Clamp24 saturates v to the 24-bit signed range used by the write path
// ([-8388607, 8388607]).
func Clamp24(v int32) int32 {
	switch {
	case v > 8388607:
		return 8388607
	case v < -8388607:
		return -8388607
	default:
		return v
	}
}

// SwapBytes2 reverses the byte order of a 2-byte word in place.
func SwapBytes2(b []byte) {
	b[0], b[1] = b[1], b[0]
}

// SwapBytes4 reverses the byte order of a 4-byte word in place.
func SwapBytes4(b []byte) {
	b[0], b[3] = b[3], b[0]
	b[1], b[2] = b[2], b[1]
}
