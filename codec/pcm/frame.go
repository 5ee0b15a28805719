/*
NAME
  frame.go

DESCRIPTION
  frame.go implements the per-sample read/write conversions of spec.md
  §4.1: 16/24-bit integer and 32-bit float samples, big- or
  little-endian, converted to and from a normalized float32 in [-1, 1).

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package pcm

import "math"

// ReadSample decodes one sample of the given Format and endianness from
// b (which must be exactly f.BytesPerSample() bytes long) into a float
// in [-1, 1).
func ReadSample(f Format, big bool, b []byte) float32 {
	switch f {
	case S16:
		return read16(big, b)
	case S24:
		return read24(big, b)
	case F32:
		return read32f(big, b)
	default:
		return 0
	}
}

// WriteSample encodes v (normalized to [-1, 1)) into dst (which must be
// exactly f.BytesPerSample() bytes long) in the given Format and
// endianness, saturating where the format requires it.
func WriteSample(f Format, big bool, v float32, dst []byte) {
	switch f {
	case S16:
		write16(big, v, dst)
	case S24:
		write24(big, v, dst)
	case F32:
		write32f(big, v, dst)
	}
}

// read16 sign-extends a big- or little-endian 16-bit sample into the
// high 16 bits of a 32-bit word, then scales by 2^-31.
func read16(big bool, b []byte) float32 {
	var u uint32
	if big {
		u = uint32(b[0])<<24 | uint32(b[1])<<16
	} else {
		u = uint32(b[1])<<24 | uint32(b[0])<<16
	}
	return float32(int32(u)) * twoPow31Inv
}

// read24 sign-extends a 24-bit sample into the high 24 bits of a 32-bit
// word, then scales by 2^-31.
func read24(big bool, b []byte) float32 {
	var u uint32
	if big {
		u = uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8
	} else {
		u = uint32(b[2])<<24 | uint32(b[1])<<16 | uint32(b[0])<<8
	}
	return float32(int32(u)) * twoPow31Inv
}

// read32f assembles a 32-bit word and reinterprets it as IEEE 754
// binary32.
func read32f(big bool, b []byte) float32 {
	var u uint32
	if big {
		u = uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	} else {
		u = uint32(b[3])<<24 | uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0])
	}
	return math.Float32frombits(u)
}

// twoPow31Inv is 2^-31, the scale factor that maps a 32-bit signed
// integer's range onto (roughly) [-1, 1).
const twoPow31Inv = 1.0 / 2147483648.0

// write16 rounds v to the nearest 16-bit integer, saturates, and emits
// it in the requested endianness.
func write16(big bool, v float32, dst []byte) {
	s := Clamp16(roundScaled(v, 32768))
	u := uint16(int16(s))
	if big {
		dst[0] = byte(u >> 8)
		dst[1] = byte(u)
	} else {
		dst[0] = byte(u)
		dst[1] = byte(u >> 8)
	}
}

// write24 rounds v to the nearest 24-bit integer, saturates, and emits
// it in the requested endianness.
func write24(big bool, v float32, dst []byte) {
	s := Clamp24(roundScaled(v, 8388608))
	u := uint32(s) & 0x00FFFFFF
	if big {
		dst[0] = byte(u >> 16)
		dst[1] = byte(u >> 8)
		dst[2] = byte(u)
	} else {
		dst[0] = byte(u)
		dst[1] = byte(u >> 8)
		dst[2] = byte(u >> 16)
	}
}

// write32f reinterprets v's bits as a 32-bit integer and emits it
// un-clamped, in the requested endianness.
func write32f(big bool, v float32, dst []byte) {
	u := math.Float32bits(v)
	if big {
		dst[0] = byte(u >> 24)
		dst[1] = byte(u >> 16)
		dst[2] = byte(u >> 8)
		dst[3] = byte(u)
	} else {
		dst[0] = byte(u)
		dst[1] = byte(u >> 8)
		dst[2] = byte(u >> 16)
		dst[3] = byte(u >> 24)
	}
}

// roundScaled implements floor(sample*scale + scale) - scale, the
// round-to-nearest rule of spec.md §4.1, returned pre-clamp.
func roundScaled(v float32, scale float64) int32 {
	return int32(math.Floor(float64(v)*scale+scale) - scale)
}
