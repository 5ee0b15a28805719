/*
NAME
  extended.go

DESCRIPTION
  extended.go encodes and decodes the 80-bit IEEE 754 extended-precision
  float that AIFF's COMM chunk uses for sample rate, following the
  classic public-domain Apple/SGI conversion algorithm.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package aiff

import "math"

// putExtended encodes num as a 10-byte, big-endian, 80-bit IEEE 754
// extended-precision float into dst.
func putExtended(num float64, dst []byte) {
	var sign, expon int
	var hiMant, loMant uint32

	if num < 0 {
		sign = 0x8000
		num = -num
	}

	if num != 0 {
		fMant, exp := math.Frexp(num)
		expon = exp
		if expon > 16384 || !(fMant < 1) {
			// Infinity or NaN.
			expon = sign | 0x7FFF
			hiMant, loMant = 0, 0
		} else {
			expon += 16382
			if expon < 0 {
				fMant = math.Ldexp(fMant, expon)
				expon = 0
			}
			expon |= sign

			fMant = math.Ldexp(fMant, 32)
			fsMant := math.Floor(fMant)
			hiMant = uint32(fsMant)
			fMant = math.Ldexp(fMant-fsMant, 32)
			fsMant = math.Floor(fMant)
			loMant = uint32(fsMant)
		}
	}

	dst[0] = byte(expon >> 8)
	dst[1] = byte(expon)
	dst[2] = byte(hiMant >> 24)
	dst[3] = byte(hiMant >> 16)
	dst[4] = byte(hiMant >> 8)
	dst[5] = byte(hiMant)
	dst[6] = byte(loMant >> 24)
	dst[7] = byte(loMant >> 16)
	dst[8] = byte(loMant >> 8)
	dst[9] = byte(loMant)
}

// getExtended decodes a 10-byte, big-endian, 80-bit IEEE 754
// extended-precision float from src.
func getExtended(src []byte) float64 {
	expon := int(src[0]&0x7F)<<8 | int(src[1])
	hiMant := uint32(src[2])<<24 | uint32(src[3])<<16 | uint32(src[4])<<8 | uint32(src[5])
	loMant := uint32(src[6])<<24 | uint32(src[7])<<16 | uint32(src[8])<<8 | uint32(src[9])

	if expon == 0 && hiMant == 0 && loMant == 0 {
		return 0
	}
	if expon == 0x7FFF {
		return math.Inf(1)
	}

	expon -= 16383
	f := float64(hiMant) * math.Pow(2, float64(expon-31))
	f += float64(loMant) * math.Pow(2, float64(expon-63))
	if src[0]&0x80 != 0 {
		f = -f
	}
	return f
}
