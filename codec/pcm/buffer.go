/*
NAME
  buffer.go

DESCRIPTION
  buffer.go converts whole frames (one sample per channel) between
  interleaved byte buffers and per-channel float32 slices, applying the
  zero-padding policy of spec.md §4.1.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package pcm

// DecodeFrames reads nframes interleaved frames of the given format and
// endianness from buf (which must hold exactly nframes*fileChannels*
// f.BytesPerSample() bytes) and writes one sample per frame into each
// of outs. Per spec.md §4.1, if outs has more elements than
// fileChannels, the extra outlets are left untouched by this call (the
// caller zero-fills them, since they are not "excess input channels"
// but excess output destinations); if outs has fewer elements than
// fileChannels, the remaining file channels are simply not copied
// anywhere.
func DecodeFrames(f Format, big bool, fileChannels int, buf []byte, nframes int, outs [][]float32) {
	bps := f.BytesPerSample()
	frameSize := fileChannels * bps
	for i := 0; i < nframes; i++ {
		base := i * frameSize
		for ch := 0; ch < fileChannels && ch < len(outs); ch++ {
			off := base + ch*bps
			outs[ch][i] = ReadSample(f, big, buf[off:off+bps])
		}
	}
}

// EncodeFrames writes nframes interleaved frames of the given format
// and endianness into buf (which must be exactly nframes*fileChannels*
// f.BytesPerSample() bytes) from ins, one sample per channel per frame.
// Per spec.md §4.1, when ins has fewer channels than fileChannels, the
// excess file channels are zero-filled (silence); when ins has more
// channels than fileChannels, the excess input channels are ignored.
func EncodeFrames(f Format, big bool, fileChannels int, ins [][]float32, onset, nframes int, buf []byte) {
	bps := f.BytesPerSample()
	frameSize := fileChannels * bps
	zero := make([]byte, bps)
	for i := 0; i < nframes; i++ {
		base := i * frameSize
		for ch := 0; ch < fileChannels; ch++ {
			off := base + ch*bps
			if ch < len(ins) {
				WriteSample(f, big, ins[ch][onset+i], buf[off:off+bps])
			} else {
				copy(buf[off:off+bps], zero)
			}
		}
	}
}
