/*
NAME
  main.go

DESCRIPTION
  sfconvert reads a soundfile through this module's own detection and
  PCM engine and re-encodes it as a standard WAVE file using
  go-audio/wav, independently of this module's own format/wave plug-in.
  It exists to give a real, non-hand-rolled WAVE encoder a place to run
  against files this module already knows how to read: AIFF, CAF,
  NeXT/Sun, or WAVE itself.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/aaaaalbert/pd-soundfile/codec/pcm"
	"github.com/aaaaalbert/pd-soundfile/format"
)

const wavFormat = 1 // PCM, matching go-audio/wav's FormatCode for linear PCM.

// transferChunkFrames bounds how many frames are decoded per read.
const transferChunkFrames = 1024

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "sfconvert:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("sfconvert", flag.ContinueOnError)
	bitDepth := fs.Int("bits", 16, "output WAVE bit depth (16, 24, or 32)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("usage: sfconvert [-bits N] <input> <output.wav>")
	}
	in, out := rest[0], rest[1]

	sf, err := format.Open(format.OpenSpec{Path: in})
	if err != nil {
		return fmt.Errorf("opening %s: %w", in, err)
	}
	defer sf.CloseWith(sf.Format)

	pcmFmt, err := pcm.FromBytesPerSample(sf.BytesPerSample)
	if err != nil {
		return err
	}

	outFile, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer outFile.Close()

	enc := wav.NewEncoder(outFile, sf.SampleRate, *bitDepth, sf.Channels, wavFormat)
	defer enc.Close()

	scale := fullScale(*bitDepth)
	intBuf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: sf.Channels, SampleRate: sf.SampleRate},
		SourceBitDepth: *bitDepth,
	}

	buf := make([]byte, transferChunkFrames*sf.BytesPerFrame)
	floats := make([][]float32, sf.Channels)
	for ch := range floats {
		floats[ch] = make([]float32, transferChunkFrames)
	}
	data := make([]int, 0, transferChunkFrames*sf.Channels)

	for {
		n, rerr := sf.Format.ReadSamples(sf, buf)
		if n <= 0 {
			break
		}
		frames := n / sf.BytesPerFrame
		pcm.DecodeFrames(pcmFmt, sf.BigEndian, sf.Channels, buf[:n], frames, floats)

		data = data[:0]
		for i := 0; i < frames; i++ {
			for ch := 0; ch < sf.Channels; ch++ {
				data = append(data, int(floats[ch][i]*scale))
			}
		}
		intBuf.Data = data
		if err := enc.Write(intBuf); err != nil {
			return fmt.Errorf("encoding WAVE frames: %w", err)
		}

		if rerr != nil || n < len(buf) {
			break
		}
	}

	return nil
}

// fullScale returns the peak integer magnitude for the requested
// output bit depth, matching this module's own write-path convention
// of reserving the most-negative code point (spec.md §4.1).
func fullScale(bitDepth int) float32 {
	switch bitDepth {
	case 16:
		return 32767
	case 24:
		return 8388607
	default:
		return 2147483647
	}
}
