/*
NAME
  writer.go

DESCRIPTION
  writer.go implements the synchronous batch writer of spec.md §4.4: a
  one-shot, non-realtime transfer of caller-supplied host arrays into a
  new soundfile, with peak-normalization support.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

package syncio

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/aaaaalbert/pd-soundfile/codec/pcm"
	"github.com/aaaaalbert/pd-soundfile/format"
	"github.com/aaaaalbert/pd-soundfile/internal/logging"
	"github.com/aaaaalbert/pd-soundfile/sfile"
)

// writeChunkFrames bounds how many frames are encoded per I/O call.
const writeChunkFrames = 256

// WriteOptions parameterizes Write, mirroring the writer's flag
// grammar of §4.6.
type WriteOptions struct {
	Arrays         []string
	Skip           int64 // onset within the source arrays
	NFrames        int64 // requested cap, <=0 means "as many as available"
	BytesPerSample int   // 2, 3, or 4; 0 defaults to 2
	SampleRate     int   // written to the header as given; 0 is not replaced by a default
	Normalize      bool
	RequestedBig   *bool // nil defers entirely to the format's policy
	Forced         sfile.Plugin
	// Meta is up to 8 metadata groups, each passed verbatim to the
	// format's WriteMetadata.
	Meta [][]string
}

// Write performs the synchronous write of §4.4.
func Write(tables Tables, resolver PathResolver, log logging.Logger, path string, opts WriteOptions) (framesWritten int64, info Info, err error) {
	resolved, err := resolver.Resolve(path)
	if err != nil {
		return 0, Info{}, errors.Wrapf(err, "syncio: resolving %q", path)
	}

	plugin := opts.Forced
	if plugin == nil {
		var ok bool
		plugin, ok = format.Default().ByExtension(resolved)
		if !ok {
			plugin, ok = format.Default().Default()
			if !ok {
				return 0, Info{}, fmt.Errorf("syncio: no registered formats")
			}
		}
	}

	bytesPerSample := opts.BytesPerSample
	if bytesPerSample == 0 {
		bytesPerSample = 2
	}

	requested := sfile.EndianUnspecified
	if opts.RequestedBig != nil {
		if *opts.RequestedBig {
			requested = sfile.EndianBig
		} else {
			requested = sfile.EndianLittle
		}
	}
	actualEndian, overridden := plugin.EndiannessPolicy(requested)
	if overridden && log != nil {
		log.Warning("syncio: format overrode requested endianness", "format", plugin.Name(), "requested", requested.Letter(), "actual", actualEndian.Letter())
	}

	if len(opts.Arrays) == 0 {
		return 0, Info{}, fmt.Errorf("syncio: no source arrays given")
	}
	ins := make([][]float32, len(opts.Arrays))
	minLen := -1
	for i, name := range opts.Arrays {
		data, ok := tables.Array(name)
		if !ok {
			return 0, Info{}, fmt.Errorf("syncio: array %q not found", name)
		}
		ins[i] = data
		if minLen < 0 || len(data) < minLen {
			minLen = len(data)
		}
	}

	avail := int64(minLen) - opts.Skip
	if avail < 0 {
		avail = 0
	}
	writeLen := avail
	if opts.NFrames > 0 && opts.NFrames < writeLen {
		writeLen = opts.NFrames
	}

	peak := peakAbs(ins, int(opts.Skip), int(writeLen))

	scale := float32(1)
	normalize := opts.Normalize
	pcmFmt, err := pcm.FromBytesPerSample(bytesPerSample)
	if err != nil {
		return 0, Info{}, err
	}
	if normalize {
		if peak > 0 {
			scale = 32767.0 / (32768.0 * peak)
		}
	} else if peak > 1 && pcmFmt != pcm.F32 {
		normalize = true
		if peak > 0 {
			scale = 32767.0 / (32768.0 * peak)
		}
		if log != nil {
			log.Warning("syncio: peak exceeds full scale, normalizing", "peak", peak)
		}
	} else if log != nil {
		log.Info("syncio: peak", "peak", peak)
	}

	sf, err := format.Create(format.CreateSpec{
		Path:           resolved,
		Plugin:         plugin,
		Channels:       len(opts.Arrays),
		SampleRate:     opts.SampleRate,
		BytesPerSample: bytesPerSample,
		BigEndian:      actualEndian.Big(),
		NFrames:        writeLen,
	})
	if err != nil {
		return 0, Info{}, err
	}
	defer func() {
		if uerr := sf.Format.UpdateHeader(sf, framesWritten); uerr != nil && log != nil {
			log.Error("syncio: updating header on close", "error", uerr)
		}
		sf.CloseWith(sf.Format)
	}()

	info = Info{
		SampleRate:     sf.SampleRate,
		HeaderSize:     sf.HeaderSize,
		Channels:       sf.Channels,
		BytesPerSample: sf.BytesPerSample,
		Endian:         endianLetter(sf.BigEndian),
	}

	for gi, group := range opts.Meta {
		if werr := sf.Format.WriteMetadata(sf, group); werr != nil && log != nil {
			log.Warning("syncio: metadata group failed", "index", gi, "error", werr)
		}
	}

	buf := make([]byte, writeChunkFrames*sf.BytesPerFrame)
	scaled := make([][]float32, len(ins))
	for i := range scaled {
		scaled[i] = make([]float32, writeChunkFrames)
	}

	var n int64
	for n < writeLen {
		chunk := writeLen - n
		if chunk > writeChunkFrames {
			chunk = writeChunkFrames
		}
		for ch := range ins {
			src := ins[ch][int64(opts.Skip)+n : int64(opts.Skip)+n+chunk]
			for i, v := range src {
				scaled[ch][i] = v * scale
			}
		}
		want := int(chunk) * sf.BytesPerFrame
		pcm.EncodeFrames(pcmFmt, sf.BigEndian, sf.Channels, scaled, 0, int(chunk), buf[:want])
		got, werr := sf.Format.WriteSamples(sf, buf[:want])
		n += int64(got / sf.BytesPerFrame)
		if werr != nil || got < want {
			if werr != nil && log != nil {
				log.Error("syncio: short write", "error", werr)
			}
			break
		}
	}
	framesWritten = n

	return framesWritten, info, nil
}

// peakAbs returns the maximum absolute sample value across every
// channel within [onset, onset+n).
func peakAbs(ins [][]float32, onset, n int) float32 {
	var peak float32
	for _, ch := range ins {
		end := onset + n
		if end > len(ch) {
			end = len(ch)
		}
		for i := onset; i < end; i++ {
			v := ch[i]
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
	}
	return peak
}
