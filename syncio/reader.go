/*
NAME
  reader.go

DESCRIPTION
  reader.go implements the synchronous batch reader of spec.md §4.3:
  a one-shot, non-realtime transfer of a soundfile's frames into
  caller-supplied host arrays.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

// Package syncio implements the synchronous (non-realtime) soundfile
// transfer engine: reading a whole file into host arrays, or writing
// host arrays out to a whole file, in one blocking call.
package syncio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/aaaaalbert/pd-soundfile/codec/pcm"
	"github.com/aaaaalbert/pd-soundfile/format"
	"github.com/aaaaalbert/pd-soundfile/host"
	"github.com/aaaaalbert/pd-soundfile/internal/logging"
	"github.com/aaaaalbert/pd-soundfile/sfile"
)

// Tables and PathResolver are the host collaborator interfaces this
// package depends on; both are defined in package host, re-exported
// here as aliases so callers need not import host directly just to
// call Read/Write.
type Tables = host.Tables
type PathResolver = host.PathResolver

// readChunkFrames bounds how many frames are decoded per I/O call; any
// whole-frame multiple is acceptable per §4.3 step 6.
const readChunkFrames = 256

// Info is the five-element result tuple of §4.3 step 9 / §4.4 step 10.
type Info struct {
	SampleRate     int
	HeaderSize     int
	Channels       int
	BytesPerSample int
	Endian         byte // 'b', 'l', or 'n'
}

// ReadOptions parameterizes Read, mirroring the reader's flag grammar
// of §4.6.
type ReadOptions struct {
	// Arrays names the caller's target arrays, in channel order.
	Arrays []string
	Skip   int64
	// Resize is forced on automatically whenever MaxSize is set.
	Resize  bool
	MaxSize int64 // <=0 means unset
	ASCII   bool
	// Raw supplies explicit geometry and skips format detection.
	Raw *format.RawGeometry
	// Forced names a specific format to require (verified, not detected).
	Forced sfile.Plugin
}

// Read performs the synchronous read of §4.3. resolver locates path
// within the caller's environment; tables owns the named arrays.
func Read(tables Tables, resolver PathResolver, log logging.Logger, path string, opts ReadOptions) (framesRead int64, info Info, err error) {
	resolved, err := resolver.Resolve(path)
	if err != nil {
		return 0, Info{}, errors.Wrapf(err, "syncio: resolving %q", path)
	}

	if opts.ASCII {
		return readASCII(tables, log, resolved, opts)
	}

	sf, err := format.Open(format.OpenSpec{
		Path:        resolved,
		Forced:      opts.Forced,
		Raw:         opts.Raw,
		OnsetFrames: opts.Skip,
	})
	if err != nil {
		return 0, Info{}, err
	}
	defer sf.CloseWith(sf.Format)

	info = Info{
		SampleRate:     sf.SampleRate,
		HeaderSize:     sf.HeaderSize,
		Channels:       sf.Channels,
		BytesPerSample: sf.BytesPerSample,
		Endian:         endianLetter(sf.BigEndian),
	}

	framesInFile := sf.ByteLimit / int64(sf.BytesPerFrame)

	target, err := resizeTargets(tables, log, opts, framesInFile)
	if err != nil {
		return 0, info, err
	}

	pcmFmt, err := pcm.FromBytesPerSample(sf.BytesPerSample)
	if err != nil {
		return 0, info, err
	}

	outs := make([][]float32, len(opts.Arrays))
	for i, name := range opts.Arrays {
		data, ok := tables.Array(name)
		if !ok {
			return 0, info, fmt.Errorf("syncio: array %q not found", name)
		}
		outs[i] = data
	}

	buf := make([]byte, readChunkFrames*sf.BytesPerFrame)
	var n int64
	for n < target {
		chunk := target - n
		if chunk > readChunkFrames {
			chunk = readChunkFrames
		}
		want := int(chunk) * sf.BytesPerFrame
		got, rerr := sf.Format.ReadSamples(sf, buf[:want])
		if got <= 0 {
			break
		}
		gotFrames := got / sf.BytesPerFrame
		pcm.DecodeFrames(pcmFmt, sf.BigEndian, sf.Channels, buf[:got], gotFrames, sliceAt(outs, int(n)))
		n += int64(gotFrames)
		if rerr != nil || got < want {
			break
		}
	}
	framesRead = n

	for i, name := range opts.Arrays {
		zeroTail(outs[i], int(framesRead))
		if i >= sf.Channels {
			zeroTail(outs[i], 0)
		}
		tables.Redraw(name)
	}

	return framesRead, info, nil
}

// sliceAt returns, for each output array, the window starting at
// frame offset so DecodeFrames can write directly into the right
// section of already-resized arrays.
func sliceAt(outs [][]float32, offset int) [][]float32 {
	windows := make([][]float32, len(outs))
	for i, a := range outs {
		if offset < len(a) {
			windows[i] = a[offset:]
		} else {
			windows[i] = nil
		}
	}
	return windows
}

// zeroTail fills a[from:] with silence, per §4.3 step 7.
func zeroTail(a []float32, from int) {
	for i := from; i < len(a); i++ {
		a[i] = 0
	}
}

// resizeTargets implements §4.3 steps 4-5: growing/shrinking arrays to
// a common target length, explicitly when MaxSize is set, or silently
// (with a warning) when the caller's arrays already disagree in length.
func resizeTargets(tables Tables, log logging.Logger, opts ReadOptions, framesInFile int64) (int64, error) {
	if len(opts.Arrays) == 0 {
		return framesInFile, nil
	}

	if opts.Resize || opts.MaxSize > 0 {
		target := framesInFile
		if opts.MaxSize > 0 && opts.MaxSize < target {
			target = opts.MaxSize
		}
		for _, name := range opts.Arrays {
			if _, err := tables.Resize(name, int(target)); err != nil {
				return 0, errors.Wrapf(err, "syncio: resizing %q to %d frames", name, target)
			}
		}
		return target, nil
	}

	target := int64(-1)
	mismatched := false
	for _, name := range opts.Arrays {
		data, ok := tables.Array(name)
		if !ok {
			return 0, fmt.Errorf("syncio: array %q not found", name)
		}
		if target < 0 {
			target = int64(len(data))
		} else if int64(len(data)) != target {
			mismatched = true
			if int64(len(data)) < target {
				target = int64(len(data))
			}
		}
	}
	if mismatched {
		if log != nil {
			log.Warning("syncio: target arrays differ in length, resizing to the shortest", "frames", target)
		}
		for _, name := range opts.Arrays {
			if _, err := tables.Resize(name, int(target)); err != nil {
				return 0, errors.Wrapf(err, "syncio: resizing %q to %d frames", name, target)
			}
		}
	}
	if target < 0 {
		target = 0
	}
	if target > framesInFile {
		target = framesInFile
	}
	return target, nil
}

// readASCII implements §4.3's text fallback: whitespace-separated
// floats, read row-major with one value per array per row.
func readASCII(tables Tables, log logging.Logger, path string, opts ReadOptions) (int64, Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, Info{}, errors.Wrapf(err, "syncio: opening %q", path)
	}
	defer f.Close()

	var tokens []float64
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		v, perr := strconv.ParseFloat(sc.Text(), 64)
		if perr != nil {
			return 0, Info{}, errors.Wrapf(perr, "syncio: parsing ascii token %q", sc.Text())
		}
		tokens = append(tokens, v)
	}
	if err := sc.Err(); err != nil {
		return 0, Info{}, err
	}

	nArrays := len(opts.Arrays)
	if nArrays == 0 {
		return 0, Info{}, nil
	}
	rows := int64(len(tokens)) / int64(nArrays)

	target := rows
	if opts.MaxSize > 0 && opts.MaxSize < target {
		target = opts.MaxSize
	}
	outs := make([][]float32, nArrays)
	for i, name := range opts.Arrays {
		data, err := tables.Resize(name, int(target))
		if err != nil {
			return 0, Info{}, errors.Wrapf(err, "syncio: resizing %q", name)
		}
		outs[i] = data
	}

	for row := int64(0); row < target; row++ {
		for ch := 0; ch < nArrays; ch++ {
			outs[ch][row] = float32(tokens[row*int64(nArrays)+int64(ch)])
		}
	}
	for _, name := range opts.Arrays {
		tables.Redraw(name)
	}
	if log != nil && opts.MaxSize > 0 && opts.MaxSize < rows {
		log.Info("syncio: ascii read truncated by maxsize", "rows", rows, "kept", target)
	}
	return target, Info{}, nil
}

func endianLetter(big bool) byte {
	if big {
		return 'b'
	}
	return 'l'
}
