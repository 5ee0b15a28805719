/*
NAME
  caf.go

DESCRIPTION
  caf.go implements the Core Audio Format (CAF) container plug-in,
  hand-rolled in the same per-chunk scanning style as format/wave and
  format/aiff, per spec.md §4.2. CAF is always big-endian at the
  container level; linear PCM payload bytes may additionally be
  little-endian, a choice this plug-in always fixes to big-endian to
  match the other built-ins and keep the synchronous engine's
  endianness handling uniform.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

// Package caf implements the Core Audio Format soundfile format
// plug-in.
package caf

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/aaaaalbert/pd-soundfile/sfile"
)

// fileHeaderSize is "caff" + version + flags.
const fileHeaderSize = 8

// descChunkSize is the fixed size of the Audio Format Description
// chunk body.
const descChunkSize = 32

// formatFlags bits for the "lpcm" formatID, per Apple's CAF spec.
const (
	flagIsFloat        = 1 << 0
	flagIsLittleEndian = 1 << 1
)

// Plugin implements sfile.Plugin for the CAF container format.
type Plugin struct {
	extensions []string
}

// state is the per-open data CAF needs to patch its header on close.
type state struct {
	dataEditCountOff int64
	dataChunkSizeOff int64
}

// New returns a new CAF plug-in instance.
func New() *Plugin {
	return &Plugin{extensions: []string{".caf"}}
}

func (p *Plugin) Name() string      { return "caf" }
func (p *Plugin) MinHeaderSize() int { return fileHeaderSize }

func (p *Plugin) Sniff(buf []byte) bool {
	if len(buf) < 4 {
		return false
	}
	return string(buf[0:4]) == "caff"
}

func (p *Plugin) HasExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range p.extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func (p *Plugin) AddExtension(name string) {
	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}
	p.extensions = append(p.extensions, strings.ToLower(name))
}

// EndiannessPolicy: this plug-in always normalizes linear PCM payload
// bytes to big-endian.
func (p *Plugin) EndiannessPolicy(requested sfile.Endianness) (sfile.Endianness, bool) {
	overridden := requested != sfile.EndianUnspecified && requested != sfile.EndianBig
	return sfile.EndianBig, overridden
}

// ReadHeader parses the "caff" file header and scans chunks until
// "desc" and "data" have both been found.
func (p *Plugin) ReadHeader(sf *sfile.Descriptor) error {
	var fh [fileHeaderSize]byte
	if _, err := io.ReadFull(sf.File, fh[:]); err != nil {
		return errors.Wrap(err, "caf: reading file header")
	}
	if string(fh[0:4]) != "caff" {
		return fmt.Errorf("caf: bad header")
	}

	var (
		haveDesc       bool
		sampleRate     float64
		formatID       string
		formatFlags    uint32
		channels       uint32
		bitsPerChannel uint32
		dataSize       int64
		pos            int64 = fileHeaderSize
	)
scan:
	for {
		var chdr [12]byte
		if _, err := io.ReadFull(sf.File, chdr[:]); err != nil {
			return errors.Wrap(err, "caf: scanning chunks")
		}
		id := string(chdr[0:4])
		size := int64(binary.BigEndian.Uint64(chdr[4:12]))
		pos += 12
		switch id {
		case "desc":
			body := make([]byte, descChunkSize)
			if _, err := io.ReadFull(sf.File, body); err != nil {
				return errors.Wrap(err, "caf: reading desc chunk")
			}
			sampleRate = math.Float64frombits(binary.BigEndian.Uint64(body[0:8]))
			formatID = string(body[8:12])
			formatFlags = binary.BigEndian.Uint32(body[12:16])
			channels = binary.BigEndian.Uint32(body[24:28])
			bitsPerChannel = binary.BigEndian.Uint32(body[28:32])
			haveDesc = true
			pos += descChunkSize
		case "data":
			if !haveDesc {
				return fmt.Errorf("caf: bad header: data chunk before desc chunk")
			}
			var editCount [4]byte
			if _, err := io.ReadFull(sf.File, editCount[:]); err != nil {
				return errors.Wrap(err, "caf: reading data chunk edit count")
			}
			pos += 4
			if size == -1 {
				dataSize = -1
			} else {
				dataSize = size - 4
			}
			break scan
		default:
			if size >= 0 {
				if _, err := sf.File.Seek(size, io.SeekCurrent); err != nil {
					return errors.Wrap(err, "caf: skipping chunk")
				}
				pos += size
			}
		}
	}

	if formatID != "lpcm" {
		return fmt.Errorf("caf: unsupported formatID %q (only lpcm is handled)", formatID)
	}
	switch bitsPerChannel {
	case 16:
		sf.BytesPerSample = 2
	case 24:
		sf.BytesPerSample = 3
	case 32:
		if formatFlags&flagIsFloat == 0 {
			return fmt.Errorf("caf: unsupported 32-bit integer lpcm")
		}
		sf.BytesPerSample = 4
	default:
		return fmt.Errorf("caf: unsupported bits per channel %d", bitsPerChannel)
	}
	sf.Channels = int(channels)
	sf.SampleRate = int(sampleRate)
	sf.BigEndian = formatFlags&flagIsLittleEndian == 0
	sf.SyncGeometry()
	sf.HeaderSize = int(pos)
	if dataSize == -1 {
		fi, err := sf.File.Stat()
		if err != nil {
			return err
		}
		sf.ByteLimit = fi.Size() - pos
	} else {
		sf.ByteLimit = dataSize
	}
	sf.State = &state{}
	return nil
}

// WriteHeader emits the "caff" file header, a fixed "desc" chunk, and
// a "data" chunk header for a file declared to hold nframes frames.
func (p *Plugin) WriteHeader(sf *sfile.Descriptor, nframes int64) (int, error) {
	var soundDataSize int64
	if nframes == sfile.StreamingMaxFrames {
		soundDataSize = -1 // "until EOF", per the CAF spec's -1 chunk-size convention
	} else {
		soundDataSize = nframes * int64(sf.BytesPerFrame)
	}

	buf := make([]byte, 0, fileHeaderSize+12+descChunkSize+12+4)
	var tmp [8]byte

	buf = append(buf, "caff"...)
	binary.BigEndian.PutUint16(tmp[0:2], 1) // version
	buf = append(buf, tmp[0:2]...)
	binary.BigEndian.PutUint16(tmp[0:2], 0) // flags
	buf = append(buf, tmp[0:2]...)

	buf = append(buf, "desc"...)
	binary.BigEndian.PutUint64(tmp[:], uint64(descChunkSize))
	buf = append(buf, tmp[:]...)

	binary.BigEndian.PutUint64(tmp[:], math.Float64bits(float64(sf.SampleRate)))
	buf = append(buf, tmp[:]...)
	buf = append(buf, "lpcm"...)
	var formatFlags uint32
	if sf.BytesPerSample == 4 {
		formatFlags |= flagIsFloat
	}
	binary.BigEndian.PutUint32(tmp[0:4], formatFlags)
	buf = append(buf, tmp[0:4]...)
	binary.BigEndian.PutUint32(tmp[0:4], uint32(sf.BytesPerFrame)) // bytesPerPacket
	buf = append(buf, tmp[0:4]...)
	binary.BigEndian.PutUint32(tmp[0:4], 1) // framesPerPacket
	buf = append(buf, tmp[0:4]...)
	binary.BigEndian.PutUint32(tmp[0:4], uint32(sf.Channels))
	buf = append(buf, tmp[0:4]...)
	binary.BigEndian.PutUint32(tmp[0:4], uint32(sf.BytesPerSample*8))
	buf = append(buf, tmp[0:4]...)

	dataChunkOff := len(buf)
	buf = append(buf, "data"...)
	dataChunkSizeOff := int64(len(buf))
	dataChunkSize := soundDataSize + 4
	if soundDataSize == -1 {
		dataChunkSize = -1
	}
	binary.BigEndian.PutUint64(tmp[:], uint64(dataChunkSize))
	buf = append(buf, tmp[:]...)
	dataEditCountOff := int64(len(buf))
	binary.BigEndian.PutUint32(tmp[0:4], 0) // edit count
	buf = append(buf, tmp[0:4]...)
	_ = dataChunkOff

	if _, err := sf.File.Write(buf); err != nil {
		return 0, errors.Wrap(err, "caf: writing header")
	}
	sf.State = &state{dataEditCountOff: dataEditCountOff, dataChunkSizeOff: dataChunkSizeOff}
	return len(buf), nil
}

// UpdateHeader patches the "data" chunk's size field to reflect
// framesWritten. The edit count field is left untouched: this plug-in
// never performs in-place destructive edits to existing sample data.
func (p *Plugin) UpdateHeader(sf *sfile.Descriptor, framesWritten int64) error {
	st, _ := sf.State.(*state)
	if st == nil || st.dataChunkSizeOff == 0 {
		return nil
	}
	soundDataSize := framesWritten * int64(sf.BytesPerFrame)

	cur, err := sf.File.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	defer sf.File.Seek(cur, io.SeekStart)

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(soundDataSize+4))
	if _, err := sf.File.WriteAt(buf[:], st.dataChunkSizeOff); err != nil {
		return errors.Wrap(err, "caf: patching data chunk size")
	}
	return nil
}

func (p *Plugin) SeekToFrame(sf *sfile.Descriptor, frame int64) error {
	return sfile.DefaultSeekToFrame(sf, frame)
}

func (p *Plugin) ReadSamples(sf *sfile.Descriptor, buf []byte) (int, error) {
	return sfile.DefaultReadSamples(sf, buf)
}

func (p *Plugin) WriteSamples(sf *sfile.Descriptor, buf []byte) (int, error) {
	return sfile.DefaultWriteSamples(sf, buf)
}

func (p *Plugin) ReadMetadata(sf *sfile.Descriptor, sink sfile.MetadataSink) error {
	return sfile.ErrMetadataUnsupported
}

func (p *Plugin) WriteMetadata(sf *sfile.Descriptor, args []string) error {
	return sfile.ErrMetadataUnsupported
}

func (p *Plugin) Close(sf *sfile.Descriptor) error {
	return sfile.DefaultClose(sf)
}

var _ sfile.Plugin = (*Plugin)(nil)
