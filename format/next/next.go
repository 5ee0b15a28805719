/*
NAME
  next.go

DESCRIPTION
  next.go implements the NeXT/Sun (".au"/".snd") container plug-in, the
  simplest of the built-ins: a fixed 24-byte big-endian header with no
  internal chunk structure, per spec.md §4.2.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

// Package next implements the NeXT/Sun soundfile format plug-in.
package next

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/aaaaalbert/pd-soundfile/sfile"
)

// headerSize is the fixed NeXT/Sun header length this plug-in always
// writes: magic, dataOffset, dataSize, encoding, sampleRate, channels.
const headerSize = 24

// Encoding values from the classic .au/.snd format.
const (
	encodingLinear16 = 3
	encodingLinear24 = 4
	encodingFloat32  = 6
)

// unknownDataSize is the dataSize sentinel for "unknown, read until
// EOF", used for streaming writes.
const unknownDataSize = 0xFFFFFFFF

// Plugin implements sfile.Plugin for the NeXT/Sun container format.
type Plugin struct {
	extensions []string
}

// New returns a new NeXT/Sun plug-in instance.
func New() *Plugin {
	return &Plugin{extensions: []string{".au", ".snd"}}
}

func (p *Plugin) Name() string       { return "next" }
func (p *Plugin) MinHeaderSize() int { return headerSize }

func (p *Plugin) Sniff(buf []byte) bool {
	if len(buf) < 4 {
		return false
	}
	return string(buf[0:4]) == ".snd"
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

// EndiannessPolicy: NeXT/Sun is always big-endian.
func (p *Plugin) EndiannessPolicy(requested sfile.Endianness) (sfile.Endianness, bool) {
	overridden := requested != sfile.EndianUnspecified && requested != sfile.EndianBig
	return sfile.EndianBig, overridden
}

func (p *Plugin) ReadHeader(sf *sfile.Descriptor) error {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(sf.File, hdr[:]); err != nil {
		return errors.Wrap(err, "next: reading header")
	}
	if string(hdr[0:4]) != ".snd" {
		return fmt.Errorf("next: bad header")
	}
	dataOffset := binary.BigEndian.Uint32(hdr[4:8])
	dataSize := binary.BigEndian.Uint32(hdr[8:12])
	encoding := binary.BigEndian.Uint32(hdr[12:16])
	sampleRate := binary.BigEndian.Uint32(hdr[16:20])
	channels := binary.BigEndian.Uint32(hdr[20:24])

	switch encoding {
	case encodingLinear16:
		sf.BytesPerSample = 2
	case encodingLinear24:
		sf.BytesPerSample = 3
	case encodingFloat32:
		sf.BytesPerSample = 4
	default:
		return fmt.Errorf("next: unsupported encoding %d", encoding)
	}
	sf.Channels = int(channels)
	sf.SampleRate = int(sampleRate)
	sf.BigEndian = true
	sf.SyncGeometry()
	sf.HeaderSize = int(dataOffset)

	if dataOffset > headerSize {
		if _, err := sf.File.Seek(int64(dataOffset-headerSize), io.SeekCurrent); err != nil {
			return errors.Wrap(err, "next: skipping info string")
		}
	}
	if dataSize == unknownDataSize {
		fi, err := sf.File.Stat()
		if err != nil {
			return err
		}
		sf.ByteLimit = fi.Size() - int64(dataOffset)
	} else {
		sf.ByteLimit = int64(dataSize)
	}
	sf.State = &headerLayout{dataSizeOff: 8}
	return nil
}

// headerLayout is the per-open state NeXT/Sun needs to patch its
// header on close.
type headerLayout struct {
	dataSizeOff int64
}

func (p *Plugin) WriteHeader(sf *sfile.Descriptor, nframes int64) (int, error) {
	var encoding uint32
	switch sf.BytesPerSample {
	case 2:
		encoding = encodingLinear16
	case 3:
		encoding = encodingLinear24
	case 4:
		encoding = encodingFloat32
	default:
		return 0, fmt.Errorf("next: unsupported bytes per sample %d", sf.BytesPerSample)
	}

	var dataSize uint32
	if nframes == sfile.StreamingMaxFrames {
		dataSize = unknownDataSize
	} else {
		dataSize = uint32(nframes * int64(sf.BytesPerFrame))
	}

	var hdr [headerSize]byte
	copy(hdr[0:4], ".snd")
	binary.BigEndian.PutUint32(hdr[4:8], headerSize)
	binary.BigEndian.PutUint32(hdr[8:12], dataSize)
	binary.BigEndian.PutUint32(hdr[12:16], encoding)
	binary.BigEndian.PutUint32(hdr[16:20], uint32(sf.SampleRate))
	binary.BigEndian.PutUint32(hdr[20:24], uint32(sf.Channels))

	if _, err := sf.File.Write(hdr[:]); err != nil {
		return 0, errors.Wrap(err, "next: writing header")
	}
	sf.State = &headerLayout{dataSizeOff: 8}
	return headerSize, nil
}

func (p *Plugin) UpdateHeader(sf *sfile.Descriptor, framesWritten int64) error {
	st, _ := sf.State.(*headerLayout)
	if st == nil {
		return nil
	}
	dataSize := uint32(framesWritten * int64(sf.BytesPerFrame))

	cur, err := sf.File.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	defer sf.File.Seek(cur, io.SeekStart)

	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], dataSize)
	if _, err := sf.File.WriteAt(buf[:], st.dataSizeOff); err != nil {
		return errors.Wrap(err, "next: patching data size")
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
