/*
NAME
  aiff.go

DESCRIPTION
  aiff.go implements the AIFF container plug-in, hand-rolled in the
  same per-chunk style as the teacher's codec/wav/wav.go header writer,
  scanning FORM/COMM/SSND chunks per spec.md §4.2. AIFF is always
  big-endian and, being the classic (non AIFF-C) variant, stores only
  16- and 24-bit integer samples; 32-bit float is not representable and
  WriteHeader rejects it.

LICENSE
  Copyright (C) 2026 the contributors of this module. All rights reserved.
*/

// Package aiff implements the AIFF soundfile format plug-in.
package aiff

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/aaaaalbert/pd-soundfile/sfile"
)

// formHeaderSize is the size of the minimal FORM/COMM/SSND header this
// plug-in writes: 12 (FORM+AIFF) + 26 (COMM chunk) + 16 (SSND chunk
// header, excluding sound data).
const formHeaderSize = 12 + 26 + 16

// Plugin implements sfile.Plugin for the AIFF container format.
type Plugin struct {
	extensions []string
}

// state is the per-open data AIFF needs to patch its header on close.
type state struct {
	formSizeOff int64
	framesOff   int64
	ssndSizeOff int64
}

// New returns a new AIFF plug-in instance.
func New() *Plugin {
	return &Plugin{extensions: []string{".aif", ".aiff"}}
}

func (p *Plugin) Name() string      { return "aiff" }
func (p *Plugin) MinHeaderSize() int { return formHeaderSize }

func (p *Plugin) Sniff(buf []byte) bool {
	if len(buf) < 12 {
		return false
	}
	return string(buf[0:4]) == "FORM" && string(buf[8:12]) == "AIFF"
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

// EndiannessPolicy: AIFF is always big-endian.
func (p *Plugin) EndiannessPolicy(requested sfile.Endianness) (sfile.Endianness, bool) {
	overridden := requested != sfile.EndianUnspecified && requested != sfile.EndianBig
	return sfile.EndianBig, overridden
}

// ReadHeader parses the FORM/AIFF chunk structure, scanning chunks
// until COMM and SSND have both been found.
func (p *Plugin) ReadHeader(sf *sfile.Descriptor) error {
	var form [12]byte
	if _, err := io.ReadFull(sf.File, form[:]); err != nil {
		return errors.Wrap(err, "aiff: reading FORM header")
	}
	if string(form[0:4]) != "FORM" || string(form[8:12]) != "AIFF" {
		return fmt.Errorf("aiff: bad header")
	}

	var (
		haveCOMM     bool
		channels     uint16
		sampleFrames uint32
		sampleSize   uint16
		sampleRate   float64
		ssndSize     uint32
		pos          int64 = 12
	)
scan:
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(sf.File, hdr[:]); err != nil {
			return errors.Wrap(err, "aiff: scanning chunks")
		}
		id := string(hdr[0:4])
		size := binary.BigEndian.Uint32(hdr[4:8])
		pos += 8
		switch id {
		case "COMM":
			body := make([]byte, size)
			if _, err := io.ReadFull(sf.File, body); err != nil {
				return errors.Wrap(err, "aiff: reading COMM chunk")
			}
			if len(body) < 18 {
				return fmt.Errorf("aiff: COMM chunk too short")
			}
			channels = binary.BigEndian.Uint16(body[0:2])
			sampleFrames = binary.BigEndian.Uint32(body[2:6])
			sampleSize = binary.BigEndian.Uint16(body[6:8])
			sampleRate = getExtended(body[8:18])
			haveCOMM = true
			pos += int64(size)
			if size%2 == 1 {
				pos++
				sf.File.Seek(1, io.SeekCurrent)
			}
		case "SSND":
			if !haveCOMM {
				return fmt.Errorf("aiff: bad header: SSND chunk before COMM chunk")
			}
			var ssndHdr [8]byte
			if _, err := io.ReadFull(sf.File, ssndHdr[:]); err != nil {
				return errors.Wrap(err, "aiff: reading SSND header")
			}
			ssndSize = size - 8
			pos += 8
			break scan
		default:
			if _, err := sf.File.Seek(int64(size), io.SeekCurrent); err != nil {
				return errors.Wrap(err, "aiff: skipping chunk")
			}
			pos += int64(size)
			if size%2 == 1 {
				pos++
				sf.File.Seek(1, io.SeekCurrent)
			}
		}
	}

	switch sampleSize {
	case 16:
		sf.BytesPerSample = 2
	case 24:
		sf.BytesPerSample = 3
	default:
		return fmt.Errorf("aiff: unsupported sample size %d bits", sampleSize)
	}
	sf.Channels = int(channels)
	sf.SampleRate = int(sampleRate)
	sf.BigEndian = true
	sf.SyncGeometry()
	sf.HeaderSize = int(pos)
	_ = sampleFrames
	sf.ByteLimit = int64(ssndSize)
	sf.State = &state{}
	return nil
}

// WriteHeader emits the minimal FORM/COMM/SSND header for a file
// declared to hold nframes frames.
func (p *Plugin) WriteHeader(sf *sfile.Descriptor, nframes int64) (int, error) {
	if sf.BytesPerSample == 4 {
		return 0, fmt.Errorf("aiff: 32-bit float samples are not representable in classic AIFF")
	}
	var frames uint32
	if nframes == sfile.StreamingMaxFrames {
		frames = 0xFFFFFFFF
	} else {
		frames = uint32(nframes)
	}
	soundDataSize := frames * uint32(sf.BytesPerFrame)
	ssndChunkSize := 8 + soundDataSize
	formSize := uint32(4 + (8+18) + (8 + ssndChunkSize))

	hdr := make([]byte, formHeaderSize)
	copy(hdr[0:4], "FORM")
	binary.BigEndian.PutUint32(hdr[4:8], formSize)
	copy(hdr[8:12], "AIFF")
	copy(hdr[12:16], "COMM")
	binary.BigEndian.PutUint32(hdr[16:20], 18)
	binary.BigEndian.PutUint16(hdr[20:22], uint16(sf.Channels))
	binary.BigEndian.PutUint32(hdr[22:26], frames)
	binary.BigEndian.PutUint16(hdr[26:28], uint16(sf.BytesPerSample*8))
	putExtended(float64(sf.SampleRate), hdr[28:38])
	copy(hdr[38:42], "SSND")
	binary.BigEndian.PutUint32(hdr[42:46], ssndChunkSize)
	binary.BigEndian.PutUint32(hdr[46:50], 0) // offset
	binary.BigEndian.PutUint32(hdr[50:54], 0) // blockSize

	if _, err := sf.File.Write(hdr); err != nil {
		return 0, errors.Wrap(err, "aiff: writing header")
	}
	sf.State = &state{formSizeOff: 4, framesOff: 22, ssndSizeOff: 42}
	return formHeaderSize, nil
}

// UpdateHeader patches the FORM size, COMM sample-frame count, and
// SSND chunk size fields to reflect framesWritten.
func (p *Plugin) UpdateHeader(sf *sfile.Descriptor, framesWritten int64) error {
	st, _ := sf.State.(*state)
	if st == nil || st.formSizeOff == 0 {
		return nil
	}
	soundDataSize := uint32(framesWritten) * uint32(sf.BytesPerFrame)
	ssndChunkSize := 8 + soundDataSize
	formSize := uint32(4 + (8+18) + (8 + ssndChunkSize))

	cur, err := sf.File.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	defer sf.File.Seek(cur, io.SeekStart)

	var buf4 [4]byte
	binary.BigEndian.PutUint32(buf4[:], formSize)
	if _, err := sf.File.WriteAt(buf4[:], st.formSizeOff); err != nil {
		return errors.Wrap(err, "aiff: patching FORM size")
	}
	binary.BigEndian.PutUint32(buf4[:], uint32(framesWritten))
	if _, err := sf.File.WriteAt(buf4[:], st.framesOff); err != nil {
		return errors.Wrap(err, "aiff: patching COMM sample frame count")
	}
	binary.BigEndian.PutUint32(buf4[:], ssndChunkSize)
	if _, err := sf.File.WriteAt(buf4[:], st.ssndSizeOff); err != nil {
		return errors.Wrap(err, "aiff: patching SSND size")
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
