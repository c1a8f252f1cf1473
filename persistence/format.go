package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/mfvec/internal/compress"
	"github.com/hupe1980/mfvec/resource"
)

const (
	// Magic identifies field records (ASCII "MFV3", little-endian).
	Magic uint32 = 0x3356464D
	// Version is the current record format version.
	Version uint16 = 1
	// HeaderSize is the size of the record header in bytes.
	HeaderSize = 32

	checksumOffset = 24
)

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
	ErrTruncated      = errors.New("truncated record")
	ErrCorrupt        = errors.New("corrupt record")
)

// Header is the fixed-size header at the start of every field record.
type Header struct {
	Magic       uint32
	Version     uint16
	Compression compress.Type
	Count       uint64
	RawLen      uint32
	PayloadLen  uint32
	Checksum    uint32
}

// MarshalBinary encodes h into HeaderSize bytes.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.put(buf)
	return buf, nil
}

func (h *Header) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	buf[6] = byte(h.Compression)
	buf[7] = 0
	binary.LittleEndian.PutUint64(buf[8:16], h.Count)
	binary.LittleEndian.PutUint32(buf[16:20], h.RawLen)
	binary.LittleEndian.PutUint32(buf[20:24], h.PayloadLen)
	binary.LittleEndian.PutUint32(buf[checksumOffset:], h.Checksum)
	clear(buf[28:32])
}

// UnmarshalBinary decodes and validates a header.
func (h *Header) UnmarshalBinary(buf []byte) error {
	if len(buf) < HeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderSize, len(buf))
	}

	h.Magic = binary.LittleEndian.Uint32(buf[0:4])
	h.Version = binary.LittleEndian.Uint16(buf[4:6])
	h.Compression = compress.Type(buf[6])
	h.Count = binary.LittleEndian.Uint64(buf[8:16])
	h.RawLen = binary.LittleEndian.Uint32(buf[16:20])
	h.PayloadLen = binary.LittleEndian.Uint32(buf[20:24])
	h.Checksum = binary.LittleEndian.Uint32(buf[24:28])

	return h.validate()
}

func (h *Header) validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("%w: 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != Version {
		return fmt.Errorf("%w: %d", ErrInvalidVersion, h.Version)
	}
	if h.Count > uint64(maxRecordTuples) || h.Count*resource.TupleBytes != uint64(h.RawLen) {
		return fmt.Errorf("%w: %d tuples in %d raw bytes", ErrCorrupt, h.Count, h.RawLen)
	}
	if h.Compression == compress.None && h.PayloadLen != h.RawLen {
		return fmt.Errorf("%w: uncompressed payload of %d bytes, want %d", ErrCorrupt, h.PayloadLen, h.RawLen)
	}
	if uint64(h.RawLen) > compress.MaxDecompressedLen(h.Compression, uint64(h.PayloadLen)) {
		return fmt.Errorf("%w: %d payload bytes cannot expand to %d", ErrCorrupt, h.PayloadLen, h.RawLen)
	}
	return nil
}

// maxRecordTuples keeps RawLen within uint32.
const maxRecordTuples = (1<<32 - 1) / resource.TupleBytes
