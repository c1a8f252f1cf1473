package persistence

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/mfvec/internal/compress"
	"github.com/hupe1980/mfvec/model"
	"github.com/hupe1980/mfvec/resource"
)

// EncodeField encodes tuples as a field record compressed with c.
func EncodeField(tuples []model.Vec3, c compress.Type) ([]byte, error) {
	if len(tuples) > maxRecordTuples {
		return nil, fmt.Errorf("%w: %d tuples exceed record limit", ErrCorrupt, len(tuples))
	}

	raw := make([]byte, len(tuples)*resource.TupleBytes)
	for i, v := range tuples {
		off := i * resource.TupleBytes
		binary.LittleEndian.PutUint32(raw[off:], math.Float32bits(v[0]))
		binary.LittleEndian.PutUint32(raw[off+4:], math.Float32bits(v[1]))
		binary.LittleEndian.PutUint32(raw[off+8:], math.Float32bits(v[2]))
	}

	payload, used, err := compress.Compress(raw, c)
	if err != nil {
		return nil, fmt.Errorf("compress field: %w", err)
	}

	h := Header{
		Magic:       Magic,
		Version:     Version,
		Compression: used,
		Count:       uint64(len(tuples)),
		RawLen:      uint32(len(raw)),
		PayloadLen:  uint32(len(payload)),
	}

	out := make([]byte, HeaderSize+len(payload))
	h.put(out)
	copy(out[HeaderSize:], payload)
	binary.LittleEndian.PutUint32(out[checksumOffset:], recordChecksum(out, payload))
	return out, nil
}

// WriteField encodes tuples and writes the record to w.
func WriteField(w io.Writer, tuples []model.Vec3, c compress.Type) (int64, error) {
	data, err := EncodeField(tuples, c)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// DecodeField decodes a field record.
func DecodeField(data []byte) ([]model.Vec3, error) {
	return decodeField("", data, nil)
}

// decodeField validates and decodes a record. When want is set, the record
// must match that manifest entry before anything is decompressed.
func decodeField(name string, data []byte, want *FieldEntry) ([]model.Vec3, error) {
	var h Header
	if err := h.UnmarshalBinary(data); err != nil {
		return nil, err
	}

	if want != nil {
		if h.Count != want.Count || h.Checksum != want.Checksum || int64(len(data)) != want.Size {
			return nil, fmt.Errorf("%w: %s does not match manifest", ErrCorrupt, name)
		}
	}

	payload := data[HeaderSize:]
	if uint64(len(payload)) != uint64(h.PayloadLen) {
		return nil, fmt.Errorf("%w: payload has %d bytes, header says %d", ErrTruncated, len(payload), h.PayloadLen)
	}
	if err := verifyChecksum(name, data, payload, h.Checksum); err != nil {
		return nil, err
	}

	raw, err := compress.Decompress(payload, h.Compression, int(h.RawLen))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	tuples := make([]model.Vec3, h.Count)
	for i := range tuples {
		off := i * resource.TupleBytes
		tuples[i] = model.Vec3{
			math.Float32frombits(binary.LittleEndian.Uint32(raw[off:])),
			math.Float32frombits(binary.LittleEndian.Uint32(raw[off+4:])),
			math.Float32frombits(binary.LittleEndian.Uint32(raw[off+8:])),
		}
	}
	return tuples, nil
}
