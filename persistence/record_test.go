package persistence

import (
	"bytes"
	"encoding/binary"
	"math"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mfvec/internal/compress"
	"github.com/hupe1980/mfvec/model"
	"github.com/hupe1980/mfvec/resource"
	"github.com/hupe1980/mfvec/testutil"
)

func TestHeader_Layout(t *testing.T) {
	h := Header{
		Magic:       Magic,
		Version:     Version,
		Compression: compress.LZ4,
		Count:       7,
		RawLen:      84,
		PayloadLen:  40,
		Checksum:    0xdeadbeef,
	}

	buf, err := h.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, buf, HeaderSize)

	assert.Equal(t, []byte("MFV3"), buf[0:4])
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(buf[4:6]))
	assert.Equal(t, byte(compress.LZ4), buf[6])
	assert.Equal(t, uint64(7), binary.LittleEndian.Uint64(buf[8:16]))
	assert.Equal(t, uint32(0xdeadbeef), binary.LittleEndian.Uint32(buf[24:28]))

	var got Header
	require.NoError(t, got.UnmarshalBinary(buf))
	assert.Equal(t, h, got)
}

func TestHeader_Validate(t *testing.T) {
	valid := Header{Magic: Magic, Version: Version, Count: 2, RawLen: 24, PayloadLen: 24}

	tests := []struct {
		name   string
		mutate func(h *Header)
		want   error
	}{
		{"BadMagic", func(h *Header) { h.Magic = 0x56454330 }, ErrInvalidMagic},
		{"BadVersion", func(h *Header) { h.Version = 9 }, ErrInvalidVersion},
		{"CountRawMismatch", func(h *Header) { h.RawLen = 25 }, ErrCorrupt},
		{"RawPayloadMismatch", func(h *Header) { h.PayloadLen = 12 }, ErrCorrupt},
		{"LZ4Expansion", func(h *Header) { h.Compression = compress.LZ4; h.PayloadLen = 0 }, ErrCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := valid
			tt.mutate(&h)
			buf, err := h.MarshalBinary()
			require.NoError(t, err)

			var got Header
			assert.ErrorIs(t, got.UnmarshalBinary(buf), tt.want)
		})
	}

	t.Run("Short", func(t *testing.T) {
		var got Header
		assert.ErrorIs(t, got.UnmarshalBinary(make([]byte, 10)), ErrTruncated)
	})
}

func TestField_RoundTrip(t *testing.T) {
	rng := testutil.NewRNG(4711)

	inputs := map[string][]model.Vec3{
		"Empty":  nil,
		"Single": {model.V(1, 2, 3)},
		"Random": rng.UniformTuples(257),
		"Grid":   testutil.Grid(32, 0.25),
		"Special": {
			model.V(float32(math.Inf(1)), float32(math.Inf(-1)), -0),
			model.V(math.MaxFloat32, math.SmallestNonzeroFloat32, -1),
		},
	}

	for _, c := range []compress.Type{compress.None, compress.LZ4, compress.ZSTD} {
		for name, tuples := range inputs {
			t.Run(c.String()+"/"+name, func(t *testing.T) {
				data, err := EncodeField(tuples, c)
				require.NoError(t, err)

				got, err := DecodeField(data)
				require.NoError(t, err)
				assert.Len(t, got, len(tuples))
				for i := range tuples {
					assert.Equal(t, math.Float32bits(tuples[i][0]), math.Float32bits(got[i][0]))
					assert.Equal(t, math.Float32bits(tuples[i][1]), math.Float32bits(got[i][1]))
					assert.Equal(t, math.Float32bits(tuples[i][2]), math.Float32bits(got[i][2]))
				}
			})
		}
	}
}

func TestField_CompressesRepetitiveData(t *testing.T) {
	tuples := make([]model.Vec3, 4096)
	for i := range tuples {
		tuples[i] = model.V(0, 1, 0)
	}

	data, err := EncodeField(tuples, compress.ZSTD)
	require.NoError(t, err)

	var h Header
	require.NoError(t, h.UnmarshalBinary(data))
	assert.Equal(t, compress.ZSTD, h.Compression)
	assert.Less(t, h.PayloadLen, h.RawLen)
}

func TestField_ChecksumMismatch(t *testing.T) {
	data, err := EncodeField([]model.Vec3{model.V(1, 2, 3), model.V(4, 5, 6)}, compress.None)
	require.NoError(t, err)

	data[HeaderSize+5] ^= 0xff

	_, err = DecodeField(data)
	require.Error(t, err)
	assert.True(t, IsChecksumMismatch(err))
	assert.ErrorIs(t, err, ErrCorrupt)
}

// forgeRecord frames payload under h with a checksum that matches.
func forgeRecord(h Header, payload []byte) []byte {
	h.PayloadLen = uint32(len(payload))
	out := make([]byte, HeaderSize+len(payload))
	h.put(out)
	copy(out[HeaderSize:], payload)
	binary.LittleEndian.PutUint32(out[checksumOffset:], recordChecksum(out, payload))
	return out
}

func allocatedBy(fn func()) uint64 {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)
	return after.TotalAlloc - before.TotalAlloc
}

func TestField_HeaderCorruption(t *testing.T) {
	tuples := make([]model.Vec3, 4096)
	for i := range tuples {
		tuples[i] = model.V(0, 1, 0)
	}

	original, err := EncodeField(tuples, compress.LZ4)
	require.NoError(t, err)

	var h Header
	require.NoError(t, h.UnmarshalBinary(original))
	require.Equal(t, compress.LZ4, h.Compression)

	setCount := func(data []byte, count uint64) {
		binary.LittleEndian.PutUint64(data[8:16], count)
		binary.LittleEndian.PutUint32(data[16:20], uint32(count*resource.TupleBytes))
	}

	tests := []struct {
		name     string
		mutate   func(data []byte)
		checksum bool
	}{
		{"CountShrunk", func(data []byte) { setCount(data, h.Count-1) }, true},
		{"CountHuge", func(data []byte) { setCount(data, 100_000_000) }, false},
		{"Compression", func(data []byte) { data[6] = byte(compress.ZSTD) }, true},
		{"Reserved", func(data []byte) { data[7] = 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := bytes.Clone(original)
			tt.mutate(data)

			var decodeErr error
			allocated := allocatedBy(func() {
				_, decodeErr = DecodeField(data)
			})

			require.Error(t, decodeErr)
			assert.ErrorIs(t, decodeErr, ErrCorrupt)
			assert.Equal(t, tt.checksum, IsChecksumMismatch(decodeErr))
			assert.Less(t, allocated, uint64(1<<20))
		})
	}
}

func TestField_ForgedSizeRejectedBeforeAllocation(t *testing.T) {
	small := make([]byte, 1200)
	zstdPayload, used, err := compress.Compress(small, compress.ZSTD)
	require.NoError(t, err)
	require.Equal(t, compress.ZSTD, used)

	const hostileCount = 100_000_000
	hostile := Header{
		Magic:   Magic,
		Version: Version,
		Count:   hostileCount,
		RawLen:  hostileCount * resource.TupleBytes,
	}

	tests := []struct {
		name    string
		typ     compress.Type
		payload []byte
	}{
		{"LZ4", compress.LZ4, []byte{0, 0}},
		{"ZSTD", compress.ZSTD, zstdPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := hostile
			h.Compression = tt.typ
			data := forgeRecord(h, tt.payload)

			var decodeErr error
			allocated := allocatedBy(func() {
				_, decodeErr = DecodeField(data)
			})

			assert.ErrorIs(t, decodeErr, ErrCorrupt)
			assert.False(t, IsChecksumMismatch(decodeErr))
			assert.Less(t, allocated, uint64(1<<20))
		})
	}
}

func TestDecodeField_ManifestMismatch(t *testing.T) {
	data, err := EncodeField([]model.Vec3{model.V(1, 2, 3), model.V(4, 5, 6)}, compress.None)
	require.NoError(t, err)

	var h Header
	require.NoError(t, h.UnmarshalBinary(data))
	match := FieldEntry{Handle: 1, Count: h.Count, Blob: "f", Size: int64(len(data)), Checksum: h.Checksum}

	got, err := decodeField("f", data, &match)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	tests := []struct {
		name   string
		mutate func(e *FieldEntry)
	}{
		{"Count", func(e *FieldEntry) { e.Count = 3 }},
		{"Checksum", func(e *FieldEntry) { e.Checksum ^= 1 }},
		{"Size", func(e *FieldEntry) { e.Size++ }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := match
			tt.mutate(&want)

			_, err := decodeField("f", data, &want)
			assert.ErrorIs(t, err, ErrCorrupt)
			assert.ErrorContains(t, err, "does not match manifest")
		})
	}
}

func TestField_Truncated(t *testing.T) {
	data, err := EncodeField([]model.Vec3{model.V(1, 2, 3)}, compress.None)
	require.NoError(t, err)

	_, err = DecodeField(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestWriteField(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteField(&buf, []model.Vec3{model.V(1, 2, 3)}, compress.LZ4)
	require.NoError(t, err)
	assert.Equal(t, int64(HeaderSize+12), n)

	got, err := DecodeField(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []model.Vec3{model.V(1, 2, 3)}, got)
}
