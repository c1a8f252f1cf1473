// Package compress provides block compression for persisted field payloads.
package compress

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type identifies a block compression algorithm.
type Type uint8

const (
	// None stores the block as is.
	None Type = 0
	// LZ4 favors speed.
	LZ4 Type = 1
	// ZSTD favors ratio.
	ZSTD Type = 2
)

// String returns the algorithm name.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compress.Type(%d)", uint8(t))
	}
}

var (
	// ErrUnknownType is returned for an unsupported algorithm.
	ErrUnknownType = errors.New("unknown compression type")

	// ErrSizeMismatch is returned when a block does not decompress to its recorded size.
	ErrSizeMismatch = errors.New("decompressed size mismatch")
)

// minRatio is the largest compressed/raw ratio worth keeping.
const minRatio = 0.9

// lz4MaxExpansion bounds how many bytes one LZ4 block byte can decode to.
// A match length extension byte adds at most 255 bytes of output.
const lz4MaxExpansion = 255

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// Compress compresses data with t. It returns the payload and the algorithm
// actually used: None when t is None, data is empty, or compression saves
// less than 10%.
func Compress(data []byte, t Type) ([]byte, Type, error) {
	if t == None || len(data) == 0 {
		return data, None, nil
	}

	var (
		out []byte
		err error
	)
	switch t {
	case LZ4:
		out, err = compressLZ4(data)
	case ZSTD:
		out, err = compressZSTD(data)
	default:
		return nil, None, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
	if err != nil {
		return nil, None, err
	}

	if len(out) == 0 || float64(len(out)) > float64(len(data))*minRatio {
		return data, None, nil
	}
	return out, t, nil
}

// MaxDecompressedLen returns the largest size a payload of payloadLen bytes
// compressed with t can restore to. Unknown types and ZSTD, whose frames
// declare their own size, report math.MaxUint64.
func MaxDecompressedLen(t Type, payloadLen uint64) uint64 {
	switch t {
	case None:
		return payloadLen
	case LZ4:
		if payloadLen > math.MaxUint64/lz4MaxExpansion {
			return math.MaxUint64
		}
		return payloadLen * lz4MaxExpansion
	default:
		return math.MaxUint64
	}
}

// Decompress restores a payload produced by Compress. rawLen is the size of
// the original data. Sizes the payload cannot decode to are rejected before
// the output buffer is allocated.
func Decompress(payload []byte, t Type, rawLen int) ([]byte, error) {
	if rawLen < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrSizeMismatch, rawLen)
	}

	switch t {
	case None:
		if len(payload) != rawLen {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, len(payload), rawLen)
		}
		return payload, nil

	case LZ4:
		if uint64(rawLen) > MaxDecompressedLen(LZ4, uint64(len(payload))) {
			return nil, fmt.Errorf("%w: %d bytes cannot expand to %d", ErrSizeMismatch, len(payload), rawLen)
		}
		out := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, err
		}
		if n != rawLen {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, n, rawLen)
		}
		return out, nil

	case ZSTD:
		var hdr zstd.Header
		if err := hdr.Decode(payload); err != nil {
			return nil, err
		}
		if !hdr.HasFCS || hdr.FrameContentSize != uint64(rawLen) {
			return nil, fmt.Errorf("%w: frame declares %d, want %d", ErrSizeMismatch, hdr.FrameContentSize, rawLen)
		}

		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(payload, make([]byte, 0, rawLen))
		if err != nil {
			return nil, err
		}
		if len(out) != rawLen {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, len(out), rawLen)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	out := make([]byte, lz4.CompressBlockBound(len(data)))

	n, err := lz4.CompressBlock(data, out, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return out[:n], nil
}

func compressZSTD(data []byte) ([]byte, error) {
	enc, err := getZstdEncoder()
	if err != nil {
		return nil, err
	}
	defer zstdEncoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}
