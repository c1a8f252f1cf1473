package mfvec

import (
	"errors"
	"fmt"

	"github.com/hupe1980/mfvec/peer"
)

var (
	// ErrInvalidArgument is returned for a malformed size/length relationship.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIndexOutOfRange is returned when an index is outside the valid range.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrBufferTooSmall is returned when a destination cannot hold the result.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrAllocationFailure is returned when peer storage cannot be obtained or grown.
	ErrAllocationFailure = errors.New("allocation failure")

	// ErrReleased is returned by operations on a field after Close.
	ErrReleased = errors.New("field released")
)

// IndexError reports an index outside the valid range of an operation.
type IndexError struct {
	Op    string
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range for size %d", e.Op, e.Index, e.Size)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// BufferError reports a destination buffer that is too small.
type BufferError struct {
	Required int
	Actual   int
}

func (e *BufferError) Error() string {
	return fmt.Sprintf("buffer too small: need %d, have %d", e.Required, e.Actual)
}

func (e *BufferError) Unwrap() error { return ErrBufferTooSmall }

// ArgumentError reports a malformed argument, most often a flat buffer whose
// length does not cover the requested size.
type ArgumentError struct {
	Op     string
	Size   int
	Length int
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	if e.Size < 0 {
		return fmt.Sprintf("%s: negative size %d", e.Op, e.Size)
	}
	return fmt.Sprintf("%s: %d tuples need %d floats, have %d", e.Op, e.Size, 3*e.Size, e.Length)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, peer.ErrAllocationFailure):
		return fmt.Errorf("%w: %w", ErrAllocationFailure, err)
	case errors.Is(err, peer.ErrIndexOutOfRange):
		return fmt.Errorf("%w: %w", ErrIndexOutOfRange, err)
	case errors.Is(err, peer.ErrUnknownHandle):
		return fmt.Errorf("%w: %w", ErrReleased, err)
	case errors.Is(err, peer.ErrInvalidSize):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return err
}
