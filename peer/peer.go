package peer

import (
	"errors"
	"fmt"

	"github.com/hupe1980/mfvec/model"
)

var (
	// ErrAllocationFailure is returned when storage cannot be obtained or grown.
	ErrAllocationFailure = errors.New("peer storage allocation failed")

	// ErrUnknownHandle is returned for a handle that was never bound or has been unbound.
	ErrUnknownHandle = errors.New("unknown peer handle")

	// ErrIndexOutOfRange is returned when a positional access does not fit the current value.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidSize is returned for a negative size.
	ErrInvalidSize = errors.New("invalid size")
)

// Peer is the authoritative store backing field values.
//
// Implementations must be safe for concurrent use across distinct handles.
// Read must return a copy: callers may retain and modify it.
type Peer interface {
	// Bind allocates storage for initialSize zero tuples and returns its handle.
	Bind(initialSize int) (model.Handle, error)

	// Unbind releases the storage of h. After Unbind, h is invalid.
	Unbind(h model.Handle) error

	// Read returns a snapshot of the current value of h.
	Read(h model.Handle) ([]model.Vec3, error)

	// Write atomically replaces the value of h with tuples.
	Write(h model.Handle, tuples []model.Vec3) error

	// Size returns the number of tuples currently held by h.
	Size(h model.Handle) (int, error)
}

// Splicer is implemented by peers that can apply a positional edit in place.
//
// Splice removes `remove` tuples starting at index and inserts `insert` at the
// same position. It requires 0 <= index, 0 <= remove and index+remove <= size;
// otherwise it fails with ErrIndexOutOfRange and leaves the value unchanged.
type Splicer interface {
	Splice(h model.Handle, index, remove int, insert ...model.Vec3) error
}

// ElementReader is implemented by peers that can read a single tuple without
// copying the whole value. It fails with ErrIndexOutOfRange unless
// 0 <= index < size.
type ElementReader interface {
	ReadAt(h model.Handle, index int) (model.Vec3, error)
}

// HandleError annotates a peer error with the handle it concerns.
//
// The original underlying error can be accessed via errors.Unwrap.
type HandleError struct {
	Op     string
	Handle model.Handle
	cause  error
}

// NewHandleError returns a HandleError for op on h caused by err.
func NewHandleError(op string, h model.Handle, err error) *HandleError {
	return &HandleError{Op: op, Handle: h, cause: err}
}

func (e *HandleError) Error() string {
	return fmt.Sprintf("peer %s %s: %v", e.Op, e.Handle, e.cause)
}

func (e *HandleError) Unwrap() error { return e.cause }
