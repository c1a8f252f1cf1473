package mfvec

import (
	"context"
	"time"

	"github.com/hupe1980/mfvec/model"
)

// New creates an empty field.
func New(optFns ...Option) (*Field, error) {
	return bind("new", nil, optFns)
}

// FromTuples creates a field holding a copy of tuples.
func FromTuples(tuples []model.Vec3, optFns ...Option) (*Field, error) {
	return bind("from_tuples", tuples, optFns)
}

// FromFlat creates a field of size tuples taken from the first 3*size floats
// of flat. It fails with ErrInvalidArgument if size < 0 or len(flat) < 3*size.
func FromFlat(flat []float32, size int, optFns ...Option) (*Field, error) {
	if err := checkFlat("from_flat", flat, size); err != nil {
		return nil, err
	}
	return bind("from_flat", model.Pack(flat, size), optFns)
}

// FromPacked creates a field of len(flat)/3 tuples. Trailing floats that do
// not form a complete tuple are ignored.
func FromPacked(flat []float32, optFns ...Option) (*Field, error) {
	return bind("from_packed", model.Pack(flat, model.PackedLen(len(flat))), optFns)
}

// Copy creates a field holding a snapshot of src's current value. The new
// field has its own handle and does not follow later changes of src.
func Copy(src Source, optFns ...Option) (*Field, error) {
	if isNilSource(src) {
		return nil, &ArgumentError{Op: "copy", Reason: "nil source"}
	}
	tuples, err := src.Tuples()
	if err != nil {
		return nil, err
	}
	return bind("copy", tuples, optFns)
}

// isNilSource reports whether src is nil or a nil field pointer.
func isNilSource(src Source) bool {
	switch s := src.(type) {
	case nil:
		return true
	case *Field:
		return s == nil
	case *ConstField:
		return s == nil || s.f == nil
	default:
		return false
	}
}

// bind allocates a handle and writes the initial value. A handle whose
// initial write fails is unbound again.
func bind(op string, tuples []model.Vec3, optFns []Option) (*Field, error) {
	o := applyOptions(optFns)
	ctx := context.Background()
	start := time.Now()

	h, err := o.peer.Bind(len(tuples))
	if err != nil {
		err = translateError(err)
		o.metricsCollector.RecordBind(time.Since(start), err)
		o.logger.LogBind(ctx, op, h, len(tuples), err)
		return nil, err
	}

	if len(tuples) > 0 {
		if err := o.peer.Write(h, tuples); err != nil {
			_ = o.peer.Unbind(h)
			err = translateError(err)
			o.metricsCollector.RecordBind(time.Since(start), err)
			o.logger.LogBind(ctx, op, h, len(tuples), err)
			return nil, err
		}
	}

	o.metricsCollector.RecordBind(time.Since(start), nil)
	o.logger.LogBind(ctx, op, h, len(tuples), nil)
	return newField(o, h), nil
}
