package mfvec

import (
	"context"
	"time"

	"github.com/hupe1980/mfvec/model"
	"github.com/hupe1980/mfvec/peer"
)

// Source is a field whose current value can be copied.
// *Field and *ConstField implement it.
type Source interface {
	Tuples() ([]model.Vec3, error)
}

var (
	_ Source = (*Field)(nil)
	_ Source = (*ConstField)(nil)
)

// Field is a multi-value Vec3 field bound to a peer.
//
// The field holds no copy of its value: every read goes to the peer and every
// write reaches the peer before the call returns.
//
// A Field is not safe for concurrent use.
type Field struct {
	peer    peer.Peer
	splicer peer.Splicer       // nil if the peer cannot splice
	reader  peer.ElementReader // nil if the peer cannot read single tuples
	handle  model.Handle

	released bool

	logger  *Logger
	metrics MetricsCollector
}

func newField(o options, h model.Handle) *Field {
	f := &Field{
		peer:    o.peer,
		handle:  h,
		logger:  o.logger,
		metrics: o.metricsCollector,
	}
	f.splicer, _ = o.peer.(peer.Splicer)
	f.reader, _ = o.peer.(peer.ElementReader)
	return f
}

// Handle returns the peer handle owned by the field.
func (f *Field) Handle() model.Handle {
	return f.handle
}

// Len returns the number of tuples.
func (f *Field) Len() (int, error) {
	if f.released {
		return 0, ErrReleased
	}
	n, err := f.peer.Size(f.handle)
	return n, translateError(err)
}

// Tuples returns a copy of the current value.
func (f *Field) Tuples() ([]model.Vec3, error) {
	if f.released {
		return nil, ErrReleased
	}

	start := time.Now()
	tuples, err := f.peer.Read(f.handle)
	err = translateError(err)
	f.metrics.RecordRead(len(tuples), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return tuples, nil
}

// Flat returns a copy of the current value as 3*Len() floats.
func (f *Field) Flat() ([]float32, error) {
	tuples, err := f.Tuples()
	if err != nil {
		return nil, err
	}
	return model.Flatten(tuples), nil
}

// Get copies the current value into dst and returns the number of tuples
// copied. dst must hold at least Len() tuples.
func (f *Field) Get(dst []model.Vec3) (int, error) {
	tuples, err := f.Tuples()
	if err != nil {
		return 0, err
	}
	if len(dst) < len(tuples) {
		return 0, &BufferError{Required: len(tuples), Actual: len(dst)}
	}
	return copy(dst, tuples), nil
}

// GetFlat copies the flat view of the current value into dst and returns the
// number of floats copied. dst must hold at least 3*Len() floats.
func (f *Field) GetFlat(dst []float32) (int, error) {
	tuples, err := f.Tuples()
	if err != nil {
		return 0, err
	}
	n := len(tuples) * model.Components
	if len(dst) < n {
		return 0, &BufferError{Required: n, Actual: len(dst)}
	}
	model.AppendFlat(dst[:0], tuples)
	return n, nil
}

// At returns the tuple at index, 0 <= index < Len().
func (f *Field) At(index int) (model.Vec3, error) {
	if f.released {
		return model.Vec3{}, ErrReleased
	}

	start := time.Now()
	v, err := f.at(index)
	f.metrics.RecordRead(1, time.Since(start), err)
	return v, err
}

func (f *Field) at(index int) (model.Vec3, error) {
	if f.reader != nil {
		size, err := f.peer.Size(f.handle)
		if err != nil {
			return model.Vec3{}, translateError(err)
		}
		if index < 0 || index >= size {
			return model.Vec3{}, &IndexError{Op: "at", Index: index, Size: size}
		}
		v, err := f.reader.ReadAt(f.handle, index)
		return v, translateError(err)
	}

	tuples, err := f.peer.Read(f.handle)
	if err != nil {
		return model.Vec3{}, translateError(err)
	}
	if index < 0 || index >= len(tuples) {
		return model.Vec3{}, &IndexError{Op: "at", Index: index, Size: len(tuples)}
	}
	return tuples[index], nil
}

// AtInto writes the three components of the tuple at index into dst.
func (f *Field) AtInto(index int, dst []float32) error {
	if len(dst) < model.Components {
		return &BufferError{Required: model.Components, Actual: len(dst)}
	}
	v, err := f.At(index)
	if err != nil {
		return err
	}
	copy(dst, v[:])
	return nil
}

// Set replaces the value with a copy of tuples.
func (f *Field) Set(tuples []model.Vec3) error {
	return f.write("set", tuples)
}

// SetFlat replaces the value with the first 3*size floats of flat.
// It fails with ErrInvalidArgument if size < 0 or len(flat) < 3*size.
func (f *Field) SetFlat(flat []float32, size int) error {
	if err := checkFlat("set", flat, size); err != nil {
		return err
	}
	return f.write("set", model.Pack(flat, size))
}

// SetPacked replaces the value with len(flat)/3 tuples read from flat.
// Trailing floats that do not form a complete tuple are ignored.
func (f *Field) SetPacked(flat []float32) error {
	return f.write("set", model.Pack(flat, model.PackedLen(len(flat))))
}

// SetFrom replaces the value with a snapshot of src's current value.
func (f *Field) SetFrom(src Source) error {
	if f.released {
		return ErrReleased
	}
	if isNilSource(src) {
		return &ArgumentError{Op: "set", Reason: "nil source"}
	}
	tuples, err := src.Tuples()
	if err != nil {
		return err
	}
	return f.write("set", tuples)
}

// Clear removes all tuples and releases their storage.
func (f *Field) Clear() error {
	return f.write("clear", nil)
}

func (f *Field) write(op string, tuples []model.Vec3) error {
	if f.released {
		return ErrReleased
	}

	start := time.Now()
	err := translateError(f.peer.Write(f.handle, tuples))
	f.metrics.RecordWrite(op, len(tuples), time.Since(start), err)
	f.logger.LogWrite(context.Background(), op, f.handle, err)
	return err
}

// SetAt replaces the tuple at index, 0 <= index < Len().
func (f *Field) SetAt(index int, v model.Vec3) error {
	return f.splice("set", index, false, 1, v)
}

// DeleteAt removes the tuple at index, 0 <= index < Len(), and shifts the
// following tuples down by one.
func (f *Field) DeleteAt(index int) error {
	return f.splice("delete", index, false, 1)
}

// Append adds v after the last tuple.
func (f *Field) Append(v model.Vec3) error {
	return f.splice("append", 0, true, 0, v)
}

// InsertAt inserts v at index, 0 <= index <= Len(), and shifts the tuples at
// and after index up by one. index == Len() appends.
func (f *Field) InsertAt(index int, v model.Vec3) error {
	return f.splice("insert", index, false, 0, v)
}

// splice is the single mutation path of all positional edits. atEnd
// places the edit after the last tuple, ignoring index.
func (f *Field) splice(op string, index int, atEnd bool, remove int, insert ...model.Vec3) error {
	if f.released {
		return ErrReleased
	}

	start := time.Now()
	err := f.doSplice(op, index, atEnd, remove, insert)
	f.metrics.RecordWrite(op, len(insert), time.Since(start), err)
	f.logger.LogWrite(context.Background(), op, f.handle, err)
	return err
}

func (f *Field) doSplice(op string, index int, atEnd bool, remove int, insert []model.Vec3) error {
	if f.splicer != nil {
		size, err := f.peer.Size(f.handle)
		if err != nil {
			return translateError(err)
		}
		if atEnd {
			index = size
		}
		if err := checkSplice(op, index, remove, size); err != nil {
			return err
		}
		return translateError(f.splicer.Splice(f.handle, index, remove, insert...))
	}

	tuples, err := f.peer.Read(f.handle)
	if err != nil {
		return translateError(err)
	}
	if atEnd {
		index = len(tuples)
	}
	if err := checkSplice(op, index, remove, len(tuples)); err != nil {
		return err
	}

	out := make([]model.Vec3, 0, len(tuples)-remove+len(insert))
	out = append(out, tuples[:index]...)
	out = append(out, insert...)
	out = append(out, tuples[index+remove:]...)
	return translateError(f.peer.Write(f.handle, out))
}

// checkSplice validates index against size: positions holding a tuple for
// edits that remove one, and 0..size for pure inserts.
func checkSplice(op string, index, remove, size int) error {
	if index < 0 || index > size || remove > size-index {
		return &IndexError{Op: op, Index: index, Size: size}
	}
	return nil
}

func checkFlat(op string, flat []float32, size int) error {
	if size < 0 || size > len(flat)/model.Components {
		return &ArgumentError{Op: op, Size: size, Length: len(flat)}
	}
	return nil
}

// Const returns a read-only snapshot of the field bound on the same peer.
func (f *Field) Const() (*ConstField, error) {
	return NewConst(f, WithPeer(f.peer), WithLogger(f.logger), WithMetricsCollector(f.metrics))
}

// Close releases the field's peer handle. Close is idempotent; every other
// operation on a closed field returns ErrReleased.
func (f *Field) Close() error {
	if f.released {
		return nil
	}
	f.released = true

	err := translateError(f.peer.Unbind(f.handle))
	f.metrics.RecordRelease(err)
	f.logger.LogRelease(context.Background(), f.handle, err)
	return err
}
