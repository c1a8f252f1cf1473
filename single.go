package mfvec

import (
	"github.com/hupe1980/mfvec/model"
)

// AtTo stores the tuple at index in dst, typically a *model.SFVec3.
func (f *Field) AtTo(index int, dst model.Vec3Setter) error {
	if dst == nil {
		return &ArgumentError{Op: "at", Reason: "nil destination"}
	}
	v, err := f.At(index)
	if err != nil {
		return err
	}
	dst.SetValue(v)
	return nil
}

// SetAtFrom replaces the tuple at index with the value of src.
func (f *Field) SetAtFrom(index int, src model.Vec3Getter) error {
	if src == nil {
		return &ArgumentError{Op: "set", Reason: "nil source"}
	}
	return f.SetAt(index, src.Value())
}

// AppendFrom appends the value of src.
func (f *Field) AppendFrom(src model.Vec3Getter) error {
	if src == nil {
		return &ArgumentError{Op: "append", Reason: "nil source"}
	}
	return f.Append(src.Value())
}

// InsertAtFrom inserts the value of src at index.
func (f *Field) InsertAtFrom(index int, src model.Vec3Getter) error {
	if src == nil {
		return &ArgumentError{Op: "insert", Reason: "nil source"}
	}
	return f.InsertAt(index, src.Value())
}
