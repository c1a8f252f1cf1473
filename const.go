package mfvec

import (
	"github.com/hupe1980/mfvec/model"
)

// ConstField is a read-only multi-value Vec3 field.
//
// It holds the value its source had when it was created and does not follow
// later changes of the source. It owns its own handle and must be closed.
type ConstField struct {
	f *Field
}

// NewConst creates a read-only snapshot of src.
func NewConst(src Source, optFns ...Option) (*ConstField, error) {
	f, err := Copy(src, optFns...)
	if err != nil {
		return nil, err
	}
	return &ConstField{f: f}, nil
}

// Handle returns the peer handle owned by the field.
func (c *ConstField) Handle() model.Handle { return c.f.Handle() }

// Len returns the number of tuples.
func (c *ConstField) Len() (int, error) { return c.f.Len() }

// Tuples returns a copy of the value.
func (c *ConstField) Tuples() ([]model.Vec3, error) { return c.f.Tuples() }

// Flat returns a copy of the value as 3*Len() floats.
func (c *ConstField) Flat() ([]float32, error) { return c.f.Flat() }

// Get copies the value into dst. See Field.Get.
func (c *ConstField) Get(dst []model.Vec3) (int, error) { return c.f.Get(dst) }

// GetFlat copies the flat view of the value into dst. See Field.GetFlat.
func (c *ConstField) GetFlat(dst []float32) (int, error) { return c.f.GetFlat(dst) }

// At returns the tuple at index.
func (c *ConstField) At(index int) (model.Vec3, error) { return c.f.At(index) }

// AtInto writes the tuple at index into dst.
func (c *ConstField) AtInto(index int, dst []float32) error { return c.f.AtInto(index, dst) }

// AtTo stores the tuple at index in dst.
func (c *ConstField) AtTo(index int, dst model.Vec3Setter) error { return c.f.AtTo(index, dst) }

// Close releases the field's peer handle.
func (c *ConstField) Close() error { return c.f.Close() }
