package model

// Vec3Getter is implemented by single-vector values that can be read.
type Vec3Getter interface {
	Value() Vec3
}

// Vec3Setter is implemented by single-vector values that can be written.
type Vec3Setter interface {
	SetValue(v Vec3)
}

// SFVec3 is a single-value vector field: one Vec3 with a get/set contract.
// The zero value is (0, 0, 0).
type SFVec3 struct {
	v Vec3
}

// NewSFVec3 returns an SFVec3 holding (x, y, z).
func NewSFVec3(x, y, z float32) *SFVec3 {
	return &SFVec3{v: Vec3{x, y, z}}
}

// Value returns the held vector.
func (s *SFVec3) Value() Vec3 { return s.v }

// SetValue replaces the held vector.
func (s *SFVec3) SetValue(v Vec3) { s.v = v }

// ValueInto writes the three components into dst, which must have room for them.
func (s *SFVec3) ValueInto(dst []float32) {
	copy(dst[:Components], s.v[:])
}

// ConstSFVec3 is a read-only single-value vector.
type ConstSFVec3 struct {
	v Vec3
}

// NewConstSFVec3 returns a read-only SFVec3 holding v.
func NewConstSFVec3(v Vec3) ConstSFVec3 {
	return ConstSFVec3{v: v}
}

// Value returns the held vector.
func (c ConstSFVec3) Value() Vec3 { return c.v }
