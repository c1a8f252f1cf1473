package model

import (
	"fmt"
)

// Components is the number of float32 components in a Vec3.
const Components = 3

// Vec3 is a 3-component float tuple. It is a value type with no identity.
type Vec3 [Components]float32

// V returns the Vec3 (x, y, z).
func V(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

// X returns the first component.
func (v Vec3) X() float32 { return v[0] }

// Y returns the second component.
func (v Vec3) Y() float32 { return v[1] }

// Z returns the third component.
func (v Vec3) Z() float32 { return v[2] }

// String returns a string representation of the Vec3.
func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
}

// Handle is an opaque reference binding a field wrapper to its peer storage.
// The zero Handle is never issued by a peer.
type Handle uint32

// String returns a string representation of the Handle.
func (h Handle) String() string {
	return fmt.Sprintf("Handle(%d)", uint32(h))
}

// Flatten returns the flat view of tuples: 3*len(tuples) floats in tuple order.
func Flatten(tuples []Vec3) []float32 {
	return AppendFlat(make([]float32, 0, len(tuples)*Components), tuples)
}

// AppendFlat appends the flat view of tuples to dst and returns the extended slice.
func AppendFlat(dst []float32, tuples []Vec3) []float32 {
	for _, t := range tuples {
		dst = append(dst, t[0], t[1], t[2])
	}
	return dst
}

// Pack groups the first 3*size floats of flat into size tuples.
// The caller must ensure len(flat) >= 3*size.
func Pack(flat []float32, size int) []Vec3 {
	tuples := make([]Vec3, size)
	for i := range tuples {
		copy(tuples[i][:], flat[i*Components:(i+1)*Components])
	}
	return tuples
}

// PackedLen returns the number of complete tuples in a flat buffer of n floats.
// Trailing partial tuples are not counted.
func PackedLen(n int) int {
	return n / Components
}

// Clone returns a copy of tuples. A nil input yields an empty, non-nil slice.
func Clone(tuples []Vec3) []Vec3 {
	out := make([]Vec3, len(tuples))
	copy(out, tuples)
	return out
}
