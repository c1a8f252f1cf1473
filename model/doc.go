// Package model defines the value types shared by fields, peers and the engine.
//
// # Value Types
//
//   - Vec3: a 3-component float32 tuple (x, y, z)
//   - SFVec3: a single-vector value object with a get/set contract
//
// # Identity Types
//
//   - Handle: opaque reference from a field wrapper to its peer storage
//
// # Projections
//
// A sequence of Vec3 has a flat view of 3*len floats. Flatten and AppendFlat
// produce the flat view; Pack and Unpack go the other way:
//
//	flat := model.Flatten([]model.Vec3{{1, 2, 3}, {4, 5, 6}})
//	// flat == []float32{1, 2, 3, 4, 5, 6}
//	tuples := model.Pack(flat, 2)
package model
