// Package testutil provides testing utilities for mfvec.
//
// This package is intended for use in tests and benchmarks only.
//
//	rng := testutil.NewRNG(seed)
//	tuples := rng.UniformTuples(100)        // components in [0, 1)
//	normals := rng.UnitTuples(100)          // unit length
//	flat := rng.Flat(100)                   // 300 floats
package testutil
