// Package mfvec provides multi-value Vec3 fields: ordered, mutable sequences
// of 3-component float32 tuples whose authoritative value lives in an
// external store (the peer).
//
// A Field is what a scene-graph node uses for positions, normals, colors or
// any other per-vertex vector data. It can be addressed as a sequence of
// tuples, as a flat []float32 with three floats per tuple, or element by
// element.
//
// # Quick Start
//
//	f, _ := mfvec.New()
//	defer f.Close()
//
//	_ = f.Append(model.V(1, 2, 3))
//	_ = f.Append(model.V(4, 5, 6))
//	_ = f.InsertAt(1, model.V(7, 8, 9))
//
//	flat, _ := f.Flat() // [1 2 3 7 8 9 4 5 6]
//
// # Construction
//
//	mfvec.New()                    // empty
//	mfvec.FromTuples(tuples)       // copy of tuples
//	mfvec.FromFlat(flat, size)     // first 3*size floats; error if too short
//	mfvec.FromPacked(flat)         // len(flat)/3 tuples; a trailing partial tuple is dropped
//	mfvec.Copy(other)              // snapshot of another field
//	mfvec.NewConst(other)          // read-only snapshot
//
// # Peers
//
// Every field binds exactly one handle on a peer.Peer at construction and
// releases it on Close. Reads always go to the peer, so changes made by the
// engine between calls are observed. Without WithPeer, fields use the
// process-wide engine.Default().
//
//	eng := engine.New(func(o *engine.Options) {
//	    o.Resource = resource.NewController(resource.Config{MemoryLimitBytes: 64 << 20})
//	})
//	f, err := mfvec.FromTuples(normals, mfvec.WithPeer(eng))
//
// # Errors
//
// Every operation either succeeds completely or returns an error matching one
// of ErrInvalidArgument, ErrIndexOutOfRange, ErrBufferTooSmall or
// ErrAllocationFailure, and leaves the value unchanged. Operations on a closed
// field return ErrReleased.
//
// # Concurrency
//
// A Field must not be used from multiple goroutines at once. Distinct fields,
// including fields sharing one engine, are independent.
package mfvec
