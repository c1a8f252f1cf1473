// Package peer defines the synchronization contract between a field wrapper
// and the external storage that holds the authoritative copy of its value.
//
// A peer owns the storage; a wrapper owns exactly one Handle into it. Every
// operation is synchronous: a Write is fully visible to the next Read, and no
// reader ever observes a partially applied Write.
//
// # Lifecycle
//
//	h, err := p.Bind(0)        // Unbound -> Bound
//	err = p.Write(h, tuples)   // replace the value
//	v, err := p.Read(h)        // snapshot copy
//	err = p.Unbind(h)          // Bound -> Released, exactly once
//
// Peers that can edit a value positionally without a full read-modify-write
// implement Splicer as well; peers that can read one tuple in place implement
// ElementReader.
package peer
