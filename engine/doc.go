// Package engine is an in-process authoritative store for multi-value Vec3
// fields. It implements peer.Peer, peer.Splicer and peer.ElementReader.
//
// # Storage
//
// Each bound handle owns a slot holding its tuples as one contiguous []float32
// with a stride of 3: tuple i occupies data[3*i : 3*i+3]. Bulk writes replace
// the backing array; positional edits shift only the affected suffix and grow
// capacity geometrically, so repeated inserts and deletes stay amortized
// linear.
//
// # Consistency
//
// Every mutation is applied under the slot's write lock and every read copies
// under its read lock, so no reader observes a partially applied write.
// Distinct slots never contend.
//
// # Memory
//
// Slot capacity is charged against an optional resource.Controller. Charges
// are taken before a mutation and never block; when the budget is exhausted
// the operation fails with peer.ErrAllocationFailure and the slot is left
// unchanged.
//
// # Persistence
//
// Save and Load write and read the bound fields through a persistence.Manager.
// They are the only operations that perform I/O. Load only restores into an
// empty engine and refuses Bind until it returns, so restored handles never
// collide with newly issued ones.
package engine
