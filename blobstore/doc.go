// Package blobstore provides the storage abstraction for engine snapshots.
//
// A snapshot is a set of immutable blobs (one record per field plus a
// manifest) and a small mutable CURRENT pointer naming the latest manifest.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests and ephemeral engines
//   - LocalStore: local filesystem; reads are memory-mapped
//   - minio.Store: MinIO and other S3-compatible services
//   - s3.Store: Amazon S3, with s3.DDBCommitStore for atomic CURRENT commits
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
