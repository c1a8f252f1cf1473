// Package persistence stores engine field values in a blob store.
//
// A field record is a 32-byte little-endian header followed by the field's
// float32 payload, optionally block-compressed:
//
//	offset  size  field
//	0       4     magic "MFV3"
//	4       2     format version
//	6       1     compression (0=none, 1=lz4, 2=zstd)
//	7       1     reserved
//	8       8     tuple count
//	16      4     raw payload length (count * 12)
//	20      4     stored payload length
//	24      4     CRC32 (IEEE) of bytes 0-23 and the stored payload
//	28      4     reserved
//
// The stored payload length bounds the raw length an LZ4 record may claim,
// and a zstd frame must declare the raw length, so a damaged header is
// rejected before the decode buffer is allocated.
//
// A snapshot is one record per field plus a JSON manifest under
// snap-<id>/. The CURRENT blob names the manifest of the latest complete
// snapshot and the codec it was written with, one per line. CURRENT is
// written last, so a reader never observes a partial snapshot.
package persistence
