// Package checkpoint persists memory-bank state so a training run can be
// resumed with its pseudo-label memory intact.
//
// A Snapshot is encoded to a versioned binary blob (optionally LZ4- or
// ZSTD-compressed) and written through a Store. Stores exist for memory
// (tests), the local file system, S3, and MinIO.
package checkpoint
