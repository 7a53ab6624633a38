// Package blobstore provides the storage backends archives are written to.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and ephemeral sessions
//   - LocalStore: local filesystem with mmap reads and atomic renames
//   - s3.Store: Amazon S3, with s3.DDBCommitStore for conditional pointer
//     updates through DynamoDB
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
