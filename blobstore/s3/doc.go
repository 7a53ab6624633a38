// Package s3 stores blobs in Amazon S3.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("tables/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	arch := archive.New(store)
//
// S3 has no compare-and-swap, so concurrent writers of the same CURRENT
// pointer should wrap the Store in a DDBCommitStore.
package s3
