// Package minio provides a BlobStore backed by MinIO or any other
// S3-compatible object storage (Ceph, Garage, SeaweedFS).
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := minioblob.NewStore(client, "archives", "tables/")
//	arch := archive.New(store)
//
// No AWS SDK is pulled in, which keeps air-gapped deployments simple.
package minio
