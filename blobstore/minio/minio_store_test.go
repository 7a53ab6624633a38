package minio

import (
	"context"
	"io"
	"testing"

	"github.com/hupe1980/tabgo/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	bucket := "test-tabgo"

	client, err := minio.New("localhost:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err = client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	data := []byte("i 2 3 0 0\nc 0 name string\n")
	require.NoError(t, store.Put(ctx, "orders/a.tdump", data))

	blob, err := store.Open(ctx, "orders/a.tdump")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 4)
	n, err := blob.ReadAt(ctx, buf, 10)
	require.NoError(t, err)
	assert.Equal(t, "c 0 ", string(buf[:n]))

	tail := make([]byte, 16)
	n, err = blob.ReadAt(ctx, tail, int64(len(data))-5)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "ring\n", string(tail[:n]))
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "orders/")
	require.NoError(t, err)
	assert.Contains(t, names, "orders/a.tdump")

	require.NoError(t, store.Delete(ctx, "orders/a.tdump"))
	_, err = store.Open(ctx, "orders/a.tdump")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
