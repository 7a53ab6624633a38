package s3

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/tabgo/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDDBClient is an in-memory DynamoDB table keyed by base_uri and version.
type mockDDBClient struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{items: make(map[string]map[string]types.AttributeValue)}
}

func (m *mockDDBClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	uri := params.Item["base_uri"].(*types.AttributeValueMemberS).Value
	version := params.Item["version"].(*types.AttributeValueMemberN).Value
	key := uri + ":" + version
	if aws.ToString(params.ConditionExpression) == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}
	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	uri := params.ExpressionAttributeValues[":uri"].(*types.AttributeValueMemberS).Value
	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		if item["base_uri"].(*types.AttributeValueMemberS).Value == uri {
			items = append(items, item)
		}
	}
	version := func(item map[string]types.AttributeValue) uint64 {
		v, _ := strconv.ParseUint(item["version"].(*types.AttributeValueMemberN).Value, 10, 64)
		return v
	}
	slices.SortFunc(items, func(a, b map[string]types.AttributeValue) int {
		return int(version(b)) - int(version(a))
	})
	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

func readPointer(t *testing.T, store blobstore.BlobStore, name string) string {
	t.Helper()
	data, err := blobstore.ReadAll(context.Background(), store, name)
	require.NoError(t, err)
	return string(data)
}

func TestDDBCommitStore_Commits(t *testing.T) {
	ctx := context.Background()
	inner := blobstore.NewMemoryStore()
	store := NewDDBCommitStore(inner, newMockDDBClient(), "tabgo-commits", "s3://bucket/tables")

	_, err := store.Open(ctx, "orders/CURRENT")
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	for i := 1; i <= 12; i++ {
		require.NoError(t, store.Put(ctx, "orders/CURRENT", []byte(fmt.Sprintf("orders/%02d.tdump", i))))
	}
	assert.Equal(t, "orders/12.tdump", readPointer(t, store, "orders/CURRENT"))

	v, err := store.Version(ctx, "orders/CURRENT")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), v)

	// Pointers never reach the wrapped store; other blobs do.
	names, err := inner.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
	require.NoError(t, store.Put(ctx, "orders/12.tdump", []byte("i 1 1 0 0\n")))
	assert.Equal(t, "i 1 1 0 0\n", readPointer(t, inner, "orders/12.tdump"))
}

func TestDDBCommitStore_SeparatePointers(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()
	a := NewDDBCommitStore(blobstore.NewMemoryStore(), ddb, "t", "s3://bucket-a")
	b := NewDDBCommitStore(blobstore.NewMemoryStore(), ddb, "t", "s3://bucket-b")

	require.NoError(t, a.Put(ctx, "orders/CURRENT", []byte("A")))
	require.NoError(t, a.Put(ctx, "users/CURRENT", []byte("U")))
	require.NoError(t, b.Put(ctx, "orders/CURRENT", []byte("B")))

	assert.Equal(t, "A", readPointer(t, a, "orders/CURRENT"))
	assert.Equal(t, "U", readPointer(t, a, "users/CURRENT"))
	assert.Equal(t, "B", readPointer(t, b, "orders/CURRENT"))
}

func TestDDBCommitStore_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	store := NewDDBCommitStore(blobstore.NewMemoryStore(), newMockDDBClient(), "t", "s3://bucket")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Put(ctx, "orders/CURRENT", []byte(strconv.Itoa(i)))
			if err != nil && !errors.Is(err, ErrConcurrentModification) {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Positive(t, successes)

	v, err := store.Version(ctx, "orders/CURRENT")
	require.NoError(t, err)
	assert.Equal(t, uint64(successes), v)
}
