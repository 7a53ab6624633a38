package s3

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/tabgo/blobstore"
)

// PointerName is the blob name committed through DynamoDB.
const PointerName = "CURRENT"

// ErrConcurrentModification is returned when another writer committed the
// same pointer version first.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// DDBClient is the subset of the DynamoDB API used by DDBCommitStore.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DDBCommitStore stores blobs in S3 but commits every "<dir>/CURRENT"
// pointer as a new version row in DynamoDB. A conditional write makes two
// writers racing on the same version fail instead of overwriting each other.
//
// Table schema:
//   - Partition key: base_uri (string), baseURI plus the pointer directory
//   - Sort key: version (number)
//
//	aws dynamodb create-table \
//	  --table-name tabgo-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	blobstore.BlobStore
	ddb       DDBClient
	tableName string
	baseURI   string
}

// Compile time check to ensure DDBCommitStore satisfies the BlobStore interface.
var _ blobstore.BlobStore = (*DDBCommitStore)(nil)

// NewDDBCommitStore wraps store. baseURI identifies the store in the table,
// for example "s3://bucket/prefix".
func NewDDBCommitStore(store blobstore.BlobStore, ddb DDBClient, tableName, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{BlobStore: store, ddb: ddb, tableName: tableName, baseURI: baseURI}
}

func (s *DDBCommitStore) partition(name string) (string, bool) {
	if path.Base(name) != PointerName {
		return "", false
	}
	return s.baseURI + "/" + path.Dir(name), true
}

// Open reads pointers from DynamoDB and everything else from the wrapped
// store.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	part, ok := s.partition(name)
	if !ok {
		return s.BlobStore.Open(ctx, name)
	}
	version, target, err := s.latest(ctx, part)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, fmt.Errorf("%s: %w", name, blobstore.ErrNotFound)
	}
	return &pointerBlob{content: []byte(target)}, nil
}

// Put commits pointers as a new version and writes everything else to the
// wrapped store.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	part, ok := s.partition(name)
	if !ok {
		return s.BlobStore.Put(ctx, name, data)
	}
	version, _, err := s.latest(ctx, part)
	if err != nil {
		return err
	}
	return s.commit(ctx, part, version+1, string(data))
}

// Version returns the latest committed version of a pointer, 0 if none.
func (s *DDBCommitStore) Version(ctx context.Context, name string) (uint64, error) {
	part, ok := s.partition(name)
	if !ok {
		return 0, fmt.Errorf("%s is not a %s pointer", name, PointerName)
	}
	v, _, err := s.latest(ctx, part)
	return v, err
}

func (s *DDBCommitStore) latest(ctx context.Context, part string) (uint64, string, error) {
	resp, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: part},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", fmt.Errorf("query commits: %w", err)
	}
	if len(resp.Items) == 0 {
		return 0, "", nil
	}
	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, "", errors.New("invalid version attribute")
	}
	targetAttr, ok := item["target"].(*types.AttributeValueMemberS)
	if !ok {
		return 0, "", errors.New("invalid target attribute")
	}
	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("parse version: %w", err)
	}
	return version, targetAttr.Value, nil
}

func (s *DDBCommitStore) commit(ctx context.Context, part string, version uint64, target string) error {
	_, err := s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri": &types.AttributeValueMemberS{Value: part},
			"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
			"target":   &types.AttributeValueMemberS{Value: target},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("commit version %d: %w", version, err)
	}
	return nil
}

type pointerBlob struct {
	content []byte
}

func (b *pointerBlob) Close() error { return nil }

func (b *pointerBlob) Size() int64 { return int64(len(b.content)) }

func (b *pointerBlob) Bytes() ([]byte, error) { return b.content, nil }

func (b *pointerBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	return blobstore.ReadBytesAt(b.content, p, off)
}
