package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"testing"

	"github.com/hupe1980/tabgo/blobstore"
	"github.com/hupe1980/tabgo/dump"
	"github.com/hupe1980/tabgo/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTable struct {
	name     string
	text     string
	restored string
	source   string
}

func (f *fakeTable) Name() string    { return f.name }
func (f *fakeTable) NumRows() int    { return strings.Count(f.text, "\nr ") }
func (f *fakeTable) NumColumns() int { return 1 }

func (f *fakeTable) Dump(w io.Writer) error {
	_, err := io.WriteString(w, f.text)
	return err
}

func (f *fakeTable) Restore(r io.Reader, source string, _ dump.Flags) error {
	data, err := io.ReadAll(r)
	f.restored, f.source = string(data), source
	return err
}

func newFake(name string, rows int) *fakeTable {
	var b strings.Builder
	fmt.Fprintf(&b, "i %d 1 0 0\nc 0 c0 string", rows)
	for i := range rows {
		fmt.Fprintf(&b, "\nr %d r%d\nd %d 0 {value %d}", i, i, i, i)
	}
	b.WriteString("\n")
	return &fakeTable{name: name, text: b.String()}
}

func TestSaveLoad(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			ctx := context.Background()
			store := blobstore.NewMemoryStore()
			a := New(store, WithCompression(c))

			src := newFake("orders", 50)
			m, err := a.Save(ctx, src)
			require.NoError(t, err)
			assert.Equal(t, uint64(1), m.ID)
			assert.Equal(t, 50, m.Rows)
			assert.True(t, strings.HasSuffix(m.Snapshot, SnapshotExt+c.Ext()))

			dst := &fakeTable{name: "copy"}
			loaded, err := a.Load(ctx, "orders", dst, 0)
			require.NoError(t, err)
			assert.Equal(t, m.Snapshot, loaded.Snapshot)
			assert.Equal(t, src.text, dst.restored)
			assert.Equal(t, path.Join("orders", m.Snapshot), dst.source)
		})
	}
}

func TestLoadWithoutSnapshot(t *testing.T) {
	a := New(blobstore.NewMemoryStore())
	_, err := a.Load(context.Background(), "missing", &fakeTable{}, 0)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	a := New(store, WithCompression(CompressionNone))
	m, err := a.Save(ctx, newFake("orders", 2))
	require.NoError(t, err)

	data, err := blobstore.ReadAll(ctx, store, path.Join("orders", m.Snapshot))
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, path.Join("orders", m.Snapshot), bytes.ToUpper(data)))

	_, err = a.Load(ctx, "orders", &fakeTable{}, 0)
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestSaveAllBoundedConcurrency(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	rc := resource.NewController(resource.Config{MaxBackgroundWorkers: 2, IOLimitBytesPerSec: 1 << 30})
	a := New(store, WithResourceController(rc), WithCompression(CompressionLZ4))

	var tables []Table
	for i := range 5 {
		tables = append(tables, newFake(fmt.Sprintf("t%d", i), i+1))
	}
	ms, err := a.SaveAll(ctx, tables...)
	require.NoError(t, err)
	require.Len(t, ms, 5)
	for i, m := range ms {
		assert.Equal(t, fmt.Sprintf("t%d", i), m.Table)
		assert.Equal(t, i+1, m.Rows)
	}
	// Every slot was handed back.
	for range 2 {
		assert.True(t, rc.TryAcquireBackground())
	}
}

type failingStore struct {
	blobstore.BlobStore
}

var errUpload = errors.New("upload refused")

func (f failingStore) Put(ctx context.Context, name string, data []byte) error {
	if strings.HasPrefix(name, "bad/") {
		return errUpload
	}
	return f.BlobStore.Put(ctx, name, data)
}

func TestSaveAllReportsFailure(t *testing.T) {
	a := New(failingStore{blobstore.NewMemoryStore()})
	_, err := a.SaveAll(context.Background(), newFake("good", 1), newFake("bad", 1))
	assert.ErrorIs(t, err, errUpload)
}

func TestHistoryAndPrune(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	a := New(store)

	src := newFake("orders", 1)
	var snapshots []string
	for range 4 {
		m, err := a.Save(ctx, src)
		require.NoError(t, err)
		snapshots = append(snapshots, m.Snapshot)
	}

	history, err := a.History(ctx, "orders")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, uint64(4), history[3].ID)

	removed, err := a.Prune(ctx, "orders", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = store.Open(ctx, path.Join("orders", snapshots[0]))
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	m, err := a.Current(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, snapshots[3], m.Snapshot)

	history, err = a.History(ctx, "orders")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
