package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/tabgo/blobstore"
	"github.com/hupe1980/tabgo/codec"
	"github.com/hupe1980/tabgo/dump"
	"github.com/hupe1980/tabgo/internal/hash"
	"github.com/hupe1980/tabgo/manifest"
	"github.com/hupe1980/tabgo/resource"
)

// SnapshotExt is the file name suffix of an uncompressed dump.
const SnapshotExt = ".tdump"

var (
	// ErrNoSnapshot is returned by Load for a table that was never saved.
	ErrNoSnapshot = errors.New("no snapshot")

	// ErrChecksum is returned when a snapshot does not match its manifest.
	ErrChecksum = errors.New("snapshot checksum mismatch")
)

// Table is a table that can be written as a dump.
type Table interface {
	Name() string
	NumRows() int
	NumColumns() int
	Dump(w io.Writer) error
}

// Restorer loads a dump into a table.
type Restorer interface {
	Restore(r io.Reader, source string, flags dump.Flags) error
}

// Options configure an Archiver.
type Options struct {
	Compression Compression
	Codec       codec.Codec
	Resources   *resource.Controller
	Logger      *slog.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithCompression selects the snapshot compression. Default zstd.
func WithCompression(c Compression) Option {
	return func(o *Options) { o.Compression = c }
}

// WithCodec selects the manifest codec.
func WithCodec(c codec.Codec) Option {
	return func(o *Options) { o.Codec = c }
}

// WithResourceController bounds background uploads and IO.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *Options) { o.Resources = rc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// Archiver stores table snapshots in a blob store.
type Archiver struct {
	store blobstore.BlobStore
	opts  Options
}

// New creates an Archiver.
func New(store blobstore.BlobStore, optFns ...Option) *Archiver {
	opts := Options{Compression: CompressionZSTD, Codec: codec.Default}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Archiver{store: store, opts: opts}
}

func (a *Archiver) manifests(table string) *manifest.Store {
	return manifest.NewStore(a.store, table, a.opts.Codec)
}

// Snapshot is a serialized table waiting for upload.
type Snapshot struct {
	Table   string
	Rows    int
	Columns int
	Data    []byte
	Created time.Time
}

// Capture serializes t. It must run on the goroutine that owns t.
func Capture(t Table) (*Snapshot, error) {
	var buf bytes.Buffer
	if err := t.Dump(&buf); err != nil {
		return nil, fmt.Errorf("dump %s: %w", t.Name(), err)
	}
	return &Snapshot{
		Table:   t.Name(),
		Rows:    t.NumRows(),
		Columns: t.NumColumns(),
		Data:    buf.Bytes(),
		Created: time.Now().UTC(),
	}, nil
}

// Save dumps t and uploads it as the table's current snapshot.
func (a *Archiver) Save(ctx context.Context, t Table) (*manifest.Manifest, error) {
	snap, err := Capture(t)
	if err != nil {
		return nil, err
	}
	return a.Upload(ctx, snap)
}

// SaveAll dumps every table in turn and uploads the snapshots concurrently.
// The first upload error cancels the rest.
func (a *Archiver) SaveAll(ctx context.Context, tables ...Table) ([]*manifest.Manifest, error) {
	snaps := make([]*Snapshot, len(tables))
	for i, t := range tables {
		snap, err := Capture(t)
		if err != nil {
			return nil, err
		}
		snaps[i] = snap
	}

	out := make([]*manifest.Manifest, len(snaps))
	g, gctx := errgroup.WithContext(ctx)
	for i, snap := range snaps {
		if err := a.opts.Resources.AcquireBackground(gctx); err != nil {
			break
		}
		g.Go(func() error {
			defer a.opts.Resources.ReleaseBackground()
			m, err := a.Upload(gctx, snap)
			if err != nil {
				return err
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Upload compresses snap, writes it under a fresh name and commits a
// manifest pointing at it.
func (a *Archiver) Upload(ctx context.Context, snap *Snapshot) (*manifest.Manifest, error) {
	start := time.Now()
	packed, err := Compress(snap.Data, a.opts.Compression)
	if err != nil {
		return nil, fmt.Errorf("compress %s: %w", snap.Table, err)
	}

	name := uuid.NewString() + SnapshotExt + a.opts.Compression.Ext()
	if err := a.opts.Resources.AcquireIO(ctx, len(packed)); err != nil {
		return nil, err
	}
	if err := a.store.Put(ctx, path.Join(snap.Table, name), packed); err != nil {
		return nil, fmt.Errorf("upload %s: %w", snap.Table, err)
	}

	m := &manifest.Manifest{
		Table:       snap.Table,
		Snapshot:    name,
		Compression: a.opts.Compression.String(),
		Checksum:    hash.CRC32C(snap.Data),
		RawSize:     int64(len(snap.Data)),
		StoredSize:  int64(len(packed)),
		Rows:        snap.Rows,
		Columns:     snap.Columns,
		CreatedAt:   snap.Created,
	}
	if err := a.manifests(snap.Table).Save(ctx, m); err != nil {
		return nil, fmt.Errorf("commit %s: %w", snap.Table, err)
	}
	if a.opts.Logger != nil {
		a.opts.Logger.Info("snapshot saved",
			"table", snap.Table,
			"snapshot", name,
			"manifest", m.ID,
			"raw_bytes", m.RawSize,
			"stored_bytes", m.StoredSize,
			"duration", time.Since(start),
		)
	}
	return m, nil
}

// Current returns the current manifest of table, or ErrNoSnapshot.
func (a *Archiver) Current(ctx context.Context, table string) (*manifest.Manifest, error) {
	m, err := a.manifests(table).Load(ctx)
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, fmt.Errorf("%s: %w", table, ErrNoSnapshot)
	}
	return m, nil
}

// Read returns the plain dump described by m, verified against its checksum.
func (a *Archiver) Read(ctx context.Context, m *manifest.Manifest) ([]byte, error) {
	c, err := ParseCompression(m.Compression)
	if err != nil {
		return nil, err
	}
	blob, err := a.store.Open(ctx, path.Join(m.Table, m.Snapshot))
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	var buf bytes.Buffer
	buf.Grow(int(blob.Size()))
	r := resource.NewReader(ctx, io.NewSectionReader(readerAt{ctx, blob}, 0, blob.Size()), a.opts.Resources)
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	data, err := Decompress(buf.Bytes(), c)
	if err != nil {
		return nil, err
	}
	if sum := hash.CRC32C(data); sum != m.Checksum {
		return nil, fmt.Errorf("%w: %s has %08x, manifest %d records %08x", ErrChecksum, m.Snapshot, sum, m.ID, m.Checksum)
	}
	return data, nil
}

// Load restores the current snapshot of table into dst.
func (a *Archiver) Load(ctx context.Context, table string, dst Restorer, flags dump.Flags) (*manifest.Manifest, error) {
	m, err := a.Current(ctx, table)
	if err != nil {
		return nil, err
	}
	data, err := a.Read(ctx, m)
	if err != nil {
		return nil, err
	}
	if err := dst.Restore(bytes.NewReader(data), path.Join(m.Table, m.Snapshot), flags); err != nil {
		return nil, err
	}
	if a.opts.Logger != nil {
		a.opts.Logger.Info("snapshot restored", "table", table, "snapshot", m.Snapshot, "rows", m.Rows, "columns", m.Columns)
	}
	return m, nil
}

// History returns the manifests of table, oldest first.
func (a *Archiver) History(ctx context.Context, table string) ([]*manifest.Manifest, error) {
	ms := a.manifests(table)
	names, err := ms.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*manifest.Manifest, 0, len(names))
	for _, name := range names {
		m, err := ms.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Prune deletes all but the newest keep snapshots of table together with
// their manifests. The current snapshot is always kept.
func (a *Archiver) Prune(ctx context.Context, table string, keep int) (int, error) {
	keep = max(keep, 1)
	history, err := a.History(ctx, table)
	if err != nil || len(history) <= keep {
		return 0, err
	}
	ms := a.manifests(table)
	removed := 0
	for _, m := range history[:len(history)-keep] {
		if err := a.store.Delete(ctx, path.Join(table, m.Snapshot)); err != nil {
			return removed, err
		}
		if err := ms.Delete(ctx, manifest.FileName(m.ID)); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// readerAt adapts a context-aware blob to io.ReaderAt.
type readerAt struct {
	ctx  context.Context
	blob blobstore.Blob
}

func (r readerAt) ReadAt(p []byte, off int64) (int, error) {
	return r.blob.ReadAt(r.ctx, p, off)
}
