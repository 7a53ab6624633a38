// Package manifest records which snapshot of a table is current.
//
// Each table directory in a blob store holds numbered manifest files and a
// CURRENT pointer naming the latest one:
//
//	orders/MANIFEST-000003.json
//	orders/CURRENT           -> "MANIFEST-000003.json"
//	orders/<uuid>.tdump.zst
package manifest

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/tabgo/blobstore"
	"github.com/hupe1980/tabgo/codec"
)

const (
	ManifestFileName = "MANIFEST"
	CurrentFileName  = "CURRENT"
	CurrentVersion   = 1
)

// Manifest describes one archived snapshot of a table.
type Manifest struct {
	Version int    `json:"version"`
	ID      uint64 `json:"id"`
	Table   string `json:"table"`

	// Snapshot is the blob name of the dump, relative to the table directory.
	Snapshot    string `json:"snapshot"`
	Compression string `json:"compression"`
	Checksum    uint32 `json:"checksum"`
	RawSize     int64  `json:"raw_size"`
	StoredSize  int64  `json:"stored_size"`

	Rows      int       `json:"rows"`
	Columns   int       `json:"columns"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages the manifests of one table.
type Store struct {
	blobs blobstore.BlobStore
	dir   string
	codec codec.Codec
	mu    sync.Mutex
}

// NewStore creates a manifest store for the table directory dir. A nil
// codec selects codec.Default.
func NewStore(blobs blobstore.BlobStore, dir string, c codec.Codec) *Store {
	if c == nil {
		c = codec.Default
	}
	return &Store{blobs: blobs, dir: dir, codec: c}
}

// Dir returns the table directory.
func (s *Store) Dir() string { return s.dir }

// Load loads the current manifest. A table that was never saved yields an
// empty manifest with ID 0.
func (s *Store) Load(ctx context.Context) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := blobstore.ReadAll(ctx, s.blobs, path.Join(s.dir, CurrentFileName))
	if errors.Is(err, blobstore.ErrNotFound) {
		return &Manifest{Version: CurrentVersion, Table: s.dir}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.read(ctx, strings.TrimSpace(string(content)))
}

// Get loads a manifest by file name.
func (s *Store) Get(ctx context.Context, filename string) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx, filename)
}

func (s *Store) read(ctx context.Context, filename string) (*Manifest, error) {
	data, err := blobstore.ReadAll(ctx, s.blobs, path.Join(s.dir, filename))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := s.codec.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	if m.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported manifest version: %d (expected %d)", m.Version, CurrentVersion)
	}
	return &m, nil
}

// Save writes m as the next manifest and then moves CURRENT to it. m.ID is
// advanced past the current manifest.
func (s *Store) Save(ctx context.Context, m *Manifest) error {
	cur, err := s.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m.Version = CurrentVersion
	m.ID = max(m.ID, cur.ID) + 1

	filename := FileName(m.ID)
	data, err := s.codec.Marshal(m)
	if err != nil {
		return err
	}
	if err := s.blobs.Put(ctx, path.Join(s.dir, filename), data); err != nil {
		return err
	}
	return s.blobs.Put(ctx, path.Join(s.dir, CurrentFileName), []byte(filename))
}

// List returns the manifest file names of the table, oldest first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	names, err := s.blobs.List(ctx, s.dir+"/")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, name := range names {
		base := path.Base(name)
		if strings.HasPrefix(base, ManifestFileName+"-") {
			out = append(out, base)
		}
	}
	// Zero-padded IDs sort lexically.
	slices.Sort(out)
	return out, nil
}

// Delete removes a manifest file.
func (s *Store) Delete(ctx context.Context, filename string) error {
	return s.blobs.Delete(ctx, path.Join(s.dir, filename))
}

// FileName returns the manifest file name for id.
func FileName(id uint64) string {
	return fmt.Sprintf("%s-%06d.json", ManifestFileName, id)
}
