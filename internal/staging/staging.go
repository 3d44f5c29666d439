package staging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/memblob"
)

// Area is the staging storage for downloaded tiles: one blob per tile,
// keyed by grid coordinates. Tiles are written by the acquisition pool and
// read back by the compositor.
type Area struct {
	bucket  *blob.Bucket
	dir     string
	persist bool
}

// Open opens (creating if needed) a directory-backed staging area. When
// persist is true the directory and its tiles survive Destroy; otherwise
// Destroy removes them.
func Open(dir string, persist bool) (*Area, error) {
	// No .attrs sidecar files: the persisted layout is exactly one file
	// per tile, so the recompose-only mode can consume plain directories.
	bucket, err := fileblob.OpenBucket(dir, &fileblob.Options{
		CreateDir: true,
		Metadata:  fileblob.MetadataDontWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("staging: open %s: %w", dir, err)
	}
	return &Area{bucket: bucket, dir: dir, persist: persist}, nil
}

// OpenTemp creates a staging area in a fresh temporary directory.
func OpenTemp() (*Area, error) {
	dir, err := os.MkdirTemp("", "dezoomify_")
	if err != nil {
		return nil, fmt.Errorf("staging: create temp dir: %w", err)
	}
	return Open(dir, false)
}

// NewMem returns an in-memory staging area.
func NewMem() *Area {
	return &Area{bucket: memblob.OpenBucket(nil), persist: true}
}

// Key returns the blob key of a tile.
func Key(col, row int) string {
	return fmt.Sprintf("%d_%d.jpg", col, row)
}

// Dir returns the backing directory, or "" for in-memory areas.
func (a *Area) Dir() string {
	return a.dir
}

// Put stores one tile verbatim and returns the number of bytes written.
func (a *Area) Put(ctx context.Context, col, row int, r io.Reader) (int64, error) {
	w, err := a.bucket.NewWriter(ctx, Key(col, row), nil)
	if err != nil {
		return 0, fmt.Errorf("staging: write tile (%d, %d): %w", col, row, err)
	}
	n, err := io.Copy(w, r)
	if err != nil {
		w.Close()
		return n, fmt.Errorf("staging: write tile (%d, %d): %w", col, row, err)
	}
	if err := w.Close(); err != nil {
		return n, fmt.Errorf("staging: write tile (%d, %d): %w", col, row, err)
	}
	return n, nil
}

// Get reads one tile back.
func (a *Area) Get(ctx context.Context, col, row int) ([]byte, error) {
	data, err := a.bucket.ReadAll(ctx, Key(col, row))
	if err != nil {
		return nil, fmt.Errorf("staging: read tile (%d, %d): %w", col, row, err)
	}
	return data, nil
}

// Materialize copies one tile out of the area into destDir and returns the
// file path. The compositor tool takes file paths, not readers.
func (a *Area) Materialize(ctx context.Context, col, row int, destDir string) (string, error) {
	data, err := a.Get(ctx, col, row)
	if err != nil {
		return "", err
	}
	path := filepath.Join(destDir, Key(col, row))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("staging: materialize tile (%d, %d): %w", col, row, err)
	}
	return path, nil
}

// Close closes the underlying bucket without touching the stored tiles.
func (a *Area) Close() error {
	return a.bucket.Close()
}

// Destroy closes the area and, unless it was opened with persist, removes
// the backing directory and everything in it.
func (a *Area) Destroy() error {
	if err := a.bucket.Close(); err != nil {
		return err
	}
	if a.persist || a.dir == "" {
		return nil
	}
	return os.RemoveAll(a.dir)
}
