// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package artifact

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
)

// FileStore keeps a bundle as a directory of blobs. Saves are written to a
// sibling temp directory and swapped into place, so readers never see a
// half-written pair.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. The directory need not exist.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the artifact directory.
func (s *FileStore) Dir() string { return s.dir }

// Close is a no-op.
func (s *FileStore) Close() error { return nil }

// Save writes all blobs of b and atomically replaces the directory.
func (s *FileStore) Save(ctx context.Context, b *Bundle) error {
	if err := b.Validate(); err != nil {
		return err
	}
	parent := filepath.Dir(s.dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("create artifact parent: %w", err)
	}
	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(s.dir)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	if err := writeJSON(filepath.Join(tmp, CatalogBlob), b.Catalog); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeMatrix(filepath.Join(tmp, SimilarityBlob), b); err != nil {
		return err
	}
	if b.Vocabulary != nil {
		if err := writeJSON(filepath.Join(tmp, VocabularyBlob), b.Vocabulary); err != nil {
			return err
		}
	}
	if err := writeJSON(filepath.Join(tmp, ManifestBlob), b.Manifest); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return atomicSwap(tmp, s.dir)
}

// Load reads the bundle. Both the catalog and similarity blobs are checked
// for presence before either is decoded.
func (s *FileStore) Load(ctx context.Context) (*Bundle, error) {
	catPath := filepath.Join(s.dir, CatalogBlob)
	simPath := filepath.Join(s.dir, SimilarityBlob)
	for _, p := range []string{catPath, simPath} {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, missing(p)
			}
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
	}

	data, err := os.ReadFile(catPath)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	cat, err := decodeCatalog(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(simPath)
	if err != nil {
		return nil, fmt.Errorf("open similarity: %w", err)
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat similarity: %w", err)
	}
	m, err := decodeMatrix(bufio.NewReaderSize(f, 1<<20), info.Size())
	if err != nil {
		return nil, err
	}

	b := &Bundle{Catalog: cat, Matrix: m}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	if data, err := os.ReadFile(filepath.Join(s.dir, VocabularyBlob)); err == nil {
		if b.Vocabulary, err = decodeVocabulary(data); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	if data, err := os.ReadFile(filepath.Join(s.dir, ManifestBlob)); err == nil {
		if b.Manifest, err = decodeManifest(data); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return b, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeMatrix(path string, b *Bundle) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create similarity: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriterSize(f, 1<<20)
	if err := encodeMatrix(w, b.Matrix); err != nil {
		return fmt.Errorf("write similarity: %w", err)
	}
	return w.Flush()
}

// atomicSwap replaces destDir with srcDir by renaming, keeping the previous
// directory as a .bak until the rename succeeds.
func atomicSwap(srcDir, destDir string) error {
	backup := destDir + ".bak"
	_ = os.RemoveAll(backup)
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return err
		}
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		if _, stErr := os.Stat(backup); stErr == nil {
			_ = os.Rename(backup, destDir)
		}
		return err
	}
	_ = os.RemoveAll(backup)
	return nil
}

// ErrLocked is returned by Lock when another build holds the lock past the timeout.
var ErrLocked = errors.New("artifact directory is locked by another build")

// Lock takes an exclusive lock on dir+".lock", retrying until timeout.
// The returned func releases it.
func Lock(dir string, timeout time.Duration) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return func() {}, err
	}
	lockPath := dir + ".lock"
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return func() {}, fmt.Errorf("acquire build lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, fmt.Errorf("%w (lock: %s)", ErrLocked, lockPath)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
