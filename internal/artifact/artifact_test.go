// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package artifact

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/similarity"
	"github.com/tomtom215/cinematch/internal/vectorize"
)

func ptr(f float64) *float64 { return &f }

func testBundle(t *testing.T) *Bundle {
	t.Helper()
	cat := catalog.Catalog{
		{ID: 1, Title: "A", Tags: "space adventure", VoteAverage: ptr(8.1), VoteCount: 900, ReleaseDate: "2014-11-05", PosterPath: "/a.jpg"},
		{ID: 2, Title: "B", Tags: "space drama", VoteAverage: ptr(7.2), VoteCount: 600},
		{ID: 3, Title: "C", Tags: "cooking comedy"},
	}
	m, err := similarity.FromData(3, []float32{
		1, 0.5, 0,
		0.5, 1, 0,
		0, 0, 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	vocab, err := vectorize.Fit([]string{cat[0].Tags, cat[1].Tags, cat[2].Tags}, vectorize.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return NewBundle(cat, m, vocab, "movies.csv", "credits.csv")
}

func newBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("open in-memory badger: %v", err)
	}
	s := NewBadgerStoreFromDB(db)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func assertSameBundle(t *testing.T, want, got *Bundle) {
	t.Helper()
	if !reflect.DeepEqual(want.Catalog, got.Catalog) {
		t.Errorf("catalog mismatch:\nwant %+v\ngot  %+v", want.Catalog, got.Catalog)
	}
	if !reflect.DeepEqual(want.Matrix.Data(), got.Matrix.Data()) {
		t.Errorf("matrix mismatch: want %v got %v", want.Matrix.Data(), got.Matrix.Data())
	}
	if got.Vocabulary == nil || !reflect.DeepEqual(want.Vocabulary.Tokens, got.Vocabulary.Tokens) {
		t.Errorf("vocabulary mismatch")
	}
	if got.Manifest.BuildID != want.Manifest.BuildID || got.Manifest.Items != 3 {
		t.Errorf("manifest = %+v, want build %s with 3 items", got.Manifest, want.Manifest.BuildID)
	}
}

func TestStores_RoundTrip(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) Store{
		"file":   func(t *testing.T) Store { return NewFileStore(filepath.Join(t.TempDir(), "artifacts")) },
		"badger": func(t *testing.T) Store { return newBadgerStore(t) },
	}
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s := open(t)
			want := testBundle(t)

			if err := s.Save(ctx, want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			assertSameBundle(t, want, got)

			// A second save replaces the first.
			again := testBundle(t)
			if err := s.Save(ctx, again); err != nil {
				t.Fatalf("second Save() error = %v", err)
			}
			got, err = s.Load(ctx)
			if err != nil {
				t.Fatalf("second Load() error = %v", err)
			}
			if got.Manifest.BuildID != again.Manifest.BuildID {
				t.Errorf("BuildID = %s, want %s", got.Manifest.BuildID, again.Manifest.BuildID)
			}
		})
	}
}

func TestFileStore_MissingArtifact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		remove string
	}{
		{"similarity removed", SimilarityBlob},
		{"catalog removed", CatalogBlob},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			dir := filepath.Join(t.TempDir(), "artifacts")
			s := NewFileStore(dir)
			if err := s.Save(ctx, testBundle(t)); err != nil {
				t.Fatal(err)
			}
			if err := os.Remove(filepath.Join(dir, tt.remove)); err != nil {
				t.Fatal(err)
			}

			b, err := s.Load(ctx)
			if !errors.Is(err, ErrMissingArtifact) {
				t.Fatalf("Load() error = %v, want ErrMissingArtifact", err)
			}
			if b != nil {
				t.Error("Load() must not return a partial bundle")
			}
		})
	}
}

func TestFileStore_EmptyDirectory(t *testing.T) {
	t.Parallel()

	_, err := NewFileStore(t.TempDir()).Load(context.Background())
	if !errors.Is(err, ErrMissingArtifact) {
		t.Fatalf("Load() error = %v, want ErrMissingArtifact", err)
	}
}

func TestFileStore_OptionalBlobs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "artifacts")
	s := NewFileStore(dir)
	if err := s.Save(ctx, testBundle(t)); err != nil {
		t.Fatal(err)
	}
	for _, blob := range []string{VocabularyBlob, ManifestBlob} {
		if err := os.Remove(filepath.Join(dir, blob)); err != nil {
			t.Fatal(err)
		}
	}

	b, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if b.Vocabulary != nil {
		t.Error("vocabulary should be nil when its blob is absent")
	}
	if len(b.Catalog) != 3 {
		t.Errorf("catalog size = %d, want 3", len(b.Catalog))
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		blob  string
		write func(t *testing.T, path string)
	}{
		{
			name: "bad magic",
			blob: SimilarityBlob,
			write: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("NOPE00000000"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "dimension mismatch",
			blob: SimilarityBlob,
			write: func(t *testing.T, path string) {
				m, _ := similarity.FromData(1, []float32{1})
				data, err := matrixBytes(m)
				if err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "truncated matrix",
			blob: SimilarityBlob,
			write: func(t *testing.T, path string) {
				data, err := os.ReadFile(path)
				if err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(path, data[:len(data)-4], 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "row count overflows",
			blob: SimilarityBlob,
			write: func(t *testing.T, path string) {
				rewriteRowCount(t, path, 0xFFFFFFFF, true)
			},
		},
		{
			name: "row count larger than blob",
			blob: SimilarityBlob,
			write: func(t *testing.T, path string) {
				rewriteRowCount(t, path, 200000, false)
			},
		},
		{
			name: "catalog not json",
			blob: CatalogBlob,
			write: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			dir := filepath.Join(t.TempDir(), "artifacts")
			s := NewFileStore(dir)
			if err := s.Save(ctx, testBundle(t)); err != nil {
				t.Fatal(err)
			}
			tt.write(t, filepath.Join(dir, tt.blob))

			_, err := s.Load(ctx)
			if !errors.Is(err, ErrCorruptArtifact) {
				t.Fatalf("Load() error = %v, want ErrCorruptArtifact", err)
			}
		})
	}
}

// rewriteRowCount replaces the row count in a saved similarity blob,
// optionally dropping the matrix data after the header.
func rewriteRowCount(t *testing.T, path string, n uint32, headerOnly bool) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	binary.LittleEndian.PutUint32(data[8:matrixHeaderSize], n)
	if headerOnly {
		data = data[:matrixHeaderSize]
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBadgerStore_MissingArtifact(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newBadgerStore(t)
	if _, err := s.Load(ctx); !errors.Is(err, ErrMissingArtifact) {
		t.Fatalf("Load() on empty store error = %v, want ErrMissingArtifact", err)
	}

	if err := s.Save(ctx, testBundle(t)); err != nil {
		t.Fatal(err)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(badgerMatrixKey))
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx); !errors.Is(err, ErrMissingArtifact) {
		t.Fatalf("Load() error = %v, want ErrMissingArtifact", err)
	}
}

func TestSave_RejectsMismatchedBundle(t *testing.T) {
	t.Parallel()

	b := testBundle(t)
	b.Catalog = b.Catalog[:2]
	err := NewFileStore(filepath.Join(t.TempDir(), "artifacts")).Save(context.Background(), b)
	if !errors.Is(err, ErrCorruptArtifact) {
		t.Fatalf("Save() error = %v, want ErrCorruptArtifact", err)
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	s, err := Open("file", t.TempDir())
	if err != nil {
		t.Fatalf("Open(file) error = %v", err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("Open(file) = %T, want *FileStore", s)
	}

	if _, err := Open("s3", t.TempDir()); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open(s3) error = %v, want ErrUnknownBackend", err)
	}
}

func TestLock(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "artifacts")
	unlock, err := Lock(dir, time.Second)
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	if _, err := Lock(dir, 300*time.Millisecond); !errors.Is(err, ErrLocked) {
		t.Errorf("second Lock() error = %v, want ErrLocked", err)
	}

	unlock()
	unlock2, err := Lock(dir, time.Second)
	if err != nil {
		t.Fatalf("Lock() after release error = %v", err)
	}
	unlock2()
}

func TestBadgerStore_CorruptRowCount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newBadgerStore(t)
	if err := s.Save(ctx, testBundle(t)); err != nil {
		t.Fatal(err)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		chunk, err := getValue(txn, string(chunkKey(0)))
		if err != nil {
			return err
		}
		if len(chunk) < matrixHeaderSize {
			t.Fatalf("first chunk holds %d bytes, want at least the header", len(chunk))
		}
		binary.LittleEndian.PutUint32(chunk[8:matrixHeaderSize], 0xFFFFFFFF)
		return txn.Set(chunkKey(0), chunk)
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Load(ctx); !errors.Is(err, ErrCorruptArtifact) {
		t.Fatalf("Load() error = %v, want ErrCorruptArtifact", err)
	}
}
