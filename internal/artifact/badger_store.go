// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const (
	badgerCatalogKey    = "artifact:catalog"
	badgerMatrixKey     = "artifact:similarity"
	badgerVocabularyKey = "artifact:vocabulary"
	badgerManifestKey   = "artifact:manifest"
	badgerChunkPrefix   = "artifact:similarity:chunk:"

	// matrixChunkSize keeps each value well under the per-transaction limits.
	matrixChunkSize = 4 << 20
)

// matrixHeader is stored under badgerMatrixKey and points at the chunks.
type matrixHeader struct {
	BuildID string `json:"build_id"`
	Bytes   int    `json:"bytes"`
	Chunks  int    `json:"chunks"`
}

// BadgerStore keeps a bundle in an embedded BadgerDB. The similarity blob
// is split into chunks; the catalog and the chunk header are committed in
// one final transaction, so a reader either sees both or neither.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a BadgerDB at dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	opts.SyncWrites = true
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger artifact store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStoreFromDB wraps an existing BadgerDB handle.
func NewBadgerStoreFromDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Save replaces the stored bundle.
func (s *BadgerStore) Save(ctx context.Context, b *Bundle) error {
	if err := b.Validate(); err != nil {
		return err
	}
	catData, err := json.Marshal(b.Catalog)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	matData, err := matrixBytes(b.Matrix)
	if err != nil {
		return fmt.Errorf("encode similarity: %w", err)
	}
	manData, err := json.Marshal(b.Manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	var vocabData []byte
	if b.Vocabulary != nil {
		if vocabData, err = json.Marshal(b.Vocabulary); err != nil {
			return fmt.Errorf("encode vocabulary: %w", err)
		}
	}

	// Unpublish the current pair before touching its chunks.
	err = s.db.Update(func(txn *badger.Txn) error {
		for _, k := range []string{badgerCatalogKey, badgerMatrixKey, badgerVocabularyKey, badgerManifestKey} {
			if err := txn.Delete([]byte(k)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear previous artifacts: %w", err)
	}
	if err := s.db.DropPrefix([]byte(badgerChunkPrefix)); err != nil {
		return fmt.Errorf("drop previous similarity chunks: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	chunks := 0
	for off := 0; off < len(matData); off += matrixChunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(off+matrixChunkSize, len(matData))
		if err := wb.Set(chunkKey(chunks), matData[off:end]); err != nil {
			return fmt.Errorf("write similarity chunk: %w", err)
		}
		chunks++
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush similarity chunks: %w", err)
	}

	header, err := json.Marshal(matrixHeader{BuildID: b.Manifest.BuildID, Bytes: len(matData), Chunks: chunks})
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(badgerCatalogKey), catData); err != nil {
			return err
		}
		if vocabData != nil {
			if err := txn.Set([]byte(badgerVocabularyKey), vocabData); err != nil {
				return err
			}
		}
		if err := txn.Set([]byte(badgerManifestKey), manData); err != nil {
			return err
		}
		return txn.Set([]byte(badgerMatrixKey), header)
	})
}

// Load reads the stored bundle.
func (s *BadgerStore) Load(ctx context.Context) (*Bundle, error) {
	b := &Bundle{}
	err := s.db.View(func(txn *badger.Txn) error {
		catData, err := getValue(txn, badgerCatalogKey)
		if err != nil {
			return err
		}
		headerData, err := getValue(txn, badgerMatrixKey)
		if err != nil {
			return err
		}
		if catData == nil {
			return missing(CatalogBlob)
		}
		if headerData == nil {
			return missing(SimilarityBlob)
		}

		var header matrixHeader
		if err := json.Unmarshal(headerData, &header); err != nil {
			return fmt.Errorf("%w: similarity header: %v", ErrCorruptArtifact, err)
		}
		buf := bytes.NewBuffer(make([]byte, 0, header.Bytes))
		for i := 0; i < header.Chunks; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			chunk, err := getValue(txn, string(chunkKey(i)))
			if err != nil {
				return err
			}
			if chunk == nil {
				return fmt.Errorf("%w: similarity chunk %d missing", ErrCorruptArtifact, i)
			}
			buf.Write(chunk)
		}

		if b.Catalog, err = decodeCatalog(catData); err != nil {
			return err
		}
		if b.Matrix, err = decodeMatrix(buf, int64(buf.Len())); err != nil {
			return err
		}

		if data, err := getValue(txn, badgerVocabularyKey); err != nil {
			return err
		} else if data != nil {
			if b.Vocabulary, err = decodeVocabulary(data); err != nil {
				return err
			}
		}
		if data, err := getValue(txn, badgerManifestKey); err != nil {
			return err
		} else if data != nil {
			if b.Manifest, err = decodeManifest(data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// getValue returns a copy of the value, or nil when the key is absent.
func getValue(txn *badger.Txn, key string) ([]byte, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return item.ValueCopy(nil)
}

func chunkKey(i int) []byte {
	return []byte(fmt.Sprintf("%s%06d", badgerChunkPrefix, i))
}
