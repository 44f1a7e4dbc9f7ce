// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package artifact persists and loads a completed build: the catalog and
// the similarity matrix as one pair, plus the fitted vocabulary and a
// manifest describing the build.
//
// Loading needs both the catalog and the similarity blob. If either is
// missing the load fails with ErrMissingArtifact and nothing is returned.
// Two backends exist: a plain directory of files (FileStore) and a
// BadgerDB database (BadgerStore).
package artifact

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/similarity"
	"github.com/tomtom215/cinematch/internal/vectorize"
)

// Blob names, shared by both backends.
const (
	CatalogBlob    = "movies.json"
	SimilarityBlob = "similarity.bin"
	VocabularyBlob = "vocabulary.json"
	ManifestBlob   = "manifest.json"
)

// FormatVersion is written into the manifest and the matrix header.
const FormatVersion = 1

var matrixMagic = [4]byte{'C', 'M', 'S', 'M'}

var (
	// ErrMissingArtifact is returned when the catalog or similarity blob is absent.
	ErrMissingArtifact = errors.New("missing artifact")

	// ErrCorruptArtifact is returned when blobs exist but cannot be decoded
	// or do not describe the same items.
	ErrCorruptArtifact = errors.New("corrupt artifact")

	// ErrUnknownBackend is returned by Open for an unknown backend name.
	ErrUnknownBackend = errors.New("unknown artifact backend")
)

// Manifest describes one build.
type Manifest struct {
	FormatVersion  int       `json:"format_version"`
	BuildID        string    `json:"build_id"`
	CreatedAt      time.Time `json:"created_at"`
	Items          int       `json:"items"`
	VocabularySize int       `json:"vocabulary_size"`
	MaxFeatures    int       `json:"max_features"`
	StopWords      string    `json:"stop_words"`
	Sources        []string  `json:"sources,omitempty"`
}

// Bundle is everything a build produces.
type Bundle struct {
	Manifest   Manifest
	Catalog    catalog.Catalog
	Matrix     *similarity.Matrix
	Vocabulary *vectorize.Vocabulary
}

// NewBundle assembles a bundle and stamps a fresh manifest.
func NewBundle(cat catalog.Catalog, m *similarity.Matrix, vocab *vectorize.Vocabulary, sources ...string) *Bundle {
	man := Manifest{
		FormatVersion: FormatVersion,
		BuildID:       uuid.New().String(),
		CreatedAt:     time.Now().UTC(),
		Items:         len(cat),
		Sources:       sources,
	}
	if vocab != nil {
		man.VocabularySize = vocab.Size()
		man.MaxFeatures = vocab.MaxFeatures
		man.StopWords = vocab.StopWords
	}
	return &Bundle{Manifest: man, Catalog: cat, Matrix: m, Vocabulary: vocab}
}

// Validate checks the catalog/matrix invariant.
func (b *Bundle) Validate() error {
	if b.Matrix == nil {
		return fmt.Errorf("%w: no similarity matrix", ErrCorruptArtifact)
	}
	if b.Matrix.Size() != len(b.Catalog) {
		return fmt.Errorf("%w: catalog has %d items but matrix is %d×%d",
			ErrCorruptArtifact, len(b.Catalog), b.Matrix.Size(), b.Matrix.Size())
	}
	return nil
}

// Store persists and loads bundles.
type Store interface {
	Save(ctx context.Context, b *Bundle) error
	Load(ctx context.Context) (*Bundle, error)
	Close() error
}

// Open returns the store for a backend name: "file" or "badger".
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", "file":
		return NewFileStore(dir), nil
	case "badger":
		return OpenBadgerStore(dir)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func missing(blob string) error {
	return fmt.Errorf("%w: %s", ErrMissingArtifact, blob)
}

func encodeMatrix(w io.Writer, m *similarity.Matrix) error {
	header := struct {
		Magic   [4]byte
		Version uint32
		N       uint32
	}{matrixMagic, FormatVersion, uint32(m.Size())}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, m.Data())
}

// decodeMatrix reads a similarity blob of size bytes. The header's
// dimension must account for exactly the remaining bytes, so a damaged
// header is rejected before anything is allocated.
func decodeMatrix(r io.Reader, size int64) (*similarity.Matrix, error) {
	var header struct {
		Magic   [4]byte
		Version uint32
		N       uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: matrix header: %v", ErrCorruptArtifact, err)
	}
	if header.Magic != matrixMagic {
		return nil, fmt.Errorf("%w: bad matrix magic", ErrCorruptArtifact)
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("%w: matrix format version %d", ErrCorruptArtifact, header.Version)
	}
	payload := size - matrixHeaderSize
	if payload < 0 || payload%4 != 0 || uint64(payload/4) != uint64(header.N)*uint64(header.N) {
		return nil, fmt.Errorf("%w: matrix header claims %d rows but blob holds %d bytes",
			ErrCorruptArtifact, header.N, size)
	}
	n := int(header.N)
	data := make([]float32, n*n)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("%w: matrix data: %v", ErrCorruptArtifact, err)
	}
	return similarity.FromData(n, data)
}

// matrixHeaderSize is the encoded size of the magic, version and row count.
const matrixHeaderSize = 12

func matrixBytes(m *similarity.Matrix) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(matrixHeaderSize + 4*len(m.Data()))
	if err := encodeMatrix(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeCatalog(data []byte) (catalog.Catalog, error) {
	var cat catalog.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("%w: catalog: %v", ErrCorruptArtifact, err)
	}
	return cat, nil
}

func decodeVocabulary(data []byte) (*vectorize.Vocabulary, error) {
	var v vectorize.Vocabulary
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: vocabulary: %v", ErrCorruptArtifact, err)
	}
	return &v, nil
}

func decodeManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: manifest: %v", ErrCorruptArtifact, err)
	}
	return m, nil
}
