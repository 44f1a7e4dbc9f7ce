// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInputMissing is returned when a raw source file does not exist.
var ErrInputMissing = errors.New("input source missing")

// ErrUnsupportedFormat is returned for raw sources with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// Table is a raw tabular source: a header plus rows keyed by column name.
// Cells that are not present in a row are absent from its map.
type Table struct {
	Name    string
	Columns []string
	Rows    []map[string]string
}

// HasColumn reports whether the table header contains the column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ReadTable reads a raw source, dispatching on the file extension:
//
//	movies.csv             comma separated, first row is the header
//	movies.xlsx            first sheet, first row is the header
//	tmdb.db#movies         SQLite database, table "movies"
//	movies.sqlite          SQLite database, table named after the file stem
func ReadTable(path string) (*Table, error) {
	file, table := splitTableRef(path)

	if _, err := os.Stat(file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputMissing, file)
		}
		return nil, fmt.Errorf("stat %s: %w", file, err)
	}

	ext := strings.ToLower(filepath.Ext(file))
	switch ext {
	case ".csv":
		return readCSV(file)
	case ".xlsx":
		return readXLSX(file)
	case ".db", ".sqlite", ".sqlite3":
		if table == "" {
			table = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		}
		return readSQLite(file, table)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// splitTableRef separates an optional "#table" suffix from a source path.
func splitTableRef(path string) (file, table string) {
	if i := strings.LastIndex(path, "#"); i > 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}

// newTable builds a Table from a header row and value rows, trimming the
// header and dropping empty cells so that absent and empty read the same.
func newTable(name string, header []string, records [][]string) *Table {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	t := &Table{Name: name, Columns: cols, Rows: make([]map[string]string, 0, len(records))}
	for _, rec := range records {
		row := make(map[string]string, len(cols))
		for i, col := range cols {
			if i >= len(rec) || col == "" {
				continue
			}
			if v := rec[i]; strings.TrimSpace(v) != "" {
				row[col] = v
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
