// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"fmt"
	"path/filepath"

	"github.com/tealeg/xlsx/v3"
)

// readXLSX reads the first sheet of a workbook; the first row is the header.
func readXLSX(path string) (*Table, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	if len(wb.Sheets) == 0 {
		return &Table{Name: filepath.Base(path)}, nil
	}
	sheet := wb.Sheets[0]

	var (
		header  []string
		records [][]string
	)
	err = sheet.ForEachRow(func(row *xlsx.Row) error {
		var cells []string
		if err := row.ForEachCell(func(c *xlsx.Cell) error {
			cells = append(cells, c.Value)
			return nil
		}); err != nil {
			return err
		}
		if header == nil {
			header = cells
			return nil
		}
		records = append(records, cells)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheet.Name, path, err)
	}
	return newTable(filepath.Base(path), header, records), nil
}
