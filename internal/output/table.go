// Package output writes scanner result tables and the run metadata record.
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/khanhnv2901/domainscan/internal/shared/constants"
)

// Table is an append-only CSV table for one scanner. Appends from concurrent
// domain tasks serialize on the table's lock; tables are independent.
type Table struct {
	Path string

	mu    sync.Mutex
	file  *os.File
	w     *csv.Writer
	width int
}

// TablePath names the output table for a scanner.
func TablePath(resultsDir, scannerName string) string {
	return filepath.Join(resultsDir, scannerName+".csv")
}

// OpenTable truncates any previous table and writes the header row.
func OpenTable(path string, header []string) (*Table, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.DefaultFilePerm)
	if err != nil {
		return nil, fmt.Errorf("open result table %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write table header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush table header: %w", err)
	}

	return &Table{Path: path, file: f, w: w, width: len(header)}, nil
}

// Append writes one data row. Short rows are padded so every data row matches
// the header width.
func (t *Table) Append(cells []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(cells) < t.width {
		padded := make([]string, t.width)
		copy(padded, cells)
		cells = padded
	}
	if err := t.w.Write(cells); err != nil {
		return fmt.Errorf("append row to %s: %w", t.Path, err)
	}
	t.w.Flush()
	return t.w.Error()
}

// Close flushes and closes the underlying file.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.w.Flush()
	if err := t.w.Error(); err != nil {
		t.file.Close()
		return err
	}
	return t.file.Close()
}

// SortByDomain rewrites a closed table with data rows ordered
// lexicographically by the first column. The replace is atomic.
func SortByDomain(path string) error {
	header, rows, err := ReadTable(path)
	if err != nil {
		return err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i][0] < rows[j][0]
	})

	return ReplaceTable(path, header, rows)
}

// ReadTable loads a table's header and data rows into memory.
func ReadTable(path string) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open result table %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read result table %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("result table %s has no header", path)
	}
	return records[0], records[1:], nil
}

// ReplaceTable atomically rewrites a table with the given header and rows.
func ReplaceTable(path string, header []string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp table header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return fmt.Errorf("write temp table row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("flush temp table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp table: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace table %s: %w", path, err)
	}
	return nil
}
