// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package memsheet is an in-memory worksheet.
//
// Writes are pending until Sync, just like with a remote host.
package memsheet

import (
	"context"
	"fmt"
	"sync"

	"github.com/UNO-SOFT/sheetlog"
)

var _ = (sheetlog.RangeAccess)((*Sheet)(nil))
var _ = (sheetlog.RowsReader)((*Sheet)(nil))
var _ = (sheetlog.Discarder)((*Sheet)(nil))

// Host is the host tag of the in-memory sheet.
const Host = "Memory"

type cell struct{ Row, Col int }

type op struct {
	Row, Col int
	Values   []string
	Bold     *sheetlog.Range
}

// Sheet is an in-memory sheetlog.RangeAccess. It is safe for concurrent use.
type Sheet struct {
	mu      sync.Mutex
	cells   map[cell]string
	bold    map[cell]bool
	pending []op
	writes  int
	syncs   int
	fail    map[string]error

	// OneWhenEmpty makes UsedRowCount report 1 for an empty sheet,
	// as some hosts do.
	OneWhenEmpty bool
}

// New returns an empty Sheet.
func New() *Sheet {
	return &Sheet{cells: make(map[cell]string), bold: make(map[cell]bool)}
}

// FromRows returns a Sheet already holding rows.
func FromRows(rows ...[]string) *Sheet {
	s := New()
	for r, row := range rows {
		for c, v := range row {
			if v != "" {
				s.cells[cell{r, c}] = v
			}
		}
	}
	return s
}

// Fail makes the named operation ("ReadCell", "WriteRow", "Sync", ...) return err.
// A nil err clears the failure.
func (s *Sheet) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail == nil {
		s.fail = make(map[string]error)
	}
	if err == nil {
		delete(s.fail, op)
	} else {
		s.fail[op] = err
	}
}

func (s *Sheet) failed(op string) error {
	if err := s.fail[op]; err != nil {
		return fmt.Errorf("memsheet %s: %w", op, err)
	}
	return nil
}

func (s *Sheet) Host() string { return Host }

func (s *Sheet) ReadCell(ctx context.Context, row, col int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed("ReadCell"); err != nil {
		return "", err
	}
	return s.cells[cell{row, col}], ctx.Err()
}

func (s *Sheet) UsedRowCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed("UsedRowCount"); err != nil {
		return 0, err
	}
	n := s.usedRows()
	if n == 0 && s.OneWhenEmpty {
		n = 1
	}
	return n, ctx.Err()
}

func (s *Sheet) usedRows() int {
	var n int
	for c := range s.cells {
		if c.Row >= n {
			n = c.Row + 1
		}
	}
	return n
}

func (s *Sheet) WriteRow(ctx context.Context, row, col int, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed("WriteRow"); err != nil {
		return err
	}
	if row < 0 || col < 0 {
		return fmt.Errorf("invalid position %d:%d", row, col)
	}
	s.pending = append(s.pending, op{Row: row, Col: col, Values: append([]string(nil), values...)})
	return ctx.Err()
}

func (s *Sheet) SetBold(ctx context.Context, r sheetlog.Range) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed("SetBold"); err != nil {
		return err
	}
	s.pending = append(s.pending, op{Bold: &r})
	return ctx.Err()
}

// AutofitColumns is a no-op, but can be made to fail.
func (s *Sheet) AutofitColumns(ctx context.Context, r sheetlog.Range) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failed("AutofitColumns"); err != nil {
		return err
	}
	return ctx.Err()
}

// Sync applies the pending writes. On failure, they are all dropped.
func (s *Sheet) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.pending
	s.pending = nil
	if err := s.failed("Sync"); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, o := range pending {
		if o.Bold != nil {
			for r := o.Bold.Row; r < o.Bold.Row+o.Bold.Rows; r++ {
				for c := o.Bold.Col; c < o.Bold.Col+o.Bold.Cols; c++ {
					s.bold[cell{r, c}] = true
				}
			}
			continue
		}
		for i, v := range o.Values {
			k := cell{o.Row, o.Col + i}
			if v == "" {
				delete(s.cells, k)
			} else {
				s.cells[k] = v
			}
		}
		s.writes++
	}
	s.syncs++
	return nil
}

// Discard drops the pending operations.
func (s *Sheet) Discard() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

// Rows returns the committed rows, each as wide as the widest row.
func (s *Sheet) Rows(ctx context.Context) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var width int
	for c := range s.cells {
		if c.Col >= width {
			width = c.Col + 1
		}
	}
	rows := make([][]string, s.usedRows())
	for r := range rows {
		rows[r] = make([]string, width)
		for c := range rows[r] {
			rows[r][c] = s.cells[cell{r, c}]
		}
	}
	return rows, ctx.Err()
}

// Writes returns the number of committed row writes.
func (s *Sheet) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Pending returns the number of uncommitted operations.
func (s *Sheet) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// IsBold reports whether the cell has been made bold.
func (s *Sheet) IsBold(row, col int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bold[cell{row, col}]
}
