// Copyright 2020, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package sheetlog appends validated case records to a worksheet,
// keeping a fixed header row in place.
package sheetlog

import (
	"context"
	"errors"
)

// RangeAccess is the minimal worksheet access the logger needs.
//
// Rows and columns are 0-indexed. Writes are only guaranteed to be
// observable by reads after Sync returned.
type RangeAccess interface {
	ReadCell(ctx context.Context, row, col int) (string, error)
	// UsedRowCount returns the number of rows from row 0 up to
	// and including the last populated row.
	UsedRowCount(ctx context.Context) (int, error)
	WriteRow(ctx context.Context, row, col int, values []string) error
	SetBold(ctx context.Context, r Range) error
	AutofitColumns(ctx context.Context, r Range) error
	// Sync commits the pending writes.
	// A *FormatError means the values are committed, only the formatting failed.
	Sync(ctx context.Context) error
}

// RowReader is implemented by backends which can read n cells of a row
// in one round trip. The returned slice may be shorter than n.
type RowReader interface {
	ReadRow(ctx context.Context, row, col, n int) ([]string, error)
}

// RowsReader is implemented by backends which can return all used rows at once.
type RowsReader interface {
	Rows(ctx context.Context) ([][]string, error)
}

// Discarder is implemented by backends which can drop the writes
// not yet committed by Sync.
type Discarder interface {
	Discard()
}

// Hoster is implemented by backends which know their host type.
type Hoster interface {
	Host() string
}

// Range is a rectangular region of a worksheet.
type Range struct {
	Row, Col   int
	Rows, Cols int
}

// RowRange returns the range of one row, cols wide.
func RowRange(row, cols int) Range { return Range{Row: row, Rows: 1, Cols: cols} }

// Style is a style for a column/row/cell.
type Style struct {
	// Format is the number format
	Format string
	// FontBold is true if the font is bold
	FontBold bool
}

// Column contains the Name of the column and header's style and column's style.
type Column struct {
	Name           string
	Header, Column Style
}

var ErrTooManyRows = errors.New("too many rows")

// HostOf returns the host tag of ra, or "" if it does not tell.
func HostOf(ra RangeAccess) string {
	if h, ok := ra.(Hoster); ok {
		return h.Host()
	}
	return ""
}
