// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

// Import appends every record read from cr, and returns the number of rows appended.
//
// A first line equal to the header is skipped, as are blank lines.
func Import(ctx context.Context, sl *SheetLogger, cr *csv.Reader) (int, error) {
	var n, line int
	for {
		row, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				return n, nil
			}
			return n, err
		}
		line++
		if line == 1 && sl.header.Matches(row) || isBlank(row) {
			continue
		}
		if len(row) != len(sl.header) {
			return n, fmt.Errorf("line %d: got %d fields, wanted %d", line, len(row), len(sl.header))
		}
		if _, err := sl.AppendRow(ctx, NewRecord(row...)); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		n++
	}
}

// Export writes all the used rows of rr (header included) to cw.
func Export(ctx context.Context, rr RowsReader, cw *csv.Writer) error {
	rows, err := rr.Rows(ctx)
	if err != nil {
		return hostErr("Rows", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
