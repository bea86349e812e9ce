// Copyright 2020, 2023, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package xlsx is a sheetlog.RangeAccess over a local .xlsx workbook.
package xlsx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/UNO-SOFT/sheetlog"
	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"
)

var _ = (sheetlog.RangeAccess)((*Worksheet)(nil))
var _ = (sheetlog.RowsReader)((*Worksheet)(nil))
var _ = (sheetlog.Discarder)((*Worksheet)(nil))

// Host is the host tag of the workbook backend.
const Host = "Excel"

// MaxRowCount is the number of maximum rows.
const MaxRowCount = 1_048_576

// maxColWidth is the widest column excelize accepts.
const maxColWidth = 255

// Worksheet is one sheet of a workbook file.
//
// Every write goes to the in-memory workbook, Sync saves it to the file.
// The last saved state is kept, so a failed Sync or a Discard
// drops the unsaved changes.
type Worksheet struct {
	xl     *excelize.File
	path   string
	Name   string
	saved  []byte
	styles map[string]int
	mu     sync.Mutex
}

// Open opens the workbook at path (creating it if it does not exist yet),
// and selects the named sheet, adding it if needed.
func Open(path, sheet string) (*Worksheet, error) {
	saved, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	xl, sheet, err := load(saved, sheet)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	return &Worksheet{xl: xl, path: path, Name: sheet, saved: saved}, nil
}

// load opens the workbook serialized in saved (a new one if saved is empty),
// and selects the sheet.
func load(saved []byte, sheet string) (*excelize.File, string, error) {
	var xl *excelize.File
	isNew := len(saved) == 0
	if isNew {
		xl = excelize.NewFile()
	} else {
		var err error
		if xl, err = excelize.OpenReader(bytes.NewReader(saved)); err != nil {
			return nil, "", err
		}
	}
	if sheet == "" {
		sheet = xl.GetSheetName(xl.GetActiveSheetIndex())
	}
	idx, err := xl.GetSheetIndex(sheet)
	if err != nil {
		xl.Close()
		return nil, "", fmt.Errorf("%q: %w", sheet, err)
	}
	if idx < 0 {
		if isNew {
			err = xl.SetSheetName("Sheet1", sheet)
		} else {
			_, err = xl.NewSheet(sheet)
		}
		if err != nil {
			xl.Close()
			return nil, "", fmt.Errorf("add sheet %q: %w", sheet, err)
		}
	}
	return xl, sheet, nil
}

// Discard drops the unsaved changes, going back to the last saved state.
func (ws *Worksheet) Discard() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.rollback()
}

func (ws *Worksheet) rollback() {
	xl, _, err := load(ws.saved, ws.Name)
	if err != nil {
		return
	}
	if ws.xl != nil {
		ws.xl.Close()
	}
	ws.xl, ws.styles = xl, nil
}

func (ws *Worksheet) Host() string { return Host }

// Close closes the workbook without saving it.
func (ws *Worksheet) Close() error {
	if ws == nil {
		return nil
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	xl := ws.xl
	ws.xl = nil
	if xl == nil {
		return nil
	}
	return xl.Close()
}

func (ws *Worksheet) ReadCell(ctx context.Context, row, col int) (string, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return "", err
	}
	s, err := ws.xl.GetCellValue(ws.Name, axis)
	if err != nil {
		return "", fmt.Errorf("%s[%s]: %w", ws.Name, axis, err)
	}
	return s, ctx.Err()
}

func (ws *Worksheet) UsedRowCount(ctx context.Context) (int, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	rows, err := ws.rows()
	return len(rows), err
}

// Rows returns the used rows.
func (ws *Worksheet) Rows(ctx context.Context) ([][]string, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	rows, err := ws.rows()
	if err != nil {
		return nil, err
	}
	return rows, ctx.Err()
}

func (ws *Worksheet) rows() ([][]string, error) {
	rows, err := ws.xl.GetRows(ws.Name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ws.Name, err)
	}
	// Cells written with "" still show up as rows.
	for len(rows) != 0 && isBlank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

func (ws *Worksheet) WriteRow(ctx context.Context, row, col int, values []string) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if row >= MaxRowCount {
		return sheetlog.ErrTooManyRows
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return fmt.Errorf("%d/%d: %w", col, row, err)
	}
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	if err := ws.xl.SetSheetRow(ws.Name, axis, &vals); err != nil {
		return fmt.Errorf("%s[%s]: %w", ws.Name, axis, err)
	}
	return nil
}

func (ws *Worksheet) SetBold(ctx context.Context, r sheetlog.Range) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	s, err := ws.getStyle(sheetlog.Style{FontBold: true})
	if err != nil {
		return err
	}
	tl, br, err := cellNames(r)
	if err != nil {
		return err
	}
	if err := ws.xl.SetCellStyle(ws.Name, tl, br, s); err != nil {
		return fmt.Errorf("%s[%s:%s]: %w", ws.Name, tl, br, err)
	}
	return ctx.Err()
}

// AutofitColumns sets the width of the columns of r to the widest text
// in the rows of r.
func (ws *Worksheet) AutofitColumns(ctx context.Context, r sheetlog.Range) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	rows, err := ws.rows()
	if err != nil {
		return err
	}
	for c := r.Col; c < r.Col+r.Cols; c++ {
		var width int
		for i := r.Row; i < r.Row+r.Rows && i < len(rows); i++ {
			if c < len(rows[i]) {
				width = max(width, runewidth.StringWidth(rows[i][c]))
			}
		}
		if width == 0 {
			continue
		}
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		cur, err := ws.xl.GetColWidth(ws.Name, col)
		if err != nil {
			return err
		}
		w := min(float64(width)*1.1+2, maxColWidth)
		if w <= cur {
			continue
		}
		if err := ws.xl.SetColWidth(ws.Name, col, col, w); err != nil {
			return fmt.Errorf("%s[%s]: %w", ws.Name, col, err)
		}
	}
	return ctx.Err()
}

// Sync saves the workbook, replacing the file only when the whole
// workbook has been written. On failure the unsaved changes are dropped.
func (ws *Worksheet) Sync(ctx context.Context) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := ctx.Err(); err != nil {
		ws.rollback()
		return err
	}
	buf, err := ws.xl.WriteToBuffer()
	if err == nil {
		err = writeFile(ws.path, buf.Bytes())
	}
	if err != nil {
		ws.rollback()
		return fmt.Errorf("save %q: %w", ws.path, err)
	}
	ws.saved = bytes.Clone(buf.Bytes())
	return nil
}

// writeFile writes b into a temporary file next to fn, then renames it to fn.
func writeFile(fn string, b []byte) error {
	fh, err := os.CreateTemp(filepath.Dir(fn), "."+filepath.Base(fn)+"-*")
	if err != nil {
		return err
	}
	tmp := fh.Name()
	_ = fh.Chmod(0o644)
	if _, err = fh.Write(b); err == nil {
		err = fh.Close()
	} else {
		fh.Close()
	}
	if err == nil {
		err = os.Rename(tmp, fn)
	}
	if err != nil {
		os.Remove(tmp)
	}
	return err
}

func (ws *Worksheet) getStyle(style sheetlog.Style) (int, error) {
	k := fmt.Sprintf("%t\t%s", style.FontBold, style.Format)
	s, ok := ws.styles[k]
	if ok {
		return s, nil
	}
	var st excelize.Style
	if style.FontBold {
		st.Font = &excelize.Font{Bold: true}
	}
	if style.Format != "" {
		st.CustomNumFmt = &style.Format
	}
	s, err := ws.xl.NewStyle(&st)
	if err != nil {
		return 0, err
	}
	if ws.styles == nil {
		ws.styles = make(map[string]int)
	}
	ws.styles[k] = s
	return s, nil
}

func cellNames(r sheetlog.Range) (topLeft, bottomRight string, err error) {
	if r.Rows < 1 || r.Cols < 1 {
		return "", "", fmt.Errorf("empty range %+v", r)
	}
	if topLeft, err = excelize.CoordinatesToCellName(r.Col+1, r.Row+1); err != nil {
		return "", "", err
	}
	bottomRight, err = excelize.CoordinatesToCellName(r.Col+r.Cols, r.Row+r.Rows)
	return topLeft, bottomRight, err
}

func isBlank(row []string) bool {
	for _, s := range row {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
