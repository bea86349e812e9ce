// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package gsheets is a sheetlog.RangeAccess over a Google Sheets worksheet.
//
// Writes and formatting are buffered and sent in (at most) two batch
// requests by Sync.
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/UNO-SOFT/sheetlog"
	"github.com/xuri/excelize/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var _ = (sheetlog.RangeAccess)((*Worksheet)(nil))
var _ = (sheetlog.RowsReader)((*Worksheet)(nil))
var _ = (sheetlog.Discarder)((*Worksheet)(nil))
var _ = (sheetlog.RowReader)((*Worksheet)(nil))

// Host is the host tag of the Google Sheets backend.
const Host = "Sheets"

// Worksheet is one sheet (tab) of a spreadsheet.
type Worksheet struct {
	service       *sheets.Service
	spreadsheetID string
	Name          string
	sheetID       int64

	mu       sync.Mutex
	values   []*sheets.ValueRange
	requests []*sheets.Request
}

// Open connects to the spreadsheet and selects the named sheet,
// adding it if it does not exist.
//
// Credentials are given with opts, such as option.WithCredentialsFile.
func Open(ctx context.Context, spreadsheetID, sheetName string, opts ...option.ClientOption) (*Worksheet, error) {
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create Sheets client: %w", err)
	}
	ws := &Worksheet{service: srv, spreadsheetID: spreadsheetID, Name: sheetName}
	if err := ws.ensureSheet(ctx); err != nil {
		return nil, err
	}
	return ws, nil
}

func (ws *Worksheet) ensureSheet(ctx context.Context) error {
	ss, err := ws.service.Spreadsheets.Get(ws.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return wrapErr(err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		if ws.Name == "" || sh.Properties.Title == ws.Name {
			ws.Name, ws.sheetID = sh.Properties.Title, sh.Properties.SheetId
			return nil
		}
	}
	if ws.Name == "" {
		return fmt.Errorf("spreadsheet %q has no sheets", ws.spreadsheetID)
	}
	resp, err := ws.service.Spreadsheets.BatchUpdate(ws.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: ws.Name},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return wrapErr(err)
	}
	if len(resp.Replies) != 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		ws.sheetID = resp.Replies[0].AddSheet.Properties.SheetId
	}
	return nil
}

func (ws *Worksheet) Host() string { return Host }

func (ws *Worksheet) ReadCell(ctx context.Context, row, col int) (string, error) {
	a1, err := ws.a1(row, col)
	if err != nil {
		return "", err
	}
	resp, err := ws.service.Spreadsheets.Values.Get(ws.spreadsheetID, a1).Context(ctx).Do()
	if err != nil {
		return "", wrapErr(err)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return "", nil
	}
	return toString(resp.Values[0][0]), nil
}

// ReadRow reads n cells of row, starting at col, with one request.
func (ws *Worksheet) ReadRow(ctx context.Context, row, col, n int) ([]string, error) {
	if n < 1 {
		return nil, nil
	}
	from, err := ws.a1(row, col)
	if err != nil {
		return nil, err
	}
	to, err := excelize.CoordinatesToCellName(col+n, row+1)
	if err != nil {
		return nil, err
	}
	resp, err := ws.service.Spreadsheets.Values.Get(ws.spreadsheetID, from+":"+to).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr(err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	vals := make([]string, len(resp.Values[0]))
	for i, v := range resp.Values[0] {
		vals[i] = toString(v)
	}
	return vals, nil
}

func (ws *Worksheet) UsedRowCount(ctx context.Context) (int, error) {
	rows, err := ws.Rows(ctx)
	return len(rows), err
}

// Rows returns the used rows of the sheet.
func (ws *Worksheet) Rows(ctx context.Context) ([][]string, error) {
	resp, err := ws.service.Spreadsheets.Values.Get(ws.spreadsheetID, quote(ws.Name)).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr(err)
	}
	rows := make([][]string, len(resp.Values))
	for i, vv := range resp.Values {
		rows[i] = make([]string, len(vv))
		for j, v := range vv {
			rows[i][j] = toString(v)
		}
	}
	for len(rows) != 0 && isBlank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

func (ws *Worksheet) WriteRow(ctx context.Context, row, col int, values []string) error {
	a1, err := ws.a1(row, col)
	if err != nil {
		return err
	}
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	ws.mu.Lock()
	ws.values = append(ws.values, &sheets.ValueRange{
		Range:          a1,
		MajorDimension: "ROWS",
		Values:         [][]any{vals},
	})
	ws.mu.Unlock()
	return ctx.Err()
}

func (ws *Worksheet) SetBold(ctx context.Context, r sheetlog.Range) error {
	ws.mu.Lock()
	ws.requests = append(ws.requests, &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: ws.gridRange(r),
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					TextFormat: &sheets.TextFormat{Bold: true},
				},
			},
			Fields: "userEnteredFormat.textFormat.bold",
		},
	})
	ws.mu.Unlock()
	return ctx.Err()
}

func (ws *Worksheet) AutofitColumns(ctx context.Context, r sheetlog.Range) error {
	ws.mu.Lock()
	ws.requests = append(ws.requests, &sheets.Request{
		AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
			Dimensions: &sheets.DimensionRange{
				SheetId:    ws.sheetID,
				Dimension:  "COLUMNS",
				StartIndex: int64(r.Col),
				EndIndex:   int64(r.Col + r.Cols),
			},
		},
	})
	ws.mu.Unlock()
	return ctx.Err()
}

// Sync sends the buffered values, then the buffered formatting requests.
// The buffers are emptied even on failure.
//
// The values are committed by the first request; if only the formatting
// request fails, a *sheetlog.FormatError is returned.
func (ws *Worksheet) Sync(ctx context.Context) error {
	ws.mu.Lock()
	values, requests := ws.values, ws.requests
	ws.values, ws.requests = nil, nil
	ws.mu.Unlock()
	if len(values) != 0 {
		if _, err := ws.service.Spreadsheets.Values.BatchUpdate(ws.spreadsheetID, &sheets.BatchUpdateValuesRequest{
			ValueInputOption: "RAW",
			Data:             values,
		}).Context(ctx).Do(); err != nil {
			return wrapErr(err)
		}
	}
	if len(requests) != 0 {
		if _, err := ws.service.Spreadsheets.BatchUpdate(ws.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: requests,
		}).Context(ctx).Do(); err != nil {
			return &sheetlog.FormatError{Err: wrapErr(err)}
		}
	}
	return nil
}

// Discard drops the buffered values and requests.
func (ws *Worksheet) Discard() {
	ws.mu.Lock()
	ws.values, ws.requests = nil, nil
	ws.mu.Unlock()
}

func (ws *Worksheet) gridRange(r sheetlog.Range) *sheets.GridRange {
	return &sheets.GridRange{
		SheetId:          ws.sheetID,
		StartRowIndex:    int64(r.Row),
		EndRowIndex:      int64(r.Row + r.Rows),
		StartColumnIndex: int64(r.Col),
		EndColumnIndex:   int64(r.Col + r.Cols),
	}
}

func (ws *Worksheet) a1(row, col int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return "", err
	}
	return quote(ws.Name) + "!" + cell, nil
}

func quote(sheetName string) string {
	return "'" + strings.ReplaceAll(sheetName, "'", "''") + "'"
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func isBlank(row []string) bool {
	for _, s := range row {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

// codedError carries the HTTP status code of a Sheets API error.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string     { return e.err.Error() }
func (e *codedError) Unwrap() error     { return e.err }
func (e *codedError) ErrorCode() string { return strconv.Itoa(e.code) }

func wrapErr(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return &codedError{code: gErr.Code, err: err}
	}
	return err
}
