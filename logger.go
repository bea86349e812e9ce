// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// SheetLogger keeps the header in row 0 and appends records below the used rows.
//
// Its methods are serialized, so concurrent appends never compute the same
// destination row.
type SheetLogger struct {
	ra     RangeAccess
	header Header
	logger *slog.Logger
	mu     sync.Mutex
}

// Option configures a SheetLogger.
type Option func(*SheetLogger)

// WithHeader replaces the DefaultHeader.
func WithHeader(h Header) Option {
	return func(l *SheetLogger) { l.header = append(Header(nil), h...) }
}

// WithLogger sets the diagnostic logger.
func WithLogger(lgr *slog.Logger) Option {
	return func(l *SheetLogger) {
		if lgr != nil {
			l.logger = lgr
		}
	}
}

// New returns a SheetLogger writing through ra.
func New(ra RangeAccess, opts ...Option) *SheetLogger {
	l := &SheetLogger{ra: ra, header: DefaultHeader(), logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Header returns a copy of the expected header.
func (l *SheetLogger) Header() Header { return append(Header(nil), l.header...) }

// HasHeaders reports whether row 0 holds the whole header.
func (l *SheetLogger) HasHeaders(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	row, err := l.readHeaderRow(ctx)
	if err != nil {
		return false, err
	}
	return l.header.Matches(row), nil
}

// EnsureHeaders writes the header into an empty row 0.
//
// It does not write anything when the header is already there.
// A row 0 with other content is left intact and a *HeaderMismatchError is returned.
func (l *SheetLogger) EnsureHeaders(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	row, err := l.readHeaderRow(ctx)
	if err != nil {
		return err
	}
	if l.header.Matches(row) {
		l.logger.Debug("header present")
		return nil
	}
	if !isBlank(row) {
		return &HeaderMismatchError{Got: row}
	}
	if err := l.writeHeader(ctx); err != nil {
		l.discard()
		return err
	}
	return l.sync(ctx)
}

// AppendRow writes rec right below the last used row, and returns
// the (0-based) row index it was written to.
//
// An empty sheet gets the header first. Nothing is written when
// row 0 holds something other than the header.
func (l *SheetLogger) AppendRow(ctx context.Context, rec Record) (int, error) {
	if rec.Len() != len(l.header) {
		return 0, fmt.Errorf("record has %d values, header has %d columns", rec.Len(), len(l.header))
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	row, err := l.readHeaderRow(ctx)
	if err != nil {
		return 0, err
	}
	hasHeader := l.header.Matches(row)
	if !hasHeader && !isBlank(row) {
		return 0, &HeaderMismatchError{Got: row}
	}
	// Some hosts report 1 used row for an empty sheet,
	// and a blank row 0 may still have rows below it.
	dest, err := l.ra.UsedRowCount(ctx)
	if err != nil {
		return 0, hostErr("UsedRowCount", err)
	}
	if dest < 1 {
		dest = 1
	}
	if !hasHeader {
		l.logger.Info("sheet has no header, writing it")
		if err := l.writeHeader(ctx); err != nil {
			l.discard()
			return 0, err
		}
	}
	if err := l.ra.WriteRow(ctx, dest, 0, rec.Values()); err != nil {
		l.discard()
		return 0, hostErr("WriteRow", err)
	}
	if err := l.ra.AutofitColumns(ctx, Range{Rows: dest + 1, Cols: len(l.header)}); err != nil {
		l.logger.Warn("autofit", "error", err)
	}
	if err := l.sync(ctx); err != nil {
		return 0, err
	}
	l.logger.Debug("appended", "row", dest)
	return dest, nil
}

func (l *SheetLogger) writeHeader(ctx context.Context) error {
	n := len(l.header)
	if err := l.ra.WriteRow(ctx, 0, 0, l.header.Names()); err != nil {
		return hostErr("WriteRow", err)
	}
	if err := l.ra.SetBold(ctx, RowRange(0, n)); err != nil {
		return hostErr("SetBold", err)
	}
	if err := l.ra.AutofitColumns(ctx, RowRange(0, n)); err != nil {
		l.logger.Warn("autofit header", "error", err)
	}
	return nil
}

// sync commits the pending writes. When the commit fails, the pending
// writes are dropped; a formatting failure after the commit is only logged.
func (l *SheetLogger) sync(ctx context.Context) error {
	err := l.ra.Sync(ctx)
	if err == nil {
		return nil
	}
	var fe *FormatError
	if errors.As(err, &fe) {
		l.logger.Warn("formatting not applied", "error", err)
		return nil
	}
	l.discard()
	return hostErr("Sync", err)
}

// discard drops the uncommitted writes of a failed operation, if the backend can.
func (l *SheetLogger) discard() {
	if d, ok := l.ra.(Discarder); ok {
		d.Discard()
	}
}

func (l *SheetLogger) readHeaderRow(ctx context.Context) ([]string, error) {
	if rr, ok := l.ra.(RowReader); ok {
		got, err := rr.ReadRow(ctx, 0, 0, len(l.header))
		if err != nil {
			return nil, hostErr("ReadRow", err)
		}
		row := make([]string, len(l.header))
		copy(row, got)
		return row, nil
	}
	row := make([]string, len(l.header))
	for i := range row {
		s, err := l.ra.ReadCell(ctx, 0, i)
		if err != nil {
			return nil, hostErr("ReadCell", err)
		}
		row[i] = s
		// The first cell decides most cases, spare the rest of the round trips.
		if t := strings.TrimSpace(s); i == 0 && t != "" && t != l.header[0].Name {
			return row[:1], nil
		}
	}
	return row, nil
}

func isBlank(row []string) bool {
	for _, s := range row {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
