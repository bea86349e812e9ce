// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetlog_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UNO-SOFT/sheetlog"
	"github.com/UNO-SOFT/sheetlog/memsheet"
)

var headerNames = []string{"Date", "Age", "Sex", "MRN", "Diagnosis", "Procedure", "Attendant(s)", "Role", "Surgery Type"}

func rowsOf(t *testing.T, ms *memsheet.Sheet) [][]string {
	t.Helper()
	rows, err := ms.Rows(context.Background())
	require.NoError(t, err)
	return rows
}

func TestDefaultHeader(t *testing.T) {
	assert.Equal(t, headerNames, sheetlog.DefaultHeader().Names())
}

func TestEnsureHeadersEmptySheet(t *testing.T) {
	ctx := context.Background()
	ms := memsheet.New()
	sl := sheetlog.New(ms)
	require.NoError(t, sl.EnsureHeaders(ctx))
	rows := rowsOf(t, ms)
	require.Len(t, rows, 1)
	assert.Equal(t, headerNames, rows[0])
	for c := range headerNames {
		assert.True(t, ms.IsBold(0, c), "column %d", c)
	}
	ok, err := sl.HasHeaders(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEnsureHeadersIdempotent(t *testing.T) {
	ctx := context.Background()
	ms := memsheet.New()
	sl := sheetlog.New(ms)
	require.NoError(t, sl.EnsureHeaders(ctx))
	writes, before := ms.Writes(), rowsOf(t, ms)
	for range 5 {
		require.NoError(t, sl.EnsureHeaders(ctx))
	}
	assert.Equal(t, writes, ms.Writes())
	assert.Equal(t, 0, ms.Pending())
	assert.Equal(t, before, rowsOf(t, ms))
}

func TestEnsureHeadersForeignFirstRow(t *testing.T) {
	ctx := context.Background()
	// The first cell alone must not be mistaken for the header.
	ms := memsheet.FromRows([]string{"Date", "Amount", "Payee"})
	sl := sheetlog.New(ms)
	ok, err := sl.HasHeaders(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	err = sl.EnsureHeaders(ctx)
	var hme *sheetlog.HeaderMismatchError
	require.ErrorAs(t, err, &hme)
	assert.Equal(t, 0, ms.Writes())
	assert.Equal(t, [][]string{{"Date", "Amount", "Payee"}}, rowsOf(t, ms))

	_, err = sl.AppendRow(ctx, sheetlog.NewRecord(make([]string, len(headerNames))...))
	require.ErrorAs(t, err, &hme)
	assert.Equal(t, 0, ms.Writes())
}

func TestAppendScenario(t *testing.T) {
	ctx := context.Background()
	ms := memsheet.New()
	sl := sheetlog.New(ms)
	require.NoError(t, sl.EnsureHeaders(ctx))

	first := sheetlog.Form{
		Date: "2024-01-01", Age: "34", Sex: "F", MRN: "123",
		Diagnosis: "Appendicitis", Procedure: "Appendectomy",
		Attendants: []string{"Dr Menarg"}, Role: "Surgeon", SurgeryType: "Emergency",
	}
	rec, err := first.Record()
	require.NoError(t, err)
	row, err := sl.AppendRow(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, 1, row)

	second := first
	second.MRN, second.Diagnosis, second.Procedure = "456", "Hernia", "Herniorrhaphy"
	second.Attendants = nil
	second.SurgeryType = "Elective"
	rec, err = second.Record()
	require.NoError(t, err)
	row, err = sl.AppendRow(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, 2, row)

	assert.Equal(t, [][]string{
		headerNames,
		{"2024-01-01", "34", "F", "123", "Appendicitis", "Appendectomy", "Dr Menarg", "Surgeon", "Emergency"},
		{"2024-01-01", "34", "F", "456", "Hernia", "Herniorrhaphy", "", "Surgeon", "Elective"},
	}, rowsOf(t, ms))
}

func TestAppendWithoutEnsureHeaders(t *testing.T) {
	for _, oneWhenEmpty := range []bool{false, true} {
		ms := memsheet.New()
		ms.OneWhenEmpty = oneWhenEmpty
		sl := sheetlog.New(ms)
		row, err := sl.AppendRow(context.Background(), sheetlog.NewRecord("a", "b", "c", "d", "e", "f", "", "h", "i"))
		require.NoError(t, err)
		assert.Equal(t, 1, row, "oneWhenEmpty=%t", oneWhenEmpty)
		rows := rowsOf(t, ms)
		require.Len(t, rows, 2)
		assert.Equal(t, headerNames, rows[0])
	}
}

func TestAppendBlankHeaderRowKeepsData(t *testing.T) {
	// Row 0 was cleared by hand, but the data below it must stay.
	ms := memsheet.FromRows(nil, []string{"x"}, []string{"y"})
	sl := sheetlog.New(ms)
	row, err := sl.AppendRow(context.Background(), sheetlog.NewRecord("1", "2", "3", "4", "5", "6", "7", "8", "9"))
	require.NoError(t, err)
	assert.Equal(t, 3, row)
	rows := rowsOf(t, ms)
	assert.Equal(t, headerNames, rows[0])
	assert.Equal(t, "x", rows[1][0])
	assert.Equal(t, "y", rows[2][0])
}

func TestAppendSequence(t *testing.T) {
	ctx := context.Background()
	ms := memsheet.New()
	sl := sheetlog.New(ms)
	const K = 10
	for i := range K {
		require.NoError(t, sl.EnsureHeaders(ctx))
		vals := make([]string, len(headerNames))
		for j := range vals {
			vals[j] = string(rune('a'+i)) + string(rune('0'+j))
		}
		row, err := sl.AppendRow(ctx, sheetlog.NewRecord(vals...))
		require.NoError(t, err)
		require.Equal(t, i+1, row)
	}
	rows := rowsOf(t, ms)
	require.Len(t, rows, K+1)
	assert.Equal(t, headerNames, rows[0])
	for i := 1; i <= K; i++ {
		assert.Equal(t, string(rune('a'+i-1))+"0", rows[i][0])
	}
}

func TestAppendConcurrent(t *testing.T) {
	ctx := context.Background()
	ms := memsheet.New()
	sl := sheetlog.New(ms)
	require.NoError(t, sl.EnsureHeaders(ctx))
	const N = 20
	var wg sync.WaitGroup
	seen := make(chan int, N)
	for range N {
		wg.Add(1)
		go func() {
			defer wg.Done()
			row, err := sl.AppendRow(ctx, sheetlog.NewRecord("1", "2", "3", "4", "5", "6", "7", "8", "9"))
			assert.NoError(t, err)
			seen <- row
		}()
	}
	wg.Wait()
	close(seen)
	got := make(map[int]bool)
	for r := range seen {
		assert.False(t, got[r], "row %d written twice", r)
		got[r] = true
	}
	assert.Len(t, rowsOf(t, ms), N+1)
}

func TestAppendHostFailure(t *testing.T) {
	ctx := context.Background()
	ms := memsheet.New()
	sl := sheetlog.New(ms)
	require.NoError(t, sl.EnsureHeaders(ctx))
	writes := ms.Writes()

	boom := errors.New("connection reset")
	ms.Fail("Sync", boom)
	_, err := sl.AppendRow(ctx, sheetlog.NewRecord("1", "2", "3", "4", "5", "6", "7", "8", "9"))
	var hae *sheetlog.HostAccessError
	require.ErrorAs(t, err, &hae)
	assert.Equal(t, "Sync", hae.Op)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, writes, ms.Writes())
	assert.Len(t, rowsOf(t, ms), 1)

	ms.Fail("Sync", nil)
	row, err := sl.AppendRow(ctx, sheetlog.NewRecord("1", "2", "3", "4", "5", "6", "7", "8", "9"))
	require.NoError(t, err)
	assert.Equal(t, 1, row)
}

func TestAppendAutofitFailureIsNotFatal(t *testing.T) {
	ms := memsheet.New()
	ms.Fail("AutofitColumns", errors.New("not supported"))
	sl := sheetlog.New(ms)
	row, err := sl.AppendRow(context.Background(), sheetlog.NewRecord("1", "2", "3", "4", "5", "6", "7", "8", "9"))
	require.NoError(t, err)
	assert.Equal(t, 1, row)
}

func TestAppendWidthMismatch(t *testing.T) {
	ms := memsheet.New()
	sl := sheetlog.New(ms)
	_, err := sl.AppendRow(context.Background(), sheetlog.NewRecord("only", "three", "values"))
	require.Error(t, err)
	assert.Equal(t, 0, ms.Writes())
	assert.Equal(t, 0, ms.Pending())
}

func TestAlternateHeader(t *testing.T) {
	ctx := context.Background()
	ms := memsheet.New()
	sl := sheetlog.New(ms, sheetlog.WithHeader(sheetlog.NewHeader("When", "What")))
	require.NoError(t, sl.EnsureHeaders(ctx))
	row, err := sl.AppendRow(ctx, sheetlog.NewRecord("today", "lunch"))
	require.NoError(t, err)
	assert.Equal(t, 1, row)
	assert.Equal(t, [][]string{{"When", "What"}, {"today", "lunch"}}, rowsOf(t, ms))
}

func TestAppendFailureDiscardsPendingHeader(t *testing.T) {
	ms := memsheet.New()
	ms.Fail("SetBold", errors.New("read-only"))
	sl := sheetlog.New(ms)
	_, err := sl.AppendRow(context.Background(), sheetlog.NewRecord("1", "2", "3", "4", "5", "6", "7", "8", "9"))
	var hae *sheetlog.HostAccessError
	require.ErrorAs(t, err, &hae)
	assert.Equal(t, "SetBold", hae.Op)
	assert.Equal(t, 0, ms.Pending())

	ms.Fail("SetBold", nil)
	require.NoError(t, ms.Sync(context.Background()))
	assert.Empty(t, rowsOf(t, ms))
}

// formatFailing commits the values but reports the formatting as lost.
type formatFailing struct{ *memsheet.Sheet }

func (s formatFailing) Sync(ctx context.Context) error {
	if err := s.Sheet.Sync(ctx); err != nil {
		return err
	}
	return &sheetlog.FormatError{Err: errors.New("autoResize: backend error")}
}

func TestFormatFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	ms := memsheet.New()
	sl := sheetlog.New(formatFailing{ms})
	require.NoError(t, sl.EnsureHeaders(ctx))
	row, err := sl.AppendRow(ctx, sheetlog.NewRecord("1", "2", "3", "4", "5", "6", "7", "8", "9"))
	require.NoError(t, err)
	assert.Equal(t, 1, row)
	row, err = sl.AppendRow(ctx, sheetlog.NewRecord("a", "b", "c", "d", "e", "f", "g", "h", "i"))
	require.NoError(t, err)
	assert.Equal(t, 2, row)
	assert.Len(t, rowsOf(t, ms), 3)
}

// rowReading reads the header row in one call.
type rowReading struct {
	*memsheet.Sheet
	rowReads, cellReads int
}

func (s *rowReading) ReadCell(ctx context.Context, row, col int) (string, error) {
	s.cellReads++
	return s.Sheet.ReadCell(ctx, row, col)
}

func (s *rowReading) ReadRow(ctx context.Context, row, col, n int) ([]string, error) {
	s.rowReads++
	rows, err := s.Sheet.Rows(ctx)
	if err != nil || row >= len(rows) {
		return nil, err
	}
	r := rows[row]
	if col >= len(r) {
		return nil, nil
	}
	return r[col:min(len(r), col+n)], nil
}

func TestHeaderCheckReadsRowOnce(t *testing.T) {
	ctx := context.Background()
	rr := &rowReading{Sheet: memsheet.New()}
	sl := sheetlog.New(rr)
	require.NoError(t, sl.EnsureHeaders(ctx))
	ok, err := sl.HasHeaders(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = sl.AppendRow(ctx, sheetlog.NewRecord("1", "2", "3", "4", "5", "6", "7", "8", "9"))
	require.NoError(t, err)
	assert.Positive(t, rr.rowReads)
	assert.Zero(t, rr.cellReads)
}
