// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetlog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UNO-SOFT/sheetlog"
	"github.com/UNO-SOFT/sheetlog/memsheet"
)

func newSession(ms *memsheet.Sheet, statuses *[]sheetlog.Status) *sheetlog.Session {
	return sheetlog.NewSession(sheetlog.New(ms), sheetlog.SessionConfig{
		ExpectHost: memsheet.Host,
		OnStatus:   func(st sheetlog.Status) { *statuses = append(*statuses, st) },
	})
}

func TestSessionInitWrongHost(t *testing.T) {
	ms := memsheet.New()
	var statuses []sheetlog.Status
	s := newSession(ms, &statuses)
	err := s.Init(context.Background(), sheetlog.HostInfo{Host: "Word"})
	require.ErrorIs(t, err, sheetlog.ErrHostMismatch)
	assert.True(t, s.Status().Error)
	assert.False(t, s.Ready())
	assert.Equal(t, 0, ms.Writes())

	_, err = s.Submit(context.Background(), validForm())
	require.ErrorIs(t, err, sheetlog.ErrNotReady)
	assert.Equal(t, 0, ms.Writes())
}

func TestSessionSubmit(t *testing.T) {
	ctx := context.Background()
	ms := memsheet.New()
	var statuses []sheetlog.Status
	s := newSession(ms, &statuses)
	require.NoError(t, s.Init(ctx, sheetlog.HostInfo{Host: memsheet.Host}))
	assert.False(t, s.Status().Error)

	row, err := s.Submit(ctx, validForm())
	require.NoError(t, err)
	assert.Equal(t, 2, row)
	assert.Equal(t, sheetlog.Status{Message: "Logged to row 2."}, s.Status())
	assert.Len(t, statuses, 2)
}

func TestSessionSubmitMissingField(t *testing.T) {
	ctx := context.Background()
	ms := memsheet.New()
	var statuses []sheetlog.Status
	s := newSession(ms, &statuses)
	require.NoError(t, s.Init(ctx, sheetlog.HostInfo{Host: memsheet.Host}))
	writes := ms.Writes()

	f := validForm()
	f.MRN = ""
	_, err := s.Submit(ctx, f)
	var ve *sheetlog.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, writes, ms.Writes())
	assert.Equal(t, 0, ms.Pending())
	st := s.Status()
	assert.True(t, st.Error)
	assert.Contains(t, st.Message, "mrn")
}

func TestSessionSubmitHostError(t *testing.T) {
	ctx := context.Background()
	ms := memsheet.New()
	var statuses []sheetlog.Status
	s := newSession(ms, &statuses)
	require.NoError(t, s.Init(ctx, sheetlog.HostInfo{Host: memsheet.Host}))
	ms.Fail("WriteRow", errors.New("permission denied"))
	_, err := s.Submit(ctx, validForm())
	var hae *sheetlog.HostAccessError
	require.ErrorAs(t, err, &hae)
	st := s.Status()
	assert.True(t, st.Error)
	assert.Contains(t, st.Message, "permission denied")
}

func TestSessionInitHostError(t *testing.T) {
	ms := memsheet.New()
	ms.Fail("ReadCell", errors.New("offline"))
	var statuses []sheetlog.Status
	s := newSession(ms, &statuses)
	err := s.Init(context.Background(), sheetlog.HostInfo{Host: memsheet.Host})
	var hae *sheetlog.HostAccessError
	require.ErrorAs(t, err, &hae)
	assert.Equal(t, "ReadCell", hae.Op)
	assert.False(t, s.Ready())
}
