// Copyright 2026 Tamas Gulacsi. All rights reserved.

package main

import (
	"context"
	"flag"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UNO-SOFT/sheetlog"
	"github.com/UNO-SOFT/sheetlog/memsheet"
	"github.com/UNO-SOFT/sheetlog/xlsx"
)

func TestBackendSession(t *testing.T) {
	ctx := context.Background()
	var bc backendConfig
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	bc.register(fs)
	fn := filepath.Join(t.TempDir(), "log.xlsx")
	require.NoError(t, fs.Parse([]string{"-backend=xlsx", "-file=" + fn, "-expect-host=Excel"}))

	sess, _, ra, closer, err := bc.session(ctx)
	require.NoError(t, err)
	assert.Equal(t, xlsx.Host, sheetlog.HostOf(ra))
	row, err := sess.Submit(ctx, sheetlog.Form{
		Date: "2024-01-01", Age: "34", Sex: "F", MRN: "123",
		Diagnosis: "Appendicitis", Procedure: "Appendectomy",
		Role: "Surgeon", SurgeryType: "Emergency",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, row)
	require.NoError(t, closer())
}

func TestBackendHostMismatch(t *testing.T) {
	bc := backendConfig{Backend: "mem", ExpectHost: xlsx.Host}
	_, _, _, _, err := bc.session(context.Background())
	require.ErrorIs(t, err, sheetlog.ErrHostMismatch)

	bc.ExpectHost = memsheet.Host
	_, _, _, _, err = bc.session(context.Background())
	require.NoError(t, err)
}

func TestBackendUnknown(t *testing.T) {
	_, _, err := backendConfig{Backend: "floppy"}.open(context.Background())
	assert.Error(t, err)
	_, _, err = backendConfig{Backend: "sheets"}.open(context.Background())
	assert.ErrorContains(t, err, "spreadsheet-id")
}

func TestStringsFlag(t *testing.T) {
	var ss stringsFlag
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&ss, "a", "")
	require.NoError(t, fs.Parse([]string{"-a", "Dr Amare", "-a", "Dr Adane"}))
	assert.Equal(t, "Dr Amare, Dr Adane", sheetlog.JoinAttendants(ss))
}
