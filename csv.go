// Copyright 2020, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetlog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

var EncName = "utf-8"

func init() {
	EncName = os.Getenv("LANG")
	if i := strings.IndexByte(EncName, '.'); i >= 0 {
		EncName = strings.ToLower(EncName[i+1:])
	}
	if EncName == "" || EncName == "c" || EncName == "posix" {
		EncName = "utf-8"
	}
}

func GetEncoding(encName string) (encoding.Encoding, error) {
	encName = strings.ToLower(encName)
	if encName == "" || encName == "utf-8" || encName == "utf8" {
		return nil, nil
	}
	enc, err := htmlindex.Get(encName)
	if err != nil {
		err = fmt.Errorf("%q: %w", encName, err)
	}
	return enc, err
}

type csvReadCloser struct {
	*csv.Reader
	io.Closer
}

// OpenCsv opens fn ("" or "-" is stdin) for reading, guessing the separator.
// Files ending in .gz or .zst are decompressed.
func OpenCsv(fn, encName string) (csvReadCloser, error) {
	var enc encoding.Encoding
	if encName != "" {
		var err error
		if enc, err = GetEncoding(encName); err != nil {
			return csvReadCloser{}, err
		}
	}
	fh := os.Stdin
	if !(fn == "" || fn == "-") {
		var err error
		if fh, err = os.Open(fn); err != nil {
			return csvReadCloser{}, err
		}
	}
	r := io.ReadCloser(fh)
	switch {
	case strings.HasSuffix(fn, ".gz"):
		zr, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return csvReadCloser{}, fmt.Errorf("%q: %w", fn, err)
		}
		r = multiCloser{Reader: zr, closers: []io.Closer{zr, fh}}
	case strings.HasSuffix(fn, ".zst"):
		zr, err := zstd.NewReader(fh)
		if err != nil {
			fh.Close()
			return csvReadCloser{}, fmt.Errorf("%q: %w", fn, err)
		}
		r = multiCloser{Reader: zr, closers: []io.Closer{zr.IOReadCloser(), fh}}
	}
	if enc != nil {
		r = struct {
			io.Reader
			io.Closer
		}{enc.NewDecoder().Reader(r), r}
	}
	br := bufio.NewReaderSize(r, 1<<20)
	b, err := br.Peek(1024)
	if err != nil && len(b) == 0 {
		r.Close()
		return csvReadCloser{}, err
	}
	sep := rune(',')
	for _, r := range string(b) {
		if r == '"' || r == '_' || r == ' ' || r == '-' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			continue
		}
		sep = r
		break
	}

	cr := csv.NewReader(br)
	cr.ReuseRecord = true
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	return csvReadCloser{cr, r}, nil
}

type csvWriteCloser struct {
	*csv.Writer
	io.Closer
}

// CreateCsv creates fn ("" or "-" is stdout) for writing.
// Files ending in .gz or .zst are compressed.
// Close flushes the csv.Writer and closes the file.
func CreateCsv(fn, encName string) (*csvWriteCloser, error) {
	enc, err := GetEncoding(encName)
	if err != nil {
		return nil, err
	}
	fh := os.Stdout
	if !(fn == "" || fn == "-") {
		if fh, err = os.Create(fn); err != nil {
			return nil, err
		}
	}
	w := io.Writer(fh)
	closers := []io.Closer{fh}
	switch {
	case strings.HasSuffix(fn, ".gz"):
		zw := gzip.NewWriter(w)
		w, closers = zw, append([]io.Closer{zw}, closers...)
	case strings.HasSuffix(fn, ".zst"):
		zw, err := zstd.NewWriter(w)
		if err != nil {
			fh.Close()
			return nil, err
		}
		w, closers = zw, append([]io.Closer{zw}, closers...)
	}
	if enc != nil {
		ew := enc.NewEncoder().Writer(w)
		if c, ok := ew.(io.Closer); ok {
			closers = append([]io.Closer{c}, closers...)
		}
		w = ew
	}
	cw := &csvWriteCloser{Writer: csv.NewWriter(w)}
	cw.Closer = closerFunc(func() error {
		cw.Writer.Flush()
		err := cw.Writer.Error()
		for _, c := range closers {
			if c == io.Closer(os.Stdout) {
				continue
			}
			if cErr := c.Close(); cErr != nil && err == nil {
				err = cErr
			}
		}
		return err
	})
	return cw, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (mc multiCloser) Close() error {
	var errs []error
	for _, c := range mc.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
