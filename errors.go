// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetlog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrHostMismatch is returned by Init when the host is not the expected one.
	ErrHostMismatch = errors.New("unexpected host")
	// ErrNotReady is returned when submitting before a successful Init.
	ErrNotReady = errors.New("not initialized")
)

// MissingElementError is returned when a required form element is absent.
type MissingElementError struct {
	Name string
}

func (e *MissingElementError) Error() string {
	return fmt.Sprintf("missing form element %q", e.Name)
}

// ValidationError names the required field which is empty or malformed.
type ValidationError struct {
	Field, Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// HostAccessError is a failure of the worksheet access layer.
type HostAccessError struct {
	// Op is the RangeAccess operation, such as "WriteRow".
	Op string
	// Code is the diagnostic code the host supplied, if any.
	Code string
	Err  error
}

func (e *HostAccessError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Code, e.Err)
}
func (e *HostAccessError) Unwrap() error { return e.Err }

// Coder is implemented by backend errors carrying a host diagnostic code.
type Coder interface {
	ErrorCode() string
}

func hostErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var hae *HostAccessError
	if errors.As(err, &hae) {
		return err
	}
	e := &HostAccessError{Op: op, Err: err}
	var c Coder
	if errors.As(err, &c) {
		e.Code = c.ErrorCode()
	}
	return e
}

// HeaderMismatchError is returned when row 0 holds something other than the header.
type HeaderMismatchError struct {
	Got []string
}

func (e *HeaderMismatchError) Error() string {
	return fmt.Sprintf("row 1 is not the expected header: %q", strings.Join(e.Got, "|"))
}

// FormatError is returned by Sync when the values have been committed,
// but the formatting (bold, column widths) could not be applied.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string { return "formatting: " + e.Err.Error() }
func (e *FormatError) Unwrap() error { return e.Err }
