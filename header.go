// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetlog

import "strings"

// The column names of the case log, in sheet order.
//
// These are persisted in every sheet already in use: do not rename or reorder.
const (
	ColDate        = "Date"
	ColAge         = "Age"
	ColSex         = "Sex"
	ColMRN         = "MRN"
	ColDiagnosis   = "Diagnosis"
	ColProcedure   = "Procedure"
	ColAttendants  = "Attendant(s)"
	ColRole        = "Role"
	ColSurgeryType = "Surgery Type"
)

// Header is the ordered list of columns written to row 0.
type Header []Column

// DefaultHeader returns a fresh copy of the case log header.
func DefaultHeader() Header {
	return NewHeader(
		ColDate, ColAge, ColSex, ColMRN, ColDiagnosis,
		ColProcedure, ColAttendants, ColRole, ColSurgeryType,
	)
}

// NewHeader returns a Header with bold header cells for the given names.
func NewHeader(names ...string) Header {
	h := make(Header, len(names))
	for i, nm := range names {
		h[i] = Column{Name: nm, Header: Style{FontBold: true}}
	}
	return h
}

// Names returns the column names.
func (h Header) Names() []string {
	names := make([]string, len(h))
	for i, c := range h {
		names[i] = c.Name
	}
	return names
}

// Matches reports whether row holds exactly the header names
// (trailing whitespace in the cells is ignored).
func (h Header) Matches(row []string) bool {
	if len(row) < len(h) {
		return false
	}
	for i, c := range h {
		if strings.TrimSpace(row[i]) != c.Name {
			return false
		}
	}
	return true
}
