// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package sheetlog

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Form field names of the submission form.
const (
	FieldDate        = "date"
	FieldAge         = "age"
	FieldSex         = "sex"
	FieldMRN         = "mrn"
	FieldDiagnosis   = "diagnosis"
	FieldProcedure   = "procedure"
	FieldAttendants  = "attendants"
	FieldRole        = "role"
	FieldSurgeryType = "surgeryType"
)

// DateLayout is the layout of the Date column.
const DateLayout = "2006-01-02"

// Form is the raw state of the submission form.
type Form struct {
	Date        string
	Age         string
	Sex         string
	MRN         string
	Diagnosis   string
	Procedure   string
	Attendants  []string
	Role        string
	SurgeryType string
}

// ParseForm reads the form fields from vals.
//
// A required field which is not in vals at all is a *MissingElementError,
// a present but empty one is left for Validate.
// The attendants may be missing: unchecked checkboxes are not submitted.
func ParseForm(vals url.Values) (Form, error) {
	var f Form
	for _, fld := range []struct {
		Name string
		Dest *string
	}{
		{FieldDate, &f.Date},
		{FieldAge, &f.Age},
		{FieldSex, &f.Sex},
		{FieldMRN, &f.MRN},
		{FieldDiagnosis, &f.Diagnosis},
		{FieldProcedure, &f.Procedure},
		{FieldRole, &f.Role},
		{FieldSurgeryType, &f.SurgeryType},
	} {
		vv, ok := vals[fld.Name]
		if !ok {
			return f, &MissingElementError{Name: fld.Name}
		}
		if len(vv) != 0 {
			*fld.Dest = vv[0]
		}
	}
	for _, a := range vals[FieldAttendants] {
		if a = strings.TrimSpace(a); a != "" {
			f.Attendants = append(f.Attendants, a)
		}
	}
	return f, nil
}

// Validate checks that every required field is filled.
// The first offending field is named in the returned *ValidationError.
func (f Form) Validate() error {
	for _, fld := range []struct{ Name, Value string }{
		{FieldDate, f.Date},
		{FieldAge, f.Age},
		{FieldSex, f.Sex},
		{FieldMRN, f.MRN},
		{FieldDiagnosis, f.Diagnosis},
		{FieldProcedure, f.Procedure},
		{FieldRole, f.Role},
		{FieldSurgeryType, f.SurgeryType},
	} {
		if strings.TrimSpace(fld.Value) == "" {
			return &ValidationError{Field: fld.Name}
		}
	}
	if _, err := time.Parse(DateLayout, strings.TrimSpace(f.Date)); err != nil {
		return &ValidationError{Field: FieldDate, Reason: "must be YYYY-MM-DD"}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(f.Age)); err != nil || n < 0 {
		return &ValidationError{Field: FieldAge, Reason: "must be a non-negative whole number"}
	}
	return nil
}

// Record validates the form and returns the row to be logged.
func (f Form) Record() (Record, error) {
	if err := f.Validate(); err != nil {
		return Record{}, err
	}
	return NewRecord(
		strings.TrimSpace(f.Date),
		strings.TrimSpace(f.Age),
		strings.TrimSpace(f.Sex),
		strings.TrimSpace(f.MRN),
		strings.TrimSpace(f.Diagnosis),
		strings.TrimSpace(f.Procedure),
		JoinAttendants(f.Attendants),
		strings.TrimSpace(f.Role),
		strings.TrimSpace(f.SurgeryType),
	), nil
}

// JoinAttendants joins the names in selection order.
// No attendants is the empty string.
func JoinAttendants(names []string) string { return strings.Join(names, ", ") }

// Record is one logged row. The zero Record has no values.
type Record struct {
	values []string
}

// NewRecord returns a Record of the given values, in column order.
func NewRecord(values ...string) Record {
	return Record{values: append([]string(nil), values...)}
}

// Len returns the number of values.
func (r Record) Len() int { return len(r.values) }

// Values returns a copy of the values.
func (r Record) Values() []string { return append([]string(nil), r.values...) }
