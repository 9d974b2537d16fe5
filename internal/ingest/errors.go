package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInput is returned when no data was supplied at all.
	ErrNoInput = errors.New("no input supplied")
	// ErrEmptySheet is returned when the sheet has a header but no order rows.
	ErrEmptySheet = errors.New("sheet contains no order rows")
	// ErrMalformed is returned when the input cannot be read as an order sheet.
	ErrMalformed = errors.New("sheet is improperly formatted")
	// ErrInvalidRow is returned when a row has a missing or out-of-range field.
	ErrInvalidRow = errors.New("invalid order row")
)

// maxRowErrors caps how many row errors are reported for one sheet.
const maxRowErrors = 20

// RowError describes a problem with a single cell of the sheet.
type RowError struct {
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d, column %s: %v", e.Row, e.Column, e.Err)
}

// Unwrap exposes both ErrInvalidRow and the underlying cause to errors.Is.
func (e *RowError) Unwrap() []error {
	return []error{ErrInvalidRow, e.Err}
}

// RowErrors extracts every RowError carried by err.
func RowErrors(err error) []*RowError {
	var out []*RowError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if re, ok := e.(*RowError); ok {
			out = append(out, re)
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}

var errMissingValue = errors.New("value is required")
