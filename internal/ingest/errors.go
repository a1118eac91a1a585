package ingest

import (
	"errors"
	"fmt"
)

// ReasonUnreadable is the category reported for every ingestion failure.
const ReasonUnreadable = "empty or unreadable file"

// ParseError indicates the upload could be read neither as a workbook nor as
// delimited text, or that the resulting table has no rows or no columns.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	if e == nil {
		return ReasonUnreadable
	}
	msg := ReasonUnreadable
	if e.Filename != "" {
		msg = fmt.Sprintf("%s: %s", e.Filename, ReasonUnreadable)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	errNotText  = errors.New("content is not delimited text")
	errNoRows   = errors.New("table has no data rows")
	errNoHeader = errors.New("table has no columns")
)
