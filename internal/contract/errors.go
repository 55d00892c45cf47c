package contract

import (
	"errors"
	"fmt"
)

// ErrEmptyAlignment signals that two inputs share no canonical keys.
// It is a warning condition: the stage still writes an empty table.
var ErrEmptyAlignment = errors.New("no overlapping (month, hour) keys between inputs")

// ErrMissingInput is returned when a stage is run without its input file.
var ErrMissingInput = errors.New("an input file is required")

// InputFormatError reports a tabular input that is missing a column or holds an unparseable value.
type InputFormatError struct {
	File   string
	Line   int // 1-based, zero when the whole file is at fault
	Column string
	Err    error
}

func (e *InputFormatError) Error() string {
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	if e.Column != "" {
		return fmt.Sprintf("%s: column %q: %v", loc, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", loc, e.Err)
}

func (e *InputFormatError) Unwrap() error {
	return e.Err
}

// RemoteServiceError reports a non-success status or an unparseable payload from the modeling service.
type RemoteServiceError struct {
	Status int // HTTP status, zero when the request never completed
	Err    error
}

func (e *RemoteServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote service returned status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("remote service: %v", e.Err)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

// IsEmptyAlignment reports whether err is the empty alignment warning.
func IsEmptyAlignment(err error) bool {
	return errors.Is(err, ErrEmptyAlignment)
}
