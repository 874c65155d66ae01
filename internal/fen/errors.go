package fen

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedNotation reports a layout that does not decode into a rectangular grid.
	ErrMalformedNotation = errors.New("malformed position notation")
	// ErrEmptyInput is the degenerate malformed case: nothing to decode.
	ErrEmptyInput = fmt.Errorf("%w: empty input", ErrMalformedNotation)
)

// NotationError locates a decode failure. Row and Col are zero-based; -1 means the
// failure is not tied to a single cell (for example a wrong row count).
type NotationError struct {
	Input  string
	Row    int
	Col    int
	Reason string
	err    error
}

func (e *NotationError) Error() string {
	if e.Row >= 0 && e.Col >= 0 {
		return fmt.Sprintf("%v: %s (row %d, col %d)", e.err, e.Reason, e.Row+1, e.Col+1)
	}
	if e.Row >= 0 {
		return fmt.Sprintf("%v: %s (row %d)", e.err, e.Reason, e.Row+1)
	}
	return fmt.Sprintf("%v: %s", e.err, e.Reason)
}

func (e *NotationError) Unwrap() error { return e.err }

func malformed(input string, row, col int, format string, args ...any) error {
	return &NotationError{
		Input:  input,
		Row:    row,
		Col:    col,
		Reason: fmt.Sprintf(format, args...),
		err:    ErrMalformedNotation,
	}
}
