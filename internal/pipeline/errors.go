// Package pipeline drives generate and search cycles over sample files and
// streams, and writes the human-readable report.
package pipeline

import (
	"errors"
	"fmt"
)

// Every error returned by this package wraps exactly one of these classes.
var (
	// ErrInvalidArgument covers bad durations, digits, flags and settings
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIO covers open, read and write failures and malformed input
	ErrIO = errors.New("i/o error")
)

var (
	// ErrEmptyInput indicates a finite source holds no samples
	ErrEmptyInput = errors.New("input holds no samples")
	// ErrWriterRequired indicates a report writer is required
	ErrWriterRequired = errors.New("output writer is required")
)

func invalidArgument(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
}

func ioError(err error) error {
	return fmt.Errorf("%w: %w", ErrIO, err)
}
