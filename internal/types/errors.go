package types

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every module. Callers wrap these with context
// using fmt.Errorf("...: %w", ...) and test them with errors.Is.
var (
	// ErrConfigMissing is returned when a document type or one of its
	// required keys is absent from the configuration file.
	ErrConfigMissing = errors.New("missing configuration entry")

	// ErrFileNotFound is returned when a template, checklist or test data
	// path does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrMissingColumn is returned when a required column is absent from
	// the header row of an input file.
	ErrMissingColumn = errors.New("missing column")

	// ErrUserAbort is returned when the operator declines to proceed.
	ErrUserAbort = errors.New("aborted by operator")
)

// MissingColumnError describes a required column absent from an input
// file's header row.
type MissingColumnError struct {
	File   string
	Column string
	Line   int
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column %q not found in header of '%s' (line %d)", e.Column, e.File, e.Line)
}

// Is makes errors.Is(err, ErrMissingColumn) hold for a MissingColumnError.
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// ConfigMissing builds an ErrConfigMissing for a document type and key.
func ConfigMissing(docType DocType, key string) error {
	return fmt.Errorf("%w: could not retrieve the '%s' '%s' from the config file", ErrConfigMissing, docType, key)
}

// FileNotFound builds an ErrFileNotFound for a path.
func FileNotFound(what, path string) error {
	return fmt.Errorf("%w: %s '%s' does not exist", ErrFileNotFound, what, path)
}
