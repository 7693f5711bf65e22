package models

import (
	"errors"
	"fmt"
	"strings"
)

// Custom errors
var (
	ErrEmptyCard           = errors.New("card has no races")
	ErrEmptyRace           = errors.New("race has no starters")
	ErrSequenceUnavailable = errors.New("sequence unavailable")
)

// SchemaError reports a required column that could not be resolved from its
// alias list. It is fatal for the whole card and raised before any
// simulation or ticket construction runs.
type SchemaError struct {
	Column     string
	Candidates []string
}

func (e *SchemaError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("required column %q not found", e.Column)
	}
	return fmt.Sprintf("no %s column found, expected one of: %s",
		e.Column, strings.Join(e.Candidates, ", "))
}

// NewSchemaError builds a SchemaError for a column and its accepted aliases.
func NewSchemaError(column string, candidates []string) *SchemaError {
	return &SchemaError{Column: column, Candidates: candidates}
}
