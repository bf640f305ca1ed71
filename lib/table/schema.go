package table

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// --------------------------------------------------------------------------
// Validation Errors
// --------------------------------------------------------------------------

var (
	// ErrMissingColumn is the reason of a ValidationError for an absent declared column
	ErrMissingColumn = errors.New("missing required column")
	// ErrTypeMismatch is the reason of a ValidationError for a value of the wrong kind
	ErrTypeMismatch = errors.New("column type mismatch")
)

// ValidationError names the first column a row failed on.
// errors.Is(err, ErrMissingColumn) and errors.Is(err, ErrTypeMismatch) select the reason.
type ValidationError struct {
	Column string
	Reason error
	// Expected and Got are set for type mismatches
	Expected ColumnKind
	Got      ValueKind
}

func (e *ValidationError) Error() string {
	if errors.Is(e.Reason, ErrTypeMismatch) {
		return fmt.Sprintf("column '%s' type mismatch: expected %s, got %s", e.Column, e.Expected, e.Got)
	}
	return fmt.Sprintf("missing required column '%s'", e.Column)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

// --------------------------------------------------------------------------
// Column & Schema
// --------------------------------------------------------------------------

// Column is a declared column of a table
type Column struct {
	Name string     `json:"name" yaml:"name"`
	Kind ColumnKind `json:"column_type" yaml:"column_type"`
}

// Schema is the ordered list of declared columns of a table
type Schema []Column

// Check verifies that the schema itself is well formed:
// every column has a non-empty unique name and a valid kind.
func (s Schema) Check() error {
	seen := make(map[string]struct{}, len(s))
	for i, c := range s {
		if c.Name == "" {
			return fmt.Errorf("column %d has an empty name", i)
		}
		if !utf8.ValidString(c.Name) {
			return fmt.Errorf("column %d name: %w", i, ErrInvalidUTF8)
		}
		if !c.Kind.Valid() {
			return fmt.Errorf("column '%s' has an invalid kind", c.Name)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("duplicate column '%s'", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}

// Validate checks a candidate row against the schema. Columns are checked in declaration
// order and the first failure is returned as a *ValidationError. Keys that are not declared
// are ignored. Validate has no side effects.
func (s Schema) Validate(row Row) error {
	for _, c := range s {
		v, ok := row[c.Name]
		if !ok {
			return &ValidationError{Column: c.Name, Reason: ErrMissingColumn}
		}
		if !Accepts(c.Kind, v) {
			return &ValidationError{Column: c.Name, Reason: ErrTypeMismatch, Expected: c.Kind, Got: v.Kind()}
		}
	}
	return nil
}

// Accepts reports whether a value may be stored in a column of the given kind.
//
//	String  <- string
//	Integer <- integer (a float is rejected even if it is integral)
//	Float   <- integer or float
//	Boolean <- boolean
//	Object  <- object
func Accepts(kind ColumnKind, v Value) bool {
	switch kind {
	case ColumnKindString:
		return v.Kind() == KindString
	case ColumnKindInteger:
		return v.Kind() == KindInteger
	case ColumnKindFloat:
		return v.Kind() == KindInteger || v.Kind() == KindFloat
	case ColumnKindBoolean:
		return v.Kind() == KindBoolean
	case ColumnKindObject:
		return v.Kind() == KindObject
	default:
		return false
	}
}
