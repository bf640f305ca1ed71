package table

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// MaxNestingDepth is the deepest nesting of objects and arrays a row value may have.
// It keeps every snapshot codec able to read back what was stored.
const MaxNestingDepth = 1000

var (
	// ErrInvalidUTF8 is returned for keys or strings that are not valid UTF-8
	ErrInvalidUTF8 = errors.New("invalid UTF-8")
	// ErrTooDeep is returned for values nested deeper than MaxNestingDepth
	ErrTooDeep = fmt.Errorf("values nested deeper than %d levels", MaxNestingDepth)
)

// CheckEncoding verifies that all keys and strings of the row are valid UTF-8
// and that no value is nested deeper than MaxNestingDepth.
func (r Row) CheckEncoding() error {
	for _, k := range r.Keys() {
		if !utf8.ValidString(k) {
			return fmt.Errorf("key %q: %w", k, ErrInvalidUTF8)
		}
		if err := r[k].checkEncoding(1); err != nil {
			return fmt.Errorf("column '%s': %w", k, err)
		}
	}
	return nil
}

func (v Value) checkEncoding(depth int) error {
	switch v.kind {
	case KindString:
		if !utf8.ValidString(v.str) {
			return ErrInvalidUTF8
		}
	case KindObject:
		if depth > MaxNestingDepth {
			return ErrTooDeep
		}
		for k, e := range v.obj {
			if !utf8.ValidString(k) {
				return fmt.Errorf("key %q: %w", k, ErrInvalidUTF8)
			}
			if err := e.checkEncoding(depth + 1); err != nil {
				return err
			}
		}
	case KindArray:
		if depth > MaxNestingDepth {
			return ErrTooDeep
		}
		for _, e := range v.arr {
			if err := e.checkEncoding(depth + 1); err != nil {
				return err
			}
		}
	}
	return nil
}
