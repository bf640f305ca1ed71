package table

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Row maps column names to values. A row may carry keys that are not declared columns.
type Row map[string]Value

// Clone returns a deep copy of the row
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v.Clone()
	}
	return c
}

// Equal reports whether both rows have the same keys with equal values
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for k, v := range r {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Keys returns the keys of the row in ascending order
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RowFromMap converts a map of plain Go values into a Row
func RowFromMap(m map[string]any) (Row, error) {
	row := make(Row, len(m))
	for k, v := range m {
		val, err := FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("column '%s': %w", k, err)
		}
		row[k] = val
	}
	return row, nil
}

// --------------------------------------------------------------------------
// Table
// --------------------------------------------------------------------------

// Table is a named, schema bound, append-only collection of rows.
//
// Thread-safety: Table does no locking. The owning store serializes access.
type Table struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Columns Schema `json:"columns" yaml:"columns"`
	Rows    []Row  `json:"rows" yaml:"rows"`
}

// Info is the descriptor of a table returned by the store
type Info struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Columns []Column `json:"columns" yaml:"columns"`
	Rows    int      `json:"rows" yaml:"rows"`
}

// New creates an empty table with a fresh random id. The column slice is copied.
func New(name string, columns []Column) *Table {
	cols := make(Schema, len(columns))
	copy(cols, columns)
	return &Table{
		ID:      uuid.NewString(),
		Name:    name,
		Columns: cols,
		Rows:    []Row{},
	}
}

// Info returns the descriptor of the table
func (t *Table) Info() Info {
	cols := make([]Column, len(t.Columns))
	copy(cols, t.Columns)
	return Info{
		ID:      t.ID,
		Name:    t.Name,
		Columns: cols,
		Rows:    len(t.Rows),
	}
}

// Append validates the row and appends it on success. The row is stored as is,
// callers that keep a reference to it must pass a clone.
func (t *Table) Append(row Row) error {
	if err := t.Columns.Validate(row); err != nil {
		return err
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Truncate drops all rows after the first n. It is used to undo an append.
func (t *Table) Truncate(n int) {
	if n < 0 || n >= len(t.Rows) {
		return
	}
	clear(t.Rows[n:])
	t.Rows = t.Rows[:n]
}

// CloneRows returns a deep copy of all rows
func (t *Table) CloneRows() []Row {
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Clone()
	}
	return rows
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	cols := make(Schema, len(t.Columns))
	copy(cols, t.Columns)
	return &Table{
		ID:      t.ID,
		Name:    t.Name,
		Columns: cols,
		Rows:    t.CloneRows(),
	}
}

// Check verifies a table read from an untrusted source (e.g. a snapshot):
// it needs an id, a name, a well formed schema and rows that satisfy the schema.
func (t *Table) Check() error {
	if t.ID == "" {
		return fmt.Errorf("table '%s' has no id", t.Name)
	}
	if t.Name == "" {
		return fmt.Errorf("table %s has no name", t.ID)
	}
	if !utf8.ValidString(t.Name) {
		return fmt.Errorf("table %s name: %w", t.ID, ErrInvalidUTF8)
	}
	if err := t.Columns.Check(); err != nil {
		return fmt.Errorf("table '%s': %w", t.Name, err)
	}
	for i, r := range t.Rows {
		if err := t.Columns.Validate(r); err != nil {
			return fmt.Errorf("table '%s' row %d: %w", t.Name, i, err)
		}
		if err := r.CheckEncoding(); err != nil {
			return fmt.Errorf("table '%s' row %d: %w", t.Name, i, err)
		}
	}
	return nil
}
