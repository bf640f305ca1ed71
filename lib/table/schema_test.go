package table

import (
	"encoding/json"
	"errors"
	"testing"
)

var peopleSchema = Schema{
	{Name: "name", Kind: ColumnKindString},
	{Name: "age", Kind: ColumnKindInteger},
	{Name: "score", Kind: ColumnKindFloat},
	{Name: "active", Kind: ColumnKindBoolean},
	{Name: "meta", Kind: ColumnKindObject},
}

func validPerson() Row {
	return Row{
		"name":   StringValue("bob"),
		"age":    IntValue(40),
		"score":  IntValue(7),
		"active": BoolValue(false),
		"meta":   ObjectValue(nil),
	}
}

func TestValidate(t *testing.T) {
	if err := peopleSchema.Validate(validPerson()); err != nil {
		t.Errorf("Expected valid row, got %v", err)
	}

	// undeclared keys are ignored, whatever they hold
	row := validPerson()
	row["extra"] = ArrayValue([]Value{NullValue()})
	if err := peopleSchema.Validate(row); err != nil {
		t.Errorf("Expected extra keys to be ignored, got %v", err)
	}

	// empty schema accepts anything
	if err := (Schema{}).Validate(Row{}); err != nil {
		t.Errorf("Expected empty schema to accept an empty row, got %v", err)
	}
}

func TestValidateMissingColumn(t *testing.T) {
	row := validPerson()
	delete(row, "score")
	delete(row, "meta")

	err := peopleSchema.Validate(row)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("Expected ErrMissingColumn, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Column != "score" {
		t.Errorf("Expected the first missing column in declaration order (score), got %v", err)
	}
}

func TestValidateTypeMismatch(t *testing.T) {
	row := validPerson()
	row["age"] = FloatValue(40)
	row["active"] = StringValue("yes")

	err := peopleSchema.Validate(row)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("Expected ErrTypeMismatch, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Column != "age" {
		t.Fatalf("Expected mismatch on age, got %v", err)
	}
	if verr.Expected != ColumnKindInteger || verr.Got != KindFloat {
		t.Errorf("Unexpected mismatch details: %+v", verr)
	}
}

func TestAccepts(t *testing.T) {
	values := map[ValueKind]Value{
		KindNull:    NullValue(),
		KindString:  StringValue("s"),
		KindInteger: IntValue(1),
		KindFloat:   FloatValue(1),
		KindBoolean: BoolValue(true),
		KindObject:  ObjectValue(nil),
		KindArray:   ArrayValue(nil),
	}
	allowed := map[ColumnKind][]ValueKind{
		ColumnKindString:  {KindString},
		ColumnKindInteger: {KindInteger},
		ColumnKindFloat:   {KindInteger, KindFloat},
		ColumnKindBoolean: {KindBoolean},
		ColumnKindObject:  {KindObject},
		ColumnKindUnknown: {},
	}

	for ck, kinds := range allowed {
		for vk, v := range values {
			expected := false
			for _, k := range kinds {
				if k == vk {
					expected = true
				}
			}
			if got := Accepts(ck, v); got != expected {
				t.Errorf("Accepts(%s, %s): expected %v, got %v", ck, vk, expected, got)
			}
		}
	}
}

func TestSchemaCheck(t *testing.T) {
	if err := peopleSchema.Check(); err != nil {
		t.Errorf("Expected schema to be valid, got %v", err)
	}
	bad := []Schema{
		{{Name: "", Kind: ColumnKindString}},
		{{Name: "a", Kind: ColumnKindString}, {Name: "a", Kind: ColumnKindFloat}},
		{{Name: "a", Kind: ColumnKindUnknown}},
	}
	for _, s := range bad {
		if err := s.Check(); err == nil {
			t.Errorf("Expected schema %v to be rejected", s)
		}
	}
}

func TestColumnJSON(t *testing.T) {
	var cols []Column
	in := `[{"name":"a","column_type":"integer"},{"name":"b","column_type":"Object"}]`
	if err := json.Unmarshal([]byte(in), &cols); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if cols[0].Kind != ColumnKindInteger || cols[1].Kind != ColumnKindObject {
		t.Errorf("Unexpected kinds: %v", cols)
	}

	out, err := json.Marshal(cols[0])
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != `{"name":"a","column_type":"Integer"}` {
		t.Errorf("Unexpected encoding: %s", out)
	}

	if err := json.Unmarshal([]byte(`[{"name":"a","column_type":"text"}]`), &cols); err == nil {
		t.Errorf("Expected unknown column kind to be rejected")
	}
	if _, err := json.Marshal(Column{Name: "x"}); err == nil {
		t.Errorf("Expected marshalling an unknown kind to fail")
	}
}

func TestTable(t *testing.T) {
	cols := []Column{{Name: "name", Kind: ColumnKindString}}
	tbl := New("users", cols)
	cols[0].Name = "changed"

	if len(tbl.ID) != 36 {
		t.Errorf("Expected a UUID id, got %q", tbl.ID)
	}
	if tbl.Columns[0].Name != "name" {
		t.Errorf("Table must not share the caller's column slice")
	}
	if other := New("users", cols); other.ID == tbl.ID {
		t.Errorf("Expected distinct ids for distinct tables")
	}

	if err := tbl.Append(Row{"name": StringValue("a")}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := tbl.Append(Row{"name": IntValue(1)}); err == nil {
		t.Errorf("Expected invalid row to be rejected")
	}
	if err := tbl.Append(Row{"name": StringValue("b")}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	info := tbl.Info()
	if info.Rows != 2 || info.Name != "users" || info.ID != tbl.ID {
		t.Errorf("Unexpected info: %+v", info)
	}

	clone := tbl.Clone()
	tbl.Truncate(1)
	if len(tbl.Rows) != 1 || len(clone.Rows) != 2 {
		t.Errorf("Truncate must not affect clones: %d / %d", len(tbl.Rows), len(clone.Rows))
	}
	if s, _ := tbl.Rows[0]["name"].Str(); s != "a" {
		t.Errorf("Truncate dropped the wrong row")
	}

	if err := clone.Check(); err != nil {
		t.Errorf("Expected clone to pass Check, got %v", err)
	}
	clone.Rows = append(clone.Rows, Row{})
	if err := clone.Check(); err == nil {
		t.Errorf("Expected Check to catch an invalid row")
	}
}
