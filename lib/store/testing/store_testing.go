package testing

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/ValentinKolb/tStore/lib/store"
	"github.com/ValentinKolb/tStore/lib/table"
)

// StoreFactory is a function that creates a new, empty store
type StoreFactory func(t *testing.T) store.ITableStore

// RunStoreTests runs a comprehensive test suite for an ITableStore implementation.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("CreateAndGet", func(t *testing.T) {
			testCreateAndGet(t, factory(t))
		})

		t.Run("CreateDuplicate", func(t *testing.T) {
			testCreateDuplicate(t, factory(t))
		})

		t.Run("CreateInvalid", func(t *testing.T) {
			testCreateInvalid(t, factory(t))
		})

		t.Run("ListTables", func(t *testing.T) {
			testListTables(t, factory(t))
		})

		t.Run("NotFound", func(t *testing.T) {
			testNotFound(t, factory(t))
		})

		t.Run("InsertAndList", func(t *testing.T) {
			testInsertAndList(t, factory(t))
		})

		t.Run("Validation", func(t *testing.T) {
			testValidation(t, factory(t))
		})

		t.Run("ValueFidelity", func(t *testing.T) {
			testValueFidelity(t, factory(t))
		})

		t.Run("RowsAreCopies", func(t *testing.T) {
			testRowsAreCopies(t, factory(t))
		})

		t.Run("DeleteTable", func(t *testing.T) {
			testDeleteTable(t, factory(t))
		})

		t.Run("Stats", func(t *testing.T) {
			testStats(t, factory(t))
		})

		t.Run("ConcurrentInserts", func(t *testing.T) {
			testConcurrentInserts(t, factory(t))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

var userColumns = []table.Column{
	{Name: "name", Kind: table.ColumnKindString},
	{Name: "age", Kind: table.ColumnKindInteger},
}

func user(name string, age int64) table.Row {
	return table.Row{"name": table.StringValue(name), "age": table.IntValue(age)}
}

func mustCreate(t *testing.T, s store.ITableStore, name string, columns []table.Column) table.Info {
	t.Helper()
	info, err := s.CreateTable(name, columns)
	if err != nil {
		t.Fatalf("CreateTable(%s) failed: %v", name, err)
	}
	return info
}

func expectCode(t *testing.T, err error, target *store.Error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("Expected %s, got %v", target.Code, err)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testCreateAndGet(t *testing.T, s store.ITableStore) {
	info := mustCreate(t, s, "users", userColumns)

	if info.ID == "" {
		t.Errorf("Expected a table id")
	}
	if info.Name != "users" || info.Rows != 0 {
		t.Errorf("Unexpected info after create: %+v", info)
	}
	if len(info.Columns) != 2 || info.Columns[0] != userColumns[0] || info.Columns[1] != userColumns[1] {
		t.Errorf("Expected columns in declaration order, got %v", info.Columns)
	}

	got, err := s.GetTable("users")
	if err != nil {
		t.Fatalf("GetTable failed: %v", err)
	}
	if got.ID != info.ID || got.Name != "users" || got.Rows != 0 || len(got.Columns) != 2 {
		t.Errorf("GetTable returned %+v, expected %+v", got, info)
	}

	// tables without columns accept any row
	mustCreate(t, s, "free", nil)
	count, err := s.InsertRow("free", table.Row{"anything": table.BoolValue(true)})
	if err != nil || count != 1 {
		t.Errorf("Expected insert into schemaless table to succeed, got %d, %v", count, err)
	}
}

func testCreateDuplicate(t *testing.T, s store.ITableStore) {
	first := mustCreate(t, s, "users", userColumns)
	if _, err := s.InsertRow("users", user("a", 1)); err != nil {
		t.Fatalf("InsertRow failed: %v", err)
	}

	_, err := s.CreateTable("users", []table.Column{{Name: "other", Kind: table.ColumnKindFloat}})
	expectCode(t, err, store.ErrTableExists)

	got, err := s.GetTable("users")
	if err != nil {
		t.Fatalf("GetTable failed: %v", err)
	}
	if got.ID != first.ID || got.Rows != 1 || len(got.Columns) != 2 {
		t.Errorf("Existing table changed by a failed create: %+v", got)
	}
}

func testCreateInvalid(t *testing.T, s store.ITableStore) {
	_, err := s.CreateTable("", userColumns)
	expectCode(t, err, store.ErrInvalidArgument)

	_, err = s.CreateTable("dup", []table.Column{
		{Name: "a", Kind: table.ColumnKindString},
		{Name: "a", Kind: table.ColumnKindInteger},
	})
	expectCode(t, err, store.ErrInvalidArgument)

	_, err = s.CreateTable("unnamed", []table.Column{{Name: "", Kind: table.ColumnKindString}})
	expectCode(t, err, store.ErrInvalidArgument)

	names, err := s.ListTables()
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("Expected no tables after invalid creates, got %v", names)
	}
}

func testListTables(t *testing.T, s store.ITableStore) {
	names, err := s.ListTables()
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("Expected an empty store, got %v", names)
	}

	for _, name := range []string{"zeta", "alpha", "Mid", "beta"} {
		mustCreate(t, s, name, nil)
	}

	names, err = s.ListTables()
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	expected := []string{"Mid", "alpha", "beta", "zeta"}
	if fmt.Sprint(names) != fmt.Sprint(expected) {
		t.Errorf("Expected %v, got %v", expected, names)
	}
}

func testNotFound(t *testing.T, s store.ITableStore) {
	_, err := s.GetTable("missing")
	expectCode(t, err, store.ErrTableNotFound)

	_, err = s.InsertRow("missing", user("a", 1))
	expectCode(t, err, store.ErrTableNotFound)

	_, err = s.ListRows("missing")
	expectCode(t, err, store.ErrTableNotFound)

	deleted, err := s.DeleteTable("missing")
	expectCode(t, err, store.ErrTableNotFound)
	if deleted {
		t.Errorf("Expected deleted=false for a missing table")
	}

	// names are case-sensitive
	mustCreate(t, s, "Users", nil)
	_, err = s.GetTable("users")
	expectCode(t, err, store.ErrTableNotFound)
}

func testInsertAndList(t *testing.T, s store.ITableStore) {
	mustCreate(t, s, "users", userColumns)

	rows, err := s.ListRows("users")
	if err != nil {
		t.Fatalf("ListRows failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected no rows, got %d", len(rows))
	}

	for i, name := range []string{"alice", "bob", "carol"} {
		count, err := s.InsertRow("users", user(name, int64(20+i)))
		if err != nil {
			t.Fatalf("InsertRow(%s) failed: %v", name, err)
		}
		if count != i+1 {
			t.Errorf("Expected count %d, got %d", i+1, count)
		}
	}

	// extra keys are stored verbatim
	extra := user("dave", 40)
	extra["nickname"] = table.StringValue("d")
	extra["tags"] = table.MustFromAny([]any{"x", nil, 3})
	count, err := s.InsertRow("users", extra)
	if err != nil || count != 4 {
		t.Fatalf("InsertRow with extra keys returned %d, %v", count, err)
	}

	rows, err = s.ListRows("users")
	if err != nil {
		t.Fatalf("ListRows failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(rows))
	}
	for i, name := range []string{"alice", "bob", "carol", "dave"} {
		if got, _ := rows[i]["name"].Str(); got != name {
			t.Errorf("Row %d: expected %s, got %s (insertion order lost)", i, name, got)
		}
	}
	if !rows[3].Equal(extra) {
		t.Errorf("Extra keys were not stored verbatim: %v", rows[3])
	}

	info, err := s.GetTable("users")
	if err != nil || info.Rows != 4 {
		t.Errorf("Expected info with 4 rows, got %+v, %v", info, err)
	}
}

func testValidation(t *testing.T, s store.ITableStore) {
	mustCreate(t, s, "typed", []table.Column{
		{Name: "s", Kind: table.ColumnKindString},
		{Name: "i", Kind: table.ColumnKindInteger},
		{Name: "f", Kind: table.ColumnKindFloat},
		{Name: "b", Kind: table.ColumnKindBoolean},
		{Name: "o", Kind: table.ColumnKindObject},
	})

	valid := func() table.Row {
		return table.Row{
			"s": table.StringValue("x"),
			"i": table.IntValue(1),
			"f": table.FloatValue(1.5),
			"b": table.BoolValue(true),
			"o": table.MustFromAny(map[string]any{"k": "v"}),
		}
	}

	// Float accepts integers
	row := valid()
	row["f"] = table.IntValue(2)
	if _, err := s.InsertRow("typed", row); err != nil {
		t.Errorf("Expected Float column to accept an integer, got %v", err)
	}

	rejected := []struct {
		column string
		value  table.Value
	}{
		{"s", table.IntValue(1)},
		{"i", table.FloatValue(5)},
		{"i", table.StringValue("5")},
		{"f", table.StringValue("1.5")},
		{"b", table.IntValue(1)},
		{"o", table.MustFromAny([]any{1})},
		{"o", table.NullValue()},
		{"s", table.NullValue()},
	}
	for _, tt := range rejected {
		row := valid()
		row[tt.column] = tt.value
		_, err := s.InsertRow("typed", row)
		expectCode(t, err, store.ErrTypeMismatch)
	}

	for _, column := range []string{"s", "i", "f", "b", "o"} {
		row := valid()
		delete(row, column)
		_, err := s.InsertRow("typed", row)
		expectCode(t, err, store.ErrMissingColumn)
	}

	// the first failing column in declaration order decides
	row = valid()
	delete(row, "f")
	row["i"] = table.StringValue("bad")
	_, err := s.InsertRow("typed", row)
	expectCode(t, err, store.ErrTypeMismatch)

	info, err := s.GetTable("typed")
	if err != nil {
		t.Fatalf("GetTable failed: %v", err)
	}
	if info.Rows != 1 {
		t.Errorf("Rejected rows must not be stored, expected 1 row, got %d", info.Rows)
	}
}

func testValueFidelity(t *testing.T, s store.ITableStore) {
	mustCreate(t, s, "values", []table.Column{
		{Name: "f", Kind: table.ColumnKindFloat},
		{Name: "o", Kind: table.ColumnKindObject},
	})

	row := table.Row{
		"f": table.FloatValue(5),
		"o": table.MustFromAny(map[string]any{
			"nested": map[string]any{"list": []any{1, 2.5, "three", false, nil}},
			"big":    int64(1) << 60,
		}),
		"neg": table.IntValue(-7),
	}
	if _, err := s.InsertRow("values", row); err != nil {
		t.Fatalf("InsertRow failed: %v", err)
	}

	rows, err := s.ListRows("values")
	if err != nil {
		t.Fatalf("ListRows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if !rows[0].Equal(row) {
		t.Errorf("Row changed on the way through the store:\nsent %v\ngot  %v", row, rows[0])
	}
	if rows[0]["f"].Kind() != table.KindFloat {
		t.Errorf("Expected 5.0 to stay a float, got %s", rows[0]["f"].Kind())
	}
}

func testRowsAreCopies(t *testing.T, s store.ITableStore) {
	mustCreate(t, s, "objects", []table.Column{{Name: "o", Kind: table.ColumnKindObject}})

	inner := map[string]table.Value{"k": table.StringValue("original")}
	row := table.Row{"o": table.ObjectValue(inner)}
	if _, err := s.InsertRow("objects", row); err != nil {
		t.Fatalf("InsertRow failed: %v", err)
	}

	// modifying the inserted row must not reach the store
	inner["k"] = table.StringValue("changed by caller")
	row["new"] = table.BoolValue(true)

	rows, err := s.ListRows("objects")
	if err != nil {
		t.Fatalf("ListRows failed: %v", err)
	}
	rows[0]["o"] = table.StringValue("changed by reader")

	rows, err = s.ListRows("objects")
	if err != nil {
		t.Fatalf("ListRows failed: %v", err)
	}
	obj, ok := rows[0]["o"].Object()
	if !ok {
		t.Fatalf("Stored row was modified through a returned row")
	}
	if v, _ := obj["k"].Str(); v != "original" {
		t.Errorf("Stored row was modified through the inserted row: %s", v)
	}
	if _, ok := rows[0]["new"]; ok {
		t.Errorf("Stored row gained a key added after insert")
	}
}

func testDeleteTable(t *testing.T, s store.ITableStore) {
	first := mustCreate(t, s, "users", userColumns)
	mustCreate(t, s, "keep", nil)
	if _, err := s.InsertRow("users", user("a", 1)); err != nil {
		t.Fatalf("InsertRow failed: %v", err)
	}

	deleted, err := s.DeleteTable("users")
	if err != nil || !deleted {
		t.Fatalf("DeleteTable returned %v, %v", deleted, err)
	}

	_, err = s.GetTable("users")
	expectCode(t, err, store.ErrTableNotFound)

	_, err = s.DeleteTable("users")
	expectCode(t, err, store.ErrTableNotFound)

	names, err := s.ListTables()
	if err != nil || len(names) != 1 || names[0] != "keep" {
		t.Errorf("Expected only 'keep' to remain, got %v, %v", names, err)
	}

	// a recreated table is a new table
	second := mustCreate(t, s, "users", userColumns)
	if second.ID == first.ID {
		t.Errorf("Expected a new id for a recreated table")
	}
	if second.Rows != 0 {
		t.Errorf("Expected a recreated table to be empty, got %d rows", second.Rows)
	}
}

func testStats(t *testing.T, s store.ITableStore) {
	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Tables != 0 || stats.Rows != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
	if stats.Uptime < 0 {
		t.Errorf("Expected non-negative uptime, got %s", stats.Uptime)
	}

	mustCreate(t, s, "a", nil)
	mustCreate(t, s, "b", nil)
	for i := 0; i < 3; i++ {
		if _, err := s.InsertRow("a", table.Row{}); err != nil {
			t.Fatalf("InsertRow failed: %v", err)
		}
	}

	later, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if later.Tables != 2 || later.Rows != 3 {
		t.Errorf("Expected 2 tables and 3 rows, got %+v", later)
	}
	if later.Uptime < stats.Uptime {
		t.Errorf("Uptime went backwards: %s < %s", later.Uptime, stats.Uptime)
	}
}

func testConcurrentInserts(t *testing.T, s store.ITableStore) {
	mustCreate(t, s, "events", []table.Column{
		{Name: "worker", Kind: table.ColumnKindInteger},
		{Name: "seq", Kind: table.ColumnKindInteger},
	})

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	counts := make(chan int, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				count, err := s.InsertRow("events", table.Row{
					"worker": table.IntValue(int64(w)),
					"seq":    table.IntValue(int64(i)),
				})
				if err != nil {
					t.Errorf("InsertRow failed: %v", err)
					return
				}
				counts <- count
			}
		}(w)
		// readers run alongside the writers
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ListRows("events"); err != nil {
				t.Errorf("ListRows failed: %v", err)
			}
		}()
	}
	wg.Wait()
	close(counts)

	// every insert observed a distinct count
	var seen []int
	for c := range counts {
		seen = append(seen, c)
	}
	sort.Ints(seen)
	for i, c := range seen {
		if c != i+1 {
			t.Fatalf("Expected distinct counts 1..%d, got %d at position %d", len(seen), c, i)
		}
	}

	rows, err := s.ListRows("events")
	if err != nil {
		t.Fatalf("ListRows failed: %v", err)
	}
	if len(rows) != workers*perWorker {
		t.Errorf("Expected %d rows, got %d", workers*perWorker, len(rows))
	}

	// per worker, rows keep their insertion order
	next := make(map[int64]int64)
	for _, r := range rows {
		w, _ := r["worker"].Int()
		seq, _ := r["seq"].Int()
		if seq != next[w] {
			t.Errorf("Worker %d: expected seq %d, got %d", w, next[w], seq)
		}
		next[w] = seq + 1
	}
}
