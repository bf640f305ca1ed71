package serializer

import (
	"errors"
	"testing"
	"time"

	"github.com/ValentinKolb/tStore/lib/snapshot"
	"github.com/ValentinKolb/tStore/lib/store"
	"github.com/ValentinKolb/tStore/lib/table"
	"github.com/ValentinKolb/tStore/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

func sampleRow() table.Row {
	return table.Row{
		"name":   table.StringValue("alice"),
		"age":    table.IntValue(-30),
		"score":  table.FloatValue(5),
		"ratio":  table.FloatValue(0.25),
		"active": table.BoolValue(true),
		"meta": table.MustFromAny(map[string]any{
			"tags":  []any{"a", 1, 2.5, nil},
			"inner": map[string]any{"deep": false},
		}),
		"none": table.NullValue(),
	}
}

var sampleColumns = []table.Column{
	{Name: "name", Kind: table.ColumnKindString},
	{Name: "age", Kind: table.ColumnKindInteger},
	{Name: "score", Kind: table.ColumnKindFloat},
	{Name: "active", Kind: table.ColumnKindBoolean},
	{Name: "meta", Kind: table.ColumnKindObject},
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		// CreateTable request
		*common.NewCreateTableRequest("users", sampleColumns),

		// InsertRow request
		*common.NewInsertRowRequest("users", sampleRow()),

		// InsertRow response
		*common.NewInsertRowResponse(3, nil),

		// ListRows response
		*common.NewListRowsResponse([]table.Row{sampleRow(), {"name": table.StringValue("bob")}}, nil),

		// ListTables response
		*common.NewListTablesResponse([]string{"a", "b", "users"}, nil),

		// GetTable response
		*common.NewGetTableResponse(table.Info{ID: "0b7f", Name: "users", Columns: sampleColumns, Rows: 12}, nil),

		// DeleteTable response
		*common.NewDeleteTableResponse(true, nil),

		// Stats response with snapshot statistics
		*common.NewStatsResponse(store.Stats{
			Tables: 2,
			Rows:   40,
			Uptime: 90 * time.Second,
			Snapshot: &snapshot.Stats{
				Path:          "tstore.db.json",
				Format:        "json",
				Saves:         7,
				Failures:      1,
				LastSizeBytes: 1024,
				LastSaveAt:    time.Unix(1700000000, 123000000),
				MeanSaveMs:    1.5,
				P99SaveMs:     4.25,
				MaxSaveMs:     5,
				MeanSizeBytes: 900.5,
			},
		}, nil),

		// Stats response without snapshot statistics
		*common.NewStatsResponse(store.Stats{Tables: 1, Uptime: time.Millisecond}, nil),

		// Error responses
		*common.NewGetTableResponse(table.Info{}, store.NewError(store.RetCTableNotFound, "table 'x' not found")),
		*common.NewErrorResponse("could not decode request"),
	}
}

// messagesEqual compares two messages field by field. Empty and nil slices are equal.
func messagesEqual(t *testing.T, i int, expected, actual common.Message) {
	t.Helper()

	if expected.MsgType != actual.MsgType || expected.Table != actual.Table ||
		expected.Count != actual.Count || expected.Ok != actual.Ok ||
		expected.Code != actual.Code || expected.Err != actual.Err {
		t.Errorf("Message %d: scalar fields differ:\nOriginal: %+v\nResult:   %+v", i, expected, actual)
	}

	if !columnsEqual(expected.Columns, actual.Columns) {
		t.Errorf("Message %d: columns differ: %v vs %v", i, expected.Columns, actual.Columns)
	}
	if !expected.Row.Equal(actual.Row) {
		t.Errorf("Message %d: row differs: %v vs %v", i, expected.Row, actual.Row)
	}
	if len(expected.Rows) != len(actual.Rows) {
		t.Errorf("Message %d: expected %d rows, got %d", i, len(expected.Rows), len(actual.Rows))
	} else {
		for j := range expected.Rows {
			if !expected.Rows[j].Equal(actual.Rows[j]) {
				t.Errorf("Message %d: row %d differs", i, j)
			}
		}
	}
	if len(expected.Names) != len(actual.Names) {
		t.Errorf("Message %d: names differ: %v vs %v", i, expected.Names, actual.Names)
	} else {
		for j := range expected.Names {
			if expected.Names[j] != actual.Names[j] {
				t.Errorf("Message %d: names differ: %v vs %v", i, expected.Names, actual.Names)
			}
		}
	}

	if (expected.Info == nil) != (actual.Info == nil) {
		t.Errorf("Message %d: info presence differs", i)
	} else if expected.Info != nil {
		e, a := expected.Info, actual.Info
		if e.ID != a.ID || e.Name != a.Name || e.Rows != a.Rows || !columnsEqual(e.Columns, a.Columns) {
			t.Errorf("Message %d: info differs: %+v vs %+v", i, e, a)
		}
	}

	if (expected.Stats == nil) != (actual.Stats == nil) {
		t.Errorf("Message %d: stats presence differs", i)
	} else if expected.Stats != nil {
		e, a := expected.Stats, actual.Stats
		if e.Tables != a.Tables || e.Rows != a.Rows || e.Uptime != a.Uptime {
			t.Errorf("Message %d: stats differ: %+v vs %+v", i, e, a)
		}
		if (e.Snapshot == nil) != (a.Snapshot == nil) {
			t.Errorf("Message %d: snapshot stats presence differs", i)
		} else if e.Snapshot != nil {
			es, as := *e.Snapshot, *a.Snapshot
			if !es.LastSaveAt.Equal(as.LastSaveAt) {
				t.Errorf("Message %d: last save differs: %s vs %s", i, es.LastSaveAt, as.LastSaveAt)
			}
			es.LastSaveAt, as.LastSaveAt = time.Time{}, time.Time{}
			if es != as {
				t.Errorf("Message %d: snapshot stats differ: %+v vs %+v", i, es, as)
			}
		}
	}
}

func columnsEqual(a, b []table.Column) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				// Serialize
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				// Deserialize into a dirty message, nothing may leak through
				result := common.Message{Table: "stale", Count: 99, Ok: true}
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				messagesEqual(t, i, msg, result)
			}
		})
	}
}

// TestMessageTypes tests each message type with each serializer
func TestMessageTypes(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			// Test each message type (don't test for MsgTUnknown since this should raise an error)
			for msgType := common.MsgTSuccess; msgType <= common.MsgTStats; msgType++ {
				msg := common.Message{MsgType: msgType}

				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message type %s: %v", msgType.String(), err)
					continue
				}

				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message type %s: %v", msgType.String(), err)
					continue
				}

				if result.MsgType != msgType {
					t.Errorf("Message type doesn't match after round trip: Expected %s, got %s",
						msgType.String(), result.MsgType.String())
				}
			}
		})
	}
}

// TestErrorRoundTrip tests that typed store errors survive serialization
func TestErrorRoundTrip(t *testing.T) {
	cause := &table.ValidationError{Column: "age", Reason: table.ErrTypeMismatch,
		Expected: table.ColumnKindInteger, Got: table.KindFloat}
	response := common.NewInsertRowResponse(0, store.WrapError(store.RetCTypeMismatch, cause))

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()
			data, err := serializer.Serialize(*response)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}
			var result common.Message
			if err := serializer.Deserialize(data, &result); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}

			err = result.ToError()
			if !errors.Is(err, store.ErrTypeMismatch) {
				t.Errorf("Expected a TypeMismatch error, got %v", err)
			}
			var storeErr *store.Error
			if errors.As(err, &storeErr) && storeErr.Msg != cause.Error() {
				t.Errorf("Expected message %q, got %q", cause.Error(), storeErr.Msg)
			}

			ok := common.NewInsertRowResponse(1, nil)
			data, _ = serializer.Serialize(*ok)
			if err := serializer.Deserialize(data, &result); err != nil {
				t.Fatalf("Failed to deserialize: %v", err)
			}
			if result.ToError() != nil {
				t.Errorf("Expected no error, got %v", result.ToError())
			}
		})
	}
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "Too short header",
			data:        []byte{1, 0}, // message type and half of the flags
			expectError: true,
		},
		{
			name:        "Valid header only",
			data:        []byte{1, 0, 0}, // Message type 1, no flags
			expectError: false,
		},
		{
			name:        "Invalid length for table",
			data:        []byte{3, 0, 1, 5, 'a', 'b', 'c'}, // Claims table length 5 but only 3 bytes provided
			expectError: true,
		},
		{
			name:        "Missing row",
			data:        []byte{6, 0, 4}, // Row flag without data
			expectError: true,
		},
		{
			name:        "Trailing bytes",
			data:        []byte{1, 0, 0, 42},
			expectError: true,
		},
		{
			name:        "Unknown value kind",
			data:        []byte{6, 0, 4, 1, 1, 'a', 99},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var msg common.Message
			err := serializer.Deserialize(tc.data, &msg)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}

// TestNew tests the lookup of serializers by name
func TestNew(t *testing.T) {
	for _, name := range []string{"json", "gob", "binary", "JSON"} {
		if _, err := New(name); err != nil {
			t.Errorf("Expected serializer for %s, got %v", name, err)
		}
	}
	if _, err := New("xml"); err == nil {
		t.Errorf("Expected an error for an unknown serializer")
	}
}

func BenchmarkSerializers(b *testing.B) {
	rows := make([]table.Row, 100)
	for i := range rows {
		rows[i] = sampleRow()
	}
	msg := *common.NewListRowsResponse(rows, nil)

	for name, factory := range testSerializers {
		serializer := factory()
		b.Run(name+"/Serialize", func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := serializer.Serialize(msg); err != nil {
					b.Fatal(err)
				}
			}
		})
		data, _ := serializer.Serialize(msg)
		b.Run(name+"/Deserialize", func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				var result common.Message
				if err := serializer.Deserialize(data, &result); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
