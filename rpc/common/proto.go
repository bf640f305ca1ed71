package common

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ValentinKolb/tStore/lib/store"
	"github.com/ValentinKolb/tStore/lib/table"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// Request fields
	Table   string         `json:"table,omitempty"`   // Used for: GetTable, CreateTable, InsertRow, ListRows, DeleteTable
	Columns []table.Column `json:"columns,omitempty"` // Used for: CreateTable (request)
	Row     table.Row      `json:"row,omitempty"`     // Used for: InsertRow (request)

	// Response only fields
	Rows  []table.Row  `json:"rows,omitempty"`  // Used for: ListRows
	Names []string     `json:"names,omitempty"` // Used for: ListTables
	Info  *table.Info  `json:"info,omitempty"`  // Used for: CreateTable, GetTable
	Stats *store.Stats `json:"stats,omitempty"` // Used for: Stats
	Count int          `json:"count,omitempty"` // Used for: InsertRow
	Ok    bool         `json:"ok,omitempty"`    // Used for: DeleteTable

	// Error fields, empty if no error
	Code store.RetCode `json:"code,omitempty"` // Return code of the failed operation
	Err  string        `json:"err,omitempty"`  // Error message
}

// setError fills the error fields of a response
func (m *Message) setError(err error) *Message {
	if err == nil {
		return m
	}
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		m.Code = storeErr.Code
		m.Err = storeErr.Msg
	} else {
		m.Code = store.RetCInternalError
		m.Err = err.Error()
	}
	return m
}

// ToError rebuilds the error carried by a response. It returns nil if the message carries none.
func (m *Message) ToError() error {
	if m.Code == store.RetCSuccess && m.Err == "" && m.MsgType != MsgTError {
		return nil
	}
	code := m.Code
	if code == store.RetCSuccess {
		code = store.RetCInternalError
	}
	return store.NewError(code, m.Err)
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewCreateTableRequest creates a new CreateTable request
func NewCreateTableRequest(name string, columns []table.Column) *Message {
	return &Message{
		MsgType: MsgTCreateTable,
		Table:   name,
		Columns: columns,
	}
}

// NewCreateTableResponse creates a new CreateTable response
func NewCreateTableResponse(info table.Info, err error) *Message {
	msg := &Message{
		MsgType: MsgTCreateTable,
	}
	if err == nil {
		msg.Info = &info
	}
	return msg.setError(err)
}

// NewListTablesRequest creates a new ListTables request
func NewListTablesRequest() *Message {
	return &Message{
		MsgType: MsgTListTables,
	}
}

// NewListTablesResponse creates a new ListTables response
func NewListTablesResponse(names []string, err error) *Message {
	msg := &Message{
		MsgType: MsgTListTables,
		Names:   names,
	}
	return msg.setError(err)
}

// NewGetTableRequest creates a new GetTable request
func NewGetTableRequest(name string) *Message {
	return &Message{
		MsgType: MsgTGetTable,
		Table:   name,
	}
}

// NewGetTableResponse creates a new GetTable response
func NewGetTableResponse(info table.Info, err error) *Message {
	msg := &Message{
		MsgType: MsgTGetTable,
	}
	if err == nil {
		msg.Info = &info
	}
	return msg.setError(err)
}

// NewInsertRowRequest creates a new InsertRow request
func NewInsertRowRequest(name string, row table.Row) *Message {
	return &Message{
		MsgType: MsgTInsertRow,
		Table:   name,
		Row:     row,
	}
}

// NewInsertRowResponse creates a new InsertRow response
func NewInsertRowResponse(count int, err error) *Message {
	msg := &Message{
		MsgType: MsgTInsertRow,
		Count:   count,
	}
	return msg.setError(err)
}

// NewListRowsRequest creates a new ListRows request
func NewListRowsRequest(name string) *Message {
	return &Message{
		MsgType: MsgTListRows,
		Table:   name,
	}
}

// NewListRowsResponse creates a new ListRows response
func NewListRowsResponse(rows []table.Row, err error) *Message {
	msg := &Message{
		MsgType: MsgTListRows,
		Rows:    rows,
	}
	return msg.setError(err)
}

// NewDeleteTableRequest creates a new DeleteTable request
func NewDeleteTableRequest(name string) *Message {
	return &Message{
		MsgType: MsgTDeleteTable,
		Table:   name,
	}
}

// NewDeleteTableResponse creates a new DeleteTable response
func NewDeleteTableResponse(ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTDeleteTable,
		Ok:      ok,
	}
	return msg.setError(err)
}

// NewStatsRequest creates a new Stats request
func NewStatsRequest() *Message {
	return &Message{
		MsgType: MsgTStats,
	}
}

// NewStatsResponse creates a new Stats response
func NewStatsResponse(stats store.Stats, err error) *Message {
	msg := &Message{
		MsgType: MsgTStats,
	}
	if err == nil {
		msg.Stats = &stats
	}
	return msg.setError(err)
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Code:    store.RetCInternalError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTCreateTable:
		return "createTable"
	case MsgTListTables:
		return "listTables"
	case MsgTGetTable:
		return "getTable"
	case MsgTInsertRow:
		return "insertRow"
	case MsgTListRows:
		return "listRows"
	case MsgTDeleteTable:
		return "deleteTable"
	case MsgTStats:
		return "stats"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "createTable":
		*t = MsgTCreateTable
	case "listTables":
		*t = MsgTListTables
	case "getTable":
		*t = MsgTGetTable
	case "insertRow":
		*t = MsgTInsertRow
	case "listRows":
		*t = MsgTListRows
	case "deleteTable":
		*t = MsgTDeleteTable
	case "stats":
		*t = MsgTStats
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// ITableStore operations

	MsgTCreateTable // Create a table
	MsgTListTables  // List all table names
	MsgTGetTable    // Describe a table
	MsgTInsertRow   // Insert a row into a table
	MsgTListRows    // List all rows of a table
	MsgTDeleteTable // Delete a table
	MsgTStats       // Read store statistics
)
