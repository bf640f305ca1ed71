package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/tStore/lib/snapshot"
	"github.com/ValentinKolb/tStore/lib/table"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ITableStore is the interface for interacting with a table store.
// All methods return a *Error (nil on success). Mutating operations are only
// reported as successful once the new state has been persisted.
type ITableStore interface {
	// CreateTable creates an empty table with the given columns and returns its descriptor.
	// Fails with RetCTableExists if the name is taken.
	CreateTable(name string, columns []table.Column) (info table.Info, err error)
	// ListTables returns the names of all tables in ascending order.
	ListTables() (names []string, err error)
	// GetTable returns the descriptor of a table.
	GetTable(name string) (info table.Info, err error)
	// InsertRow validates the row against the table schema and appends it.
	// It returns the row count of the table after the insert.
	InsertRow(name string, row table.Row) (count int, err error)
	// ListRows returns copies of all rows of a table in insertion order.
	ListRows(name string) (rows []table.Row, err error)
	// DeleteTable removes a table with all its rows. deleted is always true on success.
	DeleteTable(name string) (deleted bool, err error)
	// Stats returns aggregate information about the store.
	Stats() (stats Stats, err error)
}

// Stats describes the state of a store
type Stats struct {
	Tables   int             `json:"tables"`
	Rows     int             `json:"rows"`
	Uptime   time.Duration   `json:"uptime"`
	Snapshot *snapshot.Stats `json:"snapshot,omitempty"`
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode),
// an error message and optionally the underlying cause.
type Error struct {
	Code  RetCode // The return code
	Msg   string  // The error message.
	Cause error   // The underlying error, if any. Not transmitted over RPC.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

// Unwrap returns the cause of the error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors with the same return code, so
// errors.Is(err, store.ErrTableNotFound) works for any message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new Error with the given code, using the cause as message.
func WrapError(code RetCode, cause error) *Error {
	return &Error{
		Code:  code,
		Msg:   cause.Error(),
		Cause: cause,
	}
}

// Sentinel errors for errors.Is. The message is irrelevant for matching.
var (
	ErrTableExists         = NewError(RetCTableExists, "table already exists")
	ErrTableNotFound       = NewError(RetCTableNotFound, "table not found")
	ErrMissingColumn       = NewError(RetCMissingColumn, "missing required column")
	ErrTypeMismatch        = NewError(RetCTypeMismatch, "column type mismatch")
	ErrSerializationFailed = NewError(RetCSerializationFailed, "snapshot serialization failed")
	ErrWriteFailed         = NewError(RetCWriteFailed, "snapshot write failed")
	ErrLockUnusable        = NewError(RetCLockUnusable, "store lock unusable")
	ErrInvalidArgument     = NewError(RetCInvalidArgument, "invalid argument")
	ErrInternal            = NewError(RetCInternalError, "internal error")
)

// IsPersistenceFailure reports whether err means the snapshot could not be written.
// The operation that returned it had no effect.
func IsPersistenceFailure(err error) bool {
	return errors.Is(err, ErrSerializationFailed) || errors.Is(err, ErrWriteFailed)
}

// CodeOf returns the return code carried by err, RetCSuccess for nil and
// RetCInternalError for errors that are not a *Error.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return RetCInternalError
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess             RetCode = iota // 0: Command executed successfully.
	RetCInternalError                      // 1: Command failed due to an internal error.
	RetCInvalidArgument                    // 2: Malformed request (e.g. empty table name).
	RetCTableExists                        // 3: A table with this name already exists.
	RetCTableNotFound                      // 4: No table with this name exists.
	RetCMissingColumn                      // 5: A declared column is absent from the row.
	RetCTypeMismatch                       // 6: A row value does not match its column kind.
	RetCSerializationFailed                // 7: The snapshot could not be encoded.
	RetCWriteFailed                        // 8: The snapshot could not be written.
	RetCLockUnusable                       // 9: The store is closed or was left inconsistent by a panic.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCInvalidArgument:
		return "InvalidArgument"
	case RetCTableExists:
		return "TableExists"
	case RetCTableNotFound:
		return "TableNotFound"
	case RetCMissingColumn:
		return "MissingColumn"
	case RetCTypeMismatch:
		return "TypeMismatch"
	case RetCSerializationFailed:
		return "SerializationFailed"
	case RetCWriteFailed:
		return "WriteFailed"
	case RetCLockUnusable:
		return "LockUnusable"
	default:
		return fmt.Sprintf("Unknown(%d)", uint64(c))
	}
}
