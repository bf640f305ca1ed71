// Package store defines the interface of a schema validated table store and its
// error model.
//
// Key Components:
//
//   - ITableStore Interface: create, list, describe and delete tables, insert and
//     list rows, read aggregate statistics. The local engine (lstore) and the RPC
//     client (rpc/client) both implement it, so callers do not care whether the
//     store lives in the same process.
//
//   - Error System: every failure is a *Error carrying a RetCode. Errors match by
//     code, so errors.Is(err, store.ErrTableNotFound) works for errors created by
//     the engine as well as for errors rebuilt from an RPC response.
//     IsPersistenceFailure groups RetCSerializationFailed and RetCWriteFailed.
//
// Implementations:
//
//   - Local Store (lstore): an in-memory map of tables behind one RWMutex, with a
//     full snapshot written after every mutation.
//     Available in the "github.com/ValentinKolb/tStore/lib/store/lstore" package.
//
//   - RPC Client: the same interface over http, tcp or unix transports.
//     Available in the "github.com/ValentinKolb/tStore/rpc/client" package.
package store
