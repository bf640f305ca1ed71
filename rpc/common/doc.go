// Package common provides the data structures and utilities shared by the RPC
// server, the transports and the client of tStore.
//
// The package focuses on:
//   - Message protocol definition for client/server communication
//   - Configuration structures for client and server components
//   - Custom logging implementation integrated with Dragonboat's logger package
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication. One struct serves
//     every operation, only the fields of the given MessageType are set.
//     Failed operations carry the store.RetCode and the message of the error so
//     the client can rebuild a *store.Error (Message.ToError).
//
//   - MessageType: Enumeration of all supported operations (createTable,
//     listTables, getTable, insertRow, listRows, deleteTable, stats) and the
//     control messages (success, error).
//
//   - ServerConfig: Endpoint, transport, timeouts, snapshot location and format,
//     and the log level of a server.
//
//   - ClientConfig: Connection parameters, timeouts and retry behaviour of clients.
//
//   - Logger: A dragonboat logger.Factory producing "LEVEL | name | message" lines.
//     InitLoggers installs it and sets the level of all named loggers.
package common
