// Package rpc provides the network layer of the table store. It connects
// clients to a tStore server, either through the framed RPC protocol or through
// the JSON REST api.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Message protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets, HTTP).
//
//   - serializer: Message serialization with multiple format options (Binary, JSON, GOB)
//     for converting between Message objects and byte arrays.
//
//   - client: RPC client implementing store.ITableStore, allowing applications
//     to use a remote store like a local one.
//
//   - server: RPC server that decodes requests, dispatches them to a store and
//     records request metrics.
//
//   - rest: JSON over HTTP api (/tables, /tables/{name}/rows, /health, /statistics)
//     mounted next to the RPC endpoint of the http transport.
package rpc
