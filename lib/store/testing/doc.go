// Package testing provides a reusable conformance suite for store.ITableStore
// implementations. The local engine runs it directly, the RPC client runs it
// against servers on every transport.
package testing
