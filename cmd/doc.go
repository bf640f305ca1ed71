// Package cmd implements the command-line interface for the tStore table
// store. It provides a hierarchical command structure with operations
// for running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Commands for starting and configuring the tStore server
//   - table: Commands for table operations (create, insert, rows, etc.) and a benchmark
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// All flags can also be set with environment variables prefixed with TSTORE_
// (e.g. TSTORE_SNAPSHOT_PATH), which are also read from .env and .env.local files.
//
// See tstore -help for a list of all commands.
package cmd
