// Package client implements the RPC client of the table store.
// It provides an implementation of the store.ITableStore interface that
// communicates with a remote server via RPC.
//
// The package focuses on:
//   - Transparent RPC access to a remote table store
//   - Integration with the transport and serialization layers
//   - Conversion between RPC responses and typed store errors
//
// Key Components:
//
//   - NewRPCStore: Factory function that creates a client implementing the
//     store.ITableStore interface. This client forwards all operations to remote
//     servers via the configured transport layer.
//
// Errors:
//
//	Errors returned by the server keep their code, so errors.Is(err, store.ErrTableNotFound)
//	works the same for a local and a remote store. Failures of the transport or the
//	serializer (connection refused, timeout, broken response) are reported as a
//	*store.Error with code RetCInternalError that wraps the underlying error.
//
// Usage Example:
//
//	// Configure the client
//	config := common.ClientConfig{
//	  Endpoints:              []string{"localhost:8080"},
//	  TimeoutSecond:          5,
//	  RetryCount:             3,
//	  ConnectionsPerEndpoint: 1,
//	}
//
//	// Create store client
//	s, _ := client.NewRPCStore(config, tcp.NewTCPClientTransport(), serializer.NewBinarySerializer())
//	defer s.Close()
//
//	// Use the store
//	s.CreateTable("users", []table.Column{{Name: "name", Kind: table.ColumnKindString}})
//	count, _ := s.InsertRow("users", table.Row{"name": table.StringValue("alice")})
//
// Performance Considerations:
//
//   - Listing rows transfers the whole table. The binary serializer
//     gives the smallest payloads.
//
//   - For applications that send many requests in parallel, increasing
//     ConnectionsPerEndpoint can improve throughput.
//
// Thread Safety:
//
//	The client is thread-safe and can be used concurrently from
//	multiple goroutines without additional synchronization.
package client
