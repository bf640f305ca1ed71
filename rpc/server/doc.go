// Package server implements the RPC server of tStore. It connects a transport and a
// serializer to a store.ITableStore: every request is decoded, passed to one store
// operation through an adapter, and the result or the typed error is encoded back.
//
// The package focuses on:
//   - Server-side RPC request handling for all table store operations
//   - Adapter pattern to decouple application logic from RPC mechanisms
//   - Request metrics in the VictoriaMetrics default set
//   - Opening the local store described by a ServerConfig
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server adapters,
//     with the Handle method that processes incoming requests against a store.ITableStore.
//
//   - NewTableStoreServerAdapter: Factory function creating an adapter that translates
//     RPC requests to store.ITableStore method calls.
//
//   - OpenStore: Creates a lstore.LocalStore with a file snapshotter if the config
//     names a snapshot path.
//
//   - NewRPCServer: Factory function creating a configured server with the specified
//     transport and serializer mechanisms.
//
// Usage Example:
//
//	// Create server configuration
//	config := common.ServerConfig{
//	  Endpoint:       "0.0.0.0:8080",
//	  Transport:      "http",
//	  Serializer:     "json",
//	  TimeoutSecond:  5,
//	  SnapshotPath:   "tstore.db.json",
//	  SnapshotFormat: "json",
//	  LogLevel:       "info",
//	}
//
//	tableStore, err := server.OpenStore(config)
//	if err != nil {
//	  log.Fatalf("Store error: %v", err)
//	}
//	defer tableStore.Close()
//
//	// Create and start the server
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPDefaultServerTransport(),
//	  serializer.NewBinarySerializer(),
//	  tableStore,
//	)
//
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Metrics:
//
//	tstore_rpc_requests_total{type}               handled requests per message type
//	tstore_rpc_errors_total{type,code}            failed requests per return code
//	tstore_rpc_request_duration_seconds{type}     handling latency
//	tstore_rpc_decode_errors_total                requests that could not be decoded
//	tstore_tables, tstore_rows                    size of the served store
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent requests
//	across multiple connections. Each request is processed independently, the
//	store serializes conflicting operations. Serve should be called only once.
package server
