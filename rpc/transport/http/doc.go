// Package http implements the HTTP-based transport of the tStore RPC system.
// It provides concrete implementations of the transport interfaces defined in the
// parent package, enabling communication between clients and servers over HTTP.
//
// The package focuses on:
//   - Client-side HTTP transport for sending RPC requests to servers
//   - Server-side HTTP transport for receiving and handling RPC requests
//   - Round-robin load balancing across multiple server endpoints
//   - Hosting additional routes next to the rpc route
//
// Routes of the server:
//
//	POST /rpc       serialized rpc message in, serialized response out
//	GET  /metrics   request metrics in the Prometheus text format
//	...             every route mounted by a RouteRegistrar (e.g. the REST api)
//
// Key Components:
//
//   - httpClientTransport: Implements IRPCClientTransport, posting each request to
//     the rpc route of the next endpoint. Endpoints may be given as host:port.
//
//   - httpServerTransport: Implements IRPCServerTransport, passing the body of each
//     rpc request to the registered handler.
//
// Thread Safety:
//
//	The client transport is thread-safe and can be used concurrently. It uses
//	atomic operations for the round-robin counter to ensure thread safety when
//	selecting server endpoints.
package http
