// Package tcp implements the TCP socket based transport of the tStore RPC system.
// It provides concrete implementations of the base package's connector
// interfaces for TCP connections.
//
// This package builds on the base package's transport functionality, inheriting its
// connection pooling, buffer reuse and request correlation. See the base package
// documentation for the frame format and the retry rules.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector
//
//   - serverConnector: TCP-specific implementation of base.IServerConnector
//
// The default server buffer size is set to 512 KB, which provides good performance
// for typical workloads, but can be customized for specific use cases.
package tcp
