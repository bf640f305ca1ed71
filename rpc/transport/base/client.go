package base

import (
	"errors"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/tStore/rpc/common"
	"github.com/ValentinKolb/tStore/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("transport/rpc")

const (
	// reconnect backoff of a connection whose reader lost the server
	minReconnectBackoff = 50 * time.Millisecond
	maxReconnectBackoff = 2 * time.Second
)

var (
	// errNotSent marks failures that happened before the request reached the connection.
	// Only those are retried, a request that was written may already have been executed.
	errNotSent = errors.New("request not sent")
	// ErrConnectionLost is returned for requests whose connection broke before the response arrived
	ErrConnectionLost = errors.New("connection lost")
	// ErrTimeout is returned if no response arrives within the configured timeout
	ErrTimeout = errors.New("request timed out")
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// responseResult contains the result of a request
type responseResult struct {
	data []byte
	err  error
}

// clientConnection represents a single net connection
type clientConnection struct {
	conn         net.Conn
	endpoint     string
	stopCh       chan struct{} // Close signal for the reader goroutine
	requestChans *xsync.MapOf[uint64, chan responseResult]
	connMu       sync.Mutex // Protects the connection itself
	parent       *clientTransport
}

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector     IClientConnector
	config        common.ClientConfig
	connections   []*clientConnection
	connectionsMu sync.RWMutex
	nextConnIndex uint64 // Atomic counter for Round Robin
	nextRequestID uint64 // Atomic counter for unique request IDs
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector: connector,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	// Close all existing connections
	t.closeConnections()

	// Store the config
	t.config = config

	// Set default value for ConnectionsPerEndpoint
	connectionsPerEP := max(config.ConnectionsPerEndpoint, 1)

	connections := make([]*clientConnection, 0, len(config.Endpoints)*connectionsPerEP)

	// Initialize client connections
	for _, endpoint := range config.Endpoints {
		// Create multiple connections per endpoint
		for i := 0; i < connectionsPerEP; i++ {
			clientConn := &clientConnection{
				endpoint:     endpoint,
				stopCh:       make(chan struct{}),
				requestChans: xsync.NewMapOf[uint64, chan responseResult](),
				parent:       t,
			}

			// Establish the initial connection using reconnect
			if err := clientConn.reconnect(); err != nil {
				Logger.Warningf("Failed to connect to %s (connection %d/%d): %v", endpoint, i+1, connectionsPerEP, err)
				continue
			}

			connections = append(connections, clientConn)
			Logger.Debugf("Connected to %s (connection %d/%d)", endpoint, i+1, connectionsPerEP)

			// Start the response reader
			go clientConn.readResponses()
		}
	}

	// Check if we have at least one connection
	if len(connections) == 0 {
		return fmt.Errorf("failed to connect to any endpoint")
	}

	t.connectionsMu.Lock()
	t.connections = connections
	t.connectionsMu.Unlock()

	Logger.Infof("Connected to %d out of %d connections to %d endpoints using %s transport",
		len(connections), len(config.Endpoints)*connectionsPerEP, len(config.Endpoints), t.connector.GetName())

	return nil
}

func (t *clientTransport) Send(req []byte) (resp []byte, err error) {
	// We always try at least once, and up to RetryCount times
	maxRetries := max(t.config.RetryCount, 1)

	// Initial backoff duration in milliseconds
	backoffMs := 50

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		conn := t.getNextConnection()
		if conn == nil {
			return nil, fmt.Errorf("no active connections available")
		}

		data, err := conn.send(atomic.AddUint64(&t.nextRequestID, 1), req)
		if err == nil {
			return data, nil
		}
		lastErr = err

		// Requests that may have reached the server are not repeated
		if !errors.Is(err, errNotSent) {
			return nil, err
		}
		Logger.Debugf("Request attempt %d/%d failed: %v", i+1, maxRetries, err)

		if i+1 < maxRetries {
			// Exponential backoff with a small random jitter (+-10%)
			jitter := float64(backoffMs) * (0.9 + 0.2*rand.Float64())
			time.Sleep(time.Duration(jitter) * time.Millisecond)
			backoffMs *= 2
		}
	}

	// All attempts failed
	return nil, fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, lastErr)
}

func (t *clientTransport) Close() error {
	t.closeConnections()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// getNextConnection selects the next connection via Round Robin
func (t *clientTransport) getNextConnection() *clientConnection {
	t.connectionsMu.RLock()
	defer t.connectionsMu.RUnlock()

	if len(t.connections) == 0 {
		return nil
	}

	// Simple Round Robin algorithm
	var index uint64
	if len(t.connections) > 1 {
		index = atomic.AddUint64(&t.nextConnIndex, 1) % uint64(len(t.connections))
	}
	return t.connections[index]
}

// closeConnections closes all active connections
func (t *clientTransport) closeConnections() {
	t.connectionsMu.Lock()
	connections := t.connections
	t.connections = nil
	t.connectionsMu.Unlock()

	for _, c := range connections {
		// Signal reader goroutine to stop
		close(c.stopCh)

		c.connMu.Lock()
		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.connMu.Unlock()

		c.failPending(ErrConnectionLost)
	}
}

// send writes one request and waits for the matching response
func (c *clientConnection) send(requestID uint64, req []byte) ([]byte, error) {
	timeout := time.Duration(c.parent.config.TimeoutSecond) * time.Second

	// Register the request before writing, the response may arrive immediately
	respCh := make(chan responseResult, 1)
	c.requestChans.Store(requestID, respCh)
	defer c.requestChans.Delete(requestID)

	// Lock the connection only for writing
	c.connMu.Lock()
	if c.conn == nil {
		c.connMu.Unlock()
		return nil, fmt.Errorf("%w: connection to %s is closed", errNotSent, c.endpoint)
	}
	if timeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	err := writeFrame(c.conn, requestID, req)
	c.connMu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("%w: %v", errNotSent, err)
	}

	// Wait for response or timeout
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case result := <-respCh:
		return result.data, result.err
	case <-timeoutCh:
		return nil, ErrTimeout
	}
}

// stopped reports whether the connection was closed by the transport
func (c *clientConnection) stopped() bool {
	select {
	case <-c.stopCh:
		return true
	default:
		return false
	}
}

// currentConn returns the current connection under the lock
func (c *clientConnection) currentConn() net.Conn {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn
}

// readResponses reads responses in a loop and distributes them to waiting requests
func (c *clientConnection) readResponses() {
	for {
		if c.stopped() {
			return
		}

		conn := c.currentConn()
		if conn == nil {
			if !c.reconnectWithBackoff() {
				return
			}
			continue
		}

		// Read the response frame
		requestID, data, err := readFrame(conn, nil)
		if err != nil {
			if c.stopped() {
				return
			}
			Logger.Warningf("Connection to %s lost: %v", c.endpoint, err)

			// Requests on a broken connection will never get their response
			c.failPending(fmt.Errorf("%w: %v", ErrConnectionLost, err))
			if !c.reconnectWithBackoff() {
				return
			}
			continue
		}

		// Find the corresponding request channel
		if respCh, found := c.requestChans.LoadAndDelete(requestID); found {
			respCh <- responseResult{data: data}
		} else {
			Logger.Warningf("Received response for unknown request ID %d", requestID)
		}
	}
}

// failPending delivers err to every request waiting on this connection
func (c *clientConnection) failPending(err error) {
	c.requestChans.Range(func(requestID uint64, _ chan responseResult) bool {
		if respCh, ok := c.requestChans.LoadAndDelete(requestID); ok {
			respCh <- responseResult{err: err}
		}
		return true
	})
}

// reconnectWithBackoff reconnects until it succeeds or the connection is stopped
func (c *clientConnection) reconnectWithBackoff() bool {
	backoff := minReconnectBackoff
	for {
		if c.stopped() {
			return false
		}
		err := c.reconnect()
		if err == nil {
			Logger.Infof("Reconnected to %s", c.endpoint)
			return true
		}
		Logger.Debugf("Reconnect to %s failed: %v", c.endpoint, err)

		select {
		case <-c.stopCh:
			return false
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxReconnectBackoff)
	}
}

// reconnect establishes or restores a connection to the endpoint
func (c *clientConnection) reconnect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	// Close the old connection if it exists
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}

	conn, err := c.parent.connector.Connect(c.endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %v", c.endpoint, err)
	}

	// the transport may have been closed while dialing
	if c.stopped() {
		_ = conn.Close()
		return fmt.Errorf("connection to %s was closed", c.endpoint)
	}

	c.conn = conn
	return nil
}
