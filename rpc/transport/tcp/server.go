package tcp

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/ValentinKolb/tStore/rpc/common"
	"github.com/ValentinKolb/tStore/rpc/transport"
	"github.com/ValentinKolb/tStore/rpc/transport/base"
)

const (
	defaultBufferSize        = 512 * 1024 // 512 KB
	defaultMaxWorkersPerConn = 32
	keepAlivePeriod          = 30 * time.Second
)

// serverConnector implements the IServerConnector interface for TCP sockets
type serverConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IServerConnector)
// --------------------------------------------------------------------------

func (c *serverConnector) GetName() string {
	return "tcp"
}

func (c *serverConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	// Go enables TCP_NODELAY on accepted connections, the listen config adds keep-alive
	lc := net.ListenConfig{KeepAlive: keepAlivePeriod}

	listener, err := lc.Listen(context.Background(), "tcp", config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create TCP socket: %v", err)
	}

	return listener, nil
}

// --------------------------------------------------------------------------
// Server Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPDefaultServerTransport creates a new TCP server transport with default settings
func NewTCPDefaultServerTransport() transport.IRPCServerTransport {
	return NewTCPServerTransport(defaultBufferSize, defaultMaxWorkersPerConn)
}

// NewTCPServerTransport creates a new TCP server transport with specified buffer size
func NewTCPServerTransport(bufferSize int, maxWorkersPerConn int) transport.IRPCServerTransport {
	return base.NewBaseServerTransport(&serverConnector{}, bufferSize, maxWorkersPerConn)
}
