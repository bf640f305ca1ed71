package unix

import (
	"net"
	"time"

	"github.com/ValentinKolb/tStore/rpc/transport"
	"github.com/ValentinKolb/tStore/rpc/transport/base"
)

const dialTimeout = 5 * time.Second

// clientConnector implements the IClientConnector interface for Unix sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "unix"
}

func (c *clientConnector) Connect(endpoint string) (net.Conn, error) {
	d := net.Dialer{Timeout: dialTimeout}
	return d.Dial("unix", endpoint)
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewUnixClientTransport creates a new Unix client transport
func NewUnixClientTransport() transport.IRPCClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
