package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters of a tStore server.
type ServerConfig struct {
	// HTTP api settings
	Endpoint   string
	Transport  string
	Serializer string

	// request timeout of the transports
	TimeoutSecond int64

	// Snapshot settings. An empty SnapshotPath keeps all tables in memory only.
	SnapshotPath   string
	SnapshotFormat string
	StrictLoad     bool

	// Logging configuration
	LogLevel string
}

// Persistent reports whether the server writes snapshots
func (c *ServerConfig) Persistent() bool {
	return c.SnapshotPath != ""
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var w configWriter

	w.section("RPC Server")
	w.field("Endpoint", c.Endpoint)
	w.field("Transport", c.Transport)
	w.field("Serializer", c.Serializer)
	w.field("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	w.section("Snapshot")
	if c.Persistent() {
		w.field("Path", c.SnapshotPath)
		w.field("Format", c.SnapshotFormat)
		w.field("Strict Load", strconv.FormatBool(c.StrictLoad))
	} else {
		w.field("Path", "(in memory only)")
	}

	w.section("Logging")
	w.field("Log Level", c.LogLevel)

	return w.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds the connection settings of an RPC client
type ClientConfig struct {
	Endpoints              []string
	TimeoutSecond          int
	RetryCount             int
	ConnectionsPerEndpoint int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var w configWriter

	w.section("Client Configuration")
	w.field("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	w.field("Retry Count", strconv.Itoa(c.RetryCount))
	w.field("Connections Per Endpoint", strconv.Itoa(max(1, c.ConnectionsPerEndpoint)))

	w.section("Endpoints")
	for i, endpoint := range c.Endpoints {
		w.field(strconv.Itoa(i), endpoint)
	}

	return w.String()
}

// --------------------------------------------------------------------------
// Formatting
// --------------------------------------------------------------------------

// configWriter renders a config as titled sections of aligned fields
type configWriter struct {
	sb strings.Builder
}

func (w *configWriter) section(title string) {
	w.sb.WriteString("\n")
	w.sb.WriteString(strings.ToUpper(title))
	w.sb.WriteString("\n")
}

func (w *configWriter) field(name, value string) {
	fmt.Fprintf(&w.sb, "  %-26s: %s\n", name, value)
}

func (w *configWriter) String() string { return w.sb.String() }
