package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerConfigString(t *testing.T) {
	c := ServerConfig{Endpoint: "0.0.0.0:8080", Transport: "http", SnapshotPath: "t.db.json", SnapshotFormat: "json", LogLevel: "info"}
	assert.True(t, c.Persistent())
	out := c.String()
	assert.Contains(t, out, "RPC SERVER")
	assert.Contains(t, out, "t.db.json")

	c.SnapshotPath = ""
	assert.False(t, c.Persistent())
	assert.Contains(t, c.String(), "(in memory only)")
}

func TestClientConfigString(t *testing.T) {
	c := ClientConfig{Endpoints: []string{"a:1", "b:2"}, TimeoutSecond: 3}
	out := c.String()
	assert.Contains(t, out, "b:2")
	// the longest label still gets padded so the values line up
	assert.Contains(t, out, "  Connections Per Endpoint  : 1\n")
	assert.Contains(t, out, "  Timeout                   : 3 sec\n")
}
