package base

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/tStore/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()
	defer srv.Close()

	payloads := [][]byte{[]byte("hello"), {}, bytes.Repeat([]byte{7}, 4096)}

	go func() {
		for i, p := range payloads {
			_ = writeFrame(client, uint64(i+1), p)
		}
	}()

	buf := make([]byte, 64)
	for i, p := range payloads {
		id, data, err := readFrame(srv, buf)
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), id)
		assert.Equal(t, p, data)
	}
}

func TestReadFrameRejectsOversize(t *testing.T) {
	header := make([]byte, headerSize)
	binary.BigEndian.PutUint64(header[:8], 1)
	binary.BigEndian.PutUint32(header[8:], maxFrameSize+1)

	_, _, err := readFrame(bytes.NewReader(header), nil)
	assert.Error(t, err)
}

func TestReadFrameTruncated(t *testing.T) {
	header := make([]byte, headerSize)
	binary.BigEndian.PutUint32(header[8:], 10)

	_, _, err := readFrame(bytes.NewReader(append(header, 1, 2, 3)), nil)
	assert.Error(t, err)
}

// --------------------------------------------------------------------------
// Client & Server
// --------------------------------------------------------------------------

type testServerConnector struct{}

func (testServerConnector) GetName() string { return "test" }

func (testServerConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	return net.Listen("tcp", config.Endpoint)
}

type testClientConnector struct{}

func (testClientConnector) GetName() string { return "test" }

func (testClientConnector) Connect(endpoint string) (net.Conn, error) {
	return net.Dial("tcp", endpoint)
}

func startEcho(t *testing.T, handler func([]byte) []byte) (addr string, stop func()) {
	t.Helper()
	srv := NewBaseServerTransport(testServerConnector{}, 1024, 4)
	srv.RegisterHandler(handler)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(common.ServerConfig{Endpoint: "127.0.0.1:0", TimeoutSecond: 2}) }()
	require.Eventually(t, func() bool { return srv.Addr() != "" }, 5*time.Second, 5*time.Millisecond)

	var once sync.Once
	stop = func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, srv.Shutdown(ctx))
			assert.NoError(t, <-errCh)
		})
	}
	t.Cleanup(stop)
	return srv.Addr(), stop
}

func TestClientServer(t *testing.T) {
	addr, _ := startEcho(t, func(req []byte) []byte {
		return append([]byte("echo:"), req...)
	})

	client := NewBaseClientTransport(testClientConnector{})
	require.NoError(t, client.Connect(common.ClientConfig{Endpoints: []string{addr}, TimeoutSecond: 2, ConnectionsPerEndpoint: 3}))
	defer client.Close()

	// many requests in flight on few connections are matched by request id
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := []byte(fmt.Sprintf("msg-%d", i))
			resp, err := client.Send(msg)
			if assert.NoError(t, err) {
				assert.Equal(t, "echo:"+string(msg), string(resp))
			}
		}(i)
	}
	wg.Wait()
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	addr, _ := startEcho(t, func(req []byte) []byte {
		<-release
		return req
	})
	defer close(release)

	client := NewBaseClientTransport(testClientConnector{})
	require.NoError(t, client.Connect(common.ClientConfig{Endpoints: []string{addr}, TimeoutSecond: 1, RetryCount: 3}))
	defer client.Close()

	start := time.Now()
	_, err := client.Send([]byte("slow"))
	assert.ErrorIs(t, err, ErrTimeout)
	// a written request is never repeated
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClientConnectionLost(t *testing.T) {
	block := make(chan struct{})
	addr, stop := startEcho(t, func(req []byte) []byte {
		<-block
		return req
	})

	client := NewBaseClientTransport(testClientConnector{})
	require.NoError(t, client.Connect(common.ClientConfig{Endpoints: []string{addr}, TimeoutSecond: 10}))
	defer client.Close()

	errCh := make(chan error, 1)
	go func() {
		_, err := client.Send([]byte("pending"))
		errCh <- err
	}()
	time.Sleep(100 * time.Millisecond)

	go stop()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrConnectionLost)
	case <-time.After(5 * time.Second):
		t.Fatal("pending request was not failed when the connection broke")
	}
	close(block)
}

func TestConnectFailsWithoutEndpoints(t *testing.T) {
	client := NewBaseClientTransport(testClientConnector{})
	assert.Error(t, client.Connect(common.ClientConfig{}))

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	err = client.Connect(common.ClientConfig{Endpoints: []string{addr}})
	assert.Error(t, err)

	_, err = client.Send([]byte("x"))
	assert.False(t, errors.Is(err, ErrTimeout))
}
