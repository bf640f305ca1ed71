package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/tStore/rpc/common"
	"github.com/VictoriaMetrics/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerRoutes(t *testing.T) {
	tr := NewHttpServerTransport(func(mux *http.ServeMux) {
		mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})
	}).(*httpServerTransport)
	tr.RegisterHandler(func(req []byte) []byte {
		return []byte(strings.ToUpper(string(req)))
	})

	srv := httptest.NewServer(tr.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+RPCPath, "application/octet-stream", strings.NewReader("abc"))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ABC", string(body))

	metrics.GetOrCreateCounter("tstore_http_test_total").Inc()
	resp, err = http.Get(srv.URL + MetricsPath)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "tstore_http_test_total 1")

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	// the rpc route only accepts POST
	resp, err = http.Get(srv.URL + RPCPath)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestClientServer(t *testing.T) {
	srv := NewHttpServerTransport()
	srv.RegisterHandler(func(req []byte) []byte { return append(req, '!') })

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(common.ServerConfig{Endpoint: "127.0.0.1:0", TimeoutSecond: 2}) }()
	require.Eventually(t, func() bool { return srv.Addr() != "" }, 5*time.Second, 5*time.Millisecond)

	client := NewHttpClientTransport()
	require.NoError(t, client.Connect(common.ClientConfig{Endpoints: []string{srv.Addr()}, TimeoutSecond: 2}))

	resp, err := client.Send([]byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, "hi!", string(resp))
	require.NoError(t, client.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, <-errCh)

	_, err = client.Send([]byte("closed"))
	assert.Error(t, err)
}
