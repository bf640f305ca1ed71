package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/tStore/rpc/common"
	"github.com/ValentinKolb/tStore/rpc/transport"
)

func NewHttpClientTransport() transport.IRPCClientTransport {
	return &httpClientTransport{}
}

type httpClientTransport struct {
	serverURLs []string
	client     *http.Client
	counter    uint32
	retryCount int
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *httpClientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	// Parse each server URL, plain host:port endpoints are treated as http
	serverURLs := make([]string, len(config.Endpoints))
	for i, endpoint := range config.Endpoints {
		if !strings.Contains(endpoint, "://") {
			endpoint = "http://" + endpoint
		}
		parsedURL, err := url.Parse(endpoint)
		if err != nil {
			return err
		}
		parsedURL.Path = strings.TrimSuffix(parsedURL.Path, "/") + RPCPath
		serverURLs[i] = parsedURL.String()
	}

	// Create client with default transport
	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: max(10, config.ConnectionsPerEndpoint),
			IdleConnTimeout:     90 * time.Second,
		},
	}
	if config.TimeoutSecond > 0 {
		client.Timeout = time.Duration(config.TimeoutSecond) * time.Second
	}

	// Set the client and server URLs
	t.client = client
	t.serverURLs = serverURLs
	t.counter = 0
	t.retryCount = max(config.RetryCount, 1)

	return nil
}

func (t *httpClientTransport) Send(req []byte) (resp []byte, err error) {
	// Check if the transport is initialized
	if t.client == nil {
		return nil, fmt.Errorf("http transport not initialized")
	}

	// Select the next server via round-robin
	idx := atomic.AddUint32(&t.counter, 1) % uint32(len(t.serverURLs))
	serverURL := t.serverURLs[idx]

	// Send the request (with retries). Only failures to reach the server are retried.
	var httpResponse *http.Response
	for i := 0; i < t.retryCount; i++ {
		httpResponse, err = t.client.Post(serverURL, "application/octet-stream", bytes.NewReader(req))
		if err == nil {
			break
		}
		Logger.Debugf("Request attempt %d/%d to %s failed: %v", i+1, t.retryCount, serverURL, err)
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := httpResponse.Body.Close(); err != nil {
			Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	// Check if the response status code is OK
	if httpResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error: %s", httpResponse.Status)
	}

	// Read the response body
	return io.ReadAll(httpResponse.Body)
}

func (t *httpClientTransport) Close() error {
	// Close the client
	if t.client != nil {
		t.client.CloseIdleConnections()
	}

	// Reset the client and server URLs
	t.client = nil
	t.serverURLs = nil

	return nil
}
