package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ValentinKolb/tStore/rpc/common"
	"github.com/ValentinKolb/tStore/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/rpc")

const (
	// RPCPath is the route serialized rpc messages are posted to
	RPCPath = "/rpc"
	// MetricsPath is the route of the Prometheus metrics endpoint
	MetricsPath = "/metrics"
	// maxBodySize limits the size of a request body
	maxBodySize = 64 << 20
)

// RouteRegistrar mounts additional routes (e.g. the REST api) on the server mux
type RouteRegistrar func(mux *http.ServeMux)

// NewHttpServerTransport creates an HTTP server transport. Besides the rpc route and
// the metrics endpoint it serves every route added by the given registrars.
func NewHttpServerTransport(routes ...RouteRegistrar) transport.IRPCServerTransport {
	return &httpServerTransport{routes: routes}
}

type httpServerTransport struct {
	handler transport.ServerHandleFunc
	config  common.ServerConfig
	routes  []RouteRegistrar

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	closed   bool
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *httpServerTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *httpServerTransport) Listen(config common.ServerConfig) error {
	t.config = config

	server := &http.Server{
		Handler:           t.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if config.TimeoutSecond > 0 {
		server.WriteTimeout = time.Duration(config.TimeoutSecond) * time.Second
	}

	listener, err := net.Listen("tcp", config.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %v", config.Endpoint, err)
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		_ = listener.Close()
		return nil
	}
	t.server = server
	t.listener = listener
	t.mu.Unlock()

	Logger.Infof("Starting HTTP server on %s", listener.Addr())

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (t *httpServerTransport) Addr() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.listener == nil {
		return ""
	}
	return t.listener.Addr().String()
}

func (t *httpServerTransport) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	t.closed = true
	server := t.server
	t.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// --------------------------------------------------------------------------
// Routes
// --------------------------------------------------------------------------

// Handler builds the mux of the transport. It is exported so the routes can be
// served by an existing http server or an httptest server.
func (t *httpServerTransport) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST "+RPCPath, t.handleRequest)
	mux.HandleFunc("GET "+MetricsPath, func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})
	for _, register := range t.routes {
		register(mux)
	}

	if t.config.LogLevel == "debug" {
		return loggerMiddleware(mux)
	}
	return mux
}

// handleRequest handles incoming HTTP requests and writes the response to the writer
func (t *httpServerTransport) handleRequest(w http.ResponseWriter, r *http.Request) {
	if t.handler == nil {
		http.Error(w, "No handler registered", http.StatusServiceUnavailable)
		return
	}

	// Read request body
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	defer r.Body.Close()

	// Check if body could be read
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	// Pass the request to the handler
	resp := t.handler(body)

	// Write response
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err = w.Write(resp); err != nil {
		Logger.Errorf("Failed to write response: %v", err)
	}
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// responseWriter is a custom ResponseWriter that captures status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware is a middleware that logs HTTP requests
func loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create custom response writer to capture status code
		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		// Process request
		next.ServeHTTP(rw, r)

		// Log the request
		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}
