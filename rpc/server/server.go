package server

import (
	"context"
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ValentinKolb/tStore/lib/snapshot"
	"github.com/ValentinKolb/tStore/lib/store"
	"github.com/ValentinKolb/tStore/lib/store/lstore"
	"github.com/ValentinKolb/tStore/rpc/common"
	"github.com/ValentinKolb/tStore/rpc/serializer"
	"github.com/ValentinKolb/tStore/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc")

// OpenStore creates the local store described by the config.
// Without a snapshot path the store is kept in memory only.
func OpenStore(config common.ServerConfig) (*lstore.LocalStore, error) {
	opts := lstore.Options{StrictLoad: config.StrictLoad}

	if config.Persistent() {
		codec, err := snapshot.NewCodec(config.SnapshotFormat)
		if err != nil {
			return nil, err
		}
		opts.Snapshotter = snapshot.NewFileSnapshotter(config.SnapshotPath, codec)
	}

	return lstore.NewLocalStore(opts)
}

// NewRPCServer creates a new RPC server
// It takes a config, transport, serializer and the store to serve as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewJSONSerializer(),
//		tableStore,
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
	store store.ITableStore,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof("%s", config.String())

	return &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		store:      store,
		adapter:    NewTableStoreServerAdapter(),
	}
}

// RPCServer connects a transport and a serializer to a table store
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	store      store.ITableStore
	adapter    IRPCServerAdapter
}

// Handle decodes a request, executes it against the store and returns the encoded response.
// It never fails: every problem is reported as an error message.
func (s *RPCServer) Handle(req []byte) []byte {
	start := time.Now()

	var msg common.Message
	var respMsg *common.Message

	// Decode the request
	if err := s.serializer.Deserialize(req, &msg); err != nil {
		observeDecodeFailure()
		respMsg = common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
		respMsg.Code = store.RetCInvalidArgument
	} else {
		// Let the adapter handle the request
		respMsg = s.adapter.Handle(&msg, s.store)
		observeRequest(msg.MsgType, respMsg.Code, start)
	}

	// Return result
	val, err := s.serializer.Serialize(*respMsg)
	if err != nil {
		Logger.Errorf("failed to serialize %s response: %v", respMsg.MsgType, err)
		val, err = s.serializer.Serialize(*common.NewErrorResponse(
			fmt.Sprintf("failed to serialize response: %s", err),
		))
		if err != nil {
			return nil
		}
	}
	return val
}

// Serve registers the request handler and starts the transport layer.
// It blocks until the transport is shut down.
func (s *RPCServer) Serve() error {
	if s.store == nil {
		return fmt.Errorf("no store to serve")
	}
	registerStoreGauges(s.store)

	s.transport.RegisterHandler(s.Handle)

	Logger.Infof("tStore setup completed successfully")
	return s.transport.Listen(s.config)
}

// Addr returns the address of the transport, "" until it listens
func (s *RPCServer) Addr() string {
	return s.transport.Addr()
}

// Shutdown stops the transport and waits for running requests until ctx is done.
// The store is not closed.
func (s *RPCServer) Shutdown(ctx context.Context) error {
	return s.transport.Shutdown(ctx)
}
