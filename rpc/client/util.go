package client

import (
	"fmt"

	"github.com/ValentinKolb/tStore/lib/store"
	"github.com/ValentinKolb/tStore/rpc/common"
	"github.com/ValentinKolb/tStore/rpc/serializer"
	"github.com/ValentinKolb/tStore/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
// Used by the RPCStore with composition pattern
type rpcClientAdapter struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invoke sends a request with the transport and serializer of the adapter
func (a *rpcClientAdapter) invoke(req *common.Message) (*common.Message, error) {
	return invokeRPCRequest(req, a.transport, a.serializer)
}

// invokeRPCRequest is a helper function used for all RPC Clients to send requests
// It takes a request message, a transport layer and a serializer as parameters
// It returns a response message and an error if any occurs
// This method also checks if the response is an error response and if the type of the response is the expected type
func invokeRPCRequest(req *common.Message, transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer) (*common.Message, error) {
	// Serialize the request
	reqBytes, err := serializer.Serialize(*req)
	if err != nil {
		return nil, store.WrapError(store.RetCInvalidArgument, fmt.Errorf("could not serialize %s request: %w", req.MsgType, err))
	}

	// Send the request
	respBytes, err := transport.Send(reqBytes)
	if err != nil {
		Logger.Debugf("%s request failed: %v", req.MsgType, err)
		return nil, store.WrapError(store.RetCInternalError, fmt.Errorf("RPC TableStoreAdapter - transport error: %w", err))
	}

	// Deserialize the response
	resp := &common.Message{}
	err = serializer.Deserialize(respBytes, resp)
	if err != nil {
		return nil, store.WrapError(store.RetCInternalError, fmt.Errorf("RPC TableStoreAdapter - invalid response: %w", err))
	}

	// Check if the response is an error response
	if err := resp.ToError(); err != nil {
		return nil, err
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != req.MsgType {
		return nil, store.NewError(store.RetCInternalError,
			fmt.Sprintf("RPC TableStoreAdapter - Unexpected message type: %s, expected %s", resp.MsgType, req.MsgType))
	}

	return resp, nil
}
