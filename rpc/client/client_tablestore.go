package client

import (
	"github.com/ValentinKolb/tStore/lib/store"
	"github.com/ValentinKolb/tStore/lib/table"
	"github.com/ValentinKolb/tStore/rpc/common"
	"github.com/ValentinKolb/tStore/rpc/serializer"
	"github.com/ValentinKolb/tStore/rpc/transport"
)

// NewRPCStore creates a new RPC store
// The function takes a config, a transport and a serializer as parameters
// It returns a store.ITableStore that forwards every call to the server
func NewRPCStore(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*RPCStore, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	return &RPCStore{
		rpcClientAdapter{
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

// RPCStore implements store.ITableStore over RPC. Errors of the server arrive as *store.Error
// with their original return code, transport failures are wrapped with RetCInternalError.
type RPCStore struct {
	rpcClientAdapter
}

var _ store.ITableStore = (*RPCStore)(nil)

// Close closes the underlying transport
func (i *RPCStore) Close() error {
	return i.transport.Close()
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (i *RPCStore) CreateTable(name string, columns []table.Column) (info table.Info, err error) {
	req := common.NewCreateTableRequest(name, columns)
	resp, err := i.invoke(req)
	if err != nil {
		return table.Info{}, err
	}
	return infoOf(resp), nil
}

func (i *RPCStore) ListTables() (names []string, err error) {
	req := common.NewListTablesRequest()
	resp, err := i.invoke(req)
	if err != nil {
		return nil, err
	}
	if resp.Names == nil {
		return []string{}, nil
	}
	return resp.Names, nil
}

func (i *RPCStore) GetTable(name string) (info table.Info, err error) {
	req := common.NewGetTableRequest(name)
	resp, err := i.invoke(req)
	if err != nil {
		return table.Info{}, err
	}
	return infoOf(resp), nil
}

func (i *RPCStore) InsertRow(name string, row table.Row) (count int, err error) {
	req := common.NewInsertRowRequest(name, row)
	resp, err := i.invoke(req)
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (i *RPCStore) ListRows(name string) (rows []table.Row, err error) {
	req := common.NewListRowsRequest(name)
	resp, err := i.invoke(req)
	if err != nil {
		return nil, err
	}
	if resp.Rows == nil {
		return []table.Row{}, nil
	}
	// rows without any key may arrive as nil
	for j, r := range resp.Rows {
		if r == nil {
			resp.Rows[j] = table.Row{}
		}
	}
	return resp.Rows, nil
}

func (i *RPCStore) DeleteTable(name string) (deleted bool, err error) {
	req := common.NewDeleteTableRequest(name)
	resp, err := i.invoke(req)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *RPCStore) Stats() (stats store.Stats, err error) {
	req := common.NewStatsRequest()
	resp, err := i.invoke(req)
	if err != nil {
		return store.Stats{}, err
	}
	if resp.Stats == nil {
		return store.Stats{}, store.NewError(store.RetCInternalError, "stats response without stats")
	}
	return *resp.Stats, nil
}

// infoOf returns the table info of a response with a non-nil column list
func infoOf(resp *common.Message) table.Info {
	if resp.Info == nil {
		return table.Info{Columns: []table.Column{}}
	}
	info := *resp.Info
	if info.Columns == nil {
		info.Columns = []table.Column{}
	}
	return info
}
