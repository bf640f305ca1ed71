package server

import (
	"fmt"

	"github.com/ValentinKolb/tStore/lib/store"
	"github.com/ValentinKolb/tStore/rpc/common"
)

func NewTableStoreServerAdapter() IRPCServerAdapter {
	return &tableStoreServerAdapterImpl{}
}

type tableStoreServerAdapterImpl struct{}

func (adapter *tableStoreServerAdapterImpl) Handle(req *common.Message, s store.ITableStore) *common.Message {
	// Check for nil store
	if s == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTCreateTable:
		info, err := s.CreateTable(req.Table, req.Columns)
		return common.NewCreateTableResponse(info, err)
	case common.MsgTListTables:
		names, err := s.ListTables()
		return common.NewListTablesResponse(names, err)
	case common.MsgTGetTable:
		info, err := s.GetTable(req.Table)
		return common.NewGetTableResponse(info, err)
	case common.MsgTInsertRow:
		count, err := s.InsertRow(req.Table, req.Row)
		return common.NewInsertRowResponse(count, err)
	case common.MsgTListRows:
		rows, err := s.ListRows(req.Table)
		return common.NewListRowsResponse(rows, err)
	case common.MsgTDeleteTable:
		ok, err := s.DeleteTable(req.Table)
		return common.NewDeleteTableResponse(ok, err)
	case common.MsgTStats:
		stats, err := s.Stats()
		return common.NewStatsResponse(stats, err)
	default:
		resp := common.NewErrorResponse(
			fmt.Sprintf("RPC TableStoreAdapter - Unsupported message type: %s", req.MsgType),
		)
		resp.Code = store.RetCInvalidArgument
		return resp
	}
}
