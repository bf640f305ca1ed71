package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/ValentinKolb/tStore/lib/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToError(t *testing.T) {
	assert.NoError(t, NewListTablesResponse([]string{"a"}, nil).ToError())

	err := NewGetTableRequest("x").setError(store.NewError(store.RetCTableNotFound, "table 'x' not found")).ToError()
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrTableNotFound)
	assert.Contains(t, err.Error(), "table 'x' not found")

	// plain errors become internal errors
	err = NewStatsRequest().setError(fmt.Errorf("boom")).ToError()
	assert.ErrorIs(t, err, store.ErrInternal)

	// an error message without a code is never a success
	err = (&Message{MsgType: MsgTError}).ToError()
	assert.ErrorIs(t, err, store.ErrInternal)
}

func TestMessageTypeJSON(t *testing.T) {
	b, err := json.Marshal(NewDeleteTableRequest("users"))
	require.NoError(t, err)

	var m Message
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, MsgTDeleteTable, m.MsgType)
	assert.Equal(t, "users", m.Table)

	assert.Error(t, json.Unmarshal([]byte(`{"msg_type":"noSuchType"}`), &m))
	assert.True(t, errors.Is(NewErrorResponse("x").ToError(), store.ErrInternal))
}
