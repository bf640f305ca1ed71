package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ValentinKolb/tStore/lib/snapshot"
	"github.com/ValentinKolb/tStore/lib/store"
	"github.com/ValentinKolb/tStore/lib/store/lstore"
	"github.com/ValentinKolb/tStore/lib/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, opts lstore.Options) *httptest.Server {
	t.Helper()
	s, err := lstore.NewLocalStore(opts)
	require.NoError(t, err)
	srv := httptest.NewServer(NewHandler(s))
	t.Cleanup(func() {
		srv.Close()
		_ = s.Close()
	})
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

const usersTable = `{"name":"users","columns":[{"name":"id","column_type":"Integer"},{"name":"name","column_type":"String"}]}`

func TestHealth(t *testing.T) {
	srv := newServer(t, lstore.Options{})
	for _, path := range []string{"/", "/health"} {
		status, body := do(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, status, path)
		assert.Equal(t, "ok", body["status"], path)
	}
}

func TestTableLifecycle(t *testing.T) {
	srv := newServer(t, lstore.Options{})

	status, body := do(t, srv, http.MethodPost, "/tables", usersTable)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "users", body["name"])
	assert.NotEmpty(t, body["id"])
	assert.EqualValues(t, 0, body["rows"])
	assert.Len(t, body["columns"], 2)

	status, body = do(t, srv, http.MethodGet, "/tables", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"users"}, body["tables"])

	status, body = do(t, srv, http.MethodPost, "/tables/users/rows", `{"row":{"id":1,"name":"ada","extra":[1,null]}}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "users", body["table"])
	assert.Equal(t, true, body["row_inserted"])
	assert.EqualValues(t, 1, body["rows_count"])

	status, body = do(t, srv, http.MethodGet, "/tables/users/rows", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])
	rows := body["rows"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]any{"id": float64(1), "name": "ada", "extra": []any{float64(1), nil}}, rows[0])

	status, body = do(t, srv, http.MethodGet, "/tables/users", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["rows"])

	status, body = do(t, srv, http.MethodGet, "/statistics", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["tables"])
	assert.Contains(t, body, "uptime_ms")

	status, body = do(t, srv, http.MethodDelete, "/tables/users", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["deleted"])
	assert.Equal(t, "users", body["table"])

	status, body = do(t, srv, http.MethodGet, "/tables", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["tables"])
}

func TestEmptyRowsList(t *testing.T) {
	srv := newServer(t, lstore.Options{})
	status, _ := do(t, srv, http.MethodPost, "/tables", usersTable)
	require.Equal(t, http.StatusCreated, status)

	status, body := do(t, srv, http.MethodGet, "/tables/users/rows", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["rows"])
	assert.EqualValues(t, 0, body["count"])
}

func TestErrorStatus(t *testing.T) {
	srv := newServer(t, lstore.Options{})
	status, _ := do(t, srv, http.MethodPost, "/tables", usersTable)
	require.Equal(t, http.StatusCreated, status)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"duplicate table", http.MethodPost, "/tables", usersTable, http.StatusConflict},
		{"unknown table", http.MethodGet, "/tables/nope", "", http.StatusNotFound},
		{"unknown table rows", http.MethodGet, "/tables/nope/rows", "", http.StatusNotFound},
		{"insert into unknown table", http.MethodPost, "/tables/nope/rows", `{"row":{}}`, http.StatusNotFound},
		{"delete unknown table", http.MethodDelete, "/tables/nope", "", http.StatusNotFound},
		{"missing column", http.MethodPost, "/tables/users/rows", `{"row":{"id":1}}`, http.StatusBadRequest},
		{"type mismatch", http.MethodPost, "/tables/users/rows", `{"row":{"id":1.0,"name":"x"}}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/tables", `{"name":`, http.StatusBadRequest},
		{"missing row", http.MethodPost, "/tables/users/rows", `{}`, http.StatusBadRequest},
		{"missing columns", http.MethodPost, "/tables", `{"name":"x"}`, http.StatusBadRequest},
		{"unknown column kind", http.MethodPost, "/tables", `{"name":"x","columns":[{"name":"a","column_type":"Date"}]}`, http.StatusBadRequest},
		{"empty name", http.MethodPost, "/tables", `{"name":"","columns":[]}`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := do(t, srv, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestErrorMessages(t *testing.T) {
	srv := newServer(t, lstore.Options{})
	do(t, srv, http.MethodPost, "/tables", usersTable)

	_, body := do(t, srv, http.MethodPost, "/tables/users/rows", `{"row":{"id":1}}`)
	assert.Contains(t, body["error"], "name")

	_, body = do(t, srv, http.MethodGet, "/tables/nope", "")
	assert.Contains(t, body["error"], "nope")
}

// failingSnapshotter fails every save
type failingSnapshotter struct{}

func (failingSnapshotter) Load() (map[string]*table.Table, error) { return nil, nil }
func (failingSnapshotter) Save(map[string]*table.Table) error {
	return errors.Join(snapshot.ErrWrite, errors.New("disk full"))
}
func (failingSnapshotter) Quarantine() (string, error) { return "", nil }
func (failingSnapshotter) Stats() snapshot.Stats       { return snapshot.Stats{} }

func TestPersistenceFailure(t *testing.T) {
	srv := newServer(t, lstore.Options{Snapshotter: failingSnapshotter{}})

	status, body := do(t, srv, http.MethodPost, "/tables", usersTable)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotEmpty(t, body["error"])

	// the failed create was rolled back
	status, _ = do(t, srv, http.MethodGet, "/tables/users", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusOf(nil))
	assert.Equal(t, http.StatusConflict, StatusOf(store.ErrTableExists))
	assert.Equal(t, http.StatusNotFound, StatusOf(store.ErrTableNotFound))
	assert.Equal(t, http.StatusBadRequest, StatusOf(store.ErrMissingColumn))
	assert.Equal(t, http.StatusBadRequest, StatusOf(store.ErrTypeMismatch))
	assert.Equal(t, http.StatusBadRequest, StatusOf(store.ErrInvalidArgument))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(store.ErrWriteFailed))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(store.ErrSerializationFailed))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(store.ErrLockUnusable))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
}
