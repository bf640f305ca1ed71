package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ValentinKolb/tStore/lib/snapshot"
	"github.com/ValentinKolb/tStore/lib/store"
	"github.com/ValentinKolb/tStore/lib/table"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rest")

// maxBodySize limits the size of a request body
const maxBodySize = 64 << 20

// Handler serves the REST api of a table store
type Handler struct {
	store store.ITableStore
	mux   *http.ServeMux
}

// NewHandler creates a REST handler for the given store
func NewHandler(s store.ITableStore) *Handler {
	h := &Handler{store: s, mux: http.NewServeMux()}
	h.Register(h.mux)
	return h
}

// Register mounts all routes on the mux. It matches http.RouteRegistrar.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.health)
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /statistics", h.statistics)
	mux.HandleFunc("GET /tables", h.listTables)
	mux.HandleFunc("POST /tables", h.createTable)
	mux.HandleFunc("GET /tables/{name}", h.getTable)
	mux.HandleFunc("DELETE /tables/{name}", h.deleteTable)
	mux.HandleFunc("POST /tables/{name}/rows", h.insertRow)
	mux.HandleFunc("GET /tables/{name}/rows", h.listRows)
}

// ServeHTTP serves the routes of Register on a mux of its own
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --------------------------------------------------------------------------
// Request & Response Bodies
// --------------------------------------------------------------------------

type createTableRequest struct {
	Name    string         `json:"name"`
	Columns []table.Column `json:"columns"`
}

type insertRowRequest struct {
	Row table.Row `json:"row"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type statsResponse struct {
	Tables   int             `json:"tables"`
	Rows     int             `json:"rows"`
	UptimeMs int64           `json:"uptime_ms"`
	Snapshot *snapshot.Stats `json:"snapshot,omitempty"`
}

type tableListResponse struct {
	Tables []string `json:"tables"`
}

type rowInsertResponse struct {
	Table       string `json:"table"`
	RowInserted bool   `json:"row_inserted"`
	RowsCount   int    `json:"rows_count"`
}

type rowsResponse struct {
	Table string      `json:"table"`
	Rows  []table.Row `json:"rows"`
	Count int         `json:"count"`
}

type deleteResponse struct {
	Deleted bool   `json:"deleted"`
	Table   string `json:"table"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// --------------------------------------------------------------------------
// Handlers
// --------------------------------------------------------------------------

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *Handler) statistics(w http.ResponseWriter, _ *http.Request) {
	stats, err := h.store.Stats()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Tables:   stats.Tables,
		Rows:     stats.Rows,
		UptimeMs: stats.Uptime.Milliseconds(),
		Snapshot: stats.Snapshot,
	})
}

func (h *Handler) listTables(w http.ResponseWriter, _ *http.Request) {
	names, err := h.store.ListTables()
	if err != nil {
		writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, tableListResponse{Tables: names})
}

func (h *Handler) createTable(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Columns == nil {
		writeError(w, badRequest("missing field 'columns'"))
		return
	}

	info, err := h.store.CreateTable(req.Name, req.Columns)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (h *Handler) getTable(w http.ResponseWriter, r *http.Request) {
	info, err := h.store.GetTable(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) deleteTable(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	deleted, err := h.store.DeleteTable(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted, Table: name})
}

func (h *Handler) insertRow(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req insertRowRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Row == nil {
		writeError(w, badRequest("missing field 'row'"))
		return
	}

	count, err := h.store.InsertRow(name, req.Row)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rowInsertResponse{Table: name, RowInserted: true, RowsCount: count})
}

func (h *Handler) listRows(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	rows, err := h.store.ListRows(name)
	if err != nil {
		writeError(w, err)
		return
	}
	if rows == nil {
		rows = []table.Row{}
	}
	writeJSON(w, http.StatusOK, rowsResponse{Table: name, Rows: rows, Count: len(rows)})
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// badRequest creates an error that is answered with 400
func badRequest(msg string) error {
	return store.NewError(store.RetCInvalidArgument, msg)
}

// decodeBody reads a JSON body. Unknown fields are ignored.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return badRequest(fmt.Sprintf("could not read request body: %v", err))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return badRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// StatusOf maps a store error to the HTTP status code of the response
func StatusOf(err error) int {
	switch store.CodeOf(err) {
	case store.RetCSuccess:
		return http.StatusOK
	case store.RetCTableExists:
		return http.StatusConflict
	case store.RetCTableNotFound:
		return http.StatusNotFound
	case store.RetCMissingColumn, store.RetCTypeMismatch, store.RetCInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes {"error": msg} with the status of the error
func writeError(w http.ResponseWriter, err error) {
	status := StatusOf(err)

	msg := err.Error()
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		msg = storeErr.Msg
	}

	if status >= http.StatusInternalServerError {
		Logger.Errorf("request failed: %v", err)
	} else {
		Logger.Debugf("request rejected: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		Logger.Errorf("failed to encode response: %v", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		Logger.Debugf("failed to write response: %v", err)
	}
}
