// Package rest serves a table store as a JSON REST api. It is mounted next to the
// rpc route of the http transport.
//
// Routes:
//
//	GET    /, /health               {"status":"ok"}
//	GET    /statistics              {"tables","rows","uptime_ms","snapshot"}
//	GET    /tables                  {"tables":[names]}
//	POST   /tables                  {"name","columns"} -> 201 + table info
//	GET    /tables/{name}           table info
//	DELETE /tables/{name}           {"deleted":true,"table":name}
//	POST   /tables/{name}/rows      {"row":{...}} -> {"table","row_inserted","rows_count"}
//	GET    /tables/{name}/rows      {"table","rows","count"}
//
// Errors are answered as {"error": msg}. The status follows the store return code:
// TableExists 409, TableNotFound 404, MissingColumn, TypeMismatch and invalid input 400,
// everything else 500.
package rest
