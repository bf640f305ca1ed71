// Package snapshot persists the full state of a table store as one document.
//
// Every mutation of the store triggers a complete rewrite: the whole table map is
// encoded by an ICodec and written by an ISnapshotter. There is no log and no
// incremental format.
//
// Codecs:
//
//   - json (default): indented, human readable document {"version", "tables"}
//   - yaml: the same document as YAML with explicit number tags
//   - gob: encoding/gob, row values in the binary form of the table package
//   - binary: "TSTORE\x00" magic, a version byte, then varint encoded tables
//
// FileSnapshotter writes <path>.tmp, syncs it and renames it over <path>. Readers of
// the file therefore see either the previous or the new snapshot, never a mix.
// Encoding failures wrap ErrSerialization, storage failures wrap ErrWrite.
//
// Save durations, snapshot sizes and failures are recorded in a go-metrics registry
// and summarized by Stats.
package snapshot
