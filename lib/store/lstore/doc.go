// Package lstore implements the local, single-process table store based on the
// store.ITableStore interface. Tables are kept in memory and, if a snapshotter is
// configured, the complete table map is persisted after every mutation.
//
// Key Features:
//   - One sync.RWMutex over the whole table map
//   - Full snapshot written synchronously inside the write lock
//   - Rollback of the in-memory change when the snapshot cannot be written
//   - Configurable behaviour for unreadable snapshots on startup
//
// Implementation Details:
//
//   - Locking: ListTables, GetTable, ListRows and Stats share the read lock.
//     CreateTable, InsertRow and DeleteTable hold the write lock for validation,
//     the change and the snapshot write. Operations are never cancelled.
//
//   - Persistence Failures: a mutation is applied in memory, then saved. If the save
//     fails the change is reverted before the lock is released and the caller gets
//     RetCSerializationFailed or RetCWriteFailed. Readers never observe a change whose
//     operation failed, and no later snapshot contains it.
//
//   - Poisoning: a panic inside a write critical section is recovered and marks the
//     store as unusable. This and every later call returns RetCLockUnusable. Close has
//     the same effect for orderly shutdowns.
//
//   - Loading: a missing snapshot starts an empty store. An unreadable snapshot either
//     fails NewLocalStore (Options.StrictLoad) or is logged, moved to
//     <path>.corrupt-<unix> and replaced by an empty store.
//
// Usage Example:
//
//	codec, _ := snapshot.NewCodec("json")
//	s, err := lstore.NewLocalStore(lstore.Options{
//		Snapshotter: snapshot.NewFileSnapshotter("tstore.db.json", codec),
//	})
//
//	info, err := s.CreateTable("users", []table.Column{
//		{Name: "name", Kind: table.ColumnKindString},
//		{Name: "age", Kind: table.ColumnKindInteger},
//	})
//	count, err := s.InsertRow("users", table.Row{
//		"name": table.StringValue("alice"),
//		"age":  table.IntValue(30),
//	})
package lstore
