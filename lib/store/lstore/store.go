package lstore

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/ValentinKolb/tStore/lib/snapshot"
	"github.com/ValentinKolb/tStore/lib/store"
	"github.com/ValentinKolb/tStore/lib/table"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("store")

// Options configure a LocalStore
type Options struct {
	// Snapshotter persists the tables after every mutation. nil keeps the store in memory only.
	Snapshotter snapshot.ISnapshotter
	// StrictLoad makes NewLocalStore fail if an existing snapshot cannot be loaded.
	// Otherwise the snapshot is moved aside and the store starts empty.
	StrictLoad bool
}

// LocalStore is the in-memory table store. All tables live in one map guarded by a
// single RWMutex: reads share the lock, mutations hold it exclusively for validation,
// the change itself and the snapshot write.
type LocalStore struct {
	mu        sync.RWMutex
	tables    map[string]*table.Table
	startedAt time.Time
	snap      snapshot.ISnapshotter

	// poisoned is set when a mutation panicked while holding the write lock
	poisoned atomic.Bool
	closed   atomic.Bool
}

// NewLocalStore creates a store and hydrates it from the snapshotter (if any).
func NewLocalStore(opts Options) (*LocalStore, error) {
	s := &LocalStore{
		tables:    make(map[string]*table.Table),
		startedAt: time.Now(),
		snap:      opts.Snapshotter,
	}

	if s.snap == nil {
		log.Infof("no snapshotter configured, tables are kept in memory only")
		return s, nil
	}

	tables, err := s.snap.Load()
	if err != nil {
		if opts.StrictLoad {
			return nil, fmt.Errorf("could not load snapshot: %w", err)
		}
		log.Errorf("could not load snapshot, starting with an empty store: %v", err)
		if _, qErr := s.snap.Quarantine(); qErr != nil {
			log.Errorf("the next save will overwrite the unreadable snapshot: %v", qErr)
		}
		tables = nil
	}

	for name, t := range tables {
		s.tables[name] = t
	}
	log.Infof("store ready with %d tables", len(s.tables))
	return s, nil
}

// Close makes all following calls fail with RetCLockUnusable. It waits for running operations.
func (s *LocalStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed.Store(true)
	return nil
}

// --------------------------------------------------------------------------
// Critical sections
// --------------------------------------------------------------------------

// usable returns an error if the store must not be used any more
func (s *LocalStore) usable() error {
	if s.closed.Load() {
		return store.NewError(store.RetCLockUnusable, "store is closed")
	}
	if s.poisoned.Load() {
		return store.NewError(store.RetCLockUnusable, "store state is inconsistent after an earlier failure")
	}
	return nil
}

// mutate runs fn under the write lock. fn applies a change and returns a function that
// reverts it. If the snapshot cannot be written the change is reverted before the lock
// is released, so no reader ever observes it.
func (s *LocalStore) mutate(op string, fn func() (undo func(), err error)) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.usable(); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			s.poisoned.Store(true)
			log.Errorf("%s panicked, the store is no longer usable: %v", op, r)
			err = store.NewError(store.RetCLockUnusable, fmt.Sprintf("%s panicked: %v", op, r))
		}
	}()

	undo, err := fn()
	if err != nil {
		return err
	}

	if err := s.persist(); err != nil {
		undo()
		log.Warningf("%s reverted: %v", op, err)
		return err
	}
	return nil
}

// read runs fn under the read lock
func (s *LocalStore) read(op string, fn func() error) (err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.usable(); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("%s panicked: %v", op, r)
			err = store.NewError(store.RetCInternalError, fmt.Sprintf("%s panicked: %v", op, r))
		}
	}()

	return fn()
}

// persist writes the snapshot. The caller must hold the write lock.
func (s *LocalStore) persist() error {
	if s.snap == nil {
		return nil
	}
	err := s.snap.Save(s.tables)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, snapshot.ErrSerialization):
		return store.WrapError(store.RetCSerializationFailed, err)
	default:
		return store.WrapError(store.RetCWriteFailed, err)
	}
}

// lookup returns the table or a RetCTableNotFound error. The caller must hold the lock.
func (s *LocalStore) lookup(name string) (*table.Table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, store.NewError(store.RetCTableNotFound, fmt.Sprintf("table '%s' not found", name))
	}
	return t, nil
}

// validationError converts a row validation failure into a store error
func validationError(err error) error {
	switch {
	case errors.Is(err, table.ErrMissingColumn):
		return store.WrapError(store.RetCMissingColumn, err)
	case errors.Is(err, table.ErrTypeMismatch):
		return store.WrapError(store.RetCTypeMismatch, err)
	default:
		return store.WrapError(store.RetCInternalError, err)
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *LocalStore) CreateTable(name string, columns []table.Column) (table.Info, error) {
	if name == "" {
		return table.Info{}, store.NewError(store.RetCInvalidArgument, "table name must not be empty")
	}
	if !utf8.ValidString(name) {
		return table.Info{}, store.NewError(store.RetCInvalidArgument, "table name is not valid UTF-8")
	}
	if err := table.Schema(columns).Check(); err != nil {
		return table.Info{}, store.WrapError(store.RetCInvalidArgument, err)
	}

	var info table.Info
	err := s.mutate("create table", func() (func(), error) {
		if _, exists := s.tables[name]; exists {
			return nil, store.NewError(store.RetCTableExists, fmt.Sprintf("table '%s' already exists", name))
		}
		t := table.New(name, columns)
		s.tables[name] = t
		info = t.Info()
		return func() { delete(s.tables, name) }, nil
	})
	if err != nil {
		return table.Info{}, err
	}

	log.Infof("created table '%s' (%s) with %d columns", name, info.ID, len(info.Columns))
	return info, nil
}

func (s *LocalStore) ListTables() ([]string, error) {
	var names []string
	err := s.read("list tables", func() error {
		names = make([]string, 0, len(s.tables))
		for name := range s.tables {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (s *LocalStore) GetTable(name string) (table.Info, error) {
	var info table.Info
	err := s.read("get table", func() error {
		t, err := s.lookup(name)
		if err != nil {
			return err
		}
		info = t.Info()
		return nil
	})
	return info, err
}

func (s *LocalStore) InsertRow(name string, row table.Row) (int, error) {
	if row == nil {
		row = table.Row{}
	}

	var count int
	err := s.mutate("insert row", func() (func(), error) {
		t, err := s.lookup(name)
		if err != nil {
			return nil, err
		}
		if err := row.CheckEncoding(); err != nil {
			return nil, store.WrapError(store.RetCInvalidArgument, err)
		}
		before := len(t.Rows)
		if err := t.Append(row.Clone()); err != nil {
			return nil, validationError(err)
		}
		count = len(t.Rows)
		return func() { t.Truncate(before) }, nil
	})
	if err != nil {
		return 0, err
	}

	log.Debugf("inserted row into '%s' (%d rows)", name, count)
	return count, nil
}

func (s *LocalStore) ListRows(name string) ([]table.Row, error) {
	var rows []table.Row
	err := s.read("list rows", func() error {
		t, err := s.lookup(name)
		if err != nil {
			return err
		}
		rows = t.CloneRows()
		return nil
	})
	return rows, err
}

func (s *LocalStore) DeleteTable(name string) (bool, error) {
	err := s.mutate("delete table", func() (func(), error) {
		t, err := s.lookup(name)
		if err != nil {
			return nil, err
		}
		delete(s.tables, name)
		return func() { s.tables[name] = t }, nil
	})
	if err != nil {
		return false, err
	}

	log.Infof("deleted table '%s'", name)
	return true, nil
}

func (s *LocalStore) Stats() (store.Stats, error) {
	var stats store.Stats
	err := s.read("stats", func() error {
		stats.Tables = len(s.tables)
		for _, t := range s.tables {
			stats.Rows += len(t.Rows)
		}
		return nil
	})
	if err != nil {
		return store.Stats{}, err
	}

	stats.Uptime = time.Since(s.startedAt)
	if s.snap != nil {
		snapStats := s.snap.Stats()
		stats.Snapshot = &snapStats
	}
	return stats, nil
}
