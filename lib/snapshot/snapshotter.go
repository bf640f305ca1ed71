package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ValentinKolb/tStore/lib/table"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/rcrowley/go-metrics"
)

var log = logger.GetLogger("snapshot")

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrSerialization is returned when the codec fails to encode the tables
	ErrSerialization = errors.New("snapshot serialization failed")
	// ErrWrite is returned when the snapshot could not be written to storage
	ErrWrite = errors.New("snapshot write failed")
	// ErrRead is returned when an existing snapshot file could not be read
	ErrRead = errors.New("snapshot read failed")
	// ErrCorrupt is returned when an existing snapshot file could not be decoded
	ErrCorrupt = errors.New("snapshot corrupt")
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ISnapshotter persists the complete table map. Every Save replaces the previous
// snapshot as a whole.
type ISnapshotter interface {
	// Load returns the tables of the last snapshot. It returns (nil, nil) if there is none.
	Load() (map[string]*table.Table, error)
	// Save writes all tables. On error the previous snapshot is left untouched.
	Save(tables map[string]*table.Table) error
	// Quarantine moves an unreadable snapshot aside so a later Save cannot overwrite it.
	// It returns the new location.
	Quarantine() (string, error)
	// Stats reports counters and timings of past saves
	Stats() Stats
}

// Stats describes the snapshot activity of a process
type Stats struct {
	Path          string    `json:"path"`
	Format        string    `json:"format"`
	Saves         int64     `json:"saves"`
	Failures      int64     `json:"failures"`
	LastSizeBytes int64     `json:"last_size_bytes"`
	LastSaveAt    time.Time `json:"last_save_at"`
	MeanSaveMs    float64   `json:"mean_save_ms"`
	P99SaveMs     float64   `json:"p99_save_ms"`
	MaxSaveMs     float64   `json:"max_save_ms"`
	MeanSizeBytes float64   `json:"mean_size_bytes"`
}

// --------------------------------------------------------------------------
// File Snapshotter
// --------------------------------------------------------------------------

// FileSnapshotter keeps the snapshot in a single file. A save writes <path>.tmp,
// syncs it and renames it over <path>, so the file always holds a complete document.
//
// Thread-safety: Save must not be called concurrently. The store calls it under its write lock.
type FileSnapshotter struct {
	path  string
	codec ICodec

	registry metrics.Registry
	saveTime metrics.Timer
	sizes    metrics.Histogram
	failures metrics.Counter
	lastSize metrics.Gauge
	lastSave metrics.Gauge
}

// NewFileSnapshotter creates a snapshotter for the given path and codec
func NewFileSnapshotter(path string, codec ICodec) *FileSnapshotter {
	r := metrics.NewRegistry()
	return &FileSnapshotter{
		path:     path,
		codec:    codec,
		registry: r,
		saveTime: metrics.GetOrRegisterTimer("snapshot.save", r),
		sizes:    metrics.GetOrRegisterHistogram("snapshot.size", r, metrics.NewExpDecaySample(1028, 0.015)),
		failures: metrics.GetOrRegisterCounter("snapshot.failures", r),
		lastSize: metrics.GetOrRegisterGauge("snapshot.last_size", r),
		lastSave: metrics.GetOrRegisterGauge("snapshot.last_save", r),
	}
}

// Path returns the location of the snapshot file
func (s *FileSnapshotter) Path() string { return s.path }

// Registry exposes the metrics of the snapshotter
func (s *FileSnapshotter) Registry() metrics.Registry { return s.registry }

func (s *FileSnapshotter) Load() (map[string]*table.Table, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		log.Infof("no snapshot found at %s, starting empty", s.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	tables, err := s.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%s): %w", ErrCorrupt, s.path, s.codec.Name(), err)
	}

	log.Infof("loaded %d tables from %s (%d bytes)", len(tables), s.path, len(data))
	return tables, nil
}

func (s *FileSnapshotter) Save(tables map[string]*table.Table) (err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			s.failures.Inc(1)
			log.Errorf("saving snapshot to %s failed: %v", s.path, err)
		}
	}()

	data, err := s.codec.Encode(tables)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}

	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	s.saveTime.UpdateSince(start)
	s.sizes.Update(int64(len(data)))
	s.lastSize.Update(int64(len(data)))
	s.lastSave.Update(time.Now().UnixMilli())
	log.Debugf("saved %d tables to %s (%d bytes, %s)", len(tables), s.path, len(data), time.Since(start))
	return nil
}

func (s *FileSnapshotter) Quarantine() (string, error) {
	target := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
	if err := os.Rename(s.path, target); err != nil {
		return "", fmt.Errorf("could not move %s aside: %w", s.path, err)
	}
	log.Warningf("moved unreadable snapshot %s to %s", s.path, target)
	return target, nil
}

func (s *FileSnapshotter) Stats() Stats {
	t := s.saveTime.Snapshot()
	st := Stats{
		Path:          s.path,
		Format:        s.codec.Name(),
		Saves:         t.Count(),
		Failures:      s.failures.Snapshot().Count(),
		LastSizeBytes: s.lastSize.Snapshot().Value(),
		MeanSaveMs:    t.Mean() / float64(time.Millisecond),
		P99SaveMs:     t.Percentile(0.99) / float64(time.Millisecond),
		MaxSaveMs:     float64(t.Max()) / float64(time.Millisecond),
		MeanSizeBytes: s.sizes.Snapshot().Mean(),
	}
	if ms := s.lastSave.Snapshot().Value(); ms > 0 {
		st.LastSaveAt = time.UnixMilli(ms)
	}
	return st
}

// writeAtomic writes data to path via a synced temporary file and a rename
func writeAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
