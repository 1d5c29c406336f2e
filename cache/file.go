package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudshift-ai/cloudshift"
	"github.com/cloudshift-ai/cloudshift/metrics"
)

// FileStore is a durable store keeping one JSON document per cache key in a
// directory. Replaces are atomic (write to temp file, then rename), so a
// crash mid-write leaves either the old or the new record, never a corrupt
// hybrid. A record file that is unreadable or malformed is treated as absent
// rather than failing the pipeline.
type FileStore struct {
	dir    string
	locks  *keyMutex
	logger *slog.Logger
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithFileLogger sets the store's logger.
func WithFileLogger(logger *slog.Logger) FileOption {
	return func(s *FileStore) {
		s.logger = logger
	}
}

// OpenFileStore opens (creating if needed) a file-backed store rooted at dir.
func OpenFileStore(dir string, opts ...FileOption) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	s := &FileStore{
		dir:    dir,
		locks:  newKeyMutex(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// path maps a cache key to its record file. Keys are hex fingerprints, but
// separators are sanitized in case a caller uses free-form keys.
func (s *FileStore) path(key string) string {
	clean := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_").Replace(key)
	return filepath.Join(s.dir, clean+".json")
}

// readRecord loads a record, treating missing and corrupt files as absent.
func (s *FileStore) readRecord(key string) (*Record, bool) {
	path := s.path(key)
	raw, err := os.ReadFile(path) // #nosec G304 - path is derived from the store dir
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("cache record unreadable, treating as miss",
				"error", &cloudshift.StoreCorruptionError{Path: path, Cause: err})
		}
		return nil, false
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Warn("cache record malformed, treating as miss",
			"error", &cloudshift.StoreCorruptionError{Path: path, Cause: err})
		return nil, false
	}
	return &rec, true
}

// writeRecord atomically replaces the record file for key.
func (s *FileStore) writeRecord(key string, rec *Record) error {
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".rec-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Lookup returns the stored record, incrementing its hit count. The
// increment is telemetry: if persisting it fails, the hit is still returned
// and the failure only logged.
func (s *FileStore) Lookup(ctx context.Context, key string) (*Record, bool) {
	metrics.IncCacheOp("lookup")
	unlock := s.locks.lock(key)
	defer unlock()

	rec, ok := s.readRecord(key)
	if !ok {
		return nil, false
	}

	rec.HitCount++
	if err := s.writeRecord(key, rec); err != nil {
		s.logger.Warn("persisting hit count failed", "key", key, "error", err)
		metrics.IncError("file_store", "hit_count_write")
	}
	return rec, true
}

// Put creates or atomically replaces the record under key.
func (s *FileStore) Put(ctx context.Context, key string, rec *Record) error {
	metrics.IncCacheOp("put")
	unlock := s.locks.lock(key)
	defer unlock()

	if err := s.writeRecord(key, rec); err != nil {
		return &cloudshift.StoreWriteError{Op: "put", Key: key, Cause: err}
	}
	return nil
}

// AppendEdit appends to the record's edit history and marks it user-edited.
func (s *FileStore) AppendEdit(ctx context.Context, key string, entry cloudshift.EditEntry) error {
	metrics.IncCacheOp("append_edit")
	unlock := s.locks.lock(key)
	defer unlock()

	rec, ok := s.readRecord(key)
	if !ok {
		return &cloudshift.NotFoundError{Key: key}
	}

	rec.EditHistory = append(rec.EditHistory, entry)
	rec.UserEdited = true
	if err := s.writeRecord(key, rec); err != nil {
		return &cloudshift.StoreWriteError{Op: "append_edit", Key: key, Cause: err}
	}
	return nil
}

// Stats walks the store directory. Records that fail to decode are counted
// in the size total but not in the record counts.
func (s *FileStore) Stats(ctx context.Context) (cloudshift.Stats, error) {
	metrics.IncCacheOp("stats")
	var stats cloudshift.Stats

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return stats, err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if info, err := entry.Info(); err == nil {
			stats.TotalSizeBytes += info.Size()
		}
		raw, err := os.ReadFile(filepath.Join(s.dir, entry.Name())) // #nosec G304
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		stats.TotalRecords++
		if rec.UserEdited {
			stats.EditedCount++
		}
	}
	return stats, nil
}

// Clear removes records (scope all/translations) or resets edit history
// (scope edits). Irreversible.
func (s *FileStore) Clear(ctx context.Context, scope cloudshift.ClearScope) error {
	metrics.IncCacheOp("clear")
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return &cloudshift.StoreWriteError{Op: "clear", Cause: err}
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		key := strings.TrimSuffix(entry.Name(), ".json")

		switch scope {
		case cloudshift.ClearAll, cloudshift.ClearTranslations:
			unlock := s.locks.lock(key)
			err := os.Remove(filepath.Join(s.dir, entry.Name()))
			unlock()
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return &cloudshift.StoreWriteError{Op: "clear", Key: key, Cause: err}
			}
		case cloudshift.ClearEdits:
			unlock := s.locks.lock(key)
			err := s.resetEdits(key)
			unlock()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// resetEdits clears a record's edit history without touching the base
// translation. Caller holds the key lock.
func (s *FileStore) resetEdits(key string) error {
	rec, ok := s.readRecord(key)
	if !ok || (!rec.UserEdited && len(rec.EditHistory) == 0) {
		return nil
	}
	rec.EditHistory = nil
	rec.UserEdited = false
	if err := s.writeRecord(key, rec); err != nil {
		return &cloudshift.StoreWriteError{Op: "clear", Key: key, Cause: err}
	}
	return nil
}

// Records returns every readable record, keyed by cache key. Used by the
// exporter.
func (s *FileStore) Records(ctx context.Context) (map[string]*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Record)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		key := strings.TrimSuffix(entry.Name(), ".json")
		if rec, ok := s.readRecord(key); ok {
			out[key] = rec
		}
	}
	return out, nil
}

// Close releases nothing for a file store; it exists to satisfy Store.
func (s *FileStore) Close() error {
	return nil
}

// Verify FileStore implements Store
var _ Store = (*FileStore)(nil)
