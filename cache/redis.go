package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cloudshift-ai/cloudshift"
)

// RedisStore keeps JSON-encoded records in Redis. Suitable when several
// orchestrator instances share one cache. Writers to the same key are
// serialized per instance; cross-instance racing writers degrade to
// last-writer-wins.
type RedisStore struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	locks     *keyMutex
	logger    *slog.Logger
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379")
	TTL       int    // TTL in seconds (0 = no expiration)
	KeyPrefix string // Prefix for all keys (default: "cloudshift:")
}

// NewRedisStore creates a new Redis store with the given configuration.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisStoreFromClient(client, cfg.TTL, cfg.KeyPrefix), nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing Redis client.
func NewRedisStoreFromClient(client *redis.Client, ttlSeconds int, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "cloudshift:"
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}

	return &RedisStore{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
		locks:     newKeyMutex(),
		logger:    slog.Default(),
	}
}

func (s *RedisStore) fullKey(key string) string {
	return s.keyPrefix + key
}

// getRecord loads a record, treating errors and malformed values as misses.
func (s *RedisStore) getRecord(ctx context.Context, key string) (*Record, bool) {
	raw, err := s.client.Get(ctx, s.fullKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.logger.Warn("redis read failed, treating as miss", "key", key, "error", err)
		return nil, false
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Warn("cache record malformed, treating as miss",
			"error", &cloudshift.StoreCorruptionError{Path: s.fullKey(key), Cause: err})
		return nil, false
	}
	return &rec, true
}

func (s *RedisStore) setRecord(ctx context.Context, key string, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.fullKey(key), raw, s.ttl).Err()
}

// Lookup returns the record for key, incrementing its hit count best-effort.
func (s *RedisStore) Lookup(ctx context.Context, key string) (*Record, bool) {
	unlock := s.locks.lock(key)
	defer unlock()

	rec, ok := s.getRecord(ctx, key)
	if !ok {
		return nil, false
	}
	rec.HitCount++
	if err := s.setRecord(ctx, key, rec); err != nil {
		s.logger.Warn("persisting hit count failed", "key", key, "error", err)
	}
	return rec, true
}

// Put creates or replaces the record under key. A Redis SET replaces the
// whole value, so the caller never observes a partial record.
func (s *RedisStore) Put(ctx context.Context, key string, rec *Record) error {
	unlock := s.locks.lock(key)
	defer unlock()

	if err := s.setRecord(ctx, key, rec); err != nil {
		return &cloudshift.StoreWriteError{Op: "put", Key: key, Cause: err}
	}
	return nil
}

// AppendEdit appends to the record's edit history and marks it user-edited.
func (s *RedisStore) AppendEdit(ctx context.Context, key string, entry cloudshift.EditEntry) error {
	unlock := s.locks.lock(key)
	defer unlock()

	rec, ok := s.getRecord(ctx, key)
	if !ok {
		return &cloudshift.NotFoundError{Key: key}
	}
	rec.EditHistory = append(rec.EditHistory, entry)
	rec.UserEdited = true
	if err := s.setRecord(ctx, key, rec); err != nil {
		return &cloudshift.StoreWriteError{Op: "append_edit", Key: key, Cause: err}
	}
	return nil
}

// Stats scans the key space under the store prefix.
func (s *RedisStore) Stats(ctx context.Context) (cloudshift.Stats, error) {
	var stats cloudshift.Stats

	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		stats.TotalSizeBytes += int64(len(raw))
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		stats.TotalRecords++
		if rec.UserEdited {
			stats.EditedCount++
		}
	}
	if err := iter.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

// Clear removes records or resets edit history per scope.
func (s *RedisStore) Clear(ctx context.Context, scope cloudshift.ClearScope) error {
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		fullKey := iter.Val()
		switch scope {
		case cloudshift.ClearAll, cloudshift.ClearTranslations:
			if err := s.client.Del(ctx, fullKey).Err(); err != nil {
				return &cloudshift.StoreWriteError{Op: "clear", Key: fullKey, Cause: err}
			}
		case cloudshift.ClearEdits:
			key := fullKey[len(s.keyPrefix):]
			unlock := s.locks.lock(key)
			rec, ok := s.getRecord(ctx, key)
			if ok && (rec.UserEdited || len(rec.EditHistory) > 0) {
				rec.EditHistory = nil
				rec.UserEdited = false
				if err := s.setRecord(ctx, key, rec); err != nil {
					unlock()
					return &cloudshift.StoreWriteError{Op: "clear", Key: key, Cause: err}
				}
			}
			unlock()
		}
	}
	return iter.Err()
}

// Records returns every readable record, keyed by cache key.
func (s *RedisStore) Records(ctx context.Context) (map[string]*Record, error) {
	out := make(map[string]*Record)
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()[len(s.keyPrefix):]
		if rec, ok := s.getRecord(ctx, key); ok {
			out[key] = rec
		}
	}
	return out, iter.Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping tests the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Verify RedisStore implements Store
var _ Store = (*RedisStore)(nil)
