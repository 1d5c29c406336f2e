// Package cache provides durable cache store implementations for translation
// records: a file-backed store (the default), an in-process store, and
// Redis- and MongoDB-backed stores for shared deployments.
package cache

import (
	"sync"

	"github.com/cloudshift-ai/cloudshift"
)

// Store is the interface implemented by every backend in this package.
// Alias to the root package interface for convenience.
type Store = cloudshift.Store

// Record is an alias to the root package record type.
type Record = cloudshift.Record

// keyMutex serializes writers per cache key. Distinct keys never contend.
type keyMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyMutex() *keyMutex {
	return &keyMutex{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for key, creating it on first use. Mutexes are
// retained for the store's lifetime; the key space is bounded by the number
// of distinct translation requests.
func (k *keyMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
