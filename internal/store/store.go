// Package store persists the pseudonym ledger: canonical entity key →
// chosen surrogate base value. With a ledger configured, repeated runs and
// multi-document batches reuse prior draws even across engine versions
// whose corpora differ; without one, determinism rests on seeded
// derivation alone.
//
// Two implementations are provided:
//   - memoryLedger — in-memory only, used in tests and when no path is configured.
//   - boltLedger   — embedded key-value store (bbolt), used for real runs.
//
// The interface is intentionally minimal. The generator writes entries one
// surrogate at a time during plan building; reads are per-entity lookups.
// Batch operations and iteration are not needed.
package store

import (
	"fmt"
	"sync"

	bolt "go.etcd.io/bbolt"

	"github.com/sdrasco/freedact/internal/logger"
)

// Ledger is the pseudonym persistence interface.
// All implementations must be safe for concurrent use.
type Ledger interface {
	// Get returns the stored surrogate for the given ledger key, if present.
	Get(key string) (value string, ok bool)

	// Set stores key → value. Overwrites any existing entry silently.
	Set(key, value string)

	// Delete removes key. Missing keys are a no-op.
	Delete(key string)

	// Close releases any resources held by the ledger (e.g. file handles).
	Close() error
}

// Open returns a ledger for the given path. An empty path selects the
// in-memory ledger. A non-empty path opens (or creates) a bbolt database,
// fronted by an S3-FIFO layer bounded to capacity entries; if the database
// cannot be opened the in-memory ledger is used instead so a bad path
// never blocks a redaction run. A nil log is silenced.
func Open(path string, capacity int, log *logger.Logger) Ledger {
	if log == nil {
		log = logger.Nop()
	}
	if path == "" {
		return NewMemory()
	}
	backing, err := newBoltLedger(path, log)
	if err != nil {
		log.Warnf("ledger_open", "falling back to in-memory ledger: %v", err)
		return NewMemory()
	}
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return newS3FIFO(backing, capacity, log)
}

const defaultCapacity = 65536

// --- memoryLedger ---------------------------------------------------------

// memoryLedger is a thread-safe in-memory Ledger.
type memoryLedger struct {
	mu    sync.RWMutex
	store map[string]string
}

// NewMemory returns an empty in-memory ledger.
func NewMemory() Ledger {
	return &memoryLedger{store: make(map[string]string)}
}

func (l *memoryLedger) Get(key string) (string, bool) {
	l.mu.RLock()
	v, ok := l.store[key]
	l.mu.RUnlock()
	return v, ok
}

func (l *memoryLedger) Set(key, value string) {
	l.mu.Lock()
	l.store[key] = value
	l.mu.Unlock()
}

func (l *memoryLedger) Delete(key string) {
	l.mu.Lock()
	delete(l.store, key)
	l.mu.Unlock()
}

func (l *memoryLedger) Close() error { return nil }

// --- boltLedger -----------------------------------------------------------

const ledgerBucket = "pseudonyms"

// boltLedger is a Ledger backed by an embedded bbolt database. Entries
// survive process restarts. The database file is created at the given path
// if it does not exist.
type boltLedger struct {
	db  *bolt.DB
	log *logger.Logger
}

func newBoltLedger(path string, log *logger.Logger) (Ledger, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open ledger %q: %w", path, err)
	}

	// Ensure the bucket exists.
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(ledgerBucket))
		return err
	}); err != nil {
		db.Close() //nolint:errcheck // best-effort close on init failure
		return nil, fmt.Errorf("create ledger bucket: %w", err)
	}

	log.Infof("ledger_open", "pseudonym ledger opened at %s", path)
	return &boltLedger{db: db, log: log}, nil
}

func (l *boltLedger) Get(key string) (string, bool) {
	var value string
	err := l.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ledgerBucket))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			value = string(v)
		}
		return nil
	})
	if err != nil {
		l.log.Warnf("ledger_get", "bbolt read: %v", err)
		return "", false
	}
	return value, value != ""
}

func (l *boltLedger) Set(key, value string) {
	if err := l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ledgerBucket))
		if b == nil {
			return fmt.Errorf("bucket %q not found", ledgerBucket)
		}
		return b.Put([]byte(key), []byte(value))
	}); err != nil {
		l.log.Warnf("ledger_set", "bbolt write: %v", err)
	}
}

func (l *boltLedger) Delete(key string) {
	if err := l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ledgerBucket))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	}); err != nil {
		l.log.Warnf("ledger_delete", "bbolt delete: %v", err)
	}
}

func (l *boltLedger) Close() error {
	return l.db.Close()
}
