// Package cache provides a local artifact cache for fetched engine modules
// and payloads, so repeated sessions do not re-download multi-megabyte
// binaries from the mirrors.
//
// Entries are keyed by source URL and carry a sha256 digest that is verified
// on read; a corrupt entry behaves like a miss.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/fenwick-labs/enginebridge/source"
)

// Key prefixes
const (
	prefixArtifact = "artifact/"
	prefixDigest   = "digest/"
)

// DefaultTTL is how long a cached artifact stays valid. Mirrors serve
// immutable release builds.
const DefaultTTL = 7 * 24 * time.Hour

// Store wraps BadgerDB for persistent artifact storage.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// Open opens (or creates) a store rooted at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{db: db, ttl: DefaultTTL}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the cached bytes for url, or ok=false on a miss. An entry
// whose stored digest no longer matches its bytes is treated as a miss.
func (s *Store) Get(url string) (data []byte, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixArtifact + url))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		digestItem, err := txn.Get([]byte(prefixDigest + url))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		wantDigest, err := digestItem.ValueCopy(nil)
		if err != nil {
			return err
		}

		if digest(value) != string(wantDigest) {
			return nil
		}

		data = value
		ok = true
		return nil
	})
	return data, ok, err
}

// Put stores data under url with the store's TTL.
func (s *Store) Put(url string, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(prefixArtifact+url), data).WithTTL(s.ttl)
		if err := txn.SetEntry(entry); err != nil {
			return err
		}
		digestEntry := badger.NewEntry([]byte(prefixDigest+url), []byte(digest(data))).WithTTL(s.ttl)
		return txn.SetEntry(digestEntry)
	})
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Cached wraps fetch so hits are served from the store without touching the
// network, and successful fetches are written back. Store failures never
// fail the fetch; the cache is an optimization, not a dependency.
func Cached(fetch source.FetchFunc, store *Store) source.FetchFunc {
	return func(ctx context.Context, c source.Candidate) ([]byte, error) {
		if data, ok, err := store.Get(c.URL); err == nil && ok {
			return data, nil
		}

		data, err := fetch(ctx, c)
		if err != nil {
			return nil, err
		}
		_ = store.Put(c.URL, data)
		return data, nil
	}
}
