// Package bolt implements ports.KeyValueStore on a single bbolt file.
package bolt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.etcd.io/bbolt"
)

const bucketKV = "kv" // key: storage key -> raw value

var errBucketMissing = errors.New("bucket missing")

// Store is a bbolt-backed KeyValueStore.
type Store struct {
	db   *bbolt.DB
	path string
}

// Open opens (or creates) the database at path and ensures the bucket exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db %s: %w", path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketKV))

		return err
	}); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Get returns the value stored under key. The bytes are copied out of the
// transaction because bbolt only guarantees them while it is open.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var value []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketKV))
		if bucket == nil {
			return errBucketMissing
		}

		if v := bucket.Get([]byte(key)); v != nil {
			value = slices.Clone(v)
		}

		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return value, value != nil, nil
}

// Set replaces the value stored under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if value == nil {
		value = []byte{}
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketKV))
		if bucket == nil {
			return errBucketMissing
		}

		return bucket.Put([]byte(key), value)
	})
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "storage"
}

// Check implements ports.HealthChecker by opening a read transaction.
func (s *Store) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(bucketKV)) == nil {
			return errBucketMissing
		}

		return nil
	})
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
