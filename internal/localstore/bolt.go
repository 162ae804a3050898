package localstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// boltStore keeps each namespace in its own bucket of a single BoltDB file.
type boltStore struct {
	db     *bolt.DB
	bucket []byte
}

func openBoltStore(path, namespace string) (*boltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt store %s: %w", path, err)
	}
	bucket := []byte("origin:" + namespace)
	err = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucket)
		return e
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket for %s: %w", namespace, err)
	}
	return &boltStore{db: db, bucket: bucket}, nil
}

func (s *boltStore) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			// v is only valid inside the transaction
			value, ok = string(v), true
		}
		return nil
	})
	if err == bolt.ErrDatabaseNotOpen {
		return "", false, ErrClosed
	}
	return value, ok, err
}

func (s *boltStore) Set(ctx context.Context, key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, e := tx.CreateBucketIfNotExists(s.bucket)
		if e != nil {
			return e
		}
		return b.Put([]byte(key), []byte(value))
	})
	if err == bolt.ErrDatabaseNotOpen {
		return ErrClosed
	}
	return err
}

func (s *boltStore) Delete(ctx context.Context, key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
	if err == bolt.ErrDatabaseNotOpen {
		return ErrClosed
	}
	return err
}

func (s *boltStore) Close() error {
	return s.db.Close()
}
