package kvdb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meghashyamc/docsearch/logger"
	bolt "go.etcd.io/bbolt"
)

// BoltDB is a scratch key-value store scoped to one process. Any file left
// at the path by an earlier run is discarded on open, and the file is
// removed again on Close.
type BoltDB struct {
	path   string
	store  *bolt.DB
	logger logger.Logger
}

func New(logger logger.Logger, path string) (*BoltDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Error("failed to create key-value database directory", "err", err.Error(), "path", path)
		return nil, fmt.Errorf("failed to create key-value database directory: %w", err)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error("failed to discard stale database", "err", err.Error(), "path", path)
		return nil, fmt.Errorf("failed to discard stale database: %w", err)
	}

	store, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		logger.Error("failed to open database", "err", err.Error(), "path", path)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	boltDB := &BoltDB{
		path:   path,
		store:  store,
		logger: logger,
	}

	if err := boltDB.initBuckets(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return boltDB, nil
}

func (b *BoltDB) initBuckets() error {
	return b.store.Update(func(tx *bolt.Tx) error {
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				b.logger.Error("failed to create bucket", "bucket", bucket, "err", err.Error())
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
}

func validateKey(key string) error {
	if key == "" {
		return &InvalidKeyError{
			Key:    key,
			Reason: "key cannot be empty",
		}
	}
	return nil
}

func (b *BoltDB) Set(bucket string, key string, value string) error {
	if err := validateKey(key); err != nil {
		b.logger.Error("key cannot be empty", "key", key)
		return err
	}

	return b.store.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			b.logger.Error("bucket not found", "bucket", bucket)
			return &BucketNotFoundError{Bucket: bucket}
		}

		if err := bkt.Put([]byte(key), []byte(value)); err != nil {
			b.logger.Error("failed to set key", "key", key, "err", err.Error())
			return fmt.Errorf("failed to set key %s: %w", key, err)
		}

		return nil
	})
}

func (b *BoltDB) Get(bucket string, key string) (string, error) {
	if err := validateKey(key); err != nil {
		b.logger.Error("key cannot be empty", "key", key)
		return "", err
	}

	var value []byte
	err := b.store.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			b.logger.Error("bucket not found", "bucket", bucket)
			return &BucketNotFoundError{Bucket: bucket}
		}

		v := bkt.Get([]byte(key))
		if v == nil {
			return &NotFoundError{Key: key}
		}

		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})

	if err != nil {
		if notFoundErr, ok := err.(*NotFoundError); ok {
			b.logger.Debug("key not found", "key", key)
			return "", notFoundErr
		}
		return "", err
	}

	return string(value), nil
}

func (b *BoltDB) Delete(bucket string, key string) error {
	if err := validateKey(key); err != nil {
		b.logger.Error("key cannot be empty", "key", key)
		return err
	}

	return b.store.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			b.logger.Error("bucket not found", "bucket", bucket)
			return &BucketNotFoundError{Bucket: bucket}
		}

		if err := bkt.Delete([]byte(key)); err != nil {
			b.logger.Error("failed to delete key", "key", key, "err", err.Error())
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}

		return nil
	})
}

// GetAllKeys returns the keys of bucket in byte-wise ascending order.
func (b *BoltDB) GetAllKeys(bucket string) ([]string, error) {
	var keys []string
	err := b.store.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			b.logger.Error("bucket not found", "bucket", bucket)
			return &BucketNotFoundError{Bucket: bucket}
		}

		return bkt.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

func (b *BoltDB) ClearBucket(bucket string) error {
	return b.store.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucket)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			b.logger.Error("failed to delete bucket", "bucket", bucket, "err", err.Error())
			return fmt.Errorf("failed to delete bucket %s: %w", bucket, err)
		}
		if _, err := tx.CreateBucket([]byte(bucket)); err != nil {
			b.logger.Error("failed to recreate bucket", "bucket", bucket, "err", err.Error())
			return fmt.Errorf("failed to recreate bucket %s: %w", bucket, err)
		}
		return nil
	})
}

func (b *BoltDB) Close() error {
	if b.store == nil {
		return nil
	}
	if err := b.store.Close(); err != nil {
		b.logger.Error("failed to close database", "err", err.Error())
		return err
	}
	b.store = nil
	if err := os.Remove(b.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		b.logger.Warn("failed to remove database file", "path", b.path, "err", err.Error())
	}
	return nil
}
