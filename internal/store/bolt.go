package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/iwvelando/sixsigma-portal/pkg/constants"
)

const boltFileMode os.FileMode = 0600

// ErrFilePathIsBlank is returned when a bolt backend is opened without a path.
var ErrFilePathIsBlank = errors.New("store: bolt file path is blank")

// BoltBackend stores items as keys of a single bucket in a bolt file.
type BoltBackend struct {
	db     *bolt.DB
	bucket []byte
}

// OpenBolt opens (creating if needed) the bolt file at filePath and ensures
// the bucket exists. An empty bucket name selects "localStorage". timeout
// bounds the wait for the file lock.
func OpenBolt(filePath, bucket string, timeout time.Duration) (*BoltBackend, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return nil, ErrFilePathIsBlank
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		bucket = constants.DefaultBoltBucket
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}

	db, err := bolt.Open(filePath, boltFileMode, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt file %s: %w", filePath, err)
	}

	bucketKey := []byte(bucket)
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketKey)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}

	return &BoltBackend{db: db, bucket: bucketKey}, nil
}

// GetItem implements Backend.
func (b *BoltBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var (
		value string
		ok    bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(b.bucket).Get([]byte(key))
		if data != nil {
			// data is only valid inside the transaction
			value, ok = string(data), true
		}
		return nil
	})
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return "", false, ErrClosed
	}
	return value, ok, err
}

// SetItem implements Backend.
func (b *BoltBackend) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(key), []byte(value))
	})
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	return err
}

// Close implements Backend.
func (b *BoltBackend) Close() error {
	return b.db.Close()
}
