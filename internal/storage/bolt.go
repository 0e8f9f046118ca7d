package storage

import (
	"context"
	"fmt"

	"github.com/tartampluch/go-medreminder/internal/config"
	"go.etcd.io/bbolt"
)

// Bolt is a file-backed KV. Every key lives in one bucket.
type Bolt struct {
	db     *bbolt.DB
	bucket []byte
}

// OpenBolt opens (or creates) the database at path.
// It fails after config.BoltOpenTimeout if another process holds the file lock.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, config.FilePermUserRW, &bbolt.Options{Timeout: config.BoltOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrOpenStore, err)
	}

	bucket := []byte(config.BoltBucket)
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrOpenStore, err)
	}

	return &Bolt{db: db, bucket: bucket}, nil
}

// Get returns a copy of the value; bbolt memory is only valid inside the transaction.
func (b *Bolt) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var out []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(b.bucket).Get([]byte(key)); v != nil {
			out = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

// Set writes value under key in its own transaction.
func (b *Bolt) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(key), value)
	})
}

// Path returns the database file location.
func (b *Bolt) Path() string {
	return b.db.Path()
}

// Close releases the file lock.
func (b *Bolt) Close() error {
	return b.db.Close()
}
