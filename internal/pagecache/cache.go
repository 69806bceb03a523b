// Package pagecache keeps downloaded images on disk so revisiting a chapter
// or re-rendering after a resize does not hit the network.
package pagecache

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pders01/tankobon/internal/debuglog"
)

var (
	blobsBucket = []byte("blobs")
	orderBucket = []byte("order")
)

// Cache is a size-bounded byte store keyed by URL. Oldest entries go first.
type Cache struct {
	db         *bolt.DB
	maxEntries int
}

// Open creates or opens the cache file. maxEntries <= 0 disables pruning.
func Open(path string, maxEntries int, timeout time.Duration) (*Cache, error) {
	if timeout <= 0 {
		timeout = time.Second
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{blobsBucket, orderBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Cache{db: db, maxEntries: maxEntries}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns a copy of the cached bytes.
func (c *Cache) Get(key string) ([]byte, bool) {
	var out []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(blobsBucket).Get([]byte(key))
		if len(v) < 8 {
			return nil
		}
		out = append([]byte(nil), v[8:]...)
		return nil
	})
	if err != nil {
		debuglog.Warnf("pagecache: get %s: %v", key, err)
		return nil, false
	}
	return out, out != nil
}

// Put stores data under key and prunes the oldest entries past the limit.
func (c *Cache) Put(key string, data []byte) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		blobs := tx.Bucket(blobsBucket)
		order := tx.Bucket(orderBucket)

		if old := blobs.Get([]byte(key)); len(old) >= 8 {
			if err := order.Delete(old[:8]); err != nil {
				return err
			}
		}

		seq, err := order.NextSequence()
		if err != nil {
			return err
		}
		seqKey := make([]byte, 8)
		binary.BigEndian.PutUint64(seqKey, seq)

		value := make([]byte, 8+len(data))
		copy(value, seqKey)
		copy(value[8:], data)

		if err := blobs.Put([]byte(key), value); err != nil {
			return err
		}
		if err := order.Put(seqKey, []byte(key)); err != nil {
			return err
		}
		if c.maxEntries > 0 {
			_, err = prune(tx, c.maxEntries)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("caching %s: %w", key, err)
	}
	return nil
}

// Prune drops the oldest entries until at most max remain and reports how
// many were removed.
func (c *Cache) Prune(max int) (int, error) {
	var removed int
	err := c.db.Update(func(tx *bolt.Tx) error {
		var err error
		removed, err = prune(tx, max)
		return err
	})
	return removed, err
}

// Len is the number of cached entries.
func (c *Cache) Len() int {
	var n int
	_ = c.db.View(func(tx *bolt.Tx) error {
		n = count(tx.Bucket(blobsBucket))
		return nil
	})
	return n
}

func count(b *bolt.Bucket) int {
	n := 0
	cur := b.Cursor()
	for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
		n++
	}
	return n
}

func prune(tx *bolt.Tx, max int) (int, error) {
	blobs := tx.Bucket(blobsBucket)
	order := tx.Bucket(orderBucket)

	excess := count(blobs) - max
	if excess <= 0 {
		return 0, nil
	}

	// Deleting while iterating a bolt cursor skips entries, so collect first.
	var seqs, keys [][]byte
	cur := order.Cursor()
	for k, v := cur.First(); k != nil && len(seqs) < excess; k, v = cur.Next() {
		seqs = append(seqs, append([]byte(nil), k...))
		keys = append(keys, append([]byte(nil), v...))
	}
	for i := range seqs {
		if err := blobs.Delete(keys[i]); err != nil {
			return i, err
		}
		if err := order.Delete(seqs[i]); err != nil {
			return i, err
		}
	}
	return len(seqs), nil
}
