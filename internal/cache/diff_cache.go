// Package cache persists diff results between runs so a rerun only pays for
// revisions it has not diffed before. The store is a local bbolt database:
// one bucket, JSON values, keyed "path@revision".
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"github.com/svnscope/svnscope-go/internal/reconcile"
)

const bucketName = "line_diffs"

// DiffCache is the bbolt-backed implementation of reconcile.DiffCache.
type DiffCache struct {
	db     *bolt.DB
	logger *logrus.Logger
}

// Open opens (creating if needed) the cache database at path.
func Open(path string, logger *logrus.Logger) (*DiffCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0644, nil)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache bucket: %w", err)
	}

	return &DiffCache{db: db, logger: logger}, nil
}

// Get returns the cached result for (path, revision), if any.
func (c *DiffCache) Get(path, revision string) (reconcile.DiffResult, bool, error) {
	var result reconcile.DiffResult
	found := false

	err := c.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get(key(path, revision))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &result); err != nil {
			return fmt.Errorf("decode cached diff: %w", err)
		}
		found = true
		return nil
	})
	return result, found, err
}

// Put stores the result for (path, revision). Writes go to disk as they
// happen, so an interrupted run resumes from partial progress.
func (c *DiffCache) Put(path, revision string, result reconcile.DiffResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode diff result: %w", err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put(key(path, revision), data)
	})
}

// Len returns the number of cached entries.
func (c *DiffCache) Len() (int, error) {
	count := 0
	err := c.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket([]byte(bucketName)).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the underlying database.
func (c *DiffCache) Close() error {
	return c.db.Close()
}

func key(path, revision string) []byte {
	return []byte(path + "@" + revision)
}
