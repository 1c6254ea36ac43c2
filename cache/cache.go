// Package cache remembers the digest of the markdown each page last
// produced, so unchanged pages can be reported across runs without scanning
// the output directory.
package cache

import (
	"encoding/hex"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
	bolt "go.etcd.io/bbolt"
)

const BUCKET_NAME = "pages"

// PageCache is a persistent URL -> content-digest map backed by BoltDB.
type PageCache struct {
	db *bolt.DB
}

// NewPageCache opens (or creates) the cache at the given path. It is up to
// the caller to close it when no longer needed.
func NewPageCache(path string) (*PageCache, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BUCKET_NAME))
		return err
	})

	if err != nil {
		return nil, errors.Wrap(err, "failed to create default bucket")
	}

	return &PageCache{
		db: db,
	}, nil
}

// Digest returns the digest recorded for the given page URL, if any.
func (c *PageCache) Digest(url string) (digest string, exists bool) {
	c.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket([]byte(BUCKET_NAME)).Get([]byte(url))
		if val != nil {
			digest = string(val)
			exists = true
		}

		return nil
	})

	return
}

// SetDigest records the digest of the markdown the page last produced.
func (c *PageCache) SetDigest(url, digest string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BUCKET_NAME)).Put([]byte(url), []byte(digest))
	})
}

func (c *PageCache) Len() int {
	var count int
	c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BUCKET_NAME))
		count = b.Stats().KeyN
		return nil
	})

	return count
}

// Close closes the database.
func (c *PageCache) Close() error {
	return c.db.Close()
}

// Sum returns the hex digest used for cache values.
func Sum(content []byte) string {
	sum := blake3.Sum256(content)
	return hex.EncodeToString(sum[:])
}
