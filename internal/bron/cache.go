package bron

import (
	"encoding/json"
	"time"

	"go.etcd.io/bbolt"
)

const cacheBucket = "bron_cache"

// Cache is a bbolt-backed TTL cache for upstream responses, keyed by
// domain+endpoint. Stale entries stay on disk until overwritten by the next
// successful fetch.
type Cache struct {
	db  *bbolt.DB
	ttl time.Duration
	now func() time.Time
}

type cacheEntry struct {
	StoredAt time.Time       `json:"stored_at"`
	Payload  json.RawMessage `json:"payload"`
}

// NewCache opens (or creates) the cache file at path.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cacheBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func cacheKey(domain, endpoint string) []byte {
	return []byte(domain + ":" + endpoint)
}

// Get returns the cached payload for domain+endpoint, or nil when missing or
// older than the TTL.
func (c *Cache) Get(domain, endpoint string) []byte {
	var payload []byte
	_ = c.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(cacheBucket)).Get(cacheKey(domain, endpoint))
		if v == nil {
			return nil
		}
		var entry cacheEntry
		if err := json.Unmarshal(v, &entry); err != nil {
			return nil
		}
		if c.now().Sub(entry.StoredAt) > c.ttl {
			return nil
		}
		payload = entry.Payload
		return nil
	})
	return payload
}

// Put stores the payload for domain+endpoint, overwriting any stale entry.
func (c *Cache) Put(domain, endpoint string, payload []byte) error {
	entry := cacheEntry{StoredAt: c.now().UTC(), Payload: payload}
	data, err := json.Marshal(&entry)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(cacheBucket)).Put(cacheKey(domain, endpoint), data)
	})
}
