package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var cacheBucket = []byte("completions")

// DefaultCacheTTL bounds how long a cached completion stays valid.
const DefaultCacheTTL = 24 * time.Hour

// Cache is a bbolt-backed response cache keyed by a hash of the prompts.
// It makes repeated analyses of an unchanged working tree free and keeps
// `dscope split` usable offline once warmed.
type Cache struct {
	db     *bolt.DB
	ttl    time.Duration
	logger *slog.Logger
}

type cacheEntry struct {
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// OpenCache opens (or creates) the cache database under dir.
func OpenCache(dir string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dir, "responses.db"), 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache bucket: %w", err)
	}

	return &Cache{
		db:     db,
		ttl:    ttl,
		logger: slog.Default().With("component", "llm_cache"),
	}, nil
}

// Get returns the cached response for the prompt pair when present and
// not expired.
func (c *Cache) Get(systemPrompt, userPrompt string) (string, bool) {
	key := cacheKey(systemPrompt, userPrompt)

	var entry cacheEntry
	found := false
	err := c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(cacheBucket).Get(key)
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return "", false
	}
	if time.Since(entry.CreatedAt) > c.ttl {
		return "", false
	}
	return entry.Response, true
}

// Put stores a response. Failures are logged and ignored; the cache is an
// optimization, never a dependency.
func (c *Cache) Put(systemPrompt, userPrompt, response string) {
	raw, err := json.Marshal(cacheEntry{Response: response, CreatedAt: time.Now()})
	if err != nil {
		return
	}
	err = c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put(cacheKey(systemPrompt, userPrompt), raw)
	})
	if err != nil {
		c.logger.Debug("cache write failed", "error", err)
	}
}

// Close closes the underlying database.
func (c *Cache) Close() error { return c.db.Close() }

func cacheKey(systemPrompt, userPrompt string) []byte {
	sum := sha256.Sum256([]byte(systemPrompt + "\x00" + userPrompt))
	return []byte(hex.EncodeToString(sum[:]))
}
