package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [Cache.Get] when an entry exists but is older
// than the cache TTL. The caller should download again and call [Cache.Set].
var ErrExpired = errors.New("cache entry expired")

// Download is a cached response body.
type Download struct {
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Cache stores downloads as JSON files named by the SHA-256 of their URL.
//
// Cache is not goroutine-safe, but several instances may share a directory:
// each Set replaces a whole file.
type Cache struct {
	dir string
	ttl time.Duration
}

// NewCache creates a Cache in dir with the given TTL (0 means entries never
// expire). An empty dir selects ~/.cache/roadreveal/downloads.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "roadreveal", "downloads")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the entry time-to-live.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the download stored for url.
//
//   - (d, true, nil): fresh hit
//   - (zero, false, nil): miss
//   - (zero, false, ErrExpired): stale entry
//   - (zero, false, err): I/O or decode failure
func (c *Cache) Get(url string) (Download, bool, error) {
	data, err := os.ReadFile(c.keyPath(url))
	if os.IsNotExist(err) {
		return Download{}, false, nil
	}
	if err != nil {
		return Download{}, false, err
	}
	var d Download
	if err := json.Unmarshal(data, &d); err != nil {
		return Download{}, false, err
	}
	if d.URL != url {
		return Download{}, false, nil
	}
	if c.ttl > 0 && time.Since(d.FetchedAt) > c.ttl {
		return Download{}, false, ErrExpired
	}
	return d, true, nil
}

// Set stores d under d.URL. A zero FetchedAt is set to now.
func (c *Cache) Set(d Download) error {
	if d.FetchedAt.IsZero() {
		d.FetchedAt = time.Now()
	}
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(d.URL), data, 0o644)
}

// Clear removes every cached download.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) keyPath(url string) string {
	h := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(h[:])+".json")
}
