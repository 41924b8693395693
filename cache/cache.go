// Package cache is a file-backed store for downloaded pages, keyed by
// agency-scoped relative paths such as
// "ca_ventura_county_sheriff/officer-involved-shooting-ois.html".
// Downloads are idempotent: once a key exists on disk it is never
// fetched again, which is what makes an interrupted run resumable.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

// Fetcher retrieves a URL's body. Satisfied by fetch.Client.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Cache stores downloaded pages under a root directory.
type Cache struct {
	dir     string
	fetcher Fetcher
}

// New creates a Cache rooted at dir, creating the directory if needed.
func New(dir string, fetcher Fetcher) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir, fetcher: fetcher}, nil
}

// Dir returns the cache's root directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns the absolute path for a cache key.
func (c *Cache) Path(key string) string {
	return filepath.Join(c.dir, filepath.FromSlash(key))
}

// Exists reports whether a key is already present.
func (c *Cache) Exists(key string) bool {
	_, err := os.Stat(c.Path(key))
	return err == nil
}

// Download fetches url and stores it under key, returning the local
// path. If the key already exists the fetch is skipped entirely; a key
// is downloaded at most once for the lifetime of the cache directory.
func (c *Cache) Download(ctx context.Context, key, url string) (string, error) {
	path := c.Path(key)
	if c.Exists(key) {
		log.Debug().Str("key", key).Msg("cache hit, skipping download")
		return path, nil
	}

	log.Debug().Str("key", key).Str("url", url).Msg("fetching")
	body, err := c.fetcher.Get(ctx, url)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache subdirectory: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Read returns the decoded text of a cached page. The reference may be
// either an absolute path (as returned by Download) or a cache key.
// Bodies in a legacy encoding are transcoded to UTF-8.
func (c *Cache) Read(ref string) (string, error) {
	path := ref
	if !filepath.IsAbs(ref) && !strings.HasPrefix(ref, c.dir) {
		path = c.Path(ref)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read cached page: %w", err)
	}
	return decode(data), nil
}

// decode transcodes page bytes to UTF-8, sniffing the encoding from the
// content itself. Bytes already valid as UTF-8 pass through untouched
// if sniffing fails.
func decode(data []byte) string {
	if r, err := charset.NewReader(bytes.NewReader(data), ""); err == nil {
		if decoded, err := io.ReadAll(r); err == nil && utf8.Valid(decoded) {
			return string(decoded)
		}
	}
	return string(data)
}

// WriteJSON marshals v as indented JSON to path, creating parent
// directories and overwriting any previous file.
func (c *Cache) WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("wrote JSON")
	return nil
}
