package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFetcher serves canned bodies and counts requests.
type countingFetcher struct {
	bodies map[string]string
	hits   int
}

func (f *countingFetcher) Get(_ context.Context, url string) ([]byte, error) {
	f.hits++
	body, ok := f.bodies[url]
	if !ok {
		return nil, errors.New("no such page")
	}
	return []byte(body), nil
}

func newTestCache(t *testing.T, f Fetcher) *Cache {
	c, err := New(filepath.Join(t.TempDir(), "cache"), f)
	require.NoError(t, err)
	return c
}

// TestDownload_AtMostOncePerKey verifies the second Download for a key
// makes no network request and returns the same local path.
func TestDownload_AtMostOncePerKey(t *testing.T) {
	fetcher := &countingFetcher{bodies: map[string]string{
		"https://example.org/sb1421/": "<html>index</html>",
	}}
	c := newTestCache(t, fetcher)

	ctx := context.Background()
	first, err := c.Download(ctx, "ca_test/sb1421.html", "https://example.org/sb1421/")
	require.NoError(t, err)

	second, err := c.Download(ctx, "ca_test/sb1421.html", "https://example.org/sb1421/")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.hits, "cached key must not be re-fetched")
}

func TestDownload_FetchFailure(t *testing.T) {
	c := newTestCache(t, &countingFetcher{})

	_, err := c.Download(context.Background(), "ca_test/missing.html", "https://example.org/missing/")
	require.Error(t, err)
	assert.False(t, c.Exists("ca_test/missing.html"), "failed download must not create a cache entry")
}

// TestRead verifies reading by key and by the absolute path Download
// returned.
func TestRead(t *testing.T) {
	fetcher := &countingFetcher{bodies: map[string]string{
		"https://example.org/case-123/": "<html><h1>Case 123</h1></html>",
	}}
	c := newTestCache(t, fetcher)

	path, err := c.Download(context.Background(), "ca_test/case-123.html", "https://example.org/case-123/")
	require.NoError(t, err)

	byPath, err := c.Read(path)
	require.NoError(t, err)
	byKey, err := c.Read("ca_test/case-123.html")
	require.NoError(t, err)

	assert.Equal(t, byPath, byKey)
	assert.Contains(t, byPath, "Case 123")
}

func TestRead_Missing(t *testing.T) {
	c := newTestCache(t, &countingFetcher{})
	_, err := c.Read("ca_test/nope.html")
	assert.Error(t, err)
}

// TestWriteJSON verifies overwrite semantics: a second write fully
// replaces the first.
func TestWriteJSON(t *testing.T) {
	c := newTestCache(t, &countingFetcher{})
	out := filepath.Join(t.TempDir(), "exports", "ca_test.json")

	require.NoError(t, c.WriteJSON(out, []string{"a", "b", "c"}))
	require.NoError(t, c.WriteJSON(out, []string{"d"}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var got []string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []string{"d"}, got)
}
