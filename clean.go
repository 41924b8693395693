// Package clean provides the shared core for per-agency public records
// scrapers: the metadata record emitted for each disclosable asset, the
// Site interface every agency implements, and the registry used to look
// agencies up by slug.
package clean

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Site is implemented once per agency. A Site knows how to walk the
// agency's disclosure pages and produce a metadata export.
type Site interface {
	// Name returns the official name of the agency.
	Name() string

	// Slug returns the stable identifier used to namespace the agency's
	// cache and export paths, e.g. "ca_ventura_county_sheriff".
	Slug() string

	// ScrapeMeta gathers metadata on the agency's downloadable assets
	// (videos, documents, audio) and returns the path of the JSON export
	// it wrote. Throttle is the pause inserted between page downloads.
	ScrapeMeta(ctx context.Context, throttle time.Duration) (string, error)
}

// Entry describes one registered agency.
type Entry struct {
	Slug    string
	Name    string
	Factory Factory
}

// Factory constructs a Site rooted at the given cache and data
// directories.
type Factory func(cacheDir, dataDir string) (Site, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Entry{}
)

// Register adds an agency to the registry. It panics if the slug is
// already taken; registration happens from init functions, so a
// duplicate is a programming error, not a runtime condition.
func Register(slug, name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[slug]; dup {
		panic(fmt.Sprintf("clean: agency %q registered twice", slug))
	}
	registry[slug] = Entry{Slug: slug, Name: name, Factory: f}
}

// Lookup returns the registry entry for a slug.
func Lookup(slug string) (Entry, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	e, ok := registry[slug]
	return e, ok
}

// Agencies returns all registered agencies sorted by slug.
func Agencies() []Entry {
	registryMu.RLock()
	defer registryMu.RUnlock()

	entries := make([]Entry, 0, len(registry))
	for _, e := range registry {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Slug < entries[j].Slug
	})
	return entries
}
