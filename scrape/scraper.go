package scrape

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	clean "github.com/biglocalnews/clean-go"
	"github.com/biglocalnews/clean-go/cache"
)

// RunSummary describes one completed scrape run, handed to an optional
// RunRecorder for bookkeeping.
type RunSummary struct {
	Slug         string
	StartedAt    time.Time
	FinishedAt   time.Time
	PagesFetched int
	AssetsFound  int
	ExportPath   string
}

// RunRecorder persists run summaries. Satisfied by ledger.Store.
type RunRecorder interface {
	RecordRun(RunSummary) error
}

// Scraper drives the pipeline for one agency: index pages in, metadata
// export out. Directories are explicit per instance, so multiple
// agencies can run in one process against distinct locations.
type Scraper struct {
	slug     string
	cache    *cache.Cache
	dataDir  string
	indexes  []IndexPage
	throttle time.Duration
	recorder RunRecorder
}

// New creates a Scraper for an agency.
func New(slug string, c *cache.Cache, dataDir string, indexes []IndexPage) *Scraper {
	return &Scraper{
		slug:    slug,
		cache:   c,
		dataDir: dataDir,
		indexes: indexes,
	}
}

// SetThrottle sets the pause inserted before each detail-page download.
// Zero (the default) is a no-op.
func (s *Scraper) SetThrottle(d time.Duration) {
	s.throttle = d
}

// SetRecorder attaches a run recorder. The scraper works without one.
func (s *Scraper) SetRecorder(r RunRecorder) {
	s.recorder = r
}

// ScrapeMeta runs the pipeline: discover detail pages from each index
// in order, download them sequentially with the throttle in between,
// classify each page's links, and write the aggregate to
// {dataDir}/{slug}.json, fully overwriting any previous export. The
// export is only written once the whole run has succeeded, so an
// interrupted or failed run never leaves a partial file; pages cached
// before the failure are reused by the next invocation.
func (s *Scraper) ScrapeMeta(ctx context.Context) (string, error) {
	started := time.Now()

	var detailURLs []string
	for _, index := range s.indexes {
		links, err := s.DiscoverDetailPages(ctx, index)
		if err != nil {
			return "", err
		}
		detailURLs = append(detailURLs, links...)
	}

	// Discovery already drops direct PDF links; filter once more in
	// case an agency hands the orchestrator a pre-built URL list.
	detailURLs = excludeDocumentLinks(detailURLs)

	type detailPage struct {
		url string
		key string
	}
	var pages []detailPage
	for _, pageURL := range detailURLs {
		if err := throttleWait(ctx, s.throttle); err != nil {
			return "", err
		}
		key := s.cacheKey(pageURL)
		if _, err := s.cache.Download(ctx, key, pageURL); err != nil {
			return "", err
		}
		pages = append(pages, detailPage{url: pageURL, key: key})
	}

	metadata := []clean.MetadataRecord{}
	for _, page := range pages {
		records, err := ClassifyDetailPage(s.cache, page.key, page.url)
		if err != nil {
			return "", err
		}
		metadata = append(metadata, records...)
	}

	if repeated := clean.RepeatedAssetURLs(metadata); len(repeated) > 0 {
		log.Info().Str("slug", s.slug).Strs("urls", repeated).Msg("repeated asset URLs in export")
	}

	outfile := filepath.Join(s.dataDir, s.slug+".json")
	if err := s.cache.WriteJSON(outfile, metadata); err != nil {
		return "", err
	}

	log.Info().Str("slug", s.slug).
		Int("detail_pages", len(pages)).
		Int("assets", len(metadata)).
		Msg("scrape complete")

	if s.recorder != nil {
		summary := RunSummary{
			Slug:         s.slug,
			StartedAt:    started,
			FinishedAt:   time.Now(),
			PagesFetched: len(pages),
			AssetsFound:  len(metadata),
			ExportPath:   outfile,
		}
		if err := s.recorder.RecordRun(summary); err != nil {
			// The export is already on disk; a ledger failure should
			// not fail the run.
			log.Warn().Err(err).Str("slug", s.slug).Msg("failed to record run")
		}
	}

	return outfile, nil
}

// throttleWait blocks for the throttle delay, returning early if the
// context is cancelled.
func throttleWait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
