package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"
)

// IndexPage is one seed the orchestrator starts from: a URL plus the
// rule identifying the part of the page holding genuine detail-page
// links (as opposed to navigation and footer chrome).
type IndexPage struct {
	// URL of the index page.
	URL string

	// Scope is a CSS selector for the container of detail-page links.
	// Empty means the whole document.
	Scope string

	// Feed marks an index published as RSS/Atom instead of HTML;
	// detail URLs then come from the feed items and Scope is ignored.
	Feed bool
}

// DiscoverDetailPages downloads an index page through the cache and
// returns the detail-page URLs it links to, in page order. Stray links
// directly to PDF files are excluded from the result: they show up
// inline on some agencies' index pages but are not detail pages.
// Whether they should instead be treated as direct assets is an open
// question with the agency owners; for now the behavior matches the
// long-standing policy of dropping them.
func (s *Scraper) DiscoverDetailPages(ctx context.Context, index IndexPage) ([]string, error) {
	local, err := s.cache.Download(ctx, s.cacheKey(index.URL), index.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download index page: %w", err)
	}

	body, err := s.cache.Read(local)
	if err != nil {
		return nil, err
	}

	var links []string
	if index.Feed {
		links, err = feedLinks(body)
	} else {
		links, err = ExtractLinks(body, index.URL, index.Scope)
	}
	if err != nil {
		return nil, err
	}

	pages := excludeDocumentLinks(links)
	log.Debug().Str("index", index.URL).Int("detail_pages", len(pages)).Msg("discovered detail pages")
	return pages, nil
}

// feedLinks returns the item links of an RSS or Atom document. gofeed
// detects the format on its own.
func feedLinks(body string) ([]string, error) {
	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	var links []string
	for _, item := range feed.Items {
		if item.Link != "" {
			links = append(links, item.Link)
		}
	}
	return links, nil
}

// excludeDocumentLinks drops URLs that are themselves terminal PDF
// documents; a detail page is never a direct file link.
func excludeDocumentLinks(links []string) []string {
	var out []string
	for _, link := range links {
		if strings.HasSuffix(link, ".pdf") {
			continue
		}
		out = append(out, link)
	}
	return out
}

// cacheKey derives the agency-scoped cache key for a page URL from its
// final path segment, e.g. "ca_ventura_county_sheriff/case-21-1234.html".
func (s *Scraper) cacheKey(pageURL string) string {
	stem := lastPathSegment(pageURL)
	return s.slug + "/" + stem + ".html"
}

func lastPathSegment(pageURL string) string {
	trimmed := strings.TrimRight(pageURL, "/")
	if u, err := url.Parse(trimmed); err == nil && u.Path != "" {
		trimmed = strings.TrimRight(u.Path, "/")
	}
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
