// Package scrape implements the extraction pipeline shared by every
// agency scraper: discover detail pages from index pages, download them
// through the page cache, and classify each detail page's links into
// asset metadata records.
package scrape

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// ExtractLinks returns the target URLs of every anchor in the document,
// in document order, resolved against baseURL. When scope is a non-empty
// CSS selector the search is restricted to the first matching element;
// a selector that matches nothing yields an empty result rather than an
// error, since a changed page layout is a condition scrapers recover
// from. Duplicate URLs are preserved.
func ExtractLinks(html, baseURL, scope string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	root := doc.Selection
	if scope != "" {
		scoped := doc.Find(scope).First()
		if scoped.Length() == 0 {
			log.Warn().Str("scope", scope).Str("base_url", baseURL).
				Msg("scope selector matched nothing; page layout may have changed")
			return nil, nil
		}
		root = scoped
	}

	var links []string
	root.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			log.Debug().Str("href", href).Msg("skipping unparseable href")
			return
		}
		links = append(links, base.ResolveReference(ref).String())
	})
	return links, nil
}

// anchorText returns an anchor's visible text, trimmed with embedded
// newlines removed.
func anchorText(a *goquery.Selection) string {
	text := strings.TrimSpace(a.Text())
	text = strings.ReplaceAll(text, "\n", "")
	return strings.ReplaceAll(text, "\r", "")
}
