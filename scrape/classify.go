package scrape

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	clean "github.com/biglocalnews/clean-go"
	"github.com/biglocalnews/clean-go/cache"
)

// NoTitleSentinel is recorded when a detail page has no level-1 heading.
const NoTitleSentinel = "No title found"

// AssetKind labels the type of a classified asset link.
type AssetKind string

const (
	KindPDF     AssetKind = "pdf"
	KindYouTube AssetKind = "youtube"
	KindAudio   AssetKind = "audio"
)

// assetRules is the ordered classification table applied to anchor
// targets. First match wins; anything unmatched is a non-asset link
// (navigation, mailto, other pages) and produces no record.
var assetRules = []struct {
	kind  AssetKind
	match func(href string) bool
}{
	{KindPDF, func(href string) bool { return strings.HasSuffix(href, ".pdf") }},
	{KindYouTube, func(href string) bool {
		return strings.Contains(href, "youtu.be") || strings.Contains(href, "youtube.com")
	}},
	{KindAudio, func(href string) bool { return strings.Contains(href, ".mp3") }},
}

// ClassifyLink applies the asset rule table to a single href. The
// second return is false for non-asset links.
func ClassifyLink(href string) (AssetKind, bool) {
	for _, rule := range assetRules {
		if rule.match(href) {
			return rule.kind, true
		}
	}
	return "", false
}

// IsYouTubePlaylist reports whether a YouTube URL points at a playlist
// rather than a single video.
func IsYouTubePlaylist(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Query().Has("list") {
		return true
	}
	return strings.Contains(u.Path, "/playlist")
}

// ClassifyDetailPage reads a cached detail page and returns one
// MetadataRecord per asset link it contains, in document order. The
// page title comes from the first h1, falling back to NoTitleSentinel.
// pageURL is the page's original URL; relative asset hrefs are resolved
// against it so every emitted record carries an absolute URL. A page
// with no qualifying links yields an empty slice, which is a normal
// outcome, not an error.
func ClassifyDetailPage(c *cache.Cache, localRef, pageURL string) ([]clean.MetadataRecord, error) {
	html, err := c.Read(localRef)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse detail page %s: %w", localRef, err)
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = NoTitleSentinel
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}

	var records []clean.MetadataRecord
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		href = clean.StripNewlines(href)
		kind, ok := ClassifyLink(href)
		if !ok {
			return
		}

		assetURL := href
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			assetURL = base.ResolveReference(ref).String()
		}

		rec := clean.MetadataRecord{
			Title:      title,
			ParentPage: localRef,
			AssetURL:   assetURL,
			Name:       anchorText(a),
		}
		if kind == KindYouTube && IsYouTubePlaylist(assetURL) {
			rec.Details = map[string]string{"youtube_playlist": "true"}
		}
		if err := rec.Validate(); err != nil {
			log.Warn().Err(err).Str("page", localRef).Msg("dropping asset link")
			return
		}
		records = append(records, rec)
	})

	return records, nil
}
