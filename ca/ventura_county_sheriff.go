// Package ca holds the scrapers for California agencies. Each agency
// registers itself with the core registry under its slug.
package ca

import (
	"context"
	"time"

	clean "github.com/biglocalnews/clean-go"
	"github.com/biglocalnews/clean-go/cache"
	"github.com/biglocalnews/clean-go/fetch"
	"github.com/biglocalnews/clean-go/scrape"
)

const (
	venturaName = "Ventura County Sheriff"
	venturaSlug = "ca_ventura_county_sheriff"

	venturaBaseURL = "https://www.venturasheriff.org"

	// The container holding genuine case links on the SB1421 index
	// pages; everything outside it is site chrome.
	venturaIndexScope = `div[data-id="9a80528"]`
)

func init() {
	clean.Register(venturaSlug, venturaName, NewVenturaCountySheriff)
}

// VenturaCountySheriff scrapes SB1421/AB748 disclosure metadata from
// the Ventura County Sheriff's site. The index pages list case detail
// pages, which in turn link to the incident videos, documents, and
// audio.
type VenturaCountySheriff struct {
	scraper *scrape.Scraper
}

// NewVenturaCountySheriff creates the agency's Site rooted at the given
// cache and data directories.
func NewVenturaCountySheriff(cacheDir, dataDir string) (clean.Site, error) {
	pages, err := cache.New(cacheDir, fetch.New())
	if err != nil {
		return nil, err
	}

	indexes := []scrape.IndexPage{
		{URL: venturaBaseURL + "/sb1421/officer-involved-shooting-ois/", Scope: venturaIndexScope},
		{URL: venturaBaseURL + "/sb1421/use-of-force-great-bodily-injury-cases-gbi/", Scope: venturaIndexScope},
	}

	return &VenturaCountySheriff{
		scraper: scrape.New(venturaSlug, pages, dataDir, indexes),
	}, nil
}

// Name returns the official name of the agency.
func (s *VenturaCountySheriff) Name() string { return venturaName }

// Slug returns the agency's stable identifier.
func (s *VenturaCountySheriff) Slug() string { return venturaSlug }

// SetRecorder attaches a run recorder to the underlying scraper.
func (s *VenturaCountySheriff) SetRecorder(r scrape.RunRecorder) {
	s.scraper.SetRecorder(r)
}

// ScrapeMeta gathers metadata on the agency's downloadable files and
// returns the path of the JSON export.
func (s *VenturaCountySheriff) ScrapeMeta(ctx context.Context, throttle time.Duration) (string, error) {
	s.scraper.SetThrottle(throttle)
	return s.scraper.ScrapeMeta(ctx)
}
