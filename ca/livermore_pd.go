package ca

import (
	"context"
	"time"

	clean "github.com/biglocalnews/clean-go"
	"github.com/biglocalnews/clean-go/cache"
	"github.com/biglocalnews/clean-go/config"
	"github.com/biglocalnews/clean-go/fetch"
	"github.com/biglocalnews/clean-go/scrape"
)

const (
	livermoreName = "Livermore Police Department"
	livermoreSlug = "ca_livermore_pd"

	// Initial disclosure page on MuckRock. It lists the detail (child)
	// pages carrying the SB16/SB1421/AB748 videos and files.
	livermoreBaseURL = "https://www.muckrock.com/foi/livermore-3295/2023-sb1421sb16-request-livermore-police-department-140174"

	livermoreIndexScope = `div.communications`
)

func init() {
	clean.Register(livermoreSlug, livermoreName, NewLivermorePD)
}

// LivermorePD scrapes SB16/SB1421/AB748 disclosure metadata for the
// Livermore Police Department, published through MuckRock. Some of the
// request's pages are embargoed; when a MUCKROCK_API_KEY credential is
// available it is sent as an API token to reach them.
type LivermorePD struct {
	scraper *scrape.Scraper
}

// NewLivermorePD creates the agency's Site rooted at the given cache
// and data directories.
func NewLivermorePD(cacheDir, dataDir string) (clean.Site, error) {
	opts := []fetch.Option{}
	if key := config.Credential("MUCKROCK_API_KEY", ""); key != "" {
		opts = append(opts, fetch.WithHeader("Authorization", "Token "+key))
	}

	pages, err := cache.New(cacheDir, fetch.New(opts...))
	if err != nil {
		return nil, err
	}

	indexes := []scrape.IndexPage{
		{URL: livermoreBaseURL, Scope: livermoreIndexScope},
	}

	return &LivermorePD{
		scraper: scrape.New(livermoreSlug, pages, dataDir, indexes),
	}, nil
}

// Name returns the official name of the agency.
func (s *LivermorePD) Name() string { return livermoreName }

// Slug returns the agency's stable identifier.
func (s *LivermorePD) Slug() string { return livermoreSlug }

// SetRecorder attaches a run recorder to the underlying scraper.
func (s *LivermorePD) SetRecorder(r scrape.RunRecorder) {
	s.scraper.SetRecorder(r)
}

// ScrapeMeta gathers metadata on the agency's downloadable files and
// returns the path of the JSON export.
func (s *LivermorePD) ScrapeMeta(ctx context.Context, throttle time.Duration) (string, error) {
	s.scraper.SetThrottle(throttle)
	return s.scraper.ScrapeMeta(ctx)
}
