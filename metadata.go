package clean

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrRelativeAssetURL indicates an asset URL that is missing a scheme or
// host and therefore cannot be fetched on its own.
var ErrRelativeAssetURL = errors.New("asset URL is not absolute")

// MetadataRecord describes one disclosable asset discovered on a detail
// page: a PDF document, a YouTube video, or an audio file.
type MetadataRecord struct {
	// Title is the heading of the detail page the asset was found on.
	// "No title found" when the page has no level-1 heading.
	Title string `json:"title"`

	// ParentPage identifies the detail page containing the link, as a
	// cache-relative path.
	ParentPage string `json:"parent_page"`

	// AssetURL is the absolute URL of the asset with embedded newlines
	// stripped.
	AssetURL string `json:"asset_url"`

	// Name is the anchor's visible text, trimmed and newline-stripped.
	// May be empty.
	Name string `json:"name"`

	// CaseID is the agency-specific case identifier, when one can be
	// derived from the page or URL path.
	CaseID string `json:"case_id,omitempty"`

	// Details holds free-form extra fields set by individual scrapers.
	Details map[string]string `json:"details,omitempty"`
}

// Validate reports whether the record is fit to be added to an export.
// The only hard requirement is an absolute asset URL; everything else,
// including an empty Name, is permitted.
func (r MetadataRecord) Validate() error {
	if r.AssetURL == "" {
		return errors.New("asset URL is empty")
	}
	u, err := url.Parse(r.AssetURL)
	if err != nil {
		return fmt.Errorf("invalid asset URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrRelativeAssetURL, r.AssetURL)
	}
	return nil
}

// StripNewlines removes embedded newline characters. Asset URLs and
// anchor names scraped from pretty-printed HTML frequently carry them.
func StripNewlines(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	return strings.ReplaceAll(s, "\r", "")
}

// RepeatedAssetURLs returns the set of asset URLs that appear more than
// once in the given records. Duplicates are not an error, but scrapers
// log them so agency owners can spot pages that link the same file twice.
func RepeatedAssetURLs(records []MetadataRecord) []string {
	seen := map[string]bool{}
	repeated := map[string]bool{}
	var out []string
	for _, r := range records {
		if seen[r.AssetURL] && !repeated[r.AssetURL] {
			repeated[r.AssetURL] = true
			out = append(out, r.AssetURL)
		}
		seen[r.AssetURL] = true
	}
	return out
}
