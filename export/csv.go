// Package export writes metadata records in formats downstream
// consumers ask for beyond the canonical JSON export.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	clean "github.com/biglocalnews/clean-go"
)

// csvHeaders is the column order of metadata CSV exports.
var csvHeaders = []string{"asset_url", "case_id", "name", "parent_page", "title"}

// WriteCSV writes records as comma-separated values to path, creating
// parent directories and overwriting any previous file. The Details
// mapping is not flattened into columns; consumers who need it use the
// JSON export.
func WriteCSV(path string, records []clean.MetadataRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeaders); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.AssetURL, rec.CaseID, rec.Name, rec.ParentPage, rec.Title}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	log.Debug().Str("path", path).Int("rows", len(records)).Msg("wrote CSV")
	return nil
}
