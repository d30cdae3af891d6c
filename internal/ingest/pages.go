// Package ingest loads a scanned batch's per-page OCR text from disk.
package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rhm-kanzlei/posteingang/internal/batch"
)

// Stats aggregates one directory load.
type Stats struct {
	Scanned int // directory entries seen
	Matched int // .txt page files
	Loaded  int
	Skipped int // non-page entries (subdirs, other extensions, hidden files)
}

// LoadPages reads the per-page text files of a batch from dir, sorted by
// file name so page order matches scan order. Scanner sidecar files are
// named with zero-padded page numbers, so lexical order is page order.
func LoadPages(dir string, logger *slog.Logger) ([]batch.Page, Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(dir) == "" {
		return nil, Stats{}, errors.New("pages directory is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read pages dir: %w", err)
	}

	var stats Stats
	var names []string
	for _, e := range entries {
		stats.Scanned++
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") ||
			!strings.HasSuffix(strings.ToLower(e.Name()), ".txt") {
			stats.Skipped++
			continue
		}
		stats.Matched++
		names = append(names, e.Name())
	}
	sort.Strings(names)

	pages := make([]batch.Page, 0, len(names))
	for i, name := range names {
		text, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, stats, fmt.Errorf("read page %s: %w", name, err)
		}
		pages = append(pages, batch.Page{Index: i, Text: string(text)})
		stats.Loaded++
	}

	logger.Info("ingest.pages.ok",
		"dir", dir,
		"scanned", stats.Scanned,
		"loaded", stats.Loaded,
		"skipped", stats.Skipped,
	)
	return pages, stats, nil
}
