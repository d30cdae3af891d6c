package pdfsplit

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"

	"github.com/rhm-kanzlei/posteingang/internal/pipeline"
)

// Splitter writes one PDF per document result, trimmed from the scanned
// batch file.
type Splitter struct {
	logger *slog.Logger
	conf   *model.Configuration
}

func NewSplitter(logger *slog.Logger) *Splitter {
	if logger == nil {
		logger = slog.Default()
	}
	// Scanner output is frequently out of spec; validate relaxed.
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Splitter{logger: logger, conf: conf}
}

// PageCount returns the number of pages in the batch PDF.
func (s *Splitter) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("page count %s: %w", path, err)
	}
	return n, nil
}

// Split writes each document's pages into outDir and records the archive
// filename on the result. Documents are cut concurrently; the batch PDF is
// only read. receivedAt feeds the archival filename.
func (s *Splitter) Split(ctx context.Context, batchPath, outDir string, results []pipeline.DocumentResult, receivedAt time.Time) error {
	start := time.Now()

	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for i := range results {
		eg.Go(func() error {
			r := &results[i]
			if len(r.PageIndexes) == 0 {
				return nil
			}
			name := ArchiveFileName(caseNumberPart(r), r.Client, r.Opponent, receivedAt, r.Keywords)
			selection := PageSelection(r.PageIndexes)
			outPath := filepath.Join(outDir, name)
			if err := api.TrimFile(batchPath, outPath, selection, s.conf); err != nil {
				return fmt.Errorf("trim document %d (%s): %w", r.Index, strings.Join(selection, ","), err)
			}
			r.PDFFileName = name
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	s.logger.Info("pdfsplit.ok",
		"batch", batchPath,
		"documents", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func caseNumberPart(r *pipeline.DocumentResult) string {
	if !r.CaseNumberFound {
		return ""
	}
	if r.CaseNumber.Suffix != "" {
		return r.CaseNumber.Stem + " " + r.CaseNumber.Suffix
	}
	return r.CaseNumber.Stem
}

// PageSelection converts 0-based page indexes into the 1-based range
// notation pdfcpu expects, e.g. [0 1 2 4] -> ["1-3" "5"].
func PageSelection(indexes []int) []string {
	if len(indexes) == 0 {
		return nil
	}
	var out []string
	rangeStart := indexes[0]
	prev := indexes[0]
	flush := func() {
		if rangeStart == prev {
			out = append(out, strconv.Itoa(rangeStart+1))
		} else {
			out = append(out, fmt.Sprintf("%d-%d", rangeStart+1, prev+1))
		}
	}
	for _, idx := range indexes[1:] {
		if idx != prev+1 {
			flush()
			rangeStart = idx
		}
		prev = idx
	}
	flush()
	return out
}
