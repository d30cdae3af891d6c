package batch

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/rhm-kanzlei/posteingang/internal/common"
)

// Segmenter partitions the ordered page sequence into documents at
// separator pages. Single linear pass, page order preserved.
type Segmenter struct {
	detector *SeparatorDetector
	logger   *slog.Logger
}

func NewSegmenter(detector *SeparatorDetector, logger *slog.Logger) *Segmenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Segmenter{detector: detector, logger: logger}
}

// Segment splits pages into documents. Separator pages are excluded from
// document content; the code read from a separator propagates to the
// document that follows it. Consecutive separators collapse (no empty
// document), and the last code seen wins for the next document. A batch
// without separators yields exactly one document.
func (s *Segmenter) Segment(pages []Page) ([]Document, []int, error) {
	if len(pages) == 0 {
		return nil, nil, common.NewAppError("SEGMENT_EMPTY", "batch contains no pages", common.ErrEmptyBatch)
	}

	var (
		docs        []Document
		current     []Page
		currentCode string
		separators  []int
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		docs = append(docs, Document{
			ID:                   uuid.New(),
			Pages:                current,
			SourceCaseworkerCode: currentCode,
		})
		current = nil
	}

	for _, page := range pages {
		marker := s.detector.Detect(page.Text)
		if marker.IsSeparator {
			separators = append(separators, page.Index)
			flush()
			currentCode = marker.CaseworkerCode
			continue
		}
		current = append(current, page)
	}
	flush()

	s.logger.Debug("segment.done",
		"pages", len(pages),
		"separators", len(separators),
		"documents", len(docs),
	)
	return docs, separators, nil
}
