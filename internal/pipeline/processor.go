// Package pipeline coordinates one batch run: segmentation, per-document
// recognition and extraction, deadline classification.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rhm-kanzlei/posteingang/constants"
	"github.com/rhm-kanzlei/posteingang/internal/batch"
	"github.com/rhm-kanzlei/posteingang/internal/common"
	"github.com/rhm-kanzlei/posteingang/internal/deadline"
	"github.com/rhm-kanzlei/posteingang/internal/llm"
	"github.com/rhm-kanzlei/posteingang/internal/recognize"
	"github.com/rhm-kanzlei/posteingang/internal/register"
)

// Processor runs a mail batch end to end. Segmentation is sequential;
// per-document work fans out over a bounded worker group. The register
// snapshot is taken once per run and only read after that.
type Processor struct {
	logger     *slog.Logger
	segmenter  *batch.Segmenter
	recognizer *recognize.Recognizer
	resolver   *recognize.Resolver
	extractor  llm.FieldExtractor // nil disables the extraction stage
	workers    int
}

func NewProcessor(
	segmenter *batch.Segmenter,
	recognizer *recognize.Recognizer,
	resolver *recognize.Resolver,
	extractor llm.FieldExtractor,
	workers int,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 4
	}
	return &Processor{
		logger:     logger,
		segmenter:  segmenter,
		recognizer: recognizer,
		resolver:   resolver,
		extractor:  extractor,
		workers:    workers,
	}
}

// Run processes one batch of OCR pages against a register snapshot.
// Today anchors deadline classification. Per-document extraction failures
// are isolated into the manifest; only structural failures (an empty
// batch) abort the run.
func (p *Processor) Run(ctx context.Context, pages []batch.Page, snapshot *register.Snapshot, today time.Time) ([]DocumentResult, RunManifest, error) {
	start := time.Now()

	docs, separatorPages, err := p.segmenter.Segment(pages)
	if err != nil {
		return nil, RunManifest{}, err
	}

	results := make([]DocumentResult, len(docs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.workers)
	for i := range docs {
		eg.Go(func() error {
			results[i] = p.processDocument(egCtx, i, &docs[i], snapshot, today)
			return nil
		})
	}
	// Workers never return errors; failures land in the results. Wait
	// still propagates context cancellation handled inside the workers.
	_ = eg.Wait()

	manifest := RunManifest{
		Pages:          len(pages),
		SeparatorPages: len(separatorPages),
		Documents:      len(docs),
	}
	for i := range results {
		r := &results[i]
		if r.Assignment.Code == constants.Unassigned {
			manifest.Unassigned++
		}
		if !r.CaseNumberFound {
			manifest.NoCaseNumber++
		}
		if r.Urgency == deadline.UrgencyNone {
			manifest.NoDeadline++
		}
		if r.ExtractErr != nil {
			manifest.ExtractErrors = append(manifest.ExtractErrors, DocumentError{Index: i, Err: r.ExtractErr})
		}
	}

	p.logger.Info("pipeline.run.ok",
		"batch_id", common.BatchIDFromContext(ctx),
		"pages", manifest.Pages,
		"documents", manifest.Documents,
		"separators", manifest.SeparatorPages,
		"unassigned", manifest.Unassigned,
		"no_deadline", manifest.NoDeadline,
		"extract_errors", len(manifest.ExtractErrors),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return results, manifest, nil
}

func (p *Processor) processDocument(ctx context.Context, index int, doc *batch.Document, snapshot *register.Snapshot, today time.Time) DocumentResult {
	text := doc.Text()
	result := DocumentResult{
		Index:       index,
		DocumentID:  doc.ID,
		PageIndexes: doc.PageIndexes(),
		TextExcerpt: excerpt(text, 200),
	}

	cand, found := p.recognizer.Recognize(text, snapshot)
	result.CaseNumber = cand
	result.CaseNumberFound = found
	result.ExternalNumbers = recognize.ExternalNumbers(text)

	var candPtr *recognize.Candidate
	if found {
		candPtr = &cand
	}
	result.Assignment = p.resolver.Resolve(text, candPtr, snapshot, doc.SourceCaseworkerCode)

	var labelHint string
	if found && snapshot != nil {
		if rec, ok := snapshot.Lookup(cand.Stem); ok {
			labelHint = rec.Label
			result.Client, result.Opponent = register.SplitLabel(rec.Label)
			if result.Opponent == "" {
				result.Opponent = rec.Opponent
			}
		}
	}

	if p.extractor != nil {
		p.extract(ctx, &result, text, labelHint, today)
	}

	result.Urgency = deadline.Classify(result.Deadline, today)

	p.logger.Debug("pipeline.document.done",
		"index", index,
		"document_id", doc.ID.String(),
		"stem", result.CaseNumber.Stem,
		"caseworker", result.Assignment.Code,
		"urgency", string(result.Urgency),
	)
	return result
}

// extract runs the AI collaborator and folds its fields into the result.
// Deterministic recognition always wins over model output; the model only
// fills gaps.
func (p *Processor) extract(ctx context.Context, result *DocumentResult, text, labelHint string, today time.Time) {
	var caseHint string
	if result.CaseNumberFound {
		caseHint = result.CaseNumber.Stem
		if result.CaseNumber.Suffix != "" {
			caseHint += " " + result.CaseNumber.Suffix
		}
	}

	fields, raw, err := p.extractor.ExtractFields(ctx, llm.ExtractRequest{
		DocumentText:   text,
		CaseNumberHint: caseHint,
		CaseLabelHint:  labelHint,
		SenderTypes:    constants.SenderTypesAsStrings(),
		ReferenceDate:  today.Format("2006-01-02"),
	})
	if err != nil {
		result.ExtractErr = err
		p.logger.Warn("pipeline.extract.failed", "index", result.Index, "error", err)
		return
	}
	result.ExtractJSON = raw

	if result.Client == "" {
		result.Client = fields.Client
	}
	if result.Opponent == "" {
		result.Opponent = fields.Opponent
	}
	result.SenderType = fields.SenderType
	result.Keywords = fields.Keywords

	if date, ok := deadline.ParseDate(fields.DeadlineDate); ok {
		source := deadline.SourceExtracted
		if fields.DeadlineInferred {
			source = deadline.SourceInferred
		}
		result.Deadline = deadline.Deadline{
			Date:        date,
			Description: fields.DeadlineDescription,
			Source:      source,
		}
	}
}

// excerpt returns the first n runes of s on a single line.
func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
