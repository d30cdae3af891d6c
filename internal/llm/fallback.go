package llm

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/rhm-kanzlei/posteingang/constants"
)

// deadlinePhrasePattern finds deadline wording followed by a German date,
// e.g. "Frist bis zum 12.09.2026" or "Stellungnahme bis 1.9.2026".
var deadlinePhrasePattern = regexp.MustCompile(
	`(?i)(frist|stellungnahme|zahlung|einspruch|widerspruch|äußerung)[^\n]{0,60}?bis(?:\s+zum)?\s+(\d{1,2}\.\d{1,2}\.\d{4})`)

// senderTypeHints maps body keywords to sender types, checked in order.
// Courts quote their docket prominently, so court words come first.
var senderTypeHints = []struct {
	keyword string
	t       constants.SenderType
}{
	{"amtsgericht", constants.SenderCourt},
	{"landgericht", constants.SenderCourt},
	{"oberlandesgericht", constants.SenderCourt},
	{"staatsanwaltschaft", constants.SenderCourt},
	{"versicherung", constants.SenderInsurer},
	{"krankenkasse", constants.SenderInsurer},
	{"finanzamt", constants.SenderAuthority},
	{"jobcenter", constants.SenderAuthority},
	{"behörde", constants.SenderAuthority},
	{"stadt ", constants.SenderAuthority},
}

// FallbackExtractor is a FieldExtractor that never calls a model: sender
// type by keyword, deadline by phrase pattern. Used when no API key is
// configured and as the safety net when the provider fails.
type FallbackExtractor struct {
	logger *slog.Logger
}

func NewFallbackExtractor(logger *slog.Logger) *FallbackExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackExtractor{logger: logger}
}

func (f *FallbackExtractor) ExtractFields(_ context.Context, req ExtractRequest) (DocumentFields, []byte, error) {
	var out DocumentFields
	lower := strings.ToLower(req.DocumentText)

	for _, hint := range senderTypeHints {
		if strings.Contains(lower, hint.keyword) {
			out.SenderType = string(hint.t)
			break
		}
	}

	if match := deadlinePhrasePattern.FindStringSubmatch(req.DocumentText); match != nil {
		if iso, ok := toISODate(match[2]); ok {
			out.DeadlineDate = iso
			out.DeadlineDescription = strings.TrimSpace(match[0])
			out.DeadlineInferred = true
		}
	}

	if hint := strings.TrimSpace(req.CaseNumberHint); hint != "" {
		out.InternalCaseNumber = hint
	}

	f.logger.Debug("llm.fallback.done",
		slog.String("sender_type", out.SenderType),
		slog.Bool("deadline_found", out.DeadlineDate != ""))
	return out, nil, nil
}
