// Package export renders batch results into XLSX deadline lists, one
// workbook per caseworker plus a combined one.
package export

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rhm-kanzlei/posteingang/constants"
	"github.com/rhm-kanzlei/posteingang/internal/deadline"
	"github.com/rhm-kanzlei/posteingang/internal/pipeline"
)

const sheetName = "Fristen"

// CombinedKey names the workbook holding every document of the batch.
const CombinedKey = "Gesamt"

var headers = []string{
	"Eingangsdatum",
	"Internes Aktenzeichen",
	"Externes Aktenzeichen",
	"Mandant",
	"Gegner / Absender",
	"Absendertyp",
	"Sachbearbeiter",
	"Fristdatum",
	"Fristtyp",
	"Fristquelle",
	"Textauszug",
	"PDF-Datei",
	"Status",
}

// Row fill colors by urgency. Normal and no-deadline rows stay unstyled.
var urgencyFills = map[deadline.Urgency]string{
	deadline.UrgencyCritical:  "FF6B6B",
	deadline.UrgencyImportant: "FFA500",
	deadline.UrgencyUpcoming:  "FFF3BF",
}

// Service produces XLSX bytes from finalized document results.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// BuildWorkbook renders one workbook for the given results. receivedAt is
// the batch intake date shown in the first column; today anchors the row
// ordering (most urgent first, then by deadline date, then batch order).
func (s *Service) BuildWorkbook(results []pipeline.DocumentResult, receivedAt, today time.Time) ([]byte, error) {
	start := time.Now()

	ordered := make([]pipeline.DocumentResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := urgencyRank(ordered[i].Urgency), urgencyRank(ordered[j].Urgency)
		if ri != rj {
			return ri < rj
		}
		if ordered[i].Deadline.HasDate() && ordered[j].Deadline.HasDate() {
			return ordered[i].Deadline.Date.Before(ordered[j].Deadline.Date)
		}
		return ordered[i].Index < ordered[j].Index
	})

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}
	_ = f.SetCellStyle(sheetName, "A1", "M1", headerStyle)

	fillStyles := make(map[deadline.Urgency]int, len(urgencyFills))
	for urgency, color := range urgencyFills {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return nil, fmt.Errorf("fill style: %w", err)
		}
		fillStyles[urgency] = style
	}

	row := 2
	for _, r := range ordered {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}

		write(1, receivedAt.Format("02.01.2006"))
		write(2, caseNumberCell(r))
		write(3, strings.Join(r.ExternalNumbers, "; "))
		write(4, r.Client)
		write(5, r.Opponent)
		write(6, r.SenderType)
		write(7, constants.CaseworkerName(r.Assignment.Code))
		if r.Deadline.HasDate() {
			write(8, r.Deadline.Date.Format("02.01.2006"))
			write(10, string(r.Deadline.Source))
		}
		write(9, string(r.Urgency))
		write(11, r.TextExcerpt)
		write(12, r.PDFFileName)
		write(13, "Neu")

		if style, ok := fillStyles[r.Urgency]; ok {
			first, _ := excelize.CoordinatesToCellName(1, row)
			last, _ := excelize.CoordinatesToCellName(len(headers), row)
			_ = f.SetCellStyle(sheetName, first, last, style)
		}
		row++
	}

	_ = f.SetColWidth(sheetName, "A", "A", 13)
	_ = f.SetColWidth(sheetName, "B", "C", 20)
	_ = f.SetColWidth(sheetName, "D", "E", 24)
	_ = f.SetColWidth(sheetName, "F", "G", 18)
	_ = f.SetColWidth(sheetName, "H", "J", 13)
	_ = f.SetColWidth(sheetName, "K", "K", 60)
	_ = f.SetColWidth(sheetName, "L", "L", 44)
	_ = f.SetColWidth(sheetName, "M", "M", 10)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(ordered),
		"reference_date", today.Format("2006-01-02"),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// BuildGrouped renders one workbook per assigned caseworker plus the
// combined workbook under CombinedKey. Unassigned documents appear in
// their own group keyed by the sentinel, and always in the combined book.
func (s *Service) BuildGrouped(results []pipeline.DocumentResult, receivedAt, today time.Time) (map[string][]byte, error) {
	out := make(map[string][]byte)

	for code, group := range pipeline.ByCaseworker(results) {
		book, err := s.BuildWorkbook(group, receivedAt, today)
		if err != nil {
			return nil, fmt.Errorf("workbook %s: %w", code, err)
		}
		out[code] = book
	}

	combined, err := s.BuildWorkbook(results, receivedAt, today)
	if err != nil {
		return nil, fmt.Errorf("combined workbook: %w", err)
	}
	out[CombinedKey] = combined
	return out, nil
}

func caseNumberCell(r pipeline.DocumentResult) string {
	if !r.CaseNumberFound {
		return ""
	}
	if r.CaseNumber.Suffix != "" {
		return r.CaseNumber.Stem + " " + r.CaseNumber.Suffix
	}
	return r.CaseNumber.Stem
}

func urgencyRank(u deadline.Urgency) int {
	switch u {
	case deadline.UrgencyCritical:
		return 0
	case deadline.UrgencyImportant:
		return 1
	case deadline.UrgencyUpcoming:
		return 2
	case deadline.UrgencyNormal:
		return 3
	default:
		return 4
	}
}
