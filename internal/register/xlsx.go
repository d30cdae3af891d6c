package register

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

// registerSheet is the sheet name the office's aktenregister workbook uses.
const registerSheet = "akten"

// LoadXLSX reads a case-register workbook. It looks for the "akten" sheet
// (falling back to the first sheet) and locates the header row by the
// "Akte" column; the register template carries a blank row above the
// headers. Rows without a stem are skipped and counted, never fatal.
func LoadXLSX(path string, logger *slog.Logger) ([]CaseRecord, int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open register workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Warn("register.xlsx.close_error", "error", cerr)
		}
	}()

	sheet := registerSheet
	if idx, _ := f.GetSheetIndex(sheet); idx == -1 {
		sheet = f.GetSheetName(0)
		logger.Warn("register.xlsx.sheet_fallback", "wanted", registerSheet, "using", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, 0, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	headerIdx, cols := findHeader(rows)
	if headerIdx < 0 {
		return nil, 0, fmt.Errorf("sheet %q has no recognizable header row", sheet)
	}

	var (
		records []CaseRecord
		skipped int
	)
	for _, row := range rows[headerIdx+1:] {
		rec := CaseRecord{
			Stem:           cell(row, cols.stem),
			CaseworkerCode: cell(row, cols.caseworker),
			Label:          cell(row, cols.label),
			Opponent:       cell(row, cols.opponent),
			Type:           cell(row, cols.kind),
		}
		if !rec.Normalize() {
			if rowHasContent(row) {
				skipped++
			}
			continue
		}
		records = append(records, rec)
	}

	logger.Info("register.xlsx.loaded", "path", path, "rows", len(records), "skipped", skipped)
	return records, skipped, nil
}

type columnMap struct {
	stem, caseworker, label, opponent, kind int
}

// findHeader scans for the row carrying the register column names. Column
// titles vary between exports ("SB" vs "Sachbearbeiter"), so matching is
// tolerant.
func findHeader(rows [][]string) (int, columnMap) {
	for i, row := range rows {
		cols := columnMap{stem: -1, caseworker: -1, label: -1, opponent: -1, kind: -1}
		for j, h := range row {
			switch normalizeHeader(h) {
			case "akte", "aktenzeichen", "akt":
				cols.stem = j
			case "sb", "sachbearbeiter", "bearbeiter":
				cols.caseworker = j
			case "kurzbez", "kurzbezeichnung":
				cols.label = j
			case "gegner":
				cols.opponent = j
			case "art":
				cols.kind = j
			}
		}
		if cols.stem >= 0 {
			return i, cols
		}
	}
	return -1, columnMap{}
}

func normalizeHeader(h string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(h)), ".")
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func rowHasContent(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}
