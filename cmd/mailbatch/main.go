// Command mailbatch processes one scanned daily-mail batch: it segments
// the per-page OCR text at separator pages, assigns each document to a
// case file and caseworker, classifies deadlines, splits the batch PDF
// and writes per-caseworker deadline workbooks.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rhm-kanzlei/posteingang/constants"
	"github.com/rhm-kanzlei/posteingang/internal/batch"
	"github.com/rhm-kanzlei/posteingang/internal/common"
	"github.com/rhm-kanzlei/posteingang/internal/export"
	"github.com/rhm-kanzlei/posteingang/internal/ingest"
	"github.com/rhm-kanzlei/posteingang/internal/llm"
	"github.com/rhm-kanzlei/posteingang/internal/llm/openai"
	"github.com/rhm-kanzlei/posteingang/internal/pdfsplit"
	"github.com/rhm-kanzlei/posteingang/internal/pipeline"
	"github.com/rhm-kanzlei/posteingang/internal/recognize"
	"github.com/rhm-kanzlei/posteingang/internal/register"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		pagesDir = flag.String("pages", "", "directory with per-page OCR text files, one .txt per page in page order (required)")
		pdfPath  = flag.String("pdf", "", "scanned batch PDF to split into per-document files (optional)")
		outDir   = flag.String("out", "", "output directory (defaults to EXPORT_DIR)")
		dateStr  = flag.String("date", "", "intake date YYYY-MM-DD (defaults to today)")
		inmem    = flag.Bool("inmem", false, "use an in-memory register instead of the configured store")
	)
	flag.Parse()

	if *pagesDir == "" {
		printError("Error: --pages is required\n")
		os.Exit(1)
	}

	today := time.Now()
	if *dateStr != "" {
		parsed, err := time.Parse("2006-01-02", *dateStr)
		if err != nil {
			printError("Error: invalid --date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		}
		today = parsed
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	batchID := uuid.New().String()
	ctx := common.WithBatchID(context.Background(), batchID)
	logger = logger.With("batch_id", batchID)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *outDir == "" {
		*outDir = cfg.Export.OutputDir
	}

	pages, _, err := ingest.LoadPages(*pagesDir, logger)
	if err != nil {
		logger.Error("failed to load pages", "dir", *pagesDir, "error", err)
		os.Exit(1)
	}

	// Register snapshot
	policy, err := register.ParseMergePolicy(cfg.Recognize.MergePolicy)
	if err != nil {
		logger.Error("invalid merge policy", "error", err)
		os.Exit(1)
	}
	dbCfg := cfg.Database
	if *inmem {
		dbCfg.DSN = ":memory:"
	}
	store, err := register.Open(ctx, dbCfg, policy, logger)
	if err != nil {
		logger.Error("failed to open register store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	snapshot, err := store.TakeSnapshot(ctx)
	if err != nil {
		logger.Error("failed to load register", "error", err)
		os.Exit(1)
	}
	logger.Info("register snapshot taken", "entries", snapshot.Len())

	// Extraction collaborator: hosted model when a key is configured,
	// keyword fallback otherwise.
	var extractor llm.FieldExtractor
	if cfg.LLM.APIKey != "" {
		extractor = openai.NewClient(openai.Config{
			Model:       cfg.LLM.Model,
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		logger.Info("OpenAI client initialized", "model", cfg.LLM.Model)
	} else {
		extractor = llm.NewFallbackExtractor(logger)
		logger.Warn("OpenAI API key not configured, using keyword fallback extraction")
	}

	detector := batch.NewSeparatorDetector(batch.DetectorConfig{
		Marker:        cfg.Intake.SeparatorMarker,
		MinSimilarity: cfg.Intake.MinMarkerSimilarity,
	})
	segmenter := batch.NewSegmenter(detector, logger)
	recognizer := recognize.NewRecognizer(cfg.Recognize.ReferenceLabels, logger)
	resolver := recognize.NewResolver(constants.NameAliases(), logger)
	processor := pipeline.NewProcessor(segmenter, recognizer, resolver, extractor, cfg.Intake.Workers, logger)

	results, manifest, err := processor.Run(ctx, pages, snapshot, today)
	if err != nil {
		logger.Error("batch processing failed", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("failed to create output directory", "dir", *outDir, "error", err)
		os.Exit(1)
	}

	// Split the batch PDF into per-document files when provided.
	if *pdfPath != "" {
		splitter := pdfsplit.NewSplitter(logger)
		if err := splitter.Split(ctx, *pdfPath, *outDir, results, today); err != nil {
			logger.Error("failed to split batch PDF", "error", err)
			os.Exit(1)
		}
	}

	// One workbook per caseworker plus the combined list.
	exportService := export.NewService(logger)
	books, err := exportService.BuildGrouped(results, today, today)
	if err != nil {
		logger.Error("failed to build workbooks", "error", err)
		os.Exit(1)
	}
	written := 0
	for key, book := range books {
		name := fmt.Sprintf("Fristen_%s_%s.xlsx", sanitizeKey(key), today.Format("2006-01-02"))
		path := filepath.Join(*outDir, name)
		if err := os.WriteFile(path, book, 0o644); err != nil {
			logger.Error("failed to write workbook", "path", path, "error", err)
			os.Exit(1)
		}
		written++
	}

	logger.Info("batch complete",
		"pages", manifest.Pages,
		"documents", manifest.Documents,
		"separators", manifest.SeparatorPages,
		"unassigned", manifest.Unassigned,
		"no_case_number", manifest.NoCaseNumber,
		"no_deadline", manifest.NoDeadline,
		"extract_errors", len(manifest.ExtractErrors),
		"workbooks", written,
		"out", *outDir,
	)

	fmt.Printf("Posteingang verarbeitet\n")
	fmt.Printf("- Seiten: %d (davon %d Trennseiten)\n", manifest.Pages, manifest.SeparatorPages)
	fmt.Printf("- Dokumente: %d\n", manifest.Documents)
	fmt.Printf("- Nicht zugeordnet: %d\n", manifest.Unassigned)
	fmt.Printf("- Ohne Frist: %d\n", manifest.NoDeadline)
	fmt.Printf("- Ausgabe: %s\n", *outDir)
	for _, e := range manifest.ExtractErrors {
		fmt.Printf("- Extraktion fehlgeschlagen (Dokument %d): %v\n", e.Index+1, e.Err)
	}
}

// sanitizeKey makes a workbook group key filename-safe (the unassigned
// sentinel and FÜ contain characters worth folding).
func sanitizeKey(key string) string {
	key = strings.ReplaceAll(key, "Ü", "UE")
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
