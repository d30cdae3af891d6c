// Command registerctl manages the persisted case register: import an XLSX
// register upload, list the stored records, check store health.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rhm-kanzlei/posteingang/internal/common"
	"github.com/rhm-kanzlei/posteingang/internal/register"
)

func main() {
	var (
		importPath = flag.String("import", "", "XLSX register file to merge into the store")
		policyStr  = flag.String("policy", "", "merge policy override: latest-wins or first-wins")
		list       = flag.Bool("list", false, "print the stored register")
		health     = flag.Bool("health", false, "check store connectivity and exit")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if *policyStr == "" {
		*policyStr = cfg.Recognize.MergePolicy
	}
	policy, err := register.ParseMergePolicy(*policyStr)
	if err != nil {
		logger.Error("invalid merge policy", "error", err)
		os.Exit(1)
	}

	store, err := register.Open(ctx, cfg.Database, policy, logger)
	if err != nil {
		logger.Error("failed to open register store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *health:
		if err := store.HealthCheck(ctx, 5*time.Second); err != nil {
			logger.Error("health check failed", "error", err)
			os.Exit(1)
		}
		fmt.Println("ok")

	case *importPath != "":
		records, skipped, err := register.LoadXLSX(*importPath, logger)
		if err != nil {
			logger.Error("failed to read register file", "path", *importPath, "error", err)
			os.Exit(1)
		}
		stats, err := store.Merge(ctx, records)
		if err != nil {
			logger.Error("merge failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Register aktualisiert (%s)\n", policy)
		fmt.Printf("- Neu: %d\n", stats.Added)
		fmt.Printf("- Aktualisiert: %d\n", stats.Updated)
		fmt.Printf("- Unverändert: %d\n", stats.Carried)
		fmt.Printf("- Übersprungen: %d (davon %d ohne Aktenzeichen in der Datei)\n", stats.Skipped, skipped)

	case *list:
		records, err := store.Load(ctx)
		if err != nil {
			logger.Error("failed to load register", "error", err)
			os.Exit(1)
		}
		for _, r := range records {
			fmt.Printf("%-10s %-4s %s\n", r.Stem, r.CaseworkerCode, r.Label)
		}
		fmt.Printf("%d Einträge\n", len(records))

	default:
		flag.Usage()
		os.Exit(2)
	}
}
