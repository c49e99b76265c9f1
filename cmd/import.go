/*
Copyright © 2025 delphiknight
*/

// The import command downloads external files into local asset storage and
// rewrites document content to reference the local copies.
//
// Features:
//   - Import a single file with --id and --url.
//   - Import everything a scan finds with --all, optionally rate limited.
//   - Already-imported files are skipped, dead links are recorded so later
//     scans stop reporting them.
//
// Example usage:
//
//	mediaport import --id=123 --url=https://cdn.example.com/photo.jpg
//	mediaport import --all --rate=2
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/delphiknight/mediaport/internal/core"
	"github.com/delphiknight/mediaport/internal/core/db"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Download external files and rewrite documents to use them",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runImport(cmd); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
	},
}

func runImport(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	database, err := initDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return fmt.Errorf("failed to read --id: %w", err)
	}
	rawURL, err := cmd.Flags().GetString("url")
	if err != nil {
		return fmt.Errorf("failed to read --url: %w", err)
	}
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fmt.Errorf("failed to read --all: %w", err)
	}
	rateLimit, err := cmd.Flags().GetFloat64("rate")
	if err != nil {
		return fmt.Errorf("failed to read --rate: %w", err)
	}
	if rateLimit == 0 {
		rateLimit = cfg.Import.RateLimit
	}

	opts := importOptions(cfg)
	ctx := context.Background()

	if !all {
		if id == 0 || rawURL == "" {
			return fmt.Errorf("either --all, or both --id and --url, are required")
		}
		result, err := core.ImportFile(ctx, database, id, rawURL, opts)
		printImportResult(rawURL, result, err)
		return err
	}

	progress, err := core.StartScan(database, scanConfig(cfg))
	if err != nil {
		return err
	}
	if err := core.RunScan(database, progress, scanConfig(cfg), nil); err != nil {
		return err
	}

	var limiter *rate.Limiter
	if rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(rateLimit), 1)
	}

	var succeeded, skipped, failed int
	for _, scanned := range progress.Results {
		for _, candidate := range scanned.Files {
			if !candidate.Actionable() {
				continue
			}
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
			}
			result, err := core.ImportFile(ctx, database, scanned.DocumentID, candidate.URL, opts)
			printImportResult(candidate.URL, result, err)
			switch {
			case err != nil:
				failed++
			case result.Status == db.StatusSuccess:
				succeeded++
			default:
				skipped++
			}
		}
	}

	log.Printf("Import finished: %d succeeded, %d skipped, %d failed", succeeded, skipped, failed)
	if failed > 0 {
		return fmt.Errorf("import finished with %d failure(s)", failed)
	}
	return nil
}

func printImportResult(url string, result core.ImportResult, err error) {
	switch {
	case err != nil:
		color.Red("  error     %s: %v", url, err)
	case result.Status == db.StatusSuccess:
		color.Green("  imported  %s -> %s", url, result.AssetURL)
	default:
		color.Yellow("  skipped   %s: %s", url, result.Message)
	}
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Int64("id", 0, "Document id owning the file")
	importCmd.Flags().String("url", "", "External file URL to import")
	importCmd.Flags().Bool("all", false, "Scan everything and import every pending file")
	importCmd.Flags().Float64("rate", 0, "Maximum downloads per second (0 = unlimited)")
}
