/*
Copyright © 2025 delphiknight
*/

// The scan command walks stored documents looking for externally hosted
// files that match the configured extensions.
//
// Features:
//   - Full scans run in batches and write a progress file after every batch,
//     so an interrupted scan picks up where it left off with --resume.
//   - Quick scans check a single document by --id or by --url.
//   - Candidates already imported or known dead are reported as resolved.
//
// Example usage:
//
//	mediaport scan
//	mediaport scan --resume
//	mediaport scan --id=123
//	mediaport scan --url=https://example.com/post/42
package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/delphiknight/mediaport/internal/core"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan documents for externally hosted files",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runScan(cmd); err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
	},
}

func runScan(cmd *cobra.Command) error {
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
	resume, err := cmd.Flags().GetBool("resume")
	if err != nil {
		return fmt.Errorf("failed to read --resume: %w", err)
	}
	progressPath, err := cmd.Flags().GetString("progress-file")
	if err != nil {
		return fmt.Errorf("failed to read --progress-file: %w", err)
	}

	scanCfg := scanConfig(cfg)

	if rawURL != "" {
		doc, err := database.FindDocumentByURL(rawURL)
		if err != nil {
			return fmt.Errorf("no document found for %s: %w", rawURL, err)
		}
		id = doc.ID
	}

	if id > 0 {
		scanned, err := core.ScanDocument(database, id, scanCfg)
		if err != nil {
			return err
		}
		printScannedDocument(scanned)
		return nil
	}

	var progress *core.ScanProgress
	if resume {
		progress, err = readProgressFile(progressPath)
		if err != nil {
			return fmt.Errorf("failed to resume from %s: %w", progressPath, err)
		}
		log.Printf("Resuming scan at batch %d of %d", progress.NextBatch+1, progress.TotalBatches())
	} else {
		progress, err = core.StartScan(database, scanCfg)
		if err != nil {
			return err
		}
		log.Printf("Scanning %d document(s) in batches of %d", len(progress.DocumentIDs), progress.BatchSize)
	}

	bar := progressbar.Default(int64(progress.TotalBatches()), "scanning")
	_ = bar.Set(progress.NextBatch)

	err = core.RunScan(database, progress, scanCfg, func(p *core.ScanProgress) error {
		_ = bar.Add(1)
		return writeProgressFile(progressPath, p)
	})
	if err != nil {
		return err
	}

	fmt.Println()
	for _, scanned := range progress.Results {
		printScannedDocument(scanned)
	}
	if progress.SkippedResolved > 0 {
		color.Green("%d document(s) had only resolved candidates", progress.SkippedResolved)
	}
	if len(progress.Results) == 0 {
		log.Println("No documents with importable files found.")
	}

	// The scan finished; a later --resume should not replay it.
	if err := os.Remove(progressPath); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to remove progress file: %v", err)
	}
	return nil
}

func printScannedDocument(scanned core.ScannedDocument) {
	fmt.Printf("Document %d: %s\n", scanned.DocumentID, scanned.Title)
	for _, c := range scanned.Files {
		switch {
		case c.Imported:
			color.Green("  imported  %s", c.URL)
		case c.DeadLink:
			color.Yellow("  dead      %s (%s)", c.URL, c.DeadLinkMessage)
		default:
			fmt.Printf("  pending   %s\n", c.URL)
		}
	}
}

func readProgressFile(path string) (*core.ScanProgress, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var progress core.ScanProgress
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

func writeProgressFile(path string, progress *core.ScanProgress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Int64("id", 0, "Scan a specific document id")
	scanCmd.Flags().String("url", "", "Scan the document with this URL")
	scanCmd.Flags().Bool("resume", false, "Resume an interrupted scan from the progress file")
	scanCmd.Flags().String("progress-file", "mediaport-scan.json", "Where to persist scan progress between batches")
}
