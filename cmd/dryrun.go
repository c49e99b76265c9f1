/*
Copyright © 2025 delphiknight
*/

// The dry-run command scans documents and probes every pending file without
// downloading or changing anything. It reports per-file availability and the
// total bytes a real import would transfer.
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/delphiknight/mediaport/internal/core"
)

// dryRunCmd represents the dry-run command
var dryRunCmd = &cobra.Command{
	Use:   "dry-run",
	Short: "Probe pending files without importing anything",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDryRun(cmd); err != nil {
			log.Fatalf("Dry run failed: %v", err)
		}
	},
}

func runDryRun(cmd *cobra.Command) error {
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

	scanCfg := scanConfig(cfg)
	progress, err := core.StartScan(database, scanCfg)
	if err != nil {
		return err
	}
	if err := core.RunScan(database, progress, scanCfg, nil); err != nil {
		return err
	}

	var urls []string
	for _, scanned := range progress.Results {
		for _, candidate := range scanned.Files {
			if candidate.Actionable() {
				urls = append(urls, candidate.URL)
			}
		}
	}
	if len(urls) == 0 {
		log.Println("No pending files to probe.")
		return nil
	}

	bar := progressbar.Default(int64(len(urls)), "probing")
	opts := probeOptions(cfg)
	opts.OnProbe = func(string, core.ProbeResult) {
		_ = bar.Add(1)
	}

	results, totalSize := core.ProbeURLs(context.Background(), urls, opts)

	fmt.Println()
	var available, unavailable int
	for _, url := range urls {
		result := results[url]
		if result.Error != "" {
			unavailable++
			color.Red("  unavailable  %s (%s)", url, result.Error)
			continue
		}
		available++
		fmt.Printf("  available    %s (%s, %d bytes)\n", url, result.ContentType, result.Size)
	}

	log.Printf("Dry run finished: %d available (%d bytes total), %d unavailable", available, totalSize, unavailable)
	return nil
}

func init() {
	rootCmd.AddCommand(dryRunCmd)
}
