/*
Copyright © 2025 delphiknight
*/

// The logs command group inspects and maintains the import log.
//
// Example usage:
//
//	mediaport logs --status=error --page=2
//	mediaport logs stats
//	mediaport logs export --out=import-log.csv
//	mediaport logs clear-dead
//	mediaport logs clear --yes
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/delphiknight/mediaport/internal/core/db"
)

// logsCmd represents the logs command
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List and maintain the import log",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runLogsList(cmd); err != nil {
			log.Fatalf("Listing logs failed: %v", err)
		}
	},
}

var logsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show import totals and the most common errors",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runLogsStats(cmd); err != nil {
			log.Fatalf("Stats failed: %v", err)
		}
	},
}

var logsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the import log as CSV",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runLogsExport(cmd); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
	},
}

var logsClearDeadCmd = &cobra.Command{
	Use:   "clear-dead",
	Short: "Forget recorded dead links so scans re-check them",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runLogsClearDead(cmd); err != nil {
			log.Fatalf("Clearing dead links failed: %v", err)
		}
	},
}

var logsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the entire import log",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runLogsClear(cmd); err != nil {
			log.Fatalf("Clearing logs failed: %v", err)
		}
	},
}

func openLogsDB(cmd *cobra.Command) (*db.DB, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	database, err := initDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	closer := func() {
		if err := database.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}
	return database, closer, nil
}

func runLogsList(cmd *cobra.Command) error {
	database, closer, err := openLogsDB(cmd)
	if err != nil {
		return err
	}
	defer closer()

	status, _ := cmd.Flags().GetString("status")
	page, _ := cmd.Flags().GetInt("page")
	perPage, _ := cmd.Flags().GetInt("per-page")

	entries, err := database.ListImportLogs(status, page, perPage)
	if err != nil {
		return err
	}
	total, err := database.CountImportLogs(status)
	if err != nil {
		return err
	}

	for _, e := range entries {
		line := fmt.Sprintf("#%d  %s  doc=%d  %s", e.ID, e.ProcessedAt, e.DocumentID, e.OriginalURL)
		switch e.Status {
		case db.StatusSuccess:
			color.Green("%s  asset=%d", line, e.AssetID)
		case db.StatusSkipped:
			color.Yellow("%s  %s", line, e.ErrorMessage)
		default:
			color.Red("%s  %s", line, e.ErrorMessage)
		}
	}
	fmt.Printf("Showing %d of %d entries (page %d)\n", len(entries), total, page)
	return nil
}

func runLogsStats(cmd *cobra.Command) error {
	database, closer, err := openLogsDB(cmd)
	if err != nil {
		return err
	}
	defer closer()

	byStatus, err := database.CountImportLogsByStatus()
	if err != nil {
		return err
	}
	documents, err := database.CountDocumentsWithImports()
	if err != nil {
		return err
	}
	assetBytes, err := database.TotalAssetSize()
	if err != nil {
		return err
	}
	topErrors, err := database.TopErrors(5)
	if err != nil {
		return err
	}

	fmt.Printf("Imports:   %d success, %d error, %d skipped\n",
		byStatus[db.StatusSuccess], byStatus[db.StatusError], byStatus[db.StatusSkipped])
	fmt.Printf("Documents: %d with at least one import\n", documents)
	fmt.Printf("Assets:    %d bytes stored\n", assetBytes)
	if len(topErrors) > 0 {
		fmt.Println("Top errors:")
		for _, te := range topErrors {
			fmt.Printf("  %4dx  %s\n", te.Count, te.Message)
		}
	}
	return nil
}

func runLogsExport(cmd *cobra.Command) error {
	database, closer, err := openLogsDB(cmd)
	if err != nil {
		return err
	}
	defer closer()

	status, _ := cmd.Flags().GetString("status")
	outPath, _ := cmd.Flags().GetString("out")

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outPath, err)
		}
		defer f.Close()
		out = f
	}

	if err := database.ExportLogsCSV(out, status); err != nil {
		return err
	}
	if outPath != "" {
		log.Printf("Exported import log to %s", outPath)
	}
	return nil
}

func runLogsClearDead(cmd *cobra.Command) error {
	database, closer, err := openLogsDB(cmd)
	if err != nil {
		return err
	}
	defer closer()

	deleted, err := database.ClearDeadLinks()
	if err != nil {
		return err
	}
	log.Printf("Cleared %d dead-link entries", deleted)
	return nil
}

func runLogsClear(cmd *cobra.Command) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		return fmt.Errorf("refusing to delete the entire import log without --yes")
	}

	database, closer, err := openLogsDB(cmd)
	if err != nil {
		return err
	}
	defer closer()

	deleted, err := database.ClearAllLogs()
	if err != nil {
		return err
	}
	log.Printf("Deleted %d log entries", deleted)
	return nil
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(logsStatsCmd, logsExportCmd, logsClearDeadCmd, logsClearCmd)

	logsCmd.Flags().String("status", "", "Filter by status (success, error, skipped)")
	logsCmd.Flags().Int("page", 1, "Page number")
	logsCmd.Flags().Int("per-page", 50, "Entries per page")

	logsExportCmd.Flags().String("status", "", "Filter by status (success, error, skipped)")
	logsExportCmd.Flags().String("out", "", "Write CSV here instead of stdout")
}
