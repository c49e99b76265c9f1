/*
Copyright © 2025 delphiknight
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/delphiknight/mediaport/internal/core"
	"github.com/delphiknight/mediaport/internal/core/db"
)

// retryCmd represents the retry command
var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Re-attempt every failed import",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRetry(cmd); err != nil {
			log.Fatalf("Retry failed: %v", err)
		}
	},
}

func runRetry(cmd *cobra.Command) error {
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

	stats, err := core.RetryFailedImports(context.Background(), database, importOptions(cfg),
		func(entry db.ImportLogEntry, result core.ImportResult, err error) {
			printImportResult(entry.OriginalURL, result, err)
		})
	if err != nil {
		return err
	}

	if stats.Attempted == 0 {
		log.Println("No failed imports to retry.")
		return nil
	}

	log.Printf("Retry finished: %d attempted, %d succeeded, %d skipped, %d failed",
		stats.Attempted, stats.Succeeded, stats.Skipped, stats.Failed)
	if stats.Failed > 0 {
		return fmt.Errorf("retry finished with %d failure(s)", stats.Failed)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(retryCmd)
}
