/*
Copyright © 2025 delphiknight
*/
package cmd

import (
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/delphiknight/mediaport/internal/config"
	"github.com/delphiknight/mediaport/internal/core"
	"github.com/delphiknight/mediaport/internal/core/db"
	"github.com/delphiknight/mediaport/internal/core/web"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mediaport",
	Short: "Import externally hosted files into local asset storage",
	Long: `mediaport scans stored documents for files hosted on external servers,
downloads them into local asset storage, and rewrites the document content
to point at the local copies.

Run without a subcommand to start the HTTP API server.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		database, err := initDB(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer database.Close()

		// Operational logging for everything the handlers do
		database.RegisterEventListener(db.OnImportLoggedEvent, func(event db.Event) error {
			ev := event.(db.ImportLoggedEvent)
			log.Printf("Import logged: document=%d url=%s status=%s", ev.Entry.DocumentID, ev.Entry.OriginalURL, ev.Entry.Status)
			return nil
		})
		database.RegisterEventListener(db.OnDocumentContentUpdatedEvent, func(event db.Event) error {
			ev := event.(db.DocumentContentUpdatedEvent)
			log.Printf("Document %d content rewritten", ev.DocumentID)
			return nil
		})
		database.RegisterEventListener(db.OnDeadLinksClearedEvent, func(event db.Event) error {
			ev := event.(db.DeadLinksClearedEvent)
			log.Printf("Cleared %d dead-link log entries", ev.Deleted)
			return nil
		})

		web.StartServer(cfg.Server.Addr, database, scanConfig(cfg), importOptions(cfg), probeOptions(cfg))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringP("db", "d", "", "Path to the SQLite database file (overrides config)")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			log.Printf("Config error: %v", e)
		}
		return nil, errs[0]
	}
	return cfg, nil
}

func initDB(cfg *config.Config) (*db.DB, error) {
	database, err := db.NewSQLiteDB(cfg.Storage.DBPath, cfg.Storage.AssetDir, cfg.Storage.AssetBaseURL)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}

	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database migrated successfully")

	return database, nil
}

func scanConfig(cfg *config.Config) core.ScanConfig {
	return core.ScanConfig{
		Extensions:   cfg.Scan.Extensions,
		AllowedHosts: cfg.Scan.AllowedHosts,
		LocalBaseURL: cfg.Scan.LocalBaseURL,
		Statuses:     cfg.Scan.Statuses,
		BatchSize:    cfg.Scan.BatchSize,
	}
}

func importOptions(cfg *config.Config) core.ImportOptions {
	return core.ImportOptions{
		Timeout:         time.Duration(cfg.Import.ProbeTimeoutSeconds) * time.Second,
		DownloadTimeout: time.Duration(cfg.Import.DownloadTimeoutSeconds) * time.Second,
		MaxDownloadSize: cfg.Import.MaxDownloadBytes,
		UserAgent:       cfg.Import.UserAgent,
	}
}

func probeOptions(cfg *config.Config) core.ProbeOptions {
	return core.ProbeOptions{
		Timeout:   time.Duration(cfg.Import.ProbeTimeoutSeconds) * time.Second,
		RateLimit: cfg.Import.RateLimit,
		UserAgent: cfg.Import.UserAgent,
	}
}
