package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/delphiknight/mediaport/internal/core"
)

type Config struct {
	Scan struct {
		Extensions   []string `yaml:"extensions"`
		AllowedHosts []string `yaml:"allowed_hosts"`
		LocalBaseURL string   `yaml:"local_base_url"`
		Statuses     []string `yaml:"statuses"`
		BatchSize    int      `yaml:"batch_size"`
	} `yaml:"scan"`

	Import struct {
		ProbeTimeoutSeconds    int     `yaml:"probe_timeout_seconds"`
		DownloadTimeoutSeconds int     `yaml:"download_timeout_seconds"`
		MaxDownloadBytes       int64   `yaml:"max_download_bytes"`
		RateLimit              float64 `yaml:"rate_limit"`
		UserAgent              string  `yaml:"user_agent"`
	} `yaml:"import"`

	Storage struct {
		DBPath       string `yaml:"db_path"`
		AssetDir     string `yaml:"asset_dir"`
		AssetBaseURL string `yaml:"asset_base_url"`
	} `yaml:"storage"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"mediaport.yaml",
			"mediaport.yml",
			filepath.Join(os.Getenv("HOME"), ".config/mediaport/config.yaml"),
			"/etc/mediaport/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if len(config.Scan.Extensions) == 0 {
		config.Scan.Extensions = []string{
			"jpg", "jpeg", "png", "gif", "webp", "svg",
			"pdf", "doc", "docx", "xls", "xlsx",
			"mp3", "mp4", "mov", "avi", "zip",
		}
	}
	if len(config.Scan.Statuses) == 0 {
		config.Scan.Statuses = []string{"publish"}
	}
	config.Scan.BatchSize = core.ClampBatchSize(config.Scan.BatchSize)

	if config.Import.ProbeTimeoutSeconds == 0 {
		config.Import.ProbeTimeoutSeconds = int(core.DefaultProbeTimeout.Seconds())
	}
	if config.Import.DownloadTimeoutSeconds == 0 {
		config.Import.DownloadTimeoutSeconds = int(core.DefaultDownloadTimeout.Seconds())
	}
	if config.Import.MaxDownloadBytes == 0 {
		config.Import.MaxDownloadBytes = core.MaxDownloadSize
	}
	if config.Import.UserAgent == "" {
		config.Import.UserAgent = core.UserAgent
	}

	if config.Storage.DBPath == "" {
		config.Storage.DBPath = "mediaport.db"
	}
	if config.Storage.AssetDir == "" {
		config.Storage.AssetDir = "assets"
	}
	if config.Storage.AssetBaseURL == "" {
		config.Storage.AssetBaseURL = "/assets"
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
}

func mergeWithEnv(config *Config) {
	if dbPath := os.Getenv("MEDIAPORT_DB_PATH"); dbPath != "" {
		config.Storage.DBPath = dbPath
	}
	if assetDir := os.Getenv("MEDIAPORT_ASSET_DIR"); assetDir != "" {
		config.Storage.AssetDir = assetDir
	}
	if baseURL := os.Getenv("MEDIAPORT_ASSET_BASE_URL"); baseURL != "" {
		config.Storage.AssetBaseURL = baseURL
	}
	if addr := os.Getenv("MEDIAPORT_ADDR"); addr != "" {
		config.Server.Addr = addr
	}
}
