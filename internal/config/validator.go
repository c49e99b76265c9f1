package config

import (
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if len(c.Scan.Extensions) == 0 {
		errors = append(errors, ValidationError{
			Field:   "scan.extensions",
			Message: "at least one extension is required",
		})
	}
	for _, ext := range c.Scan.Extensions {
		if strings.ContainsAny(ext, "/\\ ") {
			errors = append(errors, ValidationError{
				Field:   "scan.extensions",
				Message: fmt.Sprintf("invalid extension format: %s", ext),
			})
		}
	}

	for _, host := range c.Scan.AllowedHosts {
		if _, err := url.Parse(host); err != nil {
			errors = append(errors, ValidationError{
				Field:   "scan.allowed_hosts",
				Message: fmt.Sprintf("invalid host URL: %s", host),
			})
		}
	}

	if c.Import.ProbeTimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "import.probe_timeout_seconds",
			Message: "probe timeout must be positive",
		})
	}

	if c.Import.DownloadTimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "import.download_timeout_seconds",
			Message: "download timeout must be positive",
		})
	}

	if c.Import.MaxDownloadBytes < 1 {
		errors = append(errors, ValidationError{
			Field:   "import.max_download_bytes",
			Message: "max download size must be positive",
		})
	}

	if c.Import.RateLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "import.rate_limit",
			Message: "rate_limit must be non-negative",
		})
	}

	if c.Storage.DBPath == "" {
		errors = append(errors, ValidationError{
			Field:   "storage.db_path",
			Message: "database path is required",
		})
	}

	if c.Storage.AssetDir == "" {
		errors = append(errors, ValidationError{
			Field:   "storage.asset_dir",
			Message: "asset directory is required",
		})
	}

	return errors
}
