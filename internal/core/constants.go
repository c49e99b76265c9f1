package core

import "time"

// Timeout defaults for remote probes and downloads
const (
	DefaultProbeTimeout    = 10 * time.Second
	DefaultDownloadTimeout = 30 * time.Second
)

// Resource limits
const (
	MaxDownloadSize = 100 * 1024 * 1024 // 100MB
)

// Scan batch size bounds
const (
	DefaultBatchSize = 50
	MinBatchSize     = 10
	MaxBatchSize     = 200
)

// HTTP client configuration
const (
	UserAgent = "Mozilla/5.0 (compatible; mediaport/1.0)"
)
