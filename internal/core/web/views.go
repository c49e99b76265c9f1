package web

import (
	"github.com/delphiknight/mediaport/internal/core"
	"github.com/delphiknight/mediaport/internal/core/db"
)

type scanStartResponse struct {
	Progress     core.ScanProgress `json:"progress"`
	TotalBatches int               `json:"total_batches"`
}

type scanBatchResponse struct {
	Progress core.ScanProgress `json:"progress"`
	Done     bool              `json:"done"`
}

type importRequest struct {
	URL string `json:"url"`
}

type probeRequest struct {
	URLs []string `json:"urls"`
}

type probeResponse struct {
	Results   map[string]core.ProbeResult `json:"results"`
	TotalSize int64                       `json:"total_size"`
}

type retryResponse struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type logListResponse struct {
	Entries []db.ImportLogEntry `json:"entries"`
	Total   int                 `json:"total"`
	Page    int                 `json:"page"`
	PerPage int                 `json:"per_page"`
}

type clearResponse struct {
	Deleted int64 `json:"deleted"`
}

type statsResponse struct {
	ByStatus   map[string]int  `json:"by_status"`
	Documents  int             `json:"documents"`
	AssetBytes int64           `json:"asset_bytes"`
	TopErrors  []db.ErrorCount `json:"top_errors"`
}
