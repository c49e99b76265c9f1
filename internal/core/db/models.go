package db

// Import attempt statuses recorded in the import_log table.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// DeadLinkMarker is the substring written into skipped entries whose remote
// probe returned a non-success status. Dead-link enrichment and bulk clearing
// both match on it, so the exact text must stay stable.
const DeadLinkMarker = "not found on remote server"

// Document is one unit of rich-text content owned by the host site.
type Document struct {
	ID      int64
	Title   string
	URL     string
	Content string
	Status  string
	// PublishedAt and ModifiedAt are stored in the DB as RFC3339 text.
	PublishedAt string
	ModifiedAt  string
}

// ImportLogEntry is one immutable import attempt record. AssetID is zero for
// entries that did not create an asset.
type ImportLogEntry struct {
	ID            int64  `json:"id"`
	DocumentID    int64  `json:"document_id"`
	DocumentTitle string `json:"document_title"`
	OriginalURL   string `json:"original_url"`
	AssetID       int64  `json:"asset_id,omitempty"`
	Status        string `json:"status"`
	ErrorMessage  string `json:"error_message,omitempty"`
	ProcessedAt   string `json:"processed_at"`
}

// Asset is a locally stored media file created from a downloaded external URL.
// Path is relative to the asset root directory.
type Asset struct {
	ID         int64
	DocumentID int64
	Filename   string
	Path       string
	Size       int64
	CreatedAt  string
}

// ErrorCount pairs a recurring error message with its occurrence count.
type ErrorCount struct {
	Message string
	Count   int
}
