package core

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/delphiknight/mediaport/internal/core/db"
)

// ImportOptions controls how a single external file is fetched and stored.
type ImportOptions struct {
	// Timeout is the per-request deadline for the existence probe.
	// If <= 0, a sensible default is used.
	Timeout time.Duration
	// DownloadTimeout is the deadline for the full download. If <= 0, a
	// sensible default is used.
	DownloadTimeout time.Duration
	// MaxDownloadSize is the largest remote file, in bytes, that will be
	// imported; bigger files fail rather than import truncated. 0 means the
	// package default.
	MaxDownloadSize int64
	// UserAgent overrides the User-Agent header sent with remote requests.
	UserAgent string
	// Client optionally overrides the HTTP client, mainly for tests.
	Client *http.Client
}

func (opts *ImportOptions) applyDefaults() {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultProbeTimeout
	}
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = DefaultDownloadTimeout
	}
	if opts.MaxDownloadSize <= 0 {
		opts.MaxDownloadSize = MaxDownloadSize
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
}

func (opts ImportOptions) httpClient() *http.Client {
	if opts.Client != nil {
		return opts.Client
	}
	return &http.Client{Timeout: opts.DownloadTimeout}
}

// ImportResult reports the outcome of importing one external file.
type ImportResult struct {
	Status   string `json:"status"`
	AssetID  int64  `json:"asset_id,omitempty"`
	AssetURL string `json:"asset_url,omitempty"`
	Message  string `json:"message,omitempty"`
	// URLReplaced reports whether the document content actually changed.
	URLReplaced bool `json:"url_replaced"`
}

// ImportFile turns one external URL into a locally stored asset owned by the
// given document.
//
// The operation is idempotent per (document, URL): if a prior attempt already
// succeeded, it returns a skipped result with the existing asset ID and makes
// no network call and no new log entry. Otherwise it probes the remote file,
// downloads it, stores it as an asset backdated to the document's original
// timestamp, rewrites the document content to point at the local copy, and
// records exactly one log row for the attempt.
//
// A missing remote file (non-200 probe) is an expected terminal outcome: it
// is logged as skipped with the dead-link marker and returned without a Go
// error. Transport and store failures are logged as errors and returned as
// errors. Validation failures are rejected before any network or store
// activity and write no log row.
func ImportFile(ctx context.Context, database *db.DB, documentID int64, rawURL string, opts ImportOptions) (ImportResult, error) {
	opts.applyDefaults()

	if err := db.ValidateExternalURL(rawURL); err != nil {
		return ImportResult{}, err
	}

	doc, err := database.GetDocument(documentID)
	if err != nil {
		return ImportResult{}, err
	}

	// Idempotency check: a prior success wins, no matter what happened since.
	if assetID, ok, err := database.FindSuccessfulImport(documentID, rawURL); err != nil {
		return ImportResult{}, err
	} else if ok {
		assetURL, err := database.AssetURL(assetID)
		if err != nil {
			log.Printf("Import: failed to resolve URL for asset %d: %v", assetID, err)
		}
		return ImportResult{
			Status:   db.StatusSkipped,
			AssetID:  assetID,
			AssetURL: assetURL,
			Message:  fmt.Sprintf("already imported (asset ID: %d)", assetID),
		}, nil
	}

	client := opts.httpClient()

	// Existence probe before committing to a download.
	probeCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	status, contentLength, _, err := headRemote(probeCtx, client, rawURL, opts.UserAgent)
	cancel()
	if err != nil {
		return logFailure(database, doc, rawURL, fmt.Errorf("failed to check remote file: %w", err))
	}
	if status != http.StatusOK {
		message := fmt.Sprintf("File %s (HTTP %d)", db.DeadLinkMarker, status)
		if err := logAttempt(database, doc, rawURL, 0, db.StatusSkipped, message); err != nil {
			return ImportResult{}, err
		}
		return ImportResult{Status: db.StatusSkipped, Message: message}, nil
	}
	if opts.MaxDownloadSize > 0 && contentLength > opts.MaxDownloadSize {
		return logFailure(database, doc, rawURL,
			fmt.Errorf("remote file is %d bytes, over the %d byte limit", contentLength, opts.MaxDownloadSize))
	}

	data, err := fetchRemote(ctx, client, rawURL, opts.UserAgent, opts.MaxDownloadSize)
	if err != nil {
		return logFailure(database, doc, rawURL, fmt.Errorf("failed to download file: %w", err))
	}

	filename, err := filenameFromURL(rawURL)
	if err != nil {
		return logFailure(database, doc, rawURL, err)
	}

	assetID, err := database.CreateAssetFromBytes(data, filename, documentID, documentTimestamp(doc))
	if err != nil {
		return logFailure(database, doc, rawURL, fmt.Errorf("failed to store file: %w", err))
	}

	newURL, err := database.AssetURL(assetID)
	if err != nil {
		return logFailure(database, doc, rawURL, err)
	}

	// Point the document at the local copy. Persist only on actual change.
	updated := ReplaceURLVariants(doc.Content, rawURL, newURL)
	replaced := updated != doc.Content
	if replaced {
		if err := database.UpdateDocumentContent(documentID, updated); err != nil {
			return logFailure(database, doc, rawURL, fmt.Errorf("imported as asset %d but failed to update document: %w", assetID, err))
		}
	}

	if err := logAttempt(database, doc, rawURL, assetID, db.StatusSuccess, ""); err != nil {
		return ImportResult{}, err
	}

	return ImportResult{
		Status:      db.StatusSuccess,
		AssetID:     assetID,
		AssetURL:    newURL,
		Message:     "file imported successfully",
		URLReplaced: replaced,
	}, nil
}

// logAttempt writes the single log row an import attempt produces.
func logAttempt(database *db.DB, doc db.Document, rawURL string, assetID int64, status, message string) error {
	_, err := database.InsertImportLog(db.ImportLogEntry{
		DocumentID:    doc.ID,
		DocumentTitle: doc.Title,
		OriginalURL:   rawURL,
		AssetID:       assetID,
		Status:        status,
		ErrorMessage:  message,
	})
	return err
}

func logFailure(database *db.DB, doc db.Document, rawURL string, cause error) (ImportResult, error) {
	if logErr := logAttempt(database, doc, rawURL, 0, db.StatusError, cause.Error()); logErr != nil {
		return ImportResult{}, fmt.Errorf("import failed (%v) and saving failure failed (%v)", cause, logErr)
	}
	return ImportResult{Status: db.StatusError, Message: cause.Error()}, cause
}

// headRemote issues a metadata-only request and returns the status code,
// content length and content type.
func headRemote(ctx context.Context, client *http.Client, urlStr, userAgent string) (int, int64, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, urlStr, nil)
	if err != nil {
		return 0, 0, "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return 0, 0, "", err
	}
	defer resp.Body.Close()

	return resp.StatusCode, resp.ContentLength, resp.Header.Get("Content-Type"), nil
}

// fetchRemote downloads a URL and returns its body. A body longer than
// maxSize is an error: storing a truncated file would corrupt the asset.
func fetchRemote(ctx context.Context, client *http.Client, urlStr, userAgent string, maxSize int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	// Read one byte past the cap so lying or absent Content-Length headers
	// are still caught.
	var reader io.Reader = resp.Body
	if maxSize > 0 {
		reader = io.LimitReader(resp.Body, maxSize+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, fmt.Errorf("file is larger than the %d byte limit", maxSize)
	}

	return data, nil
}

func filenameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("unparsable URL %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("URL %q has no filename component", rawURL)
	}
	return name, nil
}

// documentTimestamp parses the document's original timestamp for asset
// backdating, falling back to now when it is missing or malformed.
func documentTimestamp(doc db.Document) time.Time {
	if t, err := time.Parse(time.RFC3339, doc.PublishedAt); err == nil {
		return t
	}
	return time.Now()
}
