package core

import (
	"errors"
	"fmt"
	"log"

	"github.com/delphiknight/mediaport/internal/core/db"
)

// ErrInvalidProgress is returned for a resume snapshot that cannot be
// scanned.
var ErrInvalidProgress = errors.New("invalid scan progress")

// ScanConfig carries the configuration a scan needs. It is passed explicitly
// into every scan operation; the core never consults ambient state.
type ScanConfig struct {
	// Extensions are the file extensions to look for, without leading dots.
	Extensions []string
	// AllowedHosts optionally restricts candidates to URLs starting with one
	// of these prefixes.
	AllowedHosts []string
	// LocalBaseURL is the asset store's public base URL; URLs under it are
	// never offered as candidates.
	LocalBaseURL string
	// Statuses selects which document statuses to scan. Empty means publish.
	Statuses []string
	// BatchSize is the number of documents per batch, clamped to
	// [MinBatchSize, MaxBatchSize]. Zero means DefaultBatchSize.
	BatchSize int
}

func (c ScanConfig) extractOptions() ExtractOptions {
	return ExtractOptions{
		Extensions:   c.Extensions,
		AllowedHosts: c.AllowedHosts,
		LocalBaseURL: c.LocalBaseURL,
	}
}

// ClampBatchSize normalizes a configured batch size into the supported range.
func ClampBatchSize(size int) int {
	if size == 0 {
		return DefaultBatchSize
	}
	if size < MinBatchSize {
		return MinBatchSize
	}
	if size > MaxBatchSize {
		return MaxBatchSize
	}
	return size
}

// FileCandidate is one extracted external URL enriched with its prior import
// status. It is derived on every scan, never persisted. Imported and
// DeadLink are mutually exclusive; AssetID is set only when Imported.
type FileCandidate struct {
	URL             string `json:"url"`
	Filename        string `json:"filename"`
	Imported        bool   `json:"imported"`
	AssetID         int64  `json:"asset_id,omitempty"`
	DeadLink        bool   `json:"dead_link"`
	DeadLinkMessage string `json:"dead_link_message,omitempty"`
}

// Actionable reports whether the candidate still needs operator attention.
func (f FileCandidate) Actionable() bool {
	return !f.Imported && !f.DeadLink
}

// ScannedDocument is one document with at least one extracted candidate.
type ScannedDocument struct {
	DocumentID int64           `json:"document_id"`
	Title      string          `json:"title"`
	URL        string          `json:"url"`
	Files      []FileCandidate `json:"files"`
}

// HasActionable reports whether any candidate is neither imported nor dead.
func (d ScannedDocument) HasActionable() bool {
	for _, f := range d.Files {
		if f.Actionable() {
			return true
		}
	}
	return false
}

// ScanProgress is the caller-held, resumable state of a batch scan. It is a
// resume hint, not authority: only the set of already-scanned documents is
// trusted on resume; import status is always re-derived fresh. Losing it just
// means a fresh scan, which is always safe.
type ScanProgress struct {
	DocumentIDs []int64 `json:"document_ids"`
	NextBatch   int     `json:"next_batch"`
	BatchSize   int     `json:"batch_size"`
	// Results accumulates documents that still have actionable candidates.
	Results []ScannedDocument `json:"results"`
	// SkippedResolved counts documents whose candidates were all already
	// imported or dead.
	SkippedResolved int `json:"skipped_resolved"`
}

// Done reports whether every batch has been processed.
func (p *ScanProgress) Done() bool {
	return p.NextBatch*p.BatchSize >= len(p.DocumentIDs)
}

// TotalBatches returns the number of batches the scan will run.
func (p *ScanProgress) TotalBatches() int {
	if p.BatchSize <= 0 {
		return 0
	}
	return (len(p.DocumentIDs) + p.BatchSize - 1) / p.BatchSize
}

// Scanned returns how many documents have been processed so far.
func (p *ScanProgress) Scanned() int {
	scanned := p.NextBatch * p.BatchSize
	if scanned > len(p.DocumentIDs) {
		scanned = len(p.DocumentIDs)
	}
	return scanned
}

// StartScan enumerates candidate document IDs and returns fresh scan
// progress positioned at the first batch. Enumeration is a cheap textual
// pre-filter on the document store; the ID list is a superset of documents
// that will actually report candidates.
func StartScan(database *db.DB, cfg ScanConfig) (*ScanProgress, error) {
	ids, err := database.ListCandidateDocumentIDs(cfg.Statuses, normalizeExtensions(cfg.Extensions))
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate documents: %w", err)
	}
	return &ScanProgress{
		DocumentIDs: ids,
		BatchSize:   ClampBatchSize(cfg.BatchSize),
	}, nil
}

// ScanBatch processes the next fixed-size slice of document IDs and advances
// the progress. Documents without candidates are dropped; documents whose
// candidates are all resolved are counted as skipped. One document's failure
// is isolated: it is logged and skipped, the batch continues.
func ScanBatch(database *db.DB, progress *ScanProgress, cfg ScanConfig) error {
	// The snapshot arrives from a progress file or an API client; its pacing
	// fields are not trusted. A zero batch size would never advance.
	progress.BatchSize = ClampBatchSize(progress.BatchSize)
	if progress.NextBatch < 0 {
		return fmt.Errorf("%w: negative batch index %d", ErrInvalidProgress, progress.NextBatch)
	}
	if progress.Done() {
		return nil
	}

	start := progress.NextBatch * progress.BatchSize
	end := start + progress.BatchSize
	if end > len(progress.DocumentIDs) {
		end = len(progress.DocumentIDs)
	}

	opts := cfg.extractOptions()
	for _, id := range progress.DocumentIDs[start:end] {
		doc, err := database.GetDocument(id)
		if err != nil {
			log.Printf("Scan: skipping document %d: %v", id, err)
			continue
		}

		refs := ExtractFileURLs(doc.Content, opts)
		if len(refs) == 0 {
			continue
		}

		files, err := EnrichCandidates(database, id, refs)
		if err != nil {
			log.Printf("Scan: skipping document %d: %v", id, err)
			continue
		}

		scanned := ScannedDocument{
			DocumentID: doc.ID,
			Title:      doc.Title,
			URL:        doc.URL,
			Files:      files,
		}
		if scanned.HasActionable() {
			progress.Results = append(progress.Results, scanned)
		} else {
			progress.SkippedResolved++
		}
	}

	progress.NextBatch++
	return nil
}

// RunScan drives a scan to completion. After every batch, onBatch is invoked
// with the updated progress so the caller can persist it for resume; a nil
// onBatch just runs the scan through. If onBatch returns an error the scan
// stops early with the progress intact.
func RunScan(database *db.DB, progress *ScanProgress, cfg ScanConfig, onBatch func(*ScanProgress) error) error {
	for !progress.Done() {
		if err := ScanBatch(database, progress, cfg); err != nil {
			return err
		}
		if onBatch != nil {
			if err := onBatch(progress); err != nil {
				return err
			}
		}
	}
	return nil
}

// ScanDocument scans a single document and returns all of its candidates,
// resolved or not.
func ScanDocument(database *db.DB, documentID int64, cfg ScanConfig) (ScannedDocument, error) {
	doc, err := database.GetDocument(documentID)
	if err != nil {
		return ScannedDocument{}, err
	}

	refs := ExtractFileURLs(doc.Content, cfg.extractOptions())
	files, err := EnrichCandidates(database, documentID, refs)
	if err != nil {
		return ScannedDocument{}, err
	}

	return ScannedDocument{
		DocumentID: doc.ID,
		Title:      doc.Title,
		URL:        doc.URL,
		Files:      files,
	}, nil
}

// EnrichCandidates merges extraction output with prior import attempts: a
// candidate with a success entry is marked imported with its asset ID, a
// candidate with a dead-link entry (and no success) is marked dead with the
// stored message. Success is sticky: it always wins over a dead-link record
// for the same URL. Two bulk queries per call, never one per URL.
func EnrichCandidates(database *db.DB, documentID int64, refs []FileRef) ([]FileCandidate, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	imported, err := database.QuerySuccessfulImports(documentID)
	if err != nil {
		return nil, err
	}
	dead, err := database.QueryDeadLinks(documentID)
	if err != nil {
		return nil, err
	}

	files := make([]FileCandidate, 0, len(refs))
	for _, ref := range refs {
		candidate := FileCandidate{URL: ref.URL, Filename: ref.Filename}
		if assetID, ok := imported[ref.URL]; ok {
			candidate.Imported = true
			candidate.AssetID = assetID
		} else if message, ok := dead[ref.URL]; ok {
			candidate.DeadLink = true
			candidate.DeadLinkMessage = message
		}
		files = append(files, candidate)
	}
	return files, nil
}
