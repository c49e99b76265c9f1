package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"
)

// ErrInvalidURL is returned when an external file URL fails validation.
var ErrInvalidURL = errors.New("invalid URL")

// ValidateExternalURL validates that a URL is acceptable as an import source.
// It requires the URL to have http or https scheme and a non-empty host.
func ValidateExternalURL(urlStr string) error {
	if urlStr == "" {
		return fmt.Errorf("%w: empty URL", ErrInvalidURL)
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidURL, u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	return nil
}

// ------------------------------
// Document methods
// ------------------------------

func (db *DB) GetDocument(id int64) (Document, error) {
	var d Document
	err := db.db.QueryRow(
		"SELECT id, title, url, content, status, published_at, modified_at FROM documents WHERE id = ?", id,
	).Scan(&d.ID, &d.Title, &d.URL, &d.Content, &d.Status, &d.PublishedAt, &d.ModifiedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, fmt.Errorf("document not found: %d", id)
		}
		return Document{}, fmt.Errorf("failed to get document: %w", err)
	}
	return d, nil
}

// FindDocumentByURL looks a document up by its display URL. A trailing slash
// on either side is ignored.
func (db *DB) FindDocumentByURL(urlStr string) (Document, error) {
	trimmed := strings.TrimRight(urlStr, "/")
	var id int64
	err := db.db.QueryRow(
		"SELECT id FROM documents WHERE RTRIM(url, '/') = ? LIMIT 1", trimmed,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, fmt.Errorf("no document matches URL %q", urlStr)
		}
		return Document{}, fmt.Errorf("failed to find document by URL: %w", err)
	}
	return db.GetDocument(id)
}

// AddDocument inserts a new document and returns its ID.
func (db *DB) AddDocument(title, displayURL, content, status string) (int64, error) {
	now := time.Now().Format(time.RFC3339)
	result, err := db.db.Exec(
		"INSERT INTO documents (title, url, content, status, published_at, modified_at) VALUES (?, ?, ?, ?, ?, ?)",
		title,
		displayURL,
		content,
		status,
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to add document: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

func (db *DB) ListDocuments(limit int) ([]Document, error) {
	query := `
		SELECT id, title, url, content, status, published_at, modified_at
		FROM documents
		ORDER BY id ASC
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = db.db.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = db.db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	var out []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Title, &d.URL, &d.Content, &d.Status, &d.PublishedAt, &d.ModifiedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		out = append(out, d)
	}
	return out, nil
}

// UpdateDocumentContent replaces a document's content and bumps its modified
// timestamp. Emits a DocumentContentUpdatedEvent after a successful update.
func (db *DB) UpdateDocumentContent(id int64, content string) error {
	res, err := db.db.Exec(
		"UPDATE documents SET content = ?, modified_at = ? WHERE id = ?",
		content,
		time.Now().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update document content: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document not found: %d", id)
	}

	db.emit(DocumentContentUpdatedEvent{DocumentID: id})

	return nil
}

// ListCandidateDocumentIDs returns the ascending IDs of documents whose
// content could plausibly reference an external file: it must contain "http"
// plus at least one of the configured extension tokens. This is a cheap
// textual pre-filter; the result is a superset of the documents the extractor
// will actually report.
func (db *DB) ListCandidateDocumentIDs(statuses []string, extensions []string) ([]int64, error) {
	if len(statuses) == 0 {
		statuses = []string{"publish"}
	}
	if len(extensions) == 0 {
		return nil, errors.New("no extensions configured")
	}

	var sb strings.Builder
	args := make([]any, 0, len(statuses)+len(extensions)+1)

	sb.WriteString("SELECT id FROM documents WHERE status IN (")
	for i, s := range statuses {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("?")
		args = append(args, s)
	}
	sb.WriteString(") AND content LIKE ? AND (")
	args = append(args, "%http%")
	for i, ext := range extensions {
		if i > 0 {
			sb.WriteString(" OR ")
		}
		sb.WriteString("content LIKE ?")
		args = append(args, "%."+ext+"%")
	}
	sb.WriteString(") ORDER BY id ASC")

	rows, err := db.db.Query(sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate documents: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan document ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
