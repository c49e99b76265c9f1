package db

import (
	"database/sql"
	"fmt"
	"time"
)

// InsertImportLog appends one attempt record and returns its ID. ProcessedAt
// is assigned here; the caller-provided value is ignored.
// Emits an ImportLoggedEvent after a successful insert.
func (db *DB) InsertImportLog(entry ImportLogEntry) (int64, error) {
	entry.ProcessedAt = time.Now().Format(time.RFC3339)

	var assetID any
	if entry.AssetID > 0 {
		assetID = entry.AssetID
	}

	result, err := db.db.Exec(`
		INSERT INTO import_log (document_id, document_title, original_url, new_asset_id, status, error_message, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.DocumentID,
		entry.DocumentTitle,
		entry.OriginalURL,
		assetID,
		entry.Status,
		entry.ErrorMessage,
		entry.ProcessedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert import log entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	entry.ID = id

	db.emit(ImportLoggedEvent{Entry: entry})

	return id, nil
}

// DeleteImportLog removes a single log entry by ID. Used before retrying a
// failed import so the attempt history holds one row per outcome.
func (db *DB) DeleteImportLog(id int64) error {
	res, err := db.db.Exec("DELETE FROM import_log WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete import log entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to determine rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("import log entry not found: %d", id)
	}
	return nil
}

// QuerySuccessfulImports returns, for one document, every URL with a success
// entry, mapped to its asset ID. One bulk query per call.
func (db *DB) QuerySuccessfulImports(documentID int64) (map[string]int64, error) {
	rows, err := db.db.Query(`
		SELECT original_url, new_asset_id FROM import_log
		WHERE document_id = ? AND status = ?
	`, documentID, StatusSuccess)
	if err != nil {
		return nil, fmt.Errorf("failed to query successful imports: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var url string
		var assetID sql.NullInt64
		if err := rows.Scan(&url, &assetID); err != nil {
			return nil, fmt.Errorf("failed to scan import log row: %w", err)
		}
		out[url] = assetID.Int64
	}
	return out, nil
}

// QueryDeadLinks returns, for one document, every URL whose most recent
// skipped entry carries the dead-link marker, mapped to the stored message.
func (db *DB) QueryDeadLinks(documentID int64) (map[string]string, error) {
	rows, err := db.db.Query(`
		SELECT original_url, error_message FROM import_log
		WHERE document_id = ? AND status = ? AND error_message LIKE ?
	`, documentID, StatusSkipped, "%"+DeadLinkMarker+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query dead links: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var url, message string
		if err := rows.Scan(&url, &message); err != nil {
			return nil, fmt.Errorf("failed to scan import log row: %w", err)
		}
		out[url] = message
	}
	return out, nil
}

// FindSuccessfulImport reports whether url was already successfully imported
// for the given document, and the asset ID if so.
func (db *DB) FindSuccessfulImport(documentID int64, url string) (int64, bool, error) {
	var assetID sql.NullInt64
	err := db.db.QueryRow(`
		SELECT new_asset_id FROM import_log
		WHERE document_id = ? AND original_url = ? AND status = ?
		LIMIT 1
	`, documentID, url, StatusSuccess).Scan(&assetID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to check prior import: %w", err)
	}
	return assetID.Int64, true, nil
}

// ListImportLogs returns one page of log entries, most recent first. An empty
// status returns all statuses. Pages are 1-based.
func (db *DB) ListImportLogs(status string, page, perPage int) ([]ImportLogEntry, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 50
	}

	query := `
		SELECT id, document_id, document_title, original_url, COALESCE(new_asset_id, 0), status, error_message, processed_at
		FROM import_log
	`
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY processed_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, perPage, (page-1)*perPage)

	rows, err := db.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}
	defer rows.Close()

	return scanLogEntries(rows)
}

// ListFailedImports returns every error entry, most recent first.
func (db *DB) ListFailedImports() ([]ImportLogEntry, error) {
	rows, err := db.db.Query(`
		SELECT id, document_id, document_title, original_url, COALESCE(new_asset_id, 0), status, error_message, processed_at
		FROM import_log
		WHERE status = ?
		ORDER BY processed_at DESC, id DESC
	`, StatusError)
	if err != nil {
		return nil, fmt.Errorf("failed to list failed imports: %w", err)
	}
	defer rows.Close()

	return scanLogEntries(rows)
}

func scanLogEntries(rows *sql.Rows) ([]ImportLogEntry, error) {
	var out []ImportLogEntry
	for rows.Next() {
		var e ImportLogEntry
		if err := rows.Scan(&e.ID, &e.DocumentID, &e.DocumentTitle, &e.OriginalURL, &e.AssetID, &e.Status, &e.ErrorMessage, &e.ProcessedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import log entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountImportLogs counts log entries, optionally filtered by status.
func (db *DB) CountImportLogs(status string) (int, error) {
	var count int
	var err error
	if status == "" {
		err = db.db.QueryRow("SELECT COUNT(*) FROM import_log").Scan(&count)
	} else {
		err = db.db.QueryRow("SELECT COUNT(*) FROM import_log WHERE status = ?", status).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count import logs: %w", err)
	}
	return count, nil
}

// CountImportLogsByStatus returns entry counts grouped by status.
func (db *DB) CountImportLogsByStatus() (map[string]int, error) {
	rows, err := db.db.Query("SELECT status, COUNT(*) FROM import_log GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count import logs by status: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		out[status] = count
	}
	return out, nil
}

// CountDocumentsWithImports counts distinct documents with any log activity.
func (db *DB) CountDocumentsWithImports() (int, error) {
	var count int
	if err := db.db.QueryRow("SELECT COUNT(DISTINCT document_id) FROM import_log").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents with imports: %w", err)
	}
	return count, nil
}

// TopErrors returns the most frequent non-empty error messages among error
// and skipped entries.
func (db *DB) TopErrors(limit int) ([]ErrorCount, error) {
	if limit < 1 {
		limit = 5
	}
	rows, err := db.db.Query(`
		SELECT error_message, COUNT(*) as cnt
		FROM import_log
		WHERE status IN (?, ?) AND error_message != ''
		GROUP BY error_message
		ORDER BY cnt DESC
		LIMIT ?
	`, StatusError, StatusSkipped, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top errors: %w", err)
	}
	defer rows.Close()

	var out []ErrorCount
	for rows.Next() {
		var ec ErrorCount
		if err := rows.Scan(&ec.Message, &ec.Count); err != nil {
			return nil, fmt.Errorf("failed to scan error count: %w", err)
		}
		out = append(out, ec)
	}
	return out, nil
}

// ClearDeadLinks bulk-deletes skipped entries carrying the dead-link marker.
// Success and error entries are untouched. Returns the number of deleted rows.
// Emits a DeadLinksClearedEvent when any rows were removed.
func (db *DB) ClearDeadLinks() (int64, error) {
	res, err := db.db.Exec(
		"DELETE FROM import_log WHERE status = ? AND error_message LIKE ?",
		StatusSkipped,
		"%"+DeadLinkMarker+"%",
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear dead links: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to determine rows affected: %w", err)
	}

	if deleted > 0 {
		db.emit(DeadLinksClearedEvent{Deleted: deleted})
	}

	return deleted, nil
}

// ClearAllLogs deletes every log entry. Imported assets are not affected.
func (db *DB) ClearAllLogs() (int64, error) {
	res, err := db.db.Exec("DELETE FROM import_log")
	if err != nil {
		return 0, fmt.Errorf("failed to clear import logs: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to determine rows affected: %w", err)
	}
	return deleted, nil
}
