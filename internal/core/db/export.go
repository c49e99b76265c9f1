package db

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ExportLogsCSV writes log entries to w as CSV, most recent first. An empty
// status exports everything; otherwise only entries with that status.
func (db *DB) ExportLogsCSV(w io.Writer, status string) error {
	query := `
		SELECT id, document_id, document_title, original_url, COALESCE(new_asset_id, 0), status, error_message, processed_at
		FROM import_log
	`
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY processed_at DESC, id DESC"

	rows, err := db.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to query import logs for export: %w", err)
	}
	defer rows.Close()

	entries, err := scanLogEntries(rows)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "Document ID", "Document Title", "Original URL", "Status", "Asset ID", "Error Message", "Date"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, e := range entries {
		assetID := ""
		if e.AssetID > 0 {
			assetID = strconv.FormatInt(e.AssetID, 10)
		}
		record := []string{
			strconv.FormatInt(e.ID, 10),
			strconv.FormatInt(e.DocumentID, 10),
			e.DocumentTitle,
			e.OriginalURL,
			e.Status,
			assetID,
			e.ErrorMessage,
			e.ProcessedAt,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
