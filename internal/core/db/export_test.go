package db

import (
	"bytes"
	"encoding/csv"
	"testing"
)

func TestExportLogsCSV(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	logTestEntry(t, db, 1, "https://example.com/a.jpg", StatusSuccess, "", 5)
	logTestEntry(t, db, 2, "https://example.com/b.jpg", StatusError, "connection refused", 0)

	t.Run("all statuses", func(t *testing.T) {
		var buf bytes.Buffer
		if err := db.ExportLogsCSV(&buf, ""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("failed to parse CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header + 2 rows, got %d", len(records))
		}
		if records[0][0] != "ID" || records[0][7] != "Date" {
			t.Errorf("unexpected header: %v", records[0])
		}
		for _, rec := range records[1:] {
			if len(rec) != 8 {
				t.Errorf("expected 8 columns, got %d: %v", len(rec), rec)
			}
		}
	})

	t.Run("status filter", func(t *testing.T) {
		var buf bytes.Buffer
		if err := db.ExportLogsCSV(&buf, StatusError); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatalf("failed to parse CSV: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected header + 1 row, got %d", len(records))
		}
		row := records[1]
		if row[3] != "https://example.com/b.jpg" || row[4] != StatusError {
			t.Errorf("unexpected row: %v", row)
		}
		if row[5] != "" {
			t.Errorf("expected empty asset id for failed import, got %q", row[5])
		}
	})
}
